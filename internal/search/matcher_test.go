package search

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcd-community/handbook/internal/models"
)

func verifySection() []models.Section {
	return []models.Section{{
		ID:    "s1",
		Title: "Verify",
		Content: []models.ContentItem{
			models.Text{Text: "Use the /verify command in the verification channel"},
		},
	}}
}

func TestSearch_verifyScenario(t *testing.T) {
	got := Search(verifySection(), "verify")
	want := []models.SearchResult{{
		SectionID:     "s1",
		SectionTitle:  "Verify",
		ContentIndex:  0,
		MatchText:     "verify",
		ContextBefore: "Use the /",
		ContextAfter:  " command in the verification channel",
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Search mismatch (-want +got):\n%s", diff)
	}
}

func TestSearch_emptyQuery(t *testing.T) {
	for _, q := range []string{"", "   ", "\t\n"} {
		got := Search(verifySection(), q)
		require.NotNil(t, got, "query %q", q)
		assert.Empty(t, got, "query %q", q)
	}
}

func TestSearch_emptySections(t *testing.T) {
	assert.Empty(t, Search(nil, "verify"))
	assert.Empty(t, Search([]models.Section{{ID: "empty", Title: "Empty"}}, "verify"))
}

func TestSearch_noMatch(t *testing.T) {
	assert.Empty(t, Search(verifySection(), "containment breach"))
}

func TestSearch_documentOrder(t *testing.T) {
	sections := []models.Section{
		{ID: "a", Title: "A", Content: []models.ContentItem{
			models.Text{Text: "agent one"},
			models.Image{Src: "agent.png", Alt: "agent"},
			models.Heading{Text: "Agent duties"},
		}},
		{ID: "b", Title: "B", Content: []models.ContentItem{
			models.List{Items: []string{"field", "agent"}},
			models.Code{Code: "!agent promote"},
			models.Widget{Name: "agent-calculator"},
			models.Callout{Text: "Every AGENT must verify", Variant: "info"},
		}},
	}
	got := Search(sections, "agent")
	require.Len(t, got, 5)

	type pos struct {
		Section string
		Index   int
	}
	var positions []pos
	for _, r := range got {
		positions = append(positions, pos{r.SectionID, r.ContentIndex})
	}
	want := []pos{{"a", 0}, {"a", 2}, {"b", 0}, {"b", 1}, {"b", 3}}
	if diff := cmp.Diff(want, positions); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestSearch_onePerItemFirstOccurrence(t *testing.T) {
	sections := []models.Section{{ID: "s", Title: "S", Content: []models.ContentItem{
		models.Text{Text: "ping one, ping two, ping three"},
	}}}
	got := Search(sections, "ping")
	require.Len(t, got, 1)
	assert.Equal(t, "", got[0].ContextBefore)
	assert.Equal(t, " one, ping two, ping three", got[0].ContextAfter)
}

func TestSearch_caseInsensitivePreservesCase(t *testing.T) {
	sections := []models.Section{{ID: "s", Title: "S", Content: []models.ContentItem{
		models.Text{Text: "say HELLO to the director"},
	}}}
	got := Search(sections, "hello")
	require.Len(t, got, 1)
	assert.Equal(t, "HELLO", got[0].MatchText)
	assert.Equal(t, "say ", got[0].ContextBefore)
}

func TestSearch_listJoinedWithSpace(t *testing.T) {
	sections := []models.Section{{ID: "s", Title: "S", Content: []models.ContentItem{
		models.List{Items: []string{"Junior", "Agent"}},
	}}}
	got := Search(sections, "junior agent")
	require.Len(t, got, 1)
	assert.Equal(t, "Junior Agent", got[0].MatchText)
}

func TestSearch_missingTextDegradesToEmpty(t *testing.T) {
	sections := []models.Section{{ID: "s", Title: "S", Content: []models.ContentItem{
		models.Text{},
		models.Callout{Variant: "warning"},
		models.List{},
	}}}
	assert.Empty(t, Search(sections, "x"))
}

func TestSearch_contextTruncation(t *testing.T) {
	pad := strings.Repeat("x", 60)
	tests := []struct {
		name       string
		text       string
		wantBefore string
		wantAfter  string
	}{
		{
			name:       "both sides truncated",
			text:       pad + "MATCH" + pad,
			wantBefore: "..." + strings.Repeat("x", 50),
			wantAfter:  strings.Repeat("x", 50) + "...",
		},
		{
			name:       "near start",
			text:       "ab MATCH" + pad,
			wantBefore: "ab ",
			wantAfter:  strings.Repeat("x", 50) + "...",
		},
		{
			name:       "near end",
			text:       pad + "MATCH.",
			wantBefore: "..." + strings.Repeat("x", 50),
			wantAfter:  ".",
		},
		{
			name:       "exactly fifty on each side",
			text:       strings.Repeat("y", 50) + "MATCH" + strings.Repeat("z", 50),
			wantBefore: strings.Repeat("y", 50),
			wantAfter:  strings.Repeat("z", 50),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sections := []models.Section{{ID: "s", Title: "S", Content: []models.ContentItem{models.Text{Text: tt.text}}}}
			got := Search(sections, "match")
			require.Len(t, got, 1)
			assert.Equal(t, "MATCH", got[0].MatchText)
			assert.Equal(t, tt.wantBefore, got[0].ContextBefore)
			assert.Equal(t, tt.wantAfter, got[0].ContextAfter)
		})
	}
}

func TestSearch_multiByteText(t *testing.T) {
	sections := []models.Section{{ID: "s", Title: "S", Content: []models.ContentItem{
		models.Text{Text: strings.Repeat("é", 55) + "Ünterlagen" + strings.Repeat("ß", 55)},
	}}}
	got := Search(sections, "ünterlagen")
	require.Len(t, got, 1)
	assert.Equal(t, "Ünterlagen", got[0].MatchText)
	assert.Equal(t, "..."+strings.Repeat("é", 50), got[0].ContextBefore)
	assert.Equal(t, strings.Repeat("ß", 50)+"...", got[0].ContextAfter)
}

func TestSearchWindow_customWidth(t *testing.T) {
	got := SearchWindow(verifySection(), "command", 4)
	require.Len(t, got, 1)
	assert.Equal(t, "...ify ", got[0].ContextBefore)
	assert.Equal(t, " in ...", got[0].ContextAfter)
}

func TestLeadingContext(t *testing.T) {
	r := leadingContext("short text", 50)
	assert.Equal(t, "short text", r.ContextAfter)
	assert.Empty(t, r.MatchText)

	r = leadingContext(strings.Repeat("a", 120), 50)
	assert.Equal(t, strings.Repeat("a", 100)+"...", r.ContextAfter)
}

func BenchmarkSearch(b *testing.B) {
	var sections []models.Section
	for i := 0; i < 20; i++ {
		content := make([]models.ContentItem, 0, 30)
		for j := 0; j < 30; j++ {
			content = append(content, models.Text{Text: strings.Repeat("containment procedure for anomalous objects ", 5)})
		}
		sections = append(sections, models.Section{ID: "s", Title: "S", Content: content})
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Search(sections, "anomalous")
	}
}
