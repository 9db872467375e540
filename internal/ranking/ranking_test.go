package ranking

import (
	"testing"

	"github.com/mcd-community/handbook/internal/models"
)

func TestAnalyze(t *testing.T) {
	q := Analyze(`Shift "event report" logs,`)
	if q.Literal != "shift event report logs," {
		t.Errorf("Literal = %q", q.Literal)
	}
	if len(q.Phrases) != 1 || q.Phrases[0] != "event report" {
		t.Errorf("Phrases = %v", q.Phrases)
	}
	if len(q.Terms) != 2 || q.Terms[0] != "shift" || q.Terms[1] != "logs" {
		t.Errorf("Terms = %v", q.Terms)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		query string
		text  string
		want  MatchType
	}{
		{"literal", "shift log", "Post a Shift Log after every shift.", MatchTypePhrase},
		{"quoted phrase", `"event report" format`, "File an event report.", MatchTypePhrase},
		{"all words", "log shift", "Post a shift log.", MatchTypeAllWords},
		{"partial", "shift report", "Post a shift log.", MatchTypePartial},
		{"none", "director", "Post a shift log.", MatchTypeNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(Analyze(tt.query), tt.text); got != tt.want {
				t.Errorf("Classify(%q, %q) = %v, want %v", tt.query, tt.text, got, tt.want)
			}
		})
	}
}

func TestRank(t *testing.T) {
	r := NewRanker(nil)
	candidates := []Candidate{
		{Result: models.SearchResult{SectionID: "a", Score: 1.0}, Text: "the shift"},
		{Result: models.SearchResult{SectionID: "b", Score: 0.9}, Text: "post a shift log here"},
		{Result: models.SearchResult{SectionID: "c", Score: 0.8}, Text: "Shift log", Heading: true},
		{Result: models.SearchResult{SectionID: "d", Score: 1.0}, Text: "nothing"},
	}
	got := r.Rank("shift log", candidates)
	order := []string{got[0].SectionID, got[1].SectionID, got[2].SectionID, got[3].SectionID}
	want := []string{"c", "b", "a", "d"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
	if got[0].Score <= got[1].Score {
		t.Errorf("heading phrase score %f should beat %f", got[0].Score, got[1].Score)
	}
	if candidates[0].Result.Score != 1.0 {
		t.Error("Rank must not modify its input")
	}
}

func TestRank_StableTies(t *testing.T) {
	r := NewRanker(nil)
	got := r.Rank("x", []Candidate{
		{Result: models.SearchResult{SectionID: "first", Score: 1}, Text: "x"},
		{Result: models.SearchResult{SectionID: "second", Score: 1}, Text: "x"},
	})
	if got[0].SectionID != "first" {
		t.Errorf("equal scores should keep input order, got %v", got)
	}
}

func TestMatchTypeString(t *testing.T) {
	if MatchTypePhrase.String() != "phrase" || MatchType(99).String() != "unknown" {
		t.Error("unexpected MatchType strings")
	}
}
