// Package cli provides output helpers for the handbook command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mcd-community/handbook/internal/checklist"
	"github.com/mcd-community/handbook/internal/models"
	"github.com/mcd-community/handbook/internal/search"
	"github.com/mcd-community/handbook/pkg/utils"
)

// SearchOutputFormat is the format for search result output.
type SearchOutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText SearchOutputFormat = "text"
	// OutputCompact prints one line per result.
	OutputCompact SearchOutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON SearchOutputFormat = "json"
)

var (
	matchStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E8C872"))
	sectionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7AA2F7"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (SearchOutputFormat, error) {
	switch f := SearchOutputFormat(strings.ToLower(s)); f {
	case OutputText, OutputCompact, OutputJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, compact or json)", s)
	}
}

// WriteSearchResults writes search results to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format SearchOutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	case OutputCompact:
		for _, r := range response.Results {
			fmt.Fprintf(w, "%s#%d\t%s\n", r.SectionID, r.ContentIndex,
				utils.OneLine(r.ContextBefore+r.MatchText+r.ContextAfter))
		}
		return nil
	default:
		writeSearchResultsText(w, response)
		return nil
	}
}

func writeSearchResultsText(w io.Writer, response *models.SearchResponse) {
	shown := len(response.Results)
	fmt.Fprintf(w, "\nFound %d results for %q in %dms", response.Total, response.Query, response.QueryTime)
	if shown < response.Total {
		fmt.Fprintf(w, " (showing %d)", shown)
	}
	fmt.Fprint(w, "\n\n")
	if response.Total == 0 && response.Suggestion != "" {
		fmt.Fprintf(w, "Did you mean %q?\n\n", response.Suggestion)
	}
	for i, result := range response.Results {
		writeOneResult(w, i+1, result, response.Query)
	}
}

func writeOneResult(w io.Writer, n int, result models.SearchResult, query string) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	header := fmt.Sprintf("%d. %s", n, sectionStyle.Render(result.SectionTitle))
	header += dimStyle.Render(fmt.Sprintf("  [%s #%d]", result.SectionID, result.ContentIndex))
	if result.Score > 0 {
		header += dimStyle.Render(fmt.Sprintf("  score %.4f", result.Score))
	}
	fmt.Fprintln(w, header)
	fmt.Fprintf(w, "\n%s\n\n", HighlightLine(result.ContextBefore+result.MatchText+result.ContextAfter, query))
}

// HighlightLine renders text on one line with every occurrence of term styled.
func HighlightLine(text, term string) string {
	var b strings.Builder
	for _, f := range search.Highlight(utils.OneLine(text), term) {
		if f.Matched {
			b.WriteString(matchStyle.Render(f.Text))
		} else {
			b.WriteString(f.Text)
		}
	}
	return b.String()
}

// WriteChecklist writes a checklist with per-category progress.
func WriteChecklist(w io.Writer, profile string, items []models.ChecklistItem) {
	fmt.Fprintf(w, "Checklist for %s\n", profile)
	summaries := checklist.Summary(items)
	for _, sum := range summaries {
		fmt.Fprintf(w, "\n%s (%d/%d)\n", sectionStyle.Render(sum.Category), sum.Completed, sum.Total)
		for _, item := range items {
			if item.Category != sum.Category {
				continue
			}
			mark := "[ ]"
			if item.Completed {
				mark = "[x]"
			}
			fmt.Fprintf(w, "  %s %-16s %s\n", mark, item.ID, item.Title)
			if item.Description != "" {
				fmt.Fprintf(w, "      %s\n", dimStyle.Render(utils.Truncate(item.Description, 70)))
			}
		}
	}
}
