// Package render turns handbook sections into markdown and terminal output.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/mcd-community/handbook/internal/models"
	"github.com/mcd-community/handbook/internal/search"
)

var calloutIcons = map[string]string{
	"info":    "ℹ",
	"warning": "⚠",
	"danger":  "⛔",
	"tip":     "💡",
}

// SectionMarkdown renders a section as markdown. Occurrences of term are
// emphasized in prose; code blocks are left untouched.
func SectionMarkdown(section models.Section, term string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", emphasize(section.Title, term))
	for _, item := range section.Content {
		writeItem(&b, item, term)
	}
	return b.String()
}

func writeItem(b *strings.Builder, item models.ContentItem, term string) {
	switch it := item.(type) {
	case models.Text:
		fmt.Fprintf(b, "%s\n\n", emphasize(it.Text, term))
	case models.Heading:
		level := it.Level
		if level < 2 || level > 6 {
			level = 2
		}
		fmt.Fprintf(b, "%s %s\n\n", strings.Repeat("#", level), emphasize(it.Text, term))
	case models.List:
		for i, entry := range it.Items {
			marker := "-"
			if it.Ordered {
				marker = fmt.Sprintf("%d.", i+1)
			}
			fmt.Fprintf(b, "%s %s\n", marker, emphasize(entry, term))
		}
		b.WriteString("\n")
	case models.Code:
		fmt.Fprintf(b, "```%s\n%s\n```\n\n", it.Language, it.Code)
	case models.Callout:
		icon := calloutIcons[it.Variant]
		if icon == "" {
			icon = calloutIcons["info"]
		}
		if it.Title != "" {
			fmt.Fprintf(b, "> %s **%s**\n>\n", icon, it.Title)
			fmt.Fprintf(b, "> %s\n\n", emphasize(it.Text, term))
		} else {
			fmt.Fprintf(b, "> %s %s\n\n", icon, emphasize(it.Text, term))
		}
	case models.Image:
		fmt.Fprintf(b, "![%s](%s)\n", it.Alt, it.Src)
		if it.Caption != "" {
			fmt.Fprintf(b, "*%s*\n", it.Caption)
		}
		b.WriteString("\n")
	case models.Widget:
		fmt.Fprintf(b, "*[interactive: %s]*\n\n", it.Name)
	}
}

func emphasize(text, term string) string {
	frags := search.Highlight(text, term)
	if search.MatchedCount(frags) == 0 {
		return text
	}
	var b strings.Builder
	for _, f := range frags {
		if f.Matched {
			b.WriteString("**" + f.Text + "**")
		} else {
			b.WriteString(f.Text)
		}
	}
	return b.String()
}

// Terminal renders markdown for a terminal of the given width.
func Terminal(markdown string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create renderer: %w", err)
	}
	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}
