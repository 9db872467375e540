// Package export writes the handbook to an Excel workbook.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mcd-community/handbook/internal/models"
)

const maxSheetName = 31

var sheetNameReplacer = strings.NewReplacer(
	":", " ", "\\", " ", "/", " ", "?", " ", "*", " ", "[", "(", "]", ")",
)

// sheetName makes a valid, unique sheet name from a section title.
func sheetName(title string, used map[string]bool) string {
	name := strings.TrimSpace(sheetNameReplacer.Replace(title))
	name = strings.Trim(name, "'")
	if name == "" {
		name = "Section"
	}
	name = truncateRunes(name, maxSheetName)
	base := name
	for i := 2; used[strings.ToLower(name)]; i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		name = truncateRunes(base, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Workbook builds a workbook with one sheet per section listing its content
// items, followed by a Checklist sheet when checklist is not nil.
func Workbook(hb *models.Handbook, checklist []models.ChecklistItem) (*excelize.File, error) {
	f := excelize.NewFile()
	const defaultSheet = "Sheet1"

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	used := map[string]bool{}
	for _, section := range hb.Sections {
		name := sheetName(section.Title, used)
		if _, err := f.NewSheet(name); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to add sheet for %s: %w", section.ID, err)
		}
		rows := [][]any{{"#", "Type", "Text", "Detail"}}
		for i, item := range section.Content {
			text, _ := models.SearchableText(item)
			rows = append(rows, []any{i, string(item.Kind()), text, itemDetail(item)})
		}
		if err := writeRows(f, name, rows, header); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	if checklist != nil {
		name := sheetName("Checklist", used)
		if _, err := f.NewSheet(name); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to add checklist sheet: %w", err)
		}
		rows := [][]any{{"ID", "Title", "Category", "Completed", "Description"}}
		for _, item := range checklist {
			rows = append(rows, []any{item.ID, item.Title, item.Category, item.Completed, item.Description})
		}
		if err := writeRows(f, name, rows, header); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	if len(used) > 0 && !used[strings.ToLower(defaultSheet)] {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to remove default sheet: %w", err)
		}
	}
	return f, nil
}

func itemDetail(item models.ContentItem) string {
	switch it := item.(type) {
	case models.Heading:
		return fmt.Sprintf("level %d", it.Level)
	case models.Code:
		return it.Language
	case models.Callout:
		return strings.TrimSpace(it.Variant + " " + it.Title)
	case models.Image:
		return it.Src
	case models.Widget:
		return it.Name
	case models.List:
		if it.Ordered {
			return "ordered"
		}
	}
	return ""
}

func writeRows(f *excelize.File, sheet string, rows [][]any, header int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+1, sheet, err)
		}
	}
	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, header)
}

// Write builds the workbook and writes it to w.
func Write(w io.Writer, hb *models.Handbook, checklist []models.ChecklistItem) error {
	f, err := Workbook(hb, checklist)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
