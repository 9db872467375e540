// Package widgets implements the handbook's interactive tools: the Discord
// format generator, the point calculator and the rank browser.
package widgets

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/mcd-community/handbook/internal/models"
)

// ErrUnknownTemplate is returned for a format name that is not defined.
var ErrUnknownTemplate = errors.New("unknown format template")

// MissingFieldsError lists required fields that were left blank.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

var placeholder = regexp.MustCompile(`\{([a-zA-Z0-9_-]+)\}`)

// FindTemplate returns the template named name.
func FindTemplate(templates []models.FormatTemplate, name string) (models.FormatTemplate, error) {
	for _, t := range templates {
		if t.Name == name {
			return t, nil
		}
	}
	return models.FormatTemplate{}, fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
}

// Generate fills the placeholders of the named template. Placeholders with
// no value are left empty.
func Generate(templates []models.FormatTemplate, name string, values map[string]string) (string, error) {
	tmpl, err := FindTemplate(templates, name)
	if err != nil {
		return "", err
	}
	var missing []string
	for _, f := range tmpl.Fields {
		if f.Required && strings.TrimSpace(values[f.Name]) == "" {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 {
		return "", &MissingFieldsError{Fields: missing}
	}
	return placeholder.ReplaceAllStringFunc(tmpl.Template, func(m string) string {
		return strings.TrimSpace(values[m[1:len(m)-1]])
	}), nil
}
