// Package handbook loads, validates and serves the handbook content.
package handbook

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/mcd-community/handbook/internal/models"
)

//go:embed content/handbook.yaml
var defaultContent []byte

//go:embed schema.json
var schemaJSON []byte

// Format is a content file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the content format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported content file extension %q", filepath.Ext(path))
	}
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func contentSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("handbook.schema.json", bytes.NewReader(schemaJSON)); err != nil {
			compileErr = fmt.Errorf("failed to load content schema: %w", err)
			return
		}
		compiled, compileErr = compiler.Compile("handbook.schema.json")
		if compileErr != nil {
			compileErr = fmt.Errorf("failed to compile content schema: %w", compileErr)
		}
	})
	return compiled, compileErr
}

// Parse decodes content in the given format, validates it against the content
// schema and returns the handbook. Duplicate ids are rejected.
func Parse(data []byte, format Format) (*models.Handbook, error) {
	var generic any
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &generic)
	case FormatTOML:
		var m map[string]any
		err = toml.Unmarshal(data, &m)
		generic = m
	case FormatJSON:
		err = json.Unmarshal(data, &generic)
	default:
		return nil, fmt.Errorf("unsupported content format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s content: %w", format, err)
	}

	// normalize through JSON so every format validates and decodes the same way
	normalized, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize content: %w", err)
	}
	var doc any
	if err := json.Unmarshal(normalized, &doc); err != nil {
		return nil, fmt.Errorf("failed to normalize content: %w", err)
	}

	schema, err := contentSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("content does not match schema: %w", err)
	}

	var hb models.Handbook
	if err := json.Unmarshal(normalized, &hb); err != nil {
		return nil, fmt.Errorf("failed to decode content: %w", err)
	}
	if err := checkUnique(&hb); err != nil {
		return nil, err
	}
	return &hb, nil
}

// Default returns the handbook built into the binary.
func Default() (*models.Handbook, error) {
	return Parse(defaultContent, FormatYAML)
}

func checkUnique(hb *models.Handbook) error {
	seen := make(map[string]struct{}, len(hb.Sections))
	for _, s := range hb.Sections {
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("duplicate section id %q", s.ID)
		}
		seen[s.ID] = struct{}{}
	}
	items := make(map[string]struct{}, len(hb.Checklist))
	for _, c := range hb.Checklist {
		if _, dup := items[c.ID]; dup {
			return fmt.Errorf("duplicate checklist item id %q", c.ID)
		}
		items[c.ID] = struct{}{}
	}
	formats := make(map[string]struct{}, len(hb.Formats))
	for _, f := range hb.Formats {
		if _, dup := formats[f.Name]; dup {
			return fmt.Errorf("duplicate format template %q", f.Name)
		}
		formats[f.Name] = struct{}{}
	}
	return nil
}
