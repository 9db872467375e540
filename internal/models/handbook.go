// Package models defines the handbook document model, search records and checklist records.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ContentKind names the kind of a content item.
type ContentKind string

const (
	KindText    ContentKind = "text"
	KindHeading ContentKind = "heading"
	KindList    ContentKind = "list"
	KindCode    ContentKind = "code"
	KindCallout ContentKind = "callout"
	KindImage   ContentKind = "image"
	KindWidget  ContentKind = "widget"
)

// ContentItem is one typed block within a section. The concrete kinds are
// Text, Heading, List, Code, Callout, Image and Widget; each carries only
// the fields of its own kind.
type ContentItem interface {
	Kind() ContentKind
	contentItem()
}

// Text is a paragraph.
type Text struct {
	Text string
}

// Heading is a sub-heading inside a section. Level is 2..6; zero means 2.
type Heading struct {
	Text  string
	Level int
}

// List is a bulleted or numbered list.
type List struct {
	Items   []string
	Ordered bool
}

// Code is a code or command sample.
type Code struct {
	Code     string
	Language string
}

// Callout is a highlighted note. Variant is one of info, warning, danger, tip.
type Callout struct {
	Text    string
	Title   string
	Variant string
}

// Image is a picture reference. Images are never searchable.
type Image struct {
	Src     string
	Alt     string
	Caption string
}

// Widget is a placeholder for an interactive tool (format generator,
// point calculator, checklist, rank browser). Widgets are never searchable.
type Widget struct {
	Name string
}

func (Text) Kind() ContentKind    { return KindText }
func (Heading) Kind() ContentKind { return KindHeading }
func (List) Kind() ContentKind    { return KindList }
func (Code) Kind() ContentKind    { return KindCode }
func (Callout) Kind() ContentKind { return KindCallout }
func (Image) Kind() ContentKind   { return KindImage }
func (Widget) Kind() ContentKind  { return KindWidget }

func (Text) contentItem()    {}
func (Heading) contentItem() {}
func (List) contentItem()    {}
func (Code) contentItem()    {}
func (Callout) contentItem() {}
func (Image) contentItem()   {}
func (Widget) contentItem()  {}

// RawItem is the flat wire envelope of a ContentItem, keyed by Type.
// It is only used for encoding and decoding; code working with content
// should switch on the concrete ContentItem types instead.
type RawItem struct {
	Type     ContentKind `json:"type"`
	Text     string      `json:"text,omitempty"`
	Level    int         `json:"level,omitempty"`
	Items    []string    `json:"items,omitempty"`
	Ordered  bool        `json:"ordered,omitempty"`
	Code     string      `json:"code,omitempty"`
	Language string      `json:"language,omitempty"`
	Title    string      `json:"title,omitempty"`
	Variant  string      `json:"variant,omitempty"`
	Src      string      `json:"src,omitempty"`
	Alt      string      `json:"alt,omitempty"`
	Caption  string      `json:"caption,omitempty"`
	Widget   string      `json:"widget,omitempty"`
}

// Item converts the envelope into its concrete ContentItem.
func (r RawItem) Item() (ContentItem, error) {
	switch r.Type {
	case KindText:
		return Text{Text: r.Text}, nil
	case KindHeading:
		return Heading{Text: r.Text, Level: r.Level}, nil
	case KindList:
		return List{Items: append([]string(nil), r.Items...), Ordered: r.Ordered}, nil
	case KindCode:
		return Code{Code: r.Code, Language: r.Language}, nil
	case KindCallout:
		return Callout{Text: r.Text, Title: r.Title, Variant: r.Variant}, nil
	case KindImage:
		return Image{Src: r.Src, Alt: r.Alt, Caption: r.Caption}, nil
	case KindWidget:
		return Widget{Name: r.Widget}, nil
	default:
		return nil, fmt.Errorf("unknown content type %q", r.Type)
	}
}

// Raw converts a ContentItem into its wire envelope.
func Raw(item ContentItem) RawItem {
	switch it := item.(type) {
	case Text:
		return RawItem{Type: KindText, Text: it.Text}
	case Heading:
		return RawItem{Type: KindHeading, Text: it.Text, Level: it.Level}
	case List:
		return RawItem{Type: KindList, Items: it.Items, Ordered: it.Ordered}
	case Code:
		return RawItem{Type: KindCode, Code: it.Code, Language: it.Language}
	case Callout:
		return RawItem{Type: KindCallout, Text: it.Text, Title: it.Title, Variant: it.Variant}
	case Image:
		return RawItem{Type: KindImage, Src: it.Src, Alt: it.Alt, Caption: it.Caption}
	case Widget:
		return RawItem{Type: KindWidget, Widget: it.Name}
	default:
		return RawItem{}
	}
}

// Section is a top-level, independently collapsible unit of handbook content.
type Section struct {
	ID      string
	Title   string
	Content []ContentItem
}

type sectionJSON struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Content []RawItem `json:"content"`
}

// MarshalJSON encodes content items through their RawItem envelope.
func (s Section) MarshalJSON() ([]byte, error) {
	out := sectionJSON{ID: s.ID, Title: s.Title, Content: make([]RawItem, len(s.Content))}
	for i, item := range s.Content {
		out.Content[i] = Raw(item)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes content items from their RawItem envelope.
func (s *Section) UnmarshalJSON(data []byte) error {
	var in sectionJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	content := make([]ContentItem, len(in.Content))
	for i, raw := range in.Content {
		item, err := raw.Item()
		if err != nil {
			return fmt.Errorf("section %q item %d: %w", in.ID, i, err)
		}
		content[i] = item
	}
	*s = Section{ID: in.ID, Title: in.Title, Content: content}
	return nil
}

// Handbook is the full content set: the ordered sections plus the static
// definitions backing the interactive widgets.
type Handbook struct {
	Title      string           `json:"title"`
	Version    string           `json:"version,omitempty"`
	Sections   []Section        `json:"sections"`
	Checklist  []ChecklistItem  `json:"checklist,omitempty"`
	Ranks      []Rank           `json:"ranks,omitempty"`
	Formats    []FormatTemplate `json:"formats,omitempty"`
	Activities []Activity       `json:"activities,omitempty"`
}

// Section returns the section with the given id.
func (h *Handbook) Section(id string) (Section, bool) {
	for _, s := range h.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// SearchableText returns the text a content item is searched by: the text of
// text, heading and callout items, list entries joined by one space, and raw
// code. Images, widgets and unknown kinds are not searchable.
func SearchableText(item ContentItem) (string, bool) {
	switch it := item.(type) {
	case Text:
		return it.Text, true
	case Heading:
		return it.Text, true
	case Callout:
		return it.Text, true
	case List:
		return strings.Join(it.Items, " "), true
	case Code:
		return it.Code, true
	default:
		return "", false
	}
}
