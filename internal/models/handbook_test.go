package models

import (
	"encoding/json"
	"testing"
)

func TestRawItem_ItemRejectsUnknownType(t *testing.T) {
	if _, err := (RawItem{Type: "video"}).Item(); err == nil {
		t.Error("expected error for unknown content type")
	}
}

func TestSection_JSONCarriesTypeTag(t *testing.T) {
	s := Section{ID: "s1", Title: "Verify", Content: []ContentItem{
		Text{Text: "hello"},
		List{Items: []string{"a", "b"}},
		Widget{Name: "checklist"},
	}}
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	var back Section
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if len(back.Content) != 3 {
		t.Fatalf("content len = %d", len(back.Content))
	}
	if _, ok := back.Content[1].(List); !ok {
		t.Errorf("item 1 = %T, want List", back.Content[1])
	}
	if w, ok := back.Content[2].(Widget); !ok || w.Name != "checklist" {
		t.Errorf("item 2 = %#v", back.Content[2])
	}
}

func TestHandbook_Section(t *testing.T) {
	h := &Handbook{Sections: []Section{{ID: "a"}, {ID: "b", Title: "B"}}}
	s, ok := h.Section("b")
	if !ok || s.Title != "B" {
		t.Errorf("Section(b) = %+v, %v", s, ok)
	}
	if _, ok := h.Section("zzz"); ok {
		t.Error("expected missing section")
	}
}
