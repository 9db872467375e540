package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/mcd-community/handbook/internal/checklist"
	"github.com/mcd-community/handbook/internal/config"
	"github.com/mcd-community/handbook/internal/handbook"
	"github.com/mcd-community/handbook/internal/keyword"
	"github.com/mcd-community/handbook/internal/models"
	"github.com/mcd-community/handbook/internal/search"
	"github.com/mcd-community/handbook/internal/session"
	"github.com/mcd-community/handbook/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Storage.DatabasePath = filepath.Join(dir, "progress.db")

	content, err := handbook.NewStore("")
	if err != nil {
		t.Fatal(err)
	}
	kwIdx, err := keyword.NewBleveIndex("")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = kwIdx.Close() })
	engine := search.NewEngine(content, kwIdx, &cfg.Search)
	if err := engine.Reindex(context.Background()); err != nil {
		t.Fatal(err)
	}
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	sessions := session.NewManager(content)
	return NewServer(engine, content, sessions, checklist.NewService(content, store), store, cfg, zap.NewNop(), "test")
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	r := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func TestHandleHealth(t *testing.T) {
	w := do(t, newTestServer(t).Handler(), http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Errorf("status: got %d", w.Code)
	}
}

func TestHandleStatus(t *testing.T) {
	w := do(t, newTestServer(t).Handler(), http.MethodGet, "/api/v1/status", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d body %s", w.Code, w.Body.String())
	}
	var out map[string]interface{}
	decode(t, w, &out)
	if out["content_source"] != "built-in" {
		t.Errorf("content_source = %v", out["content_source"])
	}
	if n, _ := out["indexed_items"].(float64); n == 0 {
		t.Error("expected indexed items")
	}
}

func TestHandleSections(t *testing.T) {
	h := newTestServer(t).Handler()
	w := do(t, h, http.MethodGet, "/api/v1/sections", nil)
	var list struct {
		Sections []sectionSummary `json:"sections"`
	}
	decode(t, w, &list)
	if len(list.Sections) == 0 || list.Sections[0].ID != "welcome" {
		t.Errorf("unexpected sections %+v", list.Sections)
	}

	w = do(t, h, http.MethodGet, "/api/v1/sections/verification?highlight=verify", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var out struct {
		Section    models.Section  `json:"section"`
		Highlights []itemHighlight `json:"highlights"`
	}
	decode(t, w, &out)
	if out.Section.ID != "verification" {
		t.Errorf("section id = %q", out.Section.ID)
	}
	matched := 0
	for _, hl := range out.Highlights {
		matched += search.MatchedCount(hl.Fragments)
	}
	if matched == 0 {
		t.Error("expected highlighted fragments")
	}

	w = do(t, h, http.MethodGet, "/api/v1/sections/nope", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown section: got %d", w.Code)
	}
}

func TestHandleSearch(t *testing.T) {
	h := newTestServer(t).Handler()
	w := do(t, h, http.MethodPost, "/api/v1/search", models.SearchQuery{Query: "verify"})
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d body %s", w.Code, w.Body.String())
	}
	var resp models.SearchResponse
	decode(t, w, &resp)
	if resp.Total == 0 || resp.Mode != models.ModeSubstring {
		t.Errorf("unexpected response %+v", resp)
	}

	w = do(t, h, http.MethodPost, "/api/v1/search", models.SearchQuery{Query: "director", Mode: models.ModeRanked})
	if w.Code != http.StatusOK {
		t.Fatalf("ranked status: got %d body %s", w.Code, w.Body.String())
	}
	decode(t, w, &resp)
	if len(resp.Results) == 0 || resp.Results[0].Score == 0 {
		t.Errorf("expected scored ranked results, got %+v", resp.Results)
	}

	w = do(t, h, http.MethodPost, "/api/v1/search", models.SearchQuery{Query: "   "})
	decode(t, w, &resp)
	if w.Code != http.StatusOK || resp.Total != 0 {
		t.Errorf("blank query: code %d total %d", w.Code, resp.Total)
	}

	w = do(t, h, http.MethodPost, "/api/v1/search", "{bad")
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad body: got %d", w.Code)
	}
	w = do(t, h, http.MethodPost, "/api/v1/search", models.SearchQuery{Query: "x", Mode: "semantic"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad mode: got %d", w.Code)
	}
}

func TestHandleHighlight(t *testing.T) {
	w := do(t, newTestServer(t).Handler(), http.MethodPost, "/api/v1/highlight", highlightRequest{Text: "a.b.c", Term: "."})
	var out struct {
		Fragments []models.Fragment `json:"fragments"`
		Matched   int               `json:"matched"`
	}
	decode(t, w, &out)
	if len(out.Fragments) != 5 || out.Matched != 2 {
		t.Errorf("unexpected fragments %+v", out)
	}
}

func TestSessionLifecycle(t *testing.T) {
	h := newTestServer(t).Handler()

	w := do(t, h, http.MethodPost, "/api/v1/sessions", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: got %d body %s", w.Code, w.Body.String())
	}
	var snap session.Snapshot
	decode(t, w, &snap)
	if snap.ID == "" || snap.Cursor != session.NoCursor {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	base := "/api/v1/sessions/" + snap.ID

	w = do(t, h, http.MethodPut, base+"/query", queryRequest{Query: "verif"})
	decode(t, w, &snap)
	n := len(snap.Results)
	if n < 2 {
		t.Fatalf("expected several results, got %d", n)
	}

	w = do(t, h, http.MethodPost, base+"/previous", nil)
	decode(t, w, &snap)
	if snap.Cursor != n-1 {
		t.Errorf("previous from none: cursor %d, want %d", snap.Cursor, n-1)
	}
	w = do(t, h, http.MethodPost, base+"/next", nil)
	decode(t, w, &snap)
	if snap.Cursor != 0 || snap.Active == nil {
		t.Errorf("next wraps to 0: cursor %d", snap.Cursor)
	}

	w = do(t, h, http.MethodPost, base+"/navigate/1", nil)
	decode(t, w, &snap)
	if snap.Cursor != 1 {
		t.Errorf("navigate: cursor %d", snap.Cursor)
	}
	w = do(t, h, http.MethodPost, base+"/navigate/999", nil)
	decode(t, w, &snap)
	if w.Code != http.StatusOK || snap.Cursor != 1 {
		t.Errorf("out of range navigate should be a no-op: code %d cursor %d", w.Code, snap.Cursor)
	}
	w = do(t, h, http.MethodPost, base+"/navigate/abc", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("non-integer index: got %d", w.Code)
	}

	w = do(t, h, http.MethodDelete, base+"/query", nil)
	decode(t, w, &snap)
	if snap.State != session.Idle || len(snap.Results) != 0 {
		t.Errorf("clear: %+v", snap)
	}

	w = do(t, h, http.MethodDelete, base, nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("delete: got %d", w.Code)
	}
	w = do(t, h, http.MethodPost, base+"/next", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("deleted session: got %d", w.Code)
	}
}

func TestSessionStateJSON(t *testing.T) {
	h := newTestServer(t).Handler()
	w := do(t, h, http.MethodPost, "/api/v1/sessions", queryRequest{Query: "zzzz-nothing"})
	if !strings.Contains(w.Body.String(), `"state":"searching"`) {
		t.Errorf("expected searching state in %s", w.Body.String())
	}
	var snap session.Snapshot
	decode(t, w, &snap)
	w = do(t, h, http.MethodPost, "/api/v1/sessions/"+snap.ID+"/next", nil)
	decode(t, w, &snap)
	if snap.Cursor != session.NoCursor {
		t.Errorf("next with no results should be a no-op, cursor %d", snap.Cursor)
	}
}

func TestChecklistEndpoints(t *testing.T) {
	h := newTestServer(t).Handler()

	w := do(t, h, http.MethodPut, "/api/v1/checklist/p1/verify", map[string]bool{"completed": true})
	if w.Code != http.StatusOK {
		t.Fatalf("set: got %d body %s", w.Code, w.Body.String())
	}
	var resp checklistResponse
	decode(t, w, &resp)
	done := 0
	for _, item := range resp.Items {
		if item.Completed {
			done++
		}
	}
	if done != 1 {
		t.Errorf("completed = %d, want 1", done)
	}

	w = do(t, h, http.MethodPut, "/api/v1/checklist/p1/nope", map[string]bool{"completed": true})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown item: got %d", w.Code)
	}
	w = do(t, h, http.MethodPut, "/api/v1/checklist/p1/verify", map[string]string{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing completed: got %d", w.Code)
	}

	w = do(t, h, http.MethodGet, "/api/v1/checklist/p1/export", nil)
	var legacy []models.ChecklistItem
	decode(t, w, &legacy)
	if len(legacy) == 0 {
		t.Error("expected exported items")
	}

	w = do(t, h, http.MethodDelete, "/api/v1/checklist/p1", nil)
	decode(t, w, &resp)
	for _, item := range resp.Items {
		if item.Completed {
			t.Errorf("item %s still completed after reset", item.ID)
		}
	}

	w = do(t, h, http.MethodPost, "/api/v1/checklist/p2/import", `[{"id":"first-event","completed":true}]`)
	var imported struct {
		Imported int `json:"imported"`
	}
	decode(t, w, &imported)
	if imported.Imported != 1 {
		t.Errorf("imported = %d", imported.Imported)
	}
	w = do(t, h, http.MethodPost, "/api/v1/checklist/p2/import", `garbage`)
	if w.Code != http.StatusOK {
		t.Errorf("garbage import should be treated as empty: got %d", w.Code)
	}
}

func TestWidgetEndpoints(t *testing.T) {
	h := newTestServer(t).Handler()

	w := do(t, h, http.MethodGet, "/api/v1/ranks", nil)
	var ranks struct {
		Ranks    []models.Rank `json:"ranks"`
		Branches []string      `json:"branches"`
	}
	decode(t, w, &ranks)
	if len(ranks.Ranks) == 0 || len(ranks.Branches) == 0 {
		t.Errorf("unexpected ranks %+v", ranks)
	}

	w = do(t, h, http.MethodGet, "/api/v1/ranks/director", nil)
	var rank models.Rank
	decode(t, w, &rank)
	if rank.ID != "director" || rank.Title == "" {
		t.Errorf("unexpected rank %+v", rank)
	}
	w = do(t, h, http.MethodGet, "/api/v1/ranks/intern", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown rank: got %d, want 404", w.Code)
	}

	w = do(t, h, http.MethodPost, "/api/v1/formats/shift-log", formatRequest{Values: map[string]string{
		"username": "Agent", "rank": "Broker", "duration": "45 minutes",
	}})
	var format map[string]string
	decode(t, w, &format)
	if !strings.Contains(format["text"], "Username: Agent") {
		t.Errorf("unexpected format text %q", format["text"])
	}

	w = do(t, h, http.MethodPost, "/api/v1/formats/shift-log", formatRequest{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing fields: got %d", w.Code)
	}
	w = do(t, h, http.MethodPost, "/api/v1/formats/nope", formatRequest{})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown format: got %d", w.Code)
	}

	w = do(t, h, http.MethodPost, "/api/v1/points", pointsRequest{Counts: map[string]int{"event": 2, "host": 1}})
	var points struct {
		Total int `json:"total"`
	}
	decode(t, w, &points)
	if points.Total != 9 {
		t.Errorf("total = %d, want 9", points.Total)
	}
}

func TestHandleExportWorkbook(t *testing.T) {
	w := do(t, newTestServer(t).Handler(), http.MethodGet, "/api/v1/export.xlsx?profile=p1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	f, err := excelize.OpenReader(w.Body)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if sheets[len(sheets)-1] != "Checklist" {
		t.Errorf("sheets = %v", sheets)
	}
}
