package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mcd-community/handbook/internal/checklist"
	"github.com/mcd-community/handbook/internal/export"
	"github.com/mcd-community/handbook/internal/handbook"
	"github.com/mcd-community/handbook/internal/models"
	"github.com/mcd-community/handbook/internal/search"
	"github.com/mcd-community/handbook/internal/storage"
	"github.com/mcd-community/handbook/internal/widgets"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	hb := s.content.Handbook()
	resp := map[string]interface{}{
		"version":        s.version,
		"handbook":       hb.Title,
		"content_source": contentSource(s.content.Path()),
		"sections":       len(hb.Sections),
		"indexed_items":  s.engine.IndexedItems(),
		"sessions":       s.sessions.Len(),
		"uptime_seconds": int64(time.Since(s.startedAt).Seconds()),
	}
	profiles, err := s.progress.CountProfiles(r.Context())
	if err != nil {
		s.logger.Error("status: count profiles failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp["checklist_profiles"] = profiles

	paths := append(storage.DatabaseFiles(s.config.Storage.DatabasePath), s.config.Storage.BleveIndexPath)
	if diskBytes, err := storage.DiskUsageBytes(paths...); err == nil {
		resp["disk_usage_bytes"] = diskBytes
	}
	resp["config"] = map[string]interface{}{
		"default_mode":     s.config.Search.DefaultMode,
		"context_chars":    s.config.Search.ContextChars,
		"session_ttl":      s.config.Session.TTL.String(),
		"content_watch":    s.config.Content.Watch,
		"database_path":    s.config.Storage.DatabasePath,
		"bleve_index_path": s.config.Storage.BleveIndexPath,
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func contentSource(path string) string {
	if path == "" {
		return "built-in"
	}
	return path
}

type sectionSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Items int    `json:"items"`
}

func (s *Server) handleListSections(w http.ResponseWriter, r *http.Request) {
	sections := s.content.Sections()
	out := make([]sectionSummary, len(sections))
	for i, sec := range sections {
		out[i] = sectionSummary{ID: sec.ID, Title: sec.Title, Items: len(sec.Content)}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"sections": out})
}

type itemHighlight struct {
	ContentIndex int               `json:"content_index"`
	Fragments    []models.Fragment `json:"fragments"`
}

type sectionResponse struct {
	Section    models.Section    `json:"section"`
	Title      []models.Fragment `json:"title_fragments,omitempty"`
	Highlights []itemHighlight   `json:"highlights,omitempty"`
}

func (s *Server) handleGetSection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	section, err := s.content.Section(id)
	if errors.Is(err, handbook.ErrSectionNotFound) {
		s.respondError(w, http.StatusNotFound, "section not found")
		return
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := sectionResponse{Section: section}
	if term := r.URL.Query().Get("highlight"); term != "" {
		resp.Title = search.Highlight(section.Title, term)
		for i, item := range section.Content {
			text, ok := models.SearchableText(item)
			if !ok {
				continue
			}
			resp.Highlights = append(resp.Highlights, itemHighlight{ContentIndex: i, Fragments: search.Highlight(text, term)})
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var query models.SearchQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("search request", zap.String("query", query.Query), zap.Int("limit", query.Limit))
	response, err := s.engine.Search(r.Context(), &query)
	if errors.Is(err, search.ErrRankedUnavailable) {
		s.respondError(w, http.StatusNotImplemented, err.Error())
		return
	}
	if err != nil {
		s.logger.Debug("search rejected", zap.Error(err))
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

type highlightRequest struct {
	Text string `json:"text"`
	Term string `json:"term"`
}

func (s *Server) handleHighlight(w http.ResponseWriter, r *http.Request) {
	var req highlightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	frags := search.Highlight(req.Text, req.Term)
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"fragments": frags,
		"matched":   search.MatchedCount(frags),
	})
}

func (s *Server) handleRanks(w http.ResponseWriter, r *http.Request) {
	ranks := s.content.Handbook().Ranks
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"ranks":     ranks,
		"branches":  widgets.Branches(ranks),
		"by_branch": widgets.RanksByBranch(ranks),
	})
}

func (s *Server) handleGetRank(w http.ResponseWriter, r *http.Request) {
	rank, ok := widgets.RankByID(s.content.Handbook().Ranks, chi.URLParam(r, "id"))
	if !ok {
		s.respondError(w, http.StatusNotFound, "rank not found")
		return
	}
	s.respondJSON(w, http.StatusOK, rank)
}

func (s *Server) handleListFormats(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"formats": s.content.Handbook().Formats})
}

type formatRequest struct {
	Values map[string]string `json:"values"`
}

func (s *Server) handleGenerateFormat(w http.ResponseWriter, r *http.Request) {
	var req formatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	name := chi.URLParam(r, "name")
	text, err := widgets.Generate(s.content.Handbook().Formats, name, req.Values)
	var missing *widgets.MissingFieldsError
	switch {
	case errors.Is(err, widgets.ErrUnknownTemplate):
		s.respondError(w, http.StatusNotFound, "format not found")
		return
	case errors.As(err, &missing):
		s.respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":   err.Error(),
			"missing": missing.Fields,
		})
		return
	case err != nil:
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"name": name, "text": text})
}

type pointsRequest struct {
	Counts map[string]int `json:"counts"`
}

func (s *Server) handlePoints(w http.ResponseWriter, r *http.Request) {
	var req pointsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.respondJSON(w, http.StatusOK, widgets.Calculate(s.content.Handbook().Activities, req.Counts))
}

func (s *Server) handleExportWorkbook(w http.ResponseWriter, r *http.Request) {
	var items []models.ChecklistItem
	if profile := r.URL.Query().Get("profile"); profile != "" {
		items = s.checklist.Checklist(r.Context(), profile)
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="handbook.xlsx"`)
	if err := export.Write(w, s.content.Handbook(), items); err != nil {
		s.logger.Error("workbook export failed", zap.Error(err))
	}
}

type checklistResponse struct {
	Profile string                      `json:"profile"`
	Items   []models.ChecklistItem      `json:"items"`
	Summary []checklist.CategorySummary `json:"summary"`
}

func (s *Server) checklistResponse(r *http.Request, profile string) checklistResponse {
	items := s.checklist.Checklist(r.Context(), profile)
	return checklistResponse{Profile: profile, Items: items, Summary: checklist.Summary(items)}
}

func (s *Server) handleGetChecklist(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.checklistResponse(r, chi.URLParam(r, "profile")))
}

type checklistItemRequest struct {
	Completed *bool `json:"completed"`
}

func (s *Server) handleSetChecklistItem(w http.ResponseWriter, r *http.Request) {
	var req checklistItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Completed == nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	profile, item := chi.URLParam(r, "profile"), chi.URLParam(r, "item")
	err := s.checklist.SetCompleted(r.Context(), profile, item, *req.Completed)
	if errors.Is(err, checklist.ErrUnknownItem) {
		s.respondError(w, http.StatusNotFound, "checklist item not found")
		return
	}
	if err != nil {
		s.logger.Error("checklist update failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, s.checklistResponse(r, profile))
}

func (s *Server) handleResetChecklist(w http.ResponseWriter, r *http.Request) {
	profile := chi.URLParam(r, "profile")
	if err := s.checklist.Reset(r.Context(), profile); err != nil {
		s.logger.Error("checklist reset failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, s.checklistResponse(r, profile))
}

func (s *Server) handleImportChecklist(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	profile := chi.URLParam(r, "profile")
	n, err := s.checklist.ImportLegacy(r.Context(), profile, data)
	if err != nil {
		s.logger.Error("checklist import failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := s.checklistResponse(r, profile)
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"imported": n,
		"items":    resp.Items,
		"summary":  resp.Summary,
	})
}

func (s *Server) handleExportChecklist(w http.ResponseWriter, r *http.Request) {
	data, err := s.checklist.ExportLegacy(r.Context(), chi.URLParam(r, "profile"))
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func parseIndex(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "index"))
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
