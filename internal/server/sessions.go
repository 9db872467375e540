package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mcd-community/handbook/internal/session"
)

type queryRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	// the body is optional
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	snap := s.sessions.Create()
	if req.Query != "" {
		var err error
		snap, err = s.sessions.Do(snap.ID, func(sess *session.Session) { sess.SetQuery(req.Query) })
		if err != nil {
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	s.respondJSON(w, http.StatusCreated, snap)
}

// withSession runs fn on the session named in the URL and writes its snapshot.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, fn func(*session.Session)) {
	snap, err := s.sessions.Do(chi.URLParam(r, "id"), fn)
	if errors.Is(err, session.ErrSessionNotFound) {
		s.respondError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, nil)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(chi.URLParam(r, "id")); err != nil {
		s.respondError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.withSession(w, r, func(sess *session.Session) { sess.SetQuery(req.Query) })
}

func (s *Server) handleClearSearch(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session.Session) { sess.ClearSearch() })
}

func (s *Server) handleNextResult(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session.Session) { sess.NextResult() })
}

func (s *Server) handlePreviousResult(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session.Session) { sess.PreviousResult() })
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	i, err := parseIndex(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "index must be an integer")
		return
	}
	s.withSession(w, r, func(sess *session.Session) { sess.NavigateToResult(i) })
}
