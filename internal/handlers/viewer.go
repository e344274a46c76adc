package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"flashdeck/internal/middleware"
	"flashdeck/internal/render"
	"flashdeck/internal/session"
	"flashdeck/internal/viewer"
)

type ViewerSessions interface {
	Create() (*viewer.Session, error)
	Get(id string) (*viewer.Session, error)
}

type TokenIssuer interface {
	IssueToken(sessionID string) (string, error)
}

type ViewerHandler struct {
	sessions ViewerSessions
	tokens   TokenIssuer
	renderer *render.HTMLRenderer
	log      *zap.Logger
}

func NewViewerHandler(sessions ViewerSessions, tokens TokenIssuer, renderer *render.HTMLRenderer, log *zap.Logger) *ViewerHandler {
	return &ViewerHandler{sessions: sessions, tokens: tokens, renderer: renderer, log: log}
}

// Page starts a viewer session and serves its page.
func (h *ViewerHandler) Page(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Create()
	if err != nil {
		if errors.Is(err, viewer.ErrTooManySessions) {
			h.log.Warn("viewer session refused", zap.Error(err))
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Too many open viewers. Please try again later.", http.StatusServiceUnavailable)
			return
		}
		h.log.Error("creating viewer session failed", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	token, err := h.tokens.IssueToken(s.ID)
	if err != nil {
		h.log.Error("issuing viewer token failed", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := h.renderer.Page(w, token, s.Controller.Snapshot()); err != nil {
		h.log.Error("rendering viewer page failed", zap.String("session_id", s.ID), zap.Error(err))
	}
}

// Event applies one page input to the caller's session. The resulting frame
// arrives over the websocket, not in this response.
func (h *ViewerHandler) Event(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Get(middleware.GetSessionID(r.Context()))
	if err != nil {
		if errors.Is(err, viewer.ErrUnknownSession) {
			writeError(w, http.StatusGone, "Viewer session expired", r)
			return
		}
		writeError(w, http.StatusInternalServerError, "Viewer session unavailable", r)
		return
	}

	var ev session.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid event", r)
		return
	}

	handled := s.Controller.Dispatch(s.Context(), ev)
	writeJSON(w, http.StatusOK, map[string]bool{"handled": handled})
}
