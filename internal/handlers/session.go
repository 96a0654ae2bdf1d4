package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"

	"quicky-client/internal/export"
	"quicky-client/internal/middleware"
	"quicky-client/internal/quiz"
	"quicky-client/internal/services"

	"github.com/go-chi/chi/v5"
)

type SessionHandler struct {
	sessions *services.SessionService
}

func NewSessionHandler(sessions *services.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// resolve loads the session named in the path and checks it against the
// token's session claim.
func (h *SessionHandler) resolve(w http.ResponseWriter, r *http.Request) (*quiz.Session, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid session ID", r))
		return nil, false
	}

	if tokenID := middleware.GetSessionID(r.Context()); tokenID != id {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Token is not valid for this session", r))
		return nil, false
	}

	session, err := h.sessions.Get(id)
	if err != nil {
		handleServiceError(w, r, err)
		return nil, false
	}
	return session, true
}

// Get serves the current session view.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, ok := h.resolve(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, session.Snapshot())
}

// Answer records one answer for a question.
func (h *SessionHandler) Answer(w http.ResponseWriter, r *http.Request) {
	session, ok := h.resolve(w, r)
	if !ok {
		return
	}

	var req struct {
		QuestionID int64  `json:"question_id"`
		OptionKey  string `json:"option_key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if err := session.RecordAnswer(req.QuestionID, req.OptionKey); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session.Snapshot())
}

// Navigate applies one navigation intent to the cursor.
func (h *SessionHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	session, ok := h.resolve(w, r)
	if !ok {
		return
	}

	var req struct {
		Action string `json:"action"`
		Target int    `json:"target"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if err := session.Navigate(req.Action, req.Target); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session.Snapshot())
}

// Key dispatches one raw keyboard token.
func (h *SessionHandler) Key(w http.ResponseWriter, r *http.Request) {
	session, ok := h.resolve(w, r)
	if !ok {
		return
	}

	var req struct {
		Key string `json:"key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if err := session.HandleKey(req.Key); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session.Snapshot())
}

// Submit grades the quiz and serves the result.
func (h *SessionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	session, ok := h.resolve(w, r)
	if !ok {
		return
	}

	result, err := session.Submit()
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Retry resets a finished session for another run.
func (h *SessionHandler) Retry(w http.ResponseWriter, r *http.Request) {
	session, ok := h.resolve(w, r)
	if !ok {
		return
	}

	if err := session.Retry(); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session.Snapshot())
}

// Export streams the finished quiz as a downloadable document.
func (h *SessionHandler) Export(w http.ResponseWriter, r *http.Request) {
	session, ok := h.resolve(w, r)
	if !ok {
		return
	}

	format, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", err.Error(), r))
		return
	}

	snap, err := h.sessions.Export(session.ID, format)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.Filename()))
	if err := format.Write(w, snap); err != nil {
		// Headers are already out; all we can do is log.
		log.Printf("export %s for session %s failed: %v", format, session.ID, err)
	}
}
