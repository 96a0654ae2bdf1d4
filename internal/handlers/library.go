package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"quicky-client/internal/middleware"
	"quicky-client/internal/models"
	"quicky-client/internal/services"
)

type LibraryHandler struct {
	library  *services.LibraryService
	previews *services.PreviewService
	sessions *services.SessionService
	auth     *middleware.SessionAuth
}

func NewLibraryHandler(library *services.LibraryService, previews *services.PreviewService, sessions *services.SessionService, auth *middleware.SessionAuth) *LibraryHandler {
	return &LibraryHandler{library: library, previews: previews, sessions: sessions, auth: auth}
}

// List serves the filtered, sorted library. Query parameters: search,
// types (comma-separated), sort.
func (h *LibraryHandler) List(w http.ResponseWriter, r *http.Request) {
	opts := services.ListOptions{
		Search: r.URL.Query().Get("search"),
		Sort:   r.URL.Query().Get("sort"),
	}
	if raw := r.URL.Query().Get("types"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			t = strings.ToUpper(strings.TrimSpace(t))
			if t == "" {
				continue
			}
			if !validSourceType(t) {
				writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "unknown source type "+t, r))
				return
			}
			opts.Types = append(opts.Types, t)
		}
	}

	items, err := h.library.List(r.Context(), opts)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func validSourceType(t string) bool {
	for _, known := range models.SourceTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Preview serves the cached preview for a source. ?mode=full returns
// the complete payload; the default is the lightweight projection.
func (h *LibraryHandler) Preview(w http.ResponseWriter, r *http.Request) {
	sourceID, ok := sourceIDParam(w, r)
	if !ok {
		return
	}

	if r.URL.Query().Get("mode") == "full" {
		preview, err := h.previews.Full(r.Context(), sourceID)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, preview)
		return
	}

	source, err := h.library.FindSource(r.Context(), sourceID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	preview, err := h.previews.Lightweight(r.Context(), *source)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

// Delete removes a source and all local state tied to it.
func (h *LibraryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sourceID, ok := sourceIDParam(w, r)
	if !ok {
		return
	}
	if err := h.library.Delete(r.Context(), sourceID); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Config serves the saved or default quiz configuration for a source.
func (h *LibraryHandler) Config(w http.ResponseWriter, r *http.Request) {
	sourceID, ok := sourceIDParam(w, r)
	if !ok {
		return
	}
	source, err := h.library.FindSource(r.Context(), sourceID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	cfg, err := h.library.ConfigFor(r.Context(), *source)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// StartQuizResponse is the launch payload: the new session view plus
// the bearer token scoped to it.
type StartQuizResponse struct {
	Token   string      `json:"token"`
	Session interface{} `json:"session"`
}

// StartQuiz saves the configuration, triggers question generation and
// opens a quiz session over the generated questions.
func (h *LibraryHandler) StartQuiz(w http.ResponseWriter, r *http.Request) {
	sourceID, ok := sourceIDParam(w, r)
	if !ok {
		return
	}

	var cfg models.QuizConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if cfg.QuestionsPerPage <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "questions_per_page must be greater than 0", r))
		return
	}
	if cfg.TotalQuestionLimit <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "total_question_limit must be greater than 0", r))
		return
	}

	source, err := h.library.FindSource(r.Context(), sourceID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	if err := h.library.ConfigureAndLaunch(r.Context(), *source, cfg); err != nil {
		handleServiceError(w, r, err)
		return
	}

	title := source.DisplayName(h.previews.CachedLight(r.Context(), source.ID))
	session, err := h.sessions.Start(r.Context(), sourceID, title)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	token, err := h.auth.IssueToken(session.ID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, StartQuizResponse{
		Token:   token,
		Session: session.Snapshot(),
	})
}

func sourceIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "sourceID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid source ID", r))
		return 0, false
	}
	return id, true
}
