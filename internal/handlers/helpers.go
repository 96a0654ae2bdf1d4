package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"quicky-client/internal/models"
	"quicky-client/internal/quiz"
	"quicky-client/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}

// handleServiceError maps service errors onto the API error envelope.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", verr.Msg, r))
	case errors.Is(err, services.ErrConflict):
		writeJSON(w, http.StatusConflict, errorResp("CONFLICT", "Content already exists in the library", r))
	case errors.Is(err, services.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Resource not found", r))
	case errors.Is(err, services.ErrBackendUnavailable):
		writeJSON(w, http.StatusBadGateway, errorResp("BACKEND_UNAVAILABLE", "Quiz backend is unavailable or sleeping", r))
	case errors.Is(err, quiz.ErrNoQuestions):
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "No questions found for this source", r))
	case errors.Is(err, quiz.ErrNotActive), errors.Is(err, quiz.ErrNotFinished), errors.Is(err, quiz.ErrNoAnswers):
		writeJSON(w, http.StatusConflict, errorResp("CONFLICT", err.Error(), r))
	case errors.Is(err, quiz.ErrUnknownQuestion), errors.Is(err, quiz.ErrUnknownOption):
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", err.Error(), r))
	default:
		log.Printf("internal error on %s %s: %v", r.Method, r.URL.Path, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Something went wrong", r))
	}
}
