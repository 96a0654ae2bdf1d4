package handlers

import (
	"encoding/json"
	"net/http"

	"quicky-client/internal/services"
)

type UploadHandler struct {
	uploads    *services.UploadService
	contentGen *services.ContentGenService
}

func NewUploadHandler(uploads *services.UploadService, contentGen *services.ContentGenService) *UploadHandler {
	return &UploadHandler{uploads: uploads, contentGen: contentGen}
}

// File accepts one multipart document upload and forwards it to the
// quiz backend.
func (h *UploadHandler) File(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(services.MaxFileSize); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid multipart form", r))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Missing file field", r))
		return
	}
	defer file.Close()

	source, err := h.uploads.UploadFile(r.Context(), header.Filename, header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, source)
}

// YouTube registers a YouTube video as a source.
func (h *UploadHandler) YouTube(w http.ResponseWriter, r *http.Request) {
	var req struct {
		YouTubeLink string `json:"youtube_link"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	source, err := h.uploads.UploadYouTube(r.Context(), req.YouTubeLink)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, source)
}

// Text wraps pasted text as a named .txt source.
func (h *UploadHandler) Text(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	source, err := h.uploads.UploadText(r.Context(), req.Title, req.Content)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, source)
}

// ImageText wraps OCR text extracted from an image as a .txt source.
// The extraction itself happens on the client.
func (h *UploadHandler) ImageText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	source, err := h.uploads.UploadImageText(r.Context(), req.Name, req.Text)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, source)
}

// GenerateText writes study content for a topic title. The client can
// then review it and submit it through the text upload.
func (h *UploadHandler) GenerateText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	content, err := h.contentGen.Generate(r.Context(), req.Title)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"content": content})
}
