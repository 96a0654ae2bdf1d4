package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"quicky-client/internal/models"
)

// Sentinel errors exposed to handlers. Wrapped errors carry the
// endpoint detail; callers match with errors.Is.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrConflict           = errors.New("content already exists")
	ErrBackendUnavailable = errors.New("quiz backend is unavailable")
)

// BackendService is the REST client for the quiz backend. All source
// content, question generation and uploads live there; this service
// owns the HTTP plumbing and maps status codes to sentinel errors.
type BackendService struct {
	baseURL string
	client  *http.Client
}

func NewBackendService(baseURL string, timeout time.Duration) *BackendService {
	return &BackendService{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// ListSources fetches every uploaded source.
func (s *BackendService) ListSources(ctx context.Context) ([]models.Source, error) {
	var sources []models.Source
	if err := s.getJSON(ctx, "/api/sources/files/", &sources); err != nil {
		return nil, err
	}
	return sources, nil
}

// GetPreview fetches the full preview payload for a source.
func (s *BackendService) GetPreview(ctx context.Context, sourceID int64) (*models.PreviewContent, error) {
	preview := &models.PreviewContent{}
	if err := s.getJSON(ctx, fmt.Sprintf("/api/sources/%d/preview/", sourceID), preview); err != nil {
		return nil, err
	}
	return preview, nil
}

// ListQuestions fetches the generated questions for a source.
func (s *BackendService) ListQuestions(ctx context.Context, sourceID int64) ([]models.Question, error) {
	var questions []models.Question
	if err := s.getJSON(ctx, fmt.Sprintf("/api/questions/?source_id=%d", sourceID), &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// DeleteSource removes the source and its stored file.
func (s *BackendService) DeleteSource(ctx context.Context, sourceID int64) error {
	req, err := s.newRequest(ctx, http.MethodDelete, fmt.Sprintf("/api/sources/%d/delete_file/", sourceID), nil, "")
	if err != nil {
		return err
	}
	resp, err := s.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return s.checkStatus(resp)
}

// GenerateQuestions asks the backend to generate questions for the
// source using the given configuration.
func (s *BackendService) GenerateQuestions(ctx context.Context, sourceID int64, cfg models.QuizConfig) error {
	body, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	req, err := s.newRequest(ctx, http.MethodPost,
		fmt.Sprintf("/api/sources/%d/generate_questions/", sourceID),
		bytes.NewReader(body), "application/json")
	if err != nil {
		return err
	}
	resp, err := s.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return s.checkStatus(resp)
}

// UploadFile streams one file to the backend as multipart form data.
func (s *BackendService) UploadFile(ctx context.Context, filename string, content io.Reader) (*models.Source, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := s.newRequest(ctx, http.MethodPost, "/api/sources/upload_file/", &body, mw.FormDataContentType())
	if err != nil {
		return nil, err
	}
	return s.doSource(req)
}

// ProcessYouTubeLink registers a YouTube video as a source.
func (s *BackendService) ProcessYouTubeLink(ctx context.Context, link string) (*models.Source, error) {
	form := url.Values{"youtube_link": {link}}
	req, err := s.newRequest(ctx, http.MethodPost, "/api/sources/process_youtube_link/",
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return nil, err
	}
	return s.doSource(req)
}

// GenerateContent asks the backend to write study material for a topic
// title. Used as the fallback when no local Gemini key is configured.
func (s *BackendService) GenerateContent(ctx context.Context, title string) (string, error) {
	body, _ := json.Marshal(map[string]string{"title": title})
	req, err := s.newRequest(ctx, http.MethodPost, "/api/content_generation/generate-content/",
		bytes.NewReader(body), "application/json")
	if err != nil {
		return "", err
	}
	resp, err := s.do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if err := s.checkStatus(resp); err != nil {
		return "", err
	}

	var out struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode generated content: %w", err)
	}
	return out.Content, nil
}

// Ping probes the backend with the caller's timeout. A timeout or
// connection failure reads as offline.
func (s *BackendService) Ping(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/sources/files/", nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: status %d", ErrBackendUnavailable, resp.StatusCode)
	}
	return nil
}

func (s *BackendService) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

func (s *BackendService) do(req *http.Request) (*http.Response, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return resp, nil
}

func (s *BackendService) doSource(req *http.Request) (*models.Source, error) {
	resp, err := s.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := s.checkStatus(resp); err != nil {
		return nil, err
	}

	source := &models.Source{}
	if err := json.NewDecoder(resp.Body).Decode(source); err != nil {
		return nil, fmt.Errorf("decode source: %w", err)
	}
	return source, nil
}

func (s *BackendService) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := s.newRequest(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	resp, err := s.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := s.checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (s *BackendService) checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, resp.Request.URL.Path)
	case resp.StatusCode == http.StatusConflict:
		return ErrConflict
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", ErrBackendUnavailable, resp.StatusCode)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("backend returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
}
