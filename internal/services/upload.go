package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"regexp"
	"strings"

	"quicky-client/internal/models"
)

const (
	MaxFileSize = 10 * 1024 * 1024
	MinWords    = 100
)

var documentMIMETypes = map[string]bool{
	"application/pdf": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
	"text/plain": true,
}

var documentExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".pptx": true,
	".txt":  true,
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// ValidationError marks a rejected upload so handlers can answer 400
// instead of 500.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationErrorf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// PreviewSeeder accepts a locally built lightweight preview for a
// freshly uploaded source.
type PreviewSeeder interface {
	SeedLight(ctx context.Context, sourceID int64, preview *models.PreviewContent)
}

// UploadService validates content locally and forwards accepted uploads
// to the quiz backend. Validation failures never reach the backend.
type UploadService struct {
	backend  *BackendService
	youtube  *YouTubeService
	extract  *FileExtractService
	previews PreviewSeeder
}

func NewUploadService(backend *BackendService, youtube *YouTubeService, extract *FileExtractService, previews PreviewSeeder) *UploadService {
	return &UploadService{backend: backend, youtube: youtube, extract: extract, previews: previews}
}

// UploadFile validates and forwards one document upload.
func (s *UploadService) UploadFile(ctx context.Context, filename, contentType string, size int64, content io.Reader) (*models.Source, error) {
	if size > MaxFileSize {
		return nil, validationErrorf("file too large, maximum size is %dMB", MaxFileSize/(1024*1024))
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !documentExtensions[ext] {
		return nil, validationErrorf("unsupported file type %q, please use PDF, Word, PowerPoint or Text", ext)
	}
	if contentType != "" {
		base := strings.TrimSpace(strings.Split(contentType, ";")[0])
		if !documentMIMETypes[base] {
			return nil, validationErrorf("unsupported content type %q", base)
		}
	}

	data, err := io.ReadAll(io.LimitReader(content, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) > MaxFileSize {
		return nil, validationErrorf("file too large, maximum size is %dMB", MaxFileSize/(1024*1024))
	}

	// Unreadable PDFs are rejected here rather than on the backend.
	pageCount := 0
	if ext == ".pdf" {
		pageCount, err = s.extract.PDFPageCount(data)
		if err != nil {
			return nil, validationErrorf("file is not a readable PDF")
		}
	}

	source, err := s.backend.UploadFile(ctx, filepath.Base(filename), bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	if ext == ".pdf" && s.previews != nil {
		s.seedPDFPreview(ctx, source.ID, data, pageCount)
	}
	return source, nil
}

// seedPDFPreview warms the lightweight cache from the uploaded bytes so
// the new source has a card preview before the backend has processed
// the file.
func (s *UploadService) seedPDFPreview(ctx context.Context, sourceID int64, data []byte, pageCount int) {
	text, err := s.extract.PDFFirstPageText(data)
	if err != nil {
		log.Printf("first page extraction failed for source %d: %v", sourceID, err)
		return
	}
	s.previews.SeedLight(ctx, sourceID, &models.PreviewContent{
		TotalPages: pageCount,
		Pages:      []models.PreviewPage{{PageNumber: 1, Content: clip(text, 300)}},
	})
}

// UploadYouTube validates the link shape and registers the video. The
// oEmbed title is resolved as a fallback display name for sources the
// backend returns untitled; a failed lookup is not an upload failure.
func (s *UploadService) UploadYouTube(ctx context.Context, link string) (*models.Source, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return nil, validationErrorf("please enter a YouTube link")
	}
	videoID, err := s.youtube.ValidateURL(link)
	if err != nil {
		return nil, validationErrorf("please enter a valid YouTube URL")
	}

	source, err := s.backend.ProcessYouTubeLink(ctx, link)
	if err != nil {
		return nil, err
	}

	if source.Title == "" {
		if meta, err := s.youtube.FetchMetadata(ctx, videoID); err == nil {
			source.Title = meta.Title
		} else {
			log.Printf("video metadata lookup failed for %s: %v", videoID, err)
		}
	}
	return source, nil
}

// UploadText wraps free text as "{title}.txt" and forwards it. Requires
// a title and at least MinWords words.
func (s *UploadService) UploadText(ctx context.Context, title, content string) (*models.Source, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, validationErrorf("please enter a title for your text content")
	}
	if strings.TrimSpace(content) == "" {
		return nil, validationErrorf("please enter some text content")
	}
	if n := CountWords(content); n < MinWords {
		return nil, validationErrorf("text too short, at least %d words are needed for meaningful quiz questions (current: %d)", MinWords, n)
	}

	filename := title + ".txt"
	return s.backend.UploadFile(ctx, filename, strings.NewReader(content))
}

// UploadImageText wraps OCR text extracted from an image as
// "imgext_{name}.txt" and forwards it. Text extraction itself runs
// outside this service.
func (s *UploadService) UploadImageText(ctx context.Context, name, extractedText string) (*models.Source, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationErrorf("please enter a name for the extracted text file")
	}
	if strings.TrimSpace(extractedText) == "" {
		return nil, validationErrorf("could not extract any text from the image, or the image is empty")
	}

	filename := "imgext_" + whitespaceRe.ReplaceAllString(name, "_") + ".txt"
	return s.backend.UploadFile(ctx, filename, strings.NewReader(extractedText))
}

// CountWords counts whitespace-separated words.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
