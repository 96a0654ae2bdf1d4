package models

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Source type tags, matching the backend's closed set.
const (
	SourceTypePDF     = "PDF"
	SourceTypeDOCX    = "DOCX"
	SourceTypePPTX    = "PPTX"
	SourceTypeTXT     = "TXT"
	SourceTypeYouTube = "YOUTUBE"
)

// SourceTypes lists every known type tag, in display order.
var SourceTypes = []string{SourceTypePDF, SourceTypeDOCX, SourceTypePPTX, SourceTypeTXT, SourceTypeYouTube}

// Source is an uploaded content item in the library.
type Source struct {
	ID            int64     `json:"id"`
	SourceType    string    `json:"source_type"`
	File          string    `json:"file,omitempty"`
	YouTubeLink   string    `json:"youtube_link,omitempty"`
	Title         string    `json:"title,omitempty"`
	PageCount     *int      `json:"page_count,omitempty"`
	VideoDuration string    `json:"video_duration,omitempty"`
	UploadedAt    time.Time `json:"uploaded_at"`
}

// DisplayName derives the human-readable name shown in the library list.
// A cached preview may supply a better title for YouTube sources.
func (s Source) DisplayName(preview *PreviewContent) string {
	name := "Unknown Source"

	if s.File != "" {
		parts := strings.Split(s.File, "/")
		name = parts[len(parts)-1]
	} else if s.YouTubeLink != "" {
		switch {
		case s.Title != "":
			name = s.Title
		case preview != nil && preview.Title != "":
			name = preview.Title
		default:
			name = s.YouTubeLink
		}
	}

	if decoded, err := url.QueryUnescape(name); err == nil {
		name = decoded
	}

	if strings.HasPrefix(name, "http") {
		return truncateName(name, 60)
	}
	return truncateName(name, 50)
}

// truncateName shortens on rune boundaries so multi-byte names never
// get cut mid-character.
func truncateName(name string, max int) string {
	r := []rune(name)
	if len(r) <= max {
		return name
	}
	return string(r[:max-3]) + "..."
}

// PreviewPage is one page of a paginated document preview.
type PreviewPage struct {
	PageNumber int    `json:"page_number"`
	Content    string `json:"content"`
	WordCount  int    `json:"word_count,omitempty"`
}

// PreviewContent is the type-specific preview payload for a source.
// Paginated documents populate Pages; videos populate the video fields
// and TranscriptText; everything else populates TextContent.
type PreviewContent struct {
	Pages          []PreviewPage `json:"pages,omitempty"`
	TotalPages     int           `json:"total_pages,omitempty"`
	Title          string        `json:"title,omitempty"`
	Thumbnail      string        `json:"thumbnail,omitempty"`
	Duration       string        `json:"duration,omitempty"`
	Channel        string        `json:"channel,omitempty"`
	TranscriptText string        `json:"transcript_text,omitempty"`
	TextContent    string        `json:"text_content,omitempty"`
	Lightweight    bool          `json:"is_lightweight,omitempty"`
}

// QuizConfig is the saved per-source generation configuration.
type QuizConfig struct {
	PagesToGenerate    string `json:"pages_to_generate"`
	TimeRange          string `json:"time_range"`
	QuestionsPerPage   int    `json:"questions_per_page"`
	TotalQuestionLimit int    `json:"total_question_limit"`
}

// DefaultQuizConfig builds the configuration prefill for a source that
// has no saved config: full page range and a question cap scaled by
// page count for paginated documents, a flat cap otherwise.
func DefaultQuizConfig(s Source) QuizConfig {
	cfg := QuizConfig{
		QuestionsPerPage:   5,
		TotalQuestionLimit: 100,
	}
	if s.SourceType == SourceTypePDF && s.PageCount != nil && *s.PageCount > 0 {
		n := *s.PageCount
		cfg.PagesToGenerate = fmt.Sprintf("1-%d", n)
		limit := n * 5
		if limit > 1000 {
			limit = 1000
		}
		cfg.TotalQuestionLimit = limit
	}
	return cfg
}
