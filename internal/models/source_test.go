package models

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name   string
		source Source
		want   string
	}{
		{
			"file basename",
			Source{File: "uploads/2026/calculus notes.pdf"},
			"calculus notes.pdf",
		},
		{
			"url-encoded file name",
			Source{File: "uploads/linear%20algebra.pdf"},
			"linear algebra.pdf",
		},
		{
			"youtube falls back to link",
			Source{YouTubeLink: "https://youtu.be/abc123"},
			"https://youtu.be/abc123",
		},
		{
			"youtube prefers own title",
			Source{YouTubeLink: "https://youtu.be/abc123", Title: "Linear Algebra"},
			"Linear Algebra",
		},
		{
			"no file or link",
			Source{},
			"Unknown Source",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.source.DisplayName(nil); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDisplayNamePreviewTitle(t *testing.T) {
	src := Source{YouTubeLink: "https://youtu.be/abc123"}
	preview := &PreviewContent{Title: "Cached Video Title"}
	if got := src.DisplayName(preview); got != "Cached Video Title" {
		t.Errorf("DisplayName() = %q", got)
	}
}

func TestDisplayNameTruncation(t *testing.T) {
	long := Source{File: "uploads/" + strings.Repeat("a", 80) + ".pdf"}
	got := long.DisplayName(nil)
	if len([]rune(got)) != 50 || !strings.HasSuffix(got, "...") {
		t.Errorf("truncated name = %q (len %d)", got, len([]rune(got)))
	}

	longURL := Source{YouTubeLink: "https://www.youtube.com/watch?v=" + strings.Repeat("x", 60)}
	got = longURL.DisplayName(nil)
	if len([]rune(got)) != 60 || !strings.HasSuffix(got, "...") {
		t.Errorf("truncated link = %q (len %d)", got, len([]rune(got)))
	}
}

// Multi-byte names must be cut on rune boundaries, never mid-character.
func TestDisplayNameMultiByte(t *testing.T) {
	long := Source{File: "uploads/" + strings.Repeat("математика", 8) + ".pdf"}
	got := long.DisplayName(nil)
	if !utf8.ValidString(got) {
		t.Fatalf("truncated name is not valid UTF-8: %q", got)
	}
	if len([]rune(got)) != 50 || !strings.HasSuffix(got, "...") {
		t.Errorf("truncated name = %q (rune len %d)", got, len([]rune(got)))
	}

	title := Source{YouTubeLink: "https://youtu.be/abc", Title: strings.Repeat("数学講義", 20)}
	got = title.DisplayName(nil)
	if !utf8.ValidString(got) {
		t.Fatalf("truncated title is not valid UTF-8: %q", got)
	}
}
