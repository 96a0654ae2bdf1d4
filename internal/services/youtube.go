package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	yt "github.com/kkdai/youtube/v2"
)

var youtubeLinkRe = regexp.MustCompile(`^(https?://)?(www\.)?(youtube\.com/(watch\?v=|embed/)|youtu\.be/)[\w-]+`)

// YouTubeService validates video links and fetches display metadata.
// Transcript extraction happens on the quiz backend; this side only
// needs enough metadata to render previews.
type YouTubeService struct {
	httpClient *http.Client
	ytClient   *yt.Client
	oembedBase string
}

func NewYouTubeService() *YouTubeService {
	return &YouTubeService{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		ytClient:   &yt.Client{},
		oembedBase: "https://www.youtube.com",
	}
}

// ValidateURL checks the link shape and resolves the video ID. The
// regexp gate runs first so arbitrary URLs never reach the extractor.
func (s *YouTubeService) ValidateURL(link string) (string, error) {
	if !youtubeLinkRe.MatchString(link) {
		return "", fmt.Errorf("not a valid YouTube URL")
	}
	videoID, err := yt.ExtractVideoID(link)
	if err != nil {
		return "", fmt.Errorf("could not extract video ID: %w", err)
	}
	return videoID, nil
}

// VideoMetadata is the oEmbed subset used for preview cards.
type VideoMetadata struct {
	Title     string `json:"title"`
	Channel   string `json:"author_name"`
	Thumbnail string `json:"thumbnail_url"`
}

// FetchMetadata resolves title, channel and thumbnail through the
// public oEmbed endpoint. No API key required.
func (s *YouTubeService) FetchMetadata(ctx context.Context, videoID string) (*VideoMetadata, error) {
	watchURL := fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID)
	oembedURL := s.oembedBase + "/oembed?format=json&url=" + url.QueryEscape(watchURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, oembedURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch video metadata: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("oembed returned status %d", resp.StatusCode)
	}

	meta := &VideoMetadata{}
	if err := json.NewDecoder(resp.Body).Decode(meta); err != nil {
		return nil, fmt.Errorf("decode oembed response: %w", err)
	}
	if meta.Thumbnail == "" {
		meta.Thumbnail = fmt.Sprintf("https://img.youtube.com/vi/%s/maxresdefault.jpg", videoID)
	}
	return meta, nil
}
