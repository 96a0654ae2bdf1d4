package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"quicky-client/internal/models"
)

// PreloadLimit caps how many previews are warmed concurrently after a
// library fetch.
const PreloadLimit = 12

const previewTTL = 24 * time.Hour

// previewCache is the narrow slice of Redis the preview service needs.
type previewCache interface {
	GetBytes(ctx context.Context, key string) ([]byte, error)
	SetBytes(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

type redisPreviewCache struct {
	client *redis.Client
}

func (c redisPreviewCache) GetBytes(ctx context.Context, key string) ([]byte, error) {
	return c.client.Get(ctx, key).Bytes()
}

func (c redisPreviewCache) SetBytes(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c redisPreviewCache) Del(ctx context.Context, keys ...string) error {
	return c.client.Del(ctx, keys...).Err()
}

// PreviewService caches backend preview payloads in Redis under two
// keys per source: a trimmed lightweight projection for cards and the
// full payload for the preview dialog.
type PreviewService struct {
	backend *BackendService
	cache   previewCache
}

func NewPreviewService(backend *BackendService, redisClient *redis.Client) *PreviewService {
	return &PreviewService{backend: backend, cache: redisPreviewCache{client: redisClient}}
}

func lightKey(sourceID int64) string { return fmt.Sprintf("preview:%d:light", sourceID) }
func fullKey(sourceID int64) string  { return fmt.Sprintf("preview:%d:full", sourceID) }

// Lightweight returns the trimmed preview, fetching and caching on a
// miss. The fetched payload is cached under the full key too so a
// later Full call skips the backend round-trip.
func (s *PreviewService) Lightweight(ctx context.Context, source models.Source) (*models.PreviewContent, error) {
	if cached := s.cached(ctx, lightKey(source.ID)); cached != nil {
		return cached, nil
	}

	full, err := s.backend.GetPreview(ctx, source.ID)
	if err != nil {
		return nil, err
	}
	s.store(ctx, fullKey(source.ID), full)

	light := lightweightFrom(full, source.SourceType)
	s.store(ctx, lightKey(source.ID), light)
	return light, nil
}

// Full returns the complete preview payload, fetching and caching on a
// miss.
func (s *PreviewService) Full(ctx context.Context, sourceID int64) (*models.PreviewContent, error) {
	if cached := s.cached(ctx, fullKey(sourceID)); cached != nil {
		return cached, nil
	}

	full, err := s.backend.GetPreview(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	s.store(ctx, fullKey(sourceID), full)
	return full, nil
}

// CachedLight returns the lightweight preview only if already cached.
// Used by display-name resolution, which must not trigger fetches.
func (s *PreviewService) CachedLight(ctx context.Context, sourceID int64) *models.PreviewContent {
	return s.cached(ctx, lightKey(sourceID))
}

// SeedLight stores a locally built lightweight preview, giving a fresh
// upload a card preview before the backend has one to serve.
func (s *PreviewService) SeedLight(ctx context.Context, sourceID int64, preview *models.PreviewContent) {
	preview.Lightweight = true
	s.store(ctx, lightKey(sourceID), preview)
}

// Preload warms the lightweight cache for the first PreloadLimit
// sources. Each fetch runs independently; a failed preview is logged
// and skipped without aborting the rest.
func (s *PreviewService) Preload(ctx context.Context, sources []models.Source) {
	if len(sources) > PreloadLimit {
		sources = sources[:PreloadLimit]
	}

	var wg sync.WaitGroup
	for _, source := range sources {
		wg.Add(1)
		go func(src models.Source) {
			defer wg.Done()
			if _, err := s.Lightweight(ctx, src); err != nil {
				log.Printf("preview preload failed for source %d: %v", src.ID, err)
			}
		}(source)
	}
	wg.Wait()
}

// Invalidate drops both cache entries for a deleted source.
func (s *PreviewService) Invalidate(ctx context.Context, sourceID int64) {
	s.cache.Del(ctx, lightKey(sourceID), fullKey(sourceID))
}

func (s *PreviewService) cached(ctx context.Context, key string) *models.PreviewContent {
	data, err := s.cache.GetBytes(ctx, key)
	if err != nil {
		return nil
	}
	preview := &models.PreviewContent{}
	if err := json.Unmarshal(data, preview); err != nil {
		return nil
	}
	return preview
}

func (s *PreviewService) store(ctx context.Context, key string, preview *models.PreviewContent) {
	data, err := json.Marshal(preview)
	if err != nil {
		return
	}
	if err := s.cache.SetBytes(ctx, key, data, previewTTL); err != nil {
		log.Printf("preview cache write failed for %s: %v", key, err)
	}
}

// lightweightFrom trims a full preview down to what the library cards
// render: first PDF page at 300 characters, transcript at 500, text at
// 500. Metadata fields pass through untouched.
func lightweightFrom(full *models.PreviewContent, sourceType string) *models.PreviewContent {
	light := *full
	light.Lightweight = true

	switch sourceType {
	case models.SourceTypePDF:
		light.TotalPages = len(full.Pages)
		if len(full.Pages) > 0 {
			page := full.Pages[0]
			page.Content = clip(page.Content, 300)
			light.Pages = []models.PreviewPage{page}
		} else {
			light.Pages = []models.PreviewPage{}
		}
	case models.SourceTypeYouTube:
		light.TranscriptText = clip(full.TranscriptText, 500)
	default:
		light.TextContent = clip(full.TextContent, 500)
	}
	return &light
}

func clip(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
