package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"quicky-client/internal/models"
)

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (c *memCache) GetBytes(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.data[key]
	if !ok {
		return nil, fmt.Errorf("cache miss: %s", key)
	}
	return data, nil
}

func (c *memCache) SetBytes(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	return nil
}

func (c *memCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.data, key)
	}
	return nil
}

func previewTestService(t *testing.T, full *models.PreviewContent) (*PreviewService, *memCache, *int) {
	t.Helper()
	fetches := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		json.NewEncoder(w).Encode(full)
	}))
	t.Cleanup(srv.Close)

	cache := newMemCache()
	svc := &PreviewService{backend: NewBackendService(srv.URL, 5*time.Second), cache: cache}
	return svc, cache, &fetches
}

func longContent(n int) string {
	out := make([]rune, n)
	for i := range out {
		out[i] = 'x'
	}
	return string(out)
}

func TestLightweightCachesFullPayload(t *testing.T) {
	full := &models.PreviewContent{
		Pages: []models.PreviewPage{
			{PageNumber: 1, Content: longContent(400)},
			{PageNumber: 2, Content: "second page"},
		},
	}
	svc, cache, fetches := previewTestService(t, full)
	source := models.Source{ID: 9, SourceType: models.SourceTypePDF}
	ctx := context.Background()

	light, err := svc.Lightweight(ctx, source)
	if err != nil {
		t.Fatalf("Lightweight: %v", err)
	}
	if !light.Lightweight || light.TotalPages != 2 || len(light.Pages) != 1 {
		t.Fatalf("light = %+v", light)
	}
	if len([]rune(light.Pages[0].Content)) != 303 {
		t.Errorf("clipped content length = %d", len([]rune(light.Pages[0].Content)))
	}

	// The miss stored both projections, so Full never hits the backend.
	if _, ok := cache.data[fullKey(9)]; !ok {
		t.Fatal("full payload not cached on lightweight miss")
	}
	got, err := svc.Full(ctx, 9)
	if err != nil {
		t.Fatalf("Full: %v", err)
	}
	if len(got.Pages) != 2 {
		t.Errorf("full pages = %d", len(got.Pages))
	}
	if *fetches != 1 {
		t.Errorf("backend fetches = %d, want 1", *fetches)
	}

	// Second lightweight call is served from cache.
	if _, err := svc.Lightweight(ctx, source); err != nil {
		t.Fatal(err)
	}
	if *fetches != 1 {
		t.Errorf("backend fetches after cached reads = %d, want 1", *fetches)
	}
}

func TestSeedLight(t *testing.T) {
	svc, _, fetches := previewTestService(t, &models.PreviewContent{})
	ctx := context.Background()

	svc.SeedLight(ctx, 5, &models.PreviewContent{
		TotalPages: 3,
		Pages:      []models.PreviewPage{{PageNumber: 1, Content: "seeded text"}},
	})

	cached := svc.CachedLight(ctx, 5)
	if cached == nil || !cached.Lightweight || cached.TotalPages != 3 {
		t.Fatalf("cached = %+v", cached)
	}
	if *fetches != 0 {
		t.Errorf("seeding hit the backend %d times", *fetches)
	}
}

func TestInvalidateDropsBothKeys(t *testing.T) {
	full := &models.PreviewContent{TextContent: "some text"}
	svc, cache, _ := previewTestService(t, full)
	source := models.Source{ID: 2, SourceType: models.SourceTypeTXT}
	ctx := context.Background()

	if _, err := svc.Lightweight(ctx, source); err != nil {
		t.Fatal(err)
	}
	if len(cache.data) != 2 {
		t.Fatalf("cache keys = %d, want 2", len(cache.data))
	}

	svc.Invalidate(ctx, 2)
	if len(cache.data) != 0 {
		t.Errorf("cache keys after invalidate = %d", len(cache.data))
	}
}
