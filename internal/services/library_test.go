package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"quicky-client/internal/models"
)

type stubTracker struct {
	mu        sync.Mutex
	attempted map[int64]bool
	generated map[int64]bool
	removed   []int64
}

func newStubTracker() *stubTracker {
	return &stubTracker{attempted: map[int64]bool{}, generated: map[int64]bool{}}
}

func (s *stubTracker) MarkAttempted(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempted[id] = true
	return nil
}

func (s *stubTracker) MarkGenerated(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generated[id] = true
	return nil
}

func (s *stubTracker) ListAttempted(context.Context) (map[int64]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int64]bool, len(s.attempted))
	for k, v := range s.attempted {
		out[k] = v
	}
	return out, nil
}

func (s *stubTracker) ListGenerated(context.Context) (map[int64]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int64]bool, len(s.generated))
	for k, v := range s.generated {
		out[k] = v
	}
	return out, nil
}

func (s *stubTracker) Remove(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempted, id)
	delete(s.generated, id)
	s.removed = append(s.removed, id)
	return nil
}

type stubConfigs struct {
	mu      sync.Mutex
	configs map[int64]models.QuizConfig
}

func newStubConfigs() *stubConfigs {
	return &stubConfigs{configs: map[int64]models.QuizConfig{}}
}

func (s *stubConfigs) Save(_ context.Context, id int64, cfg models.QuizConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs[id] = cfg
	return nil
}

func (s *stubConfigs) Get(_ context.Context, id int64) (*models.QuizConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cfg, ok := s.configs[id]; ok {
		return &cfg, nil
	}
	return nil, nil
}

func (s *stubConfigs) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.configs, id)
	return nil
}

type stubPreviews struct{}

func (stubPreviews) CachedLight(context.Context, int64) *models.PreviewContent { return nil }
func (stubPreviews) Preload(context.Context, []models.Source)                 {}
func (stubPreviews) Invalidate(context.Context, int64)                        {}

func libraryTestServer(t *testing.T, sources []models.Source) (*httptest.Server, *[]string) {
	t.Helper()
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		switch r.URL.Path {
		case "/api/sources/files/":
			json.NewEncoder(w).Encode(sources)
		default:
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("{}"))
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func testSources() []models.Source {
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	pages := 8
	return []models.Source{
		{ID: 1, SourceType: "PDF", File: "uploads/calculus_notes.pdf", PageCount: &pages, UploadedAt: base},
		{ID: 2, SourceType: "TXT", File: "uploads/biology.txt", UploadedAt: base.Add(2 * time.Hour)},
		{ID: 3, SourceType: "YOUTUBE", YouTubeLink: "https://youtu.be/abc123", Title: "Linear Algebra", UploadedAt: base.Add(time.Hour)},
	}
}

func newLibraryService(t *testing.T, sources []models.Source) (*LibraryService, *stubTracker, *stubConfigs, *[]string) {
	srv, calls := libraryTestServer(t, sources)
	backend := NewBackendService(srv.URL, 5*time.Second)
	tracker := newStubTracker()
	configs := newStubConfigs()
	return NewLibraryService(backend, stubPreviews{}, tracker, configs), tracker, configs, calls
}

func TestLibraryList_SortAndBadges(t *testing.T) {
	svc, tracker, _, _ := newLibraryService(t, testSources())
	ctx := context.Background()
	tracker.MarkAttempted(ctx, 1)
	tracker.MarkGenerated(ctx, 1)

	items, err := svc.List(ctx, ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("items = %d, want 3", len(items))
	}
	// Default order is newest first.
	if items[0].ID != 2 || items[1].ID != 3 || items[2].ID != 1 {
		t.Errorf("order = %d,%d,%d", items[0].ID, items[1].ID, items[2].ID)
	}
	if !items[2].QuizAttempted || !items[2].QuizGenerated {
		t.Errorf("badges missing on source 1: %+v", items[2])
	}
	if items[0].QuizAttempted {
		t.Errorf("spurious badge on source 2")
	}

	items, err = svc.List(ctx, ListOptions{Sort: SortOldest})
	if err != nil {
		t.Fatal(err)
	}
	if items[0].ID != 1 {
		t.Errorf("oldest first = %d, want 1", items[0].ID)
	}

	items, err = svc.List(ctx, ListOptions{Sort: SortName})
	if err != nil {
		t.Fatal(err)
	}
	if items[0].DisplayName != "biology.txt" {
		t.Errorf("name sort first = %q", items[0].DisplayName)
	}
}

func TestLibraryList_SearchAndTypeFilter(t *testing.T) {
	svc, _, _, _ := newLibraryService(t, testSources())
	ctx := context.Background()

	items, err := svc.List(ctx, ListOptions{Search: "CALCULUS"})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].ID != 1 {
		t.Errorf("search result = %+v", items)
	}

	items, err = svc.List(ctx, ListOptions{Types: []string{"TXT", "YOUTUBE"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Errorf("type filter returned %d items", len(items))
	}
	for _, item := range items {
		if item.SourceType == "PDF" {
			t.Errorf("PDF survived type filter")
		}
	}

	// YouTube display name prefers the stored title.
	items, err = svc.List(ctx, ListOptions{Search: "linear"})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].DisplayName != "Linear Algebra" {
		t.Errorf("youtube search = %+v", items)
	}
}

func TestLibraryDelete_PrunesEverything(t *testing.T) {
	svc, tracker, configs, calls := newLibraryService(t, testSources())
	ctx := context.Background()
	tracker.MarkAttempted(ctx, 1)
	configs.Save(ctx, 1, models.QuizConfig{QuestionsPerPage: 5})

	if err := svc.Delete(ctx, 1); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if len(tracker.removed) != 1 || tracker.removed[0] != 1 {
		t.Errorf("tracker not pruned: %v", tracker.removed)
	}
	if cfg, _ := configs.Get(ctx, 1); cfg != nil {
		t.Error("config survived delete")
	}
	found := false
	for _, call := range *calls {
		if call == "DELETE /api/sources/1/delete_file/" {
			found = true
		}
	}
	if !found {
		t.Errorf("backend delete not called: %v", *calls)
	}
}

func TestLibraryConfigFor(t *testing.T) {
	svc, _, configs, _ := newLibraryService(t, testSources())
	ctx := context.Background()
	sources := testSources()

	// No saved config: derived default for an 8-page PDF.
	cfg, err := svc.ConfigFor(ctx, sources[0])
	if err != nil {
		t.Fatal(err)
	}
	if cfg.PagesToGenerate != "1-8" || cfg.QuestionsPerPage != 5 || cfg.TotalQuestionLimit != 40 {
		t.Errorf("default pdf config = %+v", cfg)
	}

	// Non-PDF default.
	cfg, err = svc.ConfigFor(ctx, sources[1])
	if err != nil {
		t.Fatal(err)
	}
	if cfg.PagesToGenerate != "" || cfg.TotalQuestionLimit != 100 {
		t.Errorf("default txt config = %+v", cfg)
	}

	// Saved config wins.
	configs.Save(ctx, 1, models.QuizConfig{PagesToGenerate: "2-4", QuestionsPerPage: 3, TotalQuestionLimit: 9})
	cfg, err = svc.ConfigFor(ctx, sources[0])
	if err != nil {
		t.Fatal(err)
	}
	if cfg.PagesToGenerate != "2-4" || cfg.TotalQuestionLimit != 9 {
		t.Errorf("saved config = %+v", cfg)
	}
}

func TestConfigureAndLaunch(t *testing.T) {
	svc, tracker, configs, _ := newLibraryService(t, testSources())
	ctx := context.Background()
	source := testSources()[0]

	cfg := models.QuizConfig{PagesToGenerate: "1-8", TimeRange: "0:00-5:00", QuestionsPerPage: 5, TotalQuestionLimit: 40}
	if err := svc.ConfigureAndLaunch(ctx, source, cfg); err != nil {
		t.Fatalf("ConfigureAndLaunch: %v", err)
	}

	attempted, _ := tracker.ListAttempted(ctx)
	generated, _ := tracker.ListGenerated(ctx)
	if !attempted[1] || !generated[1] {
		t.Errorf("tracking not recorded: attempted=%v generated=%v", attempted, generated)
	}

	saved, _ := configs.Get(ctx, 1)
	if saved == nil {
		t.Fatal("config not saved")
	}
	// TimeRange does not apply to a PDF and is cleared before saving.
	if saved.TimeRange != "" || saved.PagesToGenerate != "1-8" {
		t.Errorf("saved config = %+v", saved)
	}
}

func TestConfigureAndLaunch_FailureStillMarksAttempted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	backend := NewBackendService(srv.URL, 5*time.Second)
	tracker := newStubTracker()
	configs := newStubConfigs()
	svc := NewLibraryService(backend, stubPreviews{}, tracker, configs)
	ctx := context.Background()

	source := testSources()[1]
	err := svc.ConfigureAndLaunch(ctx, source, models.QuizConfig{QuestionsPerPage: 5, TotalQuestionLimit: 100})
	if err == nil {
		t.Fatal("expected generation failure")
	}

	attempted, _ := tracker.ListAttempted(ctx)
	generated, _ := tracker.ListGenerated(ctx)
	if !attempted[2] {
		t.Error("attempted mark missing after failed generation")
	}
	if generated[2] {
		t.Error("generated mark recorded despite failure")
	}
	if cfg, _ := configs.Get(ctx, 2); cfg != nil {
		t.Error("config saved despite failure")
	}
}
