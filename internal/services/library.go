package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"quicky-client/internal/models"
)

// TrackerStore is the durable attempted/generated bookkeeping.
type TrackerStore interface {
	MarkAttempted(ctx context.Context, sourceID int64) error
	MarkGenerated(ctx context.Context, sourceID int64) error
	ListAttempted(ctx context.Context) (map[int64]bool, error)
	ListGenerated(ctx context.Context) (map[int64]bool, error)
	Remove(ctx context.Context, sourceID int64) error
}

// ConfigStore is the saved per-source quiz configuration.
type ConfigStore interface {
	Save(ctx context.Context, sourceID int64, cfg models.QuizConfig) error
	Get(ctx context.Context, sourceID int64) (*models.QuizConfig, error)
	Delete(ctx context.Context, sourceID int64) error
}

// PreviewLookup is the slice of the preview cache the library needs:
// name resolution from already-cached previews, background warming and
// cleanup on delete.
type PreviewLookup interface {
	CachedLight(ctx context.Context, sourceID int64) *models.PreviewContent
	Preload(ctx context.Context, sources []models.Source)
	Invalidate(ctx context.Context, sourceID int64)
}

// Sort orders accepted by List.
const (
	SortNewest = "newest"
	SortOldest = "oldest"
	SortName   = "name"
	SortType   = "type"
)

// ListOptions filters and orders the library listing. Zero values mean
// no filtering and newest-first.
type ListOptions struct {
	Search string
	Types  []string
	Sort   string
}

// LibraryItem is one listed source with its derived display name and
// durable badges.
type LibraryItem struct {
	models.Source
	DisplayName   string `json:"display_name"`
	QuizAttempted bool   `json:"quiz_attempted"`
	QuizGenerated bool   `json:"quiz_generated"`
}

// LibraryService derives the content library view: fetches sources from
// the backend, joins in durable badges and saved configs, and applies
// search, type filtering and sorting.
type LibraryService struct {
	backend  *BackendService
	previews PreviewLookup
	tracker  TrackerStore
	configs  ConfigStore
}

func NewLibraryService(backend *BackendService, previews PreviewLookup, tracker TrackerStore, configs ConfigStore) *LibraryService {
	return &LibraryService{backend: backend, previews: previews, tracker: tracker, configs: configs}
}

// List fetches all sources and derives the filtered, sorted view.
// Filtering matches the display name case-insensitively; an empty type
// filter admits every type.
func (s *LibraryService) List(ctx context.Context, opts ListOptions) ([]LibraryItem, error) {
	sources, err := s.backend.ListSources(ctx)
	if err != nil {
		return nil, err
	}

	attempted, err := s.tracker.ListAttempted(ctx)
	if err != nil {
		return nil, fmt.Errorf("load attempted set: %w", err)
	}
	generated, err := s.tracker.ListGenerated(ctx)
	if err != nil {
		return nil, fmt.Errorf("load generated set: %w", err)
	}

	typeFilter := make(map[string]bool, len(opts.Types))
	for _, t := range opts.Types {
		typeFilter[t] = true
	}
	search := strings.ToLower(strings.TrimSpace(opts.Search))

	items := make([]LibraryItem, 0, len(sources))
	for _, source := range sources {
		name := source.DisplayName(s.previews.CachedLight(ctx, source.ID))
		if search != "" && !strings.Contains(strings.ToLower(name), search) {
			continue
		}
		if len(typeFilter) > 0 && !typeFilter[source.SourceType] {
			continue
		}
		items = append(items, LibraryItem{
			Source:        source,
			DisplayName:   name,
			QuizAttempted: attempted[source.ID],
			QuizGenerated: generated[source.ID],
		})
	}

	sortItems(items, opts.Sort)

	// Warm the lightweight cache for the visible slice in the
	// background so the next listing resolves names without fetches.
	go s.previews.Preload(context.WithoutCancel(ctx), sourcesOf(items))

	return items, nil
}

func sourcesOf(items []LibraryItem) []models.Source {
	out := make([]models.Source, len(items))
	for i, item := range items {
		out[i] = item.Source
	}
	return out
}

func sortItems(items []LibraryItem, order string) {
	switch order {
	case SortOldest:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].UploadedAt.Before(items[j].UploadedAt)
		})
	case SortName:
		sort.SliceStable(items, func(i, j int) bool {
			return strings.ToLower(items[i].DisplayName) < strings.ToLower(items[j].DisplayName)
		})
	case SortType:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].SourceType < items[j].SourceType
		})
	default: // newest
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].UploadedAt.After(items[j].UploadedAt)
		})
	}
}

// Delete removes the source from the backend and prunes every local
// trace: both preview cache entries, both tracker sets and the saved
// config.
func (s *LibraryService) Delete(ctx context.Context, sourceID int64) error {
	if err := s.backend.DeleteSource(ctx, sourceID); err != nil {
		return err
	}

	s.previews.Invalidate(ctx, sourceID)
	if err := s.tracker.Remove(ctx, sourceID); err != nil {
		log.Printf("tracker cleanup failed for source %d: %v", sourceID, err)
	}
	if err := s.configs.Delete(ctx, sourceID); err != nil {
		log.Printf("config cleanup failed for source %d: %v", sourceID, err)
	}
	return nil
}

// ConfigFor returns the saved config for the source, or the derived
// default when none has been saved.
func (s *LibraryService) ConfigFor(ctx context.Context, source models.Source) (models.QuizConfig, error) {
	saved, err := s.configs.Get(ctx, source.ID)
	if err != nil {
		return models.QuizConfig{}, err
	}
	if saved != nil {
		return *saved, nil
	}
	return models.DefaultQuizConfig(source), nil
}

// ConfigureAndLaunch marks the source attempted, asks the backend to
// generate questions and records the config and generated badge on
// success. The attempted mark lands before the generate call so an
// abandoned or failed generation still counts as an attempt.
func (s *LibraryService) ConfigureAndLaunch(ctx context.Context, source models.Source, cfg models.QuizConfig) error {
	if err := s.tracker.MarkAttempted(ctx, source.ID); err != nil {
		return fmt.Errorf("mark attempted: %w", err)
	}

	// Fields that do not apply to the source type are cleared rather
	// than forwarded.
	if source.SourceType != models.SourceTypePDF {
		cfg.PagesToGenerate = ""
	}
	if source.SourceType != models.SourceTypeYouTube {
		cfg.TimeRange = ""
	}

	if err := s.backend.GenerateQuestions(ctx, source.ID, cfg); err != nil {
		return err
	}

	if err := s.tracker.MarkGenerated(ctx, source.ID); err != nil {
		log.Printf("mark generated failed for source %d: %v", source.ID, err)
	}
	if err := s.configs.Save(ctx, source.ID, cfg); err != nil {
		log.Printf("config save failed for source %d: %v", source.ID, err)
	}
	return nil
}

// FindSource resolves one source by ID from the backend listing.
func (s *LibraryService) FindSource(ctx context.Context, sourceID int64) (*models.Source, error) {
	sources, err := s.backend.ListSources(ctx)
	if err != nil {
		return nil, err
	}
	for i := range sources {
		if sources[i].ID == sourceID {
			return &sources[i], nil
		}
	}
	return nil, fmt.Errorf("%w: source %d", ErrNotFound, sourceID)
}
