package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TrackerRepo persists which sources have had quizzes attempted and
// which have had questions generated. Both sets survive restarts so the
// library page can badge sources correctly.
type TrackerRepo struct {
	pool *pgxpool.Pool
}

func NewTrackerRepo(pool *pgxpool.Pool) *TrackerRepo {
	return &TrackerRepo{pool: pool}
}

func (r *TrackerRepo) MarkAttempted(ctx context.Context, sourceID int64) error {
	_, err := r.pool.Exec(ctx,
		"INSERT INTO quiz_attempted_sources (source_id) VALUES ($1) ON CONFLICT (source_id) DO NOTHING",
		sourceID)
	return err
}

func (r *TrackerRepo) MarkGenerated(ctx context.Context, sourceID int64) error {
	_, err := r.pool.Exec(ctx,
		"INSERT INTO quiz_generated_sources (source_id) VALUES ($1) ON CONFLICT (source_id) DO NOTHING",
		sourceID)
	return err
}

func (r *TrackerRepo) ListAttempted(ctx context.Context) (map[int64]bool, error) {
	return r.list(ctx, "SELECT source_id FROM quiz_attempted_sources")
}

func (r *TrackerRepo) ListGenerated(ctx context.Context) (map[int64]bool, error) {
	return r.list(ctx, "SELECT source_id FROM quiz_generated_sources")
}

func (r *TrackerRepo) list(ctx context.Context, query string) (map[int64]bool, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

// Remove drops the source from both sets. Called when a source is
// deleted from the library.
func (r *TrackerRepo) Remove(ctx context.Context, sourceID int64) error {
	if _, err := r.pool.Exec(ctx,
		"DELETE FROM quiz_attempted_sources WHERE source_id = $1", sourceID); err != nil {
		return err
	}
	_, err := r.pool.Exec(ctx,
		"DELETE FROM quiz_generated_sources WHERE source_id = $1", sourceID)
	return err
}
