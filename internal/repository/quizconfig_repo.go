package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"quicky-client/internal/models"
)

// QuizConfigRepo stores the last quiz configuration chosen per source.
type QuizConfigRepo struct {
	pool *pgxpool.Pool
}

func NewQuizConfigRepo(pool *pgxpool.Pool) *QuizConfigRepo {
	return &QuizConfigRepo{pool: pool}
}

func (r *QuizConfigRepo) Save(ctx context.Context, sourceID int64, cfg models.QuizConfig) error {
	configBytes, err := json.Marshal(cfg)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO quiz_configs (source_id, config_json, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (source_id) DO UPDATE SET config_json = $2, updated_at = NOW()`,
		sourceID, configBytes)
	return err
}

// Get returns nil when no configuration has been saved for the source.
func (r *QuizConfigRepo) Get(ctx context.Context, sourceID int64) (*models.QuizConfig, error) {
	var configBytes []byte
	err := r.pool.QueryRow(ctx,
		"SELECT config_json FROM quiz_configs WHERE source_id = $1", sourceID).Scan(&configBytes)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	cfg := &models.QuizConfig{}
	if err := json.Unmarshal(configBytes, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (r *QuizConfigRepo) Delete(ctx context.Context, sourceID int64) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM quiz_configs WHERE source_id = $1", sourceID)
	return err
}
