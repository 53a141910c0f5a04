package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tilequote/tilequote/internal/platform/db"
)

// ErrNotFound is returned when no settings row has been saved yet.
var ErrNotFound = errors.New("settings: not found")

// Repository persists the settings record.
type Repository interface {
	Get(ctx context.Context) (Settings, error)
	Save(ctx context.Context, s Settings) (time.Time, error)
}

type repository struct {
	db db.Querier
}

// NewRepository returns a pgx-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func (r *repository) Get(ctx context.Context) (Settings, error) {
	var (
		payload   []byte
		updatedAt time.Time
	)
	err := r.db.QueryRow(ctx, `SELECT payload, updated_at FROM settings WHERE id = 1`).Scan(&payload, &updatedAt)
	if err != nil {
		if db.IsNoRows(err) {
			return Settings{}, ErrNotFound
		}
		return Settings{}, fmt.Errorf("settings: select: %w", err)
	}
	var s Settings
	if err := json.Unmarshal(payload, &s); err != nil {
		return Settings{}, fmt.Errorf("settings: decode payload: %w", err)
	}
	s.UpdatedAt = updatedAt
	return s, nil
}

func (r *repository) Save(ctx context.Context, s Settings) (time.Time, error) {
	s.UpdatedAt = time.Time{}
	payload, err := json.Marshal(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("settings: encode payload: %w", err)
	}
	var updatedAt time.Time
	err = r.db.QueryRow(ctx, `
		INSERT INTO settings (id, payload, updated_at)
		VALUES (1, $1, NOW())
		ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload, updated_at = NOW()
		RETURNING updated_at`, payload).Scan(&updatedAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("settings: upsert: %w", err)
	}
	return updatedAt, nil
}
