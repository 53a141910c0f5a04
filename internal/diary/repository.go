package diary

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tilequote/tilequote/internal/platform/db"
	"github.com/tilequote/tilequote/internal/platform/httpx"
)

// Repository persists diary entries.
type Repository interface {
	Create(ctx context.Context, e Entry) (Entry, error)
	Get(ctx context.Context, id uuid.UUID) (Entry, error)
	List(ctx context.Context, filter ListFilter) ([]Entry, int, error)
	FollowUps(ctx context.Context, from, to time.Time) ([]Entry, error)
	Update(ctx context.Context, e Entry) (Entry, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db db.Querier
}

// NewRepository returns a pgx-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const entryColumns = `id, entry_date, title, body, location, follow_up, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.EntryDate, &e.Title, &e.Body, &e.Location, &e.FollowUp, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func (r *repository) Create(ctx context.Context, e Entry) (Entry, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO diary_entries (id, entry_date, title, body, location, follow_up)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+entryColumns,
		e.ID, e.EntryDate, e.Title, e.Body, e.Location, e.FollowUp)
	out, err := scanEntry(row)
	if err != nil {
		return Entry{}, mapError("insert diary entry", err)
	}
	return out, nil
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (Entry, error) {
	out, err := scanEntry(r.db.QueryRow(ctx, `SELECT `+entryColumns+` FROM diary_entries WHERE id = $1`, id))
	if err != nil {
		return Entry{}, mapError("get diary entry", err)
	}
	return out, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Entry, int, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("entry_date >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("entry_date <= $%d", len(args)))
	}
	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM diary_entries `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count diary entries: %w", err)
	}
	query := fmt.Sprintf(`SELECT %s FROM diary_entries %s ORDER BY entry_date DESC, created_at DESC LIMIT $%d OFFSET $%d`,
		entryColumns, where, len(args)+1, len(args)+2)
	out, err := r.collect(ctx, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *repository) FollowUps(ctx context.Context, from, to time.Time) ([]Entry, error) {
	return r.collect(ctx, `SELECT `+entryColumns+` FROM diary_entries
		WHERE follow_up >= $1 AND follow_up <= $2 ORDER BY follow_up, entry_date`, from, to)
}

func (r *repository) collect(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query diary entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan diary entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *repository) Update(ctx context.Context, e Entry) (Entry, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE diary_entries
		SET entry_date = $2, title = $3, body = $4, location = $5, follow_up = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING `+entryColumns,
		e.ID, e.EntryDate, e.Title, e.Body, e.Location, e.FollowUp)
	out, err := scanEntry(row)
	if err != nil {
		return Entry{}, mapError("update diary entry", err)
	}
	return out, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM diary_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete diary entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("diary entry %s: %w", id, httpx.ErrNotFound)
	}
	return nil
}

func mapError(op string, err error) error {
	if db.IsNoRows(err) {
		return fmt.Errorf("%s: %w", op, httpx.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
