package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tilequote/tilequote/internal/platform/db"
	"github.com/tilequote/tilequote/internal/platform/httpx"
)

// Repository persists quotes.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	NextNumber(ctx context.Context, kind Kind, year int) (string, error)
	Insert(ctx context.Context, q Quote) (Quote, error)
	Get(ctx context.Context, id uuid.UUID) (Quote, error)
	List(ctx context.Context, filter ListFilter) ([]Quote, int, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]Quote, error)
	HasConversion(ctx context.Context, sourceID uuid.UUID) (bool, error)
	Update(ctx context.Context, q Quote) (Quote, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db   db.Querier
	pool *pgxpool.Pool
}

// NewRepository returns a pgx-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

func (r *repository) NextNumber(ctx context.Context, kind Kind, year int) (string, error) {
	var seq int
	err := r.db.QueryRow(ctx, `
		INSERT INTO quote_sequences (kind, year, last_seq) VALUES ($1, $2, 1)
		ON CONFLICT (kind, year) DO UPDATE SET last_seq = quote_sequences.last_seq + 1
		RETURNING last_seq`, string(kind), year).Scan(&seq)
	if err != nil {
		return "", fmt.Errorf("next quote number: %w", err)
	}
	return FormatNumber(kind, year, seq), nil
}

const quoteColumns = `id, number, kind, status, client_id, client_name, title, document, checklist,
	terms, source_text, source_id, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanQuote(row scanner) (Quote, error) {
	var (
		q         Quote
		kind      string
		status    string
		document  []byte
		checklist []byte
	)
	err := row.Scan(&q.ID, &q.Number, &kind, &status, &q.ClientID, &q.ClientName, &q.Title,
		&document, &checklist, &q.Terms, &q.SourceText, &q.SourceID, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return Quote{}, err
	}
	q.Kind = Kind(kind)
	q.Status = Status(status)
	if err := json.Unmarshal(document, &q.Document); err != nil {
		return Quote{}, fmt.Errorf("decode document %s: %w", q.ID, err)
	}
	if len(checklist) > 0 {
		if err := json.Unmarshal(checklist, &q.Checklist); err != nil {
			return Quote{}, fmt.Errorf("decode checklist %s: %w", q.ID, err)
		}
	}
	return q, nil
}

func encode(q Quote) ([]byte, []byte, error) {
	document, err := json.Marshal(q.Document)
	if err != nil {
		return nil, nil, fmt.Errorf("encode document: %w", err)
	}
	checklist := q.Checklist
	if checklist == nil {
		checklist = []string{}
	}
	list, err := json.Marshal(checklist)
	if err != nil {
		return nil, nil, fmt.Errorf("encode checklist: %w", err)
	}
	return document, list, nil
}

func (r *repository) Insert(ctx context.Context, q Quote) (Quote, error) {
	document, checklist, err := encode(q)
	if err != nil {
		return Quote{}, err
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO quotes (id, number, kind, status, client_id, client_name, title, document,
			checklist, terms, source_text, source_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+quoteColumns,
		q.ID, q.Number, string(q.Kind), string(q.Status), q.ClientID, q.ClientName, q.Title,
		document, checklist, q.Terms, q.SourceText, q.SourceID)
	out, err := scanQuote(row)
	if err != nil {
		return Quote{}, mapError("insert quote", err)
	}
	return out, nil
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (Quote, error) {
	out, err := scanQuote(r.db.QueryRow(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE id = $1`, id))
	if err != nil {
		return Quote{}, mapError("get quote", err)
	}
	return out, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Quote, int, error) {
	var (
		conditions []string
		args       []any
	)
	add := func(clause string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}
	if filter.Kind != "" {
		add("kind = $%d", string(filter.Kind))
	}
	if filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}
	if filter.ClientID != nil {
		add("client_id = $%d", *filter.ClientID)
	}
	if filter.From != nil {
		add("created_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("created_at < $%d", filter.To.AddDate(0, 0, 1))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+search+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(number ILIKE $%d OR title ILIKE $%d OR client_name ILIKE $%d)", n, n, n))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM quotes `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count quotes: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM quotes %s ORDER BY created_at DESC, number DESC LIMIT $%d OFFSET $%d`,
		quoteColumns, where, len(args)+1, len(args)+2)
	out, err := r.collect(ctx, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *repository) ListBetween(ctx context.Context, from, to time.Time) ([]Quote, error) {
	return r.collect(ctx, `SELECT `+quoteColumns+` FROM quotes
		WHERE created_at >= $1 AND created_at < $2 ORDER BY created_at`, from, to)
}

func (r *repository) collect(ctx context.Context, query string, args ...any) ([]Quote, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query quotes: %w", err)
	}
	defer rows.Close()

	var out []Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (r *repository) HasConversion(ctx context.Context, sourceID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM quotes WHERE source_id = $1)`, sourceID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check conversion: %w", err)
	}
	return exists, nil
}

func (r *repository) Update(ctx context.Context, q Quote) (Quote, error) {
	document, checklist, err := encode(q)
	if err != nil {
		return Quote{}, err
	}
	row := r.db.QueryRow(ctx, `
		UPDATE quotes
		SET status = $2, client_id = $3, client_name = $4, title = $5, document = $6,
			checklist = $7, terms = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING `+quoteColumns,
		q.ID, string(q.Status), q.ClientID, q.ClientName, q.Title, document, checklist, q.Terms)
	out, err := scanQuote(row)
	if err != nil {
		return Quote{}, mapError("update quote", err)
	}
	return out, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM quotes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete quote: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("quote %s: %w", id, httpx.ErrNotFound)
	}
	return nil
}

func mapError(op string, err error) error {
	switch {
	case db.IsNoRows(err):
		return fmt.Errorf("%s: %w", op, httpx.ErrNotFound)
	case db.IsUniqueViolation(err):
		return fmt.Errorf("%s: %w", op, httpx.ErrDuplicate)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
