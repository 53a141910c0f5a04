package clients

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tilequote/tilequote/internal/platform/db"
	"github.com/tilequote/tilequote/internal/platform/httpx"
)

// Repository persists clients.
type Repository interface {
	Create(ctx context.Context, c Client) (Client, error)
	Get(ctx context.Context, id uuid.UUID) (Client, error)
	List(ctx context.Context, filter ListFilter) ([]Client, int, error)
	Update(ctx context.Context, c Client) (Client, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db db.Querier
}

// NewRepository returns a pgx-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const clientColumns = `id, name, phone, email, address, notes, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanClient(row scanner) (Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *repository) Create(ctx context.Context, c Client) (Client, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO clients (id, name, phone, email, address, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+clientColumns,
		c.ID, c.Name, c.Phone, c.Email, c.Address, c.Notes)
	out, err := scanClient(row)
	if err != nil {
		return Client{}, mapError("insert client", err)
	}
	return out, nil
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (Client, error) {
	out, err := scanClient(r.db.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id))
	if err != nil {
		return Client{}, mapError("get client", err)
	}
	return out, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Client, int, error) {
	var (
		where string
		args  []any
	)
	if search := strings.TrimSpace(filter.Search); search != "" {
		where = `WHERE name ILIKE $1 OR phone ILIKE $1 OR email ILIKE $1`
		args = append(args, "%"+search+"%")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM clients `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count clients: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM clients %s ORDER BY lower(name) LIMIT $%d OFFSET $%d`,
		clientColumns, where, len(args)+1, len(args)+2)
	rows, err := r.db.Query(ctx, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var out []Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan client: %w", err)
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *repository) Update(ctx context.Context, c Client) (Client, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE clients
		SET name = $2, phone = $3, email = $4, address = $5, notes = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING `+clientColumns,
		c.ID, c.Name, c.Phone, c.Email, c.Address, c.Notes)
	out, err := scanClient(row)
	if err != nil {
		return Client{}, mapError("update client", err)
	}
	return out, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("client %s: %w", id, httpx.ErrNotFound)
	}
	return nil
}

func mapError(op string, err error) error {
	switch {
	case db.IsNoRows(err):
		return fmt.Errorf("%s: %w", op, httpx.ErrNotFound)
	case db.IsUniqueViolation(err):
		return fmt.Errorf("%s: client with this name and phone exists: %w", op, httpx.ErrDuplicate)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
