package expenses

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

// Repository persists expenses.
type Repository interface {
	Create(ctx context.Context, e Expense) (Expense, error)
	Get(ctx context.Context, id uuid.UUID) (Expense, error)
	List(ctx context.Context, filter ListFilter) ([]Expense, int, error)
	Totals(ctx context.Context, from, to time.Time) ([]CategoryTotal, error)
	MonthlyTotals(ctx context.Context, from, to time.Time) ([]MonthTotal, error)
	Update(ctx context.Context, e Expense) (Expense, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db db.Querier
}

// NewRepository returns a pgx-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const expenseColumns = `id, spent_on, category, description, amount, quote_id, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(row scanner) (Expense, error) {
	var e Expense
	err := row.Scan(&e.ID, &e.SpentOn, &e.Category, &e.Description, &e.Amount, &e.QuoteID, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func (r *repository) Create(ctx context.Context, e Expense) (Expense, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO expenses (id, spent_on, category, description, amount, quote_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+expenseColumns,
		e.ID, e.SpentOn, e.Category, e.Description, e.Amount, e.QuoteID)
	out, err := scanExpense(row)
	if err != nil {
		return Expense{}, mapError("insert expense", err)
	}
	return out, nil
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (Expense, error) {
	out, err := scanExpense(r.db.QueryRow(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = $1`, id))
	if err != nil {
		return Expense{}, mapError("get expense", err)
	}
	return out, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Expense, int, error) {
	var (
		conditions []string
		args       []any
	)
	add := func(clause string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}
	if filter.From != nil {
		add("spent_on >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("spent_on <= $%d", *filter.To)
	}
	if c := strings.TrimSpace(filter.Category); c != "" {
		add("lower(category) = lower($%d)", c)
	}
	if filter.QuoteID != nil {
		add("quote_id = $%d", *filter.QuoteID)
	}
	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM expenses `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count expenses: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM expenses %s ORDER BY spent_on DESC, created_at DESC LIMIT $%d OFFSET $%d`,
		expenseColumns, where, len(args)+1, len(args)+2)
	rows, err := r.db.Query(ctx, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}

func (r *repository) Totals(ctx context.Context, from, to time.Time) ([]CategoryTotal, error) {
	rows, err := r.db.Query(ctx, `
		SELECT category, COUNT(*), COALESCE(SUM(amount), 0)
		FROM expenses
		WHERE spent_on >= $1 AND spent_on < $2
		GROUP BY category
		ORDER BY category`, from, to)
	if err != nil {
		return nil, fmt.Errorf("expense totals: %w", err)
	}
	defer rows.Close()

	var out []CategoryTotal
	for rows.Next() {
		var ct CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Count, &ct.Total); err != nil {
			return nil, fmt.Errorf("scan expense total: %w", err)
		}
		out = append(out, ct)
	}
	return out, rows.Err()
}

func (r *repository) MonthlyTotals(ctx context.Context, from, to time.Time) ([]MonthTotal, error) {
	rows, err := r.db.Query(ctx, `
		SELECT to_char(date_trunc('month', spent_on), 'YYYY-MM') AS month, SUM(amount)
		FROM expenses
		WHERE spent_on >= $1 AND spent_on < $2
		GROUP BY month
		ORDER BY month`, from, to)
	if err != nil {
		return nil, fmt.Errorf("monthly expense totals: %w", err)
	}
	defer rows.Close()

	var out []MonthTotal
	for rows.Next() {
		var mt MonthTotal
		if err := rows.Scan(&mt.Month, &mt.Total); err != nil {
			return nil, fmt.Errorf("scan monthly expense total: %w", err)
		}
		out = append(out, mt)
	}
	return out, rows.Err()
}

func (r *repository) Update(ctx context.Context, e Expense) (Expense, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE expenses
		SET spent_on = $2, category = $3, description = $4, amount = $5, quote_id = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING `+expenseColumns,
		e.ID, e.SpentOn, e.Category, e.Description, e.Amount, e.QuoteID)
	out, err := scanExpense(row)
	if err != nil {
		return Expense{}, mapError("update expense", err)
	}
	return out, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("expense %s: %w", id, httpx.ErrNotFound)
	}
	return nil
}

func mapError(op string, err error) error {
	switch {
	case db.IsNoRows(err):
		return fmt.Errorf("%s: %w", op, httpx.ErrNotFound)
	case db.IsForeignKeyViolation(err):
		return fmt.Errorf("%s: quote does not exist: %w", op, httpx.ErrValidation)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
