package expenses

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tilequote/tilequote/internal/platform/httpx"
)

const dateLayout = "2006-01-02"

// Invalidator is told when reported expense figures change.
type Invalidator interface {
	Bump(ctx context.Context) error
}

// Service validates and stores expenses.
type Service struct {
	repo        Repository
	invalidator Invalidator
	logger      *slog.Logger
}

// NewService wires the expense service. invalidator may be nil.
func NewService(repo Repository, invalidator Invalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, invalidator: invalidator, logger: logger}
}

// Create stores a new expense.
func (s *Service) Create(ctx context.Context, in Input) (Expense, error) {
	e, err := fromInput(in)
	if err != nil {
		return Expense{}, err
	}
	e.ID = uuid.New()
	created, err := s.repo.Create(ctx, e)
	if err != nil {
		return Expense{}, err
	}
	s.invalidate(ctx)
	s.logger.Info("expense recorded",
		slog.String("expense_id", created.ID.String()),
		slog.String("amount", created.Amount.StringFixed(2)),
	)
	return created, nil
}

// Get returns one expense.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Expense, error) {
	return s.repo.Get(ctx, id)
}

// List returns a page of expenses, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Expense, int, error) {
	filter.Limit, filter.Offset = httpx.ClampPage(filter.Limit, filter.Offset)
	return s.repo.List(ctx, filter)
}

// Update replaces an expense.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (Expense, error) {
	e, err := fromInput(in)
	if err != nil {
		return Expense{}, err
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return Expense{}, err
	}
	e.ID = id
	updated, err := s.repo.Update(ctx, e)
	if err != nil {
		return Expense{}, err
	}
	s.invalidate(ctx)
	return updated, nil
}

// Delete removes an expense.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Summary totals expenses per category between from and to, both inclusive.
func (s *Service) Summary(ctx context.Context, from, to time.Time) (Summary, error) {
	if to.Before(from) {
		return Summary{}, &httpx.ValidationError{Fields: map[string]string{"to": "must not be before from"}}
	}
	rows, err := s.repo.Totals(ctx, from, to.AddDate(0, 0, 1))
	if err != nil {
		return Summary{}, err
	}
	out := Summary{From: from, To: to, Total: decimal.Zero, Categories: make([]CategoryTotal, 0, len(rows))}
	for _, row := range rows {
		out.Total = out.Total.Add(row.Total)
		out.Categories = append(out.Categories, row)
	}
	return out, nil
}

// Monthly returns expense totals per month between from and to, both inclusive.
// Months without expenses are omitted.
func (s *Service) Monthly(ctx context.Context, from, to time.Time) ([]MonthTotal, error) {
	return s.repo.MonthlyTotals(ctx, from, to.AddDate(0, 0, 1))
}

func (s *Service) invalidate(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Bump(ctx); err != nil {
		s.logger.Warn("dashboard cache bump failed", slog.Any("error", err))
	}
}

func fromInput(in Input) (Expense, error) {
	in.Category = strings.Join(strings.Fields(in.Category), " ")
	in.Description = strings.TrimSpace(in.Description)
	if err := httpx.Validate(in); err != nil {
		return Expense{}, err
	}
	if !in.Amount.IsPositive() {
		return Expense{}, &httpx.ValidationError{Fields: map[string]string{"amount": "must be greater than zero"}}
	}
	spentOn, err := time.Parse(dateLayout, in.SpentOn)
	if err != nil {
		return Expense{}, &httpx.ValidationError{Fields: map[string]string{"spent_on": "must be YYYY-MM-DD"}}
	}
	return Expense{
		SpentOn:     spentOn,
		Category:    in.Category,
		Description: in.Description,
		Amount:      in.Amount.Round(2),
		QuoteID:     in.QuoteID,
	}, nil
}
