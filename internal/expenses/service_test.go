package expenses

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilequote/tilequote/internal/platform/httpx"
)

type memoryRepo struct {
	items map[uuid.UUID]Expense
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: map[uuid.UUID]Expense{}}
}

func (m *memoryRepo) Create(_ context.Context, e Expense) (Expense, error) {
	m.items[e.ID] = e
	return e, nil
}

func (m *memoryRepo) Get(_ context.Context, id uuid.UUID) (Expense, error) {
	e, ok := m.items[id]
	if !ok {
		return Expense{}, fmt.Errorf("get expense: %w", httpx.ErrNotFound)
	}
	return e, nil
}

func (m *memoryRepo) List(_ context.Context, filter ListFilter) ([]Expense, int, error) {
	var out []Expense
	for _, e := range m.items {
		if filter.From != nil && e.SpentOn.Before(*filter.From) {
			continue
		}
		if filter.To != nil && e.SpentOn.After(*filter.To) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SpentOn.After(out[j].SpentOn) })
	return out, len(out), nil
}

func (m *memoryRepo) Totals(_ context.Context, from, to time.Time) ([]CategoryTotal, error) {
	byCategory := map[string]*CategoryTotal{}
	for _, e := range m.items {
		if e.SpentOn.Before(from) || !e.SpentOn.Before(to) {
			continue
		}
		ct, ok := byCategory[e.Category]
		if !ok {
			ct = &CategoryTotal{Category: e.Category}
			byCategory[e.Category] = ct
		}
		ct.Count++
		ct.Total = ct.Total.Add(e.Amount)
	}
	var out []CategoryTotal
	for _, ct := range byCategory {
		out = append(out, *ct)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

func (m *memoryRepo) MonthlyTotals(_ context.Context, from, to time.Time) ([]MonthTotal, error) {
	byMonth := map[string]decimal.Decimal{}
	for _, e := range m.items {
		if e.SpentOn.Before(from) || !e.SpentOn.Before(to) {
			continue
		}
		key := e.SpentOn.Format("2006-01")
		byMonth[key] = byMonth[key].Add(e.Amount)
	}
	var out []MonthTotal
	for month, total := range byMonth {
		out = append(out, MonthTotal{Month: month, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

func (m *memoryRepo) Update(_ context.Context, e Expense) (Expense, error) {
	m.items[e.ID] = e
	return e, nil
}

func (m *memoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.items[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

type countingInvalidator struct{ bumps int }

func (c *countingInvalidator) Bump(context.Context) error {
	c.bumps++
	return nil
}

func TestCreateValidatesAmountAndDate(t *testing.T) {
	inv := &countingInvalidator{}
	svc := NewService(newMemoryRepo(), inv, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, Input{SpentOn: "2026-05-01", Category: "Transport", Amount: decimal.Zero})
	require.Error(t, err)
	assert.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Create(ctx, Input{SpentOn: "01/05/2026", Category: "Transport", Amount: decimal.NewFromInt(10)})
	assert.ErrorIs(t, err, httpx.ErrValidation)

	e, err := svc.Create(ctx, Input{SpentOn: "2026-05-01", Category: "  Transport  ", Amount: decimal.RequireFromString("2500.456")})
	require.NoError(t, err)
	assert.Equal(t, "Transport", e.Category)
	assert.Equal(t, "2500.46", e.Amount.StringFixed(2))
	assert.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), e.SpentOn)
	assert.Equal(t, 1, inv.bumps)
}

func TestSummaryGroupsByCategoryInclusive(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)
	ctx := context.Background()
	for _, in := range []Input{
		{SpentOn: "2026-05-01", Category: "Transport", Amount: decimal.NewFromInt(2000)},
		{SpentOn: "2026-05-31", Category: "Transport", Amount: decimal.NewFromInt(1500)},
		{SpentOn: "2026-05-10", Category: "Cement", Amount: decimal.NewFromInt(9000)},
		{SpentOn: "2026-06-01", Category: "Cement", Amount: decimal.NewFromInt(100)},
	} {
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
	}

	from := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC)
	sum, err := svc.Summary(ctx, from, to)
	require.NoError(t, err)
	assert.Equal(t, "12500", sum.Total.String())
	require.Len(t, sum.Categories, 2)
	assert.Equal(t, "Cement", sum.Categories[0].Category)
	assert.Equal(t, 2, sum.Categories[1].Count)

	_, err = svc.Summary(ctx, to, from)
	assert.ErrorIs(t, err, httpx.ErrValidation)

	months, err := svc.Monthly(ctx, from, time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, months, 2)
	assert.Equal(t, "2026-05", months[0].Month)
	assert.Equal(t, "12500", months[0].Total.String())
	assert.Equal(t, "100", months[1].Total.String())
}

func TestHandlerCreateAndSummary(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)
	h := NewHandler(svc, nil)
	h.now = func() time.Time { return time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC) }
	r := chi.NewRouter()
	h.MountRoutes(r)

	rec := httptest.NewRecorder()
	body := `{"spent_on":"2026-05-03","category":"Grout","amount":"4200"}`
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/summary", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":"4200"`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"spent_on":"2026-05-03","category":"Grout","amount":-5}`)))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
