package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tilequote/tilequote/internal/expenses"
	"github.com/tilequote/tilequote/internal/platform/cache"
	"github.com/tilequote/tilequote/internal/platform/httpx"
	"github.com/tilequote/tilequote/internal/pricing"
	"github.com/tilequote/tilequote/internal/quotes"
	"github.com/tilequote/tilequote/internal/settings"
)

const (
	periodLayout = "2006-01"
	dateLayout   = "2006-01-02"
	maxWindow    = 3 * 366 * 24 * time.Hour
	topN         = 5
)

// QuoteSource lists stored documents created in a half-open window.
type QuoteSource interface {
	ListBetween(ctx context.Context, from, to time.Time) ([]quotes.Quote, error)
}

// ExpenseSource totals expenses per month over an inclusive window.
type ExpenseSource interface {
	Monthly(ctx context.Context, from, to time.Time) ([]expenses.MonthTotal, error)
}

// SettingsSource supplies the profile used to price every document.
type SettingsSource interface {
	Load(ctx context.Context) (settings.Settings, error)
}

// Service builds dashboards through a versioned cache.
type Service struct {
	quotes   QuoteSource
	expenses ExpenseSource
	settings SettingsSource
	cache    *cache.Versioned
	logger   *slog.Logger
}

// NewService wires the dashboard service. c may be nil.
func NewService(q QuoteSource, e ExpenseSource, s SettingsSource, c *cache.Versioned, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{quotes: q, expenses: e, settings: s, cache: c, logger: logger}
}

// Dashboard returns the figures for filter, from cache when possible.
func (s *Service) Dashboard(ctx context.Context, filter Filter) (Dashboard, error) {
	if err := filter.validate(); err != nil {
		return Dashboard{}, err
	}
	loader := func(ctx context.Context) (any, error) {
		return s.build(ctx, filter)
	}
	key, err := s.cache.Key(ctx, "dashboard", filter.From.Format(dateLayout), filter.To.Format(dateLayout))
	if err != nil {
		s.logger.Warn("dashboard cache unavailable", slog.Any("error", err))
		value, err := loader(ctx)
		if err != nil {
			return Dashboard{}, err
		}
		return value.(Dashboard), nil
	}
	var out Dashboard
	if err := s.cache.Fetch(ctx, key, &out, loader); err != nil {
		return Dashboard{}, err
	}
	return out, nil
}

// Bump discards every cached dashboard.
func (s *Service) Bump(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

// Warm rebuilds the cached dashboards the UI opens by default: the current
// month and the year to date.
func (s *Service) Warm(ctx context.Context, now time.Time) error {
	for _, f := range []Filter{MonthToDate(now), YearToDate(now)} {
		if _, err := s.Dashboard(ctx, f); err != nil {
			return fmt.Errorf("warm dashboard %s..%s: %w", f.From.Format(dateLayout), f.To.Format(dateLayout), err)
		}
	}
	return nil
}

func (s *Service) build(ctx context.Context, filter Filter) (Dashboard, error) {
	var (
		docs    []quotes.Quote
		months  []expenses.MonthTotal
		current settings.Settings
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		docs, err = s.quotes.ListBetween(gctx, filter.From, filter.To.AddDate(0, 0, 1))
		return err
	})
	g.Go(func() error {
		var err error
		months, err = s.expenses.Monthly(gctx, filter.From, filter.To)
		return err
	})
	g.Go(func() error {
		var err error
		current, err = s.settings.Load(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, fmt.Errorf("load dashboard data: %w", err)
	}
	return summarize(filter, docs, months, current.Profile), nil
}

func summarize(filter Filter, docs []quotes.Quote, months []expenses.MonthTotal, profile pricing.Profile) Dashboard {
	d := Dashboard{From: filter.From, To: filter.To, StatusCounts: map[string]int{}}
	trend := newTrend(filter)
	volumes := map[pricing.Category]float64{}

	for _, q := range docs {
		d.StatusCounts[string(q.Status)]++
		if q.Status == quotes.StatusCancelled {
			d.CancelledCount++
			continue
		}
		totals := pricing.Aggregate(q.Document, profile)
		point := trend.at(q.CreatedAt)
		switch q.Kind {
		case quotes.KindInvoice:
			d.InvoiceCount++
			d.InvoicedValue += totals.GrandTotal
			d.DepositsExpected += totals.DepositAmount
			if q.Status == quotes.StatusPaid {
				d.PaidValue += totals.GrandTotal
			}
			if point != nil {
				point.Invoiced += totals.GrandTotal
			}
		default:
			d.QuoteCount++
			d.QuotedValue += totals.GrandTotal
			d.TotalSqm += totals.TotalSqm
			if point != nil {
				point.Quoted += totals.GrandTotal
			}
			for _, tile := range q.Document.Tiles {
				rule, _ := pricing.Classify(tile.Category)
				volumes[rule.Category] += tile.Sqm.Float64()
			}
		}
	}
	for _, m := range months {
		amount := m.Total.InexactFloat64()
		d.Expenses += amount
		if point := trend.byPeriod[m.Month]; point != nil {
			point.Expenses += amount
		}
	}

	d.QuotedValue = pricing.Round2(d.QuotedValue)
	d.InvoicedValue = pricing.Round2(d.InvoicedValue)
	d.PaidValue = pricing.Round2(d.PaidValue)
	d.DepositsExpected = pricing.Round2(d.DepositsExpected)
	d.Expenses = pricing.Round2(d.Expenses)
	d.Net = pricing.Round2(d.InvoicedValue - d.Expenses)
	d.TotalSqm = pricing.Round2(d.TotalSqm)
	d.Trend = trend.points()
	d.TopCategories = topCategories(volumes)
	return d
}

type trendBuilder struct {
	order    []string
	byPeriod map[string]*TrendPoint
}

func newTrend(filter Filter) *trendBuilder {
	t := &trendBuilder{byPeriod: map[string]*TrendPoint{}}
	start := time.Date(filter.From.Year(), filter.From.Month(), 1, 0, 0, 0, 0, time.UTC)
	for m := start; !m.After(filter.To); m = m.AddDate(0, 1, 0) {
		period := m.Format(periodLayout)
		t.order = append(t.order, period)
		t.byPeriod[period] = &TrendPoint{Period: period}
	}
	return t
}

func (t *trendBuilder) at(ts time.Time) *TrendPoint {
	return t.byPeriod[ts.UTC().Format(periodLayout)]
}

func (t *trendBuilder) points() []TrendPoint {
	out := make([]TrendPoint, 0, len(t.order))
	for _, period := range t.order {
		p := *t.byPeriod[period]
		p.Quoted = pricing.Round2(p.Quoted)
		p.Invoiced = pricing.Round2(p.Invoiced)
		p.Expenses = pricing.Round2(p.Expenses)
		p.Net = pricing.Round2(p.Invoiced - p.Expenses)
		out = append(out, p)
	}
	return out
}

func topCategories(volumes map[pricing.Category]float64) []CategoryVolume {
	out := make([]CategoryVolume, 0, len(volumes))
	for category, sqm := range volumes {
		if sqm <= 0 {
			continue
		}
		out = append(out, CategoryVolume{Category: string(category), Sqm: pricing.Round2(sqm)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sqm != out[j].Sqm {
			return out[i].Sqm > out[j].Sqm
		}
		return out[i].Category < out[j].Category
	})
	if len(out) > topN {
		out = out[:topN]
	}
	return out
}

func (f Filter) validate() error {
	switch {
	case f.From.IsZero() || f.To.IsZero():
		return &httpx.ValidationError{Fields: map[string]string{"from": "from and to are required"}}
	case f.To.Before(f.From):
		return &httpx.ValidationError{Fields: map[string]string{"to": "must not be before from"}}
	case f.To.Sub(f.From) > maxWindow:
		return &httpx.ValidationError{Fields: map[string]string{"to": "window must not exceed three years"}}
	}
	return nil
}

// MonthToDate is the window from the first of now's month to now's date.
func MonthToDate(now time.Time) Filter {
	today := dateOf(now)
	return Filter{From: time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC), To: today}
}

// YearToDate is the window from the first of January to now's date.
func YearToDate(now time.Time) Filter {
	today := dateOf(now)
	return Filter{From: time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC), To: today}
}

func dateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
