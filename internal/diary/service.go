package diary

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tilequote/tilequote/internal/platform/httpx"
)

const (
	dateLayout          = "2006-01-02"
	defaultUpcomingDays = 14
	maxUpcomingDays     = 90
)

// Service validates and stores diary entries.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService wires the diary service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Create stores a new entry.
func (s *Service) Create(ctx context.Context, in Input) (Entry, error) {
	e, err := fromInput(in)
	if err != nil {
		return Entry{}, err
	}
	e.ID = uuid.New()
	return s.repo.Create(ctx, e)
}

// Get returns one entry.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Entry, error) {
	return s.repo.Get(ctx, id)
}

// List returns a page of entries, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Entry, int, error) {
	filter.Limit, filter.Offset = httpx.ClampPage(filter.Limit, filter.Offset)
	return s.repo.List(ctx, filter)
}

// Update replaces an entry.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (Entry, error) {
	e, err := fromInput(in)
	if err != nil {
		return Entry{}, err
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return Entry{}, err
	}
	e.ID = id
	return s.repo.Update(ctx, e)
}

// Delete removes an entry.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// Upcoming lists entries whose follow-up falls within the next days days,
// today included. Non-positive days use the default window.
func (s *Service) Upcoming(ctx context.Context, days int) ([]Entry, error) {
	if days <= 0 {
		days = defaultUpcomingDays
	}
	if days > maxUpcomingDays {
		days = maxUpcomingDays
	}
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	items, err := s.repo.FollowUps(ctx, today, today.AddDate(0, 0, days))
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Entry{}
	}
	return items, nil
}

func fromInput(in Input) (Entry, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Body = strings.TrimSpace(in.Body)
	in.Location = strings.TrimSpace(in.Location)
	in.FollowUp = strings.TrimSpace(in.FollowUp)
	if err := httpx.Validate(in); err != nil {
		return Entry{}, err
	}
	date, err := time.Parse(dateLayout, in.EntryDate)
	if err != nil {
		return Entry{}, &httpx.ValidationError{Fields: map[string]string{"entry_date": "must be YYYY-MM-DD"}}
	}
	e := Entry{EntryDate: date, Title: in.Title, Body: in.Body, Location: in.Location}
	if in.FollowUp != "" {
		followUp, err := time.Parse(dateLayout, in.FollowUp)
		if err != nil {
			return Entry{}, &httpx.ValidationError{Fields: map[string]string{"follow_up": "must be YYYY-MM-DD"}}
		}
		if followUp.Before(date) {
			return Entry{}, &httpx.ValidationError{Fields: map[string]string{"follow_up": "must not be before entry_date"}}
		}
		e.FollowUp = &followUp
	}
	return e, nil
}
