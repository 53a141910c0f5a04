package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/tilequote/tilequote/internal/platform/cache"
	"github.com/tilequote/tilequote/internal/platform/httpx"
	"github.com/tilequote/tilequote/internal/pricing"
)

const cacheKey = "current"

// Service reads and writes settings through a Redis cache.
type Service struct {
	repo   Repository
	cache  *cache.Versioned
	logger *slog.Logger
	group  singleflight.Group
}

// NewService wires the repository with a versioned cache. cache may be nil.
func NewService(repo Repository, c *cache.Versioned, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: c, logger: logger}
}

// Load returns the stored settings, or the defaults when none are saved.
func (s *Service) Load(ctx context.Context) (Settings, error) {
	value, err, _ := s.group.Do(cacheKey, func() (any, error) {
		// Shared by every waiter, so one caller's cancellation must not fail the rest.
		return s.fetch(context.WithoutCancel(ctx))
	})
	if err != nil {
		return Settings{}, err
	}
	out := value.(Settings)
	out.Profile = out.Profile.Clone()
	return out, nil
}

func (s *Service) fetch(ctx context.Context) (Settings, error) {
	load := func(ctx context.Context) (any, error) {
		stored, err := s.repo.Get(ctx)
		if errors.Is(err, ErrNotFound) {
			return Default(), nil
		}
		return stored, err
	}

	key, err := s.cache.Key(ctx, cacheKey)
	if err != nil {
		s.logger.Warn("settings cache unavailable", slog.Any("error", err))
		value, err := load(ctx)
		if err != nil {
			return Settings{}, err
		}
		return value.(Settings), nil
	}
	var out Settings
	if err := s.cache.Fetch(ctx, key, &out, load); err != nil {
		return Settings{}, err
	}
	return out, nil
}

// Profile returns a validated snapshot of the pricing profile.
func (s *Service) Profile(ctx context.Context) (pricing.Profile, error) {
	current, err := s.Load(ctx)
	if err != nil {
		return pricing.Profile{}, err
	}
	if err := current.Profile.Validate(); err != nil {
		return pricing.Profile{}, fmt.Errorf("%w: stored %w", httpx.ErrConflict, err)
	}
	return current.Profile, nil
}

// Save validates and stores new settings, then invalidates the cache.
func (s *Service) Save(ctx context.Context, next Settings) (Settings, error) {
	if err := httpx.Validate(next); err != nil {
		return Settings{}, err
	}
	if err := next.Profile.Validate(); err != nil {
		return Settings{}, fmt.Errorf("%w: %w", httpx.ErrValidation, err)
	}
	next.Business.Currency = strings.ToUpper(strings.TrimSpace(next.Business.Currency))
	if next.Business.Currency == "" {
		next.Business.Currency = DefaultCurrency
	}

	updatedAt, err := s.repo.Save(ctx, next)
	if err != nil {
		return Settings{}, err
	}
	next.UpdatedAt = updatedAt
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("settings cache bump failed", slog.Any("error", err))
	}
	s.logger.Info("settings saved", slog.Time("updated_at", updatedAt))
	return next, nil
}
