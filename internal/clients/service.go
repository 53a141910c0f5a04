package clients

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/tilequote/tilequote/internal/platform/httpx"
)

// Service validates and stores clients.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService wires the client service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Create stores a new client.
func (s *Service) Create(ctx context.Context, in Input) (Client, error) {
	in = normalize(in)
	if err := httpx.Validate(in); err != nil {
		return Client{}, err
	}
	created, err := s.repo.Create(ctx, Client{
		ID:      uuid.New(),
		Name:    in.Name,
		Phone:   in.Phone,
		Email:   in.Email,
		Address: in.Address,
		Notes:   in.Notes,
	})
	if err != nil {
		return Client{}, err
	}
	s.logger.Info("client created", slog.String("client_id", created.ID.String()))
	return created, nil
}

// Get returns one client.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Client, error) {
	return s.repo.Get(ctx, id)
}

// List returns a page of clients.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Client, int, error) {
	filter.Limit, filter.Offset = httpx.ClampPage(filter.Limit, filter.Offset)
	return s.repo.List(ctx, filter)
}

// Update replaces a client's details.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (Client, error) {
	in = normalize(in)
	if err := httpx.Validate(in); err != nil {
		return Client{}, err
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return Client{}, err
	}
	existing.Name = in.Name
	existing.Phone = in.Phone
	existing.Email = in.Email
	existing.Address = in.Address
	existing.Notes = in.Notes
	return s.repo.Update(ctx, existing)
}

// Delete removes a client. Quotes keep their copy of the client name.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func normalize(in Input) Input {
	in.Name = strings.Join(strings.Fields(in.Name), " ")
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Address = strings.TrimSpace(in.Address)
	in.Notes = strings.TrimSpace(in.Notes)
	return in
}
