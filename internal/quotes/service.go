package quotes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tilequote/tilequote/internal/clients"
	"github.com/tilequote/tilequote/internal/export"
	"github.com/tilequote/tilequote/internal/interpret"
	"github.com/tilequote/tilequote/internal/observability"
	"github.com/tilequote/tilequote/internal/platform/httpx"
	"github.com/tilequote/tilequote/internal/pricing"
	"github.com/tilequote/tilequote/internal/settings"
)

// SettingsSource supplies the business details and pricing profile.
type SettingsSource interface {
	Load(ctx context.Context) (settings.Settings, error)
}

// ClientDirectory resolves client names for denormalisation.
type ClientDirectory interface {
	Get(ctx context.Context, id uuid.UUID) (clients.Client, error)
}

// Invalidator is notified after any mutation that changes reported figures.
type Invalidator interface {
	Bump(ctx context.Context) error
}

// Deps groups the collaborators of Service. Only Repo and Settings are required.
type Deps struct {
	Repo        Repository
	Settings    SettingsSource
	Clients     ClientDirectory
	Interpreter interpret.Interpreter
	Invalidator Invalidator
	Metrics     *observability.Metrics
	Logger      *slog.Logger
	Now         func() time.Time
}

// Service orchestrates quote storage around the pricing engine.
type Service struct {
	repo        Repository
	settings    SettingsSource
	clients     ClientDirectory
	interpreter interpret.Interpreter
	invalidator Invalidator
	metrics     *observability.Metrics
	logger      *slog.Logger
	now         func() time.Time
}

// NewService wires the quote service.
func NewService(deps Deps) *Service {
	s := &Service{
		repo:        deps.Repo,
		settings:    deps.Settings,
		clients:     deps.Clients,
		interpreter: deps.Interpreter,
		invalidator: deps.Invalidator,
		metrics:     deps.Metrics,
		logger:      deps.Logger,
		now:         deps.Now,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// pricingContext loads settings and builds a resolver. An invalid stored
// profile stops every write.
func (s *Service) pricingContext(ctx context.Context) (settings.Settings, *pricing.Resolver, error) {
	current, err := s.settings.Load(ctx)
	if err != nil {
		return settings.Settings{}, nil, err
	}
	resolver, err := pricing.NewResolver(current.Profile)
	if err != nil {
		return settings.Settings{}, nil, fmt.Errorf("%w: stored %w", httpx.ErrConflict, err)
	}
	return current, resolver, nil
}

func (s *Service) view(q Quote, profile pricing.Profile, op string) QuoteView {
	s.metrics.RecordCalculation(op)
	return QuoteView{Quote: q, Totals: pricing.Aggregate(q.Document, profile)}
}

// Create prepares and stores a new document.
func (s *Service) Create(ctx context.Context, req CreateRequest) (QuoteView, error) {
	if err := httpx.Validate(req); err != nil {
		return QuoteView{}, err
	}
	if err := checkQuantities(req.Document); err != nil {
		return QuoteView{}, err
	}
	current, resolver, err := s.pricingContext(ctx)
	if err != nil {
		return QuoteView{}, err
	}
	clientName, err := s.clientName(ctx, req.ClientID, req.ClientName)
	if err != nil {
		return QuoteView{}, err
	}

	doc := applyProfileDefaults(normalizeInput(req.Document), current.Profile)
	q := Quote{
		Kind:       kindOrDefault(req.Kind),
		ClientID:   req.ClientID,
		ClientName: clientName,
		Title:      strings.TrimSpace(req.Title),
		Document:   pricing.PrepareDocument(doc, nil, resolver),
		Checklist:  cleanChecklist(req.Checklist),
		Terms:      termsOrDefault(req.Terms, current),
	}
	created, err := s.insert(ctx, q)
	if err != nil {
		return QuoteView{}, err
	}
	return s.view(created, current.Profile, "create"), nil
}

// CreateFromText asks the interpreter for a draft and stores it prepared.
func (s *Service) CreateFromText(ctx context.Context, req TextRequest) (QuoteView, error) {
	if err := httpx.Validate(req); err != nil {
		return QuoteView{}, err
	}
	if s.interpreter == nil {
		return QuoteView{}, interpret.ErrInterpreterUnavailable
	}
	current, resolver, err := s.pricingContext(ctx)
	if err != nil {
		return QuoteView{}, err
	}

	draft, err := s.interpreter.Interpret(ctx, interpret.Request{Text: req.Text})
	s.metrics.RecordInterpret(err)
	if err != nil {
		s.logger.Warn("interpretation failed", slog.Any("error", err))
		return QuoteView{}, err
	}
	clientName, err := s.clientName(ctx, req.ClientID, draft.ClientName)
	if err != nil {
		return QuoteView{}, err
	}

	doc, quantities := draft.Document()
	if err := checkQuantities(doc); err != nil {
		return QuoteView{}, err
	}
	doc = applyProfileDefaults(doc, current.Profile)
	q := Quote{
		Kind:       kindOrDefault(req.Kind),
		ClientID:   req.ClientID,
		ClientName: clientName,
		Title:      strings.TrimSpace(draft.Title),
		Document:   pricing.PrepareDocument(doc, quantities, resolver),
		Checklist:  cleanChecklist(draft.Checklist),
		Terms:      termsOrDefault(draft.Terms, current),
		SourceText: strings.TrimSpace(req.Text),
	}
	created, err := s.insert(ctx, q)
	if err != nil {
		return QuoteView{}, err
	}
	return s.view(created, current.Profile, "create_from_text"), nil
}

func (s *Service) insert(ctx context.Context, q Quote) (Quote, error) {
	q.ID = uuid.New()
	q.Status = StatusDraft
	var created Quote
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		number, err := repo.NextNumber(ctx, q.Kind, s.now().Year())
		if err != nil {
			return err
		}
		q.Number = number
		created, err = repo.Insert(ctx, q)
		return err
	})
	if err != nil {
		return Quote{}, err
	}
	s.invalidate(ctx)
	s.logger.Info("quote created",
		slog.String("quote_id", created.ID.String()),
		slog.String("number", created.Number),
		slog.Int("tiles", len(created.Document.Tiles)),
	)
	return created, nil
}

// Get returns one document with its totals.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (QuoteView, error) {
	q, err := s.repo.Get(ctx, id)
	if err != nil {
		return QuoteView{}, err
	}
	current, err := s.settings.Load(ctx)
	if err != nil {
		return QuoteView{}, err
	}
	return s.view(q, current.Profile, "get"), nil
}

// List returns a page of the history list with totals for every row.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]QuoteView, int, error) {
	filter.Limit, filter.Offset = httpx.ClampPage(filter.Limit, filter.Offset)
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	current, err := s.settings.Load(ctx)
	if err != nil {
		return nil, 0, err
	}
	out := make([]QuoteView, 0, len(items))
	for _, q := range items {
		out = append(out, s.view(q, current.Profile, "list"))
	}
	return out, total, nil
}

// Update replaces the document body. Prices typed by the user are kept as
// overrides; every other line is re-resolved.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (QuoteView, error) {
	if err := httpx.Validate(req); err != nil {
		return QuoteView{}, err
	}
	if err := checkQuantities(req.Document); err != nil {
		return QuoteView{}, err
	}
	current, resolver, err := s.pricingContext(ctx)
	if err != nil {
		return QuoteView{}, err
	}
	clientName, err := s.clientName(ctx, req.ClientID, req.ClientName)
	if err != nil {
		return QuoteView{}, err
	}
	return s.mutate(ctx, id, current.Profile, "update", func(q *Quote) error {
		q.ClientID = req.ClientID
		q.ClientName = clientName
		q.Title = strings.TrimSpace(req.Title)
		q.Document = pricing.PrepareDocument(normalizeInput(req.Document), nil, resolver)
		q.Checklist = cleanChecklist(req.Checklist)
		q.Terms = strings.TrimSpace(req.Terms)
		return nil
	})
}

// EditLine applies a single-line edit and re-reconciles that line from the
// field the edit declares.
func (s *Service) EditLine(ctx context.Context, id uuid.UUID, index int, edit LineEdit) (QuoteView, error) {
	if err := httpx.Validate(edit); err != nil {
		return QuoteView{}, err
	}
	basis, err := edit.drivingBasis()
	if err != nil {
		return QuoteView{}, err
	}
	current, resolver, err := s.pricingContext(ctx)
	if err != nil {
		return QuoteView{}, err
	}
	return s.mutate(ctx, id, current.Profile, "edit_line", func(q *Quote) error {
		item, err := tileAt(q.Document, index)
		if err != nil {
			return err
		}
		item, quantity := edit.apply(item, basis)
		q.Document.Tiles[index] = pricing.PrepareLine(item, quantity, resolver)
		return nil
	})
}

// ToggleWastage adds or removes the profile wastage factor on one line.
func (s *Service) ToggleWastage(ctx context.Context, id uuid.UUID, index int, req WastageRequest) (QuoteView, error) {
	if err := httpx.Validate(req); err != nil {
		return QuoteView{}, err
	}
	current, resolver, err := s.pricingContext(ctx)
	if err != nil {
		return QuoteView{}, err
	}
	return s.mutate(ctx, id, current.Profile, "wastage", func(q *Quote) error {
		item, err := tileAt(q.Document, index)
		if err != nil {
			return err
		}
		applied := req.Direction == pricing.WastageAdd
		if item.WastageApplied == applied {
			return fmt.Errorf("%w: wastage already %sed on line %d", httpx.ErrConflict, req.Direction, index)
		}
		next, err := pricing.ToggleWastage(item, req.Direction, resolver)
		if err != nil {
			return fmt.Errorf("%w: %w", httpx.ErrValidation, err)
		}
		q.Document.Tiles[index] = next
		return nil
	})
}

// Preview prepares an unsaved document and returns its totals.
func (s *Service) Preview(ctx context.Context, doc pricing.QuotationDocument) (Preview, error) {
	if err := checkQuantities(doc); err != nil {
		return Preview{}, err
	}
	current, resolver, err := s.pricingContext(ctx)
	if err != nil {
		return Preview{}, err
	}
	prepared := pricing.PrepareDocument(applyProfileDefaults(normalizeInput(doc), current.Profile), nil, resolver)
	s.metrics.RecordCalculation("preview")
	return Preview{Document: prepared, Totals: pricing.Aggregate(prepared, current.Profile)}, nil
}

// ConvertToInvoice copies a quotation into a new invoice and marks the
// quotation accepted.
func (s *Service) ConvertToInvoice(ctx context.Context, id uuid.UUID) (QuoteView, error) {
	current, err := s.settings.Load(ctx)
	if err != nil {
		return QuoteView{}, err
	}
	var invoice Quote
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		source, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if source.Kind != KindQuotation {
			return fmt.Errorf("%w: %s is already an invoice", httpx.ErrConflict, source.Number)
		}
		if source.Status == StatusCancelled {
			return fmt.Errorf("%w: %s is cancelled", httpx.ErrConflict, source.Number)
		}
		converted, err := repo.HasConversion(ctx, source.ID)
		if err != nil {
			return err
		}
		if converted {
			return fmt.Errorf("%w: %s was already converted", httpx.ErrConflict, source.Number)
		}

		number, err := repo.NextNumber(ctx, KindInvoice, s.now().Year())
		if err != nil {
			return err
		}
		sourceID := source.ID
		invoice, err = repo.Insert(ctx, Quote{
			ID:         uuid.New(),
			Number:     number,
			Kind:       KindInvoice,
			Status:     StatusDraft,
			ClientID:   source.ClientID,
			ClientName: source.ClientName,
			Title:      source.Title,
			Document:   source.Document.Clone(),
			Checklist:  append([]string(nil), source.Checklist...),
			Terms:      source.Terms,
			SourceID:   &sourceID,
		})
		if err != nil {
			return err
		}
		if source.Status.CanTransition(source.Kind, StatusAccepted) {
			source.Status = StatusAccepted
			if _, err := repo.Update(ctx, source); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return QuoteView{}, err
	}
	s.invalidate(ctx)
	s.logger.Info("quote converted", slog.String("source_id", id.String()), slog.String("invoice", invoice.Number))
	return s.view(invoice, current.Profile, "convert"), nil
}

// UpdateStatus moves a document through its lifecycle.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, req StatusRequest) (QuoteView, error) {
	if err := httpx.Validate(req); err != nil {
		return QuoteView{}, err
	}
	current, err := s.settings.Load(ctx)
	if err != nil {
		return QuoteView{}, err
	}
	return s.save(ctx, id, current.Profile, "status", false, func(q *Quote) error {
		if q.Status == req.Status {
			return nil
		}
		if !q.Status.CanTransition(q.Kind, req.Status) {
			return fmt.Errorf("%w: cannot move %s from %s to %s", httpx.ErrConflict, q.Kind, q.Status, req.Status)
		}
		q.Status = req.Status
		return nil
	})
}

// Delete removes a document.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.logger.Info("quote deleted", slog.String("quote_id", id.String()))
	return nil
}

// Payload assembles everything the exporters need for one document.
func (s *Service) Payload(ctx context.Context, id uuid.UUID) (export.QuotePayload, error) {
	q, err := s.repo.Get(ctx, id)
	if err != nil {
		return export.QuotePayload{}, err
	}
	current, err := s.settings.Load(ctx)
	if err != nil {
		return export.QuotePayload{}, err
	}
	v := s.view(q, current.Profile, "export")
	return export.QuotePayload{
		Number:     q.Number,
		Kind:       string(q.Kind),
		Title:      q.Title,
		ClientName: q.ClientName,
		Date:       q.CreatedAt,
		Business:   current.Business,
		Document:   q.Document,
		Totals:     v.Totals,
		Checklist:  q.Checklist,
		Terms:      q.Terms,
	}, nil
}

// mutate loads, edits and stores a document whose body must still be editable.
func (s *Service) mutate(ctx context.Context, id uuid.UUID, profile pricing.Profile, op string, fn func(*Quote) error) (QuoteView, error) {
	return s.save(ctx, id, profile, op, true, fn)
}

func (s *Service) save(ctx context.Context, id uuid.UUID, profile pricing.Profile, op string, requireEditable bool, fn func(*Quote) error) (QuoteView, error) {
	var updated Quote
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		q, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if requireEditable && !q.Status.Editable() {
			return fmt.Errorf("%w: %s is %s and can no longer be edited", httpx.ErrConflict, q.Number, q.Status)
		}
		if err := fn(&q); err != nil {
			return err
		}
		updated, err = repo.Update(ctx, q)
		return err
	})
	if err != nil {
		return QuoteView{}, err
	}
	s.invalidate(ctx)
	return s.view(updated, profile, op), nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Bump(ctx); err != nil {
		s.logger.Warn("dashboard cache bump failed", slog.Any("error", err))
	}
}

func (s *Service) clientName(ctx context.Context, id *uuid.UUID, fallback string) (string, error) {
	fallback = strings.TrimSpace(fallback)
	if id == nil || s.clients == nil {
		return fallback, nil
	}
	c, err := s.clients.Get(ctx, *id)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return "", fmt.Errorf("%w: client %s does not exist", httpx.ErrValidation, id)
		}
		return "", err
	}
	return c.Name, nil
}

func tileAt(doc pricing.QuotationDocument, index int) (pricing.TileLineItem, error) {
	if index < 0 || index >= len(doc.Tiles) {
		return pricing.TileLineItem{}, fmt.Errorf("tile line %d: %w", index, httpx.ErrNotFound)
	}
	return doc.Tiles[index], nil
}

// normalizeInput tags positive prices that arrive without a source as user
// overrides and gives lines without a basis the one their quantities imply.
// Prices carrying a resolver source stay derived.
// checkQuantities rejects tile lines whose area or carton count exceeds
// pricing.MaxQuantity.
func checkQuantities(doc pricing.QuotationDocument) error {
	fields := map[string]string{}
	limit := fmt.Sprintf("must be at most %d", pricing.MaxQuantity)
	for i, t := range doc.Tiles {
		if t.Sqm.Float64() > pricing.MaxQuantity {
			fields[fmt.Sprintf("tiles[%d].sqm", i)] = limit
		}
		if t.Cartons.Float64() > pricing.MaxQuantity {
			fields[fmt.Sprintf("tiles[%d].cartons", i)] = limit
		}
	}
	if len(fields) > 0 {
		return &httpx.ValidationError{Fields: fields}
	}
	return nil
}

func normalizeInput(doc pricing.QuotationDocument) pricing.QuotationDocument {
	out := doc.Clone()
	for i, t := range out.Tiles {
		if t.UnitPrice.Float64() > 0 && t.PriceSource == "" {
			out.Tiles[i].PriceSource = pricing.PriceSourceUser
		}
		if t.Basis == pricing.BasisUnspecified {
			switch {
			case t.Sqm.Float64() > 0:
				out.Tiles[i].Basis = pricing.BasisArea
			case t.Cartons.Float64() > 0:
				out.Tiles[i].Basis = pricing.BasisCartons
			}
		}
	}
	return out
}

func applyProfileDefaults(doc pricing.QuotationDocument, profile pricing.Profile) pricing.QuotationDocument {
	if doc.WorkmanshipRate.Float64() == 0 {
		doc.WorkmanshipRate = pricing.Number(profile.WorkmanshipRate)
	}
	if doc.Maintenance.Float64() == 0 {
		doc.Maintenance = pricing.Number(profile.Maintenance)
	}
	if doc.DepositPercentage == nil {
		doc.DepositPercentage = pricing.NumberPtr(profile.DepositPercentage)
	}
	return doc
}

func kindOrDefault(k Kind) Kind {
	if k == "" {
		return KindQuotation
	}
	return k
}

func termsOrDefault(terms string, current settings.Settings) string {
	if t := strings.TrimSpace(terms); t != "" {
		return t
	}
	return current.DefaultTerms
}

func cleanChecklist(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
