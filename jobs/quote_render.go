package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/tilequote/tilequote/internal/export"
	"github.com/tilequote/tilequote/internal/observability"
	"github.com/tilequote/tilequote/internal/platform/httpx"
)

// PayloadSource assembles the export payload of a stored quote.
type PayloadSource interface {
	Payload(ctx context.Context, id uuid.UUID) (export.QuotePayload, error)
}

// PDFRenderer turns a payload into a PDF document.
type PDFRenderer interface {
	RenderQuote(ctx context.Context, p export.QuotePayload) ([]byte, error)
}

// QuoteRenderJob renders quote PDFs into a directory.
type QuoteRenderJob struct {
	Quotes  PayloadSource
	PDF     PDFRenderer
	Dir     string
	Logger  *slog.Logger
	Metrics *observability.Metrics
}

// NewQuoteRenderJob wires dependencies for the render handler.
func NewQuoteRenderJob(quotes PayloadSource, pdf PDFRenderer, dir string, logger *slog.Logger, metrics *observability.Metrics) *QuoteRenderJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuoteRenderJob{Quotes: quotes, PDF: pdf, Dir: dir, Logger: logger, Metrics: metrics}
}

// Handle processes quote render tasks. A missing quote is not retried.
func (j *QuoteRenderJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Quotes == nil || j.PDF == nil {
		return errors.New("quote render: handler not configured")
	}
	var payload QuoteRenderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil || payload.QuoteID == uuid.Nil {
		return fmt.Errorf("quote render: invalid payload: %w", asynq.SkipRetry)
	}

	tracker := j.Metrics.TrackJob(TaskQuoteRender)
	defer func() { err = tracker.End(err) }()

	logger := j.Logger.With(slog.String("quote_id", payload.QuoteID.String()))
	p, err := j.Quotes.Payload(ctx, payload.QuoteID)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			logger.Warn("quote vanished before render")
			return fmt.Errorf("quote render: %v: %w", err, asynq.SkipRetry)
		}
		return err
	}
	body, err := j.PDF.RenderQuote(ctx, p)
	if err != nil {
		logger.Error("render quote pdf", slog.Any("error", err))
		return err
	}
	path, err := writeFileAtomic(j.Dir, export.Filename(p, export.ExtPDF), body)
	if err != nil {
		return err
	}
	logger.Info("quote pdf written", slog.String("path", path), slog.Int("bytes", len(body)))
	return nil
}

func writeFileAtomic(dir, name string, body []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("quote render: create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return "", fmt.Errorf("quote render: temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(body); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("quote render: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("quote render: close: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("quote render: rename: %w", err)
	}
	return path, nil
}
