// Package engine wires the extraction pipeline end to end: decrypt, detect
// the registrar, extract table rows, assemble the canonical model and
// validate it.
//
// Every call is independent; the engine holds no state between requests and
// the decrypted document never leaves memory.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fundsight/casextract/internal/assemble"
	"github.com/fundsight/casextract/internal/cas"
	"github.com/fundsight/casextract/internal/detect"
	"github.com/fundsight/casextract/internal/document"
	"github.com/fundsight/casextract/internal/tabular"
	"github.com/fundsight/casextract/internal/validate"
)

// Config tunes per-request limits and validation behavior.
type Config struct {
	// MaxFileSize rejects inputs above this many bytes before decryption.
	// Zero disables the limit.
	MaxFileSize int64
	Validation  validate.Config
}

// Engine runs extractions. Safe for concurrent use; all build state is
// call-local.
type Engine struct {
	cfg Config
	log *slog.Logger
}

// New creates an engine. A nil logger falls back to slog.Default.
func New(cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{cfg: cfg, log: logger}
}

// Extract turns raw PDF bytes plus a password into a canonical statement.
// Fatal failures wrap exactly one of the cas sentinel errors; everything
// recoverable rides along as warnings on the returned statement.
//
// The log never carries investor PII or statement content, only shape
// counters keyed by a per-request ID.
func (e *Engine) Extract(ctx context.Context, pdfBytes []byte, password string) (*cas.CASStatement, error) {
	requestID := uuid.New().String()
	log := e.log.With("request_id", requestID)

	if e.cfg.MaxFileSize > 0 && int64(len(pdfBytes)) > e.cfg.MaxFileSize {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", cas.ErrFileTooLarge,
			len(pdfBytes), e.cfg.MaxFileSize)
	}

	doc, docWarnings, err := document.Open(pdfBytes, password)
	if err != nil {
		log.Warn("document open failed", "err", err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	registrar, err := detect.Detect(doc)
	if err != nil {
		log.Warn("format detection failed", "pages", len(doc.Pages), "err", err)
		return nil, err
	}
	log.Info("registrar detected", "registrar", registrar, "pages", len(doc.Pages))

	extractor, err := tabular.ForRegistrar(registrar)
	if err != nil {
		return nil, err
	}
	rows, extractWarnings, err := extractor.ExtractSections(ctx, doc)
	if err != nil {
		return nil, err
	}

	stmt, assembleWarnings, err := assemble.Assemble(registrar, rows)
	if err != nil {
		log.Warn("assembly failed", "rows", len(rows), "err", err)
		return nil, err
	}

	validateWarnings, err := validate.Validate(stmt, e.cfg.Validation)
	if err != nil {
		log.Warn("validation failed", "err", err)
		return nil, err
	}

	stmt.Warnings = mergeWarnings(docWarnings, extractWarnings, assembleWarnings, validateWarnings)

	log.Info("extraction complete",
		"registrar", registrar,
		"folios", len(stmt.Folios),
		"schemes", stmt.SchemeCount(),
		"transactions", stmt.TransactionCount(),
		"warnings", len(stmt.Warnings),
	)
	return stmt, nil
}

func mergeWarnings(groups ...[]cas.Warning) []cas.Warning {
	var out []cas.Warning
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
