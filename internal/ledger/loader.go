package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/newthinker/folio/internal/core"
	"github.com/newthinker/folio/internal/metrics"
	"github.com/newthinker/folio/internal/trace"
	"go.uber.org/zap"
)

// Loader reads positions from a Source.
type Loader struct {
	source  Source
	logger  *zap.Logger
	metrics *metrics.Registry
	tracer  *trace.Tracer
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(ld *Loader) {
		if l != nil {
			ld.logger = l
		}
	}
}

// WithMetrics sets the metrics registry.
func WithMetrics(m *metrics.Registry) Option {
	return func(ld *Loader) {
		ld.metrics = m
	}
}

// WithTracer sets the tracer.
func WithTracer(t *trace.Tracer) Option {
	return func(ld *Loader) {
		ld.tracer = t
	}
}

// NewLoader creates a loader over source.
func NewLoader(source Source, opts ...Option) *Loader {
	ld := &Loader{
		source: source,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// Load returns the positions of ledger id in source row order.
//
// Transport and auth failures are reported as core.ErrSourceUnavailable;
// a header without the required columns is a *core.SchemaError.
func (l *Loader) Load(ctx context.Context, id string) ([]core.Position, error) {
	ctx, span := l.tracer.Start(ctx, "ledger.load", "source", l.source.Name())
	defer span.End()

	positions, err := l.load(ctx, id)
	if err != nil {
		trace.Fail(span, err)
		l.metrics.RecordLedgerLoad(metrics.StatusError, 0)
		l.logger.Error("ledger load failed",
			zap.String("source", l.source.Name()),
			zap.Error(err))
		return nil, err
	}

	l.metrics.RecordLedgerLoad(metrics.StatusOK, len(positions))
	l.logger.Debug("ledger loaded",
		zap.String("source", l.source.Name()),
		zap.Int("positions", len(positions)))
	return positions, nil
}

func (l *Loader) load(ctx context.Context, id string) ([]core.Position, error) {
	rc, err := l.source.Open(ctx, id)
	if err != nil {
		return nil, core.WrapError(core.ErrSourceUnavailable, err)
	}
	defer rc.Close()

	positions, err := Parse(rc)
	if err != nil {
		var schemaErr *core.SchemaError
		if errors.As(err, &schemaErr) {
			return nil, err
		}
		// A body cut short in transit is a transport problem, not a schema one.
		return nil, core.WrapError(core.ErrSourceUnavailable, fmt.Errorf("reading ledger: %w", err))
	}
	return positions, nil
}

// FilterCountry keeps positions whose country matches any of codes,
// compared case-insensitively. With no codes the input is returned as is.
func FilterCountry(positions []core.Position, codes ...string) []core.Position {
	if len(codes) == 0 {
		return positions
	}
	want := make(map[string]bool, len(codes))
	for _, c := range codes {
		want[strings.ToUpper(strings.TrimSpace(c))] = true
	}
	out := make([]core.Position, 0, len(positions))
	for _, p := range positions {
		if want[strings.ToUpper(strings.TrimSpace(p.Country))] {
			out = append(out, p)
		}
	}
	return out
}

// WithTicker drops positions without a ticker. Views that need live
// quotes apply it; the full ledger keeps every row.
func WithTicker(positions []core.Position) []core.Position {
	out := make([]core.Position, 0, len(positions))
	for _, p := range positions {
		if p.Ticker != "" {
			out = append(out, p)
		}
	}
	return out
}
