package narrative

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/newthinker/folio/internal/core"
	"github.com/newthinker/folio/internal/metrics"
	"github.com/newthinker/folio/internal/trace"
	"go.uber.org/zap"
)

// DefaultBatchDelay is the pause between two consecutive model calls.
const DefaultBatchDelay = 2 * time.Second

// Outcome is the state of one position in a batch.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	// OutcomeSkipped marks a position whose earlier success was reused.
	OutcomeSkipped Outcome = "skipped"
	// OutcomePending marks a position not reached before cancellation.
	OutcomePending Outcome = "pending"
)

// Item is the per-position entry of a batch report.
type Item struct {
	ID        string    `json:"id"`
	Ticker    string    `json:"ticker"`
	AssetName string    `json:"asset_name"`
	Outcome   Outcome   `json:"outcome"`
	Result    Result    `json:"result"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Report summarises one batch run.
type Report struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Items      []Item    `json:"items"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
	Skipped    int       `json:"skipped"`
	Pending    int       `json:"pending"`
}

func (r *Report) count() {
	r.Succeeded, r.Failed, r.Skipped, r.Pending = 0, 0, 0, 0
	for _, it := range r.Items {
		switch it.Outcome {
		case OutcomeSucceeded:
			r.Succeeded++
		case OutcomeFailed:
			r.Failed++
		case OutcomeSkipped:
			r.Skipped++
		case OutcomePending:
			r.Pending++
		}
	}
}

type record struct {
	input Input
	item  Item
}

// Batch runs the generator over many positions one at a time, pausing
// between calls. Successful results are kept by position, so a re-run
// only calls the model for positions that have not yet succeeded or
// whose input has changed. A kept success expires with the generator's
// cache lifetime.
type Batch struct {
	gen     *Generator
	delay   time.Duration
	sleep   Sleeper
	logger  *zap.Logger
	metrics *metrics.Registry
	tracer  *trace.Tracer
	now     func() time.Time

	mu      sync.Mutex
	records map[string]record
}

// BatchOption configures a Batch.
type BatchOption func(*Batch)

// WithDelay sets the pause between consecutive calls.
func WithDelay(d time.Duration) BatchOption {
	return func(b *Batch) {
		if d >= 0 {
			b.delay = d
		}
	}
}

// WithSleeper replaces the delay implementation (for testing).
func WithSleeper(s Sleeper) BatchOption {
	return func(b *Batch) {
		if s != nil {
			b.sleep = s
		}
	}
}

func WithBatchLogger(l *zap.Logger) BatchOption {
	return func(b *Batch) {
		if l != nil {
			b.logger = l
		}
	}
}

func WithBatchMetrics(m *metrics.Registry) BatchOption {
	return func(b *Batch) { b.metrics = m }
}

func WithBatchTracer(t *trace.Tracer) BatchOption {
	return func(b *Batch) { b.tracer = t }
}

// NewBatch creates a batch runner over gen.
func NewBatch(gen *Generator, opts ...BatchOption) *Batch {
	b := &Batch{
		gen:     gen,
		delay:   DefaultBatchDelay,
		sleep:   SleepContext,
		logger:  zap.NewNop(),
		now:     time.Now,
		records: make(map[string]record),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// RunOption adjusts a single Run.
type RunOption func(*runConfig)

type runConfig struct {
	refresh bool
}

// Refresh regenerates every position, ignoring kept and memoised results.
func Refresh() RunOption {
	return func(c *runConfig) { c.refresh = true }
}

// Run processes inputs in order. Cancelling ctx stops the run; positions
// not reached are reported as pending and keep no result.
func (b *Batch) Run(ctx context.Context, inputs []Input, opts ...RunOption) Report {
	var cfg runConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	report := Report{
		RunID:     uuid.New().String(),
		StartedAt: b.now(),
		Items:     make([]Item, 0, len(inputs)),
	}

	ctx, span := b.tracer.Start(ctx, "narrative.batch", "run_id", report.RunID)
	defer span.End()

	logger := b.logger.With(zap.String("run_id", report.RunID))
	logger.Info("narrative batch started",
		zap.Int("positions", len(inputs)),
		zap.Bool("refresh", cfg.refresh))

	calls := 0
	stopped := false
	for _, in := range inputs {
		if stopped || ctx.Err() != nil {
			stopped = true
			report.Items = append(report.Items, b.pending(in))
			continue
		}

		if cfg.refresh {
			b.gen.Forget(in)
		} else if prev, ok := b.reusable(in); ok {
			prev.Outcome = OutcomeSkipped
			report.Items = append(report.Items, prev)
			continue
		}

		if calls > 0 {
			if err := b.sleep(ctx, b.delay); err != nil {
				stopped = true
				report.Items = append(report.Items, b.pending(in))
				continue
			}
		}
		calls++

		item := b.generate(ctx, in)
		if item.Outcome == OutcomeFailed && ctx.Err() != nil {
			// The call was cut short by cancellation, not by the model.
			stopped = true
			report.Items = append(report.Items, b.pending(in))
			continue
		}
		report.Items = append(report.Items, item)
	}

	report.FinishedAt = b.now()
	report.count()

	status := metrics.StatusOK
	if report.Failed > 0 || report.Pending > 0 {
		status = metrics.StatusError
	}
	b.metrics.RecordBatch(status)
	if stopped {
		trace.Fail(span, ctx.Err())
	}

	logger.Info("narrative batch finished",
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed),
		zap.Int("skipped", report.Skipped),
		zap.Int("pending", report.Pending),
		zap.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)))

	return report
}

// Retry regenerates the narrative for one position seen in an earlier
// run, identified by ticker or by an item ID such as "name:gold etf".
func (b *Batch) Retry(ctx context.Context, ticker string) (Item, error) {
	id := lookupID(ticker)

	b.mu.Lock()
	rec, ok := b.records[id]
	b.mu.Unlock()
	if !ok {
		return Item{}, core.WrapError(core.ErrNotFound, fmt.Errorf("no narrative run for %q", strings.TrimSpace(ticker)))
	}

	b.gen.Forget(rec.input)
	item := b.generate(ctx, rec.input)
	if item.Outcome == OutcomeFailed {
		return item, core.WrapError(core.ErrNarrativeFailed, errors.New(item.Error))
	}
	return item, nil
}

// Get returns the latest item recorded for a ticker or item ID.
func (b *Batch) Get(ticker string) (Item, bool) {
	id := lookupID(ticker)
	b.mu.Lock()
	defer b.mu.Unlock()
	rec, ok := b.records[id]
	return rec.item, ok
}

// Items returns the latest item of every position seen, in no order.
func (b *Batch) Items() []Item {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Item, 0, len(b.records))
	for _, rec := range b.records {
		out = append(out, rec.item)
	}
	return out
}

// lookupID maps a ticker or an item ID to the key records are stored under.
func lookupID(s string) string {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(strings.ToLower(s), namePrefix); ok {
		return Input{AssetName: rest}.ID()
	}
	return Input{Ticker: s}.ID()
}

func (b *Batch) generate(ctx context.Context, in Input) Item {
	item := Item{
		ID:        in.ID(),
		Ticker:    in.Ticker,
		AssetName: in.AssetName,
	}
	r, err := b.gen.Generate(ctx, in)
	item.UpdatedAt = b.now()
	if err != nil {
		item.Outcome = OutcomeFailed
		item.Result = Placeholder()
		item.Error = err.Error()
		b.logger.Warn("narrative unavailable",
			zap.String("ticker", in.Ticker),
			zap.Error(err))
	} else {
		item.Outcome = OutcomeSucceeded
		item.Result = r
	}
	if ctx.Err() == nil || item.Outcome == OutcomeSucceeded {
		b.mu.Lock()
		b.records[item.ID] = record{input: in, item: item}
		b.mu.Unlock()
	}
	return item
}

// reusable returns the kept success for in while its input is unchanged
// and it has not outlived the generator cache.
func (b *Batch) reusable(in Input) (Item, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	rec, ok := b.records[in.ID()]
	if !ok || rec.item.Outcome != OutcomeSucceeded {
		return Item{}, false
	}
	if rec.input.Key() != in.Key() {
		return Item{}, false
	}
	if ttl := b.gen.ttl; ttl > 0 && b.now().Sub(rec.item.UpdatedAt) >= ttl {
		return Item{}, false
	}
	return rec.item, true
}

func (b *Batch) pending(in Input) Item {
	return Item{
		ID:        in.ID(),
		Ticker:    in.Ticker,
		AssetName: in.AssetName,
		Outcome:   OutcomePending,
		Result:    Placeholder(),
	}
}
