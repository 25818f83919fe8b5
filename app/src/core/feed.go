package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"telemetry-dashboard/app/src/domain"
	"telemetry-dashboard/app/src/infra"
	"telemetry-dashboard/app/src/shared/constants"
)

const tracerName = "telemetry-dashboard/core"

type FeedConfig struct {
	Name    string
	Cadence time.Duration
	// StaleAfter defaults to three cadences.
	StaleAfter time.Duration
	// Timeout bounds a single fetch; zero leaves it to the source.
	Timeout time.Duration
}

// Feed polls one source on behalf of the lifecycle. A failed poll keeps the
// previously applied value; it is logged and counted, never retried early.
type Feed[T any] struct {
	cfg    FeedConfig
	source domain.Source[T]
	apply  func(T)
	logger Logger
	tracer trace.Tracer
	now    func() time.Time

	handle atomic.Pointer[PollHandle]

	mu           sync.RWMutex
	firstAttempt time.Time
	lastAttempt  time.Time
	lastSuccess  time.Time
	lastError    string
	successes    uint64
	failures     uint64
}

func NewFeed[T any](cfg FeedConfig, source domain.Source[T], apply func(T), logger Logger) (*Feed[T], error) {
	if source == nil {
		return nil, errors.New("feed: source is required")
	}
	if apply == nil {
		return nil, errors.New("feed: apply func is required")
	}
	if cfg.Name == "" {
		return nil, errors.New("feed: name is required")
	}
	if cfg.Cadence <= 0 {
		return nil, fmt.Errorf("feed %s: cadence must be positive", cfg.Name)
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = 3 * cfg.Cadence
	}

	return &Feed[T]{
		cfg:    cfg,
		source: source,
		apply:  apply,
		logger: logger,
		tracer: otel.Tracer(tracerName),
		now:    time.Now,
	}, nil
}

func (f *Feed[T]) Name() string { return f.cfg.Name }

// Poll fetches once and records the outcome. Errors are returned unchanged so
// callers can classify them with domain.ErrorKind.
func (f *Feed[T]) Poll(ctx context.Context) (T, error) {
	ctx = infra.WithCorrelationID(ctx, constants.GenerateUUID())
	ctx, span := f.tracer.Start(ctx, "feed.poll", trace.WithAttributes(attribute.String("feed", f.cfg.Name)))
	defer span.End()

	if f.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.cfg.Timeout)
		defer cancel()
	}

	start := f.now()
	f.mu.Lock()
	if f.firstAttempt.IsZero() {
		f.firstAttempt = start
	}
	f.lastAttempt = start
	f.mu.Unlock()

	value, err := f.source.Fetch(ctx)
	elapsed := f.now().Sub(start)

	if err != nil {
		var zero T
		if errors.Is(ctx.Err(), context.Canceled) {
			span.SetStatus(codes.Error, "canceled")
			return zero, err
		}
		kind := domain.ErrorKind(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, kind)
		infra.RecordPoll(f.cfg.Name, kind, elapsed)

		f.mu.Lock()
		f.failures++
		f.lastError = err.Error()
		f.mu.Unlock()
		return zero, err
	}

	span.SetStatus(codes.Ok, "")
	infra.RecordPoll(f.cfg.Name, "success", elapsed)
	infra.RecordPollSuccess(f.cfg.Name, f.now())

	f.mu.Lock()
	f.successes++
	f.lastSuccess = f.now()
	f.lastError = ""
	f.mu.Unlock()
	return value, nil
}

// Tick is the TickFunc of this feed.
func (f *Feed[T]) Tick(ctx context.Context, h *PollHandle) {
	value, err := f.Poll(ctx)
	if err != nil {
		if ctx.Err() == nil && f.logger != nil {
			f.logger.Printf(ctx, "feed %s: poll failed (%s), keeping previous value: %v", f.cfg.Name, domain.ErrorKind(err), err)
		}
		return
	}
	h.Commit(func() { f.apply(value) })
}

// Start registers the feed with lc and begins polling.
func (f *Feed[T]) Start(ctx context.Context, lc *PollLifecycle) *PollHandle {
	h := lc.Start(ctx, f.cfg.Name, f.cfg.Cadence, f.Tick)
	f.handle.Store(h)
	return h
}

// Stop halts polling and waits for an in-flight tick to return.
func (f *Feed[T]) Stop(lc *PollLifecycle) {
	h := f.handle.Load()
	lc.Stop(h)
	h.Wait()
}

// Status reports counters and staleness. A feed that has never succeeded is
// stale once StaleAfter has passed since its first attempt.
func (f *Feed[T]) Status() domain.FeedStatus {
	f.mu.RLock()
	defer f.mu.RUnlock()

	status := domain.FeedStatus{
		Name:        f.cfg.Name,
		Cadence:     f.cfg.Cadence,
		LastAttempt: f.lastAttempt,
		LastSuccess: f.lastSuccess,
		LastError:   f.lastError,
		Successes:   f.successes,
		Failures:    f.failures,
		Skipped:     f.handle.Load().Skipped(),
	}

	reference := f.lastSuccess
	if reference.IsZero() {
		reference = f.firstAttempt
	}
	if !reference.IsZero() {
		status.Stale = f.now().Sub(reference) > f.cfg.StaleAfter
	}
	return status
}
