package core

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"telemetry-dashboard/app/src/infra"
)

// TickFunc runs one poll cycle. Results must be applied through h.Commit so
// that nothing lands after the handle is stopped.
type TickFunc func(ctx context.Context, h *PollHandle)

// PollLifecycle starts and stops periodic poll loops.
type PollLifecycle struct {
	logger Logger
}

func NewPollLifecycle(logger Logger) *PollLifecycle {
	return &PollLifecycle{logger: logger}
}

// PollHandle identifies one running poll loop.
type PollHandle struct {
	name    string
	cadence time.Duration

	cancel   context.CancelFunc
	loopDone chan struct{}
	ticks    sync.WaitGroup
	inFlight atomic.Bool
	skipped  atomic.Uint64

	mu      sync.Mutex
	stopped bool
}

// Start fires onTick immediately and then every cadence until Stop. A tick
// that comes due while the previous one is still running is skipped.
func (l *PollLifecycle) Start(ctx context.Context, name string, cadence time.Duration, onTick TickFunc) *PollHandle {
	if ctx == nil {
		ctx = context.Background()
	}
	if cadence <= 0 {
		cadence = time.Second
	}

	loopCtx, cancel := context.WithCancel(ctx)
	h := &PollHandle{
		name:     name,
		cadence:  cadence,
		cancel:   cancel,
		loopDone: make(chan struct{}),
	}

	go h.loop(loopCtx, onTick, l.logger)
	return h
}

// Stop cancels the loop and any in-flight fetch. Once Stop returns no new
// tick starts and no in-flight result is committed. Stopping a nil or
// already stopped handle is a no-op.
func (l *PollLifecycle) Stop(h *PollHandle) {
	if h == nil {
		return
	}

	h.mu.Lock()
	already := h.stopped
	h.stopped = true
	h.mu.Unlock()

	h.cancel()
	<-h.loopDone

	if !already && l.logger != nil {
		l.logger.Printf(context.Background(), "poller %s: stopped", h.name)
	}
}

// Commit runs apply unless the handle has been stopped. It reports whether apply ran.
func (h *PollHandle) Commit(apply func()) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return false
	}
	apply()
	return true
}

// Stopped reports whether Stop has been called.
func (h *PollHandle) Stopped() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stopped
}

// Wait blocks until the loop and any in-flight tick have returned.
func (h *PollHandle) Wait() {
	if h == nil {
		return
	}
	<-h.loopDone
	h.ticks.Wait()
}

func (h *PollHandle) Name() string { return h.name }

func (h *PollHandle) Cadence() time.Duration { return h.cadence }

// Skipped is the number of ticks dropped by the overlap policy.
func (h *PollHandle) Skipped() uint64 {
	if h == nil {
		return 0
	}
	return h.skipped.Load()
}

func (h *PollHandle) loop(ctx context.Context, onTick TickFunc, logger Logger) {
	defer close(h.loopDone)

	infra.PollerStarted()
	defer infra.PollerFinished()

	if logger != nil {
		logger.Printf(ctx, "poller %s: started cadence=%s", h.name, h.cadence)
	}

	ticker := time.NewTicker(h.cadence)
	defer ticker.Stop()

	h.fire(ctx, onTick)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.fire(ctx, onTick)
		}
	}
}

func (h *PollHandle) fire(ctx context.Context, onTick TickFunc) {
	if ctx.Err() != nil || h.Stopped() {
		return
	}
	if !h.inFlight.CompareAndSwap(false, true) {
		h.skipped.Add(1)
		infra.IncSkippedTick(h.name)
		return
	}

	h.ticks.Add(1)
	go func() {
		defer h.ticks.Done()
		defer h.inFlight.Store(false)
		onTick(ctx, h)
	}()
}
