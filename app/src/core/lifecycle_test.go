package core

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPollLifecycleFiresImmediately(t *testing.T) {
	lc := NewPollLifecycle(&stubLogger{})
	var ticks atomic.Int32

	h := lc.Start(context.Background(), "immediate", time.Hour, func(context.Context, *PollHandle) {
		ticks.Add(1)
	})
	defer lc.Stop(h)

	assert.Eventually(t, func() bool { return ticks.Load() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, "immediate", h.Name())
	assert.Equal(t, time.Hour, h.Cadence())
}

func TestPollLifecycleTicksOnCadence(t *testing.T) {
	lc := NewPollLifecycle(nil)
	var ticks atomic.Int32

	h := lc.Start(context.Background(), "cadence", 5*time.Millisecond, func(context.Context, *PollHandle) {
		ticks.Add(1)
	})

	assert.Eventually(t, func() bool { return ticks.Load() >= 3 }, time.Second, time.Millisecond)
	lc.Stop(h)
	h.Wait()

	after := ticks.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, ticks.Load(), "no tick may start after Stop")
}

func TestPollLifecycleSkipsOverlappingTicks(t *testing.T) {
	lc := NewPollLifecycle(nil)
	release := make(chan struct{})
	var started atomic.Int32

	h := lc.Start(context.Background(), "overlap", 2*time.Millisecond, func(ctx context.Context, _ *PollHandle) {
		started.Add(1)
		<-release
	})

	assert.Eventually(t, func() bool { return h.Skipped() >= 3 }, time.Second, time.Millisecond)
	assert.Equal(t, int32(1), started.Load())

	close(release)
	lc.Stop(h)
	h.Wait()
}

func TestPollLifecycleNoCommitAfterStop(t *testing.T) {
	lc := NewPollLifecycle(nil)
	fetchStarted := make(chan struct{})
	release := make(chan struct{})
	var applied atomic.Int32
	var committed atomic.Bool

	h := lc.Start(context.Background(), "late", time.Hour, func(ctx context.Context, h *PollHandle) {
		close(fetchStarted)
		// The fetch resolves well after Stop and ignores cancellation.
		<-release
		committed.Store(h.Commit(func() { applied.Add(1) }))
	})

	<-fetchStarted
	lc.Stop(h)
	close(release)
	h.Wait()

	assert.False(t, committed.Load())
	assert.Equal(t, int32(0), applied.Load())
	assert.True(t, h.Stopped())
}

func TestPollLifecycleStopCancelsInFlightContext(t *testing.T) {
	lc := NewPollLifecycle(nil)
	cancelled := make(chan struct{})
	running := make(chan struct{})

	h := lc.Start(context.Background(), "cancel", time.Hour, func(ctx context.Context, _ *PollHandle) {
		close(running)
		<-ctx.Done()
		close(cancelled)
	})

	<-running
	lc.Stop(h)

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("in-flight tick was not cancelled")
	}
	h.Wait()
}

func TestPollLifecycleStopIsIdempotent(t *testing.T) {
	logger := &stubLogger{}
	lc := NewPollLifecycle(logger)
	h := lc.Start(context.Background(), "twice", time.Hour, func(context.Context, *PollHandle) {})

	assert.NotPanics(t, func() {
		lc.Stop(h)
		lc.Stop(h)
		lc.Stop(nil)
	})
	h.Wait()

	stopped := 0
	for _, m := range logger.messages() {
		if m == "poller twice: stopped" {
			stopped++
		}
	}
	assert.Equal(t, 1, stopped)
}

func TestPollHandleCommitBeforeStop(t *testing.T) {
	lc := NewPollLifecycle(nil)
	done := make(chan bool, 1)

	h := lc.Start(context.Background(), "commit", time.Hour, func(ctx context.Context, h *PollHandle) {
		done <- h.Commit(func() {})
	})
	defer lc.Stop(h)

	select {
	case ok := <-done:
		require.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("tick did not run")
	}
}

func TestPollHandleNilSafe(t *testing.T) {
	var h *PollHandle
	assert.NotPanics(t, func() {
		h.Wait()
		assert.Equal(t, uint64(0), h.Skipped())
	})
}
