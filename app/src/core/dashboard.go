package core

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc"

	"telemetry-dashboard/app/src/domain"
)

// Feed names, also used as metric labels and gRPC health service suffixes.
const (
	SamplesFeed  = "samples"
	SnapshotFeed = "snapshot"
)

type DashboardConfig struct {
	SamplesCadence  time.Duration
	SnapshotCadence time.Duration
	StaleAfter      time.Duration
	RequestTimeout  time.Duration
	ColorDimension  domain.Dimension
	Labels          domain.AxisLabels
}

// Dashboard owns the pipeline: the sample feed drives the scene, the optional
// snapshot feed drives the scalar panel.
type Dashboard struct {
	logger    Logger
	lifecycle *PollLifecycle
	publisher *ScenePublisher
	projector *Projector

	samples   *Feed[[]domain.Sample]
	snapshots *Feed[domain.MetricsSnapshot]

	snapshot atomic.Pointer[domain.SnapshotView]
	now      func() time.Time

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      *conc.WaitGroup
}

// NewDashboard wires the feeds. snapshots may be nil to disable the scalar feed.
func NewDashboard(cfg DashboardConfig, samples domain.SampleSource, snapshots domain.SnapshotSource, logger Logger) (*Dashboard, error) {
	if samples == nil {
		return nil, errors.New("dashboard: sample source is required")
	}

	publisher := NewScenePublisher(cfg.Labels)
	d := &Dashboard{
		logger:    logger,
		lifecycle: NewPollLifecycle(logger),
		publisher: publisher,
		projector: NewProjector(publisher, cfg.ColorDimension, logger),
		now:       time.Now,
	}
	d.snapshot.Store(&domain.SnapshotView{})

	var err error
	d.samples, err = NewFeed(FeedConfig{
		Name:       SamplesFeed,
		Cadence:    cfg.SamplesCadence,
		StaleAfter: cfg.StaleAfter,
		Timeout:    cfg.RequestTimeout,
	}, samples, d.projector.Submit, logger)
	if err != nil {
		return nil, err
	}

	if snapshots != nil {
		d.snapshots, err = NewFeed(FeedConfig{
			Name:       SnapshotFeed,
			Cadence:    cfg.SnapshotCadence,
			StaleAfter: cfg.StaleAfter,
			Timeout:    cfg.RequestTimeout,
		}, snapshots, d.storeSnapshot, logger)
		if err != nil {
			return nil, err
		}
	}

	return d, nil
}

// Start begins polling. Calling Start on a running dashboard is a no-op.
func (d *Dashboard) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.wg = conc.NewWaitGroup()
	d.running = true

	d.wg.Go(func() { d.projector.Run(runCtx) })
	d.samples.Start(runCtx, d.lifecycle)
	if d.snapshots != nil {
		d.snapshots.Start(runCtx, d.lifecycle)
	}
}

// Stop halts both feeds and waits for in-flight work. No fetched value is
// applied after Stop returns. Safe to call more than once.
func (d *Dashboard) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running {
		return
	}

	d.samples.Stop(d.lifecycle)
	if d.snapshots != nil {
		d.snapshots.Stop(d.lifecycle)
	}
	d.cancel()
	d.wg.Wait()
	d.running = false
}

func (d *Dashboard) Scene() domain.Scene {
	return d.publisher.Current()
}

func (d *Dashboard) SubscribeScenes(ctx context.Context) <-chan domain.Scene {
	return d.publisher.Subscribe(ctx)
}

func (d *Dashboard) Snapshot() domain.SnapshotView {
	return *d.snapshot.Load()
}

func (d *Dashboard) Status() domain.DashboardStatus {
	status := domain.DashboardStatus{
		Feeds:        []domain.FeedStatus{d.samples.Status()},
		SceneVersion: d.publisher.Current().Version,
	}
	if d.snapshots != nil {
		status.Feeds = append(status.Feeds, d.snapshots.Status())
	}
	return status
}

func (d *Dashboard) storeSnapshot(s domain.MetricsSnapshot) {
	d.snapshot.Store(&domain.SnapshotView{Snapshot: s, UpdatedAt: d.now().UTC()})
}

var _ domain.DashboardService = (*Dashboard)(nil)
