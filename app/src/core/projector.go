package core

import (
	"context"
	"slices"

	"telemetry-dashboard/app/src/domain"
)

// Projector turns fetched batches into published scenes. Batches are handed
// over through a 1-slot latest-wins channel so a slow projection never holds
// up polling; an unprocessed older batch is simply replaced.
type Projector struct {
	publisher *ScenePublisher
	colorDim  domain.Dimension
	logger    Logger

	batches chan []domain.Sample
	last    []domain.Sample
	primed  bool
}

func NewProjector(publisher *ScenePublisher, colorDim domain.Dimension, logger Logger) *Projector {
	if !colorDim.Valid() {
		colorDim = domain.Dim1
	}
	return &Projector{
		publisher: publisher,
		colorDim:  colorDim,
		logger:    logger,
		batches:   make(chan []domain.Sample, 1),
	}
}

// Submit queues batch for projection without blocking.
func (p *Projector) Submit(batch []domain.Sample) {
	for {
		select {
		case p.batches <- batch:
			return
		default:
		}
		select {
		case <-p.batches:
		default:
		}
	}
}

// Run projects submitted batches until ctx is done.
func (p *Projector) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.log(ctx, "projector: context cancelled: %v", ctx.Err())
			return
		case batch := <-p.batches:
			p.Project(ctx, batch)
		}
	}
}

// Project normalizes batch and publishes it. A batch equal to the previous
// one is not republished; the boolean reports whether a scene was published.
func (p *Projector) Project(ctx context.Context, batch []domain.Sample) (domain.Scene, bool) {
	if p.primed && slices.Equal(p.last, batch) {
		return p.publisher.Current(), false
	}

	points := NormalizeBy(batch, p.colorDim)
	scene := p.publisher.Publish(points, batch)

	p.last = slices.Clone(batch)
	p.primed = true
	p.log(ctx, "projector: published scene version=%d points=%d", scene.Version, len(scene.Points))
	return scene, true
}

func (p *Projector) log(ctx context.Context, format string, v ...any) {
	if p.logger != nil {
		p.logger.Printf(ctx, format, v...)
	}
}
