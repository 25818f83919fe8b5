package core

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"telemetry-dashboard/app/src/domain"
	"telemetry-dashboard/app/src/infra"
)

// Static scene geometry.
const (
	AxisExtent      = 5.0
	PointRadius     = 0.15
	GridSize        = 10.0
	GridDivisions   = 10
	GridOffsetY     = -2.5
	GridCenterColor = "#e5e7eb"
	GridLineColor   = "#f3f4f6"
	AutoRotateSpeed = 0.5
)

// ScenePublisher owns the current Scene. Every Publish builds a fresh Scene
// and swaps it in atomically so readers never observe a partial update.
type ScenePublisher struct {
	labels domain.AxisLabels
	now    func() time.Time

	current atomic.Pointer[domain.Scene]

	mu          sync.Mutex
	version     uint64
	subscribers map[chan domain.Scene]struct{}
}

func NewScenePublisher(labels domain.AxisLabels) *ScenePublisher {
	p := &ScenePublisher{
		labels:      labels,
		now:         time.Now,
		subscribers: make(map[chan domain.Scene]struct{}),
	}
	initial := p.build(0, nil, nil)
	p.current.Store(&initial)
	return p
}

// Current returns the latest published scene. Before the first batch it is
// the static-geometry scene with version 0.
func (p *ScenePublisher) Current() domain.Scene {
	return *p.current.Load()
}

// Publish replaces the current scene with one built from points. samples is
// the batch the points came from and is used only for source ids.
func (p *ScenePublisher) Publish(points []domain.NormalizedPoint, samples []domain.Sample) domain.Scene {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.version++
	scene := p.build(p.version, points, samples)
	p.current.Store(&scene)

	for ch := range p.subscribers {
		offer(ch, scene)
	}

	infra.RecordScenePublish(scene.Version, len(scene.Points))
	return scene
}

// Subscribe returns a channel that receives every scene published after the
// call, starting with the current one. A slow reader only ever sees the most
// recent scene. The channel closes when ctx is done.
func (p *ScenePublisher) Subscribe(ctx context.Context) <-chan domain.Scene {
	ch := make(chan domain.Scene, 1)

	p.mu.Lock()
	ch <- p.Current()
	p.subscribers[ch] = struct{}{}
	p.mu.Unlock()

	go func() {
		<-ctx.Done()
		p.mu.Lock()
		delete(p.subscribers, ch)
		close(ch)
		p.mu.Unlock()
	}()

	return ch
}

// offer delivers scene into a 1-slot channel, replacing an unread older scene.
func offer(ch chan domain.Scene, scene domain.Scene) {
	for {
		select {
		case ch <- scene:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func (p *ScenePublisher) build(version uint64, points []domain.NormalizedPoint, samples []domain.Sample) domain.Scene {
	sourceIDs := make(map[int]string, len(samples))
	for _, s := range samples {
		sourceIDs[s.ID] = s.SourceID
	}

	scenePoints := make([]domain.ScenePoint, len(points))
	for i, pt := range points {
		scenePoints[i] = domain.ScenePoint{
			Position: pt.Position,
			Color:    pt.Color.Hex,
			Radius:   PointRadius,
			SampleID: pt.SampleID,
			SourceID: sourceIDs[pt.SampleID],
		}
	}

	return domain.Scene{
		Version:     version,
		GeneratedAt: p.now().UTC(),
		Points:      scenePoints,
		Axes:        StaticAxes(p.labels),
		Grid: domain.GridPlane{
			Size:        GridSize,
			Divisions:   GridDivisions,
			Offset:      domain.Vec3{Y: GridOffsetY},
			CenterColor: GridCenterColor,
			LineColor:   GridLineColor,
		},
		Camera: domain.CameraHints{
			Position:        domain.Vec3{X: 8, Y: 6, Z: 8},
			AutoRotate:      true,
			AutoRotateSpeed: AutoRotateSpeed,
		},
	}
}

// StaticAxes returns the three reference axes, coloured with the first three palette entries.
func StaticAxes(labels domain.AxisLabels) [3]domain.AxisSegment {
	return [3]domain.AxisSegment{
		{Dimension: domain.Dim1, To: domain.Vec3{X: AxisExtent}, Color: domain.PaletteAt(0).Hex, Label: labels.X},
		{Dimension: domain.Dim2, To: domain.Vec3{Y: AxisExtent}, Color: domain.PaletteAt(1).Hex, Label: labels.Y},
		{Dimension: domain.Dim3, To: domain.Vec3{Z: AxisExtent}, Color: domain.PaletteAt(2).Hex, Label: labels.Z},
	}
}
