package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telemetry-dashboard/app/src/domain"
)

var testLabels = domain.AxisLabels{X: "Latitude", Y: "Longitude", Z: "Throughput"}

func TestScenePublisherInitialScene(t *testing.T) {
	p := NewScenePublisher(testLabels)
	scene := p.Current()

	assert.Equal(t, uint64(0), scene.Version)
	assert.Empty(t, scene.Points)
	assert.Equal(t, domain.Vec3{X: AxisExtent}, scene.Axes[0].To)
	assert.Equal(t, domain.Vec3{Y: AxisExtent}, scene.Axes[1].To)
	assert.Equal(t, domain.Vec3{Z: AxisExtent}, scene.Axes[2].To)
	assert.Equal(t, "#BF915A", scene.Axes[0].Color)
	assert.Equal(t, "#80949D", scene.Axes[1].Color)
	assert.Equal(t, "#A24E35", scene.Axes[2].Color)
	assert.Equal(t, "Throughput", scene.Axes[2].Label)
	assert.Equal(t, GridSize, scene.Grid.Size)
	assert.Equal(t, GridDivisions, scene.Grid.Divisions)
	assert.Equal(t, GridOffsetY, scene.Grid.Offset.Y)
	assert.Equal(t, domain.Vec3{X: 8, Y: 6, Z: 8}, scene.Camera.Position)
	assert.True(t, scene.Camera.AutoRotate)
}

func TestScenePublisherPublishReplacesScene(t *testing.T) {
	p := NewScenePublisher(testLabels)
	samples := []domain.Sample{{ID: 1, Dim1: 1, SourceID: "Device-1"}, {ID: 2, Dim1: 2, SourceID: "Device-2"}}
	points := Normalize(samples)

	first := p.Publish(points, samples)
	require.Equal(t, uint64(1), first.Version)
	require.Len(t, first.Points, 2)
	assert.Equal(t, "Device-2", first.Points[1].SourceID)
	assert.Equal(t, PointRadius, first.Points[0].Radius)
	assert.Equal(t, points[0].Color.Hex, first.Points[0].Color)

	second := p.Publish(points[:1], samples[:1])
	assert.Equal(t, uint64(2), second.Version)
	assert.Len(t, p.Current().Points, 1)
	assert.Len(t, first.Points, 2, "published scenes are never mutated")
}

func TestScenePublisherSubscribeDeliversLatest(t *testing.T) {
	p := NewScenePublisher(testLabels)
	ctx, cancel := context.WithCancel(context.Background())

	ch := p.Subscribe(ctx)
	initial := <-ch
	assert.Equal(t, uint64(0), initial.Version)

	for i := 0; i < 5; i++ {
		p.Publish(nil, nil)
	}

	select {
	case scene := <-ch:
		assert.Equal(t, uint64(5), scene.Version)
	case <-time.After(time.Second):
		t.Fatal("no scene delivered")
	}

	cancel()
	assert.Eventually(t, func() bool {
		_, open := <-ch
		return !open
	}, time.Second, 5*time.Millisecond)
}

func TestScenePublisherConcurrentReaders(t *testing.T) {
	p := NewScenePublisher(testLabels)
	samples := []domain.Sample{{ID: 1, Dim1: 1}, {ID: 2, Dim1: 2}, {ID: 3, Dim1: 3}}
	points := Normalize(samples)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				scene := p.Current()
				if scene.Version > 0 {
					assert.Len(t, scene.Points, 3)
				}
			}
		}()
	}
	for i := 0; i < 50; i++ {
		p.Publish(points, samples)
	}
	wg.Wait()
}
