package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telemetry-dashboard/app/src/domain"
)

func TestNewProjectorNormalizesColourDimension(t *testing.T) {
	p := NewProjector(NewScenePublisher(testLabels), domain.Dimension(0), nil)
	assert.Equal(t, domain.Dim1, p.colorDim)
}

func TestProjectorProjectPublishesChangedBatches(t *testing.T) {
	publisher := NewScenePublisher(testLabels)
	logger := &stubLogger{}
	p := NewProjector(publisher, domain.Dim1, logger)

	batch := []domain.Sample{{ID: 1, Dim1: 10, Dim2: 30, Dim3: 1000}, {ID: 2, Dim1: 30, Dim2: 80, Dim3: 1010}}

	scene, published := p.Project(context.Background(), batch)
	require.True(t, published)
	assert.Equal(t, uint64(1), scene.Version)
	assert.Equal(t, domain.Vec3{X: -2, Y: -2, Z: -2}, scene.Points[0].Position)

	scene, published = p.Project(context.Background(), append([]domain.Sample(nil), batch...))
	assert.False(t, published, "identical batch is not republished")
	assert.Equal(t, uint64(1), scene.Version)

	batch[1].Dim1 = 50
	scene, published = p.Project(context.Background(), batch)
	assert.True(t, published)
	assert.Equal(t, uint64(2), scene.Version)
	assert.Len(t, logger.messages(), 2)
}

func TestProjectorEmptyBatchStillPublishes(t *testing.T) {
	publisher := NewScenePublisher(testLabels)
	p := NewProjector(publisher, domain.Dim1, nil)

	scene, published := p.Project(context.Background(), nil)
	assert.True(t, published)
	assert.Equal(t, uint64(1), scene.Version)
	assert.Empty(t, scene.Points)
}

func TestProjectorSubmitKeepsLatestOnly(t *testing.T) {
	p := NewProjector(NewScenePublisher(testLabels), domain.Dim1, nil)

	p.Submit([]domain.Sample{{ID: 1}})
	p.Submit([]domain.Sample{{ID: 2}})
	p.Submit([]domain.Sample{{ID: 3}})

	require.Len(t, p.batches, 1)
	latest := <-p.batches
	assert.Equal(t, 3, latest[0].ID)
}

func TestProjectorRunPublishesUntilCancelled(t *testing.T) {
	publisher := NewScenePublisher(testLabels)
	p := NewProjector(publisher, domain.Dim1, &stubLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	p.Submit([]domain.Sample{{ID: 1, Dim1: 1}, {ID: 2, Dim1: 2}})
	assert.Eventually(t, func() bool { return publisher.Current().Version == 1 }, time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("projector did not stop")
	}
}
