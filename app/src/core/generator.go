package core

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"telemetry-dashboard/app/src/domain"
)

// Ranges of the mock sample dimensions.
const (
	mockDim1Min, mockDim1Span = 15.0, 20.0
	mockDim2Min, mockDim2Span = 30.0, 50.0
	mockDim3Min, mockDim3Span = 990.0, 40.0
	devicesPerGroup           = 5
)

type GeneratorConfig struct {
	BatchSize  int
	RandSource rand.Source
}

// Generator is a SampleSource producing random batches, for running the
// dashboard without a real probe.
type Generator struct {
	cfg    GeneratorConfig
	logger Logger

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewGenerator(cfg GeneratorConfig, logger Logger) *Generator {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}

	source := cfg.RandSource
	if source == nil {
		source = rand.NewSource(time.Now().UnixNano())
	}
	cfg.RandSource = source

	return &Generator{
		cfg:    cfg,
		logger: logger,
		rnd:    rand.New(source),
	}
}

// Fetch returns a fresh batch of BatchSize samples.
func (g *Generator) Fetch(ctx context.Context) ([]domain.Sample, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.TransportError{Op: "generate", Err: err}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	samples := make([]domain.Sample, g.cfg.BatchSize)
	for i := range samples {
		samples[i] = domain.Sample{
			ID:       i,
			Dim1:     mockDim1Min + g.rnd.Float64()*mockDim1Span,
			Dim2:     mockDim2Min + g.rnd.Float64()*mockDim2Span,
			Dim3:     mockDim3Min + g.rnd.Float64()*mockDim3Span,
			SourceID: fmt.Sprintf("Device-%d", i/devicesPerGroup+1),
		}
	}

	if g.logger != nil {
		g.logger.Printf(ctx, "generator: created batch of %d samples", len(samples))
	}
	return samples, nil
}

var _ domain.SampleSource = (*Generator)(nil)
