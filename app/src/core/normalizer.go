package core

import (
	"math"

	"telemetry-dashboard/app/src/domain"
)

// Normalized coordinates span [CoordMin, CoordMax].
const (
	CoordMin  = -2.0
	CoordMax  = 2.0
	CoordSpan = CoordMax - CoordMin
)

// degenerateScalar is the colour scalar used when the colour dimension has no spread.
const degenerateScalar = 0.5

type dimRange struct {
	min, max float64
	seen     bool
}

func (r *dimRange) observe(v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	if !r.seen {
		r.min, r.max, r.seen = v, v, true
		return
	}
	if v < r.min {
		r.min = v
	}
	if v > r.max {
		r.max = v
	}
}

// scale maps v into [0,1]. It returns domain.ErrDegenerateRange when the
// range has no spread or v is not finite.
func (r dimRange) scale(v float64) (float64, error) {
	if !r.seen || r.max == r.min || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, domain.ErrDegenerateRange
	}
	s := (v - r.min) / (r.max - r.min)
	return math.Min(1, math.Max(0, s)), nil
}

// Normalize projects a batch into the [-2,2] cube, colouring by Dim1.
func Normalize(samples []domain.Sample) []domain.NormalizedPoint {
	return NormalizeBy(samples, domain.Dim1)
}

// NormalizeBy projects a batch into the [-2,2] cube. Each dimension is scaled
// against the min/max of this batch only. A dimension whose values are all
// equal lands on coordinate 0. colorDim picks the dimension driving the
// palette bucket; an invalid value falls back to Dim1.
func NormalizeBy(samples []domain.Sample, colorDim domain.Dimension) []domain.NormalizedPoint {
	if len(samples) == 0 {
		return []domain.NormalizedPoint{}
	}
	if !colorDim.Valid() {
		colorDim = domain.Dim1
	}

	var ranges [3]dimRange
	for _, s := range samples {
		for d := domain.Dim1; d <= domain.Dim3; d++ {
			ranges[d-1].observe(s.Value(d))
		}
	}

	points := make([]domain.NormalizedPoint, len(samples))
	for i, s := range samples {
		var coords [3]float64
		for d := domain.Dim1; d <= domain.Dim3; d++ {
			if scaled, err := ranges[d-1].scale(s.Value(d)); err == nil {
				coords[d-1] = clampCoord(scaled*CoordSpan + CoordMin)
			}
		}

		scalar, err := ranges[colorDim-1].scale(s.Value(colorDim))
		if err != nil {
			scalar = degenerateScalar
		}

		points[i] = domain.NormalizedPoint{
			Position: domain.Vec3{X: coords[0], Y: coords[1], Z: coords[2]},
			Color:    ColorFor(scalar, domain.PaletteSize),
			SampleID: s.ID,
		}
	}
	return points
}

func clampCoord(v float64) float64 {
	return math.Min(CoordMax, math.Max(CoordMin, v))
}
