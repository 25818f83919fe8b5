package domain

import "math"

// Sample is one raw telemetry reading. A poll yields a whole batch of them
// and the batch replaces the previous one wholesale.
type Sample struct {
	ID       int     `json:"id"`
	Dim1     float64 `json:"dim1"`
	Dim2     float64 `json:"dim2"`
	Dim3     float64 `json:"dim3"`
	SourceID string  `json:"source_id"`
}

// Dimension selects one of the three numeric fields of a Sample.
type Dimension int

const (
	Dim1 Dimension = iota + 1
	Dim2
	Dim3
)

// Valid reports whether d names one of the three sample dimensions.
func (d Dimension) Valid() bool {
	return d >= Dim1 && d <= Dim3
}

// Value returns the field of s selected by d. Unknown dimensions read as NaN.
func (s Sample) Value(d Dimension) float64 {
	switch d {
	case Dim1:
		return s.Dim1
	case Dim2:
		return s.Dim2
	case Dim3:
		return s.Dim3
	default:
		return math.NaN()
	}
}
