package core

import (
	"math"

	"telemetry-dashboard/app/src/domain"
)

// BucketIndex maps a scalar in [0,1] to one of size buckets. Out-of-range
// scalars clamp to the first or last bucket and NaN maps to bucket 0.
func BucketIndex(scalar float64, size int) int {
	if size <= 0 || math.IsNaN(scalar) {
		return 0
	}
	idx := math.Floor(scalar * float64(size-1))
	switch {
	case idx < 0:
		return 0
	case idx > float64(size-1):
		return size - 1
	default:
		return int(idx)
	}
}

// ColorFor returns the palette entry for scalar. size is clamped to the palette length.
func ColorFor(scalar float64, size int) domain.PaletteEntry {
	if size > domain.PaletteSize {
		size = domain.PaletteSize
	}
	return domain.PaletteAt(BucketIndex(scalar, size))
}
