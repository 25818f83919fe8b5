package domain

// Vec3 is a position in scene space.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// NormalizedPoint is a sample projected into the [-2,2] cube with its bucket colour.
type NormalizedPoint struct {
	Position Vec3
	Color    PaletteEntry
	SampleID int
}
