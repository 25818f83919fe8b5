package domain

import "time"

// ScenePoint is a positioned, coloured primitive handed to the render target.
type ScenePoint struct {
	Position Vec3    `json:"position"`
	Color    string  `json:"color"`
	Radius   float64 `json:"radius"`
	SampleID int     `json:"sample_id"`
	SourceID string  `json:"source_id,omitempty"`
}

// AxisSegment is a fixed line from the origin along one dimension.
type AxisSegment struct {
	Dimension Dimension `json:"dimension"`
	From      Vec3      `json:"from"`
	To        Vec3      `json:"to"`
	Color     string    `json:"color"`
	Label     string    `json:"label,omitempty"`
}

// GridPlane is the ground-plane grid drawn under the points.
type GridPlane struct {
	Size        float64 `json:"size"`
	Divisions   int     `json:"divisions"`
	Offset      Vec3    `json:"offset"`
	CenterColor string  `json:"center_color"`
	LineColor   string  `json:"line_color"`
}

// CameraHints describes the default camera the render target should start with.
type CameraHints struct {
	Position        Vec3    `json:"position"`
	AutoRotate      bool    `json:"auto_rotate"`
	AutoRotateSpeed float64 `json:"auto_rotate_speed"`
}

// Scene is a complete renderable description. Published scenes are never
// mutated; every change produces a new Scene with a higher Version.
type Scene struct {
	Version     uint64         `json:"version"`
	GeneratedAt time.Time      `json:"generated_at"`
	Points      []ScenePoint   `json:"points"`
	Axes        [3]AxisSegment `json:"axes"`
	Grid        GridPlane      `json:"grid"`
	Camera      CameraHints    `json:"camera"`
}

// AxisLabels names the physical quantity behind each dimension.
type AxisLabels struct {
	X string
	Y string
	Z string
}
