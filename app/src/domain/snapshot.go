package domain

import "time"

// MetricsSnapshot is the scalar aggregate state reported by the metrics endpoint.
// The zero value is what the dashboard shows before the first successful fetch.
type MetricsSnapshot struct {
	AvgDownload float64 `json:"avg_download"`
	AvgUpload   float64 `json:"avg_upload"`
	QueryCount  int     `json:"num_queries"`
	CurrentTime string  `json:"current_time"`
}

// SnapshotView pairs the held snapshot with the time it was last replaced.
type SnapshotView struct {
	Snapshot  MetricsSnapshot
	UpdatedAt time.Time
}
