package constants

import "time"

const (
	// TimeFormat defines the canonical timestamp format used across transports.
	TimeFormat = time.RFC3339Nano
	// ClockFormat is the wall-clock layout reported as current_time by the metrics source.
	ClockFormat = "15:04:05"
	// CorrelationHeader carries a caller supplied correlation id on HTTP requests.
	CorrelationHeader = "X-Correlation-ID"
)
