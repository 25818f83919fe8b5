package domain

import (
	"context"
	"time"
)

// Source fetches one complete value (a batch or a snapshot) per call.
type Source[T any] interface {
	Fetch(ctx context.Context) (T, error)
}

// SampleSource yields a full replacement batch per poll.
type SampleSource = Source[[]Sample]

// SnapshotSource yields the scalar metrics snapshot.
type SnapshotSource = Source[MetricsSnapshot]

// FeedStatus is the health view of one polling feed.
type FeedStatus struct {
	Name        string        `json:"name"`
	Cadence     time.Duration `json:"cadence"`
	LastAttempt time.Time     `json:"last_attempt"`
	LastSuccess time.Time     `json:"last_success"`
	LastError   string        `json:"last_error,omitempty"`
	Successes   uint64        `json:"successes"`
	Failures    uint64        `json:"failures"`
	Skipped     uint64        `json:"skipped"`
	Stale       bool          `json:"stale"`
}

// DashboardStatus aggregates the status of every running feed.
type DashboardStatus struct {
	Feeds        []FeedStatus `json:"feeds"`
	SceneVersion uint64       `json:"scene_version"`
}

// Healthy reports whether no feed is stale.
func (s DashboardStatus) Healthy() bool {
	for _, f := range s.Feeds {
		if f.Stale {
			return false
		}
	}
	return true
}

// DashboardService describes the behaviour exposed to transport layers.
type DashboardService interface {
	Scene() Scene
	Snapshot() SnapshotView
	Status() DashboardStatus
	SubscribeScenes(ctx context.Context) <-chan Scene
}
