package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"telemetry-dashboard/app/src/domain"
	"telemetry-dashboard/app/src/shared/constants"
)

const (
	latestSamplesSQL = `
SELECT device_id, lat, lon, COALESCE(down, 0)
FROM network_data
WHERE lat IS NOT NULL AND lon IS NOT NULL
ORDER BY ts DESC
LIMIT $1
`
	snapshotSQL = `
SELECT COALESCE(AVG(down), 0), COALESCE(AVG(up), 0), COUNT(*)
FROM network_data
`
)

// Querier is the read side of *sql.DB.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SampleRepository reads the latest located probe readings. Latitude,
// longitude and download throughput become the three sample dimensions.
type SampleRepository struct {
	db    Querier
	limit int
}

func NewSampleRepository(db Querier, limit int) (*SampleRepository, error) {
	if db == nil {
		return nil, errors.New("postgres samples: db is required")
	}
	if limit <= 0 {
		limit = 100
	}
	return &SampleRepository{db: db, limit: limit}, nil
}

func (r *SampleRepository) Fetch(ctx context.Context) ([]domain.Sample, error) {
	rows, err := r.db.QueryContext(ctx, latestSamplesSQL, r.limit)
	if err != nil {
		return nil, classify("query samples", err)
	}
	defer rows.Close()

	samples := make([]domain.Sample, 0, r.limit)
	for rows.Next() {
		var (
			deviceID      string
			lat, lon, got float64
		)
		if err := rows.Scan(&deviceID, &lat, &lon, &got); err != nil {
			return nil, &domain.DecodeError{Reason: "scan sample row", Err: err}
		}
		samples = append(samples, domain.Sample{
			ID:       len(samples),
			Dim1:     lat,
			Dim2:     lon,
			Dim3:     got,
			SourceID: deviceID,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate samples", err)
	}
	return samples, nil
}

// SnapshotRepository aggregates the scalar metrics over every stored reading.
type SnapshotRepository struct {
	db  Querier
	now func() time.Time
}

func NewSnapshotRepository(db Querier) (*SnapshotRepository, error) {
	if db == nil {
		return nil, errors.New("postgres snapshot: db is required")
	}
	return &SnapshotRepository{db: db, now: time.Now}, nil
}

// Fetch returns averages and row count. CurrentTime is the wall clock at
// query time, not the newest reading.
func (r *SnapshotRepository) Fetch(ctx context.Context) (domain.MetricsSnapshot, error) {
	var snap domain.MetricsSnapshot
	err := r.db.QueryRowContext(ctx, snapshotSQL).Scan(&snap.AvgDownload, &snap.AvgUpload, &snap.QueryCount)
	if err != nil {
		return domain.MetricsSnapshot{}, classify("query snapshot", err)
	}
	snap.CurrentTime = r.now().Format(constants.ClockFormat)
	return snap, nil
}

// classify maps database errors onto the fetch taxonomy. Errors reported by
// the server keep their SQLSTATE in the op for the logs.
func classify(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return &domain.TransportError{Op: fmt.Sprintf("%s [%s %s]", op, pqErr.Code, pqErr.Code.Name()), Err: err}
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.DecodeError{Reason: op + ": no rows", Err: err}
	}
	return &domain.TransportError{Op: op, Err: err}
}

var (
	_ domain.SampleSource   = (*SampleRepository)(nil)
	_ domain.SnapshotSource = (*SnapshotRepository)(nil)
)
