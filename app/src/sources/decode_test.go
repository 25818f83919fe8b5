package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telemetry-dashboard/app/src/domain"
)

func TestDecodeSnapshot(t *testing.T) {
	snap, err := DecodeSnapshot([]byte(`{"avg_download": 12.34, "avg_upload": 5.5, "num_queries": 42, "current_time": "13:37:00"}`))
	require.NoError(t, err)
	assert.Equal(t, domain.MetricsSnapshot{AvgDownload: 12.34, AvgUpload: 5.5, QueryCount: 42, CurrentTime: "13:37:00"}, snap)
}

func TestDecodeSnapshotAcceptsWholeFloatCount(t *testing.T) {
	snap, err := DecodeSnapshot([]byte(`{"avg_download": 1, "avg_upload": 2, "num_queries": 8.0}`))
	require.NoError(t, err)
	assert.Equal(t, 8, snap.QueryCount)
}

func TestDecodeSnapshotRejectsMalformedBodies(t *testing.T) {
	bodies := map[string]string{
		"garbage":          `<html>oops</html>`,
		"array":            `[1,2,3]`,
		"missing field":    `{"avg_download": 1, "avg_upload": 2}`,
		"string number":    `{"avg_download": "1", "avg_upload": 2, "num_queries": 3}`,
		"truncated json":   `{"avg_download": 1,`,
		"fractional count": `{"avg_download": 1, "avg_upload": 2, "num_queries": 3.7}`,
		"huge count":       `{"avg_download": 1, "avg_upload": 2, "num_queries": 1e30}`,
		"negative count":   `{"avg_download": 1, "avg_upload": 2, "num_queries": -1}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeSnapshot([]byte(body))
			require.Error(t, err)
			assert.Equal(t, domain.KindDecode, domain.ErrorKind(err))
		})
	}
}

func TestDecodeSamples(t *testing.T) {
	body := `[
		{"id": 7, "dim1": 10, "dim2": 30, "dim3": 1000, "source_id": "Device-1"},
		{"dim1": 30.5, "dim2": 80, "dim3": 1010}
	]`

	samples, err := DecodeSamples([]byte(body))
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, domain.Sample{ID: 7, Dim1: 10, Dim2: 30, Dim3: 1000, SourceID: "Device-1"}, samples[0])
	assert.Equal(t, 1, samples[1].ID, "missing id falls back to the index")
	assert.Equal(t, 30.5, samples[1].Dim1)
}

func TestDecodeSamplesAcceptsProbeAndMockKeys(t *testing.T) {
	body := `[
		{"device_id": "esp32-01", "lat": 4.1, "lon": 7.2, "down": 3.3},
		{"id": 3, "temperature": 20, "humidity": 40, "pressure": 1000, "deviceId": "Device-1"}
	]`

	samples, err := DecodeSamples([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, domain.Sample{ID: 0, Dim1: 4.1, Dim2: 7.2, Dim3: 3.3, SourceID: "esp32-01"}, samples[0])
	assert.Equal(t, domain.Sample{ID: 3, Dim1: 20, Dim2: 40, Dim3: 1000, SourceID: "Device-1"}, samples[1])
}

func TestDecodeSamplesEmptyArray(t *testing.T) {
	samples, err := DecodeSamples([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, samples)
}

func TestDecodeSamplesRejectsMalformedBodies(t *testing.T) {
	bodies := map[string]string{
		"not json":        `nope`,
		"object":          `{"dim1": 1}`,
		"scalar element":  `[1]`,
		"missing dim":     `[{"dim1": 1, "dim2": 2}]`,
		"non numeric dim": `[{"dim1": 1, "dim2": 2, "dim3": "x"}]`,
		"null dim":        `[{"dim1": 1, "dim2": null, "dim3": 3}]`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeSamples([]byte(body))
			require.Error(t, err)
			var decodeErr *domain.DecodeError
			assert.ErrorAs(t, err, &decodeErr)
		})
	}
}

func TestDecodeSample(t *testing.T) {
	s, err := DecodeSample(`{"dim1": 1, "dim2": 2, "dim3": 3}`, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, s.ID)

	_, err = DecodeSample(`{broken`, 0)
	assert.Equal(t, domain.KindDecode, domain.ErrorKind(err))
}
