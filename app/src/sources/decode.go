package sources

import (
	"fmt"
	"math"

	"github.com/tidwall/gjson"

	"telemetry-dashboard/app/src/domain"
)

// Accepted keys per sample field, in lookup order. Besides the canonical
// names this covers the probe's raw columns and the legacy mock payload.
var (
	idKeys       = []string{"id"}
	dim1Keys     = []string{"dim1", "lat", "temperature"}
	dim2Keys     = []string{"dim2", "lon", "humidity"}
	dim3Keys     = []string{"dim3", "throughput", "down", "pressure"}
	sourceIDKeys = []string{"source_id", "device_id", "deviceId"}
)

// DecodeSnapshot parses the scalar metrics body.
func DecodeSnapshot(body []byte) (domain.MetricsSnapshot, error) {
	if !gjson.ValidBytes(body) {
		return domain.MetricsSnapshot{}, &domain.DecodeError{Reason: "snapshot body is not valid JSON"}
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return domain.MetricsSnapshot{}, &domain.DecodeError{Reason: "snapshot body is not an object"}
	}

	download, err := number(root, "avg_download")
	if err != nil {
		return domain.MetricsSnapshot{}, err
	}
	upload, err := number(root, "avg_upload")
	if err != nil {
		return domain.MetricsSnapshot{}, err
	}
	queries, err := count(root, "num_queries")
	if err != nil {
		return domain.MetricsSnapshot{}, err
	}

	return domain.MetricsSnapshot{
		AvgDownload: download,
		AvgUpload:   upload,
		QueryCount:  queries,
		CurrentTime: root.Get("current_time").String(),
	}, nil
}

// DecodeSamples parses a JSON array of samples.
func DecodeSamples(body []byte) ([]domain.Sample, error) {
	if !gjson.ValidBytes(body) {
		return nil, &domain.DecodeError{Reason: "samples body is not valid JSON"}
	}
	root := gjson.ParseBytes(body)
	if !root.IsArray() {
		return nil, &domain.DecodeError{Reason: "samples body is not an array"}
	}

	elements := root.Array()
	samples := make([]domain.Sample, 0, len(elements))
	for i, el := range elements {
		s, err := decodeSample(el, i)
		if err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}
	return samples, nil
}

// DecodeSample parses one JSON sample. fallbackID is used when it has no id.
func DecodeSample(raw string, fallbackID int) (domain.Sample, error) {
	if !gjson.Valid(raw) {
		return domain.Sample{}, &domain.DecodeError{Reason: fmt.Sprintf("sample %d is not valid JSON", fallbackID)}
	}
	return decodeSample(gjson.Parse(raw), fallbackID)
}

func decodeSample(el gjson.Result, fallbackID int) (domain.Sample, error) {
	if !el.IsObject() {
		return domain.Sample{}, &domain.DecodeError{Reason: fmt.Sprintf("sample %d is not an object", fallbackID)}
	}

	var dims [3]float64
	for d, keys := range [][]string{dim1Keys, dim2Keys, dim3Keys} {
		v, ok := lookup(el, keys)
		if !ok {
			return domain.Sample{}, &domain.DecodeError{Reason: fmt.Sprintf("sample %d: missing %s", fallbackID, keys[0])}
		}
		if v.Type != gjson.Number {
			return domain.Sample{}, &domain.DecodeError{Reason: fmt.Sprintf("sample %d: %s is not a number", fallbackID, keys[0])}
		}
		dims[d] = v.Float()
	}

	id := fallbackID
	if v, ok := lookup(el, idKeys); ok && v.Type == gjson.Number {
		id = int(v.Int())
	}
	sourceID := ""
	if v, ok := lookup(el, sourceIDKeys); ok {
		sourceID = v.String()
	}

	return domain.Sample{ID: id, Dim1: dims[0], Dim2: dims[1], Dim3: dims[2], SourceID: sourceID}, nil
}

func lookup(el gjson.Result, keys []string) (gjson.Result, bool) {
	for _, k := range keys {
		if v := el.Get(k); v.Exists() && v.Type != gjson.Null {
			return v, true
		}
	}
	return gjson.Result{}, false
}

func number(root gjson.Result, key string) (float64, error) {
	v := root.Get(key)
	if !v.Exists() {
		return 0, &domain.DecodeError{Reason: "missing " + key}
	}
	if v.Type != gjson.Number {
		return 0, &domain.DecodeError{Reason: key + " is not a number"}
	}
	return v.Float(), nil
}

// count reads a non-negative whole number that fits in an int.
func count(root gjson.Result, key string) (int, error) {
	f, err := number(root, key)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || f < 0 || f > math.MaxInt32 {
		return 0, &domain.DecodeError{Reason: fmt.Sprintf("%s is not a valid count: %v", key, f)}
	}
	return int(f), nil
}
