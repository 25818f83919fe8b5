package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"telemetry-dashboard/app/src/domain"
	"telemetry-dashboard/app/src/infra/utils"
)

const maxBodyBytes = 8 << 20

// NewHTTPClient returns the client shared by the HTTP sources.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: utils.PositiveOr(timeout, 5*time.Second)}
}

type endpoint struct {
	url    string
	client *http.Client
}

func newEndpoint(baseURL, path string, client *http.Client) (endpoint, error) {
	if baseURL == "" {
		return endpoint{}, errors.New("http source: base url is required")
	}
	if client == nil {
		client = NewHTTPClient(0)
	}
	return endpoint{url: utils.JoinURL(baseURL, path), client: client}, nil
}

// get performs one GET and classifies failures into the fetch taxonomy.
func (e endpoint) get(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.url, nil)
	if err != nil {
		return nil, &domain.TransportError{Op: "build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &domain.TransportError{Op: "GET " + e.url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &domain.ProtocolError{StatusCode: resp.StatusCode, URL: e.url}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &domain.TransportError{Op: "read body", Err: err}
	}
	return body, nil
}

// MetricsClient fetches the scalar snapshot from the metrics endpoint.
type MetricsClient struct {
	endpoint
}

func NewMetricsClient(baseURL, path string, client *http.Client) (*MetricsClient, error) {
	e, err := newEndpoint(baseURL, path, client)
	if err != nil {
		return nil, fmt.Errorf("metrics client: %w", err)
	}
	return &MetricsClient{endpoint: e}, nil
}

func (c *MetricsClient) Fetch(ctx context.Context) (domain.MetricsSnapshot, error) {
	body, err := c.get(ctx)
	if err != nil {
		return domain.MetricsSnapshot{}, err
	}
	return DecodeSnapshot(body)
}

// SamplesClient fetches a sample batch from a JSON endpoint.
type SamplesClient struct {
	endpoint
}

func NewSamplesClient(baseURL, path string, client *http.Client) (*SamplesClient, error) {
	e, err := newEndpoint(baseURL, path, client)
	if err != nil {
		return nil, fmt.Errorf("samples client: %w", err)
	}
	return &SamplesClient{endpoint: e}, nil
}

func (c *SamplesClient) Fetch(ctx context.Context) ([]domain.Sample, error) {
	body, err := c.get(ctx)
	if err != nil {
		return nil, err
	}
	return DecodeSamples(body)
}

var (
	_ domain.SnapshotSource = (*MetricsClient)(nil)
	_ domain.SampleSource   = (*SamplesClient)(nil)
)
