package sources

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"telemetry-dashboard/app/src/domain"
	"telemetry-dashboard/app/src/infra"
)

// ListReader is the subset of the redis client used by RedisSampleSource.
type ListReader interface {
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
}

// NewRedisClient builds a client from the REDIS_* settings.
func NewRedisClient(cfg infra.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

// RedisSampleSource reads the newest samples from a Redis list. The list is
// filled by the device bridge with LPUSH, so index 0 is the latest reading.
type RedisSampleSource struct {
	client ListReader
	key    string
	limit  int
}

func NewRedisSampleSource(client ListReader, key string, limit int) (*RedisSampleSource, error) {
	if client == nil {
		return nil, errors.New("redis source: client is required")
	}
	if key == "" {
		return nil, errors.New("redis source: key is required")
	}
	if limit <= 0 {
		limit = 100
	}
	return &RedisSampleSource{client: client, key: key, limit: limit}, nil
}

func (s *RedisSampleSource) Fetch(ctx context.Context) ([]domain.Sample, error) {
	values, err := s.client.LRange(ctx, s.key, 0, int64(s.limit-1)).Result()
	if errors.Is(err, redis.Nil) {
		return []domain.Sample{}, nil
	}
	if err != nil {
		return nil, &domain.TransportError{Op: fmt.Sprintf("LRANGE %s", s.key), Err: err}
	}

	samples := make([]domain.Sample, 0, len(values))
	for i, raw := range values {
		sample, err := DecodeSample(raw, i)
		if err != nil {
			return nil, err
		}
		samples = append(samples, sample)
	}
	return samples, nil
}

var _ domain.SampleSource = (*RedisSampleSource)(nil)
