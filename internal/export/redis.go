package export

import (
	"context"
	"time"
)

type scoreWriter interface {
	ReplaceScores(ctx context.Context, key string, scores map[string]float64, ttl time.Duration) error
}

// RedisSink stores the report as a sorted set of word -> frequency, so the
// most frequent words come back from ZREVRANGE.
type RedisSink struct {
	client scoreWriter
	key    string
	ttl    time.Duration
}

// NewRedisSink wraps client, normally a *redis.Client from pkg/redis.
func NewRedisSink(client scoreWriter, key string, ttl time.Duration) *RedisSink {
	return &RedisSink{client: client, key: key, ttl: ttl}
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) Export(ctx context.Context, r Report) error {
	scores := make(map[string]float64, len(r.Frequencies))
	for _, f := range r.Frequencies {
		scores[f.Word] = float64(f.Count)
	}
	return s.client.ReplaceScores(ctx, s.key, scores, s.ttl)
}
