package redis

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/config"
	goredis "github.com/redis/go-redis/v9"
)

func (c *Client) score(ctx context.Context, key, member string) (float64, error) {
	return c.rdb.ZScore(ctx, key, member).Result()
}

func skipIfNoRedis(t *testing.T) *Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis test in short mode")
	}
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	c, err := NewClient(context.Background(), config.RedisConfig{Addr: addr, DB: 15, PoolSize: 2})
	if err != nil {
		t.Skipf("skipping integration test: redis unavailable: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestReplaceScores(t *testing.T) {
	c := skipIfNoRedis(t)
	ctx := context.Background()
	key := "wordfreq:test:scores"
	t.Cleanup(func() { c.rdb.Del(ctx, key) })

	if err := c.ReplaceScores(ctx, key, map[string]float64{"cat": 2, "dog": 1}, time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := c.ReplaceScores(ctx, key, map[string]float64{"bird": 5}, time.Minute); err != nil {
		t.Fatal(err)
	}
	if score, err := c.score(ctx, key, "bird"); err != nil || score != 5 {
		t.Fatalf("bird score=%v err=%v", score, err)
	}
	if _, err := c.score(ctx, key, "cat"); !errors.Is(err, goredis.Nil) {
		t.Fatalf("stale member survived replace: %v", err)
	}
}
