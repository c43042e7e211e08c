package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultStream is the Redis stream episodes are appended to.
const DefaultStream = "turnenv:episodes"

type streamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// Redis appends one stream entry per episode.
type Redis struct {
	rdb    streamAdder
	client *redis.Client
	stream string
	maxLen int64
}

// OpenRedis connects to a redis:// URL. Streams are trimmed to roughly maxLen
// entries; 0 keeps everything.
func OpenRedis(ctx context.Context, url, stream string, maxLen int64) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	r := newRedis(client, stream, maxLen)
	r.client = client
	return r, nil
}

func newRedis(rdb streamAdder, stream string, maxLen int64) *Redis {
	if stream == "" {
		stream = DefaultStream
	}
	return &Redis{rdb: rdb, stream: stream, maxLen: maxLen}
}

func (r *Redis) Save(ctx context.Context, ep Episode) error {
	returns, err := marshalReturns(ep)
	if err != nil {
		return fmt.Errorf("marshal returns: %w", err)
	}
	args := &redis.XAddArgs{
		Stream: r.stream,
		Values: map[string]any{
			"id":          ep.ID.String(),
			"env":         ep.Env,
			"seed":        strconv.FormatUint(ep.Seed, 10),
			"steps":       ep.Steps,
			"truncated":   ep.Truncated,
			"returns":     string(returns),
			"started_at":  ep.StartedAt.UTC().Format(time.RFC3339Nano),
			"duration_ms": ep.Duration.Milliseconds(),
		},
	}
	if r.maxLen > 0 {
		args.MaxLen = r.maxLen
		args.Approx = true
	}
	if err := r.rdb.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", r.stream, err)
	}
	return nil
}

func (r *Redis) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}
