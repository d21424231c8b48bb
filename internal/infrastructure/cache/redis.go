package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Open connects and pings the idempotency cache. Callers skip this entirely
// when no redis address is configured.
func Open(addr string, db int) (*redis.Client, error) {
	r := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return r, nil
}
