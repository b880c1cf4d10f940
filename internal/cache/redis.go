package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// MustConnect opens the redis connection backing the query response cache
// and panics when the server is unreachable. The cache is optional; callers
// skip this entirely when no address is configured.
func MustConnect(addr string, db int) *redis.Client {
	r := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Ping(ctx).Err(); err != nil {
		panic(err)
	}
	return r
}
