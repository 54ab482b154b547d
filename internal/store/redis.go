// Package store manages the Redis connection backing the notification
// queue. Redis is optional; the in-memory queue is the default backend,
// so a missing server must degrade health rather than hang handlers.
package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis owns the client shared by the queue backend and the health
// endpoint.
type Redis struct {
	Client *redis.Client
}

// Dial connects with short timeouts. The notification traffic is a
// trickle (one LPUSH per resend), so the pool is kept small.
func Dial(addr string) *Redis {
	return &Redis{Client: redis.NewClient(&redis.Options{
		Addr:         addr,
		ClientName:   "facemark",
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		PoolSize:     4,
	})}
}

// Healthy reports whether the server answers a ping. Nil receivers are
// healthy-false so callers need not special-case the memory backend.
func (r *Redis) Healthy(ctx context.Context) bool {
	if r == nil || r.Client == nil {
		return false
	}
	return r.Client.Ping(ctx).Err() == nil
}

// Close releases the connection pool. Safe on a nil receiver.
func (r *Redis) Close() error {
	if r == nil || r.Client == nil {
		return nil
	}
	return r.Client.Close()
}
