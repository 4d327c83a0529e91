// Package cache provides a Redis-backed cache for public seat
// availability.  Occupancy reads dominate traffic during on-sales while
// the authoritative ledger lives in MySQL; the cache absorbs the reads
// and is invalidated explicitly on every claim and release.
package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Seats caches occupied-seat lists per show.  A nil client disables the
// cache entirely: every lookup misses and writes are dropped, so the
// service degrades gracefully when Redis is unavailable at startup.
type Seats struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

// NewSeats constructs a seat cache.  ttl of zero selects 30 seconds.
func NewSeats(rdb *redis.Client, ttl time.Duration) *Seats {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Seats{rdb: rdb, ttl: ttl, prefix: "seats"}
}

// Get returns the cached occupied-seat labels for a show and whether the
// lookup hit.
func (c *Seats) Get(ctx context.Context, showID uint64) ([]string, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, c.key(showID)).Bytes()
	if err != nil {
		return nil, false
	}
	var seats []string
	if err := json.Unmarshal(raw, &seats); err != nil {
		return nil, false
	}
	return seats, true
}

// Set stores the occupied-seat labels for a show.
func (c *Seats) Set(ctx context.Context, showID uint64, seats []string) {
	if c == nil || c.rdb == nil {
		return
	}
	raw, err := json.Marshal(seats)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, c.key(showID), raw, c.ttl).Err()
}

// Invalidate drops the cached entry after occupancy changes.
func (c *Seats) Invalidate(ctx context.Context, showID uint64) {
	if c == nil || c.rdb == nil {
		return
	}
	_ = c.rdb.Del(ctx, c.key(showID)).Err()
}

func (c *Seats) key(showID uint64) string {
	return c.prefix + ":" + strconv.FormatUint(showID, 10)
}
