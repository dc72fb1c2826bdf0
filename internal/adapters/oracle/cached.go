package oracle

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/alejandrodnm/predmarket/internal/domain"
	"github.com/alejandrodnm/predmarket/internal/ports"
	"github.com/redis/go-redis/v9"
)

// Cached is a Redis read-through decorator: quotes are served from
// Redis while fresh and refetched from the underlying oracle on a
// miss. Cache trouble never fails a fetch — it degrades to the
// underlying oracle.
type Cached struct {
	next ports.PriceOracle
	rdb  *redis.Client
	ttl  time.Duration
}

// NewCached wraps next with a Redis cache at addr.
func NewCached(next ports.PriceOracle, addr string, ttl time.Duration) *Cached {
	return &Cached{
		next: next,
		rdb:  redis.NewClient(&redis.Options{Addr: addr}),
		ttl:  ttl,
	}
}

func priceKey(symbol string) string {
	return "price:" + symbol
}

// Fetch checks Redis first, then falls through to the wrapped oracle
// and stores the fresh quote best-effort.
func (c *Cached) Fetch(ctx context.Context, symbol string) (domain.Quote, error) {
	val, err := c.rdb.Get(ctx, priceKey(symbol)).Result()
	if err == nil {
		if cents, perr := strconv.ParseInt(val, 10, 64); perr == nil && cents > 0 {
			return domain.Quote{Symbol: symbol, PriceCents: cents, Source: "cache"}, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		slog.Warn("price cache read failed", "symbol", symbol, "err", err)
	}

	q, err := c.next.Fetch(ctx, symbol)
	if err != nil {
		return domain.Quote{}, err
	}

	if serr := c.rdb.Set(ctx, priceKey(symbol), strconv.FormatInt(q.PriceCents, 10), c.ttl).Err(); serr != nil {
		slog.Warn("price cache write failed", "symbol", symbol, "err", serr)
	}
	return q, nil
}

// Close releases the Redis connection.
func (c *Cached) Close() error {
	return c.rdb.Close()
}
