package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/alejandrodnm/predmarket/internal/domain"
	"golang.org/x/time/rate"
)

const (
	defaultFeedBase = "https://min-api.cryptocompare.com"

	// Free-tier friendly: well under CryptoCompare's documented limits.
	feedRatePerSec = 10

	maxRetries    = 2
	baseRetryWait = 300 * time.Millisecond
)

// Live fetches spot prices over HTTP with rate limiting and retries.
type Live struct {
	http    *http.Client
	base    string
	limiter *rate.Limiter
}

// NewLive creates a live oracle against the given feed base URL.
// An empty base uses the production CryptoCompare endpoint.
func NewLive(base string) *Live {
	if base == "" {
		base = defaultFeedBase
	}
	return &Live{
		http:    &http.Client{Timeout: 10 * time.Second},
		base:    base,
		limiter: rate.NewLimiter(feedRatePerSec, 5),
	}
}

// Fetch queries /data/price?fsym=SYM&tsyms=USD and converts the USD
// price to integer cents.
func (l *Live) Fetch(ctx context.Context, symbol string) (domain.Quote, error) {
	u := fmt.Sprintf("%s/data/price?fsym=%s&tsyms=USD", l.base, url.QueryEscape(symbol))

	var payload struct {
		USD float64 `json:"USD"`
	}
	if err := l.get(ctx, u, &payload); err != nil {
		return domain.Quote{}, fmt.Errorf("oracle.Live: fetch %s: %w", symbol, err)
	}

	cents := int64(math.Round(payload.USD * 100))
	if cents <= 0 {
		return domain.Quote{}, fmt.Errorf("oracle.Live: %s: feed returned no usable price (%.4f USD)", symbol, payload.USD)
	}

	return domain.Quote{Symbol: symbol, PriceCents: cents, Source: "live"}, nil
}

// get does a rate-limited GET with exponential backoff on transient
// failures.
func (l *Live) get(ctx context.Context, u string, out any) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := l.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := l.http.Do(req)
		if err != nil {
			lastErr = err
		} else {
			lastErr = decodeResponse(resp, out)
			if lastErr == nil {
				return nil
			}
		}

		if attempt < maxRetries {
			wait := baseRetryWait * time.Duration(1<<attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
	}
	return lastErr
}

func decodeResponse(resp *http.Response, out any) error {
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
