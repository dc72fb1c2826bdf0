package oracle

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/alejandrodnm/predmarket/internal/domain"
	"golang.org/x/time/rate"
)

const defaultCoinbaseBase = "https://api.coinbase.com"

// Coinbase is a second independent feed, used by the consensus oracle
// to cross-validate the primary one.
type Coinbase struct {
	http    *http.Client
	base    string
	limiter *rate.Limiter
}

// NewCoinbase creates a Coinbase spot-price source. An empty base uses
// the production endpoint.
func NewCoinbase(base string) *Coinbase {
	if base == "" {
		base = defaultCoinbaseBase
	}
	return &Coinbase{
		http:    &http.Client{Timeout: 10 * time.Second},
		base:    base,
		limiter: rate.NewLimiter(feedRatePerSec, 5),
	}
}

// Fetch queries /v2/prices/{SYM}-USD/spot.
func (c *Coinbase) Fetch(ctx context.Context, symbol string) (domain.Quote, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return domain.Quote{}, fmt.Errorf("oracle.Coinbase: rate limiter: %w", err)
	}

	u := fmt.Sprintf("%s/v2/prices/%s-USD/spot", c.base, url.PathEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.Quote{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("oracle.Coinbase: fetch %s: %w", symbol, err)
	}

	var payload struct {
		Data struct {
			Amount string `json:"amount"`
		} `json:"data"`
	}
	if err := decodeResponse(resp, &payload); err != nil {
		return domain.Quote{}, fmt.Errorf("oracle.Coinbase: fetch %s: %w", symbol, err)
	}

	usd, err := strconv.ParseFloat(payload.Data.Amount, 64)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("oracle.Coinbase: %s: parse amount %q: %w", symbol, payload.Data.Amount, err)
	}
	cents := int64(math.Round(usd * 100))
	if cents <= 0 {
		return domain.Quote{}, fmt.Errorf("oracle.Coinbase: %s: feed returned no usable price (%.4f USD)", symbol, usd)
	}

	return domain.Quote{Symbol: symbol, PriceCents: cents, Source: "coinbase"}, nil
}
