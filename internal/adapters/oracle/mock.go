// Package oracle provides the price-source strategies behind the
// engine's PriceOracle port: a deterministic mock generator, a live
// HTTP feed, a cross-source consensus check, a Redis read-through
// cache and a fallback chain. Strategies compose: any of them can wrap
// any other.
package oracle

import (
	"context"
	"sync"

	"github.com/alejandrodnm/predmarket/internal/domain"
)

// basePrices are the mock anchor prices in minor units.
var basePrices = map[string]int64{
	"BTC":  9_500_000,
	"ETH":  350_000,
	"SOL":  15_000,
	"DOGE": 35,
	"ADA":  95,
}

// defaultBasePrice anchors symbols missing from the table.
const defaultBasePrice = 100_000

// Mock generates pseudo-random but fully reproducible prices: each
// fetch bumps a counter, and the price wobbles around the symbol's
// anchor by at most ±10% in a fixed sequence. Two runs that fetch in
// the same order see the same prices.
type Mock struct {
	mu      sync.Mutex
	counter int64
}

// NewMock creates a mock oracle with the counter at zero.
func NewMock() *Mock {
	return &Mock{}
}

// Fetch returns the next price in the symbol's deterministic sequence.
func (m *Mock) Fetch(_ context.Context, symbol string) (domain.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counter++
	base, ok := basePrices[symbol]
	if !ok {
		base = defaultBasePrice
	}

	// variation ∈ [-100, 99], scaled to ±10% of the anchor.
	variation := (m.counter*7919)%200 - 100
	price := base + base*variation/1000

	return domain.Quote{Symbol: symbol, PriceCents: price, Source: "mock"}, nil
}
