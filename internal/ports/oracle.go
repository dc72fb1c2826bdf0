package ports

import (
	"context"

	"github.com/alejandrodnm/predmarket/internal/domain"
)

// PriceOracle supplies the current price for a symbol.
// Implementations may hit a live feed, serve deterministic mock data,
// cross-validate several sources, or chain any of those with caching
// and fallback. The engine only sees success with a positive price, or
// failure.
type PriceOracle interface {
	// Fetch returns a quote for the symbol (normalized to uppercase by
	// the caller). A returned error, or a quote with a non-positive
	// price, means the price is unavailable and must not be used.
	Fetch(ctx context.Context, symbol string) (domain.Quote, error)
}
