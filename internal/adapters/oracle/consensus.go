package oracle

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alejandrodnm/predmarket/internal/domain"
	"github.com/alejandrodnm/predmarket/internal/ports"
)

// defaultTolerance is the max relative spread between sources: 1%.
const defaultTolerance = 0.01

// Consensus cross-validates a price across several underlying sources
// and only accepts it when every source agrees within the tolerance.
// One divergent or failing source fails the whole fetch: a price the
// sources cannot agree on is not a price.
type Consensus struct {
	sources   []ports.PriceOracle
	tolerance float64
}

// NewConsensus wraps two or more sources. A non-positive tolerance
// uses the 1% default.
func NewConsensus(tolerance float64, sources ...ports.PriceOracle) (*Consensus, error) {
	if len(sources) < 2 {
		return nil, fmt.Errorf("oracle.NewConsensus: need at least 2 sources, got %d", len(sources))
	}
	if tolerance <= 0 {
		tolerance = defaultTolerance
	}
	return &Consensus{sources: sources, tolerance: tolerance}, nil
}

// Fetch queries every source sequentially and checks agreement against
// the first quote.
func (c *Consensus) Fetch(ctx context.Context, symbol string) (domain.Quote, error) {
	quotes := make([]domain.Quote, 0, len(c.sources))
	for i, src := range c.sources {
		q, err := src.Fetch(ctx, symbol)
		if err != nil {
			return domain.Quote{}, fmt.Errorf("oracle.Consensus: source %d: %w", i, err)
		}
		if !q.Valid() {
			return domain.Quote{}, fmt.Errorf("oracle.Consensus: source %d returned price %d", i, q.PriceCents)
		}
		quotes = append(quotes, q)
	}

	ref := quotes[0].PriceCents
	for i, q := range quotes[1:] {
		diff := q.PriceCents - ref
		if diff < 0 {
			diff = -diff
		}
		if float64(diff) > float64(ref)*c.tolerance {
			slog.Warn("price sources disagree",
				"symbol", symbol,
				"reference", ref,
				"divergent", q.PriceCents,
				"source_index", i+1,
			)
			return domain.Quote{}, fmt.Errorf("oracle.Consensus: %s: sources disagree (%d vs %d, tolerance %.2f%%)",
				symbol, ref, q.PriceCents, c.tolerance*100)
		}
	}

	return domain.Quote{Symbol: symbol, PriceCents: ref, Source: "consensus"}, nil
}
