package domain

// Quote is a single price observation for a symbol.
type Quote struct {
	Symbol     string `json:"symbol"`
	PriceCents int64  `json:"price_cents"` // minor units, always > 0 for a usable quote
	Source     string `json:"source"`      // "mock" | "live" | "coinbase" | "consensus" | "cache"
}

// Valid reports whether the quote can be used in settlement math.
// A zero or negative price is a fetch failure, never a price.
func (q Quote) Valid() bool {
	return q.PriceCents > 0
}
