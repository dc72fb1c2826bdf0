package oracle

import (
	"context"
	"log/slog"

	"github.com/alejandrodnm/predmarket/internal/domain"
	"github.com/alejandrodnm/predmarket/internal/ports"
)

// Fallback chains a primary oracle with a backup: when the primary
// fails or returns a degenerate price, the backup answers instead.
// Report controls whether the degradation is visible to callers: when
// true, backup quotes are tagged "<source>:fallback" so consumers can
// tell a degraded result from a healthy one.
type Fallback struct {
	primary ports.PriceOracle
	backup  ports.PriceOracle
	report  bool
}

// NewFallback wires the chain.
func NewFallback(primary, backup ports.PriceOracle, report bool) *Fallback {
	return &Fallback{primary: primary, backup: backup, report: report}
}

// Fetch tries the primary first.
func (f *Fallback) Fetch(ctx context.Context, symbol string) (domain.Quote, error) {
	q, err := f.primary.Fetch(ctx, symbol)
	if err == nil && q.Valid() {
		return q, nil
	}

	slog.Warn("primary price source failed, using fallback", "symbol", symbol, "err", err)

	q, ferr := f.backup.Fetch(ctx, symbol)
	if ferr != nil {
		return domain.Quote{}, ferr
	}
	if f.report {
		q.Source += ":fallback"
	}
	return q, nil
}
