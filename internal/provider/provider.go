package provider

import (
	"context"

	"arbscan/internal/market"
)

// RatesProvider is one upstream price source. A fetch translates the
// provider's schema into the canonical rate table; it may return a partial
// table when the source does not know some of the requested pairs, but a
// response carrying none of them is a failure.
type RatesProvider interface {
	ID() string
	FetchRates(ctx context.Context, assets, currencies []string) (*market.RateTable, error)
}

// Error records a single failed provider attempt. The aggregator collects
// these so a total failure can name every source and cause.
type Error struct {
	Provider string
	Err      error
}

func (e *Error) Error() string {
	return e.Provider + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}
