package market

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidInput marks caller mistakes: non-positive prices, empty symbol
// sets, unknown or malformed symbols. Errors wrapping it fail fast and are
// never retried.
var ErrInvalidInput = errors.New("invalid input")

// Quote is a single spot price: one asset priced in one quote currency by one
// source. A quote is immutable once built; derived cross rates carry
// Derived=true and are never stored as primary data.
type Quote struct {
	Asset     string          `json:"asset"`
	Currency  string          `json:"currency"`
	Price     decimal.Decimal `json:"price"`
	Source    string          `json:"source"`
	FetchedAt time.Time       `json:"fetched_at"`
	Derived   bool            `json:"derived,omitempty"`
}

// NewQuote validates and normalizes a primary quote. Symbols are trimmed and
// uppercased; the price must be strictly positive.
func NewQuote(asset, currency string, price decimal.Decimal, source string, fetchedAt time.Time) (Quote, error) {
	asset = strings.ToUpper(strings.TrimSpace(asset))
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if asset == "" || currency == "" {
		return Quote{}, fmt.Errorf("quote needs both asset and currency: %w", ErrInvalidInput)
	}
	if !price.IsPositive() {
		return Quote{}, fmt.Errorf("non-positive price %s for %s/%s: %w", price, asset, currency, ErrInvalidInput)
	}
	if fetchedAt.IsZero() {
		fetchedAt = time.Now().UTC()
	}
	return Quote{
		Asset:     asset,
		Currency:  currency,
		Price:     price,
		Source:    source,
		FetchedAt: fetchedAt,
	}, nil
}

// Pair renders the quote key as "ASSET/CURRENCY".
func (q Quote) Pair() string {
	return q.Asset + "/" + q.Currency
}

// NormalizeSymbols uppercases, trims, deduplicates and sorts a symbol list.
// Empty entries are dropped.
func NormalizeSymbols(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
