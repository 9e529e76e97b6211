package market

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// RateTable holds the unique (asset, currency) quote map produced by one
// aggregation pass. Cross-asset rates are derived on demand from two legs
// sharing a quote currency; they are recomputed on every lookup and never
// written back into the table.
type RateTable struct {
	quotes   map[string]map[string]Quote // asset -> currency -> quote
	freshFor time.Duration               // 0 disables the staleness check on derivation legs
	now      func() time.Time
}

// TableOption tunes RateTable construction.
type TableOption func(*RateTable)

// WithFreshness sets the window inside which a quote may serve as a leg of a
// derived cross rate. Zero means no limit.
func WithFreshness(d time.Duration) TableOption {
	return func(t *RateTable) { t.freshFor = d }
}

// WithClock overrides the time source used for staleness checks.
func WithClock(now func() time.Time) TableOption {
	return func(t *RateTable) { t.now = now }
}

func NewRateTable(opts ...TableOption) *RateTable {
	t := &RateTable{
		quotes: make(map[string]map[string]Quote),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Add inserts a primary quote, replacing any previous quote for the same
// pair. Derived or malformed quotes are rejected.
func (t *RateTable) Add(q Quote) error {
	if q.Derived {
		return fmt.Errorf("derived quote %s cannot be stored as primary: %w", q.Pair(), ErrInvalidInput)
	}
	if q.Asset == "" || q.Currency == "" {
		return fmt.Errorf("quote without asset or currency: %w", ErrInvalidInput)
	}
	if !q.Price.IsPositive() {
		return fmt.Errorf("non-positive price %s for %s: %w", q.Price, q.Pair(), ErrInvalidInput)
	}
	byCurrency, ok := t.quotes[q.Asset]
	if !ok {
		byCurrency = make(map[string]Quote)
		t.quotes[q.Asset] = byCurrency
	}
	byCurrency[q.Currency] = q
	return nil
}

// Get returns the primary quote for (asset, currency), if fetched directly.
func (t *RateTable) Get(asset, currency string) (Quote, bool) {
	byCurrency, ok := t.quotes[strings.ToUpper(asset)]
	if !ok {
		return Quote{}, false
	}
	q, ok := byCurrency[strings.ToUpper(currency)]
	return q, ok
}

// Rate resolves a conversion rate from one symbol to another: the primary
// quote when the pair was fetched directly, otherwise a cross rate composed
// from two fresh legs priced in a shared quote currency. Derived results
// carry Derived=true and the older leg's fetch time.
func (t *RateTable) Rate(from, to string) (Quote, bool) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)
	if q, ok := t.Get(from, to); ok {
		return q, true
	}
	return t.crossRate(from, to)
}

func (t *RateTable) crossRate(from, to string) (Quote, bool) {
	base, ok := t.quotes[from]
	if !ok {
		return Quote{}, false
	}
	counter, ok := t.quotes[to]
	if !ok {
		return Quote{}, false
	}
	shared := make([]string, 0, len(base))
	for currency := range base {
		if _, both := counter[currency]; both {
			shared = append(shared, currency)
		}
	}
	sort.Strings(shared) // deterministic leg selection
	for _, currency := range shared {
		legFrom, legTo := base[currency], counter[currency]
		if !t.fresh(legFrom) || !t.fresh(legTo) {
			continue
		}
		fetchedAt := legFrom.FetchedAt
		if legTo.FetchedAt.Before(fetchedAt) {
			fetchedAt = legTo.FetchedAt
		}
		source := legFrom.Source
		if legTo.Source != source {
			source = source + "+" + legTo.Source
		}
		return Quote{
			Asset:     from,
			Currency:  to,
			Price:     legFrom.Price.Div(legTo.Price),
			Source:    source,
			FetchedAt: fetchedAt,
			Derived:   true,
		}, true
	}
	return Quote{}, false
}

func (t *RateTable) fresh(q Quote) bool {
	if t.freshFor <= 0 {
		return true
	}
	return t.now().Sub(q.FetchedAt) <= t.freshFor
}

// Quotes returns the primary quotes sorted by asset, then currency.
func (t *RateTable) Quotes() []Quote {
	out := make([]Quote, 0, t.Len())
	for _, byCurrency := range t.quotes {
		for _, q := range byCurrency {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Asset != out[j].Asset {
			return out[i].Asset < out[j].Asset
		}
		return out[i].Currency < out[j].Currency
	})
	return out
}

// Assets returns the distinct assets present, sorted.
func (t *RateTable) Assets() []string {
	out := make([]string, 0, len(t.quotes))
	for asset := range t.quotes {
		out = append(out, asset)
	}
	sort.Strings(out)
	return out
}

func (t *RateTable) Len() int {
	n := 0
	for _, byCurrency := range t.quotes {
		n += len(byCurrency)
	}
	return n
}

type tableJSON struct {
	Quotes []Quote `json:"quotes"`
}

// MarshalJSON serializes the primary quotes only; derived rates are always
// recomputed after a round trip.
func (t *RateTable) MarshalJSON() ([]byte, error) {
	return json.Marshal(tableJSON{Quotes: t.Quotes()})
}

func (t *RateTable) UnmarshalJSON(data []byte) error {
	var raw tableJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if t.quotes == nil {
		t.quotes = make(map[string]map[string]Quote)
	}
	if t.now == nil {
		t.now = time.Now
	}
	for _, q := range raw.Quotes {
		if err := t.Add(q); err != nil {
			return err
		}
	}
	return nil
}
