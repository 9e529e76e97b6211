package aggregator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"arbscan/internal/market"
	"arbscan/internal/provider"
)

// Cache is the rate table cache consulted before any provider attempt. Both
// the in-memory and the Redis backends satisfy it; a nil cache disables
// caching.
type Cache interface {
	Get(ctx context.Context, key string) (*market.RateTable, bool)
	Set(ctx context.Context, key string, table *market.RateTable, ttl time.Duration)
}

const (
	defaultMaxErrorsBeforeSwitch = 3
	defaultCacheTTL              = 5 * time.Minute
)

// Options configure ordering and caching behavior.
type Options struct {
	CacheTTL              time.Duration
	MaxErrorsBeforeSwitch int
	AutoReorder           bool
	PreferredProvider     string
}

// Aggregator orchestrates the providers: cache first, then sequential
// attempts in reliability order, with per-provider consecutive error
// counters deciding that order. A counter only resets on a later success;
// there is no time-based re-enable of a degraded provider.
type Aggregator struct {
	mu          sync.Mutex
	providers   []provider.RatesProvider // configured order, fixed after construction
	states      map[string]*ProviderState
	cache       Cache
	cacheTTL    time.Duration
	maxErrors   int
	autoReorder bool
	preferred   string
	lastUsed    string
	logger      *zap.SugaredLogger
}

func New(providers []provider.RatesProvider, cache Cache, logger *zap.SugaredLogger, opts Options) *Aggregator {
	if opts.MaxErrorsBeforeSwitch <= 0 {
		opts.MaxErrorsBeforeSwitch = defaultMaxErrorsBeforeSwitch
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}
	a := &Aggregator{
		providers:   providers,
		states:      make(map[string]*ProviderState, len(providers)),
		cache:       cache,
		cacheTTL:    opts.CacheTTL,
		maxErrors:   opts.MaxErrorsBeforeSwitch,
		autoReorder: opts.AutoReorder,
		preferred:   opts.PreferredProvider,
		logger:      logger,
	}
	for _, p := range providers {
		a.states[p.ID()] = &ProviderState{ID: p.ID()}
	}
	return a
}

// GetRates returns a rate table for the requested assets and currencies,
// serving a fresh cached table unless forceRefresh is set. On a miss the
// providers are tried sequentially in the current reliability order; the
// first success is cached under the request signature and returned. Partial
// tables count as success. When every provider fails the call returns
// *AggregationError and nothing is cached.
func (a *Aggregator) GetRates(ctx context.Context, assets, currencies []string, forceRefresh bool) (*market.RateTable, error) {
	assets = market.NormalizeSymbols(assets)
	currencies = market.NormalizeSymbols(currencies)
	if len(assets) == 0 || len(currencies) == 0 {
		return nil, fmt.Errorf("assets and currencies must not be empty: %w", market.ErrInvalidInput)
	}

	key := cacheKey(assets, currencies)
	if !forceRefresh && a.cache != nil {
		if table, ok := a.cache.Get(ctx, key); ok {
			a.logger.Debugw("rates served from cache", "key", key)
			return table, nil
		}
	}

	attempts := a.attemptOrder()
	if len(attempts) == 0 {
		return nil, &AggregationError{Errs: []error{errors.New("no providers configured")}}
	}

	errs := make([]error, 0, len(attempts))
	for _, p := range attempts {
		table, err := p.FetchRates(ctx, assets, currencies)
		if err != nil {
			a.recordFailure(p.ID())
			a.logger.Warnw("provider failed, falling back",
				"provider", p.ID(),
				"error", err,
			)
			errs = append(errs, &provider.Error{Provider: p.ID(), Err: err})
			continue
		}
		a.recordSuccess(p.ID())
		if a.cache != nil {
			a.cache.Set(ctx, key, table, a.cacheTTL)
		}
		a.logger.Infow("rates fetched",
			"provider", p.ID(),
			"pairs", table.Len(),
		)
		return table, nil
	}
	return nil, &AggregationError{Errs: errs}
}

// attemptOrder computes the order once per call, under the lock. With auto
// reordering on, providers sort by consecutive errors ascending and ties
// keep configured order. Otherwise the preferred provider leads, and
// degraded providers (counter at or past the switch threshold) drop to the
// back while keeping their relative order.
func (a *Aggregator) attemptOrder() []provider.RatesProvider {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]provider.RatesProvider, len(a.providers))
	copy(out, a.providers)

	if a.autoReorder {
		sort.SliceStable(out, func(i, j int) bool {
			return a.states[out[i].ID()].ConsecutiveErrors < a.states[out[j].ID()].ConsecutiveErrors
		})
		return out
	}

	var preferred provider.RatesProvider
	healthy := make([]provider.RatesProvider, 0, len(out))
	degraded := make([]provider.RatesProvider, 0)
	for _, p := range out {
		st := a.states[p.ID()]
		switch {
		case st.ConsecutiveErrors >= a.maxErrors:
			degraded = append(degraded, p)
		case p.ID() == a.preferred:
			preferred = p
		default:
			healthy = append(healthy, p)
		}
	}
	ordered := make([]provider.RatesProvider, 0, len(out))
	if preferred != nil {
		ordered = append(ordered, preferred)
	}
	ordered = append(ordered, healthy...)
	return append(ordered, degraded...)
}

func (a *Aggregator) recordSuccess(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	st := a.states[id]
	st.ConsecutiveErrors = 0
	st.LastOutcome = OutcomeSuccess
	st.LastAttemptAt = time.Now().UTC()
	st.Degraded = false
	a.lastUsed = id
}

func (a *Aggregator) recordFailure(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	st := a.states[id]
	st.ConsecutiveErrors++
	st.LastOutcome = OutcomeFailure
	st.LastAttemptAt = time.Now().UTC()
	st.Degraded = st.ConsecutiveErrors >= a.maxErrors
}

// States returns a snapshot of every provider's reliability state, in
// configured order.
func (a *Aggregator) States() []ProviderState {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]ProviderState, 0, len(a.providers))
	for _, p := range a.providers {
		out = append(out, *a.states[p.ID()])
	}
	return out
}

// LastUsed names the provider that served the most recent successful fetch.
func (a *Aggregator) LastUsed() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastUsed
}

// SetPreferredProvider switches which provider is tried first while auto
// reordering is off. An empty id clears the preference.
func (a *Aggregator) SetPreferredProvider(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if id != "" {
		if _, ok := a.states[id]; !ok {
			return fmt.Errorf("unknown provider %q: %w", id, market.ErrInvalidInput)
		}
	}
	a.preferred = id
	return nil
}

// SetAutoReorder toggles reliability-based ordering.
func (a *Aggregator) SetAutoReorder(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.autoReorder = enabled
}

// Settings reports the current ordering settings.
func (a *Aggregator) Settings() (preferred string, autoReorder bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.preferred, a.autoReorder
}

// Providers returns the configured providers in order. The set is fixed
// after construction.
func (a *Aggregator) Providers() []provider.RatesProvider {
	out := make([]provider.RatesProvider, len(a.providers))
	copy(out, a.providers)
	return out
}

// cacheKey is the canonical request signature: sorted distinct symbols.
func cacheKey(assets, currencies []string) string {
	return strings.Join(assets, ",") + ":" + strings.Join(currencies, ",")
}
