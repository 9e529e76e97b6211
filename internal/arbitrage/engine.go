package arbitrage

import (
	"fmt"
	"math"
	"sync"

	"github.com/shopspring/decimal"

	"arbscan/internal/market"
)

const (
	defaultMinProfitPct = 1.0
	defaultStartAmount  = 1000.0
)

// Engine holds the settings shared by both detection modes: the profit
// threshold and the simulated start amount. Both can change at runtime;
// per-call overrides go through options.
type Engine struct {
	mu           sync.RWMutex
	minProfitPct decimal.Decimal
	startAmount  decimal.Decimal
}

// NewEngine builds an engine, falling back to defaults for values that make
// no sense (non-finite threshold, non-positive start amount).
func NewEngine(minProfitPct, startAmount float64) *Engine {
	if math.IsNaN(minProfitPct) || math.IsInf(minProfitPct, 0) {
		minProfitPct = defaultMinProfitPct
	}
	if math.IsNaN(startAmount) || math.IsInf(startAmount, 0) || startAmount <= 0 {
		startAmount = defaultStartAmount
	}
	return &Engine{
		minProfitPct: decimal.NewFromFloat(minProfitPct),
		startAmount:  decimal.NewFromFloat(startAmount),
	}
}

// SetMinProfitPercentage changes the shared profit threshold. The value is a
// percentage; it must be finite. A negative threshold is allowed and exposes
// losing spreads.
func (e *Engine) SetMinProfitPercentage(pct float64) error {
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return fmt.Errorf("min profit percentage must be finite: %w", market.ErrInvalidInput)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.minProfitPct = decimal.NewFromFloat(pct)
	return nil
}

func (e *Engine) MinProfitPercentage() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	f, _ := e.minProfitPct.Float64()
	return f
}

type scanConfig struct {
	minProfit   decimal.Decimal
	startAmount decimal.Decimal
}

// Option overrides an engine setting for a single detection call.
type Option func(*scanConfig)

// WithMinProfit overrides the profit threshold for one call. Non-finite
// values are ignored.
func WithMinProfit(pct float64) Option {
	return func(c *scanConfig) {
		if math.IsNaN(pct) || math.IsInf(pct, 0) {
			return
		}
		c.minProfit = decimal.NewFromFloat(pct)
	}
}

// WithStartAmount overrides the simulated start amount for one call.
func WithStartAmount(amount float64) Option {
	return func(c *scanConfig) {
		if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
			return
		}
		c.startAmount = decimal.NewFromFloat(amount)
	}
}

func (e *Engine) scanConfig(opts ...Option) scanConfig {
	e.mu.RLock()
	cfg := scanConfig{minProfit: e.minProfitPct, startAmount: e.startAmount}
	e.mu.RUnlock()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
