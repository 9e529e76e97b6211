package arbitrage

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"arbscan/internal/market"
)

// VenueQuote is one venue's price for an asset plus that venue's trading fee
// as a fraction (0.001 means 0.1%).
type VenueQuote struct {
	Venue string          `json:"venue"`
	Price decimal.Decimal `json:"price"`
	Fee   decimal.Decimal `json:"fee"`
}

// FindCrossExchange evaluates both directions of every venue pair quoting
// the asset and returns the spreads clearing the threshold, sorted by profit
// descending. Validation fails fast: empty or duplicate venue names,
// non-positive prices and fees outside [0,1) are invalid input, so the math
// can never produce NaN or infinities. Fewer than two venues yield an empty
// result, not an error.
func (e *Engine) FindCrossExchange(asset string, venues []VenueQuote, opts ...Option) ([]CrossExchange, error) {
	asset = strings.ToUpper(strings.TrimSpace(asset))
	if asset == "" {
		return nil, fmt.Errorf("asset is required: %w", market.ErrInvalidInput)
	}
	cfg := e.scanConfig(opts...)

	one := decimal.NewFromInt(1)
	seen := make(map[string]struct{}, len(venues))
	for _, v := range venues {
		name := strings.TrimSpace(v.Venue)
		if name == "" {
			return nil, fmt.Errorf("venue name is required: %w", market.ErrInvalidInput)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("duplicate venue %q: %w", name, market.ErrInvalidInput)
		}
		seen[name] = struct{}{}
		if !v.Price.IsPositive() {
			return nil, fmt.Errorf("venue %q: non-positive price %s: %w", name, v.Price, market.ErrInvalidInput)
		}
		if v.Fee.IsNegative() || v.Fee.GreaterThanOrEqual(one) {
			return nil, fmt.Errorf("venue %q: fee %s outside [0,1): %w", name, v.Fee, market.ErrInvalidInput)
		}
	}
	if len(venues) < 2 {
		return []CrossExchange{}, nil
	}

	out := []CrossExchange{}
	for i := 0; i < len(venues)-1; i++ {
		for j := i + 1; j < len(venues); j++ {
			for _, dir := range [2][2]VenueQuote{{venues[i], venues[j]}, {venues[j], venues[i]}} {
				if opp, ok := evalSpread(asset, dir[0], dir[1], cfg); ok {
					out = append(out, opp)
				}
			}
		}
	}
	sortByProfit(out)
	return out, nil
}

// evalSpread prices buying one unit at buy and selling it at sell:
// quantity = 1 - buyFee, proceeds = quantity * sellPrice * (1 - sellFee),
// profit = (proceeds/buyPrice - 1) * 100. Each direction is evaluated
// independently; a profitable A->B never implies anything about B->A.
func evalSpread(asset string, buy, sell VenueQuote, cfg scanConfig) (CrossExchange, bool) {
	one := decimal.NewFromInt(1)
	quantity := one.Sub(buy.Fee)
	proceeds := quantity.Mul(sell.Price).Mul(one.Sub(sell.Fee))
	profitPct := proceeds.Div(buy.Price).Sub(one).Mul(decimal.NewFromInt(100))
	if profitPct.LessThan(cfg.minProfit) {
		return CrossExchange{}, false
	}
	return CrossExchange{
		Asset:     asset,
		BuyVenue:  buy.Venue,
		SellVenue: sell.Venue,
		BuyPrice:  buy.Price,
		SellPrice: sell.Price,
		ProfitPct: profitPct,
	}, true
}
