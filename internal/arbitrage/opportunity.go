// Package arbitrage evaluates rate tables and venue price matrices for
// profitable cycles and spreads. Detection is pure computation: it never
// fetches, caches or mutates its inputs.
package arbitrage

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"arbscan/internal/market"
)

// Mode selects a detection strategy.
type Mode string

const (
	ModeTriangular    Mode = "triangular"
	ModeCrossExchange Mode = "cross_exchange"
)

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeTriangular:
		return ModeTriangular, nil
	case ModeCrossExchange:
		return ModeCrossExchange, nil
	default:
		return "", fmt.Errorf("unknown detection mode %q: %w", s, market.ErrInvalidInput)
	}
}

// Opportunity is one detected arbitrage opportunity. The implementation set
// is closed: Triangular and CrossExchange are the only two.
type Opportunity interface {
	ProfitPercent() decimal.Decimal
	isOpportunity()
}

// Leg is one conversion step inside a triangular cycle.
type Leg struct {
	From string          `json:"from"`
	To   string          `json:"to"`
	Rate decimal.Decimal `json:"rate"`
}

// Triangular is a three-leg conversion cycle that returns to its starting
// asset with a multiplicative factor above the threshold.
type Triangular struct {
	Cycle       [3]string       `json:"cycle"`
	Legs        [3]Leg          `json:"legs"`
	StartAmount decimal.Decimal `json:"start_amount"`
	FinalAmount decimal.Decimal `json:"final_amount"`
	ProfitPct   decimal.Decimal `json:"profit_pct"`
}

func (o Triangular) ProfitPercent() decimal.Decimal { return o.ProfitPct }
func (Triangular) isOpportunity()                   {}

// CrossExchange is a buy-low/sell-high spread between two venues quoting the
// same asset, trading fees included.
type CrossExchange struct {
	Asset     string          `json:"asset"`
	BuyVenue  string          `json:"buy_venue"`
	SellVenue string          `json:"sell_venue"`
	BuyPrice  decimal.Decimal `json:"buy_price"`
	SellPrice decimal.Decimal `json:"sell_price"`
	ProfitPct decimal.Decimal `json:"profit_pct"`
}

func (o CrossExchange) ProfitPercent() decimal.Decimal { return o.ProfitPct }
func (CrossExchange) isOpportunity()                   {}

// sortByProfit orders opportunities by profit descending; the stable sort
// keeps discovery order between equal profits.
func sortByProfit[T Opportunity](opps []T) {
	sort.SliceStable(opps, func(i, j int) bool {
		return opps[i].ProfitPercent().GreaterThan(opps[j].ProfitPercent())
	})
}
