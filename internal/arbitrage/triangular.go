package arbitrage

import (
	"fmt"

	"github.com/shopspring/decimal"

	"arbscan/internal/market"
)

// FindTriangular evaluates three-asset conversion cycles over the table and
// returns those whose profit clears the threshold, sorted by profit
// descending. Fewer than three distinct assets yield an empty result, not an
// error. Rotations of one cycle are deduplicated by fixing the
// lexicographically smallest asset as the start; the two traversal
// directions stay distinct cycles. A cycle with an unresolvable leg (no
// direct or derived rate) is skipped.
func (e *Engine) FindTriangular(table *market.RateTable, assets []string, opts ...Option) ([]Triangular, error) {
	if table == nil {
		return nil, fmt.Errorf("rate table is required: %w", market.ErrInvalidInput)
	}
	cfg := e.scanConfig(opts...)

	distinct := market.NormalizeSymbols(assets)
	if len(distinct) < 3 {
		return []Triangular{}, nil
	}

	out := []Triangular{}
	for i := 0; i < len(distinct)-2; i++ {
		for j := i + 1; j < len(distinct)-1; j++ {
			for k := j + 1; k < len(distinct); k++ {
				x, y, z := distinct[i], distinct[j], distinct[k]
				for _, cycle := range [2][3]string{{x, y, z}, {x, z, y}} {
					if opp, ok := evalCycle(table, cycle, cfg); ok {
						out = append(out, opp)
					}
				}
			}
		}
	}
	sortByProfit(out)
	return out, nil
}

func evalCycle(table *market.RateTable, cycle [3]string, cfg scanConfig) (Triangular, bool) {
	var legs [3]Leg
	factor := decimal.NewFromInt(1)
	for i := range 3 {
		from, to := cycle[i], cycle[(i+1)%3]
		q, ok := table.Rate(from, to)
		if !ok {
			return Triangular{}, false
		}
		legs[i] = Leg{From: from, To: to, Rate: q.Price}
		factor = factor.Mul(q.Price)
	}
	profitPct := factor.Sub(decimal.NewFromInt(1)).Mul(decimal.NewFromInt(100))
	if profitPct.LessThan(cfg.minProfit) {
		return Triangular{}, false
	}
	return Triangular{
		Cycle:       cycle,
		Legs:        legs,
		StartAmount: cfg.startAmount,
		FinalAmount: cfg.startAmount.Mul(factor),
		ProfitPct:   profitPct,
	}, true
}
