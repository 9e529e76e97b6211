package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"arbscan/internal/arbitrage"
	"arbscan/internal/market"
)

// GetRates fetches current prices for the given assets quoted in the given
// currencies, serving from the rate cache when fresh. An empty currency list
// falls back to the configured pivot currency.
func (s *ScanService) GetRates(ctx context.Context, assets, currencies []string, forceRefresh bool) (*market.RateTable, error) {
	assets = market.NormalizeSymbols(assets)
	if len(assets) == 0 {
		return nil, ErrInvalidAsset
	}
	currencies = market.NormalizeSymbols(currencies)
	if len(currencies) == 0 {
		currencies = []string{s.pivot}
	}

	if err := s.validateAssets(assets); err != nil {
		return nil, err
	}
	for _, c := range currencies {
		if err := s.validator.ValidateCurrency(c); err != nil {
			return nil, err
		}
	}

	return s.rates.GetRates(ctx, assets, currencies, forceRefresh)
}

// FindTriangular fetches rates for the assets and searches them for
// profitable three-leg cycles. A nil minProfit keeps the engine default.
func (s *ScanService) FindTriangular(ctx context.Context, assets []string, minProfit *float64) ([]arbitrage.Triangular, error) {
	norm := market.NormalizeSymbols(assets)
	if len(norm) == 0 {
		return nil, ErrInvalidAsset
	}
	if err := s.validateAssets(norm); err != nil {
		return nil, err
	}

	table, err := s.rates.GetRates(ctx, norm, s.triangularCurrencies(norm), false)
	if err != nil {
		return nil, err
	}
	return s.engine.FindTriangular(table, norm, profitOpts(minProfit)...)
}

// triangularCurrencies quotes every asset against the others plus the pivot,
// so cycle legs can come straight from the providers instead of being derived.
func (s *ScanService) triangularCurrencies(assets []string) []string {
	out := make([]string, 0, len(assets)+1)
	out = append(out, assets...)
	return append(out, s.pivot)
}

// ScanVenues fetches the asset's price from every configured venue and
// evaluates the pairwise spreads between them.
func (s *ScanService) ScanVenues(ctx context.Context, asset string, minProfit *float64) ([]arbitrage.CrossExchange, error) {
	asset = strings.ToUpper(strings.TrimSpace(asset))
	if asset == "" {
		return nil, ErrInvalidAsset
	}
	if err := s.validator.ValidateAsset(asset); err != nil {
		return nil, err
	}

	quotes := s.venueQuotes(ctx, []string{asset})[asset]
	if len(quotes) == 0 {
		return nil, ErrNoVenueData
	}
	return s.engine.FindCrossExchange(asset, quotes, profitOpts(minProfit)...)
}

// EvaluateCrossExchange runs spread detection over a caller-supplied venue
// matrix without touching any provider.
func (s *ScanService) EvaluateCrossExchange(asset string, venues []arbitrage.VenueQuote, minProfit *float64) ([]arbitrage.CrossExchange, error) {
	return s.engine.FindCrossExchange(asset, venues, profitOpts(minProfit)...)
}

// venueQuotes asks every venue for the given assets in the pivot currency,
// one request per venue, and groups the responses by asset. Venues that fail
// are logged and skipped so one dead exchange does not kill the scan.
func (s *ScanService) venueQuotes(ctx context.Context, assets []string) map[string][]arbitrage.VenueQuote {
	tables := make([]*market.RateTable, len(s.venues))
	var wg sync.WaitGroup
	for i, v := range s.venues {
		wg.Add(1)
		go func() {
			defer wg.Done()
			table, err := v.Provider.FetchRates(ctx, assets, []string{s.pivot})
			if err != nil {
				s.log.Warnw("Venue fetch failed", "venue", v.Provider.ID(), "error", err)
				return
			}
			tables[i] = table
		}()
	}
	wg.Wait()

	out := make(map[string][]arbitrage.VenueQuote, len(assets))
	for i, v := range s.venues {
		if tables[i] == nil {
			continue
		}
		for _, asset := range assets {
			q, ok := tables[i].Get(asset, s.pivot)
			if !ok {
				continue
			}
			out[asset] = append(out[asset], arbitrage.VenueQuote{
				Venue: v.Provider.ID(),
				Price: q.Price,
				Fee:   v.Fee,
			})
		}
	}
	return out
}

// sortSpreads orders cross-exchange results from a multi-asset scan by
// profit descending, regardless of asset.
func sortSpreads(opps []arbitrage.CrossExchange) {
	sort.SliceStable(opps, func(i, j int) bool {
		return opps[i].ProfitPct.GreaterThan(opps[j].ProfitPct)
	})
}

func profitOpts(minProfit *float64) []arbitrage.Option {
	if minProfit == nil {
		return nil
	}
	return []arbitrage.Option{arbitrage.WithMinProfit(*minProfit)}
}
