package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"arbscan/internal/market"
)

const defaultCoinGeckoBaseURL = "https://api.coingecko.com/api/v3"

// coinGeckoIDs maps ticker symbols to CoinGecko asset ids. Symbols without a
// mapping are skipped, which surfaces as partial data.
var coinGeckoIDs = map[string]string{
	"BTC":  "bitcoin",
	"ETH":  "ethereum",
	"SOL":  "solana",
	"XRP":  "ripple",
	"ADA":  "cardano",
	"DOGE": "dogecoin",
	"LTC":  "litecoin",
	"DOT":  "polkadot",
	"AVAX": "avalanche-2",
	"LINK": "chainlink",
	"BNB":  "binancecoin",
	"TRX":  "tron",
	"XLM":  "stellar",
	"UNI":  "uniswap",
	"ATOM": "cosmos",
	"USDT": "tether",
}

// CoinGeckoProvider fetches spot prices from the CoinGecko simple/price
// endpoint. The demo API key is optional.
type CoinGeckoProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewCoinGeckoProvider(baseURL, apiKey string, timeout time.Duration) *CoinGeckoProvider {
	if baseURL == "" {
		baseURL = defaultCoinGeckoBaseURL
	}
	return &CoinGeckoProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *CoinGeckoProvider) ID() string { return "coingecko" }

func (p *CoinGeckoProvider) FetchRates(ctx context.Context, assets, currencies []string) (*market.RateTable, error) {
	ids := make([]string, 0, len(assets))
	for _, asset := range assets {
		if id, ok := coinGeckoIDs[strings.ToUpper(asset)]; ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("coingecko knows none of the assets %s", strings.Join(assets, ","))
	}

	vs := make([]string, 0, len(currencies))
	for _, currency := range currencies {
		vs = append(vs, strings.ToLower(currency))
	}

	reqURL := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=%s",
		p.baseURL,
		url.QueryEscape(strings.Join(ids, ",")),
		url.QueryEscape(strings.Join(vs, ",")),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create coingecko request: %w", err)
	}
	if p.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("coingecko request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("coingecko returned status %d: %s", resp.StatusCode, string(body))
	}

	var prices map[string]map[string]decimal.Decimal
	if err := json.NewDecoder(resp.Body).Decode(&prices); err != nil {
		return nil, fmt.Errorf("decode coingecko response: %w", err)
	}

	fetchedAt := time.Now().UTC()
	table := market.NewRateTable()
	for _, asset := range assets {
		id, ok := coinGeckoIDs[strings.ToUpper(asset)]
		if !ok {
			continue
		}
		byCurrency, ok := prices[id]
		if !ok {
			continue
		}
		for _, currency := range currencies {
			price, ok := byCurrency[strings.ToLower(currency)]
			if !ok {
				continue
			}
			quote, err := market.NewQuote(asset, currency, price, p.ID(), fetchedAt)
			if err != nil {
				continue
			}
			if err := table.Add(quote); err != nil {
				return nil, fmt.Errorf("coingecko produced a bad quote: %w", err)
			}
		}
	}
	if table.Len() == 0 {
		return nil, fmt.Errorf("no rates for %s in coingecko response", strings.Join(assets, ","))
	}
	return table, nil
}
