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

const defaultCoinbaseBaseURL = "https://api.coinbase.com"

// CoinbaseProvider reads the public exchange-rates endpoint, one request per
// asset. Coinbase reports rates as strings, so decimal parsing stays exact.
// A failed sub-request fails the whole fetch; a missing currency in an
// otherwise good response is partial data.
type CoinbaseProvider struct {
	baseURL string
	client  *http.Client
}

func NewCoinbaseProvider(baseURL string, timeout time.Duration) *CoinbaseProvider {
	if baseURL == "" {
		baseURL = defaultCoinbaseBaseURL
	}
	return &CoinbaseProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *CoinbaseProvider) ID() string { return "coinbase" }

type coinbaseResponse struct {
	Data struct {
		Currency string            `json:"currency"`
		Rates    map[string]string `json:"rates"`
	} `json:"data"`
}

func (p *CoinbaseProvider) FetchRates(ctx context.Context, assets, currencies []string) (*market.RateTable, error) {
	fetchedAt := time.Now().UTC()
	table := market.NewRateTable()
	for _, asset := range assets {
		rates, err := p.fetchAsset(ctx, asset)
		if err != nil {
			return nil, err
		}
		for _, currency := range currencies {
			raw, ok := rates[strings.ToUpper(currency)]
			if !ok {
				continue
			}
			price, err := decimal.NewFromString(raw)
			if err != nil {
				return nil, fmt.Errorf("coinbase rate %s/%s is not numeric: %w", asset, currency, err)
			}
			quote, err := market.NewQuote(asset, currency, price, p.ID(), fetchedAt)
			if err != nil {
				continue
			}
			if err := table.Add(quote); err != nil {
				return nil, fmt.Errorf("coinbase produced a bad quote: %w", err)
			}
		}
	}
	if table.Len() == 0 {
		return nil, fmt.Errorf("no rates for %s in coinbase response", strings.Join(assets, ","))
	}
	return table, nil
}

func (p *CoinbaseProvider) fetchAsset(ctx context.Context, asset string) (map[string]string, error) {
	reqURL := fmt.Sprintf("%s/v2/exchange-rates?currency=%s", p.baseURL, url.QueryEscape(strings.ToUpper(asset)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create coinbase request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("coinbase request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("coinbase returned status %d for %s: %s", resp.StatusCode, asset, string(body))
	}

	var payload coinbaseResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode coinbase response: %w", err)
	}
	if len(payload.Data.Rates) == 0 {
		return nil, fmt.Errorf("coinbase returned no rates for %s", asset)
	}
	return payload.Data.Rates, nil
}
