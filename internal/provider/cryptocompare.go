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

const defaultCryptoCompareBaseURL = "https://min-api.cryptocompare.com"

// CryptoCompareProvider fetches spot prices from the CryptoCompare
// pricemulti endpoint, which returns all requested assets and currencies in
// one call. The API key is optional.
type CryptoCompareProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewCryptoCompareProvider(baseURL, apiKey string, timeout time.Duration) *CryptoCompareProvider {
	if baseURL == "" {
		baseURL = defaultCryptoCompareBaseURL
	}
	return &CryptoCompareProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *CryptoCompareProvider) ID() string { return "cryptocompare" }

// CryptoCompare reports request errors in-band with HTTP 200.
type cryptoCompareError struct {
	Response string `json:"Response"`
	Message  string `json:"Message"`
}

func (p *CryptoCompareProvider) FetchRates(ctx context.Context, assets, currencies []string) (*market.RateTable, error) {
	reqURL := fmt.Sprintf("%s/data/pricemulti?fsyms=%s&tsyms=%s",
		p.baseURL,
		url.QueryEscape(strings.Join(assets, ",")),
		url.QueryEscape(strings.Join(currencies, ",")),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create cryptocompare request: %w", err)
	}
	if p.apiKey != "" {
		req.Header.Set("authorization", "Apikey "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cryptocompare request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("cryptocompare returned status %d: %s", resp.StatusCode, string(body))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read cryptocompare response: %w", err)
	}

	var apiErr cryptoCompareError
	if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Response == "Error" {
		return nil, fmt.Errorf("cryptocompare rejected the request: %s", apiErr.Message)
	}

	var prices map[string]map[string]decimal.Decimal
	if err := json.Unmarshal(raw, &prices); err != nil {
		return nil, fmt.Errorf("decode cryptocompare response: %w", err)
	}

	fetchedAt := time.Now().UTC()
	table := market.NewRateTable()
	for _, asset := range assets {
		byCurrency, ok := prices[strings.ToUpper(asset)]
		if !ok {
			continue // missing assets are partial data, not a failure
		}
		for _, currency := range currencies {
			price, ok := byCurrency[strings.ToUpper(currency)]
			if !ok {
				continue
			}
			quote, err := market.NewQuote(asset, currency, price, p.ID(), fetchedAt)
			if err != nil {
				continue // a non-positive upstream value counts as absent
			}
			if err := table.Add(quote); err != nil {
				return nil, fmt.Errorf("cryptocompare produced a bad quote: %w", err)
			}
		}
	}
	if table.Len() == 0 {
		return nil, fmt.Errorf("no rates for %s in cryptocompare response", strings.Join(assets, ","))
	}
	return table, nil
}
