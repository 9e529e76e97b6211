package market

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNewQuote(t *testing.T) {
	fetchedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		asset    string
		currency string
		price    decimal.Decimal
		wantErr  bool
	}{
		{name: "valid", asset: "BTC", currency: "USD", price: decimal.RequireFromString("67000.5")},
		{name: "normalizes case and spaces", asset: " btc ", currency: "usd", price: decimal.NewFromInt(1)},
		{name: "empty asset", asset: "", currency: "USD", price: decimal.NewFromInt(1), wantErr: true},
		{name: "empty currency", asset: "BTC", currency: "  ", price: decimal.NewFromInt(1), wantErr: true},
		{name: "zero price", asset: "BTC", currency: "USD", price: decimal.Zero, wantErr: true},
		{name: "negative price", asset: "BTC", currency: "USD", price: decimal.NewFromInt(-5), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := NewQuote(tt.asset, tt.currency, tt.price, "test", fetchedAt)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got quote %+v", q)
				}
				if !errors.Is(err, ErrInvalidInput) {
					t.Errorf("error %v does not wrap ErrInvalidInput", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if q.Asset != "BTC" || q.Currency != "USD" {
				t.Errorf("symbols not normalized: %s/%s", q.Asset, q.Currency)
			}
			if !q.FetchedAt.Equal(fetchedAt) {
				t.Errorf("fetchedAt = %v, want %v", q.FetchedAt, fetchedAt)
			}
			if q.Derived {
				t.Error("primary quote marked derived")
			}
		})
	}
}

func TestNewQuoteDefaultsFetchedAt(t *testing.T) {
	q, err := NewQuote("ETH", "EUR", decimal.NewFromInt(3000), "test", time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.FetchedAt.IsZero() {
		t.Error("zero fetchedAt was not defaulted")
	}
}

func TestQuotePair(t *testing.T) {
	q, _ := NewQuote("SOL", "USD", decimal.NewFromInt(150), "test", time.Time{})
	if got := q.Pair(); got != "SOL/USD" {
		t.Errorf("Pair() = %q, want SOL/USD", got)
	}
}
