package market

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func mustQuote(t *testing.T, asset, currency, price, source string, at time.Time) Quote {
	t.Helper()
	q, err := NewQuote(asset, currency, decimal.RequireFromString(price), source, at)
	if err != nil {
		t.Fatalf("building quote %s/%s: %v", asset, currency, err)
	}
	return q
}

func TestRateTableAddAndGet(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	table := NewRateTable()

	if err := table.Add(mustQuote(t, "BTC", "USD", "60000", "cryptocompare", at)); err != nil {
		t.Fatalf("add: %v", err)
	}
	q, ok := table.Get("btc", "usd")
	if !ok {
		t.Fatal("direct quote not found")
	}
	if !q.Price.Equal(decimal.NewFromInt(60000)) {
		t.Errorf("price = %s, want 60000", q.Price)
	}

	// replacing the same pair keeps the table key unique
	if err := table.Add(mustQuote(t, "BTC", "USD", "61000", "coinbase", at.Add(time.Minute))); err != nil {
		t.Fatalf("replace: %v", err)
	}
	q, _ = table.Get("BTC", "USD")
	if !q.Price.Equal(decimal.NewFromInt(61000)) || q.Source != "coinbase" {
		t.Errorf("replacement not applied: %s from %s", q.Price, q.Source)
	}
	if table.Len() != 1 {
		t.Errorf("Len() = %d, want 1", table.Len())
	}
}

func TestRateTableAddRejectsDerived(t *testing.T) {
	table := NewRateTable()
	err := table.Add(Quote{Asset: "BTC", Currency: "ETH", Price: decimal.NewFromInt(20), Derived: true})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRateTableCrossRate(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	table := NewRateTable()
	if err := table.Add(mustQuote(t, "BTC", "USD", "60000", "cryptocompare", at)); err != nil {
		t.Fatal(err)
	}
	if err := table.Add(mustQuote(t, "ETH", "USD", "3000", "cryptocompare", at.Add(-time.Minute))); err != nil {
		t.Fatal(err)
	}

	q, ok := table.Rate("BTC", "ETH")
	if !ok {
		t.Fatal("cross rate not derived")
	}
	if !q.Price.Equal(decimal.NewFromInt(20)) {
		t.Errorf("BTC->ETH = %s, want 20", q.Price)
	}
	if !q.Derived {
		t.Error("cross rate not marked derived")
	}
	if !q.FetchedAt.Equal(at.Add(-time.Minute)) {
		t.Errorf("derived fetchedAt should be the older leg, got %v", q.FetchedAt)
	}

	// derived rates are never persisted back
	if _, ok := table.Get("BTC", "ETH"); ok {
		t.Error("derived rate was stored as primary")
	}
	if table.Len() != 2 {
		t.Errorf("Len() = %d after derivation, want 2", table.Len())
	}
}

func TestRateTableRatePrefersDirect(t *testing.T) {
	at := time.Now().UTC()
	table := NewRateTable()
	for _, q := range []Quote{
		mustQuote(t, "BTC", "ETH", "21", "coinbase", at),
		mustQuote(t, "BTC", "USD", "60000", "coinbase", at),
		mustQuote(t, "ETH", "USD", "3000", "coinbase", at),
	} {
		if err := table.Add(q); err != nil {
			t.Fatal(err)
		}
	}
	q, ok := table.Rate("BTC", "ETH")
	if !ok || q.Derived {
		t.Fatalf("direct quote not preferred: ok=%v derived=%v", ok, q.Derived)
	}
	if !q.Price.Equal(decimal.NewFromInt(21)) {
		t.Errorf("rate = %s, want direct 21", q.Price)
	}
}

func TestRateTableCrossRateMissingLeg(t *testing.T) {
	table := NewRateTable()
	if err := table.Add(mustQuote(t, "BTC", "USD", "60000", "x", time.Now())); err != nil {
		t.Fatal(err)
	}
	if _, ok := table.Rate("BTC", "ETH"); ok {
		t.Error("derived a rate with a missing leg")
	}
	if _, ok := table.Rate("XRP", "BTC"); ok {
		t.Error("derived a rate for an absent base")
	}
}

func TestRateTableCrossRateStaleLeg(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := base.Add(10 * time.Minute)
	table := NewRateTable(WithFreshness(5*time.Minute), WithClock(func() time.Time { return now }))

	if err := table.Add(mustQuote(t, "BTC", "USD", "60000", "x", now.Add(-time.Minute))); err != nil {
		t.Fatal(err)
	}
	if err := table.Add(mustQuote(t, "ETH", "USD", "3000", "x", base)); err != nil { // 10m old
		t.Fatal(err)
	}

	if _, ok := table.Rate("BTC", "ETH"); ok {
		t.Error("derived a rate from a stale leg")
	}
}

func TestRateTableCrossRateDeterministicCurrency(t *testing.T) {
	at := time.Now().UTC()
	table := NewRateTable()
	for _, q := range []Quote{
		mustQuote(t, "BTC", "EUR", "50000", "x", at),
		mustQuote(t, "BTC", "USD", "60000", "x", at),
		mustQuote(t, "ETH", "EUR", "2500", "x", at),
		mustQuote(t, "ETH", "USD", "3000", "x", at),
	} {
		if err := table.Add(q); err != nil {
			t.Fatal(err)
		}
	}
	// EUR sorts before USD, so the EUR legs must be chosen
	q, ok := table.Rate("BTC", "ETH")
	if !ok {
		t.Fatal("no cross rate")
	}
	if !q.Price.Equal(decimal.NewFromInt(20)) {
		t.Errorf("rate = %s, want 20 via EUR legs", q.Price)
	}
}

func TestRateTableJSONRoundTrip(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	table := NewRateTable()
	if err := table.Add(mustQuote(t, "BTC", "USD", "60000.25", "coinbase", at)); err != nil {
		t.Fatal(err)
	}
	if err := table.Add(mustQuote(t, "ETH", "EUR", "2800.1", "coinbase", at)); err != nil {
		t.Fatal(err)
	}

	data, err := json.Marshal(table)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var restored RateTable
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if restored.Len() != 2 {
		t.Fatalf("restored Len() = %d, want 2", restored.Len())
	}
	q, ok := restored.Get("BTC", "USD")
	if !ok || !q.Price.Equal(decimal.RequireFromString("60000.25")) {
		t.Errorf("restored BTC/USD = %+v", q)
	}
}

func TestRateTableQuotesSorted(t *testing.T) {
	at := time.Now().UTC()
	table := NewRateTable()
	for _, q := range []Quote{
		mustQuote(t, "ETH", "USD", "3000", "x", at),
		mustQuote(t, "BTC", "USD", "60000", "x", at),
		mustQuote(t, "BTC", "EUR", "50000", "x", at),
	} {
		if err := table.Add(q); err != nil {
			t.Fatal(err)
		}
	}
	quotes := table.Quotes()
	want := []string{"BTC/EUR", "BTC/USD", "ETH/USD"}
	for i, pair := range want {
		if quotes[i].Pair() != pair {
			t.Errorf("quotes[%d] = %s, want %s", i, quotes[i].Pair(), pair)
		}
	}
	if got := table.Assets(); len(got) != 2 || got[0] != "BTC" || got[1] != "ETH" {
		t.Errorf("Assets() = %v", got)
	}
}
