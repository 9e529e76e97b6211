package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"arbscan/internal/aggregator"
	"arbscan/internal/arbitrage"
	"arbscan/internal/config"
	"arbscan/internal/market"
	"arbscan/internal/repository"
)

// mockScanRepo lets each test supply only the repository calls it expects.
type mockScanRepo struct {
	createScanFunc       func(ctx context.Context, assets, modes, id string) (string, error)
	markRunningFunc      func(ctx context.Context, id string) error
	markSuccessFunc      func(ctx context.Context, id, result string) error
	markFailedFunc       func(ctx context.Context, id, errorMsg string) error
	getByIDFunc          func(ctx context.Context, id string) (*repository.Scan, error)
	getLatestSuccessFunc func(ctx context.Context) (*repository.Scan, error)
}

func (m *mockScanRepo) CreateScan(ctx context.Context, assets, modes, id string) (string, error) {
	return m.createScanFunc(ctx, assets, modes, id)
}

func (m *mockScanRepo) MarkRunning(ctx context.Context, id string) error {
	return m.markRunningFunc(ctx, id)
}

func (m *mockScanRepo) MarkSuccess(ctx context.Context, id, result string) error {
	return m.markSuccessFunc(ctx, id, result)
}

func (m *mockScanRepo) MarkFailed(ctx context.Context, id, errorMsg string) error {
	return m.markFailedFunc(ctx, id, errorMsg)
}

func (m *mockScanRepo) GetByID(ctx context.Context, id string) (*repository.Scan, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockScanRepo) GetLatestSuccess(ctx context.Context) (*repository.Scan, error) {
	return m.getLatestSuccessFunc(ctx)
}

// Mock rate source
type mockRateSource struct {
	getRatesFunc func(ctx context.Context, assets, currencies []string, forceRefresh bool) (*market.RateTable, error)
	states       []aggregator.ProviderState
	lastUsed     string
	preferred    string
	autoReorder  bool
}

func (m *mockRateSource) GetRates(ctx context.Context, assets, currencies []string, forceRefresh bool) (*market.RateTable, error) {
	return m.getRatesFunc(ctx, assets, currencies, forceRefresh)
}

func (m *mockRateSource) States() []aggregator.ProviderState { return m.states }
func (m *mockRateSource) LastUsed() string                   { return m.lastUsed }

func (m *mockRateSource) SetPreferredProvider(id string) error {
	m.preferred = id
	return nil
}

func (m *mockRateSource) SetAutoReorder(enabled bool) { m.autoReorder = enabled }

func (m *mockRateSource) Settings() (string, bool) { return m.preferred, m.autoReorder }

// Mock enqueuer
type mockEnqueuer struct {
	enqueueFunc func(ctx context.Context, payload RunScanPayload) error
}

func (m *mockEnqueuer) EnqueueScanTask(ctx context.Context, payload RunScanPayload) error {
	return m.enqueueFunc(ctx, payload)
}

// Stub venue provider
type stubVenueProvider struct {
	id    string
	table *market.RateTable
	err   error
}

func (p *stubVenueProvider) ID() string { return p.id }

func (p *stubVenueProvider) FetchRates(ctx context.Context, assets, currencies []string) (*market.RateTable, error) {
	return p.table, p.err
}

func testCfg() *config.Config {
	return &config.Config{
		Arbitrage: config.ArbitrageConfig{MinProfitPct: 1.0, StartAmount: 1000, PivotCurrency: "USD"},
		Worker:    config.WorkerConfig{Concurrency: 1, MaxRetry: 3, TimeoutSec: 30},
		Cache:     config.CacheConfig{LatestScanTTLSec: 300},
	}
}

func mustTable(t *testing.T, rates map[string]string) *market.RateTable {
	t.Helper()
	table := market.NewRateTable()
	for pair, rate := range rates {
		from, to, ok := strings.Cut(pair, "/")
		if !ok {
			t.Fatalf("bad pair %q", pair)
		}
		q, err := market.NewQuote(from, to, decimal.RequireFromString(rate), "test", time.Now())
		if err != nil {
			t.Fatalf("quote %s: %v", pair, err)
		}
		if err := table.Add(q); err != nil {
			t.Fatalf("add %s: %v", pair, err)
		}
	}
	return table
}

func TestIsValidSymbolCode(t *testing.T) {
	tests := []struct {
		code  string
		valid bool
	}{
		{"BTC", true},
		{"USDT", true},
		{"AVAX", true},
		{"btc", true},     // should accept lowercase and convert
		{"B", false},      // too short
		{"LONGER", false}, // too long
		{"BT1", false},    // contains number
		{"BT$", false},    // contains special char
		{"", false},       // empty
	}

	for _, tc := range tests {
		t.Run(tc.code, func(t *testing.T) {
			result := IsValidSymbolCode(tc.code)
			if result != tc.valid {
				t.Errorf("IsValidSymbolCode(%q) = %v, want %v", tc.code, result, tc.valid)
			}
		})
	}
}

func TestParseSymbolList(t *testing.T) {
	tests := []struct {
		name    string
		list    string
		want    []string
		wantErr error
	}{
		{"plain", "BTC,ETH,SOL", []string{"BTC", "ETH", "SOL"}, nil},
		{"spaces and case", " btc , eth ", []string{"BTC", "ETH"}, nil},
		{"skips empty entries", "BTC,,ETH,", []string{"BTC", "ETH"}, nil},
		{"bad symbol", "BTC,E!H", nil, ErrInvalidAsset},
		{"empty", "", nil, ErrInvalidAsset},
		{"only commas", ",,,", nil, ErrInvalidAsset},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseSymbolList(tc.list)
			if err != tc.wantErr {
				t.Fatalf("ParseSymbolList(%q) error = %v, want %v", tc.list, err, tc.wantErr)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("ParseSymbolList(%q) = %v, want %v", tc.list, got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("ParseSymbolList(%q)[%d] = %q, want %q", tc.list, i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestRequestScan_Validation(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	sugar := logger.Sugar()
	v := NewValidator()
	engine := arbitrage.NewEngine(1.0, 1000)

	tests := []struct {
		name    string
		assets  []string
		errType error
	}{
		{"empty", nil, ErrInvalidAsset},
		{"blank entries", []string{"", "  "}, ErrInvalidAsset},
		{"unsupported asset", []string{"BTC", "WOOF"}, ErrUnsupportedAsset},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := &mockScanRepo{}
			// No enqueuer needed for validation errors
			svc := NewScanService(repo, nil, engine, nil, v, nil, nil, sugar, testCfg())

			_, _, err := svc.RequestScan(context.Background(), tc.assets, nil)
			if err != tc.errType {
				t.Errorf("Expected error %v, got %v", tc.errType, err)
			}
		})
	}
}

func TestRequestScan_EnqueuesNewScan(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	sugar := logger.Sugar()
	v := NewValidator()
	engine := arbitrage.NewEngine(1.0, 1000)

	repo := &mockScanRepo{
		createScanFunc: func(ctx context.Context, assets, modes, id string) (string, error) {
			return id, nil
		},
	}
	var enqueued *RunScanPayload
	enq := &mockEnqueuer{
		enqueueFunc: func(ctx context.Context, payload RunScanPayload) error {
			enqueued = &payload
			return nil
		},
	}

	svc := NewScanService(repo, nil, engine, nil, v, enq, nil, sugar, testCfg())

	id, status, err := svc.RequestScan(context.Background(), []string{"BTC", "ETH"}, []arbitrage.Mode{arbitrage.ModeTriangular})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if status != string(repository.StatusPending) {
		t.Errorf("Expected status PENDING, got %s", status)
	}
	if enqueued == nil {
		t.Fatal("Expected a task to be enqueued")
	}
	if enqueued.ScanID != id {
		t.Errorf("Payload scan id %s does not match returned id %s", enqueued.ScanID, id)
	}
	if len(enqueued.Modes) != 1 || enqueued.Modes[0] != "triangular" {
		t.Errorf("Unexpected payload modes %v", enqueued.Modes)
	}
}

func TestRequestScan_EnqueueFailure(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	sugar := logger.Sugar()
	v := NewValidator()
	engine := arbitrage.NewEngine(1.0, 1000)

	var failedReason string
	repo := &mockScanRepo{
		createScanFunc: func(ctx context.Context, assets, modes, id string) (string, error) {
			return id, nil
		},
		markFailedFunc: func(ctx context.Context, id, errorMsg string) error {
			failedReason = errorMsg
			return nil
		},
	}
	enq := &mockEnqueuer{
		enqueueFunc: func(ctx context.Context, payload RunScanPayload) error {
			return errors.New("redis down")
		},
	}

	svc := NewScanService(repo, nil, engine, nil, v, enq, nil, sugar, testCfg())

	_, _, err := svc.RequestScan(context.Background(), []string{"BTC"}, nil)
	if err != ErrInternalQueue {
		t.Fatalf("Expected ErrInternalQueue, got %v", err)
	}
	if failedReason != "enqueue error" {
		t.Errorf("Expected the scan marked FAILED with enqueue error, got %q", failedReason)
	}
}

func TestRequestScan_DedupReturnsExistingScan(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	sugar := logger.Sugar()
	v := NewValidator()
	engine := arbitrage.NewEngine(1.0, 1000)

	var gotAssets, gotModes string
	repo := &mockScanRepo{
		createScanFunc: func(ctx context.Context, assets, modes, id string) (string, error) {
			gotAssets, gotModes = assets, modes
			return "11111111-1111-1111-1111-111111111111", nil
		},
	}

	// The nil enqueuer would panic if the dedup path tried to enqueue.
	svc := NewScanService(repo, nil, engine, nil, v, nil, nil, sugar, testCfg())

	id, status, err := svc.RequestScan(context.Background(), []string{"eth", "BTC", "btc"}, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if id != "11111111-1111-1111-1111-111111111111" {
		t.Errorf("Expected existing scan ID, got %s", id)
	}
	if status != string(repository.StatusPending) {
		t.Errorf("Expected status PENDING, got %s", status)
	}
	if gotAssets != "BTC,ETH" {
		t.Errorf("Expected canonical asset key BTC,ETH, got %s", gotAssets)
	}
	if gotModes != "cross_exchange,triangular" {
		t.Errorf("Expected default mode key, got %s", gotModes)
	}
}

func TestGetScanResult_InvalidUUID(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	sugar := logger.Sugar()
	v := NewValidator()

	svc := NewScanService(nil, nil, nil, nil, v, nil, nil, sugar, testCfg())

	_, err := svc.GetScanResult(context.Background(), "not-a-uuid")
	if err != ErrInvalidScanID {
		t.Errorf("Expected ErrInvalidScanID, got %v", err)
	}
}

func TestGetScanResult_NotFound(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	sugar := logger.Sugar()
	v := NewValidator()

	repo := &mockScanRepo{
		getByIDFunc: func(ctx context.Context, id string) (*repository.Scan, error) {
			return nil, nil
		},
	}
	svc := NewScanService(repo, nil, nil, nil, v, nil, nil, sugar, testCfg())

	_, err := svc.GetScanResult(context.Background(), "22222222-2222-2222-2222-222222222222")
	if err != ErrNotFound {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestGetScanResult_SuccessMapping(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	sugar := logger.Sugar()
	v := NewValidator()

	resultJSON := `{"triangular":[{"cycle":["BTC","ETH","SOL"],"legs":[],"start_amount":"1000","final_amount":"1080","profit_pct":"8"}],"generated_at":"2026-02-10T12:00:00Z"}`
	updated := time.Date(2026, 2, 10, 12, 0, 1, 0, time.UTC)
	repo := &mockScanRepo{
		getByIDFunc: func(ctx context.Context, id string) (*repository.Scan, error) {
			return &repository.Scan{
				ID:          id,
				Assets:      "BTC,ETH,SOL",
				Modes:       "triangular",
				Status:      repository.StatusSuccess,
				Result:      &resultJSON,
				RequestedAt: updated.Add(-time.Minute),
				UpdatedAt:   &updated,
			}, nil
		},
	}
	svc := NewScanService(repo, nil, nil, nil, v, nil, nil, sugar, testCfg())

	st, err := svc.GetScanResult(context.Background(), "33333333-3333-3333-3333-333333333333")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if st.Status != string(repository.StatusSuccess) {
		t.Errorf("Expected status SUCCESS, got %s", st.Status)
	}
	if len(st.Assets) != 3 || st.Assets[0] != "BTC" {
		t.Errorf("Unexpected assets %v", st.Assets)
	}
	if len(st.Modes) != 1 || st.Modes[0] != "triangular" {
		t.Errorf("Unexpected modes %v", st.Modes)
	}
	if st.Result == nil || len(st.Result.Triangular) != 1 {
		t.Fatalf("Expected parsed result with one opportunity, got %+v", st.Result)
	}
	if !st.Result.Triangular[0].ProfitPct.Equal(decimal.RequireFromString("8")) {
		t.Errorf("Unexpected profit %s", st.Result.Triangular[0].ProfitPct)
	}
	if st.UpdatedAt == nil || *st.UpdatedAt != updated.Format(time.RFC3339) {
		t.Errorf("Unexpected updated_at %v", st.UpdatedAt)
	}
}

func TestProcessScan_TriangularSuccess(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	sugar := logger.Sugar()
	v := NewValidator()
	engine := arbitrage.NewEngine(1.0, 1000)

	table := mustTable(t, map[string]string{
		"BTC/ETH": "2.0",
		"ETH/SOL": "3.0",
		"SOL/BTC": "0.18",
	})
	rates := &mockRateSource{
		getRatesFunc: func(ctx context.Context, assets, currencies []string, forceRefresh bool) (*market.RateTable, error) {
			if len(currencies) != 4 || currencies[3] != "USD" {
				t.Errorf("Expected asset cross quotes plus pivot, got %v", currencies)
			}
			return table, nil
		},
	}

	ranMarked := false
	var stored string
	repo := &mockScanRepo{
		markRunningFunc: func(ctx context.Context, id string) error {
			ranMarked = true
			return nil
		},
		markSuccessFunc: func(ctx context.Context, id, result string) error {
			stored = result
			return nil
		},
	}

	svc := NewScanService(repo, rates, engine, nil, v, nil, nil, sugar, testCfg())

	err := svc.ProcessScan(context.Background(), "test-id", []string{"BTC", "ETH", "SOL"}, []arbitrage.Mode{arbitrage.ModeTriangular})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !ranMarked {
		t.Error("Expected MarkRunning to be called")
	}

	var res ScanResult
	if err := json.Unmarshal([]byte(stored), &res); err != nil {
		t.Fatalf("Stored result is not valid JSON: %v", err)
	}
	if len(res.Triangular) != 1 {
		t.Fatalf("Expected one triangular opportunity, got %d", len(res.Triangular))
	}
	if !res.Triangular[0].ProfitPct.Equal(decimal.RequireFromString("8")) {
		t.Errorf("Expected profit 8, got %s", res.Triangular[0].ProfitPct)
	}
	if res.GeneratedAt.IsZero() {
		t.Error("Expected generated_at to be set")
	}
}

func TestProcessScan_FetchFailure(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	sugar := logger.Sugar()
	v := NewValidator()
	engine := arbitrage.NewEngine(1.0, 1000)

	fetchErr := &aggregator.AggregationError{Errs: []error{errors.New("provider down")}}
	rates := &mockRateSource{
		getRatesFunc: func(ctx context.Context, assets, currencies []string, forceRefresh bool) (*market.RateTable, error) {
			return nil, fetchErr
		},
	}

	var failedMsg string
	repo := &mockScanRepo{
		markRunningFunc: func(ctx context.Context, id string) error { return nil },
		markFailedFunc: func(ctx context.Context, id, errorMsg string) error {
			failedMsg = errorMsg
			return nil
		},
	}

	svc := NewScanService(repo, rates, engine, nil, v, nil, nil, sugar, testCfg())

	err := svc.ProcessScan(context.Background(), "test-id", []string{"BTC", "ETH", "SOL"}, []arbitrage.Mode{arbitrage.ModeTriangular})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if failedMsg == "" {
		t.Error("Expected the scan to be marked FAILED with a message")
	}
}

func TestProcessScan_CrossExchange(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	sugar := logger.Sugar()
	v := NewValidator()
	engine := arbitrage.NewEngine(1.0, 1000)

	venues := []Venue{
		{
			Provider: &stubVenueProvider{id: "alpha", table: mustTable(t, map[string]string{"BTC/USD": "100"})},
			Fee:      decimal.RequireFromString("0.001"),
		},
		{
			Provider: &stubVenueProvider{id: "beta", table: mustTable(t, map[string]string{"BTC/USD": "103"})},
			Fee:      decimal.RequireFromString("0.002"),
		},
	}

	var stored string
	repo := &mockScanRepo{
		markRunningFunc: func(ctx context.Context, id string) error { return nil },
		markSuccessFunc: func(ctx context.Context, id, result string) error {
			stored = result
			return nil
		},
	}

	svc := NewScanService(repo, nil, engine, venues, v, nil, nil, sugar, testCfg())

	err := svc.ProcessScan(context.Background(), "test-id", []string{"BTC"}, []arbitrage.Mode{arbitrage.ModeCrossExchange})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var res ScanResult
	if err := json.Unmarshal([]byte(stored), &res); err != nil {
		t.Fatalf("Stored result is not valid JSON: %v", err)
	}
	if len(res.CrossExchange) != 1 {
		t.Fatalf("Expected one spread above threshold, got %d", len(res.CrossExchange))
	}
	opp := res.CrossExchange[0]
	if opp.BuyVenue != "alpha" || opp.SellVenue != "beta" {
		t.Errorf("Expected buy alpha sell beta, got %s -> %s", opp.BuyVenue, opp.SellVenue)
	}
	if !opp.ProfitPct.Equal(decimal.RequireFromString("2.691206")) {
		t.Errorf("Expected profit 2.691206, got %s", opp.ProfitPct)
	}
}

func TestScanVenues_NoVenueData(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	sugar := logger.Sugar()
	v := NewValidator()
	engine := arbitrage.NewEngine(1.0, 1000)

	venues := []Venue{
		{Provider: &stubVenueProvider{id: "alpha", err: errors.New("boom")}},
		{Provider: &stubVenueProvider{id: "beta", err: errors.New("boom")}},
	}
	svc := NewScanService(nil, nil, engine, venues, v, nil, nil, sugar, testCfg())

	_, err := svc.ScanVenues(context.Background(), "BTC", nil)
	if err != ErrNoVenueData {
		t.Errorf("Expected ErrNoVenueData, got %v", err)
	}
}

func TestUpdateSettings(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	sugar := logger.Sugar()
	v := NewValidator()
	engine := arbitrage.NewEngine(1.0, 1000)
	rates := &mockRateSource{}

	svc := NewScanService(nil, rates, engine, nil, v, nil, nil, sugar, testCfg())

	minProfit := 2.5
	preferred := "coinbase"
	autoReorder := true
	st, err := svc.UpdateSettings(SettingsUpdate{
		MinProfitPct:      &minProfit,
		PreferredProvider: &preferred,
		AutoReorder:       &autoReorder,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if st.MinProfitPct != 2.5 || st.PreferredProvider != "coinbase" || !st.AutoReorder {
		t.Errorf("Unexpected settings %+v", st)
	}

	bad := math.NaN()
	if _, err := svc.UpdateSettings(SettingsUpdate{MinProfitPct: &bad}); !errors.Is(err, market.ErrInvalidInput) {
		t.Errorf("Expected invalid input error for NaN, got %v", err)
	}

	// The failed update must not have clobbered the previous value.
	if got := svc.GetSettings().MinProfitPct; got != 2.5 {
		t.Errorf("Expected min profit to stay 2.5, got %v", got)
	}
}

func TestGetLatestScan_NotFound(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	sugar := logger.Sugar()
	v := NewValidator()

	repo := &mockScanRepo{
		getLatestSuccessFunc: func(ctx context.Context) (*repository.Scan, error) {
			return nil, nil
		},
	}
	svc := NewScanService(repo, nil, nil, nil, v, nil, nil, sugar, testCfg())

	_, err := svc.GetLatestScan(context.Background())
	if err != ErrNotFound {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
