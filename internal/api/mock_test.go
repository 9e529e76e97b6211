package api

import (
	"context"

	"arbscan/internal/aggregator"
	"arbscan/internal/arbitrage"
	"arbscan/internal/market"
	"arbscan/internal/service"
)

// mockScanService implements service.ScanServiceInterface for testing.
type mockScanService struct {
	getRatesFunc       func(ctx context.Context, assets, currencies []string, forceRefresh bool) (*market.RateTable, error)
	findTriangularFunc func(ctx context.Context, assets []string, minProfit *float64) ([]arbitrage.Triangular, error)
	scanVenuesFunc     func(ctx context.Context, asset string, minProfit *float64) ([]arbitrage.CrossExchange, error)
	evaluateFunc       func(asset string, venues []arbitrage.VenueQuote, minProfit *float64) ([]arbitrage.CrossExchange, error)
	requestScanFunc    func(ctx context.Context, assets []string, modes []arbitrage.Mode) (string, string, error)
	getScanResultFunc  func(ctx context.Context, scanID string) (*service.ScanStatus, error)
	getLatestScanFunc  func(ctx context.Context) (*service.ScanStatus, error)
	updateSettingsFunc func(upd service.SettingsUpdate) (*service.Settings, error)
	getSettingsFunc    func() *service.Settings
	providerStatesFunc func() ([]aggregator.ProviderState, string)
}

func (m *mockScanService) GetRates(ctx context.Context, assets, currencies []string, forceRefresh bool) (*market.RateTable, error) {
	return m.getRatesFunc(ctx, assets, currencies, forceRefresh)
}

func (m *mockScanService) FindTriangular(ctx context.Context, assets []string, minProfit *float64) ([]arbitrage.Triangular, error) {
	return m.findTriangularFunc(ctx, assets, minProfit)
}

func (m *mockScanService) ScanVenues(ctx context.Context, asset string, minProfit *float64) ([]arbitrage.CrossExchange, error) {
	return m.scanVenuesFunc(ctx, asset, minProfit)
}

func (m *mockScanService) EvaluateCrossExchange(asset string, venues []arbitrage.VenueQuote, minProfit *float64) ([]arbitrage.CrossExchange, error) {
	return m.evaluateFunc(asset, venues, minProfit)
}

func (m *mockScanService) RequestScan(ctx context.Context, assets []string, modes []arbitrage.Mode) (string, string, error) {
	return m.requestScanFunc(ctx, assets, modes)
}

func (m *mockScanService) GetScanResult(ctx context.Context, scanID string) (*service.ScanStatus, error) {
	return m.getScanResultFunc(ctx, scanID)
}

func (m *mockScanService) GetLatestScan(ctx context.Context) (*service.ScanStatus, error) {
	return m.getLatestScanFunc(ctx)
}

func (m *mockScanService) ProcessScan(_ context.Context, _ string, _ []string, _ []arbitrage.Mode) error {
	return nil // Not used in handler tests
}

func (m *mockScanService) UpdateSettings(upd service.SettingsUpdate) (*service.Settings, error) {
	return m.updateSettingsFunc(upd)
}

func (m *mockScanService) GetSettings() *service.Settings {
	return m.getSettingsFunc()
}

func (m *mockScanService) ProviderStates() ([]aggregator.ProviderState, string) {
	return m.providerStatesFunc()
}
