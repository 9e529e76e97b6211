// Package service implements the core business logic for arbitrage scanning.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"arbscan/internal/aggregator"
	"arbscan/internal/arbitrage"
	"arbscan/internal/config"
	"arbscan/internal/market"
	"arbscan/internal/provider"
	"arbscan/internal/repository"
)

// RateSource abstracts the price aggregator consumed by the service.
type RateSource interface {
	GetRates(ctx context.Context, assets, currencies []string, forceRefresh bool) (*market.RateTable, error)
	States() []aggregator.ProviderState
	LastUsed() string
	SetPreferredProvider(id string) error
	SetAutoReorder(enabled bool)
	Settings() (preferred string, autoReorder bool)
}

// TaskEnqueuer hands scan jobs off to the background queue.
type TaskEnqueuer interface {
	EnqueueScanTask(ctx context.Context, payload RunScanPayload) error
}

// Venue couples a price provider with the trading fee charged when the
// provider acts as an exchange venue in cross-exchange scans.
type Venue struct {
	Provider provider.RatesProvider
	Fee      decimal.Decimal
}

// ScanServiceInterface defines the operations available for arbitrage scanning.
type ScanServiceInterface interface {
	GetRates(ctx context.Context, assets, currencies []string, forceRefresh bool) (*market.RateTable, error)
	FindTriangular(ctx context.Context, assets []string, minProfit *float64) ([]arbitrage.Triangular, error)
	ScanVenues(ctx context.Context, asset string, minProfit *float64) ([]arbitrage.CrossExchange, error)
	EvaluateCrossExchange(asset string, venues []arbitrage.VenueQuote, minProfit *float64) ([]arbitrage.CrossExchange, error)
	RequestScan(ctx context.Context, assets []string, modes []arbitrage.Mode) (scanID, status string, err error)
	GetScanResult(ctx context.Context, scanID string) (*ScanStatus, error)
	GetLatestScan(ctx context.Context) (*ScanStatus, error)
	ProcessScan(ctx context.Context, scanID string, assets []string, modes []arbitrage.Mode) error
	UpdateSettings(upd SettingsUpdate) (*Settings, error)
	GetSettings() *Settings
	ProviderStates() ([]aggregator.ProviderState, string)
}

// ScanService defines business logic for arbitrage scans
type ScanService struct {
	repo      repository.ScanRepository
	rates     RateSource
	engine    *arbitrage.Engine
	venues    []Venue
	validator Validator
	enqueuer  TaskEnqueuer
	cache     *redis.Client
	log       *zap.SugaredLogger
	pivot     string
	latestTTL time.Duration
}

// NewScanService creates a new ScanService
func NewScanService(repo repository.ScanRepository, rates RateSource, engine *arbitrage.Engine, venues []Venue, validator Validator, enqueuer TaskEnqueuer, cache *redis.Client, logger *zap.SugaredLogger, cfg *config.Config) *ScanService {
	return &ScanService{
		repo:      repo,
		rates:     rates,
		engine:    engine,
		venues:    venues,
		validator: validator,
		enqueuer:  enqueuer,
		cache:     cache,
		log:       logger,
		pivot:     strings.ToUpper(cfg.Arbitrage.PivotCurrency),
		latestTTL: time.Duration(cfg.Cache.LatestScanTTLSec) * time.Second,
	}
}

func (s *ScanService) validateAssets(assets []string) error {
	for _, a := range assets {
		if err := s.validator.ValidateAsset(a); err != nil {
			return err
		}
	}
	return nil
}
