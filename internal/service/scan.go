package service

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"arbscan/internal/arbitrage"
	"arbscan/internal/market"
	"arbscan/internal/repository"
)

// RequestScan registers an arbitrage scan and enqueues it for background
// processing. A scan already pending or running for the same assets and
// modes is reused instead of creating a duplicate.
func (s *ScanService) RequestScan(ctx context.Context, assets []string, modes []arbitrage.Mode) (scanID, status string, err error) {
	norm := market.NormalizeSymbols(assets)
	if len(norm) == 0 {
		return "", "", ErrInvalidAsset
	}
	if vErr := s.validateAssets(norm); vErr != nil {
		return "", "", vErr
	}
	modes = normalizeModes(modes)

	uid := uuid.New().String()
	id, err := s.repo.CreateScan(ctx, strings.Join(norm, ","), joinModes(modes), uid)
	if err != nil {
		s.log.Errorw("CreateScan DB error", "error", err)
		return "", "", ErrInternal
	}

	if id != uid {
		return id, string(repository.StatusPending), nil
	}

	if err := s.enqueueScanTask(ctx, id, norm, modes); err != nil {
		return "", "", err
	}

	s.log.Infow("Enqueued scan task", "scan_id", id, "assets", norm, "modes", modes)
	return id, string(repository.StatusPending), nil
}

// GetScanResult retrieves the scan record and its outcome for a given scan ID.
func (s *ScanService) GetScanResult(ctx context.Context, scanID string) (*ScanStatus, error) {
	if _, err := uuid.Parse(scanID); err != nil {
		return nil, ErrInvalidScanID
	}
	rec, err := s.repo.GetByID(ctx, scanID)
	if err != nil {
		s.log.Errorw("DB error fetching scan by ID", "scan_id", scanID, "error", err)
		return nil, ErrInternal
	}
	if rec == nil {
		return nil, ErrNotFound
	}

	return scanStatusFromRepo(rec), nil
}

// GetLatestScan returns the most recent successfully completed scan.
func (s *ScanService) GetLatestScan(ctx context.Context) (*ScanStatus, error) {
	if rec, ok := s.cacheGetLatestScan(ctx); ok {
		return scanStatusFromRepo(rec), nil
	}

	rec, err := s.repo.GetLatestSuccess(ctx)
	if err != nil {
		s.log.Errorw("DB error fetching latest scan", "error", err)
		return nil, ErrInternal
	}
	if rec == nil {
		return nil, ErrNotFound
	}

	s.cacheSetLatestScanFromRecord(ctx, rec)
	return scanStatusFromRepo(rec), nil
}

// ProcessScan runs the scan end to end and stores the outcome (called by the
// background worker).
func (s *ScanService) ProcessScan(ctx context.Context, scanID string, assets []string, modes []arbitrage.Mode) error {
	norm := market.NormalizeSymbols(assets)
	if len(norm) == 0 {
		s.completeFailure(ctx, scanID, ErrInvalidAsset)
		return ErrInvalidAsset
	}
	if vErr := s.validateAssets(norm); vErr != nil {
		s.completeFailure(ctx, scanID, vErr)
		return vErr
	}
	modes = normalizeModes(modes)

	s.log.Infow("Processing scan", "scan_id", scanID, "assets", norm, "modes", modes)
	s.markRunning(ctx, scanID)

	result, err := s.runScan(ctx, norm, modes)
	if err != nil {
		s.completeFailure(ctx, scanID, err)
		return err
	}

	payload, err := json.Marshal(result)
	if err != nil {
		s.completeFailure(ctx, scanID, err)
		return err
	}

	if err := s.repo.MarkSuccess(ctx, scanID, string(payload)); err != nil {
		s.log.Errorw("Persisting scan result failed", "scan_id", scanID, "error", err)
		return err
	}

	s.cacheSetLatestScan(ctx, scanID, strings.Join(norm, ","), joinModes(modes), string(payload), time.Now().UTC())
	s.log.Infow("Scan success", "scan_id", scanID,
		"triangular", len(result.Triangular), "cross_exchange", len(result.CrossExchange))
	return nil
}

// runScan gathers opportunities for every requested mode. A failing mode
// fails the whole scan so Asynq can retry it.
func (s *ScanService) runScan(ctx context.Context, assets []string, modes []arbitrage.Mode) (*ScanResult, error) {
	result := &ScanResult{GeneratedAt: time.Now().UTC()}
	for _, mode := range modes {
		switch mode {
		case arbitrage.ModeTriangular:
			table, err := s.rates.GetRates(ctx, assets, s.triangularCurrencies(assets), false)
			if err != nil {
				return nil, err
			}
			opps, err := s.engine.FindTriangular(table, assets)
			if err != nil {
				return nil, err
			}
			result.Triangular = opps
		case arbitrage.ModeCrossExchange:
			byAsset := s.venueQuotes(ctx, assets)
			if len(byAsset) == 0 {
				return nil, ErrNoVenueData
			}
			for _, asset := range assets {
				quotes := byAsset[asset]
				if len(quotes) < 2 {
					continue
				}
				opps, err := s.engine.FindCrossExchange(asset, quotes)
				if err != nil {
					return nil, err
				}
				result.CrossExchange = append(result.CrossExchange, opps...)
			}
			sortSpreads(result.CrossExchange)
		default:
			return nil, fmt.Errorf("unknown scan mode %q: %w", mode, market.ErrInvalidInput)
		}
	}
	return result, nil
}

func (s *ScanService) enqueueScanTask(ctx context.Context, scanID string, assets []string, modes []arbitrage.Mode) error {
	payload := RunScanPayload{
		ScanID: scanID,
		Assets: assets,
		Modes:  modeStrings(modes),
	}
	if err := s.enqueuer.EnqueueScanTask(ctx, payload); err != nil {
		s.log.Errorw("Handing scan to the queue failed", "scan_id", scanID, "error", err)
		s.markFailed(ctx, scanID, "enqueue error")
		return ErrInternalQueue
	}
	return nil
}

func (s *ScanService) markFailed(ctx context.Context, scanID, reason string) {
	if err := s.repo.MarkFailed(ctx, scanID, reason); err != nil {
		s.log.Warnw("Could not record FAILED status", "scan_id", scanID, "error", err)
	}
}

func (s *ScanService) markRunning(ctx context.Context, scanID string) {
	if err := s.repo.MarkRunning(ctx, scanID); err != nil {
		s.log.Warnw("Could not record RUNNING status", "scan_id", scanID, "error", err)
	}
}

func (s *ScanService) completeFailure(ctx context.Context, scanID string, cause error) {
	s.log.Errorw("Scan error", "scan_id", scanID, "error", cause)
	if err := s.repo.MarkFailed(ctx, scanID, cause.Error()); err != nil {
		s.log.Warnw("Failed to mark record as FAILED after scan error", "scan_id", scanID, "error", err)
	}
}

// TaskTypeRunScan is the Asynq task type for arbitrage scan jobs.
const TaskTypeRunScan = "scan:run"

// RunScanPayload is the payload structure for scan Asynq tasks.
type RunScanPayload struct {
	ScanID string   `json:"scan_id"`
	Assets []string `json:"assets"`
	Modes  []string `json:"modes"`
}

// normalizeModes fills in the default mode set and returns the modes sorted
// and deduplicated, matching the canonical DB key.
func normalizeModes(modes []arbitrage.Mode) []arbitrage.Mode {
	if len(modes) == 0 {
		return []arbitrage.Mode{arbitrage.ModeCrossExchange, arbitrage.ModeTriangular}
	}
	seen := make(map[arbitrage.Mode]struct{}, len(modes))
	out := make([]arbitrage.Mode, 0, len(modes))
	for _, m := range modes {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	slices.Sort(out)
	return out
}

func modeStrings(modes []arbitrage.Mode) []string {
	out := make([]string, len(modes))
	for i, m := range modes {
		out[i] = string(m)
	}
	return out
}

func joinModes(modes []arbitrage.Mode) string {
	return strings.Join(modeStrings(modes), ",")
}
