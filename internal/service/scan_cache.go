package service

import (
	"context"
	"time"

	"arbscan/internal/repository"
)

// latestScanKey is the Redis hash holding the most recent successful scan.
const latestScanKey = "latest_scan"

// scanHashFields lists every hash field a cached scan must carry. A partial
// hash, say from an interrupted pipeline, is treated as a miss.
var scanHashFields = [...]string{"scan_id", "assets", "modes", "result", "updated_at"}

func (s *ScanService) cacheGetLatestScan(ctx context.Context) (*repository.Scan, bool) {
	if s.cache == nil {
		return nil, false
	}

	vals, err := s.cache.HGetAll(ctx, latestScanKey).Result()
	if err != nil {
		return nil, false
	}
	for _, f := range scanHashFields {
		if _, ok := vals[f]; !ok {
			return nil, false
		}
	}
	t, err := time.Parse(time.RFC3339, vals["updated_at"])
	if err != nil {
		return nil, false
	}

	result := vals["result"]
	return &repository.Scan{
		ID:        vals["scan_id"],
		Assets:    vals["assets"],
		Modes:     vals["modes"],
		Status:    repository.StatusSuccess,
		Result:    &result,
		UpdatedAt: &t,
	}, true
}

func (s *ScanService) cacheSetLatestScanFromRecord(ctx context.Context, rec *repository.Scan) {
	if rec == nil || rec.Result == nil || rec.UpdatedAt == nil {
		return
	}
	s.cacheSetLatestScan(ctx, rec.ID, rec.Assets, rec.Modes, *rec.Result, *rec.UpdatedAt)
}

func (s *ScanService) cacheSetLatestScan(ctx context.Context, id, assets, modes, result string, updatedAt time.Time) {
	if s.cache == nil {
		return
	}

	pipe := s.cache.Pipeline()
	pipe.HSet(ctx, latestScanKey,
		"scan_id", id,
		"assets", assets,
		"modes", modes,
		"result", result,
		"updated_at", updatedAt.Format(time.RFC3339))
	pipe.Expire(ctx, latestScanKey, s.latestTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warnw("Latest-scan cache write failed", "key", latestScanKey, "error", err)
	}
}
