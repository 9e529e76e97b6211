//go:build integration

package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"arbscan/internal/arbitrage"
	"arbscan/internal/repository"
	"arbscan/internal/service"
)

// newCacheTestService creates a ScanService wired to real Postgres and Redis
// but with no rate source, venues or enqueuer. Only suitable for testing the
// scan read paths.
func newCacheTestService() *service.ScanService {
	repo := repository.NewPostgresScanRepository(testDB)
	logger := zap.NewNop().Sugar()
	engine := arbitrage.NewEngine(1.0, 1000)
	return service.NewScanService(repo, nil, engine, nil, service.NewValidator(), nil, testRDB, logger, processTestConfig())
}

// insertSuccessScan walks a fresh scan through its whole lifecycle so the
// read-path tests have a finished record with the given result JSON.
func insertSuccessScan(t *testing.T, ctx context.Context, assets, modes, result string) string {
	t.Helper()
	repo := repository.NewPostgresScanRepository(testDB)

	id := uuid.New().String()
	if _, err := repo.CreateScan(ctx, assets, modes, id); err != nil {
		t.Fatalf("CreateScan: %v", err)
	}
	if err := repo.MarkRunning(ctx, id); err != nil {
		t.Fatalf("MarkRunning: %v", err)
	}
	if err := repo.MarkSuccess(ctx, id, result); err != nil {
		t.Fatalf("MarkSuccess: %v", err)
	}
	return id
}

func TestGetLatestScan_CacheMissDBHit(t *testing.T) {
	ctx := freshState(t)

	id := insertSuccessScan(t, ctx, "BTC,ETH", "triangular",
		`{"triangular":[{"cycle":["BTC","ETH","SOL"],"profit_pct":"8"}],"generated_at":"2025-06-01T12:00:00Z"}`)

	svc := newCacheTestService()
	st, err := svc.GetLatestScan(ctx)
	if err != nil {
		t.Fatalf("GetLatestScan: %v", err)
	}
	if st.ScanID != id {
		t.Fatalf("expected scan %s, got %s", id, st.ScanID)
	}
	if st.Result == nil || len(st.Result.Triangular) != 1 {
		t.Fatalf("expected one triangular opportunity, got %+v", st.Result)
	}

	// Wipe the table and read again. A second hit can only come from the
	// Redis copy written on the first read.
	if _, err := testDB.ExecContext(ctx, "TRUNCATE TABLE scans"); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	st2, err := svc.GetLatestScan(ctx)
	if err != nil {
		t.Fatalf("GetLatestScan (after truncate): %v", err)
	}
	if st2.ScanID != id || st2.Result == nil {
		t.Fatal("expected cached result after DB truncate")
	}
}

func TestGetLatestScan_CacheHit(t *testing.T) {
	ctx := freshState(t)

	// Populate the cache by reading a real DB record through the service.
	id := insertSuccessScan(t, ctx, "BTC", "cross_exchange",
		`{"cross_exchange":[{"asset":"BTC","buy_venue":"alpha","sell_venue":"beta","buy_price":"100","sell_price":"103","profit_pct":"2.691206"}],"generated_at":"2025-06-01T12:00:00Z"}`)
	svc := newCacheTestService()
	if _, err := svc.GetLatestScan(ctx); err != nil {
		t.Fatalf("GetLatestScan (populate cache): %v", err)
	}

	// Truncate the DB so the next call can only come from cache.
	if _, err := testDB.ExecContext(ctx, "TRUNCATE TABLE scans"); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	st, err := svc.GetLatestScan(ctx)
	if err != nil {
		t.Fatalf("GetLatestScan: %v", err)
	}
	if st.ScanID != id {
		t.Fatalf("expected scan %s from cache, got %s", id, st.ScanID)
	}
	if len(st.Assets) != 1 || st.Assets[0] != "BTC" {
		t.Fatalf("expected assets [BTC], got %v", st.Assets)
	}
	if st.Result == nil || len(st.Result.CrossExchange) != 1 {
		t.Fatalf("expected one cross-exchange spread, got %+v", st.Result)
	}
	if st.Result.CrossExchange[0].BuyVenue != "alpha" {
		t.Fatalf("expected buy venue alpha, got %s", st.Result.CrossExchange[0].BuyVenue)
	}
}

func TestGetLatestScan_NotFound(t *testing.T) {
	ctx := freshState(t)

	svc := newCacheTestService()
	_, err := svc.GetLatestScan(ctx)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
