//go:build integration

package integration

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	testDB  *sql.DB
	testRDB *redis.Client
)

// freshState wipes the scan store and the Redis-backed caches, then returns a
// deadline-bound context for the test. Every integration test starts here so
// state never leaks between them.
func freshState(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	if _, err := testDB.ExecContext(ctx, "TRUNCATE TABLE scans"); err != nil {
		t.Fatalf("truncate scans: %v", err)
	}
	if err := testRDB.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("flush redis: %v", err)
	}
	return ctx
}
