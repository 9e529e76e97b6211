package testkit

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/url"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	defaultPostgresImage = "postgres:18.1-alpine"
	defaultRedisImage    = "redis:8.4.0-alpine"
)

// startPostgres runs a Postgres container with a randomized database name so
// parallel test runs on one Docker host cannot collide.
func startPostgres(ctx context.Context, deadline time.Duration) (string, func(context.Context) error, error) {
	ctr, err := postgres.Run(ctx,
		envOr("TEST_POSTGRES_IMAGE", defaultPostgresImage),
		postgres.WithDatabase("arbscan_it_"+randomSuffix()),
		postgres.WithUsername("arbscan"),
		postgres.WithPassword("arbscan"),
		testcontainers.WithWaitStrategyAndDeadline(deadline,
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		),
	)
	if err != nil {
		return "", nil, fmt.Errorf("postgres container: %w", err)
	}
	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = ctr.Terminate(ctx)
		return "", nil, fmt.Errorf("postgres connection string: %w", err)
	}
	return dsn, func(ctx context.Context) error { return ctr.Terminate(ctx) }, nil
}

// startRedis runs a Redis container and reports its address in the host:port
// form the rest of the project uses, not the redis:// URL the container
// library hands back.
func startRedis(ctx context.Context) (string, func(context.Context) error, error) {
	ctr, err := tcredis.Run(ctx, envOr("TEST_REDIS_IMAGE", defaultRedisImage))
	if err != nil {
		return "", nil, fmt.Errorf("redis container: %w", err)
	}
	connStr, err := ctr.ConnectionString(ctx)
	if err != nil {
		_ = ctr.Terminate(ctx)
		return "", nil, fmt.Errorf("redis connection string: %w", err)
	}
	u, err := url.Parse(connStr)
	if err != nil {
		_ = ctr.Terminate(ctx)
		return "", nil, fmt.Errorf("redis connection string %q: %w", connStr, err)
	}
	return u.Host, func(ctx context.Context) error { return ctr.Terminate(ctx) }, nil
}

func randomSuffix() string {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "00000000"
	}
	return hex.EncodeToString(b[:])
}
