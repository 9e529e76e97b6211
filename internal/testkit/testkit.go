// Package testkit boots the real backends the integration tests run against:
// a Postgres instance for the scan store and a Redis instance shared by the
// caches and the task queue. Both run as throwaway containers unless an
// external endpoint is supplied through the environment.
package testkit

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
)

// Backends holds the endpoints of a started test stack and knows how to tear
// it down again.
type Backends struct {
	PostgresDSN string
	RedisAddr   string

	keep bool

	mu    sync.Mutex
	stops []func(context.Context) error
}

// Start boots Postgres and Redis in parallel and returns once both accept
// connections. Set TEST_POSTGRES_DSN or TEST_REDIS_ADDR to reuse an external
// instance instead of starting a container for that backend.
func Start(ctx context.Context) (*Backends, error) {
	b := &Backends{keep: envBool("TEST_KEEP_CONTAINERS")}
	deadline := envDuration("TEST_CONTAINER_TIMEOUT", 90*time.Second)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if dsn := os.Getenv("TEST_POSTGRES_DSN"); dsn != "" {
			b.PostgresDSN = dsn
			return nil
		}
		dsn, stop, err := startPostgres(gctx, deadline)
		if err != nil {
			return err
		}
		b.PostgresDSN = dsn
		b.addStop(stop)
		return nil
	})
	g.Go(func() error {
		if addr := os.Getenv("TEST_REDIS_ADDR"); addr != "" {
			b.RedisAddr = addr
			return nil
		}
		addr, stop, err := startRedis(gctx)
		if err != nil {
			return err
		}
		b.RedisAddr = addr
		b.addStop(stop)
		return nil
	})
	if err := g.Wait(); err != nil {
		// tear down whichever half did come up
		b.Stop(ctx)
		return nil, err
	}
	return b, nil
}

func (b *Backends) addStop(stop func(context.Context) error) {
	b.mu.Lock()
	b.stops = append(b.stops, stop)
	b.mu.Unlock()
}

// Stop terminates the started containers. With TEST_KEEP_CONTAINERS set they
// survive and their endpoints are printed for reuse in the next run.
func (b *Backends) Stop(ctx context.Context) {
	b.mu.Lock()
	stops := b.stops
	b.stops = nil
	b.mu.Unlock()

	if b.keep {
		fmt.Fprintf(os.Stderr, "testkit: keeping containers (TEST_POSTGRES_DSN=%q TEST_REDIS_ADDR=%q)\n",
			b.PostgresDSN, b.RedisAddr)
		return
	}
	for _, stop := range stops {
		if err := stop(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "testkit: container teardown: %v\n", err)
		}
	}
}

// RunMain drives TestMain: start the stack, run prepare (migrations, client
// setup), execute the tests, tear everything down and exit.
func RunMain(m *testing.M, prepare func(*Backends) error) {
	ctx := context.Background()

	b, err := Start(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "testkit: start backends: %v\n", err)
		os.Exit(1)
	}
	if prepare != nil {
		if err := prepare(b); err != nil {
			fmt.Fprintf(os.Stderr, "testkit: prepare: %v\n", err)
			b.Stop(ctx)
			os.Exit(1)
		}
	}

	code := m.Run()
	b.Stop(ctx)
	os.Exit(code)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	ok, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && ok
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "testkit: %s=%q is not a duration, using %v\n", key, v, fallback)
		return fallback
	}
	return d
}
