package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/jhoicas/revisiones-api/internal/application/reconciliation"
	apprevision "github.com/jhoicas/revisiones-api/internal/application/revision"
	"github.com/jhoicas/revisiones-api/internal/cli"
	"github.com/jhoicas/revisiones-api/internal/infrastructure/lock"
	"github.com/jhoicas/revisiones-api/internal/infrastructure/postgres"
	"github.com/jhoicas/revisiones-api/pkg/config"
)

func main() {
	if err := cli.NewRootCommand(openPostgres).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// openPostgres arma el backend real. Con REDIS_ADDR usa el mismo lock por sede que la API.
func openPostgres(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*cli.Backend, error) {
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	closers := []func(){pool.Close}

	var locker apprevision.Locker = lock.NewLocalLocker()
	if cfg.Redis.Addr != "" {
		rdb, err := lock.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			pool.Close()
			return nil, err
		}
		closers = append(closers, func() { _ = rdb.Close() })
		locker = lock.NewRedisLocker(rdb, cfg.Redis.LockTTL, cfg.Redis.LockRetries, log)
	}

	repos := postgres.NewRepositories(pool)
	uc := apprevision.NewUseCase(repos, postgres.NewTxRunner(pool), reconciliation.NewEngine(log, cfg.Engine.Workers),
		locker, cfg.Engine.Timeout, log)

	return &cli.Backend{
		Revisions: uc,
		Repos:     repos,
		Migrate: func(ctx context.Context) (int, error) {
			return postgres.Migrate(ctx, pool, log)
		},
		Close: func() {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		},
	}, nil
}
