package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/restaurantos/restaurant-service/internal/config"
	"github.com/restaurantos/restaurant-service/internal/repository"
)

// Account store modes accepted by ACCOUNT_STORE.
const (
	StoreAuto     = "auto"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

var (
	// ErrPostgresNotConfigured is returned by Ping when accounts live in memory.
	ErrPostgresNotConfigured = errors.New("postgres not configured")
	// ErrMissingDSN is returned when ACCOUNT_STORE=postgres but POSTGRES_DSN is empty.
	ErrMissingDSN = errors.New("ACCOUNT_STORE=postgres requires POSTGRES_DSN")
)

// Postgres owns the account database pool. A nil Pool means the in-process
// store was selected.
type Postgres struct {
	Pool *pgxpool.Pool
	mode string
}

// NewPostgres resolves the account store mode and, for Postgres, opens and
// pings the pool.
func NewPostgres(ctx context.Context, cfg config.PostgresConfig, logger *zap.Logger) (*Postgres, error) {
	mode := cfg.Store
	if mode == "" {
		mode = StoreAuto
	}

	switch mode {
	case StoreMemory:
		logger.Info("account store selected", zap.String("store", StoreMemory))
		return &Postgres{mode: StoreMemory}, nil
	case StoreAuto:
		if cfg.DSN == "" {
			logger.Warn("POSTGRES_DSN not set; accounts are kept in memory and lost on restart",
				zap.String("store", StoreMemory))
			return &Postgres{mode: StoreMemory}, nil
		}
	case StorePostgres:
		if cfg.DSN == "" {
			return nil, ErrMissingDSN
		}
	default:
		return nil, fmt.Errorf("unknown ACCOUNT_STORE %q", cfg.Store)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.ConnMaxIdleSec > 0 {
		poolCfg.MaxConnIdleTime = time.Duration(cfg.ConnMaxIdleSec) * time.Second
	}
	if cfg.ConnMaxLifeSec > 0 {
		poolCfg.MaxConnLifetime = time.Duration(cfg.ConnMaxLifeSec) * time.Second
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("account store selected",
		zap.String("store", StorePostgres),
		zap.String("host", poolCfg.ConnConfig.Host),
		zap.String("database", poolCfg.ConnConfig.Database))
	return &Postgres{Pool: pool, mode: StorePostgres}, nil
}

// Mode reports the selected store, "postgres" or "memory".
func (p *Postgres) Mode() string {
	if p == nil || p.Pool == nil {
		return StoreMemory
	}
	return p.mode
}

// Stores returns the repositories for the selected mode.
func (p *Postgres) Stores() repository.Stores {
	if p.Mode() == StorePostgres {
		return repository.NewPostgresStores(p.Pool)
	}
	return repository.NewMemoryStores()
}

// Close releases pool resources.
func (p *Postgres) Close() {
	if p != nil && p.Pool != nil {
		p.Pool.Close()
	}
}

// PoolHandle returns the underlying pgx pool.
func (p *Postgres) PoolHandle() *pgxpool.Pool {
	if p == nil {
		return nil
	}
	return p.Pool
}

// Ping verifies database connectivity.
func (p *Postgres) Ping(ctx context.Context) error {
	if p == nil || p.Pool == nil {
		return ErrPostgresNotConfigured
	}
	return p.Pool.Ping(ctx)
}
