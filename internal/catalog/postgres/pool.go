package postgres

import (
	"context"
	"fmt"

	"github.com/chinspect/chinspect/internal/catalog"
	"github.com/chinspect/chinspect/internal/errs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// defaultPort is ClickHouse's PostgreSQL compatibility port.
const defaultPort = 9005

const (
	defaultMaxConns = 4
	defaultMinConns = 1
)

// buildPool creates a pgxpool aimed at the compatibility port.
func buildPool(ctx context.Context, cfg *catalog.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(buildDSN(cfg))
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "invalid DSN", err)
	}

	poolCfg.MaxConns = withDefault(cfg.MaxConns, defaultMaxConns)
	poolCfg.MinConns = withDefault(cfg.MinConns, defaultMinConns)
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	// ClickHouse's PostgreSQL endpoint does not implement the extended
	// query protocol, so pgx must stick to simple queries and
	// interpolate parameters client-side.
	poolCfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, mapError(err, "failed to create connection pool")
	}

	return pool, nil
}

// buildDSN constructs the connection string. The compatibility port
// speaks plaintext, so sslmode stays disabled.
func buildDSN(cfg *catalog.Config) string {
	port := cfg.Port
	if port == 0 {
		port = defaultPort
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, port, cfg.Username, cfg.Password, cfg.Database,
	)
}

// withDefault returns val if non-zero, otherwise returns def.
func withDefault(val, def int32) int32 {
	if val == 0 {
		return def
	}
	return val
}
