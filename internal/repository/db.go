package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// NewPool opens and pings a connection pool.
func NewPool(ctx context.Context, dsn, environment string, logger zerolog.Logger) (*pgxpool.Pool, error) {
	// Local databases run without TLS. In production the connection string
	// carries its own sslmode.
	if environment == "development" && !strings.Contains(dsn, "sslmode") {
		dsn = appendParam(dsn, "sslmode=disable")
	}

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing DB connection string: %w", err)
	}
	// Transaction poolers like pgbouncer break server-side prepared statements.
	if environment != "development" {
		poolCfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	}
	poolCfg.MaxConns = 10
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("opening DB pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging DB: %w", err)
	}
	logger.Info().Str("host", poolCfg.ConnConfig.Host).Uint16("port", poolCfg.ConnConfig.Port).Msg("Database connection successful")
	return pool, nil
}

// appendParam adds a parameter to either a URL or a key=value DSN.
func appendParam(dsn, param string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		if strings.Contains(dsn, "?") {
			return dsn + "&" + param
		}
		return dsn + "?" + param
	}
	return dsn + " " + param
}
