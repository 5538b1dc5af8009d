package postgres

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/koustreak/tablescope/internal/database"
	"github.com/koustreak/tablescope/internal/errs"
)

const (
	defaultMaxConns        = 10
	defaultMinConns        = 2
	defaultConnMaxIdleTime = 5 * time.Minute
	defaultConnMaxLifetime = 30 * time.Minute
)

// poolConfig parses the DSN and applies pool settings with defaults.
func poolConfig(cfg *database.Config) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "invalid DSN", err)
	}

	poolCfg.MaxConns = withDefault(cfg.MaxConns, defaultMaxConns)
	poolCfg.MinConns = withDefault(cfg.MinConns, defaultMinConns)
	poolCfg.MaxConnLifetime = durationOr(cfg.MaxConnLifetime, defaultConnMaxLifetime)
	poolCfg.MaxConnIdleTime = durationOr(cfg.MaxConnIdleTime, defaultConnMaxIdleTime)
	if cfg.ConnectTimeout > 0 {
		poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}
	// metadata reads never need anything but a read-only session
	poolCfg.ConnConfig.RuntimeParams["default_transaction_read_only"] = "on"

	return poolCfg, nil
}

// withDefault returns val if non-zero, otherwise returns def
func withDefault(val, def int32) int32 {
	if val == 0 {
		return def
	}
	return val
}

func durationOr(val, def time.Duration) time.Duration {
	if val == 0 {
		return def
	}
	return val
}
