package mysql

import (
	"database/sql"
	"strings"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/koustreak/tablescope/internal/database"
)

const (
	defaultMaxOpenConns    = 10
	defaultMaxIdleConns    = 2
	defaultConnMaxLifetime = 30 * time.Minute
	defaultConnMaxIdleTime = 10 * time.Minute
)

// configurePool applies pool settings, falling back to defaults for zero values.
func configurePool(db *sql.DB, cfg *database.Config) {
	maxOpen := int(cfg.MaxConns)
	if maxOpen == 0 {
		maxOpen = defaultMaxOpenConns
	}
	maxIdle := int(cfg.MinConns)
	if maxIdle == 0 {
		maxIdle = defaultMaxIdleConns
	}
	lifetime := cfg.MaxConnLifetime
	if lifetime == 0 {
		lifetime = defaultConnMaxLifetime
	}
	idle := cfg.MaxConnIdleTime
	if idle == 0 {
		idle = defaultConnMaxIdleTime
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(lifetime)
	db.SetConnMaxIdleTime(idle)
}

// normalizeDSN parses the DSN and forces the options metadata reads rely on:
// parseTime for CREATE_TIME-style columns and utf8mb4 for comments.
// multiStatements is always switched off; this driver only issues single SELECTs.
func normalizeDSN(dsn string) (string, error) {
	c, err := gomysql.ParseDSN(dsn)
	if err != nil {
		return "", err
	}
	c.ParseTime = true
	c.MultiStatements = false

	// ParseDSN keeps charset out of Params, so look for it in the formatted form.
	if !hasParam(c.FormatDSN(), "charset") {
		if err := c.Apply(gomysql.Charset("utf8mb4", "")); err != nil {
			return "", err
		}
	}
	return c.FormatDSN(), nil
}

func hasParam(dsn, name string) bool {
	i := strings.IndexByte(dsn, '?')
	if i < 0 {
		return false
	}
	for _, kv := range strings.Split(dsn[i+1:], "&") {
		if k, _, _ := strings.Cut(kv, "="); k == name {
			return true
		}
	}
	return false
}
