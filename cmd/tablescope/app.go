package main

import (
	"context"
	"fmt"

	"github.com/koustreak/tablescope/internal/config"
	"github.com/koustreak/tablescope/internal/database"
	"github.com/koustreak/tablescope/internal/database/mysql"
	"github.com/koustreak/tablescope/internal/database/postgres"
	"github.com/koustreak/tablescope/internal/errs"
	"github.com/koustreak/tablescope/internal/filestore"
	"github.com/koustreak/tablescope/internal/filestore/minio"
	"github.com/koustreak/tablescope/internal/logger"
	"github.com/koustreak/tablescope/internal/schema"
)

// app holds the connections a command needs.
type app struct {
	cfg    *config.Config
	log    *logger.Logger
	db     database.Reader
	tables *schema.Introspector
	store  filestore.Store
}

func newApp(ctx context.Context, cfg *config.Config, withStore bool) (*app, error) {
	log := logger.New(&cfg.Log)
	logger.SetGlobal(log)

	db, err := openDatabase(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", cfg.Database.Driver, err)
	}

	a := &app{
		cfg: cfg,
		log: log,
		db:  db,
		tables: schema.NewIntrospector(db,
			schema.WithDecodePolicy(cfg.Policy()),
			schema.WithLogger(log),
			schema.WithQueryTimeout(cfg.Database.QueryTimeout),
		),
	}

	if withStore {
		if !cfg.FileStore.Enabled() {
			db.Close()
			return nil, errs.New(errs.ErrKindInvalidInput, "this command needs a file store: set filestore.endpoint")
		}
		store, err := minio.New(ctx, &cfg.FileStore)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("connecting to file store: %w", err)
		}
		a.store = store
	}

	log.InfoWith("connected", map[string]interface{}{
		"driver":    string(cfg.Database.Driver),
		"filestore": a.store != nil,
	})
	return a, nil
}

// newServeApp connects the file store only when one is configured.
func newServeApp(ctx context.Context, cfg *config.Config) (*app, error) {
	return newApp(ctx, cfg, cfg.FileStore.Enabled())
}

func (a *app) Close() {
	if a.store != nil {
		_ = a.store.Close()
	}
	a.db.Close()
}

func openDatabase(ctx context.Context, cfg *database.Config) (database.Reader, error) {
	switch cfg.Driver {
	case database.DriverPostgres:
		db, err := postgres.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return db, nil
	case database.DriverMySQL:
		db, err := mysql.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, errs.Newf(errs.ErrKindInvalidInput, "unsupported database driver %q", cfg.Driver)
	}
}
