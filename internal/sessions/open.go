package sessions

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/speechcoach/backend/config"
	"github.com/speechcoach/backend/pkg/database"
)

// Open connects the configured session store and applies migrations. closeFn releases it.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (repo Repository, closeFn func(), err error) {
	switch cfg.Driver {
	case "sqlite":
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(ctx, database.SQLExecer{DB: db}, "sqlite"); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		return NewSQLiteRepository(db), func() { db.Close() }, nil
	case "postgres", "":
		pool, err := database.NewPostgresPool(ctx, cfg.DSN(), logger)
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(ctx, database.PgxExecer{Pool: pool}, "postgres"); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		return NewPostgresRepository(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
