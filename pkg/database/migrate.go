package database

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"strings"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// Execer runs a single SQL statement batch. Both *pgxpool.Pool (via PgxExecer) and *sql.DB (via SQLExecer) satisfy it.
type Execer interface {
	ExecContext(ctx context.Context, sql string) error
}

// Migrate runs the embedded migrations for dialect ("postgres" or "sqlite") in order (001_schema.sql, 002_..., etc.).
func Migrate(ctx context.Context, db Execer, dialect string) error {
	dir := "migrations/" + dialect
	entries, err := migrationsFS.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		sql, err := migrationsFS.ReadFile(dir + "/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if err := db.ExecContext(ctx, string(sql)); err != nil {
			return fmt.Errorf("execute migration %s: %w", name, err)
		}
	}
	return nil
}
