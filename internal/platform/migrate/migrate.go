// Package migrate applies the embedded SQL schema with goose.
package migrate

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed sql/*.sql
var migrations embed.FS

const dialect = "postgres"

// Up runs all pending migrations against the pool's database.
func Up(ctx context.Context, pool *pgxpool.Pool) error {
	sqlDB := stdlib.OpenDBFromPool(pool)
	defer func() {
		_ = sqlDB.Close()
	}()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("migrate: set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, sqlDB, "sql"); err != nil {
		return fmt.Errorf("migrate: run goose up: %w", err)
	}
	return nil
}
