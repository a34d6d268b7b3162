// Package migrations embeds the SQL schema and applies it with goose.
package migrations

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"jobquote/pkg/logger"
)

const dialect = "postgres"

//go:embed *.sql
var schema embed.FS

// Up applies all pending migrations through a database/sql handle on pool.
func Up(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(schema)
	goose.SetLogger(gooseLogger{ctx: ctx})
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("run goose up migrations: %w", err)
	}
	return nil
}

// gooseLogger routes goose output to the application logger.
type gooseLogger struct {
	ctx context.Context
}

func (l gooseLogger) Printf(format string, v ...any) {
	logger.Info(l.ctx, fmt.Sprintf(format, v...))
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	logger.Fatal(l.ctx, fmt.Sprintf(format, v...))
}
