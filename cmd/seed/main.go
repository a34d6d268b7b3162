// Package main provides a CLI tool for seeding reference data and issuing development tokens.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"

	"jobquote/internal/config"
	"jobquote/internal/core/id"
	"jobquote/internal/core/security"
	"jobquote/internal/core/types"
	"jobquote/internal/domain/auth"
	"jobquote/internal/infrastructure/storage/postgres"
	"jobquote/internal/infrastructure/storage/postgres/migrations"
	"jobquote/pkg/logger"
)

type namedSeed struct {
	table  string
	column string
	name   string
	value  types.Money
}

var referenceData = []namedSeed{
	{"machines", "hourly_rate", "CNC Mill 3-axis", types.MustMoney("85.00")},
	{"machines", "hourly_rate", "CNC Lathe", types.MustMoney("70.00")},
	{"machines", "hourly_rate", "Wire EDM", types.MustMoney("110.00")},
	{"auxiliary_cost_types", "default_cost", "Anodizing", types.MustMoney("150.00")},
	{"auxiliary_cost_types", "default_cost", "Heat treatment", types.MustMoney("95.00")},
	{"auxiliary_cost_types", "default_cost", "Inspection report", types.MustMoney("40.00")},
}

var customers = []string{"Acme Aerospace", "Northwind Robotics"}

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("invalid configuration", "error", err)
	}

	ctx := logger.WithLogger(context.Background(), log)

	if cfg.Storage == config.StoragePostgres {
		if err := seedDatabase(ctx, cfg, log); err != nil {
			log.Fatalw("failed to seed database", "error", err)
		}
	}

	if err := printTokens(cfg); err != nil {
		log.Fatalw("failed to issue tokens", "error", err)
	}

	log.Info("seeding completed successfully")
}

func seedDatabase(ctx context.Context, cfg config.Config, log *logger.Logger) error {
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if err := migrations.Up(ctx, pool.Pool); err != nil {
		return err
	}

	for _, name := range customers {
		customerID, err := ensureRow(ctx, pool, "customers", name, "", types.Zero())
		if err != nil {
			return fmt.Errorf("seed customer %q: %w", name, err)
		}
		log.Infow("customer ready", "name", name, "id", customerID)
	}

	for _, s := range referenceData {
		rowID, err := ensureRow(ctx, pool, s.table, s.name, s.column, s.value)
		if err != nil {
			return fmt.Errorf("seed %s %q: %w", s.table, s.name, err)
		}
		log.Infow("reference row ready", "table", s.table, "name", s.name, "id", rowID, s.column, s.value)
	}
	return nil
}

// ensureRow inserts a named row unless one with the same name exists and returns its id.
// An empty valueColumn inserts only id and name.
func ensureRow(ctx context.Context, pool *postgres.Pool, table, name, valueColumn string, value types.Money) (id.ID, error) {
	var existing id.ID
	err := pool.QueryRow(ctx, fmt.Sprintf(`SELECT id FROM %s WHERE name = $1 LIMIT 1`, table), name).Scan(&existing)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return id.ID{}, err
	}

	rowID := id.New()
	if valueColumn == "" {
		_, err = pool.Exec(ctx, fmt.Sprintf(`INSERT INTO %s (id, name) VALUES ($1, $2)`, table), rowID, name)
	} else {
		_, err = pool.Exec(ctx,
			fmt.Sprintf(`INSERT INTO %s (id, name, %s) VALUES ($1, $2, $3)`, table, valueColumn),
			rowID, name, value)
	}
	if err != nil {
		return id.ID{}, err
	}
	return rowID, nil
}

// printTokens writes one development bearer token per role to stdout.
func printTokens(cfg config.Config) error {
	jwtService := auth.NewJWTService(auth.JWTConfig{
		Secret:         cfg.Secret(),
		Issuer:         cfg.JWTIssuer,
		AccessTokenTTL: cfg.JWTTokenTTL,
	})

	roles := []security.Role{security.RoleAdmin, security.RoleSales, security.RoleEngineer, security.RoleManager}
	for _, role := range roles {
		userID := "dev-" + string(role)
		token, expiresAt, err := jwtService.GenerateAccessToken(security.Principal{ID: userID, Role: role}, userID+"@jobquote.local")
		if err != nil {
			return err
		}
		fmt.Printf("%-9s expires %s\n  %s\n", role, expiresAt.Format("15:04:05"), token)
	}
	return nil
}
