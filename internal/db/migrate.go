package db

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/yigit/altklausuren/internal/pkg/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations applies every pending embedded migration
func (db *PostgresDB) RunMigrations() error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	sqlDB := stdlib.OpenDBFromPool(db.Pool)

	driver, err := migratepgx.WithInstance(sqlDB, &migratepgx.Config{})
	if err != nil {
		_ = sqlDB.Close()
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "pgx5", driver)
	if err != nil {
		_ = source.Close()
		_ = driver.Close()
		return fmt.Errorf("failed to initialise migrations: %w", err)
	}
	// Close hands the driver's dedicated connection back to the pool
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logger.Warn().AnErr("source", srcErr).AnErr("database", dbErr).Msg("Failed to close migration runner")
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return reportVersion(m.Version())
}

// reportVersion logs the schema version reached; only read failures are errors
func reportVersion(version uint, dirty bool, err error) error {
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		logger.Warn().Msg("No database migrations applied")
	case err != nil:
		return fmt.Errorf("failed to read migration version: %w", err)
	case dirty:
		logger.Warn().Uint("version", version).Msg("Database migration is dirty")
	default:
		logger.Info().Uint("version", version).Msg("Database migrations applied")
	}
	return nil
}
