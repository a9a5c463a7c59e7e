package database

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/vocabox/schemas"
)

// MigrationDirection selects whether migrations are applied or reverted.
type MigrationDirection string

const (
	MigrateUp   MigrationDirection = "up"
	MigrateDown MigrationDirection = "down"
)

// Migrate applies the embedded migrations of the connection's dialect.
// Running it on an up-to-date schema is a no-op.
func Migrate(db *sqlx.DB, direction MigrationDirection) error {
	dialect := DialectOf(db)

	source, err := iofs.New(schemas.Migrations, "migrations/"+string(dialect))
	if err != nil {
		return fmt.Errorf("load %s migrations: %w", dialect, err)
	}

	var driver migratedb.Driver
	switch dialect {
	case MySQL:
		driver, err = migratemysql.WithInstance(db.DB, &migratemysql.Config{})
	case Postgres:
		driver, err = migratepostgres.WithInstance(db.DB, &migratepostgres.Config{})
	case SQLite:
		driver, err = migratesqlite.WithInstance(db.DB, &migratesqlite.Config{})
	default:
		return fmt.Errorf("unsupported database dialect %q", dialect)
	}
	if err != nil {
		return fmt.Errorf("create %s migration driver: %w", dialect, err)
	}

	m, err := migrate.NewWithInstance("iofs", source, string(dialect), driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	switch direction {
	case MigrateUp:
		err = m.Up()
	case MigrateDown:
		err = m.Down()
	default:
		return fmt.Errorf("unknown migration direction %q", direction)
	}
	if errors.Is(err, migrate.ErrNoChange) {
		slog.Default().Info("database schema is up to date", "dialect", dialect)
		return nil
	}
	if err != nil {
		return fmt.Errorf("run %s migrations: %w", direction, err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read migration version: %w", err)
	}
	slog.Default().Info("migrated database schema",
		"dialect", dialect,
		"direction", direction,
		"version", version,
		"dirty", dirty)
	return nil
}
