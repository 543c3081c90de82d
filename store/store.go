// Package store persists users and posts in a SQL database. SQLite is the
// default; PostgreSQL is reached through the pgx stdlib driver.
package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Open connects to the database and brings its schema to the latest version.
func Open(driverName, dataSourceName string) (*sql.DB, error) {
	if driverName == "" {
		driverName = DriverSQLite
	}
	if dataSourceName == "" && driverName == DriverSQLite {
		dataSourceName = "./feed.db?_pragma=foreign_keys(1)"
	}

	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driverName, err)
	}
	if driverName == DriverSQLite {
		// SQLite serialises writers anyway; one connection keeps :memory: databases coherent.
		db.SetMaxOpenConns(1)
	}
	if err := Migrate(db, driverName); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate applies the embedded schema migrations.
func Migrate(db *sql.DB, driverName string) error {
	var driver database.Driver
	var err error
	switch driverName {
	case DriverSQLite:
		driver, err = sqlite.WithInstance(db, &sqlite.Config{})
	case DriverPostgres:
		driver, err = migratepgx.WithInstance(db, &migratepgx.Config{})
	default:
		return fmt.Errorf("unsupported database driver %q", driverName)
	}
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}

	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, driverName, driver)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}
