package sqlrepo

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"intake/db"
	"intake/internal/config"
)

// Driver names accepted in config.DBConfig.Driver.
const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// NewDB opens a connection pool for the configured driver.
func NewDB(cfg *config.DBConfig) (*sqlx.DB, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverPostgres
	}
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	conn, err := sqlx.Connect(driver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// one writer; also keeps :memory: databases on a single connection
		conn.SetMaxOpenConns(1)
		if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("enabling foreign keys: %w", err)
		}
		return conn, nil
	}
	conn.SetMaxOpenConns(cfg.MaxOpen)
	conn.SetMaxIdleConns(cfg.MaxIdle)
	return conn, nil
}

// Migrate applies every pending embedded migration.
func Migrate(conn *sqlx.DB) error {
	m, err := NewMigrator(conn)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}

// NewMigrator returns a migrate instance bound to conn and the embedded migrations.
func NewMigrator(conn *sqlx.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(db.Migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("opening migrations: %w", err)
	}

	switch conn.DriverName() {
	case DriverSQLite:
		drv, err := migratesqlite.WithInstance(conn.DB, &migratesqlite.Config{})
		if err != nil {
			return nil, fmt.Errorf("sqlite migrate driver: %w", err)
		}
		return migrate.NewWithInstance("iofs", src, "sqlite", drv)
	default:
		drv, err := migratepgx.WithInstance(conn.DB, &migratepgx.Config{})
		if err != nil {
			return nil, fmt.Errorf("pgx migrate driver: %w", err)
		}
		return migrate.NewWithInstance("iofs", src, "pgx5", drv)
	}
}
