// Package database archives generated scenarios in SQLite or PostgreSQL.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"
)

// Database wraps the SQL connection and provides archive operations.
type Database struct {
	db      *sql.DB
	dialect Dialect
}

// Open connects using cfg and runs migrations.
func Open(cfg Config) (*Database, error) {
	switch Driver(cfg.Driver) {
	case DriverPostgres:
		return openPostgres(cfg.Postgres)
	case DriverSQLite, "":
		return OpenSQLite(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// OpenSQLite opens or creates the SQLite database at the given path.
func OpenSQLite(path string) (*Database, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open(string(DriverSQLite), sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return initialize(db, sqliteDialect{})
}

func openPostgres(cfg PostgresConfig) (*Database, error) {
	db, err := sql.Open(string(DriverPostgres), cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return initialize(db, postgresDialect{})
}

func initialize(db *sql.DB, dialect Dialect) (*Database, error) {
	d := &Database{db: db, dialect: dialect}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return d, nil
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// migrate creates the schema if it doesn't exist. The statements are
// portable between SQLite and PostgreSQL.
func (d *Database) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS scenarios (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			fingerprint TEXT NOT NULL,
			seed BIGINT NOT NULL,
			star_count INTEGER NOT NULL,
			size_tier TEXT NOT NULL DEFAULT '',
			map_yaml TEXT NOT NULL,
			body TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scenarios_fingerprint ON scenarios(fingerprint)`,
		`CREATE INDEX IF NOT EXISTS idx_scenarios_created_at ON scenarios(created_at)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}
