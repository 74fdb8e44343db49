package db

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// RunMigrations applies the pending goose migrations in migrationsDir and
// returns the schema version the database ends up at.
func RunMigrations(databaseURL, migrationsDir string) (int64, error) {
	conn, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return 0, fmt.Errorf("open database: %w", err)
	}
	defer conn.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		return 0, fmt.Errorf("set migration dialect: %w", err)
	}
	if err := goose.Up(conn, migrationsDir); err != nil {
		return 0, fmt.Errorf("run migrations: %w", err)
	}

	version, err := goose.GetDBVersion(conn)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}
