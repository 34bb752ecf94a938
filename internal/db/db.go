package db

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kasperbn/packlist/internal/models"

	migrate "github.com/golang-migrate/migrate/v4"
	// Blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// IsPostgres reports whether the DSN selects the postgres driver. Anything
// that is not a postgres URL is treated as a sqlite file DSN.
func IsPostgres(dsn string) bool {
	lower := strings.ToLower(strings.TrimSpace(dsn))
	return strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://")
}

// Connect opens the database selected by the DSN shape and verifies
// connectivity. sqlite connections get foreign key enforcement switched on
// so FK cascade constraints actually fire.
func Connect(dsn string) (*gorm.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("DATABASE_DSN is empty")
	}
	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "1" {
		logLevel = logger.Info
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	var (
		conn *gorm.DB
		err  error
	)
	if IsPostgres(dsn) {
		conn, err = gorm.Open(postgres.Open(dsn), cfg)
	} else {
		conn, err = gorm.Open(sqlite.Open(dsn), cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if !IsPostgres(dsn) {
		if err := conn.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
	}
	if err := conn.Exec("SELECT 1").Error; err != nil {
		return nil, fmt.Errorf("db ping failed: %w", err)
	}
	return conn, nil
}

// Migrate brings the schema up to date. With sqlMigrations set (and a
// postgres DSN) it runs versioned SQL migrations from ./migrations via
// golang-migrate; otherwise it falls back to gorm AutoMigrate, which is the
// sqlite and development path.
func Migrate(conn *gorm.DB, dsn string, sqlMigrations bool) error {
	if sqlMigrations && IsPostgres(dsn) {
		return runSQLMigrations(dsn)
	}
	for _, m := range models.All() {
		if err := conn.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	// sanity check: ensure required core tables exist
	for _, table := range []string{"vehicles", "places", "items", "documents"} {
		if !conn.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}

func runSQLMigrations(dsn string) error {
	if _, err := os.Stat("migrations"); err != nil {
		return fmt.Errorf("sql migrations requested but ./migrations is not readable: %w", err)
	}
	m, err := migrate.New("file://migrations", dsn)
	if err != nil {
		return fmt.Errorf("sql migrations: %w", err)
	}
	if err = m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("sql migrations: %w", err)
	}
	return nil
}
