package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Server.Port != "8080" {
		t.Fatalf("unexpected default port %q", cfg.Server.Port)
	}
	if cfg.DatabaseDSN != "file:packlist.db" {
		t.Fatalf("unexpected default dsn %q", cfg.DatabaseDSN)
	}
	if cfg.UploadDir != "uploads" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Migrations {
		t.Fatal("migrations must default off")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("DATABASE_DSN", "postgres://localhost/packlist")
	t.Setenv("MIGRATIONS", "true")
	t.Setenv("CSV_DELIMITER", ";")
	t.Setenv("READ_TIMEOUT", "not-a-number")

	cfg := Load()
	if cfg.Server.Port != "9999" {
		t.Fatalf("env port not applied: %q", cfg.Server.Port)
	}
	if cfg.DatabaseDSN != "postgres://localhost/packlist" {
		t.Fatalf("env dsn not applied: %q", cfg.DatabaseDSN)
	}
	if !cfg.Migrations || cfg.CSVDelimiter != ";" {
		t.Fatalf("env values not applied: %+v", cfg)
	}
	if cfg.Server.ReadTimeout != 15 {
		t.Fatalf("malformed int must fall back to default, got %d", cfg.Server.ReadTimeout)
	}
}
