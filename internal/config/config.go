package config

import (
	"log"
	"os"
	"strconv"
)

type ServerConfig struct {
	Port         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

type Config struct {
	Server        ServerConfig
	DatabaseDSN   string
	Migrations    bool
	UploadDir     string
	AdminUser     string
	AdminPass     string
	AdminPassHash string
	SessionSecret string
	CSVDelimiter  string
	LogLevel      string
}

// Load loads configuration from environment with sensible defaults.
// Precedence: explicit env var > .env file (if loaded by the caller) > default.
func Load() Config {
	return Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvInt("READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("WRITE_TIMEOUT", 30),
			IdleTimeout:  getEnvInt("IDLE_TIMEOUT", 60),
		},
		DatabaseDSN:   getEnv("DATABASE_DSN", "file:packlist.db"),
		Migrations:    ParseBool("MIGRATIONS", false),
		UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
		AdminUser:     getEnv("ADMIN_USER", "admin"),
		AdminPass:     getEnv("ADMIN_PASS", "admin"),
		AdminPassHash: os.Getenv("ADMIN_PASS_HASH"),
		SessionSecret: getEnv("SESSION_SECRET", "devsessionsecret"),
		CSVDelimiter:  os.Getenv("CSV_DELIMITER"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("invalid integer for %s: %s", key, v)
			return def
		}
		return n
	}
	return def
}

// ParseBool reads an env var as bool with default.
func ParseBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("invalid boolean for %s: %s", key, v)
			return def
		}
		return b
	}
	return def
}
