package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

type Config struct {
	AppPort string

	// StoreBackend selects the persistence layer: "file" (default) or "sqlite".
	StoreBackend string
	DataFile     string
	SQLitePath   string

	// RedisAddr enables the idempotency middleware when non-empty.
	RedisAddr string
	RedisDB   int

	IdempTTLSecs int

	// ResponseDelayMS artificially delays every response, for client testing.
	ResponseDelayMS int
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func Load() *Config {
	// a missing .env is fine; real env vars still win
	_ = godotenv.Load()

	return &Config{
		AppPort: getenv("APP_PORT", "8080"),

		StoreBackend: getenv("STORE_BACKEND", StoreFile),
		DataFile:     getenv("DATA_FILE", "data.json"),
		SQLitePath:   getenv("SQLITE_PATH", "loans.db"),

		RedisAddr: getenv("REDIS_ADDR", ""),
		RedisDB:   getenvInt("REDIS_DB", 0),

		IdempTTLSecs: getenvInt("IDEMPOTENCY_TTL_SECONDS", 300),

		ResponseDelayMS: getenvInt("RESPONSE_DELAY_MS", 0),
	}
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if _, err := net.LookupPort("tcp", c.AppPort); err != nil {
		return fmt.Errorf("invalid APP_PORT %q: %w", c.AppPort, err)
	}
	switch c.StoreBackend {
	case StoreFile:
		if c.DataFile == "" {
			return errors.New("missing DATA_FILE")
		}
	case StoreSQLite:
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q (want %q or %q)", c.StoreBackend, StoreFile, StoreSQLite)
	}
	if c.IdempTTLSecs <= 0 {
		return errors.New("IDEMPOTENCY_TTL_SECONDS must be positive")
	}
	if c.ResponseDelayMS < 0 {
		return errors.New("RESPONSE_DELAY_MS must not be negative")
	}
	return nil
}
