package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	c := Load()
	if c.AppPort != "8080" {
		t.Errorf("AppPort = %q, want 8080", c.AppPort)
	}
	if c.StoreBackend != StoreFile {
		t.Errorf("StoreBackend = %q, want %q", c.StoreBackend, StoreFile)
	}
	if c.DataFile != "data.json" {
		t.Errorf("DataFile = %q", c.DataFile)
	}
	if c.RedisAddr != "" {
		t.Errorf("RedisAddr = %q, want empty", c.RedisAddr)
	}
	if c.IdempTTLSecs != 300 {
		t.Errorf("IdempTTLSecs = %d, want 300", c.IdempTTLSecs)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/test.db")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("IDEMPOTENCY_TTL_SECONDS", "60")
	t.Setenv("RESPONSE_DELAY_MS", "250")

	c := Load()
	if c.AppPort != "9090" || c.StoreBackend != StoreSQLite || c.SQLitePath != "/tmp/test.db" {
		t.Errorf("config = %+v", c)
	}
	if c.RedisAddr != "localhost:6379" || c.RedisDB != 3 {
		t.Errorf("redis config = %q/%d", c.RedisAddr, c.RedisDB)
	}
	if c.IdempTTLSecs != 60 || c.ResponseDelayMS != 250 {
		t.Errorf("ttl/delay = %d/%d", c.IdempTTLSecs, c.ResponseDelayMS)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoad_BadIntFallsBack(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	if c := Load(); c.RedisDB != 0 {
		t.Errorf("RedisDB = %d, want 0", c.RedisDB)
	}
}

func TestValidate_Errors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty port", func(c *Config) { c.AppPort = "" }},
		{"bad port", func(c *Config) { c.AppPort = "99999" }},
		{"unknown backend", func(c *Config) { c.StoreBackend = "postgres" }},
		{"file backend without path", func(c *Config) { c.DataFile = "" }},
		{"sqlite backend without path", func(c *Config) { c.StoreBackend = StoreSQLite; c.SQLitePath = "" }},
		{"zero ttl", func(c *Config) { c.IdempTTLSecs = 0 }},
		{"negative delay", func(c *Config) { c.ResponseDelayMS = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Load()
			tc.mutate(c)
			if err := c.Validate(); err == nil {
				t.Errorf("Validate() = nil, want error")
			}
		})
	}
}
