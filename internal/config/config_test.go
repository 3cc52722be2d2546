package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("JWT_SECRET_KEY", "jwt-secret")

	cfg, err := Parse()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "https://api.eu.crosschexcloud.com/", cfg.CrossChex.BaseURL)
	assert.Equal(t, 100, cfg.CrossChex.PerPage)
	assert.Equal(t, 5*time.Minute, cfg.Cron.DashboardInterval)
	assert.Equal(t, int32(25), cfg.Database.MaxConns)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.App.AllowedOrigins)
}

func TestParse_Overrides(t *testing.T) {
	t.Setenv("APP_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("CROSSCHEX_PER_PAGE", "50")
	t.Setenv("CRON_DASHBOARD_INTERVAL", "10m")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.App.AllowedOrigins)
	assert.Equal(t, 50, cfg.CrossChex.PerPage)
	assert.Equal(t, 10*time.Minute, cfg.Cron.DashboardInterval)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestParse_InvalidNumber(t *testing.T) {
	t.Setenv("APP_PORT", "not-a-port")

	_, err := Parse()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("JWT_SECRET_KEY", "jwt-secret")
	valid := func(t *testing.T) *Config {
		cfg, err := Parse()
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"missing db password", func(c *Config) { c.Database.Password = "" }, "DB_PASSWORD"},
		{"missing jwt secret", func(c *Config) { c.JWT.Secret = "" }, "JWT_SECRET_KEY"},
		{"bad access expiration", func(c *Config) { c.JWT.AccessExpiration = "soon" }, "JWT_ACCESS_EXPIRATION_TIME"},
		{"page too large", func(c *Config) { c.CrossChex.PerPage = 500 }, "CROSSCHEX_PER_PAGE"},
		{"no concurrency", func(c *Config) { c.CrossChex.Concurrency = 0 }, "CROSSCHEX_CONCURRENCY"},
		{"interval too short", func(c *Config) { c.Cron.DashboardInterval = time.Second }, "CRON_DASHBOARD_INTERVAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid(t)
			tt.mutate(cfg)

			err := cfg.Validate()

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDatabaseURL(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Host:     "db",
		Port:     5433,
		User:     "ponto",
		Password: "p@ss word",
		Name:     "ponto",
		SSLMode:  "disable",
	}}

	assert.Equal(t, "postgres://ponto:p%40ss%20word@db:5433/ponto?sslmode=disable", cfg.DatabaseURL())
}
