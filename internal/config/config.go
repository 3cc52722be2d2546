package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig       `envPrefix:"APP_"`
	Database  DatabaseConfig  `envPrefix:"DB_"`
	JWT       JWTConfig       `envPrefix:"JWT_"`
	CrossChex CrossChexConfig `envPrefix:"CROSSCHEX_"`
	Redis     RedisConfig     `envPrefix:"REDIS_"`
	Cron      CronConfig      `envPrefix:"CRON_"`
	Seed      SeedConfig      `envPrefix:"SEED_"`
}

type DatabaseConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"5432"`
	User     string `env:"USER" envDefault:"postgres"`
	Password string `env:"PASSWORD"`
	Name     string `env:"NAME" envDefault:"ponto"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"`
	MaxConns int32  `env:"MAX_CONNS" envDefault:"25"`
	MinConns int32  `env:"MIN_CONNS" envDefault:"5"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string `env:"SECRET_KEY"`
	AccessExpiration string `env:"ACCESS_EXPIRATION_TIME" envDefault:"12h"`
}

// AppConfig holds application configuration
type AppConfig struct {
	Port            int           `env:"PORT" envDefault:"8080"`
	Env             string        `env:"ENV" envDefault:"development"`
	Version         string        `env:"VERSION" envDefault:"v1.0.0"`
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"60s"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// CrossChexConfig configures the attendance provider client.
type CrossChexConfig struct {
	BaseURL     string        `env:"API_URL" envDefault:"https://api.eu.crosschexcloud.com/"`
	PerPage     int           `env:"PER_PAGE" envDefault:"100"`
	Concurrency int           `env:"CONCURRENCY" envDefault:"4"`
	Timeout     time.Duration `env:"TIMEOUT" envDefault:"30s"`
	TokenSkew   time.Duration `env:"TOKEN_SKEW" envDefault:"60s"`
}

// RedisConfig is optional: with an empty Addr provider tokens stay in memory.
type RedisConfig struct {
	Addr      string `env:"ADDR"`
	Password  string `env:"PASSWORD"`
	DB        int    `env:"DB" envDefault:"0"`
	KeyPrefix string `env:"KEY_PREFIX" envDefault:"ponto:crosschex:token:"`
}

type CronConfig struct {
	DashboardInterval time.Duration `env:"DASHBOARD_INTERVAL" envDefault:"5m"`
	DashboardTimeout  time.Duration `env:"DASHBOARD_TIMEOUT" envDefault:"2m"`
}

// SeedConfig is read by cmd/seed only.
type SeedConfig struct {
	Email     string `env:"EMAIL"`
	Name      string `env:"NAME" envDefault:"Administrador"`
	Password  string `env:"PASSWORD"`
	APIKey    string `env:"API_KEY"`
	APISecret string `env:"API_SECRET"`
}

// Load reads an optional .env file, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	} else if err != nil {
		slog.Debug("no .env file, using process environment")
	}

	cfg, err := Parse()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Parse fills a Config from the process environment without validating it.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if errors.As(err, &aggErr) && len(aggErr.Errors) > 0 {
			return nil, fmt.Errorf("invalid environment: %w", aggErr.Errors[0])
		}
		return nil, fmt.Errorf("invalid environment: %w", err)
	}
	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("JWT_ACCESS_EXPIRATION_TIME is invalid: %w", err)
	}
	if _, err := url.ParseRequestURI(c.CrossChex.BaseURL); err != nil {
		return fmt.Errorf("CROSSCHEX_API_URL is invalid: %w", err)
	}
	if c.CrossChex.PerPage < 1 || c.CrossChex.PerPage > 100 {
		return fmt.Errorf("CROSSCHEX_PER_PAGE must be between 1 and 100")
	}
	if c.CrossChex.Concurrency < 1 {
		return fmt.Errorf("CROSSCHEX_CONCURRENCY must be at least 1")
	}
	if c.Cron.DashboardInterval < time.Minute {
		return fmt.Errorf("CRON_DASHBOARD_INTERVAL must be at least 1m")
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("DB_MIN_CONNS must not exceed DB_MAX_CONNS")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
		Path:     c.Database.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.Database.SSLMode),
	}
	return u.String()
}
