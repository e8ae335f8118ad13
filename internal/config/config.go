// Package config loads gateway configuration from an optional YAML file with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the lottery gateway.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	Redis        RedisConfig        `yaml:"redis"`
	Logging      LoggingConfig      `yaml:"logging"`
	Draw         DrawConfig         `yaml:"draw"`
	NumberSource NumberSourceConfig `yaml:"number_source"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Addr returns the host:port listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig selects the persistence backend. An empty DSN keeps the
// gateway on in-memory stores.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// RedisConfig configures the optional announcement/winning-number cache. An
// empty Addr disables it.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// DrawConfig pins the weekly draw instant and the settlement cadence.
type DrawConfig struct {
	Weekday        string `yaml:"weekday"`
	Hour           int    `yaml:"hour"`
	Minute         int    `yaml:"minute"`
	Timezone       string `yaml:"timezone"`
	SettlementCron string `yaml:"settlement_cron"`
}

// NumberSourceConfig points at the external random-number service.
type NumberSourceConfig struct {
	URL        string        `yaml:"url"`
	Timeout    time.Duration `yaml:"timeout"`
	FetchCount int           `yaml:"fetch_count"`
}

// Default returns the built-in configuration: memory stores, Saturday noon
// UTC draws, hourly settlement.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Draw: DrawConfig{
			Weekday:        "Saturday",
			Hour:           12,
			Minute:         0,
			Timezone:       "UTC",
			SettlementCron: "@hourly",
		},
		NumberSource: NumberSourceConfig{
			Timeout:    5 * time.Second,
			FetchCount: 25,
		},
	}
}

// Load reads the YAML file at path (skipped when path is empty or missing)
// and applies environment overrides on top of the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the gateway cannot run with.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if _, err := parseWeekday(c.Draw.Weekday); err != nil {
		return err
	}
	if c.Draw.Hour < 0 || c.Draw.Hour > 23 {
		return fmt.Errorf("invalid draw hour %d", c.Draw.Hour)
	}
	if c.Draw.Minute < 0 || c.Draw.Minute > 59 {
		return fmt.Errorf("invalid draw minute %d", c.Draw.Minute)
	}
	if _, err := time.LoadLocation(c.Draw.Timezone); err != nil {
		return fmt.Errorf("invalid draw timezone %q: %w", c.Draw.Timezone, err)
	}
	if c.NumberSource.FetchCount <= 0 {
		return fmt.Errorf("invalid number source fetch count %d", c.NumberSource.FetchCount)
	}
	return nil
}

// DrawWeekday returns the configured weekday. Call after Validate.
func (c Config) DrawWeekday() time.Weekday {
	day, _ := parseWeekday(c.Draw.Weekday)
	return day
}

// DrawLocation returns the configured timezone. Call after Validate.
func (c Config) DrawLocation() *time.Location {
	loc, _ := time.LoadLocation(c.Draw.Timezone)
	return loc
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Host, "LOTTO_SERVER_HOST")
	setInt(&cfg.Server.Port, "LOTTO_SERVER_PORT")
	setString(&cfg.Database.DSN, "LOTTO_DATABASE_DSN")
	setString(&cfg.Redis.Addr, "LOTTO_REDIS_ADDR")
	setString(&cfg.Redis.Password, "LOTTO_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "LOTTO_REDIS_DB")
	setString(&cfg.Logging.Level, "LOTTO_LOG_LEVEL")
	setString(&cfg.Logging.Format, "LOTTO_LOG_FORMAT")
	setString(&cfg.Draw.Weekday, "LOTTO_DRAW_WEEKDAY")
	setInt(&cfg.Draw.Hour, "LOTTO_DRAW_HOUR")
	setInt(&cfg.Draw.Minute, "LOTTO_DRAW_MINUTE")
	setString(&cfg.Draw.Timezone, "LOTTO_DRAW_TIMEZONE")
	setString(&cfg.Draw.SettlementCron, "LOTTO_SETTLEMENT_CRON")
	setString(&cfg.NumberSource.URL, "LOTTO_NUMBER_SOURCE_URL")
	setInt(&cfg.NumberSource.FetchCount, "LOTTO_NUMBER_SOURCE_FETCH_COUNT")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func parseWeekday(name string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if name == d.String() {
			return d, nil
		}
	}
	return 0, fmt.Errorf("invalid draw weekday %q", name)
}
