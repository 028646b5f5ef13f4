// Package config loads the funding ledger configuration from a YAML file
// with environment overrides. A .env file in the working directory is loaded
// first so local runs need no exported variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/FundPool-Network/funding_ledger/pkg/logger"
)

// Config is the root configuration.
type Config struct {
	Server   ServerConfig         `yaml:"server"`
	Database DatabaseConfig       `yaml:"database"`
	Logging  logger.LoggingConfig `yaml:"logging"`
	Custody  CustodyConfig        `yaml:"custody"`
	Redis    RedisConfig          `yaml:"redis"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host              string   `yaml:"host" env:"SERVER_HOST"`
	Port              int      `yaml:"port" env:"SERVER_PORT"`
	ReadTimeoutSecs   int      `yaml:"read_timeout_secs" env:"SERVER_READ_TIMEOUT_SECS"`
	WriteTimeoutSecs  int      `yaml:"write_timeout_secs" env:"SERVER_WRITE_TIMEOUT_SECS"`
	IdleTimeoutSecs   int      `yaml:"idle_timeout_secs" env:"SERVER_IDLE_TIMEOUT_SECS"`
	AllowedOrigins    []string `yaml:"allowed_origins"`
	RateLimitPerSec   int      `yaml:"rate_limit_per_sec" env:"SERVER_RATE_LIMIT_PER_SEC"`
	RateLimitBurst    int      `yaml:"rate_limit_burst" env:"SERVER_RATE_LIMIT_BURST"`
	AuditLogPath      string   `yaml:"audit_log_path" env:"SERVER_AUDIT_LOG_PATH"`
	ShutdownGraceSecs int      `yaml:"shutdown_grace_secs" env:"SERVER_SHUTDOWN_GRACE_SECS"`
}

// DatabaseConfig configures persistence. An empty driver selects the
// in-memory stores.
type DatabaseConfig struct {
	Driver          string `yaml:"driver" env:"DATABASE_DRIVER"`
	DSN             string `yaml:"dsn" env:"DATABASE_DSN"`
	MaxOpenConns    int    `yaml:"max_open_conns" env:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns    int    `yaml:"max_idle_conns" env:"DATABASE_MAX_IDLE_CONNS"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime_secs" env:"DATABASE_CONN_MAX_LIFETIME_SECS"`
}

// CustodyConfig anchors the ledger to its custody token contract and the
// identities it trusts.
type CustodyConfig struct {
	RPCURL        string `yaml:"rpc_url" env:"CUSTODY_RPC_URL"`
	TokenContract string `yaml:"token_contract" env:"CUSTODY_TOKEN_CONTRACT"`
	PoolAddress   string `yaml:"pool_address" env:"CUSTODY_POOL_ADDRESS"`
	AdminAddress  string `yaml:"admin_address" env:"CUSTODY_ADMIN_ADDRESS"`
	TimeoutSecs   int    `yaml:"timeout_secs" env:"CUSTODY_TIMEOUT_SECS"`
}

// RedisConfig configures the optional event publisher. An empty Addr
// disables it.
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
	Channel  string `yaml:"channel" env:"REDIS_CHANNEL"`
}

// Load reads config/fundledger.yaml relative to the working directory.
func Load() (*Config, error) {
	return LoadFromPath(filepath.Join("config", "fundledger.yaml"))
}

// LoadFromPath reads the given YAML file, then applies .env and environment
// overrides. A missing file is not an error; defaults plus environment make
// a runnable configuration.
func LoadFromPath(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// fall through to env-only configuration
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := envdecode.Decode(cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("apply env overrides: %w", err)
	}

	if cfg.Custody.AdminAddress == "" {
		return nil, fmt.Errorf("custody admin address is required")
	}
	if cfg.Custody.PoolAddress == "" {
		return nil, fmt.Errorf("custody pool address is required")
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8080,
			ReadTimeoutSecs:   15,
			WriteTimeoutSecs:  15,
			IdleTimeoutSecs:   60,
			AllowedOrigins:    []string{"*"},
			RateLimitPerSec:   50,
			RateLimitBurst:    100,
			ShutdownGraceSecs: 10,
		},
		Logging: logger.LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Custody: CustodyConfig{
			TimeoutSecs: 30,
		},
	}
}
