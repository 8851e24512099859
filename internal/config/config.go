// Package config holds runtime configuration for the trust ledger
// daemon. Values come from defaults, an optional YAML file, then
// environment overrides, in that order.
package config

import (
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Backend    BackendConfig    `yaml:"backend"`
	MarketData MarketDataConfig `yaml:"market_data"`
	Postgres   PostgresConfig   `yaml:"postgres"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
	Simulation SimulationConfig `yaml:"simulation"`
	Monitor    MonitorConfig    `yaml:"monitor"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// BackendConfig configures the external trade sync endpoint.
type BackendConfig struct {
	URL         string        `yaml:"url"`
	AuthToken   string        `yaml:"auth_token"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxAttempts int           `yaml:"max_attempts"`
	RetryDelay  time.Duration `yaml:"retry_delay"`
}

// MarketDataConfig configures the market data HTTP API and price feed.
type MarketDataConfig struct {
	BaseURL        string        `yaml:"base_url"`
	APIKey         string        `yaml:"api_key"`
	WalletAddress  string        `yaml:"wallet_address"`
	Timeout        time.Duration `yaml:"timeout"`
	StreamEndpoint string        `yaml:"stream_endpoint"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type ClickHouseConfig struct {
	DSN string `yaml:"dsn"`
}

// SimulationConfig configures the simulated trading ledger.
type SimulationConfig struct {
	InitialBalance     float64 `yaml:"initial_balance"`
	ConfidenceDivisor  float64 `yaml:"confidence_divisor"`
	SimulatedOwnerAddr string  `yaml:"simulated_owner_addr"`
}

type MonitorConfig struct {
	WatchDuration time.Duration `yaml:"watch_duration"`
	PollInterval  time.Duration `yaml:"poll_interval"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Backend: BackendConfig{
			Timeout:     10 * time.Second,
			MaxAttempts: 3,
			RetryDelay:  2 * time.Second,
		},
		MarketData: MarketDataConfig{
			Timeout: 15 * time.Second,
		},
		Simulation: SimulationConfig{
			InitialBalance:    1_000_000,
			ConfidenceDivisor: 1_000_000,
		},
		Monitor: MonitorConfig{
			WatchDuration: 30 * time.Minute,
			PollInterval:  30 * time.Second,
		},
		Metrics: MetricsConfig{
			Addr: ":9091",
		},
	}
}

// LoadFile reads YAML configuration over the defaults.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overlays secrets and connection strings from the environment.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv("TRUST_BACKEND_URL")); v != "" {
		c.Backend.URL = v
	}
	if v := os.Getenv("TRUST_BACKEND_TOKEN"); v != "" {
		c.Backend.AuthToken = v
	}
	if v := strings.TrimSpace(os.Getenv("TRUST_MARKETDATA_URL")); v != "" {
		c.MarketData.BaseURL = v
	}
	if v := os.Getenv("TRUST_MARKETDATA_API_KEY"); v != "" {
		c.MarketData.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("TRUST_WALLET_ADDRESS")); v != "" {
		c.MarketData.WalletAddress = v
	}
	if v := os.Getenv("TRUST_POSTGRES_DSN"); v != "" {
		c.Postgres.DSN = v
	}
	if v := os.Getenv("TRUST_CLICKHOUSE_DSN"); v != "" {
		c.ClickHouse.DSN = v
	}
}
