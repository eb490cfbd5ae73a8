// Package setup loads the application configuration: economics constants for
// the market maker plus server plumbing. Values come from setup.yaml with
// environment-variable overrides for deployment-specific settings.
package setup

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EconomicConfig holds the tunable constants of the market engine. The guard
// band and loss-cap slack are deliberately configuration, not literals baked
// into the math.
type EconomicConfig struct {
	// MarketSeed is the subsidy a creator commits when opening a market.
	MarketSeed float64 `yaml:"market_seed"`
	// DefaultLiquidityB is the LMSR liquidity parameter for new markets.
	DefaultLiquidityB float64 `yaml:"default_liquidity_b"`
	// UnitStake is the fixed cash amount of every bet.
	UnitStake float64 `yaml:"unit_stake"`
	// StartingBalance is granted to every new account.
	StartingBalance float64 `yaml:"starting_balance"`

	// PriceClipLow/PriceClipHigh bound where betting is still allowed:
	// YES bets are rejected once the YES price sits at or above the high
	// clip, NO bets once it sits at or below the low clip.
	PriceClipLow  float64 `yaml:"price_clip_low"`
	PriceClipHigh float64 `yaml:"price_clip_high"`
	// PriceEpsilon widens the clip comparison against float noise.
	PriceEpsilon float64 `yaml:"price_epsilon"`

	// LossCapSlack is added to the collected-money bound before a trade is
	// rejected for exceeding the creator's capped loss.
	LossCapSlack float64 `yaml:"loss_cap_slack"`

	// DeletePolicy is "hide" (soft-delete, no refunds) or "refund"
	// (refund every stake and the seed, then hard-delete).
	DeletePolicy string `yaml:"delete_policy"`
}

// ServerConfig holds HTTP and persistence settings.
type ServerConfig struct {
	Port          string `yaml:"port"`
	DatabaseURL   string `yaml:"database_url"`
	JWTSecret     string `yaml:"jwt_secret"`
	AdminUser     string `yaml:"admin_user"`
	AdminPassword string `yaml:"admin_password"`
	LogLevel      string `yaml:"log_level"`
	LogFile       string `yaml:"log_file"`
	// BetsPerMinute caps how fast a single user may place bets.
	BetsPerMinute int `yaml:"bets_per_minute"`
}

// Config is the full application configuration.
type Config struct {
	Economics EconomicConfig `yaml:"economics"`
	Server    ServerConfig   `yaml:"server"`
}

const (
	DeletePolicyHide   = "hide"
	DeletePolicyRefund = "refund"
)

// Load reads the YAML config at path, then applies .env / environment
// overrides, defaults and validation.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("setup.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("setup.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Defaults returns a validated configuration with the stock economics,
// useful for tests and tooling that run without a setup.yaml.
func Defaults() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Server.DatabaseURL = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Server.JWTSecret = v
	}
	if v := os.Getenv("ADMIN_USER"); v != "" {
		cfg.Server.AdminUser = v
	}
	if v := os.Getenv("ADMIN_PASSWORD"); v != "" {
		cfg.Server.AdminPassword = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Server.LogLevel = v
	}
	if v := os.Getenv("DELETE_POLICY"); v != "" {
		cfg.Economics.DeletePolicy = v
	}
	if v := os.Getenv("MARKET_SEED"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Economics.MarketSeed = f
		}
	}
	if v := os.Getenv("DEFAULT_LIQUIDITY_B"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Economics.DefaultLiquidityB = f
		}
	}
}

func setDefaults(cfg *Config) {
	eco := &cfg.Economics
	if eco.MarketSeed == 0 {
		eco.MarketSeed = 10.0
	}
	if eco.DefaultLiquidityB == 0 {
		eco.DefaultLiquidityB = 5.0
	}
	if eco.UnitStake == 0 {
		eco.UnitStake = 1.0
	}
	if eco.StartingBalance == 0 {
		eco.StartingBalance = 50.0
	}
	if eco.PriceClipLow == 0 {
		eco.PriceClipLow = 0.1
	}
	if eco.PriceClipHigh == 0 {
		eco.PriceClipHigh = 0.9
	}
	if eco.PriceEpsilon == 0 {
		eco.PriceEpsilon = 1e-6
	}
	if eco.DeletePolicy == "" {
		eco.DeletePolicy = DeletePolicyHide
	}

	srv := &cfg.Server
	if srv.Port == "" {
		srv.Port = "8080"
	}
	if srv.DatabaseURL == "" {
		srv.DatabaseURL = "prediction.db"
	}
	if srv.AdminUser == "" {
		srv.AdminUser = "admin"
	}
	if srv.AdminPassword == "" {
		srv.AdminPassword = "admin"
	}
	if srv.LogLevel == "" {
		srv.LogLevel = "info"
	}
	if srv.LogFile == "" {
		srv.LogFile = "logs/friendsmarket.log"
	}
	if srv.BetsPerMinute == 0 {
		srv.BetsPerMinute = 30
	}
}

// Validate rejects configurations the engine cannot run on.
func (c *Config) Validate() error {
	eco := c.Economics
	if eco.DefaultLiquidityB <= 0 {
		return fmt.Errorf("setup: default_liquidity_b must be positive, got %v", eco.DefaultLiquidityB)
	}
	if eco.UnitStake <= 0 {
		return fmt.Errorf("setup: unit_stake must be positive, got %v", eco.UnitStake)
	}
	if eco.MarketSeed < 0 {
		return fmt.Errorf("setup: market_seed must not be negative, got %v", eco.MarketSeed)
	}
	if !(eco.PriceClipLow > 0 && eco.PriceClipHigh < 1 && eco.PriceClipLow < eco.PriceClipHigh) {
		return fmt.Errorf("setup: price clips must satisfy 0 < low < high < 1, got %v/%v",
			eco.PriceClipLow, eco.PriceClipHigh)
	}
	if eco.LossCapSlack < 0 {
		return fmt.Errorf("setup: loss_cap_slack must not be negative, got %v", eco.LossCapSlack)
	}
	switch eco.DeletePolicy {
	case DeletePolicyHide, DeletePolicyRefund:
	default:
		return fmt.Errorf("setup: delete_policy must be %q or %q, got %q",
			DeletePolicyHide, DeletePolicyRefund, eco.DeletePolicy)
	}
	return nil
}
