package config

import (
	"math"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/TokenScout/internal/api/dexscreener"
	"github.com/Alias1177/TokenScout/internal/api/goplus"
	"github.com/Alias1177/TokenScout/internal/database"
	"github.com/Alias1177/TokenScout/internal/risk"
)

// Config holds all application configuration
type Config struct {
	TelegramBotToken      string  `env:"TELEGRAM_BOT_TOKEN"`
	Port                  string  `env:"PORT" envDefault:"8080"`
	LogLevel              string  `env:"LOG_LEVEL" envDefault:"info"`
	RequestTimeout        int     `env:"REQUEST_TIMEOUT" envDefault:"15"` // seconds
	RequestsPerSec        int     `env:"REQUESTS_PER_SEC" envDefault:"5"`
	MaxRetries            int     `env:"MAX_RETRIES" envDefault:"2"`
	DexScreenerBaseURL    string  `env:"DEXSCREENER_BASE_URL"`
	GoPlusBaseURL         string  `env:"GOPLUS_BASE_URL"`
	GoPlusDefaultChain    string  `env:"GOPLUS_DEFAULT_CHAIN" envDefault:"1"`
	MaxConcurrentAnalyses int     `env:"MAX_CONCURRENT_ANALYSES" envDefault:"8"`
	DBHost                string  `env:"DB_HOST"`
	DBPort                string  `env:"DB_PORT" envDefault:"5432"`
	DBUser                string  `env:"DB_USER"`
	DBPassword            string  `env:"DB_PASSWORD"`
	DBName                string  `env:"DB_NAME"`
	DBSSLMode             string  `env:"DB_SSLMODE" envDefault:"disable"`
	PushgatewayURL        string  `env:"PUSHGATEWAY_URL"`
	RiskMaxBuyTax         float64 `env:"RISK_MAX_BUY_TAX" envDefault:"5"`
	RiskMaxSellTax        float64 `env:"RISK_MAX_SELL_TAX" envDefault:"5"`
	RiskMinLiquidity      float64 `env:"RISK_MIN_LIQUIDITY" envDefault:"100000"`
	RiskMinMarketCap      float64 `env:"RISK_MIN_MARKET_CAP" envDefault:"1000000"`
	RiskMinVolume         float64 `env:"RISK_MIN_VOLUME" envDefault:"50000"`
	RiskHighPotentialAt   int     `env:"RISK_HIGH_POTENTIAL_AT" envDefault:"80"`
	RiskPossibleAt        int     `env:"RISK_POSSIBLE_AT" envDefault:"60"`
}

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	return FromEnv(), nil
}

// FromEnv reads the configuration from the process environment only
func FromEnv() *Config {
	defaults := risk.DefaultThresholds()
	var cfg Config

	cfg.TelegramBotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.Port = getEnvWithDefault("PORT", "8080")
	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", "info")
	cfg.RequestTimeout = getEnvIntWithDefault("REQUEST_TIMEOUT", 15)
	cfg.RequestsPerSec = getEnvIntWithDefault("REQUESTS_PER_SEC", 5)
	cfg.MaxRetries = getEnvIntWithDefault("MAX_RETRIES", 2)
	cfg.DexScreenerBaseURL = getEnvWithDefault("DEXSCREENER_BASE_URL", dexscreener.DefaultBaseURL)
	cfg.GoPlusBaseURL = getEnvWithDefault("GOPLUS_BASE_URL", goplus.DefaultBaseURL)
	cfg.GoPlusDefaultChain = getEnvWithDefault("GOPLUS_DEFAULT_CHAIN", "1")
	cfg.MaxConcurrentAnalyses = getEnvIntWithDefault("MAX_CONCURRENT_ANALYSES", 8)
	cfg.DBHost = os.Getenv("DB_HOST")
	cfg.DBPort = getEnvWithDefault("DB_PORT", "5432")
	cfg.DBUser = os.Getenv("DB_USER")
	cfg.DBPassword = os.Getenv("DB_PASSWORD")
	cfg.DBName = os.Getenv("DB_NAME")
	cfg.DBSSLMode = getEnvWithDefault("DB_SSLMODE", "disable")
	cfg.PushgatewayURL = os.Getenv("PUSHGATEWAY_URL")
	cfg.RiskMaxBuyTax = getEnvFloatWithDefault("RISK_MAX_BUY_TAX", defaults.MaxBuyTaxPercent)
	cfg.RiskMaxSellTax = getEnvFloatWithDefault("RISK_MAX_SELL_TAX", defaults.MaxSellTaxPercent)
	cfg.RiskMinLiquidity = getEnvFloatWithDefault("RISK_MIN_LIQUIDITY", defaults.MinLiquidityUSD)
	cfg.RiskMinMarketCap = getEnvFloatWithDefault("RISK_MIN_MARKET_CAP", defaults.MinMarketCapUSD)
	cfg.RiskMinVolume = getEnvFloatWithDefault("RISK_MIN_VOLUME", defaults.MinVolume24hUSD)
	cfg.RiskHighPotentialAt = getEnvIntWithDefault("RISK_HIGH_POTENTIAL_AT", defaults.HighPotentialAt)
	cfg.RiskPossibleAt = getEnvIntWithDefault("RISK_POSSIBLE_AT", defaults.PossibleAt)

	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 15
	}
	if cfg.RequestsPerSec <= 0 {
		cfg.RequestsPerSec = 5
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.MaxConcurrentAnalyses <= 0 {
		cfg.MaxConcurrentAnalyses = 8
	}

	return &cfg
}

// Timeout returns REQUEST_TIMEOUT as a duration
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// DatabaseEnabled reports whether the user registry is configured
func (c *Config) DatabaseEnabled() bool {
	return c.DBHost != ""
}

// Database returns the registry connection parameters
func (c *Config) Database() database.ConnectionParams {
	return database.ConnectionParams{
		Host:     c.DBHost,
		Port:     c.DBPort,
		User:     c.DBUser,
		Password: c.DBPassword,
		DBName:   c.DBName,
		SSLMode:  c.DBSSLMode,
	}
}

// RiskThresholds returns the scoring thresholds.
// Invalid values fall back to the stock constants.
func (c *Config) RiskThresholds() risk.Thresholds {
	th := risk.DefaultThresholds()

	setFloat := func(dst *float64, v float64, key string) {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			log.Warn().Str("key", key).Float64("value", v).Msg("Invalid threshold ignored")
			return
		}
		*dst = v
	}
	setFloat(&th.MaxBuyTaxPercent, c.RiskMaxBuyTax, "RISK_MAX_BUY_TAX")
	setFloat(&th.MaxSellTaxPercent, c.RiskMaxSellTax, "RISK_MAX_SELL_TAX")
	setFloat(&th.MinLiquidityUSD, c.RiskMinLiquidity, "RISK_MIN_LIQUIDITY")
	setFloat(&th.MinMarketCapUSD, c.RiskMinMarketCap, "RISK_MIN_MARKET_CAP")
	setFloat(&th.MinVolume24hUSD, c.RiskMinVolume, "RISK_MIN_VOLUME")

	maxScore := 5 * risk.PointsPerFactor
	high, possible := c.RiskHighPotentialAt, c.RiskPossibleAt
	if possible <= 0 || high > maxScore || possible > high {
		log.Warn().Int("high_potential_at", high).Int("possible_at", possible).Msg("Invalid tier cut-offs, using defaults")
		return th
	}
	th.HighPotentialAt = high
	th.PossibleAt = possible

	return th
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
