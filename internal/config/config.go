// Package config loads the service configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the service configuration.
type Config struct {
	Port string

	// LLM provider
	GeminiAPIKey string
	GeminiModel  string

	// Market data provider
	CoinGeckoAPIKey  string
	CoinGeckoBaseURL string
	HTTPTimeout      time.Duration
	MarketCacheTTL   time.Duration
	RedisAddr        string

	// Portfolio ledger
	PortfolioBackend         string
	PortfolioDSN             string
	PortfolioValidateAmounts bool

	LogLevel string
}

var required = []string{"GEMINI_API_KEY", "COINGECKO_API_KEY", "PORT"}

// Load reads configuration from environment variables. It fails when any
// required key is missing.
func Load() (*Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("GEMINI_MODEL", "gemini-2.0-flash")
	v.SetDefault("COINGECKO_BASE_URL", "https://api.coingecko.com/api/v3")
	v.SetDefault("HTTP_TIMEOUT", "10s")
	v.SetDefault("MARKET_CACHE_TTL", "0s")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("PORTFOLIO_BACKEND", "memory")
	v.SetDefault("PORTFOLIO_DSN", "file::memory:?cache=shared")
	v.SetDefault("PORTFOLIO_VALIDATE_AMOUNTS", true)
	v.SetDefault("LOG_LEVEL", "info")

	var missing []string
	for _, key := range required {
		if strings.TrimSpace(v.GetString(key)) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	cfg := &Config{
		Port:                     v.GetString("PORT"),
		GeminiAPIKey:             v.GetString("GEMINI_API_KEY"),
		GeminiModel:              v.GetString("GEMINI_MODEL"),
		CoinGeckoAPIKey:          v.GetString("COINGECKO_API_KEY"),
		CoinGeckoBaseURL:         strings.TrimRight(v.GetString("COINGECKO_BASE_URL"), "/"),
		HTTPTimeout:              v.GetDuration("HTTP_TIMEOUT"),
		MarketCacheTTL:           v.GetDuration("MARKET_CACHE_TTL"),
		RedisAddr:                v.GetString("REDIS_ADDR"),
		PortfolioBackend:         strings.ToLower(v.GetString("PORTFOLIO_BACKEND")),
		PortfolioDSN:             v.GetString("PORTFOLIO_DSN"),
		PortfolioValidateAmounts: v.GetBool("PORTFOLIO_VALIDATE_AMOUNTS"),
		LogLevel:                 v.GetString("LOG_LEVEL"),
	}

	switch cfg.PortfolioBackend {
	case "memory", "sqlite":
	default:
		return nil, fmt.Errorf("unknown PORTFOLIO_BACKEND %q", cfg.PortfolioBackend)
	}

	return cfg, nil
}
