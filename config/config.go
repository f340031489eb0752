package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Provider  ProviderConfig  `json:"provider"`
	Cache     CacheConfig     `json:"cache"`
	Scan      ScanConfig      `json:"scan"`
	Valuation ValuationConfig `json:"valuation"`
	Output    OutputConfig    `json:"output"`
}

// ProviderConfig holds configuration for the market data provider
type ProviderConfig struct {
	RequestTimeout int    `json:"request_timeout_seconds"`
	MaxRetries     int    `json:"max_retries"`
	SymbolSuffix   string `json:"symbol_suffix"`
}

// CacheConfig holds configuration for the provider response cache
type CacheConfig struct {
	Enabled       bool   `json:"enabled"`
	RedisAddr     string `json:"redis_addr"` // empty means in-memory cache
	RedisPassword string `json:"redis_password"`
	TTLMinutes    int    `json:"ttl_minutes"`
}

// ScanConfig holds configuration for the batch scan
type ScanConfig struct {
	MaxWorkers        int     `json:"max_workers"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	TickerFile        string  `json:"ticker_file"`
}

// ValuationConfig holds the scan-level valuation parameters
type ValuationConfig struct {
	BondYieldPct float64 `json:"bond_yield_pct"`
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	ShowColors   bool   `json:"show_colors"`
	ShowProgress bool   `json:"show_progress"`
	SortBy       string `json:"sort_by"` // "discount", "peg", "health", "ticker"
	MaxResults   int    `json:"max_results"`
	CSVFile      string `json:"csv_file"`
}

// NewDefaultConfig creates a new configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Provider: ProviderConfig{
			RequestTimeout: 10,
			MaxRetries:     3,
			SymbolSuffix:   ".IS",
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTLMinutes: 15,
		},
		Scan: ScanConfig{
			MaxWorkers:        4,
			RequestsPerSecond: 2,
		},
		Valuation: ValuationConfig{
			BondYieldPct: 25.0,
		},
		Output: OutputConfig{
			ShowColors:   true,
			ShowProgress: true,
			SortBy:       "discount",
			MaxResults:   0,
		},
	}
}

// LoadEnv applies SCREENER_* environment overrides, reading a .env file
// first when one exists.
func (c *Config) LoadEnv() {
	godotenv.Load()

	if v := os.Getenv("SCREENER_REDIS_ADDR"); v != "" {
		c.Cache.RedisAddr = v
	}
	if v := os.Getenv("SCREENER_REDIS_PASSWORD"); v != "" {
		c.Cache.RedisPassword = v
	}
	if v := os.Getenv("SCREENER_CACHE_TTL_MINUTES"); v != "" {
		if minutes, err := strconv.Atoi(v); err == nil && minutes > 0 {
			c.Cache.TTLMinutes = minutes
		}
	}
	if v := os.Getenv("SCREENER_SYMBOL_SUFFIX"); v != "" {
		c.Provider.SymbolSuffix = v
	}
	if v := os.Getenv("SCREENER_BOND_YIELD_PCT"); v != "" {
		if pct, err := strconv.ParseFloat(v, 64); err == nil && pct > 0 {
			c.Valuation.BondYieldPct = pct
		}
	}
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if c.Provider.RequestTimeout <= 0 {
		return fmt.Errorf("provider request timeout must be positive, got %d", c.Provider.RequestTimeout)
	}
	if c.Provider.MaxRetries <= 0 {
		return fmt.Errorf("provider max retries must be positive, got %d", c.Provider.MaxRetries)
	}
	if c.Scan.MaxWorkers <= 0 {
		return fmt.Errorf("scan workers must be positive, got %d", c.Scan.MaxWorkers)
	}
	if c.Scan.RequestsPerSecond <= 0 {
		return fmt.Errorf("scan requests per second must be positive, got %f", c.Scan.RequestsPerSecond)
	}
	if c.Valuation.BondYieldPct <= 0 {
		return fmt.Errorf("bond yield must be positive, got %f", c.Valuation.BondYieldPct)
	}
	if c.Cache.Enabled && c.Cache.TTLMinutes <= 0 {
		return fmt.Errorf("cache TTL must be positive, got %d", c.Cache.TTLMinutes)
	}

	switch c.Output.SortBy {
	case "discount", "peg", "health", "ticker":
	default:
		return fmt.Errorf("invalid sort key %q (use discount, peg, health or ticker)", c.Output.SortBy)
	}

	return nil
}
