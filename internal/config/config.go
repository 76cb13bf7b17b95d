// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Router    RouterConfig    `mapstructure:"router"`
	Sources   SourcesConfig   `mapstructure:"sources"`
	Market    MarketConfig    `mapstructure:"market"`
	Split     SplitConfig     `mapstructure:"split"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// RouterConfig holds quote aggregation settings.
type RouterConfig struct {
	DefaultChain    string        `mapstructure:"default_chain"`
	SlippagePct     float64       `mapstructure:"slippage_pct"`
	QuoteTimeout    time.Duration `mapstructure:"quote_timeout"`
	QuoteValiditySec int          `mapstructure:"quote_validity_sec"`
}

// SlippageDecimal returns the slippage tolerance as decimal.Decimal.
func (c *RouterConfig) SlippageDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.SlippagePct)
}

// SourceConfig holds settings for a single aggregator source.
type SourceConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	BaseURL        string  `mapstructure:"base_url"`
	APIKey         string  `mapstructure:"api_key"`
	RequestsPerSec float64 `mapstructure:"requests_per_sec"`
}

// SourcesConfig holds per-aggregator settings.
type SourcesConfig struct {
	OneInch  SourceConfig `mapstructure:"oneinch"`
	Paraswap SourceConfig `mapstructure:"paraswap"`
	ZeroX    SourceConfig `mapstructure:"zerox"`
}

// MarketConfig holds market data (native price, gas price) settings.
type MarketConfig struct {
	BinanceAPIURL      string        `mapstructure:"binance_api_url"`
	BinanceWSURL       string        `mapstructure:"binance_ws_url"`
	NativeSymbol       string        `mapstructure:"native_symbol"`
	EthereumRPCURL     string        `mapstructure:"ethereum_rpc_url"`
	PriceCacheTTL      time.Duration `mapstructure:"price_cache_ttl"`
	GasCacheTTL        time.Duration `mapstructure:"gas_cache_ttl"`
	StaticNativePrice  float64       `mapstructure:"static_native_price_usd"`
	StaticGasPriceGwei float64       `mapstructure:"static_gas_price_gwei"`
}

// StaticNativePriceDecimal returns the fallback native price as decimal.Decimal.
func (c *MarketConfig) StaticNativePriceDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.StaticNativePrice)
}

// StaticGasPriceGweiDecimal returns the fallback gas price as decimal.Decimal.
func (c *MarketConfig) StaticGasPriceGweiDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.StaticGasPriceGwei)
}

// SplitConfig holds order-splitting thresholds.
type SplitConfig struct {
	MinTradeSizeUSD  float64 `mapstructure:"min_trade_size_usd"`
	MaxVenues        int     `mapstructure:"max_venues"`
	MinAllocationPct float64 `mapstructure:"min_allocation_pct"`
}

// MinTradeSizeDecimal returns the minimum split size as decimal.Decimal.
func (c *SplitConfig) MinTradeSizeDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MinTradeSizeUSD)
}

// MinAllocationDecimal returns the minimum allocation pct as decimal.Decimal.
func (c *SplitConfig) MinAllocationDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MinAllocationPct)
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string `mapstructure:"otlp_headers"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("DEXR")
	v.AutomaticEnv()

	// Bind env vars to config keys
	bindEnvVars(v)

	// Set defaults
	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "DEXR_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "DEXR_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "DEXR_LOG_LEVEL", "LOG_LEVEL")

	// Router
	v.BindEnv("router.default_chain", "DEXR_DEFAULT_CHAIN")
	v.BindEnv("router.slippage_pct", "DEXR_SLIPPAGE_PCT")

	// Sources
	v.BindEnv("sources.oneinch.api_key", "DEXR_SOURCES_ONEINCH_API_KEY", "ONEINCH_API_KEY")
	v.BindEnv("sources.zerox.api_key", "DEXR_SOURCES_ZEROX_API_KEY", "ZEROX_API_KEY")
	v.BindEnv("sources.oneinch.base_url", "DEXR_SOURCES_ONEINCH_URL")
	v.BindEnv("sources.paraswap.base_url", "DEXR_SOURCES_PARASWAP_URL")
	v.BindEnv("sources.zerox.base_url", "DEXR_SOURCES_ZEROX_URL")

	// Market
	v.BindEnv("market.ethereum_rpc_url", "DEXR_ETH_RPC_URL", "ETH_RPC_URL")
	v.BindEnv("market.binance_api_url", "DEXR_BINANCE_API_URL")
	v.BindEnv("market.binance_ws_url", "DEXR_BINANCE_WS_URL")
	v.BindEnv("market.static_native_price_usd", "DEXR_NATIVE_PRICE_USD")
	v.BindEnv("market.static_gas_price_gwei", "DEXR_GAS_PRICE_GWEI")

	// Telemetry
	v.BindEnv("telemetry.enabled", "DEXR_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "DEXR_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "DEXR_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "dex-router")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Router defaults
	v.SetDefault("router.default_chain", "ethereum")
	v.SetDefault("router.slippage_pct", 0.5)
	v.SetDefault("router.quote_timeout", "10s")
	v.SetDefault("router.quote_validity_sec", 30)

	// Source defaults
	v.SetDefault("sources.oneinch.enabled", true)
	v.SetDefault("sources.oneinch.base_url", "https://api.1inch.dev/swap/v6.0")
	v.SetDefault("sources.oneinch.requests_per_sec", 1.0)
	v.SetDefault("sources.paraswap.enabled", true)
	v.SetDefault("sources.paraswap.base_url", "https://apiv5.paraswap.io")
	v.SetDefault("sources.paraswap.requests_per_sec", 10.0)
	v.SetDefault("sources.zerox.enabled", true)
	v.SetDefault("sources.zerox.base_url", "https://api.0x.org/swap/v1")
	v.SetDefault("sources.zerox.requests_per_sec", 3.0)

	// Market defaults
	v.SetDefault("market.binance_api_url", "https://api.binance.com")
	v.SetDefault("market.binance_ws_url", "wss://stream.binance.com:9443")
	v.SetDefault("market.native_symbol", "ETHUSDC")
	v.SetDefault("market.price_cache_ttl", "30s")
	v.SetDefault("market.gas_cache_ttl", "12s")
	v.SetDefault("market.static_native_price_usd", 2500.0)
	v.SetDefault("market.static_gas_price_gwei", 30.0)

	// Split defaults
	v.SetDefault("split.min_trade_size_usd", 5000.0)
	v.SetDefault("split.max_venues", 4)
	v.SetDefault("split.min_allocation_pct", 10.0)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "dex-router")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// supportedChains are the networks the router can quote on.
var supportedChains = map[string]bool{
	"ethereum": true,
	"arbitrum": true,
	"polygon":  true,
	"optimism": true,
}

// IsSupportedChain reports whether chain is a quotable network.
func IsSupportedChain(chain string) bool {
	return supportedChains[chain]
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !IsSupportedChain(c.Router.DefaultChain) {
		return fmt.Errorf("unsupported router.default_chain: %s", c.Router.DefaultChain)
	}
	if c.Router.SlippagePct < 0 || c.Router.SlippagePct > 50 {
		return fmt.Errorf("router.slippage_pct out of range: %f", c.Router.SlippagePct)
	}
	if c.Split.MaxVenues < 1 {
		return fmt.Errorf("split.max_venues must be at least 1")
	}
	if c.Split.MinAllocationPct < 0 || c.Split.MinAllocationPct > 100 {
		return fmt.Errorf("split.min_allocation_pct out of range: %f", c.Split.MinAllocationPct)
	}
	if c.Market.StaticNativePrice <= 0 {
		return fmt.Errorf("market.static_native_price_usd must be positive")
	}
	return nil
}
