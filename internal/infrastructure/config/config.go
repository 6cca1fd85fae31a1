package config

import (
	"time"

	"coin-prices-service/internal/domain/entities"
)

// Config represents the complete application configuration
type Config struct {
	Server      ServerConfig       `yaml:"server" mapstructure:"server"`
	API         APIConfig          `yaml:"api" mapstructure:"api"`
	Business    BusinessConfig     `yaml:"business" mapstructure:"business"`
	Exchanges   []ExchangeEndpoint `yaml:"exchanges" mapstructure:"exchanges"`
	Fetch       FetchConfig        `yaml:"fetch" mapstructure:"fetch"`
	Cache       CacheConfig        `yaml:"cache" mapstructure:"cache"`
	RateLimit   RateLimitConfig    `yaml:"rate_limit" mapstructure:"rate_limit"`
	Logging     LoggingConfig      `yaml:"logging" mapstructure:"logging"`
	Development DevelopmentConfig  `yaml:"development" mapstructure:"development"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" mapstructure:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
	RequestTimeout  time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
}

type APIConfig struct {
	Prefix string `yaml:"prefix" mapstructure:"prefix"`
}

// BusinessConfig holds the coins used when a request does not name them.
type BusinessConfig struct {
	DefaultBaseCoin  string `yaml:"default_base_coin" mapstructure:"default_base_coin"`
	DefaultQuoteCoin string `yaml:"default_quote_coin" mapstructure:"default_quote_coin"`
}

// ExchangeEndpoint is one ticker source. Order in the list is the order
// prices are reported in.
type ExchangeEndpoint struct {
	ID         string `yaml:"id" mapstructure:"id"`
	URL        string `yaml:"url" mapstructure:"url"`
	PriceField string `yaml:"price_field" mapstructure:"price_field"`
}

// FetchConfig bounds the retry loop of the exchange fetcher
type FetchConfig struct {
	MaxAttempts    uint          `yaml:"max_attempts" mapstructure:"max_attempts"`
	BaseDelay      time.Duration `yaml:"base_delay" mapstructure:"base_delay"`
	MaxDelay       time.Duration `yaml:"max_delay" mapstructure:"max_delay"`
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
}

// CacheConfig contains cache system configuration
type CacheConfig struct {
	Backend         string          `yaml:"backend" mapstructure:"backend"`
	TTL             time.Duration   `yaml:"ttl" mapstructure:"ttl"`
	RefreshInterval time.Duration   `yaml:"refresh_interval" mapstructure:"refresh_interval"`
	Warmup          bool            `yaml:"warmup" mapstructure:"warmup"`
	Redis           RedisConfig     `yaml:"redis" mapstructure:"redis"`
	Memcached       MemcachedConfig `yaml:"memcached" mapstructure:"memcached"`
}

// RedisConfig contains Redis-specific configuration
type RedisConfig struct {
	Addr     string `yaml:"addr" mapstructure:"addr"`
	Password string `yaml:"password" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db"`
}

type MemcachedConfig struct {
	Address        string        `yaml:"address" mapstructure:"address"`
	Port           int           `yaml:"port" mapstructure:"port"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" mapstructure:"connect_timeout"`
	Timeout        time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled         bool          `yaml:"enabled" mapstructure:"enabled"`
	Capacity        int           `yaml:"capacity" mapstructure:"capacity"`
	RefillRate      int           `yaml:"refill_rate" mapstructure:"refill_rate"`
	RefillPeriod    time.Duration `yaml:"refill_period" mapstructure:"refill_period"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" mapstructure:"cleanup_interval"`
	ClientTTL       time.Duration `yaml:"client_ttl" mapstructure:"client_ttl"`
}

// LoggingConfig contains logging system configuration
type LoggingConfig struct {
	Level       string `yaml:"level" mapstructure:"level"`
	Format      string `yaml:"format" mapstructure:"format"`
	Service     string `yaml:"service" mapstructure:"service"`
	Version     string `yaml:"version" mapstructure:"version"`
	Environment string `yaml:"environment" mapstructure:"environment"`
	AddSource   bool   `yaml:"add_source" mapstructure:"add_source"`
}

// DevelopmentConfig switches the exchanges to generated payloads.
type DevelopmentConfig struct {
	MockMode bool `yaml:"mock_mode" mapstructure:"mock_mode"`
}

// EndpointOptions returns the exchange list in configuration order.
func (c *Config) EndpointOptions() []entities.EndpointOptions {
	opts := make([]entities.EndpointOptions, 0, len(c.Exchanges))
	for _, ex := range c.Exchanges {
		opts = append(opts, entities.EndpointOptions{
			ExchangeID: ex.ID,
			URL:        ex.URL,
			PriceField: ex.PriceField,
		})
	}
	return opts
}

func defaultExchanges() []ExchangeEndpoint {
	return []ExchangeEndpoint{
		{ID: "binance", URL: "https://api.binance.com/api/v3/ticker/price", PriceField: "price"},
		{ID: "bybit", URL: "https://api.bybit.com/v2/public/tickers", PriceField: "last_price"},
	}
}

// GetDefaultConfig returns the default configuration
func GetDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  30 * time.Second,
		},
		API: APIConfig{
			Prefix: "/api",
		},
		Business: BusinessConfig{
			DefaultBaseCoin:  "BTC",
			DefaultQuoteCoin: "USDT",
		},
		Exchanges: defaultExchanges(),
		Fetch: FetchConfig{
			MaxAttempts:    5,
			BaseDelay:      200 * time.Millisecond,
			MaxDelay:       5 * time.Second,
			RequestTimeout: 10 * time.Second,
		},
		Cache: CacheConfig{
			Backend: "memory",
			TTL:     30 * time.Second,
			Warmup:  true,
			Redis: RedisConfig{
				Addr: "localhost:6379",
			},
			Memcached: MemcachedConfig{
				Address:        "127.0.0.1",
				Port:           11211,
				ConnectTimeout: 10 * time.Second,
				Timeout:        5 * time.Second,
			},
		},
		RateLimit: RateLimitConfig{
			Enabled:         false,
			Capacity:        100,
			RefillRate:      10,
			RefillPeriod:    time.Second,
			CleanupInterval: 5 * time.Minute,
			ClientTTL:       10 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:       "debug",
			Format:      "json",
			Service:     "coin-prices-service",
			Version:     "1.0.0",
			Environment: "development",
		},
	}
}
