package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "COINPRICES"

// Loader handles configuration loading using Viper
type Loader struct {
	v           *viper.Viper
	configPaths []string
	dotenvFiles []string
}

// NewLoader creates a new configuration loader instance
func NewLoader() *Loader {
	return &Loader{
		v:           viper.New(),
		configPaths: []string{".", "./config", "/etc/coin-prices"},
		dotenvFiles: []string{".env"},
	}
}

// WithConfigPaths replaces the directories searched for config.yaml.
func (l *Loader) WithConfigPaths(paths ...string) *Loader {
	l.configPaths = paths
	return l
}

// WithDotenvFiles replaces the .env files loaded before reading the environment.
func (l *Loader) WithDotenvFiles(files ...string) *Loader {
	l.dotenvFiles = files
	return l
}

// Load reads .env, config.yaml and the environment, in increasing priority.
func (l *Loader) Load() (*Config, error) {
	if err := l.loadDotenv(); err != nil {
		return nil, err
	}

	l.setupViper()

	if err := l.v.ReadInConfig(); err != nil {
		// Without config.yaml defaults and env vars are enough
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config := GetDefaultConfig()
	if l.v.IsSet("exchanges") {
		config.Exchanges = nil
	}
	if err := l.v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := l.overrideWithEnvVars(config); err != nil {
		return nil, err
	}

	return config, nil
}

// loadDotenv never overrides variables already present in the environment.
func (l *Loader) loadDotenv() error {
	for _, file := range l.dotenvFiles {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", file, err)
		}
	}
	return nil
}

func (l *Loader) setupViper() {
	l.v.SetConfigName("config")
	l.v.SetConfigType("yaml")
	for _, path := range l.configPaths {
		l.v.AddConfigPath(path)
	}

	// COINPRICES_SERVER_PORT, COINPRICES_CACHE_REDIS_ADDR, ...
	l.v.SetEnvPrefix(envPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()

	l.bindEnvVars()
}

// bindEnvVars registers every key with its prefixed name plus the flat
// names the service has always accepted.
func (l *Loader) bindEnvVars() {
	envMappings := map[string][]string{
		"server.port":                 {"PORT"},
		"server.read_timeout":         nil,
		"server.write_timeout":        nil,
		"server.idle_timeout":         nil,
		"server.shutdown_timeout":     {"SHUTDOWN_TIMEOUT"},
		"server.request_timeout":      nil,
		"api.prefix":                  {"API_PREFIX"},
		"business.default_base_coin":  {"DEFAULT_BASE_COIN"},
		"business.default_quote_coin": {"DEFAULT_QUOTE_COIN"},
		"fetch.max_attempts":          {"FETCH_MAX_ATTEMPTS"},
		"fetch.base_delay":            nil,
		"fetch.max_delay":             nil,
		"fetch.request_timeout":       {"FETCH_TIMEOUT"},
		"cache.backend":               {"CACHE_BACKEND"},
		"cache.refresh_interval":      {"CACHE_REFRESH_INTERVAL"},
		"cache.warmup":                {"CACHE_WARMUP"},
		"cache.redis.addr":            {"REDIS_ADDR"},
		"cache.redis.password":        {"REDIS_PASSWORD"},
		"cache.redis.db":              {"REDIS_DB"},
		"cache.memcached.address":     {"MEMCACHED_ADDRESS"},
		"cache.memcached.port":        {"MEMCACHED_PORT"},
		"rate_limit.enabled":          {"RATE_LIMIT_ENABLED"},
		"rate_limit.capacity":         {"RATE_LIMIT_CAPACITY"},
		"rate_limit.refill_rate":      {"RATE_LIMIT_REFILL_RATE"},
		"rate_limit.refill_period":    nil,
		"rate_limit.cleanup_interval": nil,
		"rate_limit.client_ttl":       nil,
		"logging.level":               {"LOG_LEVEL"},
		"logging.format":              {"LOG_FORMAT"},
		"logging.service":             nil,
		"logging.version":             nil,
		"logging.environment":         {"ENVIRONMENT"},
		"logging.add_source":          {"LOG_ADD_SOURCE"},
		"development.mock_mode":       {"MOCK_MODE"},
	}

	for configKey, legacy := range envMappings {
		names := append([]string{prefixedEnv(configKey)}, legacy...)
		_ = l.v.BindEnv(append([]string{configKey}, names...)...)
	}
}

func prefixedEnv(configKey string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(configKey, ".", "_"))
}

// overrideWithEnvVars handles variables whose format viper cannot decode:
// durations given as bare seconds and the exchange list.
func (l *Loader) overrideWithEnvVars(config *Config) error {
	durations := []struct {
		env    string
		target *time.Duration
	}{
		{"CACHE_EXPIRATION", &config.Cache.TTL},
		{prefixedEnv("cache.ttl"), &config.Cache.TTL},
		{"MEMCACHED_CONNECT_TIMEOUT", &config.Cache.Memcached.ConnectTimeout},
		{prefixedEnv("cache.memcached.connect_timeout"), &config.Cache.Memcached.ConnectTimeout},
		{"MEMCACHED_TIMEOUT", &config.Cache.Memcached.Timeout},
		{prefixedEnv("cache.memcached.timeout"), &config.Cache.Memcached.Timeout},
	}

	for _, d := range durations {
		raw := strings.TrimSpace(os.Getenv(d.env))
		if raw == "" {
			continue
		}
		parsed, err := parseSecondsOrDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", d.env, err)
		}
		*d.target = parsed
	}

	if raw := strings.TrimSpace(os.Getenv("PARSE_ENDPOINTS")); raw != "" {
		endpoints, err := ParseEndpoints(raw)
		if err != nil {
			return fmt.Errorf("invalid PARSE_ENDPOINTS: %w", err)
		}
		config.Exchanges = endpoints
	}

	config.Business.DefaultBaseCoin = strings.ToUpper(strings.TrimSpace(config.Business.DefaultBaseCoin))
	config.Business.DefaultQuoteCoin = strings.ToUpper(strings.TrimSpace(config.Business.DefaultQuoteCoin))

	return nil
}

// parseSecondsOrDuration accepts "30" as thirty seconds as well as "30s" or "1m".
func parseSecondsOrDuration(raw string) (time.Duration, error) {
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	return time.ParseDuration(raw)
}

// ParseEndpoints reads "id|url|price_field;id|url|price_field".
func ParseEndpoints(raw string) ([]ExchangeEndpoint, error) {
	var endpoints []ExchangeEndpoint
	for _, item := range strings.Split(raw, ";") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		parts := strings.Split(item, "|")
		if len(parts) != 3 {
			return nil, fmt.Errorf("endpoint %q: expected id|url|price_field", item)
		}

		endpoints = append(endpoints, ExchangeEndpoint{
			ID:         strings.TrimSpace(parts[0]),
			URL:        strings.TrimSpace(parts[1]),
			PriceField: strings.TrimSpace(parts[2]),
		})
	}

	if len(endpoints) == 0 {
		return nil, errors.New("no endpoints")
	}
	return endpoints, nil
}

// Load builds and validates the configuration with the default loader.
func Load() (*Config, error) {
	config, err := NewLoader().Load()
	if err != nil {
		return nil, err
	}

	if err := NewValidator().Validate(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}
