package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Validator checks a loaded configuration before the service starts
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// Validate runs every section check and reports the first failure
func (v *Validator) Validate(config *Config) error {
	if err := v.validateServer(config.Server); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}

	if err := v.validateAPI(config.API); err != nil {
		return fmt.Errorf("api config validation failed: %w", err)
	}

	if err := v.validateBusiness(config.Business); err != nil {
		return fmt.Errorf("business config validation failed: %w", err)
	}

	if err := v.validateExchanges(config.Exchanges); err != nil {
		return fmt.Errorf("exchanges config validation failed: %w", err)
	}

	if err := v.validateFetch(config.Fetch); err != nil {
		return fmt.Errorf("fetch config validation failed: %w", err)
	}

	if err := v.validateCache(config.Cache); err != nil {
		return fmt.Errorf("cache config validation failed: %w", err)
	}

	if err := v.validateRateLimit(config.RateLimit); err != nil {
		return fmt.Errorf("rate limit config validation failed: %w", err)
	}

	if err := v.validateLogging(config.Logging); err != nil {
		return fmt.Errorf("logging config validation failed: %w", err)
	}

	return nil
}

func (v *Validator) validateServer(config ServerConfig) error {
	if config.Port <= 0 || config.Port > 65535 {
		return fmt.Errorf("invalid port: %d, must be between 1-65535", config.Port)
	}

	if config.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive, got: %v", config.ShutdownTimeout)
	}

	if config.ShutdownTimeout > 5*time.Minute {
		return fmt.Errorf("shutdown_timeout too long: %v, max 5 minutes", config.ShutdownTimeout)
	}

	if config.ReadTimeout < 0 || config.WriteTimeout < 0 || config.IdleTimeout < 0 {
		return fmt.Errorf("server timeouts cannot be negative")
	}

	return nil
}

func (v *Validator) validateAPI(config APIConfig) error {
	if !strings.HasPrefix(config.Prefix, "/") {
		return fmt.Errorf("api prefix must start with '/', got: %q", config.Prefix)
	}
	if len(config.Prefix) > 1 && strings.HasSuffix(config.Prefix, "/") {
		return fmt.Errorf("api prefix must not end with '/', got: %q", config.Prefix)
	}
	return nil
}

func (v *Validator) validateBusiness(config BusinessConfig) error {
	if config.DefaultBaseCoin == "" {
		return fmt.Errorf("default_base_coin cannot be empty")
	}

	if config.DefaultQuoteCoin == "" {
		return fmt.Errorf("default_quote_coin cannot be empty")
	}

	return nil
}

// validateExchanges checks the endpoint list. At least one exchange is
// needed for an intersection to exist.
func (v *Validator) validateExchanges(endpoints []ExchangeEndpoint) error {
	if len(endpoints) == 0 {
		return fmt.Errorf("at least one exchange must be configured")
	}

	seen := make(map[string]struct{}, len(endpoints))
	for i, ep := range endpoints {
		if ep.ID == "" {
			return fmt.Errorf("exchange #%d: id cannot be empty", i)
		}
		if _, dup := seen[ep.ID]; dup {
			return fmt.Errorf("duplicate exchange id: %s", ep.ID)
		}
		seen[ep.ID] = struct{}{}

		if err := v.validateURL(ep.URL, ep.ID+" url"); err != nil {
			return err
		}

		if ep.PriceField == "" {
			return fmt.Errorf("%s price_field cannot be empty", ep.ID)
		}
	}

	return nil
}

func (v *Validator) validateFetch(config FetchConfig) error {
	if config.MaxAttempts < 1 || config.MaxAttempts > 10 {
		return fmt.Errorf("fetch max_attempts must be between 1-10, got: %d", config.MaxAttempts)
	}

	if config.BaseDelay <= 0 {
		return fmt.Errorf("fetch base_delay must be positive, got: %v", config.BaseDelay)
	}

	if config.MaxDelay < config.BaseDelay {
		return fmt.Errorf("fetch max_delay (%v) should not be less than base_delay (%v)", config.MaxDelay, config.BaseDelay)
	}

	if config.RequestTimeout <= 0 {
		return fmt.Errorf("fetch request_timeout must be positive, got: %v", config.RequestTimeout)
	}

	return nil
}

func (v *Validator) validateCache(config CacheConfig) error {
	validBackends := []string{"memory", "redis", "memcached"}
	if !contains(validBackends, config.Backend) {
		return fmt.Errorf("invalid cache backend: %s, must be one of: %v", config.Backend, validBackends)
	}

	if config.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive, got: %v", config.TTL)
	}

	if config.TTL > 24*time.Hour {
		return fmt.Errorf("cache TTL too long: %v, max 24 hours", config.TTL)
	}

	if config.RefreshInterval < 0 {
		return fmt.Errorf("cache refresh_interval cannot be negative, got: %v", config.RefreshInterval)
	}

	switch strings.ToLower(config.Backend) {
	case "redis":
		return v.validateRedis(config.Redis)
	case "memcached":
		return v.validateMemcached(config.Memcached)
	}

	return nil
}

func (v *Validator) validateRedis(config RedisConfig) error {
	if config.Addr == "" {
		return fmt.Errorf("redis addr cannot be empty")
	}

	if !strings.Contains(config.Addr, ":") {
		return fmt.Errorf("invalid redis addr format: %s, expected host:port", config.Addr)
	}

	if config.DB < 0 || config.DB > 15 {
		return fmt.Errorf("invalid redis DB: %d, must be between 0-15", config.DB)
	}

	return nil
}

func (v *Validator) validateMemcached(config MemcachedConfig) error {
	if config.Address == "" {
		return fmt.Errorf("memcached address cannot be empty")
	}

	if config.Port <= 0 || config.Port > 65535 {
		return fmt.Errorf("invalid memcached port: %d", config.Port)
	}

	if config.ConnectTimeout < 0 || config.Timeout < 0 {
		return fmt.Errorf("memcached timeouts cannot be negative")
	}

	return nil
}

func (v *Validator) validateRateLimit(config RateLimitConfig) error {
	if config.Enabled {
		if config.Capacity <= 0 {
			return fmt.Errorf("rate_limit capacity must be positive when enabled, got: %d", config.Capacity)
		}

		if config.RefillRate <= 0 {
			return fmt.Errorf("rate_limit refill_rate must be positive when enabled, got: %d", config.RefillRate)
		}

		if config.RefillPeriod <= 0 {
			return fmt.Errorf("rate_limit refill_period must be positive when enabled, got: %v", config.RefillPeriod)
		}

		if config.Capacity > 10000 {
			return fmt.Errorf("rate_limit capacity too high: %d, max 10000", config.Capacity)
		}

		if config.RefillRate > 1000 {
			return fmt.Errorf("rate_limit refill_rate too high: %d, max 1000", config.RefillRate)
		}
	}

	return nil
}

func (v *Validator) validateLogging(config LoggingConfig) error {
	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, strings.ToLower(config.Level)) {
		return fmt.Errorf("invalid log level: %s, must be one of: %v", config.Level, validLevels)
	}

	validFormats := []string{"json", "text"}
	if !contains(validFormats, strings.ToLower(config.Format)) {
		return fmt.Errorf("invalid log format: %s, must be one of: %v", config.Format, validFormats)
	}

	return nil
}

// validateURL checks that an exchange endpoint is an absolute http(s) URL
func (v *Validator) validateURL(rawURL, fieldName string) error {
	if rawURL == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid %s: %s, error: %v", fieldName, rawURL, err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("invalid %s scheme: %s, must be http or https", fieldName, parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("%s must have a host", fieldName)
	}

	return nil
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if strings.EqualFold(s, item) {
			return true
		}
	}
	return false
}
