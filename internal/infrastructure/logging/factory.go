package logging

import (
	"fmt"
	"sync"
)

// LoggerFactory builds domain loggers that share one base logger.
type LoggerFactory struct {
	baseLogger Logger
}

func NewLoggerFactory(config *LoggerConfig) (*LoggerFactory, error) {
	baseLogger, err := NewStructuredLogger(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create base logger: %w", err)
	}

	return &LoggerFactory{baseLogger: baseLogger}, nil
}

func (f *LoggerFactory) GetBaseLogger() Logger {
	return f.baseLogger
}

// LoggerSet groups the base logger with every domain logger.
type LoggerSet struct {
	Base        Logger
	HTTP        HTTPLogger
	ExternalAPI ExternalAPILogger
	Cache       CacheLogger
	Aggregation AggregationLogger
	Security    SecurityLogger
}

func (f *LoggerFactory) GetLoggerSet() *LoggerSet {
	return &LoggerSet{
		Base:        f.baseLogger,
		HTTP:        NewHTTPLogger(f.baseLogger),
		ExternalAPI: NewExternalAPILogger(f.baseLogger),
		Cache:       NewCacheLogger(f.baseLogger),
		Aggregation: NewAggregationLogger(f.baseLogger),
		Security:    NewSecurityLogger(f.baseLogger),
	}
}

var (
	globalMu      sync.RWMutex
	globalLoggers *LoggerSet
)

// InitializeGlobalLoggers replaces the process-wide loggers.
func InitializeGlobalLoggers(config *LoggerConfig) error {
	factory, err := NewLoggerFactory(config)
	if err != nil {
		return fmt.Errorf("failed to initialize global loggers: %w", err)
	}

	globalMu.Lock()
	globalLoggers = factory.GetLoggerSet()
	globalMu.Unlock()
	return nil
}

// GetGlobalLoggers lazily falls back to DefaultConfig when main never initialized logging.
func GetGlobalLoggers() *LoggerSet {
	globalMu.RLock()
	set := globalLoggers
	globalMu.RUnlock()
	if set != nil {
		return set
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLoggers == nil {
		factory, _ := NewLoggerFactory(DefaultConfig())
		globalLoggers = factory.GetLoggerSet()
	}
	return globalLoggers
}

func GetGlobalLogger() Logger {
	return GetGlobalLoggers().Base
}

func SetGlobalLogLevel(level LogLevel) {
	GetGlobalLogger().SetLevel(level)
}

// NewTestingConfig writes text logs at DEBUG, handy for asserting on a buffer.
func NewTestingConfig(service string) *LoggerConfig {
	return NewConfig(service, "test", "testing").
		WithLevel(LevelDebug).
		WithFormat(FormatText)
}
