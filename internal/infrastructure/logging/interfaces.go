package logging

import (
	"context"
	"time"
)

// Logger is the structured logging contract used across the service.
type Logger interface {
	Debug(ctx context.Context, message string, fields Fields)
	Info(ctx context.Context, message string, fields Fields)
	Warn(ctx context.Context, message string, fields Fields)
	Error(ctx context.Context, message string, fields Fields)

	WarnWithError(ctx context.Context, message string, err error, fields Fields)
	ErrorWithError(ctx context.Context, message string, err error, fields Fields)

	SetLevel(level LogLevel)
	GetLevel() LogLevel
}

// DomainLogger tags every entry with the domain it belongs to.
type DomainLogger interface {
	Logger
	Domain() string
}

// HTTPLogger logs inbound requests.
type HTTPLogger interface {
	DomainLogger

	RequestReceived(ctx context.Context, method, path, userAgent, remoteIP string)
	RequestCompleted(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// ExternalAPILogger logs calls made to exchange endpoints.
type ExternalAPILogger interface {
	DomainLogger

	RequestStarted(ctx context.Context, exchange, endpoint string)
	RequestCompleted(ctx context.Context, exchange, endpoint string, statusCode int, duration time.Duration)
	RequestRetried(ctx context.Context, exchange, endpoint string, attempt uint, err error)
	RequestFailed(ctx context.Context, exchange, endpoint string, err error, duration time.Duration)
}

// CacheLogger logs cache gateway operations.
type CacheLogger interface {
	DomainLogger

	Hit(ctx context.Context, key string)
	Miss(ctx context.Context, key string)
	Set(ctx context.Context, key string, ttl time.Duration)
	CacheError(ctx context.Context, operation, key string, err error)
}

// AggregationLogger logs parse passes over the configured exchanges.
type AggregationLogger interface {
	DomainLogger

	ParseStarted(ctx context.Context, quoteCoin string, exchanges []string)
	ParseCompleted(ctx context.Context, quoteCoin string, points int, duration time.Duration)
	ParseFailed(ctx context.Context, quoteCoin string, err error)
	PointWriteFailed(ctx context.Context, quoteCoin, coin string, err error)
}

// SecurityLogger logs abuse related events.
type SecurityLogger interface {
	DomainLogger

	RateLimitExceeded(ctx context.Context, clientIP string, endpoint string)
}
