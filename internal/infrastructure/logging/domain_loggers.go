package logging

import (
	"context"
	"time"
)

// BaseDomainLogger adds the domain field to every entry of the wrapped Logger.
type BaseDomainLogger struct {
	Logger
	domain string
}

func newBaseDomainLogger(base Logger, domain string) *BaseDomainLogger {
	return &BaseDomainLogger{Logger: base, domain: domain}
}

func (dl *BaseDomainLogger) Domain() string {
	return dl.domain
}

func (dl *BaseDomainLogger) tag(fields Fields) Fields {
	tagged := make(Fields, len(fields)+1)
	for k, v := range fields {
		tagged[k] = v
	}
	tagged[FieldDomain] = dl.domain
	return tagged
}

func (dl *BaseDomainLogger) Debug(ctx context.Context, message string, fields Fields) {
	dl.Logger.Debug(ctx, message, dl.tag(fields))
}

func (dl *BaseDomainLogger) Info(ctx context.Context, message string, fields Fields) {
	dl.Logger.Info(ctx, message, dl.tag(fields))
}

func (dl *BaseDomainLogger) Warn(ctx context.Context, message string, fields Fields) {
	dl.Logger.Warn(ctx, message, dl.tag(fields))
}

func (dl *BaseDomainLogger) Error(ctx context.Context, message string, fields Fields) {
	dl.Logger.Error(ctx, message, dl.tag(fields))
}

func (dl *BaseDomainLogger) WarnWithError(ctx context.Context, message string, err error, fields Fields) {
	dl.Logger.WarnWithError(ctx, message, err, dl.tag(fields))
}

func (dl *BaseDomainLogger) ErrorWithError(ctx context.Context, message string, err error, fields Fields) {
	dl.Logger.ErrorWithError(ctx, message, err, dl.tag(fields))
}

// logByStatus picks INFO, WARN or ERROR from an HTTP status code.
func (dl *BaseDomainLogger) logByStatus(ctx context.Context, statusCode int, message string, fields Fields) {
	switch {
	case statusCode >= 500:
		dl.Error(ctx, message, fields)
	case statusCode >= 400:
		dl.Warn(ctx, message, fields)
	default:
		dl.Info(ctx, message, fields)
	}
}

// HTTPDomainLogger logs inbound HTTP traffic.
type HTTPDomainLogger struct {
	*BaseDomainLogger
}

func NewHTTPLogger(baseLogger Logger) HTTPLogger {
	return &HTTPDomainLogger{BaseDomainLogger: newBaseDomainLogger(baseLogger, "http")}
}

func (hl *HTTPDomainLogger) RequestReceived(ctx context.Context, method, path, userAgent, remoteIP string) {
	fields := NewFieldBuilder().
		WithHTTPInfo(method, path, 0).
		WithCustomField(FieldHTTPUserAgent, userAgent).
		WithCustomField(FieldHTTPRemoteIP, remoteIP).
		Build()

	hl.Debug(ctx, "HTTP request received", fields)
}

func (hl *HTTPDomainLogger) RequestCompleted(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	fields := NewFieldBuilder().
		WithHTTPInfo(method, path, statusCode).
		WithDuration(duration).
		Build()

	hl.logByStatus(ctx, statusCode, "HTTP request completed", fields)
}

// ExternalAPIDomainLogger logs calls to exchange endpoints.
type ExternalAPIDomainLogger struct {
	*BaseDomainLogger
}

func NewExternalAPILogger(baseLogger Logger) ExternalAPILogger {
	return &ExternalAPIDomainLogger{BaseDomainLogger: newBaseDomainLogger(baseLogger, "external_api")}
}

func (el *ExternalAPIDomainLogger) RequestStarted(ctx context.Context, exchange, endpoint string) {
	el.Debug(ctx, "Exchange request started", NewFieldBuilder().WithExchange(exchange, endpoint).Build())
}

func (el *ExternalAPIDomainLogger) RequestCompleted(ctx context.Context, exchange, endpoint string, statusCode int, duration time.Duration) {
	fields := NewFieldBuilder().
		WithExchange(exchange, endpoint).
		WithCustomField(FieldExternalStatus, statusCode).
		WithDuration(duration).
		Build()

	el.logByStatus(ctx, statusCode, "Exchange request completed", fields)
}

func (el *ExternalAPIDomainLogger) RequestRetried(ctx context.Context, exchange, endpoint string, attempt uint, err error) {
	fields := NewFieldBuilder().
		WithExchange(exchange, endpoint).
		WithCustomField(FieldAttempt, attempt).
		Build()

	el.WarnWithError(ctx, "Retrying exchange request", err, fields)
}

func (el *ExternalAPIDomainLogger) RequestFailed(ctx context.Context, exchange, endpoint string, err error, duration time.Duration) {
	fields := NewFieldBuilder().
		WithExchange(exchange, endpoint).
		WithDuration(duration).
		Build()

	el.ErrorWithError(ctx, "Exchange request failed", err, fields)
}

// CacheDomainLogger logs cache gateway traffic at DEBUG, failures at ERROR.
type CacheDomainLogger struct {
	*BaseDomainLogger
}

func NewCacheLogger(baseLogger Logger) CacheLogger {
	return &CacheDomainLogger{BaseDomainLogger: newBaseDomainLogger(baseLogger, "cache")}
}

func (cl *CacheDomainLogger) Hit(ctx context.Context, key string) {
	cl.Debug(ctx, "Cache hit", NewFieldBuilder().WithCache(CacheOpGet, key, true).Build())
}

func (cl *CacheDomainLogger) Miss(ctx context.Context, key string) {
	cl.Debug(ctx, "Cache miss", NewFieldBuilder().WithCache(CacheOpGet, key, false).Build())
}

func (cl *CacheDomainLogger) Set(ctx context.Context, key string, ttl time.Duration) {
	fields := NewFieldBuilder().
		WithCustomField(FieldCacheOperation, CacheOpSet).
		WithCustomField(FieldCacheKey, key).
		WithCustomField(FieldCacheTTL, ttl.Seconds()).
		Build()

	cl.Debug(ctx, "Cache set", fields)
}

func (cl *CacheDomainLogger) CacheError(ctx context.Context, operation, key string, err error) {
	fields := NewFieldBuilder().
		WithCustomField(FieldCacheOperation, operation).
		WithCustomField(FieldCacheKey, key).
		Build()

	cl.ErrorWithError(ctx, "Cache operation failed", err, fields)
}

// AggregationDomainLogger logs parse passes.
type AggregationDomainLogger struct {
	*BaseDomainLogger
}

func NewAggregationLogger(baseLogger Logger) AggregationLogger {
	return &AggregationDomainLogger{BaseDomainLogger: newBaseDomainLogger(baseLogger, "aggregation")}
}

func (al *AggregationDomainLogger) ParseStarted(ctx context.Context, quoteCoin string, exchanges []string) {
	fields := NewFieldBuilder().
		WithCustomField(FieldQuoteCoin, quoteCoin).
		WithCustomField(FieldExchanges, exchanges).
		Build()

	al.Debug(ctx, "Parsing coin prices", fields)
}

func (al *AggregationDomainLogger) ParseCompleted(ctx context.Context, quoteCoin string, points int, duration time.Duration) {
	fields := NewFieldBuilder().
		WithCustomField(FieldQuoteCoin, quoteCoin).
		WithCustomField(FieldPoints, points).
		WithDuration(duration).
		Build()

	al.Info(ctx, "Coin prices parsed", fields)
}

func (al *AggregationDomainLogger) ParseFailed(ctx context.Context, quoteCoin string, err error) {
	al.ErrorWithError(ctx, "Coin prices parse failed", err, Fields{FieldQuoteCoin: quoteCoin})
}

func (al *AggregationDomainLogger) PointWriteFailed(ctx context.Context, quoteCoin, coin string, err error) {
	fields := Fields{
		FieldQuoteCoin: quoteCoin,
		FieldCoin:      coin,
	}

	al.WarnWithError(ctx, "Could not store coin price point", err, fields)
}

// SecurityDomainLogger logs rate limiting decisions.
type SecurityDomainLogger struct {
	*BaseDomainLogger
}

func NewSecurityLogger(baseLogger Logger) SecurityLogger {
	return &SecurityDomainLogger{BaseDomainLogger: newBaseDomainLogger(baseLogger, "security")}
}

func (sl *SecurityDomainLogger) RateLimitExceeded(ctx context.Context, clientIP string, endpoint string) {
	fields := NewFieldBuilder().
		WithCustomField(FieldClientIP, clientIP).
		WithCustomField(FieldHTTPPath, endpoint).
		WithCustomField(FieldRateLimit, "exceeded").
		Build()

	sl.Warn(ctx, "Rate limit exceeded", fields)
}
