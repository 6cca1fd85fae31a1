package exchange

import "errors"

var (
	ErrRetryableRequest = errors.New("retryable exchange request failed")
	ErrNonRetryable     = errors.New("non-retryable exchange error")
	ErrUnknownExchange  = errors.New("no normalizer registered for exchange")
	ErrMalformedPayload = errors.New("malformed exchange payload")
)
