package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"coin-prices-service/internal/domain/entities"
	"coin-prices-service/internal/domain/errs"
	"coin-prices-service/internal/infrastructure/logging"
	"coin-prices-service/internal/infrastructure/metrics"

	"github.com/avast/retry-go/v4"
)

//go:generate mockgen -source=fetcher.go -destination=mock_http_doer_test.go -package=exchange

const maxBodySize = 32 << 20

// HTTPDoer is satisfied by *http.Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RetryPolicy bounds the work spent on one endpoint.
type RetryPolicy struct {
	MaxAttempts    uint
	BaseDelay      time.Duration
	MaxDelay       time.Duration
	RequestTimeout time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    5,
		BaseDelay:      200 * time.Millisecond,
		MaxDelay:       5 * time.Second,
		RequestTimeout: 10 * time.Second,
	}
}

// RestFetcher GETs exchange ticker endpoints with exponential backoff.
type RestFetcher struct {
	client HTTPDoer
	policy RetryPolicy
	logger logging.ExternalAPILogger
}

func NewRestFetcher(policy RetryPolicy) *RestFetcher {
	return NewRestFetcherWithClient(&http.Client{}, policy)
}

func NewRestFetcherWithClient(client HTTPDoer, policy RetryPolicy) *RestFetcher {
	if policy.MaxAttempts == 0 {
		policy.MaxAttempts = 1
	}
	return &RestFetcher{
		client: client,
		policy: policy,
		logger: logging.ExternalAPI(),
	}
}

// Fetch returns the raw JSON body of endpoint.URL. Every failure that
// survives the retry budget is reported as *errs.ResourceFetchError.
func (f *RestFetcher) Fetch(ctx context.Context, endpoint entities.EndpointOptions) (json.RawMessage, error) {
	var (
		body  json.RawMessage
		start = time.Now()
	)

	f.logger.RequestStarted(ctx, endpoint.ExchangeID, endpoint.URL)

	err := retry.Do(
		func() error {
			reqCtx, cancel := context.WithTimeout(ctx, f.policy.RequestTimeout)
			defer cancel()

			raw, reqErr := f.doRequest(reqCtx, endpoint)
			if reqErr != nil {
				return reqErr
			}

			body = raw
			return nil
		},
		retry.Attempts(f.policy.MaxAttempts),
		retry.Delay(f.policy.BaseDelay),
		retry.MaxDelay(f.policy.MaxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(isRetryableError),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			metrics.RecordExternalAPIRetry(endpoint.ExchangeID, n+1)
			f.logger.RequestRetried(ctx, endpoint.ExchangeID, endpoint.URL, n+1, err)
		}),
	)

	if err != nil {
		f.logger.RequestFailed(ctx, endpoint.ExchangeID, endpoint.URL, err, time.Since(start))
		return nil, errs.NewResourceFetchError(
			endpoint.ExchangeID,
			fmt.Sprintf("could not fetch price pairs for %s", endpoint.ExchangeID),
			err,
		)
	}

	return body, nil
}

func (f *RestFetcher) doRequest(ctx context.Context, endpoint entities.EndpointOptions) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrNonRetryable, err)
	}
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := f.client.Do(req)
	duration := time.Since(requestStart)

	if err != nil {
		metrics.RecordExternalAPICall(endpoint.ExchangeID, 0, duration.Seconds())
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%w: context timeout/canceled", ErrRetryableRequest)
		}
		return nil, fmt.Errorf("%w: %v", ErrRetryableRequest, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	metrics.RecordExternalAPICall(endpoint.ExchangeID, resp.StatusCode, duration.Seconds())

	switch {
	case resp.StatusCode >= 500, resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: HTTP %d", ErrRetryableRequest, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: HTTP %d", ErrNonRetryable, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read body: %v", ErrRetryableRequest, err)
	}

	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: %w: response is not valid JSON", ErrNonRetryable, ErrMalformedPayload)
	}

	f.logger.RequestCompleted(ctx, endpoint.ExchangeID, endpoint.URL, resp.StatusCode, duration)
	return json.RawMessage(data), nil
}

func isRetryableError(err error) bool {
	return errors.Is(err, ErrRetryableRequest)
}
