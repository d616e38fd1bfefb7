package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tourkorea/explorer/internal/metrics"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

const (
	defaultMaxRetries = 3
	defaultTimeout    = 30 * time.Second
)

// sleeper waits d or until ctx is done.
type sleeper func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// backoff is the wait after failed attempt i (0-indexed): 1s, 2s, 4s, ...
func backoff(attempt int) time.Duration {
	return time.Duration(1<<attempt) * time.Second
}

// retryExecutor issues GET requests with a per-attempt timeout and exponential backoff.
// maxRetries is the total attempt budget; 4xx answers end the loop immediately.
type retryExecutor struct {
	httpClient *resty.Client
	rl         ratelimit.Limiter
	egress     *egress
	maxRetries int
	timeout    time.Duration
	sleep      sleeper
}

func newRetryExecutor(httpClient *resty.Client, rl ratelimit.Limiter, egress *egress, maxRetries int, timeout time.Duration) *retryExecutor {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if rl == nil {
		rl = ratelimit.NewUnlimited()
	}

	return &retryExecutor{
		httpClient: httpClient,
		rl:         rl,
		egress:     egress,
		maxRetries: maxRetries,
		timeout:    timeout,
		sleep:      sleepContext,
	}
}

// Execute returns the body of the first 2xx answer, or the last observed error once the budget is spent.
func (e *retryExecutor) Execute(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < e.maxRetries; attempt++ {
		body, err := e.attempt(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		if !isRetryable(err) {
			return nil, err
		}
		if attempt == e.maxRetries-1 {
			break
		}

		delay := backoff(attempt)
		metrics.UpstreamRetries.WithLabelValues(failureReason(err)).Inc()
		log.Warnf("🔄 Attempt %d/%d failed (%v), retrying in %v", attempt+1, e.maxRetries, err, delay)

		e.egress.advance()

		if err := e.sleep(ctx, delay); err != nil {
			return nil, fmt.Errorf("request cancelled: %w", err)
		}
	}

	return nil, fmt.Errorf("giving up after %d attempts: %w", e.maxRetries, lastErr)
}

func (e *retryExecutor) attempt(ctx context.Context, url string) ([]byte, error) {
	e.rl.Take()

	reqCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.httpClient.R().
		SetContext(reqCtx).
		Get(url)
	if err != nil {
		if ctx.Err() == nil && errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %v", ErrTimeout, e.timeout)
		}
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}

	if resp.IsError() {
		return nil, &HTTPError{StatusCode: resp.StatusCode(), Status: resp.Status()}
	}

	return []byte(resp.String()), nil
}

func failureReason(err error) string {
	var httpErr *HTTPError
	switch {
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.As(err, &httpErr):
		return "server_error"
	default:
		return "network"
	}
}
