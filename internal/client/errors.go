package client

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrMalformedEnvelope means the body was not the expected {"response": {...}} JSON.
	ErrMalformedEnvelope = errors.New("malformed envelope")
	// ErrTimeout marks an attempt that exceeded the per-attempt timeout.
	ErrTimeout = errors.New("timeout")
	// ErrCircuitOpen means calls are being rejected after repeated upstream failures.
	ErrCircuitOpen = errors.New("tourapi circuit breaker is open")
	// ErrNotFound means the upstream answered successfully with no matching item.
	ErrNotFound = errors.New("not found")
)

// ConfigError is raised before any network call when required configuration is missing.
type ConfigError struct {
	Key string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s is not set", e.Key)
}

// ValidationError is raised before any network call when a required parameter is missing or invalid.
type ValidationError struct {
	Param  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required parameter %s: %s", e.Param, e.Reason)
}

// HTTPError is a non-2xx answer from the upstream.
type HTTPError struct {
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error: %d %s", e.StatusCode, e.Status)
}

// Retryable reports whether the status indicates transient upstream trouble.
func (e *HTTPError) Retryable() bool {
	return e.StatusCode >= 500 && e.StatusCode <= 599
}

// UpstreamError is a well-formed envelope carrying a non-success result code.
type UpstreamError struct {
	Code    string
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream API error %s: %s", e.Code, e.Message)
}

// NotFound reports whether the upstream code means "no data".
func (e *UpstreamError) NotFound() bool {
	return e.Code == ResultCodeNoData
}

// isRetryable classifies an attempt failure: timeouts, network errors and 5xx are transient.
func isRetryable(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Retryable()
	}
	var upstreamErr *UpstreamError
	var validationErr *ValidationError
	var configErr *ConfigError
	switch {
	case errors.As(err, &upstreamErr), errors.As(err, &validationErr), errors.As(err, &configErr):
		return false
	case errors.Is(err, ErrMalformedEnvelope):
		return false
	}
	return true
}

// isPermanent reports failures that say nothing about upstream health and must not trip the breaker.
// The caller's own cancellation or deadline is one of them; per-attempt timeouts surface as ErrTimeout instead.
func isPermanent(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return !isRetryable(err)
}
