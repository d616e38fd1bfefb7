package client

import (
	"errors"
	"fmt"
	"time"

	"tourkorea/explorer/internal/metrics"

	log "github.com/sirupsen/logrus"
	gobreaker "github.com/sony/gobreaker/v2"
)

const breakerName = "tourapi"

// newBreaker opens after consecutiveFailures transient failures in a row and probes again after timeout.
// Client errors, upstream result codes and validation failures count as successes: they say nothing about upstream health.
func newBreaker(consecutiveFailures int, timeout time.Duration) *gobreaker.CircuitBreaker[[]byte] {
	if consecutiveFailures <= 0 {
		consecutiveFailures = 5
	}
	if timeout <= 0 {
		timeout = time.Minute
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(consecutiveFailures)
		},
		IsSuccessful: isPermanent,
		OnStateChange: func(name string, from, to gobreaker.State) {
			switch to {
			case gobreaker.StateOpen:
				log.Warnf("🚫 Circuit breaker %s opened, requests disabled for %v", name, timeout)
			case gobreaker.StateClosed:
				log.Infof("✅ Circuit breaker %s closed, requests are allowed again", name)
			default:
				log.Infof("🔄 Circuit breaker %s %s -> %s", name, from, to)
			}
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})
}

func breakerError(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	}
	return err
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
