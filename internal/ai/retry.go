package ai

import (
	"context"
	"crypto/rand"
	stderrors "errors"
	"math"
	"math/big"
	"net"
	"net/http"
	"time"

	"resumatch/internal/errors"

	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

const maxBackoff = 30 * time.Second

// retryPolicy runs an attempt up to maxRetries+1 times with exponential
// backoff and jitter between attempts.
type retryPolicy struct {
	maxRetries int
	baseDelay  time.Duration
	logger     *errors.Logger
}

func (p retryPolicy) backoff(attempt int) time.Duration {
	baseDelay := time.Duration(math.Pow(2, float64(attempt-1))) * p.baseDelay
	jitter := time.Duration(0)
	if jitterMax := int64(float64(baseDelay) * 0.1); jitterMax > 0 {
		if n, err := rand.Int(rand.Reader, big.NewInt(jitterMax)); err == nil {
			jitter = time.Duration(n.Int64())
		}
	}
	return min(baseDelay+jitter, maxBackoff)
}

// run calls fn until it succeeds, fails with a permanent error or the
// attempts run out. retryable lets the caller veto a retry, e.g. after a
// stream already produced output.
func run[T any](ctx context.Context, p retryPolicy, operation string, retryable func() bool, fn func() (T, error)) (T, error) {
	var zero, last T
	var lastErr error

	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			p.logger.Warn("Retrying AI operation",
				"operation", operation,
				"attempt", attempt,
				"max_retries", p.maxRetries,
				"error", lastErr.Error())

			select {
			case <-time.After(p.backoff(attempt)):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}

		result, err := fn()
		if err == nil {
			if attempt > 0 {
				p.logger.Info("AI operation succeeded after retry",
					"operation", operation,
					"successful_attempt", attempt+1)
			}
			return result, nil
		}

		last, lastErr = result, err
		if ctx.Err() != nil || !isRetryableError(err) || (retryable != nil && !retryable()) {
			return result, err
		}
	}

	p.logger.LogError(lastErr, "AI operation failed after all retry attempts",
		"operation", operation,
		"total_attempts", p.maxRetries+1)
	return last, lastErr
}

// isRetryableError determines if an error should trigger a retry
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		switch appErr.Code {
		case errors.ErrCodeModelNotFound, errors.ErrCodeProviderUnavailable,
			errors.ErrCodeMissingAPIKey, errors.ErrCodeInvalidRequest:
			return false
		}
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return true
	}

	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return retryableStatus(apiErr.StatusCode)
	}

	var googleErr *googleapi.Error
	if stderrors.As(err, &googleErr) {
		return retryableStatus(googleErr.Code)
	}

	var genaiErr genai.APIError
	if stderrors.As(err, &genaiErr) {
		return retryableStatus(genaiErr.Code)
	}

	return false
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
