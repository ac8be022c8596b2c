package gateway

import (
	"context"
	"math"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// RetryPolicy bounds how the client retries one transfer request.
type RetryPolicy struct {
	// MaxAttempts counts the first try. Values below 1 mean a single attempt.
	MaxAttempts int
	// BackoffBase is the wait before the first retry; it doubles per retry.
	BackoffBase time.Duration
	// BackoffMax caps a single wait.
	BackoffMax time.Duration
	// Timeout bounds the whole attempt sequence.
	Timeout time.Duration
	// StatusCodes lists the response codes worth another attempt.
	StatusCodes []int
	// Methods lists the HTTP verbs that may be retried.
	Methods []string
}

// DefaultRetryPolicy returns three attempts with 0.5s exponential backoff,
// retrying 500/502/503/504 within a 30s budget.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BackoffBase: 500 * time.Millisecond,
		BackoffMax:  10 * time.Second,
		Timeout:     30 * time.Second,
		StatusCodes: []int{
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout,
		},
		Methods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
			http.MethodHead,
		},
	}
}

func (p RetryPolicy) retryMax() int {
	if p.MaxAttempts < 1 {
		return 0
	}
	return p.MaxAttempts - 1
}

func (p RetryPolicy) retriesStatus(code int) bool {
	for _, c := range p.StatusCodes {
		if c == code {
			return true
		}
	}
	return false
}

func (p RetryPolicy) retriesMethod(method string) bool {
	for _, m := range p.Methods {
		if m == method {
			return true
		}
	}
	return false
}

// checkRetry retries transport errors and the configured server statuses.
// Client errors (4xx) are final.
func (p RetryPolicy) checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	if resp.Request != nil && !p.retriesMethod(resp.Request.Method) {
		return false, nil
	}
	return p.retriesStatus(resp.StatusCode), nil
}

// backoff waits base*2^attempt, capped at max.
func (p RetryPolicy) backoff(min, max time.Duration, attemptNum int, _ *http.Response) time.Duration {
	wait := time.Duration(float64(min) * math.Pow(2, float64(attemptNum)))
	if max > 0 && wait > max {
		return max
	}
	return wait
}
