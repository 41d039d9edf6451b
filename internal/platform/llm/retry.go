package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/wordpath/wordpath-api/internal/llm"
	"github.com/wordpath/wordpath-api/internal/platform/logger"
)

// retrier runs provider calls with exponential backoff and jitter.
// Auth and parse failures are permanent and returned immediately;
// rate limits and availability errors are retried.
type retrier struct {
	maxRetries int
	baseDelay  time.Duration
	rng        *rand.Rand
}

func newRetrier(maxRetries, retryDelaySeconds int) *retrier {
	if maxRetries < 0 {
		maxRetries = 3
	}
	if retryDelaySeconds < 1 {
		retryDelaySeconds = 1
	}
	return &retrier{
		maxRetries: maxRetries,
		baseDelay:  time.Duration(retryDelaySeconds) * time.Second,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// do invokes fn until it succeeds, fails permanently, or retries run out.
func (r *retrier) do(ctx context.Context, operation string, fn func(context.Context) (string, error)) (string, error) {
	log := logger.FromContext(ctx)

	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		text, err := fn(ctx)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if errors.Is(err, llm.ErrAuthFailed) || errors.Is(err, llm.ErrInvalidResponse) {
			return "", err
		}

		if attempt >= r.maxRetries {
			break
		}

		// delay = baseDelay * 2^attempt * (0.5 + rand(0, 0.5))
		backoff := float64(r.baseDelay) * math.Pow(2, float64(attempt))
		jitter := 0.5 + r.rng.Float64()*0.5
		delay := time.Duration(backoff * jitter)

		log.WarnContext(ctx, "llm call failed, retrying",
			"operation", operation,
			"attempt", attempt+1,
			"max_attempts", r.maxRetries+1,
			"delay", delay.String(),
			"error", err)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", llm.ErrUnavailable, ctx.Err())
		}
	}

	return "", fmt.Errorf("%w: exceeded %d attempts: %v",
		llm.ErrUnavailable, r.maxRetries+1, lastErr)
}
