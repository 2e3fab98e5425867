package collyfetcher

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/JakeFAU/referent/internal/article"
)

// RetryPolicy implements bounded retries with jittered exponential backoff.
type RetryPolicy struct {
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
	jitter      time.Duration
}

// NewRetryPolicy builds a policy. Zero values fall back to the defaults
// of 4 attempts, a 1s base delay, a 16s cap and 250ms of jitter.
func NewRetryPolicy(maxAttempts int, baseDelay, maxDelay, jitter time.Duration) *RetryPolicy {
	if maxAttempts <= 0 {
		maxAttempts = 4
	}
	if baseDelay <= 0 {
		baseDelay = time.Second
	}
	if maxDelay <= 0 {
		maxDelay = 16 * time.Second
	}
	if jitter < 0 {
		jitter = 0
	}
	// Jitter must stay below the base delay or the schedule could shrink.
	if jitter >= baseDelay {
		jitter = baseDelay / 4
	}
	return &RetryPolicy{
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		maxDelay:    maxDelay,
		jitter:      jitter,
	}
}

// MaxAttempts returns the total attempt budget including the first try.
func (p *RetryPolicy) MaxAttempts() int {
	return p.maxAttempts
}

// ShouldRetry decides whether a failure after attempts tries earns another one.
func (p *RetryPolicy) ShouldRetry(kind article.FailureKind, attempts int) bool {
	if attempts >= p.maxAttempts {
		return false
	}
	return kind.Retryable()
}

// Backoff returns the wait before the attempt following attemptIndex:
// base * 2^attemptIndex plus jitter, capped at maxDelay.
func (p *RetryPolicy) Backoff(attemptIndex int, rng *rand.Rand) time.Duration {
	delay := float64(p.baseDelay) * math.Pow(2, float64(attemptIndex))
	if p.jitter > 0 && rng != nil {
		delay += float64(rng.Int64N(int64(p.jitter)))
	}
	if delay > float64(p.maxDelay) {
		delay = float64(p.maxDelay)
	}
	return time.Duration(delay)
}
