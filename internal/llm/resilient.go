package llm

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jonesrussell/north-cloud/extracurricular/infrastructure/circuitbreaker"
	"github.com/jonesrussell/north-cloud/extracurricular/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/extracurricular/infrastructure/retry"
	"github.com/jonesrussell/north-cloud/extracurricular/internal/domain"
)

// Default resilience settings.
const (
	DefaultTimeout      = 60 * time.Second
	DefaultMaxAttempts  = 3
	DefaultInitialDelay = 500 * time.Millisecond
	DefaultMaxDelay     = 8 * time.Second
)

// ResilienceConfig configures Resilient.
type ResilienceConfig struct {
	// Timeout bounds each attempt.
	Timeout      time.Duration
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Breaker      circuitbreaker.Config
}

// Resilient retries transient provider failures with exponential backoff and
// stops calling a provider that keeps failing.
type Resilient struct {
	next    Completer
	retry   retry.Config
	breaker *circuitbreaker.Breaker
	timeout time.Duration
	logger  logger.Logger
}

// NewResilient wraps next.
func NewResilient(next Completer, cfg ResilienceConfig, log logger.Logger) *Resilient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = DefaultInitialDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = DefaultMaxDelay
	}
	if log == nil {
		log = logger.NewNop()
	}

	breakerCfg := cfg.Breaker
	breakerCfg.IsFailure = IsRetryable
	breakerCfg.OnStateChange = func(from, to circuitbreaker.State) {
		log.Warn("LLM circuit breaker state changed",
			logger.String("from", from.String()),
			logger.String("to", to.String()),
		)
	}

	return &Resilient{
		next: next,
		retry: retry.Config{
			MaxAttempts:  cfg.MaxAttempts,
			InitialDelay: cfg.InitialDelay,
			MaxDelay:     cfg.MaxDelay,
			Multiplier:   retry.DefaultMultiplier,
			IsRetryable:  IsRetryable,
			OnRetry: func(attempt int, delay time.Duration, err error) {
				log.Warn("Retrying LLM completion",
					logger.Int("attempt", attempt),
					logger.Duration("backoff", delay),
					logger.Error(err),
				)
			},
		},
		breaker: circuitbreaker.New(breakerCfg),
		timeout: cfg.Timeout,
		logger:  log,
	}
}

// Complete calls the wrapped completer. Every failure is returned as a
// *domain.UpstreamError; a provider throttle additionally wraps a
// *domain.RateLimitedError.
func (r *Resilient) Complete(ctx context.Context, req Request) (string, error) {
	text, err := retry.Do(ctx, r.retry, func() (string, error) {
		var out string
		execErr := r.breaker.Execute(ctx, func() error {
			attemptCtx, cancel := context.WithTimeout(ctx, r.timeout)
			defer cancel()

			var err error
			out, err = r.next.Complete(attemptCtx, req)
			return err
		})
		return out, execErr
	})
	if err != nil {
		return "", toUpstreamError(err)
	}
	if text == "" {
		return "", &domain.UpstreamError{Op: "complete", Message: "empty completion", Err: ErrEmptyCompletion}
	}
	return text, nil
}

// IsRetryable reports whether err is worth another attempt: provider
// throttling, server errors, attempt timeouts and network failures.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) || errors.Is(err, context.Canceled) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		code := statusErr.StatusCode
		return code == http.StatusTooManyRequests || code == http.StatusRequestTimeout || code >= http.StatusInternalServerError
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return retry.DefaultIsRetryable(err)
}

func toUpstreamError(err error) error {
	var statusErr *StatusError
	switch {
	case errors.Is(err, circuitbreaker.ErrCircuitOpen):
		return &domain.UpstreamError{Op: "complete", Message: "completion service temporarily unavailable", Err: err}
	case errors.As(err, &statusErr) && statusErr.Throttled():
		return &domain.UpstreamError{
			Op:      "complete",
			Message: "completion service is rate limiting requests",
			Err:     &domain.RateLimitedError{RetryAfter: statusErr.RetryAfter},
		}
	case errors.Is(err, context.DeadlineExceeded):
		return &domain.UpstreamError{Op: "complete", Message: "completion timed out", Err: err}
	default:
		return &domain.UpstreamError{Op: "complete", Message: "completion failed", Err: err}
	}
}
