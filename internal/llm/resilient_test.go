package llm_test

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/extracurricular/infrastructure/circuitbreaker"
	"github.com/jonesrussell/north-cloud/extracurricular/internal/domain"
	"github.com/jonesrussell/north-cloud/extracurricular/internal/llm"
)

func fastConfig() llm.ResilienceConfig {
	return llm.ResilienceConfig{
		Timeout:      time.Second,
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
	}
}

func status(code int) error {
	return &llm.StatusError{Provider: "fake", StatusCode: code, Err: errors.New(http.StatusText(code))}
}

// scripted returns the errors in order, then text.
func scripted(calls *atomic.Int32, text string, errs ...error) llm.Completer {
	return llm.CompleterFunc(func(context.Context, llm.Request) (string, error) {
		n := int(calls.Add(1))
		if n <= len(errs) {
			return "", errs[n-1]
		}
		return text, nil
	})
}

func TestResilient_RetriesThrottleThenSucceeds(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	r := llm.NewResilient(scripted(&calls, `{"ok":true}`, status(429), status(429)), fastConfig(), nil)

	got, err := r.Complete(context.Background(), llm.Request{Prompt: "p"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, got)
	assert.Equal(t, int32(3), calls.Load())
}

func TestResilient_CeilingSurfacesUpstreamError(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	r := llm.NewResilient(scripted(&calls, "", status(503), status(503), status(503), status(503)), fastConfig(), nil)

	_, err := r.Complete(context.Background(), llm.Request{Prompt: "p"})

	var upErr *domain.UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, int32(3), calls.Load())
}

func TestResilient_PersistentThrottleIsRateLimited(t *testing.T) {
	t.Parallel()

	throttle := &llm.StatusError{Provider: "fake", StatusCode: 429, RetryAfter: 7 * time.Second, Err: errors.New("slow down")}
	var calls atomic.Int32
	r := llm.NewResilient(scripted(&calls, "", throttle, throttle, throttle), fastConfig(), nil)

	_, err := r.Complete(context.Background(), llm.Request{Prompt: "p"})

	var upErr *domain.UpstreamError
	require.ErrorAs(t, err, &upErr)
	var rlErr *domain.RateLimitedError
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, 7*time.Second, rlErr.RetryAfter)
}

func TestResilient_ClientErrorsAreNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	r := llm.NewResilient(scripted(&calls, "", status(400)), fastConfig(), nil)

	_, err := r.Complete(context.Background(), llm.Request{Prompt: "p"})

	var upErr *domain.UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, int32(1), calls.Load())
}

func TestResilient_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	t.Parallel()

	cfg := fastConfig()
	cfg.MaxAttempts = 1
	cfg.Breaker = circuitbreaker.Config{FailureThreshold: 1, Timeout: time.Hour}

	var calls atomic.Int32
	r := llm.NewResilient(scripted(&calls, "", status(500), status(500)), cfg, nil)

	_, err := r.Complete(context.Background(), llm.Request{Prompt: "p"})
	require.Error(t, err)

	_, err = r.Complete(context.Background(), llm.Request{Prompt: "p"})
	require.ErrorIs(t, err, circuitbreaker.ErrCircuitOpen)
	assert.Equal(t, int32(1), calls.Load())
}

func TestResilient_AttemptTimeout(t *testing.T) {
	t.Parallel()

	cfg := fastConfig()
	cfg.Timeout = 10 * time.Millisecond
	cfg.MaxAttempts = 2

	var calls atomic.Int32
	slow := llm.CompleterFunc(func(ctx context.Context, _ llm.Request) (string, error) {
		calls.Add(1)
		<-ctx.Done()
		return "", ctx.Err()
	})

	_, err := llm.NewResilient(slow, cfg, nil).Complete(context.Background(), llm.Request{Prompt: "p"})

	var upErr *domain.UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, "completion timed out", upErr.Message)
	assert.Equal(t, int32(2), calls.Load())
}

func TestResilient_EmptyCompletion(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	_, err := llm.NewResilient(scripted(&calls, ""), fastConfig(), nil).Complete(context.Background(), llm.Request{})

	require.ErrorIs(t, err, llm.ErrEmptyCompletion)
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	assert.True(t, llm.IsRetryable(status(429)))
	assert.True(t, llm.IsRetryable(status(502)))
	assert.True(t, llm.IsRetryable(context.DeadlineExceeded))
	assert.False(t, llm.IsRetryable(status(401)))
	assert.False(t, llm.IsRetryable(context.Canceled))
	assert.False(t, llm.IsRetryable(circuitbreaker.ErrCircuitOpen))
	assert.False(t, llm.IsRetryable(nil))
}

func TestParseRetryAfter(t *testing.T) {
	t.Parallel()

	h := http.Header{}
	assert.Zero(t, llm.ParseRetryAfter(h))

	h.Set("Retry-After", "12")
	assert.Equal(t, 12*time.Second, llm.ParseRetryAfter(h))

	h.Set("Retry-After", "Wed, 21 Oct 2015 07:28:00 GMT")
	assert.Zero(t, llm.ParseRetryAfter(h))
}
