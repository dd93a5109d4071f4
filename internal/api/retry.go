package api

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"net/http"
	"time"
)

// RetryConfig configures retry behavior for transient read failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultRetryConfig returns the retry settings used when none are configured.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 500 * time.Millisecond,
		MaxWait:     5 * time.Second,
		Multiplier:  2.0,
	}
}

// RetryService is a decorator that retries idempotent reads with
// exponential backoff and jitter. Writes pass straight through.
type RetryService struct {
	inner  Service
	config RetryConfig
	sleep  func(ctx context.Context, d time.Duration) error
}

// WithRetry wraps a Service with retry logic for reads.
func WithRetry(s Service, cfg RetryConfig) Service {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &RetryService{inner: s, config: cfg, sleep: sleepCtx}
}

func (r *RetryService) FetchCatalog(ctx context.Context) ([]Question, error) {
	return retryRead(ctx, r, r.inner.FetchCatalog)
}

func (r *RetryService) FetchStats(ctx context.Context) (*Stats, error) {
	return retryRead(ctx, r, r.inner.FetchStats)
}

func (r *RetryService) CurrentUser(ctx context.Context) (*User, error) {
	return retryRead(ctx, r, r.inner.CurrentUser)
}

func (r *RetryService) SubmitProgress(ctx context.Context, questionID, elapsedSeconds int, solved bool) (ProgressStatus, error) {
	return r.inner.SubmitProgress(ctx, questionID, elapsedSeconds, solved)
}

func (r *RetryService) ResetProgress(ctx context.Context) error {
	return r.inner.ResetProgress(ctx)
}

func (r *RetryService) Login(ctx context.Context, username, password string) error {
	return r.inner.Login(ctx, username, password)
}

func (r *RetryService) Register(ctx context.Context, username, password string) (*User, error) {
	return r.inner.Register(ctx, username, password)
}

func (r *RetryService) Logout(ctx context.Context) error {
	return r.inner.Logout(ctx)
}

func retryRead[T any](ctx context.Context, r *RetryService, call func(context.Context) (T, error)) (T, error) {
	var (
		zero           T
		lastErr        error
		invalidRetried bool
	)

	for attempt := range r.config.MaxAttempts {
		v, err := call(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if !shouldRetry(err, &invalidRetried) {
			return zero, err
		}

		// Last attempt, don't sleep.
		if attempt == r.config.MaxAttempts-1 {
			break
		}

		if err := r.sleep(ctx, r.backoff(attempt)); err != nil {
			return zero, lastErr
		}
	}

	return zero, lastErr
}

// shouldRetry reports whether a read failure is transient.
func shouldRetry(err error, invalidRetried *bool) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	if IsAuth(err) {
		return false
	}

	// A payload that breaks the contract gets one retry.
	var inv *InvalidPayloadError
	if errors.As(err, &inv) {
		if *invalidRetried {
			return false
		}
		*invalidRetried = true
		return true
	}

	var fe *FetchError
	if errors.As(err, &fe) && fe.StatusCode != 0 {
		return fe.StatusCode >= 500 || fe.StatusCode == http.StatusTooManyRequests
	}

	// Network errors and the like.
	return true
}

// backoff computes the wait duration for the given attempt.
func (r *RetryService) backoff(attempt int) time.Duration {
	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt))
	if wait > float64(r.config.MaxWait) {
		wait = float64(r.config.MaxWait)
	}

	// Add ±20% jitter.
	jitter := wait * 0.2 * (2*rand.Float64() - 1)
	wait += jitter

	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
