package provider

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/kbukum/voicebridge/errors"
	"github.com/kbukum/voicebridge/resilience"
)

// ResilienceConfig bundles optional resilience policies for collaborator calls.
// Nil fields are skipped — zero config means pure passthrough with no overhead.
type ResilienceConfig struct {
	// Timeout bounds each call with a context deadline. Zero means no deadline
	// beyond what the caller's context already carries.
	Timeout time.Duration
	// Retry automatically retries failed calls with exponential backoff.
	Retry *resilience.RetryConfig
	// CircuitBreaker stops calls to a service after repeated failures.
	CircuitBreaker *resilience.CircuitBreakerConfig
}

// IsEmpty returns true if no resilience policies are configured.
func (c ResilienceConfig) IsEmpty() bool {
	return c.Timeout == 0 && c.Retry == nil && c.CircuitBreaker == nil
}

// ResilienceState holds initialized resilience primitives built from config.
type ResilienceState struct {
	timeout time.Duration
	cb      *resilience.CircuitBreaker
	// Retry config is stored as-is since resilience.Retry is a function, not a struct.
	retryCfg *resilience.RetryConfig
}

// BuildResilience creates initialized resilience primitives from config.
func BuildResilience(cfg ResilienceConfig) *ResilienceState {
	if cfg.IsEmpty() {
		return nil
	}
	s := &ResilienceState{
		timeout:  cfg.Timeout,
		retryCfg: cfg.Retry,
	}
	if cfg.CircuitBreaker != nil {
		s.cb = resilience.NewCircuitBreaker(*cfg.CircuitBreaker)
	}
	return s
}

// Execute runs fn through the configured resilience chain:
// Timeout → CircuitBreaker → Retry → fn. A deadline overrun is surfaced as
// an errors.Timeout for the given operation so the pipeline treats it like
// any other collaborator failure.
func Execute[T any](ctx context.Context, state *ResilienceState, operation string, fn func(context.Context) (T, error)) (T, error) {
	if state == nil {
		return fn(ctx)
	}

	callCtx := ctx
	if state.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, state.timeout)
		defer cancel()
	}

	run := func() (T, error) {
		if state.retryCfg != nil {
			return resilience.Retry(callCtx, *state.retryCfg, func() (T, error) {
				return fn(callCtx)
			})
		}
		return fn(callCtx)
	}

	var result T
	var err error
	if state.cb != nil {
		cbErr := state.cb.Execute(func() error {
			result, err = run()
			return err
		})
		if stderrors.Is(cbErr, resilience.ErrCircuitOpen) {
			var zero T
			return zero, cbErr
		}
	} else {
		result, err = run()
	}

	if err != nil && stderrors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		var zero T
		return zero, errors.Timeout(operation).WithCause(err)
	}
	return result, err
}
