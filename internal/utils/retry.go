package utils

import (
	"context"
	"errors"
	"fmt"
)

// ErrAttemptsExhausted is matched by every *ExhaustedError.
var ErrAttemptsExhausted = errors.New("attempts exhausted")

// ExhaustedError reports that no attempt was accepted. Last holds the error
// of the final attempt, or nil when it returned a rejected value.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	if e.Last != nil {
		return fmt.Sprintf("%v after %d attempts: %v", ErrAttemptsExhausted, e.Attempts, e.Last)
	}
	return fmt.Sprintf("%v after %d attempts", ErrAttemptsExhausted, e.Attempts)
}

func (e *ExhaustedError) Unwrap() []error {
	if e.Last != nil {
		return []error{ErrAttemptsExhausted, e.Last}
	}
	return []error{ErrAttemptsExhausted}
}

// AttemptFunc runs one attempt. attempt is 1-based.
type AttemptFunc[T any] func(ctx context.Context, attempt int) (T, error)

// Attempt calls fn up to maxAttempts times and returns the first result that
// accept approves. An attempt that errors counts as rejected. Context
// cancellation stops the loop immediately and returns the context error.
func Attempt[T any](ctx context.Context, maxAttempts int, fn AttemptFunc[T], accept func(T) bool) (T, error) {
	var (
		zero    T
		lastErr error
	)
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for i := 1; i <= maxAttempts; i++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		out, err := fn(ctx, i)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return zero, ctxErr
			}
			lastErr = err
			continue
		}
		if accept == nil || accept(out) {
			return out, nil
		}
		lastErr = nil
	}

	return zero, &ExhaustedError{Attempts: maxAttempts, Last: lastErr}
}
