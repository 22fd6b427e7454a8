package utils

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nonEmpty(s string) bool { return s != "" }

func TestAttempt_AcceptsFirstValidResult(t *testing.T) {
	replies := []string{"", "", "hello"}
	calls := 0

	out, err := Attempt(context.Background(), 3, func(ctx context.Context, n int) (string, error) {
		calls++
		assert.Equal(t, calls, n)
		return replies[n-1], nil
	}, nonEmpty)

	require.NoError(t, err)
	assert.Equal(t, "hello", out)
	assert.Equal(t, 3, calls)
}

func TestAttempt_StopsAtFirstAccepted(t *testing.T) {
	calls := 0
	out, err := Attempt(context.Background(), 3, func(ctx context.Context, n int) (string, error) {
		calls++
		return "ok", nil
	}, nonEmpty)

	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 1, calls)
}

func TestAttempt_ExhaustedByRejection(t *testing.T) {
	calls := 0
	_, err := Attempt(context.Background(), 3, func(ctx context.Context, n int) (string, error) {
		calls++
		return "", nil
	}, nonEmpty)

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, ErrAttemptsExhausted)

	var ex *ExhaustedError
	require.ErrorAs(t, err, &ex)
	assert.Equal(t, 3, ex.Attempts)
	assert.NoError(t, ex.Last)
}

func TestAttempt_ErrorsCountAsRejected(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	out, err := Attempt(context.Background(), 3, func(ctx context.Context, n int) (string, error) {
		calls++
		if n < 3 {
			return "", boom
		}
		return "third time", nil
	}, nonEmpty)

	require.NoError(t, err)
	assert.Equal(t, "third time", out)
	assert.Equal(t, 3, calls)
}

func TestAttempt_LastErrorIsKept(t *testing.T) {
	boom := errors.New("boom")
	_, err := Attempt(context.Background(), 2, func(ctx context.Context, n int) (string, error) {
		if n == 1 {
			return "", nil
		}
		return "", boom
	}, nonEmpty)

	assert.ErrorIs(t, err, ErrAttemptsExhausted)
	assert.ErrorIs(t, err, boom)
}

func TestAttempt_BlankFinalAttemptClearsEarlierError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Attempt(context.Background(), 2, func(ctx context.Context, n int) (string, error) {
		if n == 1 {
			return "", boom
		}
		return "", nil
	}, nonEmpty)

	var ex *ExhaustedError
	require.ErrorAs(t, err, &ex)
	assert.NoError(t, ex.Last)
	assert.NotErrorIs(t, err, boom)
}

func TestAttempt_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	_, err := Attempt(ctx, 3, func(ctx context.Context, n int) (string, error) {
		calls++
		cancel()
		return "", ctx.Err()
	}, nonEmpty)

	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrAttemptsExhausted)
	assert.Equal(t, 1, calls)
}

func TestAttempt_NilAcceptTakesFirstSuccess(t *testing.T) {
	out, err := Attempt(context.Background(), 0, func(ctx context.Context, n int) (int, error) {
		return 42, nil
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, 42, out)
}
