package utils

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryWithBackoff(t *testing.T) {
	logger := NewLoggerTo(io.Discard, LevelError)

	t.Run("first attempt succeeds", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(context.Background(), 3, func(context.Context) error {
			calls++
			return nil
		}, logger)
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("wraps last error", func(t *testing.T) {
		boom := errors.New("boom")
		err := RetryWithBackoff(context.Background(), 1, func(context.Context) error {
			return boom
		}, logger)
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("stops when context is cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		err := RetryWithBackoff(ctx, 5, func(context.Context) error {
			calls++
			cancel()
			return errors.New("fail")
		}, logger)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})
}
