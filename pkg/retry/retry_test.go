package retry

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstant_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Constant(func() error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	}, time.Millisecond, 5)

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestConstant_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Constant(func() error {
		calls++
		return errors.New("always broken")
	}, time.Millisecond, 3)

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "failed after 3 attempts")
}

func TestExponential_RequiresInterval(t *testing.T) {
	err := Exponential(func() error { return nil }, ExponentialConfig{})
	require.Error(t, err)
}

func TestExponential_Retries(t *testing.T) {
	calls := 0
	retries := 0
	err := Exponential(func() error {
		calls++
		if calls < 2 {
			return errors.New("transient")
		}
		return nil
	}, ExponentialConfig{
		InitialInterval: time.Millisecond,
		OnRetry: func(error, time.Duration) {
			retries++
		},
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, retries)
}
