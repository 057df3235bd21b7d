package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShutdownManagerDefaultsTimeout(t *testing.T) {
	sm := NewShutdownManager(NewLogger(InfoLevel, nil), 0)
	assert.Equal(t, 30*time.Second, sm.shutdownTimeout)
}

func TestRunCleanupExecutesAllFuncs(t *testing.T) {
	sm := NewShutdownManager(NewLogger(InfoLevel, nil), time.Second)

	var ran1, ran2 bool
	sm.RegisterShutdownFunc(func(ctx context.Context) error {
		ran1 = true
		return nil
	})
	sm.RegisterShutdownFunc(func(ctx context.Context) error {
		ran2 = true
		return nil
	})

	require.NoError(t, sm.runCleanup(context.Background()))
	assert.True(t, ran1)
	assert.True(t, ran2)
}

func TestRunCleanupCollectsErrors(t *testing.T) {
	sm := NewShutdownManager(NewLogger(InfoLevel, nil), time.Second)
	sm.RegisterShutdownFunc(func(ctx context.Context) error {
		return errors.New("boom")
	})

	err := sm.runCleanup(context.Background())
	assert.Error(t, err)
}

func TestRunCleanupTimesOut(t *testing.T) {
	sm := NewShutdownManager(NewLogger(InfoLevel, nil), time.Second)
	sm.RegisterShutdownFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := sm.runCleanup(ctx)
	assert.Error(t, err)
}

func TestRunInterruptibleRunsWorkAndCleanup(t *testing.T) {
	var cleaned bool
	err := RunInterruptible(
		NewLogger(InfoLevel, nil),
		func(ctx context.Context) error { return nil },
		func(ctx context.Context) error {
			cleaned = true
			return nil
		},
	)

	require.NoError(t, err)
	assert.True(t, cleaned)
}

func TestRunInterruptiblePropagatesWorkError(t *testing.T) {
	workErr := errors.New("work failed")
	err := RunInterruptible(
		NewLogger(InfoLevel, nil),
		func(ctx context.Context) error { return workErr },
	)

	assert.ErrorIs(t, err, workErr)
}
