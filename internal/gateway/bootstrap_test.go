package gateway

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureRunning_AlreadyUp(t *testing.T) {
	started := false
	err := EnsureRunning(context.Background(), nil,
		func(context.Context) bool { return true },
		func() error { started = true; return nil },
		time.Hour,
	)
	require.NoError(t, err)
	assert.False(t, started)
}

func TestEnsureRunning_StartsAndWaitsWarmup(t *testing.T) {
	started := false
	err := EnsureRunning(context.Background(), nil,
		func(context.Context) bool { return false },
		func() error { started = true; return nil },
		0,
	)
	require.NoError(t, err)
	assert.True(t, started)
}

func TestEnsureRunning_StartFailure(t *testing.T) {
	err := EnsureRunning(context.Background(), nil,
		func(context.Context) bool { return false },
		func() error { return fmt.Errorf("no such binary") },
		0,
	)
	assert.ErrorContains(t, err, "starting gateway")
}

func TestEnsureRunning_CancelledDuringWarmup(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := EnsureRunning(ctx, nil,
		func(context.Context) bool { return false },
		func() error { return nil },
		time.Hour,
	)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStartCommand_EmptyCommand(t *testing.T) {
	err := StartCommand("")()
	assert.Error(t, err)
}

func TestStartCommand_Launches(t *testing.T) {
	err := StartCommand("true")()
	assert.NoError(t, err)
}
