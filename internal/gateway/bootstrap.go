// Package gateway brings up a local IB Gateway process and probes its API
// port for readiness. Starting the process and confirming readiness are kept
// separate: EnsureRunning only launches and waits out the warm-up, while the
// poll orchestrator owns confirmation.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"
)

// EnsureRunning launches the gateway process if it is not already accepting
// connections, then sleeps the fixed warm-up period before returning control
// to the caller. It performs no readiness confirmation of its own.
func EnsureRunning(ctx context.Context, logger *slog.Logger, isUp func(ctx context.Context) bool, start func() error, warmup time.Duration) error {
	if logger == nil {
		logger = slog.Default()
	}
	if isUp(ctx) {
		logger.Info("gateway already accepting connections, skipping start")
		return nil
	}

	logger.Info("starting gateway process", "warmup", warmup)
	if err := start(); err != nil {
		return fmt.Errorf("starting gateway: %w", err)
	}

	t := time.NewTimer(warmup)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// StartCommand returns a fire-and-forget launcher for the given shell
// command. The process is detached: its exit is not waited on, since
// supervision beyond the start is out of scope.
func StartCommand(command string) func() error {
	return func() error {
		if command == "" {
			return fmt.Errorf("gateway start command is empty")
		}
		cmd := exec.Command("sh", "-c", command)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Start(); err != nil {
			return err
		}
		go func() { _ = cmd.Wait() }()
		return nil
	}
}
