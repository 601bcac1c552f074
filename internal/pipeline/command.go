// Package pipeline runs the downstream data pipeline command once the
// gateway readiness run has succeeded.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/oquants/tradewatch/internal/metrics"
	"github.com/oquants/tradewatch/pkg/types"
)

// CheckSetup verifies the pipeline prerequisites before any probe is
// attempted. A failure here is fatal and maps to exit code 1.
func CheckSetup(cfg types.PipelineConfig) error {
	if strings.TrimSpace(cfg.Command) == "" {
		return fmt.Errorf("pipeline command is empty")
	}
	if cfg.WorkDir != "" {
		info, err := os.Stat(cfg.WorkDir)
		if err != nil {
			return fmt.Errorf("pipeline workDir: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("pipeline workDir %s is not a directory", cfg.WorkDir)
		}
	}
	if cfg.Timeout != "" {
		if _, err := time.ParseDuration(cfg.Timeout); err != nil {
			return fmt.Errorf("pipeline timeout: %w", err)
		}
	}
	return nil
}

// Run executes the pipeline command with stdout/stderr passed through.
// extraEnv entries ("KEY=VALUE") are appended to the inherited environment.
func Run(ctx context.Context, cfg types.PipelineConfig, extraEnv ...string) error {
	if err := CheckSetup(cfg); err != nil {
		return err
	}

	if cfg.Timeout != "" {
		timeout, _ := time.ParseDuration(cfg.Timeout)
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", cfg.Command)
	cmd.Dir = cfg.WorkDir
	cmd.Env = append(os.Environ(), extraEnv...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		metrics.PipelineRuns.WithLabelValues("failed").Inc()
		return fmt.Errorf("pipeline command failed: %w", err)
	}
	metrics.PipelineRuns.WithLabelValues("completed").Inc()
	return nil
}
