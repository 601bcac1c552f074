// Package commands implements the CLI subcommands for the tradewatch binary.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"golang.org/x/sync/errgroup"

	"github.com/oquants/tradewatch/internal/notify"
	"github.com/oquants/tradewatch/internal/poll"
	"github.com/oquants/tradewatch/internal/server"
	"github.com/oquants/tradewatch/pkg/types"
)

// signalContext returns a context cancelled on SIGINT/SIGTERM, so an
// interrupted poll still produces its single Cancelled notification.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// buildDispatcher creates the notification dispatcher; with no sinks
// configured, the console sink is the fallback so every run stays visible.
func buildDispatcher(sinks []types.SinkConfig, logger *slog.Logger) (*notify.Dispatcher, error) {
	if len(sinks) == 0 {
		sinks = []types.SinkConfig{{Type: types.SinkConsole}}
	}
	return notify.NewDispatcher(sinks, logger)
}

// runPoll performs one orchestration run, with the status server (if
// configured) serving for the duration of the run. The server is best-effort
// observability: its failure is logged and never reaches the run, so a bind
// error cannot change the terminal result.
func runPoll(ctx context.Context, cfg types.ServerConfig, runner *poll.Runner, runs *server.RunLog) types.Result {
	if cfg.Addr != "" {
		srv := server.New(cfg.Addr, runs)
		var g errgroup.Group
		g.Go(srv.Start)
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Stop(stopCtx)
			if err := g.Wait(); err != nil {
				slog.Warn("status server error", "error", err)
			}
		}()
	}

	result := runner.Run(ctx)
	runs.Append(result)
	return result
}

// printResult writes the terminal result to the CLI with color.
func printResult(result types.Result) {
	status := color.GreenString("%s", result.Status)
	if !result.OK() {
		status = color.RedString("%s", result.Status)
	}
	fmt.Printf("%s  source=%s attempts=%d run=%s\n", status, result.Source, result.Attempts, result.RunID)
	if result.LastError != "" {
		fmt.Printf("last error: %s\n", result.LastError)
	}
}

// resultErr maps a terminal result to the process exit contract: nil for
// success, an error (exit code 1) otherwise.
func resultErr(result types.Result) error {
	if result.OK() {
		return nil
	}
	return fmt.Errorf("%s run ended %s after %d attempt(s)", result.Source, result.Status, result.Attempts)
}
