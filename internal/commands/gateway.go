package commands

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/oquants/tradewatch/internal/config"
	"github.com/oquants/tradewatch/internal/gateway"
	"github.com/oquants/tradewatch/internal/pipeline"
	"github.com/oquants/tradewatch/internal/poll"
	"github.com/oquants/tradewatch/internal/server"
)

// NewGatewayCmd creates the gateway command: start the gateway if needed,
// poll until it accepts API sessions, then run the downstream pipeline.
func NewGatewayCmd() *cobra.Command {
	var (
		configDir    string
		port         int
		paper        bool
		date         string
		attempts     int
		interval     time.Duration
		warmup       time.Duration
		skipPipeline bool
	)

	cmd := &cobra.Command{
		Use:   "gateway",
		Short: "Wait for the trading gateway, then run the data pipeline",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadOrDefault(configDir)
			if err != nil {
				return err
			}

			// Flags override config.
			if cmd.Flags().Changed("port") {
				cfg.Gateway.Port = port
			}
			if cmd.Flags().Changed("paper") {
				cfg.Gateway.Paper = paper
			}
			if cmd.Flags().Changed("attempts") {
				cfg.Gateway.MaxAttempts = attempts
			}
			if cmd.Flags().Changed("interval") {
				cfg.Gateway.Interval = interval.String()
			}
			if cmd.Flags().Changed("warmup") {
				cfg.Gateway.Warmup = warmup.String()
			}

			policy, err := config.GatewayPolicy(cfg.Gateway)
			if err != nil {
				return err
			}
			warmupDur, err := config.Warmup(cfg.Gateway)
			if err != nil {
				return err
			}
			if !skipPipeline {
				if err := pipeline.CheckSetup(cfg.Pipeline); err != nil {
					return fmt.Errorf("pipeline setup: %w", err)
				}
			}
			if date == "" {
				date = time.Now().Format("2006-01-02")
			}
			if _, err := time.Parse("2006-01-02", date); err != nil {
				return fmt.Errorf("invalid --date: %w", err)
			}

			logger := slog.Default()
			dispatcher, err := buildDispatcher(cfg.Notify, logger)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			probe := gateway.NewSessionProbe(cfg.Gateway.Host, config.GatewayPort(cfg.Gateway), cfg.Gateway.ClientID)
			if cfg.Gateway.StartCmd != "" {
				err := gateway.EnsureRunning(ctx, logger, probe.Up, gateway.StartCommand(cfg.Gateway.StartCmd), warmupDur)
				if err != nil {
					return err
				}
			}

			runner, err := poll.New("gateway", policy, probe.Probe(), dispatcher.NotifierFunc(), poll.WithLogger(logger))
			if err != nil {
				return err
			}

			result := runPoll(ctx, cfg.Server, runner, server.NewRunLog())
			printResult(result)
			if err := resultErr(result); err != nil {
				return err
			}

			if skipPipeline {
				return nil
			}
			logger.Info("gateway ready, running pipeline", "date", date)
			return pipeline.Run(ctx, cfg.Pipeline, "TRADEWATCH_DATE="+date)
		},
	}

	cmd.Flags().StringVar(&configDir, "config", ".", "directory containing tradewatch.yaml")
	cmd.Flags().IntVar(&port, "port", 0, "gateway API port (default 4001 live, 4002 paper)")
	cmd.Flags().BoolVar(&paper, "paper", false, "target the paper trading gateway")
	cmd.Flags().StringVar(&date, "date", "", "target date YYYY-MM-DD (default today)")
	cmd.Flags().IntVar(&attempts, "attempts", 0, "max readiness probe attempts")
	cmd.Flags().DurationVar(&interval, "interval", 0, "delay between probe attempts")
	cmd.Flags().DurationVar(&warmup, "warmup", 0, "warm-up after starting the gateway")
	cmd.Flags().BoolVar(&skipPipeline, "skip-pipeline", false, "stop after the readiness check")
	return cmd
}
