package commands

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/oquants/tradewatch/internal/config"
	"github.com/oquants/tradewatch/pkg/types"
)

// NewNotifyCmd creates the notify command, which pushes a test message
// through every configured sink so delivery can be verified end to end.
func NewNotifyCmd() *cobra.Command {
	var (
		configDir string
		message   string
		level     string
	)

	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Send a test notification through the configured sinks",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.LoadOrDefault(configDir)
			if err != nil {
				return err
			}

			dispatcher, err := buildDispatcher(cfg.Notify, slog.Default())
			if err != nil {
				return err
			}

			lvl := types.NotifyLevel(level)
			switch lvl {
			case types.NotifyLevelInfo, types.NotifyLevelWarning, types.NotifyLevelError:
			default:
				return fmt.Errorf("invalid --level %q", level)
			}

			n := types.Notification{
				Level:     lvl,
				Source:    "notify-test",
				Message:   message,
				Timestamp: time.Now(),
			}
			if err := dispatcher.Send(n); err != nil {
				return fmt.Errorf("delivery failed: %w", err)
			}
			fmt.Println("test notification delivered")
			return nil
		},
	}

	cmd.Flags().StringVar(&configDir, "config", ".", "directory containing tradewatch.yaml")
	cmd.Flags().StringVar(&message, "message", "tradewatch notification test", "message to deliver")
	cmd.Flags().StringVar(&level, "level", string(types.NotifyLevelInfo), "severity: INFO, WARNING or ERROR")
	return cmd
}
