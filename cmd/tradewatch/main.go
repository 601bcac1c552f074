package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oquants/tradewatch/internal/commands"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "tradewatch",
		Short: "Readiness and mailbox polling for the trading pipeline",
		Long: `Tradewatch automates the two chores around the nightly trading pipeline:
bringing up the local IB Gateway and waiting until it accepts API sessions
before the data pipeline runs, and polling the mailbox for the expected
recommendation email. Each run retries within a bounded budget and delivers
exactly one terminal notification.`,
		Version: version,
	}

	root.AddCommand(
		commands.NewGatewayCmd(),
		commands.NewMailwatchCmd(),
		commands.NewNotifyCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
