package notify

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/oquants/tradewatch/pkg/types"
)

// ConsoleSink writes notifications to the terminal with color.
type ConsoleSink struct{}

// NewConsoleSink creates a new console notification sink.
func NewConsoleSink() *ConsoleSink {
	return &ConsoleSink{}
}

// Name returns the sink identifier.
func (s *ConsoleSink) Name() string { return "console" }

// Send writes a notification to the terminal with color-coded severity.
func (s *ConsoleSink) Send(n types.Notification) error {
	var prefix string
	switch n.Level {
	case types.NotifyLevelError:
		prefix = color.RedString("[ERROR]")
	case types.NotifyLevelWarning:
		prefix = color.YellowString("[WARN]")
	default:
		prefix = color.CyanString("[INFO]")
	}

	if n.Source != "" {
		fmt.Printf("%s [%s] %s\n", prefix, n.Source, n.Message)
	} else {
		fmt.Printf("%s %s\n", prefix, n.Message)
	}
	return nil
}
