// Package notify implements terminal-result notification dispatching to
// multiple sinks. Delivery is best-effort observability: a sink failure is
// logged and counted but never retried, so a run can never produce duplicate
// notifications.
package notify

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oquants/tradewatch/internal/metrics"
	"github.com/oquants/tradewatch/pkg/types"
)

// Sink is a notification destination.
type Sink interface {
	Send(n types.Notification) error
	Name() string
}

// Dispatcher routes notifications to configured sinks.
type Dispatcher struct {
	sinks  []Sink
	logger *slog.Logger
	now    func() time.Time
}

// NewDispatcher creates a dispatcher from sink configs.
func NewDispatcher(configs []types.SinkConfig, logger *slog.Logger) (*Dispatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{logger: logger, now: time.Now}
	for _, cfg := range configs {
		sink, err := newSink(cfg)
		if err != nil {
			return nil, fmt.Errorf("creating %s sink: %w", cfg.Type, err)
		}
		d.sinks = append(d.sinks, sink)
	}
	return d, nil
}

// Notify formats the terminal result and delivers it through every sink.
// Every sink is attempted exactly once; the joined delivery errors are
// returned so the caller can log a warning.
func (d *Dispatcher) Notify(result types.Result) error {
	return d.Send(ForResult(result, d.now()))
}

// Send delivers an already-formatted notification through every sink.
func (d *Dispatcher) Send(n types.Notification) error {
	var errs []error
	for _, sink := range d.sinks {
		if err := sink.Send(n); err != nil {
			metrics.Notifications.WithLabelValues(sink.Name(), "failed").Inc()
			d.logger.Error("notification delivery failed", "sink", sink.Name(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
			continue
		}
		metrics.Notifications.WithLabelValues(sink.Name(), "sent").Inc()
	}
	return errors.Join(errs...)
}

// NotifierFunc returns a function suitable for use as the orchestrator's
// notifier callback.
func (d *Dispatcher) NotifierFunc() func(types.Result) error {
	return d.Notify
}

// ForResult builds the fixed-format notification for a terminal result.
func ForResult(result types.Result, at time.Time) types.Notification {
	n := types.Notification{
		Source:    result.Source,
		RunID:     result.RunID,
		Timestamp: at,
	}
	switch result.Status {
	case types.ResultSuccess:
		n.Level = types.NotifyLevelInfo
		n.Message = fmt.Sprintf("tradewatch %s: success after %d attempt(s)", result.Source, result.Attempts)
		if result.ViaSettle {
			n.Message += " (settle probe done)"
		}
	case types.ResultCancelled:
		n.Level = types.NotifyLevelWarning
		n.Message = fmt.Sprintf("tradewatch %s: cancelled after %d attempt(s)", result.Source, result.Attempts)
	default:
		n.Level = types.NotifyLevelError
		n.Message = fmt.Sprintf("tradewatch %s: no match after %d attempt(s)", result.Source, result.Attempts)
		if result.LastError != "" {
			n.Message += fmt.Sprintf("; last error: %s", result.LastError)
		}
	}
	return n
}

func newSink(cfg types.SinkConfig) (Sink, error) {
	switch cfg.Type {
	case types.SinkConsole:
		return NewConsoleSink(), nil
	case types.SinkWebhook:
		if cfg.URL == "" {
			return nil, fmt.Errorf("webhook URL required")
		}
		return NewWebhookSink(cfg.URL), nil
	case types.SinkFile:
		if cfg.Path == "" {
			return nil, fmt.Errorf("file path required")
		}
		return NewFileSink(cfg.Path)
	case types.SinkEmail:
		if cfg.SMTP == nil {
			return nil, fmt.Errorf("smtp config required")
		}
		return NewEmailSink(*cfg.SMTP)
	case types.SinkSNS:
		return NewSNSSink(cfg.TopicARN)
	default:
		return nil, fmt.Errorf("unknown sink type %q", cfg.Type)
	}
}
