// Package poll implements the bounded-retry polling orchestrator: it drives
// a probe according to a retry policy, tracks the run through an explicit
// phase state machine, and delivers exactly one terminal notification per
// run regardless of outcome.
package poll

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/oquants/tradewatch/internal/metrics"
	"github.com/oquants/tradewatch/pkg/types"
)

// Probe performs one readiness/event check against an external system.
// The orchestrator never inspects what the probe actually checks; failures
// are reported as data, not errors.
type Probe func(ctx context.Context) types.Outcome

// Notifier delivers the terminal result of a run through an external
// channel. It is invoked at most once per run. A delivery error is logged
// and never changes the run outcome.
type Notifier func(result types.Result) error

// Runner drives a Probe according to a RetryPolicy.
type Runner struct {
	source   string
	policy   types.RetryPolicy
	probe    Probe
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the run logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithClock sets the timestamp source (useful for testing).
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// New creates a Runner for the given source name. The policy is validated
// once here and is immutable for every run the Runner performs.
func New(source string, policy types.RetryPolicy, probe Probe, notifier Notifier, opts ...Option) (*Runner, error) {
	if probe == nil {
		return nil, fmt.Errorf("probe is required")
	}
	if err := Validate(policy); err != nil {
		return nil, fmt.Errorf("invalid retry policy: %w", err)
	}
	r := &Runner{
		source:   source,
		policy:   policy,
		probe:    probe,
		notifier: notifier,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r, nil
}

// Run performs one orchestration run and returns its terminal result. Run
// itself never fails: probe errors are retried like misses, cancellation
// becomes a Cancelled result, and every path ends with a single
// notification.
func (r *Runner) Run(ctx context.Context) types.Result {
	result := types.Result{
		RunID:     ulid.Make().String(),
		Source:    r.source,
		StartedAt: r.now(),
	}
	log := r.logger.With("source", r.source, "run", result.RunID)

	phase := types.PhaseWaiting
	attempts := 0
	lastErr := ""

loop:
	for attempts < r.policy.MaxAttempts {
		if ctx.Err() != nil {
			phase = r.advance(log, phase, types.PhaseTerminal)
			result.Status = types.ResultCancelled
			break
		}

		phase = r.advance(log, phase, types.PhaseProbing)
		attempts++
		out := r.probe(ctx)
		metrics.Probes.WithLabelValues(r.source, string(out.Status)).Inc()

		switch out.Status {
		case types.OutcomeFound:
			if r.policy.Settle == nil {
				phase = r.advance(log, phase, types.PhaseTerminal)
				result.Status = types.ResultSuccess
				break loop
			}
			phase = r.advance(log, phase, types.PhaseSettling)
			if r.sleep(ctx, r.policy.Settle.Delay) && r.policy.Settle.RequireSecondProbe {
				second := r.probe(ctx)
				metrics.Probes.WithLabelValues(r.source, string(second.Status)).Inc()
				log.Info("settle probe finished", "outcome", second.Status, "detail", second.Detail)
			}
			// The first Found already decided the run. A miss or a
			// cancellation during settle never reverts it.
			phase = r.advance(log, phase, types.PhaseTerminal)
			result.Status = types.ResultSuccess
			result.ViaSettle = true
			break loop
		case types.OutcomeError:
			lastErr = out.Detail
			log.Warn("probe error", "attempt", attempts, "max", r.policy.MaxAttempts, "error", out.Detail)
		default:
			log.Info("no match", "attempt", attempts, "max", r.policy.MaxAttempts)
		}

		if attempts >= r.policy.MaxAttempts {
			phase = r.advance(log, phase, types.PhaseTerminal)
			result.Status = types.ResultExhausted
			break
		}

		phase = r.advance(log, phase, types.PhaseRetrying)
		if !r.sleep(ctx, r.policy.Interval) {
			phase = r.advance(log, phase, types.PhaseTerminal)
			result.Status = types.ResultCancelled
			break
		}
	}

	if result.Status == "" {
		result.Status = types.ResultExhausted
	}
	if !IsTerminal(phase) {
		r.advance(log, phase, types.PhaseTerminal)
	}
	result.Attempts = attempts
	result.LastError = lastErr
	result.FinishedAt = r.now()
	metrics.Runs.WithLabelValues(r.source, string(result.Status)).Inc()

	r.deliver(log, result)
	return result
}

// advance moves the run to the next phase, checking the transition table.
// A rejected transition is a programming error: it is logged and the run
// continues, since the orchestrator must always reach a terminal result.
func (r *Runner) advance(log *slog.Logger, from, to types.RunPhase) types.RunPhase {
	if err := Transition(from, to); err != nil {
		log.Error("phase transition rejected", "error", err)
		return to
	}
	log.Debug("phase change", "from", from, "to", to)
	return to
}

// sleep waits for d or until the context is cancelled. Returns false on
// cancellation. A zero duration still observes cancellation.
func (r *Runner) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (r *Runner) deliver(log *slog.Logger, result types.Result) {
	if r.notifier == nil {
		return
	}
	if err := r.notifier(result); err != nil {
		log.Warn("notification delivery failed", "error", err)
	}
}
