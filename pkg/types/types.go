package types

import "time"

// Gateway API ports by trading mode, per IB Gateway convention.
const (
	LiveGatewayPort  = 4001
	PaperGatewayPort = 4002
)

// Outcome is the result of a single probe invocation. Detail carries the
// error description when Status is OutcomeError.
type Outcome struct {
	Status OutcomeStatus
	Detail string
}

// Found returns a successful probe outcome.
func Found() Outcome { return Outcome{Status: OutcomeFound} }

// NotFound returns a probe outcome for a clean miss.
func NotFound() Outcome { return Outcome{Status: OutcomeNotFound} }

// ProbeError returns a probe outcome describing a transient failure.
func ProbeError(detail string) Outcome {
	return Outcome{Status: OutcomeError, Detail: detail}
}

// SettlePolicy configures the optional second probe performed shortly after
// the first successful one. The second probe is observational only: it can
// never revert a success.
type SettlePolicy struct {
	Delay              time.Duration
	RequireSecondProbe bool
}

// RetryPolicy is the configuration for one orchestration run. Immutable once
// a run starts.
type RetryPolicy struct {
	MaxAttempts int
	Interval    time.Duration
	Settle      *SettlePolicy
}

// Result is the terminal, immutable outcome of one orchestration run. It is
// computed exactly once and is the sole input to notification delivery.
type Result struct {
	RunID      string       `json:"runId"`
	Source     string       `json:"source"`
	Status     ResultStatus `json:"status"`
	ViaSettle  bool         `json:"viaSettle,omitempty"`
	Attempts   int          `json:"attempts"`
	LastError  string       `json:"lastError,omitempty"`
	StartedAt  time.Time    `json:"startedAt"`
	FinishedAt time.Time    `json:"finishedAt"`
}

// OK reports whether the run ended in success.
func (r Result) OK() bool { return r.Status == ResultSuccess }

// Notification is a formatted, human-visible message delivered through the
// configured sinks. At most one Notification is produced per run.
type Notification struct {
	Level     NotifyLevel `json:"level"`
	Source    string      `json:"source,omitempty"`
	RunID     string      `json:"runId,omitempty"`
	Message   string      `json:"message"`
	Timestamp time.Time   `json:"timestamp"`
}
