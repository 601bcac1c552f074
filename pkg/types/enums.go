// Package types defines the public domain types for the tradewatch polling orchestrator.
package types

// OutcomeStatus represents the result of a single probe invocation.
type OutcomeStatus string

// OutcomeStatus values enumerate the possible probe outcomes.
const (
	OutcomeFound    OutcomeStatus = "FOUND"
	OutcomeNotFound OutcomeStatus = "NOT_FOUND"
	OutcomeError    OutcomeStatus = "ERROR"
)

// ResultStatus represents the terminal outcome of one orchestration run.
type ResultStatus string

// ResultStatus values enumerate the terminal run outcomes.
const (
	ResultSuccess   ResultStatus = "SUCCESS"
	ResultExhausted ResultStatus = "EXHAUSTED"
	ResultCancelled ResultStatus = "CANCELLED"
)

// RunPhase represents the lifecycle phase of an orchestration run.
type RunPhase string

// RunPhase values represent the lifecycle phases of an orchestration run.
const (
	PhaseWaiting  RunPhase = "WAITING"
	PhaseProbing  RunPhase = "PROBING"
	PhaseRetrying RunPhase = "RETRYING"
	PhaseSettling RunPhase = "SETTLING"
	PhaseTerminal RunPhase = "TERMINAL"
)

// SinkType defines the notification sink type.
type SinkType string

// SinkType values enumerate the supported notification sink backends.
const (
	SinkConsole SinkType = "console"
	SinkFile    SinkType = "file"
	SinkWebhook SinkType = "webhook"
	SinkEmail   SinkType = "email"
	SinkSNS     SinkType = "sns"
)

// NotifyLevel is the severity attached to a delivered notification.
type NotifyLevel string

// NotifyLevel values enumerate notification severities.
const (
	NotifyLevelInfo    NotifyLevel = "INFO"
	NotifyLevelWarning NotifyLevel = "WARNING"
	NotifyLevelError   NotifyLevel = "ERROR"
)
