package poll

import (
	"fmt"
	"time"

	"github.com/oquants/tradewatch/pkg/types"
)

// DefaultGatewayPolicy returns the default polling budget for gateway
// readiness: a short window with tight spacing, no settle probe.
func DefaultGatewayPolicy() types.RetryPolicy {
	return types.RetryPolicy{
		MaxAttempts: 12,
		Interval:    10 * time.Second,
	}
}

// DefaultMailPolicy returns the default polling budget for mailbox polling.
// The settle probe catches a companion message arriving in the same window.
func DefaultMailPolicy() types.RetryPolicy {
	return types.RetryPolicy{
		MaxAttempts: 8,
		Interval:    60 * time.Second,
		Settle: &types.SettlePolicy{
			Delay:              10 * time.Second,
			RequireSecondProbe: true,
		},
	}
}

// Validate checks a retry policy for use by a run. Pure, no side effects.
func Validate(policy types.RetryPolicy) error {
	if policy.MaxAttempts < 1 {
		return fmt.Errorf("maxAttempts must be >= 1, got %d", policy.MaxAttempts)
	}
	if policy.Interval < 0 {
		return fmt.Errorf("interval must be >= 0, got %s", policy.Interval)
	}
	if policy.Settle != nil && policy.Settle.Delay < 0 {
		return fmt.Errorf("settle delay must be >= 0, got %s", policy.Settle.Delay)
	}
	return nil
}

// Deadline returns the worst-case wall time a run with this policy can take,
// so callers can judge whether the overall window is acceptable.
func Deadline(policy types.RetryPolicy) time.Duration {
	d := time.Duration(policy.MaxAttempts-1) * policy.Interval
	if policy.Settle != nil {
		d += policy.Settle.Delay
	}
	return d
}
