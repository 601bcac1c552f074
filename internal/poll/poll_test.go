package poll

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/oquants/tradewatch/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// scriptedProbe replays a fixed outcome sequence and counts invocations.
// Calls past the end of the script return NotFound.
type scriptedProbe struct {
	outcomes []types.Outcome
	calls    int
}

func (p *scriptedProbe) probe(_ context.Context) types.Outcome {
	p.calls++
	if p.calls <= len(p.outcomes) {
		return p.outcomes[p.calls-1]
	}
	return types.NotFound()
}

// recordingNotifier counts deliveries and keeps the last result.
type recordingNotifier struct {
	calls int
	last  types.Result
	err   error
}

func (n *recordingNotifier) notify(r types.Result) error {
	n.calls++
	n.last = r
	return n.err
}

func newRunner(t *testing.T, policy types.RetryPolicy, probe *scriptedProbe, notifier *recordingNotifier) *Runner {
	t.Helper()
	r, err := New("test", policy, probe.probe, notifier.notify)
	require.NoError(t, err)
	return r
}

func TestRun_NeverFound_ExhaustsBudget(t *testing.T) {
	probe := &scriptedProbe{}
	notifier := &recordingNotifier{}
	r := newRunner(t, types.RetryPolicy{MaxAttempts: 4}, probe, notifier)

	result := r.Run(context.Background())

	assert.Equal(t, types.ResultExhausted, result.Status)
	assert.Equal(t, 4, result.Attempts)
	assert.Equal(t, 4, probe.calls)
	assert.Equal(t, 1, notifier.calls)
	assert.Equal(t, types.ResultExhausted, notifier.last.Status)
}

func TestRun_FoundOnLastAttempt_NoSettle(t *testing.T) {
	probe := &scriptedProbe{outcomes: []types.Outcome{
		types.NotFound(), types.NotFound(), types.Found(),
	}}
	notifier := &recordingNotifier{}
	r := newRunner(t, types.RetryPolicy{MaxAttempts: 3}, probe, notifier)

	result := r.Run(context.Background())

	assert.Equal(t, types.ResultSuccess, result.Status)
	assert.False(t, result.ViaSettle)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, 3, probe.calls)
	assert.Equal(t, 1, notifier.calls)
	assert.True(t, notifier.last.OK())
}

func TestRun_FoundFirst_SettleProbesOnceMore(t *testing.T) {
	probe := &scriptedProbe{outcomes: []types.Outcome{
		types.Found(), types.NotFound(),
	}}
	notifier := &recordingNotifier{}
	policy := types.RetryPolicy{
		MaxAttempts: 2,
		Settle:      &types.SettlePolicy{RequireSecondProbe: true},
	}
	r := newRunner(t, policy, probe, notifier)

	result := r.Run(context.Background())

	// The settle probe's miss never reverts the success.
	assert.Equal(t, types.ResultSuccess, result.Status)
	assert.True(t, result.ViaSettle)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, 2, probe.calls)
	assert.Equal(t, 1, notifier.calls)
}

func TestRun_SettleWithoutSecondProbe(t *testing.T) {
	probe := &scriptedProbe{outcomes: []types.Outcome{types.Found()}}
	notifier := &recordingNotifier{}
	policy := types.RetryPolicy{
		MaxAttempts: 5,
		Settle:      &types.SettlePolicy{},
	}
	r := newRunner(t, policy, probe, notifier)

	result := r.Run(context.Background())

	assert.Equal(t, types.ResultSuccess, result.Status)
	assert.True(t, result.ViaSettle)
	assert.Equal(t, 1, probe.calls)
}

func TestRun_ErrorsRetriedLikeMisses(t *testing.T) {
	probe := &scriptedProbe{outcomes: []types.Outcome{
		types.ProbeError("conn refused"), types.ProbeError("conn refused"), types.Found(),
	}}
	notifier := &recordingNotifier{}
	r := newRunner(t, types.RetryPolicy{MaxAttempts: 3}, probe, notifier)

	result := r.Run(context.Background())

	assert.Equal(t, types.ResultSuccess, result.Status)
	assert.Equal(t, 3, probe.calls)
	assert.Equal(t, 1, notifier.calls)
}

func TestRun_ErrorThenMiss_ExhaustsWithLastError(t *testing.T) {
	probe := &scriptedProbe{outcomes: []types.Outcome{
		types.ProbeError("x"), types.NotFound(),
	}}
	notifier := &recordingNotifier{}
	r := newRunner(t, types.RetryPolicy{MaxAttempts: 2}, probe, notifier)

	result := r.Run(context.Background())

	assert.Equal(t, types.ResultExhausted, result.Status)
	assert.Equal(t, "x", result.LastError)
	assert.Equal(t, 2, probe.calls)
	assert.Equal(t, 1, notifier.calls)
	assert.Equal(t, types.ResultExhausted, notifier.last.Status)
}

func TestRun_NotifierFailureNeverChangesResult(t *testing.T) {
	probe := &scriptedProbe{outcomes: []types.Outcome{types.Found()}}
	notifier := &recordingNotifier{err: assert.AnError}
	r := newRunner(t, types.RetryPolicy{MaxAttempts: 1}, probe, notifier)

	result := r.Run(context.Background())

	assert.Equal(t, types.ResultSuccess, result.Status)
	// No silent redelivery on failure.
	assert.Equal(t, 1, notifier.calls)
}

func TestRun_CancelledBeforeFirstProbe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	probe := &scriptedProbe{}
	notifier := &recordingNotifier{}
	r := newRunner(t, types.RetryPolicy{MaxAttempts: 3}, probe, notifier)

	result := r.Run(ctx)

	assert.Equal(t, types.ResultCancelled, result.Status)
	assert.Equal(t, 0, probe.calls)
	assert.Equal(t, 1, notifier.calls)
	assert.Equal(t, types.ResultCancelled, notifier.last.Status)
}

func TestRun_CancelledDuringInterval(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	probe := func(_ context.Context) types.Outcome {
		calls++
		cancel()
		return types.NotFound()
	}
	notifier := &recordingNotifier{}
	r, err := New("test", types.RetryPolicy{MaxAttempts: 5, Interval: time.Hour}, probe, notifier.notify)
	require.NoError(t, err)

	result := r.Run(ctx)

	assert.Equal(t, types.ResultCancelled, result.Status)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, 1, notifier.calls)
}

func TestRun_AssignsRunIDAndTimestamps(t *testing.T) {
	probe := &scriptedProbe{outcomes: []types.Outcome{types.Found()}}
	notifier := &recordingNotifier{}
	r := newRunner(t, types.RetryPolicy{MaxAttempts: 1}, probe, notifier)

	result := r.Run(context.Background())

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, "test", result.Source)
	assert.False(t, result.StartedAt.IsZero())
	assert.False(t, result.FinishedAt.IsZero())
	assert.Equal(t, result.RunID, notifier.last.RunID)
}

func TestNew_RejectsInvalidPolicy(t *testing.T) {
	probe := &scriptedProbe{}
	_, err := New("test", types.RetryPolicy{MaxAttempts: 0}, probe.probe, nil)
	assert.Error(t, err)
}

func TestNew_RequiresProbe(t *testing.T) {
	_, err := New("test", types.RetryPolicy{MaxAttempts: 1}, nil, nil)
	assert.Error(t, err)
}

func TestRun_NilNotifierIsAllowed(t *testing.T) {
	probe := &scriptedProbe{outcomes: []types.Outcome{types.Found()}}
	r, err := New("test", types.RetryPolicy{MaxAttempts: 1}, probe.probe, nil)
	require.NoError(t, err)

	result := r.Run(context.Background())
	assert.Equal(t, types.ResultSuccess, result.Status)
}
