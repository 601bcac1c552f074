package server

import (
	"sync"

	"github.com/oquants/tradewatch/pkg/types"
)

const defaultRunLogCapacity = 64

// RunLog is a bounded, in-memory record of recent orchestration runs,
// newest first. It only exists for the status API; runs are not persisted.
type RunLog struct {
	mu      sync.RWMutex
	entries []types.Result
	cap     int
}

// NewRunLog creates a run log holding up to the default number of runs.
func NewRunLog() *RunLog {
	return &RunLog{cap: defaultRunLogCapacity}
}

// Append records a finished run.
func (l *RunLog) Append(result types.Result) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append([]types.Result{result}, l.entries...)
	if len(l.entries) > l.cap {
		l.entries = l.entries[:l.cap]
	}
}

// Recent returns the recorded runs, newest first.
func (l *RunLog) Recent() []types.Result {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]types.Result, len(l.entries))
	copy(out, l.entries)
	return out
}
