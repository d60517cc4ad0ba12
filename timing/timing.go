// Package timing measures wall-clock durations.
package timing

import "time"

// ExecutionTime is a stopwatch started on construction. It is never reset.
//
//	timer := timing.NewExecutionTime()
//	// ...
//	logging.Info("Finished", logging.Fields{"seconds": timer.Duration()})
type ExecutionTime struct {
	start time.Time
	now   func() time.Time
}

// NewExecutionTime starts a stopwatch.
func NewExecutionTime() *ExecutionTime {
	return newExecutionTime(time.Now)
}

func newExecutionTime(now func() time.Time) *ExecutionTime {
	return &ExecutionTime{start: now(), now: now}
}

// Elapsed returns the time since construction, recomputed on every call.
func (e *ExecutionTime) Elapsed() time.Duration {
	return e.now().Sub(e.start)
}

// Duration returns the elapsed seconds since construction.
func (e *ExecutionTime) Duration() float64 {
	return e.Elapsed().Seconds()
}
