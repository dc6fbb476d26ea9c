package sim

import "fmt"

// Timing tracks the turnaround timer in simulation seconds.
type Timing struct {
	StartedAt *float64 `json:"started_at"`
	StoppedAt *float64 `json:"stopped_at"`
}

// Start records the train's arrival. Starting twice is an invariant violation.
func (t *Timing) Start(at float64) error {
	if t.StartedAt != nil {
		return fmt.Errorf("%w: at %.3fs, first started at %.3fs", ErrTimerAlreadyStarted, at, *t.StartedAt)
	}
	t.StartedAt = &at
	return nil
}

// Stop records departure readiness. It must follow Start.
func (t *Timing) Stop(at float64) error {
	if t.StartedAt == nil {
		return fmt.Errorf("%w: stop requested at %.3fs", ErrTimerNotStarted, at)
	}
	if at < *t.StartedAt {
		return fmt.Errorf("%w: start %.3fs, stop %.3fs", ErrStopBeforeStart, *t.StartedAt, at)
	}
	t.StoppedAt = &at
	return nil
}

// Started reports whether the timer has been started.
func (t *Timing) Started() bool {
	return t.StartedAt != nil
}

// Stopped reports whether the timer has been stopped.
func (t *Timing) Stopped() bool {
	return t.StoppedAt != nil
}

// TurnaroundTime returns stop - start. It is undefined, and an error, until
// both have fired.
func (t *Timing) TurnaroundTime() (float64, error) {
	if t.StartedAt == nil {
		return 0, ErrTimerNotStarted
	}
	if t.StoppedAt == nil {
		return 0, ErrTimerNotStopped
	}
	return *t.StoppedAt - *t.StartedAt, nil
}
