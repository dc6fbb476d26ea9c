package sim

import (
	"errors"
	"fmt"
)

// Error families. A configuration error aborts the whole run; an invariant
// violation aborts only the chain of the event that hit it.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrInvariant     = errors.New("invariant violation")
)

// Configuration errors.
var (
	ErrTrainTooLong       = fmt.Errorf("%w: train is longer than the platform", ErrConfiguration)
	ErrParkOutOfRange     = fmt.Errorf("%w: train parked past the end of the platform", ErrConfiguration)
	ErrSignalAfterArrival = fmt.Errorf("%w: weight signal arrives after the train", ErrConfiguration)
)

// Invariant violations.
var (
	ErrNoFreeSector        = fmt.Errorf("%w: no sector with a free car while the train is not full", ErrInvariant)
	ErrTimerNotStarted     = fmt.Errorf("%w: turnaround timer not started", ErrInvariant)
	ErrTimerNotStopped     = fmt.Errorf("%w: turnaround timer not stopped", ErrInvariant)
	ErrTimerAlreadyStarted = fmt.Errorf("%w: turnaround timer already started", ErrInvariant)
	ErrStopBeforeStart     = fmt.Errorf("%w: turnaround timer stopped before it started", ErrInvariant)
	ErrTrainNotParked      = fmt.Errorf("%w: train has no park position", ErrInvariant)
)

// IsFatal reports whether err must abort the run rather than one event chain.
func IsFatal(err error) bool {
	return errors.Is(err, ErrConfiguration)
}
