package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// EventKind identifies the concrete event type.
type EventKind int

const (
	KindWeighTrain EventKind = iota
	KindSendWeight
	KindReceiveWeight
	KindPassengerDecision
	KindTrainArrive
	KindUnloadPassenger
	KindLoadPassenger
	KindMovePassenger
	KindPrepareTrain
)

var eventKindNames = map[EventKind]string{
	KindWeighTrain:        "WeighTrain",
	KindSendWeight:        "SendWeight",
	KindReceiveWeight:     "ReceiveWeight",
	KindPassengerDecision: "PassengerDecision",
	KindTrainArrive:       "TrainArrive",
	KindUnloadPassenger:   "UnloadPassenger",
	KindLoadPassenger:     "LoadPassenger",
	KindMovePassenger:     "MovePassenger",
	KindPrepareTrain:      "PrepareTrain",
}

func (k EventKind) String() string {
	if name, ok := eventKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event defines the interface for all simulation events.
// Fire applies the event to the environment exactly once and returns the
// events it causes. Successor timestamps are never earlier than the event's
// own timestamp after Fire.
type Event interface {
	Timestamp() float64
	Kind() EventKind
	Fire(env *Environment) ([]Event, error)
}

// eventBase carries the event time in simulation seconds.
type eventBase struct {
	time float64
}

// Timestamp returns the scheduled time of the event, advanced by any action
// it performed.
func (e *eventBase) Timestamp() float64 {
	return e.time
}

// perform advances the event's clock by an action's duration and logs it.
func (e *eventBase) perform(duration float64, format string, args ...any) {
	e.time += duration
	logrus.Debugf("[%9.3fs] %s (%.2fs)", e.time, fmt.Sprintf(format, args...), duration)
}
