// Drives a single platform run: pops events in time order, fires them against
// the environment and schedules what they cause.

package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Simulator is the core object that holds simulation time, the world and the
// event loop.
type Simulator struct {
	Clock   float64
	Horizon float64 // seconds; 0 runs until the queue drains
	// EventQueue has all pending events, ordered by time then scheduling order
	EventQueue *EventQueue
	Env        *Environment
	// EventsFired counts events popped and fired, including failed ones
	EventsFired  int
	EventsByKind map[EventKind]int
	// Failures counts event chains dropped on an invariant violation
	Failures int
	Errors   []error
}

// NewSimulator creates a simulator over a populated environment.
func NewSimulator(env *Environment) *Simulator {
	return &Simulator{
		Horizon:      env.Config.Horizon,
		EventQueue:   NewEventQueue(),
		Env:          env,
		EventsByKind: make(map[EventKind]int),
	}
}

// Schedule pushes an event into the simulator's EventQueue.
func (sim *Simulator) Schedule(ev Event) {
	sim.EventQueue.Schedule(ev)
}

// Run weighs the train at time zero and drains the queue. A configuration
// error aborts the run and is returned; an invariant violation drops the
// firing event's chain and the loop goes on.
func (sim *Simulator) Run() (*RunResult, error) {
	sim.Schedule(NewWeighTrainEvent(sim.Clock))
	for sim.EventQueue.Len() > 0 {
		if ev := sim.EventQueue.Peek(); sim.Horizon > 0 && ev.Timestamp() > sim.Horizon {
			logrus.Warnf("[%9.3fs] Horizon %.1fs reached with %d events pending", sim.Clock, sim.Horizon, sim.EventQueue.Len())
			break
		}
		ev := sim.EventQueue.PopNext()
		// chains overlap in time, so the clock only ever moves forward
		sim.Clock = max(sim.Clock, ev.Timestamp())
		logrus.Debugf("[%9.3fs] Executing %s", ev.Timestamp(), ev.Kind())

		next, err := ev.Fire(sim.Env)
		sim.EventsFired++
		sim.EventsByKind[ev.Kind()]++
		sim.Clock = max(sim.Clock, ev.Timestamp())
		if err != nil {
			if IsFatal(err) {
				return nil, fmt.Errorf("%s at %.3fs: %w", ev.Kind(), sim.Clock, err)
			}
			sim.Failures++
			sim.Errors = append(sim.Errors, err)
			logrus.Errorf("[%9.3fs] %s failed: %v", sim.Clock, ev.Kind(), err)
			continue
		}
		for _, n := range next {
			sim.Schedule(n)
		}
	}
	logrus.Infof("[%9.3fs] Simulation ended", sim.Clock)
	return sim.Result(), nil
}
