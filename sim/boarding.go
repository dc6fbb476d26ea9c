package sim

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/platform-sim/platform-sim/sim/trace"
)

// TrainArriveEvent marks the train stopping at the platform. It starts the
// turnaround timer and fans out one chain per sector.
type TrainArriveEvent struct {
	eventBase
}

func (e *TrainArriveEvent) Kind() EventKind { return KindTrainArrive }

// Fire decides how many passengers leave each car and starts alighting,
// boarding or relocation in every sector.
func (e *TrainArriveEvent) Fire(env *Environment) ([]Event, error) {
	if env.Train.ParkedAt == nil {
		return nil, fmt.Errorf("%w: arrival at %.3fs", ErrTrainNotParked, e.time)
	}
	if err := env.Timing.Start(e.time); err != nil {
		return nil, err
	}
	env.Train.Stop()
	logrus.Infof("[%9.3fs] Train arrived at sector %d", e.time, *env.Train.ParkedAt)

	unload := env.RNG.ForSubsystem(SubsystemUnload)
	var next []Event
	for _, sector := range env.Station.Sectors {
		car := env.CarAt(sector.Index)
		if car == nil {
			next = append(next, env.startMove(e.time, sector.Index, trace.ReasonNoCar)...)
			continue
		}
		pct := env.Config.Train.UnloadPercent.Percent(unload, car.FlatIndex)
		count := int(math.Floor(pct / 100 * float64(car.Len())))
		logrus.Debugf("%d passengers will leave car %d", count, car.FlatIndex)
		if count > 0 {
			env.unloading[sector.Index] = true
			next = append(next, NewUnloadPassengerEvent(e.time, sector.Index, count))
		} else {
			next = append(next, env.startLoad(e.time, sector.Index)...)
		}
	}
	return next, nil
}

// UnloadPassengerEvent lets one passenger off the car in front of a sector.
type UnloadPassengerEvent struct {
	eventBase
	sector int
	count  int // passengers still to alight, including this one
}

// NewUnloadPassengerEvent creates an alighting step for sector.
func NewUnloadPassengerEvent(at float64, sector, count int) *UnloadPassengerEvent {
	return &UnloadPassengerEvent{eventBase: eventBase{time: at}, sector: sector, count: count}
}

func (e *UnloadPassengerEvent) Kind() EventKind { return KindUnloadPassenger }

// Fire moves one passenger from the car to the departed set and continues
// alighting, or hands the sector over to boarding when done.
func (e *UnloadPassengerEvent) Fire(env *Environment) ([]Event, error) {
	car := env.CarAt(e.sector)
	if car == nil || e.count <= 0 || car.IsEmpty() {
		logrus.Warnf("[%9.3fs] Nothing to unload in sector %d (count %d), boarding instead", e.time, e.sector, e.count)
		return e.handOff(env), nil
	}

	door := env.openDoor(car)
	p := car.RemoveFront(1)[0]
	env.Station.Departed.Add(p)
	env.Alighted++
	e.perform(door+p.DoorTime(), "passenger %s left car %d", p.ID, car.FlatIndex)
	env.markBusy(e.time)

	if e.count > 1 && !car.IsEmpty() {
		return []Event{NewUnloadPassengerEvent(e.time, e.sector, e.count-1)}, nil
	}
	return e.handOff(env), nil
}

func (e *UnloadPassengerEvent) handOff(env *Environment) []Event {
	delete(env.unloading, e.sector)
	return env.startLoad(e.time, e.sector)
}

// LoadPassengerEvent boards one waiting passenger into the car in front of a
// sector. A sector runs at most one boarding chain at a time.
type LoadPassengerEvent struct {
	eventBase
	sector int
}

// NewLoadPassengerEvent creates a boarding step for sector.
func NewLoadPassengerEvent(at float64, sector int) *LoadPassengerEvent {
	return &LoadPassengerEvent{eventBase: eventBase{time: at}, sector: sector}
}

func (e *LoadPassengerEvent) Kind() EventKind { return KindLoadPassenger }

// Fire boards the first passenger in line. Without a car, or with a full one,
// the chain ends and whoever still waits is sent to look for room elsewhere.
func (e *LoadPassengerEvent) Fire(env *Environment) ([]Event, error) {
	env.loading[e.sector] = true
	sector := env.Station.Sector(e.sector)
	car := env.CarAt(e.sector)
	if car == nil || car.IsFull() {
		delete(env.loading, e.sector)
		reason := trace.ReasonNoCar
		if car != nil {
			reason = trace.ReasonCarFull
		}
		next := env.startMove(e.time, e.sector, reason)
		return append(next, env.maybePrepare(e.time)...), nil
	}
	if sector.IsEmpty() {
		delete(env.loading, e.sector)
		return env.maybePrepare(e.time), nil
	}

	door := env.openDoor(car)
	p := sector.RemoveFront(1)[0]
	car.Board(p)
	env.Boarded++
	e.perform(door+p.DoorTime(), "passenger %s boarded car %d", p.ID, car.FlatIndex)
	env.markBusy(e.time)

	if !sector.IsEmpty() {
		return []Event{NewLoadPassengerEvent(e.time, e.sector)}, nil
	}
	delete(env.loading, e.sector)
	return env.maybePrepare(e.time), nil
}

// MovePassengerEvent walks the first passenger of a sector to the nearest
// sector whose car still has room, then repeats for the next one in line.
// A sector runs at most one relocation chain at a time.
type MovePassengerEvent struct {
	eventBase
	sector int
	reason string
}

// NewMovePassengerEvent creates a relocation step out of sector.
func NewMovePassengerEvent(at float64, sector int, reason string) *MovePassengerEvent {
	return &MovePassengerEvent{eventBase: eventBase{time: at}, sector: sector, reason: reason}
}

func (e *MovePassengerEvent) Kind() EventKind { return KindMovePassenger }

// Fire sends one passenger off and starts boarding at the destination.
// Passengers leave together, so the next step fires at the same instant and
// only the boarding waits for the walk. When the train is full everyone left
// stays on the platform.
func (e *MovePassengerEvent) Fire(env *Environment) ([]Event, error) {
	env.relocating[e.sector] = true
	if env.Train.IsFull() {
		delete(env.relocating, e.sector)
		logrus.Debugf("[%9.3fs] Train is full, passengers stay in sector %d", e.time, e.sector)
		return env.maybePrepare(e.time), nil
	}
	origin := env.Station.Sector(e.sector)
	if origin.IsEmpty() {
		delete(env.relocating, e.sector)
		logrus.Warnf("[%9.3fs] Sector %d has nobody left to move", e.time, e.sector)
		return env.maybePrepare(e.time), nil
	}
	if car := env.CarAt(e.sector); car != nil && !car.IsFull() {
		// alighting freed a place since the move was requested
		delete(env.relocating, e.sector)
		return env.startLoad(e.time, e.sector), nil
	}
	idx := NewSectorDistanceIndex(env.Station, e.sector)
	to, ok := idx.NearestFreeCar(env.Train)
	if !ok {
		delete(env.relocating, e.sector)
		return nil, fmt.Errorf("%w: moving out of sector %d at %.3fs", ErrNoFreeSector, e.sector, e.time)
	}

	p := origin.RemoveFront(1)[0]
	env.Station.Sector(to).Add(p)
	distance := idx.Distance(to)
	env.recordMove(e.time, e.sector, to, 1, distance, e.reason)
	arrival := e.time + p.WalkTime(distance)
	env.markBusy(arrival)
	logrus.Debugf("[%9.3fs] passenger %s walks from sector %d to sector %d (%.2fs)", e.time, p.ID, e.sector, to, arrival-e.time)

	next := env.startLoad(arrival, to)
	if origin.IsEmpty() {
		delete(env.relocating, e.sector)
		return next, nil
	}
	return append(next, NewMovePassengerEvent(e.time, e.sector, e.reason)), nil
}

// PrepareTrainEvent closes the doors and stops the turnaround timer.
type PrepareTrainEvent struct {
	eventBase
}

// NewPrepareTrainEvent creates the terminal event of a run.
func NewPrepareTrainEvent(at float64) *PrepareTrainEvent {
	return &PrepareTrainEvent{eventBase{time: at}}
}

func (e *PrepareTrainEvent) Kind() EventKind { return KindPrepareTrain }

// Fire closes every open door, charging the door time once, and records the
// departure instant.
func (e *PrepareTrainEvent) Fire(env *Environment) ([]Event, error) {
	anyOpen := false
	for _, car := range env.Train.Cars() {
		if car.CloseDoor() {
			anyOpen = true
		}
	}
	door := 0.0
	if anyOpen {
		door = env.Config.Timing.DoorAction
	}
	e.perform(door, "doors closed")
	if err := env.Timing.Stop(e.time); err != nil {
		return nil, err
	}
	env.Train.Drive()
	logrus.Infof("[%9.3fs] Train ready to depart", e.time)
	return nil, nil
}
