package sim

import (
	"github.com/sirupsen/logrus"

	"github.com/platform-sim/platform-sim/sim/trace"
)

// PassengerDecisionEvent lets waiting passengers react to the sector lights
// before the train arrives.
type PassengerDecisionEvent struct {
	eventBase
	arrival float64
}

func (e *PassengerDecisionEvent) Kind() EventKind { return KindPassengerDecision }

// Fire walks the platform sector by sector. Passengers under a GREEN light
// stay. Under YELLOW a share moves to a nearby emptier GREEN sector. Under RED,
// or where no car will stop, each passenger looks for a better sector they can
// reach before the train arrives.
func (e *PassengerDecisionEvent) Fire(env *Environment) ([]Event, error) {
	timeToMove := e.arrival - e.time
	for _, sector := range env.Station.Sectors {
		if sector.IsEmpty() {
			continue
		}
		idx := NewSectorDistanceIndex(env.Station, sector.Index)
		switch sector.Light.Status {
		case LightGreen:
		case LightYellow:
			e.decideYellow(env, idx, sector)
		default:
			e.decideRed(env, idx, sector, timeToMove)
		}
	}
	logrus.Infof("[%9.3fs] Passengers decided: %v", e.time, env.Station.Occupancy())
	return nil, nil
}

func (e *PassengerDecisionEvent) decideYellow(env *Environment, idx *SectorDistanceIndex, sector *StationSector) {
	lookahead := env.Config.Passenger.YellowLookahead
	to, ok := idx.LeastOccupiedWithin(lookahead, LightGreen, true)
	if !ok {
		return
	}
	target := env.Station.Sector(to)
	count := env.RNG.ForSubsystem(SubsystemDecision).Intn(target.Len() + 1)
	count = min(count, sector.Len())
	if count == 0 {
		return
	}
	target.Add(sector.RemoveFront(count)...)
	env.recordMove(e.time, sector.Index, to, count, idx.Distance(to), trace.ReasonYellowLight)
	logrus.Debugf("%d passengers move from yellow sector %d to green sector %d", count, sector.Index, to)
}

func (e *PassengerDecisionEvent) decideRed(env *Environment, idx *SectorDistanceIndex, sector *StationSector, timeToMove float64) {
	reason := trace.ReasonRedLight
	if !sector.Light.IsSet() {
		reason = trace.ReasonNoLight
	}
	compliance := env.RNG.ForSubsystem(SubsystemCompliance)
	for _, p := range sector.Snapshot() {
		if p.MaxWalk <= 0 {
			continue
		}
		able := int(p.ReachableDistance(timeToMove))
		if able < 1 {
			continue
		}
		to, ok := redTarget(idx, sector, able)
		if !ok || !p.IsCompliant(env.Config.Passenger.Compliance, compliance) {
			continue
		}
		sector.Remove(p)
		env.Station.Sector(to).Add(p)
		env.recordMove(e.time, sector.Index, to, 1, idx.Distance(to), reason)
		logrus.Debugf("Passenger %s walks from sector %d to sector %d", p.ID, sector.Index, to)
	}
}

// redTarget finds the best sector within reach: GREEN first, then YELLOW, then
// a RED sector that is less crowded than the origin. Only sectors with a car
// count.
func redTarget(idx *SectorDistanceIndex, origin *StationSector, able int) (int, bool) {
	for _, status := range []LightStatus{LightGreen, LightYellow} {
		if to, ok := idx.NearestWithin(able, status, true); ok {
			return to, true
		}
	}
	return idx.nearest(idx.byStatus[LightRed], able, func(s *StationSector) bool {
		return s.HasCar() && s.Len() < origin.Len()
	})
}
