package sim

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/platform-sim/platform-sim/sim/distribution"
	"github.com/platform-sim/platform-sim/sim/trace"
)

// Environment is the world of one run: the platform, the train, the turnaround
// timer and the random streams. Events mutate it only from Fire.
type Environment struct {
	Config   Config   `json:"config"`
	Seed     int64    `json:"seed"`
	Station  *Station `json:"station"`
	Train    *Train   `json:"train"`
	Timing   *Timing  `json:"timing"`
	Boarded  int      `json:"boarded"`
	Alighted int      `json:"alighted"`

	RNG   *PartitionedRNG        `json:"-"`
	Trace *trace.SimulationTrace `json:"-"`

	doorsCharged     bool    // door action time already paid this run
	prepareScheduled bool    // PrepareTrain emitted
	busyUntil        float64 // latest instant a passenger action completes

	// Active chains per sector. A sector runs at most one of each, so one
	// door serves one passenger at a time.
	unloading  map[int]bool
	loading    map[int]bool
	relocating map[int]bool
}

// NewEnvironment validates cfg, seeds the random streams and populates the
// train and the platform from the population stream. A nil cfg.Seed seeds from
// the wall clock.
func NewEnvironment(cfg Config) (*Environment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	seed := time.Now().UnixNano()
	if cfg.Seed != nil {
		seed = *cfg.Seed
	}
	weights, err := distribution.New(cfg.Passenger.WeightDistribution)
	if err != nil {
		return nil, fmt.Errorf("%w: passenger.weight_distribution: %v", ErrConfiguration, err)
	}

	env := newEnvironment(cfg, seed, NewStation(cfg.Station.SectorCount), NewTrain(cfg.Train))
	population := env.RNG.ForSubsystem(SubsystemPopulation)
	env.Train.Populate(cfg, weights, population)
	env.Station.Populate(cfg, weights, population)
	logrus.Infof("Environment ready (seed %d, %d sectors, %d cars)", seed, env.Station.Len(), env.Train.CarCount())
	return env, nil
}

// newEnvironment wires an already populated world to fresh random streams.
func newEnvironment(cfg Config, seed int64, st *Station, tr *Train) *Environment {
	env := &Environment{
		Config:  cfg,
		Seed:    seed,
		Station: st,
		Train:   tr,
		Timing:  &Timing{},
		RNG:     NewPartitionedRNG(NewSimulationKey(seed)),

		unloading:  make(map[int]bool),
		loading:    make(map[int]bool),
		relocating: make(map[int]bool),
	}
	if trace.TraceLevel(cfg.TraceLevel) == trace.TraceLevelDecisions {
		env.Trace = trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelDecisions})
	}
	return env
}

// CarAt returns the car parked in front of sector, or nil.
func (env *Environment) CarAt(sector int) *TrainCar {
	s := env.Station.Sector(sector)
	if s == nil || !s.HasCar() {
		return nil
	}
	return env.Train.Car(s.CarIndex)
}

// SectorOfCar returns the sector the car with the given flat index is parked
// at, or NoCar while the train is not parked.
func (env *Environment) SectorOfCar(flat int) int {
	if env.Train.ParkedAt == nil || flat < 0 || flat >= env.Train.CarCount() {
		return NoCar
	}
	return *env.Train.ParkedAt + flat
}

// Passengers counts everyone in the world: waiting, riding or departed.
func (env *Environment) Passengers() int {
	return env.Station.Waiting() + env.Train.Onboard() + env.Station.Departed.Len()
}

// park assigns car handles to the sectors from park on.
func (env *Environment) park(at int) {
	env.Train.Park(at)
	for _, car := range env.Train.Cars() {
		env.Station.Sector(at + car.FlatIndex).CarIndex = car.FlatIndex
	}
}

// openDoor opens car's door and returns the door time to charge, which is
// paid once per run.
func (env *Environment) openDoor(car *TrainCar) float64 {
	if car.OpenDoor() && !env.doorsCharged {
		env.doorsCharged = true
		return env.Config.Timing.DoorAction
	}
	return 0
}

func (env *Environment) markBusy(until float64) {
	env.busyUntil = max(env.busyUntil, until)
}

// maybePrepare emits PrepareTrain once boarding can make no more progress:
// the platform is empty or the train is full, and no alighting is pending.
// The departure waits for the slowest passenger action still under way.
func (env *Environment) maybePrepare(at float64) []Event {
	if env.prepareScheduled || len(env.unloading) > 0 {
		return nil
	}
	if !env.Station.IsEmpty() && !env.Train.IsFull() {
		return nil
	}
	env.prepareScheduled = true
	return []Event{NewPrepareTrainEvent(max(at, env.busyUntil))}
}

// startLoad opens the boarding chain of sector unless one is already running
// or its car is still letting passengers off.
func (env *Environment) startLoad(at float64, sector int) []Event {
	if env.loading[sector] || env.unloading[sector] {
		return nil
	}
	env.loading[sector] = true
	return []Event{NewLoadPassengerEvent(at, sector)}
}

// startMove opens the relocation chain of sector unless one is already
// running or nobody waits there.
func (env *Environment) startMove(at float64, sector int, reason string) []Event {
	if env.relocating[sector] || env.Station.Sector(sector).IsEmpty() {
		return nil
	}
	env.relocating[sector] = true
	return []Event{NewMovePassengerEvent(at, sector, reason)}
}

func (env *Environment) recordLight(at float64, sector *StationSector, car *TrainCar) {
	if env.Trace == nil {
		return
	}
	env.Trace.RecordLight(trace.LightRecord{
		Clock:     at,
		Sector:    sector.Index,
		Car:       car.FlatIndex,
		CarWeight: car.Weight,
		Status:    sector.Light.Status.String(),
	})
}

func (env *Environment) recordMove(at float64, from, to, count, distance int, reason string) {
	if env.Trace == nil || count <= 0 {
		return
	}
	env.Trace.RecordMove(trace.MoveRecord{
		Clock:    at,
		From:     from,
		To:       to,
		Count:    count,
		Distance: distance,
		Reason:   reason,
		Target:   env.Station.Sector(to).Light.Status.String(),
	})
}
