package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/platform-sim/platform-sim/sim/distribution"
)

func intPtr(v int) *int { return &v }

func int64Ptr(v int64) *int64 { return &v }

// testConfig returns the default platform with a fixed seed.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Seed = int64Ptr(7)
	return cfg
}

// smallConfig is a six-sector platform with one set of two empty cars and
// nobody waiting. Passengers walk one sector per second, never give up and
// always follow the lights.
func smallConfig() Config {
	cfg := testConfig()
	cfg.Station.SectorCount = 6
	cfg.Station.StairsPlacement = []int{0}
	cfg.Station.SectorFullness = Range{Min: 0, Max: 0}
	cfg.Train.SetSetup = 2
	cfg.Train.AmountOfSets = 1
	cfg.Train.Capacity = 10
	cfg.Train.Fullness = PercentSpec{Values: []float64{0}}
	cfg.Train.UnloadPercent = PercentSpec{Values: []float64{0}}
	cfg.Passenger.Speed = Range{Min: 1, Max: 1}
	cfg.Passenger.LoadingTime = Range{Min: 2, Max: 2}
	cfg.Passenger.MaxWalk = Range{Min: 5, Max: 5}
	cfg.Passenger.Compliance = 1
	return cfg
}

func newTestEnv(t *testing.T, cfg Config) *Environment {
	t.Helper()
	env, err := NewEnvironment(cfg)
	require.NoError(t, err)
	return env
}

// addWaiting puts n fresh passengers in sector.
func addWaiting(env *Environment, sector, n int) {
	rng := rand.New(rand.NewSource(int64(sector*1000 + n)))
	weights := distribution.NewConstant(80)
	for i := 0; i < n; i++ {
		env.Station.Sector(sector).Add(NewPassenger(env.Config.Passenger, weights, rng))
	}
}

// addRiding boards n fresh passengers into the car with the given flat index.
func addRiding(env *Environment, flat, n int) {
	rng := rand.New(rand.NewSource(int64(flat*1000 + n + 1)))
	weights := distribution.NewConstant(80)
	for i := 0; i < n; i++ {
		env.Train.Car(flat).Add(NewPassenger(env.Config.Passenger, weights, rng))
	}
}

// fire runs one event and fails the test on error.
func fire(t *testing.T, env *Environment, ev Event) []Event {
	t.Helper()
	next, err := ev.Fire(env)
	require.NoError(t, err)
	return next
}

func kinds(events []Event) []EventKind {
	out := make([]EventKind, len(events))
	for i, ev := range events {
		out[i] = ev.Kind()
	}
	return out
}
