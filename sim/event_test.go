package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parkedEnv returns the small platform with its cars parked from sector at.
func parkedEnv(t *testing.T, cfg Config, at int) *Environment {
	t.Helper()
	env := newTestEnv(t, cfg)
	env.park(at)
	return env
}

func TestWeighTrainEvent_SumsCarWeights(t *testing.T) {
	// GIVEN two cars carrying 3 and 2 passengers of 80 kg
	env := newTestEnv(t, smallConfig())
	addRiding(env, 0, 3)
	addRiding(env, 1, 2)

	// WHEN the train is weighed at t=0
	next := fire(t, env, NewWeighTrainEvent(0))

	// THEN car and train weights are recomputed and the signal leaves after the weighing time
	assert.Equal(t, 240.0, env.Train.Car(0).Weight)
	assert.Equal(t, 160.0, env.Train.Car(1).Weight)
	assert.Equal(t, 400.0, env.Train.Weight)
	require.Len(t, next, 1)
	assert.Equal(t, KindSendWeight, next[0].Kind())
	assert.Equal(t, 3.0, next[0].Timestamp())
}

func TestWeighTrainEvent_DoesNotAccumulate(t *testing.T) {
	env := newTestEnv(t, smallConfig())
	addRiding(env, 0, 1)
	fire(t, env, NewWeighTrainEvent(0))
	fire(t, env, NewWeighTrainEvent(0))
	assert.Equal(t, 80.0, env.Train.Weight)
}

func TestSendWeightEvent_SchedulesReceptionThenArrival(t *testing.T) {
	env := newTestEnv(t, smallConfig())

	next := fire(t, env, &SendWeightEvent{eventBase{time: 3}})

	require.Equal(t, []EventKind{KindReceiveWeight, KindTrainArrive}, kinds(next))
	assert.Equal(t, 13.0, next[0].Timestamp())
	driving := DrivingTime(env.Config.Station.DistanceKm, env.Config.Kinematics)
	assert.InDelta(t, 3+driving, next[1].Timestamp(), 1e-9)
	assert.Equal(t, next[1].Timestamp(), next[0].(*ReceiveWeightEvent).arrival)
	assert.False(t, env.Train.Stopped)
}

func TestSendWeightEvent_SignalAfterArrival_IsFatal(t *testing.T) {
	env := newTestEnv(t, smallConfig())
	env.Config.Timing.ReceiveWeight = 1e6

	_, err := (&SendWeightEvent{}).Fire(env)

	assert.ErrorIs(t, err, ErrSignalAfterArrival)
	assert.True(t, IsFatal(err))
}

func TestReceiveWeightEvent_LightsFromCarWeight(t *testing.T) {
	// GIVEN four cars of capacity 10 and mean weight 80 (ceiling 800 kg),
	// parked from sector 1
	cfg := smallConfig()
	cfg.Train.SetSetup = 4
	cfg.Train.ParkAtIndex = intPtr(1)
	env := newTestEnv(t, cfg)
	for flat, w := range []float64{100, 500, 700, 400} {
		env.Train.Car(flat).Weight = w
	}

	// WHEN the signal is received
	next := fire(t, env, &ReceiveWeightEvent{eventBase: eventBase{time: 10}, arrival: 90})

	// THEN green is <= 400 kg, yellow <= 600 kg, red above; sectors without a car stay unlit
	assert.Equal(t, []LightStatus{LightNone, LightGreen, LightYellow, LightRed, LightGreen, LightNone}, env.Station.Lights())
	assert.Equal(t, 0, env.Station.Sector(1).CarIndex)
	assert.Equal(t, NoCar, env.Station.Sector(5).CarIndex)
	require.Equal(t, []EventKind{KindPassengerDecision}, kinds(next))
	assert.Equal(t, 90.0, next[0].(*PassengerDecisionEvent).arrival)
}

func TestReceiveWeightEvent_NoLights_ParksWithoutDecision(t *testing.T) {
	cfg := smallConfig()
	cfg.Station.Lights = false
	cfg.Train.ParkAtIndex = intPtr(4)
	env := newTestEnv(t, cfg)

	next := fire(t, env, &ReceiveWeightEvent{eventBase: eventBase{time: 10}, arrival: 90})

	assert.Empty(t, next)
	require.NotNil(t, env.Train.ParkedAt)
	assert.Equal(t, 4, *env.Train.ParkedAt)
	for _, status := range env.Station.Lights() {
		assert.Equal(t, LightNone, status)
	}
}

func TestReceiveWeightEvent_RandomParkAlwaysFits(t *testing.T) {
	seen := map[int]bool{}
	for seed := int64(1); seed <= 60; seed++ {
		cfg := smallConfig()
		cfg.Seed = &seed
		env := newTestEnv(t, cfg)
		fire(t, env, &ReceiveWeightEvent{arrival: 90})

		at := *env.Train.ParkedAt
		assert.GreaterOrEqual(t, at, 0)
		assert.LessOrEqual(t, at, 4)
		seen[at] = true
	}
	assert.Greater(t, len(seen), 1, "park position should vary with the seed")
}

func TestReceiveWeightEvent_ExactFit_ParksAtZero(t *testing.T) {
	cfg := smallConfig()
	cfg.Train.SetSetup = 3
	cfg.Train.AmountOfSets = 2
	env := newTestEnv(t, cfg)

	fire(t, env, &ReceiveWeightEvent{arrival: 90})
	assert.Equal(t, 0, *env.Train.ParkedAt)
}

func TestReceiveWeightEvent_TrainTooLong_IsFatal(t *testing.T) {
	env := newTestEnv(t, smallConfig())
	env.Station = NewStation(1)

	_, err := (&ReceiveWeightEvent{}).Fire(env)
	assert.ErrorIs(t, err, ErrTrainTooLong)
	assert.True(t, IsFatal(err))
}

func TestPassengerDecision_RedWithZeroMaxWalk_NobodyMoves(t *testing.T) {
	// GIVEN passengers who will not walk at all, under a red light and next to no car
	cfg := smallConfig()
	cfg.Passenger.MaxWalk = Range{Min: 0, Max: 0}
	env := parkedEnv(t, cfg, 2)
	env.Station.Sector(2).Light.Set(LightGreen)
	env.Station.Sector(3).Light.Set(LightRed)
	addWaiting(env, 3, 4)
	addWaiting(env, 0, 3)
	before := env.Station.Occupancy()

	// WHEN they decide with plenty of time
	fire(t, env, &PassengerDecisionEvent{eventBase: eventBase{time: 0}, arrival: 100})

	// THEN nobody moves
	assert.Equal(t, before, env.Station.Occupancy())
}

func TestPassengerDecision_RedAndUnlitWalkToGreen(t *testing.T) {
	cfg := smallConfig()
	cfg.TraceLevel = "decisions"
	env := parkedEnv(t, cfg, 2)
	env.Station.Sector(2).Light.Set(LightGreen)
	env.Station.Sector(3).Light.Set(LightRed)
	addWaiting(env, 0, 3)
	addWaiting(env, 3, 4)

	fire(t, env, &PassengerDecisionEvent{eventBase: eventBase{time: 0}, arrival: 100})

	assert.Equal(t, []int{0, 0, 7, 0, 0, 0}, env.Station.Occupancy())
	require.NotNil(t, env.Trace)
	assert.Len(t, env.Trace.Moves, 7)
}

func TestPassengerDecision_OutOfReach_Stays(t *testing.T) {
	// GIVEN one second before arrival and walkers needing a second per sector
	env := parkedEnv(t, smallConfig(), 2)
	env.Station.Sector(2).Light.Set(LightGreen)
	addWaiting(env, 0, 3)

	fire(t, env, &PassengerDecisionEvent{eventBase: eventBase{time: 99}, arrival: 100})

	// THEN the green sector two away is out of reach
	assert.Equal(t, 3, env.Station.Sector(0).Len())
}

func TestPassengerDecision_RedOnlyToLessCrowdedRed(t *testing.T) {
	env := parkedEnv(t, smallConfig(), 2)
	env.Station.Sector(2).Light.Set(LightRed)
	env.Station.Sector(3).Light.Set(LightRed)
	addWaiting(env, 2, 1)
	addWaiting(env, 3, 4)

	fire(t, env, &PassengerDecisionEvent{eventBase: eventBase{time: 0}, arrival: 100})

	// sector 2 never moves into the busier sector 3; sector 3 moves until 2 is no emptier
	assert.Equal(t, []int{0, 0, 3, 2, 0, 0}, env.Station.Occupancy())
}

func TestPassengerDecision_YellowMovesAtMostGreenOccupancy(t *testing.T) {
	for seed := int64(1); seed <= 30; seed++ {
		cfg := smallConfig()
		cfg.Seed = &seed
		env := parkedEnv(t, cfg, 2)
		env.Station.Sector(2).Light.Set(LightYellow)
		env.Station.Sector(3).Light.Set(LightGreen)
		addWaiting(env, 2, 6)
		addWaiting(env, 3, 2)

		fire(t, env, &PassengerDecisionEvent{eventBase: eventBase{time: 0}, arrival: 100})

		yellow := env.Station.Sector(2).Len()
		assert.GreaterOrEqual(t, yellow, 4, "seed %d", seed)
		assert.Equal(t, 8, yellow+env.Station.Sector(3).Len(), "seed %d", seed)
	}
}

func TestPassengerDecision_YellowWithoutNearbyGreen_Stays(t *testing.T) {
	cfg := smallConfig()
	cfg.Passenger.YellowLookahead = 0
	env := parkedEnv(t, cfg, 2)
	env.Station.Sector(2).Light.Set(LightYellow)
	env.Station.Sector(3).Light.Set(LightGreen)
	addWaiting(env, 2, 6)

	fire(t, env, &PassengerDecisionEvent{eventBase: eventBase{time: 0}, arrival: 100})

	assert.Equal(t, 6, env.Station.Sector(2).Len())
}

func TestTrainArriveEvent_FansOutPerSector(t *testing.T) {
	// GIVEN cars at sectors 2 and 3, half of car 0 alighting, and waiting
	// passengers in sectors without a car
	cfg := smallConfig()
	cfg.Train.UnloadPercent = PercentSpec{Values: []float64{50, 0}}
	env := parkedEnv(t, cfg, 2)
	addRiding(env, 0, 4)
	addWaiting(env, 0, 2)
	addWaiting(env, 5, 1)

	// WHEN the train arrives
	next := fire(t, env, &TrainArriveEvent{eventBase{time: 50}})

	// THEN the timer runs, and each non-empty sector gets exactly one chain
	assert.Equal(t, []EventKind{KindMovePassenger, KindUnloadPassenger, KindLoadPassenger, KindMovePassenger}, kinds(next))
	assert.Equal(t, 2, next[1].(*UnloadPassengerEvent).count)
	assert.True(t, env.Timing.Started())
	assert.Equal(t, 50.0, *env.Timing.StartedAt)
	assert.True(t, env.Train.Stopped)
	assert.Equal(t, map[int]bool{2: true}, env.unloading)
	assert.Equal(t, map[int]bool{3: true}, env.loading)
	assert.Equal(t, map[int]bool{0: true, 5: true}, env.relocating)
}

func TestTrainArriveEvent_NotParked_InvariantViolation(t *testing.T) {
	env := newTestEnv(t, smallConfig())

	_, err := (&TrainArriveEvent{}).Fire(env)

	assert.ErrorIs(t, err, ErrTrainNotParked)
	assert.False(t, IsFatal(err))
}

func TestTrainArriveEvent_SecondArrival_TimerError(t *testing.T) {
	env := parkedEnv(t, smallConfig(), 0)
	fire(t, env, &TrainArriveEvent{eventBase{time: 50}})

	_, err := (&TrainArriveEvent{eventBase{time: 60}}).Fire(env)
	assert.ErrorIs(t, err, ErrTimerAlreadyStarted)
}

func TestUnloadPassengerEvent_DoorTimeChargedOnce(t *testing.T) {
	// GIVEN two cars with riders; door action 4s, each passenger 2s x 0.5
	env := parkedEnv(t, smallConfig(), 2)
	addRiding(env, 0, 3)
	addRiding(env, 1, 3)
	env.unloading[2] = true
	env.unloading[3] = true

	// WHEN the first car lets two off and the second one
	first := fire(t, env, NewUnloadPassengerEvent(0, 2, 2))
	second := fire(t, env, NewUnloadPassengerEvent(0, 3, 1))

	// THEN only the first door opening is charged
	require.Equal(t, []EventKind{KindUnloadPassenger}, kinds(first))
	assert.Equal(t, 5.0, first[0].Timestamp())
	assert.Equal(t, 1, first[0].(*UnloadPassengerEvent).count)
	require.Equal(t, []EventKind{KindLoadPassenger}, kinds(second))
	assert.Equal(t, 1.0, second[0].Timestamp())

	assert.Equal(t, 2, env.Station.Departed.Len())
	assert.Equal(t, 2, env.Alighted)
	assert.Equal(t, map[int]bool{2: true}, env.unloading)
	assert.True(t, env.loading[3])
	assert.True(t, env.Train.Car(0).DoorOpen)
}

func TestUnloadPassengerEvent_NothingToUnload_HandsOffToBoarding(t *testing.T) {
	env := parkedEnv(t, smallConfig(), 2)
	env.unloading[2] = true

	next := fire(t, env, NewUnloadPassengerEvent(7, 2, 3))

	require.Equal(t, []EventKind{KindLoadPassenger}, kinds(next))
	assert.Equal(t, 7.0, next[0].Timestamp())
	assert.Empty(t, env.unloading)
}

func TestLoadPassengerEvent_BoardsOneAndContinues(t *testing.T) {
	env := parkedEnv(t, smallConfig(), 2)
	addWaiting(env, 2, 2)

	next := fire(t, env, NewLoadPassengerEvent(0, 2))

	require.Equal(t, []EventKind{KindLoadPassenger}, kinds(next))
	assert.Equal(t, 5.0, next[0].Timestamp(), "door 4s plus 1s boarding")
	assert.Equal(t, 1, env.Train.Car(0).Len())
	assert.Equal(t, 1, env.Station.Sector(2).Len())
	assert.Equal(t, 1, env.Boarded)
}

func TestLoadPassengerEvent_FullCar_RedirectsWaiting(t *testing.T) {
	env := parkedEnv(t, smallConfig(), 2)
	addRiding(env, 0, 10)
	addWaiting(env, 2, 3)

	next := fire(t, env, NewLoadPassengerEvent(0, 2))

	// THEN one relocation chain serves the whole queue
	assert.Equal(t, []EventKind{KindMovePassenger}, kinds(next))
	assert.Equal(t, 3, env.Station.Sector(2).Len())
	assert.False(t, env.loading[2])
	assert.True(t, env.relocating[2])

	// AND a second full-car check does not start another one
	again := fire(t, env, NewLoadPassengerEvent(1, 2))
	assert.Empty(t, again)
}

func TestLoadPassengerEvent_EmptyPlatform_PreparesOnce(t *testing.T) {
	env := parkedEnv(t, smallConfig(), 2)

	first := fire(t, env, NewLoadPassengerEvent(8, 2))
	second := fire(t, env, NewLoadPassengerEvent(9, 3))

	require.Equal(t, []EventKind{KindPrepareTrain}, kinds(first))
	assert.Equal(t, 8.0, first[0].Timestamp())
	assert.Empty(t, second)
}

func TestLoadPassengerEvent_PendingUnload_DefersDeparture(t *testing.T) {
	env := parkedEnv(t, smallConfig(), 2)
	env.unloading[3] = true

	next := fire(t, env, NewLoadPassengerEvent(8, 2))
	assert.Empty(t, next)
}

func TestLoadPassengerEvent_DepartureWaitsForSlowestAction(t *testing.T) {
	env := parkedEnv(t, smallConfig(), 2)
	env.markBusy(30)

	next := fire(t, env, NewLoadPassengerEvent(8, 2))
	require.Len(t, next, 1)
	assert.Equal(t, 30.0, next[0].Timestamp())
}

func TestMovePassengerEvent_WalksToNearestFreeCar(t *testing.T) {
	env := parkedEnv(t, smallConfig(), 2)
	addWaiting(env, 0, 1)

	next := fire(t, env, NewMovePassengerEvent(0, 0, "no-car"))

	require.Equal(t, []EventKind{KindLoadPassenger}, kinds(next))
	assert.Equal(t, 2, next[0].(*LoadPassengerEvent).sector)
	assert.Equal(t, 2.0, next[0].Timestamp(), "two sectors at one second each")
	assert.Equal(t, []int{0, 0, 1, 0, 0, 0}, env.Station.Occupancy())
}

func TestMovePassengerEvent_OneChainPerSector(t *testing.T) {
	// GIVEN three passengers in front of a full car and an empty car next door
	env := parkedEnv(t, smallConfig(), 2)
	addRiding(env, 0, 10)
	addWaiting(env, 2, 3)

	// WHEN the relocation chain runs step by step
	first := fire(t, env, NewMovePassengerEvent(0, 2, "car-full"))
	second := fire(t, env, first[1])
	third := fire(t, env, second[0])

	// THEN each step moves one passenger, the chain repeats at the same
	// instant, and only the first arrival opens a boarding chain
	require.Equal(t, []EventKind{KindLoadPassenger, KindMovePassenger}, kinds(first))
	assert.Equal(t, 3, first[0].(*LoadPassengerEvent).sector)
	assert.Equal(t, 1.0, first[0].Timestamp())
	assert.Equal(t, 0.0, first[1].Timestamp())
	assert.Equal(t, []EventKind{KindMovePassenger}, kinds(second))
	assert.Empty(t, third)

	assert.Equal(t, []int{0, 0, 0, 3, 0, 0}, env.Station.Occupancy())
	assert.False(t, env.relocating[2])
	assert.True(t, env.loading[3])
}

func TestMovePassengerEvent_PrefersCarWithSpareRoom(t *testing.T) {
	// GIVEN the nearest free car already has a queue filling its last places
	cfg := smallConfig()
	cfg.Train.SetSetup = 3
	env := parkedEnv(t, cfg, 2)
	addRiding(env, 0, 10)
	addRiding(env, 1, 8)
	addWaiting(env, 3, 2)
	addWaiting(env, 2, 1)

	next := fire(t, env, NewMovePassengerEvent(0, 2, "car-full"))

	// THEN the passenger walks on to the car that can still take them
	require.Equal(t, []EventKind{KindLoadPassenger}, kinds(next))
	assert.Equal(t, 4, next[0].(*LoadPassengerEvent).sector)
	assert.Equal(t, 2.0, next[0].Timestamp())
}

func TestMovePassengerEvent_TrainFull_PassengerStays(t *testing.T) {
	env := parkedEnv(t, smallConfig(), 2)
	addRiding(env, 0, 10)
	addRiding(env, 1, 10)
	addWaiting(env, 0, 1)

	next, err := NewMovePassengerEvent(0, 0, "no-car").Fire(env)

	require.NoError(t, err)
	assert.Equal(t, 1, env.Station.Sector(0).Len())
	for _, ev := range next {
		assert.Equal(t, KindPrepareTrain, ev.Kind())
	}
}

func TestMovePassengerEvent_OriginCarHasRoom_BoardsInPlace(t *testing.T) {
	// GIVEN the origin's own car has room again
	env := parkedEnv(t, smallConfig(), 2)
	addRiding(env, 1, 10)
	addWaiting(env, 2, 1)

	next := fire(t, env, NewMovePassengerEvent(4, 2, "car-full"))

	// THEN the passenger stays and boards there
	require.Equal(t, []EventKind{KindLoadPassenger}, kinds(next))
	assert.Equal(t, 2, next[0].(*LoadPassengerEvent).sector)
	assert.Equal(t, 4.0, next[0].Timestamp())
	assert.Equal(t, 1, env.Station.Sector(2).Len())
}

func TestMovePassengerEvent_NoFreeSector_InvariantViolation(t *testing.T) {
	// GIVEN the only car with room has lost its sector handle
	env := parkedEnv(t, smallConfig(), 2)
	addRiding(env, 0, 10)
	env.Station.Sector(3).CarIndex = NoCar
	addWaiting(env, 0, 1)

	_, err := NewMovePassengerEvent(0, 0, "no-car").Fire(env)

	assert.ErrorIs(t, err, ErrNoFreeSector)
	assert.False(t, IsFatal(err))
	assert.Equal(t, 1, env.Station.Sector(0).Len())
}

func TestPrepareTrainEvent_ClosesDoorsAndStopsTimer(t *testing.T) {
	env := parkedEnv(t, smallConfig(), 2)
	require.NoError(t, env.Timing.Start(10))
	env.Train.Stop()
	env.Train.Car(0).OpenDoor()

	ev := NewPrepareTrainEvent(20)
	next := fire(t, env, ev)

	assert.Empty(t, next)
	assert.Equal(t, 24.0, ev.Timestamp())
	turnaround, err := env.Timing.TurnaroundTime()
	require.NoError(t, err)
	assert.Equal(t, 14.0, turnaround)
	assert.False(t, env.Train.Car(0).DoorOpen)
	assert.False(t, env.Train.Stopped)
}

func TestPrepareTrainEvent_NoOpenDoors_NoDoorTime(t *testing.T) {
	env := parkedEnv(t, smallConfig(), 2)
	require.NoError(t, env.Timing.Start(10))

	ev := NewPrepareTrainEvent(20)
	fire(t, env, ev)
	assert.Equal(t, 20.0, ev.Timestamp())
}

func TestPrepareTrainEvent_BeforeArrival_InvariantViolation(t *testing.T) {
	env := parkedEnv(t, smallConfig(), 2)

	_, err := NewPrepareTrainEvent(20).Fire(env)

	assert.ErrorIs(t, err, ErrTimerNotStarted)
	assert.False(t, IsFatal(err))
}
