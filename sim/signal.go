package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// WeighTrainEvent weighs every car at the weighing station before the train
// leaves for the platform.
type WeighTrainEvent struct {
	eventBase
}

// NewWeighTrainEvent creates the event that starts a run.
func NewWeighTrainEvent(at float64) *WeighTrainEvent {
	return &WeighTrainEvent{eventBase{time: at}}
}

func (e *WeighTrainEvent) Kind() EventKind { return KindWeighTrain }

// Fire recomputes car and train weights from the passengers on board.
func (e *WeighTrainEvent) Fire(env *Environment) ([]Event, error) {
	total := 0.0
	for _, car := range env.Train.Cars() {
		car.Weight = car.TotalWeight()
		total += car.Weight
		logrus.Debugf("Car %d weighs %.1f kg with %d passengers", car.FlatIndex, car.Weight, car.Len())
	}
	env.Train.Weight = total
	e.perform(env.Config.Timing.WeighTrain, "weighed train at %.1f kg", total)
	return []Event{&SendWeightEvent{eventBase{time: e.time}}}, nil
}

// SendWeightEvent dispatches the weight signal to the platform and sends the
// train on its way.
type SendWeightEvent struct {
	eventBase
}

func (e *SendWeightEvent) Kind() EventKind { return KindSendWeight }

// Fire schedules the signal reception and the train arrival. The signal must
// reach the platform no later than the train does.
func (e *SendWeightEvent) Fire(env *Environment) ([]Event, error) {
	t := env.Config.Timing
	driving := DrivingTime(env.Config.Station.DistanceKm, env.Config.Kinematics)
	receive := e.time + t.ReceiveWeight
	arrival := e.time + t.SendWeight + driving
	if receive > arrival {
		return nil, fmt.Errorf("%w: signal at %.2fs, train at %.2fs", ErrSignalAfterArrival, receive, arrival)
	}
	env.Train.Drive()
	logrus.Infof("[%9.3fs] Train departs, driving %.2fs over %.1f km", e.time, driving, env.Config.Station.DistanceKm)
	return []Event{
		&ReceiveWeightEvent{eventBase: eventBase{time: receive}, arrival: arrival},
		&TrainArriveEvent{eventBase{time: arrival}},
	}, nil
}

// ReceiveWeightEvent decides where the train parks and sets the sector lights
// from car weights.
type ReceiveWeightEvent struct {
	eventBase
	arrival float64
}

func (e *ReceiveWeightEvent) Kind() EventKind { return KindReceiveWeight }

// Fire parks the train and, on a platform with lights, colours every car
// sector GREEN, YELLOW or RED by how heavy its car is relative to a full car
// of average passengers.
func (e *ReceiveWeightEvent) Fire(env *Environment) ([]Event, error) {
	at, err := decideParking(env)
	if err != nil {
		return nil, err
	}
	env.park(at)
	logrus.Infof("[%9.3fs] Train will park at sector %d", e.time, at)

	if !env.Config.Station.Lights {
		logrus.Infof("[%9.3fs] Station has no lights, passengers decide on arrival", e.time)
		return nil, nil
	}

	th := env.Config.Station.LightThresholds
	maxWeight := float64(env.Config.Train.Capacity) * env.Config.Passenger.MeanWeight
	for _, car := range env.Train.Cars() {
		sector := env.Station.Sector(env.SectorOfCar(car.FlatIndex))
		switch {
		case car.Weight <= maxWeight*th.Green:
			sector.Light.Set(LightGreen)
		case car.Weight <= maxWeight*th.Yellow:
			sector.Light.Set(LightYellow)
		default:
			sector.Light.Set(LightRed)
		}
		env.recordLight(e.time, sector, car)
		logrus.Debugf("Sector %d light %s (car %d, %.1f kg)", sector.Index, sector.Light.Status, car.FlatIndex, car.Weight)
	}
	return []Event{&PassengerDecisionEvent{eventBase: eventBase{time: e.time}, arrival: e.arrival}}, nil
}

// decideParking returns the sector of the first car: the configured index when
// set, otherwise a uniform draw over every position that fits.
func decideParking(env *Environment) (int, error) {
	cars := env.Train.CarCount()
	sectors := env.Station.Len()
	if p := env.Config.Train.ParkAtIndex; p != nil && *p >= 0 {
		if *p+cars > sectors {
			return 0, fmt.Errorf("%w: park index %d with %d cars on %d sectors", ErrParkOutOfRange, *p, cars, sectors)
		}
		return *p, nil
	}
	switch {
	case cars > sectors:
		return 0, fmt.Errorf("%w: %d cars, %d sectors", ErrTrainTooLong, cars, sectors)
	case cars == sectors:
		return 0, nil
	default:
		return env.RNG.ForSubsystem(SubsystemParking).Intn(sectors - cars + 1), nil
	}
}
