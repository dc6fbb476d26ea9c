package sim

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/platform-sim/platform-sim/sim/distribution"
)

// TrainCar is one car of a train set. SetIndex identifies the owning set for
// logging only.
type TrainCar struct {
	PassengerContainer
	Index     int     `json:"index"`      // position within its set
	FlatIndex int     `json:"flat_index"` // position within the whole train
	SetIndex  int     `json:"set_index"`
	Capacity  int     `json:"capacity"`
	DoorOpen  bool    `json:"door_open"`
	Weight    float64 `json:"weight"`
}

// IsFull reports whether the car holds Capacity passengers.
func (c *TrainCar) IsFull() bool {
	return c.Len() >= c.Capacity
}

// Free returns the number of places left.
func (c *TrainCar) Free() int {
	return max(0, c.Capacity-c.Len())
}

// Board adds p unless the car is full.
func (c *TrainCar) Board(p *Passenger) bool {
	if c.IsFull() {
		return false
	}
	c.Add(p)
	return true
}

// OpenDoor opens the door, reporting whether it was closed before.
func (c *TrainCar) OpenDoor() bool {
	was := c.DoorOpen
	c.DoorOpen = true
	return !was
}

// CloseDoor closes the door, reporting whether it was open before.
func (c *TrainCar) CloseDoor() bool {
	was := c.DoorOpen
	c.DoorOpen = false
	return was
}

func (c *TrainCar) String() string {
	return fmt.Sprintf("car %d in set %d", c.Index, c.SetIndex)
}

// TrainSet is a fixed group of cars.
type TrainSet struct {
	Index int         `json:"index"`
	Cars  []*TrainCar `json:"cars"`
}

// Train is the full consist. ParkedAt is the sector of the first car's door,
// nil until decided.
type Train struct {
	Sets     []*TrainSet `json:"sets"`
	Stopped  bool        `json:"stopped"`
	ParkedAt *int        `json:"parked_at"`
	Weight   float64     `json:"weight"`
	Initial  int         `json:"initial_passengers"`
}

// NewTrain creates an empty train of sets x setup cars.
func NewTrain(cfg TrainConfig) *Train {
	t := &Train{Stopped: false, Sets: make([]*TrainSet, cfg.AmountOfSets)}
	flat := 0
	for i := range t.Sets {
		set := &TrainSet{Index: i, Cars: make([]*TrainCar, cfg.SetSetup)}
		for j := range set.Cars {
			set.Cars[j] = &TrainCar{Index: j, FlatIndex: flat, SetIndex: i, Capacity: cfg.Capacity}
			flat++
		}
		t.Sets[i] = set
	}
	return t
}

// Cars returns all cars in train order.
func (t *Train) Cars() []*TrainCar {
	var cars []*TrainCar
	for _, set := range t.Sets {
		cars = append(cars, set.Cars...)
	}
	return cars
}

// Car returns the car at flat index i, or nil when out of range.
func (t *Train) Car(i int) *TrainCar {
	if i < 0 {
		return nil
	}
	for _, set := range t.Sets {
		if i < len(set.Cars) {
			return set.Cars[i]
		}
		i -= len(set.Cars)
	}
	return nil
}

// CarCount returns the number of cars.
func (t *Train) CarCount() int {
	n := 0
	for _, set := range t.Sets {
		n += len(set.Cars)
	}
	return n
}

// Populate boards floor(pct% * capacity) passengers into each car, with the
// percentage drawn from the fullness range or taken from the literal list.
func (t *Train) Populate(cfg Config, weights distribution.Distribution, rng *rand.Rand) {
	total := 0
	for k, car := range t.Cars() {
		pct := cfg.Train.Fullness.Percent(rng, k)
		amount := int(math.Floor(pct / 100 * float64(car.Capacity)))
		amount = max(0, min(amount, car.Capacity))
		car.populate(amount, cfg.Passenger, weights, rng)
		total += amount
	}
	t.Initial = total
	logrus.Infof("There are %d passengers on the train", total)
}

// IsFull reports whether every car is full.
func (t *Train) IsFull() bool {
	for _, car := range t.Cars() {
		if !car.IsFull() {
			return false
		}
	}
	return true
}

// Onboard returns the number of passengers in all cars.
func (t *Train) Onboard() int {
	n := 0
	for _, car := range t.Cars() {
		n += car.Len()
	}
	return n
}

// Occupancy returns the passenger count per car in train order.
func (t *Train) Occupancy() []int {
	cars := t.Cars()
	out := make([]int, len(cars))
	for i, c := range cars {
		out[i] = c.Len()
	}
	return out
}

// Drive marks the train as moving.
func (t *Train) Drive() {
	t.Stopped = false
}

// Stop marks the train as standing.
func (t *Train) Stop() {
	t.Stopped = true
}

// Park records the sector of the first car.
func (t *Train) Park(sector int) {
	t.ParkedAt = &sector
}

func (t *Train) String() string {
	parked := "undecided"
	if t.ParkedAt != nil {
		parked = fmt.Sprint(*t.ParkedAt)
	}
	return fmt.Sprintf("Train (w: %.1f, stopped: %t, parked: %s, cars: %d)", t.Weight, t.Stopped, parked, t.CarCount())
}
