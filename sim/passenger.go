package sim

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/platform-sim/platform-sim/sim/distribution"
)

// Passenger is a traveller waiting on the platform or riding in a car.
// Attributes are fixed at creation.
type Passenger struct {
	ID          uuid.UUID `json:"id"`
	Speed       int       `json:"speed"`        // seconds per sector walked
	LoadingTime int       `json:"loading_time"` // seconds to pass a door
	Weight      float64   `json:"weight"`       // kg
	Size        float64   `json:"size"`         // loading time multiplier
	MaxWalk     int       `json:"max_walk"`     // sectors the passenger is willing to walk
}

// NewPassenger draws a passenger's attributes from rng. The ID is drawn from
// the same stream so a seed reproduces IDs too.
func NewPassenger(cfg PassengerConfig, weights distribution.Distribution, rng *rand.Rand) *Passenger {
	id, err := uuid.NewRandomFromReader(rng)
	if err != nil {
		// *rand.Rand never fails a read
		id = uuid.Nil
	}
	return &Passenger{
		ID:          id,
		Speed:       cfg.Speed.Draw(rng),
		LoadingTime: cfg.LoadingTime.Draw(rng),
		Weight:      weights.SampleOne(rng),
		Size:        cfg.RegularSize,
		MaxWalk:     cfg.MaxWalk.Draw(rng),
	}
}

// IsCompliant draws a fresh compliance decision. Never cached: asking twice
// may answer differently.
func (p *Passenger) IsCompliant(compliance float64, rng *rand.Rand) bool {
	return rng.Float64() <= compliance
}

// DoorTime is the time the passenger needs to pass a car door.
func (p *Passenger) DoorTime() float64 {
	return float64(p.LoadingTime) * p.Size
}

// WalkTime is the time the passenger needs to walk distance sectors.
func (p *Passenger) WalkTime(distance int) float64 {
	return float64(p.Speed * distance)
}

// ReachableDistance is how many sectors the passenger can and will walk in
// the given time, never more than MaxWalk.
func (p *Passenger) ReachableDistance(timeToMove float64) float64 {
	able := timeToMove / float64(p.Speed)
	return min(able, float64(p.MaxWalk))
}

func (p *Passenger) String() string {
	return fmt.Sprintf("Passenger (s: %d, lt: %d, w: %.1f, sz: %.2f, mw: %d)",
		p.Speed, p.LoadingTime, p.Weight, p.Size, p.MaxWalk)
}

// PassengerContainer is an ordered queue of passengers. Insertion order is
// arrival order; removal always takes from the front.
type PassengerContainer struct {
	Passengers []*Passenger `json:"passengers"`
}

// Len returns the number of passengers held.
func (c *PassengerContainer) Len() int {
	return len(c.Passengers)
}

// IsEmpty reports whether the container holds no passengers.
func (c *PassengerContainer) IsEmpty() bool {
	return len(c.Passengers) == 0
}

// Add appends passengers to the back of the queue.
func (c *PassengerContainer) Add(ps ...*Passenger) {
	c.Passengers = append(c.Passengers, ps...)
}

// RemoveFront pops up to n passengers from the front. Asking for more than
// are held returns what there is; never returns nil.
func (c *PassengerContainer) RemoveFront(n int) []*Passenger {
	n = max(0, min(n, len(c.Passengers)))
	removed := make([]*Passenger, n)
	copy(removed, c.Passengers[:n])
	c.Passengers = c.Passengers[n:]
	return removed
}

// Remove takes a specific passenger out of the queue, reporting whether it was held.
func (c *PassengerContainer) Remove(p *Passenger) bool {
	for i, q := range c.Passengers {
		if q == p {
			c.Passengers = append(c.Passengers[:i:i], c.Passengers[i+1:]...)
			return true
		}
	}
	return false
}

// Snapshot returns a copy of the queue for iteration while mutating.
func (c *PassengerContainer) Snapshot() []*Passenger {
	out := make([]*Passenger, len(c.Passengers))
	copy(out, c.Passengers)
	return out
}

// TotalWeight sums the weight of the passengers held.
func (c *PassengerContainer) TotalWeight() float64 {
	total := 0.0
	for _, p := range c.Passengers {
		total += p.Weight
	}
	return total
}

// populate appends n freshly drawn passengers.
func (c *PassengerContainer) populate(n int, cfg PassengerConfig, weights distribution.Distribution, rng *rand.Rand) {
	for i := 0; i < n; i++ {
		c.Add(NewPassenger(cfg, weights, rng))
	}
}
