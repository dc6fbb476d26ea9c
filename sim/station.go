package sim

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/platform-sim/platform-sim/sim/distribution"
)

// LightStatus is the colour of a sector light. LightNone means no car is
// assigned to the sector.
type LightStatus int

const (
	LightNone LightStatus = iota
	LightRed
	LightYellow
	LightGreen
)

var lightNames = map[LightStatus]string{
	LightNone:   "none",
	LightRed:    "red",
	LightYellow: "yellow",
	LightGreen:  "green",
}

func (s LightStatus) String() string {
	if name, ok := lightNames[s]; ok {
		return name
	}
	return fmt.Sprintf("LightStatus(%d)", int(s))
}

// MarshalText encodes the status by name.
func (s LightStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *LightStatus) UnmarshalText(text []byte) error {
	for status, name := range lightNames {
		if name == string(text) {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("unknown light status %q", string(text))
}

// Light is the signal mounted over a sector.
type Light struct {
	Status LightStatus `json:"status"`
}

// Set switches the light to status.
func (l *Light) Set(status LightStatus) {
	l.Status = status
}

// IsSet reports whether the light shows a colour.
func (l *Light) IsSet() bool {
	return l.Status != LightNone
}

// NoCar marks a sector without a parked car.
const NoCar = -1

// StationSector is one platform segment. CarIndex is a handle into the
// train's flat car list, NoCar when nothing is parked in front of it.
type StationSector struct {
	PassengerContainer
	Index    int   `json:"index"`
	Light    Light `json:"light"`
	CarIndex int   `json:"car_index"`
}

// NewStationSector creates an empty sector with its light unset.
func NewStationSector(index int) *StationSector {
	return &StationSector{Index: index, CarIndex: NoCar}
}

// HasCar reports whether a car is parked at this sector.
func (s *StationSector) HasCar() bool {
	return s.CarIndex != NoCar
}

func (s *StationSector) String() string {
	return fmt.Sprintf("Station Sector (i: %d, p: %d, light: %s)", s.Index, s.Len(), s.Light.Status)
}

// Station is the platform: N sectors fixed at construction plus the set of
// passengers who alighted and left through the stairs.
type Station struct {
	Sectors  []*StationSector   `json:"sectors"`
	Departed PassengerContainer `json:"departed"`
	Initial  int                `json:"initial_passengers"`
}

// NewStation creates n empty sectors.
func NewStation(n int) *Station {
	st := &Station{Sectors: make([]*StationSector, n)}
	for i := range st.Sectors {
		st.Sectors[i] = NewStationSector(i)
	}
	return st
}

// Sector returns the sector at index, or nil when out of range.
func (st *Station) Sector(index int) *StationSector {
	if index < 0 || index >= len(st.Sectors) {
		return nil
	}
	return st.Sectors[index]
}

// Len returns the number of sectors.
func (st *Station) Len() int {
	return len(st.Sectors)
}

// StairDistance returns the distance from sector index to the nearest stair.
// A platform without stairs counts every sector as distance 0.
func StairDistance(index int, stairs []int) int {
	if len(stairs) == 0 {
		return 0
	}
	best := math.MaxInt
	for _, s := range stairs {
		d := index - s
		if d < 0 {
			d = -d
		}
		best = min(best, d)
	}
	return best
}

// Populate fills each sector with floor(fullness% * cap - stairDistance * stairFactor)
// passengers, clamped at zero. Sectors near a stair get the most people.
func (st *Station) Populate(cfg Config, weights distribution.Distribution, rng *rand.Rand) {
	sc := cfg.Station
	total := 0
	for _, sector := range st.Sectors {
		ld := StairDistance(sector.Index, sc.StairsPlacement)
		amount := int(math.Floor(sc.SectorFullness.PercentOf(rng, sc.SectorPassengerMaxCount) - float64(ld)*sc.StairFactor))
		if amount < 0 {
			amount = 0
		}
		sector.populate(amount, cfg.Passenger, weights, rng)
		total += amount
		logrus.Debugf("There are %d passengers waiting in sector %d", amount, sector.Index)
	}
	st.Initial = total
	logrus.Infof("There are %d passengers waiting on the station", total)
}

// Waiting returns the number of passengers waiting across all sectors.
func (st *Station) Waiting() int {
	n := 0
	for _, s := range st.Sectors {
		n += s.Len()
	}
	return n
}

// IsEmpty reports whether no sector holds a waiting passenger.
func (st *Station) IsEmpty() bool {
	for _, s := range st.Sectors {
		if !s.IsEmpty() {
			return false
		}
	}
	return true
}

// Occupancy returns the waiting count per sector.
func (st *Station) Occupancy() []int {
	out := make([]int, len(st.Sectors))
	for i, s := range st.Sectors {
		out[i] = s.Len()
	}
	return out
}

// Lights returns the light status per sector.
func (st *Station) Lights() []LightStatus {
	out := make([]LightStatus, len(st.Sectors))
	for i, s := range st.Sectors {
		out[i] = s.Light.Status
	}
	return out
}

func (st *Station) String() string {
	parts := make([]string, len(st.Sectors))
	for i, s := range st.Sectors {
		parts[i] = s.String()
	}
	return "Station (" + strings.Join(parts, ", ") + ")"
}
