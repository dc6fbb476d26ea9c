package sim

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/platform-sim/platform-sim/sim/distribution"
	"github.com/platform-sim/platform-sim/sim/trace"
)

// Range is a half-open integer interval [Min, Max). A range with Max <= Min
// always yields Min, which lets a config pin a value (e.g. {min: 100, max: 100}).
type Range struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// Draw returns a uniform integer in [Min, Max).
func (r Range) Draw(rng *rand.Rand) int {
	if r.Min >= r.Max {
		return r.Min
	}
	return r.Min + rng.Intn(r.Max-r.Min)
}

// PercentOf draws a percentage from the range and applies it to total.
func (r Range) PercentOf(rng *rand.Rand, total int) float64 {
	return float64(r.Draw(rng)) / 100 * float64(total)
}

// PercentSpec is either a percentage range drawn per car or a literal list of
// per-car percentages. In YAML it is written as a {min, max} mapping or as a
// sequence of numbers.
type PercentSpec struct {
	Range  Range     `json:"range"`
	Values []float64 `json:"values,omitempty"`
}

// UnmarshalYAML accepts both the mapping and the sequence form.
func (p *PercentSpec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var values []float64
		if err := node.Decode(&values); err != nil {
			return fmt.Errorf("percent list: %w", err)
		}
		p.Values = values
		p.Range = Range{}
		return nil
	case yaml.MappingNode:
		var r Range
		if err := node.Decode(&r); err != nil {
			return fmt.Errorf("percent range: %w", err)
		}
		p.Range = r
		p.Values = nil
		return nil
	default:
		return fmt.Errorf("line %d: percent must be a {min, max} mapping or a list", node.Line)
	}
}

// MarshalYAML writes the form the value was read from.
func (p PercentSpec) MarshalYAML() (interface{}, error) {
	if len(p.Values) > 0 {
		return p.Values, nil
	}
	return p.Range, nil
}

// IsLiteral reports whether per-car percentages are fixed.
func (p PercentSpec) IsLiteral() bool {
	return len(p.Values) > 0
}

// Percent returns the percentage for car k. Literal lists shorter than the
// train reuse their last value; the range form draws from rng.
func (p PercentSpec) Percent(rng *rand.Rand, k int) float64 {
	if p.IsLiteral() {
		return p.Values[min(k, len(p.Values)-1)]
	}
	return float64(p.Range.Draw(rng))
}

// PassengerConfig groups passenger attribute parameters.
type PassengerConfig struct {
	WeightDistribution distribution.Spec `yaml:"weight_distribution" json:"weight_distribution"`
	MeanWeight         float64           `yaml:"mean_weight" json:"mean_weight"`           // used for the car weight ceiling
	Speed              Range             `yaml:"speed" json:"speed"`                       // seconds per sector
	LoadingTime        Range             `yaml:"loading_time" json:"loading_time"`         // seconds per boarding/alighting
	RegularSize        float64           `yaml:"regular_size" json:"regular_size"`         // loading time multiplier
	MaxWalk            Range             `yaml:"max_walk" json:"max_walk"`                 // sectors
	Compliance         float64           `yaml:"compliance" json:"compliance"`             // probability in [0, 1]
	YellowLookahead    int               `yaml:"yellow_lookahead" json:"yellow_lookahead"` // sectors
}

// TrainConfig groups train layout and load parameters.
type TrainConfig struct {
	Capacity      int         `yaml:"capacity" json:"capacity"`
	Fullness      PercentSpec `yaml:"fullness" json:"fullness"`
	UnloadPercent PercentSpec `yaml:"unload_percent" json:"unload_percent"`
	SetSetup      int         `yaml:"set_setup" json:"set_setup"`           // cars per set
	AmountOfSets  int         `yaml:"amount_of_sets" json:"amount_of_sets"` // sets per train
	ParkAtIndex   *int        `yaml:"park_at_index" json:"park_at_index"`   // nil = decide at runtime
}

// CarCount returns the number of cars in the train.
func (c TrainConfig) CarCount() int {
	return c.SetSetup * c.AmountOfSets
}

// LightThresholds are fractions of the maximum car weight.
type LightThresholds struct {
	Green  float64 `yaml:"green" json:"green"`
	Yellow float64 `yaml:"yellow" json:"yellow"`
}

// StationConfig groups platform parameters.
type StationConfig struct {
	SectorCount             int             `yaml:"sector_count" json:"sector_count"`
	StairsPlacement         []int           `yaml:"stairs_placement" json:"stairs_placement"`
	SectorPassengerMaxCount int             `yaml:"sector_passenger_max_count" json:"sector_passenger_max_count"`
	SectorFullness          Range           `yaml:"sector_fullness" json:"sector_fullness"`
	StairFactor             float64         `yaml:"stair_factor" json:"stair_factor"`
	DistanceKm              float64         `yaml:"distance_km" json:"distance_km"` // from the weighing station
	Lights                  bool            `yaml:"lights" json:"lights"`
	LightThresholds         LightThresholds `yaml:"light_thresholds" json:"light_thresholds"`
}

// TimingConfig holds fixed action durations in seconds.
type TimingConfig struct {
	WeighTrain    float64 `yaml:"weigh_train" json:"weigh_train"`
	SendWeight    float64 `yaml:"send_weight" json:"send_weight"`
	ReceiveWeight float64 `yaml:"receive_weight" json:"receive_weight"`
	DoorAction    float64 `yaml:"door_action" json:"door_action"`
}

// KinematicsConfig describes the train's driving profile.
type KinematicsConfig struct {
	CruiseSpeedKmh float64 `yaml:"cruise_speed_kmh" json:"cruise_speed_kmh"`
	Acceleration   float64 `yaml:"acceleration" json:"acceleration"` // m/s^2
	Deceleration   float64 `yaml:"deceleration" json:"deceleration"` // m/s^2
}

// Config is the full simulation configuration, loadable from YAML.
type Config struct {
	Seed       *int64           `yaml:"seed" json:"seed"`               // nil = seed from wall clock
	Horizon    float64          `yaml:"horizon" json:"horizon"`         // seconds; 0 = unbounded
	TraceLevel string           `yaml:"trace_level" json:"trace_level"` // "none" (default) or "decisions"
	Passenger  PassengerConfig  `yaml:"passenger" json:"passenger"`
	Train      TrainConfig      `yaml:"train" json:"train"`
	Station    StationConfig    `yaml:"station" json:"station"`
	Timing     TimingConfig     `yaml:"timing" json:"timing"`
	Kinematics KinematicsConfig `yaml:"kinematics" json:"kinematics"`
}

// DefaultConfig returns the reference platform: 16 sectors, two sets of four
// cars, one stair at sector 3, lights on.
func DefaultConfig() Config {
	seed := int64(42)
	return Config{
		Seed:       &seed,
		TraceLevel: "none",
		Passenger: PassengerConfig{
			WeightDistribution: distribution.Spec{Type: "normal", Params: map[string]float64{"mean": 80, "std_dev": 10}},
			MeanWeight:         80,
			Speed:              Range{Min: 1, Max: 3},
			LoadingTime:        Range{Min: 1, Max: 3},
			RegularSize:        0.5,
			MaxWalk:            Range{Min: 0, Max: 6},
			Compliance:         0.8,
			YellowLookahead:    1,
		},
		Train: TrainConfig{
			Capacity:      75,
			Fullness:      PercentSpec{Range: Range{Min: 40, Max: 80}},
			UnloadPercent: PercentSpec{Range: Range{Min: 30, Max: 50}},
			SetSetup:      4,
			AmountOfSets:  2,
		},
		Station: StationConfig{
			SectorCount:             16,
			StairsPlacement:         []int{3},
			SectorPassengerMaxCount: 25,
			SectorFullness:          Range{Min: 20, Max: 50},
			StairFactor:             1.5,
			DistanceKm:              3.0,
			Lights:                  true,
			LightThresholds:         LightThresholds{Green: 0.5, Yellow: 0.75},
		},
		Timing: TimingConfig{
			WeighTrain:    3,
			SendWeight:    0,
			ReceiveWeight: 10,
			DoorAction:    4,
		},
		Kinematics: KinematicsConfig{
			CruiseSpeedKmh: 90,
			Acceleration:   1.3,
			Deceleration:   1.2,
		},
	}
}

// LoadConfig reads a YAML configuration file on top of DefaultConfig.
// Unknown keys are rejected so typos fail loudly.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading simulation config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML bytes on top of DefaultConfig.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parsing simulation config: %w", err)
	}
	return cfg, nil
}

func validateRange(name string, r Range, minAllowed int) error {
	if r.Min < minAllowed {
		return fmt.Errorf("%w: %s.min must be >= %d, got %d", ErrConfiguration, name, minAllowed, r.Min)
	}
	if r.Max < r.Min {
		return fmt.Errorf("%w: %s.max %d is below min %d", ErrConfiguration, name, r.Max, r.Min)
	}
	return nil
}

func validatePercent(name string, p PercentSpec) error {
	if p.IsLiteral() {
		for i, v := range p.Values {
			if v < 0 || v > 100 {
				return fmt.Errorf("%w: %s[%d] must be within [0, 100], got %g", ErrConfiguration, name, i, v)
			}
		}
		return nil
	}
	if err := validateRange(name, p.Range, 0); err != nil {
		return err
	}
	if p.Range.Max > 101 {
		return fmt.Errorf("%w: %s.max must be <= 101, got %d", ErrConfiguration, name, p.Range.Max)
	}
	return nil
}

// Validate checks parameter ranges and the platform geometry. Errors wrap
// ErrConfiguration, so a caller can abort before the first event fires.
func (c Config) Validate() error {
	if _, err := distribution.New(c.Passenger.WeightDistribution); err != nil {
		return fmt.Errorf("%w: passenger.weight_distribution: %v", ErrConfiguration, err)
	}
	if c.Passenger.MeanWeight <= 0 {
		return fmt.Errorf("%w: passenger.mean_weight must be positive, got %g", ErrConfiguration, c.Passenger.MeanWeight)
	}
	// Speed is a divisor in the decision step.
	if err := validateRange("passenger.speed", c.Passenger.Speed, 1); err != nil {
		return err
	}
	if err := validateRange("passenger.loading_time", c.Passenger.LoadingTime, 0); err != nil {
		return err
	}
	if err := validateRange("passenger.max_walk", c.Passenger.MaxWalk, 0); err != nil {
		return err
	}
	if c.Passenger.RegularSize <= 0 {
		return fmt.Errorf("%w: passenger.regular_size must be positive, got %g", ErrConfiguration, c.Passenger.RegularSize)
	}
	if c.Passenger.Compliance < 0 || c.Passenger.Compliance > 1 {
		return fmt.Errorf("%w: passenger.compliance must be within [0, 1], got %g", ErrConfiguration, c.Passenger.Compliance)
	}
	if c.Passenger.YellowLookahead < 0 {
		return fmt.Errorf("%w: passenger.yellow_lookahead must be non-negative, got %d", ErrConfiguration, c.Passenger.YellowLookahead)
	}

	if c.Train.Capacity <= 0 {
		return fmt.Errorf("%w: train.capacity must be positive, got %d", ErrConfiguration, c.Train.Capacity)
	}
	if c.Train.SetSetup <= 0 || c.Train.AmountOfSets <= 0 {
		return fmt.Errorf("%w: train needs at least one set of one car, got %d x %d", ErrConfiguration, c.Train.AmountOfSets, c.Train.SetSetup)
	}
	if err := validatePercent("train.fullness", c.Train.Fullness); err != nil {
		return err
	}
	if err := validatePercent("train.unload_percent", c.Train.UnloadPercent); err != nil {
		return err
	}

	if c.Station.SectorCount <= 0 {
		return fmt.Errorf("%w: station.sector_count must be positive, got %d", ErrConfiguration, c.Station.SectorCount)
	}
	for _, s := range c.Station.StairsPlacement {
		if s < 0 || s >= c.Station.SectorCount {
			return fmt.Errorf("%w: stair at %d is outside the platform [0, %d)", ErrConfiguration, s, c.Station.SectorCount)
		}
	}
	if c.Station.SectorPassengerMaxCount < 0 {
		return fmt.Errorf("%w: station.sector_passenger_max_count must be non-negative", ErrConfiguration)
	}
	if err := validateRange("station.sector_fullness", c.Station.SectorFullness, 0); err != nil {
		return err
	}
	if c.Station.StairFactor < 0 {
		return fmt.Errorf("%w: station.stair_factor must be non-negative, got %g", ErrConfiguration, c.Station.StairFactor)
	}
	if c.Station.DistanceKm <= 0 {
		return fmt.Errorf("%w: station.distance_km must be positive, got %g", ErrConfiguration, c.Station.DistanceKm)
	}
	th := c.Station.LightThresholds
	if th.Green <= 0 || th.Yellow < th.Green {
		return fmt.Errorf("%w: light thresholds need 0 < green <= yellow, got green=%g yellow=%g", ErrConfiguration, th.Green, th.Yellow)
	}

	t := c.Timing
	if t.WeighTrain < 0 || t.SendWeight < 0 || t.ReceiveWeight < 0 || t.DoorAction < 0 {
		return fmt.Errorf("%w: timing values must be non-negative", ErrConfiguration)
	}
	k := c.Kinematics
	if k.CruiseSpeedKmh <= 0 || k.Acceleration <= 0 || k.Deceleration <= 0 {
		return fmt.Errorf("%w: kinematics values must be positive", ErrConfiguration)
	}
	if c.Horizon < 0 {
		return fmt.Errorf("%w: horizon must be non-negative, got %g", ErrConfiguration, c.Horizon)
	}
	if !trace.IsValidTraceLevel(c.TraceLevel) {
		return fmt.Errorf("%w: unknown trace_level %q", ErrConfiguration, c.TraceLevel)
	}

	// Geometry and signal timing: these are also checked by the events
	// themselves, but catching them here aborts before anything is populated.
	if err := c.checkParking(); err != nil {
		return err
	}
	if err := c.checkSignalTiming(); err != nil {
		return err
	}
	return nil
}

func (c Config) checkParking() error {
	cars := c.Train.CarCount()
	if cars > c.Station.SectorCount {
		return fmt.Errorf("%w: %d cars, %d sectors", ErrTrainTooLong, cars, c.Station.SectorCount)
	}
	if p := c.Train.ParkAtIndex; p != nil && *p >= 0 && *p+cars > c.Station.SectorCount {
		return fmt.Errorf("%w: park index %d with %d cars on %d sectors", ErrParkOutOfRange, *p, cars, c.Station.SectorCount)
	}
	return nil
}

func (c Config) checkSignalTiming() error {
	arrive := c.Timing.SendWeight + DrivingTime(c.Station.DistanceKm, c.Kinematics)
	if c.Timing.ReceiveWeight > arrive {
		return fmt.Errorf("%w: signal after %.2fs, train after %.2fs", ErrSignalAfterArrival, c.Timing.ReceiveWeight, arrive)
	}
	return nil
}
