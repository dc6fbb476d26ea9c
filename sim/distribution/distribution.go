// Package distribution provides the random-sampling strategies used to
// generate passenger attributes. Samplers hold no RNG of their own; callers
// pass the stream they want to draw from so a run stays reproducible.
package distribution

import (
	"fmt"
	"math"
	"math/rand"

	"gopkg.in/yaml.v3"
)

// Spec selects a distribution and its parameters in YAML configuration.
type Spec struct {
	Type   string             `yaml:"type" json:"type"`
	Params map[string]float64 `yaml:"params,omitempty" json:"params,omitempty"`
}

// UnmarshalYAML replaces rather than merges, so a config that switches the
// type does not inherit the default's parameters.
func (s *Spec) UnmarshalYAML(node *yaml.Node) error {
	type plain Spec
	var out plain
	if err := node.Decode(&out); err != nil {
		return err
	}
	*s = Spec(out)
	return nil
}

// Distribution draws float samples.
type Distribution interface {
	// SampleOne returns a single sample.
	SampleOne(rng *rand.Rand) float64
	// SampleMany returns n samples drawn in sequence.
	SampleMany(rng *rand.Rand, n int) []float64
}

// sampleMany fills a slice by repeatedly calling one.
func sampleMany(rng *rand.Rand, n int, one func(*rand.Rand) float64) []float64 {
	if n <= 0 {
		return []float64{}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = one(rng)
	}
	return out
}

// Normal is a Gaussian distribution.
type Normal struct {
	mean, stdDev float64
}

// NewNormal creates a normal distribution with the given mean and standard deviation.
func NewNormal(mean, stdDev float64) *Normal {
	return &Normal{mean: mean, stdDev: stdDev}
}

func (d *Normal) SampleOne(rng *rand.Rand) float64 {
	return rng.NormFloat64()*d.stdDev + d.mean
}

func (d *Normal) SampleMany(rng *rand.Rand, n int) []float64 {
	return sampleMany(rng, n, d.SampleOne)
}

// LogNormal draws exp(mu + sigma*Z). mu and sigma describe the underlying normal.
type LogNormal struct {
	mu, sigma float64
}

// NewLogNormal creates a log-normal distribution.
func NewLogNormal(mu, sigma float64) *LogNormal {
	return &LogNormal{mu: mu, sigma: sigma}
}

func (d *LogNormal) SampleOne(rng *rand.Rand) float64 {
	val := math.Exp(d.mu + d.sigma*rng.NormFloat64())
	// Guard against +Inf from extreme sigma values
	if math.IsInf(val, 0) || math.IsNaN(val) {
		return math.MaxFloat64
	}
	return val
}

func (d *LogNormal) SampleMany(rng *rand.Rand, n int) []float64 {
	return sampleMany(rng, n, d.SampleOne)
}

// Uniform draws from [min, max).
type Uniform struct {
	min, max float64
}

// NewUniform creates a uniform distribution over [min, max).
func NewUniform(min, max float64) *Uniform {
	return &Uniform{min: min, max: max}
}

func (d *Uniform) SampleOne(rng *rand.Rand) float64 {
	if d.max <= d.min {
		return d.min
	}
	return d.min + rng.Float64()*(d.max-d.min)
}

func (d *Uniform) SampleMany(rng *rand.Rand, n int) []float64 {
	return sampleMany(rng, n, d.SampleOne)
}

// Constant always returns the same value and never touches the RNG.
type Constant struct {
	value float64
}

// NewConstant creates a zero-variance distribution.
func NewConstant(value float64) *Constant {
	return &Constant{value: value}
}

func (d *Constant) SampleOne(_ *rand.Rand) float64 {
	return d.value
}

func (d *Constant) SampleMany(rng *rand.Rand, n int) []float64 {
	return sampleMany(rng, n, d.SampleOne)
}

// requireParam checks that all required keys exist in a params map.
func requireParam(params map[string]float64, keys ...string) error {
	for _, k := range keys {
		if _, ok := params[k]; !ok {
			return fmt.Errorf("distribution requires parameter %q", k)
		}
	}
	return nil
}

// New creates a Distribution from a Spec.
func New(spec Spec) (Distribution, error) {
	switch spec.Type {
	case "normal", "gaussian":
		if err := requireParam(spec.Params, "mean", "std_dev"); err != nil {
			return nil, err
		}
		if spec.Params["std_dev"] < 0 {
			return nil, fmt.Errorf("normal std_dev must be non-negative, got %f", spec.Params["std_dev"])
		}
		return NewNormal(spec.Params["mean"], spec.Params["std_dev"]), nil

	case "lognormal":
		if err := requireParam(spec.Params, "mu", "sigma"); err != nil {
			return nil, err
		}
		if spec.Params["sigma"] <= 0 {
			return nil, fmt.Errorf("lognormal sigma must be positive, got %f", spec.Params["sigma"])
		}
		return NewLogNormal(spec.Params["mu"], spec.Params["sigma"]), nil

	case "uniform":
		if err := requireParam(spec.Params, "min", "max"); err != nil {
			return nil, err
		}
		if spec.Params["max"] < spec.Params["min"] {
			return nil, fmt.Errorf("uniform max %f is below min %f", spec.Params["max"], spec.Params["min"])
		}
		return NewUniform(spec.Params["min"], spec.Params["max"]), nil

	case "constant":
		if err := requireParam(spec.Params, "value"); err != nil {
			return nil, err
		}
		return NewConstant(spec.Params["value"]), nil

	default:
		return nil, fmt.Errorf("unknown distribution type %q", spec.Type)
	}
}
