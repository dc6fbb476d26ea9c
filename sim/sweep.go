package sim

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Comparison holds two runs over the same populated world, one with the
// sector lights on and one without.
type Comparison struct {
	Seed          int64      `json:"seed"`
	WithLights    *RunResult `json:"with_lights,omitempty"`
	WithoutLights *RunResult `json:"without_lights,omitempty"`
	Err           string     `json:"error,omitempty"`
}

// Difference returns how many seconds the lights saved. It is only meaningful
// when both turnarounds are defined.
func (c *Comparison) Difference() (float64, bool) {
	if c.WithLights == nil || c.WithoutLights == nil ||
		!c.WithLights.TurnaroundDefined || !c.WithoutLights.TurnaroundDefined {
		return 0, false
	}
	return c.WithoutLights.Turnaround - c.WithLights.Turnaround, true
}

// Print displays both runs and the saving.
func (c *Comparison) Print(w io.Writer) {
	fmt.Fprintln(w, "--- Lights on ---")
	c.WithLights.Print(w)
	fmt.Fprintln(w, "--- Lights off ---")
	c.WithoutLights.Print(w)
	if d, ok := c.Difference(); ok {
		fmt.Fprintf(w, "Lights saved         : %.2f s\n", d)
	}
}

// WriteJSON encodes the comparison as indented JSON.
func (c *Comparison) WriteJSON(w io.Writer) error {
	return encodeJSON(w, c, "comparison")
}

// RunOnce populates a world from cfg and runs it.
func RunOnce(cfg Config) (*RunResult, error) {
	env, err := NewEnvironment(cfg)
	if err != nil {
		return nil, err
	}
	return NewSimulator(env).Run()
}

// CompareLights populates one world from cfg and runs it twice, lights on and
// lights off.
func CompareLights(cfg Config) (*Comparison, error) {
	env, err := NewEnvironment(cfg)
	if err != nil {
		return nil, err
	}
	snap, err := env.Snapshot()
	if err != nil {
		return nil, err
	}
	return snap.CompareLights(cfg)
}

// CompareLights runs the captured world under cfg twice, lights on and
// lights off.
func (snap *Snapshot) CompareLights(cfg Config) (*Comparison, error) {
	c := &Comparison{Seed: snap.Seed}
	for _, lights := range []bool{true, false} {
		variant := cfg
		variant.Station.Lights = lights
		env, err := snap.Restore(&variant)
		if err != nil {
			return nil, err
		}
		result, err := NewSimulator(env).Run()
		if err != nil {
			return nil, fmt.Errorf("lights=%t: %w", lights, err)
		}
		if lights {
			c.WithLights = result
		} else {
			c.WithoutLights = result
		}
	}
	return c, nil
}

// SweepResult collects the comparisons of a multi-seed sweep.
type SweepResult struct {
	Comparisons []*Comparison `json:"comparisons"`
	Failed      int           `json:"failed"`
}

// Sweep compares lights on and off for every seed, one after another. A seed
// that fails is recorded and the sweep goes on.
func Sweep(cfg Config, seeds []int64) *SweepResult {
	out := &SweepResult{Comparisons: make([]*Comparison, 0, len(seeds))}
	for _, seed := range seeds {
		c := cfg
		c.Seed = &seed
		cmp, err := CompareLights(c)
		if err != nil {
			logrus.Errorf("Sweep seed %d failed: %v", seed, err)
			out.Failed++
			out.Comparisons = append(out.Comparisons, &Comparison{Seed: seed, Err: err.Error()})
			continue
		}
		out.Comparisons = append(out.Comparisons, cmp)
	}
	return out
}

// WriteJSON encodes the sweep as indented JSON.
func (s *SweepResult) WriteJSON(w io.Writer) error {
	return encodeJSON(w, s, "sweep")
}

// MeanDifference averages the seconds saved over comparisons where both
// turnarounds are defined, and reports how many contributed.
func (s *SweepResult) MeanDifference() (float64, int) {
	sum, n := 0.0, 0
	for _, c := range s.Comparisons {
		if d, ok := c.Difference(); ok {
			sum += d
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	return sum / float64(n), n
}

// Print displays one line per seed and the mean saving.
func (s *SweepResult) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Lights Sweep ===")
	fmt.Fprintf(w, "%-20s %12s %12s %10s\n", "seed", "lights on", "lights off", "saved")
	for _, c := range s.Comparisons {
		if c.Err != "" {
			fmt.Fprintf(w, "%-20d failed: %s\n", c.Seed, c.Err)
			continue
		}
		d, ok := c.Difference()
		if !ok {
			fmt.Fprintf(w, "%-20d %12s %12s %10s\n", c.Seed, "-", "-", "-")
			continue
		}
		fmt.Fprintf(w, "%-20d %12.2f %12.2f %10.2f\n", c.Seed, c.WithLights.Turnaround, c.WithoutLights.Turnaround, d)
	}
	mean, n := s.MeanDifference()
	fmt.Fprintf(w, "Mean saving          : %.2f s over %d runs\n", mean, n)
	if s.Failed > 0 {
		fmt.Fprintf(w, "Failed runs          : %d\n", s.Failed)
	}
}
