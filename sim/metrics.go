// Collects the outcome of a run for reporting: the turnaround time, where
// passengers ended up and how the decision step moved them.

package sim

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/platform-sim/platform-sim/sim/trace"
)

// RunResult aggregates the outcome of one run for final reporting.
type RunResult struct {
	Seed              int64   `json:"seed"`
	Lights            bool    `json:"lights"`
	Turnaround        float64 `json:"turnaround_seconds"`
	TurnaroundDefined bool    `json:"turnaround_defined"`
	Clock             float64 `json:"clock_seconds"`
	EventsFired       int     `json:"events_fired"`
	Failures          int     `json:"failures"`

	SectorOccupancy []int         `json:"sector_occupancy"` // waiting passengers per sector at the end
	CarOccupancy    []int         `json:"car_occupancy"`    // passengers per car at the end
	SectorLights    []LightStatus `json:"sector_lights"`

	Boarded    int `json:"boarded"`
	Alighted   int `json:"alighted"`
	LeftBehind int `json:"left_behind"` // still waiting on the platform

	InitialStation int `json:"initial_station_passengers"`
	FinalStation   int `json:"final_station_passengers"`
	InitialTrain   int `json:"initial_train_passengers"`
	FinalTrain     int `json:"final_train_passengers"`

	Trace *trace.TraceSummary `json:"trace,omitempty"`
}

// Result builds the RunResult from the simulator's current state.
func (sim *Simulator) Result() *RunResult {
	env := sim.Env
	r := &RunResult{
		Seed:            env.Seed,
		Lights:          env.Config.Station.Lights,
		Clock:           sim.Clock,
		EventsFired:     sim.EventsFired,
		Failures:        sim.Failures,
		SectorOccupancy: env.Station.Occupancy(),
		CarOccupancy:    env.Train.Occupancy(),
		SectorLights:    env.Station.Lights(),
		Boarded:         env.Boarded,
		Alighted:        env.Alighted,
		LeftBehind:      env.Station.Waiting(),
		InitialStation:  env.Station.Initial,
		FinalStation:    env.Station.Waiting(),
		InitialTrain:    env.Train.Initial,
		FinalTrain:      env.Train.Onboard(),
	}
	if turnaround, err := env.Timing.TurnaroundTime(); err == nil {
		r.Turnaround = turnaround
		r.TurnaroundDefined = true
	}
	if env.Trace != nil {
		r.Trace = trace.Summarize(env.Trace)
	}
	return r
}

// Print displays the run outcome.
func (r *RunResult) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Simulation Result ===")
	fmt.Fprintf(w, "Seed                 : %d\n", r.Seed)
	fmt.Fprintf(w, "Lights               : %t\n", r.Lights)
	if r.TurnaroundDefined {
		fmt.Fprintf(w, "Turnaround Time      : %.2f s\n", r.Turnaround)
	} else {
		fmt.Fprintln(w, "Turnaround Time      : undefined")
	}
	fmt.Fprintf(w, "Simulation Clock     : %.2f s\n", r.Clock)
	fmt.Fprintf(w, "Events Fired         : %d\n", r.EventsFired)
	if r.Failures > 0 {
		fmt.Fprintf(w, "Failed Chains        : %d\n", r.Failures)
	}
	fmt.Fprintf(w, "Station Passengers   : %d -> %d\n", r.InitialStation, r.FinalStation)
	fmt.Fprintf(w, "Train Passengers     : %d -> %d\n", r.InitialTrain, r.FinalTrain)
	fmt.Fprintf(w, "Boarded / Alighted   : %d / %d\n", r.Boarded, r.Alighted)
	fmt.Fprintf(w, "Sector Occupancy     : %v\n", r.SectorOccupancy)
	fmt.Fprintf(w, "Car Occupancy        : %v\n", r.CarOccupancy)
	if r.Trace != nil {
		fmt.Fprintf(w, "Passengers Moved     : %d (mean %.2f sectors, max %d)\n",
			r.Trace.TotalMoves, r.Trace.MeanMoveDistance, r.Trace.MaxMoveDistance)
	}
}

// WriteJSON encodes the result as indented JSON.
func (r *RunResult) WriteJSON(w io.Writer) error {
	return encodeJSON(w, r, "run result")
}

func encodeJSON(w io.Writer, v any, what string) error {
	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", what, err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}
