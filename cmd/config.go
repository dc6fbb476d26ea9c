package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	sim "github.com/platform-sim/platform-sim/sim"
)

// resolveConfig loads the YAML config, if one was given, and applies the
// flags the user set explicitly. Flags left at their default never override
// the file.
func resolveConfig(flags *pflag.FlagSet) (sim.Config, error) {
	cfg := sim.DefaultConfig()
	if configPath != "" {
		loaded, err := sim.LoadConfig(configPath)
		if err != nil {
			return sim.Config{}, err
		}
		cfg = loaded
	}

	switch {
	case flags.Changed("random-seed") && randomSeed:
		cfg.Seed = nil
	case flags.Changed("seed"):
		s := seed
		cfg.Seed = &s
	}
	if flags.Changed("horizon") {
		cfg.Horizon = horizon
	}
	if flags.Changed("lights") {
		cfg.Station.Lights = lights
	}
	if flags.Changed("trace") {
		cfg.TraceLevel = traceLevel
	}

	if err := cfg.Validate(); err != nil {
		return sim.Config{}, err
	}
	return cfg, nil
}

// buildEnvironment populates a fresh world, or restores the one named by
// --snapshot-in.
func buildEnvironment(cfg sim.Config) (*sim.Environment, error) {
	if snapshotIn == "" {
		return sim.NewEnvironment(cfg)
	}
	snap, err := loadSnapshotFile(snapshotIn)
	if err != nil {
		return nil, err
	}
	return snap.Restore(&cfg)
}

func loadSnapshotFile(path string) (*sim.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()
	return sim.LoadSnapshot(f)
}

func saveSnapshotFile(path string, env *sim.Environment) error {
	return writeJSONFile(path, func(w io.Writer) error {
		return sim.SaveSnapshot(w, env)
	})
}

// writeJSONFile creates path and fills it with write.
func writeJSONFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
