package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/platform-sim/platform-sim/sim"
)

// compareCmd runs one populated world with and without lights
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Run the same platform with lights on and off",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()

		cfg, err := resolveConfig(cmd.Flags())
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		cmp, err := compare(cfg)
		if err != nil {
			logrus.Fatalf("Comparison aborted: %v", err)
		}
		cmp.Print(os.Stdout)
		if jsonPath != "" {
			if err := writeJSONFile(jsonPath, cmp.WriteJSON); err != nil {
				logrus.Fatalf("%v", err)
			}
		}
	},
}

func compare(cfg sim.Config) (*sim.Comparison, error) {
	if snapshotIn == "" {
		return sim.CompareLights(cfg)
	}
	snap, err := loadSnapshotFile(snapshotIn)
	if err != nil {
		return nil, err
	}
	return snap.CompareLights(cfg)
}

// sweepCmd compares lights on and off across consecutive seeds
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Compare lights on and off over many seeds",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()

		cfg, err := resolveConfig(cmd.Flags())
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		if sweepRuns <= 0 {
			logrus.Fatalf("--runs must be positive, got %d", sweepRuns)
		}
		result := sim.Sweep(cfg, sweepSeeds(sweepFirst, sweepRuns))
		result.Print(os.Stdout)
		if jsonPath != "" {
			if err := writeJSONFile(jsonPath, result.WriteJSON); err != nil {
				logrus.Fatalf("%v", err)
			}
		}
	},
}

// sweepSeeds returns n consecutive seeds starting at first.
func sweepSeeds(first int64, n int) []int64 {
	seeds := make([]int64, n)
	for i := range seeds {
		seeds[i] = first + int64(i)
	}
	return seeds
}

// snapshotCmd groups snapshot operations
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Save populated platforms for later runs",
}

// snapshotSaveCmd populates a world and writes it without running it
var snapshotSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Populate a platform and save it as JSON",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()

		cfg, err := resolveConfig(cmd.Flags())
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		env, err := sim.NewEnvironment(cfg)
		if err != nil {
			logrus.Fatalf("Could not build the platform: %v", err)
		}
		if err := saveSnapshotFile(snapshotPath, env); err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Infof("Snapshot of seed %d written to %s", env.Seed, snapshotPath)
	},
}
