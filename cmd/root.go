package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/platform-sim/platform-sim/sim"
)

var (
	// CLI flags shared by every simulation command
	configPath string  // YAML configuration file
	seed       int64   // Seed for all random streams
	randomSeed bool    // Seed from the wall clock instead
	horizon    float64 // Simulation horizon (in seconds)
	lights     bool    // Whether the platform has sector lights
	traceLevel string  // Decision trace level
	logLevel   string  // Log verbosity level

	// run / compare / sweep outputs
	jsonPath     string // Write the result as JSON to this file
	snapshotIn   string // Restore the world from this snapshot instead of populating
	snapshotOut  string // Save the populated world before running
	sweepRuns    int    // Number of seeds in a sweep
	sweepFirst   int64  // First seed of a sweep
	snapshotPath string // Output file of `snapshot save`
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "platform-sim",
	Short: "Discrete-event simulator for train turnaround at a rail platform",
}

// runCmd executes one simulation using the YAML config and CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the platform simulation once",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()

		cfg, err := resolveConfig(cmd.Flags())
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		env, err := buildEnvironment(cfg)
		if err != nil {
			logrus.Fatalf("Could not build the platform: %v", err)
		}
		if snapshotOut != "" {
			if err := saveSnapshotFile(snapshotOut, env); err != nil {
				logrus.Fatalf("%v", err)
			}
			logrus.Infof("Snapshot written to %s", snapshotOut)
		}

		logrus.Infof("Starting simulation with seed %d, %d sectors, lights=%t",
			env.Seed, cfg.Station.SectorCount, cfg.Station.Lights)
		result, err := sim.NewSimulator(env).Run()
		if err != nil {
			logrus.Fatalf("Simulation aborted: %v", err)
		}
		result.Print(os.Stdout)
		if jsonPath != "" {
			if err := writeJSONFile(jsonPath, result.WriteJSON); err != nil {
				logrus.Fatalf("%v", err)
			}
		}

		logrus.Info("Simulation complete.")
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setLogLevel() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// addConfigFlags registers the flags that override the YAML configuration.
func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML simulation config (defaults apply when empty)")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Seed for all random streams")
	cmd.Flags().BoolVar(&randomSeed, "random-seed", false, "Seed from the wall clock")
	cmd.Flags().Float64Var(&horizon, "horizon", 0, "Simulation horizon in seconds (0 = until the train departs)")
	cmd.Flags().BoolVar(&lights, "lights", true, "Whether the platform has sector lights")
	cmd.Flags().StringVar(&traceLevel, "trace", "none", "Decision trace level (none, decisions)")
	cmd.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
}

// init sets up CLI flags and subcommands
func init() {
	for _, cmd := range []*cobra.Command{runCmd, compareCmd, sweepCmd, snapshotSaveCmd} {
		addConfigFlags(cmd)
	}

	runCmd.Flags().StringVar(&jsonPath, "json", "", "Write the run result as JSON to this file")
	runCmd.Flags().StringVar(&snapshotIn, "snapshot-in", "", "Run a world restored from this snapshot")
	runCmd.Flags().StringVar(&snapshotOut, "snapshot-out", "", "Save the populated world to this file before running")

	compareCmd.Flags().StringVar(&jsonPath, "json", "", "Write the comparison as JSON to this file")
	compareCmd.Flags().StringVar(&snapshotIn, "snapshot-in", "", "Compare on a world restored from this snapshot")

	sweepCmd.Flags().IntVar(&sweepRuns, "runs", 10, "Number of seeds to compare")
	sweepCmd.Flags().Int64Var(&sweepFirst, "first-seed", 1, "First seed of the sweep")
	sweepCmd.Flags().StringVar(&jsonPath, "json", "", "Write the sweep as JSON to this file")

	snapshotSaveCmd.Flags().StringVar(&snapshotPath, "out", "snapshot.json", "Snapshot output file")
	snapshotCmd.AddCommand(snapshotSaveCmd)

	rootCmd.AddCommand(runCmd, compareCmd, sweepCmd, snapshotCmd)
}
