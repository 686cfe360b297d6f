package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mplbm/micromodel/lbm/config"
	"github.com/mplbm/micromodel/lbm/solver"
)

var (
	logLevel  string // Log verbosity level
	inputFile string // Path to the YAML input file

	// runner launches the solver scripts; tests swap in a solver.FakeRunner
	runner solver.Runner = solver.ExecRunner{}
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "micromodel",
	Short: "Build lattice-Boltzmann micromodels and run two-phase Pc/kr simulations",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// loadInputs reads and validates the input file.
func loadInputs(path string) (*config.Inputs, error) {
	in, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return in, nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up persistent flags
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&inputFile, "input", "input.yml", "YAML input file")
}
