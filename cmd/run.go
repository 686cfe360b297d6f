package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mplbm/micromodel/lbm/solver"
)

var runTwoPhaseCmd = &cobra.Command{
	Use:   "run-2phase",
	Short: "Write the two-phase solver inputs and run the Shan-Chen solver",
	Run: func(cmd *cobra.Command, args []string) {
		in, err := loadInputs(inputFile)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		applySimDir(in)
		if err := solver.RunTwoPhase(cmd.Context(), in, runner); err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Info("2-phase simulation complete.")
	},
}

var runRelPermCmd = &cobra.Command{
	Use:   "run-relperm",
	Short: "Split the two-phase results per fluid and run the permeability solver",
	Run: func(cmd *cobra.Command, args []string) {
		in, err := loadInputs(inputFile)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		applySimDir(in)
		rp, err := solver.RunRelPerm(cmd.Context(), in, runner)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Infof("Rel perm simulation complete for %d pressure steps.", len(rp.Steps))
	},
}

func init() {
	for _, c := range []*cobra.Command{runTwoPhaseCmd, runRelPermCmd} {
		c.Flags().StringVar(&simDir, "sim-dir", "", "Simulation directory (overrides the input file)")
		rootCmd.AddCommand(c)
	}
}
