package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mplbm/micromodel/lbm/plots"
)

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Reduce the solver output and plot the Pc and kr curves",
	Run: func(cmd *cobra.Command, args []string) {
		in, err := loadInputs(inputFile)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		applySimDir(in)
		if _, err := plots.ProcessAndPlot(in); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

func init() {
	plotCmd.Flags().StringVar(&simDir, "sim-dir", "", "Simulation directory (overrides the input file)")
	rootCmd.AddCommand(plotCmd)
}
