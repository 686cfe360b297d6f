package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mplbm/micromodel/lbm/config"
	"github.com/mplbm/micromodel/lbm/geometry"
)

var (
	micromodelParams geometry.MicromodelParams
	saveInputs       string // Where the updated inputs are written; empty skips saving
	simDir           string // Overrides the simulation directory of the input file
)

var micromodelCmd = &cobra.Command{
	Use:   "micromodel",
	Short: "Carve a 2D micromodel out of the rock geometry",
	Run: func(cmd *cobra.Command, args []string) {
		in, err := loadInputs(inputFile)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		applySimDir(in)
		if err := createMicromodel(in); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

func applySimDir(in *config.Inputs) {
	if simDir != "" {
		in.InputOutput.SimulationDirectory = simDir
	}
}

// createMicromodel writes the micromodel and, if requested, the inputs that
// describe it.
func createMicromodel(in *config.Inputs) error {
	vol, err := geometry.CreateMicromodel(in, micromodelParams)
	if err != nil {
		return err
	}
	logrus.Infof("Micromodel %s has shape %v", in.Geometry.FileName, vol.Shape)
	if saveInputs == "" {
		return nil
	}
	if err := in.Save(saveInputs); err != nil {
		return err
	}
	logrus.Infof("Updated inputs saved to %s", saveInputs)
	return nil
}

func addMicromodelFlags(c *cobra.Command) {
	c.Flags().IntVar(&micromodelParams.SliceIndex, "slice-index", 100, "Index of the plane along the first geometry axis")
	c.Flags().IntVar(&micromodelParams.XOffset, "x-offset", 0, "Offset of the nx window")
	c.Flags().IntVar(&micromodelParams.YOffset, "y-offset", 25, "Offset of the ny window")
	c.Flags().Float64Var(&micromodelParams.Rescale, "rescale", 0.5, "Nearest-neighbour scale factor of the plane")
	c.Flags().StringVar(&saveInputs, "save-inputs", "input_micromodel.yml", "Write the updated inputs here (empty to skip)")
	c.Flags().StringVar(&simDir, "sim-dir", "", "Simulation directory (overrides the input file)")
}

func init() {
	addMicromodelFlags(micromodelCmd)
	rootCmd.AddCommand(micromodelCmd)
}
