package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mplbm/micromodel/lbm/config"
	"github.com/mplbm/micromodel/lbm/pipeline"
	"github.com/mplbm/micromodel/lbm/plots"
	"github.com/mplbm/micromodel/lbm/solver"
)

// Workflow step names, in execution order.
const (
	stepDownload   = "download"
	stepMicromodel = "micromodel"
	stepTwoPhase   = "2phase"
	stepRelPerm    = "relperm"
	stepPlot       = "plot"
)

var allSteps = []string{stepDownload, stepMicromodel, stepTwoPhase, stepRelPerm, stepPlot}

var workflowSteps []string // Steps selected with --steps

var workflowCmd = &cobra.Command{
	Use:   "workflow",
	Short: "Download the geometry, build the micromodel and optionally simulate and plot",
	Long: "Runs the selected steps in order: " + strings.Join(allSteps, ", ") + ".\n" +
		"The simulation directory defaults to the working directory.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if simDir == "" {
			wd, err := os.Getwd()
			if err != nil {
				logrus.Fatalf("%v", err)
			}
			simDir = wd
		}
		in, err := loadInputs(inputFile)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		applySimDir(in)

		steps, err := buildWorkflow(in, workflowSteps)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if err := pipeline.Run(ctx, steps); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

// buildWorkflow maps step names onto pipeline steps sharing in. Steps run in
// their fixed order whatever order they are named in.
func buildWorkflow(in *config.Inputs, names []string) ([]pipeline.Step, error) {
	selected := make(map[string]bool, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if !slices.Contains(allSteps, n) {
			return nil, fmt.Errorf("unknown workflow step %q; valid: %s", n, strings.Join(allSteps, ", "))
		}
		selected[n] = true
	}

	run := map[string]func(ctx context.Context) error{
		stepDownload: func(ctx context.Context) error {
			dest := geometryDest
			if !filepath.IsAbs(dest) {
				dest = filepath.Join(in.InputOutput.SimulationDirectory, dest)
			}
			return downloadGeometry(ctx, dest)
		},
		stepMicromodel: func(context.Context) error {
			return createMicromodel(in)
		},
		stepTwoPhase: func(ctx context.Context) error {
			return solver.RunTwoPhase(ctx, in, runner)
		},
		stepRelPerm: func(ctx context.Context) error {
			_, err := solver.RunRelPerm(ctx, in, runner)
			return err
		},
		stepPlot: func(context.Context) error {
			_, err := plots.ProcessAndPlot(in)
			return err
		},
	}

	var steps []pipeline.Step
	for _, n := range allSteps {
		if selected[n] {
			steps = append(steps, pipeline.Step{Name: n, Run: run[n]})
		}
	}
	return steps, nil
}

func init() {
	workflowCmd.Flags().StringSliceVar(&workflowSteps, "steps", []string{stepDownload, stepMicromodel},
		"Comma-separated steps to run ("+strings.Join(allSteps, ", ")+")")
	addDownloadFlags(workflowCmd)
	addMicromodelFlags(workflowCmd)
	rootCmd.AddCommand(workflowCmd)
}
