package solver

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/mplbm/micromodel/lbm/config"
	"github.com/mplbm/micromodel/lbm/geometry"
)

// Launcher script names, relative to the input folder.
const (
	TwoPhaseScript = "run_shanchen_sim.sh"
	RelPermScript  = "run_relperm_sim.sh"
)

// RunTwoPhase converts the geometry for the solver, writes the two-phase
// input file and launcher script, and runs the two-phase solver.
func RunTwoPhase(ctx context.Context, in *config.Inputs, runner Runner) error {
	if err := in.RequireTwoPhase(); err != nil {
		return err
	}

	logrus.Info("Creating efficient geometry for Palabos...")
	if _, err := geometry.CreateSolverGeometry(in); err != nil {
		return err
	}

	logrus.Info("Creating input file...")
	if _, err := CreateInputFile(in, config.TwoPhase, nil); err != nil {
		return err
	}
	if err := os.MkdirAll(in.OutputPath(""), 0o755); err != nil {
		return fmt.Errorf("create output folder: %w", err)
	}

	logrus.Info("Running 2-phase simulation...")
	command := Command(in.Solver.MPILauncher, in.Simulation.NumProcs,
		in.Solver.TwoPhaseExecutable, in.RelInput(TwoPhaseInputFile))
	script := in.InputPath(TwoPhaseScript)
	if err := WriteScript(script, command); err != nil {
		return err
	}
	if err := runner.Run(ctx, in.InputOutput.SimulationDirectory, script); err != nil {
		return fmt.Errorf("2-phase simulation: %w", err)
	}
	return nil
}

// RunRelPerm builds the single-phase geometries of every two-phase pressure
// step, writes the rel perm input file and launcher script, and runs the
// permeability solver with its output in <output folder>4relperm/.
func RunRelPerm(ctx context.Context, in *config.Inputs, runner Runner) (*geometry.RelPermGeometries, error) {
	if err := in.RequireTwoPhase(); err != nil {
		return nil, err
	}

	logrus.Info("Creating rel perm geometries...")
	rp, err := geometry.CreateRelPermGeometries(in)
	if err != nil {
		return nil, err
	}

	logrus.Info("Creating input file...")
	if _, err := CreateInputFile(in, config.RelPerm, rp.Steps); err != nil {
		return nil, err
	}

	logrus.Info("Running rel perm simulation...")
	command := Command(in.Solver.MPILauncher, in.Simulation.NumProcs,
		in.Solver.RelPermExecutable, in.RelInput(RelPermInputFile))
	script := in.InputPath(RelPermScript)
	if err := WriteScript(script, command); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(in.OutputPath(RelPermOutputDir), 0o755); err != nil {
		return nil, fmt.Errorf("create rel perm output folder: %w", err)
	}
	if err := runner.Run(ctx, in.InputOutput.SimulationDirectory, script); err != nil {
		return nil, fmt.Errorf("rel perm simulation: %w", err)
	}
	return rp, nil
}
