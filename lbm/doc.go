// Package lbm groups the building blocks of the two-phase micromodel
// workflow. The package itself holds no code.
//
// # Reading Guide
//
// Start with these packages to follow one run from rock to curves:
//   - config/: the YAML input file, its defaults and derived paths
//   - geometry/: raw voxel volumes, the micromodel carve, solver geometries
//   - solver/: XML input files, launcher scripts and the subprocess runner
//   - results/: reduction of solver output to Sw, Pc, krw and krnw columns
//
// # Architecture
//
// The workflow is a fixed sequence of steps, each reading and writing files in
// the simulation directory:
//   - fetch/: download the raw rock geometry (retried with backoff)
//   - geometry.CreateMicromodel: slice, rescale, extrude and transpose the rock
//   - solver.RunTwoPhase: Shan-Chen drainage over the configured pressure steps
//   - solver.RunRelPerm: single-phase permeability of each fluid per step
//   - plots.ProcessAndPlot: data files and PNG figures
//
// pipeline/ sequences the steps for the workflow command. The physics lives
// in the external MPI solvers; these packages only prepare their inputs and
// read their outputs.
package lbm
