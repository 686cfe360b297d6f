// Package config loads, validates and saves the YAML input file that drives a
// micromodel workflow run.
//
// The YAML keys mirror the human-readable keys used by the solver tooling
// ("input output", "geometry size", "Nx", ...). Decoding is strict: unknown keys
// are rejected so that typos surface as errors instead of silently using defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Simulation types accepted in the "simulation type" field.
const (
	OnePhase = "1-phase"
	TwoPhase = "2-phase"
	RelPerm  = "rel perm"
)

// ErrWrongSimulationType is returned when a two-phase entry point is handed a
// configuration set up for a single-phase run.
var ErrWrongSimulationType = errors.New("simulation type set to 1-phase...please change to 2-phase")

// Defaults applied by Load when a field is left empty.
const (
	DefaultInputFolder         = "input/"
	DefaultOutputFolder        = "output/"
	DefaultMPILauncher         = "mpirun"
	DefaultTwoPhaseExecutable  = "../../src/2-phase_LBM/ShanChen"
	DefaultRelPermExecutable   = "../../src/1-phase_LBM/permeability"
	DefaultNonwettingThreshold = 1.0
)

// Inputs is the full input file.
type Inputs struct {
	InputOutput    InputOutput `yaml:"input output"`
	Geometry       Geometry    `yaml:"geometry"`
	Domain         Domain      `yaml:"domain"`
	SimulationType string      `yaml:"simulation type"`
	Simulation     Simulation  `yaml:"simulation"`
	RelPerm        RelPermSim  `yaml:"rel perm"`
	Solver         Solver      `yaml:"solver"`
}

// InputOutput locates the simulation directory and its input/output folders.
// Folder names are relative to the simulation directory.
type InputOutput struct {
	SimulationDirectory string `yaml:"simulation directory"`
	InputFolder         string `yaml:"input folder"`
	OutputFolder        string `yaml:"output folder"`
}

// Geometry describes the raw voxel file on disk.
type Geometry struct {
	FileName     string `yaml:"file name"`
	DataType     string `yaml:"data type"`
	GeometrySize Size3  `yaml:"geometry size"`
}

// Size3 is a full geometry size.
type Size3 struct {
	Nx int `yaml:"Nx"`
	Ny int `yaml:"Ny"`
	Nz int `yaml:"Nz"`
}

// DomainSize is the simulated sub-domain of the geometry.
type DomainSize struct {
	Nx int `yaml:"nx"`
	Ny int `yaml:"ny"`
	Nz int `yaml:"nz"`
}

// Periodic flags periodic boundaries per axis.
type Periodic struct {
	X bool `yaml:"x"`
	Y bool `yaml:"y"`
	Z bool `yaml:"z"`
}

// Domain describes how the geometry is turned into a solver domain.
type Domain struct {
	GeomName           string     `yaml:"geom name"`
	DomainSize         DomainSize `yaml:"domain size"`
	PeriodicBoundary   Periodic   `yaml:"periodic boundary"`
	InletOutletLayers  int        `yaml:"inlet and outlet layers"`
	AddMesh            bool       `yaml:"add mesh"`
	SwapPoresAndGrains bool       `yaml:"swap pores and grains"`
}

// Box is an axis-aligned region of lattice nodes, bounds inclusive.
type Box struct {
	X1 int `yaml:"x1"`
	X2 int `yaml:"x2"`
	Y1 int `yaml:"y1"`
	Y2 int `yaml:"y2"`
	Z1 int `yaml:"z1"`
	Z2 int `yaml:"z2"`
}

// FluidData holds the Shan-Chen interaction parameters.
type FluidData struct {
	G        float64 `yaml:"G"`
	OmegaF1  float64 `yaml:"omega_f1"`
	OmegaF2  float64 `yaml:"omega_f2"`
	GAdsF1S1 float64 `yaml:"G_ads_f1_s1"`
	GAdsF1S2 float64 `yaml:"G_ads_f1_s2"`
}

// Simulation configures the two-phase run.
type Simulation struct {
	NumProcs         int       `yaml:"num procs"`
	RestartSim       bool      `yaml:"restart sim"`
	FluidInit        string    `yaml:"fluid init"`
	Fluid1Init       Box       `yaml:"fluid 1 init"`
	Fluid2Init       Box       `yaml:"fluid 2 init"`
	FluidData        FluidData `yaml:"fluid data"`
	RhoF1            float64   `yaml:"rho_f1"`
	RhoF2            float64   `yaml:"rho_f2"`
	PressureBC       bool      `yaml:"pressure bc"`
	RhoF1Inlet       float64   `yaml:"rho_f1_i"`
	RhoF2Outlet      float64   `yaml:"rho_f2_i"`
	NumPressureSteps int       `yaml:"num pressure steps"`
	RhoIncrement     float64   `yaml:"rho increment"`
	MinimumRadius    float64   `yaml:"minimum radius"`
	Convergence      float64   `yaml:"convergence"`
	ConvergenceIter  int       `yaml:"convergence iter"`
	MaxIterations    int       `yaml:"max iterations"`
	SaveSim          bool      `yaml:"save sim"`
	SaveIter         int       `yaml:"save iter"`
}

// RelPermSim configures the single-phase relative permeability runs.
type RelPermSim struct {
	Convergence         float64 `yaml:"convergence"`
	MaxIterations       int     `yaml:"max iterations"`
	DeltaP              float64 `yaml:"delta P"`
	Tau                 float64 `yaml:"tau"`
	SaveVTKs            bool    `yaml:"save vtks"`
	NonwettingThreshold float64 `yaml:"nonwetting threshold"`
}

// Solver names the external executables. Paths are relative to the
// simulation directory, which is where the launcher scripts run.
type Solver struct {
	MPILauncher        string `yaml:"mpi launcher"`
	TwoPhaseExecutable string `yaml:"two phase executable"`
	RelPermExecutable  string `yaml:"rel perm executable"`
}

var validSimulationTypes = map[string]bool{
	OnePhase: true, TwoPhase: true, RelPerm: true,
}

// Load reads and parses an input file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func Load(path string) (*Inputs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading input file: %w", err)
	}
	return Parse(data)
}

// Parse decodes an input file already in memory and applies defaults.
func Parse(data []byte) (*Inputs, error) {
	var in Inputs
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&in); err != nil {
		return nil, fmt.Errorf("parsing input file: %w", err)
	}
	in.applyDefaults()
	return &in, nil
}

func (in *Inputs) applyDefaults() {
	if in.InputOutput.InputFolder == "" {
		in.InputOutput.InputFolder = DefaultInputFolder
	}
	if in.InputOutput.OutputFolder == "" {
		in.InputOutput.OutputFolder = DefaultOutputFolder
	}
	if in.Simulation.NumProcs == 0 {
		in.Simulation.NumProcs = 1
	}
	if in.Solver.MPILauncher == "" {
		in.Solver.MPILauncher = DefaultMPILauncher
	}
	if in.Solver.TwoPhaseExecutable == "" {
		in.Solver.TwoPhaseExecutable = DefaultTwoPhaseExecutable
	}
	if in.Solver.RelPermExecutable == "" {
		in.Solver.RelPermExecutable = DefaultRelPermExecutable
	}
	if in.RelPerm.NonwettingThreshold == 0 {
		in.RelPerm.NonwettingThreshold = DefaultNonwettingThreshold
	}
}

// Validate checks sizes, names and the simulation type.
// The data type is checked by the geometry package when the file is read.
// Domain sizes are bounded against the geometry where they are used: the
// micromodel window and the solver crop.
func (in *Inputs) Validate() error {
	if in.Geometry.FileName == "" {
		return fmt.Errorf("geometry.file name is required")
	}
	if in.Geometry.DataType == "" {
		return fmt.Errorf("geometry.data type is required")
	}
	if in.Domain.GeomName == "" {
		return fmt.Errorf("domain.geom name is required")
	}
	g := in.Geometry.GeometrySize
	if g.Nx <= 0 || g.Ny <= 0 || g.Nz <= 0 {
		return fmt.Errorf("geometry size must be positive, got Nx=%d Ny=%d Nz=%d", g.Nx, g.Ny, g.Nz)
	}
	d := in.Domain.DomainSize
	if d.Nx <= 0 || d.Ny <= 0 || d.Nz <= 0 {
		return fmt.Errorf("domain size must be positive, got nx=%d ny=%d nz=%d", d.Nx, d.Ny, d.Nz)
	}
	if !validSimulationTypes[in.SimulationType] {
		return fmt.Errorf("unknown simulation type %q; valid: %s, %s, %s", in.SimulationType, OnePhase, TwoPhase, RelPerm)
	}
	if in.Domain.InletOutletLayers < 0 {
		return fmt.Errorf("inlet and outlet layers must be non-negative, got %d", in.Domain.InletOutletLayers)
	}
	if in.Simulation.NumProcs < 1 {
		return fmt.Errorf("num procs must be at least 1, got %d", in.Simulation.NumProcs)
	}
	return nil
}

// RequireTwoPhase rejects single-phase configurations at two-phase entry points.
func (in *Inputs) RequireTwoPhase() error {
	if in.SimulationType == OnePhase {
		return ErrWrongSimulationType
	}
	return nil
}

// Save writes the inputs back to YAML.
func (in *Inputs) Save(path string) error {
	data, err := yaml.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal inputs: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write inputs %s: %w", path, err)
	}
	return nil
}

// Clone returns a deep copy. Inputs holds only value fields.
func (in *Inputs) Clone() *Inputs {
	c := *in
	return &c
}

// InputPath joins name onto the input folder inside the simulation directory.
func (in *Inputs) InputPath(name string) string {
	return filepath.Join(in.InputOutput.SimulationDirectory, in.InputOutput.InputFolder, name)
}

// OutputPath joins name onto the output folder inside the simulation directory.
func (in *Inputs) OutputPath(name string) string {
	return filepath.Join(in.InputOutput.SimulationDirectory, in.InputOutput.OutputFolder, name)
}

// GeometryPath is the raw geometry file the inputs currently point at.
func (in *Inputs) GeometryPath() string {
	return in.InputPath(in.Geometry.FileName)
}

// RelInput joins name onto the input folder without the simulation
// directory, for paths handed to the solver which runs inside it.
func (in *Inputs) RelInput(name string) string {
	return filepath.ToSlash(filepath.Join(in.InputOutput.InputFolder, name))
}

// RelOutput is the output-folder counterpart of RelInput. Folder paths keep
// their trailing slash since the solver concatenates file names onto them.
func (in *Inputs) RelOutput(name string) string {
	p := filepath.ToSlash(filepath.Join(in.InputOutput.OutputFolder, name))
	if name == "" || name[len(name)-1] == '/' {
		p += "/"
	}
	return p
}
