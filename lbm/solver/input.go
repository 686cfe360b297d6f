// Package solver prepares and launches the external lattice-Boltzmann
// solvers: it writes their XML input files and launcher scripts and runs the
// scripts as blocking subprocesses.
package solver

import (
	"encoding/xml"
	"fmt"
	"os"

	"github.com/mplbm/micromodel/lbm/config"
	"github.com/mplbm/micromodel/lbm/geometry"
)

// Input file names, relative to the input folder.
const (
	TwoPhaseInputFile = "2_phase_sim_input.xml"
	RelPermInputFile  = "relperm_input.xml"
	RelPermOutputDir  = "4relperm/"
)

type xyz struct {
	X int `xml:"x"`
	Y int `xml:"y"`
	Z int `xml:"z"`
}

type periodicXML struct {
	X bool `xml:"x"`
	Y bool `xml:"y"`
	Z bool `xml:"z"`
}

type boxXML struct {
	X1 int `xml:"x1"`
	X2 int `xml:"x2"`
	Y1 int `xml:"y1"`
	Y2 int `xml:"y2"`
	Z1 int `xml:"z1"`
	Z2 int `xml:"z2"`
}

type loadStateXML struct {
	XMLName xml.Name `xml:"load_savedstated"`
	Value   bool     `xml:",chardata"`
}

type twoPhaseGeometryXML struct {
	XMLName  xml.Name `xml:"geometry"`
	FileGeom string   `xml:"file_geom"`
	Size     xyz      `xml:"size"`
	Per      struct {
		Fluid1 periodicXML `xml:"fluid1"`
		Fluid2 periodicXML `xml:"fluid2"`
	} `xml:"per"`
}

type initXML struct {
	XMLName       xml.Name `xml:"init"`
	FluidFromGeom bool     `xml:"fluid_from_geom"`
	Fluid1        boxXML   `xml:"fluid1"`
	Fluid2        boxXML   `xml:"fluid2"`
}

type fluidsXML struct {
	XMLName    xml.Name `xml:"fluids"`
	Gc         float64  `xml:"Gc"`
	OmegaF1    float64  `xml:"omega_f1"`
	OmegaF2    float64  `xml:"omega_f2"`
	GAdsF1S1   float64  `xml:"G_ads_f1_s1"`
	GAdsF1S2   float64  `xml:"G_ads_f1_s2"`
	RhoF1      float64  `xml:"rho_f1"`
	RhoF2      float64  `xml:"rho_f2"`
	PressureBC bool     `xml:"pressure_bc"`
	RhoF1I     float64  `xml:"rho_f1_i"`
	RhoF2I     float64  `xml:"rho_f2_i"`
	NumPcSteps int      `xml:"num_pc_steps"`
	RhoD       float64  `xml:"rho_d"`
	MinRadius  float64  `xml:"min_radius"`
}

type outputXML struct {
	XMLName     xml.Name `xml:"output"`
	OutFolder   string   `xml:"out_folder"`
	SaveSim     bool     `xml:"save_sim"`
	SaveIt      int      `xml:"save_it"`
	Convergence float64  `xml:"convergence"`
	ItMax       int      `xml:"it_max"`
	ItConv      int      `xml:"it_conv"`
}

type relPermGeometryXML struct {
	XMLName  xml.Name    `xml:"geometry"`
	FileGeom string      `xml:"file_geom"`
	Size     xyz         `xml:"size"`
	Per      periodicXML `xml:"per"`
}

type folderXML struct {
	XMLName xml.Name `xml:"folder"`
	OutF    string   `xml:"out_f"`
}

type simulationsXML struct {
	XMLName xml.Name `xml:"simulations"`
	Num     int      `xml:"num"`
	Steps   []int    `xml:"steps>step"`
	Press   float64  `xml:"press"`
	Iter    int      `xml:"iter"`
	Conv    float64  `xml:"conv"`
	Tau     float64  `xml:"tau"`
	VTKOut  bool     `xml:"vtk_out"`
	RelPerm bool     `xml:"rel_perm"`
}

// CreateInputFile writes the XML input file of the given simulation kind
// (config.TwoPhase or config.RelPerm) into the input folder and returns its
// path. steps lists the pressure steps a rel perm run covers.
func CreateInputFile(in *config.Inputs, kind string, steps []int) (string, error) {
	var (
		name     string
		sections []any
	)
	switch kind {
	case config.TwoPhase:
		name, sections = TwoPhaseInputFile, twoPhaseSections(in)
	case config.RelPerm:
		if len(steps) == 0 {
			return "", fmt.Errorf("rel perm input needs at least one pressure step")
		}
		name, sections = RelPermInputFile, relPermSections(in, steps)
	default:
		return "", fmt.Errorf("no solver input for simulation type %q", kind)
	}

	path := in.InputPath(name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create input file: %w", err)
	}
	if _, err := f.WriteString(xml.Header); err != nil {
		_ = f.Close()
		return "", err
	}
	enc := xml.NewEncoder(f)
	enc.Indent("", "    ")
	for _, s := range sections {
		if err := enc.Encode(s); err != nil {
			_ = f.Close()
			return "", fmt.Errorf("encode %s: %w", name, err)
		}
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()
		return "", err
	}
	if _, err := f.WriteString("\n"); err != nil {
		_ = f.Close()
		return "", err
	}
	return path, f.Close()
}

func twoPhaseSections(in *config.Inputs) []any {
	shape := geometry.SolverShape(in)
	s := in.Simulation
	p := in.Domain.PeriodicBoundary

	geom := twoPhaseGeometryXML{
		FileGeom: in.RelInput(geometry.SolverGeometryName(in.Domain.GeomName)),
		Size:     xyz{X: shape[0], Y: shape[1], Z: shape[2]},
	}
	geom.Per.Fluid1 = periodicXML(p)
	geom.Per.Fluid2 = periodicXML(p)

	return []any{
		loadStateXML{Value: s.RestartSim},
		geom,
		initXML{
			FluidFromGeom: s.FluidInit == "geom",
			Fluid1:        boxXML(s.Fluid1Init),
			Fluid2:        boxXML(s.Fluid2Init),
		},
		fluidsXML{
			Gc:         s.FluidData.G,
			OmegaF1:    s.FluidData.OmegaF1,
			OmegaF2:    s.FluidData.OmegaF2,
			GAdsF1S1:   s.FluidData.GAdsF1S1,
			GAdsF1S2:   s.FluidData.GAdsF1S2,
			RhoF1:      s.RhoF1,
			RhoF2:      s.RhoF2,
			PressureBC: s.PressureBC,
			RhoF1I:     s.RhoF1Inlet,
			RhoF2I:     s.RhoF2Outlet,
			NumPcSteps: s.NumPressureSteps,
			RhoD:       s.RhoIncrement,
			MinRadius:  s.MinimumRadius,
		},
		outputXML{
			OutFolder:   in.RelOutput(""),
			SaveSim:     s.SaveSim,
			SaveIt:      s.SaveIter,
			Convergence: s.Convergence,
			ItMax:       s.MaxIterations,
			ItConv:      s.ConvergenceIter,
		},
	}
}

func relPermSections(in *config.Inputs, steps []int) []any {
	shape := geometry.SolverShape(in)
	r := in.RelPerm
	return []any{
		relPermGeometryXML{
			FileGeom: in.RelInput(in.Domain.GeomName + "_"),
			Size:     xyz{X: shape[0], Y: shape[1], Z: shape[2]},
			Per:      periodicXML(in.Domain.PeriodicBoundary),
		},
		folderXML{OutF: in.RelOutput(RelPermOutputDir)},
		simulationsXML{
			Num:     len(steps),
			Steps:   steps,
			Press:   r.DeltaP,
			Iter:    r.MaxIterations,
			Conv:    r.Convergence,
			Tau:     r.Tau,
			VTKOut:  r.SaveVTKs,
			RelPerm: true,
		},
	}
}
