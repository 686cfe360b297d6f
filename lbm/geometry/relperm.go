package geometry

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mplbm/micromodel/lbm/config"
)

// DensityFieldPrefix names the per-step fluid 1 density fields written by the
// two-phase solver: <output folder>rho_f1_<step>.dat.
const DensityFieldPrefix = "rho_f1_"

// RelPermGeometries describes the single-phase geometries built from a
// two-phase result. For step s the solver reads
// <Prefix>f1_for_kr_<s>.dat and <Prefix>f2_for_kr_<s>.dat.
type RelPermGeometries struct {
	Steps  []int
	Shape  [3]int
	Prefix string    // geom name prefix, e.g. "rock_micromodel_"
	Sw     []float64 // wetting saturation per step
}

// RelPermGeometryName is the file name of the single-phase geometry of fluid
// (1 or 2) at a pressure step.
func RelPermGeometryName(geomName string, fluid, step int) string {
	return fmt.Sprintf("%s_f%d_for_kr_%d.dat", geomName, fluid, step)
}

// DensitySteps lists the pressure steps with a density field in the output
// folder, in ascending order.
func DensitySteps(in *config.Inputs) ([]int, error) {
	matches, err := filepath.Glob(in.OutputPath(DensityFieldPrefix + "*.dat"))
	if err != nil {
		return nil, err
	}
	steps := make([]int, 0, len(matches))
	for _, m := range matches {
		base := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(m), DensityFieldPrefix), ".dat")
		step, err := strconv.Atoi(base)
		if err != nil {
			logrus.Debugf("ignoring %s: not a density step file", m)
			continue
		}
		steps = append(steps, step)
	}
	sort.Ints(steps)
	return steps, nil
}

// DensityFieldPath is the density field of a pressure step.
func DensityFieldPath(in *config.Inputs, step int) string {
	return in.OutputPath(fmt.Sprintf("%s%d.dat", DensityFieldPrefix, step))
}

// PhaseMask reads the density field of a step and marks the pore voxels held
// by fluid 1 (nonwetting), i.e. with density above the configured threshold.
func PhaseMask(in *config.Inputs, geom *Labels, step int) ([]bool, error) {
	rho, err := readFields(DensityFieldPath(in, step), geom.Shape)
	if err != nil {
		return nil, err
	}
	threshold := in.RelPerm.NonwettingThreshold
	f1 := make([]bool, len(rho))
	for n, v := range rho {
		f1[n] = geom.IsPore(n) && v > threshold
	}
	return f1, nil
}

// WettingSaturation is the fraction of pore voxels not held by fluid 1.
func WettingSaturation(geom *Labels, f1 []bool) float64 {
	pores, wet := 0, 0
	for n := range geom.Data {
		if !geom.IsPore(n) {
			continue
		}
		pores++
		if !f1[n] {
			wet++
		}
	}
	if pores == 0 {
		return 0
	}
	return float64(wet) / float64(pores)
}

// CreateRelPermGeometries builds, for every two-phase pressure step, one
// geometry per fluid in which the other fluid is turned into solid. The
// single-phase permeability solver then measures each fluid's effective
// permeability.
func CreateRelPermGeometries(in *config.Inputs) (*RelPermGeometries, error) {
	shape := SolverShape(in)
	geom, err := ReadDat(in.InputPath(SolverGeometryName(in.Domain.GeomName)), shape)
	if err != nil {
		return nil, fmt.Errorf("rel perm: %w", err)
	}
	steps, err := DensitySteps(in)
	if err != nil {
		return nil, err
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("rel perm: no %s*.dat density fields in %s; run the 2-phase simulation first",
			DensityFieldPrefix, in.OutputPath(""))
	}

	out := &RelPermGeometries{Steps: steps, Shape: shape, Prefix: in.Domain.GeomName + "_"}
	for _, step := range steps {
		f1, err := PhaseMask(in, geom, step)
		if err != nil {
			return nil, err
		}
		solidF1 := make([]bool, len(f1))
		solidF2 := make([]bool, len(f1))
		for n := range f1 {
			pore := geom.IsPore(n)
			solidF1[n] = !pore || !f1[n]
			solidF2[n] = !pore || f1[n]
		}
		for fluid, solid := range map[int][]bool{1: solidF1, 2: solidF2} {
			path := in.InputPath(RelPermGeometryName(in.Domain.GeomName, fluid, step))
			if err := Label(shape, solid).WriteDat(path); err != nil {
				return nil, err
			}
		}
		sw := WettingSaturation(geom, f1)
		out.Sw = append(out.Sw, sw)
		logrus.Debugf("rel perm geometry step %d: Sw=%.4f", step, sw)
	}
	logrus.Infof("Created %d pairs of rel perm geometries", len(steps))
	return out, nil
}
