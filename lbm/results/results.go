// Package results reduces the solvers' text output into the plain
// one-value-per-line data files the plots are drawn from.
//
// Two-phase solver output, in the output folder:
//
//	pressure_steps.txt        rows "step rho_f1_inlet rho_f2_outlet"
//	rho_f1_<step>.dat         fluid 1 density field of each step
//
// Permeability solver output, in <output folder>4relperm/:
//
//	relperm_output.txt        rows "step k_f1 k_f2 k_abs"
package results

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/mplbm/micromodel/lbm/config"
	"github.com/mplbm/micromodel/lbm/geometry"
)

// Solver output and data file names.
const (
	PressureStepsFile = "pressure_steps.txt"
	RelPermOutputFile = "4relperm/relperm_output.txt"

	SwFile   = "data_Sw.txt"
	PcFile   = "data_Pc.txt"
	KrwFile  = "data_krw.txt"
	KrnwFile = "data_krnw.txt"
)

// latticeCs2 is the squared lattice sound speed; pressure = rho * cs^2.
const latticeCs2 = 1.0 / 3.0

// LoadColumns reads whitespace-separated numeric rows. Blank lines and lines
// starting with '#' are skipped.
func LoadColumns(path string) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var rows [][]float64
	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		row := make([]float64, len(fields))
		for i, s := range fields {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", path, line, err)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}

// LoadColumn reads a single-column data file.
func LoadColumn(path string) ([]float64, error) {
	rows, err := LoadColumns(path)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(rows))
	for i, r := range rows {
		if len(r) != 1 {
			return nil, fmt.Errorf("%s: row %d has %d values, want 1", path, i+1, len(r))
		}
		out[i] = r[0]
	}
	return out, nil
}

// WriteColumn writes one value per line.
func WriteColumn(path string, values []float64) error {
	var b strings.Builder
	for _, v := range values {
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// columns splits rows of exactly n values into n columns.
func columns(path string, rows [][]float64, n int) ([][]float64, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: no data rows", path)
	}
	cols := make([][]float64, n)
	for i := range cols {
		cols[i] = make([]float64, len(rows))
	}
	for r, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("%s: row %d has %d values, want %d", path, r+1, len(row), n)
		}
		for c := range cols {
			cols[c][r] = row[c]
		}
	}
	return cols, nil
}

// CreatePressureDataFile writes data_Sw.txt and data_Pc.txt. Pc of a step is
// the inlet/outlet density difference times cs^2; Sw is the wetting fraction
// of the pore space in that step's density field.
func CreatePressureDataFile(in *config.Inputs) (sw, pc []float64, err error) {
	path := in.OutputPath(PressureStepsFile)
	rows, err := LoadColumns(path)
	if err != nil {
		return nil, nil, err
	}
	cols, err := columns(path, rows, 3)
	if err != nil {
		return nil, nil, err
	}
	steps, rhoIn, rhoOut := cols[0], cols[1], cols[2]

	pc = make([]float64, len(steps))
	floats.SubTo(pc, rhoIn, rhoOut)
	floats.Scale(latticeCs2, pc)

	geom, err := geometry.ReadDat(in.InputPath(geometry.SolverGeometryName(in.Domain.GeomName)), geometry.SolverShape(in))
	if err != nil {
		return nil, nil, err
	}
	sw = make([]float64, len(steps))
	for i, s := range steps {
		f1, err := geometry.PhaseMask(in, geom, int(s))
		if err != nil {
			return nil, nil, err
		}
		sw[i] = geometry.WettingSaturation(geom, f1)
	}

	if err := WriteColumn(in.OutputPath(SwFile), sw); err != nil {
		return nil, nil, err
	}
	if err := WriteColumn(in.OutputPath(PcFile), pc); err != nil {
		return nil, nil, err
	}
	logrus.Infof("Wrote %d capillary pressure points", len(steps))
	return sw, pc, nil
}

// CreateRelPermDataFile writes data_krw.txt and data_krnw.txt: each fluid's
// effective permeability over the absolute permeability. Fluid 1 is the
// nonwetting phase.
func CreateRelPermDataFile(in *config.Inputs) (krw, krnw []float64, err error) {
	path := in.OutputPath(RelPermOutputFile)
	rows, err := LoadColumns(path)
	if err != nil {
		return nil, nil, err
	}
	cols, err := columns(path, rows, 4)
	if err != nil {
		return nil, nil, err
	}
	kf1, kf2, kabs := cols[1], cols[2], cols[3]
	if floats.Min(kabs) <= 0 {
		return nil, nil, fmt.Errorf("%s: absolute permeability must be positive", path)
	}

	krnw = make([]float64, len(kabs))
	krw = make([]float64, len(kabs))
	floats.DivTo(krnw, kf1, kabs)
	floats.DivTo(krw, kf2, kabs)

	if err := WriteColumn(in.OutputPath(KrwFile), krw); err != nil {
		return nil, nil, err
	}
	if err := WriteColumn(in.OutputPath(KrnwFile), krnw); err != nil {
		return nil, nil, err
	}
	logrus.Infof("Wrote %d relative permeability points", len(kabs))
	return krw, krnw, nil
}

// Curves holds the post-processed capillary pressure and relative
// permeability data, indexed by pressure step.
type Curves struct {
	Sw   []float64
	Pc   []float64
	Krw  []float64
	Krnw []float64
}

// LoadCurves reads the four data files from the output folder.
func LoadCurves(in *config.Inputs) (*Curves, error) {
	var c Curves
	for _, f := range []struct {
		name string
		dst  *[]float64
	}{
		{SwFile, &c.Sw}, {PcFile, &c.Pc}, {KrwFile, &c.Krw}, {KrnwFile, &c.Krnw},
	} {
		v, err := LoadColumn(in.OutputPath(f.name))
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}
	if len(c.Pc) != len(c.Sw) || len(c.Krw) != len(c.Sw) || len(c.Krnw) != len(c.Sw) {
		return nil, fmt.Errorf("data files disagree in length: Sw=%d Pc=%d krw=%d krnw=%d",
			len(c.Sw), len(c.Pc), len(c.Krw), len(c.Krnw))
	}
	return &c, nil
}

// Process runs both reductions and returns the resulting curves.
func Process(in *config.Inputs) (*Curves, error) {
	sw, pc, err := CreatePressureDataFile(in)
	if err != nil {
		return nil, fmt.Errorf("pressure data: %w", err)
	}
	krw, krnw, err := CreateRelPermDataFile(in)
	if err != nil {
		return nil, fmt.Errorf("rel perm data: %w", err)
	}
	if len(krw) != len(sw) {
		return nil, fmt.Errorf("%d rel perm points for %d pressure steps", len(krw), len(sw))
	}
	return &Curves{Sw: sw, Pc: pc, Krw: krw, Krnw: krnw}, nil
}
