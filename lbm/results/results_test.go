package results

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mplbm/micromodel/lbm/config"
	"github.com/mplbm/micromodel/lbm/geometry"
	"github.com/mplbm/micromodel/lbm/internal/testutil"
)

// twoPhaseOutput prepares a simulation directory as left by the two-phase
// solver: the solver geometry plus one density field per pressure step, where
// density(step, n, total) gives the value of flat voxel n out of total.
func twoPhaseOutput(t *testing.T, density func(step, n, total int) float64) (*config.Inputs, *geometry.Labels) {
	t.Helper()
	in, err := config.Load(testutil.WriteInputs(t, t.TempDir()))
	require.NoError(t, err)
	testutil.WriteFile(t, in.GeometryPath(), testutil.RampVolume(8, 6, 5))
	sg, err := geometry.CreateSolverGeometry(in)
	require.NoError(t, err)

	testutil.WriteFile(t, in.OutputPath(PressureStepsFile), []byte(
		"# step rho_f1_inlet rho_f2_outlet\n"+
			"1 2.05 1.95\n"+
			"2 2.10 1.95\n"+
			"\n"+
			"3 2.15 1.95\n"))

	shape := sg.Shape
	total := shape[0] * shape[1] * shape[2]
	for step := 1; step <= 3; step++ {
		var b strings.Builder
		for n := 0; n < total; n++ {
			b.WriteString(strconv.FormatFloat(density(step, n, total), 'f', 3, 64))
			if (n+1)%shape[2] == 0 {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		}
		testutil.WriteFile(t, geometry.DensityFieldPath(in, step), []byte(b.String()))
	}
	return in, sg.Labels
}

func TestCreatePressureDataFile_PcAndSw(t *testing.T) {
	// GIVEN step 1 fully wetting, step 3 fully nonwetting, and step 2 with
	// fluid 1 in the first half of the grid
	in, labels := twoPhaseOutput(t, func(step, n, total int) float64 {
		switch {
		case step == 1:
			return 0.5
		case step == 2 && n >= total/2:
			return 0.2
		default:
			return 1.8
		}
	})
	half := len(labels.Data) / 2

	sw, pc, err := CreatePressureDataFile(in)
	require.NoError(t, err)

	// THEN Pc is the density difference over three
	require.Len(t, pc, 3)
	testutil.AssertFloat64Equal(t, "pc[0]", 0.1/3, pc[0], 1e-9)
	testutil.AssertFloat64Equal(t, "pc[1]", 0.15/3, pc[1], 1e-9)
	testutil.AssertFloat64Equal(t, "pc[2]", 0.2/3, pc[2], 1e-9)

	// AND Sw is the wetting fraction of the pore space
	pores, wetPores := 0, 0
	for n := range labels.Data {
		if labels.IsPore(n) {
			pores++
			if n >= half {
				wetPores++
			}
		}
	}
	require.NotZero(t, pores)
	assert.Equal(t, 1.0, sw[0])
	testutil.AssertFloat64Equal(t, "sw[1]", float64(wetPores)/float64(pores), sw[1], 1e-12)
	assert.Equal(t, 0.0, sw[2])

	// AND both data files hold one value per step
	gotSw, err := LoadColumn(in.OutputPath(SwFile))
	require.NoError(t, err)
	assert.Equal(t, sw, gotSw)
	gotPc, err := LoadColumn(in.OutputPath(PcFile))
	require.NoError(t, err)
	assert.Equal(t, pc, gotPc)
}

func TestCreatePressureDataFile_MissingDensityField(t *testing.T) {
	in, _ := twoPhaseOutput(t, func(int, int, int) float64 { return 0.5 })
	require.NoError(t, os.Remove(geometry.DensityFieldPath(in, 2)))

	_, _, err := CreatePressureDataFile(in)
	assert.Error(t, err)
	assert.NoFileExists(t, in.OutputPath(SwFile))
}

func TestCreatePressureDataFile_MalformedRow(t *testing.T) {
	in, _ := twoPhaseOutput(t, func(int, int, int) float64 { return 0.5 })
	testutil.WriteFile(t, in.OutputPath(PressureStepsFile), []byte("1 2.05\n"))

	_, _, err := CreatePressureDataFile(in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want 3")
}

func TestCreateRelPermDataFile_NormalisesByAbsolutePermeability(t *testing.T) {
	in, err := config.Load(testutil.WriteInputs(t, t.TempDir()))
	require.NoError(t, err)
	testutil.WriteFile(t, in.OutputPath(RelPermOutputFile), []byte(
		"1 0.0 8.0 10.0\n"+
			"2 2.5 5.0 10.0\n"+
			"3 6.0 1.0 10.0\n"))

	krw, krnw, err := CreateRelPermDataFile(in)
	require.NoError(t, err)

	assert.Equal(t, []float64{0.8, 0.5, 0.1}, krw)
	assert.Equal(t, []float64{0, 0.25, 0.6}, krnw)

	got, err := LoadColumn(in.OutputPath(KrnwFile))
	require.NoError(t, err)
	assert.Equal(t, krnw, got)
}

func TestCreateRelPermDataFile_ZeroAbsolutePermeability(t *testing.T) {
	in, err := config.Load(testutil.WriteInputs(t, t.TempDir()))
	require.NoError(t, err)
	testutil.WriteFile(t, in.OutputPath(RelPermOutputFile), []byte("1 0.5 0.5 0\n"))

	_, _, err = CreateRelPermDataFile(in)
	assert.ErrorContains(t, err, "absolute permeability")
}

func TestLoadColumn_SkipsCommentsAndRejectsWideRows(t *testing.T) {
	dir := t.TempDir()
	ok := filepath.Join(dir, "ok.txt")
	testutil.WriteFile(t, ok, []byte("# header\n1.5\n\n  2e-3  \n"))
	got, err := LoadColumn(ok)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 0.002}, got)

	wide := filepath.Join(dir, "wide.txt")
	testutil.WriteFile(t, wide, []byte("1 2\n"))
	_, err = LoadColumn(wide)
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.txt")
	testutil.WriteFile(t, bad, []byte("1\nabc\n"))
	_, err = LoadColumn(bad)
	assert.ErrorContains(t, err, "bad.txt:2")
}

func TestLoadCurves_LengthMismatch(t *testing.T) {
	in, err := config.Load(testutil.WriteInputs(t, t.TempDir()))
	require.NoError(t, err)
	require.NoError(t, WriteColumn(in.OutputPath(SwFile), []float64{1, 0.5}))
	require.NoError(t, WriteColumn(in.OutputPath(PcFile), []float64{0.01, 0.02}))
	require.NoError(t, WriteColumn(in.OutputPath(KrwFile), []float64{1, 0.4}))
	require.NoError(t, WriteColumn(in.OutputPath(KrnwFile), []float64{0}))

	_, err = LoadCurves(in)
	assert.ErrorContains(t, err, "disagree in length")

	require.NoError(t, WriteColumn(in.OutputPath(KrnwFile), []float64{0, 0.3}))
	c, err := LoadCurves(in)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.01, 0.02}, c.Pc)
}

func TestProcess_BothReductions(t *testing.T) {
	in, _ := twoPhaseOutput(t, func(int, int, int) float64 { return 0.5 })
	testutil.WriteFile(t, in.OutputPath(RelPermOutputFile), []byte(
		"1 0 4 4\n2 1 2 4\n3 2 1 4\n"))

	c, err := Process(in)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 1}, c.Sw)
	assert.Equal(t, []float64{1, 0.5, 0.25}, c.Krw)

	loaded, err := LoadCurves(in)
	require.NoError(t, err)
	assert.Equal(t, c, loaded)
}
