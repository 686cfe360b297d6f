package geometry

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mplbm/micromodel/lbm/config"
	"github.com/mplbm/micromodel/lbm/internal/testutil"
)

// writeDensity writes a density field over shape where value(i, j, k) = f(i).
func writeDensity(t *testing.T, in *config.Inputs, step int, shape [3]int, f func(i int) float64) {
	t.Helper()
	var b strings.Builder
	for i := 0; i < shape[0]; i++ {
		for j := 0; j < shape[1]; j++ {
			for k := 0; k < shape[2]; k++ {
				if k > 0 {
					b.WriteByte(' ')
				}
				fmt.Fprintf(&b, "%g", f(i))
			}
			b.WriteByte('\n')
		}
	}
	testutil.WriteFile(t, DensityFieldPath(in, step), []byte(b.String()))
}

func TestCreateRelPermGeometries_SplitsPhasesPerStep(t *testing.T) {
	// GIVEN a 6x3x3 solver geometry with one solid voxel at (3, 1, 1)
	in := porousInputs(t)
	geom, err := CreateSolverGeometry(in)
	require.NoError(t, err)

	// AND two density fields: step 1 all wetting, step 2 nonwetting for x < 3
	writeDensity(t, in, 1, geom.Shape, func(int) float64 { return 0.5 })
	writeDensity(t, in, 2, geom.Shape, func(i int) float64 {
		if i < 3 {
			return 2.0
		}
		return 0.5
	})
	// AND an unrelated file matching the glob
	testutil.WriteFile(t, in.OutputPath("rho_f1_final.dat"), []byte("0"))

	rp, err := CreateRelPermGeometries(in)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, rp.Steps)
	assert.Equal(t, geom.Shape, rp.Shape)
	assert.Equal(t, "g_", rp.Prefix)
	require.Len(t, rp.Sw, 2)
	assert.InDelta(t, 1.0, rp.Sw[0], 1e-12)
	assert.InDelta(t, 26.0/53.0, rp.Sw[1], 1e-12)

	// THEN in the fluid 1 geometry of step 2 only the nonwetting region is open
	f1, err := ReadDat(in.InputPath(RelPermGeometryName("g", 1, 2)), geom.Shape)
	require.NoError(t, err)
	assert.Equal(t, Pore, f1.At(0, 0, 0))
	assert.Equal(t, SolidBoundary, f1.At(3, 0, 0))
	assert.Equal(t, SolidInterior, f1.At(5, 0, 0))

	// AND the fluid 2 geometry is its complement within the pore space
	f2, err := ReadDat(in.InputPath(RelPermGeometryName("g", 2, 2)), geom.Shape)
	require.NoError(t, err)
	assert.Equal(t, SolidInterior, f2.At(0, 0, 0))
	assert.Equal(t, Pore, f2.At(5, 0, 0))

	// AND step 1 fluid 1 geometry is entirely solid
	f1s1, err := ReadDat(in.InputPath(RelPermGeometryName("g", 1, 1)), geom.Shape)
	require.NoError(t, err)
	assert.Zero(t, f1s1.Porosity())
}

func TestCreateRelPermGeometries_NoDensityFields(t *testing.T) {
	in := porousInputs(t)
	_, err := CreateSolverGeometry(in)
	require.NoError(t, err)

	_, err = CreateRelPermGeometries(in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run the 2-phase simulation first")
}

func TestCreateRelPermGeometries_MissingSolverGeometry(t *testing.T) {
	in := porousInputs(t)
	_, err := CreateRelPermGeometries(in)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWettingSaturation_NoPores(t *testing.T) {
	l := Label([3]int{1, 1, 2}, []bool{true, true})
	assert.Zero(t, WettingSaturation(l, []bool{false, false}))
}
