package geometry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mplbm/micromodel/lbm/config"
)

// porousInputs configures a 3x3x4 uint8 geometry, all pore except raw voxel
// (1, 1, 2), with a 4x3x3 domain and one inlet/outlet layer.
func porousInputs(t *testing.T) *config.Inputs {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "input"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "output"), 0o755))
	in := &config.Inputs{
		InputOutput: config.InputOutput{SimulationDirectory: dir, InputFolder: "input/", OutputFolder: "output/"},
		Geometry: config.Geometry{
			FileName: "g.raw", DataType: "uint8",
			GeometrySize: config.Size3{Nx: 3, Ny: 3, Nz: 4},
		},
		Domain: config.Domain{
			GeomName:          "g",
			DomainSize:        config.DomainSize{Nx: 4, Ny: 3, Nz: 3},
			InletOutletLayers: 1,
		},
		SimulationType: config.TwoPhase,
		RelPerm:        config.RelPermSim{NonwettingThreshold: 1},
	}
	v := NewVolume([3]int{3, 3, 4}, Uint8)
	v.Set(1, 1, 2, 1)
	require.NoError(t, v.WriteRaw(in.GeometryPath()))
	return in
}

func TestLabel_BoundaryAndInterior(t *testing.T) {
	// GIVEN a 3x3x3 solid block with a pore at the centre
	shape := [3]int{3, 3, 3}
	solid := make([]bool, 27)
	for n := range solid {
		solid[n] = true
	}
	solid[13] = false

	l := Label(shape, solid)

	// THEN the centre is pore, its 6 face neighbours boundary, the rest interior
	assert.Equal(t, Pore, l.At(1, 1, 1))
	for _, nb := range [][3]int{{0, 1, 1}, {2, 1, 1}, {1, 0, 1}, {1, 2, 1}, {1, 1, 0}, {1, 1, 2}} {
		assert.Equal(t, SolidBoundary, l.At(nb[0], nb[1], nb[2]), "%v", nb)
	}
	assert.Equal(t, SolidInterior, l.At(0, 0, 0))
	assert.Equal(t, SolidInterior, l.At(2, 2, 1))
}

func TestLabel_OutsideGridIsNotPore(t *testing.T) {
	solid := []bool{true, true, true, true, true, true, true, true}
	l := Label([3]int{2, 2, 2}, solid)
	for n := range l.Data {
		assert.Equal(t, SolidInterior, l.Data[n])
	}
}

func TestCreateSolverGeometry_PadsAndLabels(t *testing.T) {
	in := porousInputs(t)

	geom, err := CreateSolverGeometry(in)
	require.NoError(t, err)

	// THEN the domain is padded by one layer on each end of the flow axis
	assert.Equal(t, [3]int{6, 3, 3}, geom.Shape)
	assert.Equal(t, SolverShape(in), geom.Shape)

	// AND raw voxel (1, 1, 2) lands at x=2+1 after reordering and padding
	assert.Equal(t, SolidBoundary, geom.Labels.At(3, 1, 1))
	solids := 0
	for _, v := range geom.Labels.Data {
		if v != Pore {
			solids++
		}
	}
	assert.Equal(t, 1, solids)
	assert.InDelta(t, 53.0/54.0, geom.Labels.Porosity(), 1e-12)

	// AND the file is one line per (x, y) row
	data, err := os.ReadFile(geom.Path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 6*3)
	assert.Equal(t, "0 0 0", lines[0])
	assert.Equal(t, "0 1 0", lines[3*3+1])
}

func TestCreateSolverGeometry_SwapAndMesh(t *testing.T) {
	in := porousInputs(t)
	in.Domain.InletOutletLayers = 0
	in.Domain.AddMesh = true
	in.Domain.SwapPoresAndGrains = true

	geom, err := CreateSolverGeometry(in)
	require.NoError(t, err)
	assert.Equal(t, [3]int{4, 5, 5}, geom.Shape)

	// swapped: the single raw solid becomes the only pore inside the frame
	assert.Equal(t, Pore, geom.Labels.At(2, 2, 2))
	assert.Equal(t, SolidBoundary, geom.Labels.At(1, 2, 2))
	assert.Equal(t, SolidInterior, geom.Labels.At(0, 0, 0), "mesh corner")
	assert.Equal(t, SolidInterior, geom.Labels.At(0, 2, 2))
}

func TestReadDat_RoundTrip(t *testing.T) {
	in := porousInputs(t)
	geom, err := CreateSolverGeometry(in)
	require.NoError(t, err)

	back, err := ReadDat(geom.Path, geom.Shape)
	require.NoError(t, err)
	assert.Equal(t, geom.Labels.Data, back.Data)

	_, err = ReadDat(geom.Path, [3]int{6, 3, 4})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestReadDat_RejectsUnknownLabel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.dat")
	require.NoError(t, os.WriteFile(path, []byte("0 1\n2 7\n"), 0o644))
	_, err := ReadDat(path, [3]int{1, 2, 2})
	assert.Error(t, err)
}

func TestCreateSolverGeometry_DomainLargerThanGeometry(t *testing.T) {
	in := porousInputs(t)
	in.Domain.DomainSize.Nx = 5
	_, err := CreateSolverGeometry(in)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}
