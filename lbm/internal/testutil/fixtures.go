// Package testutil provides shared test fixtures for the lbm packages:
// a sample input file, synthetic voxel volumes, and float assertions.
// It imports no lbm package so every package's internal tests can use it.
package testutil

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// SampleInputsYAML is a complete two-phase input file for an 8x6x5 int8
// geometry. The simulation directory is filled in by WriteInputs.
const SampleInputsYAML = `
input output:
  simulation directory: %s
  input folder: input/
  output folder: output/
geometry:
  file name: rock.raw
  data type: int8
  geometry size:
    Nx: 8
    Ny: 6
    Nz: 5
domain:
  geom name: rock
  domain size:
    nx: 4
    ny: 4
    nz: 3
  periodic boundary:
    x: false
    y: false
    z: false
  inlet and outlet layers: 2
  add mesh: false
  swap pores and grains: false
simulation type: 2-phase
simulation:
  num procs: 4
  restart sim: false
  fluid init: drainage
  fluid 1 init:
    x1: 1
    x2: 2
    y1: 1
    y2: 4
    z1: 1
    z2: 3
  fluid 2 init:
    x1: 3
    x2: 8
    y1: 1
    y2: 4
    z1: 1
    z2: 3
  fluid data:
    G: 0.9
    omega_f1: 1
    omega_f2: 1
    G_ads_f1_s1: -0.4
    G_ads_f1_s2: 0
  rho_f1: 2
  rho_f2: 2
  pressure bc: true
  rho_f1_i: 2.05
  rho_f2_i: 1.95
  num pressure steps: 3
  rho increment: 0.05
  minimum radius: 3
  convergence: 0.0001
  convergence iter: 1000
  max iterations: 100000
  save sim: true
  save iter: 2000
rel perm:
  convergence: 0.0001
  max iterations: 50000
  delta P: 0.00005
  tau: 1
  save vtks: false
`

// WriteInputs writes SampleInputsYAML into dir with dir as the simulation
// directory, creates the input and output folders, and returns the file path.
func WriteInputs(t *testing.T, dir string) string {
	t.Helper()
	for _, sub := range []string{"input", "output"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	path := filepath.Join(dir, "input.yml")
	body := fmt.Sprintf(SampleInputsYAML, quote(dir))
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// RampVolume returns an int8 volume of shape (nx, ny, nz) in C order where
// voxel (i, j, k) holds (i*100 + j*10 + k) mod 128, so every voxel of a
// small volume is distinguishable.
func RampVolume(nx, ny, nz int) []byte {
	data := make([]byte, nx*ny*nz)
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			for k := 0; k < nz; k++ {
				data[(i*ny+j)*nz+k] = byte((i*100 + j*10 + k) % 128)
			}
		}
	}
	return data
}

// RampValue is the value RampVolume stores at (i, j, k).
func RampValue(i, j, k int) byte {
	return byte((i*100 + j*10 + k) % 128)
}

// WriteFile writes data to path, creating parent directories.
func WriteFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
