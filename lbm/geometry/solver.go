package geometry

import (
	"bufio"
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/mplbm/micromodel/lbm/config"
)

// Labels of a solver geometry.
const (
	Pore          uint8 = 0
	SolidBoundary uint8 = 1 // solid voxel with a pore face-neighbour
	SolidInterior uint8 = 2
)

// Labels is a labelled solver geometry in C order.
type Labels struct {
	Shape [3]int
	Data  []uint8
}

func newLabels(shape [3]int) *Labels {
	return &Labels{Shape: shape, Data: make([]uint8, shape[0]*shape[1]*shape[2])}
}

func (l *Labels) index(i, j, k int) int {
	return (i*l.Shape[1]+j)*l.Shape[2] + k
}

// At returns the label at (i, j, k).
func (l *Labels) At(i, j, k int) uint8 {
	return l.Data[l.index(i, j, k)]
}

// IsPore reports whether voxel n (flat index) is open to fluid.
func (l *Labels) IsPore(n int) bool {
	return l.Data[n] == Pore
}

// SolverGeometry is a labelled geometry written for the solver.
type SolverGeometry struct {
	Path   string
	Shape  [3]int
	Labels *Labels
}

// SolverShape is the shape of the geometry CreateSolverGeometry writes for in:
// the domain plus inlet/outlet layers on the flow axis and, with a mesh, a
// one-voxel frame on the other two.
func SolverShape(in *config.Inputs) [3]int {
	d := in.Domain.DomainSize
	shape := [3]int{d.Nx + 2*in.Domain.InletOutletLayers, d.Ny, d.Nz}
	if in.Domain.AddMesh {
		shape[1] += 2
		shape[2] += 2
	}
	return shape
}

// SolverGeometryName is the file name of the solver geometry for a geom name.
func SolverGeometryName(geomName string) string {
	return geomName + ".dat"
}

// CreateSolverGeometry converts the configured raw geometry into the solver's
// labelled text format. The raw volume (Nx, Ny, Nz) is reordered to
// (Nz, Ny, Nx) so the solver's x axis is the raw file's fastest axis, cropped
// to the domain size, optionally pore/grain swapped, padded with pore layers
// at the inlet and outlet, optionally framed by a solid mesh, and labelled.
// Any non-zero raw voxel is solid.
func CreateSolverGeometry(in *config.Inputs) (*SolverGeometry, error) {
	dtype, err := ParseDType(in.Geometry.DataType)
	if err != nil {
		return nil, err
	}
	g := in.Geometry.GeometrySize
	d := in.Domain.DomainSize

	rock, err := ReadRaw(in.GeometryPath(), dtype, [3]int{g.Nx, g.Ny, g.Nz})
	if err != nil {
		return nil, err
	}
	rock, err = rock.Transpose([3]int{2, 1, 0})
	if err != nil {
		return nil, err
	}
	rock, err = rock.Crop(d.Nx, d.Ny, d.Nz)
	if err != nil {
		return nil, fmt.Errorf("domain crop: %w", err)
	}

	shape := SolverShape(in)
	layers := in.Domain.InletOutletLayers
	mesh := 0
	if in.Domain.AddMesh {
		mesh = 1
	}
	solid := make([]bool, shape[0]*shape[1]*shape[2])
	at := func(i, j, k int) int { return (i*shape[1]+j)*shape[2] + k }
	if mesh == 1 {
		for i := 0; i < shape[0]; i++ {
			for j := 0; j < shape[1]; j++ {
				for k := 0; k < shape[2]; k++ {
					if j == 0 || k == 0 || j == shape[1]-1 || k == shape[2]-1 {
						solid[at(i, j, k)] = true
					}
				}
			}
		}
	}
	for i := 0; i < d.Nx; i++ {
		for j := 0; j < d.Ny; j++ {
			for k := 0; k < d.Nz; k++ {
				s := rock.At(i, j, k) != 0
				if in.Domain.SwapPoresAndGrains {
					s = !s
				}
				solid[at(i+layers, j+mesh, k+mesh)] = s
			}
		}
	}

	labels := Label(shape, solid)
	path := in.InputPath(SolverGeometryName(in.Domain.GeomName))
	if err := labels.WriteDat(path); err != nil {
		return nil, err
	}
	logrus.Infof("Wrote solver geometry %s with shape %v (porosity %.3f)", path, shape, labels.Porosity())
	return &SolverGeometry{Path: path, Shape: shape, Labels: labels}, nil
}

// Label classifies a solid mask: solid voxels with a pore face-neighbour are
// SolidBoundary, other solid voxels SolidInterior. Neighbours outside the
// grid do not count as pore.
func Label(shape [3]int, solid []bool) *Labels {
	l := newLabels(shape)
	for i := 0; i < shape[0]; i++ {
		for j := 0; j < shape[1]; j++ {
			for k := 0; k < shape[2]; k++ {
				n := l.index(i, j, k)
				if !solid[n] {
					l.Data[n] = Pore
					continue
				}
				l.Data[n] = SolidInterior
				for _, nb := range [6][3]int{
					{i - 1, j, k}, {i + 1, j, k},
					{i, j - 1, k}, {i, j + 1, k},
					{i, j, k - 1}, {i, j, k + 1},
				} {
					if nb[0] < 0 || nb[1] < 0 || nb[2] < 0 ||
						nb[0] >= shape[0] || nb[1] >= shape[1] || nb[2] >= shape[2] {
						continue
					}
					if !solid[l.index(nb[0], nb[1], nb[2])] {
						l.Data[n] = SolidBoundary
						break
					}
				}
			}
		}
	}
	return l
}

// Porosity is the pore fraction of the geometry.
func (l *Labels) Porosity() float64 {
	if len(l.Data) == 0 {
		return 0
	}
	pores := 0
	for n := range l.Data {
		if l.IsPore(n) {
			pores++
		}
	}
	return float64(pores) / float64(len(l.Data))
}

// WriteDat writes the labels as whitespace text, one line per (i, j) row
// holding the values along the last axis.
func (l *Labels) WriteDat(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create solver geometry: %w", err)
	}
	w := bufio.NewWriter(f)
	for i := 0; i < l.Shape[0]; i++ {
		for j := 0; j < l.Shape[1]; j++ {
			row := l.Data[l.index(i, j, 0) : l.index(i, j, 0)+l.Shape[2]]
			for k, v := range row {
				if k > 0 {
					_ = w.WriteByte(' ')
				}
				_ = w.WriteByte('0' + v)
			}
			_ = w.WriteByte('\n')
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("write solver geometry: %w", err)
	}
	return f.Close()
}

// ReadDat reads a solver geometry written by WriteDat.
func ReadDat(path string, shape [3]int) (*Labels, error) {
	values, err := readFields(path, shape)
	if err != nil {
		return nil, err
	}
	l := newLabels(shape)
	for n, v := range values {
		if v != float64(Pore) && v != float64(SolidBoundary) && v != float64(SolidInterior) {
			return nil, fmt.Errorf("%s: invalid label %v at voxel %d", path, v, n)
		}
		l.Data[n] = uint8(v)
	}
	return l, nil
}

// readFields reads a whitespace-separated field of exactly prod(shape) numbers.
func readFields(path string, shape [3]int) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open field: %w", err)
	}
	defer func() { _ = f.Close() }()

	want := shape[0] * shape[1] * shape[2]
	values := make([]float64, 0, want)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	sc.Split(bufio.ScanWords)
	for sc.Scan() {
		v, err := strconv.ParseFloat(sc.Text(), 64)
		if err != nil {
			return nil, fmt.Errorf("%s: value %d: %w", path, len(values), err)
		}
		values = append(values, v)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read field %s: %w", path, err)
	}
	if len(values) != want {
		return nil, fmt.Errorf("%s: %w: %d values, want %v = %d", path, ErrShapeMismatch, len(values), shape, want)
	}
	return values, nil
}
