// Package geometry reads, transforms and writes voxel geometries: the raw
// binary rock volumes, the extruded micromodels carved from them, and the
// labelled text geometries the lattice-Boltzmann solvers consume.
package geometry

import (
	"errors"
	"fmt"
	"os"
)

var (
	// ErrShapeMismatch is returned when a raw file's size disagrees with the
	// declared shape and data type.
	ErrShapeMismatch = errors.New("array shape does not match declared dimensions")
	// ErrOutOfBounds is returned when a slice or crop window leaves the volume.
	ErrOutOfBounds = errors.New("window out of bounds")
)

// Volume is a 3D voxel grid stored in C order (last axis fastest), exactly
// as it is laid out in a raw file.
type Volume struct {
	Shape [3]int
	DType DType
	Data  []byte
}

// NewVolume allocates a zeroed volume.
func NewVolume(shape [3]int, dtype DType) *Volume {
	return &Volume{
		Shape: shape,
		DType: dtype,
		Data:  make([]byte, shape[0]*shape[1]*shape[2]*dtype.Size()),
	}
}

// ReadRaw reads a raw binary volume. The file size must equal the product of
// shape times the element size.
func ReadRaw(path string, dtype DType, shape [3]int) (*Volume, error) {
	if dtype.Size() == 0 {
		return nil, fmt.Errorf("read %s: %w", path, ErrUnknownDType)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read raw geometry: %w", err)
	}
	want := shape[0] * shape[1] * shape[2] * dtype.Size()
	if len(data) != want {
		return nil, fmt.Errorf("%s: %w: %d bytes, want %v x %s = %d bytes",
			path, ErrShapeMismatch, len(data), shape, dtype, want)
	}
	return &Volume{Shape: shape, DType: dtype, Data: data}, nil
}

// WriteRaw writes the volume in the same raw layout ReadRaw reads.
func (v *Volume) WriteRaw(path string) error {
	if err := os.WriteFile(path, v.Data, 0o644); err != nil {
		return fmt.Errorf("write raw geometry: %w", err)
	}
	return nil
}

// Len is the number of voxels.
func (v *Volume) Len() int {
	return v.Shape[0] * v.Shape[1] * v.Shape[2]
}

func (v *Volume) offset(i, j, k int) int {
	return ((i*v.Shape[1]+j)*v.Shape[2] + k) * v.DType.Size()
}

// At returns voxel (i, j, k) as a float64.
func (v *Volume) At(i, j, k int) float64 {
	off := v.offset(i, j, k)
	return v.DType.Decode(v.Data[off : off+v.DType.Size()])
}

// Set stores val at voxel (i, j, k).
func (v *Volume) Set(i, j, k int, val float64) {
	off := v.offset(i, j, k)
	v.DType.Encode(v.Data[off:off+v.DType.Size()], val)
}

// Slice returns the 2D plane v[index, rowOffset:rowOffset+rows, colOffset:colOffset+cols].
func (v *Volume) Slice(index, rowOffset, rows, colOffset, cols int) (*Image, error) {
	if index < 0 || index >= v.Shape[0] ||
		rowOffset < 0 || rows <= 0 || rowOffset+rows > v.Shape[1] ||
		colOffset < 0 || cols <= 0 || colOffset+cols > v.Shape[2] {
		return nil, fmt.Errorf("%w: slice [%d, %d:%d, %d:%d] of volume %v",
			ErrOutOfBounds, index, rowOffset, rowOffset+rows, colOffset, colOffset+cols, v.Shape)
	}
	es := v.DType.Size()
	img := NewImage(rows, cols, v.DType)
	for r := 0; r < rows; r++ {
		src := v.offset(index, rowOffset+r, colOffset)
		copy(img.Data[r*cols*es:(r+1)*cols*es], v.Data[src:src+cols*es])
	}
	return img, nil
}

// Crop returns v[0:nx, 0:ny, 0:nz].
func (v *Volume) Crop(nx, ny, nz int) (*Volume, error) {
	if nx <= 0 || ny <= 0 || nz <= 0 || nx > v.Shape[0] || ny > v.Shape[1] || nz > v.Shape[2] {
		return nil, fmt.Errorf("%w: crop %dx%dx%d of volume %v", ErrOutOfBounds, nx, ny, nz, v.Shape)
	}
	es := v.DType.Size()
	out := NewVolume([3]int{nx, ny, nz}, v.DType)
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			src := v.offset(i, j, 0)
			dst := out.offset(i, j, 0)
			copy(out.Data[dst:dst+nz*es], v.Data[src:src+nz*es])
		}
	}
	return out, nil
}

// Transpose permutes the axes: output axis a is input axis perm[a].
func (v *Volume) Transpose(perm [3]int) (*Volume, error) {
	seen := [3]bool{}
	for _, p := range perm {
		if p < 0 || p > 2 || seen[p] {
			return nil, fmt.Errorf("invalid axis permutation %v", perm)
		}
		seen[p] = true
	}
	shape := [3]int{v.Shape[perm[0]], v.Shape[perm[1]], v.Shape[perm[2]]}
	out := NewVolume(shape, v.DType)
	es := v.DType.Size()
	var idx [3]int
	for a := 0; a < shape[0]; a++ {
		for b := 0; b < shape[1]; b++ {
			for c := 0; c < shape[2]; c++ {
				idx[perm[0]], idx[perm[1]], idx[perm[2]] = a, b, c
				src := v.offset(idx[0], idx[1], idx[2])
				dst := out.offset(a, b, c)
				copy(out.Data[dst:dst+es], v.Data[src:src+es])
			}
		}
	}
	return out, nil
}

// Image is a 2D plane in row-major order.
type Image struct {
	Rows  int
	Cols  int
	DType DType
	Data  []byte
}

// NewImage allocates a zeroed image.
func NewImage(rows, cols int, dtype DType) *Image {
	return &Image{Rows: rows, Cols: cols, DType: dtype, Data: make([]byte, rows*cols*dtype.Size())}
}

// At returns pixel (r, c) as a float64.
func (m *Image) At(r, c int) float64 {
	es := m.DType.Size()
	off := (r*m.Cols + c) * es
	return m.DType.Decode(m.Data[off : off+es])
}
