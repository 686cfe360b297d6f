package geometry

import "fmt"

// ScaledDim is the size of a dimension of length n rescaled by r, truncated
// toward zero.
func ScaledDim(n int, r float64) int {
	return int(float64(n) * r)
}

// Rescale resizes img by factor r with nearest-neighbour interpolation and no
// anti-aliasing, so a binary image stays binary and voxel values are never
// blended. Output pixel i samples input pixel floor((i+0.5)*in/out).
func Rescale(img *Image, r float64) (*Image, error) {
	if r <= 0 {
		return nil, fmt.Errorf("rescale factor must be positive, got %v", r)
	}
	rows, cols := ScaledDim(img.Rows, r), ScaledDim(img.Cols, r)
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("rescaling %dx%d by %v leaves an empty image", img.Rows, img.Cols, r)
	}
	rowMap := nearestIndices(img.Rows, rows)
	colMap := nearestIndices(img.Cols, cols)

	es := img.DType.Size()
	out := NewImage(rows, cols, img.DType)
	for i, si := range rowMap {
		for j, sj := range colMap {
			src := (si*img.Cols + sj) * es
			dst := (i*cols + j) * es
			copy(out.Data[dst:dst+es], img.Data[src:src+es])
		}
	}
	return out, nil
}

func nearestIndices(in, out int) []int {
	idx := make([]int, out)
	scale := float64(in) / float64(out)
	for i := range idx {
		s := int((float64(i) + 0.5) * scale)
		if s > in-1 {
			s = in - 1
		}
		idx[i] = s
	}
	return idx
}

// Extrude repeats img n times along a new last axis, giving a volume of shape
// (rows, cols, n).
func Extrude(img *Image, n int) (*Volume, error) {
	if n <= 0 {
		return nil, fmt.Errorf("extrusion depth must be positive, got %d", n)
	}
	es := img.DType.Size()
	out := NewVolume([3]int{img.Rows, img.Cols, n}, img.DType)
	for r := 0; r < img.Rows; r++ {
		for c := 0; c < img.Cols; c++ {
			src := img.Data[(r*img.Cols+c)*es : (r*img.Cols+c+1)*es]
			base := out.offset(r, c, 0)
			for k := 0; k < n; k++ {
				copy(out.Data[base+k*es:base+(k+1)*es], src)
			}
		}
	}
	return out, nil
}
