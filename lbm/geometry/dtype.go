package geometry

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrUnknownDType is returned for data type names outside the registry.
var ErrUnknownDType = errors.New("unknown data type")

type kind int

const (
	kindInt kind = iota
	kindUint
	kindFloat
)

// DType is an element type of a raw voxel file, named the way numpy names
// them. Raw files are little-endian.
type DType struct {
	name string
	size int
	kind kind
}

var dtypes = map[string]DType{
	"int8":    {"int8", 1, kindInt},
	"uint8":   {"uint8", 1, kindUint},
	"int16":   {"int16", 2, kindInt},
	"uint16":  {"uint16", 2, kindUint},
	"int32":   {"int32", 4, kindInt},
	"uint32":  {"uint32", 4, kindUint},
	"int64":   {"int64", 8, kindInt},
	"uint64":  {"uint64", 8, kindUint},
	"float32": {"float32", 4, kindFloat},
	"float64": {"float64", 8, kindFloat},
}

// short numpy codes, e.g. "<u2" or "i1"
var dtypeCodes = map[string]string{
	"i1": "int8", "u1": "uint8", "i2": "int16", "u2": "uint16",
	"i4": "int32", "u4": "uint32", "i8": "int64", "u8": "uint64",
	"f4": "float32", "f8": "float64",
}

// Uint8 is the label type of solver geometries.
var Uint8 = dtypes["uint8"]

// ParseDType resolves a numpy data type name ("int8", "uint16", "<f4", ...).
func ParseDType(name string) (DType, error) {
	n := strings.TrimSpace(strings.ToLower(name))
	if d, ok := dtypes[n]; ok {
		return d, nil
	}
	code := strings.TrimLeft(n, "<|=")
	if full, ok := dtypeCodes[code]; ok {
		return dtypes[full], nil
	}
	return DType{}, fmt.Errorf("%w %q", ErrUnknownDType, name)
}

// Size is the element size in bytes.
func (d DType) Size() int { return d.size }

func (d DType) String() string { return d.name }

// Decode reads one element from b.
func (d DType) Decode(b []byte) float64 {
	le := binary.LittleEndian
	switch d.name {
	case "int8":
		return float64(int8(b[0]))
	case "uint8":
		return float64(b[0])
	case "int16":
		return float64(int16(le.Uint16(b)))
	case "uint16":
		return float64(le.Uint16(b))
	case "int32":
		return float64(int32(le.Uint32(b)))
	case "uint32":
		return float64(le.Uint32(b))
	case "int64":
		return float64(int64(le.Uint64(b)))
	case "uint64":
		return float64(le.Uint64(b))
	case "float32":
		return float64(math.Float32frombits(le.Uint32(b)))
	case "float64":
		return math.Float64frombits(le.Uint64(b))
	}
	panic("geometry: decode with zero DType")
}

// Encode writes v into b, truncating toward zero for integer types.
func (d DType) Encode(b []byte, v float64) {
	le := binary.LittleEndian
	switch d.name {
	case "int8":
		b[0] = byte(int8(v))
	case "uint8":
		b[0] = uint8(v)
	case "int16":
		le.PutUint16(b, uint16(int16(v)))
	case "uint16":
		le.PutUint16(b, uint16(v))
	case "int32":
		le.PutUint32(b, uint32(int32(v)))
	case "uint32":
		le.PutUint32(b, uint32(v))
	case "int64":
		le.PutUint64(b, uint64(int64(v)))
	case "uint64":
		le.PutUint64(b, uint64(v))
	case "float32":
		le.PutUint32(b, math.Float32bits(float32(v)))
	case "float64":
		le.PutUint64(b, math.Float64bits(v))
	default:
		panic("geometry: encode with zero DType")
	}
}
