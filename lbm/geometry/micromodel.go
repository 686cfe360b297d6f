package geometry

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mplbm/micromodel/lbm/config"
)

// MicromodelSuffix is appended to the geom name of a carved micromodel.
const MicromodelSuffix = "_micromodel"

// MicromodelParams selects the plane carved out of the rock volume.
type MicromodelParams struct {
	SliceIndex int     // index along the first geometry axis
	XOffset    int     // offset of the nx window along the third axis
	YOffset    int     // offset of the ny window along the second axis
	Rescale    float64 // nearest-neighbour scale factor applied to the plane
}

// CreateMicromodel carves a 2D plane out of the configured rock geometry,
// rescales it, extrudes it nz voxels deep and transposes it to (nz, ny*r, nx*r)
// so the extruded axis is the solver's first axis. The result is written as
// <geom name>_micromodel.raw next to the source geometry and in is updated in
// place to describe it: file name, geom name, geometry size and domain size
// change, nothing else does.
func CreateMicromodel(in *config.Inputs, p MicromodelParams) (*Volume, error) {
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
	plane, err := rock.Slice(p.SliceIndex, p.YOffset, d.Ny, p.XOffset, d.Nx)
	if err != nil {
		return nil, fmt.Errorf("micromodel slice: %w", err)
	}
	plane, err = Rescale(plane, p.Rescale)
	if err != nil {
		return nil, fmt.Errorf("micromodel rescale: %w", err)
	}
	extruded, err := Extrude(plane, d.Nz)
	if err != nil {
		return nil, fmt.Errorf("micromodel extrude: %w", err)
	}
	micromodel, err := extruded.Transpose([3]int{2, 0, 1})
	if err != nil {
		return nil, err
	}
	logrus.Debugf("micromodel: slice %d of %v -> %v", p.SliceIndex, rock.Shape, micromodel.Shape)

	name := in.Domain.GeomName + MicromodelSuffix + ".raw"
	if err := micromodel.WriteRaw(in.InputPath(name)); err != nil {
		return nil, err
	}

	in.Geometry.FileName = name
	in.Domain.GeomName = in.Domain.GeomName + MicromodelSuffix
	in.Geometry.GeometrySize = config.Size3{
		Nx: d.Nz,
		Ny: ScaledDim(d.Ny, p.Rescale),
		Nz: ScaledDim(d.Nx, p.Rescale),
	}
	in.Domain.DomainSize = config.DomainSize{
		Nx: ScaledDim(d.Nx, p.Rescale),
		Ny: ScaledDim(d.Ny, p.Rescale),
		Nz: d.Nz,
	}
	logrus.Infof("Wrote micromodel %s with shape %v", in.InputPath(name), micromodel.Shape)
	return micromodel, nil
}
