// Package sdfx implements kernel.Kernel on top of the
// github.com/deadsy/sdfx signed distance field library.
package sdfx

import (
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/juju/errors"
	"github.com/juju/loggo"

	"github.com/chazu/paracad/pkg/kernel"
)

var logger = loggo.GetLogger("paracad.kernel.sdfx")

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// DefaultMeshCells controls marching cubes resolution along the longest
// axis.
const DefaultMeshCells = 200

type sdfxSolid struct {
	s sdf.SDF3
}

func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

type sdfxProfile struct {
	s sdf.SDF2
}

func (p *sdfxProfile) Bounds() (min, max [2]float64) {
	bb := p.s.BoundingBox()
	return [2]float64{bb.Min.X, bb.Min.Y}, [2]float64{bb.Max.X, bb.Max.Y}
}

// Option configures an SdfxKernel.
type Option func(*SdfxKernel)

// WithMeshCells sets the marching cubes resolution.
func WithMeshCells(cells int) Option {
	return func(k *SdfxKernel) {
		if cells > 0 {
			k.cells = cells
		}
	}
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	cells int
}

// New returns a new SdfxKernel.
func New(opts ...Option) *SdfxKernel {
	k := &SdfxKernel{cells: DefaultMeshCells}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

func unwrap2(p kernel.Profile) sdf.SDF2 {
	return p.(*sdfxProfile).s
}

func wrap2(s sdf.SDF2) kernel.Profile {
	return &sdfxProfile{s: s}
}

func positive(what string, vs ...float64) error {
	for _, v := range vs {
		if !(v > 0) || math.IsInf(v, 0) {
			return errors.Annotatef(kernel.ErrEmptyShape, "%s needs positive dimensions, got %v", what, vs)
		}
	}
	return nil
}

// Rectangle creates a width x height rectangle centred on the origin.
func (k *SdfxKernel) Rectangle(width, height float64) (kernel.Profile, error) {
	if err := positive("rectangle", width, height); err != nil {
		return nil, err
	}
	return wrap2(sdf.Box2D(v2.Vec{X: width, Y: height}, 0)), nil
}

// Circle creates a circle centred on the origin.
func (k *SdfxKernel) Circle(radius float64) (kernel.Profile, error) {
	if err := positive("circle", radius); err != nil {
		return nil, err
	}
	s, err := sdf.Circle2D(radius)
	if err != nil {
		return nil, errors.Annotate(err, "sdfx.Circle2D")
	}
	return wrap2(s), nil
}

// MoveProfile translates a profile in its plane.
func (k *SdfxKernel) MoveProfile(p kernel.Profile, x, y float64) kernel.Profile {
	return wrap2(sdf.Transform2D(unwrap2(p), sdf.Translate2d(v2.Vec{X: x, Y: y})))
}

// Box creates a box with its minimum corner at the origin. sdf.Box3D
// centres the box, so it is shifted by half its size.
func (k *SdfxKernel) Box(x, y, z float64) (kernel.Solid, error) {
	if err := positive("box", x, y, z); err != nil {
		return nil, err
	}
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		return nil, errors.Annotate(err, "sdfx.Box3D")
	}
	m := sdf.Translate3d(v3.Vec{X: x / 2, Y: y / 2, Z: z / 2})
	return wrap(sdf.Transform3D(s, m)), nil
}

// Cylinder creates a cylinder along Z standing on the XY plane.
func (k *SdfxKernel) Cylinder(height, radius float64) (kernel.Solid, error) {
	if err := positive("cylinder", height, radius); err != nil {
		return nil, err
	}
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return nil, errors.Annotate(err, "sdfx.Cylinder3D")
	}
	return wrap(sdf.Transform3D(s, sdf.Translate3d(v3.Vec{Z: height / 2}))), nil
}

// Extrude sweeps p along Z from z0 by length.
func (k *SdfxKernel) Extrude(p kernel.Profile, z0, length float64) (kernel.Solid, error) {
	if length < 0 {
		z0, length = z0+length, -length
	}
	if err := positive("extrusion", length); err != nil {
		return nil, err
	}
	s := sdf.Extrude3D(unwrap2(p), length)
	return wrap(sdf.Transform3D(s, sdf.Translate3d(v3.Vec{Z: z0 + length/2}))), nil
}

// Loft blends a at z0 into b at z1.
func (k *SdfxKernel) Loft(a, b kernel.Profile, z0, z1 float64) (kernel.Solid, error) {
	if z1 < z0 {
		a, b, z0, z1 = b, a, z1, z0
	}
	if err := positive("loft", z1-z0); err != nil {
		return nil, err
	}
	s, err := sdf.Loft3D(unwrap2(a), unwrap2(b), z1-z0, 0)
	if err != nil {
		return nil, errors.Annotate(err, "sdfx.Loft3D")
	}
	return wrap(sdf.Transform3D(s, sdf.Translate3d(v3.Vec{Z: (z0 + z1) / 2}))), nil
}

// Union returns the union of two solids.
func (k *SdfxKernel) Union(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Union3D(unwrap(a), unwrap(b)))
}

// Difference returns the difference a - b.
func (k *SdfxKernel) Difference(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Difference3D(unwrap(a), unwrap(b)))
}

// Intersection returns the intersection of two solids.
func (k *SdfxKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Intersect3D(unwrap(a), unwrap(b)))
}

// Translate moves a solid by (x, y, z).
func (k *SdfxKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	m := sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z})
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// Rotate rotates a solid by Euler angles (degrees) around X, Y, Z axes.
func (k *SdfxKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	xRad := x * math.Pi / 180.0
	yRad := y * math.Pi / 180.0
	zRad := z * math.Pi / 180.0

	m := sdf.RotateZ(zRad).Mul(sdf.RotateY(yRad)).Mul(sdf.RotateX(xRad))
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	if s == nil {
		return nil, errors.Annotate(kernel.ErrEmptyShape, "nil solid")
	}
	renderer := render.NewMarchingCubesUniform(k.cells)
	triangles := render.ToTriangles(unwrap(s), renderer)
	logger.Tracef("meshed %d triangles at %d cells", len(triangles), k.cells)

	numVerts := len(triangles) * 3
	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}
