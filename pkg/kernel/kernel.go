// Package kernel defines the abstract geometry kernel features compute
// through. Solids and profiles are opaque, immutable handles; the document
// core never looks inside them.
package kernel

import "github.com/juju/errors"

// ErrEmptyShape is returned when an operation would produce no geometry.
const ErrEmptyShape = errors.ConstError("empty shape")

// Solid is an opaque handle to a kernel solid.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Profile is an opaque closed 2D region in the XY plane.
type Profile interface {
	// Bounds returns the axis-aligned bounding rectangle.
	Bounds() (min, max [2]float64)
}

// Kernel is the geometry backend.
type Kernel interface {
	// Profiles
	Rectangle(width, height float64) (Profile, error) // centred on the origin
	Circle(radius float64) (Profile, error)
	MoveProfile(p Profile, x, y float64) Profile

	// Primitives
	Box(x, y, z float64) (Solid, error) // minimum corner at the origin
	Cylinder(height, radius float64) (Solid, error)

	// Sweeps. Extrude spans z0..z0+length; a negative length extrudes
	// downwards. Loft blends a at z0 into b at z1.
	Extrude(p Profile, z0, length float64) (Solid, error)
	Loft(a, b Profile, z0, z1 float64) (Solid, error)

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}

// Volume returns the volume of the bounding box of s, a cheap emptiness
// test for boolean results.
func Volume(s Solid) float64 {
	min, max := s.BoundingBox()
	v := 1.0
	for i := 0; i < 3; i++ {
		d := max[i] - min[i]
		if d <= 0 {
			return 0
		}
		v *= d
	}
	return v
}

// Overlap reports whether the bounding boxes of a and b intersect with a
// non-zero volume.
func Overlap(a, b Solid) bool {
	amin, amax := a.BoundingBox()
	bmin, bmax := b.BoundingBox()
	for i := 0; i < 3; i++ {
		if max(amin[i], bmin[i]) >= min(amax[i], bmax[i]) {
			return false
		}
	}
	return true
}
