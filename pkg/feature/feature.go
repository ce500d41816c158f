// Package feature provides the concrete object types of a parametric
// modelling document: sketches, primitives, additive and subtractive
// features, booleans and the containers that group them. Every type computes
// through a kernel.Kernel and outputs immutable kernel values.
package feature

import (
	"github.com/juju/errors"
	"github.com/juju/loggo"

	"github.com/chazu/paracad/pkg/document"
	"github.com/chazu/paracad/pkg/kernel"
)

var logger = loggo.GetLogger("paracad.feature")

// Registered type names.
const (
	TypeSketch          = "Sketcher::Sketch"
	TypeBox             = "Part::Box"
	TypeCylinder        = "Part::Cylinder"
	TypeBoolean         = "Part::Boolean"
	TypePad             = "PartDesign::Pad"
	TypePocket          = "PartDesign::Pocket"
	TypeAdditiveLoft    = "PartDesign::AdditiveLoft"
	TypeSubtractiveLoft = "PartDesign::SubtractiveLoft"
	TypeBody            = "PartDesign::Body"
	TypeGroup           = "App::DocumentObjectGroup"
	TypePart            = "App::Part"
)

// Types returns the object types of this package bound to k.
func Types(k kernel.Kernel) []document.Type {
	return []document.Type{
		sketchType(k),
		boxType(k),
		cylinderType(k),
		booleanType(k),
		padType(k),
		pocketType(k),
		loftType(TypeAdditiveLoft, k, false),
		loftType(TypeSubtractiveLoft, k, true),
		bodyType(),
		groupType(),
		partType(),
	}
}

// Register adds every type of this package to reg.
func Register(reg *document.Registry, k kernel.Kernel) error {
	for _, t := range Types(k) {
		if err := reg.Register(t); err != nil {
			return errors.Annotatef(err, "registering %s", t.Name)
		}
	}
	return nil
}

// NewRegistry returns a registry holding every type of this package.
func NewRegistry(k kernel.Kernel) (*document.Registry, error) {
	reg := document.NewRegistry()
	if err := Register(reg, k); err != nil {
		return nil, errors.Trace(err)
	}
	return reg, nil
}

// SolidOf returns the solid output of o, if it has one.
func SolidOf(o *document.Object) (kernel.Solid, bool) {
	if o == nil {
		return nil, false
	}
	out, ok := o.Output()
	if !ok {
		return nil, false
	}
	s, ok := out.(kernel.Solid)
	return s, ok
}

// IsHistoryFeature reports whether o is a feature that builds on a base
// feature inside a body.
func IsHistoryFeature(o *document.Object) bool {
	_, ok := o.Impl().(document.BaseLinker)
	return ok
}

// IsSketch reports whether o is a sketch.
func IsSketch(o *document.Object) bool {
	_, ok := o.Impl().(*sketch)
	return ok
}

func placement() []document.PropertySpec {
	return []document.PropertySpec{
		{Name: "X", Kind: document.KindFloat, Group: "Placement"},
		{Name: "Y", Kind: document.KindFloat, Group: "Placement"},
		{Name: "Z", Kind: document.KindFloat, Group: "Placement"},
	}
}

// orientation is the rotation of a primitive about the origin, applied
// before its placement offset.
func orientation() []document.PropertySpec {
	return []document.PropertySpec{
		{Name: "RotX", Kind: document.KindFloat, Group: "Placement", Doc: "degrees about X"},
		{Name: "RotY", Kind: document.KindFloat, Group: "Placement", Doc: "degrees about Y"},
		{Name: "RotZ", Kind: document.KindFloat, Group: "Placement", Doc: "degrees about Z"},
	}
}

func displayColor() document.PropertySpec {
	return document.PropertySpec{
		Name: "Color", Kind: document.KindColor, Status: document.NoRecompute,
		Default: document.Color{R: 0.8, G: 0.8, B: 0.8, A: 1}, Group: "Display",
	}
}
