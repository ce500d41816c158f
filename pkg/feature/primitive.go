package feature

import (
	"github.com/juju/errors"

	"github.com/chazu/paracad/pkg/document"
	"github.com/chazu/paracad/pkg/kernel"
)

type box struct{ k kernel.Kernel }

func boxType(k kernel.Kernel) document.Type {
	props := []document.PropertySpec{
		{Name: "Length", Kind: document.KindFloat, Default: 10.0, Group: "Box"},
		{Name: "Width", Kind: document.KindFloat, Default: 10.0, Group: "Box"},
		{Name: "Height", Kind: document.KindFloat, Default: 10.0, Group: "Box"},
		displayColor(),
	}
	return document.Type{
		Name:       TypeBox,
		Properties: append(append(props, placement()...), orientation()...),
		New:        func() document.Executable { return &box{k: k} },
	}
}

func (f *box) Execute(o *document.Object) (any, error) {
	s, err := f.k.Box(o.Float("Length"), o.Float("Width"), o.Float("Height"))
	if err != nil {
		return nil, errors.Trace(err)
	}
	return place(f.k, o, s), nil
}

type cylinder struct{ k kernel.Kernel }

func cylinderType(k kernel.Kernel) document.Type {
	props := []document.PropertySpec{
		{Name: "Radius", Kind: document.KindFloat, Default: 2.0, Group: "Cylinder"},
		{Name: "Height", Kind: document.KindFloat, Default: 10.0, Group: "Cylinder"},
		displayColor(),
	}
	return document.Type{
		Name:       TypeCylinder,
		Properties: append(append(props, placement()...), orientation()...),
		New:        func() document.Executable { return &cylinder{k: k} },
	}
}

func (f *cylinder) Execute(o *document.Object) (any, error) {
	s, err := f.k.Cylinder(o.Float("Height"), o.Float("Radius"))
	if err != nil {
		return nil, errors.Trace(err)
	}
	return place(f.k, o, s), nil
}

// place rotates s about the origin, then moves it by the placement offset.
func place(k kernel.Kernel, o *document.Object, s kernel.Solid) kernel.Solid {
	if rx, ry, rz := o.Float("RotX"), o.Float("RotY"), o.Float("RotZ"); rx != 0 || ry != 0 || rz != 0 {
		s = k.Rotate(s, rx, ry, rz)
	}
	x, y, z := o.Float("X"), o.Float("Y"), o.Float("Z")
	if x == 0 && y == 0 && z == 0 {
		return s
	}
	return k.Translate(s, x, y, z)
}
