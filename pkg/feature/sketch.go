package feature

import (
	"github.com/juju/errors"

	"github.com/chazu/paracad/pkg/document"
	"github.com/chazu/paracad/pkg/kernel"
)

// Section is the output of a sketch: a profile lying in the plane z = Z.
// Profile is nil for a sketch without geometry.
type Section struct {
	Profile kernel.Profile
	Z       float64
}

// Sketch shapes.
const (
	ShapeRectangle = "rectangle"
	ShapeCircle    = "circle"
)

type sketch struct {
	k kernel.Kernel
}

func sketchType(k kernel.Kernel) document.Type {
	props := []document.PropertySpec{
		{Name: "Shape", Kind: document.KindString, Default: ShapeRectangle, Group: "Sketch",
			Doc: "rectangle or circle"},
		{Name: "Width", Kind: document.KindFloat, Group: "Sketch"},
		{Name: "Height", Kind: document.KindFloat, Group: "Sketch"},
		{Name: "Radius", Kind: document.KindFloat, Group: "Sketch"},
	}
	return document.Type{
		Name:       TypeSketch,
		Properties: append(props, placement()...),
		New:        func() document.Executable { return &sketch{k: k} },
	}
}

// Execute outputs the profile of the sketch. Degenerate dimensions give an
// empty sketch; features built on it decide whether that is an error.
func (f *sketch) Execute(o *document.Object) (any, error) {
	sec := Section{Z: o.Float("Z")}
	k := f.k
	var (
		p   kernel.Profile
		err error
	)
	switch shape := o.Text("Shape"); shape {
	case ShapeRectangle:
		if o.Float("Width") <= 0 || o.Float("Height") <= 0 {
			return sec, nil
		}
		p, err = k.Rectangle(o.Float("Width"), o.Float("Height"))
	case ShapeCircle:
		if o.Float("Radius") <= 0 {
			return sec, nil
		}
		p, err = k.Circle(o.Float("Radius"))
	default:
		return nil, errors.NotValidf("sketch shape %q", shape)
	}
	if err != nil {
		return nil, errors.Trace(err)
	}
	if x, y := o.Float("X"), o.Float("Y"); x != 0 || y != 0 {
		p = k.MoveProfile(p, x, y)
	}
	sec.Profile = p
	return sec, nil
}

// sectionOf returns the non-empty section output by o.
func sectionOf(o *document.Object) (Section, error) {
	if o == nil {
		return Section{}, errors.New("no profile")
	}
	out, _ := o.Output()
	sec, ok := out.(Section)
	if !ok {
		return Section{}, errors.Errorf("%s is not a sketch", o.Name())
	}
	if sec.Profile == nil {
		return Section{}, errors.New("empty profile")
	}
	return sec, nil
}
