package feature

import (
	"github.com/juju/errors"

	"github.com/chazu/paracad/pkg/document"
	"github.com/chazu/paracad/pkg/kernel"
)

// addSub is the behaviour shared by features that fuse a tool shape into,
// or cut it from, the shape of their base feature.
type addSub struct {
	k           kernel.Kernel
	subtractive bool
}

func (addSub) BaseProperty() string { return "BaseFeature" }

func baseProperties() []document.PropertySpec {
	return []document.PropertySpec{
		{Name: "BaseFeature", Kind: document.KindLink, Group: "Base",
			Doc: "feature this one adds to or cuts from"},
		displayColor(),
	}
}

// combine applies tool to the base shape. Without a base an additive
// feature yields the tool itself and a subtractive one fails.
func (f addSub) combine(o *document.Object, tool kernel.Solid) (kernel.Solid, error) {
	baseObj := o.Link("BaseFeature")
	base, ok := SolidOf(baseObj)
	if baseObj != nil && !ok {
		return nil, errors.Errorf("base feature %s has no solid", baseObj.Name())
	}
	if !ok {
		if f.subtractive {
			return nil, errors.New("nothing to cut from")
		}
		return tool, nil
	}
	if f.subtractive {
		return f.k.Difference(base, tool), nil
	}
	return f.k.Union(base, tool), nil
}

type extrusion struct {
	addSub
}

func extrusionProperties(length float64) []document.PropertySpec {
	props := []document.PropertySpec{
		{Name: "Profile", Kind: document.KindLink, Group: "Extrusion"},
		{Name: "Length", Kind: document.KindFloat, Default: length, Group: "Extrusion"},
		{Name: "Reversed", Kind: document.KindBool, Group: "Extrusion"},
	}
	return append(props, baseProperties()...)
}

func padType(k kernel.Kernel) document.Type {
	return document.Type{
		Name:       TypePad,
		Properties: extrusionProperties(10),
		New:        func() document.Executable { return &extrusion{addSub{k: k}} },
	}
}

func pocketType(k kernel.Kernel) document.Type {
	return document.Type{
		Name:       TypePocket,
		Properties: extrusionProperties(5),
		New:        func() document.Executable { return &extrusion{addSub{k: k, subtractive: true}} },
	}
}

// Execute extrudes the profile away from the sketch plane: upwards for a pad,
// downwards into the base for a pocket, the other way when Reversed.
func (f *extrusion) Execute(o *document.Object) (any, error) {
	sec, err := sectionOf(o.Link("Profile"))
	if err != nil {
		return nil, err
	}
	length := o.Float("Length")
	if length <= 0 {
		return nil, errors.Errorf("length must be positive, got %g", length)
	}
	if f.subtractive != o.Bool("Reversed") {
		length = -length
	}
	tool, err := f.k.Extrude(sec.Profile, sec.Z, length)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return f.combine(o, tool)
}
