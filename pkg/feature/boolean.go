package feature

import (
	"github.com/juju/errors"

	"github.com/chazu/paracad/pkg/document"
	"github.com/chazu/paracad/pkg/kernel"
)

// Boolean operations.
const (
	OpFuse   = "Fuse"
	OpCut    = "Cut"
	OpCommon = "Common"
)

type boolean struct{ k kernel.Kernel }

func booleanType(k kernel.Kernel) document.Type {
	return document.Type{
		Name: TypeBoolean,
		Properties: []document.PropertySpec{
			{Name: "Base", Kind: document.KindLink, Group: "Boolean"},
			{Name: "Tools", Kind: document.KindLinkList, Group: "Boolean"},
			{Name: "Operation", Kind: document.KindString, Default: OpFuse, Group: "Boolean",
				Doc: "Fuse, Cut or Common"},
			displayColor(),
		},
		New: func() document.Executable { return &boolean{k: k} },
	}
}

func (f *boolean) Execute(o *document.Object) (any, error) {
	op := o.Text("Operation")
	if op != OpFuse && op != OpCut && op != OpCommon {
		return nil, errors.NotValidf("boolean operation %q", op)
	}
	result, ok := SolidOf(o.Link("Base"))
	if !ok {
		return nil, errors.New("no base shape")
	}
	tools := o.LinkList("Tools")
	if len(tools) == 0 {
		return nil, errors.New("no tool shapes")
	}
	for _, t := range tools {
		s, ok := SolidOf(t)
		if !ok {
			return nil, errors.Errorf("tool %s has no solid", t.Name())
		}
		switch op {
		case OpFuse:
			result = f.k.Union(result, s)
		case OpCut:
			result = f.k.Difference(result, s)
		case OpCommon:
			if !kernel.Overlap(result, s) {
				return nil, errors.Annotate(kernel.ErrEmptyShape, "boolean produced empty result")
			}
			result = f.k.Intersection(result, s)
		}
	}
	return result, nil
}
