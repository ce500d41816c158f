package feature

import (
	"github.com/juju/errors"

	"github.com/chazu/paracad/pkg/document"
	"github.com/chazu/paracad/pkg/kernel"
)

// loft blends a series of sections. Sections, Ruled and Closed all touch
// the owner when set, so the default recompute predicate covers them.
type loft struct {
	addSub
}

func loftType(name string, k kernel.Kernel, subtractive bool) document.Type {
	props := []document.PropertySpec{
		{Name: "Profile", Kind: document.KindLink, Group: "Loft", Doc: "first section"},
		{Name: "Sections", Kind: document.KindLinkList, Group: "Loft", Doc: "list of sections"},
		{Name: "Ruled", Kind: document.KindBool, Group: "Loft", Doc: "create ruled surface"},
		{Name: "Closed", Kind: document.KindBool, Group: "Loft", Doc: "close last to first profile"},
	}
	return document.Type{
		Name:       name,
		Properties: append(props, baseProperties()...),
		New:        func() document.Executable { return &loft{addSub{k: k, subtractive: subtractive}} },
	}
}

// Execute blends consecutive sections. The sdfx kernel blends linearly, so
// ruled and smooth lofts currently produce the same solid.
func (f *loft) Execute(o *document.Object) (any, error) {
	refs := append([]*document.Object{o.Link("Profile")}, o.LinkList("Sections")...)
	if refs[0] == nil {
		refs = refs[1:]
	}
	if len(refs) < 2 {
		return nil, errors.New("at least two sections are needed")
	}
	secs := make([]Section, 0, len(refs)+1)
	for _, r := range refs {
		sec, err := sectionOf(r)
		if err != nil {
			return nil, errors.Annotatef(err, "section %s", r.Name())
		}
		secs = append(secs, sec)
	}
	if o.Bool("Closed") {
		if len(secs) < 3 {
			return nil, errors.New("a closed loft needs at least three sections")
		}
		secs = append(secs, secs[0])
	}

	var tool kernel.Solid
	for i := 1; i < len(secs); i++ {
		a, b := secs[i-1], secs[i]
		if a.Z == b.Z {
			return nil, errors.Errorf("sections %d and %d lie in the same plane", i-1, i)
		}
		piece, err := f.k.Loft(a.Profile, b.Profile, a.Z, b.Z)
		if err != nil {
			return nil, errors.Annotatef(err, "loft could not be built")
		}
		if tool == nil {
			tool = piece
		} else {
			tool = f.k.Union(tool, piece)
		}
	}
	logger.Debugf("%s: lofted %d sections", o.Name(), len(secs))
	return f.combine(o, tool)
}
