package feature

import (
	"github.com/google/uuid"
	"github.com/juju/errors"

	"github.com/chazu/paracad/pkg/document"
)

func groupProperty() document.PropertySpec {
	return document.PropertySpec{
		Name: "Group", Kind: document.KindLinkList,
		Status: document.Containment | document.NoRecompute | document.ReadOnly,
		Group:  "Base", Doc: "members in history order",
	}
}

// group is a plain folder. It has no output and never needs to run.
type group struct{}

func (group) GroupProperty() string                 { return "Group" }
func (group) Execute(*document.Object) (any, error) { return nil, nil }
func (group) MustExecute(*document.Object) bool     { return false }

func groupType() document.Type {
	return document.Type{
		Name:       TypeGroup,
		Properties: []document.PropertySpec{groupProperty()},
		New:        func() document.Executable { return group{} },
	}
}

// part is a group carrying product metadata.
type part struct {
	group
}

func partType() document.Type {
	return document.Type{
		Name: TypePart,
		Properties: []document.PropertySpec{
			groupProperty(),
			{Name: "Type", Kind: document.KindString, Group: "Base", Doc: "user defined part type"},
			{Name: "Id", Kind: document.KindString, Group: "Base", Doc: "user defined identifier"},
			{Name: "Uid", Kind: document.KindString, Status: document.ReadOnly, Group: "Base",
				Doc: "unique identifier assigned at creation"},
			{Name: "Material", Kind: document.KindMap, Group: "Base"},
			{Name: "Meta", Kind: document.KindMap, Group: "Base"},
			{Name: "License", Kind: document.KindString, Group: "License"},
			{Name: "LicenseURL", Kind: document.KindString, Group: "License"},
			displayColor(),
		},
		New: func() document.Executable { return &part{} },
	}
}

// Init assigns a fresh Uid.
func (*part) Init(o *document.Object) error {
	return errors.Trace(o.Property("Uid").Init(uuid.NewString()))
}

// body is the container of a linear feature history. Its output is the
// solid of its tip.
type body struct{}

func (body) GroupProperty() string { return "Group" }
func (body) TipProperty() string   { return "Tip" }

func bodyType() document.Type {
	return document.Type{
		Name: TypeBody,
		Properties: []document.PropertySpec{
			groupProperty(),
			{Name: "Tip", Kind: document.KindLink, Status: document.ReadOnly, Group: "Base",
				Doc: "current end of the feature history"},
			displayColor(),
		},
		New: func() document.Executable { return body{} },
	}
}

func (body) Execute(o *document.Object) (any, error) {
	tip := o.Link("Tip")
	if tip == nil {
		return nil, nil
	}
	s, ok := SolidOf(tip)
	if !ok {
		return nil, errors.Errorf("tip %s has no solid", tip.Name())
	}
	return s, nil
}

// BodyOf returns the body holding o, or nil.
func BodyOf(o *document.Object) *document.Object {
	c := document.ContainerOf(o)
	if c == nil || c.TypeName() != TypeBody {
		return nil
	}
	return c
}

// PartOf returns the App::Part enclosing o, directly or through a body.
func PartOf(o *document.Object) *document.Object {
	for c := document.ContainerOf(o); c != nil; c = document.ContainerOf(c) {
		if c.TypeName() == TypePart {
			return c
		}
	}
	return nil
}
