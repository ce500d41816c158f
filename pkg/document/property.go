package document

import (
	"fmt"

	"github.com/juju/errors"
)

// Kind is the static type of a property.
type Kind int

const (
	KindBool Kind = iota
	KindInt
	KindFloat
	KindString
	KindMap      // map[string]string
	KindColor    // Color
	KindLink     // zero or one object
	KindLinkList // ordered objects
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindMap:
		return "map"
	case KindColor:
		return "color"
	case KindLink:
		return "link"
	case KindLinkList:
		return "link-list"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// IsLink reports whether values of this kind reference other objects.
func (k Kind) IsLink() bool {
	return k == KindLink || k == KindLinkList
}

// Color is an RGBA colour with components in [0,1].
type Color struct {
	R, G, B, A float32
}

// PropertySpec is one named, typed slot of a type's schema.
type PropertySpec struct {
	Name    string
	Kind    Kind
	Default any
	Status  PropertyStatus
	Group   string // editor grouping, e.g. "Loft"
	Doc     string
}

// Property is a typed, observable value cell owned by an Object.
type Property struct {
	spec    PropertySpec
	owner   *Object
	status  PropertyStatus
	value   any
	links   []Link
	touched bool
}

func newProperty(owner *Object, spec PropertySpec) (*Property, error) {
	p := &Property{spec: spec, owner: owner, status: spec.Status}
	if spec.Kind.IsLink() {
		return p, nil
	}
	def := spec.Default
	if def == nil {
		def = zeroValue(spec.Kind)
	}
	v, err := coerce(spec.Kind, def)
	if err != nil {
		return nil, errors.Annotatef(err, "default of %s", spec.Name)
	}
	p.value = v
	return p, nil
}

// Name returns the property name.
func (p *Property) Name() string { return p.spec.Name }

// Kind returns the static type.
func (p *Property) Kind() Kind { return p.spec.Kind }

// Spec returns the schema entry the property was created from.
func (p *Property) Spec() PropertySpec { return p.spec }

// Owner returns the owning object.
func (p *Property) Owner() *Object { return p.owner }

// Status returns the current flags.
func (p *Property) Status() PropertyStatus { return p.status }

// SetStatus switches flag on or off.
func (p *Property) SetStatus(flag PropertyStatus, on bool) {
	if on {
		p.status |= flag
	} else {
		p.status &^= flag
	}
}

// IsTouched reports whether the value changed since the last successful
// execute of the owner.
func (p *Property) IsTouched() bool { return p.touched }

// Touch marks the property dirty and touches the owner as a Set would. It is
// subject to the same write rules as Set during a pass.
func (p *Property) Touch() {
	if d := p.owner.doc; d != nil {
		if err := d.checkForeign(p.owner, p.path()+" touched"); err != nil {
			return
		}
	}
	p.changed()
}

// ResetTouched clears the dirty flag.
func (p *Property) ResetTouched() { p.touched = false }

// Get returns the current value. Link properties return *Object (possibly
// nil) or []*Object; maps are returned as copies.
func (p *Property) Get() any {
	switch p.spec.Kind {
	case KindLink:
		if len(p.links) == 0 {
			return (*Object)(nil)
		}
		return p.links[0].Object
	case KindLinkList:
		return p.LinkedObjects()
	case KindMap:
		return copyMap(p.value.(map[string]string))
	}
	return p.value
}

// Set validates v against the property's kind, stores it and touches the
// owner.
func (p *Property) Set(v any) error {
	if err := p.checkWritable(); err != nil {
		return err
	}
	if p.spec.Kind.IsLink() {
		objs, err := linkTargets(p.spec.Kind, v)
		if err != nil {
			return errors.Annotatef(err, "setting %s", p.path())
		}
		return p.setLinks(objs, nil)
	}
	nv, err := coerce(p.spec.Kind, v)
	if err != nil {
		return errors.Annotatef(err, "setting %s", p.path())
	}
	p.value = nv
	p.changed()
	return nil
}

// Init stores v without touching the owner and ignores ReadOnly. It is meant
// for type initialisers that fill per-instance defaults.
func (p *Property) Init(v any) error {
	if p.spec.Kind.IsLink() {
		return errors.Annotatef(ErrTypeMismatch, "init of link property %s", p.path())
	}
	nv, err := coerce(p.spec.Kind, v)
	if err != nil {
		return errors.Annotatef(err, "init %s", p.path())
	}
	p.value = nv
	return nil
}

func (p *Property) checkWritable() error {
	if p.status.Has(ReadOnly) {
		return errors.Annotatef(ErrReadOnly, "setting %s", p.path())
	}
	if d := p.owner.doc; d != nil {
		return d.checkExternalWrite(p)
	}
	return nil
}

// assign stores a non-link value bypassing the ReadOnly flag.
func (p *Property) assign(v any) error {
	nv, err := coerce(p.spec.Kind, v)
	if err != nil {
		return errors.Annotatef(err, "setting %s", p.path())
	}
	p.value = nv
	p.changed()
	return nil
}

func (p *Property) changed() {
	p.touched = true
	o := p.owner
	d := o.doc
	if d == nil {
		return
	}
	if !p.status.Has(NoRecompute) && d.executing != o {
		o.touch()
	}
	d.notifyPropertyChanged(o, p.spec.Name)
}

func (p *Property) path() string {
	if p.owner == nil {
		return p.spec.Name
	}
	return p.owner.name + "." + p.spec.Name
}

func zeroValue(k Kind) any {
	switch k {
	case KindBool:
		return false
	case KindInt:
		return int64(0)
	case KindFloat:
		return float64(0)
	case KindString:
		return ""
	case KindMap:
		return map[string]string{}
	case KindColor:
		return Color{A: 1}
	}
	return nil
}

// coerce converts v to the canonical Go representation of k.
func coerce(k Kind, v any) (any, error) {
	switch k {
	case KindBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case KindInt:
		switch n := v.(type) {
		case int:
			return int64(n), nil
		case int32:
			return int64(n), nil
		case int64:
			return n, nil
		}
	case KindFloat:
		switch n := v.(type) {
		case float64:
			return n, nil
		case float32:
			return float64(n), nil
		case int:
			return float64(n), nil
		case int64:
			return float64(n), nil
		}
	case KindString:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case KindMap:
		if m, ok := v.(map[string]string); ok {
			return copyMap(m), nil
		}
	case KindColor:
		if c, ok := v.(Color); ok {
			return c, nil
		}
	}
	return nil, errors.Annotatef(ErrTypeMismatch, "expected %s, got %T", k, v)
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
