package document

import (
	"github.com/juju/errors"

	"github.com/chazu/paracad/pkg/expr"
)

// Object is a named node of the dependency graph. Its schema is fixed by its
// Type; its behaviour comes from the Executable built by Type.New.
type Object struct {
	doc   *Document
	typ   *Type
	impl  Executable
	name  string
	label string
	seq   uint64

	props  []*Property
	byName map[string]*Property
	exprs  map[string]*expr.Expr

	status    Status
	reason    string
	touched   bool
	output    any
	hasOutput bool
	revision  uint64

	container *Object
}

func newObject(d *Document, t *Type, name string, seq uint64) (*Object, error) {
	o := &Object{
		doc:    d,
		typ:    t,
		name:   name,
		label:  name,
		seq:    seq,
		byName: make(map[string]*Property, len(t.Properties)),
		exprs:  make(map[string]*expr.Expr),
		status: StatusTouched,
	}
	for _, spec := range t.Properties {
		p, err := newProperty(o, spec)
		if err != nil {
			return nil, errors.Annotatef(err, "type %q", t.Name)
		}
		o.props = append(o.props, p)
		o.byName[spec.Name] = p
	}
	if t.New != nil {
		o.impl = t.New()
	}
	if init, ok := o.impl.(Initializer); ok {
		if err := init.Init(o); err != nil {
			return nil, errors.Annotatef(err, "initialising %q", name)
		}
	}
	return o, nil
}

// Name returns the unique, stable identifier within the document.
func (o *Object) Name() string { return o.name }

// Label returns the display name.
func (o *Object) Label() string { return o.label }

// SetLabel changes the display name. Labels need not be unique.
func (o *Object) SetLabel(label string) {
	o.label = label
	if o.doc != nil {
		o.doc.notifyPropertyChanged(o, "Label")
	}
}

// TypeName returns the registered type name.
func (o *Object) TypeName() string { return o.typ.Name }

// Impl returns the behaviour of the object, or nil for plain data objects.
func (o *Object) Impl() Executable { return o.impl }

// Document returns the owning document, or nil once the object is deleted.
func (o *Object) Document() *Document { return o.doc }

// Status returns the recompute state.
func (o *Object) Status() Status { return o.status }

// Reason returns the failure reason in Error and Aborted state.
func (o *Object) Reason() string { return o.reason }

// IsTouched reports whether the object's own inputs changed.
func (o *Object) IsTouched() bool { return o.touched }

// Output returns the result of the last successful execute.
func (o *Object) Output() (any, bool) { return o.output, o.hasOutput }

// Revision counts successful executions; it changes whenever Output does.
func (o *Object) Revision() uint64 { return o.revision }

// Container returns the container holding o, if any.
func (o *Object) Container() *Object { return o.container }

// Properties returns the schema-ordered properties.
func (o *Object) Properties() []*Property {
	return append([]*Property(nil), o.props...)
}

// Property returns the named property or nil.
func (o *Object) Property(name string) *Property {
	return o.byName[name]
}

func (o *Object) mustProperty(name string, kinds ...Kind) *Property {
	p := o.byName[name]
	if p == nil {
		panic(errors.NotFoundf("property %s.%s", o.name, name))
	}
	for _, k := range kinds {
		if p.spec.Kind == k {
			return p
		}
	}
	panic(errors.Annotatef(ErrTypeMismatch, "%s is %s", p.path(), p.spec.Kind))
}

// Set assigns the named property.
func (o *Object) Set(name string, v any) error {
	p := o.byName[name]
	if p == nil {
		return errors.NotFoundf("property %s.%s", o.name, name)
	}
	return p.Set(v)
}

// Typed accessors. They panic on unknown names or kind mismatches, which
// are programming errors in a feature implementation.

func (o *Object) Bool(name string) bool { return o.mustProperty(name, KindBool).value.(bool) }

func (o *Object) Int(name string) int64 { return o.mustProperty(name, KindInt).value.(int64) }

func (o *Object) Float(name string) float64 {
	return o.mustProperty(name, KindFloat).value.(float64)
}

func (o *Object) Text(name string) string {
	return o.mustProperty(name, KindString).value.(string)
}

func (o *Object) Map(name string) map[string]string {
	return copyMap(o.mustProperty(name, KindMap).value.(map[string]string))
}

func (o *Object) Color(name string) Color { return o.mustProperty(name, KindColor).value.(Color) }

// Link returns the single object referenced by a link property.
func (o *Object) Link(name string) *Object {
	p := o.mustProperty(name, KindLink)
	if len(p.links) == 0 {
		return nil
	}
	return p.links[0].Object
}

// LinkList returns the objects referenced by a link-list property.
func (o *Object) LinkList(name string) []*Object {
	return o.mustProperty(name, KindLinkList).LinkedObjects()
}

// OutList returns the objects o depends on: every link target outside
// containment lists plus every expression reference, without duplicates.
func (o *Object) OutList() []*Object {
	var out []*Object
	seen := make(map[*Object]bool)
	add := func(t *Object) {
		if t == nil || seen[t] {
			return
		}
		seen[t] = true
		out = append(out, t)
	}
	for _, p := range o.props {
		if !p.spec.Kind.IsLink() || p.status.Has(Containment) {
			continue
		}
		for _, l := range p.links {
			add(l.Object)
		}
	}
	if o.doc != nil {
		for _, p := range o.props {
			e := o.exprs[p.spec.Name]
			if e == nil {
				continue
			}
			for _, ref := range e.Refs() {
				add(o.doc.objects[ref.Object])
			}
		}
	}
	return out
}

// InList returns the objects that depend on o, in creation order.
func (o *Object) InList() []*Object {
	if o.doc == nil {
		return nil
	}
	var in []*Object
	for _, x := range o.doc.order {
		for _, t := range x.OutList() {
			if t == o {
				in = append(in, x)
				break
			}
		}
	}
	return in
}

// MustExecute answers whether o needs to run. Types may refine it through
// DirtyChecker.
func (o *Object) MustExecute() bool {
	if dc, ok := o.impl.(DirtyChecker); ok {
		return dc.MustExecute(o)
	}
	return o.DefaultMustExecute()
}

// DefaultMustExecute is true when o is touched or any out-linked object is in
// Error or Touched state.
func (o *Object) DefaultMustExecute() bool {
	if o.touched {
		return true
	}
	for _, t := range o.OutList() {
		if t.status == StatusError || t.status == StatusTouched {
			return true
		}
	}
	return false
}

// Touch forces o to be recomputed by the next pass. During a pass only o's
// own Execute may touch it; anything else is a contract violation and the
// touch is dropped.
func (o *Object) Touch() {
	if o.doc == nil {
		return
	}
	if err := o.doc.checkForeign(o, o.name+" touched"); err != nil {
		return
	}
	o.touch()
}

func (o *Object) touch() {
	o.touched = true
	o.status = StatusTouched
	o.reason = ""
	o.doc.touched.Add(o.name)
	o.doc.markStale(o)
}

func (o *Object) succeed(out any) {
	o.status = StatusValid
	o.reason = ""
	o.output = out
	o.hasOutput = out != nil
	o.revision++
	o.clearTouched()
}

func (o *Object) fail(status Status, reason string) {
	o.status = status
	o.reason = reason
	o.output = nil
	o.hasOutput = false
	o.clearTouched()
}

func (o *Object) clearTouched() {
	o.touched = false
	for _, p := range o.props {
		p.touched = false
	}
}
