package document

import (
	"sort"

	"github.com/juju/errors"
)

// Executable is the recompute capability of a concrete type. Execute reads
// the outputs of out-linked objects and the object's own properties and
// returns the new output. A non-nil error is a domain failure recorded as
// the object's Error reason; it does not stop the pass.
type Executable interface {
	Execute(o *Object) (any, error)
}

// DirtyChecker refines the default recompute predicate. Implementations
// usually end with o.DefaultMustExecute().
type DirtyChecker interface {
	MustExecute(o *Object) bool
}

// MemberContainer marks types owning an ordered, exclusive member list.
type MemberContainer interface {
	GroupProperty() string
}

// TipHolder marks containers that track the end of a linear history.
type TipHolder interface {
	TipProperty() string
}

// BaseLinker marks features that build on the previous feature of a body.
type BaseLinker interface {
	BaseProperty() string
}

// Initializer fills per-instance defaults right after construction.
type Initializer interface {
	Init(o *Object) error
}

// Type describes a concrete object type: its fixed property schema and a
// constructor for its behaviour. New may be nil for plain data objects.
type Type struct {
	Name       string
	Properties []PropertySpec
	New        func() Executable
}

// Registry maps type names to types. It is owned by the embedding
// application and shared by the documents it creates.
type Registry struct {
	types map[string]*Type
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]*Type)}
}

// Register adds t. Property names must be unique within the schema.
func (r *Registry) Register(t Type) error {
	if t.Name == "" {
		return errors.NotValidf("empty type name")
	}
	if _, ok := r.types[t.Name]; ok {
		return errors.AlreadyExistsf("type %q", t.Name)
	}
	seen := make(map[string]bool, len(t.Properties))
	for _, p := range t.Properties {
		if p.Name == "" {
			return errors.NotValidf("type %q: unnamed property", t.Name)
		}
		if seen[p.Name] {
			return errors.NotValidf("type %q: duplicate property %q", t.Name, p.Name)
		}
		seen[p.Name] = true
		if !p.Kind.IsLink() && p.Default != nil {
			if _, err := coerce(p.Kind, p.Default); err != nil {
				return errors.Annotatef(err, "type %q: default of %q", t.Name, p.Name)
			}
		}
	}
	tt := t
	tt.Properties = append([]PropertySpec(nil), t.Properties...)
	r.types[t.Name] = &tt
	return nil
}

// MustRegister is Register that panics on error, for static type tables.
func (r *Registry) MustRegister(types ...Type) {
	for _, t := range types {
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}
}

// Unregister removes a type. Existing objects keep working.
func (r *Registry) Unregister(name string) {
	delete(r.types, name)
}

// Lookup returns the type registered as name.
func (r *Registry) Lookup(name string) (*Type, error) {
	t, ok := r.types[name]
	if !ok {
		return nil, errors.Annotatef(ErrUnknownType, "%q", name)
	}
	return t, nil
}

// Types returns the registered type names, sorted.
func (r *Registry) Types() []string {
	names := make([]string, 0, len(r.types))
	for n := range r.types {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
