package document

import (
	"github.com/juju/errors"
)

// Link is one reference held by a link property, with optional sub-element
// names (faces, edges, vertices). Sub-element names are opaque here.
type Link struct {
	Object *Object
	Sub    []string
}

// SetLink replaces the referenced objects. subnames is either empty or has
// one entry per object.
func (p *Property) SetLink(objects []*Object, subnames [][]string) error {
	if !p.spec.Kind.IsLink() {
		return errors.Annotatef(ErrTypeMismatch, "%s is not a link property", p.path())
	}
	if err := p.checkWritable(); err != nil {
		return err
	}
	return p.setLinks(objects, subnames)
}

// LinkedObjects returns the referenced objects in order.
func (p *Property) LinkedObjects() []*Object {
	out := make([]*Object, 0, len(p.links))
	for _, l := range p.links {
		out = append(out, l.Object)
	}
	return out
}

// Links returns the references with their sub-element names.
func (p *Property) Links() []Link {
	out := make([]Link, len(p.links))
	for i, l := range p.links {
		out[i] = Link{Object: l.Object, Sub: append([]string(nil), l.Sub...)}
	}
	return out
}

// SubNames returns the sub-element names of the i-th reference.
func (p *Property) SubNames(i int) []string {
	if i < 0 || i >= len(p.links) {
		return nil
	}
	return append([]string(nil), p.links[i].Sub...)
}

func (p *Property) setLinks(objects []*Object, subnames [][]string) error {
	links, err := p.validateLinks(objects, subnames)
	if err != nil {
		return err
	}
	p.links = links
	p.changed()
	return nil
}

func (p *Property) validateLinks(objects []*Object, subnames [][]string) ([]Link, error) {
	if p.spec.Kind == KindLink {
		if len(objects) == 1 && objects[0] == nil {
			objects = nil
		}
		if len(objects) > 1 {
			return nil, errors.Annotatef(ErrTypeMismatch, "%s holds at most one object, got %d", p.path(), len(objects))
		}
	}
	if len(subnames) != 0 && len(subnames) != len(objects) {
		return nil, errors.Annotatef(ErrTypeMismatch, "%s: %d sub-element lists for %d objects", p.path(), len(subnames), len(objects))
	}
	owner := p.owner
	links := make([]Link, 0, len(objects))
	for i, o := range objects {
		if o == nil {
			return nil, errors.Annotatef(ErrInvalidLink, "%s: nil object at %d", p.path(), i)
		}
		if o.doc == nil {
			return nil, errors.Annotatef(ErrInvalidLink, "%s: object %q has been deleted", p.path(), o.name)
		}
		if o.doc != owner.doc && !p.status.Has(External) {
			return nil, errors.Annotatef(ErrInvalidLink, "%s: object %q belongs to another document", p.path(), o.name)
		}
		if p.status.Has(Containment) && encloses(o, owner) {
			return nil, errors.Annotatef(ErrInvalidLink, "%s: %q would contain itself", p.path(), o.name)
		}
		l := Link{Object: o}
		if len(subnames) != 0 {
			l.Sub = append([]string(nil), subnames[i]...)
		}
		links = append(links, l)
	}
	return links, nil
}

// removeTarget drops every reference to o and reports whether any existed.
func (p *Property) removeTarget(o *Object) bool {
	kept := p.links[:0]
	removed := false
	for _, l := range p.links {
		if l.Object == o {
			removed = true
			continue
		}
		kept = append(kept, l)
	}
	p.links = kept
	return removed
}

func (p *Property) references(o *Object) bool {
	for _, l := range p.links {
		if l.Object == o {
			return true
		}
	}
	return false
}

// linkTargets converts a Set argument for a link property.
func linkTargets(k Kind, v any) ([]*Object, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case *Object:
		if t == nil {
			return nil, nil
		}
		return []*Object{t}, nil
	case []*Object:
		if k == KindLink && len(t) > 1 {
			return nil, errors.Annotatef(ErrTypeMismatch, "link holds at most one object, got %d", len(t))
		}
		return t, nil
	}
	return nil, errors.Annotatef(ErrTypeMismatch, "expected %s, got %T", k, v)
}

// encloses reports whether candidate is outer itself or one of the
// containers that (transitively) hold outer.
func encloses(candidate, outer *Object) bool {
	for c := outer; c != nil; c = c.container {
		if c == candidate {
			return true
		}
	}
	return false
}
