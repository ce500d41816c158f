package document

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/juju/clock"
	"github.com/juju/collections/set"
	"github.com/juju/errors"
	"github.com/juju/loggo"

	"github.com/chazu/paracad/pkg/expr"
)

var logger = loggo.GetLogger("paracad.document")

// Option configures a Document.
type Option func(*Document)

// WithClock sets the clock used to time recompute passes.
func WithClock(c clock.Clock) Option {
	return func(d *Document) { d.clock = c }
}

// WithLogger replaces the package logger.
func WithLogger(l loggo.Logger) Option {
	return func(d *Document) { d.logger = l }
}

// WithDebugChecks turns contract violations (panics in Execute, writes to
// other objects during a pass) into panics instead of Error statuses.
func WithDebugChecks(on bool) Option {
	return func(d *Document) { d.debug = on }
}

// WithExpressionTimeout bounds the evaluation of a single expression.
func WithExpressionTimeout(timeout time.Duration) Option {
	return func(d *Document) { d.evaluator = expr.NewEvaluator(timeout) }
}

// WithObserver subscribes obs for the lifetime of the document.
func WithObserver(obs Observer) Option {
	return func(d *Document) { d.Subscribe(obs) }
}

// Document owns a set of objects and runs recompute passes over them.
type Document struct {
	name     string
	registry *Registry
	objects  map[string]*Object
	order    []*Object
	seq      uint64
	touched  set.Strings

	observers []subscription
	nextSub   int

	clock     clock.Clock
	logger    loggo.Logger
	debug     bool
	evaluator *expr.Evaluator

	recomputing bool
	executing   *Object
	violations  []string
}

// New returns an empty document whose objects are built from reg.
func New(name string, reg *Registry, opts ...Option) *Document {
	d := &Document{
		name:      name,
		registry:  reg,
		objects:   make(map[string]*Object),
		touched:   set.NewStrings(),
		clock:     clock.WallClock,
		logger:    logger,
		evaluator: expr.NewEvaluator(expr.DefaultTimeout),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name returns the document name.
func (d *Document) Name() string { return d.name }

// Registry returns the type registry objects are created from.
func (d *Document) Registry() *Registry { return d.registry }

// IsRecomputing reports whether a pass is running.
func (d *Document) IsRecomputing() bool { return d.recomputing }

var validName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// AddObject creates an object of the registered type typeName. An empty name
// is replaced by a unique name derived from the type.
func (d *Document) AddObject(typeName, name string) (*Object, error) {
	if err := d.guardMutation("add object"); err != nil {
		return nil, err
	}
	t, err := d.registry.Lookup(typeName)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if name == "" {
		name = d.uniqueName(typeName)
	} else if !validName.MatchString(name) {
		return nil, errors.NotValidf("object name %q", name)
	}
	if _, ok := d.objects[name]; ok {
		return nil, errors.Annotatef(ErrDuplicateName, "%q", name)
	}
	d.seq++
	o, err := newObject(d, t, name, d.seq)
	if err != nil {
		return nil, errors.Trace(err)
	}
	d.objects[name] = o
	d.order = append(d.order, o)
	o.touched = true
	d.touched.Add(name)
	for _, x := range d.order {
		for _, e := range x.exprs {
			if e.References(name) {
				x.touch()
				break
			}
		}
	}
	d.logger.Debugf("added %s (%s) to %s", name, typeName, d.name)
	d.notifyCreated(o)
	return o, nil
}

// uniqueName derives Pad, Pad001, Pad002... from "PartDesign::Pad".
func (d *Document) uniqueName(typeName string) string {
	base := typeName
	if i := strings.LastIndex(base, "::"); i >= 0 {
		base = base[i+2:]
	}
	base = strings.Map(func(r rune) rune {
		if r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
			return r
		}
		return '_'
	}, base)
	if base == "" || base[0] >= '0' && base[0] <= '9' {
		base = "_" + base
	}
	if _, ok := d.objects[base]; !ok {
		return base
	}
	for i := 1; ; i++ {
		n := fmt.Sprintf("%s%03d", base, i)
		if _, ok := d.objects[n]; !ok {
			return n
		}
	}
}

// Object returns the object called name, or nil.
func (d *Document) Object(name string) *Object {
	return d.objects[name]
}

// Objects returns all objects in creation order.
func (d *Document) Objects() []*Object {
	return append([]*Object(nil), d.order...)
}

// Len returns the number of objects.
func (d *Document) Len() int { return len(d.order) }

// TouchedObjects returns the objects pending recompute, in creation order.
func (d *Document) TouchedObjects() []*Object {
	var out []*Object
	for _, o := range d.order {
		if d.touched.Contains(o.name) {
			out = append(out, o)
		}
	}
	return out
}

// Invalid lists every object that is not Valid, with its reason.
func (d *Document) Invalid() []Outcome {
	var out []Outcome
	for _, o := range d.order {
		if o.status != StatusValid {
			out = append(out, Outcome{Object: o.name, Status: o.status, Reason: o.reason})
		}
	}
	return out
}

// RemoveObject deletes the object called name. Links to it are removed from
// every other object, which are touched; its container forgets it; a
// deleted container leaves its members in the document.
func (d *Document) RemoveObject(name string) error {
	if err := d.guardMutation("remove object"); err != nil {
		return err
	}
	o := d.objects[name]
	if o == nil {
		return errors.NotFoundf("object %q", name)
	}
	d.notifyAboutToBeDeleted(o)

	if o.container != nil {
		if c, err := AsContainer(o.container); err == nil {
			c.detach(o)
		}
	}
	if c, err := AsContainer(o); err == nil {
		for _, m := range c.Members() {
			m.container = nil
		}
	}
	for _, x := range d.order {
		if x == o {
			continue
		}
		for _, p := range x.props {
			if !p.spec.Kind.IsLink() || !p.references(o) {
				continue
			}
			p.removeTarget(o)
			p.changed()
			if !p.status.Has(Containment) {
				x.touch()
			}
		}
		for _, e := range x.exprs {
			if e.References(o.name) {
				x.touch()
				break
			}
		}
	}

	delete(d.objects, name)
	for i, x := range d.order {
		if x == o {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	d.touched.Remove(name)
	o.doc = nil
	o.container = nil
	d.logger.Debugf("removed %s from %s", name, d.name)
	return nil
}

func (d *Document) guardMutation(op string) error {
	if d.recomputing {
		return errors.Annotatef(ErrRecomputing, "cannot %s", op)
	}
	return nil
}

// checkExternalWrite enforces that during a pass only the executing object
// writes its own properties.
func (d *Document) checkExternalWrite(p *Property) error {
	return d.checkForeign(p.owner, p.path()+" written")
}

// checkForeign rejects a change to o made during a pass by anything other
// than o's own Execute. The violation fails the executing object.
func (d *Document) checkForeign(o *Object, what string) error {
	if !d.recomputing || d.executing == o {
		return nil
	}
	who := "observer"
	if d.executing != nil {
		who = d.executing.name
	}
	msg := fmt.Sprintf("%s by %s during recompute", what, who)
	if d.debug {
		panic(errors.Annotate(ErrRecomputing, msg))
	}
	d.violations = append(d.violations, msg)
	return errors.Annotate(ErrRecomputing, msg)
}
