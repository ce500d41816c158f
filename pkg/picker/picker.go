// Package picker classifies document objects as candidates for a feature
// operation in the context of an active body, e.g. the sketches a new pad
// may be built on.
package picker

import (
	"strings"

	"github.com/juju/loggo"

	"github.com/chazu/paracad/pkg/document"
	"github.com/chazu/paracad/pkg/feature"
)

var logger = loggo.GetLogger("paracad.picker")

// Status is a set of classification flags.
type Status uint

const (
	Valid        Status = 1 << iota // usable as is
	IsUsed                          // already consumed by a history feature
	IsExternal                      // outside the active context, see OtherBody and OtherPart
	OtherBody                       // belongs to another body
	OtherPart                       // belongs to another part
	AfterTip                        // located after the tip of its body
	UserSelected                    // preselected by the user
	InvalidShape                    // has no usable shape
	NoWire                          // a sketch without geometry

	statusMax
)

var descriptions = map[Status]string{
	Valid:        "Valid",
	IsUsed:       "The feature already used by other",
	IsExternal:   "The feature is external against current context",
	OtherBody:    "The feature belongs to another body",
	OtherPart:    "The feature belongs to another part",
	AfterTip:     "The feature is located after the tip feature",
	UserSelected: "The feature was preselected by user",
	InvalidShape: "Invalid shape",
	NoWire:       "The sketch has no wire",
}

var names = map[Status]string{
	Valid:        "valid",
	IsUsed:       "used",
	IsExternal:   "external",
	OtherBody:    "other-body",
	OtherPart:    "other-part",
	AfterTip:     "after-tip",
	UserSelected: "user-selected",
	InvalidShape: "invalid-shape",
	NoWire:       "no-wire",
}

// Has reports whether every flag of f is set in s.
func (s Status) Has(f Status) bool { return s&f == f }

// Flags splits s into its single flags, lowest first.
func (s Status) Flags() []Status {
	var out []Status
	for f := Status(1); f < statusMax; f <<= 1 {
		if s&f != 0 {
			out = append(out, f)
		}
	}
	return out
}

func (s Status) String() string {
	if s == 0 {
		return "none"
	}
	parts := make([]string, 0, 4)
	for _, f := range s.Flags() {
		parts = append(parts, names[f])
	}
	return strings.Join(parts, "|")
}

// Describe returns the human readable explanation of a single flag.
func Describe(f Status) string {
	if d, ok := descriptions[f]; ok {
		return d
	}
	return "Unknown status"
}

// Picker holds the classification of candidate objects against an active
// body and part.
type Picker struct {
	body *document.Object
	part *document.Object

	status map[*document.Object]Status
	order  []*document.Object

	// OnStatus, when set, is called every time a status is recorded.
	OnStatus func(o *document.Object, s Status)
}

// New returns a picker for the active body. With a nil body, part is the
// active part; otherwise the active part is the one holding body.
func New(body, part *document.Object) *Picker {
	if body != nil {
		part = feature.PartOf(body)
	}
	return &Picker{body: body, part: part, status: make(map[*document.Object]Status)}
}

// Body returns the active body.
func (p *Picker) Body() *document.Object { return p.body }

// Part returns the active part.
func (p *Picker) Part() *document.Object { return p.part }

// BodyRelation classifies o against the active body and part. Being in
// another part takes precedence over being in another body.
func (p *Picker) BodyRelation(o *document.Object) Status {
	var s Status
	objBody := feature.BodyOf(o)
	anchor := o
	if objBody != nil {
		anchor = objBody
	}
	objPart := feature.PartOf(anchor)
	switch {
	case objPart != p.part:
		s |= OtherPart | IsExternal
	case objBody != p.body:
		s |= OtherBody | IsExternal
	}
	if objBody != nil {
		if c, err := document.AsContainer(objBody); err == nil && c.IsAfterTip(o) {
			s |= AfterTip
		}
	}
	return s
}

// SketchStatus classifies a sketch as a profile candidate.
func (p *Picker) SketchStatus(o *document.Object) Status {
	s := Valid | p.BodyRelation(o)
	if usedByFeature(o) {
		s |= IsUsed
	}
	out, ok := o.Output()
	sec, isSection := out.(feature.Section)
	switch {
	case !ok || !isSection:
		s = s&^Valid | InvalidShape | NoWire
	case sec.Profile == nil:
		s = s&^Valid | NoWire
	}
	return s
}

// FeatureStatus classifies a solid-bearing object as a base candidate.
func (p *Picker) FeatureStatus(o *document.Object) Status {
	s := Valid | p.BodyRelation(o)
	if usedByFeature(o) {
		s |= IsUsed
	}
	if _, ok := feature.SolidOf(o); !ok {
		s = s&^Valid | InvalidShape
	}
	return s
}

// Classify records the status of every candidate, sketches and features
// alike.
func (p *Picker) Classify(objs ...*document.Object) {
	for _, o := range objs {
		if feature.IsSketch(o) {
			p.Set(o, p.SketchStatus(o))
		} else {
			p.Set(o, p.FeatureStatus(o))
		}
	}
}

// Set records the status of o.
func (p *Picker) Set(o *document.Object, s Status) {
	if _, ok := p.status[o]; !ok {
		p.order = append(p.order, o)
	}
	p.status[o] = s
	logger.Tracef("%s: %s", o.Name(), s)
	if p.OnStatus != nil {
		p.OnStatus(o, s)
	}
}

// Select marks o as preselected by the user.
func (p *Picker) Select(o *document.Object) {
	p.Set(o, p.status[o]|UserSelected)
}

// Status returns the recorded status of o, zero if it was never classified.
func (p *Picker) Status(o *document.Object) Status { return p.status[o] }

// Mask returns the union of every recorded status.
func (p *Picker) Mask() Status {
	var m Status
	for _, s := range p.status {
		m |= s
	}
	return m
}

func (p *Picker) filter(keep func(Status) bool) []*document.Object {
	var out []*document.Object
	for _, o := range p.order {
		if keep(p.status[o]) {
			out = append(out, o)
		}
	}
	return out
}

// WithAny returns the objects having at least one flag of mask, in
// classification order.
func (p *Picker) WithAny(mask Status) []*document.Object {
	return p.filter(func(s Status) bool { return s&mask != 0 })
}

// WithStatus returns the objects having every flag of mask.
func (p *Picker) WithStatus(mask Status) []*document.Object {
	return p.filter(func(s Status) bool { return s.Has(mask) })
}

// WithExactStatus returns the objects whose status equals s.
func (p *Picker) WithExactStatus(s Status) []*document.Object {
	return p.filter(func(x Status) bool { return x == s })
}

func usedByFeature(o *document.Object) bool {
	for _, in := range o.InList() {
		if feature.IsHistoryFeature(in) {
			return true
		}
	}
	return false
}
