package document

import (
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/require"
)

// recorder is a feature whose behaviour tests configure through its fields.
// It outputs Value plus the outputs of its inputs.
type recorder struct {
	calls *[]string
	fail  string
	fault string
	hook  func(o *Object) error
	dirty func(o *Object) bool
}

func (p *recorder) Execute(o *Object) (any, error) {
	*p.calls = append(*p.calls, o.Name())
	if p.fault != "" {
		panic(p.fault)
	}
	if p.hook != nil {
		if err := p.hook(o); err != nil {
			return nil, err
		}
	}
	if p.fail != "" {
		return nil, errors.New(p.fail)
	}
	sum := o.Float("Value")
	inputs := append(o.LinkList("Inputs"), o.Link("Input"), o.Link("BaseFeature"))
	for _, in := range inputs {
		if in == nil {
			continue
		}
		if v, ok := in.Output(); ok {
			sum += v.(float64)
		}
	}
	return sum, nil
}

func (p *recorder) BaseProperty() string { return "BaseFeature" }

type recorderWithDirty struct{ *recorder }

func (p recorderWithDirty) MustExecute(o *Object) bool { return p.dirty(o) }

// body is a minimal tip-tracking container whose output is its tip's.
type body struct{}

func (body) GroupProperty() string { return "Group" }
func (body) TipProperty() string   { return "Tip" }

func (body) Execute(o *Object) (any, error) {
	tip := o.Link("Tip")
	if tip == nil {
		return nil, nil
	}
	out, _ := tip.Output()
	return out, nil
}

type group struct{}

func (group) GroupProperty() string        { return "Group" }
func (group) Execute(*Object) (any, error) { return nil, nil }
func (group) MustExecute(*Object) bool     { return false }

var featureProperties = []PropertySpec{
	{Name: "Value", Kind: KindFloat},
	{Name: "Count", Kind: KindInt, Default: 1},
	{Name: "Note", Kind: KindString},
	{Name: "Enabled", Kind: KindBool, Default: true},
	{Name: "Meta", Kind: KindMap},
	{Name: "Color", Kind: KindColor, Status: NoRecompute},
	{Name: "Serial", Kind: KindString, Status: ReadOnly},
	{Name: "Input", Kind: KindLink},
	{Name: "Inputs", Kind: KindLinkList},
	{Name: "BaseFeature", Kind: KindLink},
	{Name: "Foreign", Kind: KindLink, Status: External},
}

// fixture is a document over a registry of recorder, body and group types.
type fixture struct {
	t     *testing.T
	doc   *Document
	calls []string
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	f := &fixture{t: t}
	f.doc = New("Test", f.registry(), opts...)
	return f
}

func (f *fixture) registry() *Registry {
	reg := NewRegistry()
	reg.MustRegister(
		Type{
			Name:       "Test::Feature",
			Properties: featureProperties,
			New:        func() Executable { return &recorder{calls: &f.calls} },
		},
		Type{
			Name:       "Test::Lazy",
			Properties: featureProperties,
			New: func() Executable {
				return recorderWithDirty{&recorder{calls: &f.calls, dirty: (*Object).DefaultMustExecute}}
			},
		},
		Type{
			Name: "Test::Body",
			Properties: []PropertySpec{
				{Name: "Group", Kind: KindLinkList, Status: Containment | NoRecompute | ReadOnly},
				{Name: "Tip", Kind: KindLink, Status: ReadOnly},
			},
			New: func() Executable { return body{} },
		},
		Type{
			Name: "Test::Group",
			Properties: []PropertySpec{
				{Name: "Group", Kind: KindLinkList, Status: Containment | NoRecompute | ReadOnly},
			},
			New: func() Executable { return group{} },
		},
	)
	return reg
}

func (f *fixture) add(name string, inputs ...*Object) *Object {
	o, err := f.doc.AddObject("Test::Feature", name)
	require.NoError(f.t, err)
	if len(inputs) > 0 {
		require.NoError(f.t, o.Set("Inputs", inputs))
	}
	return o
}

func (f *fixture) addType(typeName, name string) *Object {
	o, err := f.doc.AddObject(typeName, name)
	require.NoError(f.t, err)
	return o
}

func (f *fixture) recompute() *Report {
	f.calls = nil
	r, err := f.doc.Recompute()
	require.NoError(f.t, err)
	return r
}

func recorderOf(o *Object) *recorder {
	switch p := o.Impl().(type) {
	case *recorder:
		return p
	case recorderWithDirty:
		return p.recorder
	}
	return nil
}
