package feature

import (
	"testing"

	"github.com/google/uuid"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/paracad/pkg/document"
	"github.com/chazu/paracad/pkg/kernel"
	"github.com/chazu/paracad/pkg/kernel/sdfx"
)

type fixture struct {
	t   *testing.T
	doc *document.Document
}

func newFixture(t *testing.T) *fixture {
	reg, err := NewRegistry(sdfx.New(sdfx.WithMeshCells(32)))
	require.NoError(t, err)
	return &fixture{t: t, doc: document.New("Test", reg)}
}

func (f *fixture) add(typeName, name string, props map[string]any) *document.Object {
	o, err := f.doc.AddObject(typeName, name)
	require.NoError(f.t, err)
	for k, v := range props {
		require.NoError(f.t, o.Set(k, v), "%s.%s", name, k)
	}
	return o
}

func (f *fixture) recompute() *document.Report {
	r, err := f.doc.Recompute()
	require.NoError(f.t, err)
	return r
}

func (f *fixture) body(name string) *document.Container {
	c, err := document.AsContainer(f.add(TypeBody, name, nil))
	require.NoError(f.t, err)
	return c
}

func bounds(t *testing.T, o *document.Object) (min, max [3]float64) {
	t.Helper()
	s, ok := SolidOf(o)
	require.True(t, ok, "%s has no solid", o.Name())
	return s.BoundingBox()
}

func TestRegisterTwiceFails(t *testing.T) {
	reg, err := NewRegistry(sdfx.New())
	require.NoError(t, err)
	assert.Len(t, reg.Types(), 11)
	err = Register(reg, sdfx.New())
	assert.True(t, errors.Is(err, errors.AlreadyExists), "%v", err)
}

func TestSketchPadPocketBody(t *testing.T) {
	f := newFixture(t)
	body := f.body("Body")
	sketch := f.add(TypeSketch, "Sketch", map[string]any{"Width": 20.0, "Height": 10.0})
	require.NoError(t, body.AddMember(sketch))
	pad := f.add(TypePad, "Pad", nil)
	require.NoError(t, pad.Property("Profile").SetLink([]*document.Object{sketch}, [][]string{{"Face1"}}))
	require.NoError(t, body.InsertFeature(pad))

	hole := f.add(TypeSketch, "HoleSketch", map[string]any{"Shape": ShapeCircle, "Radius": 2.0, "Z": 10.0})
	require.NoError(t, body.AddMember(hole))
	pocket := f.add(TypePocket, "Pocket", map[string]any{"Profile": hole, "Length": 4.0})
	require.NoError(t, body.InsertFeature(pocket))

	r := f.recompute()
	require.True(t, r.OK(), r.String())
	assert.Equal(t, []string{"Sketch", "Pad", "HoleSketch", "Pocket", "Body"}, r.Order)

	min, max := bounds(t, pad)
	assert.InDelta(t, -10, min[0], 0.01)
	assert.InDelta(t, 0, min[2], 0.01)
	assert.InDelta(t, 10, max[2], 0.01)

	s, ok := SolidOf(body.Object())
	require.True(t, ok)
	ps, _ := SolidOf(pocket)
	assert.Same(t, ps, s)
	assert.Same(t, body.Object(), BodyOf(pocket))
	assert.True(t, IsSketch(sketch))
	assert.True(t, IsHistoryFeature(pocket))
	assert.False(t, IsHistoryFeature(sketch))

	// An empty sketch fails the pad and blocks everything built on it.
	require.NoError(t, sketch.Set("Width", 0.0))
	r = f.recompute()
	assert.Equal(t, document.StatusValid, sketch.Status())
	assert.Equal(t, document.StatusError, pad.Status())
	assert.Equal(t, "empty profile", pad.Reason())
	assert.Equal(t, document.StatusAborted, pocket.Status())
	assert.Equal(t, document.StatusAborted, body.Object().Status())
	assert.Equal(t, 1, r.Errored)
	assert.Equal(t, 2, r.Aborted)

	require.NoError(t, sketch.Set("Width", 30.0))
	r = f.recompute()
	require.True(t, r.OK(), r.String())
	min, max = bounds(t, body.Object())
	assert.InDelta(t, -15, min[0], 0.01)
	assert.InDelta(t, 15, max[0], 0.01)
}

func TestPadReversedAndLength(t *testing.T) {
	f := newFixture(t)
	sketch := f.add(TypeSketch, "Sketch", map[string]any{"Width": 4.0, "Height": 4.0, "X": 2.0, "Y": 2.0})
	pad := f.add(TypePad, "Pad", map[string]any{"Profile": sketch, "Length": 3.0, "Reversed": true})
	f.recompute()

	min, max := bounds(t, pad)
	assert.InDelta(t, 0, min[0], 0.01)
	assert.InDelta(t, 4, max[1], 0.01)
	assert.InDelta(t, -3, min[2], 0.01)
	assert.InDelta(t, 0, max[2], 0.01)

	require.NoError(t, pad.Set("Length", -1.0))
	f.recompute()
	assert.Equal(t, document.StatusError, pad.Status())
	assert.Contains(t, pad.Reason(), "length must be positive")
}

func TestPadFailures(t *testing.T) {
	f := newFixture(t)
	cube := f.add(TypeBox, "Cube", nil)
	noProfile := f.add(TypePad, "NoProfile", nil)
	notSketch := f.add(TypePad, "NotSketch", map[string]any{"Profile": cube})
	sketch := f.add(TypeSketch, "Sketch", map[string]any{"Width": 1.0, "Height": 1.0})
	lonePocket := f.add(TypePocket, "LonePocket", map[string]any{"Profile": sketch})
	badSketch := f.add(TypeSketch, "BadSketch", map[string]any{"Shape": "hexagon"})
	padOnBad := f.add(TypePad, "PadOnBad", map[string]any{"Profile": badSketch})

	f.recompute()
	assert.Equal(t, "no profile", noProfile.Reason())
	assert.Equal(t, "Cube is not a sketch", notSketch.Reason())
	assert.Equal(t, "nothing to cut from", lonePocket.Reason())
	assert.Equal(t, document.StatusError, badSketch.Status())
	assert.Contains(t, badSketch.Reason(), "hexagon")
	assert.Equal(t, document.StatusAborted, padOnBad.Status())
	assert.Equal(t, document.StatusValid, cube.Status())
}

func TestPrimitivesArePlaced(t *testing.T) {
	f := newFixture(t)
	b := f.add(TypeBox, "Box", map[string]any{"Length": 2.0, "Width": 3.0, "Height": 4.0, "X": 10.0})
	c := f.add(TypeCylinder, "Cylinder", map[string]any{"Radius": 1.0, "Height": 5.0, "Z": -5.0})
	bad := f.add(TypeBox, "Flat", map[string]any{"Height": 0.0})
	f.recompute()

	min, max := bounds(t, b)
	assert.InDelta(t, 10, min[0], 0.01)
	assert.InDelta(t, 12, max[0], 0.01)
	assert.InDelta(t, 4, max[2], 0.01)

	min, max = bounds(t, c)
	assert.InDelta(t, -5, min[2], 0.01)
	assert.InDelta(t, 0, max[2], 0.01)

	assert.Equal(t, document.StatusError, bad.Status())
	assert.Contains(t, bad.Reason(), kernel.ErrEmptyShape.Error())
}

func TestPrimitiveOrientation(t *testing.T) {
	f := newFixture(t)
	b := f.add(TypeBox, "Box", map[string]any{"Length": 2.0, "Width": 3.0, "Height": 4.0, "RotZ": 90.0})
	moved := f.add(TypeBox, "Moved", map[string]any{
		"Length": 2.0, "Width": 3.0, "Height": 4.0, "RotZ": 90.0, "X": 10.0,
	})
	c := f.add(TypeCylinder, "Lying", map[string]any{"Radius": 1.0, "Height": 6.0, "RotY": 90.0})
	f.recompute()

	min, max := bounds(t, b)
	assert.InDelta(t, -3, min[0], 0.01)
	assert.InDelta(t, 0, max[0], 0.01)
	assert.InDelta(t, 0, min[1], 0.01)
	assert.InDelta(t, 2, max[1], 0.01)
	assert.InDelta(t, 4, max[2], 0.01)

	min, max = bounds(t, moved)
	assert.InDelta(t, 7, min[0], 0.01)
	assert.InDelta(t, 10, max[0], 0.01)

	// A cylinder turned onto its side is longer in X than it is tall.
	min, max = bounds(t, c)
	assert.InDelta(t, 6, max[0]-min[0], 0.01)
	assert.InDelta(t, 2, max[2]-min[2], 0.01)

	s, _ := SolidOf(b)
	assert.InDelta(t, 24, kernel.Volume(s), 0.05)
}

func TestLoft(t *testing.T) {
	f := newFixture(t)
	bottom := f.add(TypeSketch, "Bottom", map[string]any{"Width": 10.0, "Height": 10.0})
	middle := f.add(TypeSketch, "Middle", map[string]any{"Shape": ShapeCircle, "Radius": 3.0, "Z": 10.0})
	top := f.add(TypeSketch, "Top", map[string]any{"Width": 4.0, "Height": 4.0, "Z": 25.0})
	lft := f.add(TypeAdditiveLoft, "Loft", map[string]any{
		"Profile":  bottom,
		"Sections": []*document.Object{middle, top},
	})
	f.recompute()
	require.Equal(t, document.StatusValid, lft.Status(), lft.Reason())
	min, max := bounds(t, lft)
	assert.InDelta(t, 0, min[2], 0.01)
	assert.InDelta(t, 25, max[2], 0.01)

	require.NoError(t, lft.Set("Ruled", true))
	assert.True(t, lft.MustExecute())
	f.recompute()
	assert.False(t, lft.MustExecute())
	assert.Equal(t, document.StatusValid, lft.Status())

	require.NoError(t, lft.Set("Sections", []*document.Object{}))
	assert.True(t, lft.Property("Sections").IsTouched())
	f.recompute()
	assert.Equal(t, "at least two sections are needed", lft.Reason())

	require.NoError(t, lft.Set("Sections", []*document.Object{top}))
	require.NoError(t, lft.Set("Closed", true))
	f.recompute()
	assert.Equal(t, "a closed loft needs at least three sections", lft.Reason())

	flat := f.add(TypeSketch, "Flat", map[string]any{"Width": 1.0, "Height": 1.0})
	require.NoError(t, lft.Set("Closed", false))
	require.NoError(t, lft.Set("Sections", []*document.Object{flat}))
	f.recompute()
	assert.Contains(t, lft.Reason(), "same plane")
}

func TestSubtractiveLoft(t *testing.T) {
	f := newFixture(t)
	block := f.add(TypeBox, "Block", map[string]any{"Length": 20.0, "Width": 20.0, "Height": 20.0})
	a := f.add(TypeSketch, "A", map[string]any{"Width": 4.0, "Height": 4.0, "X": 10.0, "Y": 10.0, "Z": 5.0})
	b := f.add(TypeSketch, "B", map[string]any{"Shape": ShapeCircle, "Radius": 1.0, "X": 10.0, "Y": 10.0, "Z": 25.0})
	cut := f.add(TypeSubtractiveLoft, "Cut", map[string]any{
		"Profile": a, "Sections": []*document.Object{b}, "BaseFeature": block,
	})
	r := f.recompute()
	require.True(t, r.OK(), r.String())
	min, max := bounds(t, cut)
	assert.InDelta(t, 0, min[0], 0.01)
	assert.InDelta(t, 20, max[2], 0.01)
}

func TestBoolean(t *testing.T) {
	f := newFixture(t)
	a := f.add(TypeBox, "A", nil)
	b := f.add(TypeBox, "B", map[string]any{"X": 5.0})
	far := f.add(TypeBox, "Far", map[string]any{"Z": 100.0})

	tests := []struct {
		name   string
		props  map[string]any
		reason string
		maxX   float64
	}{
		{"fuse", map[string]any{"Base": a, "Tools": []*document.Object{b}}, "", 15},
		{"cut", map[string]any{"Base": a, "Tools": []*document.Object{b}, "Operation": OpCut}, "", 10},
		{"common", map[string]any{"Base": a, "Tools": []*document.Object{b}, "Operation": OpCommon}, "", 0},
		{"disjoint", map[string]any{"Base": a, "Tools": []*document.Object{far}, "Operation": OpCommon},
			"boolean produced empty result: empty shape", 0},
		{"bad op", map[string]any{"Base": a, "Tools": []*document.Object{b}, "Operation": "Xor"},
			`boolean operation "Xor" not valid`, 0},
		{"no base", map[string]any{"Tools": []*document.Object{b}}, "no base shape", 0},
		{"no tools", map[string]any{"Base": a}, "no tool shapes", 0},
	}
	objs := make([]*document.Object, len(tests))
	for i, tt := range tests {
		objs[i] = f.add(TypeBoolean, "", tt.props)
	}
	f.recompute()
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := objs[i]
			if tt.reason != "" {
				assert.Equal(t, document.StatusError, o.Status())
				assert.Equal(t, tt.reason, o.Reason())
				return
			}
			require.Equal(t, document.StatusValid, o.Status(), o.Reason())
			_, max := bounds(t, o)
			if tt.maxX != 0 {
				assert.InDelta(t, tt.maxX, max[0], 0.01)
			}
		})
	}
}

func TestPartMetadata(t *testing.T) {
	f := newFixture(t)
	p1 := f.add(TypePart, "", nil)
	p2 := f.add(TypePart, "", nil)
	assert.Equal(t, "Part001", p2.Name())

	_, err := uuid.Parse(p1.Text("Uid"))
	require.NoError(t, err)
	assert.NotEqual(t, p1.Text("Uid"), p2.Text("Uid"))
	assert.True(t, errors.Is(p1.Set("Uid", "x"), document.ErrReadOnly))

	require.NoError(t, p1.Set("Material", map[string]string{"Name": "Oak"}))
	require.NoError(t, p1.Set("License", "CC-BY-4.0"))

	c, err := document.AsContainer(p1)
	require.NoError(t, err)
	body := f.body("Body")
	require.NoError(t, c.AddMember(body.Object()))
	pad := f.add(TypePad, "Pad", nil)
	require.NoError(t, body.InsertFeature(pad))
	assert.Same(t, p1, PartOf(pad))
	assert.Same(t, p1, PartOf(body.Object()))
	assert.Nil(t, PartOf(p2))
	assert.Nil(t, BodyOf(body.Object()))

	r := f.recompute()
	assert.Equal(t, 2, r.Skipped)
	assert.Equal(t, document.StatusValid, p1.Status())
}

func TestExpressionDrivenPad(t *testing.T) {
	f := newFixture(t)
	sketch := f.add(TypeSketch, "Sketch", map[string]any{"Width": 6.0, "Height": 6.0})
	pad := f.add(TypePad, "Pad", map[string]any{"Profile": sketch})
	require.NoError(t, pad.SetExpression("Length", `(* 2 (ref "Sketch" "Width"))`))

	f.recompute()
	assert.Equal(t, 12.0, pad.Float("Length"))
	_, max := bounds(t, pad)
	assert.InDelta(t, 12, max[2], 0.01)

	require.NoError(t, sketch.Set("Width", 2.0))
	f.recompute()
	_, max = bounds(t, pad)
	assert.InDelta(t, 4, max[2], 0.01)
}
