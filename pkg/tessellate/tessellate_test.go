package tessellate_test

import (
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/paracad/pkg/document"
	"github.com/chazu/paracad/pkg/feature"
	"github.com/chazu/paracad/pkg/kernel"
	"github.com/chazu/paracad/pkg/kernel/sdfx"
	"github.com/chazu/paracad/pkg/tessellate"
)

// newKernel returns a coarse sdfx kernel for fast tests.
func newKernel() kernel.Kernel {
	return sdfx.New(sdfx.WithMeshCells(24))
}

func newDoc(t *testing.T, k kernel.Kernel) *document.Document {
	reg, err := feature.NewRegistry(k)
	require.NoError(t, err)
	return document.New("Mesh", reg)
}

func add(t *testing.T, doc *document.Document, typ, name string, props map[string]any) *document.Object {
	o, err := doc.AddObject(typ, name)
	require.NoError(t, err)
	for k, v := range props {
		require.NoError(t, o.Set(k, v))
	}
	return o
}

func recompute(t *testing.T, doc *document.Document) *document.Report {
	r, err := doc.Recompute()
	require.NoError(t, err)
	return r
}

func objectNames(meshes []*kernel.Mesh) []string {
	var out []string
	for _, m := range meshes {
		out = append(out, m.Object)
	}
	return out
}

func TestNilDocument(t *testing.T) {
	m, err := tessellate.New(newKernel(), 4)
	require.NoError(t, err)
	meshes, err := m.Tessellate(nil)
	require.NoError(t, err)
	assert.Empty(t, meshes)
}

func TestNewValidation(t *testing.T) {
	_, err := tessellate.New(nil, 4)
	assert.True(t, errors.Is(err, errors.NotValid), "%v", err)
	_, err = tessellate.New(newKernel(), 0)
	assert.Error(t, err)
}

func TestConsumedSolidsAreHidden(t *testing.T) {
	k := newKernel()
	doc := newDoc(t, k)
	bodyObj := add(t, doc, feature.TypeBody, "Body", nil)
	body, err := document.AsContainer(bodyObj)
	require.NoError(t, err)
	sketch := add(t, doc, feature.TypeSketch, "Sketch", map[string]any{"Width": 10.0, "Height": 10.0})
	pad := add(t, doc, feature.TypePad, "Pad", map[string]any{"Profile": sketch})
	require.NoError(t, body.InsertFeature(pad))
	hole := add(t, doc, feature.TypeSketch, "Hole", map[string]any{"Shape": feature.ShapeCircle, "Radius": 2.0, "Z": 10.0})
	pocket := add(t, doc, feature.TypePocket, "Pocket", map[string]any{"Profile": hole})
	require.NoError(t, body.InsertFeature(pocket))
	add(t, doc, feature.TypeBox, "Loose", map[string]any{"X": 50.0})
	r := recompute(t, doc)
	require.True(t, r.OK(), r.String())

	m, err := tessellate.New(k, tessellate.DefaultCacheSize)
	require.NoError(t, err)
	meshes, err := m.Tessellate(doc)
	require.NoError(t, err)
	assert.Equal(t, []string{"Body", "Loose"}, objectNames(meshes))
	for _, mesh := range meshes {
		assert.False(t, mesh.IsEmpty(), mesh.Object)
		assert.Equal(t, mesh.VertexCount(), len(mesh.Normals)/3)
	}

	// A failing pocket leaves the pad visible and the body without output.
	require.NoError(t, hole.Set("Radius", 0.0))
	recompute(t, doc)
	meshes, err = m.Tessellate(doc)
	require.NoError(t, err)
	assert.Equal(t, []string{"Pad", "Loose"}, objectNames(meshes))
}

func TestCacheReuse(t *testing.T) {
	k := newKernel()
	doc := newDoc(t, k)
	a := add(t, doc, feature.TypeBox, "A", nil)
	add(t, doc, feature.TypeCylinder, "B", map[string]any{"X": 30.0})
	recompute(t, doc)

	m, err := tessellate.New(k, 8)
	require.NoError(t, err)
	first, err := m.Tessellate(doc)
	require.NoError(t, err)
	assert.Equal(t, tessellate.Stats{Misses: 2}, m.Stats())

	second, err := m.Tessellate(doc)
	require.NoError(t, err)
	assert.Equal(t, tessellate.Stats{Hits: 2, Misses: 2}, m.Stats())
	assert.Same(t, first[0], second[0])

	// A recompute of A invalidates only its mesh.
	require.NoError(t, a.Set("Height", 20.0))
	recompute(t, doc)
	third, err := m.Tessellate(doc)
	require.NoError(t, err)
	assert.Equal(t, tessellate.Stats{Hits: 3, Misses: 3}, m.Stats())
	assert.NotSame(t, first[0], third[0])
	assert.Same(t, first[1], third[1])
	assert.Equal(t, 3, m.Len())

	m.Purge()
	assert.Zero(t, m.Len())
}

func TestCacheEviction(t *testing.T) {
	k := newKernel()
	doc := newDoc(t, k)
	for i := 0; i < 3; i++ {
		add(t, doc, feature.TypeBox, "", map[string]any{"X": float64(i) * 20})
	}
	recompute(t, doc)

	m, err := tessellate.New(k, 2)
	require.NoError(t, err)
	_, err = m.Tessellate(doc)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())
}

func TestMeshWithoutSolid(t *testing.T) {
	k := newKernel()
	doc := newDoc(t, k)
	sketch := add(t, doc, feature.TypeSketch, "Sketch", nil)
	recompute(t, doc)

	m, err := tessellate.New(k, 2)
	require.NoError(t, err)
	_, err = m.Mesh(sketch)
	assert.True(t, errors.Is(err, kernel.ErrEmptyShape), "%v", err)
	assert.Empty(t, tessellate.Visible(doc))
}
