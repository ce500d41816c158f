// Package tessellate walks a recomputed document and produces triangle
// meshes using a geometry kernel. One mesh is produced per visible solid:
// a solid consumed by another solid-bearing object (a pad under its pocket,
// a tip under its body) is represented by its consumer.
package tessellate

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/juju/errors"
	"github.com/juju/loggo"

	"github.com/chazu/paracad/pkg/document"
	"github.com/chazu/paracad/pkg/feature"
	"github.com/chazu/paracad/pkg/kernel"
)

var logger = loggo.GetLogger("paracad.tessellate")

// DefaultCacheSize is the number of meshes kept between passes.
const DefaultCacheSize = 128

// cacheKey identifies one output of one object. The revision changes on
// every successful execute, so stale entries are never hit.
type cacheKey struct {
	obj      *document.Object
	revision uint64
}

// Stats counts cache lookups since the mesher was created.
type Stats struct {
	Hits   int
	Misses int
}

// Mesher tessellates documents, reusing meshes of unchanged objects.
// Returned meshes are shared with the cache and must not be modified.
type Mesher struct {
	k     kernel.Kernel
	cache *lru.Cache[cacheKey, *kernel.Mesh]
	stats Stats
}

// New returns a mesher keeping at most size meshes.
func New(k kernel.Kernel, size int) (*Mesher, error) {
	if k == nil {
		return nil, errors.NotValidf("nil kernel")
	}
	cache, err := lru.New[cacheKey, *kernel.Mesh](size)
	if err != nil {
		return nil, errors.Annotatef(err, "mesh cache of size %d", size)
	}
	return &Mesher{k: k, cache: cache}, nil
}

// Tessellate returns one mesh per visible solid of doc, in creation order.
// The document is only read.
func (m *Mesher) Tessellate(doc *document.Document) ([]*kernel.Mesh, error) {
	if doc == nil {
		return nil, nil
	}
	var meshes []*kernel.Mesh
	for _, o := range Visible(doc) {
		mesh, err := m.Mesh(o)
		if err != nil {
			return nil, errors.Annotatef(err, "tessellate %s", doc.Name())
		}
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}

// Mesh returns the mesh of the solid output of o.
func (m *Mesher) Mesh(o *document.Object) (*kernel.Mesh, error) {
	s, ok := feature.SolidOf(o)
	if !ok {
		return nil, errors.Annotatef(kernel.ErrEmptyShape, "%s has no solid", o.Name())
	}
	key := cacheKey{obj: o, revision: o.Revision()}
	if mesh, ok := m.cache.Get(key); ok {
		m.stats.Hits++
		return mesh, nil
	}
	m.stats.Misses++
	mesh, err := m.k.ToMesh(s)
	if err != nil {
		return nil, errors.Annotatef(err, "meshing %s", o.Name())
	}
	mesh.Object = o.Name()
	m.cache.Add(key, mesh)
	logger.Debugf("meshed %s rev %d: %d triangles", o.Name(), key.revision, mesh.TriangleCount())
	return mesh, nil
}

// Stats returns the cache counters.
func (m *Mesher) Stats() Stats { return m.stats }

// Len returns the number of cached meshes.
func (m *Mesher) Len() int { return m.cache.Len() }

// Purge drops every cached mesh.
func (m *Mesher) Purge() { m.cache.Purge() }

// Visible returns the Valid objects with a solid output that no other
// object with a solid output depends on.
func Visible(doc *document.Document) []*document.Object {
	var out []*document.Object
	for _, o := range doc.Objects() {
		if o.Status() != document.StatusValid {
			continue
		}
		if _, ok := feature.SolidOf(o); !ok {
			continue
		}
		if !consumed(o) {
			out = append(out, o)
		}
	}
	return out
}

func consumed(o *document.Object) bool {
	for _, in := range o.InList() {
		if _, ok := feature.SolidOf(in); ok {
			return true
		}
	}
	return false
}
