package document

import (
	"container/heap"
)

// inLists maps every object to its dependents, in creation order.
func (d *Document) inLists() map[*Object][]*Object {
	in := make(map[*Object][]*Object, len(d.order))
	for _, x := range d.order {
		for _, t := range x.OutList() {
			in[t] = append(in[t], x)
		}
	}
	return in
}

// markStale flags every Valid object downstream of o as Touched. Their own
// touched flags are left alone: they are only candidates for the next pass.
func (d *Document) markStale(o *Object) {
	in := d.inLists()
	seen := map[*Object]bool{o: true}
	queue := append([]*Object(nil), in[o]...)
	for len(queue) > 0 {
		x := queue[0]
		queue = queue[1:]
		if seen[x] {
			continue
		}
		seen[x] = true
		if x.status == StatusValid {
			x.status = StatusTouched
		}
		queue = append(queue, in[x]...)
	}
}

// downstream returns seeds plus everything reachable through in, limited to
// scope when scope is non-nil.
func downstream(seeds []*Object, in map[*Object][]*Object, scope map[*Object]bool) map[*Object]bool {
	out := make(map[*Object]bool)
	stack := append([]*Object(nil), seeds...)
	for len(stack) > 0 {
		x := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if out[x] || scope != nil && !scope[x] {
			continue
		}
		out[x] = true
		stack = append(stack, in[x]...)
	}
	return out
}

// upstream returns o plus everything it transitively depends on within its
// document.
func upstream(o *Object) map[*Object]bool {
	out := make(map[*Object]bool)
	stack := []*Object{o}
	for len(stack) > 0 {
		x := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if out[x] || x.doc != o.doc {
			continue
		}
		out[x] = true
		stack = append(stack, x.OutList()...)
	}
	return out
}

// cyclic returns the members of every cycle of the subgraph induced by
// nodes, using Tarjan's strongly connected components. A self-loop is a
// cycle of one.
func cyclic(nodes []*Object, in map[*Object]bool) map[*Object]bool {
	var (
		index   = make(map[*Object]int, len(nodes))
		low     = make(map[*Object]int, len(nodes))
		onStack = make(map[*Object]bool, len(nodes))
		stack   []*Object
		next    int
		out     = make(map[*Object]bool)
	)
	var connect func(v *Object)
	connect = func(v *Object) {
		index[v] = next
		low[v] = next
		next++
		stack = append(stack, v)
		onStack[v] = true

		selfLoop := false
		for _, w := range v.OutList() {
			if !in[w] {
				continue
			}
			if w == v {
				selfLoop = true
			}
			if _, seen := index[w]; !seen {
				connect(w)
				low[v] = min(low[v], low[w])
			} else if onStack[w] {
				low[v] = min(low[v], index[w])
			}
		}
		if low[v] != index[v] {
			return
		}
		var scc []*Object
		for {
			w := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[w] = false
			scc = append(scc, w)
			if w == v {
				break
			}
		}
		if len(scc) > 1 || selfLoop {
			for _, w := range scc {
				out[w] = true
			}
		}
	}
	for _, v := range nodes {
		if _, seen := index[v]; !seen {
			connect(v)
		}
	}
	return out
}

// topoOrder sorts nodes so that every object follows its dependencies
// among nodes. Ready objects are taken in creation order. nodes must be
// acyclic.
func topoOrder(nodes []*Object, in map[*Object]bool) []*Object {
	indegree := make(map[*Object]int, len(nodes))
	dependents := make(map[*Object][]*Object, len(nodes))
	for _, x := range nodes {
		indegree[x] += 0
		for _, t := range x.OutList() {
			if !in[t] || t == x {
				continue
			}
			indegree[x]++
			dependents[t] = append(dependents[t], x)
		}
	}
	ready := &bySeq{}
	for _, x := range nodes {
		if indegree[x] == 0 {
			heap.Push(ready, x)
		}
	}
	order := make([]*Object, 0, len(nodes))
	for ready.Len() > 0 {
		x := heap.Pop(ready).(*Object)
		order = append(order, x)
		for _, y := range dependents[x] {
			indegree[y]--
			if indegree[y] == 0 {
				heap.Push(ready, y)
			}
		}
	}
	return order
}

// bySeq is a min-heap of objects keyed by creation sequence.
type bySeq []*Object

func (h bySeq) Len() int           { return len(h) }
func (h bySeq) Less(i, j int) bool { return h[i].seq < h[j].seq }
func (h bySeq) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *bySeq) Push(x any)        { *h = append(*h, x.(*Object)) }
func (h *bySeq) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
