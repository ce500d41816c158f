// Package document implements the parametric document model: typed objects
// holding typed properties, a dependency graph derived from link properties,
// and a recompute scheduler that re-evaluates only what changed.
//
// A Document is single-threaded. All mutation and every recompute pass run
// on the calling goroutine; an Executable may use goroutines internally but
// must return before the scheduler moves to the next object.
package document
