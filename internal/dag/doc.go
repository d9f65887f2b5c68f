// Package dag implements the incremental computation graph: nodes with
// explicitly declared upstream edges, push-based invalidation, and lazy,
// memoized pull evaluation. A graph is built once (add nodes, add edges,
// finalize), after which the only mutations are invalidations and pulls.
//
// The package performs no locking of its own. A graph belongs to exactly one
// session, which serializes every mutation and pull against it.
package dag
