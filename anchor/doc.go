// Package anchor implements shared ownership for arbitrary, possibly cyclic,
// user-defined graphs without a tracing garbage collector.
//
// A graph node lives in a shared cell. Code that must keep a node alive holds
// a Node (an owning handle); edges between nodes are stored as Refs
// (non-owning references) inside the user payload, so cycles carry no
// ownership weight. When the last owning handle anywhere in a connected
// component is released, the whole component is collected together: the
// collector walks the symmetric closure of the payload's declared adjacency
// (the Neighbors capability) and tears every cell down exactly once.
//
// The package also ships generic depth-first and breadth-first walkers over
// the same Neighbors capability, exposed as lazy iter.Seq sequences.
package anchor
