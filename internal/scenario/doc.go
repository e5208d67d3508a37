// Package scenario loads declarative graph scenarios from HCL files.
//
// A scenario names the nodes and edges of a graph and a script of acts to
// run against it once built: releasing owning handles, asserting which nodes
// are still obtainable, walking the graph, mutating edges, and poisoning
// payloads. The HCL-specific structures are decoded first and then
// translated into the format-agnostic model the builder and app consume.
package scenario
