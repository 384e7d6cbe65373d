// Package digraph provides the directed graph shared by the entity and call
// graph builders.
//
// # Overview
//
// A [Graph] is a set of unique vertex keys plus a list of directed edges.
// Unlike a general-purpose DAG it makes two deliberate promises that the
// builders rely on:
//
//   - Adding a vertex whose key already exists is a no-op ([Graph.AddVertex]
//     is idempotent), so builders can add the same member or method as often
//     as they meet it.
//   - Duplicate edges are kept. A method calling the same target twice
//     yields two edges, one per call instruction.
//
// Vertices and edges are returned in insertion order, which keeps the DOT
// output of [github.com/matzehuels/modelviz/pkg/render/dot] deterministic.
//
// # Basic Usage
//
//	g := digraph.New(nil)
//	g.AddVertex(digraph.Vertex{ID: "Invoice", Kind: digraph.KindEntity})
//	g.AddVertex(digraph.Vertex{ID: "decimal Amount", Kind: digraph.KindMember})
//	g.AddEdge(digraph.Edge{From: "Invoice", To: "decimal Amount"})
//
// # Cycles
//
// Call graphs may contain cycles (A calls B calls A). [Graph.HasCycle]
// reports whether one exists; nothing in the package rejects them.
//
// # Concurrency
//
// Graph instances are not safe for concurrent use.
package digraph
