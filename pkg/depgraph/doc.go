// Package depgraph builds the two directed graphs modelviz draws.
//
// [Entities] turns an entity map into an entity→member graph: one vertex per
// entity, one vertex per distinct member string ("<Type> <Name>"), and one
// edge from each entity to each of its members. Identical member strings of
// different entities share a vertex.
//
// [Calls] walks the call graph of a module from an entry method. Every call
// or virtual-call instruction of a visited method is recorded as an edge from
// the caller to the callee before the walk descends. The walk only descends
// into a callee that
//
//   - belongs to a different module than the method making the call,
//   - resolves to a method with a body, and
//   - has not been visited before.
//
// Calls that do not resolve become [digraph.KindExternal] leaves. Each method
// is visited at most once, so the walk terminates on recursive and mutually
// recursive code. The walk uses an explicit stack instead of recursion, so
// deep call chains cannot exhaust the goroutine stack.
package depgraph
