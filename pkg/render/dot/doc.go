// Package dot serializes directed graphs into Graphviz DOT.
//
// [ToDOT] writes one quoted node statement per vertex and one
// "from" -> "to" statement per edge, both in insertion order, so the same
// graph always produces the same text. Vertex kinds pick the node style:
// entities are bold boxes, members are plain boxes, methods are rounded boxes
// and unresolved call targets are dashed grey ellipses.
//
// A [Document] is what the render pipeline consumes. It is built either from
// a graph ([FromGraph]) or from DOT text produced elsewhere ([FromText]).
//
//	doc := dot.FromGraph(g, dot.Options{})
//	if err := doc.Validate(ctx); err != nil {
//	    return err
//	}
package dot
