package digraph

import (
	"errors"
	"slices"
)

var (
	// ErrInvalidVertexID is returned by [Graph.AddVertex] when the vertex ID
	// is empty. All vertices must have non-empty identifiers.
	ErrInvalidVertexID = errors.New("vertex ID must not be empty")

	// ErrUnknownSource is returned by [Graph.AddEdge] when the From vertex
	// does not exist.
	ErrUnknownSource = errors.New("unknown source vertex")

	// ErrUnknownTarget is returned by [Graph.AddEdge] when the To vertex
	// does not exist.
	ErrUnknownTarget = errors.New("unknown target vertex")
)

// Metadata stores arbitrary key-value pairs attached to vertices, edges or
// the graph. Metadata maps are never nil once stored in a graph.
type Metadata map[string]any

// Kind distinguishes what a vertex stands for. It only affects presentation.
type Kind int

const (
	// KindEntity is a model type selected by the entity filter.
	KindEntity Kind = iota
	// KindMember is a normalized field descriptor of an entity.
	KindMember
	// KindMethod is a method with a body inside an analyzed module.
	KindMethod
	// KindExternal is a call target that could not be resolved to a body.
	KindExternal
)

var kindNames = map[Kind]string{
	KindEntity:   "entity",
	KindMember:   "member",
	KindMethod:   "method",
	KindExternal: "external",
}

// String returns the lowercase kind name used in JSON exports.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// ParseKind is the inverse of [Kind.String]. Unknown names map to KindEntity.
func ParseKind(s string) Kind {
	for k, name := range kindNames {
		if name == s {
			return k
		}
	}
	return KindEntity
}

// Vertex is a node of the graph. ID is both the unique key and the default
// display label.
type Vertex struct {
	ID   string
	Kind Kind
	Meta Metadata
}

// Edge is a directed connection between two existing vertices.
type Edge struct {
	From string
	To   string
	Meta Metadata
}

// Graph is a directed graph with idempotent vertex insertion.
//
// The zero value is not usable - use New to create a valid Graph.
type Graph struct {
	vertices map[string]*Vertex
	order    []string
	edges    []Edge
	outgoing map[string][]string
	incoming map[string][]string
	meta     Metadata
}

// New creates an empty graph with optional graph-level metadata.
func New(meta Metadata) *Graph {
	if meta == nil {
		meta = Metadata{}
	}
	return &Graph{
		vertices: make(map[string]*Vertex),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		meta:     meta,
	}
}

// Meta returns the graph-level metadata map. It is never nil.
func (g *Graph) Meta() Metadata { return g.meta }

// AddVertex adds v unless a vertex with the same ID already exists, in which
// case the graph is left unchanged and nil is returned. It returns
// ErrInvalidVertexID for an empty ID.
func (g *Graph) AddVertex(v Vertex) error {
	if v.ID == "" {
		return ErrInvalidVertexID
	}
	if _, exists := g.vertices[v.ID]; exists {
		return nil
	}
	if v.Meta == nil {
		v.Meta = Metadata{}
	}
	g.vertices[v.ID] = &v
	g.order = append(g.order, v.ID)
	return nil
}

// AddEdge appends a directed edge between two existing vertices.
// Multiple edges between the same vertices are allowed and kept.
func (g *Graph) AddEdge(e Edge) error {
	if _, ok := g.vertices[e.From]; !ok {
		return ErrUnknownSource
	}
	if _, ok := g.vertices[e.To]; !ok {
		return ErrUnknownTarget
	}
	if e.Meta == nil {
		e.Meta = Metadata{}
	}
	g.edges = append(g.edges, e)
	g.outgoing[e.From] = append(g.outgoing[e.From], e.To)
	g.incoming[e.To] = append(g.incoming[e.To], e.From)
	return nil
}

// Connect adds both vertices (idempotently) and an edge between them.
func (g *Graph) Connect(from, to Vertex) error {
	if err := g.AddVertex(from); err != nil {
		return err
	}
	if err := g.AddVertex(to); err != nil {
		return err
	}
	return g.AddEdge(Edge{From: from.ID, To: to.ID})
}

// Vertex returns the vertex with the given ID and true, or nil and false.
// The returned pointer refers to the vertex stored in the graph.
func (g *Graph) Vertex(id string) (*Vertex, bool) {
	v, ok := g.vertices[id]
	return v, ok
}

// HasVertex reports whether a vertex with the given ID exists.
func (g *Graph) HasVertex(id string) bool {
	_, ok := g.vertices[id]
	return ok
}

// Vertices returns all vertices in insertion order.
func (g *Graph) Vertices() []*Vertex {
	out := make([]*Vertex, len(g.order))
	for i, id := range g.order {
		out[i] = g.vertices[id]
	}
	return out
}

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// VertexCount returns the number of vertices.
func (g *Graph) VertexCount() int { return len(g.vertices) }

// EdgeCount returns the number of edges, duplicates included.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Children returns the targets of edges leaving id, one entry per edge.
// The returned slice should be treated as read-only.
func (g *Graph) Children(id string) []string { return g.outgoing[id] }

// Parents returns the sources of edges entering id, one entry per edge.
// The returned slice should be treated as read-only.
func (g *Graph) Parents(id string) []string { return g.incoming[id] }

// OutDegree returns the number of edges leaving id.
func (g *Graph) OutDegree(id string) int { return len(g.outgoing[id]) }

// InDegree returns the number of edges entering id.
func (g *Graph) InDegree(id string) int { return len(g.incoming[id]) }

// Sources returns vertices without incoming edges, in insertion order.
func (g *Graph) Sources() []*Vertex {
	var out []*Vertex
	for _, id := range g.order {
		if len(g.incoming[id]) == 0 {
			out = append(out, g.vertices[id])
		}
	}
	return out
}

// Sinks returns vertices without outgoing edges, in insertion order.
func (g *Graph) Sinks() []*Vertex {
	var out []*Vertex
	for _, id := range g.order {
		if len(g.outgoing[id]) == 0 {
			out = append(out, g.vertices[id])
		}
	}
	return out
}

// HasCycle reports whether the graph contains a directed cycle.
// It runs an iterative white/gray/black depth-first search in O(V+E).
func (g *Graph) HasCycle() bool {
	const (
		white = iota
		gray
		black
	)

	type frame struct {
		id   string
		next int
	}

	color := make(map[string]int, len(g.vertices))
	for _, root := range g.order {
		if color[root] != white {
			continue
		}
		color[root] = gray
		stack := []frame{{id: root}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			children := g.outgoing[top.id]
			if top.next == len(children) {
				color[top.id] = black
				stack = stack[:len(stack)-1]
				continue
			}
			child := children[top.next]
			top.next++
			switch color[child] {
			case white:
				color[child] = gray
				stack = append(stack, frame{id: child})
			case gray:
				return true
			}
		}
	}
	return false
}
