package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/modelviz/pkg/digraph"
)

// ReadJSON decodes a JSON graph from r.
//
// It returns an error if the JSON is malformed, a node ID is empty or
// repeated, or an edge references an unknown node. Errors name the offending
// node or edge and wrap the digraph sentinel errors. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*digraph.Graph, error) {
	var data graph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	g := digraph.New(data.Meta)
	for _, n := range data.Nodes {
		if g.HasVertex(n.ID) {
			return nil, fmt.Errorf("node %s: duplicate id", n.ID)
		}
		v := digraph.Vertex{ID: n.ID, Kind: digraph.ParseKind(n.Kind), Meta: n.Meta}
		if err := g.AddVertex(v); err != nil {
			return nil, fmt.Errorf("node %q: %w", n.ID, err)
		}
	}
	for _, e := range data.Edges {
		if err := g.AddEdge(digraph.Edge{From: e.From, To: e.To, Meta: e.Meta}); err != nil {
			return nil, fmt.Errorf("edge %s->%s: %w", e.From, e.To, err)
		}
	}
	return g, nil
}

// UnmarshalJSON decodes a graph from data.
func UnmarshalJSON(data []byte) (*digraph.Graph, error) {
	return ReadJSON(bytes.NewReader(data))
}

// ImportJSON reads the JSON graph file at path.
func ImportJSON(path string) (*digraph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
