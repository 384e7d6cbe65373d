package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/modelviz/pkg/digraph"
)

type graph struct {
	Meta  digraph.Metadata `json:"meta,omitempty"`
	Nodes []node           `json:"nodes"`
	Edges []edge           `json:"edges"`
}

type node struct {
	ID   string           `json:"id"`
	Kind string           `json:"kind,omitempty"`
	Meta digraph.Metadata `json:"meta,omitempty"`
}

type edge struct {
	From string           `json:"from"`
	To   string           `json:"to"`
	Meta digraph.Metadata `json:"meta,omitempty"`
}

// WriteJSON encodes g as indented JSON and writes it to w.
func WriteJSON(g *digraph.Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(toWire(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// MarshalJSON returns the compact JSON encoding of g.
func MarshalJSON(g *digraph.Graph) ([]byte, error) {
	return json.Marshal(toWire(g))
}

// ExportJSON writes g to a JSON file at path.
func ExportJSON(g *digraph.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(g, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func toWire(g *digraph.Graph) graph {
	vertices := g.Vertices()
	edges := g.Edges()
	out := graph{
		Meta:  g.Meta(),
		Nodes: make([]node, len(vertices)),
		Edges: make([]edge, len(edges)),
	}
	for i, v := range vertices {
		n := node{ID: v.ID, Meta: v.Meta}
		if v.Kind != digraph.KindEntity {
			n.Kind = v.Kind.String()
		}
		out.Nodes[i] = n
	}
	for i, e := range edges {
		out.Edges[i] = edge{From: e.From, To: e.To, Meta: e.Meta}
	}
	return out
}
