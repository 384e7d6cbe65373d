package dot

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/modelviz/pkg/digraph"
)

// Options configures DOT output.
type Options struct {
	// Detailed appends vertex metadata to node labels.
	Detailed bool
	// RankDir is the layout direction (TB, LR, BT, RL). Defaults to LR.
	RankDir string
	// Plain omits all styling, producing bare node and edge statements.
	Plain bool
}

// ToDOT converts a graph to DOT text.
func ToDOT(g *digraph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	if !opts.Plain {
		rankdir := opts.RankDir
		if rankdir == "" {
			rankdir = "LR"
		}
		fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
		buf.WriteString("  bgcolor=\"transparent\";\n")
		buf.WriteString("  node [shape=box, style=\"filled\", fillcolor=white, fontname=\"Helvetica\", fontsize=12];\n")
		buf.WriteString("  edge [color=\"#555555\"];\n")
		buf.WriteString("\n")
	}

	for _, v := range g.Vertices() {
		if opts.Plain {
			fmt.Fprintf(&buf, "  %q;\n", v.ID)
			continue
		}
		attrs := fmtAttrs(*v, fmtLabel(*v, opts.Detailed))
		fmt.Fprintf(&buf, "  %q [%s];\n", v.ID, strings.Join(attrs, ", "))
	}

	if !opts.Plain {
		buf.WriteString("\n")
	}
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(v digraph.Vertex, detailed bool) string {
	if !detailed || len(v.Meta) == 0 {
		return v.ID
	}
	parts := make([]string, 0, len(v.Meta))
	for _, k := range slices.Sorted(maps.Keys(v.Meta)) {
		parts = append(parts, fmt.Sprintf("%s: %v", k, v.Meta[k]))
	}
	return v.ID + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(v digraph.Vertex, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch v.Kind {
	case digraph.KindEntity:
		attrs = append(attrs, "style=\"filled,bold\"", "fillcolor=\"#dbe9f6\"")
	case digraph.KindMethod:
		attrs = append(attrs, "style=\"rounded,filled\"")
	case digraph.KindExternal:
		attrs = append(attrs, "shape=ellipse", "style=\"filled,dashed\"", "fillcolor=lightgrey")
	}
	return attrs
}

// Document is DOT text ready to be rendered.
type Document struct {
	Text string
}

// FromGraph serializes g into a Document.
func FromGraph(g *digraph.Graph, opts Options) Document {
	return Document{Text: ToDOT(g, opts)}
}

// FromText wraps already-serialized DOT.
func FromText(text string) Document {
	return Document{Text: text}
}

// Bytes returns the document text as bytes.
func (d Document) Bytes() []byte { return []byte(d.Text) }

// Empty reports whether the document has no content.
func (d Document) Empty() bool { return strings.TrimSpace(d.Text) == "" }

// Validate parses the document with Graphviz and reports syntax errors.
func (d Document) Validate(ctx context.Context) error {
	if d.Empty() {
		return fmt.Errorf("empty DOT document")
	}
	gv, err := graphviz.New(ctx)
	if err != nil {
		return fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes(d.Bytes())
	if err != nil {
		return fmt.Errorf("parse DOT: %w", err)
	}
	return g.Close()
}
