package dot

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/modelviz/pkg/digraph"
)

func sampleGraph() *digraph.Graph {
	g := digraph.New(nil)
	_ = g.Connect(
		digraph.Vertex{ID: "Invoice", Kind: digraph.KindEntity},
		digraph.Vertex{ID: "System.Int32 Id", Kind: digraph.KindMember, Meta: digraph.Metadata{"name": "Id"}},
	)
	_ = g.Connect(
		digraph.Vertex{ID: "Invoice", Kind: digraph.KindEntity},
		digraph.Vertex{ID: "Shop.Models.Line Lines", Kind: digraph.KindMember},
	)
	return g
}

func TestToDOT_Basic(t *testing.T) {
	dot := ToDOT(sampleGraph(), Options{})

	if !strings.HasPrefix(dot, "digraph G {\n") {
		t.Error("ToDOT() output missing digraph declaration")
	}
	if !strings.HasSuffix(dot, "}\n") {
		t.Error("ToDOT() output not closed")
	}
	if !strings.Contains(dot, `"Invoice" [label="Invoice"`) {
		t.Error("ToDOT() output missing entity node")
	}
	if !strings.Contains(dot, `"Invoice" -> "System.Int32 Id";`) {
		t.Error("ToDOT() output missing first edge")
	}
	if !strings.Contains(dot, `"Invoice" -> "Shop.Models.Line Lines";`) {
		t.Error("ToDOT() output missing second edge")
	}
	if !strings.Contains(dot, "rankdir=LR") {
		t.Error("ToDOT() default rankdir should be LR")
	}
}

func TestToDOT_Order(t *testing.T) {
	dot := ToDOT(sampleGraph(), Options{})
	first := strings.Index(dot, `"Invoice" -> "System.Int32 Id"`)
	second := strings.Index(dot, `"Invoice" -> "Shop.Models.Line Lines"`)
	if first < 0 || second < 0 || first > second {
		t.Errorf("edges out of insertion order: %d, %d", first, second)
	}
	if ToDOT(sampleGraph(), Options{}) != dot {
		t.Error("ToDOT() is not deterministic")
	}
}

func TestToDOT_Plain(t *testing.T) {
	want := `digraph G {
  "Invoice";
  "System.Int32 Id";
  "Shop.Models.Line Lines";
  "Invoice" -> "System.Int32 Id";
  "Invoice" -> "Shop.Models.Line Lines";
}
`
	if got := ToDOT(sampleGraph(), Options{Plain: true}); got != want {
		t.Errorf("ToDOT(Plain) =\n%s\nwant\n%s", got, want)
	}
}

func TestToDOT_Kinds(t *testing.T) {
	g := digraph.New(nil)
	_ = g.Connect(
		digraph.Vertex{ID: "app.Main", Kind: digraph.KindMethod},
		digraph.Vertex{ID: "System.Console::WriteLine", Kind: digraph.KindExternal},
	)
	dot := ToDOT(g, Options{RankDir: "TB"})

	if !strings.Contains(dot, "rankdir=TB") {
		t.Error("ToDOT() ignored RankDir")
	}
	if !strings.Contains(dot, "rounded,filled") {
		t.Error("ToDOT() method node missing rounded style")
	}
	if !strings.Contains(dot, "dashed") || !strings.Contains(dot, "shape=ellipse") {
		t.Error("ToDOT() external node missing dashed ellipse style")
	}
}

func TestToDOT_Quoting(t *testing.T) {
	g := digraph.New(nil)
	_ = g.AddVertex(digraph.Vertex{ID: `Say "hi"`})
	dot := ToDOT(g, Options{Plain: true})
	if !strings.Contains(dot, `"Say \"hi\""`) {
		t.Errorf("ToDOT() did not escape quotes:\n%s", dot)
	}
}

func TestToDOT_Empty(t *testing.T) {
	if got := ToDOT(digraph.New(nil), Options{Plain: true}); got != "digraph G {\n}\n" {
		t.Errorf("ToDOT(empty) = %q", got)
	}
}

func TestFmtLabel(t *testing.T) {
	v := digraph.Vertex{ID: "app.Main", Meta: digraph.Metadata{"module": "app", "name": "Main"}}

	if got := fmtLabel(v, false); got != "app.Main" {
		t.Errorf("fmtLabel() simple = %q", got)
	}
	if got, want := fmtLabel(v, true), "app.Main\nmodule: app\nname: Main"; got != want {
		t.Errorf("fmtLabel() detailed = %q, want %q", got, want)
	}
}

func TestDocument(t *testing.T) {
	doc := FromGraph(sampleGraph(), Options{})
	if doc.Empty() {
		t.Fatal("FromGraph() produced empty document")
	}
	if err := doc.Validate(context.Background()); err != nil {
		t.Errorf("Validate() error: %v", err)
	}

	if err := FromText("   ").Validate(context.Background()); err == nil {
		t.Error("Validate() should reject empty document")
	}
	if err := FromText("digraph G { a -> ").Validate(context.Background()); err == nil {
		t.Error("Validate() should reject malformed DOT")
	}
}
