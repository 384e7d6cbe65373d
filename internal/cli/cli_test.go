package cli

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/modelviz/pkg/config"
	pkgio "github.com/matzehuels/modelviz/pkg/io"
	"github.com/matzehuels/modelviz/pkg/pipeline"
)

const shopYAML = `
name: Shop.Api
entry: Shop.Api.Program::Main
types:
  - name: Shop.Api.Models.Invoice
    fields:
      - {name: Id, type: System.Int32}
      - {name: Customer, type: Shop.Api.Models.Customer}
  - name: Shop.Api.Models.Customer
    fields:
      - {name: Name, type: System.String}
  - name: Shop.Api.Program
    methods:
      - name: Main
        instructions:
          - {op: call, method: "Shop.Data.Store::Save", module: Shop.Data}
references:
  - name: Shop.Data
    types:
      - name: Shop.Data.Store
        methods:
          - {name: Save, body: true}
`

// newTestCLI returns a CLI whose config, cache and history live under
// temporary directories.
func newTestCLI(t *testing.T) (*CLI, string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Chdir(dir)

	module := filepath.Join(dir, "shop.yaml")
	if err := os.WriteFile(module, []byte(shopYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	return New(io.Discard, LogInfo), module
}

func TestGraphIDFor(t *testing.T) {
	tests := []struct {
		module string
		want   string
	}{
		{"shop.yaml", "shop"},
		{"/data/Shop.Api.json", "Shop.Api"},
		{"./goapp", "goapp"},
		{"./goapp/", "goapp"},
		{".", appName},
		{"/", appName},
		{".hidden", ".hidden"},
	}

	for _, tt := range tests {
		t.Run(tt.module, func(t *testing.T) {
			if got := graphIDFor(tt.module); got != tt.want {
				t.Errorf("graphIDFor(%q) = %q, want %q", tt.module, got, tt.want)
			}
		})
	}
}

func TestOutputFlagsApply(t *testing.T) {
	tests := []struct {
		name       string
		flags      outputFlags
		base       pipeline.Options
		wantOutput string
		wantFormat string
		wantRender string
		wantDot    string
	}{
		{
			name:       "format from extension",
			flags:      outputFlags{output: "graph.svg"},
			base:       pipeline.Options{Format: "png", Renderer: config.RendererExec},
			wantFormat: "",
			wantRender: config.RendererExec,
		},
		{
			name:       "explicit format",
			flags:      outputFlags{output: "graph.out", format: "svg"},
			base:       pipeline.Options{Format: "png"},
			wantFormat: "svg",
		},
		{
			name:       "no extension keeps configured format",
			flags:      outputFlags{output: "graph"},
			base:       pipeline.Options{Format: "jpg"},
			wantFormat: "jpg",
		},
		{
			name:       "explicit format swaps default extension",
			flags:      outputFlags{output: "entities.png", defaultOutput: "entities.png", format: "svg"},
			base:       pipeline.Options{Format: "png"},
			wantOutput: "entities.svg",
			wantFormat: "svg",
		},
		{
			name:       "explicit output keeps its extension",
			flags:      outputFlags{output: "custom.png", defaultOutput: "entities.png", format: "svg"},
			base:       pipeline.Options{},
			wantOutput: "custom.png",
			wantFormat: "svg",
		},
		{
			name:       "renderer and dot path",
			flags:      outputFlags{output: "g.png", renderer: config.RendererGraphviz, dotPath: "g.dot"},
			base:       pipeline.Options{Renderer: config.RendererExec},
			wantRender: config.RendererGraphviz,
			wantDot:    "g.dot",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.base
			tt.flags.apply(&opts)
			wantOutput := tt.wantOutput
			if wantOutput == "" {
				wantOutput = tt.flags.output
			}
			if opts.Output != wantOutput {
				t.Errorf("Output = %q, want %q", opts.Output, wantOutput)
			}
			if opts.Format != tt.wantFormat {
				t.Errorf("Format = %q, want %q", opts.Format, tt.wantFormat)
			}
			if opts.Renderer != tt.wantRender {
				t.Errorf("Renderer = %q, want %q", opts.Renderer, tt.wantRender)
			}
			if opts.ArtifactPath != tt.wantDot {
				t.Errorf("ArtifactPath = %q, want %q", opts.ArtifactPath, tt.wantDot)
			}
		})
	}
}

func TestEntitiesCommandExports(t *testing.T) {
	c, module := newTestCLI(t)
	dir := filepath.Dir(module)
	jsonPath := filepath.Join(dir, "entities.json")
	dbPath := filepath.Join(dir, "entities.db")

	root := c.RootCommand()
	root.SetArgs([]string{"entities", module, "--no-render", "--quiet", "--json", jsonPath, "--sqlite", dbPath})
	if err := root.ExecuteContext(t.Context()); err != nil {
		t.Fatalf("entities: %v", err)
	}

	g, err := pkgio.ImportJSON(jsonPath)
	if err != nil {
		t.Fatalf("ImportJSON() error: %v", err)
	}
	// Invoice, Customer and their three members.
	if g.VertexCount() != 5 {
		t.Errorf("VertexCount() = %d, want 5", g.VertexCount())
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("sqlite database not written: %v", err)
	}
}

func TestCallsCommandRequiresKnownEntry(t *testing.T) {
	c, module := newTestCLI(t)

	root := c.RootCommand()
	root.SetArgs([]string{"calls", module, "--entry", "Shop.Api.Program::Missing", "--no-render", "--no-cache"})
	if err := root.ExecuteContext(t.Context()); err == nil {
		t.Fatal("calls with an unknown entry should fail")
	}
}

func TestCallsCommandExportsJSON(t *testing.T) {
	c, module := newTestCLI(t)
	jsonPath := filepath.Join(filepath.Dir(module), "calls.json")

	root := c.RootCommand()
	root.SetArgs([]string{"calls", module, "--no-render", "--no-cache", "--json", jsonPath})
	if err := root.ExecuteContext(t.Context()); err != nil {
		t.Fatalf("calls: %v", err)
	}

	g, err := pkgio.ImportJSON(jsonPath)
	if err != nil {
		t.Fatalf("ImportJSON() error: %v", err)
	}
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d, want 1", g.EdgeCount())
	}
}

func TestRenderCommandValidate(t *testing.T) {
	c, module := newTestCLI(t)
	dotPath := filepath.Join(filepath.Dir(module), "g.dot")
	if err := os.WriteFile(dotPath, []byte("digraph G { a -> b; }"), 0o644); err != nil {
		t.Fatal(err)
	}

	root := c.RootCommand()
	root.SetArgs([]string{"render", dotPath, "--validate"})
	if err := root.ExecuteContext(t.Context()); err != nil {
		t.Fatalf("render --validate: %v", err)
	}
}

func TestConfigFlagMissingFile(t *testing.T) {
	c, module := newTestCLI(t)

	root := c.RootCommand()
	root.SetArgs([]string{"--config", "missing.toml", "entities", module, "--no-render"})
	if err := root.ExecuteContext(t.Context()); err == nil {
		t.Fatal("explicit missing config should fail")
	}
}
