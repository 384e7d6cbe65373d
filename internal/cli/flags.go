package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/modelviz/pkg/config"
	"github.com/matzehuels/modelviz/pkg/digraph"
	"github.com/matzehuels/modelviz/pkg/export/neo4j"
	"github.com/matzehuels/modelviz/pkg/export/sqlite"
	pkgio "github.com/matzehuels/modelviz/pkg/io"
	"github.com/matzehuels/modelviz/pkg/pipeline"
	"github.com/matzehuels/modelviz/pkg/render"
	"github.com/matzehuels/modelviz/pkg/schema"
)

// outputFlags are the render and export flags shared by entities and calls.
type outputFlags struct {
	output   string // image path
	format   string // png, svg, jpg or pdf
	renderer string // exec or graphviz
	binary   string // Graphviz binary for the exec renderer
	dotPath  string // keep the DOT document at this path
	detailed bool   // show member types and module names in vertex labels
	noRender bool   // skip rendering

	jsonPath   string // export the graph as JSON
	sqlitePath string // export entity tables to SQLite
	neo4j      bool   // export the graph to Neo4j
	graphID    string // Neo4j graph id

	noCache bool
	refresh bool

	defaultOutput string
}

func (f *outputFlags) register(cmd *cobra.Command, defaultOutput string) {
	f.defaultOutput = defaultOutput
	fs := cmd.Flags()
	fs.StringVarP(&f.output, "output", "o", defaultOutput, "output image path")
	fs.StringVarP(&f.format, "format", "f", "", "image format: "+strings.Join(render.Formats, ", ")+" (default from output extension)")
	fs.StringVar(&f.renderer, "renderer", "", "renderer: exec or graphviz (in-process)")
	fs.StringVar(&f.binary, "binary", "", "Graphviz binary for the exec renderer")
	fs.StringVar(&f.dotPath, "dot", "", "write the DOT document to this path and keep it")
	fs.BoolVar(&f.detailed, "detailed", false, "include types and modules in vertex labels")
	fs.BoolVar(&f.noRender, "no-render", false, "skip image rendering")
	fs.StringVar(&f.jsonPath, "json", "", "export the graph as JSON to this path")
	fs.BoolVar(&f.neo4j, "neo4j", false, "export the graph to Neo4j (see [neo4j] in the config)")
	fs.StringVar(&f.graphID, "graph-id", "", "Neo4j graph id (default derived from the module name)")
	fs.BoolVar(&f.noCache, "no-cache", false, "disable the result cache")
	fs.BoolVar(&f.refresh, "refresh", false, "ignore cached results")

	_ = cmd.RegisterFlagCompletionFunc("renderer", cobra.FixedCompletions(rendererNames, cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(render.Formats, cobra.ShellCompDirectiveNoFileComp))
}

// apply copies explicitly set flags onto opts. An explicit --format with
// the default output path swaps the path's extension to match.
func (f *outputFlags) apply(opts *pipeline.Options) {
	if f.format != "" && f.output != "" && f.output == f.defaultOutput {
		f.output = withExt(f.output, render.FormatFor(f.format, ""))
	}
	opts.Output = f.output
	if f.format != "" {
		opts.Format = f.format
	} else if filepath.Ext(f.output) != "" {
		opts.Format = ""
	}
	if f.renderer != "" {
		opts.Renderer = f.renderer
	}
	if f.binary != "" {
		opts.Binary = f.binary
	}
	if f.dotPath != "" {
		opts.ArtifactPath = f.dotPath
	}
	opts.Detailed = opts.Detailed || f.detailed
	opts.Refresh = f.refresh
}

// finish exports g (and ds, when present) and renders it.
func (c *CLI) finish(ctx context.Context, runner *pipeline.Runner, g *digraph.Graph, ds *schema.DataSet, f *outputFlags, opts pipeline.Options) error {
	if f.jsonPath != "" {
		if err := pkgio.ExportJSON(g, f.jsonPath); err != nil {
			return fmt.Errorf("export json: %w", err)
		}
		printSuccess("Exported graph")
		printFile(f.jsonPath)
	}
	if f.sqlitePath != "" && ds != nil {
		if err := c.exportSQLite(ctx, ds, f.sqlitePath); err != nil {
			return err
		}
	}
	if f.neo4j {
		if err := c.exportNeo4j(ctx, g, f.graphID, opts.Module); err != nil {
			return err
		}
	}
	if f.noRender {
		return nil
	}

	spinner := newSpinnerWithContext(ctx, "Rendering "+opts.Output+"...")
	spinner.Start()
	res, err := runner.Render(ctx, g, opts)
	spinner.Stop()
	if err != nil {
		printError("Render failed")
		return err
	}
	printSuccess("Rendered %s graph", res.Format)
	printFile(res.Output)
	if f.dotPath != "" {
		printFile(f.dotPath)
	}
	printCacheStatus(res.CacheHit)
	return nil
}

func (c *CLI) exportSQLite(ctx context.Context, ds *schema.DataSet, path string) error {
	e, err := sqlite.Open(path)
	if err != nil {
		return fmt.Errorf("export sqlite: %w", err)
	}
	defer e.Close()
	if err := e.Write(ctx, ds); err != nil {
		return fmt.Errorf("export sqlite: %w", err)
	}
	printSuccess("Exported %d tables", len(ds.Tables))
	printFile(path)
	return nil
}

func (c *CLI) exportNeo4j(ctx context.Context, g *digraph.Graph, graphID, module string) error {
	if graphID == "" {
		graphID = graphIDFor(module)
	}
	cfg := c.Config.Neo4j
	e, err := neo4j.Connect(ctx, neo4j.Options{
		URI:      cfg.URI,
		User:     cfg.User,
		Password: cfg.Password,
		Database: cfg.Database,
		Logger:   c.Logger,
	})
	if err != nil {
		return err
	}
	defer e.Close(context.WithoutCancel(ctx))
	if err := e.Export(ctx, g, graphID); err != nil {
		return err
	}
	printSuccess("Exported graph %s to Neo4j", StyleHighlight.Render(graphID))
	printDetail("%d nodes, %d relationships at %s", g.VertexCount(), g.EdgeCount(), cfg.URI)
	return nil
}

// withExt replaces the extension of path with ext.
func withExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + "." + ext
}

// graphIDFor derives a graph id from the module file or directory name.
func graphIDFor(module string) string {
	base := filepath.Base(filepath.Clean(module))
	if ext := filepath.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	if base == "." || base == string(filepath.Separator) || base == "" {
		return appName
	}
	return base
}

// rendererNames lists the accepted --renderer values for completion.
var rendererNames = []string{config.RendererExec, config.RendererGraphviz}
