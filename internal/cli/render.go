package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	pkgio "github.com/matzehuels/modelviz/pkg/io"
	"github.com/matzehuels/modelviz/pkg/render"
	"github.com/matzehuels/modelviz/pkg/render/dot"
)

// renderCommand renders a DOT document or an exported JSON graph.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		f        outputFlags
		validate bool
	)

	cmd := &cobra.Command{
		Use:   "render <file.dot|graph.json>",
		Short: "Render a DOT document or exported graph to an image",
		Long: `Render a DOT document or a graph previously exported with --json.

JSON graphs are serialized to DOT first. Use --validate to check DOT syntax
without rendering.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			doc, err := loadDocument(args[0], f.detailed)
			if err != nil {
				return err
			}
			if validate {
				if err := doc.Validate(ctx); err != nil {
					printError("Invalid DOT: %v", err)
					return err
				}
				printSuccess("Valid DOT document")
				printDetail("%s", args[0])
				return nil
			}

			runner, err := c.newRunner(ctx, f.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			opts := c.baseOptions()
			opts.Module = args[0]
			if f.output == "" {
				f.output = withExt(args[0], render.FormatFor(f.format, ""))
			}
			f.apply(&opts)

			spinner := newSpinnerWithContext(ctx, "Rendering "+opts.Output+"...")
			spinner.Start()
			res, err := runner.RenderDocument(ctx, doc, opts)
			spinner.Stop()
			if err != nil {
				printError("Render failed")
				return err
			}
			printSuccess("Rendered %s graph", res.Format)
			printFile(res.Output)
			printCacheStatus(res.CacheHit)
			return nil
		},
	}

	f.register(cmd, "")
	cmd.Flags().BoolVar(&validate, "validate", false, "check DOT syntax and exit")

	return cmd
}

// loadDocument reads a DOT file, or a JSON graph which it serializes to DOT.
func loadDocument(path string, detailed bool) (dot.Document, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		g, err := pkgio.ImportJSON(path)
		if err != nil {
			return dot.Document{}, fmt.Errorf("import %s: %w", path, err)
		}
		return dot.FromGraph(g, dot.Options{Detailed: detailed}), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return dot.Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	return dot.FromText(string(data)), nil
}
