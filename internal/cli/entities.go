package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/modelviz/pkg/pipeline"
)

// entitiesCommand creates the entities command.
func (c *CLI) entitiesCommand() *cobra.Command {
	var (
		out     outputFlags
		include string
		exclude []string
		quiet   bool
	)

	cmd := &cobra.Command{
		Use:   "entities <module>",
		Short: "Extract entity types, print their tables and render the entity graph",
		Long: `Extract entity types from a compiled module.

A type is an entity when its full name contains the include marker and none of
the exclude markers. Each entity becomes a table whose columns are its fields;
field types outside the known primitive set are reported as opaque columns.
The entity graph links every entity to its members.`,
		Example: `  modelviz entities ./shop.json -o models.png
  modelviz entities ./shop.yaml --include Domain --sqlite models.db
  modelviz entities ./goapp --exclude Repositories --format svg -o models.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts := c.baseOptions()
			opts.Module = args[0]
			if cmd.Flags().Changed("include") {
				opts.Include = include
			}
			if cmd.Flags().Changed("exclude") {
				opts.Exclude = exclude
			}
			out.apply(&opts)

			runner, err := c.newRunner(ctx, out.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			spinner := newSpinnerWithContext(ctx, "Extracting entities from "+opts.Module+"...")
			spinner.Start()
			prog := newProgress(c.Logger)
			res, err := runner.Entities(ctx, opts)
			spinner.Stop()
			if err != nil {
				return err
			}
			prog.done("entities extracted", "module", opts.Module)

			printEntities(res, quiet)
			return c.finish(ctx, runner, res.Graph, res.DataSet, &out, opts)
		},
	}

	out.register(cmd, "entities.png")
	cmd.Flags().StringVar(&out.sqlitePath, "sqlite", "", "export entity tables to this SQLite database")
	cmd.Flags().StringVar(&include, "include", "", "marker a type name must contain (default \"Models\")")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "markers that exclude a type (repeatable)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print only the summary, not the tables")

	return cmd
}

// printEntities prints the tables and the extraction summary.
func printEntities(res *pipeline.EntitiesResult, quiet bool) {
	if res.Entities.Len() == 0 {
		printWarning("No entity types matched the filter")
		return
	}
	printSuccess("Extracted %d entities", res.Stats.Entities)
	printStats(res.Stats.Vertices, res.Stats.Edges, res.CacheHit)
	if res.Stats.Opaque > 0 {
		printDetail("%d opaque columns", res.Stats.Opaque)
	}
	for _, col := range res.Collisions {
		printWarning("%s: %s replaced by %s", col.Name, col.Replaced, col.By)
	}
	if quiet {
		return
	}
	for _, t := range res.DataSet.Tables {
		printNewline()
		printTable(t)
	}
	printNewline()
}
