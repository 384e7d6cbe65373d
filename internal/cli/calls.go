package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/modelviz/pkg/depgraph"
	"github.com/matzehuels/modelviz/pkg/metadata"
	"github.com/matzehuels/modelviz/pkg/pipeline"
)

// callsCommand creates the calls command.
func (c *CLI) callsCommand() *cobra.Command {
	var (
		out      outputFlags
		entry    string
		pick     bool
		printAll bool
		maxDepth int
		maxNodes int
	)

	cmd := &cobra.Command{
		Use:   "calls <module>",
		Short: "Walk the cross-module call graph from an entry method",
		Long: `Walk the call graph of a compiled module starting at an entry method.

Every call instruction becomes an edge. The walk descends into a callee only
when its body is available and it lives in a different module than its
caller; unresolved callees are kept as external leaves. Each method is
descended into at most once.`,
		Example: `  modelviz calls ./shop.json
  modelviz calls ./shop.json --entry Shop.Api.Program::Main --print
  modelviz calls ./goapp --pick -o calls.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts := c.baseOptions()
			opts.Module = args[0]
			opts.Entry = entry
			if cmd.Flags().Changed("max-depth") {
				opts.MaxDepth = maxDepth
			}
			if cmd.Flags().Changed("max-nodes") {
				opts.MaxNodes = maxNodes
			}
			out.apply(&opts)
			if printAll {
				opts.OnCall = printCall
			}

			runner, err := c.newRunner(ctx, out.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			if pick {
				picked, err := c.pickEntry(ctx, runner, opts)
				if err != nil || picked == "" {
					return err
				}
				opts.Entry = picked
			}

			prog := newProgress(c.Logger)
			res, err := runner.Calls(ctx, opts)
			if err != nil {
				return err
			}
			prog.done("call graph walked", "entry", res.Entry)

			printCalls(res)
			return c.finish(ctx, runner, res.Graph, nil, &out, opts)
		},
	}

	out.register(cmd, "calls.png")
	cmd.Flags().StringVarP(&entry, "entry", "e", "", "entry method (default: the module's entry point)")
	cmd.Flags().BoolVar(&pick, "pick", false, "choose the entry method interactively")
	cmd.Flags().BoolVar(&printAll, "print", false, "print every call as it is discovered")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "stop descending below this call depth (0 = unbounded)")
	cmd.Flags().IntVar(&maxNodes, "max-nodes", 0, "stop descending after this many methods (0 = unbounded)")
	cmd.MarkFlagsMutuallyExclusive("entry", "pick")

	return cmd
}

// pickEntry loads the module and lets the user choose a method with a body.
// It returns "" when the user quits without choosing.
func (c *CLI) pickEntry(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options) (string, error) {
	m, err := runner.Load(ctx, opts)
	if err != nil {
		return "", err
	}
	defer m.Close()

	var methods []*metadata.Method
	for _, meth := range metadata.Methods(m) {
		if meth.HasBody {
			methods = append(methods, meth)
		}
	}
	if len(methods) == 0 {
		printWarning("Module %s has no methods with bodies", m.Name())
		return "", nil
	}

	final, err := tea.NewProgram(newMethodPicker(methods), tea.WithContext(ctx)).Run()
	if err != nil {
		return "", fmt.Errorf("entry picker: %w", err)
	}
	picked := final.(methodPicker).selected
	if picked == nil {
		printInfo("No entry selected")
		return "", nil
	}
	return picked.FullName, nil
}

// printCall prints one discovered call.
func printCall(call depgraph.Call) {
	target := StyleValue.Render(call.Callee.FullName)
	if !call.Resolved {
		target = StyleDim.Render(call.Callee.FullName + " (unresolved)")
	}
	fmt.Printf("  %s %s %s\n", call.Caller.FullName, StyleDim.Render(iconArrow), target)
}

// printCalls prints the walk summary.
func printCalls(res *pipeline.CallsResult) {
	printSuccess("Walked call graph from %s", StyleHighlight.Render(res.Entry))
	printStats(res.Stats.Vertices, res.Stats.Edges, res.CacheHit)
	w := res.Walk
	printDetail("%d methods visited, %d calls, %d unresolved, %d same-module, max depth %d",
		w.Methods, w.Calls, w.Unresolved, w.SameModule, w.MaxDepth)
	if w.Truncated > 0 {
		printWarning("%d descents skipped by --max-depth/--max-nodes", w.Truncated)
	}
}
