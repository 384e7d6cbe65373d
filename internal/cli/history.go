package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/modelviz/pkg/history"
)

// historyCommand creates the run history command.
func (c *CLI) historyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show and manage past runs",
	}

	cmd.AddCommand(c.historyListCommand())
	cmd.AddCommand(c.historyShowCommand())
	cmd.AddCommand(c.historyDeleteCommand())

	return cmd
}

func (c *CLI) historyListCommand() *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := c.newHistory(cmd.Context())
			defer store.Close()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(runs)
			}
			if len(runs) == 0 {
				printInfo("No runs recorded")
				return nil
			}
			printRuns(runs)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of runs")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print runs as JSON")

	return cmd
}

func (c *CLI) historyShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := c.newHistory(cmd.Context())
			defer store.Close()

			run, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("run %s: %w", args[0], err)
			}
			return writeJSON(run)
		},
	}
}

func (c *CLI) historyDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete runs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := c.newHistory(cmd.Context())
			defer store.Close()

			for _, id := range args {
				if err := store.Delete(cmd.Context(), id); err != nil {
					return fmt.Errorf("delete %s: %w", id, err)
				}
			}
			printSuccess("Deleted %d runs", len(args))
			return nil
		},
	}
}

func printRuns(runs []*history.Run) {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		status := styleIconSuccess.Render(iconSuccess)
		if r.Failed() {
			status = styleIconError.Render(iconError)
		}
		rows = append(rows, []string{
			status,
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.Kind,
			r.Module,
			runSummary(r),
			r.Duration.Round(time.Millisecond).String(),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Started", "Kind", "Module", "Result", "Took").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if col == 3 {
				return StyleValue
			}
			return StyleDim
		})
	fmt.Println(t.Render())
}

func runSummary(r *history.Run) string {
	if r.Failed() {
		return r.Error
	}
	switch r.Kind {
	case history.KindEntities:
		return strconv.Itoa(r.Entities) + " entities"
	case history.KindCalls:
		return strconv.Itoa(r.Methods) + " methods from " + r.Entry
	case history.KindRender:
		return r.Output
	}
	return ""
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
