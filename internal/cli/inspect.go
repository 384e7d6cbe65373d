package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/modelviz/pkg/entity"
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		include     string
		exclude     []string
		showMethods bool
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "inspect <module>",
		Short: "List the types and methods of a module",
		Args:  cobra.ExactArgs(1),
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

			runner, err := c.newRunner(ctx, true)
			if err != nil {
				return err
			}
			defer runner.Close()

			m, err := runner.Load(ctx, opts)
			if err != nil {
				return err
			}
			defer m.Close()

			opts.SetDefaults()
			inv := entity.Inventory(m, opts.Filter())
			if asJSON {
				return writeJSON(inv)
			}

			printSuccess("Module %s", StyleHighlight.Render(m.Name()))
			printDetail("%d types", len(inv))
			printNewline()
			printInventory(inv, showMethods)
			return nil
		},
	}

	cmd.Flags().StringVar(&include, "include", "", "marker a type name must contain to count as an entity")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "markers that exclude a type (repeatable)")
	cmd.Flags().BoolVarP(&showMethods, "methods", "m", false, "list method names")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the inventory as JSON")

	return cmd
}

// printInventory prints one row per type.
func printInventory(inv []entity.TypeSummary, showMethods bool) {
	headers := []string{"Type", "Entity", "Fields", "Methods"}
	rows := make([][]string, 0, len(inv))
	for _, s := range inv {
		mark := ""
		if s.Entity {
			mark = iconSuccess
		}
		methods := strconv.Itoa(len(s.Methods))
		if showMethods && len(s.Methods) > 0 {
			methods = strings.Join(s.Methods, ", ")
		}
		rows = append(rows, []string{s.Name, mark, strconv.Itoa(s.Fields), methods})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if col == 1 {
				return styleIconSuccess
			}
			if row < len(inv) && !inv[row].Entity {
				return StyleDim
			}
			return StyleValue
		})
	fmt.Println(t.Render())
}
