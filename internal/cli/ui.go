package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/modelviz/pkg/schema"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleHeader = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleOpaque = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

// statusLine prints msg behind a colored icon.
func statusLine(icon string, iconStyle lipgloss.Style, msg string) {
	fmt.Println(iconStyle.Render(icon) + " " + msg)
}

func printSuccess(format string, args ...any) {
	statusLine(iconSuccess, styleIconSuccess, fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	statusLine(iconError, styleIconError, fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	statusLine(iconWarning, styleIconWarning, StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	statusLine(iconInfo, styleIconInfo, fmt.Sprintf(format, args...))
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printNewline prints an empty line.
func printNewline() {
	fmt.Println()
}

// =============================================================================
// Stats Display
// =============================================================================

// printStats prints graph statistics on a single line.
func printStats(vertexCount, edgeCount int, cached bool) {
	parts := []string{
		StyleDim.Render(fmt.Sprintf("%d vertices", vertexCount)),
		StyleDim.Render(fmt.Sprintf("%d edges", edgeCount)),
		cacheStatus(cached),
	}
	fmt.Println("  " + strings.Join(parts, StyleDim.Render(" · ")))
}

// printCacheStatus prints whether a result came from the cache.
func printCacheStatus(cached bool) {
	fmt.Println("  " + cacheStatus(cached))
}

func cacheStatus(cached bool) string {
	if cached {
		return styleCached.Render(iconCached)
	}
	return styleComputed.Render(iconFresh)
}

// =============================================================================
// Tables
// =============================================================================

// printTable prints an entity table: one row per column with its label,
// resolved kind and SQL affinity. Opaque columns are highlighted.
func printTable(t *schema.Table) {
	fmt.Println(StyleTitle.Render(t.Name))
	if len(t.Columns) == 0 {
		printDetail("(no columns)")
		return
	}

	rows := make([][]string, 0, len(t.Columns))
	for _, col := range t.Columns {
		sqlType := col.Kind.SQLType()
		if sqlType == "" {
			sqlType = "-"
		}
		rows = append(rows, []string{col.Label, col.Kind.String(), sqlType})
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Column", "Kind", "SQL").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if row < len(t.Columns) && t.Columns[row].Opaque() {
				return styleOpaque
			}
			if col == 0 {
				return StyleValue
			}
			return StyleDim
		})
	fmt.Println(tbl.Render())
}
