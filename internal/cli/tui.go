package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/modelviz/pkg/metadata"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// methodPicker - Interactive entry method selection
// =============================================================================

// methodPicker is the bubbletea model for choosing a call-graph entry.
// Typing narrows the list to methods whose full name contains the query.
type methodPicker struct {
	methods  []*metadata.Method
	visible  []*metadata.Method
	query    string
	cursor   int
	offset   int
	height   int
	selected *metadata.Method
}

func newMethodPicker(methods []*metadata.Method) methodPicker {
	m := methodPicker{methods: methods, height: 15}
	m.filter()
	return m
}

func (m *methodPicker) filter() {
	var visible []*metadata.Method
	q := strings.ToLower(m.query)
	for _, meth := range m.methods {
		if q == "" || strings.Contains(strings.ToLower(meth.FullName), q) {
			visible = append(visible, meth)
		}
	}
	m.visible = visible
	m.cursor, m.offset = 0, 0
}

func (m methodPicker) Init() tea.Cmd {
	return nil
}

func (m methodPicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case tea.KeyDown:
			if m.cursor < len(m.visible)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case tea.KeyEnter:
			if len(m.visible) == 0 {
				return m, nil
			}
			m.selected = m.visible[m.cursor]
			return m, tea.Quit
		case tea.KeyBackspace:
			if m.query != "" {
				m.query = m.query[:len(m.query)-1]
				m.filter()
			}
		case tea.KeyRunes, tea.KeySpace:
			m.query += string(msg.Runes)
			m.filter()
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m methodPicker) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Entry Method"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("type to filter  ↑/↓ navigate  ⏎ select  esc quit"))
	b.WriteString("\n")
	b.WriteString("  " + StyleHighlight.Render("/"+m.query))
	b.WriteString("\n\n")

	end := min(m.offset+m.height, len(m.visible))
	rows := [][]string{}
	for i := m.offset; i < end; i++ {
		meth := m.visible[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, meth.FullName, meth.Module, fmt.Sprint(len(meth.Instructions))})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Method", "Module", "Instr").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.offset+row == m.cursor {
				return listSelectedStyle
			}
			if col >= 2 {
				return listDimStyle
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.cursor+1, len(m.visible)), len(m.visible))))

	return b.String()
}
