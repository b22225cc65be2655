package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/zimmermanw84/ts-visio-sub000/pkg/page"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/shape"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	detailStyle       = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim).
				Padding(0, 1)
)

// =============================================================================
// TreeModel - Interactive shape tree explorer
// =============================================================================

// treeRow is one visible line of the explorer.
type treeRow struct {
	id       string
	depth    int
	kind     shape.Kind
	children int
}

// TreeModel is the bubbletea model of the browse command. It lists the
// page's shapes in z-order and shows the resolved geometry of the selected
// one. Collapsed shapes hide their descendants.
type TreeModel struct {
	page      *page.Page
	collapsed map[string]bool
	rows      []treeRow
	Cursor    int
	Offset    int
	Height    int
}

// NewTreeModel creates an explorer over p with every shape expanded.
func NewTreeModel(p *page.Page) TreeModel {
	m := TreeModel{page: p, collapsed: make(map[string]bool), Height: 15}
	m.rebuild()
	return m
}

// rebuild recomputes the visible rows from the tree and the collapsed set.
func (m *TreeModel) rebuild() {
	t := m.page.Tree()
	m.rows = nil
	t.Walk(func(r *shape.Record, depth int) bool {
		m.rows = append(m.rows, treeRow{id: r.ID, depth: depth, kind: r.Kind, children: len(t.Children(r.ID))})
		return !m.collapsed[r.ID]
	})
	if m.Cursor >= len(m.rows) {
		m.Cursor = max(len(m.rows)-1, 0)
	}
}

// Selected returns the id under the cursor, or "" for an empty page.
func (m TreeModel) Selected() string {
	if len(m.rows) == 0 {
		return ""
	}
	return m.rows[m.Cursor].id
}

func (m TreeModel) Init() tea.Cmd {
	return nil
}

func (m TreeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.rows)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter", " ", "left", "right", "h", "l":
			if id := m.Selected(); id != "" && m.rows[m.Cursor].children > 0 {
				m.collapsed[id] = !m.collapsed[id]
				m.rebuild()
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-12, 5)
	}
	return m, nil
}

func (m TreeModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.page.ID()))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ expand/collapse  q quit"))
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString(listDimStyle.Render("  no shapes"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.rows))
	for i := m.Offset; i < end; i++ {
		r := m.rows[i]
		marker := " "
		if r.children > 0 {
			marker = "▾"
			if m.collapsed[r.id] {
				marker = "▸"
			}
		}
		cursor := "  "
		if i == m.Cursor {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%s%s %s  %s", cursor, strings.Repeat("  ", r.depth), marker, r.id, listDimStyle.Render(r.kind.String()))
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.detail())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.rows))))
	return b.String()
}

// detail renders the resolved geometry of the selected shape.
func (m TreeModel) detail() string {
	id := m.Selected()
	r, ok := m.page.Tree().Get(id)
	if !ok {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", StyleValue.Render(id))
	if r.Name != "" {
		fmt.Fprintf(&b, "name     %s\n", r.Name)
	}
	fmt.Fprintf(&b, "pin      %s  locpin %s\n", formatPoint(r.Pin), formatPoint(r.LocPin))
	fmt.Fprintf(&b, "size     %s\n", formatSize(r.Size))
	if bounds, err := m.page.Bounds(id); err == nil {
		fmt.Fprintf(&b, "page     %s\n", formatRect(bounds))
	} else {
		fmt.Fprintf(&b, "page     %s\n", StyleWarning.Render(err.Error()))
	}
	if r.Container != nil {
		fmt.Fprintf(&b, "members  %s (%s, spacing %s, padding %s)",
			strings.Join(r.Container.Members, ", "), r.Container.Axis, ftoa(r.Container.Spacing), ftoa(r.Container.Padding))
	}
	return detailStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "browse <page>",
		Short:             "Explore a page's shape tree interactively",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completePages,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.readPage(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			prog := tea.NewProgram(NewTreeModel(p), tea.WithContext(cmd.Context()), tea.WithAltScreen())
			_, err = prog.Run()
			return err
		},
	}
}
