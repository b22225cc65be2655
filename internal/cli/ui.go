package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/zimmermanw84/ts-visio-sub000/pkg/connector"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/geom"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/page"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/shape"
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

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleHeader    = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleContainer = lipgloss.NewStyle().Foreground(colorGreen)
	styleForeign   = lipgloss.NewStyle().Foreground(colorYellow)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printError(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconError.Render(iconError)+" "+fmt.Sprintf(format, args...))
}

func printInfo(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

// printKeyValue prints a labeled value.
func printKeyValue(w io.Writer, key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(10)
	fmt.Fprintln(w, keyStyle.Render(key)+" "+StyleValue.Render(value))
}

// =============================================================================
// Geometry Formatting
// =============================================================================

func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func formatPoint(p geom.Point) string { return "(" + ftoa(p.X) + ", " + ftoa(p.Y) + ")" }

func formatSize(s geom.Size) string { return ftoa(s.Width) + " x " + ftoa(s.Height) }

func formatRect(r geom.Rect) string {
	return formatPoint(r.Min) + " " + iconArrow + " " + formatPoint(r.Max)
}

// printConnector prints one routed connector.
func printConnector(w io.Writer, g connector.Geometry) {
	fmt.Fprintf(w, "%s %s %s  %s %s %s  %s\n",
		StyleValue.Render(g.FromID), StyleDim.Render(iconArrow), StyleValue.Render(g.ToID),
		formatPoint(g.Begin), StyleDim.Render(iconArrow), formatPoint(g.End),
		StyleDim.Render("length "+ftoa(g.Width)+" angle "+ftoa(g.Angle)))
}

// =============================================================================
// Page Table
// =============================================================================

// renderPageTable renders every shape of the page in tree order with its
// local and page-frame geometry.
func renderPageTable(p *page.Page) string {
	type row struct {
		cells []string
		kind  shape.Kind
	}
	var rows []row
	t := p.Tree()
	t.Walk(func(r *shape.Record, depth int) bool {
		abs := "?"
		if b, err := p.Bounds(r.ID); err == nil {
			abs = formatPoint(b.Center())
		}
		members := ""
		if r.Container != nil {
			members = strconv.Itoa(len(r.Container.Members)) + " " + r.Container.Axis.String()
		}
		indent := ""
		for range depth {
			indent += "  "
		}
		rows = append(rows, row{
			cells: []string{indent + r.ID, r.Kind.String(), formatPoint(r.Pin), formatSize(r.Size), abs, members},
			kind:  r.Kind,
		})
		return true
	})

	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = r.cells
	}
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Shape", "Kind", "Pin", "Size", "Center (page)", "Members").
		Rows(cells...).
		StyleFunc(func(i, col int) lipgloss.Style {
			if i == -1 {
				return styleHeader
			}
			if i < 0 || i >= len(rows) {
				return lipgloss.NewStyle()
			}
			switch rows[i].kind {
			case shape.KindContainer:
				return styleContainer
			case shape.KindForeign:
				return styleForeign
			}
			if col >= 2 {
				return StyleDim
			}
			return StyleValue
		})
	return tbl.Render()
}
