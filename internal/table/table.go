// Package table renders column-aligned text tables for the CLI.
package table

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// terminalSize returns the size of stdout, or 120x30 when it is not a terminal.
func terminalSize() (width, height int) {
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		return w, h
	}
	return 120, 30
}

// Style is the look of a table.
type Style struct {
	Header    lipgloss.Style
	Cell      lipgloss.Style
	Separator string
}

// PlainStyle has no colors.
func PlainStyle() Style {
	return Style{
		Header:    lipgloss.NewStyle().Bold(true).PaddingLeft(1).PaddingRight(1),
		Cell:      lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1),
		Separator: "|",
	}
}

// ColorStyle highlights the header row.
func ColorStyle() Style {
	s := PlainStyle()
	s.Header = s.Header.
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(lipgloss.Color("#7D56F4"))
	return s
}

// Table is a simple lipgloss table.
type Table struct {
	headers   []string
	rows      [][]string
	style     Style
	alignment []lipgloss.Position
	maxWidth  int
}

// New creates a table; color selects ColorStyle over PlainStyle.
func New(color bool) *Table {
	t := &Table{style: PlainStyle()}
	if color {
		t.style = ColorStyle()
	}
	return t
}

// SetHeaders sets the header row. Columns default to left alignment.
func (t *Table) SetHeaders(headers ...string) {
	t.headers = headers
	t.alignment = make([]lipgloss.Position, len(headers))
	for i := range t.alignment {
		t.alignment[i] = lipgloss.Left
	}
}

// SetColumnAlignment aligns a single column.
func (t *Table) SetColumnAlignment(col int, align lipgloss.Position) {
	if col >= 0 && col < len(t.alignment) {
		t.alignment[col] = align
	}
}

// FitTerminal caps the last column so rows fit the terminal width.
func (t *Table) FitTerminal() {
	t.maxWidth, _ = terminalSize()
}

// AppendRow adds a row.
func (t *Table) AppendRow(row ...string) {
	t.rows = append(t.rows, row)
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.rows) }

func (t *Table) columnWidths() []int {
	n := len(t.headers)
	for _, row := range t.rows {
		n = max(n, len(row))
	}
	widths := make([]int, n)
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}
	for i := range widths {
		widths[i] += 2
	}
	if t.maxWidth > 0 && n > 0 {
		used := len(t.style.Separator) * (n - 1)
		for _, w := range widths[:n-1] {
			used += w
		}
		widths[n-1] = max(min(widths[n-1], t.maxWidth-used), 8)
	}
	return widths
}

func (t *Table) renderRow(row []string, widths []int, style lipgloss.Style) string {
	cells := make([]string, len(widths))
	for i, width := range widths {
		var cell string
		if i < len(row) {
			cell = row[i]
		}
		align := lipgloss.Left
		if i < len(t.alignment) {
			align = t.alignment[i]
		}
		if w := width - 2; lipgloss.Width(cell) > w {
			cell = truncate(cell, w)
		}
		cells[i] = style.Width(width).Align(align).Render(cell)
	}
	return strings.Join(cells, t.style.Separator)
}

func truncate(s string, width int) string {
	if width <= 1 {
		return "…"
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

// Render returns the table as a string without a trailing newline.
func (t *Table) Render() string {
	if len(t.headers) == 0 && len(t.rows) == 0 {
		return ""
	}
	widths := t.columnWidths()

	var sb strings.Builder
	if len(t.headers) > 0 {
		sb.WriteString(t.renderRow(t.headers, widths, t.style.Header))
		sb.WriteString("\n")
		seps := make([]string, len(widths))
		for i, w := range widths {
			seps[i] = strings.Repeat("-", w)
		}
		sb.WriteString(strings.Join(seps, "+"))
		sb.WriteString("\n")
	}
	for _, row := range t.rows {
		sb.WriteString(t.renderRow(row, widths, t.style.Cell))
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
