package table

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Browser is an interactive, filterable table. Press / to filter, esc to
// clear and q to quit.
type Browser struct {
	title    string
	table    table.Model
	all      [][]string
	shown    [][]string
	filter   string
	editing  bool
	maxWidth int
}

// NewBrowser creates a browser over rows.
func NewBrowser(title string, headers []string, rows [][]string) *Browser {
	width, height := terminalSize()
	columns := make([]table.Column, len(headers))
	for i, h := range headers {
		columns[i] = table.Column{Title: h, Width: len(h)}
	}

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57"))

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		// title, filter line and help
		table.WithHeight(max(height-7, 5)),
	)
	t.SetStyles(styles)

	b := &Browser{title: title, table: t, all: rows, maxWidth: width}
	b.setRows(rows)
	return b
}

func (b *Browser) setRows(rows [][]string) {
	b.shown = rows
	columns := b.table.Columns()
	for i := range columns {
		w := len(columns[i].Title)
		for _, row := range rows {
			if i < len(row) {
				w = max(w, lipgloss.Width(row[i]))
			}
		}
		columns[i].Width = min(max(w, 6), max(b.maxWidth/len(columns)*2, 20))
	}
	b.table.SetColumns(columns)

	trs := make([]table.Row, len(rows))
	for i, row := range rows {
		trs[i] = table.Row(row)
	}
	b.table.SetRows(trs)
	b.table.GotoTop()
}

// Filter keeps the rows where any cell contains s, ignoring case.
func (b *Browser) Filter(s string) {
	b.filter = s
	if s == "" {
		b.setRows(b.all)
		return
	}
	needle := strings.ToLower(s)
	var rows [][]string
	for _, row := range b.all {
		for _, cell := range row {
			if strings.Contains(strings.ToLower(cell), needle) {
				rows = append(rows, row)
				break
			}
		}
	}
	b.setRows(rows)
}

// Shown returns the rows that pass the current filter.
func (b *Browser) Shown() [][]string { return b.shown }

// Run shows the browser until the user quits.
func (b *Browser) Run() error {
	_, err := tea.NewProgram(b, tea.WithAltScreen()).Run()
	return err
}

func (b *Browser) Init() tea.Cmd { return nil }

func (b *Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return b, nil
	}
	if b.editing {
		switch key.String() {
		case "ctrl+c":
			return b, tea.Quit
		case "enter":
			b.editing = false
		case "esc":
			b.editing = false
			b.Filter("")
		case "backspace":
			if len(b.filter) > 0 {
				r := []rune(b.filter)
				b.Filter(string(r[:len(r)-1]))
			}
		default:
			if key.Type == tea.KeyRunes {
				b.Filter(b.filter + string(key.Runes))
			}
		}
		return b, nil
	}

	switch key.String() {
	case "ctrl+c", "q":
		return b, tea.Quit
	case "esc":
		b.Filter("")
	case "/":
		b.editing = true
	default:
		var cmd tea.Cmd
		b.table, cmd = b.table.Update(msg)
		return b, cmd
	}
	return b, nil
}

func (b *Browser) View() string {
	var sb strings.Builder
	title := b.title
	if b.filter != "" {
		title += fmt.Sprintf(" (%d/%d)", len(b.shown), len(b.all))
	}
	sb.WriteString(lipgloss.NewStyle().Bold(true).Render(title))
	sb.WriteString("\n\n")
	sb.WriteString(b.table.View())
	sb.WriteString("\n")

	switch {
	case b.editing:
		sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).Render("/" + b.filter + "█"))
		sb.WriteString("\n")
	case b.filter != "":
		sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true).Render("filter: " + b.filter))
		sb.WriteString("\n")
	}
	help := "↑/↓ navigate • / filter • esc clear • q quit"
	if b.editing {
		help = "enter apply • esc cancel • ctrl+c quit"
	}
	sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render(help))
	return sb.String()
}
