package table

import (
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"abcdef", 4, "abc…"},
		{"abcdef", 1, "…"},
		{"Lcom/example/Foo;", 8, "Lcom/ex…"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestColumnWidths(t *testing.T) {
	tb := New(false)
	tb.SetHeaders("a", "bb")
	tb.AppendRow("xxx", "y")
	if got, want := tb.columnWidths(), []int{5, 4}; !reflect.DeepEqual(got, want) {
		t.Errorf("columnWidths() = %v, want %v", got, want)
	}

	tb.AppendRow("x", strings.Repeat("y", 20))
	tb.maxWidth = 10
	if got, want := tb.columnWidths(), []int{5, 8}; !reflect.DeepEqual(got, want) {
		t.Errorf("columnWidths() capped = %v, want %v", got, want)
	}
}

func TestRender(t *testing.T) {
	if got := New(false).Render(); got != "" {
		t.Errorf("Render() on empty table = %q", got)
	}

	tb := New(false)
	tb.SetHeaders("Table", "Count")
	tb.SetColumnAlignment(1, lipgloss.Right)
	tb.SetColumnAlignment(5, lipgloss.Right)
	tb.AppendRow("strings", "12")
	tb.AppendRow("types", "3")
	if tb.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", tb.Len())
	}

	lines := strings.Split(tb.Render(), "\n")
	if len(lines) != 4 {
		t.Fatalf("Render() has %d lines, want 4:\n%s", len(lines), strings.Join(lines, "\n"))
	}
	if !strings.Contains(lines[1], "+") || strings.Trim(lines[1], "-+") != "" {
		t.Errorf("separator line = %q", lines[1])
	}
	width := lipgloss.Width(lines[0])
	for i, l := range lines {
		if lipgloss.Width(l) != width {
			t.Errorf("line %d width = %d, want %d", i, lipgloss.Width(l), width)
		}
	}
	if !strings.Contains(lines[2], "strings") || !strings.Contains(lines[3], "types") {
		t.Errorf("rows out of order:\n%s", strings.Join(lines, "\n"))
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestBrowserFilter(t *testing.T) {
	rows := [][]string{
		{"0", "<init>"},
		{"1", "Landroid/app/Activity;"},
		{"2", "onCreate"},
	}
	b := NewBrowser("strings", []string{"Index", "String"}, rows)
	if len(b.Shown()) != 3 {
		t.Fatalf("Shown() = %d rows, want 3", len(b.Shown()))
	}

	b.Filter("ACTIVITY")
	if got := b.Shown(); len(got) != 1 || got[0][0] != "1" {
		t.Errorf("Filter(ACTIVITY) = %v", got)
	}
	if !strings.Contains(b.View(), "(1/3)") {
		t.Errorf("View() is missing the match count")
	}

	b.Filter("")
	if len(b.Shown()) != 3 {
		t.Errorf("Filter(\"\") = %d rows, want 3", len(b.Shown()))
	}
}

func TestBrowserKeys(t *testing.T) {
	rows := [][]string{{"0", "alpha"}, {"1", "beta"}}
	b := NewBrowser("strings", []string{"Index", "String"}, rows)

	b.Update(runes("/"))
	b.Update(runes("b"))
	b.Update(runes("e"))
	if got := b.Shown(); len(got) != 1 || got[0][1] != "beta" {
		t.Errorf("after typing filter, Shown() = %v", got)
	}
	b.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if b.filter != "b" {
		t.Errorf("after backspace, filter = %q, want %q", b.filter, "b")
	}
	// q is part of the filter while editing
	if _, cmd := b.Update(runes("q")); cmd != nil {
		t.Error("q quit while editing the filter")
	}
	b.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if b.editing || b.filter != "" || len(b.Shown()) != 2 {
		t.Errorf("esc did not clear the filter: editing=%v filter=%q", b.editing, b.filter)
	}
	if _, cmd := b.Update(runes("q")); cmd == nil {
		t.Error("q did not quit")
	}
}
