// Package colors provides the CLI color palette.
//
// Colors are disabled automatically when stdout is not a terminal; Init
// overrides that from the --color/--no-color flags.
package colors

import "github.com/fatih/color"

// Init overrides the auto-detected setting when forceColor is non-nil.
func Init(forceColor *bool) {
	if forceColor != nil {
		color.NoColor = !*forceColor
	}
}

// Enabled reports whether colors are currently on.
func Enabled() bool {
	return !color.NoColor
}

func Bold() *color.Color  { return color.New(color.Bold) }
func Faint() *color.Color { return color.New(color.Faint) }

func Green() *color.Color  { return color.New(color.FgGreen) }
func Yellow() *color.Color { return color.New(color.FgYellow) }
func Red() *color.Color    { return color.New(color.FgRed) }

func BoldHiBlue() *color.Color    { return color.New(color.Bold, color.FgHiBlue) }
func BoldHiMagenta() *color.Color { return color.New(color.Bold, color.FgHiMagenta) }
func BoldHiGreen() *color.Color   { return color.New(color.Bold, color.FgHiGreen) }

func FaintHiBlue() *color.Color { return color.New(color.Faint, color.FgHiBlue) }
func FaintCyan() *color.Color   { return color.New(color.Faint, color.FgCyan) }
func FaintYellow() *color.Color { return color.New(color.Faint, color.FgYellow) }

// Semantic colors for DEX listings.
var (
	Field   = BoldHiBlue().SprintFunc()
	Class   = BoldHiMagenta().SprintFunc()
	Method  = BoldHiGreen().SprintFunc()
	Flags   = FaintCyan().SprintFunc()
	Type    = Yellow().SprintFunc()
	Addr    = Faint().SprintfFunc()
	Comment = FaintYellow().SprintfFunc()
)
