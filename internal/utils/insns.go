package utils

import (
	"fmt"
	"strings"
)

// InsnsPerLine is the number of 16-bit code units per dumped line.
const InsnsPerLine = 8

// DumpInsns renders a method's code units, InsnsPerLine per line, each line
// prefixed with the code-unit address of its first unit. Units are shown as
// they appear in memory after byte-order conversion.
func DumpInsns(insns []uint16, indent string) string {
	if len(insns) == 0 {
		return ""
	}
	var sb strings.Builder
	for addr := 0; addr < len(insns); addr += InsnsPerLine {
		line := insns[addr:min(addr+InsnsPerLine, len(insns))]
		sb.WriteString(indent)
		fmt.Fprintf(&sb, "%04x:", addr)
		for _, u := range line {
			fmt.Fprintf(&sb, " %04x", u)
		}
		sb.WriteByte('\n')
	}
	return colorZeros(sb.String())
}
