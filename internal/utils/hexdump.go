// Package utils holds small formatting helpers shared by the dex CLI.
package utils

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/blacktop/go-dex/internal/colors"
)

var (
	colorFaint = colors.FaintHiBlue().SprintFunc()
	zerosRE    = regexp.MustCompile(`\s(0000\s)+|\s(00\s)+|\.`)
)

func colorZeros(dump string) string {
	if len(dump) == 0 || !colors.Enabled() {
		return dump
	}
	return zerosRE.ReplaceAllStringFunc(dump, func(s string) string {
		return colorFaint(s)
	})
}

func printable(b byte) byte {
	if b < 32 || b > 126 {
		return '.'
	}
	return b
}

// HexDump returns a `hexdump -C` style dump of data starting at file offset off.
func HexDump(data []byte, off uint64) string {
	if len(data) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.Grow((1 + (len(data)-1)/16) * 79)

	for line := 0; line < len(data); line += 16 {
		chunk := data[line:min(line+16, len(data))]
		fmt.Fprintf(&sb, "%08x  ", off+uint64(line))
		ascii := make([]byte, 0, 16)
		for i := range 16 {
			if i < len(chunk) {
				sb.WriteString(hex.EncodeToString(chunk[i : i+1]))
				sb.WriteByte(' ')
				ascii = append(ascii, printable(chunk[i]))
			} else {
				sb.WriteString("   ")
			}
			if i == 7 {
				sb.WriteByte(' ')
			}
		}
		fmt.Fprintf(&sb, " |%s|\n", ascii)
	}
	return colorZeros(sb.String())
}
