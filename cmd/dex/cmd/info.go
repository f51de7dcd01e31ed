/*
Copyright © 2024-2026 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/blacktop/go-dex/internal/colors"
	"github.com/blacktop/go-dex/internal/table"
	"github.com/blacktop/go-dex/internal/utils"
	"github.com/blacktop/go-dex/pkg/dex"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	infoCmd.Flags().Bool("link", false, "Hexdump the link data section")
	infoCmd.MarkZshCompPositionalArgumentFile(1, "*.dex")

	viper.BindPFlag("info.json", infoCmd.Flags().Lookup("json"))
	viper.BindPFlag("info.link", infoCmd.Flags().Lookup("link"))
}

type infoSummary struct {
	File          string        `json:"file"`
	Header        dex.Header    `json:"header"`
	Strings       int           `json:"strings"`
	Types         int           `json:"types"`
	Prototypes    int           `json:"prototypes"`
	Fields        int           `json:"fields"`
	Methods       int           `json:"methods"`
	Classes       int           `json:"classes"`
	MethodHandles int           `json:"method_handles"`
	CallSites     int           `json:"call_sites"`
	MapList       []dex.MapItem `json:"map_list,omitempty"`
	LinkDataSize  int           `json:"link_data_size,omitempty"`
}

func summarize(path string, f *dex.File) infoSummary {
	return infoSummary{
		File:          filepath.Base(path),
		Header:        f.Header,
		Strings:       len(f.FileData.Strings),
		Types:         len(f.FileData.Types),
		Prototypes:    len(f.FileData.Prototypes),
		Fields:        len(f.FileData.Fields),
		Methods:       len(f.FileData.Methods),
		Classes:       len(f.Classes),
		MethodHandles: len(f.FileData.MethodHandles),
		CallSites:     len(f.FileData.CallSites),
		MapList:       f.MapList,
		LinkDataSize:  len(f.LinkData),
	}
}

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:     "info <DEX>",
	Aliases: []string{"i"},
	Short:   "Display DEX header, table counts and map list",
	Example: heredoc.Doc(`
		# Show the header and map list
		❯ dex info classes.dex

		# Output as JSON
		❯ dex info classes.dex --json
	`),
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := openDex(args[0])
		if err != nil {
			return err
		}
		sum := summarize(args[0], f)

		if viper.GetBool("info.json") {
			return printJSON(sum)
		}

		fmt.Printf("%s      %s\n", colorField("File:"), sum.File)
		fmt.Printf("%s      %s\n", colorField("Size:"), humanize.Bytes(uint64(f.Header.FileSize)))
		fmt.Println()
		fmt.Println(f.Header)
		fmt.Println()

		counts := table.New(colors.Enabled())
		counts.SetHeaders("Table", "Count")
		counts.SetColumnAlignment(1, lipgloss.Right)
		for _, c := range []struct {
			name string
			n    int
		}{
			{"strings", sum.Strings},
			{"types", sum.Types},
			{"prototypes", sum.Prototypes},
			{"fields", sum.Fields},
			{"methods", sum.Methods},
			{"classes", sum.Classes},
			{"method handles", sum.MethodHandles},
			{"call sites", sum.CallSites},
		} {
			counts.AppendRow(c.name, humanize.Comma(int64(c.n)))
		}
		fmt.Println(counts.Render())

		if len(f.MapList) > 0 {
			fmt.Printf("\n%s\n", colorField("Map List:"))
			ml := table.New(colors.Enabled())
			ml.SetHeaders("Type", "Code", "Size", "Offset")
			ml.SetColumnAlignment(2, lipgloss.Right)
			for _, item := range f.MapList {
				ml.AppendRow(
					item.Type.String(),
					fmt.Sprintf("%#04x", uint16(item.Type)),
					strconv.FormatUint(uint64(item.Size), 10),
					fmt.Sprintf("%#x", item.Offset),
				)
			}
			ml.FitTerminal()
			fmt.Println(ml.Render())
		}

		if len(f.LinkData) > 0 {
			fmt.Printf("\n%s %s\n", colorField("Link Data:"), humanize.Bytes(uint64(len(f.LinkData))))
			if viper.GetBool("info.link") {
				fmt.Print(utils.HexDump(f.LinkData, uint64(f.Header.Data.Offset)+uint64(f.Header.Data.Size)))
			}
		}

		return nil
	},
}
