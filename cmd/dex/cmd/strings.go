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
	"regexp"
	"strconv"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/blacktop/go-dex/internal/colors"
	"github.com/blacktop/go-dex/internal/table"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(stringsCmd)
	stringsCmd.Flags().StringP("pattern", "p", "", "Only show strings matching this regex")
	stringsCmd.Flags().BoolP("interactive", "i", false, "Browse the string table interactively")
	stringsCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	stringsCmd.MarkFlagsMutuallyExclusive("interactive", "json")
	stringsCmd.MarkZshCompPositionalArgumentFile(1, "*.dex")

	viper.BindPFlag("strings.pattern", stringsCmd.Flags().Lookup("pattern"))
	viper.BindPFlag("strings.interactive", stringsCmd.Flags().Lookup("interactive"))
	viper.BindPFlag("strings.json", stringsCmd.Flags().Lookup("json"))
}

type indexedString struct {
	Index int    `json:"index"`
	Value string `json:"value"`
}

func filterStrings(strs []string, pattern string) ([]indexedString, error) {
	var re *regexp.Regexp
	if pattern != "" {
		var err error
		if re, err = regexp.Compile(pattern); err != nil {
			return nil, errors.Wrapf(err, "invalid --pattern %q", pattern)
		}
	}
	out := make([]indexedString, 0, len(strs))
	for i, s := range strs {
		if re == nil || re.MatchString(s) {
			out = append(out, indexedString{Index: i, Value: s})
		}
	}
	return out, nil
}

// stringsCmd represents the strings command
var stringsCmd = &cobra.Command{
	Use:     "strings <DEX>",
	Aliases: []string{"str"},
	Short:   "List the DEX string table",
	Example: heredoc.Doc(`
		# List every string with its index
		❯ dex strings classes.dex

		# Only URLs
		❯ dex strings classes.dex --pattern '^https?://'

		# Browse and filter interactively
		❯ dex strings classes.dex -i
	`),
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := openDex(args[0])
		if err != nil {
			return err
		}
		strs, err := filterStrings(f.FileData.Strings, viper.GetString("strings.pattern"))
		if err != nil {
			return err
		}

		if viper.GetBool("strings.json") {
			return printJSON(strs)
		}

		if viper.GetBool("strings.interactive") {
			rows := make([][]string, 0, len(strs))
			for _, s := range strs {
				rows = append(rows, []string{strconv.Itoa(s.Index), strconv.Quote(s.Value)})
			}
			return table.NewBrowser(args[0], []string{"Index", "String"}, rows).Run()
		}

		width := len(strconv.Itoa(len(f.FileData.Strings)))
		for _, s := range strs {
			fmt.Printf("%s %s\n", colors.Addr("%*d", width, s.Index), strconv.Quote(s.Value))
		}
		return nil
	},
}
