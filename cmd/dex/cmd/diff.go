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
	"os"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/alecthomas/chroma/v2/quick"
	"github.com/aymanbagabas/go-udiff"
	"github.com/blacktop/go-dex/internal/colors"
	"github.com/blacktop/go-dex/internal/config"
	"github.com/blacktop/go-dex/pkg/dex"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(diffCmd)
	diffCmd.MarkZshCompPositionalArgumentFile(1, "*.dex")
	diffCmd.MarkZshCompPositionalArgumentFile(2, "*.dex")
}

// renderClasses returns the plain dump listing of classes.
func renderClasses(classes []*dex.ClassDefinition, conf *config.Config) (string, error) {
	var sb strings.Builder
	d := &classDumper{w: &sb, conf: conf}
	for _, class := range classes {
		if err := d.dump(class); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

// diffClasses returns a unified diff of the two listings, empty when they match.
func diffClasses(oldName, newName string, oldClasses, newClasses []*dex.ClassDefinition, conf *config.Config) (string, error) {
	a, err := renderClasses(oldClasses, conf)
	if err != nil {
		return "", err
	}
	b, err := renderClasses(newClasses, conf)
	if err != nil {
		return "", err
	}
	if a == b {
		return "", nil
	}
	return udiff.Unified(oldName, newName, a, b), nil
}

// diffCmd represents the diff command
var diffCmd = &cobra.Command{
	Use:   "diff <OLD> <NEW>",
	Short: "Diff the class listings of two DEX files",
	Long:  "Diff the class listings of two DEX files. The dump.* config settings select what each listing includes.",
	Example: heredoc.Doc(`
		# Show which classes, fields and methods changed
		❯ dex diff old/classes.dex new/classes.dex

		# Include bytecode in the comparison
		❯ DEX_DUMP_CODE=true dex diff old/classes.dex new/classes.dex
	`),
	Args:          cobra.ExactArgs(2),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := config.LoadConfig()
		if err != nil {
			return err
		}
		oldFile, err := openDex(args[0])
		if err != nil {
			return err
		}
		newFile, err := openDex(args[1])
		if err != nil {
			return err
		}

		colorOn := colors.Enabled()
		plain := false
		colors.Init(&plain)
		out, err := diffClasses(args[0], args[1], oldFile.Classes, newFile.Classes, conf)
		colors.Init(&colorOn)
		if err != nil {
			return err
		}

		if out == "" {
			fmt.Println("No differences found")
			return nil
		}
		if colorOn {
			return quick.Highlight(os.Stdout, out, "diff", "terminal256", "nord")
		}
		fmt.Print(out)
		return nil
	},
}
