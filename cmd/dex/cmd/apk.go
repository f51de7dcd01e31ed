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
	"strconv"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/blacktop/go-dex/internal/colors"
	"github.com/blacktop/go-dex/internal/config"
	"github.com/blacktop/go-dex/internal/table"
	"github.com/blacktop/go-dex/pkg/apk"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(apkCmd)
	apkCmd.Flags().IntP("workers", "w", 0, "Number of DEX files parsed concurrently (default: number of CPUs)")
	apkCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	apkCmd.MarkZshCompPositionalArgumentFile(1, "*.apk")

	viper.BindPFlag("apk.workers", apkCmd.Flags().Lookup("workers"))
	viper.BindPFlag("apk.json", apkCmd.Flags().Lookup("json"))
}

// apkCmd represents the apk command
var apkCmd = &cobra.Command{
	Use:   "apk <APK>",
	Short: "Parse every classes*.dex inside an APK",
	Example: heredoc.Doc(`
		# Summarize the DEX files of an APK
		❯ dex apk app-release.apk

		# Limit parsing to two DEX files at a time
		❯ dex apk app-release.apk --workers 2 --json
	`),
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := config.LoadConfig()
		if err != nil {
			return err
		}

		a, err := apk.Open(args[0], conf.APK.Workers)
		if err != nil {
			return err
		}

		if viper.GetBool("apk.json") {
			return printJSON(a)
		}

		if a.PackageName != "" {
			fmt.Printf("%s     %s\n", colorField("Package:"), a.PackageName)
			fmt.Printf("%s     %s (%d)\n", colorField("Version:"), a.VersionName, a.VersionCode)
			fmt.Printf("%s     %d\n", colorField("Min SDK:"), a.MinSDK)
		}
		fmt.Printf("%s %s\n\n", colorField("DEX Classes:"), humanize.Comma(int64(a.Classes())))

		t := table.New(colors.Enabled())
		t.SetHeaders("Name", "Version", "Size", "Strings", "Methods", "Classes")
		for col := 2; col < 6; col++ {
			t.SetColumnAlignment(col, lipgloss.Right)
		}
		for _, d := range a.Dex {
			t.AppendRow(
				d.Name,
				fmt.Sprintf("%03d", d.File.Header.Version),
				humanize.Bytes(d.Size),
				strconv.Itoa(len(d.File.FileData.Strings)),
				strconv.Itoa(len(d.File.FileData.Methods)),
				strconv.Itoa(len(d.File.Classes)),
			)
		}
		t.FitTerminal()
		fmt.Println(t.Render())
		return nil
	},
}
