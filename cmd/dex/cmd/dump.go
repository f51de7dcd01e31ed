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
	"io"
	"os"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/apex/log"
	"github.com/blacktop/go-dex/internal/colors"
	"github.com/blacktop/go-dex/internal/config"
	"github.com/blacktop/go-dex/internal/utils"
	"github.com/blacktop/go-dex/pkg/dex"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(dumpCmd)
	dumpCmd.Flags().StringP("class", "c", "", "Only dump this class (descriptor or Java name)")
	dumpCmd.Flags().Bool("code", false, "Dump code units, try blocks and handlers")
	dumpCmd.Flags().BoolP("annotations", "a", false, "Dump annotations")
	dumpCmd.Flags().BoolP("static-values", "s", false, "Dump static field initial values")
	dumpCmd.Flags().BoolP("debug", "d", false, "Dump line number tables")
	dumpCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	dumpCmd.MarkZshCompPositionalArgumentFile(1, "*.dex")

	viper.BindPFlag("dump.class", dumpCmd.Flags().Lookup("class"))
	viper.BindPFlag("dump.code", dumpCmd.Flags().Lookup("code"))
	viper.BindPFlag("dump.annotations", dumpCmd.Flags().Lookup("annotations"))
	viper.BindPFlag("dump.static-values", dumpCmd.Flags().Lookup("static-values"))
	viper.BindPFlag("dump.debug", dumpCmd.Flags().Lookup("debug"))
	viper.BindPFlag("dump.json", dumpCmd.Flags().Lookup("json"))
}

// toDescriptor accepts "com.example.Foo" as well as "Lcom/example/Foo;".
func toDescriptor(name string) string {
	if strings.HasPrefix(name, "L") && strings.HasSuffix(name, ";") {
		return name
	}
	return "L" + strings.ReplaceAll(name, ".", "/") + ";"
}

// dumpCmd represents the dump command
var dumpCmd = &cobra.Command{
	Use:     "dump <DEX>",
	Aliases: []string{"d"},
	Short:   "Dump DEX classes",
	Example: heredoc.Doc(`
		# Dump every class declaration
		❯ dex dump classes.dex

		# Dump one class with its bytecode and line tables
		❯ dex dump classes.dex --class com.example.MainActivity --code --debug

		# Dump one class as JSON
		❯ dex dump classes.dex -c Lcom/example/MainActivity; --json
	`),
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := config.LoadConfig()
		if err != nil {
			return err
		}

		f, err := openDex(args[0])
		if err != nil {
			return err
		}
		log.WithField("classes", len(f.Classes)).Debug("Parsed DEX")

		classes := f.Classes
		if name := viper.GetString("dump.class"); name != "" {
			class, err := f.Class(toDescriptor(name))
			if err != nil {
				return err
			}
			classes = []*dex.ClassDefinition{class}
		}

		if viper.GetBool("dump.json") {
			return printJSON(classes)
		}

		d := &classDumper{w: os.Stdout, conf: conf}
		for _, class := range classes {
			if err := d.dump(class); err != nil {
				return err
			}
		}
		return nil
	},
}

type classDumper struct {
	w    io.Writer
	conf *config.Config
	// err is the first write error; later writes are skipped once it is set.
	err error
}

func (d *classDumper) printf(format string, args ...any) {
	if d.err != nil {
		return
	}
	if _, err := fmt.Fprintf(d.w, format, args...); err != nil {
		d.err = fmt.Errorf("failed to write class dump: %w", err)
	}
}

func (d *classDumper) dump(c *dex.ClassDefinition) error {
	d.printf("%s %s", colors.Flags(flagPrefix(c.AccessFlags)+"class"), colors.Class(c.Type))
	if c.Superclass != "" {
		d.printf(" extends %s", colors.Type(c.Superclass))
	}
	if len(c.Interfaces) > 0 {
		d.printf(" implements %s", colors.Type(strings.Join(c.Interfaces, ", ")))
	}
	d.printf("\n")
	if c.SourceFile != "" {
		d.printf("  %s\n", colors.Comment("// source: %s", c.SourceFile))
	}

	var (
		fieldAnnots  map[*dex.Field][]dex.AnnotationItem
		methodAnnots map[*dex.Method][]dex.AnnotationItem
		paramAnnots  map[*dex.Method][][]dex.AnnotationItem
	)
	if d.conf.Dump.Annotations && c.Annotations != nil {
		for _, a := range c.Annotations.Class {
			d.printf("  %s\n", a)
		}
		fieldAnnots = make(map[*dex.Field][]dex.AnnotationItem)
		for _, fa := range c.Annotations.Fields {
			fieldAnnots[fa.Field] = fa.Annotations
		}
		methodAnnots = make(map[*dex.Method][]dex.AnnotationItem)
		for _, ma := range c.Annotations.Methods {
			methodAnnots[ma.Method] = ma.Annotations
		}
		paramAnnots = make(map[*dex.Method][][]dex.AnnotationItem)
		for _, pa := range c.Annotations.Parameters {
			paramAnnots[pa.Method] = pa.Annotations
		}
	}

	if c.ClassData == nil {
		d.printf("\n")
		return d.err
	}
	cd := c.ClassData

	d.fields("static fields", cd.StaticFields, c.StaticValues, fieldAnnots)
	d.fields("instance fields", cd.InstanceFields, nil, fieldAnnots)
	d.methods("direct methods", cd.DirectMethods, methodAnnots, paramAnnots)
	d.methods("virtual methods", cd.VirtualMethods, methodAnnots, paramAnnots)
	d.printf("\n")
	return d.err
}

func flagPrefix(flags dex.AccessFlags) string {
	if len(flags) == 0 {
		return ""
	}
	return flags.String() + " "
}

func (d *classDumper) fields(title string, fields []dex.EncodedField, values []dex.EncodedValue, annots map[*dex.Field][]dex.AnnotationItem) {
	if len(fields) == 0 {
		return
	}
	d.printf("  %s\n", colors.Comment("// %s", title))
	for i, ef := range fields {
		d.printf("    %s%s %s", colors.Flags(flagPrefix(ef.AccessFlags)), colors.Type(ef.Field.Type), colors.Field(ef.Field.Name))
		// static values are positional; trailing fields keep their default
		if d.conf.Dump.StaticValues && i < len(values) {
			d.printf(" = %s", values[i].Format())
		}
		d.printf("\n")
		for _, a := range annots[ef.Field] {
			d.printf("      %s\n", a)
		}
	}
}

func (d *classDumper) methods(title string, methods []dex.EncodedMethod, annots map[*dex.Method][]dex.AnnotationItem, params map[*dex.Method][][]dex.AnnotationItem) {
	if len(methods) == 0 {
		return
	}
	d.printf("  %s\n", colors.Comment("// %s", title))
	for _, em := range methods {
		m := em.Method
		d.printf("    %s%s%s\n", colors.Flags(flagPrefix(em.AccessFlags)), colors.Method(m.Name), m.Prototype.Descriptor())
		for _, a := range annots[m] {
			d.printf("      %s\n", a)
		}
		for i, set := range params[m] {
			for _, a := range set {
				d.printf("      %s %s\n", colors.Comment("param[%d]", i), a)
			}
		}
		if em.Code == nil {
			continue
		}
		if d.conf.Dump.Code {
			d.code(em.Code)
		}
		if d.conf.Dump.Debug && em.Code.DebugInfo != nil {
			d.debug(em.Code.DebugInfo)
		}
	}
}

func (d *classDumper) code(c *dex.Code) {
	d.printf("      %s\n", colors.Comment("registers=%d ins=%d outs=%d insns=%d", c.RegistersSize, c.InsSize, c.OutsSize, len(c.Insns)))
	d.printf("%s", utils.DumpInsns(c.Insns, "      "))
	for _, t := range c.Tries {
		d.printf("      try %s-%s", colors.Addr("%04x", t.StartAddr), colors.Addr("%04x", t.StartAddr+uint32(t.InsnCount)))
		for _, h := range t.Handler.Handlers {
			d.printf(" catch %s @%04x", colors.Type(h.Type), h.Addr)
		}
		if t.Handler.CatchAllAddr != nil {
			d.printf(" catch-all @%04x", *t.Handler.CatchAllAddr)
		}
		d.printf("\n")
	}
}

func (d *classDumper) debug(di *dex.DebugInfo) {
	for i, name := range di.ParameterNames {
		if name != "" {
			d.printf("      %s %s\n", colors.Comment(".param p%d", i), name)
		}
	}
	for _, p := range di.Positions() {
		d.printf("      %s %s\n", colors.Comment(".line %d", p.Line), colors.Addr("@%04x", p.Addr))
	}
}
