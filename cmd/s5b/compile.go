package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vsariola/s5b/compiler"
)

var compileCmd = &cobra.Command{
	Use:   "compile [flags] path...",
	Short: "Compile .yml documents into assembly",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var comp *compiler.Compiler
		var err error
		if tmplDir := viper.GetString("templates"); tmplDir != "" {
			comp, err = compiler.NewFromTemplates(tmplDir)
		} else {
			comp, err = compiler.New()
		}
		if err != nil {
			return fmt.Errorf("error creating compiler: %w", err)
		}
		inputs, err := expandInputs(args, "*.yml")
		if err != nil {
			return err
		}
		return forEachInput(inputs, func(filename string) error {
			doc, err := readDocument(filename)
			if err != nil {
				return err
			}
			compiled, err := comp.Document(doc)
			if err != nil {
				return fmt.Errorf("compiling failed: %w", err)
			}
			if exts := viper.GetString("extensions"); exts != "" {
				compiled = filterExtensions(compiled, strings.Split(exts, ","))
			}
			for extension, code := range compiled {
				if err := output(filename, extension, []byte(code)); err != nil {
					return fmt.Errorf("error outputting %v file: %w", extension, err)
				}
			}
			return nil
		})
	},
}

func init() {
	compileCmd.Flags().StringP("templates", "t", "", "use the templates in this directory instead of the standard templates")
	compileCmd.Flags().StringP("extensions", "e", "", "output only the compiled files with these comma separated extensions, e.g. asm,inc")
}

func filterExtensions(input map[string]string, extensions []string) map[string]string {
	ret := map[string]string{}
	for _, ext := range extensions {
		extWithDot := "." + strings.TrimPrefix(ext, ".")
		if inputVal, ok := input[extWithDot]; ok {
			ret[extWithDot] = inputVal
		}
	}
	return ret
}
