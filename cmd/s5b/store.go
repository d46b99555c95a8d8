package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vsariola/s5b"
	"github.com/vsariola/s5b/version"
)

var storeCmd = &cobra.Command{
	Use:   "store [flags] path...",
	Short: "Write the project block of every instrument of .yml documents",
	Long: `Store writes the slot bindings of each instrument in the project file
layout: the slot count followed by an enabled flag and a sequence index per
slot. Instrument i of doc.yml is written to doc_<i>.bin.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputs, err := expandInputs(args, "*.yml")
		if err != nil {
			return err
		}
		return forEachInput(inputs, func(filename string) error {
			doc, err := readDocument(filename)
			if err != nil {
				return err
			}
			for i := range doc.Instruments {
				block, err := projectBlock(&doc.Instruments[i])
				if err != nil {
					return err
				}
				if err := output(filename, fmt.Sprintf("_%02d.bin", i), block); err != nil {
					return err
				}
			}
			return nil
		})
	},
}

func projectBlock(instr *s5b.Instrument) ([]byte, error) {
	var buf bytes.Buffer
	if err := instr.Store(&buf); err != nil {
		return nil, fmt.Errorf("instrument %v: %w", instr.Name, err)
	}
	return buf.Bytes(), nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of s5b",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.VersionOrHash)
	},
}
