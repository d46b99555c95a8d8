package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vsariola/s5b"
)

var infoCmd = &cobra.Command{
	Use:   "info [flags] path...",
	Short: "List the sequence bindings of the instruments in .yml documents",
	Args:  cobra.MinimumNArgs(1),
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
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			fmt.Fprintf(w, "%v\n#\tName", filename)
			for _, t := range s5b.SequenceTypes {
				fmt.Fprintf(w, "\t%v", t.Title())
			}
			fmt.Fprintln(w, "\tMask\tRelease\tProject block")
			for i := range doc.Instruments {
				instr := &doc.Instruments[i]
				fmt.Fprintf(w, "%d\t%v", i, instr.Name)
				for _, t := range s5b.SequenceTypes {
					if instr.Slots.Enabled(t) {
						fmt.Fprintf(w, "\t%d", instr.Slots.Index(t))
					} else {
						fmt.Fprint(w, "\t-")
					}
				}
				block, err := projectBlock(instr)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "\t%05b\t%v\t% X\n", instr.SequenceMask(doc.Pool()), instr.CanRelease(doc.Pool()), block)
			}
			fmt.Fprintln(w, strings.Repeat("-", 8))
			return w.Flush()
		})
	},
}
