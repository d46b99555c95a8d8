package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/vsariola/s5b"
)

var exportCmd = &cobra.Command{
	Use:   "export [flags] path...",
	Short: "Export every instrument of .yml documents as .fti files",
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
			for i := range doc.Instruments {
				var buf bytes.Buffer
				if err := s5b.WriteInstrumentFile(&buf, &doc.Instruments[i], doc.Pool()); err != nil {
					return fmt.Errorf("instrument %d (%v): %w", i, doc.Instruments[i].Name, err)
				}
				if err := output(filename, fmt.Sprintf("_%02d.fti", i), buf.Bytes()); err != nil {
					return err
				}
			}
			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import [flags] file.fti...",
	Short: "Import .fti instrument files into a .yml document",
	Long: `Import reads .fti instrument files and adds them to a document. The
sequences of each instrument are copied into the document's sequence pool.
If the pool has no room for a sequence, the sequence is dropped and the
instrument is imported without it.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc := &s5b.Document{}
		into := viper.GetString("into")
		if into != "" {
			var err error
			if doc, err = readDocument(into); err != nil {
				return err
			}
		}
		inputs, err := expandInputs(args, "*.fti")
		if err != nil {
			return err
		}
		if err := forEachInput(inputs, func(filename string) error {
			f, err := os.Open(filename)
			if err != nil {
				return fmt.Errorf("could not open file %v: %v", filename, err)
			}
			defer f.Close()
			instr, err := s5b.ReadInstrumentFile(f, doc.Pool(), nil)
			if err != nil {
				return err
			}
			logger.Debug("imported", "file", filename, "name", instr.Name)
			doc.Instruments = append(doc.Instruments, *instr)
			return nil
		}); err != nil {
			return err
		}
		contents, err := yaml.Marshal(doc)
		if err != nil {
			return fmt.Errorf("could not marshal the document as yaml file: %v", err)
		}
		target := inputs[0]
		if into != "" {
			target = into
		}
		return output(target, ".yml", contents)
	},
}

func init() {
	importCmd.Flags().String("into", "", "add the instruments to this .yml document instead of a new one")
}
