package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/vsariola/s5b"
)

// output writes contents next to the output path (or the working directory)
// using the base name of filename with its extension replaced by extension.
func output(filename string, extension string, contents []byte) error {
	if viper.GetBool("stdout") {
		_, err := os.Stdout.Write(contents)
		return err
	}
	_, name := filepath.Split(filename)
	var dir string
	if outPath := viper.GetString("output"); outPath != "" {
		// check if it's an already existing directory and the user just forgot trailing slash
		if info, err := os.Stat(outPath); err == nil && info.IsDir() {
			dir = outPath
		} else {
			outdir, outname := filepath.Split(outPath)
			if outdir != "" {
				dir = outdir
			}
			if outname != "" {
				name = outname
			}
		}
	}
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return fmt.Errorf("could not get working directory, specify the output directory explicitly: %v", err)
		}
	}
	name = strings.TrimSuffix(name, filepath.Ext(name)) + extension
	f := filepath.Join(dir, name)
	original, err := os.ReadFile(f)
	if err == nil {
		if bytes.Equal(original, contents) {
			logger.Debug("unchanged", "file", f)
			return nil
		}
		if !viper.GetBool("list") && viper.GetBool("safe") {
			return fmt.Errorf("file %v would be overwritten", f)
		}
	}
	if viper.GetBool("list") {
		fmt.Println(f)
		return nil
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return fmt.Errorf("could not create output directory %v: %v", dir, err)
	}
	if err := os.WriteFile(f, contents, 0644); err != nil {
		return fmt.Errorf("could not write file %v: %v", f, err)
	}
	logger.Info("wrote", "file", f, "bytes", len(contents))
	return nil
}

// expandInputs replaces every directory in params with the files in it
// matching pattern.
func expandInputs(params []string, pattern string) ([]string, error) {
	var ret []string
	for _, param := range params {
		if info, err := os.Stat(param); err == nil && info.IsDir() {
			files, err := filepath.Glob(filepath.Join(param, pattern))
			if err != nil {
				return nil, fmt.Errorf("could not glob the path %v for %v files: %v", param, pattern, err)
			}
			ret = append(ret, files...)
			continue
		}
		ret = append(ret, param)
	}
	return ret, nil
}

func readDocument(filename string) (*s5b.Document, error) {
	inputBytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read file %v: %v", filename, err)
	}
	var doc s5b.Document
	if err := yaml.Unmarshal(inputBytes, &doc); err != nil {
		return nil, fmt.Errorf("document could not be unmarshaled as .yml: %w", err)
	}
	return &doc, nil
}

// forEachInput runs process on every input, logging failures, and returns an
// error if any of them failed.
func forEachInput(inputs []string, process func(string) error) error {
	failed := 0
	for _, file := range inputs {
		if err := process(file); err != nil {
			logger.Error("could not process file", "file", file, "err", err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(inputs))
	}
	return nil
}
