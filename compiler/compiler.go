package compiler

import (
	"bytes"
	"embed"
	"fmt"
	"path/filepath"
	"sort"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/vsariola/s5b"
	"github.com/vsariola/s5b/version"
)

const (
	InstrumentLabelFormat = "ft_inst_%d"
	InstrumentListLabel   = "ft_instrument_list"
)

type Compiler struct {
	Template *template.Template
}

type sequenceRef struct {
	index int
	typ   s5b.SequenceType
}

// Compiled is the compiled form of a document, before linking.
type Compiled struct {
	Instruments []*Chunk
	Sequences   []*Chunk
	List        *Chunk
}

//go:embed templates/*
var templateFS embed.FS

var templates = []string{"instruments.asm", "instruments.inc"}

// New returns a compiler using the default templates.
func New() (*Compiler, error) {
	tmpl, err := template.New("base").Funcs(sprig.TxtFuncMap()).ParseFS(templateFS, "templates/*.*")
	if err != nil {
		return nil, fmt.Errorf(`could not create templates: %v`, err)
	}
	return &Compiler{Template: tmpl}, nil
}

func NewFromTemplates(templateDirectory string) (*Compiler, error) {
	globPtrn := filepath.Join(templateDirectory, "*.*")
	tmpl, err := template.New("base").Funcs(sprig.TxtFuncMap()).ParseGlob(globPtrn)
	if err != nil {
		return nil, fmt.Errorf(`could not create template based on directory "%v": %v`, templateDirectory, err)
	}
	return &Compiler{Template: tmpl}, nil
}

// Compile compiles every instrument of doc, the instrument list and every
// sequence an instrument refers to. The sequence pool of doc is not changed.
func Compile(doc *s5b.Document) (*Compiled, error) {
	pool := doc.Pool()
	ret := &Compiled{List: NewChunk(InstrumentListLabel)}
	used := map[string]sequenceRef{}
	for i := range doc.Instruments {
		instr := &doc.Instruments[i]
		chunk := NewChunk(fmt.Sprintf(InstrumentLabelFormat, i))
		if n := instr.Compile(pool, chunk); n != chunk.Size() {
			return nil, fmt.Errorf("instrument %d (%v): compiled size %d does not match chunk size %d", i, instr.Name, n, chunk.Size())
		}
		for _, t := range s5b.SequenceTypes {
			if instr.Slots.Enabled(t) {
				index := instr.Slots.Index(t)
				used[s5b.SequenceLabel(index, t)] = sequenceRef{index, t}
			}
		}
		ret.Instruments = append(ret.Instruments, chunk)
		ret.List.StoreReference(chunk.Label)
	}
	done := map[string]bool{}
	for _, chunk := range ret.Instruments {
		for _, label := range chunk.References() {
			if done[label] {
				continue
			}
			ref, ok := used[label]
			if !ok {
				return nil, fmt.Errorf("chunk %v refers to unknown label %v", chunk.Label, label)
			}
			seq := pool.Peek(ref.index, ref.typ)
			if seq == nil {
				return nil, fmt.Errorf("chunk %v refers to missing %v sequence %d", chunk.Label, ref.typ, ref.index)
			}
			seqChunk := NewChunk(label)
			CompileSequence(seq, seqChunk)
			ret.Sequences = append(ret.Sequences, seqChunk)
			done[label] = true
		}
	}
	sort.SliceStable(ret.Sequences, func(a, b int) bool {
		return sequenceNumber(ret.Sequences[a].Label) < sequenceNumber(ret.Sequences[b].Label)
	})
	return ret, nil
}

func sequenceNumber(label string) int {
	var n int
	fmt.Sscanf(label, s5b.SequenceLabelFormat, &n)
	return n
}

// Chunks returns all chunks in output order.
func (c *Compiled) Chunks() []*Chunk {
	ret := []*Chunk{c.List}
	ret = append(ret, c.Instruments...)
	return append(ret, c.Sequences...)
}

// Size returns the total size of all chunks in bytes.
func (c *Compiled) Size() int {
	ret := 0
	for _, chunk := range c.Chunks() {
		ret += chunk.Size()
	}
	return ret
}

// Document compiles doc and renders it through the templates. The returned
// map is keyed by file extension.
func (com *Compiler) Document(doc *s5b.Document) (map[string]string, error) {
	compiled, err := Compile(doc)
	if err != nil {
		return nil, fmt.Errorf(`could not compile instruments: %v`, err)
	}
	data := struct {
		*Compiled
		Document *s5b.Document
		Version  string
	}{compiled, doc, version.VersionOrHash}
	retmap := map[string]string{}
	for _, templateName := range templates {
		populatedTemplate, extension, err := com.compile(templateName, &data)
		if err != nil {
			return nil, fmt.Errorf(`could not execute template "%v": %v`, templateName, err)
		}
		retmap[extension] = populatedTemplate
	}
	return retmap, nil
}

func (com *Compiler) compile(templateName string, data interface{}) (string, string, error) {
	result := bytes.NewBufferString("")
	err := com.Template.ExecuteTemplate(result, templateName, data)
	extension := filepath.Ext(templateName)
	return result.String(), extension, err
}
