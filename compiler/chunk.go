package compiler

import (
	"fmt"

	"github.com/vsariola/s5b"
)

type (
	// Chunk is a labelled block of compiled data. It implements
	// s5b.ChunkSink.
	Chunk struct {
		Label string
		Data  []ChunkData
	}

	// ChunkData is either a run of bytes or a single reference to a label.
	ChunkData struct {
		Bytes     []byte
		Reference string
	}
)

func NewChunk(label string) *Chunk {
	return &Chunk{Label: label}
}

func (c *Chunk) StoreByte(value byte) {
	if n := len(c.Data); n > 0 && c.Data[n-1].Reference == "" {
		c.Data[n-1].Bytes = append(c.Data[n-1].Bytes, value)
		return
	}
	c.Data = append(c.Data, ChunkData{Bytes: []byte{value}})
}

func (c *Chunk) StoreReference(label string) {
	c.Data = append(c.Data, ChunkData{Reference: label})
}

// Size is the number of bytes the chunk occupies once linked; references are
// 2-byte addresses.
func (c *Chunk) Size() int {
	ret := 0
	for _, d := range c.Data {
		if d.Reference != "" {
			ret += 2
		} else {
			ret += len(d.Bytes)
		}
	}
	return ret
}

// References returns the labels the chunk refers to, in order.
func (c *Chunk) References() []string {
	var ret []string
	for _, d := range c.Data {
		if d.Reference != "" {
			ret = append(ret, d.Reference)
		}
	}
	return ret
}

// Hex formats the bytes as 6502 assembler hex literals.
func (d ChunkData) Hex() []string {
	ret := make([]string, len(d.Bytes))
	for i, b := range d.Bytes {
		ret[i] = fmt.Sprintf("$%02X", b)
	}
	return ret
}

// CompileSequence stores seq in the layout the sound driver reads: item
// count, loop point (0xFF for none), release point plus one (0 for none),
// setting, then the items. It returns the number of bytes stored.
func CompileSequence(seq *s5b.Sequence, sink s5b.ChunkSink) int {
	count := seq.ItemCount()
	loop := seq.Loop
	if loop > count {
		loop = s5b.NoLoop
	}
	release := 0
	if seq.Release != s5b.NoRelease {
		release = seq.Release + 1
	}
	sink.StoreByte(byte(count))
	sink.StoreByte(byte(loop))
	sink.StoreByte(byte(release))
	sink.StoreByte(byte(seq.Setting))
	for _, v := range seq.Items {
		sink.StoreByte(byte(v))
	}
	return 4 + count
}
