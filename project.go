package s5b

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Store writes the slot bindings of instr in the project format:
//
//	int32 count (always NumSequenceTypes)
//	count × { int8 enabled, int8 index }
func (instr *Instrument) Store(w io.Writer) error {
	var block struct {
		Count int32
		Slots [NumSequenceTypes][2]int8
	}
	block.Count = NumSequenceTypes
	for _, t := range SequenceTypes {
		if err := checkBounds("pool index", instr.Slots.Index(t), MaxSequences); err != nil {
			return fmt.Errorf("%v slot: %w", t, err)
		}
		if instr.Slots.Enabled(t) {
			block.Slots[t][0] = 1
		}
		block.Slots[t][1] = int8(instr.Slots.Index(t))
	}
	if err := binary.Write(w, binary.LittleEndian, &block); err != nil {
		return fmt.Errorf("binary.Write: %w", err)
	}
	return nil
}

// Load reads slot bindings written by Store. A declared count above
// NumSequenceTypes is a FormatError and an index outside the pool a
// BoundsError. Whatever count is declared, exactly NumSequenceTypes pairs
// follow it. Nothing is changed unless the whole block is valid.
func (instr *Instrument) Load(r io.Reader) error {
	var count int32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return fmt.Errorf("binary.Read: %w", err)
	}
	if count > NumSequenceTypes {
		return &FormatError{Field: "sequence count", Value: int(count)}
	}
	var pairs [NumSequenceTypes][2]int8
	if err := binary.Read(r, binary.LittleEndian, &pairs); err != nil {
		return fmt.Errorf("binary.Read: %w", err)
	}
	for t, p := range pairs {
		if err := checkBounds("pool index", int(p[1]), MaxSequences); err != nil {
			return fmt.Errorf("%v slot: %w", SequenceType(t), err)
		}
	}
	for _, t := range SequenceTypes {
		instr.Slots.SetEnabled(t, pairs[t][0] != 0)
		instr.Slots.SetIndex(t, int(pairs[t][1]))
	}
	return nil
}
