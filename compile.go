package s5b

import "fmt"

// ChunkSink receives compiled instrument data. References are symbolic and
// are resolved to 2-byte addresses when the chunks are linked.
type ChunkSink interface {
	StoreByte(value byte)
	StoreReference(label string)
}

// SequenceLabelFormat is the label of a compiled sequence; the number is
// index*NumSequenceTypes + type.
const SequenceLabelFormat = "ft_seq_s5b_%d"

func SequenceLabel(index int, t SequenceType) string {
	return fmt.Sprintf(SequenceLabelFormat, index*NumSequenceTypes+int(t))
}

// contributes reports whether the slot of type t is enabled and bound to a
// sequence with at least one item.
func (instr *Instrument) contributes(pool SequencePool, t SequenceType) bool {
	if !instr.Slots.Enabled(t) {
		return false
	}
	seq := peek(pool, instr.Slots.Index(t), t)
	return seq != nil && seq.ItemCount() > 0
}

// SequenceMask returns the compiled enable mask. The mask is accumulated by
// shifting right and inserting at bit 4 once per type in canonical order, so
// Volume ends up in bit 0 and DutyCycle in bit 4.
func (instr *Instrument) SequenceMask(pool SequencePool) byte {
	mask := 0
	for _, t := range SequenceTypes {
		bit := 0
		if instr.contributes(pool, t) {
			bit = 0x10
		}
		mask = (mask >> 1) | bit
	}
	return byte(mask)
}

// Compile stores the enable mask followed by a reference to every enabled,
// non-empty sequence, and returns the number of bytes the output occupies.
func (instr *Instrument) Compile(pool SequencePool, sink ChunkSink) int {
	sink.StoreByte(instr.SequenceMask(pool))
	stored := 1
	for _, t := range SequenceTypes {
		if instr.contributes(pool, t) {
			sink.StoreReference(SequenceLabel(instr.Slots.Index(t), t))
			stored += 2
		}
	}
	return stored
}

// CanRelease reports whether the volume sequence has a release point. Only
// the volume sequence decides this. Like SequenceMask and Compile, it leaves
// the pool unchanged when the pool is a SequencePeeker.
func (instr *Instrument) CanRelease(pool SequencePool) bool {
	if !instr.Slots.Enabled(Volume) {
		return false
	}
	seq := peek(pool, instr.Slots.Index(Volume), Volume)
	return seq != nil && seq.Release != NoRelease
}
