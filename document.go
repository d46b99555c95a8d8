package s5b

// Document is the human-editable form of a set of S5B instruments and the
// sequence pool they share. It is what the command line tools read and write
// as .yml.
type Document struct {
	Instruments []Instrument
	Sequences   Pool
}

// Pool returns the sequence pool of the document.
func (d *Document) Pool() *Pool {
	return &d.Sequences
}

// AddInstrument appends a new instrument whose slots point at freshly
// allocated sequences, and returns it. The pointer is valid until the next
// instrument is added.
func (d *Document) AddInstrument(name string) *Instrument {
	d.Instruments = append(d.Instruments, *NewInstrument(name))
	instr := &d.Instruments[len(d.Instruments)-1]
	instr.Setup(d.Pool())
	return instr
}
