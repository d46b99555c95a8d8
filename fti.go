package s5b

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

const (
	instrumentFileMagic = "FTI"
	// ChipS5B is the instrument type byte of a Sunsoft 5B instrument file.
	ChipS5B = 6
	// MaxNameLength is the longest instrument name an instrument file may
	// carry.
	MaxNameLength = 256
)

// WriteInstrumentFile writes instr as a standalone instrument file (usually
// with .fti extension): a header with magic, version text, chip type and
// name, followed by the exchange data.
func WriteInstrumentFile(w io.Writer, instr *Instrument, pool SequencePool) error {
	if len(instr.Name) > MaxNameLength {
		return &BoundsError{Field: "name length", Value: len(instr.Name), Limit: MaxNameLength + 1}
	}
	var buf bytes.Buffer
	buf.WriteString(instrumentFileMagic)
	fmt.Fprintf(&buf, "%d.%d", ExchangeVersion/10, ExchangeVersion%10)
	buf.WriteByte(ChipS5B)
	if err := binary.Write(&buf, binary.LittleEndian, int32(len(instr.Name))); err != nil {
		return fmt.Errorf("binary.Write: %w", err)
	}
	buf.WriteString(instr.Name)
	if err := instr.SaveExchange(&buf, pool); err != nil {
		return err
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write instrument file: %w", err)
	}
	return nil
}

// ReadInstrumentFile reads an instrument file, allocating its sequences from
// pool. It returns a FormatError if the file is not an S5B instrument file
// or was written by a newer version than this package supports.
func ReadInstrumentFile(r io.Reader, pool SequencePool, conv LegacyConverter) (*Instrument, error) {
	var header struct {
		Magic   [3]byte
		Version [3]byte
		Chip    uint8
		NameLen int32
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("binary.Read: %w", err)
	}
	if string(header.Magic[:]) != instrumentFileMagic {
		return nil, &FormatError{Field: "magic", Value: fmt.Sprintf("%q", header.Magic[:])}
	}
	version, err := parseFileVersion(header.Version)
	if err != nil {
		return nil, err
	}
	if version > ExchangeVersion {
		return nil, &FormatError{Field: "file version", Value: version}
	}
	if header.Chip != ChipS5B {
		return nil, &FormatError{Field: "instrument type", Value: int(header.Chip)}
	}
	if err := checkBounds("name length", int(header.NameLen), MaxNameLength+1); err != nil {
		return nil, err
	}
	name := make([]byte, header.NameLen)
	if _, err := io.ReadFull(r, name); err != nil {
		return nil, fmt.Errorf("io.ReadFull: %w", err)
	}
	instr := NewInstrument(string(name))
	if err := instr.LoadExchange(r, version, pool, conv); err != nil {
		return nil, fmt.Errorf("LoadExchange: %w", err)
	}
	return instr, nil
}

// parseFileVersion turns version text such as "2.4" into 24.
func parseFileVersion(text [3]byte) (int, error) {
	major, minor := text[0], text[2]
	if major < '0' || major > '9' || text[1] != '.' || minor < '0' || minor > '9' {
		return 0, &FormatError{Field: "version text", Value: fmt.Sprintf("%q", text[:])}
	}
	return int(major-'0')*10 + int(minor-'0'), nil
}
