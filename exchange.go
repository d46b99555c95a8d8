package s5b

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// ExchangeVersion is the exchange format version written by SaveExchange.
const ExchangeVersion = 24

type (
	// exchangeFormat tells which fields a sequence record carries.
	exchangeFormat struct {
		legacy  bool // run-length runs instead of items, loop and the rest
		release bool
		setting bool
	}

	exchangeRecord struct {
		runs    []LegacyRun
		items   []int8
		loop    int32
		release int32
		setting int32
	}
)

// exchangeFormats lists the version each record layout was introduced in,
// oldest first. A version uses the last layout whose since it has reached.
var exchangeFormats = []struct {
	since int
	exchangeFormat
}{
	{0, exchangeFormat{legacy: true}},
	{20, exchangeFormat{}},
	{21, exchangeFormat{release: true}},
	{22, exchangeFormat{release: true, setting: true}},
}

func exchangeFormatFor(version int) exchangeFormat {
	ret := exchangeFormats[0].exchangeFormat
	for _, f := range exchangeFormats {
		if version >= f.since {
			ret = f.exchangeFormat
		}
	}
	return ret
}

// SaveExchange writes the slot bindings of instr together with the full
// contents of every bound sequence, so that the instrument can be loaded
// into a different pool. The layout is always that of ExchangeVersion:
//
//	uint8 count (always NumSequenceTypes)
//	count × { uint8 present; if present: int32 items, int32 loop,
//	          int32 release, int32 setting, items × int8 }
func (instr *Instrument) SaveExchange(w io.Writer, pool SequencePool) error {
	var buf bytes.Buffer
	buf.WriteByte(NumSequenceTypes)
	for _, t := range SequenceTypes {
		if !instr.Slots.Enabled(t) {
			buf.WriteByte(0)
			continue
		}
		index := instr.Slots.Index(t)
		if err := checkBounds("pool index", index, MaxSequences); err != nil {
			return fmt.Errorf("%v slot: %w", t, err)
		}
		seq := peek(pool, index, t)
		if seq == nil {
			seq = NewSequence()
		}
		buf.WriteByte(1)
		header := [4]int32{int32(seq.ItemCount()), int32(seq.Loop), int32(seq.Release), int32(seq.Setting)}
		if err := binary.Write(&buf, binary.LittleEndian, &header); err != nil {
			return fmt.Errorf("%v slot: binary.Write: %w", t, err)
		}
		if err := binary.Write(&buf, binary.LittleEndian, seq.Items); err != nil {
			return fmt.Errorf("%v slot: binary.Write: %w", t, err)
		}
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write exchange data: %w", err)
	}
	return nil
}

// LoadExchange reads bindings written by SaveExchange, or by any older
// version of it, into instr. Each present sequence is copied into a newly
// allocated entry of pool. Only the declared number of slots is read; slots
// beyond it keep their values. If pool has no free entry for a sequence, the
// sequence is skipped and its slot stays as it was. Fields that version does
// not carry keep the value the pool entry already has. conv handles the
// run-length payload of versions before 20; nil means DefaultLegacyConverter.
func (instr *Instrument) LoadExchange(r io.Reader, version int, pool SequencePool, conv LegacyConverter) error {
	if conv == nil {
		conv = DefaultLegacyConverter
	}
	format := exchangeFormatFor(version)
	var count uint8
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return fmt.Errorf("binary.Read: %w", err)
	}
	if count > NumSequenceTypes {
		return &FormatError{Field: "sequence count", Value: int(count)}
	}
	for i := 0; i < int(count); i++ {
		t := SequenceType(i)
		var present uint8
		if err := binary.Read(r, binary.LittleEndian, &present); err != nil {
			return fmt.Errorf("%v slot: binary.Read: %w", t, err)
		}
		switch present {
		case 0:
			instr.Slots.SetEnabled(t, false)
			instr.Slots.SetIndex(t, 0)
		case 1:
			rec, err := readExchangeRecord(r, format)
			if err != nil {
				return fmt.Errorf("%v slot: %w", t, err)
			}
			index, ok := pool.AllocateFree(t)
			if !ok {
				continue
			}
			rec.apply(pool.Sequence(index, t), t, format, conv)
			instr.Slots.SetEnabled(t, true)
			instr.Slots.SetIndex(t, index)
		default:
			return fmt.Errorf("%v slot: %w", t, &FormatError{Field: "presence flag", Value: int(present)})
		}
	}
	return nil
}

func readExchangeRecord(r io.Reader, format exchangeFormat) (*exchangeRecord, error) {
	var count int32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("binary.Read: %w", err)
	}
	rec := &exchangeRecord{}
	if format.legacy {
		if err := checkBounds("legacy run count", int(count), MaxLegacyRuns+1); err != nil {
			return nil, err
		}
		rec.runs = make([]LegacyRun, count)
		if err := binary.Read(r, binary.LittleEndian, rec.runs); err != nil {
			return nil, fmt.Errorf("binary.Read: %w", err)
		}
		return rec, nil
	}
	if err := checkBounds("item count", int(count), MaxSequenceItems+1); err != nil {
		return nil, err
	}
	fields := []*int32{&rec.loop}
	if format.release {
		fields = append(fields, &rec.release)
	}
	if format.setting {
		fields = append(fields, &rec.setting)
	}
	for _, f := range fields {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return nil, fmt.Errorf("binary.Read: %w", err)
		}
	}
	rec.items = make([]int8, count)
	if err := binary.Read(r, binary.LittleEndian, rec.items); err != nil {
		return nil, fmt.Errorf("binary.Read: %w", err)
	}
	return rec, nil
}

func (rec *exchangeRecord) apply(seq *Sequence, t SequenceType, format exchangeFormat, conv LegacyConverter) {
	if format.legacy {
		conv.ConvertLegacy(rec.runs, seq, t)
		return
	}
	seq.SetItemCount(len(rec.items))
	seq.Loop = int(rec.loop)
	if format.release {
		seq.Release = int(rec.release)
	}
	if format.setting {
		seq.Setting = Setting(rec.setting)
	}
	for i, v := range rec.items {
		seq.SetItem(i, v)
	}
}
