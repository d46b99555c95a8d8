package s5b_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"reflect"
	"testing"

	"github.com/vsariola/s5b"
)

// exchangeData builds exchange data from a mix of byte, int32 and []int8
// values.
func exchangeData(values ...any) []byte {
	var buf bytes.Buffer
	for _, v := range values {
		binary.Write(&buf, binary.LittleEndian, v)
	}
	return buf.Bytes()
}

func newSourceDocument() (*s5b.Instrument, *s5b.Pool) {
	pool := s5b.NewPool(s5b.MaxSequences)
	instr := s5b.NewInstrument("bass")
	instr.Setup(pool)
	*pool.Sequence(instr.Slots.Index(s5b.Volume), s5b.Volume) = s5b.Sequence{Items: []int8{15, 12, 8, 4}, Loop: 2, Release: 3, Setting: s5b.SettingVolume64Steps}
	*pool.Sequence(instr.Slots.Index(s5b.Pitch), s5b.Pitch) = s5b.Sequence{Items: []int8{-1, 1, -1, 1}, Loop: 0, Release: s5b.NoRelease, Setting: s5b.SettingPitchAbsolute}
	*pool.Sequence(instr.Slots.Index(s5b.DutyCycle), s5b.DutyCycle) = s5b.Sequence{Items: []int8{}, Loop: s5b.NoLoop, Release: s5b.NoRelease}
	instr.Slots.SetEnabled(s5b.Volume, true)
	instr.Slots.SetEnabled(s5b.Pitch, true)
	instr.Slots.SetEnabled(s5b.DutyCycle, true)
	return instr, pool
}

func TestExchangeRoundTrip(t *testing.T) {
	instr, pool := newSourceDocument()
	var buf bytes.Buffer
	if err := instr.SaveExchange(&buf, pool); err != nil {
		t.Fatalf("SaveExchange failed: %v", err)
	}
	target := s5b.NewPool(s5b.MaxSequences)
	target.Sequence(0, s5b.Volume).SetItem(0, 1) // occupy an index so the indices differ
	loaded := s5b.NewInstrument("")
	if err := loaded.LoadExchange(&buf, s5b.ExchangeVersion, target, nil); err != nil {
		t.Fatalf("LoadExchange failed: %v", err)
	}
	for _, typ := range s5b.SequenceTypes {
		if loaded.Slots.Enabled(typ) != instr.Slots.Enabled(typ) {
			t.Fatalf("%v slot: enabled is %v, expected %v", typ, loaded.Slots.Enabled(typ), instr.Slots.Enabled(typ))
		}
		if !instr.Slots.Enabled(typ) {
			continue
		}
		got := target.Sequence(loaded.Slots.Index(typ), typ).Copy()
		expected := pool.Sequence(instr.Slots.Index(typ), typ).Copy()
		if !reflect.DeepEqual(got, expected) {
			t.Fatalf("%v sequence differs after round trip. got: %+v expected: %+v", typ, got, expected)
		}
	}
	if got := loaded.Slots.Index(s5b.Volume); got != 1 {
		t.Fatalf("volume sequence should have been allocated at the first free index. got: %v expected: %v", got, 1)
	}
	if buf.Len() != 0 {
		t.Fatalf("%d bytes left unread", buf.Len())
	}
}

func TestExchangeWithoutFreeSequences(t *testing.T) {
	instr, pool := newSourceDocument()
	var buf bytes.Buffer
	if err := instr.SaveExchange(&buf, pool); err != nil {
		t.Fatalf("SaveExchange failed: %v", err)
	}
	loaded := s5b.NewInstrument("")
	if err := loaded.LoadExchange(&buf, s5b.ExchangeVersion, s5b.NewPool(0), nil); err != nil {
		t.Fatalf("LoadExchange failed: %v", err)
	}
	for _, typ := range s5b.SequenceTypes {
		if loaded.Slots.Enabled(typ) {
			t.Fatalf("%v slot enabled although the pool has no room", typ)
		}
	}
	if buf.Len() != 0 {
		t.Fatalf("%d bytes left unread; dropped sequences must still be consumed", buf.Len())
	}
}

// exhaustedFor is a pool that has no room for one sequence type.
type exhaustedFor struct {
	*s5b.Pool
	typ s5b.SequenceType
}

func (p exhaustedFor) AllocateFree(t s5b.SequenceType) (int, bool) {
	if t == p.typ {
		return 0, false
	}
	return p.Pool.AllocateFree(t)
}

func TestExchangeDropIsLocalToSlot(t *testing.T) {
	instr, pool := newSourceDocument()
	var buf bytes.Buffer
	if err := instr.SaveExchange(&buf, pool); err != nil {
		t.Fatalf("SaveExchange failed: %v", err)
	}
	target := exhaustedFor{s5b.NewPool(s5b.MaxSequences), s5b.Pitch}
	loaded := s5b.NewInstrument("")
	if err := loaded.LoadExchange(&buf, s5b.ExchangeVersion, target, nil); err != nil {
		t.Fatalf("LoadExchange failed: %v", err)
	}
	if loaded.Slots.Enabled(s5b.Pitch) {
		t.Fatalf("pitch slot enabled although the pool has no room for it")
	}
	if !loaded.Slots.Enabled(s5b.Volume) || !loaded.Slots.Enabled(s5b.DutyCycle) {
		t.Fatalf("dropping the pitch sequence affected its siblings: %v", slotsOf(loaded))
	}
	got := target.Sequence(loaded.Slots.Index(s5b.DutyCycle), s5b.DutyCycle)
	if got.ItemCount() != 0 || got.Loop != s5b.NoLoop {
		t.Fatalf("duty cycle sequence after the dropped slot was misread: %+v", got)
	}
}

func TestExchangeVersionGates(t *testing.T) {
	items := []int8{3, 2, 1}
	testCases := []struct {
		name     string
		version  int
		data     []byte
		expected s5b.Sequence
	}{
		{"v20", 20, exchangeData(uint8(1), uint8(1), int32(3), int32(1), items), s5b.Sequence{Items: items, Loop: 1, Release: 9, Setting: 2}},
		{"v21", 21, exchangeData(uint8(1), uint8(1), int32(3), int32(1), int32(0), items), s5b.Sequence{Items: items, Loop: 1, Release: 0, Setting: 2}},
		{"v22", 22, exchangeData(uint8(1), uint8(1), int32(3), int32(1), int32(0), int32(1), items), s5b.Sequence{Items: items, Loop: 1, Release: 0, Setting: 1}},
		{"v24", 24, exchangeData(uint8(1), uint8(1), int32(3), int32(-1), int32(2), int32(0), items), s5b.Sequence{Items: items, Loop: -1, Release: 2, Setting: 0}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pool := s5b.NewPool(s5b.MaxSequences)
			// a free entry whose release and setting are not the defaults
			seq := pool.Sequence(0, s5b.Volume)
			pool.Free(0, s5b.Volume)
			seq.Release = 9
			seq.Setting = 2
			r := bytes.NewReader(tc.data)
			instr := s5b.NewInstrument("")
			if err := instr.LoadExchange(r, tc.version, pool, nil); err != nil {
				t.Fatalf("LoadExchange failed: %v", err)
			}
			if r.Len() != 0 {
				t.Fatalf("%d bytes left unread", r.Len())
			}
			if !instr.Slots.Enabled(s5b.Volume) || instr.Slots.Index(s5b.Volume) != 0 {
				t.Fatalf("volume slot not bound to index 0: %+v", instr.Slots.Slot(s5b.Volume))
			}
			if got := pool.Sequence(0, s5b.Volume).Copy(); !reflect.DeepEqual(got, tc.expected) {
				t.Fatalf("got: %+v expected: %+v", got, tc.expected)
			}
		})
	}
}

// The v21 layout has no setting field: the next slot's presence byte must
// follow the release point directly.
func TestExchangeV21DoesNotReadSetting(t *testing.T) {
	data := exchangeData(uint8(2),
		uint8(1), int32(1), int32(-1), int32(0), []int8{7},
		uint8(1), int32(2), int32(0), int32(-1), []int8{1, 2})
	pool := s5b.NewPool(s5b.MaxSequences)
	instr := s5b.NewInstrument("")
	if err := instr.LoadExchange(bytes.NewReader(data), 21, pool, nil); err != nil {
		t.Fatalf("LoadExchange failed: %v", err)
	}
	arp := pool.Sequence(instr.Slots.Index(s5b.Arpeggio), s5b.Arpeggio)
	if !reflect.DeepEqual(arp.Items, []int8{1, 2}) || arp.Setting != s5b.SettingDefault {
		t.Fatalf("arpeggio sequence misread: %+v", arp)
	}
}

type recordedConversion struct {
	runs []s5b.LegacyRun
	typ  s5b.SequenceType
}

func TestExchangeLegacyUsesConverter(t *testing.T) {
	data := exchangeData(uint8(3),
		uint8(1), int32(2), []int8{0, 5, 2, 3},
		uint8(0),
		uint8(1), int32(1), []int8{1, -4})
	var calls []recordedConversion
	conv := s5b.LegacyConverterFunc(func(runs []s5b.LegacyRun, seq *s5b.Sequence, t s5b.SequenceType) {
		calls = append(calls, recordedConversion{runs, t})
		seq.SetItem(0, 1)
	})
	pool := s5b.NewPool(s5b.MaxSequences)
	instr := s5b.NewInstrument("")
	if err := instr.LoadExchange(bytes.NewReader(data), 19, pool, conv); err != nil {
		t.Fatalf("LoadExchange failed: %v", err)
	}
	expected := []recordedConversion{
		{[]s5b.LegacyRun{{Length: 0, Value: 5}, {Length: 2, Value: 3}}, s5b.Volume},
		{[]s5b.LegacyRun{{Length: 1, Value: -4}}, s5b.Pitch},
	}
	if !reflect.DeepEqual(calls, expected) {
		t.Fatalf("got conversions: %v expected: %v", calls, expected)
	}
	if !instr.Slots.Enabled(s5b.Volume) || instr.Slots.Enabled(s5b.Arpeggio) || !instr.Slots.Enabled(s5b.Pitch) {
		t.Fatalf("unexpected slots after legacy load: %v", slotsOf(instr))
	}
}

func TestExchangeLegacyDefaultConverter(t *testing.T) {
	data := exchangeData(uint8(1), uint8(1), int32(3), []int8{0, 5, 2, 3, -1, 0})
	pool := s5b.NewPool(s5b.MaxSequences)
	instr := s5b.NewInstrument("")
	if err := instr.LoadExchange(bytes.NewReader(data), 10, pool, nil); err != nil {
		t.Fatalf("LoadExchange failed: %v", err)
	}
	got := pool.Sequence(instr.Slots.Index(s5b.Volume), s5b.Volume)
	if !reflect.DeepEqual(got.Items, []int8{5, 3, 3, 3}) || got.Loop != 1 {
		t.Fatalf("legacy volume sequence converted wrong: %+v", got)
	}
}

// Slots past the declared count are not touched.
func TestExchangeShortCount(t *testing.T) {
	instr := s5b.NewInstrument("")
	instr.Slots.SetEnabled(s5b.DutyCycle, true)
	instr.Slots.SetIndex(s5b.DutyCycle, 11)
	instr.Slots.SetEnabled(s5b.Volume, true)
	data := exchangeData(uint8(4), uint8(0), uint8(0), uint8(0), uint8(0))
	if err := instr.LoadExchange(bytes.NewReader(data), s5b.ExchangeVersion, s5b.NewPool(s5b.MaxSequences), nil); err != nil {
		t.Fatalf("LoadExchange failed: %v", err)
	}
	if instr.Slots.Enabled(s5b.Volume) {
		t.Fatalf("volume slot should have been disabled")
	}
	if !instr.Slots.Enabled(s5b.DutyCycle) || instr.Slots.Index(s5b.DutyCycle) != 11 {
		t.Fatalf("duty cycle slot past the declared count was modified: %+v", instr.Slots.Slot(s5b.DutyCycle))
	}
}

func TestExchangeErrors(t *testing.T) {
	testCases := []struct {
		name    string
		version int
		data    []byte
		target  error
	}{
		{"too many slots", 24, exchangeData(uint8(6)), s5b.ErrFormat},
		{"bad presence", 24, exchangeData(uint8(1), uint8(2)), s5b.ErrFormat},
		{"too many items", 24, exchangeData(uint8(1), uint8(1), int32(s5b.MaxSequenceItems+1)), s5b.ErrBounds},
		{"negative items", 24, exchangeData(uint8(1), uint8(1), int32(-1)), s5b.ErrBounds},
		{"too many legacy runs", 19, exchangeData(uint8(1), uint8(1), int32(s5b.MaxLegacyRuns+1)), s5b.ErrBounds},
		{"truncated items", 24, exchangeData(uint8(1), uint8(1), int32(4), int32(0), int32(0), int32(0), []int8{1}), io.ErrUnexpectedEOF},
		{"empty", 24, nil, io.EOF},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			instr := s5b.NewInstrument("")
			err := instr.LoadExchange(bytes.NewReader(tc.data), tc.version, s5b.NewPool(s5b.MaxSequences), nil)
			if !errors.Is(err, tc.target) {
				t.Fatalf("expected error matching %v, got %v", tc.target, err)
			}
		})
	}
}

func TestExchangeAbsentSlotResetsIndex(t *testing.T) {
	instr := s5b.NewInstrument("")
	instr.Slots.SetEnabled(s5b.Pitch, true)
	instr.Slots.SetIndex(s5b.Pitch, 9)
	data := exchangeData(uint8(5), uint8(0), uint8(0), uint8(0), uint8(0), uint8(0))
	if err := instr.LoadExchange(bytes.NewReader(data), s5b.ExchangeVersion, s5b.NewPool(s5b.MaxSequences), nil); err != nil {
		t.Fatalf("LoadExchange failed: %v", err)
	}
	if got := instr.Slots.Slot(s5b.Pitch); got != (s5b.Slot{}) {
		t.Fatalf("got pitch slot %+v after an absent record, expected %+v", got, s5b.Slot{})
	}
}

func TestSaveExchangeLayout(t *testing.T) {
	instr, pool := newSourceDocument()
	var buf bytes.Buffer
	if err := instr.SaveExchange(&buf, pool); err != nil {
		t.Fatalf("SaveExchange failed: %v", err)
	}
	expected := exchangeData(
		uint8(5),
		uint8(1), int32(4), int32(2), int32(3), int32(s5b.SettingVolume64Steps), []int8{15, 12, 8, 4},
		uint8(0),
		uint8(1), int32(4), int32(0), int32(s5b.NoRelease), int32(s5b.SettingPitchAbsolute), []int8{-1, 1, -1, 1},
		uint8(0),
		uint8(1), int32(0), int32(s5b.NoLoop), int32(s5b.NoRelease), int32(0),
	)
	if !bytes.Equal(buf.Bytes(), expected) {
		t.Fatalf("got exchange data\n% X\nexpected\n% X", buf.Bytes(), expected)
	}
}

func TestSaveExchangeDoesNotReserve(t *testing.T) {
	pool := s5b.NewPool(2)
	instr := s5b.NewInstrument("")
	instr.Slots.SetEnabled(s5b.Volume, true)
	var buf bytes.Buffer
	if err := instr.SaveExchange(&buf, pool); err != nil {
		t.Fatalf("SaveExchange failed: %v", err)
	}
	if index, ok := pool.AllocateFree(s5b.Volume); !ok || index != 0 {
		t.Fatalf("saving reserved a sequence. got index %v ok %v, expected index 0", index, ok)
	}
	instr.Slots.SetIndex(s5b.Volume, s5b.MaxSequences)
	if err := instr.SaveExchange(&buf, pool); !errors.Is(err, s5b.ErrBounds) {
		t.Fatalf("expected ErrBounds for an index beyond the pool, got %v", err)
	}
}
