package s5b

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SequenceType selects one of the five sequences an S5B instrument can bind.
// The numeric value is load-bearing: it is the slot index, the position of
// the slot in both file formats and the order of bits in the compiled mask.
type SequenceType int

const (
	Volume SequenceType = iota
	Arpeggio
	Pitch
	HiPitch
	DutyCycle
)

const NumSequenceTypes = 5

const (
	// MaxSequences is the number of sequences of each type a pool can hold.
	// Pool indices are stored as signed bytes, so it can never exceed 128.
	MaxSequences = 128
	// MaxSequenceItems is the maximum number of items in a sequence.
	MaxSequenceItems = 252
	// MaxLegacyRuns is the maximum number of (length, value) runs in a
	// sequence stored in the pre-2.0 run-length format.
	MaxLegacyRuns = 64

	NoLoop    = -1
	NoRelease = -1
)

// SequenceTypes lists the sequence types in canonical order.
var SequenceTypes = [NumSequenceTypes]SequenceType{Volume, Arpeggio, Pitch, HiPitch, DutyCycle}

var sequenceTypeNames = [NumSequenceTypes]string{"volume", "arpeggio", "pitch", "hi-pitch", "duty cycle"}

var titleCaser = cases.Title(language.English)

func (t SequenceType) Valid() bool {
	return t >= 0 && t < NumSequenceTypes
}

func (t SequenceType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("SequenceType(%d)", int(t))
	}
	return sequenceTypeNames[t]
}

// Title returns the display name of the sequence type, e.g. "Hi-Pitch".
func (t SequenceType) Title() string {
	return titleCaser.String(t.String())
}

// Setting is the per-sequence mode code. Its meaning depends on the sequence
// type, so the same code is reused by several types.
type Setting int

const (
	SettingDefault Setting = 0

	SettingVolume16Steps Setting = 0
	SettingVolume64Steps Setting = 1

	SettingArpAbsolute Setting = 0
	SettingArpFixed    Setting = 1
	SettingArpRelative Setting = 2
	SettingArpScheme   Setting = 3

	SettingPitchRelative Setting = 0
	SettingPitchAbsolute Setting = 1
)

// Sequence is a list of signed byte items with loop and release points. A
// Sequence is owned by a pool and shared by every instrument bound to it.
type Sequence struct {
	Items   []int8 `yaml:",flow"`
	Loop    int
	Release int
	Setting Setting
}

// NewSequence returns an empty sequence with no loop and no release point.
func NewSequence() *Sequence {
	return &Sequence{Loop: NoLoop, Release: NoRelease}
}

func (s *Sequence) ItemCount() int {
	return len(s.Items)
}

// SetItemCount resizes the item list, zero filling any new items. The count
// is clamped to [0, MaxSequenceItems].
func (s *Sequence) SetItemCount(count int) {
	count = max(0, min(count, MaxSequenceItems))
	if count <= len(s.Items) {
		s.Items = s.Items[:count]
		return
	}
	s.Items = append(s.Items, make([]int8, count-len(s.Items))...)
}

// SetItem sets the item at index, growing the sequence if needed. Indices
// outside [0, MaxSequenceItems) are ignored.
func (s *Sequence) SetItem(index int, value int8) {
	if index < 0 || index >= MaxSequenceItems {
		return
	}
	if index >= len(s.Items) {
		s.SetItemCount(index + 1)
	}
	s.Items[index] = value
}

func (s *Sequence) Copy() Sequence {
	items := make([]int8, len(s.Items))
	copy(items, s.Items)
	return Sequence{Items: items, Loop: s.Loop, Release: s.Release, Setting: s.Setting}
}

// Reset empties the sequence and restores the default loop, release and
// setting.
func (s *Sequence) Reset() {
	*s = Sequence{Loop: NoLoop, Release: NoRelease}
}

func (t SequenceType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid sequence type %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *SequenceType) UnmarshalText(text []byte) error {
	for i, name := range sequenceTypeNames {
		if string(text) == name {
			*t = SequenceType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown sequence type %q", text)
}
