package s5b

import "gopkg.in/yaml.v3"

type (
	// Slot binds one sequence type to a pool index. Index is only meaningful
	// when Enabled is true; a disabled slot keeps Index at 0.
	Slot struct {
		Enabled bool
		Index   int
	}

	// SlotSet holds exactly one Slot per SequenceType. The setters are the
	// only way to mutate it; they report whether the value changed and call
	// OnChange before committing a change.
	SlotSet struct {
		slots    [NumSequenceTypes]Slot
		OnChange func()
	}

	// Instrument is a Sunsoft 5B instrument: a name and the sequences it
	// binds. The sequences themselves live in a SequencePool shared with
	// other instruments.
	Instrument struct {
		Name  string  `yaml:",omitempty"`
		Slots SlotSet `yaml:"slots"`
	}
)

func (s *SlotSet) Enabled(t SequenceType) bool {
	return s.slots[t].Enabled
}

func (s *SlotSet) Index(t SequenceType) int {
	return s.slots[t].Index
}

func (s *SlotSet) Slot(t SequenceType) Slot {
	return s.slots[t]
}

func (s *SlotSet) SetEnabled(t SequenceType, enabled bool) bool {
	if s.slots[t].Enabled == enabled {
		return false
	}
	s.changed()
	s.slots[t].Enabled = enabled
	return true
}

func (s *SlotSet) SetIndex(t SequenceType, index int) bool {
	if s.slots[t].Index == index {
		return false
	}
	s.changed()
	s.slots[t].Index = index
	return true
}

func (s *SlotSet) changed() {
	if s.OnChange != nil {
		s.OnChange()
	}
}

// NewInstrument returns an instrument with all slots disabled.
func NewInstrument(name string) *Instrument {
	return &Instrument{Name: name}
}

// Setup disables every slot and then points each slot at a fresh index from
// pool. If the pool is exhausted for a type, that slot keeps its previous
// index.
func (instr *Instrument) Setup(pool SequencePool) {
	for _, t := range SequenceTypes {
		instr.Slots.SetEnabled(t, false)
		if index, ok := pool.AllocateFree(t); ok {
			instr.Slots.SetIndex(t, index)
		}
	}
}

// Copy returns an instrument with the same name and bindings. The copy shares
// the pool sequences of the original and has no change callback.
func (instr *Instrument) Copy() Instrument {
	return Instrument{Name: instr.Name, Slots: SlotSet{slots: instr.Slots.slots}}
}

type slotYAML struct {
	Type    SequenceType
	Enabled bool `yaml:",omitempty"`
	Index   int  `yaml:",omitempty"`
}

func (s SlotSet) MarshalYAML() (interface{}, error) {
	ret := make([]slotYAML, 0, NumSequenceTypes)
	for _, t := range SequenceTypes {
		ret = append(ret, slotYAML{Type: t, Enabled: s.slots[t].Enabled, Index: s.slots[t].Index})
	}
	return ret, nil
}

// UnmarshalYAML accepts any subset of the slots, keyed by type; slots not
// listed are left as they were.
func (s *SlotSet) UnmarshalYAML(value *yaml.Node) error {
	var slots []slotYAML
	if err := value.Decode(&slots); err != nil {
		return err
	}
	for _, y := range slots {
		if err := checkBounds("pool index", y.Index, MaxSequences); err != nil {
			return err
		}
		s.SetEnabled(y.Type, y.Enabled)
		s.SetIndex(y.Type, y.Index)
	}
	return nil
}
