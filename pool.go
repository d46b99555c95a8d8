package s5b

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// SequencePool is the registry of sequences that instruments bind to by
// index. It is owned by the document, not by any instrument.
type SequencePool interface {
	// AllocateFree returns an unused index for a sequence of type t and
	// reserves it. ok is false if the pool is exhausted for that type.
	AllocateFree(t SequenceType) (index int, ok bool)
	// Sequence returns the sequence at (index, t), or nil if the index can
	// never hold a sequence.
	Sequence(index int, t SequenceType) *Sequence
}

// SequencePeeker is implemented by pools that can look up a sequence without
// reserving or creating it. Queries that must not change the pool use it
// when the pool provides it.
type SequencePeeker interface {
	// Peek returns the sequence at (index, t), or nil if there is none.
	Peek(index int, t SequenceType) *Sequence
}

// peek looks up a sequence through Peek when pool has it, and through
// Sequence otherwise.
func peek(pool SequencePool, index int, t SequenceType) *Sequence {
	if p, ok := pool.(SequencePeeker); ok {
		return p.Peek(index, t)
	}
	return pool.Sequence(index, t)
}

type (
	// Pool is an in-memory SequencePool holding up to Capacity() sequences of
	// each type. The zero value is an empty pool with capacity MaxSequences.
	Pool struct {
		entries  [NumSequenceTypes][]poolEntry
		capacity int
		limited  bool
	}

	poolEntry struct {
		seq      *Sequence
		reserved bool
		gen      uint32
	}

	// Handle is a checked reference to a pool entry. Freeing the entry
	// invalidates every handle taken before the free.
	Handle struct {
		Type  SequenceType
		Index int
		gen   uint32
	}
)

// NewPool returns a pool that can allocate at most capacity sequences of each
// type. capacity is clamped to [0, MaxSequences].
func NewPool(capacity int) *Pool {
	return &Pool{capacity: max(0, min(capacity, MaxSequences)), limited: true}
}

func (p *Pool) Capacity() int {
	if !p.limited {
		return MaxSequences
	}
	return p.capacity
}

func (p *Pool) entry(index int, t SequenceType) *poolEntry {
	if !t.Valid() || index < 0 || index >= MaxSequences {
		return nil
	}
	if p.entries[t] == nil {
		p.entries[t] = make([]poolEntry, MaxSequences)
	}
	return &p.entries[t][index]
}

// AllocateFree returns the lowest index below Capacity() that is neither
// reserved nor holding items, and reserves it.
func (p *Pool) AllocateFree(t SequenceType) (int, bool) {
	for i := 0; i < p.Capacity(); i++ {
		e := p.entry(i, t)
		if e == nil {
			return 0, false
		}
		if e.reserved || (e.seq != nil && e.seq.ItemCount() > 0) {
			continue
		}
		e.reserved = true
		return i, true
	}
	return 0, false
}

// Sequence returns the sequence at (index, t), creating an empty one on
// first access. Accessing an entry reserves it.
func (p *Pool) Sequence(index int, t SequenceType) *Sequence {
	e := p.entry(index, t)
	if e == nil {
		return nil
	}
	if e.seq == nil {
		e.seq = NewSequence()
	}
	e.reserved = true
	return e.seq
}

// Peek returns the sequence at (index, t) without creating or reserving it.
func (p *Pool) Peek(index int, t SequenceType) *Sequence {
	if !t.Valid() || index < 0 || index >= MaxSequences || p.entries[t] == nil {
		return nil
	}
	return p.entries[t][index].seq
}

// Free empties the entry at (index, t), makes it available to AllocateFree
// again and invalidates all outstanding handles to it.
func (p *Pool) Free(index int, t SequenceType) {
	e := p.entry(index, t)
	if e == nil {
		return
	}
	if e.seq != nil {
		e.seq.Reset()
	}
	e.reserved = false
	e.gen++
}

func (p *Pool) Handle(index int, t SequenceType) (Handle, error) {
	if err := checkBounds("pool index", index, MaxSequences); err != nil {
		return Handle{}, err
	}
	if !t.Valid() {
		return Handle{}, &BoundsError{Field: "sequence type", Value: int(t), Limit: NumSequenceTypes}
	}
	return Handle{Type: t, Index: index, gen: p.entry(index, t).gen}, nil
}

// Resolve returns the sequence a handle refers to, or ErrStaleHandle if the
// entry has been freed since the handle was taken.
func (p *Pool) Resolve(h Handle) (*Sequence, error) {
	e := p.entry(h.Index, h.Type)
	if e == nil {
		return nil, &BoundsError{Field: "pool index", Value: h.Index, Limit: MaxSequences}
	}
	if e.gen != h.gen {
		return nil, fmt.Errorf("%w: %v sequence %d", ErrStaleHandle, h.Type, h.Index)
	}
	return p.Sequence(h.Index, h.Type), nil
}

// Indices returns the reserved indices of type t in ascending order.
func (p *Pool) Indices(t SequenceType) []int {
	if !t.Valid() {
		return nil
	}
	var ret []int
	for i, e := range p.entries[t] {
		if e.reserved {
			ret = append(ret, i)
		}
	}
	return ret
}

type poolEntryYAML struct {
	Type     SequenceType
	Index    int
	Sequence `yaml:",inline"`
}

func (p Pool) MarshalYAML() (interface{}, error) {
	var ret []poolEntryYAML
	for _, t := range SequenceTypes {
		for _, i := range p.Indices(t) {
			seq := p.entries[t][i].seq
			if seq == nil {
				seq = NewSequence()
			}
			ret = append(ret, poolEntryYAML{Type: t, Index: i, Sequence: seq.Copy()})
		}
	}
	return ret, nil
}

func (p *Pool) UnmarshalYAML(value *yaml.Node) error {
	var nodes []yaml.Node
	if err := value.Decode(&nodes); err != nil {
		return err
	}
	*p = Pool{}
	for i := range nodes {
		e := poolEntryYAML{Sequence: *NewSequence()}
		if err := nodes[i].Decode(&e); err != nil {
			return err
		}
		if err := checkBounds("pool index", e.Index, MaxSequences); err != nil {
			return fmt.Errorf("line %d: %w", nodes[i].Line, err)
		}
		if len(e.Items) > MaxSequenceItems {
			return fmt.Errorf("line %d: %w", nodes[i].Line, &BoundsError{Field: "item count", Value: len(e.Items), Limit: MaxSequenceItems + 1})
		}
		*p.Sequence(e.Index, e.Type) = e.Sequence
	}
	return nil
}
