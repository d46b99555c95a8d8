package s5b

type (
	// LegacyRun is one entry of the pre-2.0 sequence format: Value repeated
	// Length+1 times. A negative Length marks the loop point instead of
	// producing items.
	LegacyRun struct {
		Length int8
		Value  int8
	}

	// LegacyConverter transcodes run-length encoded sequences into seq.
	LegacyConverter interface {
		ConvertLegacy(runs []LegacyRun, seq *Sequence, t SequenceType)
	}

	LegacyConverterFunc func(runs []LegacyRun, seq *Sequence, t SequenceType)
)

func (f LegacyConverterFunc) ConvertLegacy(runs []LegacyRun, seq *Sequence, t SequenceType) {
	f(runs, seq, t)
}

// DefaultLegacyConverter is the converter used when none is given.
var DefaultLegacyConverter LegacyConverter = LegacyConverterFunc(ConvertLegacy)

// ConvertLegacy expands runs into the items of seq and sets its loop point.
// Pitch and hi-pitch items are deltas, so only the first item of a run carries
// the value and the rest of the run is zero. A run with a negative length -n
// loops back over the n runs before it. An empty or oversized run list leaves
// seq untouched.
func ConvertLegacy(runs []LegacyRun, seq *Sequence, t SequenceType) {
	if len(runs) == 0 || len(runs) >= MaxSequenceItems {
		return
	}
	delta := t == Pitch || t == HiPitch
	loop := NoLoop
	items := make([]int8, 0, MaxSequenceItems)
	for _, r := range runs {
		if r.Length < 0 {
			loop = 0
			for l := max(0, len(runs)+int(r.Length)-1); l < len(runs)-1; l++ {
				loop += int(runs[l].Length) + 1
			}
			continue
		}
		for l := 0; l <= int(r.Length) && len(items) < MaxSequenceItems; l++ {
			if delta && l > 0 {
				items = append(items, 0)
			} else {
				items = append(items, r.Value)
			}
		}
	}
	if loop != NoLoop {
		loop = len(items) - min(loop, len(items))
	}
	seq.Items = items
	seq.Loop = loop
}
