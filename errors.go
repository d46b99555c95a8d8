package s5b

import (
	"errors"
	"fmt"
)

var (
	// ErrFormat is matched by every FormatError. A file that produces it is
	// considered corrupt and nothing from it should be used.
	ErrFormat = errors.New("malformed instrument data")

	// ErrBounds is matched by every BoundsError.
	ErrBounds = errors.New("value out of range")

	// ErrStaleHandle is returned when resolving a Handle whose pool entry has
	// been freed since the handle was taken.
	ErrStaleHandle = errors.New("stale sequence handle")
)

// FormatError reports a structural problem in encoded instrument data, e.g. a
// slot count the format cannot hold.
type FormatError struct {
	Field string
	Value any
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%v: invalid %s %v", ErrFormat, e.Field, e.Value)
}

func (e *FormatError) Unwrap() error { return ErrFormat }

// BoundsError reports a decoded value outside the range the receiving
// structure can hold, e.g. a pool index beyond MaxSequences.
type BoundsError struct {
	Field string
	Value int
	Limit int // exclusive upper bound
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("%v: %s %d not in [0, %d)", ErrBounds, e.Field, e.Value, e.Limit)
}

func (e *BoundsError) Unwrap() error { return ErrBounds }

func checkBounds(field string, value, limit int) error {
	if value < 0 || value >= limit {
		return &BoundsError{Field: field, Value: value, Limit: limit}
	}
	return nil
}
