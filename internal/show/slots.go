package show

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"
)

// ErrSlotOutOfRange is returned when a write addresses a slot the target
// does not have. It always points at a bad binding configuration.
var ErrSlotOutOfRange = errors.New("show: slot out of range")

// BoolArray is a fixed-length array of flags. Each slot is written
// atomically, there is no cross-slot consistency.
type BoolArray struct {
	slots []atomic.Bool
}

func NewBoolArray(n int, initial bool) *BoolArray {
	a := &BoolArray{slots: make([]atomic.Bool, n)}
	if initial {
		for i := range a.slots {
			a.slots[i].Store(true)
		}
	}
	return a
}

func (a *BoolArray) Len() int { return len(a.slots) }

// Set stores v at offset i.
func (a *BoolArray) Set(i int, v bool) error {
	if i < 0 || i >= len(a.slots) {
		return fmt.Errorf("%w: offset %d, length %d", ErrSlotOutOfRange, i, len(a.slots))
	}
	a.slots[i].Store(v)
	return nil
}

// Get returns the flag at offset i, false when i is out of range.
func (a *BoolArray) Get(i int) bool {
	if i < 0 || i >= len(a.slots) {
		return false
	}
	return a.slots[i].Load()
}

// Snapshot copies every flag. Slots may change while it runs.
func (a *BoolArray) Snapshot() []bool {
	out := make([]bool, len(a.slots))
	for i := range a.slots {
		out[i] = a.slots[i].Load()
	}
	return out
}

// Level is a single float64 setting such as brightness.
type Level struct {
	bits atomic.Uint64
}

func NewLevel(v float64) *Level {
	l := &Level{}
	l.Set(v)
	return l
}

func (l *Level) Set(v float64) { l.bits.Store(math.Float64bits(v)) }

func (l *Level) Get() float64 { return math.Float64frombits(l.bits.Load()) }

// Selector picks one of n choices, e.g. the active animation mode.
type Selector struct {
	n int
	v atomic.Int64
}

func NewSelector(n int) *Selector { return &Selector{n: n} }

func (s *Selector) Choices() int { return s.n }

func (s *Selector) Set(i int) error {
	if i < 0 || i >= s.n {
		return fmt.Errorf("%w: choice %d, choices %d", ErrSlotOutOfRange, i, s.n)
	}
	s.v.Store(int64(i))
	return nil
}

func (s *Selector) Get() int { return int(s.v.Load()) }
