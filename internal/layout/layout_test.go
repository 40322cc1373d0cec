package layout

import (
	"errors"
	"math"
	"testing"
)

func TestUnitNumbering(t *testing.T) {
	l, err := New([]int{3, 2, 4})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if l.Units() != 9 || l.Struts() != 3 {
		t.Fatalf("Units() = %d, Struts() = %d, want 9 and 3", l.Units(), l.Struts())
	}

	tests := []struct {
		strut, led, unit int
	}{
		{0, 0, 0},
		{0, 2, 2},
		{1, 0, 3},
		{1, 1, 4},
		{2, 3, 8},
	}
	for _, tt := range tests {
		got, err := l.Unit(tt.strut, tt.led)
		if err != nil || got != tt.unit {
			t.Errorf("Unit(%d, %d) = %d, %v, want %d", tt.strut, tt.led, got, err, tt.unit)
		}
		s, led, err := l.Locate(tt.unit)
		if err != nil || s != tt.strut || led != tt.led {
			t.Errorf("Locate(%d) = %d, %d, %v, want %d, %d", tt.unit, s, led, err, tt.strut, tt.led)
		}
	}

	if _, err := l.Unit(1, 2); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Unit(1, 2) err = %v, want ErrOutOfRange", err)
	}
	if _, _, err := l.Locate(9); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Locate(9) err = %v, want ErrOutOfRange", err)
	}
}

func TestNewRejectsEmptyStrut(t *testing.T) {
	if _, err := New([]int{4, 0}); err == nil {
		t.Error("New accepted a strut without leds")
	}
}

func TestPositionsSpreadAlongStrut(t *testing.T) {
	l, _ := New([]int{2})
	lookup := TableLookup([][2]Point{{{X: 0, Y: 0}, {X: 8, Y: 4}}})

	got := l.Positions(lookup)
	want := []Point{{X: 2, Y: 1}, {X: 4, Y: 2}}
	if len(got) != len(want) {
		t.Fatalf("Positions() len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(got[i].X-want[i].X) > 1e-9 || math.Abs(got[i].Y-want[i].Y) > 1e-9 {
			t.Errorf("unit %d at %v, want %v", i, got[i], want[i])
		}
	}

	p, err := l.Position(lookup, 1)
	if err != nil || p != got[1] {
		t.Errorf("Position(1) = %v, %v, want %v", p, err, got[1])
	}
}
