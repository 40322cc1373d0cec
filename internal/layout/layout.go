// Package layout numbers the LEDs of the dome and places them in 2-D for
// preview surfaces.
//
// The dome is a list of struts, each carrying a run of LEDs. Units are
// numbered strut by strut: strut 0 holds units [0, n0), strut 1 the next n1,
// and so on. Where a strut's endpoints sit on screen is not computed here;
// it comes from a PointFunc supplied by the caller.
package layout

import (
	"errors"
	"fmt"
	"sort"
)

var ErrOutOfRange = errors.New("layout: out of range")

// Point is a position in preview space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PointFunc returns endpoint 0 or 1 of a strut.
type PointFunc func(strut, endpoint int) Point

type Layout struct {
	leds    []int
	offsets []int
	units   int
}

// New builds a layout from the LED count of each strut.
func New(ledsPerStrut []int) (*Layout, error) {
	l := &Layout{
		leds:    make([]int, len(ledsPerStrut)),
		offsets: make([]int, len(ledsPerStrut)),
	}
	for i, n := range ledsPerStrut {
		if n <= 0 {
			return nil, fmt.Errorf("layout: strut %d has %d leds", i, n)
		}
		l.leds[i] = n
		l.offsets[i] = l.units
		l.units += n
	}
	return l, nil
}

func (l *Layout) Units() int { return l.units }

func (l *Layout) Struts() int { return len(l.leds) }

func (l *Layout) LEDs(strut int) int {
	if strut < 0 || strut >= len(l.leds) {
		return 0
	}
	return l.leds[strut]
}

// Unit returns the unit index of LED led on strut.
func (l *Layout) Unit(strut, led int) (int, error) {
	if strut < 0 || strut >= len(l.leds) || led < 0 || led >= l.leds[strut] {
		return 0, fmt.Errorf("%w: strut %d led %d", ErrOutOfRange, strut, led)
	}
	return l.offsets[strut] + led, nil
}

// Locate is the inverse of Unit.
func (l *Layout) Locate(unit int) (strut, led int, err error) {
	if unit < 0 || unit >= l.units {
		return 0, 0, fmt.Errorf("%w: unit %d of %d", ErrOutOfRange, unit, l.units)
	}
	strut = sort.Search(len(l.offsets), func(i int) bool { return l.offsets[i] > unit }) - 1
	return strut, unit - l.offsets[strut], nil
}

// Position places unit on the segment between its strut's endpoints. The
// LEDs are spread evenly, leaving a one-LED gap at either end, walking from
// endpoint 0 towards endpoint 1.
func (l *Layout) Position(lookup PointFunc, unit int) (Point, error) {
	strut, led, err := l.Locate(unit)
	if err != nil {
		return Point{}, err
	}
	return ledPoint(lookup(strut, 0), lookup(strut, 1), l.leds[strut], led), nil
}

// Positions places every unit, indexed by unit.
func (l *Layout) Positions(lookup PointFunc) []Point {
	out := make([]Point, 0, l.units)
	for s, n := range l.leds {
		p1, p2 := lookup(s, 0), lookup(s, 1)
		for j := 0; j < n; j++ {
			out = append(out, ledPoint(p1, p2, n, j))
		}
	}
	return out
}

func ledPoint(p1, p2 Point, n, j int) Point {
	dx := (p1.X - p2.X) / float64(n+2)
	dy := (p1.Y - p2.Y) / float64(n+2)
	return Point{
		X: p1.X - dx*float64(j+1),
		Y: p1.Y - dy*float64(j+1),
	}
}

// TableLookup serves endpoints from a fixed table, one pair per strut.
// Unknown struts map to the origin.
func TableLookup(endpoints [][2]Point) PointFunc {
	return func(strut, endpoint int) Point {
		if strut < 0 || strut >= len(endpoints) || endpoint < 0 || endpoint > 1 {
			return Point{}
		}
		return endpoints[strut][endpoint]
	}
}
