// Package show holds the live show configuration that MIDI bindings write
// into and the animation engine reads from.
package show

import (
	"sync"

	"github.com/lucasb-eyer/go-colorful"
)

// Well-known slot names.
const (
	SlotEnabledColors = "palette.enabled"
	SlotBrightness    = "brightness"
	SlotSpeed         = "speed"
	SlotMode          = "mode"
)

// NumModes is the number of animation modes the engine knows about.
const NumModes = 3

// Configuration is the shared state of a running show. Slots are registered
// by name so bindings can address them without knowing the concrete layout.
type Configuration struct {
	mu        sync.RWMutex
	palette   []colorful.Color
	bools     map[string]*BoolArray
	levels    map[string]*Level
	selectors map[string]*Selector
}

// NewConfiguration creates a configuration for the given palette with every
// color enabled, full brightness, unit speed and mode 0.
func NewConfiguration(palette []colorful.Color) *Configuration {
	p := make([]colorful.Color, len(palette))
	copy(p, palette)

	c := &Configuration{
		palette:   p,
		bools:     make(map[string]*BoolArray),
		levels:    make(map[string]*Level),
		selectors: make(map[string]*Selector),
	}
	c.AddBoolArray(SlotEnabledColors, NewBoolArray(len(p), true))
	c.AddLevel(SlotBrightness, NewLevel(1))
	c.AddLevel(SlotSpeed, NewLevel(1))
	c.AddSelector(SlotMode, NewSelector(NumModes))
	return c
}

func (c *Configuration) AddBoolArray(name string, a *BoolArray) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bools[name] = a
}

func (c *Configuration) AddLevel(name string, l *Level) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.levels[name] = l
}

func (c *Configuration) AddSelector(name string, s *Selector) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selectors[name] = s
}

func (c *Configuration) BoolArray(name string) (*BoolArray, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.bools[name]
	return a, ok
}

func (c *Configuration) Level(name string) (*Level, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.levels[name]
	return l, ok
}

func (c *Configuration) Selector(name string) (*Selector, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.selectors[name]
	return s, ok
}

// Palette returns a copy of the full palette.
func (c *Configuration) Palette() []colorful.Color {
	out := make([]colorful.Color, len(c.palette))
	copy(out, c.palette)
	return out
}

// EnabledColors returns the palette colors whose enabled flag is set, in
// palette order.
func (c *Configuration) EnabledColors() []colorful.Color {
	enabled, ok := c.BoolArray(SlotEnabledColors)
	if !ok {
		return c.Palette()
	}
	out := make([]colorful.Color, 0, len(c.palette))
	for i, col := range c.palette {
		if enabled.Get(i) {
			out = append(out, col)
		}
	}
	return out
}

// Brightness is the brightness level, 1 when the slot is missing.
func (c *Configuration) Brightness() float64 { return c.levelOr(SlotBrightness, 1) }

// Speed is the animation speed multiplier, 1 when the slot is missing.
func (c *Configuration) Speed() float64 { return c.levelOr(SlotSpeed, 1) }

// Mode is the selected animation mode.
func (c *Configuration) Mode() int {
	if s, ok := c.Selector(SlotMode); ok {
		return s.Get()
	}
	return 0
}

func (c *Configuration) levelOr(name string, def float64) float64 {
	if l, ok := c.Level(name); ok {
		return l.Get()
	}
	return def
}
