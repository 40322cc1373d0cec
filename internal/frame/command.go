// Package frame carries per-unit color updates from the animation engine to
// the display side.
//
// Producers enqueue SetColor commands for the units whose color changed and
// one Flush command when a batch forms a complete frame. A single Consumer
// drains the queue into its own buffer and publishes that buffer only when a
// Flush went by, so a half-computed frame is never shown.
package frame

import "fmt"

// RGB is a 24-bit color, 0xRRGGBB.
type RGB uint32

func FromRGB(r, g, b uint8) RGB {
	return RGB(r)<<16 | RGB(g)<<8 | RGB(b)
}

func (c RGB) R() uint8 { return uint8(c >> 16) }
func (c RGB) G() uint8 { return uint8(c >> 8) }
func (c RGB) B() uint8 { return uint8(c) }

func (c RGB) String() string { return fmt.Sprintf("#%06x", uint32(c)&0xffffff) }

// Kind discriminates Command.
type Kind uint8

const (
	KindSetColor Kind = iota
	KindFlush
)

// Command is either "set unit to color" or "flush: the preceding commands
// form one frame".
type Command struct {
	Kind  Kind
	Unit  int
	Color RGB
}

func SetColor(unit int, c RGB) Command {
	return Command{Kind: KindSetColor, Unit: unit, Color: c}
}

func Flush() Command {
	return Command{Kind: KindFlush}
}

func (c Command) IsFlush() bool { return c.Kind == KindFlush }

func (c Command) String() string {
	if c.IsFlush() {
		return "flush"
	}
	return fmt.Sprintf("set %d %s", c.Unit, c.Color)
}
