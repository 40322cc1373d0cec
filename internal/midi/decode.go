// Package midi turns gomidi input ports into binding events. The Watcher
// keeps one preferred input connected across hot-plug and hot-unplug; Decode
// maps individual messages onto binding.Event.
package midi

import (
	"gitlab.com/gomidi/midi/v2"

	"github.com/chase3718/lou-dome/internal/binding"
)

// AnyChannel disables channel filtering in Decode.
const AnyChannel = -1

// Decode maps a channel message onto a binding event. Control changes and
// note velocities are normalised to 0..1, a note off carries 0, a program
// change carries 1 and a pitch bend carries -1..1 indexed by its channel.
// Messages on other channels than channel, or of other kinds, report false.
func Decode(msg midi.Message, channel int) (binding.Event, bool) {
	var ch, a, b uint8
	var rel int16
	var abs uint16

	var ev binding.Event
	switch {
	case msg.GetControlChange(&ch, &a, &b):
		ev = binding.Event{Type: binding.Knob, Index: int(a), Value: Normalize(b)}
	case msg.GetNoteStart(&ch, &a, &b):
		ev = binding.Event{Type: binding.Note, Index: int(a), Value: Normalize(b)}
	case msg.GetNoteEnd(&ch, &a):
		ev = binding.Event{Type: binding.Note, Index: int(a), Value: 0}
	case msg.GetProgramChange(&ch, &a):
		ev = binding.Event{Type: binding.Program, Index: int(a), Value: 1}
	case msg.GetPitchBend(&ch, &rel, &abs):
		ev = binding.Event{Type: binding.PitchBend, Index: int(ch), Value: float64(rel) / 8192}
	default:
		return binding.Event{}, false
	}
	if channel != AnyChannel && int(ch) != channel {
		return binding.Event{}, false
	}
	return ev, true
}

// Normalize maps a 7-bit value onto 0..1 so that 0, 64 and 127 land exactly
// on 0, 0.5 and 1.
func Normalize(v uint8) float64 {
	switch {
	case v == 0:
		return 0
	case v == 64:
		return 0.5
	case v >= 127:
		return 1
	case v < 64:
		return float64(v) / 128
	default:
		return float64(v-1) / 126
	}
}
