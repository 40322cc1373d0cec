package binding

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// CommandType is a class of MIDI control message.
type CommandType int

const (
	Knob      CommandType = iota + 1 // control change
	Note                             // note on / note off
	Program                          // program change
	PitchBend                        // pitch bend, indexed by channel
)

var commandTypeNames = map[CommandType]string{
	Knob:      "knob",
	Note:      "note",
	Program:   "program",
	PitchBend: "pitchbend",
}

func (t CommandType) String() string {
	if n, ok := commandTypeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("CommandType(%d)", int(t))
}

// ParseCommandType accepts the lower-case name or the numeric value.
func ParseCommandType(s string) (CommandType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for t, n := range commandTypeNames {
		if n == s {
			return t, nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil {
		if _, ok := commandTypeNames[CommandType(n)]; ok {
			return CommandType(n), nil
		}
	}
	return 0, fmt.Errorf("binding: unknown command type %q", s)
}

func (t CommandType) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}

func (t *CommandType) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseCommandType(value.Value)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Key identifies which events a Binding is interested in. A key either
// names one control index or every index of its command type.
type Key struct {
	Type  CommandType
	index int
	any   bool
}

// ExactKey matches a single control index. Control indices are never
// negative.
func ExactKey(t CommandType, index int) Key {
	if index < 0 {
		panic(fmt.Sprintf("binding: negative control index %d", index))
	}
	return Key{Type: t, index: index}
}

// AnyKey matches every control index of t.
func AnyKey(t CommandType) Key {
	return Key{Type: t, any: true}
}

func (k Key) IsAny() bool { return k.any }

// Index returns the control index, or -1 for an AnyKey.
func (k Key) Index() int {
	if k.any {
		return -1
	}
	return k.index
}

func (k Key) Matches(index int) bool {
	if k.any {
		return true
	}
	return k.index == index
}

func (k Key) String() string {
	if k.any {
		return k.Type.String() + "/*"
	}
	return k.Type.String() + "/" + strconv.Itoa(k.index)
}
