package binding

import (
	"errors"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/chase3718/lou-dome/internal/show"
)

const bindingsYAML = `
- type: 1
  name: palette pads
  rangeType: knob
  rangeStart: 4
  rangeEnd: 7
- type: 2
  name: master
  commandType: knob
  index: 16
  min: 0.1
  max: 1
- type: 3
  commandType: note
  rangeStart: 36
  rangeEnd: 38
`

func TestDecodeDocuments(t *testing.T) {
	var docs []Document
	if err := yaml.Unmarshal([]byte(bindingsYAML), &docs); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	configs := Configs(docs)
	if len(configs) != 3 {
		t.Fatalf("decoded %d configs, want 3", len(configs))
	}

	rt, ok := configs[0].(*RangeToggle)
	if !ok {
		t.Fatalf("configs[0] is %T, want *RangeToggle", configs[0])
	}
	if rt.Name() != "palette pads" || rt.RangeType != Knob || rt.RangeStart != 4 || rt.RangeEnd != 7 {
		t.Errorf("range toggle = %+v", rt)
	}
	if rt.Target != show.SlotEnabledColors {
		t.Errorf("default target = %q, want %q", rt.Target, show.SlotEnabledColors)
	}

	lvl, ok := configs[1].(*Level)
	if !ok {
		t.Fatalf("configs[1] is %T, want *Level", configs[1])
	}
	if lvl.Index != 16 || lvl.Min != 0.1 || lvl.Target != show.SlotBrightness {
		t.Errorf("level = %+v", lvl)
	}

	trg, ok := configs[2].(*Trigger)
	if !ok {
		t.Fatalf("configs[2] is %T, want *Trigger", configs[2])
	}
	if trg.CommandType != Note || trg.Target != show.SlotMode {
		t.Errorf("trigger = %+v", trg)
	}
}

func TestEncodeCarriesTypeTag(t *testing.T) {
	r := &RangeToggle{RangeType: Note, RangeStart: 0, RangeEnd: 7, Target: show.SlotEnabledColors}
	r.SetName("pads")
	out, err := yaml.Marshal(Documents([]Config{r}))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	text := string(out)
	for _, want := range []string{"type: 1", "rangeType: note", "name: pads"} {
		if !strings.Contains(text, want) {
			t.Errorf("encoded YAML missing %q:\n%s", want, text)
		}
	}

	var back []Document
	if err := yaml.Unmarshal(out, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	got, ok := back[0].Config.(*RangeToggle)
	if !ok || *got != *r {
		t.Errorf("decoded %+v, want %+v", back[0].Config, r)
	}
}

func TestDecodeUnknownType(t *testing.T) {
	var docs []Document
	err := yaml.Unmarshal([]byte("- type: 42\n  name: mystery\n"), &docs)
	if !errors.Is(err, ErrUnknownType) {
		t.Errorf("Unmarshal() err = %v, want ErrUnknownType", err)
	}
}

func TestDecodeBadCommandType(t *testing.T) {
	var docs []Document
	err := yaml.Unmarshal([]byte("- type: 1\n  rangeType: sysex\n"), &docs)
	if err == nil {
		t.Error("Unmarshal() accepted an unknown command type")
	}
}

func TestTypesAreRegistered(t *testing.T) {
	got := Types()
	want := []Type{TypeRangeToggle, TypeLevel, TypeTrigger}
	if len(got) != len(want) {
		t.Fatalf("Types() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Types()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}
