// Package config loads the show profile: which MIDI input to use, where
// frames go, the dome layout, the palette, animation settings and the
// binding rules.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/chase3718/lou-dome/internal/animation"
	"github.com/chase3718/lou-dome/internal/binding"
	"github.com/chase3718/lou-dome/internal/frame"
	"github.com/chase3718/lou-dome/internal/layout"
	"github.com/chase3718/lou-dome/internal/midi"
	"github.com/chase3718/lou-dome/internal/show"
	"github.com/chase3718/lou-dome/internal/sink"
)

type Profile struct {
	MIDI      MIDI               `yaml:"midi"`
	Output    Output             `yaml:"output"`
	Layout    Layout             `yaml:"layout"`
	Palette   []string           `yaml:"palette"`
	Animation Animation          `yaml:"animation"`
	Bindings  []binding.Document `yaml:"bindings"`
}

type MIDI struct {
	Preferred []string `yaml:"preferred,omitempty"`
	Excluded  []string `yaml:"excluded,omitempty"`
	// Channel 0-15, or -1 for every channel.
	Channel int `yaml:"channel"`
}

type Output struct {
	Serial  *Serial         `yaml:"serial,omitempty"`
	ArtNet  []sink.Universe `yaml:"artnet,omitempty"`
	Preview string          `yaml:"preview,omitempty"`
}

type Serial struct {
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud,omitempty"`
}

type Layout struct {
	Struts []Strut `yaml:"struts"`
}

// Strut is a run of LEDs from From to To in preview space.
type Strut struct {
	LEDs int          `yaml:"leds"`
	From layout.Point `yaml:"from"`
	To   layout.Point `yaml:"to"`
}

type Animation struct {
	Tick       time.Duration `yaml:"tick"`
	Poll       time.Duration `yaml:"poll"`
	Mode       int           `yaml:"mode"`
	Brightness float64       `yaml:"brightness"`
	Speed      float64       `yaml:"speed"`
}

// Default is the profile used when no file is given: a ring of ten struts,
// a six color palette and a binding set for a small keyboard controller.
func Default() *Profile {
	p := &Profile{
		MIDI: MIDI{
			Preferred: []string{"Launchkey", "Novation"},
			Excluded:  midi.DefaultOptions().Excluded,
			Channel:   midi.AnyChannel,
		},
		Output:  Output{Preview: "127.0.0.1:8080"},
		Palette: []string{"#ff0000", "#ff8000", "#ffff00", "#00ff00", "#0080ff", "#8000ff"},
		Animation: Animation{
			Tick:       animation.DefaultTick,
			Poll:       frame.DefaultPollInterval,
			Mode:       animation.ModeWave,
			Brightness: 1,
			Speed:      1,
		},
	}

	const struts, radius = 10, 200.0
	for i := 0; i < struts; i++ {
		a0 := 2 * math.Pi * float64(i) / struts
		a1 := 2 * math.Pi * float64(i+1) / struts
		p.Layout.Struts = append(p.Layout.Struts, Strut{
			LEDs: 30,
			From: layout.Point{X: radius * math.Cos(a0), Y: radius * math.Sin(a0)},
			To:   layout.Point{X: radius * math.Cos(a1), Y: radius * math.Sin(a1)},
		})
	}

	p.Bindings = binding.Documents([]binding.Config{
		&binding.RangeToggle{Meta: binding.Meta{BindingName: "palette pads"}, RangeType: binding.Note, RangeStart: 36, RangeEnd: 36 + len(p.Palette) - 1, Target: show.SlotEnabledColors},
		&binding.Level{Meta: binding.Meta{BindingName: "brightness"}, CommandType: binding.Knob, Index: 21, Target: show.SlotBrightness, Min: 0, Max: 1},
		&binding.Level{Meta: binding.Meta{BindingName: "speed"}, CommandType: binding.Knob, Index: 22, Target: show.SlotSpeed, Min: 0, Max: 4},
		&binding.Trigger{Meta: binding.Meta{BindingName: "modes"}, CommandType: binding.Program, RangeStart: 0, RangeEnd: show.NumModes - 1, Target: show.SlotMode},
	})
	return p
}

// Load reads and validates the profile at path. Fields absent from the file
// keep their Default values; lists present in the file replace the default
// list wholesale.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse decodes and validates a YAML profile.
func Parse(data []byte) (*Profile, error) {
	p := Default()
	// Decoding a sequence replaces the default slice; mappings merge.
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}
	return p, nil
}

// Marshal encodes the profile as YAML.
func (p *Profile) Marshal() ([]byte, error) {
	return yaml.Marshal(p)
}

// Validate checks everything that can be checked without a running show,
// including every binding against a configuration built from the palette.
func (p *Profile) Validate() error {
	var errs []error
	if p.MIDI.Channel < midi.AnyChannel || p.MIDI.Channel > 15 {
		errs = append(errs, fmt.Errorf("midi: channel %d out of range", p.MIDI.Channel))
	}
	if p.Output.Serial != nil && p.Output.Serial.Device == "" {
		errs = append(errs, errors.New("output: serial device is required"))
	}
	for i, u := range p.Output.ArtNet {
		if u.Host == "" {
			errs = append(errs, fmt.Errorf("output: artnet %d: host is required", i))
		}
		if u.Universe < 0 || u.Universe > 0x7fff {
			errs = append(errs, fmt.Errorf("output: artnet %d: universe %d out of range", i, u.Universe))
		}
	}
	if len(p.Layout.Struts) == 0 {
		errs = append(errs, errors.New("layout: no struts"))
	}
	for i, s := range p.Layout.Struts {
		if s.LEDs <= 0 {
			errs = append(errs, fmt.Errorf("layout: strut %d: leds must be positive", i))
		}
	}
	palette, err := p.PaletteColors()
	if err != nil {
		errs = append(errs, err)
	}
	if p.Animation.Mode < 0 || p.Animation.Mode >= show.NumModes {
		errs = append(errs, fmt.Errorf("animation: mode %d out of range", p.Animation.Mode))
	}
	if p.Animation.Brightness < 0 || p.Animation.Brightness > 1 {
		errs = append(errs, fmt.Errorf("animation: brightness %v outside [0, 1]", p.Animation.Brightness))
	}
	if p.Animation.Speed < 0 {
		errs = append(errs, fmt.Errorf("animation: negative speed %v", p.Animation.Speed))
	}
	if err == nil {
		if _, err := binding.Instantiate(show.NewConfiguration(palette), p.BindingConfigs()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Clone returns a deep copy; editing it leaves p untouched.
func (p *Profile) Clone() *Profile {
	c := *p
	c.MIDI.Preferred = append([]string(nil), p.MIDI.Preferred...)
	c.MIDI.Excluded = append([]string(nil), p.MIDI.Excluded...)
	if p.Output.Serial != nil {
		s := *p.Output.Serial
		c.Output.Serial = &s
	}
	c.Output.ArtNet = append([]sink.Universe(nil), p.Output.ArtNet...)
	c.Layout.Struts = append([]Strut(nil), p.Layout.Struts...)
	c.Palette = append([]string(nil), p.Palette...)
	c.Bindings = binding.Documents(binding.CloneAll(p.BindingConfigs()))
	return &c
}

// PaletteColors parses the palette's hex strings.
func (p *Profile) PaletteColors() ([]colorful.Color, error) {
	out := make([]colorful.Color, 0, len(p.Palette))
	for i, s := range p.Palette {
		c, err := colorful.Hex(s)
		if err != nil {
			return nil, fmt.Errorf("palette: color %d: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// BindingConfigs returns the profile's binding rules. They are shared with
// the profile; clone them before editing.
func (p *Profile) BindingConfigs() []binding.Config {
	return binding.Configs(p.Bindings)
}

// NewShow builds the live configuration for the profile's palette with the
// animation settings applied.
func (p *Profile) NewShow() (*show.Configuration, error) {
	palette, err := p.PaletteColors()
	if err != nil {
		return nil, err
	}
	cfg := show.NewConfiguration(palette)
	if l, ok := cfg.Level(show.SlotBrightness); ok {
		l.Set(p.Animation.Brightness)
	}
	if l, ok := cfg.Level(show.SlotSpeed); ok {
		l.Set(p.Animation.Speed)
	}
	if s, ok := cfg.Selector(show.SlotMode); ok {
		if err := s.Set(p.Animation.Mode); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// BuildLayout numbers the profile's struts and returns the endpoint lookup
// for preview surfaces.
func (p *Profile) BuildLayout() (*layout.Layout, layout.PointFunc, error) {
	leds := make([]int, len(p.Layout.Struts))
	ends := make([][2]layout.Point, len(p.Layout.Struts))
	for i, s := range p.Layout.Struts {
		leds[i] = s.LEDs
		ends[i] = [2]layout.Point{s.From, s.To}
	}
	l, err := layout.New(leds)
	if err != nil {
		return nil, nil, err
	}
	return l, layout.TableLookup(ends), nil
}

// MIDIOptions converts the profile's MIDI section for midi.NewWatcher.
func (p *Profile) MIDIOptions() midi.Options {
	opts := midi.DefaultOptions()
	opts.Preferred = p.MIDI.Preferred
	opts.Excluded = p.MIDI.Excluded
	opts.Channel = p.MIDI.Channel
	return opts
}
