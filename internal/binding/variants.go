package binding

import (
	"fmt"

	"github.com/chase3718/lou-dome/internal/show"
)

// RangeToggle binds the indices [RangeStart, RangeEnd] of one command type
// to the flags of a boolean array, e.g. the enabled palette colors. Index
// RangeStart drives flag 0.
type RangeToggle struct {
	Meta       `yaml:",inline"`
	RangeType  CommandType `yaml:"rangeType"`
	RangeStart int         `yaml:"rangeStart"`
	RangeEnd   int         `yaml:"rangeEnd"`
	Target     string      `yaml:"target,omitempty"`
}

func (r *RangeToggle) Type() Type { return TypeRangeToggle }

func (r *RangeToggle) Clone() Config {
	c := *r
	return &c
}

func (r *RangeToggle) Validate() error {
	if r.RangeStart < 0 {
		return fmt.Errorf("%w: negative start %d", ErrInvalidRange, r.RangeStart)
	}
	if r.RangeStart > r.RangeEnd {
		return fmt.Errorf("%w: [%d, %d]", ErrInvalidRange, r.RangeStart, r.RangeEnd)
	}
	return nil
}

func (r *RangeToggle) Bindings(cfg *show.Configuration) ([]Binding, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	target, ok := cfg.BoolArray(r.Target)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTarget, r.Target)
	}
	if width := r.RangeEnd - r.RangeStart + 1; width > target.Len() {
		return nil, fmt.Errorf("%w: %d controls for %d slots of %q", ErrRangeExceedsTarget, width, target.Len(), r.Target)
	}

	start, end := r.RangeStart, r.RangeEnd
	return []Binding{{
		Key: AnyKey(r.RangeType),
		Callback: func(index int, value float64) error {
			if index < start || index > end {
				return nil
			}
			return target.Set(index-start, value > 0.0)
		},
	}}, nil
}

// Level binds one control to a continuous setting. The normalised value is
// clamped to [0, 1] and scaled into [Min, Max].
type Level struct {
	Meta        `yaml:",inline"`
	CommandType CommandType `yaml:"commandType"`
	Index       int         `yaml:"index"`
	Target      string      `yaml:"target,omitempty"`
	Min         float64     `yaml:"min"`
	Max         float64     `yaml:"max"`
}

func (l *Level) Type() Type { return TypeLevel }

func (l *Level) Clone() Config {
	c := *l
	return &c
}

func (l *Level) Validate() error {
	if l.Index < 0 {
		return fmt.Errorf("%w: negative index %d", ErrInvalidRange, l.Index)
	}
	if l.Min > l.Max {
		return fmt.Errorf("%w: min %v above max %v", ErrInvalidRange, l.Min, l.Max)
	}
	return nil
}

func (l *Level) Bindings(cfg *show.Configuration) ([]Binding, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	target, ok := cfg.Level(l.Target)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTarget, l.Target)
	}

	key := ExactKey(l.CommandType, l.Index)
	lo, hi := l.Min, l.Max
	return []Binding{{
		Key: key,
		Callback: func(index int, value float64) error {
			if !key.Matches(index) {
				return nil
			}
			target.Set(lo + clamp01(value)*(hi-lo))
			return nil
		},
	}}, nil
}

// Trigger selects a choice when one of the controls in [RangeStart,
// RangeEnd] is pressed. Releases (non-positive values) are ignored.
type Trigger struct {
	Meta        `yaml:",inline"`
	CommandType CommandType `yaml:"commandType"`
	RangeStart  int         `yaml:"rangeStart"`
	RangeEnd    int         `yaml:"rangeEnd"`
	Target      string      `yaml:"target,omitempty"`
}

func (t *Trigger) Type() Type { return TypeTrigger }

func (t *Trigger) Clone() Config {
	c := *t
	return &c
}

func (t *Trigger) Validate() error {
	if t.RangeStart < 0 {
		return fmt.Errorf("%w: negative start %d", ErrInvalidRange, t.RangeStart)
	}
	if t.RangeStart > t.RangeEnd {
		return fmt.Errorf("%w: [%d, %d]", ErrInvalidRange, t.RangeStart, t.RangeEnd)
	}
	return nil
}

func (t *Trigger) Bindings(cfg *show.Configuration) ([]Binding, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	target, ok := cfg.Selector(t.Target)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTarget, t.Target)
	}
	if width := t.RangeEnd - t.RangeStart + 1; width > target.Choices() {
		return nil, fmt.Errorf("%w: %d controls for %d choices of %q", ErrRangeExceedsTarget, width, target.Choices(), t.Target)
	}

	start, end := t.RangeStart, t.RangeEnd
	return []Binding{{
		Key: AnyKey(t.CommandType),
		Callback: func(index int, value float64) error {
			if index < start || index > end || value <= 0 {
				return nil
			}
			return target.Set(index - start)
		},
	}}, nil
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
