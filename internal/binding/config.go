package binding

import (
	"fmt"
	"sort"
	"sync"

	"github.com/chase3718/lou-dome/internal/show"
)

// Type is the stable tag of a Config variant. It is persisted, never
// renumber an existing variant.
type Type int

const (
	TypeRangeToggle Type = 1
	TypeLevel       Type = 2
	TypeTrigger     Type = 3
)

// Config describes how a physical control affects show state, independent
// of any particular live configuration.
type Config interface {
	Type() Type
	Name() string
	SetName(name string)

	// Clone returns an independent copy of the same variant.
	Clone() Config

	// Validate checks the fields that do not depend on a live
	// configuration.
	Validate() error

	// Bindings instantiates the rule against cfg. It does not mutate cfg;
	// the returned callbacks do, when invoked.
	Bindings(cfg *show.Configuration) ([]Binding, error)
}

// Meta carries the fields shared by every variant.
type Meta struct {
	BindingName string `yaml:"name,omitempty"`
}

func (m *Meta) Name() string { return m.BindingName }

func (m *Meta) SetName(name string) { m.BindingName = name }

var (
	registryMu sync.RWMutex
	registry   = map[Type]func() Config{}
)

// Register makes a variant constructible from its tag. It panics if the tag
// is already taken.
func Register(t Type, ctor func() Config) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[t]; dup {
		panic(fmt.Sprintf("binding: type %d registered twice", t))
	}
	registry[t] = ctor
}

// New returns a zero-valued Config of variant t.
func New(t Type) (Config, error) {
	registryMu.RLock()
	ctor, ok := registry[t]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, t)
	}
	return ctor(), nil
}

// Types lists the registered tags in ascending order.
func Types() []Type {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]Type, 0, len(registry))
	for t := range registry {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func init() {
	Register(TypeRangeToggle, func() Config { return &RangeToggle{Target: show.SlotEnabledColors} })
	Register(TypeLevel, func() Config { return &Level{Target: show.SlotBrightness, Max: 1} })
	Register(TypeTrigger, func() Config { return &Trigger{Target: show.SlotMode} })
}

// CloneAll deep-copies a list of configs.
func CloneAll(configs []Config) []Config {
	out := make([]Config, len(configs))
	for i, c := range configs {
		out[i] = c.Clone()
	}
	return out
}

// Instantiate builds the bindings of every config against cfg, in order.
// Nothing is returned unless every config succeeds.
func Instantiate(cfg *show.Configuration, configs []Config) ([]Binding, error) {
	var out []Binding
	for i, c := range configs {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("binding %d (%s): %w", i, describe(c), err)
		}
		bs, err := c.Bindings(cfg)
		if err != nil {
			return nil, fmt.Errorf("binding %d (%s): %w", i, describe(c), err)
		}
		out = append(out, bs...)
	}
	return out, nil
}

func describe(c Config) string {
	if c.Name() != "" {
		return c.Name()
	}
	return fmt.Sprintf("type %d", c.Type())
}
