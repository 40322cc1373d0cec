package show

import (
	"errors"
	"sync"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
)

func testPalette() []colorful.Color {
	return []colorful.Color{
		{R: 1, G: 0, B: 0},
		{R: 0, G: 1, B: 0},
		{R: 0, G: 0, B: 1},
	}
}

func TestNewConfigurationDefaults(t *testing.T) {
	c := NewConfiguration(testPalette())

	if got := len(c.EnabledColors()); got != 3 {
		t.Errorf("EnabledColors() len = %d, want 3", got)
	}
	if got := c.Brightness(); got != 1 {
		t.Errorf("Brightness() = %v, want 1", got)
	}
	if got := c.Speed(); got != 1 {
		t.Errorf("Speed() = %v, want 1", got)
	}
	if got := c.Mode(); got != 0 {
		t.Errorf("Mode() = %d, want 0", got)
	}
}

func TestEnabledColorsFollowsFlags(t *testing.T) {
	c := NewConfiguration(testPalette())
	enabled, ok := c.BoolArray(SlotEnabledColors)
	if !ok {
		t.Fatal("enabled colors slot missing")
	}
	if err := enabled.Set(1, false); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got := c.EnabledColors()
	if len(got) != 2 {
		t.Fatalf("EnabledColors() len = %d, want 2", len(got))
	}
	if got[0] != testPalette()[0] || got[1] != testPalette()[2] {
		t.Errorf("EnabledColors() = %v, want red and blue", got)
	}
}

func TestPaletteIsCopied(t *testing.T) {
	p := testPalette()
	c := NewConfiguration(p)
	p[0] = colorful.Color{}

	if c.Palette()[0] != testPalette()[0] {
		t.Error("configuration palette aliases the caller's slice")
	}
	c.Palette()[1] = colorful.Color{}
	if c.Palette()[1] != testPalette()[1] {
		t.Error("Palette() exposes internal slice")
	}
}

func TestBoolArrayOutOfRange(t *testing.T) {
	a := NewBoolArray(2, false)

	tests := []struct {
		name    string
		offset  int
		wantErr bool
	}{
		{"first", 0, false},
		{"last", 1, false},
		{"negative", -1, true},
		{"past end", 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := a.Set(tt.offset, true)
			if tt.wantErr && !errors.Is(err, ErrSlotOutOfRange) {
				t.Errorf("Set(%d) err = %v, want ErrSlotOutOfRange", tt.offset, err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Set(%d) err = %v, want nil", tt.offset, err)
			}
		})
	}
	if a.Get(5) {
		t.Error("Get out of range should be false")
	}
}

func TestSelectorRange(t *testing.T) {
	s := NewSelector(NumModes)
	if err := s.Set(NumModes - 1); err != nil {
		t.Fatalf("Set last mode: %v", err)
	}
	if got := s.Get(); got != NumModes-1 {
		t.Errorf("Get() = %d, want %d", got, NumModes-1)
	}
	if err := s.Set(NumModes); !errors.Is(err, ErrSlotOutOfRange) {
		t.Errorf("Set(%d) err = %v, want ErrSlotOutOfRange", NumModes, err)
	}
	if got := s.Get(); got != NumModes-1 {
		t.Errorf("failed Set changed the value to %d", got)
	}
}

func TestLevelConcurrentWrites(t *testing.T) {
	l := NewLevel(0)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(v float64) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				l.Set(v)
				_ = l.Get()
			}
		}(float64(i) / 8)
	}
	wg.Wait()

	got := l.Get()
	if got < 0 || got >= 1 {
		t.Errorf("Get() = %v, want one of the written values", got)
	}
}
