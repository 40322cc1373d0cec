package animation

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/chase3718/lou-dome/internal/frame"
)

// Modes selectable through the show's mode slot.
const (
	ModeWave = iota
	ModeCycle
	ModeGradient
)

const waveWidth = 0.3

// Render fills dst with the colors of every unit at time t (seconds, already
// scaled by speed). An empty palette renders black.
func Render(dst []frame.RGB, t float64, palette []colorful.Color, brightness float64, mode int) {
	if len(palette) == 0 || brightness <= 0 {
		for i := range dst {
			dst[i] = 0
		}
		return
	}
	if brightness > 1 {
		brightness = 1
	}

	n := len(dst)
	switch mode {
	case ModeCycle:
		c := paletteAt(palette, frac(t/4))
		fill(dst, toRGB(c, brightness))

	case ModeGradient:
		for i := range dst {
			pos := frac(unitPos(i, n) + t/8)
			dst[i] = toRGB(paletteAt(palette, pos), brightness)
		}

	default:
		// A band of light travels along the units; the band's color walks
		// through the palette one step per pass.
		pos := frac(t / 2)
		c := palette[int(t/2)%len(palette)]
		for i := range dst {
			d := math.Abs(unitPos(i, n) - pos)
			var intensity float64
			if d <= waveWidth/2 {
				intensity = 1 - d/(waveWidth/2)
			}
			dst[i] = toRGB(c, brightness*intensity)
		}
	}
}

// paletteAt blends between neighbouring palette entries, pos in [0, 1).
func paletteAt(palette []colorful.Color, pos float64) colorful.Color {
	if len(palette) == 1 {
		return palette[0]
	}
	x := pos * float64(len(palette))
	i := int(x) % len(palette)
	j := (i + 1) % len(palette)
	return palette[i].BlendHcl(palette[j], x-math.Floor(x)).Clamped()
}

func toRGB(c colorful.Color, brightness float64) frame.RGB {
	if brightness <= 0 {
		return 0
	}
	h, s, v := c.Hsv()
	r, g, b := colorful.Hsv(h, s, v*brightness).Clamped().RGB255()
	return frame.FromRGB(r, g, b)
}

func fill(dst []frame.RGB, c frame.RGB) {
	for i := range dst {
		dst[i] = c
	}
}

func unitPos(i, n int) float64 {
	if n <= 1 {
		return 0
	}
	return float64(i) / float64(n-1)
}

func frac(x float64) float64 {
	return x - math.Floor(x)
}
