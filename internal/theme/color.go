package theme

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// Color is a true color or the terminal default.
type Color struct {
	R, G, B uint8
	// Default means "inherit from the terminal".
	Default bool
}

// ColorDefault is the inherited color.
var ColorDefault = Color{Default: true}

// ColorFromRGB creates a true color.
func ColorFromRGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// ParseColor parses "#rgb" or "#rrggbb".
func ParseColor(s string) (Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return Color{R: r, G: g, B: b}, nil
}

// IsDefault reports whether c is the inherited color.
func (c Color) IsDefault() bool {
	return c.Default
}

// String returns "default" or the lowercase hex form.
func (c Color) String() string {
	if c.Default {
		return "default"
	}
	return c.colorful().Hex()
}

// Blend mixes c towards other in Lab space. t is clamped to [0, 1].
// Blending with the default color returns the non-default side.
func (c Color) Blend(other Color, t float64) Color {
	switch {
	case c.Default:
		return other
	case other.Default:
		return c
	}
	t = min(max(t, 0), 1)
	r, g, b := c.colorful().BlendLab(other.colorful(), t).Clamped().RGB255()
	return Color{R: r, G: g, B: b}
}

// IsDark reports whether the color has a low perceived lightness.
func (c Color) IsDark() bool {
	if c.Default {
		return false
	}
	l, _, _ := c.colorful().Lab()
	return l < 0.5
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func (c Color) tcell() tcell.Color {
	if c.Default {
		return tcell.ColorDefault
	}
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
