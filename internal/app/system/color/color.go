// Package color converts bulb colors between hex strings, RGB triples and
// packed 24-bit integers.
package color

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxRGBInt is the largest packed 0xRRGGBB value.
const MaxRGBInt = 0xFFFFFF

var ErrInvalidHex = errors.New("hex color value supplied is invalid")

// Color is a 24-bit RGB color.
type Color struct {
	R, G, B uint8
}

// FromRGB builds a Color from individual channels.
func FromRGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// FromRGBInt unpacks a 0xRRGGBB integer. Values outside 0..MaxRGBInt are rejected.
func FromRGBInt(v int) (Color, error) {
	if v < 0 || v > MaxRGBInt {
		return Color{}, fmt.Errorf("invalid RGB int value: %d", v)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// FromHex parses "#rgb" or "#rrggbb", case-insensitively.
func FromHex(s string) (Color, error) {
	h, err := NormalizeHex(s)
	if err != nil {
		return Color{}, err
	}
	v, err := strconv.ParseUint(h[1:], 16, 32)
	if err != nil {
		return Color{}, ErrInvalidHex
	}
	return FromRGBInt(int(v))
}

// NormalizeHex returns s as lowercase "#rrggbb", expanding the short form.
func NormalizeHex(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		return "", ErrInvalidHex
	}
	digits := strings.ToLower(s[1:])
	for _, c := range digits {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			return "", ErrInvalidHex
		}
	}
	switch len(digits) {
	case 6:
		return "#" + digits, nil
	case 3:
		var b strings.Builder
		b.WriteByte('#')
		for _, c := range digits {
			b.WriteRune(c)
			b.WriteRune(c)
		}
		return b.String(), nil
	}
	return "", ErrInvalidHex
}

// Int packs the color as 0xRRGGBB.
func (c Color) Int() int {
	return int(c.R)<<16 | int(c.G)<<8 | int(c.B)
}

// Hex renders the color as lowercase "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// RGB returns the three channels in order.
func (c Color) RGB() (r, g, b uint8) {
	return c.R, c.G, c.B
}

func (c Color) String() string { return c.Hex() }
