// Package settings holds the process-wide presentation and export state.
//
// Two independent groups live here:
//
//   - [ExportSettings], read by the raster exporter at export time and held
//     in a [Store] that replaces the whole value atomically.
//   - [Policy], the live on-screen background with a synchronous observer
//     fan-out to every registered view.
//
// Changing one never changes the other.
package settings

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	errs "github.com/matzehuels/drawview/pkg/errors"
)

// Background selects how the area behind a diagram is filled.
type Background int

const (
	BackgroundDefault Background = iota
	BackgroundWhite
	BackgroundBlack
	BackgroundTransparent
	BackgroundCustom
)

var backgroundNames = [...]string{
	BackgroundDefault:     "default",
	BackgroundWhite:       "white",
	BackgroundBlack:       "black",
	BackgroundTransparent: "transparent",
	BackgroundCustom:      "custom",
}

// BackgroundNames lists the accepted background names.
func BackgroundNames() []string { return backgroundNames[:] }

func (b Background) String() string {
	if b < 0 || int(b) >= len(backgroundNames) {
		return fmt.Sprintf("Background(%d)", int(b))
	}
	return backgroundNames[b]
}

// ParseBackground parses a background name, case-insensitively.
// The empty string is [BackgroundDefault].
func ParseBackground(s string) (Background, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return BackgroundDefault, nil
	}
	for i, name := range backgroundNames {
		if s == name {
			return Background(i), nil
		}
	}
	return 0, errs.New(errs.ErrCodeInvalidInput, "unknown background %q (want one of %s)", s, strings.Join(backgroundNames[:], ", "))
}

// MarshalText implements encoding.TextMarshaler.
func (b Background) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Background) UnmarshalText(text []byte) error {
	v, err := ParseBackground(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

var (
	White = color.NRGBA{0xff, 0xff, 0xff, 0xff}
	Black = color.NRGBA{0x00, 0x00, 0x00, 0xff}
)

// Resolve returns the fill color for a background mode. ok is false for
// [BackgroundTransparent], which means no fill at all. custom is used only by
// [BackgroundCustom].
func Resolve(b Background, custom color.NRGBA) (fill color.NRGBA, ok bool) {
	switch b {
	case BackgroundBlack:
		return Black, true
	case BackgroundTransparent:
		return color.NRGBA{}, false
	case BackgroundCustom:
		return custom, true
	default:
		return White, true
	}
}

// ParseColor parses "#rgb", "#rrggbb" or "#rrggbbaa".
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	if len(s) == 9 && s[0] == '#' {
		c, err := colorful.Hex(s[:7])
		if err != nil {
			return color.NRGBA{}, errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid color %q", s)
		}
		var a uint8
		if _, err := fmt.Sscanf(s[7:], "%02x", &a); err != nil {
			return color.NRGBA{}, errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid color %q", s)
		}
		r, g, b := c.RGB255()
		return color.NRGBA{r, g, b, a}, nil
	}

	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid color %q", s)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{r, g, b, 0xff}, nil
}

// FormatColor formats c as "#rrggbb", or "#rrggbbaa" when not opaque.
func FormatColor(c color.NRGBA) string {
	hex := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}.Hex()
	if c.A != 0xff {
		return fmt.Sprintf("%s%02x", hex, c.A)
	}
	return hex
}
