package style

import (
	"errors"
	"fmt"
	"image/color"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ErrUnknownPalette is returned for palette names that are not registered.
var ErrUnknownPalette = errors.New("unknown palette")

// ColorBrewer schemes, keyed by class count
var spectral = map[int][]string{
	3:  {"fc8d59", "ffffbf", "99d594"},
	4:  {"d7191c", "fdae61", "abdda4", "2b83ba"},
	5:  {"d7191c", "fdae61", "ffffbf", "abdda4", "2b83ba"},
	6:  {"d53e4f", "fc8d59", "fee08b", "e6f598", "99d594", "3288bd"},
	7:  {"d53e4f", "fc8d59", "fee08b", "ffffbf", "e6f598", "99d594", "3288bd"},
	8:  {"d53e4f", "f46d43", "fdae61", "fee08b", "e6f598", "abdda4", "66c2a5", "3288bd"},
	9:  {"d53e4f", "f46d43", "fdae61", "fee08b", "ffffbf", "e6f598", "abdda4", "66c2a5", "3288bd"},
	10: {"9e0142", "d53e4f", "f46d43", "fdae61", "fee08b", "e6f598", "abdda4", "66c2a5", "3288bd", "5e4fa2"},
	11: {"9e0142", "d53e4f", "f46d43", "fdae61", "fee08b", "ffffbf", "e6f598", "abdda4", "66c2a5", "3288bd", "5e4fa2"},
}

// Qualitative schemes are prefixes of their largest class
var set3 = []string{"8dd3c7", "ffffb3", "bebada", "fb8072", "80b1d3", "fdb462", "b3de69", "fccde5", "d9d9d9", "bc80bd", "ccebc5", "ffed6f"}

// Paul Tol's bright scheme
var tolBright = []string{"4477aa", "ee6677", "228833", "ccbb44", "66ccee", "aa3377", "bbbbbb"}

type paletteFunc func(n int) ([]colorful.Color, error)

var palettes = map[string]paletteFunc{
	"cb-Spectral": sequentialPalette(spectral, 3, 11),
	"cb-Set3":     qualitativePalette(set3),
	"tol":         qualitativePalette(tolBright),
	"rainbow":     rainbowPalette,
}

// PaletteNames lists the registered palette names.
func PaletteNames() []string {
	return []string{"cb-Spectral", "cb-Set3", "tol", "rainbow"}
}

// Palette returns n colors from the named palette. The result depends only on
// (name, n).
func Palette(name string, n int) ([]color.NRGBA, error) {
	fn, ok := palettes[name]
	if !ok {
		return nil, fmt.Errorf("style: %q: %w", name, ErrUnknownPalette)
	}
	if n <= 0 {
		return nil, nil
	}
	cs, err := fn(n)
	if err != nil {
		return nil, fmt.Errorf("style: palette %q: %w", name, err)
	}
	out := make([]color.NRGBA, len(cs))
	for i, c := range cs {
		out[i] = toNRGBA(c)
	}
	return out, nil
}

func sequentialPalette(scheme map[int][]string, lo, hi int) paletteFunc {
	return func(n int) ([]colorful.Color, error) {
		switch {
		case n < lo:
			cs, err := parseHexes(scheme[lo])
			if err != nil {
				return nil, err
			}
			return cs[:n], nil
		case n <= hi:
			return parseHexes(scheme[n])
		}
		stops, err := parseHexes(scheme[hi])
		if err != nil {
			return nil, err
		}
		return interpolate(stops, n), nil
	}
}

func qualitativePalette(scheme []string) paletteFunc {
	return func(n int) ([]colorful.Color, error) {
		base, err := parseHexes(scheme)
		if err != nil {
			return nil, err
		}
		if n <= len(base) {
			return base[:n], nil
		}
		out := make([]colorful.Color, n)
		for i := range out {
			// each repeat of the scheme is blended further toward white
			c := base[i%len(base)]
			round := float64(i / len(base))
			out[i] = c.BlendLab(colorful.Color{R: 1, G: 1, B: 1}, 0.25*round/(round+1))
		}
		return out, nil
	}
}

func rainbowPalette(n int) ([]colorful.Color, error) {
	out := make([]colorful.Color, n)
	for i := range out {
		out[i] = colorful.Hsv(360*float64(i)/float64(n), 1, 1)
	}
	return out, nil
}

// interpolate spreads n colors evenly across the stops in Lab space.
func interpolate(stops []colorful.Color, n int) []colorful.Color {
	out := make([]colorful.Color, n)
	segs := float64(len(stops) - 1)
	for i := range out {
		pos := float64(i) / float64(n-1) * segs
		k := int(pos)
		if k >= len(stops)-1 {
			out[i] = stops[len(stops)-1]
			continue
		}
		out[i] = stops[k].BlendLab(stops[k+1], pos-float64(k)).Clamped()
	}
	return out
}

func parseHexes(hexes []string) ([]colorful.Color, error) {
	out := make([]colorful.Color, len(hexes))
	for i, h := range hexes {
		c, err := colorful.Hex("#" + h)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

func toNRGBA(c colorful.Color) color.NRGBA {
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}
}

var namedColors = map[string]color.NRGBA{
	"black":       {0, 0, 0, 0xff},
	"white":       {0xff, 0xff, 0xff, 0xff},
	"red":         {0xff, 0, 0, 0xff},
	"green":       {0, 0x80, 0, 0xff},
	"blue":        {0, 0, 0xff, 0xff},
	"yellow":      {0xff, 0xff, 0, 0xff},
	"gray":        {0x80, 0x80, 0x80, 0xff},
	"grey":        {0x80, 0x80, 0x80, 0xff},
	"transparent": {},
}

// ParseColor accepts "#rgb", "#rrggbb", "#rrggbbaa" or a basic color name.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if c, ok := namedColors[s]; ok {
		return c, nil
	}
	if strings.HasPrefix(s, "#") && len(s) == 9 {
		c, err := colorful.Hex(s[:7])
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("style: color %q: %w", s, err)
		}
		var a uint8
		if _, err := fmt.Sscanf(s[7:], "%02x", &a); err != nil {
			return color.NRGBA{}, fmt.Errorf("style: color %q: %w", s, err)
		}
		out := toNRGBA(c)
		out.A = a
		return out, nil
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("style: color %q: %w", s, err)
	}
	return toNRGBA(c), nil
}

// HexString formats c as "#rrggbb".
func HexString(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
