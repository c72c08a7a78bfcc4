package scene

import (
	"fmt"
	"math"
	"sync"

	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"
)

// Measurer reports the rendered width of a string at a font size in pixels.
type Measurer interface {
	Measure(s string, size float64) float64
}

// Fonts caches faces of the bundled Go Regular font by size
type Fonts struct {
	source *text.FontSource

	mu    sync.Mutex
	faces map[float64]text.Face
}

var (
	defaultFonts    *Fonts
	defaultFontsErr error
	defaultOnce     sync.Once
)

// DefaultFonts returns the shared Go Regular font set.
func DefaultFonts() (*Fonts, error) {
	defaultOnce.Do(func() {
		src, err := text.NewFontSource(goregular.TTF)
		if err != nil {
			defaultFontsErr = fmt.Errorf("scene: load font: %w", err)
			return
		}
		defaultFonts = &Fonts{source: src, faces: make(map[float64]text.Face)}
	})
	return defaultFonts, defaultFontsErr
}

// maxFaces bounds the face cache; zooming produces a new size per step
const maxFaces = 64

// faceSize rounds size to the nearest half point.
func faceSize(size float64) float64 {
	return math.Round(size*2) / 2
}

// Face returns the face at size, rounded to half a point, creating it on
// first use. The cache is dropped once it holds maxFaces faces.
func (f *Fonts) Face(size float64) text.Face {
	size = faceSize(size)
	f.mu.Lock()
	defer f.mu.Unlock()
	face, ok := f.faces[size]
	if !ok {
		if len(f.faces) >= maxFaces {
			clear(f.faces)
		}
		face = f.source.Face(size)
		f.faces[size] = face
	}
	return face
}

// cached returns the number of faces held.
func (f *Fonts) cached() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.faces)
}

// Measure implements Measurer.
func (f *Fonts) Measure(s string, size float64) float64 {
	w, _ := text.Measure(s, f.Face(size))
	return w
}

const ellipsis = "..."

// Ellipsize shortens name with a leading ellipsis until its width plus
// padding fits maxWidth. Trimming stops once the whole name is gone, so the
// result may still overflow a very narrow box.
func Ellipsize(name string, maxWidth, padding, size float64, m Measurer) string {
	if m.Measure(name, size)+padding <= maxWidth {
		return name
	}
	runes := []rune(name)
	label := ellipsis + name
	for trim := 1; m.Measure(label, size)+padding > maxWidth; trim++ {
		if trim > len(runes) {
			break
		}
		label = ellipsis + string(runes[trim:])
	}
	return label
}
