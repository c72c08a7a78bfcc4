package style

import (
	"image"
	"image/color"
	"sync"
)

// PatternStyle selects the fill pattern of a layer
type PatternStyle int

const (
	LeftDiagonal  PatternStyle = iota // -45 degree hatch
	RightDiagonal                     // +45 degree hatch
	Horizontal
	Vertical
	Checkerboard // 3x3 squares, center square in the foreground color
)

func (s PatternStyle) String() string {
	switch s {
	case LeftDiagonal:
		return "left-diagonal"
	case RightDiagonal:
		return "right-diagonal"
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	case Checkerboard:
		return "checkerboard"
	}
	return "unknown"
}

// DefaultBackground is the alternate color of every hatch pattern.
var DefaultBackground = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// TextureKey identifies a generated pattern. Equal keys produce identical tiles.
type TextureKey struct {
	Color      color.NRGBA
	Background color.NRGBA
	Thickness  int // line thickness, or square side for Checkerboard
	Style      PatternStyle
	Simple     bool // flat single-color fill
}

// Texture is a tileable pattern image owned by the shapes that reference it.
type Texture struct {
	Key   TextureKey
	Image *image.NRGBA

	cache *TextureCache
	refs  int
}

// Size returns the tile dimensions, or 0, 0 once released.
func (t *Texture) Size() (int, int) {
	if t == nil || t.Image == nil {
		return 0, 0
	}
	b := t.Image.Bounds()
	return b.Dx(), b.Dy()
}

// Released reports whether the pixel data has been freed.
func (t *Texture) Released() bool {
	return t.Image == nil
}

// Release drops one reference. Pixel data is freed when the last reference is gone.
func (t *Texture) Release() {
	if t == nil {
		return
	}
	if t.cache != nil {
		t.cache.release(t)
		return
	}
	t.Image = nil
}

// GenerateTexture synthesizes the tile for key. It has no side effects.
func GenerateTexture(key TextureKey) *Texture {
	return &Texture{Key: key, Image: generateTile(key)}
}

func generateTile(key TextureKey) *image.NRGBA {
	if key.Simple {
		img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
		img.SetNRGBA(0, 0, key.Color)
		return img
	}

	t := key.Thickness
	if t < 1 {
		t = 1
	}

	var size int
	var fg func(x, y int) bool
	switch key.Style {
	case Checkerboard:
		size = 3 * t
		fg = func(x, y int) bool { return x/t == 1 && y/t == 1 }
	case Horizontal:
		size = 2 * t
		fg = func(x, y int) bool { return y%size < t }
	case Vertical:
		size = 2 * t
		fg = func(x, y int) bool { return x%size < t }
	case RightDiagonal:
		size = 2 * t
		fg = func(x, y int) bool { return (x-y+size)%size < t }
	default:
		size = 2 * t
		fg = func(x, y int) bool { return (x+y)%size < t }
	}

	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if fg(x, y) {
				img.SetNRGBA(x, y, key.Color)
			} else {
				img.SetNRGBA(x, y, key.Background)
			}
		}
	}
	return img
}

// TextureCache shares textures between shapes with equal keys and frees each
// one when its last holder releases it.
type TextureCache struct {
	mu       sync.Mutex
	textures map[TextureKey]*Texture
}

// NewTextureCache returns an empty cache.
func NewTextureCache() *TextureCache {
	return &TextureCache{textures: make(map[TextureKey]*Texture)}
}

// Get returns the texture for key, generating it on first use. Every call
// must be paired with a Release.
func (c *TextureCache) Get(key TextureKey) *Texture {
	c.mu.Lock()
	defer c.mu.Unlock()

	tex, ok := c.textures[key]
	if !ok {
		tex = GenerateTexture(key)
		tex.cache = c
		c.textures[key] = tex
	}
	tex.refs++
	return tex
}

// Len returns the number of live textures.
func (c *TextureCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.textures)
}

func (c *TextureCache) release(t *Texture) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t.refs == 0 {
		return
	}
	t.refs--
	if t.refs == 0 {
		delete(c.textures, t.Key)
		t.Image = nil
	}
}
