package viewer

import (
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/vec"

	"github.com/OpenTraceLab/edaview/pkg/geometry"
)

const (
	minZoom = 0.1
	maxZoom = 1000.0
)

// Camera maps canvas coordinates, as produced by the scene builders, to
// surface pixels. At zoom 1 with no pan the two coincide.
type Camera struct {
	// Zoom is surface pixels per canvas pixel
	Zoom float64

	// Pan is the surface position of the canvas origin
	PanX float64
	PanY float64

	ScreenWidth  int
	ScreenHeight int
}

// NewCamera returns a camera showing the whole canvas.
func NewCamera(screenWidth, screenHeight int) *Camera {
	return &Camera{Zoom: 1, ScreenWidth: screenWidth, ScreenHeight: screenHeight}
}

// Matrix returns the canvas to surface transform.
func (c *Camera) Matrix() matrix.Matrix {
	return matrix.Matrix{c.Zoom, 0, 0, c.Zoom, c.PanX, c.PanY}
}

// WorldToScreen converts canvas coordinates to surface pixels.
func (c *Camera) WorldToScreen(x, y float64) vec.Vec2 {
	return vec.Vec2{X: x*c.Zoom + c.PanX, Y: y*c.Zoom + c.PanY}
}

// ScreenToWorld converts surface pixels to canvas coordinates.
func (c *Camera) ScreenToWorld(x, y float64) vec.Vec2 {
	return vec.Vec2{X: (x - c.PanX) / c.Zoom, Y: (y - c.PanY) / c.Zoom}
}

// Pan moves the view by surface pixel offsets.
func (c *Camera) Pan(dx, dy float64) {
	c.PanX += dx
	c.PanY += dy
}

// ZoomAt scales by factor keeping the canvas point under (x, y) stationary.
// factor > 1 zooms in. The zoom is clamped to [0.1, 1000].
func (c *Camera) ZoomAt(x, y, factor float64) {
	world := c.ScreenToWorld(x, y)

	c.Zoom *= factor
	if c.Zoom < minZoom {
		c.Zoom = minZoom
	}
	if c.Zoom > maxZoom {
		c.Zoom = maxZoom
	}

	c.PanX = x - world.X*c.Zoom
	c.PanY = y - world.Y*c.Zoom
}

// ZoomCentered scales about the middle of the surface.
func (c *Camera) ZoomCentered(factor float64) {
	c.ZoomAt(float64(c.ScreenWidth)/2, float64(c.ScreenHeight)/2, factor)
}

// Fit restores zoom 1 with the canvas origin at the surface origin.
func (c *Camera) Fit() {
	c.Zoom = 1
	c.PanX, c.PanY = 0, 0
}

// UpdateScreenSize updates the camera when the surface is resized.
func (c *Camera) UpdateScreenSize(width, height int) {
	c.ScreenWidth = width
	c.ScreenHeight = height
}

// VisibleBounds returns the canvas area currently on screen.
func (c *Camera) VisibleBounds() geometry.ScreenRect {
	tl := c.ScreenToWorld(0, 0)
	br := c.ScreenToWorld(float64(c.ScreenWidth), float64(c.ScreenHeight))
	return geometry.ScreenRect{X: tl.X, Y: tl.Y, Width: br.X - tl.X, Height: br.Y - tl.Y}
}
