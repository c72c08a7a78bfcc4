package geometry

import (
	"errors"
	"fmt"

	"github.com/OpenTraceLab/edaview/pkg/design"
)

// ErrDegenerateDie is returned when the die or canvas has no usable extent.
var ErrDegenerateDie = errors.New("degenerate die area")

// ScreenRect is a rectangle in canvas pixels with a Y-down origin at the top left
type ScreenRect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Center returns the midpoint of r.
func (r ScreenRect) Center() (float64, float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Contains reports whether (x, y) lies inside r, edges included.
func (r ScreenRect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height
}

// ScreenConfig maps design units onto a canvas. Design space is Y-up, the
// canvas is Y-down.
type ScreenConfig struct {
	Width   float64 // canvas width in pixels
	Height  float64 // canvas height in pixels
	Margin  float64 // inset on every side, normally the chip stroke width
	ScaleX  float64
	ScaleY  float64
	OffsetX float64
	OffsetY float64
}

// NewScreenConfig derives the scale factors and origin offsets that fit die
// into a width x height canvas inset by margin.
func NewScreenConfig(die design.Rect, width, height, margin float64) (ScreenConfig, error) {
	dw, dh := die.Width(), die.Height()
	if dw <= 0 || dh <= 0 {
		return ScreenConfig{}, fmt.Errorf("geometry: die %dx%d: %w", dw, dh, ErrDegenerateDie)
	}
	if width-2*margin <= 0 || height-2*margin <= 0 {
		return ScreenConfig{}, fmt.Errorf("geometry: canvas %gx%g with margin %g: %w", width, height, margin, ErrDegenerateDie)
	}

	sx := (width - margin*2) / float64(dw)
	sy := (height - margin*2) / float64(dh)
	return ScreenConfig{
		Width:   width,
		Height:  height,
		Margin:  margin,
		ScaleX:  sx,
		ScaleY:  sy,
		OffsetX: -float64(die.XMin)*sx + margin,
		OffsetY: float64(die.YMin)*sy - margin,
	}, nil
}

// ToScreenRect maps a design rect into canvas space.
func (c ScreenConfig) ToScreenRect(r design.Rect) ScreenRect {
	return ScreenRect{
		X:      float64(r.XMin)*c.ScaleX + c.OffsetX,
		Y:      c.Height - float64(r.YMax)*c.ScaleY + c.OffsetY,
		Width:  float64(r.XMax-r.XMin) * c.ScaleX,
		Height: float64(r.YMax-r.YMin) * c.ScaleY,
	}
}

// ToScreenPoint maps a design point into canvas space.
func (c ScreenConfig) ToScreenPoint(p design.Point) (float64, float64) {
	return float64(p.X)*c.ScaleX + c.OffsetX, c.Height - float64(p.Y)*c.ScaleY + c.OffsetY
}

// ToDesignPoint maps a canvas point back into design units, rounding to the nearest unit.
func (c ScreenConfig) ToDesignPoint(x, y float64) design.Point {
	dx := (x - c.OffsetX) / c.ScaleX
	dy := (c.Height + c.OffsetY - y) / c.ScaleY
	return design.Point{X: round(dx), Y: round(dy)}
}

func round(v float64) int {
	if v < 0 {
		return -int(-v + 0.5)
	}
	return int(v + 0.5)
}
