package geometry

import (
	"errors"
	"fmt"

	"github.com/OpenTraceLab/edaview/pkg/design"
)

// ErrInvalidOrientation is returned for orientation values outside the eight defined.
var ErrInvalidOrientation = errors.New("invalid orientation")

// linear is the 2x2 integer part of an orientation: x' = a*x + b*y, y' = c*x + d*y
type linear struct {
	a, b, c, d int
}

func (m linear) apply(p design.Point) design.Point {
	return design.Point{
		X: m.a*p.X + m.b*p.Y,
		Y: m.c*p.X + m.d*p.Y,
	}
}

// then returns the transform that applies m followed by n.
func (m linear) then(n linear) linear {
	return linear{
		a: n.a*m.a + n.b*m.c,
		b: n.a*m.b + n.b*m.d,
		c: n.c*m.a + n.d*m.c,
		d: n.c*m.b + n.d*m.d,
	}
}

// Mirror variants apply the mirror first, then the rotation.
var orientations = [...]linear{
	design.OrientationR0:    {1, 0, 0, 1},
	design.OrientationR90:   {0, -1, 1, 0},
	design.OrientationR180:  {-1, 0, 0, -1},
	design.OrientationR270:  {0, 1, -1, 0},
	design.OrientationMY:    {-1, 0, 0, 1},
	design.OrientationMYR90: {0, -1, -1, 0},
	design.OrientationMX:    {1, 0, 0, -1},
	design.OrientationMXR90: {0, 1, 1, 0},
}

func lookup(o design.Orientation) (linear, error) {
	if !o.Valid() {
		return linear{}, fmt.Errorf("geometry: orientation %d: %w", int(o), ErrInvalidOrientation)
	}
	return orientations[o], nil
}

func fromLinear(m linear) design.Orientation {
	for o, l := range orientations {
		if l == m {
			return design.Orientation(o)
		}
	}
	// unreachable: the eight matrices are closed under composition
	return design.OrientationR0
}

// TransformPoint applies orientation o to p about the local origin, then
// translates by origin.
func TransformPoint(p design.Point, o design.Orientation, origin design.Point) (design.Point, error) {
	m, err := lookup(o)
	if err != nil {
		return design.Point{}, err
	}
	q := m.apply(p)
	q.X += origin.X
	q.Y += origin.Y
	return q, nil
}

// TransformRect transforms both corners of r and re-normalizes the result.
// The layer and via references of r are preserved.
func TransformRect(r design.Rect, o design.Orientation, origin design.Point) (design.Rect, error) {
	ll, err := TransformPoint(design.Point{X: r.XMin, Y: r.YMin}, o, origin)
	if err != nil {
		return design.Rect{}, err
	}
	ur, err := TransformPoint(design.Point{X: r.XMax, Y: r.YMax}, o, origin)
	if err != nil {
		return design.Rect{}, err
	}
	out := r
	out.XMin, out.YMin = ll.X, ll.Y
	out.XMax, out.YMax = ur.X, ur.Y
	return out.Normalized(), nil
}

// Inverse returns the orientation that undoes o.
func Inverse(o design.Orientation) (design.Orientation, error) {
	m, err := lookup(o)
	if err != nil {
		return 0, err
	}
	// the inverse of an orthogonal matrix is its transpose
	return fromLinear(linear{a: m.a, b: m.c, c: m.b, d: m.d}), nil
}

// Compose returns the orientation equivalent to applying first, then second.
func Compose(first, second design.Orientation) (design.Orientation, error) {
	a, err := lookup(first)
	if err != nil {
		return 0, err
	}
	b, err := lookup(second)
	if err != nil {
		return 0, err
	}
	return fromLinear(a.then(b)), nil
}
