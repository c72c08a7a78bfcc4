package viewer

import (
	"math"

	"seehuhn.de/go/geom/vec"

	"github.com/OpenTraceLab/edaview/pkg/design"
	"github.com/OpenTraceLab/edaview/pkg/geometry"
	"github.com/OpenTraceLab/edaview/pkg/scene"
)

// Side is the chip edge a port sits nearest to
type Side int

const (
	SideLeft Side = iota
	SideRight
	SideTop
	SideBottom
)

func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	case SideTop:
		return "top"
	case SideBottom:
		return "bottom"
	}
	return "unknown"
}

// NearestSide picks the canvas edge closest to r, measuring each edge from
// the side of r that faces it. Ties resolve in the order left, right, top,
// bottom.
func NearestSide(r geometry.ScreenRect, width, height float64) Side {
	side, best := SideLeft, math.Abs(r.X)
	if d := math.Abs(width - (r.X + r.Width)); d < best {
		side, best = SideRight, d
	}
	if d := math.Abs(r.Y); d < best {
		side, best = SideTop, d
	}
	if d := math.Abs(height - (r.Y + r.Height)); d < best {
		side = SideBottom
	}
	return side
}

// arrow returns a triangle on the edge of r facing dir, extending ext beyond it.
func arrow(r geometry.ScreenRect, dir Side, ext float64) []vec.Vec2 {
	x, y, w, h := r.X, r.Y, r.Width, r.Height
	switch dir {
	case SideLeft:
		return []vec.Vec2{{X: x, Y: y}, {X: x - ext, Y: y + h/2}, {X: x, Y: y + h}}
	case SideRight:
		return []vec.Vec2{{X: x + w, Y: y}, {X: x + w + ext, Y: y + h/2}, {X: x + w, Y: y + h}}
	case SideTop:
		return []vec.Vec2{{X: x, Y: y}, {X: x + w/2, Y: y - ext}, {X: x + w, Y: y}}
	default:
		return []vec.Vec2{{X: x, Y: y + h}, {X: x + w/2, Y: y + h + ext}, {X: x + w, Y: y + h}}
	}
}

func opposite(s Side) Side {
	switch s {
	case SideLeft:
		return SideRight
	case SideRight:
		return SideLeft
	case SideTop:
		return SideBottom
	}
	return SideTop
}

// indicatorDirections returns the directions of the port's indicator
// triangles: away from the core for inputs, toward it for outputs, both for
// bidirectional ports and none for feedthroughs.
func indicatorDirections(dir design.IoType, side Side) []Side {
	switch dir {
	case design.IoInput:
		return []Side{side}
	case design.IoOutput:
		return []Side{opposite(side)}
	case design.IoInOut:
		return []Side{side, opposite(side)}
	}
	return nil
}

func (b *builder) ports() *scene.Node {
	group := scene.NewGroup(GroupPorts.String())
	showSpecial := b.vis.Visible(SpecialWires)
	showPorts := b.vis.Visible(Ports)
	st := b.settings.Shapes.Port
	paint := scene.Paint{
		Fill:        b.paints.portFill,
		HasFill:     true,
		Alpha:       st.Opacity,
		Stroke:      b.paints.portStroke,
		StrokeWidth: st.StrokeWidth,
	}

	for i := range b.design.BlockPins {
		port := &b.design.BlockPins[i]
		if (port.IsSpecial && !showSpecial) || (!port.IsSpecial && !showPorts) {
			continue
		}
		entity := Entity{Kind: EntityPort, Port: port}

		for _, ref := range port.Geometries {
			g, err := b.index.Geometry(ref.ID)
			if err != nil {
				b.skip(GroupPorts, ref.ID, err)
				continue
			}
			for _, box := range g.Boxes {
				r := b.screen.ToScreenRect(box)
				n := scene.NewRect(r, paint)
				n.Name = port.Name
				n.Data = entity
				n.Handler = b.handler(entity)

				if !b.settings.DisablePortIndicators {
					side := NearestSide(r, b.screen.Width, b.screen.Height)
					for _, dir := range indicatorDirections(port.Direction, side) {
						tri := scene.NewPolygon(arrow(r, dir, b.settings.PortIndicatorExtension), paint)
						tri.Data = entity
						tri.Handler = n.Handler
						n.AddChild(tri)
					}
				}
				group.AddChild(n)
			}
		}
	}
	return group
}
