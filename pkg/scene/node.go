package scene

import (
	"image/color"

	"seehuhn.de/go/geom/vec"

	"github.com/OpenTraceLab/edaview/pkg/geometry"
	"github.com/OpenTraceLab/edaview/pkg/style"
)

// Kind is the primitive a node draws
type Kind int

const (
	KindGroup Kind = iota
	KindRect
	KindPolygon
	KindLine
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindRect:
		return "rect"
	case KindPolygon:
		return "polygon"
	case KindLine:
		return "line"
	case KindText:
		return "text"
	}
	return "unknown"
}

// Paint describes how a node is filled and stroked
type Paint struct {
	Fill        color.NRGBA
	HasFill     bool
	Texture     *style.Texture // takes precedence over Fill
	Alpha       float64        // fill opacity in [0, 1]
	Stroke      color.NRGBA
	StrokeWidth float64 // 0 disables the stroke
}

// Label is the text content of a KindText node
type Label struct {
	Text     string
	Size     float64
	Color    color.NRGBA
	AnchorX  float64
	AnchorY  float64
	Measured float64 // width in pixels at Size
}

// Node is an element of the retained scene tree. Coordinates are canvas
// pixels relative to the parent's position.
type Node struct {
	Name  string
	Kind  Kind
	X, Y  float64
	Rect  geometry.ScreenRect // KindRect
	Path  []vec.Vec2          // KindPolygon vertices, or KindLine endpoints
	Paint Paint
	Label Label
	Data  any // entity the node was built from

	Handler *Handler

	children  []*Node
	parent    *Node
	destroyed bool
}

// NewGroup returns an empty group node.
func NewGroup(name string) *Node {
	return &Node{Name: name, Kind: KindGroup}
}

// NewRect returns a rectangle node.
func NewRect(r geometry.ScreenRect, p Paint) *Node {
	return &Node{Kind: KindRect, Rect: r, Paint: p}
}

// NewPolygon returns a closed polygon node.
func NewPolygon(points []vec.Vec2, p Paint) *Node {
	return &Node{Kind: KindPolygon, Path: points, Paint: p}
}

// NewLine returns a straight line node.
func NewLine(x0, y0, x1, y1 float64, c color.NRGBA, width float64) *Node {
	return &Node{
		Kind:  KindLine,
		Path:  []vec.Vec2{{X: x0, Y: y0}, {X: x1, Y: y1}},
		Paint: Paint{Stroke: c, StrokeWidth: width},
	}
}

// NewText returns a text node anchored at (x, y).
func NewText(x, y float64, l Label) *Node {
	return &Node{Kind: KindText, X: x, Y: y, Label: l}
}

// AddChild appends child, detaching it from any previous parent.
func (n *Node) AddChild(child *Node) {
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}
	child.parent = n
	n.children = append(n.children, child)
}

// RemoveChild detaches child from n. It is a no-op if child is not a child of n.
func (n *Node) RemoveChild(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

// Detach removes n from its parent.
func (n *Node) Detach() {
	if n.parent != nil {
		n.parent.RemoveChild(n)
	}
}

// Children returns the node's children in paint order.
func (n *Node) Children() []*Node { return n.children }

// Parent returns the node's parent, or nil.
func (n *Node) Parent() *Node { return n.parent }

// Destroyed reports whether Destroy has been called.
func (n *Node) Destroyed() bool { return n.destroyed }

// Destroy detaches n and recursively releases it, its children, their
// textures and any pending click timers.
func (n *Node) Destroy() {
	n.Detach()
	n.destroy()
}

func (n *Node) destroy() {
	if n.destroyed {
		return
	}
	for _, c := range n.children {
		c.parent = nil
		c.destroy()
	}
	n.children = nil
	if n.Paint.Texture != nil {
		n.Paint.Texture.Release()
		n.Paint.Texture = nil
	}
	if n.Handler != nil {
		n.Handler.Cancel()
	}
	n.destroyed = true
}

// Walk visits n and its descendants depth-first in paint order. Returning
// false from fn skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(fn)
	}
}

// Count returns the number of nodes of kind k in the subtree.
func (n *Node) Count(k Kind) int {
	total := 0
	n.Walk(func(c *Node) bool {
		if c.Kind == k {
			total++
		}
		return true
	})
	return total
}

// Offset returns the absolute position of n's local origin.
func (n *Node) Offset() (float64, float64) {
	var x, y float64
	for p := n; p != nil; p = p.parent {
		x += p.X
		y += p.Y
	}
	return x, y
}

// Bounds returns the absolute bounding box of n's own geometry.
func (n *Node) Bounds() geometry.ScreenRect {
	ox, oy := n.Offset()
	switch n.Kind {
	case KindRect:
		r := n.Rect
		r.X += ox
		r.Y += oy
		return r
	case KindPolygon, KindLine:
		if len(n.Path) == 0 {
			return geometry.ScreenRect{X: ox, Y: oy}
		}
		minX, minY := n.Path[0].X, n.Path[0].Y
		maxX, maxY := minX, minY
		for _, p := range n.Path[1:] {
			minX, maxX = min(minX, p.X), max(maxX, p.X)
			minY, maxY = min(minY, p.Y), max(maxY, p.Y)
		}
		return geometry.ScreenRect{X: minX + ox, Y: minY + oy, Width: maxX - minX, Height: maxY - minY}
	}
	return geometry.ScreenRect{X: ox, Y: oy}
}

// Contains reports whether the absolute point (x, y) is inside n's own geometry.
func (n *Node) Contains(x, y float64) bool {
	switch n.Kind {
	case KindRect:
		return n.Bounds().Contains(x, y)
	case KindPolygon:
		ox, oy := n.Offset()
		return pointInPolygon(n.Path, vec.Vec2{X: x - ox, Y: y - oy})
	}
	return false
}

// pointInPolygon uses the even-odd rule.
func pointInPolygon(poly []vec.Vec2, p vec.Vec2) bool {
	inside := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) && p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}
