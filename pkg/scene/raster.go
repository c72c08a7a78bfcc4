package scene

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"

	"github.com/gogpu/gg"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/vec"
)

// ErrUnsupportedFormat is returned by Encode for formats other than png and jpeg.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Format is an export image encoding
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
)

// ParseFormat accepts png, jpeg and jpg in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "png":
		return FormatPNG, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	}
	return "", fmt.Errorf("scene: %q: %w", s, ErrUnsupportedFormat)
}

// JPEGQuality is the quality used for JPEG export.
const JPEGQuality = 92

// minTextSize is the smallest font size, in device pixels, that is drawn
const minTextSize = 2

// Surface is a software render target for a scene tree
type Surface struct {
	dc         *gg.Context
	width      int
	height     int
	background color.NRGBA
	fonts      *Fonts
	closed     bool
}

// NewSurface allocates a width x height surface cleared to background. A
// fully transparent background leaves the surface transparent.
func NewSurface(width, height int, background color.NRGBA, fonts *Fonts) (*Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("scene: surface size %dx%d", width, height)
	}
	return &Surface{
		dc:         gg.NewContext(width, height),
		width:      width,
		height:     height,
		background: background,
		fonts:      fonts,
	}, nil
}

// Size returns the surface dimensions.
func (s *Surface) Size() (int, int) { return s.width, s.height }

// Closed reports whether Close has been called.
func (s *Surface) Closed() bool { return s.closed }

// Close releases the surface. It is safe to call more than once.
func (s *Surface) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.dc.Close()
}

// Image returns the current pixels.
func (s *Surface) Image() image.Image {
	return s.dc.Image()
}

// Render clears the surface and paints root through the view matrix, which
// maps canvas coordinates to surface pixels.
func (s *Surface) Render(root *Node, view matrix.Matrix) error {
	if s.closed {
		return errors.New("scene: render on closed surface")
	}
	s.dc.ClearWithColor(gg.FromColor(s.background))
	if root == nil {
		return nil
	}
	r := renderer{dc: s.dc, view: view, zoom: viewScale(view), fonts: s.fonts}
	return r.draw(root, 0, 0)
}

// Encode writes the surface in the given format.
func (s *Surface) Encode(w io.Writer, format Format) error {
	switch format {
	case FormatPNG:
		return s.dc.EncodePNG(w)
	case FormatJPEG:
		return s.dc.EncodeJPEG(w, JPEGQuality)
	}
	return fmt.Errorf("scene: %q: %w", format, ErrUnsupportedFormat)
}

// viewScale returns the uniform scale of an axis-aligned view matrix.
func viewScale(m matrix.Matrix) float64 {
	if m[0] < 0 {
		return -m[0]
	}
	return m[0]
}

type renderer struct {
	dc    *gg.Context
	view  matrix.Matrix
	zoom  float64
	fonts *Fonts
}

func (r *renderer) point(x, y float64) vec.Vec2 {
	m := r.view
	return vec.Vec2{X: m[0]*x + m[2]*y + m[4], Y: m[1]*x + m[3]*y + m[5]}
}

func (r *renderer) draw(n *Node, ox, oy float64) error {
	x, y := ox+n.X, oy+n.Y
	var err error
	switch n.Kind {
	case KindRect:
		err = r.drawRect(n, x, y)
	case KindPolygon:
		err = r.drawPolygon(n, x, y)
	case KindLine:
		err = r.drawLine(n, x, y)
	case KindText:
		r.drawText(n, x, y)
	}
	if err != nil {
		return err
	}
	for _, c := range n.children {
		if err := r.draw(c, x, y); err != nil {
			return err
		}
	}
	return nil
}

func (r *renderer) drawRect(n *Node, x, y float64) error {
	p0 := r.point(x+n.Rect.X, y+n.Rect.Y)
	p1 := r.point(x+n.Rect.X+n.Rect.Width, y+n.Rect.Y+n.Rect.Height)
	rx, ry := min(p0.X, p1.X), min(p0.Y, p1.Y)
	rw, rh := max(p0.X, p1.X)-rx, max(p0.Y, p1.Y)-ry

	if r.setFill(n.Paint) {
		r.dc.DrawRectangle(rx, ry, rw, rh)
		if err := r.dc.Fill(); err != nil {
			return fmt.Errorf("scene: fill rect: %w", err)
		}
	}
	if r.setStroke(n.Paint) {
		r.dc.DrawRectangle(rx, ry, rw, rh)
		if err := r.dc.Stroke(); err != nil {
			return fmt.Errorf("scene: stroke rect: %w", err)
		}
	}
	return nil
}

func (r *renderer) tracePath(path []vec.Vec2, x, y float64, closed bool) {
	for i, v := range path {
		p := r.point(x+v.X, y+v.Y)
		if i == 0 {
			r.dc.MoveTo(p.X, p.Y)
		} else {
			r.dc.LineTo(p.X, p.Y)
		}
	}
	if closed {
		r.dc.ClosePath()
	}
}

func (r *renderer) drawPolygon(n *Node, x, y float64) error {
	if len(n.Path) < 3 {
		return nil
	}
	if r.setFill(n.Paint) {
		r.tracePath(n.Path, x, y, true)
		if err := r.dc.Fill(); err != nil {
			return fmt.Errorf("scene: fill polygon: %w", err)
		}
	}
	if r.setStroke(n.Paint) {
		r.tracePath(n.Path, x, y, true)
		if err := r.dc.Stroke(); err != nil {
			return fmt.Errorf("scene: stroke polygon: %w", err)
		}
	}
	return nil
}

func (r *renderer) drawLine(n *Node, x, y float64) error {
	if len(n.Path) < 2 || !r.setStroke(n.Paint) {
		return nil
	}
	r.tracePath(n.Path, x, y, false)
	if err := r.dc.Stroke(); err != nil {
		return fmt.Errorf("scene: stroke line: %w", err)
	}
	return nil
}

func (r *renderer) drawText(n *Node, x, y float64) {
	size := n.Label.Size * r.zoom
	if r.fonts == nil || n.Label.Text == "" || size < minTextSize {
		return
	}
	p := r.point(x, y)
	r.dc.SetFont(r.fonts.Face(size))
	r.dc.SetColor(n.Label.Color)
	r.dc.DrawStringAnchored(n.Label.Text, p.X, p.Y, n.Label.AnchorX, n.Label.AnchorY)
}

// setFill installs the node's fill and reports whether there is one.
func (r *renderer) setFill(p Paint) bool {
	alpha := p.Alpha
	if p.Texture != nil && !p.Texture.Released() {
		w, h := p.Texture.Size()
		pattern := r.dc.CreateImagePattern(gg.ImageBufFromImage(p.Texture.Image), 0, 0, w, h)
		if alpha >= 1 {
			r.dc.SetFillPattern(pattern)
			return true
		}
		r.dc.SetFillBrush(gg.NewCustomBrush(func(x, y float64) gg.RGBA {
			c := pattern.ColorAt(x, y)
			c.A *= alpha
			return c
		}))
		return true
	}
	if !p.HasFill || alpha <= 0 {
		return false
	}
	r.dc.SetRGBA(
		float64(p.Fill.R)/0xff,
		float64(p.Fill.G)/0xff,
		float64(p.Fill.B)/0xff,
		float64(p.Fill.A)/0xff*alpha,
	)
	return true
}

// setStroke installs the node's stroke and reports whether there is one.
func (r *renderer) setStroke(p Paint) bool {
	if p.StrokeWidth <= 0 || p.Stroke.A == 0 {
		return false
	}
	r.dc.SetColor(p.Stroke)
	r.dc.SetLineWidth(p.StrokeWidth * r.zoom)
	return true
}
