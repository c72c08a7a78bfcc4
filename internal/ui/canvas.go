package ui

import (
	"image"
	"time"

	"gioui.org/app"
	"gioui.org/f32"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	xdraw "golang.org/x/image/draw"

	"github.com/OpenTraceLab/edaview/pkg/scene"
)

// dragSlop is how far, in pixels, the pointer may move between press and
// release and still count as a click
const dragSlop = 4

// invalidatingClock redraws the window whenever a click window expires.
type invalidatingClock struct {
	clock  scene.Clock
	window *app.Window
}

func (c invalidatingClock) AfterFunc(d time.Duration, f func()) scene.Timer {
	return c.clock.AfterFunc(d, func() {
		f()
		c.window.Invalidate()
	})
}

// pointerTracker tells clicks from drags.
type pointerTracker struct {
	pressed bool
	dragged bool
	start   f32.Point
	last    f32.Point
}

func (p *pointerTracker) press(pos f32.Point) {
	p.pressed = true
	p.dragged = false
	p.start, p.last = pos, pos
}

// drag returns the movement since the previous event.
func (p *pointerTracker) drag(pos f32.Point) f32.Point {
	if !p.pressed {
		return f32.Point{}
	}
	delta := pos.Sub(p.last)
	p.last = pos
	if d := pos.Sub(p.start); d.X*d.X+d.Y*d.Y > dragSlop*dragSlop {
		p.dragged = true
	}
	return delta
}

// release reports whether the press was a click.
func (p *pointerTracker) release(pos f32.Point) bool {
	if !p.pressed {
		return false
	}
	p.drag(pos)
	p.pressed = false
	return !p.dragged
}

// canvas shows the engine's surface and turns pointer and key input into
// viewport operations.
type canvas struct {
	app *App

	size     image.Point
	frame    paint.ImageOp
	hasFrame bool
	redraw   bool

	pointer pointerTracker
}

func newCanvas(a *App) *canvas {
	return &canvas{app: a}
}

func (c *canvas) Layout(gtx layout.Context) layout.Dimensions {
	size := gtx.Constraints.Max
	if size.X <= 0 || size.Y <= 0 {
		return layout.Dimensions{Size: size}
	}
	engine := c.app.engine
	if size != c.size {
		c.size = size
		engine.SetSize(size.X, size.Y)
		c.app.stale = true
	}

	c.handleKeys(gtx)
	c.handlePointer(gtx)
	c.app.reconcile()
	c.render()

	area := clip.Rect{Max: size}.Push(gtx.Ops)
	if c.pointer.dragged {
		pointer.CursorGrabbing.Add(gtx.Ops)
	} else {
		pointer.CursorCrosshair.Add(gtx.Ops)
	}
	event.Op(gtx.Ops, c)
	if c.hasFrame {
		c.frame.Add(gtx.Ops)
		paint.PaintOp{}.Add(gtx.Ops)
	}
	area.Pop()

	return layout.Dimensions{Size: size}
}

// render repaints the surface and snapshots it for Gio. The surface is reused
// between frames, so the image op gets its own copy.
func (c *canvas) render() {
	if !c.redraw {
		return
	}
	c.redraw = false
	engine := c.app.engine
	if err := engine.Render(); err != nil {
		c.hasFrame = false
		return
	}
	src := engine.Surface().Image()
	b := src.Bounds()
	dst := image.NewRGBA(image.Rectangle{Max: b.Size()})
	xdraw.Copy(dst, image.Point{}, src, b, xdraw.Src, nil)
	c.frame = paint.NewImageOp(dst)
	c.hasFrame = true
}

func (c *canvas) handleKeys(gtx layout.Context) {
	engine := c.app.engine
	for {
		ev, ok := gtx.Event(
			key.Filter{Name: "+"},
			key.Filter{Name: "="},
			key.Filter{Name: "-"},
			key.Filter{Name: "F"},
			key.Filter{Name: "R"},
			key.Filter{Name: key.NameLeftArrow},
			key.Filter{Name: key.NameRightArrow},
			key.Filter{Name: key.NameUpArrow},
			key.Filter{Name: key.NameDownArrow},
		)
		if !ok {
			break
		}
		ke, ok := ev.(key.Event)
		if !ok || ke.State != key.Press {
			continue
		}
		step := float64(gtx.Dp(unit.Dp(32)))
		switch ke.Name {
		case "+", "=":
			engine.ZoomIn()
		case "-":
			engine.ZoomOut()
		case "F":
			engine.Fit()
		case "R":
			engine.Reset()
			c.app.stale = true
		case key.NameLeftArrow:
			engine.Pan(step, 0)
		case key.NameRightArrow:
			engine.Pan(-step, 0)
		case key.NameUpArrow:
			engine.Pan(0, step)
		case key.NameDownArrow:
			engine.Pan(0, -step)
		}
		c.redraw = true
	}
}

func (c *canvas) handlePointer(gtx layout.Context) {
	engine := c.app.engine
	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target:  c,
			Kinds:   pointer.Press | pointer.Drag | pointer.Release | pointer.Cancel | pointer.Scroll,
			ScrollY: pointer.ScrollRange{Min: -1 << 16, Max: 1 << 16},
		})
		if !ok {
			break
		}
		pe, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		switch pe.Kind {
		case pointer.Press:
			if pe.Buttons == pointer.ButtonPrimary {
				c.pointer.press(pe.Position)
			}
		case pointer.Drag:
			if d := c.pointer.drag(pe.Position); c.pointer.dragged && d != (f32.Point{}) {
				engine.Pan(float64(d.X), float64(d.Y))
				c.redraw = true
			}
		case pointer.Release:
			if c.pointer.release(pe.Position) {
				engine.Activate(float64(pe.Position.X), float64(pe.Position.Y))
			}
		case pointer.Cancel:
			c.pointer = pointerTracker{}
		case pointer.Scroll:
			if pe.Scroll.Y == 0 {
				continue
			}
			factor := engine.Settings().ScaleStepFactor
			if pe.Scroll.Y > 0 {
				factor = 1 / factor
			}
			engine.ZoomAt(float64(pe.Position.X), float64(pe.Position.Y), factor)
			c.redraw = true
		}
	}
}
