package ui

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"gioui.org/app"
	gfont "gioui.org/font"
	"gioui.org/font/gofont"
	"gioui.org/gesture"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"gioui.org/x/explorer"
	"github.com/oligo/gioview/theme"

	"github.com/OpenTraceLab/edaview/pkg/design"
	"github.com/OpenTraceLab/edaview/pkg/scene"
	"github.com/OpenTraceLab/edaview/pkg/settings"
	"github.com/OpenTraceLab/edaview/pkg/viewer"
)

// App is the viewer window.
type App struct {
	window *app.Window
	ops    op.Ops

	gvTheme  *theme.Theme
	darkMode bool

	state        *AppState
	engine       *viewer.Engine
	settingsPath string
	explorer     *explorer.Explorer

	// work posted by background goroutines, run on the event loop
	pending chan func()

	// stale forces a reconcile on the next frame
	stale bool

	canvas    *canvas
	toolbar   toolbar
	layers    layerPanel
	inspector inspectorPanel

	logSelectable widget.Selectable
	logList       widget.List
	logPaneHeight float32
	logSplitter   gesture.Drag
	logSplitDrag  bool
	logSplitLastY float32

	monoShaper *text.Shaper
}

// New creates the viewer window for cfg.
func New(w *app.Window, cfg Config) *App {
	if w == nil {
		w = new(app.Window)
	}
	w.Option(app.Title("edaview"), app.Size(unit.Dp(1360), unit.Dp(860)))

	s := cfg.Settings
	if s == nil {
		s = settings.Default()
	}

	a := &App{
		window:       w,
		gvTheme:      theme.NewTheme("", nil, true),
		state:        NewState(),
		settingsPath: cfg.SettingsPath,
		explorer:     explorer.NewExplorer(w),
		pending:      make(chan func(), 16),
		stale:        true,
	}
	a.state.SetAppVersion(cfg.Version)
	a.state.SetOnChange(a.invalidate)

	a.engine = viewer.NewEngine(cfg.Design, cfg.Visibility, s, 1, 1, viewer.Options{
		Host:      a.state,
		Selection: a.state,
		Clock:     invalidatingClock{clock: scene.SystemClock, window: w},
	})
	a.canvas = newCanvas(a)
	a.toolbar = newToolbar(a)
	a.layers = newLayerPanel()
	a.inspector = newInspectorPanel()

	if monoFaces := filterMonoFaces(); len(monoFaces) > 0 {
		a.monoShaper = text.NewShaper(text.WithCollection(monoFaces), text.NoSystemFonts())
	}
	a.logSelectable.WrapPolicy = text.WrapGraphemes
	a.logList.Axis = layout.Vertical
	a.logList.ScrollToEnd = true

	a.applyPalette()
	if cfg.Design != nil {
		a.showDesign(cfg.Design)
	}
	a.state.Logf("[BOOT] edaview %s", a.state.Snapshot().AppVersion)
	return a
}

// Run blocks processing window events until the window closes.
func (a *App) Run() error {
	defer a.engine.Close()
	for {
		e := a.window.Event()
		a.explorer.ListenEvents(e)
		switch ev := e.(type) {
		case app.DestroyEvent:
			return ev.Err
		case app.FrameEvent:
			a.drain()
			gtx := app.NewContext(&a.ops, ev)
			a.layout(gtx)
			ev.Frame(gtx.Ops)
		}
	}
}

// post schedules fn on the event loop. It is safe to call from any goroutine.
func (a *App) post(fn func()) {
	a.pending <- fn
	a.invalidate()
}

func (a *App) drain() {
	for {
		select {
		case fn := <-a.pending:
			fn()
		default:
			return
		}
	}
}

func (a *App) invalidate() {
	if a.window != nil {
		a.window.Invalidate()
	}
}

func (a *App) showDesign(d *design.Design) {
	a.engine.Visibility().DisableMissing(d)
	a.engine.SetDesign(d)
	a.state.SetDesign(d)
	a.window.Option(app.Title("edaview - " + d.Name))
	a.stale = true
	a.state.Logf("[INFO] %s: %d cells, %d nets, %d layers", d.Name, len(d.Instances), len(d.Nets), len(d.Layers))
}

// reconcile runs a pass when something changed since the last one.
func (a *App) reconcile() {
	if !a.stale || a.engine.Design() == nil {
		return
	}
	a.stale = false
	report, err := a.engine.Reconcile()
	a.canvas.redraw = true
	if err != nil {
		return
	}
	if len(report.Rebuilt) > 0 {
		names := make([]string, len(report.Rebuilt))
		for i, g := range report.Rebuilt {
			names[i] = g.String()
		}
		a.state.Logf("[INFO] Rebuilt %s", strings.Join(names, ", "))
	}
	if report.Skipped > 0 {
		a.state.Logf("[WARN] %d shapes skipped", report.Skipped)
	}
}

// setVisible toggles a category from the layer panel.
func (a *App) setVisible(c viewer.Category, visible bool) {
	a.engine.Visibility().SetVisible(c, visible)
	a.stale = true
}

// updateSettings applies fn to a copy of the settings, installs it and saves it.
func (a *App) updateSettings(fn func(s *settings.Settings)) {
	s := a.engine.Settings().Clone()
	fn(s)
	if err := s.Validate(); err != nil {
		a.state.ShowError(err)
		return
	}
	a.engine.SetSettings(s)
	a.stale = true
	if a.settingsPath == "" {
		return
	}
	if err := settings.Save(a.settingsPath, s); err != nil {
		a.state.Logf("[ERROR] Failed to save settings: %v", err)
	}
}

func (a *App) openDesign() {
	go func() {
		file, err := a.explorer.ChooseFile("json")
		if err != nil {
			if err != explorer.ErrUserDecline {
				a.state.Logf("[ERROR] File picker failed: %v", err)
			}
			return
		}
		defer file.Close()

		a.state.SetStatus("Loading design...")
		d, err := design.Load(file)
		if err != nil {
			a.state.ShowError(err)
			return
		}
		if f, ok := file.(*os.File); ok {
			a.state.Logf("[INFO] Opened %s", f.Name())
		}
		a.post(func() { a.showDesign(d) })
	}()
}

// exportImage encodes the current view on the event loop and writes it from a
// background goroutine.
func (a *App) exportImage(format scene.Format) {
	var buf bytes.Buffer
	if err := a.engine.ExportImage(&buf, format); err != nil {
		a.state.ShowError(err)
		return
	}
	name := a.state.Snapshot().DesignName
	if name == "" {
		name = "layout"
	}
	name = filepath.Base(name) + "." + string(format)

	go func() {
		file, err := a.explorer.CreateFile(name)
		if err != nil {
			if err != explorer.ErrUserDecline {
				a.state.Logf("[ERROR] Save dialog failed: %v", err)
			}
			return
		}
		defer file.Close()
		if _, err := file.Write(buf.Bytes()); err != nil {
			a.state.ShowError(fmt.Errorf("ui: writing %s: %w", name, err))
			return
		}
		a.state.Logf("[INFO] Exported %s (%d bytes)", name, buf.Len())
	}()
}

func (a *App) layout(gtx layout.Context) layout.Dimensions {
	paint.FillShape(gtx.Ops, a.gvTheme.Palette.Bg, clip.Rect{Max: gtx.Constraints.Max}.Op())
	snap := a.state.Snapshot()

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.toolbar.Layout(gtx, snap)
		}),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return a.layoutWorkspace(gtx, snap)
		}),
		layout.Rigid(a.layoutLogSplitter),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.layoutLogPane(gtx, snap)
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.layoutStatusBar(gtx, snap)
		}),
	)
}

func (a *App) layoutWorkspace(gtx layout.Context, snap StateSnapshot) layout.Dimensions {
	bg := a.gvTheme.Bg2
	return layout.Flex{Axis: layout.Horizontal}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			width := gtx.Dp(unit.Dp(220))
			gtx.Constraints.Min.X = width
			gtx.Constraints.Max.X = width
			paint.FillShape(gtx.Ops, bg, clip.Rect{Max: gtx.Constraints.Max}.Op())
			return a.layers.Layout(gtx, a)
		}),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			if a.engine.Design() == nil {
				return layout.Center.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
					return layout.Flex{Axis: layout.Vertical, Alignment: layout.Middle}.Layout(gtx,
						layout.Rigid(material.Body1(a.gvTheme.Theme, "No design loaded").Layout),
						layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
						layout.Rigid(material.Body2(a.gvTheme.Theme, "Open a design JSON file from the toolbar").Layout),
					)
				})
			}
			return a.canvas.Layout(gtx)
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			if !snap.RightPanelVisible || snap.Details == nil {
				return layout.Dimensions{}
			}
			width := gtx.Dp(unit.Dp(300))
			gtx.Constraints.Min.X = width
			gtx.Constraints.Max.X = width
			paint.FillShape(gtx.Ops, bg, clip.Rect{Max: gtx.Constraints.Max}.Op())
			return a.inspector.Layout(gtx, a, *snap.Details)
		}),
	)
}

func (a *App) layoutLogSplitter(gtx layout.Context) layout.Dimensions {
	height := gtx.Dp(unit.Dp(6))
	if height < 4 {
		height = 4
	}
	size := image.Pt(gtx.Constraints.Max.X, height)
	paint.FillShape(gtx.Ops, a.gvTheme.Bg2, clip.Rect{Max: size}.Op())

	stack := clip.Rect{Max: size}.Push(gtx.Ops)
	pointer.CursorRowResize.Add(gtx.Ops)
	a.logSplitter.Add(gtx.Ops)
	stack.Pop()

	if ev, ok := a.logSplitter.Update(gtx.Metric, gtx.Source, gesture.Vertical); ok {
		switch ev.Kind {
		case pointer.Press:
			a.logSplitDrag = true
			a.logSplitLastY = ev.Position.Y
		case pointer.Drag:
			if a.logSplitDrag {
				dy := ev.Position.Y - a.logSplitLastY
				a.logSplitLastY = ev.Position.Y
				a.logPaneHeight -= dy
				a.clampLogPaneHeight(gtx)
				a.invalidate()
			}
		case pointer.Release, pointer.Cancel:
			a.logSplitDrag = false
		}
	}
	return layout.Dimensions{Size: size}
}

func (a *App) layoutLogPane(gtx layout.Context, snap StateSnapshot) layout.Dimensions {
	a.ensureLogPaneHeight(gtx)
	h := int(a.logPaneHeight)
	gtx.Constraints.Min.Y = h
	gtx.Constraints.Max.Y = h

	logText := strings.Join(snap.Logs, "\n")
	if a.logSelectable.Text() != logText {
		a.logSelectable.SetText(logText)
	}

	return layout.Inset{Left: unit.Dp(16), Right: unit.Dp(16), Top: unit.Dp(6), Bottom: unit.Dp(6)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		gtx.Constraints.Min = gtx.Constraints.Max
		return a.logList.Layout(gtx, 1, func(gtx layout.Context, _ int) layout.Dimensions {
			label := material.Body2(a.gvTheme.Theme, logText)
			label.State = &a.logSelectable
			label.WrapPolicy = text.WrapGraphemes
			label.Alignment = text.Start
			label.Font.Typeface = gfont.Typeface("Go Mono")
			if a.monoShaper != nil {
				label.Shaper = a.monoShaper
			}
			label.Color = a.opaqueFg()
			label.SelectionColor = a.selectionColor()
			return label.Layout(gtx)
		})
	})
}

func (a *App) layoutStatusBar(gtx layout.Context, snap StateSnapshot) layout.Dimensions {
	inset := layout.Inset{Left: unit.Dp(16), Right: unit.Dp(16), Top: unit.Dp(8), Bottom: unit.Dp(8)}
	return inset.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				msg := snap.Status
				if snap.Loading {
					msg = "Loading..."
				}
				lbl := material.Body2(a.gvTheme.Theme, msg)
				if snap.LastError != nil && !snap.Loading {
					lbl.Color = color.NRGBA{R: 200, G: 40, B: 40, A: 255}
				}
				return lbl.Layout(gtx)
			}),
			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions { return layout.Dimensions{} }),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				gtx.Constraints.Min.X = gtx.Dp(unit.Dp(150))
				zoom := fmt.Sprintf("Zoom: %.0f%%", a.engine.Camera().Zoom*100)
				return material.Body2(a.gvTheme.Theme, zoom).Layout(gtx)
			}),
		)
	})
}

func (a *App) applyPalette() {
	if a.gvTheme == nil {
		return
	}
	if a.darkMode {
		a.gvTheme.WithPalette(theme.Palette{
			Bg:         color.NRGBA{R: 18, G: 20, B: 26, A: 255},
			Fg:         color.NRGBA{R: 233, G: 236, B: 245, A: 255},
			ContrastBg: color.NRGBA{R: 120, G: 150, B: 255, A: 255},
			ContrastFg: color.NRGBA{R: 12, G: 16, B: 24, A: 255},
			Bg2:        color.NRGBA{R: 34, G: 40, B: 50, A: 255},
		})
	} else {
		a.gvTheme.WithPalette(theme.Palette{
			Bg:         color.NRGBA{R: 245, G: 247, B: 253, A: 255},
			Fg:         color.NRGBA{R: 34, G: 37, B: 49, A: 255},
			ContrastBg: color.NRGBA{R: 80, G: 120, B: 255, A: 255},
			ContrastFg: color.NRGBA{R: 255, G: 255, B: 255, A: 255},
			Bg2:        color.NRGBA{R: 225, G: 230, B: 244, A: 255},
		})
	}
}

func (a *App) setDarkMode(enabled bool) {
	if a.darkMode == enabled {
		return
	}
	a.darkMode = enabled
	a.applyPalette()
	a.invalidate()
}

func (a *App) ensureLogPaneHeight(gtx layout.Context) {
	if a.logPaneHeight > 0 {
		return
	}
	a.logPaneHeight = float32(gtx.Dp(unit.Dp(120)))
	a.clampLogPaneHeight(gtx)
}

func (a *App) clampLogPaneHeight(gtx layout.Context) {
	min := float32(gtx.Dp(unit.Dp(48)))
	max := float32(gtx.Dp(unit.Dp(360)))
	if a.logPaneHeight < min {
		a.logPaneHeight = min
	}
	if a.logPaneHeight > max {
		a.logPaneHeight = max
	}
}

func (a *App) opaqueFg() color.NRGBA {
	fg := a.gvTheme.Palette.Fg
	fg.A = 0xFF
	return fg
}

func (a *App) selectionColor() color.NRGBA {
	bg := a.gvTheme.Palette.ContrastBg
	if bg.A == 0 {
		bg.A = 0xFF
	}
	return color.NRGBA{R: bg.R, G: bg.G, B: bg.B, A: 0x88}
}

func filterMonoFaces() []gfont.FontFace {
	var mono []gfont.FontFace
	for _, face := range gofont.Collection() {
		if face.Font.Typeface == gfont.Typeface("Go Mono") {
			mono = append(mono, face)
		}
	}
	return mono
}
