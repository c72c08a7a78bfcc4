// Package viewer turns a design into a retained scene, keeps it in step with
// the layer visibility and settings, and controls the view onto it.
package viewer

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"time"

	"github.com/OpenTraceLab/edaview/pkg/design"
	"github.com/OpenTraceLab/edaview/pkg/geometry"
	"github.com/OpenTraceLab/edaview/pkg/scene"
	"github.com/OpenTraceLab/edaview/pkg/settings"
	"github.com/OpenTraceLab/edaview/pkg/style"
)

// ErrNoSurface is returned by ExportImage before the first pass or after Reset.
var ErrNoSurface = errors.New("no render surface")

// Group is one of the scene's top-level layer groups. The declaration order
// is the paint order.
type Group int

const (
	GroupRows Group = iota
	GroupCells
	GroupWires
	GroupGCells
	GroupTracks
	GroupChip
	GroupPorts
	numGroups
)

var groupNames = [numGroups]string{"rows", "cells", "wires", "gcells", "tracks", "chip", "ports"}

func (g Group) String() string {
	if g < 0 || g >= numGroups {
		return fmt.Sprintf("group(%d)", int(g))
	}
	return groupNames[g]
}

// Groups returns every group in paint order.
func Groups() []Group {
	out := make([]Group, numGroups)
	for i := range out {
		out[i] = Group(i)
	}
	return out
}

// groupSources lists the categories whose change rebuilds each group. The
// chip has no sources: it is built once and only Reset removes it.
var groupSources = [numGroups][]Category{
	GroupRows:   {Rows},
	GroupCells:  {Cells, CellShapes},
	GroupWires:  {Wires, Vias, SpecialWires},
	GroupGCells: {GCells},
	GroupTracks: {Tracks},
	GroupChip:   nil,
	GroupPorts:  {Ports, SpecialWires},
}

// groupShownBy lists the categories that make each group exist: a group is
// built when any of them is visible. Cell shapes only decorate cells, so they
// rebuild the cells group without keeping it alive.
var groupShownBy = [numGroups][]Category{
	GroupRows:   {Rows},
	GroupCells:  {Cells},
	GroupWires:  {Wires, Vias, SpecialWires},
	GroupGCells: {GCells},
	GroupTracks: {Tracks},
	GroupChip:   nil,
	GroupPorts:  {Ports, SpecialWires},
}

// Sources returns the visibility categories g depends on.
func (g Group) Sources() []Category {
	return groupSources[g]
}

// ShownBy returns the categories of which at least one must be visible for g
// to be built. It is a subset of Sources.
func (g Group) ShownBy() []Category {
	return groupShownBy[g]
}

// GroupState is the reconcile state of a group
type GroupState int

const (
	Clean GroupState = iota
	Dirty
)

func (s GroupState) String() string {
	if s == Dirty {
		return "dirty"
	}
	return "clean"
}

// Host is notified of engine state changes
type Host interface {
	SetLoading(loading bool)
	ClearSelection()
	ResetDirty()
	ShowError(err error)
}

// Report summarizes one reconcile pass
type Report struct {
	Rebuilt []Group
	Shapes  map[Group]int
	Skipped int
}

// Options configures an Engine. Zero values select defaults.
type Options struct {
	Host      Host
	Selection Selection
	Clock     scene.Clock
	Fonts     *scene.Fonts
}

// Engine owns the scene for one design
type Engine struct {
	design    *design.Design
	vis       *Visibility
	settings  *settings.Settings
	host      Host
	selection Selection
	clock     scene.Clock
	fonts     *scene.Fonts

	width  int
	height int

	root     *scene.Node
	groups   [numGroups]*scene.Node
	states   [numGroups]GroupState
	surface  *scene.Surface
	textures *style.TextureCache
	screen   geometry.ScreenConfig
	camera   *Camera
	loading  bool
}

// NewEngine returns an engine for d drawn on a width x height canvas. No
// scene exists until the first Reconcile.
func NewEngine(d *design.Design, vis *Visibility, s *settings.Settings, width, height int, opts Options) *Engine {
	if vis == nil {
		vis = DefaultVisibility()
	}
	if s == nil {
		s = settings.Default()
	}
	if opts.Clock == nil {
		opts.Clock = scene.SystemClock
	}
	if opts.Fonts == nil {
		fonts, err := scene.DefaultFonts()
		if err != nil {
			Logger().Warn("labels disabled", "err", err)
		}
		opts.Fonts = fonts
	}
	e := &Engine{
		design:    d,
		vis:       vis,
		settings:  s,
		host:      opts.Host,
		selection: opts.Selection,
		clock:     opts.Clock,
		fonts:     opts.Fonts,
		width:     width,
		height:    height,
		textures:  style.NewTextureCache(),
		camera:    NewCamera(width, height),
	}
	for i := range e.states {
		e.states[i] = Dirty
	}
	return e
}

// Design returns the displayed design.
func (e *Engine) Design() *design.Design { return e.design }

// Visibility returns the visibility state the engine reads.
func (e *Engine) Visibility() *Visibility { return e.vis }

// Settings returns the active settings.
func (e *Engine) Settings() *settings.Settings { return e.settings }

// Camera returns the view controller.
func (e *Engine) Camera() *Camera { return e.camera }

// Root returns the scene root, or nil before the first pass.
func (e *Engine) Root() *scene.Node { return e.root }

// Group returns the node of g, or nil when g is absent.
func (e *Engine) Group(g Group) *scene.Node { return e.groups[g] }

// State returns the reconcile state of g.
func (e *Engine) State(g Group) GroupState { return e.states[g] }

// IsLoading reports whether a pass is running.
func (e *Engine) IsLoading() bool { return e.loading }

// Surface returns the render surface, or nil.
func (e *Engine) Surface() *scene.Surface { return e.surface }

// Screen returns the design to canvas mapping of the last pass.
func (e *Engine) Screen() geometry.ScreenConfig { return e.screen }

// Size returns the canvas size.
func (e *Engine) Size() (int, int) { return e.width, e.height }

// SetSize changes the canvas size. The next pass discards the scene and
// rebuilds it at the new size.
func (e *Engine) SetSize(width, height int) {
	e.width, e.height = width, height
}

// SetSettings replaces the settings. The scene is discarded, keeping the
// selection, and rebuilt on the next pass.
func (e *Engine) SetSettings(s *settings.Settings) {
	e.settings = s
	e.teardown()
	e.vis.MarkAllDirty()
}

// SetDesign replaces the design and discards the scene.
func (e *Engine) SetDesign(d *design.Design) {
	e.design = d
	e.Reset()
}

func (e *Engine) setLoading(loading bool) {
	e.loading = loading
	if e.host != nil {
		e.host.SetLoading(loading)
	}
}

func (e *Engine) fail(err error) error {
	Logger().Error("reconcile failed", "err", err)
	if e.host != nil {
		e.host.ShowError(err)
	}
	return err
}

// Reconcile brings the scene in line with the design, visibility and
// settings, rebuilding only dirty groups. On the first pass every group is
// dirty. Groups whose sources are all hidden are removed.
func (e *Engine) Reconcile() (Report, error) {
	e.setLoading(true)
	defer e.setLoading(false)

	report := Report{Shapes: make(map[Group]int)}

	if e.surface != nil {
		if w, h := e.surface.Size(); w != e.width || h != e.height {
			e.teardown()
		}
	}

	if e.design == nil || e.design.Die == nil {
		return report, e.fail(fmt.Errorf("viewer: %w", design.ErrNoDie))
	}
	if err := e.settings.Validate(); err != nil {
		return report, e.fail(err)
	}
	screen, err := geometry.NewScreenConfig(*e.design.Die, float64(e.width), float64(e.height), e.settings.Shapes.Chip.StrokeWidth)
	if err != nil {
		return report, e.fail(err)
	}
	layers, err := style.AssignLayerColors(e.design.Layers, e.settings.ColorOptions())
	if err != nil {
		return report, e.fail(err)
	}
	paints, err := newPaints(e.settings)
	if err != nil {
		return report, e.fail(err)
	}

	firstRun := e.surface == nil
	if firstRun {
		bg := paints.background
		if e.settings.TransparentBackground {
			bg = color.NRGBA{}
		}
		surface, err := scene.NewSurface(e.width, e.height, bg, e.fonts)
		if err != nil {
			return report, e.fail(err)
		}
		e.surface = surface
		e.root = scene.NewGroup("viewport")
		e.camera.UpdateScreenSize(e.width, e.height)
	}
	e.screen = screen

	for _, g := range Groups() {
		switch {
		case g == GroupChip:
			if e.groups[g] == nil {
				e.states[g] = Dirty
			}
		case firstRun:
			e.states[g] = Dirty
		default:
			for _, c := range g.Sources() {
				if e.vis.Dirty(c) {
					e.states[g] = Dirty
				}
			}
		}
	}

	b := &builder{
		design:    e.design,
		index:     design.NewIndex(e.design),
		vis:       e.vis,
		settings:  e.settings,
		paints:    paints,
		screen:    screen,
		layers:    layers,
		textures:  e.textures,
		clock:     e.clock,
		timeout:   e.settings.DoubleClick(),
		fonts:     e.fonts,
		selection: e.selection,
	}

	// build everything first, then attach in paint order
	clearDirty := false
	for _, g := range Groups() {
		if e.states[g] != Dirty {
			continue
		}
		if g != GroupChip {
			clearDirty = true
		}
		if old := e.groups[g]; old != nil {
			old.Destroy()
			e.groups[g] = nil
		}
		if !e.wanted(g) {
			continue
		}
		start := time.Now()
		node := b.build(g)
		e.groups[g] = node
		report.Rebuilt = append(report.Rebuilt, g)
		report.Shapes[g] = len(node.Children())
		Logger().Debug("group rebuilt", "group", g.String(), "shapes", report.Shapes[g], "elapsed", time.Since(start))
	}
	report.Skipped = b.skipped

	for _, g := range Groups() {
		if n := e.groups[g]; n != nil {
			n.Detach()
		}
	}
	for _, g := range Groups() {
		if n := e.groups[g]; n != nil {
			e.root.AddChild(n)
		}
		e.states[g] = Clean
	}

	e.vis.ClearDirty()
	if clearDirty && e.host != nil {
		e.host.ResetDirty()
	}
	Logger().Debug("reconcile pass", "rebuilt", len(report.Rebuilt), "skipped", report.Skipped)
	return report, nil
}

// wanted reports whether g should exist given the current visibility.
func (e *Engine) wanted(g Group) bool {
	if g == GroupChip {
		return true
	}
	for _, c := range g.ShownBy() {
		if e.vis.Visible(c) {
			return true
		}
	}
	return false
}

// teardown destroys every group and the surface. It is a no-op without a surface.
func (e *Engine) teardown() bool {
	if e.surface == nil {
		return false
	}
	for i, n := range e.groups {
		if n != nil {
			n.Destroy()
			e.groups[i] = nil
		}
		e.states[i] = Dirty
	}
	if e.root != nil {
		e.root.Destroy()
		e.root = nil
	}
	if err := e.surface.Close(); err != nil {
		Logger().Warn("closing surface", "err", err)
	}
	e.surface = nil
	return true
}

// Reset discards the scene and the surface, clears the selection and marks
// every category dirty. Without a surface it does nothing, so calling it
// twice is harmless.
func (e *Engine) Reset() {
	if !e.teardown() {
		return
	}
	e.camera.Fit()
	if e.host != nil {
		e.host.ClearSelection()
	}
	e.vis.MarkAllDirty()
}

// Render paints the scene onto the surface through the camera.
func (e *Engine) Render() error {
	if e.surface == nil {
		return ErrNoSurface
	}
	return e.surface.Render(e.root, e.camera.Matrix())
}

// ZoomIn scales the view up by the configured step about the surface center.
func (e *Engine) ZoomIn() {
	if e.surface == nil {
		return
	}
	e.camera.ZoomCentered(e.settings.ScaleStepFactor)
}

// ZoomOut scales the view down by the configured step about the surface center.
func (e *Engine) ZoomOut() {
	if e.surface == nil {
		return
	}
	e.camera.ZoomCentered(1 / e.settings.ScaleStepFactor)
}

// Fit restores scale 1 and pans to the origin.
func (e *Engine) Fit() {
	if e.surface == nil {
		return
	}
	e.camera.Fit()
}

// Pan moves the view by surface pixels.
func (e *Engine) Pan(dx, dy float64) {
	e.camera.Pan(dx, dy)
}

// ZoomAt scales the view by factor about the surface point (x, y).
func (e *Engine) ZoomAt(x, y, factor float64) {
	e.camera.ZoomAt(x, y, factor)
}

// ScreenToWorld converts a surface pixel to design coordinates.
func (e *Engine) ScreenToWorld(x, y float64) design.Point {
	p := e.camera.ScreenToWorld(x, y)
	return e.screen.ToDesignPoint(p.X, p.Y)
}

// Activate delivers a click at the surface point (x, y) to the shape under it.
func (e *Engine) Activate(x, y float64) *scene.Node {
	if e.root == nil {
		return nil
	}
	p := e.camera.ScreenToWorld(x, y)
	return scene.Activate(e.root, p.X, p.Y)
}

// ExportImage renders the current view and encodes it.
func (e *Engine) ExportImage(w io.Writer, format scene.Format) error {
	if e.surface == nil {
		return ErrNoSurface
	}
	if err := e.Render(); err != nil {
		return err
	}
	return e.surface.Encode(w, format)
}

// Close releases the scene and surface without notifying the host.
func (e *Engine) Close() {
	e.teardown()
}
