package viewer

import (
	"bytes"
	"errors"
	"image/png"
	"math"
	"testing"
	"time"

	"github.com/OpenTraceLab/edaview/pkg/design"
	"github.com/OpenTraceLab/edaview/pkg/geometry"
	"github.com/OpenTraceLab/edaview/pkg/scene"
	"github.com/OpenTraceLab/edaview/pkg/settings"
)

// testDesign is a 1000x1000 die drawn on a 500x500 canvas, so one design
// unit is half a pixel.
func testDesign() *design.Design {
	return &design.Design{
		Name: "tiny",
		Die:  &design.Rect{XMax: 1000, YMax: 1000},
		Layers: []design.Layer{
			{ID: 1, Name: "metal1", Type: design.LayerRouting},
			{ID: 2, Name: "via1", Type: design.LayerCut},
			{ID: 3, Name: "metal2", Type: design.LayerRouting},
		},
		Instances: []design.Instance{{
			ID:          7,
			Name:        "u1",
			Master:      "NAND2",
			Orientation: design.OrientationR0,
			Origin:      &design.Point{X: 100, Y: 100},
			BoundingBox: &design.Rect{XMin: 100, YMin: 100, XMax: 200, YMax: 300},
			Pins:        []design.Ref{{ID: 11}},
		}},
		InstancePins: []design.Pin{{ID: 11, Name: "A", Geometries: []design.Ref{{ID: 21}}}},
		BlockPins: []design.Pin{
			{ID: 12, Name: "clk", Direction: design.IoInput, IsBlock: true, Geometries: []design.Ref{{ID: 22}}},
			{ID: 13, Name: "VDD", Direction: design.IoInOut, IsBlock: true, IsSpecial: true, Geometries: []design.Ref{{ID: 23}}},
		},
		Geometries: []design.Geometry{
			{ID: 21, Boxes: []design.Rect{{ID: 101, XMax: 10, YMax: 10, Layer: &design.Ref{ID: 1}}}},
			{ID: 22, Boxes: []design.Rect{{ID: 102, YMin: 500, XMax: 20, YMax: 520, Layer: &design.Ref{ID: 1}}}},
			{ID: 23, Boxes: []design.Rect{{ID: 103, XMin: 980, XMax: 1000, YMax: 20, Layer: &design.Ref{ID: 3}}}},
			{ID: 24, Boxes: []design.Rect{
				{ID: 104, YMin: 900, XMax: 1000, YMax: 920, Layer: &design.Ref{ID: 3}},
				{ID: 105, XMin: 10, YMin: 900, XMax: 20, YMax: 920, Via: &design.Ref{ID: 40}},
			}},
		},
		Nets: []design.Net{
			{ID: 30, Name: "n1", IsRouted: true, Edges: []design.Edge{
				{Rect: &design.Rect{YMin: 600, XMax: 400, YMax: 610}, Layer: &design.Ref{ID: 3}},
				{Rect: &design.Rect{YMin: 700, XMax: 400, YMax: 710}, Layer: &design.Ref{ID: 1}},
				{Rect: &design.Rect{XMin: 395, YMin: 600, XMax: 405, YMax: 610}, Layer: &design.Ref{ID: 2}, Via: &design.Ref{ID: 40}},
			}},
			{ID: 31, Name: "VDD", IsRouted: true, IsSpecial: true, SpecialBoxes: []design.Ref{{ID: 24}}},
			{ID: 32, Name: "floating", Edges: []design.Edge{
				{Rect: &design.Rect{YMin: 800, XMax: 400, YMax: 810}, Layer: &design.Ref{ID: 1}},
			}},
		},
		RoutingVias: []design.Via{{ID: 40, Name: "via1_0", CutLayer: &design.Ref{ID: 2}}},
		Rows:        []design.Row{{ID: 50, Name: "row0", BoundingBox: &design.Rect{XMax: 1000, YMax: 100}}},
		Tracks:      []design.Grid{{ID: 60, Layer: &design.Ref{ID: 1}, GridX: []int{500}, GridY: []int{250, 750}}},
		GCell: &design.Grid{
			ID:                     70,
			GridXPatternOrigins:    []int{0},
			GridXPatternLineCounts: []int{3},
			GridXPatternSteps:      []int{500},
			GridYPatternOrigins:    []int{0},
			GridYPatternLineCounts: []int{2},
			GridYPatternSteps:      []int{1000},
		},
	}
}

// testSettings drops the chip stroke so the die fills the canvas exactly.
func testSettings() *settings.Settings {
	s := settings.Default()
	s.Shapes.Chip.StrokeWidth = 0
	return s
}

type recordingHost struct {
	loading []bool
	cleared int
	resets  int
	errs    []error
}

func (h *recordingHost) SetLoading(loading bool) { h.loading = append(h.loading, loading) }
func (h *recordingHost) ClearSelection()         { h.cleared++ }
func (h *recordingHost) ResetDirty()             { h.resets++ }
func (h *recordingHost) ShowError(err error)     { h.errs = append(h.errs, err) }

type recordingSelection struct {
	selected  []Entity
	inspected []Entity
}

func (s *recordingSelection) Select(e Entity)  { s.selected = append(s.selected, e) }
func (s *recordingSelection) Inspect(e Entity) { s.inspected = append(s.inspected, e) }

type manualTimer struct {
	fn      func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	active := !t.stopped
	t.stopped = true
	return active
}

// manualClock never fires on its own
type manualClock struct {
	timers []*manualTimer
}

func (c *manualClock) AfterFunc(_ time.Duration, f func()) scene.Timer {
	t := &manualTimer{fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *manualClock) fireAll() {
	for _, t := range c.timers {
		if !t.stopped {
			t.stopped = true
			t.fn()
		}
	}
}

type fixture struct {
	engine *Engine
	host   *recordingHost
	sel    *recordingSelection
	clock  *manualClock
}

func newFixture(t *testing.T, d *design.Design, vis *Visibility, s *settings.Settings) *fixture {
	t.Helper()
	f := &fixture{host: &recordingHost{}, sel: &recordingSelection{}, clock: &manualClock{}}
	f.engine = NewEngine(d, vis, s, 500, 500, Options{Host: f.host, Selection: f.sel, Clock: f.clock})
	t.Cleanup(f.engine.Close)
	return f
}

func (f *fixture) reconcile(t *testing.T) Report {
	t.Helper()
	report, err := f.engine.Reconcile()
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	return report
}

func rootOrder(e *Engine) []string {
	var names []string
	for _, n := range e.Root().Children() {
		names = append(names, n.Name)
	}
	return names
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalGroups(a, b []Group) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFirstPass(t *testing.T) {
	f := newFixture(t, testDesign(), nil, testSettings())
	report := f.reconcile(t)

	want := []Group{GroupCells, GroupWires, GroupChip, GroupPorts}
	if !equalGroups(report.Rebuilt, want) {
		t.Errorf("Rebuilt = %v, want %v", report.Rebuilt, want)
	}
	if got := rootOrder(f.engine); !equalStrings(got, []string{"cells", "wires", "chip", "ports"}) {
		t.Errorf("root order = %v", got)
	}
	for _, g := range []Group{GroupRows, GroupGCells, GroupTracks} {
		if f.engine.Group(g) != nil {
			t.Errorf("hidden group %v was built", g)
		}
	}
	for _, g := range Groups() {
		if f.engine.State(g) != Clean {
			t.Errorf("State(%v) = %v after pass", g, f.engine.State(g))
		}
	}
	if f.engine.Visibility().AnyDirty() {
		t.Error("visibility still dirty after pass")
	}
	if len(f.host.loading) != 2 || !f.host.loading[0] || f.host.loading[1] {
		t.Errorf("loading notifications = %v, want [true false]", f.host.loading)
	}
	if f.host.resets != 1 {
		t.Errorf("ResetDirty called %d times, want 1", f.host.resets)
	}
	if f.engine.IsLoading() {
		t.Error("IsLoading() after pass")
	}
	if report.Skipped != 0 {
		t.Errorf("Skipped = %d", report.Skipped)
	}
}

func TestCellPlacement(t *testing.T) {
	f := newFixture(t, testDesign(), nil, testSettings())
	f.reconcile(t)

	cells := f.engine.Group(GroupCells).Children()
	if len(cells) != 1 {
		t.Fatalf("got %d cells, want 1", len(cells))
	}
	c := cells[0]
	if c.X != 50 || c.Y != 350 || c.Rect.Width != 50 || c.Rect.Height != 100 {
		t.Errorf("cell at (%g, %g) size %gx%g, want (50, 350) size 50x100", c.X, c.Y, c.Rect.Width, c.Rect.Height)
	}
	e, ok := c.Data.(Entity)
	if !ok || e.Kind != EntityCell || e.Cell.Name != "u1" {
		t.Errorf("cell data = %#v", c.Data)
	}
	if c.Handler == nil {
		t.Error("cell has no handler")
	}
	if n := c.Count(scene.KindRect); n != 1 {
		t.Errorf("cell shapes drawn while hidden: %d rects", n)
	}
}

func TestCellShapes(t *testing.T) {
	vis := DefaultVisibility()
	vis.SetVisible(CellShapes, true)
	f := newFixture(t, testDesign(), vis, testSettings())
	f.reconcile(t)

	cell := f.engine.Group(GroupCells).Children()[0]
	var pin *scene.Node
	for _, n := range cell.Children() {
		if n.Kind == scene.KindRect {
			pin = n
		}
	}
	if pin == nil {
		t.Fatal("pin shape missing")
	}
	// pin box (0,0)-(10,10) placed at (100,100) is (100,100)-(110,110)
	want := geometry.ScreenRect{X: 0, Y: 95, Width: 5, Height: 5}
	if pin.Rect != want {
		t.Errorf("pin rect = %+v, want %+v", pin.Rect, want)
	}
	if pin.Paint.Texture == nil {
		t.Error("pin shape has no texture")
	}
	if pin.Paint.Alpha != 0.7 {
		t.Errorf("pin alpha = %g, want 0.7", pin.Paint.Alpha)
	}
	if pin.Handler != nil {
		t.Error("pin shape should not be interactive")
	}
}

func TestCellLabel(t *testing.T) {
	s := testSettings()
	s.DisplayNames = true
	f := newFixture(t, testDesign(), nil, s)
	f.reconcile(t)

	cell := f.engine.Group(GroupCells).Children()[0]
	var label *scene.Node
	for _, n := range cell.Children() {
		if n.Kind == scene.KindText {
			label = n
		}
	}
	if label == nil {
		t.Fatal("label missing")
	}
	if label.Label.Text != "u1" {
		t.Errorf("label = %q, want %q", label.Label.Text, "u1")
	}
	if label.X != 25 || label.Y != 50 {
		t.Errorf("label at (%g, %g), want cell center (25, 50)", label.X, label.Y)
	}
}

func TestToggleRebuildsDependents(t *testing.T) {
	tests := []struct {
		name     string
		shown    []Category
		toggle   Category
		rebuilt  []Group
		order    []string
		resets   int
		absent   []Group
		retained []Group
	}{
		{
			name:     "tracks",
			toggle:   Tracks,
			rebuilt:  []Group{GroupTracks},
			order:    []string{"cells", "wires", "tracks", "chip", "ports"},
			retained: []Group{GroupCells, GroupWires, GroupChip, GroupPorts},
		},
		{
			name:     "special wires",
			toggle:   SpecialWires,
			rebuilt:  []Group{GroupWires, GroupPorts},
			order:    []string{"cells", "wires", "chip", "ports"},
			retained: []Group{GroupCells, GroupChip},
		},
		{
			name:     "cell shapes",
			toggle:   CellShapes,
			rebuilt:  []Group{GroupCells},
			order:    []string{"cells", "wires", "chip", "ports"},
			retained: []Group{GroupWires, GroupChip, GroupPorts},
		},
		{
			name:     "hide cells",
			toggle:   Cells,
			rebuilt:  nil,
			order:    []string{"wires", "chip", "ports"},
			absent:   []Group{GroupCells},
			retained: []Group{GroupWires, GroupChip, GroupPorts},
		},
		{
			name:     "hide cells with cell shapes shown",
			shown:    []Category{CellShapes},
			toggle:   Cells,
			rebuilt:  nil,
			order:    []string{"wires", "chip", "ports"},
			absent:   []Group{GroupCells},
			retained: []Group{GroupWires, GroupChip, GroupPorts},
		},
		{
			name:     "rows",
			toggle:   Rows,
			rebuilt:  []Group{GroupRows},
			order:    []string{"rows", "cells", "wires", "chip", "ports"},
			retained: []Group{GroupCells, GroupWires, GroupChip, GroupPorts},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vis := DefaultVisibility()
			for _, c := range tt.shown {
				vis.SetVisible(c, true)
			}
			f := newFixture(t, testDesign(), vis, testSettings())
			f.reconcile(t)

			before := make(map[Group]*scene.Node)
			for _, g := range Groups() {
				before[g] = f.engine.Group(g)
			}

			f.engine.Visibility().Toggle(tt.toggle)
			report := f.reconcile(t)

			if !equalGroups(report.Rebuilt, tt.rebuilt) {
				t.Errorf("Rebuilt = %v, want %v", report.Rebuilt, tt.rebuilt)
			}
			if got := rootOrder(f.engine); !equalStrings(got, tt.order) {
				t.Errorf("root order = %v, want %v", got, tt.order)
			}
			for _, g := range tt.retained {
				if f.engine.Group(g) != before[g] {
					t.Errorf("group %v was replaced", g)
				}
			}
			for _, g := range tt.absent {
				if f.engine.Group(g) != nil {
					t.Errorf("group %v still present", g)
				}
				if !before[g].Destroyed() {
					t.Errorf("old %v group not destroyed", g)
				}
			}
			for _, g := range tt.rebuilt {
				if old := before[g]; old != nil && !old.Destroyed() {
					t.Errorf("old %v group not destroyed", g)
				}
			}
			if f.host.resets != 2 {
				t.Errorf("ResetDirty called %d times, want 2", f.host.resets)
			}
		})
	}
}

func TestCellShapesAloneBuildNoCells(t *testing.T) {
	vis := DefaultVisibility()
	vis.SetVisible(Cells, false)
	vis.SetVisible(CellShapes, true)
	f := newFixture(t, testDesign(), vis, testSettings())
	f.reconcile(t)

	if g := f.engine.Group(GroupCells); g != nil {
		t.Fatalf("cells group built with cells hidden: %d rects", g.Count(scene.KindRect))
	}

	f.engine.Visibility().SetVisible(Cells, true)
	report := f.reconcile(t)
	if !equalGroups(report.Rebuilt, []Group{GroupCells}) {
		t.Errorf("Rebuilt = %v, want [cells]", report.Rebuilt)
	}
	if f.engine.Group(GroupCells) == nil {
		t.Error("cells group missing after showing cells")
	}
}

func TestReconcileWithoutChanges(t *testing.T) {
	f := newFixture(t, testDesign(), nil, testSettings())
	f.reconcile(t)
	root := f.engine.Root()

	report := f.reconcile(t)
	if len(report.Rebuilt) != 0 {
		t.Errorf("Rebuilt = %v, want none", report.Rebuilt)
	}
	if f.engine.Root() != root {
		t.Error("root replaced")
	}
	if f.host.resets != 1 {
		t.Errorf("ResetDirty called %d times, want 1", f.host.resets)
	}
}

func TestChipBuiltOnce(t *testing.T) {
	f := newFixture(t, testDesign(), nil, testSettings())
	f.reconcile(t)
	chip := f.engine.Group(GroupChip)

	for _, c := range Categories() {
		f.engine.Visibility().Toggle(c)
	}
	f.reconcile(t)
	if f.engine.Group(GroupChip) != chip {
		t.Error("chip rebuilt by a visibility change")
	}

	f.engine.Reset()
	if !chip.Destroyed() {
		t.Error("Reset kept the chip")
	}
	f.reconcile(t)
	if f.engine.Group(GroupChip) == nil {
		t.Error("chip missing after Reset")
	}
}

func TestReset(t *testing.T) {
	f := newFixture(t, testDesign(), nil, testSettings())

	f.engine.Reset()
	if f.host.cleared != 0 {
		t.Errorf("Reset without a scene cleared the selection")
	}

	f.reconcile(t)
	f.engine.Pan(10, 10)
	root := f.engine.Root()
	textures := f.engine.textures.Len()
	if textures == 0 {
		t.Fatal("no textures allocated")
	}

	f.engine.Reset()
	f.engine.Reset()

	if f.host.cleared != 1 {
		t.Errorf("ClearSelection called %d times, want 1", f.host.cleared)
	}
	if f.engine.Root() != nil || f.engine.Surface() != nil {
		t.Error("scene survived Reset")
	}
	if !root.Destroyed() {
		t.Error("root not destroyed")
	}
	if n := f.engine.textures.Len(); n != 0 {
		t.Errorf("%d textures still held after Reset", n)
	}
	for _, c := range Categories() {
		if !f.engine.Visibility().Dirty(c) {
			t.Errorf("%v not dirty after Reset", c)
		}
	}
	if cam := f.engine.Camera(); cam.Zoom != 1 || cam.PanX != 0 || cam.PanY != 0 {
		t.Errorf("camera not fitted: %+v", cam)
	}
	if err := f.engine.ExportImage(&bytes.Buffer{}, scene.FormatPNG); !errors.Is(err, ErrNoSurface) {
		t.Errorf("ExportImage after Reset error = %v, want ErrNoSurface", err)
	}

	report := f.reconcile(t)
	if len(report.Rebuilt) != 4 {
		t.Errorf("Rebuilt = %v after Reset", report.Rebuilt)
	}
}

func TestSetSize(t *testing.T) {
	f := newFixture(t, testDesign(), nil, testSettings())
	f.reconcile(t)
	root := f.engine.Root()

	f.engine.SetSize(1000, 1000)
	f.reconcile(t)

	if f.engine.Root() == root {
		t.Error("root kept across a size change")
	}
	if w, h := f.engine.Surface().Size(); w != 1000 || h != 1000 {
		t.Errorf("surface %dx%d, want 1000x1000", w, h)
	}
	c := f.engine.Group(GroupCells).Children()[0]
	if c.X != 100 || c.Y != 700 {
		t.Errorf("cell at (%g, %g), want (100, 700)", c.X, c.Y)
	}
	if f.host.cleared != 0 {
		t.Error("size change cleared the selection")
	}
}

func TestSetSettings(t *testing.T) {
	f := newFixture(t, testDesign(), nil, testSettings())
	f.reconcile(t)

	s := testSettings()
	s.Shapes.Cell.Fill = "#ff0000"
	f.engine.SetSettings(s)
	if f.engine.Surface() != nil {
		t.Error("surface kept after SetSettings")
	}
	f.reconcile(t)

	c := f.engine.Group(GroupCells).Children()[0]
	if c.Paint.Fill.R != 0xff || c.Paint.Fill.G != 0 {
		t.Errorf("cell fill = %v", c.Paint.Fill)
	}
	if f.host.cleared != 0 {
		t.Error("SetSettings cleared the selection")
	}
}

func TestReconcileErrors(t *testing.T) {
	tests := []struct {
		name   string
		design func() *design.Design
		mutate func(*settings.Settings)
		want   error
	}{
		{
			name:   "no die",
			design: func() *design.Design { d := testDesign(); d.Die = nil; return d },
			want:   design.ErrNoDie,
		},
		{
			name:   "degenerate die",
			design: func() *design.Design { d := testDesign(); d.Die = &design.Rect{XMax: 1000}; return d },
			want:   geometry.ErrDegenerateDie,
		},
		{
			name:   "invalid settings",
			design: testDesign,
			mutate: func(s *settings.Settings) { s.ScaleStepFactor = 1 },
			want:   settings.ErrInvalidSetting,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testSettings()
			if tt.mutate != nil {
				tt.mutate(s)
			}
			f := newFixture(t, tt.design(), nil, s)
			_, err := f.engine.Reconcile()
			if !errors.Is(err, tt.want) {
				t.Fatalf("Reconcile() error = %v, want %v", err, tt.want)
			}
			if len(f.host.errs) != 1 {
				t.Errorf("ShowError called %d times, want 1", len(f.host.errs))
			}
			if len(f.host.loading) != 2 || f.host.loading[1] {
				t.Errorf("loading notifications = %v", f.host.loading)
			}
			if f.engine.Root() != nil {
				t.Error("scene built despite the error")
			}
		})
	}
}

func TestSkippedShapes(t *testing.T) {
	d := testDesign()
	d.Instances[0].Pins = append(d.Instances[0].Pins, design.Ref{ID: 99})
	d.Nets[0].Edges = append(d.Nets[0].Edges, design.Edge{
		Rect:  &design.Rect{YMin: 650, XMax: 10, YMax: 660},
		Layer: &design.Ref{ID: 42},
	})
	vis := DefaultVisibility()
	vis.SetVisible(CellShapes, true)
	f := newFixture(t, d, vis, testSettings())

	report := f.reconcile(t)
	if report.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", report.Skipped)
	}
	if n := len(f.engine.Group(GroupWires).Children()); n != 3 {
		t.Errorf("got %d wire shapes, want 3", n)
	}
	if n := f.engine.Group(GroupCells).Children()[0].Count(scene.KindRect); n != 2 {
		t.Errorf("got %d rects in the cell, want 2", n)
	}
}

func TestWires(t *testing.T) {
	t.Run("sorted bottom to top", func(t *testing.T) {
		f := newFixture(t, testDesign(), nil, testSettings())
		f.reconcile(t)

		shapes := f.engine.Group(GroupWires).Children()
		if len(shapes) != 3 {
			t.Fatalf("got %d wire shapes, want 3", len(shapes))
		}
		kinds := []EntityKind{EntityWire, EntityVia, EntityWire}
		ys := []float64{145, 195, 195}
		for i, n := range shapes {
			e := n.Data.(Entity)
			if e.Kind != kinds[i] {
				t.Errorf("shape %d is a %v, want %v", i, e.Kind, kinds[i])
			}
			if n.Rect.Y != ys[i] {
				t.Errorf("shape %d at y %g, want %g", i, n.Rect.Y, ys[i])
			}
		}
		if shapes[1].Paint.Texture == nil || shapes[1].Paint.Texture.Key.Thickness != 1 {
			t.Error("via not drawn with the via checkerboard")
		}
		if shapes[0].Paint.Alpha != 0.9 {
			t.Errorf("wire alpha = %g, want 0.9", shapes[0].Paint.Alpha)
		}
	})

	t.Run("sorted top to bottom", func(t *testing.T) {
		s := testSettings()
		s.SortLayerBottomToTop = false
		f := newFixture(t, testDesign(), nil, s)
		f.reconcile(t)

		shapes := f.engine.Group(GroupWires).Children()
		if got := shapes[0].Rect.Y; got != 195 || shapes[0].Data.(Entity).Kind != EntityWire {
			t.Errorf("first shape is not the metal2 segment")
		}
		if got := shapes[2].Rect.Y; got != 145 {
			t.Errorf("last shape at y %g, want 145", got)
		}
	})

	t.Run("vias hidden", func(t *testing.T) {
		vis := DefaultVisibility()
		vis.SetVisible(Vias, false)
		f := newFixture(t, testDesign(), vis, testSettings())
		f.reconcile(t)

		for _, n := range f.engine.Group(GroupWires).Children() {
			if n.Data.(Entity).Kind == EntityVia {
				t.Error("via drawn while hidden")
			}
		}
	})

	t.Run("special wires", func(t *testing.T) {
		vis := DefaultVisibility()
		vis.SetVisible(SpecialWires, true)
		f := newFixture(t, testDesign(), vis, testSettings())
		f.reconcile(t)

		shapes := f.engine.Group(GroupWires).Children()
		if len(shapes) != 5 {
			t.Fatalf("got %d wire shapes, want 5", len(shapes))
		}
		special := 0
		for _, n := range shapes {
			e := n.Data.(Entity)
			if (e.Kind == EntityWire && e.Net.IsSpecial) || (e.Kind == EntityVia && n.Rect.Y == 40) {
				special++
			}
		}
		if special != 2 {
			t.Errorf("got %d special shapes, want 2", special)
		}
	})

	t.Run("no group when every source is hidden", func(t *testing.T) {
		vis := DefaultVisibility()
		vis.SetVisible(Wires, false)
		vis.SetVisible(Vias, false)
		f := newFixture(t, testDesign(), vis, testSettings())
		f.reconcile(t)

		if f.engine.Group(GroupWires) != nil {
			t.Error("wires group built with every source hidden")
		}
	})
}

func TestShapeLayer(t *testing.T) {
	b := &builder{index: design.NewIndex(testDesign())}
	via := &design.Ref{ID: 40}
	tests := []struct {
		name  string
		layer *design.Ref
		via   *design.Ref
		want  int
	}{
		{"own layer", &design.Ref{ID: 3}, via, 3},
		{"via cut layer", nil, via, 2},
		{"fallback", nil, nil, fallbackLayer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.shapeLayer(tt.layer, tt.via)
			if err != nil {
				t.Fatalf("shapeLayer() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("shapeLayer() = %d, want %d", got, tt.want)
			}
		})
	}

	if _, err := b.shapeLayer(nil, &design.Ref{ID: 99}); err == nil {
		t.Error("unknown via resolved")
	}
}

func TestViaEdgeWithoutLayer(t *testing.T) {
	d := testDesign()
	d.Nets[0].Edges = []design.Edge{
		{Rect: &design.Rect{XMin: 10, YMin: 600, XMax: 20, YMax: 610}, Via: &design.Ref{ID: 40}},
		{Rect: &design.Rect{XMin: 10, YMin: 600, XMax: 20, YMax: 610}, Via: &design.Ref{ID: 99}},
	}
	f := newFixture(t, d, nil, testSettings())
	report := f.reconcile(t)

	if report.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1 for the unknown via", report.Skipped)
	}
	if n := len(f.engine.Group(GroupWires).Children()); n != 1 {
		t.Errorf("got %d wire shapes, want 1", n)
	}
}

func TestPorts(t *testing.T) {
	t.Run("plain ports only", func(t *testing.T) {
		f := newFixture(t, testDesign(), nil, testSettings())
		f.reconcile(t)

		ports := f.engine.Group(GroupPorts).Children()
		if len(ports) != 1 || ports[0].Name != "clk" {
			t.Fatalf("ports = %d, want only clk", len(ports))
		}
		want := geometry.ScreenRect{X: 0, Y: 240, Width: 10, Height: 10}
		if ports[0].Rect != want {
			t.Errorf("clk rect = %+v, want %+v", ports[0].Rect, want)
		}
		if len(ports[0].Children()) != 0 {
			t.Error("indicators drawn while disabled")
		}
	})

	t.Run("indicators", func(t *testing.T) {
		s := testSettings()
		s.DisablePortIndicators = false
		vis := DefaultVisibility()
		vis.SetVisible(SpecialWires, true)
		f := newFixture(t, testDesign(), vis, s)
		f.reconcile(t)

		ports := f.engine.Group(GroupPorts).Children()
		if len(ports) != 2 {
			t.Fatalf("got %d ports, want 2", len(ports))
		}
		clk, vdd := ports[0], ports[1]

		if n := len(clk.Children()); n != 1 {
			t.Fatalf("input port has %d indicators, want 1", n)
		}
		tri := clk.Children()[0]
		if tri.Path[1].X != -8 || tri.Path[1].Y != 245 {
			t.Errorf("input indicator tip = %v, want (-8, 245)", tri.Path[1])
		}
		if tri.Handler != clk.Handler {
			t.Error("indicator does not share the port handler")
		}
		if n := len(vdd.Children()); n != 2 {
			t.Errorf("inout port has %d indicators, want 2", n)
		}
	})

	t.Run("special ports hidden with ports", func(t *testing.T) {
		vis := DefaultVisibility()
		vis.SetVisible(Ports, false)
		vis.SetVisible(SpecialWires, true)
		f := newFixture(t, testDesign(), vis, testSettings())
		f.reconcile(t)

		ports := f.engine.Group(GroupPorts).Children()
		if len(ports) != 1 || ports[0].Name != "VDD" {
			t.Errorf("expected only the special port")
		}
	})
}

func TestNearestSide(t *testing.T) {
	tests := []struct {
		name string
		r    geometry.ScreenRect
		want Side
	}{
		{"left", geometry.ScreenRect{X: 2, Y: 200}, SideLeft},
		{"right", geometry.ScreenRect{X: 495, Y: 200}, SideRight},
		{"top", geometry.ScreenRect{X: 200, Y: 1}, SideTop},
		{"bottom", geometry.ScreenRect{X: 200, Y: 498}, SideBottom},
		{"left beats top", geometry.ScreenRect{X: 5, Y: 5}, SideLeft},
		{"right beats bottom", geometry.ScreenRect{X: 490, Y: 490}, SideRight},
		{"all equal picks left", geometry.ScreenRect{X: 250, Y: 250}, SideLeft},
		{"left beats top and bottom", geometry.ScreenRect{X: 100, Y: 250}, SideLeft},
		{"wide box touching right", geometry.ScreenRect{X: 460, Y: 30, Width: 40, Height: 10}, SideRight},
		{"tall box touching bottom", geometry.ScreenRect{X: 30, Y: 460, Width: 10, Height: 40}, SideBottom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NearestSide(tt.r, 500, 500); got != tt.want {
				t.Errorf("NearestSide() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIndicatorDirections(t *testing.T) {
	tests := []struct {
		dir  design.IoType
		side Side
		want []Side
	}{
		{design.IoInput, SideLeft, []Side{SideLeft}},
		{design.IoOutput, SideLeft, []Side{SideRight}},
		{design.IoOutput, SideTop, []Side{SideBottom}},
		{design.IoInOut, SideBottom, []Side{SideBottom, SideTop}},
		{design.IoFeedThru, SideRight, nil},
	}
	for _, tt := range tests {
		t.Run(tt.dir.String()+"/"+tt.side.String(), func(t *testing.T) {
			got := indicatorDirections(tt.dir, tt.side)
			if len(got) != len(tt.want) {
				t.Fatalf("indicatorDirections() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("indicatorDirections() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestGrids(t *testing.T) {
	vis := DefaultVisibility()
	vis.SetVisible(Tracks, true)
	vis.SetVisible(GCells, true)
	vis.SetVisible(Rows, true)
	f := newFixture(t, testDesign(), vis, testSettings())
	f.reconcile(t)

	tracks := f.engine.Group(GroupTracks).Children()
	if len(tracks) != 3 {
		t.Fatalf("got %d track lines, want 3", len(tracks))
	}
	if p := tracks[0].Path; p[0].X != 250 || p[0].Y != 0 || p[1].X != 250 || p[1].Y != 500 {
		t.Errorf("vertical track = %v", p)
	}
	if p := tracks[1].Path; p[0].Y != 375 || p[0].X != 0 || p[1].X != 500 {
		t.Errorf("first horizontal track = %v", p)
	}

	gcells := f.engine.Group(GroupGCells).Children()
	if len(gcells) != 3 {
		t.Fatalf("got %d gcell lines, want 3", len(gcells))
	}
	if x := gcells[1].Path[0].X; x != 250 {
		t.Errorf("second gcell line at x %g, want 250", x)
	}
	if y := gcells[2].Path[0].Y; y != 500 {
		t.Errorf("horizontal gcell line at y %g, want 500", y)
	}

	rows := f.engine.Group(GroupRows).Children()
	if len(rows) != 1 || rows[0].Rect.Y != 450 || rows[0].Rect.Height != 50 {
		t.Errorf("row not drawn at the bottom of the die")
	}

	if got := rootOrder(f.engine); !equalStrings(got, []string{"rows", "cells", "wires", "gcells", "tracks", "chip", "ports"}) {
		t.Errorf("root order = %v", got)
	}
}

func TestPatternLines(t *testing.T) {
	tests := []struct {
		name    string
		origins []int
		counts  []int
		steps   []int
		want    []int
		wantErr bool
	}{
		{"single", []int{0}, []int{3}, []int{10}, []int{0, 10}, false},
		{"two patterns", []int{0, 100}, []int{2, 3}, []int{50, 20}, []int{0, 100, 120}, false},
		{"one line", []int{5}, []int{1}, []int{10}, nil, false},
		{"empty", nil, nil, nil, nil, false},
		{"mismatch", []int{0, 1}, []int{2}, []int{1, 1}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := patternLines(tt.origins, tt.counts, tt.steps)
			if (err != nil) != tt.wantErr {
				t.Fatalf("patternLines() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("patternLines() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("patternLines() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestActivate(t *testing.T) {
	f := newFixture(t, testDesign(), nil, testSettings())
	f.reconcile(t)

	hit := f.engine.Activate(75, 400)
	if hit == nil || hit.Name != "u1" {
		t.Fatalf("Activate() hit %v, want u1", hit)
	}
	if len(f.sel.selected) != 1 || f.sel.selected[0].Cell.Name != "u1" {
		t.Errorf("selected = %v", f.sel.selected)
	}

	f.engine.Activate(75, 400)
	if len(f.sel.inspected) != 1 {
		t.Errorf("double click did not inspect")
	}

	// a second click after the window expires is another single click
	f.engine.Activate(75, 400)
	f.clock.fireAll()
	f.engine.Activate(75, 400)
	if len(f.sel.selected) != 3 || len(f.sel.inspected) != 1 {
		t.Errorf("selected %d, inspected %d after timeout", len(f.sel.selected), len(f.sel.inspected))
	}

	if hit := f.engine.Activate(300, 480); hit != nil {
		t.Errorf("empty area hit %q", hit.Name)
	}

	// the camera maps surface clicks back onto the canvas
	f.engine.Fit()
	f.engine.Pan(100, 0)
	if hit := f.engine.Activate(175, 400); hit == nil || hit.Name != "u1" {
		t.Errorf("panned Activate() missed the cell")
	}
}

func TestViewportControls(t *testing.T) {
	f := newFixture(t, testDesign(), nil, testSettings())

	f.engine.ZoomIn()
	if z := f.engine.Camera().Zoom; z != 1 {
		t.Errorf("ZoomIn without a scene changed zoom to %g", z)
	}

	f.reconcile(t)
	f.engine.ZoomIn()
	if z := f.engine.Camera().Zoom; math.Abs(z-1.1) > 1e-9 {
		t.Errorf("zoom after ZoomIn = %g, want 1.1", z)
	}
	f.engine.ZoomOut()
	if z := f.engine.Camera().Zoom; math.Abs(z-1) > 1e-9 {
		t.Errorf("zoom after ZoomOut = %g, want 1", z)
	}

	f.engine.ZoomAt(100, 100, 2)
	f.engine.Fit()
	if cam := f.engine.Camera(); cam.Zoom != 1 || cam.PanX != 0 || cam.PanY != 0 {
		t.Errorf("Fit left camera at %+v", cam)
	}

	if p := f.engine.ScreenToWorld(250, 250); p.X != 500 || p.Y != 500 {
		t.Errorf("ScreenToWorld(250, 250) = %+v, want die center", p)
	}
}

func TestExportImage(t *testing.T) {
	f := newFixture(t, testDesign(), nil, testSettings())

	if err := f.engine.ExportImage(&bytes.Buffer{}, scene.FormatPNG); !errors.Is(err, ErrNoSurface) {
		t.Errorf("ExportImage before a pass error = %v, want ErrNoSurface", err)
	}

	f.reconcile(t)
	var buf bytes.Buffer
	if err := f.engine.ExportImage(&buf, scene.FormatPNG); err != nil {
		t.Fatalf("ExportImage() error = %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 500 || b.Dy() != 500 {
		t.Errorf("image %dx%d, want 500x500", b.Dx(), b.Dy())
	}

	if err := f.engine.ExportImage(&bytes.Buffer{}, scene.Format("bmp")); !errors.Is(err, scene.ErrUnsupportedFormat) {
		t.Errorf("ExportImage(bmp) error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestSetDesign(t *testing.T) {
	f := newFixture(t, testDesign(), nil, testSettings())
	f.reconcile(t)

	d := testDesign()
	d.Instances = nil
	f.engine.SetDesign(d)
	if f.host.cleared != 1 {
		t.Errorf("ClearSelection called %d times, want 1", f.host.cleared)
	}
	f.reconcile(t)
	if n := len(f.engine.Group(GroupCells).Children()); n != 0 {
		t.Errorf("got %d cells from the new design, want 0", n)
	}
}
