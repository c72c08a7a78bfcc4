package viewer

import (
	"math"
	"testing"

	"github.com/OpenTraceLab/edaview/pkg/design"
)

func TestDefaultVisibility(t *testing.T) {
	v := DefaultVisibility()
	for _, c := range Categories() {
		want := c == Cells || c == Ports || c == Wires || c == Vias
		if v.Visible(c) != want {
			t.Errorf("Visible(%v) = %v, want %v", c, v.Visible(c), want)
		}
		if v.Dirty(c) {
			t.Errorf("%v dirty by default", c)
		}
	}
	if v.Entry(SpecialWires).Name != "Special Wires" {
		t.Errorf("Entry name = %q", v.Entry(SpecialWires).Name)
	}
}

func TestVisibilityToggle(t *testing.T) {
	v := DefaultVisibility()

	v.SetVisible(Cells, true)
	if v.Dirty(Cells) {
		t.Error("unchanged value marked dirty")
	}

	v.Toggle(Tracks)
	if !v.Visible(Tracks) || !v.Dirty(Tracks) {
		t.Error("Toggle did not show and dirty tracks")
	}
	if !v.AnyDirty() {
		t.Error("AnyDirty() = false")
	}

	v.SetDisabled(Rows, true)
	v.Toggle(Rows)
	if v.Visible(Rows) || v.Dirty(Rows) {
		t.Error("disabled category changed")
	}

	c := v.Clone()
	v.ClearDirty()
	if v.AnyDirty() {
		t.Error("dirty after ClearDirty")
	}
	if !c.Dirty(Tracks) {
		t.Error("Clone shares state with its source")
	}
}

func TestVisibilityApply(t *testing.T) {
	tests := []struct {
		spec    string
		visible []Category
		wantErr bool
	}{
		{spec: "", visible: []Category{Cells, Ports, Wires, Vias}},
		{spec: "+tracks", visible: []Category{Cells, Ports, Wires, Vias, Tracks}},
		{spec: "-ports,+specialWires", visible: []Category{Cells, Wires, Vias, SpecialWires}},
		{spec: "cells,rows", visible: []Category{Cells, Rows}},
		{spec: "cells, +GCells", visible: []Category{Cells, GCells}},
		{spec: "all,-cellShapes", visible: []Category{Cells, Ports, Wires, Vias, Tracks, Rows, GCells, SpecialWires}},
		{spec: "none", visible: nil},
		{spec: "bogus", wantErr: true},
		{spec: "+bogus", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			v := DefaultVisibility()
			err := v.Apply(tt.spec)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Apply(%q) error = %v, wantErr %v", tt.spec, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			want := make(map[Category]bool)
			for _, c := range tt.visible {
				want[c] = true
			}
			for _, c := range Categories() {
				if v.Visible(c) != want[c] {
					t.Errorf("Visible(%v) = %v, want %v", c, v.Visible(c), want[c])
				}
			}
		})
	}
}

func TestParseCategory(t *testing.T) {
	for _, c := range Categories() {
		got, err := ParseCategory(c.Key())
		if err != nil || got != c {
			t.Errorf("ParseCategory(%q) = %v, %v", c.Key(), got, err)
		}
	}
	if _, err := ParseCategory("specialwires"); err != nil {
		t.Errorf("case-insensitive match failed: %v", err)
	}
}

func TestGroupSources(t *testing.T) {
	if len(GroupChip.Sources()) != 0 {
		t.Error("chip has sources")
	}
	found := map[Group]bool{}
	for _, g := range Groups() {
		for _, c := range g.Sources() {
			if c == SpecialWires {
				found[g] = true
			}
		}
	}
	if !found[GroupWires] || !found[GroupPorts] || len(found) != 2 {
		t.Errorf("special wires feed %v, want wires and ports", found)
	}

	for _, g := range Groups() {
		src := map[Category]bool{}
		for _, c := range g.Sources() {
			src[c] = true
		}
		for _, c := range g.ShownBy() {
			if !src[c] {
				t.Errorf("%v is shown by %v, which does not rebuild it", g, c)
			}
		}
	}
	if shown := GroupCells.ShownBy(); len(shown) != 1 || shown[0] != Cells {
		t.Errorf("cells shown by %v, want [Cells]", shown)
	}
}

func TestCameraZoomAt(t *testing.T) {
	tests := []struct {
		name   string
		x, y   float64
		factor float64
		zoom   float64
	}{
		{"in", 120, 80, 2, 2},
		{"out", 300, 10, 0.5, 0.5},
		{"clamped low", 10, 10, 0.001, minZoom},
		{"clamped high", 10, 10, 1e6, maxZoom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCamera(500, 500)
			c.Pan(15, -20)
			before := c.ScreenToWorld(tt.x, tt.y)

			c.ZoomAt(tt.x, tt.y, tt.factor)

			if c.Zoom != tt.zoom {
				t.Errorf("Zoom = %g, want %g", c.Zoom, tt.zoom)
			}
			after := c.ScreenToWorld(tt.x, tt.y)
			if math.Abs(after.X-before.X) > 1e-9 || math.Abs(after.Y-before.Y) > 1e-9 {
				t.Errorf("point under cursor moved from %v to %v", before, after)
			}
		})
	}
}

func TestCameraRoundTrip(t *testing.T) {
	c := NewCamera(800, 600)
	c.ZoomAt(400, 300, 3)
	c.Pan(-40, 25)

	s := c.WorldToScreen(123, 456)
	w := c.ScreenToWorld(s.X, s.Y)
	if math.Abs(w.X-123) > 1e-9 || math.Abs(w.Y-456) > 1e-9 {
		t.Errorf("round trip = %v", w)
	}

	m := c.Matrix()
	if m[0] != c.Zoom || m[3] != c.Zoom || m[4] != c.PanX || m[5] != c.PanY {
		t.Errorf("Matrix() = %v", m)
	}

	c.Fit()
	b := c.VisibleBounds()
	if b.X != 0 || b.Y != 0 || b.Width != 800 || b.Height != 600 {
		t.Errorf("VisibleBounds() after Fit = %+v", b)
	}
}

func TestDescribe(t *testing.T) {
	d := testDesign()
	idx := design.NewIndex(d)

	edges := make([]design.Edge, 0, 5)
	for _, l := range []int{1, 3, 1, 3, 2} {
		edges = append(edges, design.Edge{Rect: &design.Rect{}, Layer: &design.Ref{ID: l}})
	}
	edges[4].Via = &design.Ref{ID: 40}
	long := &design.Net{Name: "bus", IsRouted: true, Edges: edges}

	tests := []struct {
		name   string
		entity Entity
		title  string
		props  map[string]string
	}{
		{
			name:   "cell",
			entity: Entity{Kind: EntityCell, Cell: &d.Instances[0]},
			title:  "Cell: u1",
			props:  map[string]string{"Master": "NAND2", "Orientation": "R0", "Number of Pins": "1", "Is Placed": "No"},
		},
		{
			name:   "via",
			entity: Entity{Kind: EntityVia, Via: &d.RoutingVias[0]},
			title:  "Via: via1_0",
			props:  map[string]string{"Cut Layer": "via1"},
		},
		{
			name:   "wire",
			entity: Entity{Kind: EntityWire, Net: &d.Nets[0]},
			title:  "Wire: n1",
			props:  map[string]string{"Layers": "metal2, metal1, via1", "Number of segments": "2", "Number of vias": "1"},
		},
		{
			name:   "long wire",
			entity: Entity{Kind: EntityWire, Net: long},
			title:  "Wire: bus",
			props:  map[string]string{"Layers": "metal1, metal2, ..., metal2, via1", "Number of segments": "4"},
		},
		{
			name:   "special wire",
			entity: Entity{Kind: EntityWire, Net: &d.Nets[1]},
			title:  "Wire: VDD",
			props:  map[string]string{"Layers": "metal2, via1_0", "Is Special": "Yes", "Number of vias": "1"},
		},
		{
			name:   "port",
			entity: Entity{Kind: EntityPort, Port: &d.BlockPins[0]},
			title:  "Port: clk",
			props:  map[string]string{"Direction": design.IoInput.String()},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Describe(idx, tt.entity)
			if got.Title != tt.title {
				t.Errorf("Title = %q, want %q", got.Title, tt.title)
			}
			props := make(map[string]string, len(got.Properties))
			for _, p := range got.Properties {
				props[p.Name] = p.Value
			}
			for k, want := range tt.props {
				if props[k] != want {
					t.Errorf("%s = %q, want %q", k, props[k], want)
				}
			}
		})
	}
}

func TestDisableMissing(t *testing.T) {
	d := testDesign()
	d.GCell = nil
	d.Rows = nil

	v := DefaultVisibility()
	v.SetVisible(Rows, true)
	v.DisableMissing(d)

	for _, c := range []Category{GCells, Rows} {
		if e := v.Entry(c); !e.Disabled || e.Visible {
			t.Errorf("%v = %+v, want disabled and hidden", c, e)
		}
	}
	if e := v.Entry(Cells); e.Disabled || !e.Visible {
		t.Errorf("cells = %+v", e)
	}

	v.DisableMissing(testDesign())
	if v.Entry(Rows).Disabled {
		t.Error("rows still disabled for a design with rows")
	}
}

func TestSearch(t *testing.T) {
	d := testDesign()
	tests := []struct {
		name  string
		query string
		limit int
		want  []string
	}{
		{"empty", "  ", 0, nil},
		{"cell", "U1", 0, []string{"Cell: u1"}},
		{"net and port share a name", "vdd", 0, []string{"Wire: VDD", "Port: VDD"}},
		{"substring", "n", 0, []string{"Wire: n1", "Wire: floating"}},
		{"limited", "vdd", 1, []string{"Wire: VDD"}},
		{"no match", "xyz", 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Search(d, tt.query, tt.limit)
			labels := make([]string, len(got))
			for i, e := range got {
				labels[i] = e.Label()
			}
			if !equalStrings(labels, tt.want) {
				t.Errorf("Search(%q) = %v, want %v", tt.query, labels, tt.want)
			}
		})
	}
	if got := Search(nil, "u1", 0); got != nil {
		t.Errorf("Search(nil) = %v", got)
	}
}
