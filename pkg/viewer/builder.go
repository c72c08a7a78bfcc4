package viewer

import (
	"image/color"
	"time"

	"github.com/OpenTraceLab/edaview/pkg/design"
	"github.com/OpenTraceLab/edaview/pkg/geometry"
	"github.com/OpenTraceLab/edaview/pkg/scene"
	"github.com/OpenTraceLab/edaview/pkg/settings"
	"github.com/OpenTraceLab/edaview/pkg/style"
)

// paints holds the parsed color settings of one pass
type paints struct {
	background  color.NRGBA
	chipStroke  color.NRGBA
	cellFill    color.NRGBA
	cellStroke  color.NRGBA
	portFill    color.NRGBA
	portStroke  color.NRGBA
	rowStroke   color.NRGBA
	gcellStroke color.NRGBA
	text        color.NRGBA
}

func newPaints(s *settings.Settings) (paints, error) {
	var p paints
	sh := s.Shapes
	fields := []struct {
		dst *color.NRGBA
		src string
	}{
		{&p.background, sh.Chip.Fill},
		{&p.chipStroke, sh.Chip.Stroke},
		{&p.cellFill, sh.Cell.Fill},
		{&p.cellStroke, sh.Cell.Stroke},
		{&p.portFill, sh.Port.Fill},
		{&p.portStroke, sh.Port.Stroke},
		{&p.rowStroke, sh.Row.Stroke},
		{&p.gcellStroke, sh.GCell.Stroke},
		{&p.text, sh.Text.Fill},
	}
	for _, f := range fields {
		c, err := settings.Color(f.src)
		if err != nil {
			return paints{}, err
		}
		*f.dst = c
	}
	return p, nil
}

// builder constructs group nodes for one reconcile pass
type builder struct {
	design    *design.Design
	index     *design.Index
	vis       *Visibility
	settings  *settings.Settings
	paints    paints
	screen    geometry.ScreenConfig
	layers    map[int]style.LayerStyle
	textures  *style.TextureCache
	clock     scene.Clock
	timeout   time.Duration
	fonts     *scene.Fonts
	selection Selection

	skipped int
}

func (b *builder) build(g Group) *scene.Node {
	switch g {
	case GroupRows:
		return b.rows()
	case GroupCells:
		return b.cells()
	case GroupWires:
		return b.wires()
	case GroupGCells:
		return b.gcells()
	case GroupTracks:
		return b.tracks()
	case GroupChip:
		return b.chip()
	case GroupPorts:
		return b.ports()
	}
	return scene.NewGroup(g.String())
}

// skip records a shape that could not be built. The rest of the group is unaffected.
func (b *builder) skip(g Group, id int, err error) {
	b.skipped++
	Logger().Warn("skipping shape", "group", g.String(), "id", id, "err", err)
}

// handler returns a click handler that reports e to the selection.
func (b *builder) handler(e Entity) *scene.Handler {
	var onClick, onDoubleClick func()
	if sel := b.selection; sel != nil {
		onClick = func() { sel.Select(e) }
		onDoubleClick = func() { sel.Inspect(e) }
	}
	return scene.NewHandler(onClick, onDoubleClick, b.timeout, b.clock)
}

func (b *builder) layerStyle(id int) (style.LayerStyle, error) {
	ls, ok := b.layers[id]
	if !ok {
		return style.LayerStyle{}, &design.ReferenceError{Kind: "layer", ID: id}
	}
	return ls, nil
}

// texture returns a shared hatch texture; the node holding it releases it on destroy.
func (b *builder) texture(c color.NRGBA, thickness int, pattern style.PatternStyle) *style.Texture {
	return b.textures.Get(style.TextureKey{
		Color:      c,
		Background: style.DefaultBackground,
		Thickness:  thickness,
		Style:      pattern,
		Simple:     b.settings.RenderSimpleWireShapes,
	})
}

// hatched returns the paint of a layer shape.
func (b *builder) hatched(ls style.LayerStyle, thickness int, st settings.ShapeStyle) scene.Paint {
	return scene.Paint{
		Texture:     b.texture(ls.Color, thickness, ls.Pattern),
		Alpha:       st.Opacity,
		Stroke:      ls.Color,
		StrokeWidth: st.StrokeWidth,
	}
}

func (b *builder) chip() *scene.Node {
	group := scene.NewGroup(GroupChip.String())
	r := b.screen.ToScreenRect(*b.design.Die)
	group.AddChild(scene.NewRect(r, scene.Paint{
		Stroke:      b.paints.chipStroke,
		StrokeWidth: b.settings.Shapes.Chip.StrokeWidth,
	}))
	return group
}

func (b *builder) rows() *scene.Node {
	group := scene.NewGroup(GroupRows.String())
	st := b.settings.Shapes.Row
	for i := range b.design.Rows {
		row := &b.design.Rows[i]
		if row.BoundingBox == nil {
			b.skip(GroupRows, row.ID, errMissing("bounding box"))
			continue
		}
		n := scene.NewRect(b.screen.ToScreenRect(*row.BoundingBox), scene.Paint{
			Stroke:      b.paints.rowStroke,
			StrokeWidth: st.StrokeWidth,
		})
		n.Name = row.Name
		group.AddChild(n)
	}
	return group
}
