package viewer

import (
	"errors"
	"fmt"

	"github.com/OpenTraceLab/edaview/pkg/design"
	"github.com/OpenTraceLab/edaview/pkg/geometry"
	"github.com/OpenTraceLab/edaview/pkg/scene"
	"github.com/OpenTraceLab/edaview/pkg/settings"
)

var errIncomplete = errors.New("incomplete shape")

func errMissing(what string) error {
	return fmt.Errorf("viewer: missing %s: %w", what, errIncomplete)
}

func (b *builder) cells() *scene.Node {
	group := scene.NewGroup(GroupCells.String())
	st := b.settings.Shapes.Cell
	showShapes := b.vis.Visible(CellShapes)

	for i := range b.design.Instances {
		cell := &b.design.Instances[i]
		if cell.BoundingBox == nil {
			b.skip(GroupCells, cell.ID, errMissing("bounding box"))
			continue
		}
		r := b.screen.ToScreenRect(*cell.BoundingBox)

		// children are drawn relative to the cell's top left corner
		box := scene.NewRect(geometry.ScreenRect{Width: r.Width, Height: r.Height}, scene.Paint{
			Fill:        b.paints.cellFill,
			HasFill:     true,
			Alpha:       st.Opacity,
			Stroke:      b.paints.cellStroke,
			StrokeWidth: st.StrokeWidth,
		})
		box.Name = cell.Name
		box.X, box.Y = r.X, r.Y
		entity := Entity{Kind: EntityCell, Cell: cell}
		box.Data = entity
		box.Handler = b.handler(entity)

		if showShapes {
			b.cellShapes(box, cell, r)
		}
		if b.settings.DisplayNames {
			b.cellLabel(box, cell, r)
		}
		group.AddChild(box)
	}
	return group
}

// cellShapes adds the pin geometries and obstructions of cell, oriented and
// placed at the cell origin.
func (b *builder) cellShapes(box *scene.Node, cell *design.Instance, r geometry.ScreenRect) {
	if cell.Origin == nil {
		b.skip(GroupCells, cell.ID, errMissing("origin"))
		return
	}
	for _, ref := range cell.Pins {
		pin, err := b.index.Pin(ref.ID)
		if err != nil {
			b.skip(GroupCells, ref.ID, err)
			continue
		}
		boxes, err := b.index.Boxes(pin.Geometries)
		if err != nil {
			b.skip(GroupCells, pin.ID, err)
			continue
		}
		for _, shape := range boxes {
			b.cellShape(box, cell, r, shape, b.settings.Shapes.PinShape)
		}
	}
	if cell.Obstructions != nil {
		for _, shape := range cell.Obstructions.Boxes {
			b.cellShape(box, cell, r, shape, b.settings.Shapes.Obstruction)
		}
	}
}

func (b *builder) cellShape(box *scene.Node, cell *design.Instance, r geometry.ScreenRect, shape design.Rect, st settings.ShapeStyle) {
	placed, err := geometry.TransformRect(shape, cell.Orientation, *cell.Origin)
	if err != nil {
		b.skip(GroupCells, cell.ID, err)
		return
	}
	layerID, ok := design.RefID(shape.Layer)
	if !ok {
		b.skip(GroupCells, shape.ID, errMissing("layer"))
		return
	}
	ls, err := b.layerStyle(layerID)
	if err != nil {
		b.skip(GroupCells, shape.ID, err)
		return
	}

	sr := b.screen.ToScreenRect(placed)
	sr.X -= r.X
	sr.Y -= r.Y
	box.AddChild(scene.NewRect(sr, b.hatched(ls, b.settings.Shapes.Layer.HatchLineThickness, st)))
}

// cellLabel centers the cell name, shortened with a leading ellipsis to fit.
func (b *builder) cellLabel(box *scene.Node, cell *design.Instance, r geometry.ScreenRect) {
	if b.fonts == nil || cell.Name == "" {
		return
	}
	ts := b.settings.Shapes.Text
	text := scene.Ellipsize(cell.Name, r.Width, ts.Padding, ts.FontSize, b.fonts)
	box.AddChild(scene.NewText(r.Width/2, r.Height/2, scene.Label{
		Text:     text,
		Size:     ts.FontSize,
		Color:    b.paints.text,
		AnchorX:  0.5,
		AnchorY:  0.5,
		Measured: b.fonts.Measure(text, ts.FontSize),
	}))
}
