package viewer

import (
	"sort"

	"github.com/OpenTraceLab/edaview/pkg/design"
	"github.com/OpenTraceLab/edaview/pkg/scene"
	"github.com/OpenTraceLab/edaview/pkg/style"
)

// fallbackLayer is used for wire shapes that carry no layer at all
const fallbackLayer = 1

type wireShape struct {
	layer int
	node  *scene.Node
}

func (b *builder) wires() *scene.Node {
	group := scene.NewGroup(GroupWires.String())
	showSpecial := b.vis.Visible(SpecialWires)

	var shapes []wireShape
	for i := range b.design.Nets {
		net := &b.design.Nets[i]
		if !net.IsRouted || (net.IsSpecial && !showSpecial) {
			continue
		}

		if net.IsSpecial {
			for _, ref := range net.SpecialBoxes {
				g, err := b.index.Geometry(ref.ID)
				if err != nil {
					b.skip(GroupWires, ref.ID, err)
					continue
				}
				for _, rect := range g.Boxes {
					layerID, err := b.shapeLayer(rect.Layer, rect.Via)
					if err != nil {
						b.skip(GroupWires, rect.ID, err)
						continue
					}
					if n := b.wireShape(net, rect, layerID, rect.Via); n != nil {
						shapes = append(shapes, wireShape{layer: layerID, node: n})
					}
				}
			}
			continue
		}

		for _, edge := range net.Edges {
			if edge.Rect == nil {
				b.skip(GroupWires, net.ID, errMissing("edge rect"))
				continue
			}
			layerID, err := b.shapeLayer(edge.Layer, edge.Via)
			if err != nil {
				b.skip(GroupWires, net.ID, err)
				continue
			}
			if n := b.wireShape(net, *edge.Rect, layerID, edge.Via); n != nil {
				shapes = append(shapes, wireShape{layer: layerID, node: n})
			}
		}
	}

	sort.SliceStable(shapes, func(i, j int) bool {
		if b.settings.SortLayerBottomToTop {
			return shapes[i].layer < shapes[j].layer
		}
		return shapes[i].layer > shapes[j].layer
	})
	for _, s := range shapes {
		group.AddChild(s.node)
	}
	return group
}

// shapeLayer resolves the layer of a wire shape: its own layer, else the draw
// layer of its via, else fallbackLayer.
func (b *builder) shapeLayer(layer, viaRef *design.Ref) (int, error) {
	if id, ok := design.RefID(layer); ok {
		return id, nil
	}
	if viaRef != nil {
		via, err := b.index.Via(viaRef.ID)
		if err != nil {
			return 0, err
		}
		if id, ok := via.DrawLayer(); ok {
			return id, nil
		}
	}
	return fallbackLayer, nil
}

// wireShape builds one segment or via of net, or returns nil when its
// category is hidden or it cannot be resolved.
func (b *builder) wireShape(net *design.Net, rect design.Rect, layerID int, viaRef *design.Ref) *scene.Node {
	isVia := viaRef != nil
	if (isVia && !b.vis.Visible(Vias)) || (!isVia && !b.vis.Visible(Wires)) {
		return nil
	}
	ls, err := b.layerStyle(layerID)
	if err != nil {
		b.skip(GroupWires, rect.ID, err)
		return nil
	}

	r := b.screen.ToScreenRect(rect)
	sh := b.settings.Shapes
	if isVia {
		via, err := b.index.Via(viaRef.ID)
		if err != nil {
			b.skip(GroupWires, rect.ID, err)
			return nil
		}
		n := scene.NewRect(r, scene.Paint{
			Texture:     b.texture(ls.Color, sh.Via.HatchSquareLength, style.Checkerboard),
			Alpha:       sh.Wire.Opacity,
			Stroke:      ls.Color,
			StrokeWidth: sh.Via.StrokeWidth,
		})
		n.Name = via.Name
		entity := Entity{Kind: EntityVia, Via: via}
		n.Data = entity
		n.Handler = b.handler(entity)
		return n
	}

	n := scene.NewRect(r, b.hatched(ls, sh.Layer.HatchLineThickness, sh.Wire))
	n.Name = net.Name
	entity := Entity{Kind: EntityWire, Net: net}
	n.Data = entity
	n.Handler = b.handler(entity)
	return n
}
