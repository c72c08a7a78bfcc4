package viewer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/edaview/pkg/design"
)

// EntityKind identifies what a clicked shape represents
type EntityKind int

const (
	EntityCell EntityKind = iota
	EntityWire
	EntityVia
	EntityPort
	EntityLayer
)

func (k EntityKind) String() string {
	switch k {
	case EntityCell:
		return "Cell"
	case EntityWire:
		return "Wire"
	case EntityVia:
		return "Via"
	case EntityPort:
		return "Port"
	case EntityLayer:
		return "Layer"
	}
	return fmt.Sprintf("EntityKind(%d)", int(k))
}

// Entity is a design element attached to an interactive shape. Exactly one
// pointer, matching Kind, is set.
type Entity struct {
	Kind  EntityKind
	Cell  *design.Instance
	Net   *design.Net
	Via   *design.Via
	Port  *design.Pin
	Layer *design.Layer
}

// Name returns the entity's design name.
func (e Entity) Name() string {
	switch e.Kind {
	case EntityCell:
		return e.Cell.Name
	case EntityWire:
		return e.Net.Name
	case EntityVia:
		return e.Via.Name
	case EntityPort:
		return e.Port.Name
	case EntityLayer:
		return e.Layer.Name
	}
	return ""
}

// Label is the short selection text, e.g. "Cell: u1".
func (e Entity) Label() string {
	return e.Kind.String() + ": " + e.Name()
}

// Selection receives shape activations. Select is called on every click and
// Inspect on a double click.
type Selection interface {
	Select(e Entity)
	Inspect(e Entity)
}

// Property is one line of an entity's details
type Property struct {
	Name  string
	Value string
}

// Details is the inspection view of an entity
type Details struct {
	Title      string
	Properties []Property
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// Describe lists the properties shown when an entity is inspected. References
// that do not resolve are shown as "#id".
func Describe(idx *design.Index, e Entity) Details {
	d := Details{Title: e.Label()}
	add := func(name, value string) {
		d.Properties = append(d.Properties, Property{Name: name, Value: value})
	}
	layerName := func(r *design.Ref) string {
		id, _ := design.RefID(r)
		if l, err := idx.Layer(id); err == nil {
			return l.Name
		}
		return "#" + strconv.Itoa(id)
	}

	switch e.Kind {
	case EntityCell:
		c := e.Cell
		add("Name", c.Name)
		add("Master", c.Master)
		add("Is Placed", yesNo(c.IsPlaced))
		if c.Location != nil {
			add("Location", fmt.Sprintf("(%d, %d)", c.Location.X, c.Location.Y))
		}
		add("Orientation", c.Orientation.String())
		add("Type", c.MasterType.String())
		add("Number of Pins", strconv.Itoa(len(c.Pins)))

	case EntityVia:
		v := e.Via
		add("Name", v.Name)
		if v.TopLayer != nil {
			add("Upper Layer", layerName(v.TopLayer))
		}
		if v.CutLayer != nil {
			add("Cut Layer", layerName(v.CutLayer))
		}
		if v.BottomLayer != nil {
			add("Bottom Layer", layerName(v.BottomLayer))
		}

	case EntityWire:
		n := e.Net
		var layers []string
		segments, vias := 0, 0
		if n.IsSpecial {
			for _, ref := range n.SpecialBoxes {
				g, err := idx.Geometry(ref.ID)
				if err != nil {
					continue
				}
				for _, box := range g.Boxes {
					if box.Via != nil {
						vias++
						if v, err := idx.Via(box.Via.ID); err == nil {
							layers = append(layers, v.Name)
						}
					} else {
						segments++
						layers = append(layers, layerName(box.Layer))
					}
				}
			}
		} else {
			for _, edge := range n.Edges {
				layers = append(layers, layerName(edge.Layer))
				if edge.Via != nil {
					vias++
				} else {
					segments++
				}
			}
		}
		if len(layers) > 4 {
			layers = append(append(layers[:2:2], "..."), layers[len(layers)-2:]...)
		}
		add("Name", n.Name)
		add("Is Routed", yesNo(n.IsRouted))
		add("Is Special", yesNo(n.IsSpecial))
		add("Layers", strings.Join(layers, ", "))
		add("Number of segments", strconv.Itoa(segments))
		add("Number of vias", strconv.Itoa(vias))
		add("Number of pins", strconv.Itoa(len(n.Pins)))

	case EntityPort:
		add("Name", e.Port.Name)
		add("Direction", e.Port.Direction.String())

	case EntityLayer:
		l := e.Layer
		add("Name", l.Name)
		add("Type", l.Type.String())
		add("Direction", l.Direction.String())
		add("Width", strconv.Itoa(l.Width))
		add("Spacing", strconv.Itoa(l.Spacing))
		if l.UpperLayer != nil {
			add("Upper Layer", layerName(l.UpperLayer))
		}
		if l.LowerLayer != nil {
			add("Lower Layer", layerName(l.LowerLayer))
		}
	}
	return d
}

// Search returns the cells, nets and ports whose name contains query,
// ignoring case, in that order. At most limit entities are returned; a limit
// of zero or less means no limit. An empty query matches nothing.
func Search(d *design.Design, query string, limit int) []Entity {
	query = strings.ToLower(strings.TrimSpace(query))
	if d == nil || query == "" {
		return nil
	}
	var out []Entity
	add := func(name string, e Entity) bool {
		if !strings.Contains(strings.ToLower(name), query) {
			return true
		}
		out = append(out, e)
		return limit <= 0 || len(out) < limit
	}
	for i := range d.Instances {
		if !add(d.Instances[i].Name, Entity{Kind: EntityCell, Cell: &d.Instances[i]}) {
			return out
		}
	}
	for i := range d.Nets {
		if !add(d.Nets[i].Name, Entity{Kind: EntityWire, Net: &d.Nets[i]}) {
			return out
		}
	}
	for i := range d.BlockPins {
		if !add(d.BlockPins[i].Name, Entity{Kind: EntityPort, Port: &d.BlockPins[i]}) {
			return out
		}
	}
	return out
}
