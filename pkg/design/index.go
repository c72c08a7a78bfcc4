package design

import (
	"errors"
	"fmt"
)

// ErrUnresolvedReference is returned when a referenced ID has no entity in the index.
var ErrUnresolvedReference = errors.New("unresolved reference")

// ReferenceError records which kind of entity could not be resolved.
type ReferenceError struct {
	Kind string
	ID   int
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("design: %s %d: %v", e.Kind, e.ID, ErrUnresolvedReference)
}

func (e *ReferenceError) Unwrap() error { return ErrUnresolvedReference }

func unresolved(kind string, id int) error {
	return &ReferenceError{Kind: kind, ID: id}
}

// Index provides ID lookup over a Design. It is built once per render pass
// and holds pointers into the design's slices.
type Index struct {
	layers     map[int]*Layer
	pins       map[int]*Pin
	vias       map[int]*Via
	geometries map[int]*Geometry
	instances  map[int]*Instance
	nets       map[int]*Net
}

// NewIndex builds the lookup tables for d. Routing vias and via definitions
// share one ID space; a via definition wins on collision.
func NewIndex(d *Design) *Index {
	idx := &Index{
		layers:     make(map[int]*Layer, len(d.Layers)),
		pins:       make(map[int]*Pin, len(d.InstancePins)+len(d.BlockPins)),
		vias:       make(map[int]*Via, len(d.RoutingVias)+len(d.ViaDefinitions)),
		geometries: make(map[int]*Geometry, len(d.Geometries)),
		instances:  make(map[int]*Instance, len(d.Instances)),
		nets:       make(map[int]*Net, len(d.Nets)),
	}
	for i := range d.Layers {
		idx.layers[d.Layers[i].ID] = &d.Layers[i]
	}
	for i := range d.InstancePins {
		idx.pins[d.InstancePins[i].ID] = &d.InstancePins[i]
	}
	for i := range d.BlockPins {
		idx.pins[d.BlockPins[i].ID] = &d.BlockPins[i]
	}
	for i := range d.RoutingVias {
		idx.vias[d.RoutingVias[i].ID] = &d.RoutingVias[i]
	}
	for i := range d.ViaDefinitions {
		idx.vias[d.ViaDefinitions[i].ID] = &d.ViaDefinitions[i]
	}
	for i := range d.Geometries {
		idx.geometries[d.Geometries[i].ID] = &d.Geometries[i]
	}
	for i := range d.Instances {
		idx.instances[d.Instances[i].ID] = &d.Instances[i]
	}
	for i := range d.Nets {
		idx.nets[d.Nets[i].ID] = &d.Nets[i]
	}
	return idx
}

// Layer looks up a layer by ID.
func (idx *Index) Layer(id int) (*Layer, error) {
	if l, ok := idx.layers[id]; ok {
		return l, nil
	}
	return nil, unresolved("layer", id)
}

// Pin looks up an instance pin or block pin by ID.
func (idx *Index) Pin(id int) (*Pin, error) {
	if p, ok := idx.pins[id]; ok {
		return p, nil
	}
	return nil, unresolved("pin", id)
}

// Via looks up a routing via or via definition by ID.
func (idx *Index) Via(id int) (*Via, error) {
	if v, ok := idx.vias[id]; ok {
		return v, nil
	}
	return nil, unresolved("via", id)
}

// Geometry looks up a shared geometry by ID.
func (idx *Index) Geometry(id int) (*Geometry, error) {
	if g, ok := idx.geometries[id]; ok {
		return g, nil
	}
	return nil, unresolved("geometry", id)
}

// Instance looks up a cell instance by ID.
func (idx *Index) Instance(id int) (*Instance, error) {
	if c, ok := idx.instances[id]; ok {
		return c, nil
	}
	return nil, unresolved("instance", id)
}

// Net looks up a net by ID.
func (idx *Index) Net(id int) (*Net, error) {
	if n, ok := idx.nets[id]; ok {
		return n, nil
	}
	return nil, unresolved("net", id)
}

// Boxes resolves a list of geometry references into their boxes, in order.
func (idx *Index) Boxes(refs []Ref) ([]Rect, error) {
	var boxes []Rect
	for _, r := range refs {
		g, err := idx.Geometry(r.ID)
		if err != nil {
			return nil, err
		}
		boxes = append(boxes, g.Boxes...)
	}
	return boxes, nil
}

// LayerCount returns the number of indexed layers.
func (idx *Index) LayerCount() int { return len(idx.layers) }
