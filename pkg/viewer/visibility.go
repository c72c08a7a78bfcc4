package viewer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/OpenTraceLab/edaview/pkg/design"
)

// Category is a user-toggleable visibility category
type Category int

const (
	Cells Category = iota
	Ports
	Wires
	Vias
	Tracks
	Rows
	GCells
	SpecialWires
	CellShapes
	numCategories
)

var categoryKeys = [numCategories]string{
	"cells", "ports", "wires", "vias", "tracks", "rows", "gcells", "specialWires", "cellShapes",
}

var categoryNames = [numCategories]string{
	"Cells", "Ports", "Wires", "Vias", "Tracks", "Rows", "G-Cells", "Special Wires", "Cell Shapes",
}

// Key returns the category's settings key, e.g. "specialWires".
func (c Category) Key() string {
	if c < 0 || c >= numCategories {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryKeys[c]
}

// String returns the display name.
func (c Category) String() string {
	if c < 0 || c >= numCategories {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

// Categories returns every category in declaration order.
func Categories() []Category {
	out := make([]Category, numCategories)
	for i := range out {
		out[i] = Category(i)
	}
	return out
}

// ParseCategory matches a key case-insensitively.
func ParseCategory(s string) (Category, error) {
	for i, k := range categoryKeys {
		if strings.EqualFold(k, s) {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("viewer: unknown layer %q", s)
}

// Entry is the visibility state of one category
type Entry struct {
	Name     string
	Visible  bool
	Index    int
	Dirty    bool
	Disabled bool
}

// Visibility holds the state of every category. The host mutates it through
// the toggle methods; the engine reads it and clears dirty flags after a pass.
type Visibility struct {
	entries [numCategories]Entry
}

// DefaultVisibility shows cells, ports, wires and vias.
func DefaultVisibility() *Visibility {
	v := &Visibility{}
	for i := range v.entries {
		c := Category(i)
		v.entries[i] = Entry{Name: c.String(), Index: i}
	}
	for _, c := range []Category{Cells, Ports, Wires, Vias} {
		v.entries[c].Visible = true
	}
	return v
}

// Clone returns an independent copy.
func (v *Visibility) Clone() *Visibility {
	c := *v
	return &c
}

// Entry returns the state of c.
func (v *Visibility) Entry(c Category) Entry { return v.entries[c] }

// Visible reports whether c is shown.
func (v *Visibility) Visible(c Category) bool { return v.entries[c].Visible }

// Dirty reports whether c changed since the last pass.
func (v *Visibility) Dirty(c Category) bool { return v.entries[c].Dirty }

// SetVisible shows or hides c and marks it dirty when the value changes.
// Disabled categories ignore the call.
func (v *Visibility) SetVisible(c Category, visible bool) {
	e := &v.entries[c]
	if e.Disabled || e.Visible == visible {
		return
	}
	e.Visible = visible
	e.Dirty = true
}

// Toggle flips c.
func (v *Visibility) Toggle(c Category) {
	v.SetVisible(c, !v.entries[c].Visible)
}

// SetDisabled locks c in its current state, e.g. when the design has no data for it.
func (v *Visibility) SetDisabled(c Category, disabled bool) {
	v.entries[c].Disabled = disabled
}

// DisableMissing disables and hides the categories d has no data for, and
// re-enables the rest.
func (v *Visibility) DisableMissing(d *design.Design) {
	special := false
	for i := range d.Nets {
		if d.Nets[i].IsSpecial {
			special = true
			break
		}
	}
	present := map[Category]bool{
		Cells:        len(d.Instances) > 0,
		CellShapes:   len(d.Instances) > 0,
		Ports:        len(d.BlockPins) > 0,
		Wires:        len(d.Nets) > 0,
		Vias:         len(d.Nets) > 0,
		SpecialWires: special,
		Tracks:       len(d.Tracks) > 0,
		Rows:         len(d.Rows) > 0,
		GCells:       d.GCell != nil,
	}
	for _, c := range Categories() {
		v.SetDisabled(c, false)
		if !present[c] {
			v.SetVisible(c, false)
			v.SetDisabled(c, true)
		}
	}
}

// MarkAllDirty forces every category to rebuild on the next pass.
func (v *Visibility) MarkAllDirty() {
	for i := range v.entries {
		v.entries[i].Dirty = true
	}
}

// ClearDirty clears every dirty flag.
func (v *Visibility) ClearDirty() {
	for i := range v.entries {
		v.entries[i].Dirty = false
	}
}

// AnyDirty reports whether any category is dirty.
func (v *Visibility) AnyDirty() bool {
	for _, e := range v.entries {
		if e.Dirty {
			return true
		}
	}
	return false
}

// Ordered returns the categories sorted by Index, for display.
func (v *Visibility) Ordered() []Category {
	out := Categories()
	sort.SliceStable(out, func(i, j int) bool {
		return v.entries[out[i]].Index < v.entries[out[j]].Index
	})
	return out
}

// Apply updates v from a comma separated list such as "cells,+tracks,-ports".
// "+name" shows and "-name" hides a category. Bare names select exactly the
// listed categories before any signed entries apply. "all" and "none" are
// accepted as bare names.
func (v *Visibility) Apply(spec string) error {
	var only []Category
	var bare bool
	type change struct {
		c    Category
		show bool
	}
	var changes []change

	for _, field := range strings.Split(spec, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		switch {
		case strings.HasPrefix(field, "+"), strings.HasPrefix(field, "-"):
			c, err := ParseCategory(field[1:])
			if err != nil {
				return err
			}
			changes = append(changes, change{c: c, show: field[0] == '+'})
		case strings.EqualFold(field, "all"):
			bare = true
			only = append(only, Categories()...)
		case strings.EqualFold(field, "none"):
			bare = true
		default:
			c, err := ParseCategory(field)
			if err != nil {
				return err
			}
			bare = true
			only = append(only, c)
		}
	}

	if bare {
		selected := make(map[Category]bool, len(only))
		for _, c := range only {
			selected[c] = true
		}
		for _, c := range Categories() {
			v.SetVisible(c, selected[c])
		}
	}
	for _, ch := range changes {
		v.SetVisible(ch.c, ch.show)
	}
	return nil
}
