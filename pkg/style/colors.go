package style

import (
	"image/color"

	"github.com/OpenTraceLab/edaview/pkg/design"
)

// LayerStyle is the color and fill pattern assigned to a layer
type LayerStyle struct {
	Color   color.NRGBA
	Pattern PatternStyle
}

// ColorOptions selects palettes for AssignLayerColors
type ColorOptions struct {
	Palette              string // palette for every layer type except masterslice
	MasterslicePalette   string
	SameColorConsecutive bool // a right-hatched routing layer reuses the color of the routing layer before it
}

// DefaultColorOptions returns the stock palette choice.
func DefaultColorOptions() ColorOptions {
	return ColorOptions{
		Palette:            "cb-Spectral",
		MasterslicePalette: "rainbow",
	}
}

// AssignLayerColors maps each layer ID to a color and pattern. It is a pure
// function of its inputs.
//
// The main palette is sized by the largest per-type layer count (masterslice
// excluded); a layer's color is palette[position % count of its type], where
// position is its index in layers. Routing layers alternate left and right
// diagonal hatch in list order, counting only routing layers.
func AssignLayerColors(layers []design.Layer, opts ColorOptions) (map[int]LayerStyle, error) {
	counts := make(map[design.LayerType]int)
	maxCount := 0
	for _, l := range layers {
		counts[l.Type]++
		if l.Type != design.LayerMasterslice && counts[l.Type] > maxCount {
			maxCount = counts[l.Type]
		}
	}

	main, err := Palette(opts.Palette, maxCount)
	if err != nil {
		return nil, err
	}
	masterslice, err := Palette(opts.MasterslicePalette, counts[design.LayerMasterslice])
	if err != nil {
		return nil, err
	}

	styles := make(map[int]LayerStyle, len(layers))
	rightNext := false
	var prevRouting color.NRGBA
	for i, l := range layers {
		pick := func(p []color.NRGBA) color.NRGBA {
			return p[i%counts[l.Type]]
		}
		switch l.Type {
		case design.LayerRouting:
			if rightNext {
				c := pick(main)
				if opts.SameColorConsecutive {
					c = prevRouting
				}
				styles[l.ID] = LayerStyle{Color: c, Pattern: RightDiagonal}
			} else {
				prevRouting = pick(main)
				styles[l.ID] = LayerStyle{Color: prevRouting, Pattern: LeftDiagonal}
			}
			rightNext = !rightNext
		case design.LayerCut:
			styles[l.ID] = LayerStyle{Color: pick(main), Pattern: Checkerboard}
		case design.LayerMasterslice:
			styles[l.ID] = LayerStyle{Color: pick(masterslice), Pattern: RightDiagonal}
		case design.LayerOverlap:
			styles[l.ID] = LayerStyle{Color: pick(main), Pattern: Vertical}
		case design.LayerImplant:
			styles[l.ID] = LayerStyle{Color: pick(main), Pattern: Horizontal}
		default:
			styles[l.ID] = LayerStyle{Color: pick(main), Pattern: Vertical}
		}
	}
	return styles, nil
}
