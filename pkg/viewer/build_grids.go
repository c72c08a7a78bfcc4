package viewer

import (
	"fmt"

	"github.com/OpenTraceLab/edaview/pkg/design"
	"github.com/OpenTraceLab/edaview/pkg/scene"
)

// tracks draws one line per track coordinate across the die in the track
// layer's color. Vertical lines are drawn before horizontal ones.
func (b *builder) tracks() *scene.Node {
	group := scene.NewGroup(GroupTracks.String())
	die := b.screen.ToScreenRect(*b.design.Die)
	sw := b.settings.Shapes.Track.StrokeWidth

	var vertical, horizontal []*scene.Node
	for i := range b.design.Tracks {
		track := &b.design.Tracks[i]
		layerID, ok := design.RefID(track.Layer)
		if !ok {
			b.skip(GroupTracks, track.ID, errMissing("layer"))
			continue
		}
		ls, err := b.layerStyle(layerID)
		if err != nil {
			b.skip(GroupTracks, track.ID, err)
			continue
		}
		for _, gx := range track.GridX {
			x, _ := b.screen.ToScreenPoint(design.Point{X: gx})
			vertical = append(vertical, scene.NewLine(x, die.Y, x, die.Y+die.Height, ls.Color, sw))
		}
		for _, gy := range track.GridY {
			_, y := b.screen.ToScreenPoint(design.Point{Y: gy})
			horizontal = append(horizontal, scene.NewLine(die.X, y, die.X+die.Width, y, ls.Color, sw))
		}
	}
	for _, n := range vertical {
		group.AddChild(n)
	}
	for _, n := range horizontal {
		group.AddChild(n)
	}
	return group
}

// patternLines expands gcell patterns into design coordinates. A pattern of
// count lines starting at origin with the given step yields origin + j*step
// for j < count-1.
func patternLines(origins, counts, steps []int) ([]int, error) {
	if len(counts) != len(origins) || len(steps) != len(origins) {
		return nil, fmt.Errorf("viewer: gcell pattern has %d origins, %d counts, %d steps: %w",
			len(origins), len(counts), len(steps), errIncomplete)
	}
	var out []int
	for i, origin := range origins {
		for j := 0; j < counts[i]-1; j++ {
			out = append(out, origin+j*steps[i])
		}
	}
	return out, nil
}

func (b *builder) gcells() *scene.Node {
	group := scene.NewGroup(GroupGCells.String())
	grid := b.design.GCell
	if grid == nil {
		return group
	}
	die := b.screen.ToScreenRect(*b.design.Die)
	st := b.settings.Shapes.GCell

	xs, err := patternLines(grid.GridXPatternOrigins, grid.GridXPatternLineCounts, grid.GridXPatternSteps)
	if err != nil {
		b.skip(GroupGCells, grid.ID, err)
	}
	ys, err := patternLines(grid.GridYPatternOrigins, grid.GridYPatternLineCounts, grid.GridYPatternSteps)
	if err != nil {
		b.skip(GroupGCells, grid.ID, err)
	}

	for _, gx := range xs {
		x, _ := b.screen.ToScreenPoint(design.Point{X: gx})
		group.AddChild(scene.NewLine(x, die.Y, x, die.Y+die.Height, b.paints.gcellStroke, st.StrokeWidth))
	}
	for _, gy := range ys {
		_, y := b.screen.ToScreenPoint(design.Point{Y: gy})
		group.AddChild(scene.NewLine(die.X, y, die.X+die.Width, y, b.paints.gcellStroke, st.StrokeWidth))
	}
	return group
}
