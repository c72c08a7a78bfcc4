package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/edaview/pkg/design"
	"github.com/OpenTraceLab/edaview/pkg/style"
)

var infoCmd = &cobra.Command{
	Use:   "info <design_file> [net]",
	Short: "Show design information",
	Long: `Display a summary of a design file.

Without net: shows design statistics and the layer stack
With net: shows the segments and vias of that net`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	d, err := loadDesign(args[0])
	if err != nil {
		return err
	}
	if len(args) == 2 {
		return showNetDetails(d, args[1])
	}
	s, _, err := loadSettings()
	if err != nil {
		return err
	}
	return showDesignSummary(d, args[0], s.ColorOptions())
}

func showDesignSummary(d *design.Design, filename string, opts style.ColorOptions) error {
	sum := d.Summarize()
	fmt.Printf("Design: %s (%s)\n", sum.Name, filename)
	fmt.Printf("Die: (%d, %d) - (%d, %d)\n", sum.Die.XMin, sum.Die.YMin, sum.Die.XMax, sum.Die.YMax)
	fmt.Printf("Utilization: %.2f\n", d.Utilization)
	fmt.Println()

	fmt.Printf("Cells:        %d (%d placed)\n", sum.Instances, sum.Placed)
	fmt.Printf("Nets:         %d (%d routed, %d special)\n", sum.Nets, sum.RoutedNets, sum.SpecialNets)
	fmt.Printf("Ports:        %d\n", sum.Ports)
	fmt.Printf("Vias:         %d\n", sum.Vias)
	fmt.Printf("Rows:         %d\n", sum.Rows)
	fmt.Printf("Track grids:  %d\n", sum.Tracks)
	fmt.Printf("GCell grid:   %v\n", sum.HasGCellGrid)
	fmt.Println()

	colors, err := style.AssignLayerColors(d.Layers, opts)
	if err != nil {
		return err
	}
	layers := append([]design.Layer(nil), d.Layers...)
	sort.SliceStable(layers, func(i, j int) bool { return layers[i].ID < layers[j].ID })
	fmt.Printf("Layers (%d):\n", len(layers))
	for _, l := range layers {
		c := colors[l.ID].Color
		fmt.Printf("  %3d  %-12s %-12s #%02x%02x%02x\n", l.ID, l.Name, l.Type, c.R, c.G, c.B)
	}
	return nil
}

func showNetDetails(d *design.Design, name string) error {
	idx := design.NewIndex(d)
	for i := range d.Nets {
		n := &d.Nets[i]
		if n.Name != name {
			continue
		}
		fmt.Printf("Net: %s\n", n.Name)
		fmt.Printf("Routed: %v  Special: %v\n", n.IsRouted, n.IsSpecial)
		for _, e := range n.Edges {
			layer := "?"
			if e.Layer != nil {
				if l, err := idx.Layer(e.Layer.ID); err == nil {
					layer = l.Name
				}
			}
			switch {
			case e.Via != nil:
				via := "?"
				if v, err := idx.Via(e.Via.ID); err == nil {
					via = v.Name
				}
				fmt.Printf("  via  %-10s %s\n", layer, via)
			case e.Rect != nil:
				r := e.Rect
				fmt.Printf("  wire %-10s (%d, %d) - (%d, %d)\n", layer, r.XMin, r.YMin, r.XMax, r.YMax)
			}
		}
		return nil
	}
	return fmt.Errorf("net %q not found", name)
}
