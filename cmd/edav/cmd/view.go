package cmd

import (
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/edaview/internal/ui"
	"github.com/OpenTraceLab/edaview/pkg/design"
)

var viewCmd = &cobra.Command{
	Use:   "view [design_file]",
	Short: "Open the interactive viewer",
	Long: `Opens a design in the Gio viewer. Without a file the window starts empty
and a design can be opened from the toolbar.

Controls:
  Drag              - Pan
  Scroll Wheel      - Zoom at cursor
  + / -             - Zoom in/out
  F                 - Fit to window
  R                 - Rebuild the scene
  Arrow keys        - Pan
  Click             - Select
  Double click      - Inspect`,
	Args: cobra.MaximumNArgs(1),
	RunE: runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, args []string) error {
	s, path, err := loadSettings()
	if err != nil {
		return err
	}
	// overrides are for this run only
	if overrides != "" {
		path = ""
	}

	var d *design.Design
	if len(args) == 1 {
		if d, err = loadDesign(args[0]); err != nil {
			return err
		}
	}
	vis, err := loadVisibility(d)
	if err != nil {
		return err
	}

	return ui.Run(ui.Config{
		Design:       d,
		Settings:     s,
		SettingsPath: path,
		Visibility:   vis,
		Version:      version,
	})
}
