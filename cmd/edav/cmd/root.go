package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/edaview/pkg/design"
	"github.com/OpenTraceLab/edaview/pkg/settings"
	"github.com/OpenTraceLab/edaview/pkg/viewer"
)

var version = "0.3.0"

var (
	// Global flags
	verbose      bool
	settingsPath string
	overrides    string
	layers       string
)

var rootCmd = &cobra.Command{
	Use:   "edav",
	Short: "edaview - IC layout viewer for LEF/DEF designs",
	Long: `edaview (edav) renders placed and routed IC layouts exported as JSON:
  - cells with pin and obstruction shapes
  - wires, vias and special (power) wires with hatched layer textures
  - block ports, rows, routing tracks and global routing cells

Examples:
  edav view chip.json                         # Open the interactive viewer
  edav export chip.json -o chip.png           # Render to an image
  edav export chip.json --layers all,-gcells  # Choose what is drawn
  edav info chip.json                         # Print design statistics
  edav settings --set "layerColorPalette=rainbow"`,
	Version: version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		configureLogging()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", "", "settings file (default ~/.config/edaview/settings.json)")
	rootCmd.PersistentFlags().StringVar(&overrides, "set", "", `settings overrides, e.g. "displayNames=false; shapes.cell.fill=#ff0000"`)
	rootCmd.PersistentFlags().StringVar(&layers, "layers", "", `visible categories, e.g. "all,-gcells" or "+tracks"`)
}

func configureLogging() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	viewer.SetLogger(logger)
}

// resolveSettingsPath returns the --settings value or the per-user default.
func resolveSettingsPath() (string, error) {
	if settingsPath != "" {
		return settingsPath, nil
	}
	return settings.DefaultPath()
}

// loadSettings reads the settings file and applies --set.
func loadSettings() (*settings.Settings, string, error) {
	path, err := resolveSettingsPath()
	if err != nil {
		return nil, "", fmt.Errorf("locating settings: %w", err)
	}
	s, err := settings.Load(path)
	if err != nil {
		return nil, "", err
	}
	if overrides != "" {
		if s, err = settings.ApplyOverrides(s, overrides); err != nil {
			return nil, "", err
		}
	}
	return s, path, nil
}

// loadVisibility builds the category state for d, applying --layers.
func loadVisibility(d *design.Design) (*viewer.Visibility, error) {
	vis := viewer.DefaultVisibility()
	if d != nil {
		vis.DisableMissing(d)
	}
	if err := vis.Apply(layers); err != nil {
		return nil, err
	}
	return vis, nil
}

func loadDesign(filename string) (*design.Design, error) {
	d, err := design.LoadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error loading design: %w", err)
	}
	return d, nil
}
