package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/edaview/pkg/scene"
	"github.com/OpenTraceLab/edaview/pkg/viewer"
)

var (
	exportOutput string
	exportFormat string
	exportWidth  int
	exportHeight int
)

var exportCmd = &cobra.Command{
	Use:   "export <design_file>",
	Short: "Render a design to an image",
	Long: `Builds the scene without a window and writes the fitted view as PNG or JPEG.

The format is taken from --format, or from the output file extension.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default <design>.png)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "image format: png or jpeg")
	exportCmd.Flags().IntVar(&exportWidth, "width", 1600, "image width in pixels")
	exportCmd.Flags().IntVar(&exportHeight, "height", 1600, "image height in pixels")
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportWidth <= 0 || exportHeight <= 0 {
		return fmt.Errorf("invalid size %dx%d", exportWidth, exportHeight)
	}
	format, output, err := exportTarget(args[0])
	if err != nil {
		return err
	}

	s, _, err := loadSettings()
	if err != nil {
		return err
	}
	d, err := loadDesign(args[0])
	if err != nil {
		return err
	}
	vis, err := loadVisibility(d)
	if err != nil {
		return err
	}

	engine := viewer.NewEngine(d, vis, s, exportWidth, exportHeight, viewer.Options{})
	defer engine.Close()
	report, err := engine.Reconcile()
	if err != nil {
		return err
	}
	if report.Skipped > 0 {
		fmt.Fprintf(os.Stderr, "warning: %d shapes skipped\n", report.Skipped)
	}

	f, err := os.Create(output)
	if err != nil {
		return err
	}
	if err := engine.ExportImage(f, format); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("✓ Wrote %s (%dx%d)\n", output, exportWidth, exportHeight)
	return nil
}

// exportTarget resolves the image format and output path from the flags.
func exportTarget(input string) (scene.Format, string, error) {
	name := exportFormat
	if name == "" && exportOutput != "" {
		name = strings.TrimPrefix(filepath.Ext(exportOutput), ".")
	}
	if name == "" {
		name = string(scene.FormatPNG)
	}
	format, err := scene.ParseFormat(name)
	if err != nil {
		return "", "", err
	}
	output := exportOutput
	if output == "" {
		base := strings.TrimSuffix(input, ".gz")
		output = strings.TrimSuffix(base, filepath.Ext(base)) + "." + string(format)
	}
	return format, output, nil
}
