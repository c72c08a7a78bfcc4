// Package settings holds the viewer's display configuration.
package settings

import (
	"errors"
	"fmt"
	"image/color"
	"time"

	"github.com/OpenTraceLab/edaview/pkg/style"
)

// ErrInvalidSetting is returned by Validate and ApplyOverrides.
var ErrInvalidSetting = errors.New("invalid setting")

// ShapeStyle is the paint of one shape category. Colors are CSS names or hex strings.
type ShapeStyle struct {
	Fill        string  `json:"fill"`
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"strokeWidth"`
	Opacity     float64 `json:"opacity"`
}

// ViaStyle adds the checkerboard square size to ShapeStyle
type ViaStyle struct {
	ShapeStyle
	HatchSquareLength int `json:"hatchSquareLength"`
}

// TextStyle configures cell labels
type TextStyle struct {
	Fill     string  `json:"fill"`
	FontSize float64 `json:"fontSize"`
	Padding  float64 `json:"padding"`
}

// LayerHatch configures layer fill patterns
type LayerHatch struct {
	HatchLineThickness int `json:"hatchLineThickness"`
}

// Shapes groups the per-category styles
type Shapes struct {
	Chip        ShapeStyle `json:"chip"`
	Cell        ShapeStyle `json:"cell"`
	PinShape    ShapeStyle `json:"pinShape"`
	Obstruction ShapeStyle `json:"obstruction"`
	Port        ShapeStyle `json:"port"`
	Wire        ShapeStyle `json:"wire"`
	Via         ViaStyle   `json:"via"`
	Row         ShapeStyle `json:"row"`
	GCell       ShapeStyle `json:"gcell"`
	Track       ShapeStyle `json:"track"`
	Text        TextStyle  `json:"text"`
	Layer       LayerHatch `json:"layer"`
}

// Settings is the complete viewer configuration. It is replaced wholesale on save.
type Settings struct {
	Shapes                       Shapes  `json:"shapes"`
	DisplayNames                 bool    `json:"displayNames"`
	DisablePortIndicators        bool    `json:"disablePortIndicators"`
	PortIndicatorExtension       float64 `json:"portIndicatorExtension"`
	SameColorConsecutiveLayers   bool    `json:"sameColorConsecutiveLayers"`
	SortLayerBottomToTop         bool    `json:"sortLayerBottomToTop"`
	RenderSimpleWireShapes       bool    `json:"renderSimpleWireShapes"`
	TransparentBackground        bool    `json:"transparentBackground"`
	DoubleClickTimeout           int     `json:"doubleClickTimeout"` // milliseconds
	ScaleStepFactor              float64 `json:"scaleStepFactor"`
	LayerColorPalette            string  `json:"layerColorPalette"`
	MastersliceLayerColorPalette string  `json:"mastersliceLayerColorPalette"`
}

// Default returns the stock configuration.
func Default() *Settings {
	return &Settings{
		Shapes: Shapes{
			Chip:        ShapeStyle{Fill: "#ffffff", Stroke: "black", StrokeWidth: 2, Opacity: 1},
			Cell:        ShapeStyle{Fill: "#cccccc", Stroke: "black", StrokeWidth: 1, Opacity: 1},
			PinShape:    ShapeStyle{StrokeWidth: 1, Opacity: 0.7},
			Obstruction: ShapeStyle{StrokeWidth: 1, Opacity: 0.7},
			Port:        ShapeStyle{Fill: "#ffff00", Stroke: "black", StrokeWidth: 1, Opacity: 1},
			Wire:        ShapeStyle{Stroke: "black", StrokeWidth: 1, Opacity: 0.9},
			Via:         ViaStyle{ShapeStyle: ShapeStyle{StrokeWidth: 1, Opacity: 1}, HatchSquareLength: 1},
			Row:         ShapeStyle{Stroke: "#b4b4b4", StrokeWidth: 1, Opacity: 1},
			GCell:       ShapeStyle{Stroke: "#19ab1e", StrokeWidth: 2, Opacity: 1},
			Track:       ShapeStyle{StrokeWidth: 1, Opacity: 1},
			Text:        TextStyle{Fill: "#000000", FontSize: 12, Padding: 2},
			Layer:       LayerHatch{HatchLineThickness: 1},
		},
		DisplayNames:                 true,
		DisablePortIndicators:        true,
		PortIndicatorExtension:       8,
		SortLayerBottomToTop:         true,
		DoubleClickTimeout:           500,
		ScaleStepFactor:              1.1,
		LayerColorPalette:            "cb-Spectral",
		MastersliceLayerColorPalette: "rainbow",
	}
}

// Clone returns a deep copy of s.
func (s *Settings) Clone() *Settings {
	c := *s
	return &c
}

// ColorOptions returns the palette selection for style.AssignLayerColors.
func (s *Settings) ColorOptions() style.ColorOptions {
	return style.ColorOptions{
		Palette:              s.LayerColorPalette,
		MasterslicePalette:   s.MastersliceLayerColorPalette,
		SameColorConsecutive: s.SameColorConsecutiveLayers,
	}
}

// DoubleClick returns the double-click window as a duration.
func (s *Settings) DoubleClick() time.Duration {
	return time.Duration(s.DoubleClickTimeout) * time.Millisecond
}

// Color parses a color setting. An empty string is transparent.
func Color(s string) (color.NRGBA, error) {
	if s == "" {
		return color.NRGBA{}, nil
	}
	return style.ParseColor(s)
}

// Validate checks ranges, colors and palette names.
func (s *Settings) Validate() error {
	if s.ScaleStepFactor <= 1 {
		return fmt.Errorf("settings: scaleStepFactor %g must be greater than 1: %w", s.ScaleStepFactor, ErrInvalidSetting)
	}
	if s.DoubleClickTimeout <= 0 {
		return fmt.Errorf("settings: doubleClickTimeout %d: %w", s.DoubleClickTimeout, ErrInvalidSetting)
	}
	if s.Shapes.Layer.HatchLineThickness < 1 || s.Shapes.Via.HatchSquareLength < 1 {
		return fmt.Errorf("settings: hatch sizes must be at least 1: %w", ErrInvalidSetting)
	}
	for _, name := range []string{s.LayerColorPalette, s.MastersliceLayerColorPalette} {
		if _, err := style.Palette(name, 1); err != nil {
			return fmt.Errorf("settings: %w", err)
		}
	}

	sh := s.Shapes
	colors := map[string]string{
		"chip.fill":    sh.Chip.Fill,
		"chip.stroke":  sh.Chip.Stroke,
		"cell.fill":    sh.Cell.Fill,
		"cell.stroke":  sh.Cell.Stroke,
		"port.fill":    sh.Port.Fill,
		"port.stroke":  sh.Port.Stroke,
		"wire.stroke":  sh.Wire.Stroke,
		"row.stroke":   sh.Row.Stroke,
		"gcell.stroke": sh.GCell.Stroke,
		"text.fill":    sh.Text.Fill,
	}
	for key, value := range colors {
		if _, err := Color(value); err != nil {
			return fmt.Errorf("settings: shapes.%s: %w", key, err)
		}
	}
	return nil
}
