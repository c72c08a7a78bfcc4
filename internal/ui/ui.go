// Package ui is the interactive Gio front end of the layout viewer.
package ui

import (
	"log/slog"
	"os"

	"gioui.org/app"

	"github.com/OpenTraceLab/edaview/pkg/design"
	"github.com/OpenTraceLab/edaview/pkg/settings"
	"github.com/OpenTraceLab/edaview/pkg/viewer"
)

// Config selects what the window shows on start.
type Config struct {
	Design       *design.Design // may be nil; the user can open one later
	Settings     *settings.Settings
	SettingsPath string // where palette and label changes are saved; empty disables saving
	Visibility   *viewer.Visibility
	Version      string
}

// Run launches the Gio UI and blocks until the window closes.
func Run(cfg Config) error {
	go func() {
		w := new(app.Window)
		a := New(w, cfg)
		if err := a.Run(); err != nil {
			slog.Error("ui", "err", err)
			os.Exit(1)
		}
		os.Exit(0)
	}()

	app.Main()
	return nil
}
