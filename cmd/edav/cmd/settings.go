package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/edaview/pkg/settings"
	"github.com/OpenTraceLab/edaview/pkg/style"
)

var (
	settingsWrite bool
	settingsReset bool
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or update viewer settings",
	Long: `Prints the effective settings as JSON.

With --write the effective settings, including --set overrides, are saved
to the settings file. With --reset the file is replaced by the defaults.`,
	Args: cobra.NoArgs,
	RunE: runSettings,
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.Flags().BoolVar(&settingsWrite, "write", false, "save the effective settings")
	settingsCmd.Flags().BoolVar(&settingsReset, "reset", false, "save the default settings")
}

func runSettings(cmd *cobra.Command, args []string) error {
	var (
		s    *settings.Settings
		path string
		err  error
	)
	if settingsReset {
		s = settings.Default()
		path, err = resolveSettingsPath()
	} else {
		s, path, err = loadSettings()
	}
	if err != nil {
		return err
	}

	if settingsWrite || settingsReset {
		if err := settings.Save(path, s); err != nil {
			return err
		}
		fmt.Printf("✓ Saved %s\n", path)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	fmt.Printf("\nPalettes: %v\n", style.PaletteNames())
	return nil
}
