package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/watchfire-io/labwatch/internal/config"
	"github.com/watchfire-io/labwatch/internal/daemon/console"
	"github.com/watchfire-io/labwatch/internal/models"
)

var settingsCmd = &cobra.Command{
	Use:     "settings",
	Aliases: []string{"config"},
	Short:   "Show the effective watchdog settings",
	RunE:    runSettingsShow,
}

var settingsInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write default settings to ~/.labwatch/settings.yaml",
	RunE:  runSettingsInit,
}

var settingsForce bool

func init() {
	settingsInitCmd.Flags().BoolVar(&settingsForce, "force", false, "Overwrite existing settings")
	settingsCmd.AddCommand(settingsInitCmd)
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	settings, err := config.LoadSettings("")
	if err != nil {
		return err
	}
	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	fmt.Print(string(out))

	if len(settings.PanicSignatures) == 0 {
		fmt.Println(render(styleHint, "# built-in panic signatures:"))
		for _, sig := range console.DefaultSignatures() {
			fmt.Println(render(styleHint, "#   "+sig.Name))
		}
	}
	return nil
}

func runSettingsInit(cmd *cobra.Command, args []string) error {
	path, err := config.GlobalSettingsFile()
	if err != nil {
		return err
	}
	if config.FileExists(path) && !settingsForce {
		fmt.Printf("%s %s already exists (use --force to overwrite).\n", render(styleWarning, "Warning:"), path)
		return nil
	}
	if err := config.EnsureGlobalDir(); err != nil {
		return err
	}
	if err := config.SaveSettings(models.NewSettings()); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fmt.Printf("Wrote default settings to %s\n", render(styleValue, path))
	return nil
}
