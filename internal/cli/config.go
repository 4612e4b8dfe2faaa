package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/autoreflex/autoreflex/internal/config"
)

var configCmd = &cobra.Command{
	Use:     "config",
	Aliases: []string{"configure"},
	Short:   "Show or change client settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	Long: `Print the effective settings: settings.yaml with .env, environment
variables and --api/--ws applied.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a value in settings.yaml",
	Long: `Change a value in settings.yaml.

Keys:
  ` + strings.Join(config.SettingKeys, "\n  "),
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the settings file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GlobalSettingsFile()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configShowCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	settings, err := resolveSettings()
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	settings, err := config.LoadSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if err := config.SetValue(settings, args[0], args[1]); err != nil {
		return err
	}
	settings.Normalize()
	if err := config.EnsureGlobalDir(); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	if err := config.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), styleSuccess.Render(fmt.Sprintf("Set %s.", args[0])))
	return nil
}
