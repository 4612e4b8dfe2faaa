// Package cli implements the autoreflex CLI commands.
package cli

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/autoreflex/autoreflex/internal/client"
	"github.com/autoreflex/autoreflex/internal/config"
	"github.com/autoreflex/autoreflex/internal/models"
)

var (
	apiURL  string
	pushURL string
)

var rootCmd = &cobra.Command{
	Use:   "autoreflex",
	Short: "Mission control for a coding agent backend",
	Long: `AutoReflex drives a coding agent backend from the terminal.

Write a mission, let the backend optimize it into an agent prompt, run it,
and follow the agent's live log. Without a subcommand the dashboard opens.`,
	SilenceUsage: true,
	RunE:         runDashboard,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "REST base URL (overrides settings)")
	rootCmd.PersistentFlags().StringVar(&pushURL, "ws", "", "push channel URL (overrides settings)")

	// Add subcommands (alphabetical)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(optimizeCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(watchCmd)
}

// resolveSettings returns the effective settings with command line
// overrides applied.
func resolveSettings() (*models.Settings, error) {
	settings, err := config.Resolve()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if apiURL != "" {
		settings.API.BaseURL = strings.TrimRight(apiURL, "/")
	}
	if pushURL != "" {
		settings.API.PushURL = pushURL
	}
	return settings, nil
}

// backend bundles what a command needs to talk to the backend.
type backend struct {
	settings *models.Settings
	client   *client.Client
	sink     *config.LogSink
	log      *logrus.Entry
}

func connect(cmd *cobra.Command) (*backend, error) {
	settings, err := resolveSettings()
	if err != nil {
		return nil, err
	}
	sink, err := config.OpenLog(&settings.Logging)
	if err != nil {
		return nil, err
	}
	log := logrus.NewEntry(sink.Logger).WithField("command", cmd.Name())
	c := client.FromSettings(settings, log)
	return &backend{
		settings: settings,
		client:   c,
		sink:     sink,
		log:      log.WithField("session_id", c.SessionID()),
	}, nil
}

func (b *backend) Close() {
	_ = b.sink.Close()
}

// describeError turns transport failures into something a user can act on.
func describeError(b *backend, err error) error {
	if client.IsUnreachable(err) {
		return fmt.Errorf("backend unreachable at %s: %w", b.client.BaseURL(), err)
	}
	return err
}
