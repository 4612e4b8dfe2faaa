package cli

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/autoreflex/autoreflex/internal/config"
	"github.com/autoreflex/autoreflex/internal/tui"
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"ui"},
	Short:   "Open the mission control dashboard",
	RunE:    runDashboard,
}

func runDashboard(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("the dashboard needs a terminal; use 'autoreflex watch' to follow the agent in plain output")
	}

	settings, err := resolveSettings()
	if err != nil {
		return err
	}
	sink, err := config.OpenLog(&settings.Logging)
	if err != nil {
		return err
	}
	defer sink.Close()

	return tui.Run(settings, logrus.NewEntry(sink.Logger).WithField("command", "dashboard"))
}
