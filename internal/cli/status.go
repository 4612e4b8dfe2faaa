package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCheck bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the agent status",
	Long: `Show the agent status reported by the backend.

With --check, only verify that the backend answers and exit non-zero
when it does not.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusCheck, "check", false, "only check that the backend is reachable")
}

func runStatus(cmd *cobra.Command, args []string) error {
	b, err := connect(cmd)
	if err != nil {
		return err
	}
	defer b.Close()

	out := cmd.OutOrStdout()

	if statusCheck {
		if err := b.client.Health(cmd.Context()); err != nil {
			return describeError(b, err)
		}
		fmt.Fprintln(out, styleSuccess.Render("Backend reachable at "+b.client.BaseURL()))
		return nil
	}

	status, err := b.client.FetchStatus(cmd.Context())
	if err != nil {
		return describeError(b, err)
	}
	fmt.Fprintf(out, "%s %s\n", styleLabel.Render("Agent:"), statusBadge(status))
	fmt.Fprintf(out, "%s %s\n", styleLabel.Render("Backend:"), styleValue.Render(b.client.BaseURL()))
	return nil
}
