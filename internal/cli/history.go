package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/autoreflex/autoreflex/internal/tui"
)

var (
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"ls"},
	Short:   "List past tasks, newest first",
	Args:    cobra.NoArgs,
	RunE:    runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "show at most n tasks (0 = all)")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "print the records as JSON")
}

func runHistory(cmd *cobra.Command, args []string) error {
	b, err := connect(cmd)
	if err != nil {
		return err
	}
	defer b.Close()

	records, err := b.client.FetchHistory(cmd.Context())
	if err != nil {
		return describeError(b, err)
	}
	if historyLimit > 0 && len(records) > historyLimit {
		records = records[:historyLimit]
	}

	out := cmd.OutOrStdout()

	if historyJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Fprintln(out, "No tasks yet. Run 'autoreflex optimize \"<mission>\"' to create one.")
		return nil
	}

	fmt.Fprintln(out, styleLabel.Render(fmt.Sprintf("%-6s %-18s %-12s %s", "ID", "CREATED", "STATUS", "DESCRIPTION")))
	for _, r := range records {
		status := fmt.Sprintf("%-12s", r.Status)
		switch strings.ToLower(r.Status) {
		case "completed", "done", "success":
			status = styleSuccess.Render(status)
		case "failed", "error":
			status = styleError.Render(status)
		default:
			status = styleHint.Render(status)
		}
		fmt.Fprintf(out, "%-6d %-18s %s %s\n",
			r.ID,
			tui.FormatCreatedAt(r.CreatedAt),
			status,
			tui.TruncateDescription(r.Description, 50),
		)
	}
	return nil
}
