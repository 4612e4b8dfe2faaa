package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/autoreflex/autoreflex/internal/buildinfo"
)

var versionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"v"},
	Short:   "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s (%s)\n", styleBrand.Render("AutoReflex"), styleVersion.Render(buildinfo.Version), buildinfo.Codename)
		fmt.Fprintf(out, "  Commit: %s\n", buildinfo.CommitHash)
		fmt.Fprintf(out, "  Built: %s\n", buildinfo.BuildDate)
		fmt.Fprintf(out, "  OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		fmt.Fprintf(out, "  Go: %s\n", runtime.Version())
	},
}
