package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/wintrack/internal/core"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "wt %s (%s) built %s\n", appVersion, appCommit, appDate)
		fmt.Fprintf(out, "%s, %s/%s\n", core.OSVersionString(), runtime.GOOS, runtime.GOARCH)
	},
}
