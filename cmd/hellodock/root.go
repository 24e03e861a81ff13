package hellodock

import (
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags "-X github.com/BRAVO68WEB/hellodock/cmd/hellodock.version=..."
var version = "0.1.0"

// Errors are silenced here; main reports the returned error once.
var rootCmd = &cobra.Command{
	Use:           "hellodock",
	Short:         "Static hello responder and CI diagnostic job",
	Long:          `hellodock serves a fixed greeting on every HTTP request (hellodock serve) and prints CI host diagnostics (hellodock diag).`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(diagCmd)
	rootCmd.AddCommand(versionCmd)
}
