package hellodock

import (
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print hellodock version",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.Println(rootCmd.Version)
		return nil
	},
}
