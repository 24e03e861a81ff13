package hellodock

import (
	"context"
	"fmt"

	"github.com/BRAVO68WEB/hellodock/internal/diag"
	"github.com/BRAVO68WEB/hellodock/pkg/output"
	"github.com/spf13/cobra"
)

var diagCmd = &cobra.Command{
	Use:   "diag",
	Short: "Print CI host diagnostics and run sample tasks",
	Long:  `Print system information, CI environment variables and tool availability, then write a scratch file, compute a sum and list the working directory. Exits non-zero if any step fails.`,
	Args:  cobra.NoArgs,
	RunE:  runDiag,
}

func init() {
	diagCmd.Flags().String("dir", "", "Directory for sample tasks (default: current directory)")
	diagCmd.Flags().StringP("format", "o", output.FormatTable, "Output format: table, json or yaml")
}

func runDiag(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	format, _ := cmd.Flags().GetString("format")

	var opts []diag.Option
	if dir != "" {
		opts = append(opts, diag.WithDir(dir))
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	report, err := diag.NewCollector(opts...).Collect(ctx)
	if err != nil {
		return fmt.Errorf("job failed: %w", err)
	}
	if err := output.PrintReport(cmd.OutOrStdout(), report, format); err != nil {
		return fmt.Errorf("job failed: %w", err)
	}
	return nil
}
