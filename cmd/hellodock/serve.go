package hellodock

import (
	"github.com/BRAVO68WEB/hellodock/internal/server"
	"github.com/spf13/cobra"
)

// serverConfig is fixed; only tests replace it.
var serverConfig = server.DefaultConfig

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the static greeting on 0.0.0.0:8000",
	Long:  `Bind 0.0.0.0:8000 and answer every request, whatever its method or path, with the same text/html greeting. Runs until the process is terminated.`,
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := serverConfig()
	cfg.Stdout = cmd.OutOrStdout()

	srv, err := server.New(cfg)
	if err != nil {
		return err
	}
	return srv.Run()
}
