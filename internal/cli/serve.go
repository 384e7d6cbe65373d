package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/modelviz/internal/server"
)

// serveCommand starts the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		root    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve entity models and graphs over HTTP",
		Long: `Serve entity models and graphs over HTTP.

Module paths in requests are resolved under --root and may not escape it.

Routes:
  GET /healthz
  GET /v1/entities?module=<path>
  GET /v1/graph?module=<path>&kind=entities|calls&entry=<method>&format=json|dot|svg|png
  GET /v1/runs?limit=<n>`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = c.Config.Server.Addr
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			srv := server.New(runner, root, c.baseOptions(), c.Logger)
			printInfo("Listening on %s", StyleHighlight.Render(addr))
			printDetail("module root: %s", root)
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&root, "root", ".", "directory module paths are resolved against")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")

	return cmd
}
