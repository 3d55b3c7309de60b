package commands

import (
	"github.com/spf13/cobra"

	"github.com/doeshing/sns-guardian/internal/app"
	"github.com/doeshing/sns-guardian/internal/infrastructure/httpserver"
)

// NewServeCommand creates the serve command, the reference analysis REST backend.
func NewServeCommand(container *app.Container) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis REST API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := container.Config.Config()
			if addr == "" {
				addr = cfg.Server.Addr
			}
			provider := container.ServerProvider()
			container.Logger.Info("analysis engine selected", map[string]interface{}{"engine": provider.Name()})

			handler := httpserver.NewRouter(provider, cfg.Server.AllowedOrigins, container.Logger)
			return httpserver.Serve(cmd.Context(), addr, handler, container.Logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config server.addr)")
	return cmd
}
