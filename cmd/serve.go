package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xvierd/tec-office/internal/adapters/httpapi"
)

var serveAddr string

// serveCmd runs the HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the timer HTTP API",
	Long: `Serve the JSON timer API used by the chat UI's timer widget.

Requests act for the user named in the X-User-ID header, or for the
configured user when the header is absent.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := serveAddr
		if addr == "" {
			addr = app.config.Server.Addr
		}

		engine := httpapi.New(app.timers, currentUser(), app.logger)
		if err := httpapi.Serve(setupSignalHandler(), addr, engine, app.logger); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: server.addr from config)")
}
