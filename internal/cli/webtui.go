package cli

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/HunterLewis000/newspaper-app/internal/config"
	"github.com/HunterLewis000/newspaper-app/internal/webtui"
)

func newWebTUICmd(serverURL, userName *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "webtui",
		Short: "Run the terminal client in your browser (PTY + WebSocket, experimental)",
		Long: strings.TrimSpace(`
Serve the interactive client over the web via a server-side PTY and a browser
terminal emulator.

Notes:
- Experimental demo mode (no auth yet).
- Each browser tab starts a client subprocess on this machine.
`),
		Example: strings.TrimSpace(`
# Serve the client on localhost
newspaper webtui --addr 127.0.0.1:3334

# Point the spawned clients at a remote desk
newspaper --server http://desk.example:5000 webtui --addr :3334
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if v := strings.TrimSpace(*serverURL); v != "" {
				cfg.ServerURL = v
			}
			if v := strings.TrimSpace(*userName); v != "" {
				cfg.UserName = v
			}

			srv, err := webtui.NewServer(webtui.ServerConfig{
				Addr:      strings.TrimSpace(addr),
				ServerURL: cfg.ServerURL,
				UserName:  cfg.UserName,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "webtui listening on http://%s/terminal\n", srv.Addr())

			httpSrv := &http.Server{
				Addr:              srv.Addr(),
				Handler:           srv.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}
			return httpSrv.ListenAndServe()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:3334", "Listen address for the browser terminal")

	return cmd
}
