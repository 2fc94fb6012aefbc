// Package cli wires the cobra command tree. Running the binary with no
// subcommand starts the interactive client.
package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/HunterLewis000/newspaper-app/internal/config"
	"github.com/HunterLewis000/newspaper-app/internal/tui"
)

func NewRootCmd() *cobra.Command {
	var serverURL, userName string

	cmd := &cobra.Command{
		Use:          "newspaper",
		Short:        "Shared article desk: server + terminal client",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive client against the default server
  newspaper

  # Run the server
  newspaper serve --addr :5000

  # Run the client in a browser tab
  newspaper webtui --addr 127.0.0.1:3334
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive client.
			if len(args) > 0 {
				return cmd.Help()
			}
			cfg := config.Load()
			if v := strings.TrimSpace(serverURL); v != "" {
				cfg.ServerURL = v
			}
			if v := strings.TrimSpace(userName); v != "" {
				cfg.UserName = v
			}
			return tui.Run(cfg)
		},
	}

	cmd.PersistentFlags().StringVar(&serverURL, "server", "", "Server base URL (default: NEWSPAPER_SERVER_URL)")
	cmd.PersistentFlags().StringVar(&userName, "user", "", "Name attributed on status changes (default: NEWSPAPER_USER)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newWebTUICmd(&serverURL, &userName))

	return cmd
}
