package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docask/internal/adapters/driving/httpapi"
)

var (
	serveAddr       string
	serveUserHeader string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API used by browsers, scripts and iOS Shortcuts.

Endpoints:
  GET /api/search?q=...&user=...       JSON answer (plain text for Shortcuts)
  GET /api/search/text?q=...&user=...  plain text answer
  GET /api/users                       registered users
  GET /api/status                      Drive and language model status
  GET /health                          liveness

The listen address comes from --addr, then $PORT, then server.addr in
config.toml. The user registry is reloaded whenever its file changes.

Behind an authenticating proxy, --user-header names the header carrying
the signed-in user; it is used when a request has no user parameter.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address, e.g. :8080")
	serveCmd.Flags().StringVar(&serveUserHeader, "user-header", "", "trusted header naming the authenticated user, e.g. X-Remote-User")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := requireServices(cmd); err != nil {
		return err
	}

	addr, err := resolveServeAddr(serveAddr)
	if err != nil {
		return err
	}

	var opts []httpapi.Option
	if serveUserHeader != "" {
		opts = append(opts, httpapi.WithUserHeader(serveUserHeader))
	}
	server, err := httpapi.NewServer(answerService, opts...)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if watchRegistry != nil {
		go watchRegistry(ctx)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "docask API listening on %s\n", addr)
	return server.ListenAndServe(ctx, addr)
}

// resolveServeAddr picks the flag, then $PORT, then the configured address.
func resolveServeAddr(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if port := os.Getenv("PORT"); port != "" {
		return ":" + port, nil
	}
	if settingsService == nil {
		return ":8080", nil
	}
	settings, err := settingsService.Get()
	if err != nil {
		return "", fmt.Errorf("failed to get settings: %w", err)
	}
	return settings.Server.Addr, nil
}
