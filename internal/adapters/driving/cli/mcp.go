package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docask/internal/adapters/driving/mcp"
)

var mcpPort int

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve docask to AI assistants over MCP",
	Long: `Runs a Model Context Protocol server so an assistant can ask questions
on a user's behalf.

Tools:      ask(query, user)
Resources:  docask://users, docask://status

Stdio is used by default, which is what desktop assistants expect:

  {
    "mcpServers": {
      "docask": {"command": "/usr/local/bin/docask", "args": ["mcp"]}
    }
  }

With --port the streamable HTTP transport is served at /mcp instead.`,
	Example: `  docask mcp
  docask mcp --port 8081`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "serve HTTP on this port instead of stdio")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	if err := requireServices(cmd); err != nil {
		return err
	}

	server, err := mcp.NewServer(&mcp.Ports{Answers: answerService, Version: version})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if watchRegistry != nil {
		go watchRegistry(ctx)
	}

	if mcpPort <= 0 {
		return server.Run(ctx)
	}
	addr := fmt.Sprintf(":%d", mcpPort)
	fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s%s\n", addr, mcp.Endpoint)
	return server.RunHTTP(ctx, addr)
}
