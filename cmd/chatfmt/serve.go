package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	chatfmtmcp "github.com/gorewood/chatfmt/internal/mcp"
)

// newServeCmd creates the serve command for running as an MCP server.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run as MCP server (stdio transport)",
		Long: `Run chatfmt as a Model Context Protocol (MCP) server over stdio.

The catalog is built from the same sources as the other commands (--config,
--template-dir, template directories). Templates registered through the
register_template tool live for the session only.

Configure in your agent's MCP settings:
  {
    "mcpServers": {
      "chatfmt": {
        "command": "chatfmt",
        "args": ["serve", "--config", "run.yaml"]
      }
    }
  }

Available tools: resolve_template, list_templates, show_template, register_template`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := loadSession(cmd)
			if err != nil {
				return toExitError(err)
			}
			server := chatfmtmcp.NewServer(buildVersion(), sess.resolver)
			return server.Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
}
