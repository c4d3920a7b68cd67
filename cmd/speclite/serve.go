package main

import (
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/speclite/speclite/internal/git"
	speclitemcp "github.com/speclite/speclite/internal/mcp"
	"github.com/speclite/speclite/internal/output"
)

// newServeCmd creates the serve command for running as an MCP server.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run as MCP server (stdio transport)",
		Long: `Run speclite as a Model Context Protocol (MCP) server over stdio.

This exposes read-only project inspection as MCP tools that any
MCP-capable agent environment can use (Claude Code, Cursor, Windsurf,
Gemini CLI, etc).

Configure in your agent's MCP settings:
  {
    "mcpServers": {
      "speclite": {
        "command": "speclite",
        "args": ["serve"]
      }
    }
  }

Available tools: context, commands, plan`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, err := os.Getwd()
			if err != nil {
				return output.NewSystemErrorWithCause("determining working directory", err)
			}
			if repoRoot, rootErr := git.RepoRoot(root); rootErr == nil {
				root = repoRoot
			}

			c, err := loadCorpusForCLI()
			if err != nil {
				return err
			}

			server := speclitemcp.NewServer(buildVersion(), root, c)
			return server.Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
}
