// Package mcp provides a Model Context Protocol server for speclite.
// It exposes read-only project inspection as MCP tools that any
// MCP-capable agent can use: feature context resolution, the logical
// command catalog, and dry-run provisioning plans.
package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/speclite/speclite/internal/corpus"
)

// NewServer creates an MCP server with all speclite tools registered.
// root is the project directory the tools operate on.
func NewServer(version, root string, c *corpus.Corpus) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "speclite",
		Version: version,
	}, nil)
	registerTools(server, root, c)
	return server
}

// boolPtr returns a pointer to a bool value.
func boolPtr(b bool) *bool {
	return &b
}

// readOnlyAnnotations returns annotations for read-only tools. Every
// speclite tool is read-only: provisioning writes stay behind the CLI,
// where the confirmation gate lives.
func readOnlyAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		ReadOnlyHint:   true,
		IdempotentHint: true,
		OpenWorldHint:  boolPtr(false),
	}
}

// registerTools adds all speclite tools to the server.
func registerTools(server *mcp.Server, root string, c *corpus.Corpus) {
	mcp.AddTool(server, &mcp.Tool{
		Name: "context",
		Description: "Resolve the active feature: its changes/ directory and the absolute paths " +
			"of its spec, plan, and tasks files. Optionally verify required artifacts exist.",
		Annotations: readOnlyAnnotations(),
	}, handleContext(root))

	mcp.AddTool(server, &mcp.Tool{
		Name: "commands",
		Description: "List the workflow commands this project provisions for each agent, " +
			"with their descriptions.",
		Annotations: readOnlyAnnotations(),
	}, handleCommands(c))

	mcp.AddTool(server, &mcp.Tool{
		Name: "plan",
		Description: "Compute the provisioning plan for a set of agents without writing anything: " +
			"which files would be created, overwritten, or skipped as protected.",
		Annotations: readOnlyAnnotations(),
	}, handlePlan(root, c))
}
