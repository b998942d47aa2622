// Package mcp provides a Model Context Protocol server for chatfmt.
// It exposes template resolution and the catalog as MCP tools.
package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gorewood/chatfmt/internal/resolve"
)

// NewServer creates an MCP server with all chatfmt tools registered.
func NewServer(version string, resolver *resolve.Resolver) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "chatfmt",
		Version: version,
	}, nil)
	registerTools(server, resolver)
	return server
}

// boolPtr returns a pointer to a bool value.
func boolPtr(b bool) *bool {
	return &b
}

// readOnlyAnnotations returns annotations for read-only tools.
func readOnlyAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		ReadOnlyHint:   true,
		IdempotentHint: true,
		OpenWorldHint:  boolPtr(false),
	}
}

// writeAnnotations returns annotations for additive tools.
func writeAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		DestructiveHint: boolPtr(false),
		OpenWorldHint:   boolPtr(false),
	}
}

// registerTools adds all chatfmt tools to the server.
func registerTools(server *mcp.Server, resolver *resolve.Resolver) {
	mcp.AddTool(server, &mcp.Tool{
		Name: "resolve_template",
		Description: "Resolve a chat_template choice to the template string a model should use. " +
			"Choices: a catalog name, 'jinja' (requires inline), 'tokenizer_default', or " +
			"'tokenizer_default_fallback_<name>'.",
		Annotations: readOnlyAnnotations(),
	}, handleResolve(resolver))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_templates",
		Description: "List the named chat templates in the catalog with their source and description.",
		Annotations: readOnlyAnnotations(),
	}, handleList(resolver))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "show_template",
		Description: "Return the body of a named chat template from the catalog.",
		Annotations: readOnlyAnnotations(),
	}, handleShow(resolver))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "register_template",
		Description: "Add a named chat template to the catalog for this session. Existing names cannot be replaced.",
		Annotations: writeAnnotations(),
	}, handleRegister(resolver))
}
