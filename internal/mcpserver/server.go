// Package mcpserver exposes the notebook editing operations as MCP tools
// over stdio or streamable HTTP transport.
package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/raido/internal/catalog"
	"github.com/starford/raido/internal/ops"
)

// Server wraps the MCP server with all notebook tools registered.
type Server struct {
	mcp *server.MCPServer
	ops *ops.Service
	cat *catalog.DB // nil when no project scope is configured
}

// New creates an MCP server over the given operations service. cat may be
// nil; the workspace listing tool is only registered when it is present.
func New(svc *ops.Service, cat *catalog.DB) *Server {
	s := &Server{ops: svc, cat: cat}

	s.mcp = server.NewMCPServer(
		"Raido",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.registerReadTools()
	s.registerEditTools()
	s.registerMetadataTools()
	s.registerBatchTools()
	s.registerMultiTools()
	s.registerValidationTools()
	if s.cat != nil {
		s.registerCatalogTools()
	}

	// Resource: notebook format contract.
	s.mcp.AddResource(
		mcp.NewResource("raido://notebook-format", "Notebook Format Contract",
			mcp.WithResourceDescription("Structural rules every .ipynb document must satisfy."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNotebookFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// StreamableHTTP returns an http.Handler serving the MCP protocol at
// endpointPath, for mounting into a router.
func (s *Server) StreamableHTTP(endpointPath string) *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(s.mcp,
		server.WithEndpointPath(endpointPath),
	)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) readNotebookFormatResource(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "raido://notebook-format",
			MIMEType: "text/markdown",
			Text:     NotebookFormatContract,
		},
	}, nil
}

// jsonResult marshals a success payload. Success payloads never contain an
// "error" key; that key is reserved for the failure shape.
func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

// errResult converts any failure into the uniform {"error": message} shape.
// No operation lets a fault cross the tool boundary.
func errResult(err error) *mcp.CallToolResult {
	body, mErr := json.Marshal(map[string]string{"error": err.Error()})
	if mErr != nil {
		return mcp.NewToolResultError(err.Error())
	}
	r := mcp.NewToolResultText(string(body))
	r.IsError = true
	return r
}
