package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

const defaultListLimit = 50

func (s *Server) registerCatalogTools() {
	s.mcp.AddTool(mcp.NewTool("ipynb_list_notebooks",
		mcp.WithDescription("List notebooks in the configured project workspace. With a query, "+
			"results are ranked full-text matches over titles and cell sources; without one, "+
			"notebooks are listed by path."),
		mcp.WithString("query", mcp.Description("Optional search query over notebook titles and content")),
		mcp.WithNumber("limit", mcp.Description("Maximum results to return (default 50)")),
	), s.listNotebooks)
}

func (s *Server) listNotebooks(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	limit := req.GetInt("limit", defaultListLimit)

	rows, err := s.cat.List(query, limit)
	if err != nil {
		return errResult(err), nil
	}
	return jsonResult(map[string]any{
		"notebooks": rows,
		"count":     len(rows),
	}), nil
}
