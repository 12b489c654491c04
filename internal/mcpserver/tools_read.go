package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerReadTools() {
	s.mcp.AddTool(mcp.NewTool("ipynb_read_notebook",
		mcp.WithDescription("Read a Jupyter notebook and return its structure summary "+
			"(cell count, cell type counts, kernel info, format version). "+
			"Use ipynb_get_cell or ipynb_list_cells for actual cell content."),
		mcp.WithString("ipynb_filepath", mcp.Required(), mcp.Description("Absolute path to the .ipynb file")),
	), s.readNotebook)

	s.mcp.AddTool(mcp.NewTool("ipynb_list_cells",
		mcp.WithDescription("List all cells with their indices, types, and 100-character content previews. "+
			"Prefer this over ipynb_get_cell when scanning for a cell's index."),
		mcp.WithString("ipynb_filepath", mcp.Required(), mcp.Description("Absolute path to the .ipynb file")),
	), s.listCells)

	s.mcp.AddTool(mcp.NewTool("ipynb_get_cell",
		mcp.WithDescription("Get the complete content of a specific cell. Supports negative "+
			"indexing (-1 is the last cell); valid range is -cell_count to cell_count-1."),
		mcp.WithString("ipynb_filepath", mcp.Required(), mcp.Description("Absolute path to the .ipynb file")),
		mcp.WithNumber("cell_index", mcp.Required(), mcp.Description("0-based cell index; negative counts from the end")),
	), s.getCell)

	s.mcp.AddTool(mcp.NewTool("ipynb_search_cells",
		mcp.WithDescription("Search for a regex pattern across all cells. Case-insensitive by default. "+
			"Returns one result per match with cell index, type, matched text, and surrounding context."),
		mcp.WithString("ipynb_filepath", mcp.Required(), mcp.Description("Absolute path to the .ipynb file")),
		mcp.WithString("pattern", mcp.Required(), mcp.Description("Search pattern (regex supported)")),
		mcp.WithBoolean("case_sensitive", mcp.Description("Match case exactly (default false)")),
	), s.searchCells)
}

func (s *Server) readNotebook(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("ipynb_filepath")
	if err != nil {
		return errResult(err), nil
	}
	sum, err := s.ops.GetSummary(path)
	if err != nil {
		return errResult(err), nil
	}
	return jsonResult(sum), nil
}

func (s *Server) listCells(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("ipynb_filepath")
	if err != nil {
		return errResult(err), nil
	}
	cells, err := s.ops.ListCells(path)
	if err != nil {
		return errResult(err), nil
	}
	return jsonResult(map[string]any{"cells": cells}), nil
}

func (s *Server) getCell(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("ipynb_filepath")
	if err != nil {
		return errResult(err), nil
	}
	index, err := req.RequireInt("cell_index")
	if err != nil {
		return errResult(err), nil
	}
	content, err := s.ops.GetCell(path, index)
	if err != nil {
		return errResult(err), nil
	}
	return jsonResult(map[string]any{"content": content}), nil
}

func (s *Server) searchCells(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("ipynb_filepath")
	if err != nil {
		return errResult(err), nil
	}
	pattern, err := req.RequireString("pattern")
	if err != nil {
		return errResult(err), nil
	}
	caseSensitive := req.GetBool("case_sensitive", false)

	results, err := s.ops.SearchCells(path, pattern, caseSensitive)
	if err != nil {
		return errResult(err), nil
	}
	return jsonResult(map[string]any{
		"results":     results,
		"match_count": len(results),
	}), nil
}
