package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerValidationTools() {
	s.mcp.AddTool(mcp.NewTool("ipynb_validate_notebook",
		mcp.WithDescription("Validate a notebook's JSON structure against the nbformat rules. "+
			"Returns {valid: true} or {valid: false, errors: [...]} and never raises."),
		mcp.WithString("ipynb_filepath", mcp.Required(), mcp.Description("Absolute path to the notebook")),
	), s.validateNotebook)

	s.mcp.AddTool(mcp.NewTool("ipynb_get_notebook_info",
		mcp.WithDescription("Get detailed notebook information: cell counts by type, kernel, "+
			"format version, and file size in bytes."),
		mcp.WithString("ipynb_filepath", mcp.Required(), mcp.Description("Absolute path to the notebook")),
	), s.getNotebookInfo)

	s.mcp.AddTool(mcp.NewTool("ipynb_validate_notebooks_batch",
		mcp.WithDescription("Validate multiple notebooks in one call. Returns a per-path result "+
			"plus total/valid/invalid counts; an unreadable file reports as invalid."),
		mcp.WithArray("ipynb_filepaths", mcp.Required(), mcp.Description("Notebook paths to validate")),
	), s.validateNotebooksBatch)
}

func (s *Server) validateNotebook(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("ipynb_filepath")
	if err != nil {
		return errResult(err), nil
	}
	valid, msg := s.ops.Store().Validate(path)
	if valid {
		return jsonResult(map[string]any{"valid": true}), nil
	}
	return jsonResult(map[string]any{"valid": false, "errors": []string{msg}}), nil
}

func (s *Server) getNotebookInfo(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("ipynb_filepath")
	if err != nil {
		return errResult(err), nil
	}
	info, err := s.ops.GetInfo(path)
	if err != nil {
		return errResult(err), nil
	}
	return jsonResult(info), nil
}

func (s *Server) validateNotebooksBatch(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		Filepaths []string `json:"ipynb_filepaths"`
	}
	if err := req.BindArguments(&args); err != nil {
		return errResult(err), nil
	}
	results := s.ops.ValidateBatch(args.Filepaths)
	valid := 0
	for _, r := range results {
		if r.Valid {
			valid++
		}
	}
	return jsonResult(map[string]any{
		"results": results,
		"total":   len(results),
		"valid":   valid,
		"invalid": len(results) - valid,
	}), nil
}
