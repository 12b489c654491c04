package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/raido/internal/notebook"
)

func (s *Server) registerEditTools() {
	s.mcp.AddTool(mcp.NewTool("ipynb_replace_cell",
		mcp.WithDescription("Replace the entire content of a specific cell. The cell type is "+
			"preserved. Use ipynb_str_replace_in_cell for partial replacement and "+
			"ipynb_replace_cells_batch for multiple cells."),
		mcp.WithString("ipynb_filepath", mcp.Required(), mcp.Description("Absolute path to the .ipynb file")),
		mcp.WithNumber("cell_index", mcp.Required(), mcp.Description("0-based cell index; negative counts from the end")),
		mcp.WithString("new_content", mcp.Required(), mcp.Description("New cell content as plain text")),
	), s.replaceCell)

	s.mcp.AddTool(mcp.NewTool("ipynb_insert_cell",
		mcp.WithDescription("Insert a new cell so it occupies the given position; existing cells "+
			"at and after it shift down by one. Use ipynb_append_cell to add at the end, "+
			"ipynb_insert_cells_batch for multiple insertions."),
		mcp.WithString("ipynb_filepath", mcp.Required(), mcp.Description("Absolute path to the .ipynb file")),
		mcp.WithNumber("cell_index", mcp.Required(), mcp.Description("Position for the new cell; cell_count appends")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Cell content as plain text")),
		mcp.WithString("cell_type", mcp.Description("'code' (default), 'markdown', or 'raw'")),
	), s.insertCell)

	s.mcp.AddTool(mcp.NewTool("ipynb_append_cell",
		mcp.WithDescription("Append a new cell to the end of the notebook. "+
			"Use ipynb_insert_cell to insert at a specific position."),
		mcp.WithString("ipynb_filepath", mcp.Required(), mcp.Description("Absolute path to the .ipynb file")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Cell content as plain text")),
		mcp.WithString("cell_type", mcp.Description("'code' (default), 'markdown', or 'raw'")),
	), s.appendCell)

	s.mcp.AddTool(mcp.NewTool("ipynb_delete_cell",
		mcp.WithDescription("Delete the cell at the given index; later cells shift up by one. "+
			"Use ipynb_delete_cells_batch for several cells, ipynb_filter_cells for criteria-based deletion."),
		mcp.WithString("ipynb_filepath", mcp.Required(), mcp.Description("Absolute path to the .ipynb file")),
		mcp.WithNumber("cell_index", mcp.Required(), mcp.Description("0-based cell index; negative counts from the end")),
	), s.deleteCell)

	s.mcp.AddTool(mcp.NewTool("ipynb_str_replace_in_cell",
		mcp.WithDescription("Replace a substring within one cell. old_str must occur in the cell "+
			"exactly once; zero or multiple occurrences fail. Safer than ipynb_replace_cell for "+
			"changing a small portion of a cell."),
		mcp.WithString("ipynb_filepath", mcp.Required(), mcp.Description("Absolute path to the .ipynb file")),
		mcp.WithNumber("cell_index", mcp.Required(), mcp.Description("0-based cell index; negative counts from the end")),
		mcp.WithString("old_str", mcp.Required(), mcp.Description("Exact string to replace; must occur exactly once")),
		mcp.WithString("new_str", mcp.Required(), mcp.Description("Replacement string")),
	), s.strReplaceInCell)
}

func (s *Server) replaceCell(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("ipynb_filepath")
	if err != nil {
		return errResult(err), nil
	}
	index, err := req.RequireInt("cell_index")
	if err != nil {
		return errResult(err), nil
	}
	content, err := req.RequireString("new_content")
	if err != nil {
		return errResult(err), nil
	}
	if err := s.ops.ReplaceCell(path, index, content); err != nil {
		return errResult(err), nil
	}
	return jsonResult(map[string]any{"success": true}), nil
}

func (s *Server) insertCell(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("ipynb_filepath")
	if err != nil {
		return errResult(err), nil
	}
	index, err := req.RequireInt("cell_index")
	if err != nil {
		return errResult(err), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return errResult(err), nil
	}
	cellType := req.GetString("cell_type", notebook.TypeCode)

	count, err := s.ops.InsertCell(path, index, content, cellType)
	if err != nil {
		return errResult(err), nil
	}
	return jsonResult(map[string]any{"success": true, "new_cell_count": count}), nil
}

func (s *Server) appendCell(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("ipynb_filepath")
	if err != nil {
		return errResult(err), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return errResult(err), nil
	}
	cellType := req.GetString("cell_type", notebook.TypeCode)

	index, err := s.ops.AppendCell(path, content, cellType)
	if err != nil {
		return errResult(err), nil
	}
	return jsonResult(map[string]any{"success": true, "cell_index": index}), nil
}

func (s *Server) deleteCell(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("ipynb_filepath")
	if err != nil {
		return errResult(err), nil
	}
	index, err := req.RequireInt("cell_index")
	if err != nil {
		return errResult(err), nil
	}
	count, err := s.ops.DeleteCell(path, index)
	if err != nil {
		return errResult(err), nil
	}
	return jsonResult(map[string]any{"success": true, "new_cell_count": count}), nil
}

func (s *Server) strReplaceInCell(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("ipynb_filepath")
	if err != nil {
		return errResult(err), nil
	}
	index, err := req.RequireInt("cell_index")
	if err != nil {
		return errResult(err), nil
	}
	oldStr, err := req.RequireString("old_str")
	if err != nil {
		return errResult(err), nil
	}
	newStr, err := req.RequireString("new_str")
	if err != nil {
		return errResult(err), nil
	}
	if err := s.ops.StrReplaceInCell(path, index, oldStr, newStr); err != nil {
		return errResult(err), nil
	}
	return jsonResult(map[string]any{"success": true}), nil
}
