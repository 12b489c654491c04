package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/raido/internal/notebook"
)

func (s *Server) registerBatchTools() {
	s.mcp.AddTool(mcp.NewTool("ipynb_replace_cells_batch",
		mcp.WithDescription("Replace the content of multiple cells in a single read-modify-write "+
			"cycle. All indices are resolved against the original document and validated before "+
			"anything changes; one bad index aborts the whole batch."),
		mcp.WithString("ipynb_filepath", mcp.Required(), mcp.Description("Absolute path to the .ipynb file")),
		mcp.WithArray("replacements", mcp.Required(),
			mcp.Description("List of {cell_index, content} replacement specs")),
	), s.replaceCellsBatch)

	s.mcp.AddTool(mcp.NewTool("ipynb_delete_cells_batch",
		mcp.WithDescription("Delete multiple cells in one operation. Provide indices as they exist "+
			"before any deletion; the tool validates them all, then deletes in descending order so "+
			"indices never drift."),
		mcp.WithString("ipynb_filepath", mcp.Required(), mcp.Description("Absolute path to the .ipynb file")),
		mcp.WithArray("cell_indices", mcp.Required(), mcp.Description("Cell indices to delete (0-based)")),
	), s.deleteCellsBatch)

	s.mcp.AddTool(mcp.NewTool("ipynb_insert_cells_batch",
		mcp.WithDescription("Insert multiple cells sequentially in the order given. Each insertion's "+
			"index is interpreted against the document state after all prior insertions in the batch."),
		mcp.WithString("ipynb_filepath", mcp.Required(), mcp.Description("Absolute path to the .ipynb file")),
		mcp.WithArray("insertions", mcp.Required(),
			mcp.Description("List of {cell_index, content, cell_type} insertion specs")),
	), s.insertCellsBatch)

	s.mcp.AddTool(mcp.NewTool("ipynb_search_replace_all",
		mcp.WithDescription("Search and replace a regex pattern across all cells, optionally "+
			"filtered by cell type. All non-overlapping matches are replaced; $1-style "+
			"backreferences are supported. Use ipynb_str_replace_in_cell for one specific cell."),
		mcp.WithString("ipynb_filepath", mcp.Required(), mcp.Description("Absolute path to the .ipynb file")),
		mcp.WithString("pattern", mcp.Required(), mcp.Description("Search pattern (regex)")),
		mcp.WithString("replacement", mcp.Required(), mcp.Description("Replacement text; may use capture group references")),
		mcp.WithString("cell_type", mcp.Description("Only replace in cells of this type: 'code', 'markdown', or 'raw'")),
	), s.searchReplaceAll)

	s.mcp.AddTool(mcp.NewTool("ipynb_reorder_cells",
		mcp.WithDescription("Rearrange cells: position k of the result holds the cell that was at "+
			"new_order[k]. new_order must contain every current index exactly once."),
		mcp.WithString("ipynb_filepath", mcp.Required(), mcp.Description("Absolute path to the .ipynb file")),
		mcp.WithArray("new_order", mcp.Required(), mcp.Description("Permutation of all current cell indices")),
	), s.reorderCells)

	s.mcp.AddTool(mcp.NewTool("ipynb_filter_cells",
		mcp.WithDescription("Keep only cells matching the criteria and delete all others. With both "+
			"cell_type and pattern given, cells must match BOTH to be kept; with neither, every "+
			"cell is kept. Cannot be undone."),
		mcp.WithString("ipynb_filepath", mcp.Required(), mcp.Description("Absolute path to the .ipynb file")),
		mcp.WithString("cell_type", mcp.Description("Keep only cells of this type: 'code', 'markdown', or 'raw'")),
		mcp.WithString("pattern", mcp.Description("Keep only cells whose content matches this regex")),
	), s.filterCells)
}

func (s *Server) replaceCellsBatch(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		Filepath     string                 `json:"ipynb_filepath"`
		Replacements []notebook.Replacement `json:"replacements"`
	}
	if err := req.BindArguments(&args); err != nil {
		return errResult(err), nil
	}
	if err := s.ops.ReplaceCellsBatch(args.Filepath, args.Replacements); err != nil {
		return errResult(err), nil
	}
	return jsonResult(map[string]any{"success": true, "cells_modified": len(args.Replacements)}), nil
}

func (s *Server) deleteCellsBatch(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		Filepath string `json:"ipynb_filepath"`
		Indices  []int  `json:"cell_indices"`
	}
	if err := req.BindArguments(&args); err != nil {
		return errResult(err), nil
	}
	count, err := s.ops.DeleteCellsBatch(args.Filepath, args.Indices)
	if err != nil {
		return errResult(err), nil
	}
	return jsonResult(map[string]any{
		"success":        true,
		"cells_deleted":  len(args.Indices),
		"new_cell_count": count,
	}), nil
}

func (s *Server) insertCellsBatch(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		Filepath   string               `json:"ipynb_filepath"`
		Insertions []notebook.Insertion `json:"insertions"`
	}
	if err := req.BindArguments(&args); err != nil {
		return errResult(err), nil
	}
	if err := s.ops.InsertCellsBatch(args.Filepath, args.Insertions); err != nil {
		return errResult(err), nil
	}
	return jsonResult(map[string]any{"success": true, "cells_inserted": len(args.Insertions)}), nil
}

func (s *Server) searchReplaceAll(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("ipynb_filepath")
	if err != nil {
		return errResult(err), nil
	}
	pattern, err := req.RequireString("pattern")
	if err != nil {
		return errResult(err), nil
	}
	replacement, err := req.RequireString("replacement")
	if err != nil {
		return errResult(err), nil
	}
	cellType := req.GetString("cell_type", "")

	count, err := s.ops.SearchReplaceAll(path, pattern, replacement, cellType)
	if err != nil {
		return errResult(err), nil
	}
	return jsonResult(map[string]any{"success": true, "replacements_made": count}), nil
}

func (s *Server) reorderCells(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		Filepath string `json:"ipynb_filepath"`
		NewOrder []int  `json:"new_order"`
	}
	if err := req.BindArguments(&args); err != nil {
		return errResult(err), nil
	}
	if err := s.ops.ReorderCells(args.Filepath, args.NewOrder); err != nil {
		return errResult(err), nil
	}
	return jsonResult(map[string]any{"success": true}), nil
}

func (s *Server) filterCells(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("ipynb_filepath")
	if err != nil {
		return errResult(err), nil
	}
	cellType := req.GetString("cell_type", "")
	pattern := req.GetString("pattern", "")

	kept, deleted, err := s.ops.FilterCells(path, cellType, pattern)
	if err != nil {
		return errResult(err), nil
	}
	return jsonResult(map[string]any{
		"success":       true,
		"cells_kept":    kept,
		"cells_deleted": deleted,
	}), nil
}
