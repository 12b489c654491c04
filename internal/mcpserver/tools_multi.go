package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/raido/internal/apperr"
)

func (s *Server) registerMultiTools() {
	s.mcp.AddTool(mcp.NewTool("ipynb_merge_notebooks",
		mcp.WithDescription("Merge multiple notebooks into one. Cells are appended in input order; "+
			"the first notebook's metadata is used for the output. With add_separators (default true) "+
			"a markdown cell naming the source file precedes each notebook's content."),
		mcp.WithString("output_ipynb_filepath", mcp.Required(), mcp.Description("Absolute path for the merged output notebook")),
		mcp.WithArray("input_ipynb_filepaths", mcp.Required(), mcp.Description("Notebook paths to merge, in order")),
		mcp.WithBoolean("add_separators", mcp.Description("Insert separator cells between notebooks (default true)")),
	), s.mergeNotebooks)

	s.mcp.AddTool(mcp.NewTool("ipynb_split_notebook",
		mcp.WithDescription("Split a notebook into numbered parts at markdown heading cells. Cells "+
			"before the first heading form the first part. Each part inherits the source metadata."),
		mcp.WithString("ipynb_filepath", mcp.Required(), mcp.Description("Absolute path to the source notebook")),
		mcp.WithString("output_dir", mcp.Required(), mcp.Description("Directory for the split notebooks; created if missing")),
		mcp.WithString("split_by", mcp.Description("Splitting strategy; only 'markdown_headers' is supported (default)")),
	), s.splitNotebook)

	s.mcp.AddTool(mcp.NewTool("ipynb_apply_to_notebooks",
		mcp.WithDescription("Apply one operation ('set_kernel', 'clear_outputs', or 'update_metadata') "+
			"to every listed notebook independently. A failure on one path does not abort the others; "+
			"the result maps each path to its outcome."),
		mcp.WithArray("ipynb_filepaths", mcp.Required(), mcp.Description("Notebook paths to process")),
		mcp.WithString("operation", mcp.Required(), mcp.Description("'set_kernel', 'clear_outputs', or 'update_metadata'")),
		mcp.WithObject("operation_params", mcp.Description("Parameters for the operation, e.g. {kernel_name, display_name}")),
	), s.applyToNotebooks)

	s.mcp.AddTool(mcp.NewTool("ipynb_search_notebooks",
		mcp.WithDescription("Search for a regex pattern across multiple notebooks. Returns matches "+
			"with file path, cell index, cell type, and optional surrounding context."),
		mcp.WithArray("ipynb_filepaths", mcp.Required(), mcp.Description("Notebook paths to search")),
		mcp.WithString("pattern", mcp.Required(), mcp.Description("Search pattern (regex supported)")),
		mcp.WithBoolean("return_context", mcp.Description("Include surrounding text per match (default true)")),
	), s.searchNotebooks)

	s.mcp.AddTool(mcp.NewTool("ipynb_sync_metadata",
		mcp.WithDescription("Synchronize metadata across multiple notebooks. With merge false "+
			"(default) each notebook's metadata is replaced by the given mapping; with merge true "+
			"given keys are merged over existing metadata (given keys win, others preserved)."),
		mcp.WithArray("ipynb_filepaths", mcp.Required(), mcp.Description("Notebook paths to update")),
		mcp.WithObject("metadata", mcp.Required(), mcp.Description("Metadata mapping to apply")),
		mcp.WithBoolean("merge", mcp.Description("Merge instead of replace (default false)")),
	), s.syncMetadata)

	s.mcp.AddTool(mcp.NewTool("ipynb_extract_cells",
		mcp.WithDescription("Extract cells matching a pattern and/or cell type from multiple "+
			"notebooks into a new notebook, preserving encounter order. With both criteria given, "+
			"cells must match BOTH; with neither, every cell is extracted."),
		mcp.WithString("output_ipynb_filepath", mcp.Required(), mcp.Description("Absolute path for the new notebook")),
		mcp.WithArray("input_ipynb_filepaths", mcp.Required(), mcp.Description("Source notebook paths")),
		mcp.WithString("pattern", mcp.Description("Extract only cells whose content matches this regex")),
		mcp.WithString("cell_type", mcp.Description("Extract only cells of this type: 'code', 'markdown', or 'raw'")),
	), s.extractCells)

	s.mcp.AddTool(mcp.NewTool("ipynb_clear_outputs",
		mcp.WithDescription("Clear all execution outputs and counts from code cells in one or more "+
			"notebooks. Recommended before git commits to prevent information leakage and merge conflicts. "+
			"Accepts a single path or a list."),
		mcp.WithString("ipynb_filepaths", mcp.Required(), mcp.Description("A notebook path or a list of paths")),
	), s.clearOutputs)
}

// pathList normalizes a string-or-list-of-strings argument to a list.
func pathList(v any) ([]string, error) {
	switch t := v.(type) {
	case string:
		return []string{t}, nil
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, apperr.Valuef("paths must be strings")
			}
			out = append(out, s)
		}
		return out, nil
	case []string:
		return t, nil
	default:
		return nil, apperr.Valuef("expected a path or a list of paths")
	}
}

func (s *Server) mergeNotebooks(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		Output    string   `json:"output_ipynb_filepath"`
		Inputs    []string `json:"input_ipynb_filepaths"`
		Separator *bool    `json:"add_separators"`
	}
	if err := req.BindArguments(&args); err != nil {
		return errResult(err), nil
	}
	addSeparators := args.Separator == nil || *args.Separator

	total, err := s.ops.Merge(args.Output, args.Inputs, addSeparators)
	if err != nil {
		return errResult(err), nil
	}
	return jsonResult(map[string]any{
		"success":          true,
		"total_cells":      total,
		"notebooks_merged": len(args.Inputs),
	}), nil
}

func (s *Server) splitNotebook(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("ipynb_filepath")
	if err != nil {
		return errResult(err), nil
	}
	outDir, err := req.RequireString("output_dir")
	if err != nil {
		return errResult(err), nil
	}
	strategy := req.GetString("split_by", "markdown_headers")

	files, err := s.ops.Split(path, outDir, strategy)
	if err != nil {
		return errResult(err), nil
	}
	return jsonResult(map[string]any{"success": true, "files_created": files}), nil
}

func (s *Server) applyToNotebooks(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		Filepaths []string       `json:"ipynb_filepaths"`
		Operation string         `json:"operation"`
		Params    map[string]any `json:"operation_params"`
	}
	if err := req.BindArguments(&args); err != nil {
		return errResult(err), nil
	}
	if args.Params == nil {
		args.Params = map[string]any{}
	}

	results, err := s.ops.ApplyToNotebooks(args.Filepaths, args.Operation, args.Params)
	if err != nil {
		return errResult(err), nil
	}
	successful := 0
	for _, ok := range results {
		if ok {
			successful++
		}
	}
	return jsonResult(map[string]any{
		"success":    true,
		"results":    results,
		"successful": successful,
		"failed":     len(results) - successful,
	}), nil
}

func (s *Server) searchNotebooks(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		Filepaths []string `json:"ipynb_filepaths"`
		Pattern   string   `json:"pattern"`
		Context   *bool    `json:"return_context"`
	}
	if err := req.BindArguments(&args); err != nil {
		return errResult(err), nil
	}
	withContext := args.Context == nil || *args.Context

	results, err := s.ops.SearchNotebooks(args.Filepaths, args.Pattern, withContext)
	if err != nil {
		return errResult(err), nil
	}
	return jsonResult(map[string]any{
		"results":     results,
		"match_count": len(results),
	}), nil
}

func (s *Server) syncMetadata(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		Filepaths []string       `json:"ipynb_filepaths"`
		Metadata  map[string]any `json:"metadata"`
		Merge     bool           `json:"merge"`
	}
	if err := req.BindArguments(&args); err != nil {
		return errResult(err), nil
	}
	count, err := s.ops.SyncMetadata(args.Filepaths, args.Metadata, args.Merge)
	if err != nil {
		return errResult(err), nil
	}
	return jsonResult(map[string]any{"success": true, "notebooks_updated": count}), nil
}

func (s *Server) extractCells(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		Output   string   `json:"output_ipynb_filepath"`
		Inputs   []string `json:"input_ipynb_filepaths"`
		Pattern  string   `json:"pattern"`
		CellType string   `json:"cell_type"`
	}
	if err := req.BindArguments(&args); err != nil {
		return errResult(err), nil
	}
	count, err := s.ops.Extract(args.Output, args.Inputs, args.Pattern, args.CellType)
	if err != nil {
		return errResult(err), nil
	}
	return jsonResult(map[string]any{
		"success":          true,
		"cells_extracted":  count,
		"source_notebooks": len(args.Inputs),
	}), nil
}

func (s *Server) clearOutputs(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	paths, err := pathList(req.GetArguments()["ipynb_filepaths"])
	if err != nil {
		return errResult(err), nil
	}
	count, err := s.ops.ClearOutputs(paths)
	if err != nil {
		return errResult(err), nil
	}
	return jsonResult(map[string]any{"success": true, "notebooks_processed": count}), nil
}
