package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/kernels"
	"github.com/starford/raido/internal/notebook"
)

func (s *Server) registerMetadataTools() {
	s.mcp.AddTool(mcp.NewTool("ipynb_get_metadata",
		mcp.WithDescription("Get metadata from a notebook, or from one cell when cell_index is given."),
		mcp.WithString("ipynb_filepath", mcp.Required(), mcp.Description("Absolute path to the .ipynb file")),
		mcp.WithNumber("cell_index", mcp.Description("Cell to read metadata from; omit for notebook-level metadata")),
	), s.getMetadata)

	s.mcp.AddTool(mcp.NewTool("ipynb_update_metadata",
		mcp.WithDescription("Merge the given mapping into notebook metadata, or into one cell's "+
			"metadata when cell_index is given. Given keys overwrite; other existing keys are preserved. "+
			"Use ipynb_set_kernel for kernel settings, ipynb_sync_metadata for multiple notebooks."),
		mcp.WithString("ipynb_filepath", mcp.Required(), mcp.Description("Absolute path to the .ipynb file")),
		mcp.WithObject("metadata", mcp.Required(), mcp.Description("Metadata mapping to merge")),
		mcp.WithNumber("cell_index", mcp.Description("Cell to update; omit for notebook-level metadata")),
	), s.updateMetadata)

	s.mcp.AddTool(mcp.NewTool("ipynb_set_kernel",
		mcp.WithDescription("Set the kernel specification for a notebook. "+
			"Use ipynb_list_available_kernels for common configurations."),
		mcp.WithString("ipynb_filepath", mcp.Required(), mcp.Description("Absolute path to the .ipynb file")),
		mcp.WithString("kernel_name", mcp.Required(), mcp.Description("Internal kernel identifier, e.g. 'python3' or 'ir'")),
		mcp.WithString("display_name", mcp.Required(), mcp.Description("Human-readable name shown in the Jupyter UI")),
		mcp.WithString("language", mcp.Description("Programming language (default 'python')")),
	), s.setKernel)

	s.mcp.AddTool(mcp.NewTool("ipynb_list_available_kernels",
		mcp.WithDescription("List common Jupyter kernel configurations. Static reference data; "+
			"actual availability depends on what is installed on the target system."),
	), s.listAvailableKernels)
}

// optionalInt reads an optional integer argument, distinguishing absent
// from present. JSON numbers arrive as float64.
func optionalInt(req mcp.CallToolRequest, key string) (*int, error) {
	v, ok := req.GetArguments()[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch n := v.(type) {
	case float64:
		i := int(n)
		return &i, nil
	case int:
		return &n, nil
	default:
		return nil, apperr.Valuef("%s must be an integer", key)
	}
}

func (s *Server) getMetadata(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("ipynb_filepath")
	if err != nil {
		return errResult(err), nil
	}
	cellIndex, err := optionalInt(req, "cell_index")
	if err != nil {
		return errResult(err), nil
	}
	meta, err := s.ops.GetMetadata(path, cellIndex)
	if err != nil {
		return errResult(err), nil
	}
	return jsonResult(meta), nil
}

func (s *Server) updateMetadata(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("ipynb_filepath")
	if err != nil {
		return errResult(err), nil
	}
	meta, ok := req.GetArguments()["metadata"].(map[string]any)
	if !ok {
		return errResult(apperr.Valuef("metadata must be a mapping")), nil
	}
	cellIndex, err := optionalInt(req, "cell_index")
	if err != nil {
		return errResult(err), nil
	}
	if err := s.ops.UpdateMetadata(path, meta, cellIndex); err != nil {
		return errResult(err), nil
	}
	return jsonResult(map[string]any{"success": true}), nil
}

func (s *Server) setKernel(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("ipynb_filepath")
	if err != nil {
		return errResult(err), nil
	}
	name, err := req.RequireString("kernel_name")
	if err != nil {
		return errResult(err), nil
	}
	display, err := req.RequireString("display_name")
	if err != nil {
		return errResult(err), nil
	}
	language := req.GetString("language", "python")

	kernel := notebook.KernelSpec{Name: name, DisplayName: display, Language: language}
	if err := s.ops.SetKernel(path, kernel); err != nil {
		return errResult(err), nil
	}
	return jsonResult(map[string]any{"success": true}), nil
}

func (s *Server) listAvailableKernels(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(map[string]any{"kernels": kernels.Common()}), nil
}
