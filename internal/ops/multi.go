package ops

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/notebook"
)

// Multi-notebook composition. Each operation loads every input before
// writing anything, so a bad input aborts before any output exists. The
// one deliberate exception is ApplyToNotebooks, which tolerates per-path
// failures after its operation name has been validated.

// Merge concatenates the cells of each input, in listed order, into a new
// notebook at outPath. Output metadata is copied from the first input. When
// addSeparators is set, a markdown cell naming the source file precedes
// each input's block (including the first), so the result holds
// sum(cells) + len(inputs) cells. Returns the total cell count.
func (s *Service) Merge(outPath string, inputPaths []string, addSeparators bool) (int, error) {
	if len(inputPaths) == 0 {
		return 0, apperr.Valuef("No input notebooks given")
	}
	inputs := make([]*notebook.Notebook, len(inputPaths))
	for i, p := range inputPaths {
		nb, err := s.store.Load(p)
		if err != nil {
			return 0, err
		}
		inputs[i] = nb
	}

	merged := derived(inputs[0])
	for i, nb := range inputs {
		if addSeparators {
			sep := fmt.Sprintf("## Merged from: %s", filepath.Base(inputPaths[i]))
			merged.Cells = append(merged.Cells, notebook.NewCell(notebook.TypeMarkdown, sep))
		}
		merged.Cells = append(merged.Cells, nb.Cells...)
	}

	if err := s.store.Save(outPath, merged); err != nil {
		return 0, err
	}
	return len(merged.Cells), nil
}

// SplitByMarkdownHeaders is the only supported split strategy.
const SplitByMarkdownHeaders = "markdown_headers"

// Split breaks the notebook at inPath into numbered parts under outDir.
// Every markdown cell whose source begins with a heading marker opens a new
// part; cells before the first heading form the first part rather than
// being dropped. Each part inherits the source notebook's metadata. Returns
// the created file paths in encounter order.
func (s *Service) Split(inPath, outDir, strategy string) ([]string, error) {
	if strategy != SplitByMarkdownHeaders {
		return nil, apperr.Valuef("Unknown split strategy: %q (supported: %q)", strategy, SplitByMarkdownHeaders)
	}
	src, err := s.store.Load(inPath)
	if err != nil {
		return nil, err
	}

	var groups [][]notebook.Cell
	for _, c := range src.Cells {
		if startsHeading(c) || len(groups) == 0 {
			groups = append(groups, []notebook.Cell{})
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], c)
	}

	created := []string{}
	for i, cells := range groups {
		part := derived(src)
		part.Cells = cells

		path := filepath.Join(outDir, fmt.Sprintf("part_%03d.ipynb", i+1))
		if err := s.store.Save(path, part); err != nil {
			return nil, err
		}
		created = append(created, path)
	}
	return created, nil
}

// derived creates an empty notebook inheriting format version and a
// shallow copy of the metadata of src.
func derived(src *notebook.Notebook) *notebook.Notebook {
	return &notebook.Notebook{
		NBFormat:      src.NBFormat,
		NBFormatMinor: src.NBFormatMinor,
		Metadata:      notebook.MergeMeta(map[string]any{}, src.Metadata),
		Cells:         []notebook.Cell{},
	}
}

// startsHeading reports whether c is a markdown cell whose source begins
// (after leading whitespace) with a '#' heading marker.
func startsHeading(c notebook.Cell) bool {
	return c.Type == notebook.TypeMarkdown && strings.HasPrefix(strings.TrimSpace(c.Source), "#")
}

// Extract collects the cells matching the AND-combination of pattern and
// cellType from every input, preserving encounter order across files then
// within a file, and writes them as a new notebook at outPath. With neither
// criterion every cell is extracted. Returns the extracted cell count.
func (s *Service) Extract(outPath string, inputPaths []string, pattern, cellType string) (int, error) {
	if len(inputPaths) == 0 {
		return 0, apperr.Valuef("No input notebooks given")
	}
	inputs := make([]*notebook.Notebook, len(inputPaths))
	for i, p := range inputPaths {
		nb, err := s.store.Load(p)
		if err != nil {
			return 0, err
		}
		inputs[i] = nb
	}

	out := derived(inputs[0])
	for _, nb := range inputs {
		cells, err := nb.MatchCells(cellType, pattern)
		if err != nil {
			return 0, err
		}
		out.Cells = append(out.Cells, cells...)
	}

	if err := s.store.Save(outPath, out); err != nil {
		return 0, err
	}
	return len(out.Cells), nil
}

// Apply operation names accepted by ApplyToNotebooks.
const (
	OpSetKernel      = "set_kernel"
	OpClearOutputs   = "clear_outputs"
	OpUpdateMetadata = "update_metadata"
)

// ApplyToNotebooks dispatches one named operation to every path
// independently. An unknown operation name fails the whole call before any
// path is touched; after that, a failure on one path does not abort the
// others — the result maps each path to whether it succeeded.
func (s *Service) ApplyToNotebooks(paths []string, operation string, params map[string]any) (map[string]bool, error) {
	var apply func(path string) error
	switch operation {
	case OpSetKernel:
		name, _ := params["kernel_name"].(string)
		display, _ := params["display_name"].(string)
		if name == "" || display == "" {
			return nil, apperr.Valuef("set_kernel requires kernel_name and display_name")
		}
		language, _ := params["language"].(string)
		if language == "" {
			language = "python"
		}
		kernel := notebook.KernelSpec{Name: name, DisplayName: display, Language: language}
		apply = func(path string) error { return s.SetKernel(path, kernel) }
	case OpClearOutputs:
		apply = func(path string) error {
			return s.mutate(path, func(nb *notebook.Notebook) error {
				nb.ClearOutputs()
				return nil
			})
		}
	case OpUpdateMetadata:
		meta, ok := params["metadata"].(map[string]any)
		if !ok {
			return nil, apperr.Valuef("update_metadata requires a metadata mapping")
		}
		apply = func(path string) error { return s.UpdateMetadata(path, meta, nil) }
	default:
		return nil, apperr.Valuef("Unknown operation: %q (supported: set_kernel, clear_outputs, update_metadata)", operation)
	}

	results := make(map[string]bool, len(paths))
	for _, p := range paths {
		results[p] = apply(p) == nil
	}
	return results, nil
}

// NotebookSearchResult is one match found while searching several files.
type NotebookSearchResult struct {
	Filepath  string `json:"filepath"`
	CellIndex int    `json:"cell_index"`
	CellType  string `json:"cell_type"`
	Match     string `json:"match"`
	Context   string `json:"context,omitempty"`
}

// SearchNotebooks finds every match of pattern across several notebooks, in
// path order then cell order. Context is omitted when withContext is false.
func (s *Service) SearchNotebooks(paths []string, pattern string, withContext bool) ([]NotebookSearchResult, error) {
	out := []NotebookSearchResult{}
	for _, p := range paths {
		results, err := s.SearchCells(p, pattern, false)
		if err != nil {
			return nil, err
		}
		for _, r := range results {
			nr := NotebookSearchResult{
				Filepath:  p,
				CellIndex: r.CellIndex,
				CellType:  r.CellType,
				Match:     r.Match,
			}
			if withContext {
				nr.Context = r.Context
			}
			out = append(out, nr)
		}
	}
	return out, nil
}

// SyncMetadata applies the given mapping to every target document's
// notebook-level metadata. With merge false the metadata is replaced
// wholesale; with merge true it is shallow-merged key by key (given keys
// win, others preserved). All targets are loaded and validated before the
// first one is written.
func (s *Service) SyncMetadata(paths []string, meta map[string]any, merge bool) (int, error) {
	loaded := make([]*notebook.Notebook, len(paths))
	for i, p := range paths {
		nb, err := s.store.Load(p)
		if err != nil {
			return 0, err
		}
		loaded[i] = nb
	}
	for i, nb := range loaded {
		if merge {
			nb.Metadata = notebook.MergeMeta(nb.Metadata, meta)
		} else {
			nb.Metadata = notebook.MergeMeta(map[string]any{}, meta)
		}
		if err := s.store.Save(paths[i], nb); err != nil {
			return i, err
		}
	}
	return len(paths), nil
}

// ClearOutputs empties outputs and execution counts of every code cell in
// every target document. Idempotent. All targets are loaded before the
// first is written. Returns the number of notebooks processed.
func (s *Service) ClearOutputs(paths []string) (int, error) {
	loaded := make([]*notebook.Notebook, len(paths))
	for i, p := range paths {
		nb, err := s.store.Load(p)
		if err != nil {
			return 0, err
		}
		loaded[i] = nb
	}
	for i, nb := range loaded {
		nb.ClearOutputs()
		if err := s.store.Save(paths[i], nb); err != nil {
			return i, err
		}
	}
	return len(paths), nil
}

// ValidationResult reports one document's structural validity.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// ValidateBatch runs the structural validator against each path
// independently. Unparseable documents are reported invalid with a
// descriptive message, never raised.
func (s *Service) ValidateBatch(paths []string) map[string]ValidationResult {
	results := make(map[string]ValidationResult, len(paths))
	for _, p := range paths {
		valid, msg := s.store.Validate(p)
		r := ValidationResult{Valid: valid}
		if !valid {
			r.Errors = []string{msg}
		}
		results[p] = r
	}
	return results
}
