// Package ops implements every exposed notebook operation as one bounded
// load → mutate → persist cycle over the store. Nothing here keeps document
// state between calls; concurrent operations on the same path are not
// coordinated (last writer wins), but persistence itself is atomic.
package ops

import (
	"github.com/starford/raido/internal/nbstore"
	"github.com/starford/raido/internal/notebook"
)

// Service runs notebook operations against a store.
type Service struct {
	store *nbstore.Store
}

// NewService creates the operations service.
func NewService(store *nbstore.Store) *Service {
	return &Service{store: store}
}

// Store exposes the underlying store for validation endpoints.
func (s *Service) Store() *nbstore.Store { return s.store }

// mutate is the single-document cycle every mutation goes through: load the
// document, apply fn, and persist only when fn succeeded. A failing fn
// leaves the file untouched, which is what makes batch mutations atomic.
func (s *Service) mutate(path string, fn func(nb *notebook.Notebook) error) error {
	nb, err := s.store.Load(path)
	if err != nil {
		return err
	}
	if err := fn(nb); err != nil {
		return err
	}
	return s.store.Save(path, nb)
}

// Summary describes a notebook's structure without cell content.
type Summary struct {
	CellCount     int                 `json:"cell_count"`
	CellTypes     map[string]int      `json:"cell_types"`
	KernelInfo    notebook.KernelSpec `json:"kernel_info"`
	FormatVersion string              `json:"format_version"`
}

// Info is Summary plus the on-disk file size.
type Info struct {
	Summary
	FileSize int64 `json:"file_size"`
}

// CellInfo is one row of a cell listing.
type CellInfo struct {
	Index          int    `json:"index"`
	Type           string `json:"type"`
	Preview        string `json:"preview"`
	ExecutionCount *int   `json:"execution_count,omitempty"`
}

// previewLen is how many characters of a cell's source a listing shows.
const previewLen = 100

// GetSummary returns the structure summary of the notebook at path.
func (s *Service) GetSummary(path string) (*Summary, error) {
	nb, err := s.store.Load(path)
	if err != nil {
		return nil, err
	}
	return &Summary{
		CellCount:     len(nb.Cells),
		CellTypes:     nb.TypeCounts(),
		KernelInfo:    nb.Kernel(),
		FormatVersion: nb.FormatVersion(),
	}, nil
}

// GetInfo returns the summary enriched with the file size.
func (s *Service) GetInfo(path string) (*Info, error) {
	sum, err := s.GetSummary(path)
	if err != nil {
		return nil, err
	}
	size, err := s.store.FileSize(path)
	if err != nil {
		return nil, err
	}
	return &Info{Summary: *sum, FileSize: size}, nil
}

// ListCells returns index, type, preview, and execution count per cell.
func (s *Service) ListCells(path string) ([]CellInfo, error) {
	nb, err := s.store.Load(path)
	if err != nil {
		return nil, err
	}
	out := make([]CellInfo, len(nb.Cells))
	for i, c := range nb.Cells {
		preview := c.Source
		if len(preview) > previewLen {
			preview = preview[:previewLen] + "..."
		}
		out[i] = CellInfo{
			Index:          i,
			Type:           c.Type,
			Preview:        preview,
			ExecutionCount: c.ExecutionCount,
		}
	}
	return out, nil
}

// GetCell returns the complete source of the cell at index.
func (s *Service) GetCell(path string, index int) (string, error) {
	nb, err := s.store.Load(path)
	if err != nil {
		return "", err
	}
	return nb.CellContent(index)
}

// SearchCells finds every match of pattern across a notebook's cells.
func (s *Service) SearchCells(path, pattern string, caseSensitive bool) ([]notebook.SearchResult, error) {
	nb, err := s.store.Load(path)
	if err != nil {
		return nil, err
	}
	return nb.SearchCells(pattern, caseSensitive)
}

// ReplaceCell overwrites the source of one cell.
func (s *Service) ReplaceCell(path string, index int, content string) error {
	return s.mutate(path, func(nb *notebook.Notebook) error {
		return nb.ReplaceCell(index, content)
	})
}

// InsertCell inserts a new cell at index and returns the new cell count.
func (s *Service) InsertCell(path string, index int, content, cellType string) (int, error) {
	count := 0
	err := s.mutate(path, func(nb *notebook.Notebook) error {
		if err := nb.InsertCell(index, content, cellType); err != nil {
			return err
		}
		count = len(nb.Cells)
		return nil
	})
	return count, err
}

// AppendCell adds a cell at the end and returns its index.
func (s *Service) AppendCell(path, content, cellType string) (int, error) {
	index := 0
	err := s.mutate(path, func(nb *notebook.Notebook) error {
		i, err := nb.AppendCell(content, cellType)
		if err != nil {
			return err
		}
		index = i
		return nil
	})
	return index, err
}

// DeleteCell removes the cell at index and returns the new cell count.
func (s *Service) DeleteCell(path string, index int) (int, error) {
	count := 0
	err := s.mutate(path, func(nb *notebook.Notebook) error {
		if err := nb.DeleteCell(index); err != nil {
			return err
		}
		count = len(nb.Cells)
		return nil
	})
	return count, err
}

// StrReplaceInCell replaces a substring that occurs exactly once in the
// cell at index.
func (s *Service) StrReplaceInCell(path string, index int, oldStr, newStr string) error {
	return s.mutate(path, func(nb *notebook.Notebook) error {
		return nb.StrReplaceInCell(index, oldStr, newStr)
	})
}

// GetMetadata returns notebook-level metadata, or the metadata of one cell
// when cellIndex is non-nil.
func (s *Service) GetMetadata(path string, cellIndex *int) (map[string]any, error) {
	nb, err := s.store.Load(path)
	if err != nil {
		return nil, err
	}
	if cellIndex == nil {
		return nb.Metadata, nil
	}
	idx, err := nb.ResolveIndex(*cellIndex)
	if err != nil {
		return nil, err
	}
	return nb.Cells[idx].Metadata, nil
}

// UpdateMetadata shallow-merges the given mapping into notebook-level
// metadata, or into one cell's metadata when cellIndex is non-nil. Given
// keys win; other existing keys are preserved.
func (s *Service) UpdateMetadata(path string, meta map[string]any, cellIndex *int) error {
	return s.mutate(path, func(nb *notebook.Notebook) error {
		if cellIndex == nil {
			nb.Metadata = notebook.MergeMeta(nb.Metadata, meta)
			return nil
		}
		idx, err := nb.ResolveIndex(*cellIndex)
		if err != nil {
			return err
		}
		nb.Cells[idx].Metadata = notebook.MergeMeta(nb.Cells[idx].Metadata, meta)
		return nil
	})
}

// SetKernel replaces the notebook's kernelspec.
func (s *Service) SetKernel(path string, kernel notebook.KernelSpec) error {
	return s.mutate(path, func(nb *notebook.Notebook) error {
		nb.SetKernel(kernel)
		return nil
	})
}
