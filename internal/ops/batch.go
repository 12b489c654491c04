package ops

import "github.com/starford/raido/internal/notebook"

// Batch multi-cell operations. Each is a single read-modify-write cycle; a
// failing validation aborts before anything is persisted, so batches are
// all-or-nothing at the file level.

// ReplaceCellsBatch replaces the content of several cells at once. Indices
// are resolved against the original document.
func (s *Service) ReplaceCellsBatch(path string, reps []notebook.Replacement) error {
	return s.mutate(path, func(nb *notebook.Notebook) error {
		return nb.ReplaceCellsBatch(reps)
	})
}

// DeleteCellsBatch deletes several cells at once; indices are interpreted
// against the document before any deletion. Returns the remaining count.
func (s *Service) DeleteCellsBatch(path string, indices []int) (int, error) {
	count := 0
	err := s.mutate(path, func(nb *notebook.Notebook) error {
		if err := nb.DeleteCellsBatch(indices); err != nil {
			return err
		}
		count = len(nb.Cells)
		return nil
	})
	return count, err
}

// InsertCellsBatch inserts several cells sequentially; each insertion's
// index applies to the document state after all prior insertions.
func (s *Service) InsertCellsBatch(path string, ins []notebook.Insertion) error {
	return s.mutate(path, func(nb *notebook.Notebook) error {
		return nb.InsertCellsBatch(ins)
	})
}

// SearchReplaceAll substitutes pattern in every cell (optionally filtered
// by type) and returns the total substitution count.
func (s *Service) SearchReplaceAll(path, pattern, replacement, cellType string) (int, error) {
	count := 0
	err := s.mutate(path, func(nb *notebook.Notebook) error {
		n, err := nb.SearchReplaceAll(pattern, replacement, cellType)
		if err != nil {
			return err
		}
		count = n
		return nil
	})
	return count, err
}

// ReorderCells rearranges the cells to the given permutation.
func (s *Service) ReorderCells(path string, newOrder []int) error {
	return s.mutate(path, func(nb *notebook.Notebook) error {
		return nb.ReorderCells(newOrder)
	})
}

// FilterCells keeps only the cells matching the AND-combination of the
// supplied criteria; with neither criterion it keeps everything. Returns
// (kept, deleted).
func (s *Service) FilterCells(path, cellType, pattern string) (int, int, error) {
	kept, deleted := 0, 0
	err := s.mutate(path, func(nb *notebook.Notebook) error {
		k, d, err := nb.FilterCells(cellType, pattern)
		if err != nil {
			return err
		}
		kept, deleted = k, d
		return nil
	})
	return kept, deleted, err
}
