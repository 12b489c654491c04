package notebook

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/starford/raido/internal/apperr"
)

// ResolveIndex maps a possibly-negative cell index onto [0, N-1]. The valid
// input range is -N <= i <= N-1; -1 addresses the last cell.
func (nb *Notebook) ResolveIndex(i int) (int, error) {
	n := len(nb.Cells)
	if i < -n || i >= n {
		return 0, apperr.Index(i, n)
	}
	if i < 0 {
		return n + i, nil
	}
	return i, nil
}

// resolveInsertIndex is ResolveIndex with one extra valid slot: i == N (and
// its negative mirror) addresses the position after the last cell.
func (nb *Notebook) resolveInsertIndex(i int) (int, error) {
	n := len(nb.Cells)
	if i < -n-1 || i > n {
		return 0, apperr.Index(i, n)
	}
	if i < 0 {
		return n + 1 + i, nil
	}
	return i, nil
}

// CellContent returns the source of the cell at index i.
func (nb *Notebook) CellContent(i int) (string, error) {
	idx, err := nb.ResolveIndex(i)
	if err != nil {
		return "", err
	}
	return nb.Cells[idx].Source, nil
}

// ReplaceCell overwrites the source of the cell at index i. Type, metadata,
// outputs, and execution count are untouched.
func (nb *Notebook) ReplaceCell(i int, content string) error {
	idx, err := nb.ResolveIndex(i)
	if err != nil {
		return err
	}
	nb.Cells[idx].Source = content
	return nil
}

// InsertCell inserts a new cell so that it occupies index i afterwards;
// cells previously at i and beyond shift one position down. i == N appends.
func (nb *Notebook) InsertCell(i int, content, cellType string) error {
	if !ValidType(cellType) {
		return apperr.Valuef("Invalid cell type: %q (must be 'code', 'markdown', or 'raw')", cellType)
	}
	idx, err := nb.resolveInsertIndex(i)
	if err != nil {
		return err
	}
	cell := NewCell(cellType, content)
	nb.Cells = append(nb.Cells, Cell{})
	copy(nb.Cells[idx+1:], nb.Cells[idx:])
	nb.Cells[idx] = cell
	return nil
}

// AppendCell adds a cell at the end and returns its index.
func (nb *Notebook) AppendCell(content, cellType string) (int, error) {
	idx := len(nb.Cells)
	if err := nb.InsertCell(idx, content, cellType); err != nil {
		return 0, err
	}
	return idx, nil
}

// DeleteCell removes the cell at index i; cells beyond it shift one
// position up.
func (nb *Notebook) DeleteCell(i int) error {
	idx, err := nb.ResolveIndex(i)
	if err != nil {
		return err
	}
	nb.Cells = append(nb.Cells[:idx], nb.Cells[idx+1:]...)
	return nil
}

// StrReplaceInCell replaces oldStr with newStr in the cell at index i.
// oldStr must occur exactly once; zero and multiple occurrences both fail,
// so the wrong occurrence can never be replaced by accident.
func (nb *Notebook) StrReplaceInCell(i int, oldStr, newStr string) error {
	idx, err := nb.ResolveIndex(i)
	if err != nil {
		return err
	}
	if oldStr == "" {
		return apperr.Valuef("old_str must not be empty")
	}
	switch n := strings.Count(nb.Cells[idx].Source, oldStr); {
	case n == 0:
		return apperr.Valuef("String not found in cell %d: %q", idx, oldStr)
	case n > 1:
		return apperr.Valuef("Multiple matches (%d) in cell %d for %q; old_str must occur exactly once", n, idx, oldStr)
	}
	nb.Cells[idx].Source = strings.Replace(nb.Cells[idx].Source, oldStr, newStr, 1)
	return nil
}

// Replacement pairs a cell index with its new content.
type Replacement struct {
	Index   int    `json:"cell_index"`
	Content string `json:"content"`
}

// ReplaceCellsBatch applies every replacement against indices resolved on
// the original document. All indices are validated before any cell is
// touched; one bad index aborts the whole batch.
func (nb *Notebook) ReplaceCellsBatch(reps []Replacement) error {
	resolved := make([]int, len(reps))
	for i, r := range reps {
		idx, err := nb.ResolveIndex(r.Index)
		if err != nil {
			return err
		}
		resolved[i] = idx
	}
	for i, r := range reps {
		nb.Cells[resolved[i]].Source = r.Content
	}
	return nil
}

// DeleteCellsBatch removes the cells at the given indices, all interpreted
// against the document as it was before any deletion. Validation happens up
// front; deletion then runs in descending order so earlier removals cannot
// shift later targets.
func (nb *Notebook) DeleteCellsBatch(indices []int) error {
	resolved := make([]int, len(indices))
	seen := make(map[int]struct{}, len(indices))
	for i, raw := range indices {
		idx, err := nb.ResolveIndex(raw)
		if err != nil {
			return err
		}
		if _, dup := seen[idx]; dup {
			return apperr.Valuef("Duplicate cell index %d in batch delete", raw)
		}
		seen[idx] = struct{}{}
		resolved[i] = idx
	}
	sort.Sort(sort.Reverse(sort.IntSlice(resolved)))
	for _, idx := range resolved {
		nb.Cells = append(nb.Cells[:idx], nb.Cells[idx+1:]...)
	}
	return nil
}

// Insertion is one element of a batch insert.
type Insertion struct {
	Index    int    `json:"cell_index"`
	Content  string `json:"content"`
	CellType string `json:"cell_type"`
}

// InsertCellsBatch applies insertions strictly in the order given; each
// insertion's index is interpreted against the document state after all
// prior insertions in the same batch. Cell types are checked up front so a
// bad entry cannot leave the batch half-applied.
func (nb *Notebook) InsertCellsBatch(ins []Insertion) error {
	for _, in := range ins {
		if !ValidType(in.CellType) {
			return apperr.Valuef("Invalid cell type: %q (must be 'code', 'markdown', or 'raw')", in.CellType)
		}
	}
	for _, in := range ins {
		if err := nb.InsertCell(in.Index, in.Content, in.CellType); err != nil {
			return err
		}
	}
	return nil
}

// ReorderCells rearranges cells so that position k holds the cell that was
// at newOrder[k]. newOrder must be a permutation of every valid index; the
// first problem found (wrong length, out of range, duplicate) fails the call
// and the document is not mutated.
func (nb *Notebook) ReorderCells(newOrder []int) error {
	n := len(nb.Cells)
	if len(newOrder) != n {
		return apperr.Valuef("Invalid order: got %d indices, notebook has %d cells", len(newOrder), n)
	}
	seen := make([]bool, n)
	for _, idx := range newOrder {
		if idx < 0 || idx >= n {
			return apperr.Valuef("Invalid order: index %d out of range (0 to %d)", idx, n-1)
		}
		if seen[idx] {
			return apperr.Valuef("Invalid order: duplicate index %d", idx)
		}
		seen[idx] = true
	}
	reordered := make([]Cell, n)
	for k, idx := range newOrder {
		reordered[k] = nb.Cells[idx]
	}
	nb.Cells = reordered
	return nil
}

// FilterCells keeps cells satisfying all supplied criteria (type AND
// pattern) and deletes the rest. With neither criterion supplied every cell
// is kept. Returns how many cells were kept and deleted.
func (nb *Notebook) FilterCells(cellType, pattern string) (kept, deleted int, err error) {
	match, err := cellMatcher(cellType, pattern)
	if err != nil {
		return 0, 0, err
	}
	before := len(nb.Cells)
	filtered := nb.Cells[:0]
	for _, c := range nb.Cells {
		if match(c) {
			filtered = append(filtered, c)
		}
	}
	nb.Cells = filtered
	return len(filtered), before - len(filtered), nil
}

// ClearOutputs empties outputs and clears the execution count of every code
// cell. Other cell types are untouched. Idempotent.
func (nb *Notebook) ClearOutputs() {
	for i := range nb.Cells {
		if nb.Cells[i].Type != TypeCode {
			continue
		}
		nb.Cells[i].Outputs = []json.RawMessage{}
		nb.Cells[i].ExecutionCount = nil
	}
}

// MergeMeta shallow-merges src into dst: top-level keys from src win
// wholesale, nested maps are replaced, never deep-merged. Keys absent from
// src are preserved.
func MergeMeta(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = map[string]any{}
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
