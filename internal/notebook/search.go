package notebook

import (
	"regexp"

	"github.com/starford/raido/internal/apperr"
)

// contextWindow is how many bytes of surrounding text a search result
// carries on each side of the match.
const contextWindow = 40

// SearchResult is one regex match inside one cell.
type SearchResult struct {
	CellIndex int    `json:"cell_index"`
	CellType  string `json:"cell_type"`
	Match     string `json:"match"`
	Context   string `json:"context"`
}

// compilePattern compiles a user-supplied regex, prefixing (?i) unless the
// search is case sensitive. Malformed patterns are ValueError-kind failures.
func compilePattern(pattern string, caseSensitive bool) (*regexp.Regexp, error) {
	p := pattern
	if !caseSensitive {
		p = "(?i)" + p
	}
	re, err := regexp.Compile(p)
	if err != nil {
		return nil, apperr.Valuef("Invalid pattern %q: %v", pattern, err)
	}
	return re, nil
}

// SearchCells finds every match of pattern across all cells. Results follow
// cell order, then match order within a cell, one result per match.
func (nb *Notebook) SearchCells(pattern string, caseSensitive bool) ([]SearchResult, error) {
	re, err := compilePattern(pattern, caseSensitive)
	if err != nil {
		return nil, err
	}
	results := []SearchResult{}
	for i, c := range nb.Cells {
		for _, loc := range re.FindAllStringIndex(c.Source, -1) {
			start := loc[0] - contextWindow
			if start < 0 {
				start = 0
			}
			end := loc[1] + contextWindow
			if end > len(c.Source) {
				end = len(c.Source)
			}
			results = append(results, SearchResult{
				CellIndex: i,
				CellType:  c.Type,
				Match:     c.Source[loc[0]:loc[1]],
				Context:   c.Source[start:end],
			})
		}
	}
	return results, nil
}

// SearchReplaceAll substitutes every non-overlapping match of pattern in
// every cell whose type matches the optional filter (empty = all cells).
// The replacement may reference capture groups ($1, ${name}). Returns the
// total number of substitutions across all cells.
func (nb *Notebook) SearchReplaceAll(pattern, replacement, cellType string) (int, error) {
	if cellType != "" && !ValidType(cellType) {
		return 0, apperr.Valuef("Invalid cell type: %q (must be 'code', 'markdown', or 'raw')", cellType)
	}
	re, err := compilePattern(pattern, true)
	if err != nil {
		return 0, err
	}
	total := 0
	for i := range nb.Cells {
		if cellType != "" && nb.Cells[i].Type != cellType {
			continue
		}
		matches := len(re.FindAllStringIndex(nb.Cells[i].Source, -1))
		if matches == 0 {
			continue
		}
		nb.Cells[i].Source = re.ReplaceAllString(nb.Cells[i].Source, replacement)
		total += matches
	}
	return total, nil
}

// cellMatcher builds the AND-combination predicate shared by FilterCells
// and cell extraction: a cell matches when it satisfies every supplied
// criterion. With no criteria every cell matches.
func cellMatcher(cellType, pattern string) (func(Cell) bool, error) {
	if cellType != "" && !ValidType(cellType) {
		return nil, apperr.Valuef("Invalid cell type: %q (must be 'code', 'markdown', or 'raw')", cellType)
	}
	var re *regexp.Regexp
	if pattern != "" {
		var err error
		re, err = compilePattern(pattern, true)
		if err != nil {
			return nil, err
		}
	}
	return func(c Cell) bool {
		if cellType != "" && c.Type != cellType {
			return false
		}
		if re != nil && !re.MatchString(c.Source) {
			return false
		}
		return true
	}, nil
}

// MatchCells returns the cells satisfying the AND-combination of the
// supplied criteria, in document order. Used by multi-notebook extraction.
func (nb *Notebook) MatchCells(cellType, pattern string) ([]Cell, error) {
	match, err := cellMatcher(cellType, pattern)
	if err != nil {
		return nil, err
	}
	out := []Cell{}
	for _, c := range nb.Cells {
		if match(c) {
			out = append(out, c)
		}
	}
	return out, nil
}
