// Package notebook implements the in-memory document model for Jupyter
// notebooks (.ipynb) and every query and mutation over it.
package notebook

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/starford/raido/internal/apperr"
)

// Cell types. Fixed at creation; content mutations never change them.
const (
	TypeCode     = "code"
	TypeMarkdown = "markdown"
	TypeRaw      = "raw"
)

// ValidType reports whether t is one of the three notebook cell types.
func ValidType(t string) bool {
	return t == TypeCode || t == TypeMarkdown || t == TypeRaw
}

// Cell is one ordered unit of a notebook. Outputs and ExecutionCount are
// meaningful only for code cells; Outputs stay opaque JSON so execution
// results survive a load/save cycle untouched.
type Cell struct {
	ID             string
	Type           string
	Source         string
	Metadata       map[string]any
	Outputs        []json.RawMessage
	ExecutionCount *int
}

// Notebook is the document: ordered cells plus format version and metadata.
// Cell order is the sole basis for index addressing.
type Notebook struct {
	NBFormat      int
	NBFormatMinor int
	Metadata      map[string]any
	Cells         []Cell
}

// KernelSpec identifies the kernel configured for a notebook.
type KernelSpec struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Language    string `json:"language"`
}

// NewCell creates a cell of the given type with a fresh id. Code cells get
// an empty outputs list so they serialize the way nbformat writes them.
func NewCell(cellType, source string) Cell {
	c := Cell{
		ID:       uuid.NewString(),
		Type:     cellType,
		Source:   source,
		Metadata: map[string]any{},
	}
	if cellType == TypeCode {
		c.Outputs = []json.RawMessage{}
	}
	return c
}

// New creates an empty notebook with the given kernelspec and the current
// nbformat version.
func New(kernel KernelSpec) *Notebook {
	return &Notebook{
		NBFormat:      4,
		NBFormatMinor: 5,
		Metadata: map[string]any{
			"kernelspec": map[string]any{
				"name":         kernel.Name,
				"display_name": kernel.DisplayName,
				"language":     kernel.Language,
			},
		},
		Cells: []Cell{},
	}
}

// FormatVersion returns the version as "major.minor", e.g. "4.5".
func (nb *Notebook) FormatVersion() string {
	return fmt.Sprintf("%d.%d", nb.NBFormat, nb.NBFormatMinor)
}

// Kernel extracts the kernelspec from notebook metadata. Missing fields are
// returned empty.
func (nb *Notebook) Kernel() KernelSpec {
	var k KernelSpec
	spec, ok := nb.Metadata["kernelspec"].(map[string]any)
	if !ok {
		return k
	}
	k.Name, _ = spec["name"].(string)
	k.DisplayName, _ = spec["display_name"].(string)
	k.Language, _ = spec["language"].(string)
	if k.Language == "" {
		// Older notebooks carry the language under language_info.
		if info, ok := nb.Metadata["language_info"].(map[string]any); ok {
			k.Language, _ = info["name"].(string)
		}
	}
	return k
}

// SetKernel replaces the kernelspec in notebook metadata.
func (nb *Notebook) SetKernel(k KernelSpec) {
	if nb.Metadata == nil {
		nb.Metadata = map[string]any{}
	}
	nb.Metadata["kernelspec"] = map[string]any{
		"name":         k.Name,
		"display_name": k.DisplayName,
		"language":     k.Language,
	}
}

// TypeCounts returns the number of cells of each type.
func (nb *Notebook) TypeCounts() map[string]int {
	counts := map[string]int{}
	for _, c := range nb.Cells {
		counts[c.Type]++
	}
	return counts
}

// Title returns the text of the first markdown heading, or "" when the
// notebook has none. Used for catalog display.
func (nb *Notebook) Title() string {
	for _, c := range nb.Cells {
		if c.Type != TypeMarkdown {
			continue
		}
		for _, line := range strings.Split(c.Source, "\n") {
			line = strings.TrimSpace(line)
			if strings.HasPrefix(line, "#") {
				return strings.TrimSpace(strings.TrimLeft(line, "#"))
			}
		}
	}
	return ""
}

// SourceText concatenates every cell source, used for full-text indexing.
func (nb *Notebook) SourceText() string {
	parts := make([]string, len(nb.Cells))
	for i, c := range nb.Cells {
		parts[i] = c.Source
	}
	return strings.Join(parts, "\n")
}

// --- JSON codec ---
//
// The on-disk format stores source (and historically output text) either as
// one string or as a list of lines that keep their trailing newlines. Decode
// accepts both; encode always writes the list-of-lines form, which is what
// nbformat-written files contain.

type cellJSON struct {
	ID             string            `json:"id,omitempty"`
	CellType       string            `json:"cell_type"`
	Metadata       map[string]any    `json:"metadata"`
	Source         json.RawMessage   `json:"source"`
	Outputs        []json.RawMessage `json:"outputs,omitempty"`
	ExecutionCount *int              `json:"execution_count,omitempty"`
}

// codeCellJSON always carries outputs and execution_count, even when empty
// or null, matching the nbformat schema for code cells.
type codeCellJSON struct {
	ID             string            `json:"id,omitempty"`
	CellType       string            `json:"cell_type"`
	Metadata       map[string]any    `json:"metadata"`
	Source         json.RawMessage   `json:"source"`
	ExecutionCount *int              `json:"execution_count"`
	Outputs        []json.RawMessage `json:"outputs"`
}

type notebookJSON struct {
	Cells         []Cell         `json:"cells"`
	Metadata      map[string]any `json:"metadata"`
	NBFormat      int            `json:"nbformat"`
	NBFormatMinor int            `json:"nbformat_minor"`
}

// UnmarshalJSON decodes a cell, normalizing the string-or-lines source union
// into a single string.
func (c *Cell) UnmarshalJSON(data []byte) error {
	var raw cellJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	src, err := decodeSource(raw.Source)
	if err != nil {
		return fmt.Errorf("cell source: %w", err)
	}
	c.ID = raw.ID
	c.Type = raw.CellType
	c.Source = src
	c.Metadata = raw.Metadata
	if c.Metadata == nil {
		c.Metadata = map[string]any{}
	}
	c.Outputs = raw.Outputs
	c.ExecutionCount = raw.ExecutionCount
	if c.Type == TypeCode && c.Outputs == nil {
		c.Outputs = []json.RawMessage{}
	}
	return nil
}

// MarshalJSON encodes a cell with its source split back into lines. Code
// cells always include outputs and execution_count.
func (c Cell) MarshalJSON() ([]byte, error) {
	src, err := json.Marshal(splitLines(c.Source))
	if err != nil {
		return nil, err
	}
	meta := c.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	if c.Type == TypeCode {
		outputs := c.Outputs
		if outputs == nil {
			outputs = []json.RawMessage{}
		}
		return json.Marshal(codeCellJSON{
			ID:             c.ID,
			CellType:       c.Type,
			Metadata:       meta,
			Source:         src,
			ExecutionCount: c.ExecutionCount,
			Outputs:        outputs,
		})
	}
	return json.Marshal(cellJSON{
		ID:       c.ID,
		CellType: c.Type,
		Metadata: meta,
		Source:   src,
	})
}

// UnmarshalJSON decodes a notebook document.
func (nb *Notebook) UnmarshalJSON(data []byte) error {
	var raw notebookJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	nb.Cells = raw.Cells
	if nb.Cells == nil {
		nb.Cells = []Cell{}
	}
	nb.Metadata = raw.Metadata
	if nb.Metadata == nil {
		nb.Metadata = map[string]any{}
	}
	nb.NBFormat = raw.NBFormat
	nb.NBFormatMinor = raw.NBFormatMinor
	return nil
}

// MarshalJSON encodes a notebook document.
func (nb Notebook) MarshalJSON() ([]byte, error) {
	cells := nb.Cells
	if cells == nil {
		cells = []Cell{}
	}
	meta := nb.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	return json.Marshal(notebookJSON{
		Cells:         cells,
		Metadata:      meta,
		NBFormat:      nb.NBFormat,
		NBFormatMinor: nb.NBFormatMinor,
	})
}

// Decode parses raw .ipynb bytes into a Notebook.
func Decode(data []byte) (*Notebook, error) {
	nb := &Notebook{}
	if err := json.Unmarshal(data, nb); err != nil {
		return nil, apperr.Validationf("not a valid notebook document: %v", err)
	}
	return nb, nil
}

// Encode serializes the notebook the way Jupyter writes it: one-space
// indentation and a trailing newline.
func (nb *Notebook) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(nb, "", " ")
	if err != nil {
		return nil, fmt.Errorf("encode notebook: %w", err)
	}
	return append(data, '\n'), nil
}

// decodeSource accepts a JSON string or a JSON list of line strings.
func decodeSource(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var lines []string
	if err := json.Unmarshal(raw, &lines); err != nil {
		return "", fmt.Errorf("expected string or list of strings")
	}
	return strings.Join(lines, ""), nil
}

// splitLines splits s after every newline, keeping the separators, so that
// joining the result reproduces s exactly.
func splitLines(s string) []string {
	if s == "" {
		return []string{}
	}
	var lines []string
	for {
		i := strings.IndexByte(s, '\n')
		if i < 0 {
			lines = append(lines, s)
			return lines
		}
		lines = append(lines, s[:i+1])
		s = s[i+1:]
		if s == "" {
			return lines
		}
	}
}
