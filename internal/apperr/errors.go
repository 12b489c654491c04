// Package apperr defines the error kinds surfaced at the tool boundary.
//
// Every failure belongs to one of four kinds. Callers classify with
// errors.Is against the exported sentinels; the concrete error carries
// the human-readable message that ends up in the {"error": ...} result.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks failures where the target notebook path does not exist.
	ErrNotFound = errors.New("not found")
	// ErrIndex marks cell indices outside the valid range.
	ErrIndex = errors.New("index out of range")
	// ErrValue marks semantically invalid input (bad cell type, bad pattern,
	// non-permutation reorder list, unknown batch operation, ...).
	ErrValue = errors.New("invalid value")
	// ErrValidation marks documents that fail structural validation.
	ErrValidation = errors.New("invalid notebook")
)

// IndexError reports a cell index outside the valid range of a document.
type IndexError struct {
	Index int
	Cells int // number of cells in the document
}

func (e *IndexError) Error() string {
	if e.Cells == 0 {
		return fmt.Sprintf("Cell index %d out of range: notebook has no cells", e.Index)
	}
	return fmt.Sprintf("Cell index %d out of range (valid range: %d to %d)", e.Index, -e.Cells, e.Cells-1)
}

func (e *IndexError) Is(target error) bool { return target == ErrIndex }

// Index returns an IndexError for index i in a document of n cells.
func Index(i, n int) error { return &IndexError{Index: i, Cells: n} }

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string        { return e.msg }
func (e *kindError) Is(target error) bool { return target == e.kind }

// NotFoundf returns a NotFound-kind error with a formatted message.
func NotFoundf(format string, args ...any) error {
	return &kindError{kind: ErrNotFound, msg: fmt.Sprintf(format, args...)}
}

// Valuef returns a ValueError-kind error with a formatted message.
func Valuef(format string, args ...any) error {
	return &kindError{kind: ErrValue, msg: fmt.Sprintf(format, args...)}
}

// Validationf returns a ValidationError-kind error with a formatted message.
func Validationf(format string, args ...any) error {
	return &kindError{kind: ErrValidation, msg: fmt.Sprintf(format, args...)}
}
