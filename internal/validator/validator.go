// Package validator checks notebook documents against the structural rules
// of the nbformat v4 schema: required fields, valid cell types, supported
// format version, and code-cell-only execution artifacts.
package validator

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/notebook"
)

// Check validates the structure of a decoded notebook. The returned error,
// when non-nil, is ValidationError-kind and names the first violation.
func Check(nb *notebook.Notebook) error {
	if err := validation.Validate(nb.NBFormat,
		validation.Required,
		validation.Min(4),
		validation.Max(4),
	); err != nil {
		return apperr.Validationf("unsupported nbformat version %d: %v", nb.NBFormat, err)
	}
	if err := validation.Validate(nb.NBFormatMinor, validation.Min(0)); err != nil {
		return apperr.Validationf("invalid nbformat_minor %d: %v", nb.NBFormatMinor, err)
	}
	if nb.Metadata == nil {
		return apperr.Validationf("missing required field: metadata")
	}
	for i, c := range nb.Cells {
		if err := checkCell(c); err != nil {
			return apperr.Validationf("cell %d: %v", i, err)
		}
	}
	return nil
}

func checkCell(c notebook.Cell) error {
	if err := validation.Validate(c.Type,
		validation.Required,
		validation.In(notebook.TypeCode, notebook.TypeMarkdown, notebook.TypeRaw),
	); err != nil {
		return fmt.Errorf("cell_type %q: %w", c.Type, err)
	}
	if c.Type != notebook.TypeCode {
		if len(c.Outputs) > 0 {
			return fmt.Errorf("%s cell must not have outputs", c.Type)
		}
		if c.ExecutionCount != nil {
			return fmt.Errorf("%s cell must not have an execution_count", c.Type)
		}
	}
	return nil
}
