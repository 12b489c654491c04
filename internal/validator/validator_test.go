package validator

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/notebook"
)

func validNotebook() *notebook.Notebook {
	nb := notebook.New(notebook.KernelSpec{Name: "python3", DisplayName: "Python 3", Language: "python"})
	nb.Cells = append(nb.Cells,
		notebook.NewCell(notebook.TypeMarkdown, "# Title"),
		notebook.NewCell(notebook.TypeCode, "x = 1"),
	)
	return nb
}

func TestCheck_Valid(t *testing.T) {
	if err := Check(validNotebook()); err != nil {
		t.Fatalf("valid notebook should pass: %v", err)
	}
}

func TestCheck_WrongNBFormat(t *testing.T) {
	for _, v := range []int{0, 3, 5} {
		nb := validNotebook()
		nb.NBFormat = v
		err := Check(nb)
		if err == nil {
			t.Errorf("nbformat %d should fail", v)
			continue
		}
		if !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("nbformat %d: error kind = %v, want validation error", v, err)
		}
	}
}

func TestCheck_NegativeMinor(t *testing.T) {
	nb := validNotebook()
	nb.NBFormatMinor = -1
	if err := Check(nb); err == nil {
		t.Fatal("negative nbformat_minor should fail")
	}
}

func TestCheck_MissingMetadata(t *testing.T) {
	nb := validNotebook()
	nb.Metadata = nil
	if err := Check(nb); err == nil {
		t.Fatal("nil metadata should fail")
	}
}

func TestCheck_InvalidCellType(t *testing.T) {
	nb := validNotebook()
	nb.Cells[0].Type = "heading"
	err := Check(nb)
	if err == nil {
		t.Fatal("unknown cell type should fail")
	}
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("error kind = %v, want validation error", err)
	}
}

func TestCheck_MarkdownWithOutputs(t *testing.T) {
	nb := validNotebook()
	nb.Cells[0].Outputs = []json.RawMessage{[]byte(`{}`)}
	if err := Check(nb); err == nil {
		t.Fatal("markdown cell with outputs should fail")
	}
}

func TestCheck_RawWithExecutionCount(t *testing.T) {
	nb := validNotebook()
	count := 1
	nb.Cells = append(nb.Cells, notebook.NewCell(notebook.TypeRaw, "raw"))
	nb.Cells[2].ExecutionCount = &count
	if err := Check(nb); err == nil {
		t.Fatal("raw cell with execution_count should fail")
	}
}

func TestCheck_EmptyNotebook(t *testing.T) {
	nb := notebook.New(notebook.KernelSpec{Name: "python3"})
	if err := Check(nb); err != nil {
		t.Fatalf("empty notebook is structurally valid: %v", err)
	}
}
