package notebook

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func testNotebook(cells ...Cell) *Notebook {
	nb := New(KernelSpec{Name: "python3", DisplayName: "Python 3", Language: "python"})
	nb.Cells = append(nb.Cells, cells...)
	return nb
}

func TestDecode_SourceAsString(t *testing.T) {
	data := []byte(`{
		"nbformat": 4, "nbformat_minor": 5, "metadata": {},
		"cells": [{"cell_type": "markdown", "metadata": {}, "source": "# Title\nBody"}]
	}`)
	nb, err := Decode(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if nb.Cells[0].Source != "# Title\nBody" {
		t.Errorf("source = %q", nb.Cells[0].Source)
	}
}

func TestDecode_SourceAsLines(t *testing.T) {
	data := []byte(`{
		"nbformat": 4, "nbformat_minor": 5, "metadata": {},
		"cells": [{"cell_type": "code", "metadata": {}, "source": ["x = 1\n", "print(x)"], "outputs": [], "execution_count": null}]
	}`)
	nb, err := Decode(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if nb.Cells[0].Source != "x = 1\nprint(x)" {
		t.Errorf("source = %q", nb.Cells[0].Source)
	}
}

func TestDecode_NotJSON(t *testing.T) {
	if _, err := Decode([]byte("not a notebook")); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	nb := testNotebook(
		NewCell(TypeMarkdown, "# Heading\n\nSome text.\n"),
		NewCell(TypeCode, "import os\nprint(os.getcwd())"),
	)
	data, err := nb.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.HasSuffix(data, []byte("}\n")) {
		t.Error("encoded notebook should end with a trailing newline")
	}
	back, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(back.Cells) != 2 {
		t.Fatalf("cells = %d, want 2", len(back.Cells))
	}
	for i := range nb.Cells {
		if back.Cells[i].Source != nb.Cells[i].Source {
			t.Errorf("cell %d source = %q, want %q", i, back.Cells[i].Source, nb.Cells[i].Source)
		}
		if back.Cells[i].Type != nb.Cells[i].Type {
			t.Errorf("cell %d type = %q, want %q", i, back.Cells[i].Type, nb.Cells[i].Type)
		}
	}
}

func TestEncode_SourceWrittenAsLines(t *testing.T) {
	nb := testNotebook(NewCell(TypeCode, "a = 1\nb = 2\n"))
	data, err := nb.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	cells := doc["cells"].([]any)
	src := cells[0].(map[string]any)["source"].([]any)
	if len(src) != 2 || src[0] != "a = 1\n" || src[1] != "b = 2\n" {
		t.Errorf("source lines = %v", src)
	}
}

func TestEncode_CodeCellAlwaysCarriesOutputs(t *testing.T) {
	nb := testNotebook(NewCell(TypeCode, "pass"))
	data, err := nb.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(string(data), `"outputs": []`) {
		t.Error("code cell should serialise an empty outputs list")
	}
	if !strings.Contains(string(data), `"execution_count": null`) {
		t.Error("code cell should serialise a null execution_count")
	}
}

func TestEncode_MarkdownCellOmitsOutputs(t *testing.T) {
	nb := testNotebook(NewCell(TypeMarkdown, "text"))
	data, err := nb.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if strings.Contains(string(data), `"outputs"`) {
		t.Error("markdown cell must not serialise outputs")
	}
}

func TestDecode_OutputsPreservedOpaque(t *testing.T) {
	data := []byte(`{
		"nbformat": 4, "nbformat_minor": 5, "metadata": {},
		"cells": [{"cell_type": "code", "metadata": {}, "source": "1+1",
			"outputs": [{"output_type": "execute_result", "data": {"text/plain": ["2"]}, "execution_count": 3, "metadata": {}}],
			"execution_count": 3}]
	}`)
	nb, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(nb.Cells[0].Outputs) != 1 {
		t.Fatalf("outputs = %d, want 1", len(nb.Cells[0].Outputs))
	}
	if nb.Cells[0].ExecutionCount == nil || *nb.Cells[0].ExecutionCount != 3 {
		t.Errorf("execution_count = %v, want 3", nb.Cells[0].ExecutionCount)
	}
	out, err := nb.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(string(out), "execute_result") {
		t.Error("outputs should survive a load/save cycle untouched")
	}
}

func TestSplitLines(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"one line", []string{"one line"}},
		{"a\nb", []string{"a\n", "b"}},
		{"a\nb\n", []string{"a\n", "b\n"}},
		{"\n", []string{"\n"}},
	}
	for _, c := range cases {
		got := splitLines(c.in)
		if len(got) != len(c.want) {
			t.Errorf("splitLines(%q) = %v, want %v", c.in, got, c.want)
			continue
		}
		if strings.Join(got, "") != c.in {
			t.Errorf("splitLines(%q) does not rejoin to input: %v", c.in, got)
		}
	}
}

func TestNewCell_CodeGetsOutputs(t *testing.T) {
	code := NewCell(TypeCode, "x")
	if code.Outputs == nil {
		t.Error("code cell should start with an empty outputs list")
	}
	if code.ID == "" {
		t.Error("cell should get a fresh id")
	}
	md := NewCell(TypeMarkdown, "y")
	if md.Outputs != nil {
		t.Error("markdown cell should not carry outputs")
	}
}

func TestKernel_LanguageInfoFallback(t *testing.T) {
	nb := &Notebook{Metadata: map[string]any{
		"kernelspec":    map[string]any{"name": "python3", "display_name": "Python 3"},
		"language_info": map[string]any{"name": "python"},
	}}
	k := nb.Kernel()
	if k.Language != "python" {
		t.Errorf("language = %q, want python", k.Language)
	}
}

func TestSetKernel(t *testing.T) {
	nb := testNotebook()
	nb.SetKernel(KernelSpec{Name: "julia-1.9", DisplayName: "Julia 1.9", Language: "julia"})
	k := nb.Kernel()
	if k.Name != "julia-1.9" || k.Language != "julia" {
		t.Errorf("kernel = %+v", k)
	}
}

func TestTitle_FirstMarkdownHeading(t *testing.T) {
	nb := testNotebook(
		NewCell(TypeCode, "# not a heading, a comment"),
		NewCell(TypeMarkdown, "intro paragraph\n\n## Analysis\n"),
	)
	if got := nb.Title(); got != "Analysis" {
		t.Errorf("title = %q, want Analysis", got)
	}
	empty := testNotebook(NewCell(TypeCode, "pass"))
	if got := empty.Title(); got != "" {
		t.Errorf("title = %q, want empty", got)
	}
}

func TestTypeCounts(t *testing.T) {
	nb := testNotebook(
		NewCell(TypeCode, "a"),
		NewCell(TypeCode, "b"),
		NewCell(TypeMarkdown, "c"),
	)
	counts := nb.TypeCounts()
	if counts[TypeCode] != 2 || counts[TypeMarkdown] != 1 || counts[TypeRaw] != 0 {
		t.Errorf("counts = %v", counts)
	}
}

func TestFormatVersion(t *testing.T) {
	nb := testNotebook()
	if got := nb.FormatVersion(); got != "4.5" {
		t.Errorf("format = %q, want 4.5", got)
	}
}
