package ops

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/raido/internal/notebook"
)

func TestMerge_WithSeparators(t *testing.T) {
	dir, svc := testService(t)
	a := writeFixture(t, svc, dir, "a.ipynb",
		[2]string{notebook.TypeMarkdown, "# A"},
		[2]string{notebook.TypeCode, "a1"},
		[2]string{notebook.TypeCode, "a2"},
	)
	b := writeFixture(t, svc, dir, "b.ipynb", [2]string{notebook.TypeCode, "b1"})
	out := filepath.Join(dir, "merged.ipynb")

	total, err := svc.Merge(out, []string{a, b}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 4 content cells + one separator per input.
	if total != 6 {
		t.Errorf("total = %d, want 6", total)
	}
	nb, err := svc.Store().Load(out)
	if err != nil {
		t.Fatal(err)
	}
	if nb.Cells[0].Source != "## Merged from: a.ipynb" {
		t.Errorf("first separator = %q", nb.Cells[0].Source)
	}
	if nb.Cells[4].Source != "## Merged from: b.ipynb" {
		t.Errorf("second separator = %q", nb.Cells[4].Source)
	}
	if nb.Cells[5].Source != "b1" {
		t.Errorf("last cell = %q", nb.Cells[5].Source)
	}
}

func TestMerge_WithoutSeparators(t *testing.T) {
	dir, svc := testService(t)
	a := writeFixture(t, svc, dir, "a.ipynb", [2]string{notebook.TypeCode, "a1"})
	b := writeFixture(t, svc, dir, "b.ipynb", [2]string{notebook.TypeCode, "b1"})
	out := filepath.Join(dir, "merged.ipynb")

	total, err := svc.Merge(out, []string{a, b}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 {
		t.Errorf("total = %d, want 2", total)
	}
}

func TestMerge_MetadataFromFirstInput(t *testing.T) {
	dir, svc := testService(t)
	a := writeFixture(t, svc, dir, "a.ipynb", [2]string{notebook.TypeCode, "a"})
	if err := svc.SetKernel(a, notebook.KernelSpec{Name: "ir", DisplayName: "R", Language: "R"}); err != nil {
		t.Fatal(err)
	}
	b := writeFixture(t, svc, dir, "b.ipynb", [2]string{notebook.TypeCode, "b"})
	out := filepath.Join(dir, "merged.ipynb")

	if _, err := svc.Merge(out, []string{a, b}, false); err != nil {
		t.Fatal(err)
	}
	sum, err := svc.GetSummary(out)
	if err != nil {
		t.Fatal(err)
	}
	if sum.KernelInfo.Name != "ir" {
		t.Errorf("kernel = %+v, want first input's", sum.KernelInfo)
	}
}

func TestMerge_MissingInputWritesNothing(t *testing.T) {
	dir, svc := testService(t)
	a := writeFixture(t, svc, dir, "a.ipynb", [2]string{notebook.TypeCode, "a"})
	out := filepath.Join(dir, "merged.ipynb")

	_, err := svc.Merge(out, []string{a, filepath.Join(dir, "absent.ipynb")}, true)
	if err == nil {
		t.Fatal("missing input should fail")
	}
	if _, statErr := os.Stat(out); statErr == nil {
		t.Error("no output may exist when a load failed")
	}
}

func TestSplit_ByMarkdownHeaders(t *testing.T) {
	dir, svc := testService(t)
	src := writeFixture(t, svc, dir, "src.ipynb",
		[2]string{notebook.TypeCode, "setup"},
		[2]string{notebook.TypeMarkdown, "# Part one"},
		[2]string{notebook.TypeCode, "one"},
		[2]string{notebook.TypeMarkdown, "# Part two"},
		[2]string{notebook.TypeCode, "two"},
	)
	outDir := filepath.Join(dir, "parts")

	files, err := svc.Split(src, outDir, SplitByMarkdownHeaders)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("files = %v, want 3 parts", files)
	}
	if filepath.Base(files[0]) != "part_001.ipynb" {
		t.Errorf("first file = %q", files[0])
	}

	// Pre-heading cells form the first part.
	first, err := svc.Store().Load(files[0])
	if err != nil {
		t.Fatal(err)
	}
	if len(first.Cells) != 1 || first.Cells[0].Source != "setup" {
		t.Errorf("part 1 cells = %+v", first.Cells)
	}
	second, err := svc.Store().Load(files[1])
	if err != nil {
		t.Fatal(err)
	}
	if len(second.Cells) != 2 || second.Cells[0].Source != "# Part one" {
		t.Errorf("part 2 cells = %+v", second.Cells)
	}
	if second.Kernel().Name != "python3" {
		t.Error("parts must inherit the source metadata")
	}
}

func TestSplit_UnknownStrategy(t *testing.T) {
	dir, svc := testService(t)
	src := writeFixture(t, svc, dir, "src.ipynb", [2]string{notebook.TypeCode, "x"})

	_, err := svc.Split(src, dir, "by_cell_count")
	if err == nil {
		t.Fatal("unknown strategy should fail")
	}
	if !strings.Contains(err.Error(), "Unknown split strategy") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestExtract_PatternAndType(t *testing.T) {
	dir, svc := testService(t)
	a := writeFixture(t, svc, dir, "a.ipynb",
		[2]string{notebook.TypeCode, "import numpy"},
		[2]string{notebook.TypeMarkdown, "numpy notes"},
	)
	b := writeFixture(t, svc, dir, "b.ipynb",
		[2]string{notebook.TypeCode, "import numpy as np"},
		[2]string{notebook.TypeCode, "import os"},
	)
	out := filepath.Join(dir, "extracted.ipynb")

	count, err := svc.Extract(out, []string{a, b}, "numpy", notebook.TypeCode)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Errorf("extracted = %d, want 2", count)
	}
	nb, err := svc.Store().Load(out)
	if err != nil {
		t.Fatal(err)
	}
	if nb.Cells[0].Source != "import numpy" || nb.Cells[1].Source != "import numpy as np" {
		t.Errorf("encounter order broken: %+v", nb.Cells)
	}
}

func TestExtract_NoCriteriaTakesEverything(t *testing.T) {
	dir, svc := testService(t)
	a := writeFixture(t, svc, dir, "a.ipynb",
		[2]string{notebook.TypeCode, "x"},
		[2]string{notebook.TypeMarkdown, "y"},
	)
	out := filepath.Join(dir, "all.ipynb")

	count, err := svc.Extract(out, []string{a}, "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Errorf("extracted = %d, want all cells", count)
	}
}

func TestApplyToNotebooks_UnknownOperation(t *testing.T) {
	dir, svc := testService(t)
	a := writeFixture(t, svc, dir, "a.ipynb", [2]string{notebook.TypeCode, "x"})

	_, err := svc.ApplyToNotebooks([]string{a}, "transmogrify", nil)
	if err == nil {
		t.Fatal("unknown operation should fail")
	}
	if !strings.Contains(err.Error(), "Unknown operation") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestApplyToNotebooks_PerPathFailureTolerated(t *testing.T) {
	dir, svc := testService(t)
	a := writeFixture(t, svc, dir, "a.ipynb", [2]string{notebook.TypeCode, "x"})
	missing := filepath.Join(dir, "absent.ipynb")

	results, err := svc.ApplyToNotebooks([]string{a, missing}, OpClearOutputs, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !results[a] {
		t.Error("existing notebook should succeed")
	}
	if results[missing] {
		t.Error("missing notebook should be reported failed")
	}
}

func TestApplyToNotebooks_SetKernel(t *testing.T) {
	dir, svc := testService(t)
	a := writeFixture(t, svc, dir, "a.ipynb", [2]string{notebook.TypeCode, "x"})

	params := map[string]any{"kernel_name": "julia-1.9", "display_name": "Julia 1.9"}
	results, err := svc.ApplyToNotebooks([]string{a}, OpSetKernel, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !results[a] {
		t.Fatal("set_kernel should succeed")
	}
	sum, _ := svc.GetSummary(a)
	if sum.KernelInfo.Name != "julia-1.9" {
		t.Errorf("kernel = %+v", sum.KernelInfo)
	}
	// Language defaults to python when not given.
	if sum.KernelInfo.Language != "python" {
		t.Errorf("language = %q, want python", sum.KernelInfo.Language)
	}
}

func TestApplyToNotebooks_SetKernelRequiresNames(t *testing.T) {
	dir, svc := testService(t)
	a := writeFixture(t, svc, dir, "a.ipynb", [2]string{notebook.TypeCode, "x"})

	if _, err := svc.ApplyToNotebooks([]string{a}, OpSetKernel, map[string]any{}); err == nil {
		t.Fatal("set_kernel without names should fail")
	}
}

func TestSearchNotebooks_ContextOptional(t *testing.T) {
	dir, svc := testService(t)
	a := writeFixture(t, svc, dir, "a.ipynb", [2]string{notebook.TypeCode, "needle here"})
	b := writeFixture(t, svc, dir, "b.ipynb", [2]string{notebook.TypeMarkdown, "another needle"})

	results, err := svc.SearchNotebooks([]string{a, b}, "needle", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if results[0].Filepath != a || results[1].Filepath != b {
		t.Errorf("path order broken: %+v", results)
	}
	if results[0].Context != "" {
		t.Error("context should be omitted when not requested")
	}

	withCtx, err := svc.SearchNotebooks([]string{a}, "needle", true)
	if err != nil {
		t.Fatal(err)
	}
	if withCtx[0].Context == "" {
		t.Error("context should be present when requested")
	}
}

func TestSyncMetadata_ReplaceAndMerge(t *testing.T) {
	dir, svc := testService(t)
	a := writeFixture(t, svc, dir, "a.ipynb", [2]string{notebook.TypeCode, "x"})
	b := writeFixture(t, svc, dir, "b.ipynb", [2]string{notebook.TypeCode, "y"})

	count, err := svc.SyncMetadata([]string{a, b}, map[string]any{"team": "analytics"}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Errorf("updated = %d, want 2", count)
	}
	meta, _ := svc.GetMetadata(a, nil)
	if _, ok := meta["kernelspec"]; ok {
		t.Error("replace mode must drop keys absent from the mapping")
	}
	if meta["team"] != "analytics" {
		t.Errorf("metadata = %v", meta)
	}

	// Merge mode preserves existing keys.
	c := writeFixture(t, svc, dir, "c.ipynb", [2]string{notebook.TypeCode, "z"})
	if _, err := svc.SyncMetadata([]string{c}, map[string]any{"team": "analytics"}, true); err != nil {
		t.Fatal(err)
	}
	meta, _ = svc.GetMetadata(c, nil)
	if _, ok := meta["kernelspec"]; !ok {
		t.Error("merge mode must preserve existing keys")
	}
	if meta["team"] != "analytics" {
		t.Errorf("metadata = %v", meta)
	}
}

func TestSyncMetadata_BadTargetAbortsBeforeWrites(t *testing.T) {
	dir, svc := testService(t)
	a := writeFixture(t, svc, dir, "a.ipynb", [2]string{notebook.TypeCode, "x"})
	missing := filepath.Join(dir, "absent.ipynb")

	if _, err := svc.SyncMetadata([]string{a, missing}, map[string]any{"k": "v"}, false); err == nil {
		t.Fatal("missing target should fail")
	}
	meta, _ := svc.GetMetadata(a, nil)
	if _, ok := meta["k"]; ok {
		t.Error("no target may be written when validation failed")
	}
}

func TestClearOutputs_MultipleNotebooks(t *testing.T) {
	dir, svc := testService(t)
	nb := testutilFixtureWithOutputs()
	aPath := filepath.Join(dir, "a.ipynb")
	if err := svc.Store().Save(aPath, nb); err != nil {
		t.Fatal(err)
	}
	b := writeFixture(t, svc, dir, "b.ipynb", [2]string{notebook.TypeCode, "y"})

	count, err := svc.ClearOutputs([]string{aPath, b})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Errorf("processed = %d, want 2", count)
	}
	loaded, err := svc.Store().Load(aPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Cells[0].Outputs) != 0 || loaded.Cells[0].ExecutionCount != nil {
		t.Error("outputs should be cleared")
	}
}

func testutilFixtureWithOutputs() *notebook.Notebook {
	nb := notebook.New(notebook.KernelSpec{Name: "python3", DisplayName: "Python 3", Language: "python"})
	cell := notebook.NewCell(notebook.TypeCode, "1+1")
	count := 1
	cell.ExecutionCount = &count
	cell.Outputs = append(cell.Outputs, []byte(`{"output_type":"execute_result","data":{"text/plain":["2"]},"metadata":{},"execution_count":1}`))
	nb.Cells = append(nb.Cells, cell)
	return nb
}

func TestValidateBatch(t *testing.T) {
	dir, svc := testService(t)
	good := writeFixture(t, svc, dir, "good.ipynb", [2]string{notebook.TypeCode, "x"})
	bad := filepath.Join(dir, "bad.ipynb")
	if err := os.WriteFile(bad, []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(dir, "absent.ipynb")

	results := svc.ValidateBatch([]string{good, bad, missing})
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	if !results[good].Valid {
		t.Errorf("good notebook invalid: %v", results[good].Errors)
	}
	if results[bad].Valid || len(results[bad].Errors) == 0 {
		t.Error("corrupt notebook must report invalid with errors")
	}
	if results[missing].Valid {
		t.Error("missing notebook must report invalid")
	}
}
