package catalog

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/raido/internal/nbstore"
	"github.com/starford/raido/internal/notebook"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "raido-catalog-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func writeNotebook(t *testing.T, dir, name, title string) string {
	t.Helper()
	nb := notebook.New(notebook.KernelSpec{Name: "python3", DisplayName: "Python 3", Language: "python"})
	nb.Cells = append(nb.Cells,
		notebook.NewCell(notebook.TypeMarkdown, "# "+title),
		notebook.NewCell(notebook.TypeCode, "import pandas"),
	)
	st := nbstore.New(nbstore.Scope{})
	path := filepath.Join(dir, name)
	if err := st.Save(path, nb); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestUpsertAndList(t *testing.T) {
	db := testDB(t)

	row := Row{Path: "a.ipynb", Title: "Alpha", Kernel: "python3", CellCount: 3, CodeCells: 2, MarkdownCells: 1}
	if err := db.Upsert(row, "import pandas\nalpha analysis"); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	rows, err := db.List("", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0].Title != "Alpha" || rows[0].CellCount != 3 {
		t.Errorf("row = %+v", rows[0])
	}

	// Upsert with the same path replaces, never duplicates.
	row.Title = "Alpha v2"
	if err := db.Upsert(row, "updated"); err != nil {
		t.Fatal(err)
	}
	rows, _ = db.List("", 10)
	if len(rows) != 1 || rows[0].Title != "Alpha v2" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestList_Query(t *testing.T) {
	db := testDB(t)
	if err := db.Upsert(Row{Path: "a.ipynb", Title: "Sales report"}, "quarterly revenue"); err != nil {
		t.Fatal(err)
	}
	if err := db.Upsert(Row{Path: "b.ipynb", Title: "Churn model"}, "logistic regression"); err != nil {
		t.Fatal(err)
	}

	rows, err := db.List("revenue", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(rows) != 1 || rows[0].Path != "a.ipynb" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestDelete(t *testing.T) {
	db := testDB(t)
	if err := db.Upsert(Row{Path: "gone.ipynb"}, "content"); err != nil {
		t.Fatal(err)
	}
	if err := db.Delete("gone.ipynb"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	rows, _ := db.List("", 10)
	if len(rows) != 0 {
		t.Errorf("rows = %+v, want empty", rows)
	}
}

func TestSync_IndexesAndRemovesStale(t *testing.T) {
	db := testDB(t)
	dir := t.TempDir()
	logger := quietLogger()

	writeNotebook(t, dir, "one.ipynb", "One")
	nested := filepath.Join(dir, "sub")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	writeNotebook(t, nested, "two.ipynb", "Two")

	if err := Sync(db, dir, logger); err != nil {
		t.Fatalf("sync: %v", err)
	}
	rows, err := db.List("", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].Path != "one.ipynb" && rows[1].Path != "one.ipynb" {
		t.Errorf("rows = %+v", rows)
	}
	for _, r := range rows {
		if r.Kernel != "python3" || r.CellCount != 2 || r.Title == "" {
			t.Errorf("row summary incomplete: %+v", r)
		}
	}

	// Removing a file drops its row on the next sync.
	if err := os.Remove(filepath.Join(dir, "one.ipynb")); err != nil {
		t.Fatal(err)
	}
	if err := Sync(db, dir, logger); err != nil {
		t.Fatal(err)
	}
	rows, _ = db.List("", 10)
	if len(rows) != 1 || rows[0].Path != filepath.Join("sub", "two.ipynb") {
		t.Errorf("rows = %+v", rows)
	}
}

func TestSync_SkipsUnparseableFiles(t *testing.T) {
	db := testDB(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.ipynb"), []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	writeNotebook(t, dir, "ok.ipynb", "OK")

	if err := Sync(db, dir, quietLogger()); err != nil {
		t.Fatalf("sync should tolerate bad files: %v", err)
	}
	rows, _ := db.List("", 10)
	if len(rows) != 1 || rows[0].Path != "ok.ipynb" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestSync_UnchangedFilesSkipped(t *testing.T) {
	db := testDB(t)
	dir := t.TempDir()
	writeNotebook(t, dir, "a.ipynb", "A")

	if err := Sync(db, dir, quietLogger()); err != nil {
		t.Fatal(err)
	}
	before, _ := db.List("", 10)

	// A second sync with no disk changes leaves the row as-is.
	if err := Sync(db, dir, quietLogger()); err != nil {
		t.Fatal(err)
	}
	after, _ := db.List("", 10)
	if len(after) != 1 || after[0].UpdatedAt != before[0].UpdatedAt {
		t.Errorf("unchanged file was re-indexed: %+v vs %+v", before, after)
	}
}

func TestAllChecksums(t *testing.T) {
	db := testDB(t)
	if err := db.Upsert(Row{Path: "a.ipynb", Checksum: "abc"}, ""); err != nil {
		t.Fatal(err)
	}
	sums, err := db.AllChecksums()
	if err != nil {
		t.Fatal(err)
	}
	if sums["a.ipynb"] != "abc" {
		t.Errorf("sums = %v", sums)
	}
}
