// Package testutil provides shared test helpers for setting up notebook
// workspaces and catalog databases.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/raido/internal/catalog"
	"github.com/starford/raido/internal/nbstore"
	"github.com/starford/raido/internal/notebook"
)

// TestDB creates a temporary SQLite catalog that is automatically cleaned up.
func TestDB(t *testing.T) *catalog.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "raido-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := catalog.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestProject creates a temporary project directory with a scoped store.
func TestProject(t *testing.T) (string, *nbstore.Store) {
	t.Helper()
	dir := t.TempDir()
	scope, err := nbstore.NewScope(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, nbstore.New(scope)
}

// TestStore creates an unscoped store over a temporary directory.
func TestStore(t *testing.T) (string, *nbstore.Store) {
	t.Helper()
	return t.TempDir(), nbstore.New(nbstore.Scope{})
}

// Python3 is the kernel used by notebook fixtures.
var Python3 = notebook.KernelSpec{Name: "python3", DisplayName: "Python 3", Language: "python"}

// Fixture builds an nbformat 4 notebook from (cellType, source) pairs.
func Fixture(cells ...[2]string) *notebook.Notebook {
	nb := notebook.New(Python3)
	for _, c := range cells {
		nb.Cells = append(nb.Cells, notebook.NewCell(c[0], c[1]))
	}
	return nb
}

// WriteNotebook persists a fixture under dir and returns its path.
func WriteNotebook(t *testing.T, store *nbstore.Store, dir, name string, nb *notebook.Notebook) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := store.Save(path, nb); err != nil {
		t.Fatal(err)
	}
	return path
}
