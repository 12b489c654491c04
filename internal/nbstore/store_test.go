package nbstore

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/notebook"
)

func testStore(t *testing.T) (string, *Store) {
	t.Helper()
	return t.TempDir(), New(Scope{})
}

func sampleNotebook() *notebook.Notebook {
	nb := notebook.New(notebook.KernelSpec{Name: "python3", DisplayName: "Python 3", Language: "python"})
	nb.Cells = append(nb.Cells,
		notebook.NewCell(notebook.TypeMarkdown, "# Sample"),
		notebook.NewCell(notebook.TypeCode, "print('hi')"),
	)
	return nb
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	dir, st := testStore(t)
	path := filepath.Join(dir, "nb.ipynb")

	if err := st.Save(path, sampleNotebook()); err != nil {
		t.Fatalf("save: %v", err)
	}
	nb, err := st.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(nb.Cells) != 2 {
		t.Fatalf("cells = %d, want 2", len(nb.Cells))
	}
	if nb.Cells[1].Source != "print('hi')" {
		t.Errorf("cell 1 = %q", nb.Cells[1].Source)
	}
}

func TestStore_SaveCreatesParentDirs(t *testing.T) {
	dir, st := testStore(t)
	path := filepath.Join(dir, "a", "b", "nb.ipynb")
	if err := st.Save(path, sampleNotebook()); err != nil {
		t.Fatalf("save into nested dir: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("saved file missing: %v", err)
	}
}

func TestStore_SaveLeavesNoTempFiles(t *testing.T) {
	dir, st := testStore(t)
	if err := st.Save(filepath.Join(dir, "nb.ipynb"), sampleNotebook()); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".raido-tmp-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestStore_LoadMissing(t *testing.T) {
	dir, st := testStore(t)
	_, err := st.Load(filepath.Join(dir, "absent.ipynb"))
	if err == nil {
		t.Fatal("missing file should fail")
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("error kind = %v, want not-found", err)
	}
	if !strings.Contains(err.Error(), "Notebook not found") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestStore_LoadCorruptJSON(t *testing.T) {
	dir, st := testStore(t)
	path := filepath.Join(dir, "bad.ipynb")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := st.Load(path)
	if err == nil {
		t.Fatal("corrupt file should fail")
	}
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("error kind = %v, want validation", err)
	}
}

func TestStore_LoadRejectsInvalidStructure(t *testing.T) {
	dir, st := testStore(t)
	path := filepath.Join(dir, "v3.ipynb")
	doc := `{"nbformat": 3, "nbformat_minor": 0, "metadata": {}, "cells": []}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Load(path); err == nil {
		t.Fatal("nbformat 3 should fail validation on load")
	}
}

func TestStore_ScopeRejectsOutsidePaths(t *testing.T) {
	root := t.TempDir()
	scope, err := NewScope(root)
	if err != nil {
		t.Fatal(err)
	}
	st := New(scope)

	outside := filepath.Join(t.TempDir(), "nb.ipynb")
	if err := st.Save(outside, sampleNotebook()); err == nil {
		t.Fatal("save outside scope should fail")
	}
	if _, err := st.Load(filepath.Join(root, "..", "escape.ipynb")); err == nil {
		t.Fatal("traversal outside scope should fail")
	}

	inside := filepath.Join(root, "ok.ipynb")
	if err := st.Save(inside, sampleNotebook()); err != nil {
		t.Fatalf("save inside scope: %v", err)
	}
}

func TestNewScope_RequiresDirectory(t *testing.T) {
	if _, err := NewScope(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("missing scope root should fail")
	}
	f := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewScope(f); err == nil {
		t.Fatal("file scope root should fail")
	}
}

func TestStore_Validate(t *testing.T) {
	dir, st := testStore(t)
	good := filepath.Join(dir, "good.ipynb")
	if err := st.Save(good, sampleNotebook()); err != nil {
		t.Fatal(err)
	}
	if ok, msg := st.Validate(good); !ok {
		t.Errorf("valid notebook reported invalid: %s", msg)
	}

	bad := filepath.Join(dir, "bad.ipynb")
	if err := os.WriteFile(bad, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	if ok, msg := st.Validate(bad); ok || msg == "" {
		t.Error("corrupt notebook should report invalid with a message")
	}

	if ok, msg := st.Validate(filepath.Join(dir, "absent.ipynb")); ok || !strings.Contains(msg, "Notebook not found") {
		t.Errorf("missing notebook: ok=%v msg=%q", ok, msg)
	}
}

func TestStore_FileSize(t *testing.T) {
	dir, st := testStore(t)
	path := filepath.Join(dir, "nb.ipynb")
	if err := st.Save(path, sampleNotebook()); err != nil {
		t.Fatal(err)
	}
	size, err := st.FileSize(path)
	if err != nil {
		t.Fatal(err)
	}
	if size <= 0 {
		t.Errorf("size = %d, want > 0", size)
	}
	if _, err := st.FileSize(filepath.Join(dir, "absent.ipynb")); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing file: %v", err)
	}
}
