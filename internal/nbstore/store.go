// Package nbstore loads notebook documents from disk and persists them back
// atomically. Documents are read fresh for every operation and discarded
// after persistence; the store keeps no document state.
package nbstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/notebook"
	"github.com/starford/raido/internal/validator"
)

// Scope optionally restricts file operations to one project directory. The
// zero value is unrestricted. It is an explicit config-derived value passed
// into the store, never ambient package state.
type Scope struct {
	root string
}

// NewScope creates a scope rooted at dir, which must exist.
func NewScope(dir string) (Scope, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return Scope{}, fmt.Errorf("nbstore: resolve scope root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Scope{}, fmt.Errorf("nbstore: stat scope root: %w", err)
	}
	if !info.IsDir() {
		return Scope{}, fmt.Errorf("nbstore: scope root is not a directory: %s", abs)
	}
	return Scope{root: abs}, nil
}

// Root returns the scope directory, or "" for an unrestricted scope.
func (s Scope) Root() string { return s.root }

// Restricted reports whether the scope limits paths to a project directory.
func (s Scope) Restricted() bool { return s.root != "" }

// check resolves path and rejects anything outside the scope root.
func (s Scope) check(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", apperr.Valuef("Invalid path %q: %v", path, err)
	}
	abs = filepath.Clean(abs)
	if !s.Restricted() {
		return abs, nil
	}
	if abs != s.root && !strings.HasPrefix(abs, s.root+string(os.PathSeparator)) {
		return "", apperr.Valuef("Path %q is outside the project scope %q", path, s.root)
	}
	return abs, nil
}

// Store performs notebook file I/O within a scope.
type Store struct {
	scope Scope
}

// New creates a store with the given scope.
func New(scope Scope) *Store {
	return &Store{scope: scope}
}

// Load reads and decodes the notebook at path, validating its structure.
func (st *Store) Load(path string) (*notebook.Notebook, error) {
	abs, err := st.scope.check(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.NotFoundf("Notebook not found: %s", path)
		}
		return nil, fmt.Errorf("nbstore: read %s: %w", path, err)
	}
	nb, err := notebook.Decode(data)
	if err != nil {
		return nil, apperr.Validationf("Failed to parse notebook %s: %v", path, err)
	}
	if err := validator.Check(nb); err != nil {
		return nil, apperr.Validationf("Notebook %s failed validation: %v", path, err)
	}
	return nb, nil
}

// Save encodes nb and writes it to path atomically: tmp file in the target
// directory, fsync, then rename. Parent directories are created as needed.
func (st *Store) Save(path string, nb *notebook.Notebook) error {
	abs, err := st.scope.check(path)
	if err != nil {
		return err
	}
	data, err := nb.Encode()
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("nbstore: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".raido-tmp-*")
	if err != nil {
		return fmt.Errorf("nbstore: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("nbstore: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("nbstore: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("nbstore: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("nbstore: rename: %w", err)
	}
	success = true
	return nil
}

// FileSize returns the on-disk size of the notebook at path.
func (st *Store) FileSize(path string) (int64, error) {
	abs, err := st.scope.check(path)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, apperr.NotFoundf("Notebook not found: %s", path)
		}
		return 0, fmt.Errorf("nbstore: stat %s: %w", path, err)
	}
	return info.Size(), nil
}

// Validate runs the structural validator against the document at path and
// reports (isValid, message). Documents that fail to parse at all are
// reported invalid with a descriptive message, never raised.
func (st *Store) Validate(path string) (bool, string) {
	abs, err := st.scope.check(path)
	if err != nil {
		return false, err.Error()
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, fmt.Sprintf("Notebook not found: %s", path)
		}
		return false, fmt.Sprintf("read %s: %v", path, err)
	}
	nb, err := notebook.Decode(data)
	if err != nil {
		return false, err.Error()
	}
	if err := validator.Check(nb); err != nil {
		return false, err.Error()
	}
	return true, ""
}
