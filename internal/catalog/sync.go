package catalog

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/raido/internal/checksum"
	"github.com/starford/raido/internal/notebook"
)

// Sync walks the scope root and brings the catalog up to date:
//   - new/changed notebooks are summarized and upserted
//   - notebooks removed from disk are deleted from the catalog
func Sync(db *DB, root string, logger *slog.Logger) error {
	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{})
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".ipynb") {
			return nil
		}
		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return nil
		}
		disk[rel] = struct{}{}

		data, readErr := os.ReadFile(p)
		if readErr != nil {
			logger.Warn("sync: read failed", slog.String("path", rel), slog.String("error", readErr.Error()))
			return nil
		}
		if checksums[rel] == checksum.Sum(data) {
			return nil
		}
		if idxErr := indexFile(db, rel, data); idxErr != nil {
			logger.Warn("sync: index failed", slog.String("path", rel), slog.String("error", idxErr.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", rel))
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.Delete(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// indexFile decodes data and upserts its summary row. Documents that do not
// parse as notebooks are skipped, not fatal: the catalog is discovery only.
func indexFile(db *DB, rel string, data []byte) error {
	nb, err := notebook.Decode(data)
	if err != nil {
		return err
	}
	counts := nb.TypeCounts()
	row := Row{
		Path:          rel,
		Title:         nb.Title(),
		Kernel:        nb.Kernel().Name,
		CellCount:     len(nb.Cells),
		CodeCells:     counts[notebook.TypeCode],
		MarkdownCells: counts[notebook.TypeMarkdown],
		RawCells:      counts[notebook.TypeRaw],
		Checksum:      checksum.Sum(data),
	}
	return db.Upsert(row, nb.SourceText())
}
