package catalog

import (
	"database/sql"
	"fmt"
	"time"
)

// Row represents one cataloged notebook.
type Row struct {
	Path          string    `json:"path"`
	Title         string    `json:"title,omitempty"`
	Kernel        string    `json:"kernel,omitempty"`
	CellCount     int       `json:"cell_count"`
	CodeCells     int       `json:"code_cells"`
	MarkdownCells int       `json:"markdown_cells"`
	RawCells      int       `json:"raw_cells"`
	Checksum      string    `json:"-"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Upsert inserts or replaces a notebook row and its FTS entry within a
// transaction. source is the concatenated cell text used for search.
func (db *DB) Upsert(r Row, source string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO notebooks (path, title, kernel, cell_count, code_cells, markdown_cells, raw_cells, checksum, source, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(path) DO UPDATE SET
			title          = excluded.title,
			kernel         = excluded.kernel,
			cell_count     = excluded.cell_count,
			code_cells     = excluded.code_cells,
			markdown_cells = excluded.markdown_cells,
			raw_cells      = excluded.raw_cells,
			checksum       = excluded.checksum,
			source         = excluded.source,
			updated_at     = excluded.updated_at
	`, r.Path, r.Title, r.Kernel, r.CellCount, r.CodeCells, r.MarkdownCells, r.RawCells, r.Checksum, source)
	if err != nil {
		return fmt.Errorf("catalog: upsert notebook: %w", err)
	}

	if err := ftsUpsert(tx, r.Path, r.Title, source); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes a notebook row and its FTS entry.
func (db *DB) Delete(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM notebooks WHERE path = ?`, path)
	return tx.Commit()
}

// List returns every cataloged notebook ordered by path. With a non-empty
// query only notebooks whose title or cell text matches are returned.
func (db *DB) List(query string, limit int) ([]Row, error) {
	if limit <= 0 {
		limit = 100
	}
	if query != "" {
		return db.search(query, limit)
	}
	rows, err := db.conn.Query(`
		SELECT path, title, kernel, cell_count, code_cells, markdown_cells, raw_cells, checksum, updated_at
		FROM notebooks ORDER BY path LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("catalog: list: %w", err)
	}
	defer rows.Close()
	return scanRows(rows)
}

func scanRows(rows *sql.Rows) ([]Row, error) {
	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.Path, &r.Title, &r.Kernel, &r.CellCount, &r.CodeCells, &r.MarkdownCells, &r.RawCells, &r.Checksum, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// AllChecksums returns path → checksum for every cataloged notebook.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM notebooks`)
	if err != nil {
		return nil, fmt.Errorf("catalog: all checksums: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}
