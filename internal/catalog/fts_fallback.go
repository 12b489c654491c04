//go:build !sqlite_fts5

package catalog

import (
	"database/sql"
	"fmt"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; search falls back to LIKE on the source column.
	return nil
}

func ftsUpsert(_ *sql.Tx, _, _, _ string) error {
	// Source text is already stored in the notebooks table.
	return nil
}

func ftsDelete(_ *sql.Tx, _ string) {}

// search matches query as a case-insensitive substring of title or cell text.
func (db *DB) search(query string, limit int) ([]Row, error) {
	like := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT path, title, kernel, cell_count, code_cells, markdown_cells, raw_cells, checksum, updated_at
		FROM notebooks
		WHERE title LIKE ? OR source LIKE ?
		ORDER BY path
		LIMIT ?
	`, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("catalog: search: %w", err)
	}
	defer rows.Close()
	return scanRows(rows)
}
