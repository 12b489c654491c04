//go:build sqlite_fts5

package catalog

import (
	"database/sql"
	"fmt"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS notebooks_fts USING fts5(
			path UNINDEXED,
			title,
			source,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, path, title, source string) error {
	_, _ = tx.Exec(`DELETE FROM notebooks_fts WHERE path = ?`, path)
	_, err := tx.Exec(`INSERT INTO notebooks_fts (path, title, source) VALUES (?, ?, ?)`,
		path, title, source)
	if err != nil {
		return fmt.Errorf("catalog: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, path string) {
	_, _ = tx.Exec(`DELETE FROM notebooks_fts WHERE path = ?`, path)
}

// search performs an FTS5 full-text query over titles and cell text.
func (db *DB) search(query string, limit int) ([]Row, error) {
	rows, err := db.conn.Query(`
		SELECT n.path, n.title, n.kernel, n.cell_count, n.code_cells, n.markdown_cells, n.raw_cells, n.checksum, n.updated_at
		FROM notebooks_fts f
		JOIN notebooks n ON n.path = f.path
		WHERE notebooks_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("catalog: search: %w", err)
	}
	defer rows.Close()
	return scanRows(rows)
}
