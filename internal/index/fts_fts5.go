//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS entries_fts USING fts5(
			label UNINDEXED,
			headline,
			body,
			tags,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, label, headline, body string, tags []string) error {
	_, _ = tx.Exec(`DELETE FROM entries_fts WHERE label = ?`, label)
	_, err := tx.Exec(`INSERT INTO entries_fts (label, headline, body, tags) VALUES (?, ?, ?, ?)`,
		label, headline, body, strings.Join(tags, " "))
	if err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, label string) {
	_, _ = tx.Exec(`DELETE FROM entries_fts WHERE label = ?`, label)
}

// Search performs an FTS5 full-text search and returns matching entries with snippets.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT e.label, e.seq, e.day, e.time, e.headline,
		       snippet(entries_fts, 2, '[', ']', '...', 16)
		FROM entries_fts
		JOIN entries e ON e.label = entries_fts.label
		WHERE entries_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Label, &r.Seq, &r.Day, &r.Time, &r.Headline, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
