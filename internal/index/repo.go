package index

import (
	"encoding/json"
	"fmt"
)

// EntryRow represents a row in the entries table.
type EntryRow struct {
	Label    string
	Seq      int
	Day      string
	Time     string
	Headline string
	Tags     []string
	Body     string
	Checksum string
}

// SearchResult represents one search hit.
type SearchResult struct {
	Label    string `json:"label"`
	Seq      int    `json:"seq"`
	Day      string `json:"day"`
	Time     string `json:"time"`
	Headline string `json:"headline"`
	Snippet  string `json:"snippet"`
}

// UpsertEntry inserts or replaces an entry, its FTS row, and its tags within a transaction.
func (db *DB) UpsertEntry(e EntryRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if e.Tags == nil {
		e.Tags = []string{}
	}
	tagsJSON, _ := json.Marshal(e.Tags)

	_, err = tx.Exec(`
		INSERT INTO entries (label, seq, day, time, headline, tags, body, checksum)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(label) DO UPDATE SET
			seq      = excluded.seq,
			day      = excluded.day,
			time     = excluded.time,
			headline = excluded.headline,
			tags     = excluded.tags,
			body     = excluded.body,
			checksum = excluded.checksum
	`, e.Label, e.Seq, e.Day, e.Time, e.Headline, string(tagsJSON), e.Body, e.Checksum)
	if err != nil {
		return fmt.Errorf("index: upsert entry: %w", err)
	}

	// FTS upsert (no-op when FTS5 tag is absent).
	if err := ftsUpsert(tx, e.Label, e.Headline, e.Body, e.Tags); err != nil {
		return err
	}

	// Replace tags: delete old then bulk insert.
	_, _ = tx.Exec(`DELETE FROM entry_tags WHERE label = ?`, e.Label)
	if len(e.Tags) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO entry_tags (label, tag) VALUES (?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare tag insert: %w", err)
		}
		defer stmt.Close()
		for _, tag := range e.Tags {
			if _, err := stmt.Exec(e.Label, tag); err != nil {
				return fmt.Errorf("index: insert tag: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteEntry removes an entry, its FTS row, and its tags. Only the sync pass
// calls this, when an entry vanished from the collection file.
func (db *DB) DeleteEntry(label string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, label)
	_, _ = tx.Exec(`DELETE FROM entry_tags WHERE label = ?`, label)
	_, _ = tx.Exec(`DELETE FROM entries WHERE label = ?`, label)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for an entry, or empty string if not found.
func (db *DB) GetChecksum(label string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM entries WHERE label = ?`, label).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// AllChecksums returns label → checksum for every indexed entry.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT label, checksum FROM entries`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var label, cs string
		if err := rows.Scan(&label, &cs); err != nil {
			return nil, err
		}
		out[label] = cs
	}
	return out, rows.Err()
}

// ByTag returns the labels of entries carrying tag, oldest first.
func (db *DB) ByTag(tag string) ([]string, error) {
	rows, err := db.conn.Query(`
		SELECT e.label FROM entry_tags t
		JOIN entries e ON e.label = t.label
		WHERE t.tag = ?
		ORDER BY e.seq
	`, tag)
	if err != nil {
		return nil, fmt.Errorf("index: by tag: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Count returns the number of indexed entries.
func (db *DB) Count() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT count(*) FROM entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("index: count: %w", err)
	}
	return n, nil
}
