//go:build sqlite_fts5

package index

import (
	"strings"
	"testing"
)

func TestFTS5_TableExists(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM entries_fts`).Scan(&count); err != nil {
		t.Fatalf("entries_fts table missing: %v", err)
	}
}

func TestFTS5_SearchWithSnippet(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertEntry(Row(rec(1, "Monday", "10:00:00", "The wizard cast a powerful spell over the valley."))); err != nil {
		t.Fatalf("UpsertEntry: %v", err)
	}

	results, err := db.Search("powerful", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Label != "Entry 1" {
		t.Errorf("label = %q", results[0].Label)
	}
	if !strings.Contains(results[0].Snippet, "[powerful]") {
		t.Errorf("snippet = %q, want highlighted match", results[0].Snippet)
	}
}
