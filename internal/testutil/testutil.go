// Package testutil provides shared test helpers for setting up data
// directories, indexes, and unlocked diaries.
package testutil

import (
	"os"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/starford/grimoire/internal/clock"
	"github.com/starford/grimoire/internal/credential"
	"github.com/starford/grimoire/internal/diary"
	"github.com/starford/grimoire/internal/index"
	"github.com/starford/grimoire/internal/journal"
	"github.com/starford/grimoire/internal/session"
	"github.com/starford/grimoire/internal/storage"
)

// Stamp is the clock reading used by TestDiary.
var Stamp = clock.Stamp{Day: "Monday", Date: "2026-10-19", Time: "21:00:00"}

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "grimoire-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestDataDir creates a temporary data directory with a storage provider.
func TestDataDir(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// Boot wires credential and entry stores over fs the way the application
// does, with a cheap bcrypt cost and a fixed clock.
func Boot(t *testing.T, fs storage.Provider, opts ...diary.Option) *diary.Service {
	t.Helper()
	c := clock.Fixed(Stamp)
	creds := credential.NewStore(fs, credential.WithCost(bcrypt.MinCost))
	entries := journal.NewStore(fs, journal.WithClock(c))
	gate := session.New(creds, entries, session.WithClock(c))
	return diary.NewService(gate, append([]diary.Option{diary.WithClock(c)}, opts...)...)
}

// TestDiary returns a service over a fresh data directory. When password is
// non-empty the diary is enrolled with it and therefore unlocked.
func TestDiary(t *testing.T, password string, opts ...diary.Option) (*diary.Service, *storage.FS) {
	t.Helper()
	_, fs := TestDataDir(t)
	svc := Boot(t, fs, opts...)
	if password != "" {
		if _, err := svc.Enroll(t.Context(), password); err != nil {
			t.Fatal(err)
		}
	}
	return svc, fs
}
