package index

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/grimoire/internal/apperr"
)

// EventCallback is called after a watcher-driven sync that changed the index.
type EventCallback func(stats SyncStats)

const debounce = 200 * time.Millisecond

// Watch starts an fsnotify watcher on the directory holding the collection
// file and re-syncs the index whenever that file is written or replaced,
// until ctx is cancelled. It calls cb (if non-nil) after each sync that
// indexed or removed something.
//
// The directory is watched instead of the file because atomic writes replace
// the file by rename, which would drop a watch held on the old inode.
func Watch(ctx context.Context, db EntryIndex, src Source, file string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	file = filepath.Clean(file)
	dir := filepath.Dir(file)
	if err := w.Add(dir); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("file", file))

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-fire:
			fire = nil
			stats, err := Sync(db, src, logger)
			if errors.Is(err, apperr.ErrLocked) {
				logger.Debug("watcher: skipped sync while locked")
				continue
			}
			if err != nil {
				logger.Warn("watcher: sync failed", slog.String("error", err.Error()))
				continue
			}
			logger.Debug("watcher: synced",
				slog.Int("indexed", stats.Indexed),
				slog.Int("removed", stats.Removed))
			if cb != nil && (stats.Indexed > 0 || stats.Removed > 0) {
				cb(stats)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != file {
				continue
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) &&
				!ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
