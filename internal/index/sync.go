package index

import (
	"log/slog"

	"github.com/starford/grimoire/internal/checksum"
	"github.com/starford/grimoire/internal/journal"
	"github.com/starford/grimoire/internal/parser"
)

// Source lists the entries the index mirrors.
type Source interface {
	ListAll() ([]journal.Record, error)
}

// SyncStats summarises one Sync pass.
type SyncStats struct {
	Indexed int
	Removed int
	Total   int
}

// Sync reads the collection and brings the index up to date:
//   - new/changed entries are parsed and upserted
//   - entries no longer in the collection are deleted from the index
func Sync(db EntryIndex, src Source, logger *slog.Logger) (SyncStats, error) {
	var stats SyncStats

	recs, err := src.ListAll()
	if err != nil {
		return stats, err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return stats, err
	}

	seen := make(map[string]struct{}, len(recs))
	for _, r := range recs {
		seen[r.Label] = struct{}{}

		row := Row(r)
		if checksums[r.Label] == row.Checksum {
			continue
		}
		if err := db.UpsertEntry(row); err != nil {
			logger.Warn("sync: index failed", slog.String("label", r.Label), slog.String("error", err.Error()))
			continue
		}
		stats.Indexed++
		logger.Debug("sync: indexed", slog.String("label", r.Label))
	}

	// Remove stale entries.
	for label := range checksums {
		if _, ok := seen[label]; !ok {
			if err := db.DeleteEntry(label); err != nil {
				logger.Warn("sync: delete failed", slog.String("label", label), slog.String("error", err.Error()))
				continue
			}
			stats.Removed++
			logger.Debug("sync: removed stale", slog.String("label", label))
		}
	}

	stats.Total = len(recs)
	return stats, nil
}

// Row converts a journal record into an index row.
func Row(r journal.Record) EntryRow {
	res := parser.Parse(r.Entry.Entry)
	return EntryRow{
		Label:    r.Label,
		Seq:      r.Seq,
		Day:      r.Entry.Day,
		Time:     r.Entry.Time,
		Headline: res.Headline,
		Tags:     res.Tags,
		Body:     res.Body,
		Checksum: checksum.Fields(r.Entry.Day, r.Entry.Time, r.Entry.Entry),
	}
}
