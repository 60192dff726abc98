// Package diary is the facade the UI collaborators call: it owns the session
// gate and routes entry operations through it, keeping the search index and
// event stream in step.
package diary

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/starford/grimoire/internal/apperr"
	"github.com/starford/grimoire/internal/clock"
	"github.com/starford/grimoire/internal/index"
	"github.com/starford/grimoire/internal/journal"
	"github.com/starford/grimoire/internal/parser"
	"github.com/starford/grimoire/internal/session"
	"github.com/starford/grimoire/internal/sse"
)

// Gate is the session gate guarding the entry store.
type Gate = session.Gate[*journal.Store]

// Publisher receives change notifications.
type Publisher interface {
	Publish(event sse.Event)
}

// Service coordinates the gate, entry store, index, and events.
type Service struct {
	gate   *Gate
	index  index.EntryIndex
	events Publisher
	clock  clock.Clock
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithIndex enables indexed search. Without it, Search scans the collection.
func WithIndex(idx index.EntryIndex) Option {
	return func(s *Service) { s.index = idx }
}

// WithPublisher sets the event sink.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.events = p }
}

// WithClock sets the clock reported by Now.
func WithClock(c clock.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a diary service over gate.
func NewService(gate *Gate, opts ...Option) *Service {
	s := &Service{
		gate:   gate,
		clock:  clock.System,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current session state.
func (s *Service) State() session.State {
	return s.gate.State()
}

// Now returns the current clock reading.
func (s *Service) Now() clock.Stamp {
	return s.clock.Now()
}

// UnlockedAt returns when the diary was unlocked, if it has been.
func (s *Service) UnlockedAt() (clock.Stamp, bool) {
	return s.gate.UnlockedAt()
}

// Enroll sets the first password.
func (s *Service) Enroll(_ context.Context, password string) (session.State, error) {
	st, err := s.gate.Enroll(password)
	s.afterAuth("enroll", st, err)
	return st, err
}

// Verify checks the password.
func (s *Service) Verify(_ context.Context, password string) (session.State, error) {
	st, err := s.gate.Verify(password)
	s.afterAuth("verify", st, err)
	return st, err
}

func (s *Service) afterAuth(op string, st session.State, err error) {
	if err != nil {
		s.logger.Warn("diary: "+op+" failed",
			slog.String("state", st.String()),
			slog.String("error", err.Error()))
		return
	}
	s.publish(sse.Event{Type: sse.TypeSessionChanged, Data: map[string]string{"state": st.String()}})

	if s.index != nil {
		if _, err := s.Reindex(context.Background()); err != nil {
			s.logger.Warn("diary: initial index sync failed", slog.String("error", err.Error()))
		}
	}
}

// Append stores content as a new entry stamped with the current day and time.
func (s *Service) Append(_ context.Context, content string) (*journal.Record, error) {
	store, err := s.gate.Unlocked()
	if err != nil {
		return nil, err
	}
	label, err := store.Append(content)
	if err != nil {
		if !errors.Is(err, apperr.ErrEmptyContent) && !errors.Is(err, apperr.ErrInvalidContent) {
			s.logger.Error("diary: append failed", slog.String("error", err.Error()))
		}
		return nil, err
	}
	rec, err := store.Get(label)
	if err != nil {
		return nil, err
	}

	if s.index != nil {
		if err := s.index.UpsertEntry(index.Row(*rec)); err != nil {
			s.logger.Warn("diary: index entry failed",
				slog.String("label", label),
				slog.String("error", err.Error()))
		}
	}
	s.publish(sse.Event{Type: sse.TypeEntryAppended, Data: map[string]any{
		"label": rec.Label,
		"seq":   rec.Seq,
		"day":   rec.Entry.Day,
		"time":  rec.Entry.Time,
	}})
	return rec, nil
}

// ListAll returns every entry in append order.
func (s *Service) ListAll(_ context.Context) ([]journal.Record, error) {
	store, err := s.gate.Unlocked()
	if err != nil {
		return nil, err
	}
	return store.ListAll()
}

// Search finds entries whose text, headline, or tags match query.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]index.SearchResult, error) {
	store, err := s.gate.Unlocked()
	if err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return []index.SearchResult{}, nil
	}
	if limit <= 0 {
		limit = 20
	}
	if s.index != nil {
		res, err := s.index.Search(query, limit)
		if err == nil {
			return nonNilSlice(res), nil
		}
		s.logger.Warn("diary: index search failed, scanning", slog.String("error", err.Error()))
	}
	return scan(store, query, limit)
}

// Reindex brings the search index in line with the collection.
func (s *Service) Reindex(_ context.Context) (index.SyncStats, error) {
	store, err := s.gate.Unlocked()
	if err != nil {
		return index.SyncStats{}, err
	}
	if s.index == nil {
		return index.SyncStats{}, nil
	}
	return index.Sync(s.index, store, s.logger)
}

// Source returns the entry collection as an index source. Reads go through
// the gate, so they fail with apperr.ErrLocked until the diary is unlocked.
func (s *Service) Source() index.Source {
	return gatedSource{s}
}

type gatedSource struct{ s *Service }

func (g gatedSource) ListAll() ([]journal.Record, error) {
	return g.s.ListAll(context.Background())
}

// EntriesSynced reports a watcher-driven index sync to subscribers.
func (s *Service) EntriesSynced(stats index.SyncStats) {
	s.publish(sse.Event{Type: sse.TypeEntriesSynced, Data: map[string]int{
		"indexed": stats.Indexed,
		"removed": stats.Removed,
		"total":   stats.Total,
	}})
}

func (s *Service) publish(e sse.Event) {
	if s.events != nil {
		s.events.Publish(e)
	}
}

// scan is the index-free search: a case-insensitive substring match.
func scan(store *journal.Store, query string, limit int) ([]index.SearchResult, error) {
	recs, err := store.ListAll()
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(query)
	out := []index.SearchResult{}
	for _, r := range recs {
		if !strings.Contains(strings.ToLower(r.Entry.Entry), needle) {
			continue
		}
		res := parser.Parse(r.Entry.Entry)
		out = append(out, index.SearchResult{
			Label:    r.Label,
			Seq:      r.Seq,
			Day:      r.Entry.Day,
			Time:     r.Entry.Time,
			Headline: res.Headline,
			Snippet:  snippet(res.Body, 200),
		})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func snippet(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
