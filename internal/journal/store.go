package journal

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/starford/grimoire/internal/apperr"
	"github.com/starford/grimoire/internal/clock"
	"github.com/starford/grimoire/internal/storage"
)

// DefaultFile is the collection file name used when none is configured.
const DefaultFile = "Entries.json"

type collection = orderedmap.OrderedMap[string, Entry]

// Store appends entries to, and lists entries from, a single JSON collection.
// The next sequence id is always derived from the persisted collection.
type Store struct {
	mu     sync.Mutex // serialises appends within the process
	store  storage.Provider
	file   string
	clock  clock.Clock
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithFile overrides the collection file name.
func WithFile(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.file = name
		}
	}
}

// WithClock sets the clock used by Append.
func WithClock(c clock.Clock) Option {
	return func(s *Store) {
		s.clock = c
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// NewStore creates an entry store persisting through p.
func NewStore(p storage.Provider, opts ...Option) *Store {
	s := &Store{
		store:  p,
		file:   DefaultFile,
		clock:  clock.System,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// File returns the collection file name relative to the storage root.
func (s *Store) File() string {
	return s.file
}

// Append stamps content with the current day and time and stores it.
func (s *Store) Append(content string) (string, error) {
	if isBlank(content) {
		return "", fmt.Errorf("journal: append: %w", apperr.ErrEmptyContent)
	}
	now := s.clock.Now()
	return s.AppendAt(content, now.Day, now.Time)
}

// AppendAt stores content under the next label and returns that label.
// Blank content and invalid UTF-8 are rejected before anything is read or
// written; JSON could not store such bytes unchanged.
func (s *Store) AppendAt(content, day, timeOfDay string) (string, error) {
	if isBlank(content) {
		return "", fmt.Errorf("journal: append: %w", apperr.ErrEmptyContent)
	}
	if !utf8.ValidString(content) {
		return "", fmt.Errorf("journal: append: %w", apperr.ErrInvalidContent)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	coll, last, err := s.load()
	if err != nil {
		return "", err
	}

	label := Label(last + 1)
	coll.Set(label, Entry{Day: day, Time: timeOfDay, Entry: content})

	data, err := json.MarshalIndent(coll, "", "    ")
	if err != nil {
		return "", fmt.Errorf("journal: encode: %w", err)
	}
	if err := s.store.Write(s.file, data); err != nil {
		return "", fmt.Errorf("journal: persist: %w", err)
	}

	s.logger.Debug("journal: appended", slog.String("label", label), slog.Int("entries", coll.Len()))
	return label, nil
}

// ListAll returns every entry in append order. A missing or empty collection
// yields an empty slice.
func (s *Store) ListAll() ([]Record, error) {
	coll, _, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, coll.Len())
	for pair := coll.Oldest(); pair != nil; pair = pair.Next() {
		seq, _ := ParseLabel(pair.Key)
		out = append(out, Record{Label: pair.Key, Seq: seq, Entry: pair.Value})
	}
	return out, nil
}

// Get returns the entry stored under label.
func (s *Store) Get(label string) (*Record, error) {
	coll, _, err := s.load()
	if err != nil {
		return nil, err
	}
	e, ok := coll.Get(label)
	if !ok {
		return nil, fmt.Errorf("journal: %s: %w", label, apperr.ErrNotFound)
	}
	seq, _ := ParseLabel(label)
	return &Record{Label: label, Seq: seq, Entry: e}, nil
}

// Count returns the number of stored entries.
func (s *Store) Count() (int, error) {
	coll, _, err := s.load()
	if err != nil {
		return 0, err
	}
	return coll.Len(), nil
}

// load reads the collection and returns it with the highest sequence id in use.
func (s *Store) load() (*collection, int, error) {
	coll := orderedmap.New[string, Entry]()

	data, err := s.store.Read(s.file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return coll, 0, nil
		}
		return nil, 0, fmt.Errorf("journal: %v: %w", err, apperr.ErrStoreUnavailable)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return coll, 0, nil
	}

	if err := json.Unmarshal(data, coll); err != nil {
		return nil, 0, fmt.Errorf("journal: decode %s: %v: %w", s.file, err, apperr.ErrStoreUnavailable)
	}
	// The map keeps only the last of two equal keys.
	if err := uniqueLabels(data); err != nil {
		return nil, 0, fmt.Errorf("journal: decode %s: %v: %w", s.file, err, apperr.ErrStoreUnavailable)
	}

	last := 0
	for pair := coll.Oldest(); pair != nil; pair = pair.Next() {
		seq, err := ParseLabel(pair.Key)
		if err != nil {
			return nil, 0, fmt.Errorf("%v: %w", err, apperr.ErrStoreUnavailable)
		}
		last = max(last, seq)
	}
	return coll, last, nil
}

// uniqueLabels walks the top-level object of a well-formed document and
// reports the first label that occurs twice.
func uniqueLabels(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return err
	}
	seen := make(map[string]struct{})
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		label, _ := tok.(string)
		if _, dup := seen[label]; dup {
			return fmt.Errorf("duplicate label %q", label)
		}
		seen[label] = struct{}{}

		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return err
		}
	}
	return nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
