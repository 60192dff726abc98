// Package credential owns the single hashed diary password.
package credential

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/starford/grimoire/internal/apperr"
	"github.com/starford/grimoire/internal/storage"
)

// DefaultFile is the record file name used when none is configured.
const DefaultFile = "password_file.json"

// maxPasswordBytes is the bcrypt input limit.
const maxPasswordBytes = 72

// Record is the persisted credential.
type Record struct {
	Password string `json:"Password"`
}

// Store enrolls and verifies the diary password.
type Store struct {
	store  storage.Provider
	file   string
	cost   int
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithFile overrides the record file name.
func WithFile(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.file = name
		}
	}
}

// WithCost sets the bcrypt work factor. Values below bcrypt.MinCost are raised to it.
func WithCost(cost int) Option {
	return func(s *Store) {
		s.cost = max(cost, bcrypt.MinCost)
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// NewStore creates a credential store persisting through p.
func NewStore(p storage.Provider, opts ...Option) *Store {
	s := &Store{
		store:  p,
		file:   DefaultFile,
		cost:   bcrypt.DefaultCost,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HasCredential reports whether a password has been enrolled.
func (s *Store) HasCredential() bool {
	return s.store.Exists(s.file)
}

// Enroll hashes password and persists it. It never replaces an existing record.
func (s *Store) Enroll(password string) error {
	if password == "" {
		return fmt.Errorf("credential: enroll: %w", apperr.ErrEmptyPassword)
	}
	if len(password) > maxPasswordBytes {
		return fmt.Errorf("credential: enroll: %w", apperr.ErrPasswordTooLong)
	}
	if s.HasCredential() {
		return fmt.Errorf("credential: enroll: %w", apperr.ErrAlreadyEnrolled)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("credential: hash: %w", err)
	}
	data, err := json.Marshal(Record{Password: string(hash)})
	if err != nil {
		return fmt.Errorf("credential: encode: %w", err)
	}
	if err := s.store.Create(s.file, data); err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			return fmt.Errorf("credential: enroll: %w", apperr.ErrAlreadyEnrolled)
		}
		return fmt.Errorf("credential: persist: %w", err)
	}

	s.logger.Info("credential: enrolled", slog.String("file", s.file), slog.Int("cost", s.cost))
	return nil
}

// Verify reports whether password matches the enrolled hash.
func (s *Store) Verify(password string) (bool, error) {
	if !s.HasCredential() {
		return false, fmt.Errorf("credential: verify: %w", apperr.ErrNoCredential)
	}
	rec, err := s.load()
	if err != nil {
		return false, err
	}

	err = bcrypt.CompareHashAndPassword([]byte(rec.Password), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		s.logger.Warn("credential: verification rejected")
		return false, nil
	default:
		return false, fmt.Errorf("credential: compare: %v: %w", err, apperr.ErrStoreUnavailable)
	}
}

func (s *Store) load() (*Record, error) {
	data, err := s.store.Read(s.file)
	if err != nil {
		return nil, fmt.Errorf("credential: %v: %w", err, apperr.ErrStoreUnavailable)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("credential: decode: %v: %w", err, apperr.ErrStoreUnavailable)
	}
	if rec.Password == "" {
		return nil, fmt.Errorf("credential: record has no hash: %w", apperr.ErrStoreUnavailable)
	}
	return &rec, nil
}
