package internal

import (
	"fmt"
	"log/slog"
	"net"
	"path/filepath"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/starford/grimoire/internal/credential"
	"github.com/starford/grimoire/internal/journal"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Diary    DiaryConfig       `yaml:"diary"`
	Security SecurityConfig    `yaml:"security"`
	Index    IndexConfig       `yaml:"index"`
	Events   EventsConfig      `yaml:"events"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Diary.Validate(); err != nil {
		return err
	}
	if err := c.Security.Validate(); err != nil {
		return err
	}
	return c.Events.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds the local API server configuration. The diary is
// single-user, so the default host is loopback only.
type HTTPConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Host, validation.Required),
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// DiaryConfig locates the two persisted records.
type DiaryConfig struct {
	Dir            string `yaml:"dir"`
	CredentialFile string `yaml:"credential_file"`
	EntriesFile    string `yaml:"entries_file"`
}

// Validate validates the diary configuration.
func (c *DiaryConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.CredentialFile, validation.Required, validation.By(plainFileName)),
		validation.Field(&c.EntriesFile, validation.Required, validation.By(plainFileName)),
	); err != nil {
		return err
	}
	if c.CredentialFile == c.EntriesFile {
		return fmt.Errorf("diary: credential_file and entries_file must differ")
	}
	return nil
}

func plainFileName(v any) error {
	name, _ := v.(string)
	if name != filepath.Base(name) || name == "." || name == ".." {
		return fmt.Errorf("must be a file name, not a path")
	}
	return nil
}

// SecurityConfig holds password hashing settings.
type SecurityConfig struct {
	BcryptCost int `yaml:"bcrypt_cost"`
}

// Validate validates the security configuration.
func (c *SecurityConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BcryptCost, validation.Required, validation.Min(bcrypt.DefaultCost), validation.Max(bcrypt.MaxCost)),
	)
}

// IndexConfig holds the optional SQLite search index configuration.
// An empty SQLitePath places the index next to the entries file.
type IndexConfig struct {
	Enabled    bool   `yaml:"enabled"`
	SQLitePath string `yaml:"sqlite_path"`
}

// Path returns the database path, defaulting into dataDir.
func (c *IndexConfig) Path(dataDir string) string {
	if c.SQLitePath != "" {
		return c.SQLitePath
	}
	return filepath.Join(dataDir, "grimoire.db")
}

// EventsConfig holds SSE settings.
type EventsConfig struct {
	Throttle time.Duration `yaml:"throttle"`
}

// Validate validates the events configuration.
func (c *EventsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Throttle, validation.Min(time.Duration(0))),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Host: "127.0.0.1",
				Port: 7460,
			},
		},
		Diary: DiaryConfig{
			Dir:            "./diary",
			CredentialFile: credential.DefaultFile,
			EntriesFile:    journal.DefaultFile,
		},
		Security: SecurityConfig{
			BcryptCost: bcrypt.DefaultCost,
		},
		Index: IndexConfig{
			Enabled: true,
		},
		Events: EventsConfig{
			Throttle: 2 * time.Second,
		},
	}
}
