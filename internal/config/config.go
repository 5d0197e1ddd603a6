// Package config resolves where libcat keeps its files.
//
// Sources, lowest precedence first: built-in defaults, a YAML config file,
// environment variables (a .env file in the working directory is loaded
// first when present), then command-line flags applied by the caller.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/roach88/libcat/internal/records"
)

// Environment variable names.
const (
	EnvBooks   = "LIBCAT_BOOKS"
	EnvUsers   = "LIBCAT_USERS"
	EnvJournal = "LIBCAT_JOURNAL"
)

// DefaultFile is read when no config path is given, if it exists.
const DefaultFile = "libcat.yaml"

// Config holds file locations.
type Config struct {
	// Books is the books record file.
	Books string `yaml:"books"`

	// Users is the users record file.
	Users string `yaml:"users"`

	// Journal is the SQLite journal. Empty disables journaling.
	Journal string `yaml:"journal"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Books: records.DefaultBooksPath,
		Users: records.DefaultUsersPath,
	}
}

// Load builds a Config from defaults, the YAML file at path and the
// environment. An empty path falls back to DefaultFile and tolerates its
// absence; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if err := cfg.mergeFile(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	cfg.mergeEnv()

	return cfg, nil
}

// mergeFile overlays non-empty values from a YAML file.
// Unknown keys are rejected to catch typos.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var file Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	c.overlay(file)
	return nil
}

func (c *Config) mergeEnv() {
	c.overlay(Config{
		Books:   strings.TrimSpace(os.Getenv(EnvBooks)),
		Users:   strings.TrimSpace(os.Getenv(EnvUsers)),
		Journal: strings.TrimSpace(os.Getenv(EnvJournal)),
	})
}

func (c *Config) overlay(o Config) {
	if o.Books != "" {
		c.Books = o.Books
	}
	if o.Users != "" {
		c.Users = o.Users
	}
	if o.Journal != "" {
		c.Journal = o.Journal
	}
}

// Validate checks that the record file paths are set.
func (c Config) Validate() error {
	if c.Books == "" {
		return errors.New("books path is empty")
	}
	if c.Users == "" {
		return errors.New("users path is empty")
	}
	return nil
}
