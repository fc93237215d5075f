// Package config loads schemadb.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up from the working directory upwards
const FileName = "schemadb.yaml"

// Config holds settings for the schemadb command
type Config struct {
	// DataDir is where BadgerDB stores rows and schemas.
	DataDir string `yaml:"dataDir"`

	// SchemaDir holds one directory per database, each with a tables/ folder.
	SchemaDir string `yaml:"schemaDir"`

	// Databases restricts loading to these names. Empty loads every directory.
	Databases []string `yaml:"databases"`

	// InMemory keeps BadgerDB in memory; nothing survives the process.
	InMemory bool `yaml:"inMemory"`

	Log LogConfig `yaml:"log"`

	// path of the file this config was read from, empty for defaults
	source string
}

// LogConfig configures the process logger
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// SeqURL enables shipping logs to a Seq server when set.
	SeqURL string `yaml:"seqURL"`
}

// Default returns the configuration used when no file is found
func Default() Config {
	return Config{
		DataDir:   "data",
		SchemaDir: "databases",
		Log:       LogConfig{Level: "info"},
	}
}

// Source returns the file the config was read from, or "" for defaults
func (c Config) Source() string {
	return c.source
}

// Load reads the config at path. An empty path searches for FileName
// starting at the working directory; defaults are returned if none exists.
// Relative directories are resolved against the config file's directory.
func Load(path string) (Config, error) {
	if path == "" {
		dir, err := os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("get working directory: %w", err)
		}
		path = Find(dir)
		if path == "" {
			return Default(), nil
		}
	}

	body, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(path, body)
}

// Parse decodes a config body read from path and applies defaults
func Parse(path string, body []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(body, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.source = path

	base := filepath.Dir(path)
	cfg.DataDir = resolve(base, cfg.DataDir)
	cfg.SchemaDir = resolve(base, cfg.SchemaDir)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the values a file may set
func (c Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	if c.SchemaDir == "" {
		return fmt.Errorf("schemaDir is empty")
	}
	if c.DataDir == "" && !c.InMemory {
		return fmt.Errorf("dataDir is empty and inMemory is off")
	}
	return nil
}

// Find searches for FileName walking up from dir.
// Returns "" when the filesystem root is reached without a match.
func Find(dir string) string {
	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return ""
		}
		dir = parent
	}
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
