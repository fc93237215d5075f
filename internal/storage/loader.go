package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/leengari/schemadb/internal/domain/schema"
	"github.com/leengari/schemadb/internal/storage/metadata"
)

// TablesDir is the subdirectory of a database directory holding table files
const TablesDir = "tables"

// IsTableFile reports whether path has an extension LoadTable understands
func IsTableFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// DecodeTable parses a table file body; format is chosen by the extension of name
func DecodeTable(name string, body []byte) (*schema.TableSchema, error) {
	var file metadata.TableFile

	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(body, &file); err != nil {
			return nil, fmt.Errorf("parse yaml table file %s: %w", name, err)
		}
	case ".json":
		if err := json.Unmarshal(body, &file); err != nil {
			return nil, fmt.Errorf("parse json table file %s: %w", name, err)
		}
	default:
		return nil, fmt.Errorf("unsupported table file %s", name)
	}

	if file.Name == "" {
		file.Name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	}

	return file.ToSchema(), nil
}

// LoadTable reads and decodes a single table file
func LoadTable(path string) (*schema.TableSchema, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read table file: %w", err)
	}
	return DecodeTable(path, body)
}

// LoadDatabaseDir loads every table file under <dbPath>/tables.
// The database is named after the directory. Tables are returned sorted by name.
func LoadDatabaseDir(dbPath string, logger *slog.Logger) (string, []*schema.TableSchema, error) {
	if logger == nil {
		logger = slog.Default()
	}

	info, err := os.Stat(dbPath)
	if err != nil {
		return "", nil, fmt.Errorf("trying to access a database schema that does not exist: %s: %w", dbPath, err)
	}
	if !info.IsDir() {
		return "", nil, fmt.Errorf("database schema path %s is not a directory", dbPath)
	}

	name := filepath.Base(filepath.Clean(dbPath))
	tablesPath := filepath.Join(dbPath, TablesDir)

	var tables []*schema.TableSchema
	err = filepath.WalkDir(tablesPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsTableFile(path) {
			return nil
		}

		ts, err := LoadTable(path)
		if err != nil {
			return fmt.Errorf("failed to load table %s: %w", path, err)
		}
		tables = append(tables, ts)

		logger.Debug("table schema loaded",
			slog.String("database", name),
			slog.String("table", ts.Name),
			slog.Int("columns", len(ts.Columns)),
			slog.Int("indexes", len(ts.Indexes)),
		)
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return "", nil, err
	}

	sort.Slice(tables, func(i, j int) bool { return tables[i].Name < tables[j].Name })

	logger.Info("database schema loaded",
		slog.String("name", name),
		slog.String("path", dbPath),
		slog.Int("table_count", len(tables)),
	)

	return name, tables, nil
}
