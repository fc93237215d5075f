package writer

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/leengari/schemadb/internal/domain/schema"
	"github.com/leengari/schemadb/internal/storage/metadata"
)

// SaveTableMeta writes <dir>/<table>/meta.json atomically and returns its path
func SaveTableMeta(dir string, ts *schema.TableSchema) (string, error) {
	if ts == nil || ts.Name == "" {
		return "", fmt.Errorf("cannot save table meta: nil schema or missing name")
	}

	tableDir := filepath.Join(dir, ts.Name)
	if err := os.MkdirAll(tableDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create table directory for %s: %w", ts.Name, err)
	}

	metaBytes, err := json.MarshalIndent(metadata.FromSchema(ts), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal table meta for %s: %w", ts.Name, err)
	}

	metaPath := filepath.Join(tableDir, "meta.json")
	if err := writeAtomic(metaPath, metaBytes); err != nil {
		return "", fmt.Errorf("table %s: %w", ts.Name, err)
	}

	slog.Info("Table meta saved",
		slog.String("table", ts.Name),
		slog.String("path", metaPath),
		slog.Int("columns", len(ts.Columns)),
	)

	return metaPath, nil
}

// SaveDatabaseMeta writes every table's meta.json plus the database meta.json
func SaveDatabaseMeta(dir, name string, tables []*schema.TableSchema) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	tableNames := make([]string, 0, len(tables))
	for _, ts := range tables {
		if _, err := SaveTableMeta(dir, ts); err != nil {
			slog.Error("failed to save table during database save",
				slog.String("table", ts.Name),
				slog.Any("error", err),
			)
			return fmt.Errorf("failed to save table %s: %w", ts.Name, err)
		}
		tableNames = append(tableNames, ts.Name)
	}
	sort.Strings(tableNames)

	dbMeta := metadata.DatabaseMeta{
		Name:    name,
		Version: 1,
		Tables:  tableNames,
	}

	metaBytes, err := json.MarshalIndent(dbMeta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal database meta: %w", err)
	}

	if err := writeAtomic(filepath.Join(dir, "meta.json"), metaBytes); err != nil {
		return fmt.Errorf("database %s: %w", name, err)
	}

	slog.Info("Database meta saved",
		slog.String("name", name),
		slog.String("path", dir),
		slog.Int("table_count", len(tables)),
	)

	return nil
}

// writeAtomic writes to a temp file then renames it over path
func writeAtomic(path string, body []byte) error {
	tmpPath := path + ".tmp"

	if err := os.WriteFile(tmpPath, body, 0644); err != nil {
		return fmt.Errorf("failed to write temp file %s: %w", filepath.Base(path), err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp → %s: %w", filepath.Base(path), err)
	}
	return nil
}
