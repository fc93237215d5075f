// Package catalog owns the table schemas of every loaded database.
//
// Schemas themselves are unsynchronized values; the Registry serializes all
// access with a single RWMutex and hands callers copies, never its own.
package catalog

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/leengari/schemadb/internal/domain/errors"
	"github.com/leengari/schemadb/internal/domain/schema"
	"github.com/leengari/schemadb/internal/storage"
)

// Database is the set of table schemas registered under one name
type Database struct {
	Name   string
	tables map[string]*schema.TableSchema
}

// Registry manages databases and their table schemas in a thread-safe way
type Registry struct {
	mu        sync.RWMutex
	databases map[string]*Database
	logger    *slog.Logger
}

// NewRegistry creates an empty registry; a nil logger uses slog.Default()
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		databases: make(map[string]*Database),
		logger:    logger,
	}
}

// AddDatabase registers an empty database. Adding an existing name is a no-op.
func (r *Registry) AddDatabase(name string) error {
	if name == "" {
		return fmt.Errorf("database name is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.addDatabaseUnsafe(name)
	return nil
}

func (r *Registry) addDatabaseUnsafe(name string) *Database {
	if db, ok := r.databases[name]; ok {
		return db
	}
	db := &Database{Name: name, tables: make(map[string]*schema.TableSchema)}
	r.databases[name] = db
	r.logger.Info("database registered", slog.String("name", name))
	return db
}

// HasDatabase reports whether a database is registered
func (r *Registry) HasDatabase(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.databases[name]
	return ok
}

// Databases returns the registered database names, sorted
func (r *Registry) Databases() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.databases))
	for name := range r.databases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegisterTables adds schemas to an existing database.
// A table already registered under the same name is replaced.
func (r *Registry) RegisterTables(database string, tables ...*schema.TableSchema) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	db, ok := r.databases[database]
	if !ok {
		return &errors.DatabaseNotFoundError{Name: database}
	}

	for _, ts := range tables {
		if ts == nil {
			continue
		}
		if _, exists := db.tables[ts.Name]; exists {
			r.logger.Warn("table schema replaced",
				slog.String("database", database),
				slog.String("table", ts.Name),
			)
		}
		db.tables[ts.Name] = ts.Clone()
	}
	return nil
}

// Table returns a copy of a registered table schema
func (r *Registry) Table(database, table string) (*schema.TableSchema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	db, ok := r.databases[database]
	if !ok {
		return nil, &errors.DatabaseNotFoundError{Name: database}
	}
	ts, ok := db.tables[table]
	if !ok {
		return nil, &errors.TableNotFoundError{Database: database, Table: table}
	}
	return ts.Clone(), nil
}

// TableNames returns the tables of a database, sorted
func (r *Registry) TableNames(database string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	db, ok := r.databases[database]
	if !ok {
		return nil, &errors.DatabaseNotFoundError{Name: database}
	}
	names := make([]string, 0, len(db.tables))
	for name := range db.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Tables returns copies of every table schema of a database, sorted by name
func (r *Registry) Tables(database string) ([]*schema.TableSchema, error) {
	names, err := r.TableNames(database)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	db, ok := r.databases[database]
	if !ok {
		return nil, &errors.DatabaseNotFoundError{Name: database}
	}
	out := make([]*schema.TableSchema, 0, len(names))
	for _, name := range names {
		if ts, ok := db.tables[name]; ok {
			out = append(out, ts.Clone())
		}
	}
	return out, nil
}

// ValidateAll runs the schema validation pass over every registered table
// and joins the failures
func (r *Registry) ValidateAll() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var errs []error
	for _, dbName := range sortedKeys(r.databases) {
		db := r.databases[dbName]
		for _, name := range sortedKeys(db.tables) {
			if err := db.tables[name].Validate(); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", dbName, err))
			}
		}
	}
	return stderrors.Join(errs...)
}

// LoadDatabaseSchema reads <path>/tables, prepares and validates every table
// and registers them under a database named after the directory.
// Nothing is registered when any table fails validation.
func (r *Registry) LoadDatabaseSchema(path string) (string, error) {
	name, tables, err := storage.LoadDatabaseDir(path, r.logger)
	if err != nil {
		return "", err
	}

	var errs []error
	for _, ts := range tables {
		ts.Init()
		if err := ts.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := stderrors.Join(errs...); err != nil {
		return "", fmt.Errorf("database %s: %w", name, err)
	}

	r.mu.Lock()
	db := r.addDatabaseUnsafe(name)
	for _, ts := range tables {
		db.tables[ts.Name] = ts
	}
	r.mu.Unlock()

	r.logger.Info("database schema registered",
		slog.String("name", name),
		slog.Int("table_count", len(tables)),
	)
	return name, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
