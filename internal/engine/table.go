package engine

import (
	"context"
	"sync"

	"github.com/leengari/schemadb/internal/domain/data"
	"github.com/leengari/schemadb/internal/domain/schema"
	"github.com/leengari/schemadb/internal/query/search"
)

// RowStore persists rows of a table
type RowStore interface {
	PutRow(ctx context.Context, database, table string, row data.Row) error
	ScanRows(ctx context.Context, database, table string, fn func(data.Row) error) error
}

// Table holds the rows and indexes of one table, guarded by its own lock.
// The schema it enforces is a private copy; callers never alias it.
type Table struct {
	mu       sync.RWMutex
	Database string
	schema   *schema.TableSchema
	rows     []data.Row
	byUID    map[string]int // _uid → row position
	byPK     map[string]int // formatted primary key → row position
	indexes  map[string]*search.HashIndex
	store    RowStore
}

// NewTable creates an empty shard enforcing a copy of ts.
// A nil store keeps rows in memory only.
func NewTable(database string, ts *schema.TableSchema, store RowStore) *Table {
	t := &Table{
		Database: database,
		schema:   ts.Clone().Init(),
		store:    store,
	}
	t.resetIndexesUnsafe()
	return t
}

// Name returns the table name
func (t *Table) Name() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.schema.Name
}

// Schema returns a copy of the schema the table enforces
func (t *Table) Schema() *schema.TableSchema {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.schema.Clone()
}

// Count returns the number of rows
func (t *Table) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

// Lock acquires an exclusive lock on the table for write operations
func (t *Table) Lock() {
	t.mu.Lock()
}

// Unlock releases the exclusive lock
func (t *Table) Unlock() {
	t.mu.Unlock()
}

// RLock acquires a read lock on the table for read operations
func (t *Table) RLock() {
	t.mu.RLock()
}

// RUnlock releases the read lock
func (t *Table) RUnlock() {
	t.mu.RUnlock()
}

// resetIndexesUnsafe drops every row lookup and recreates empty hash indexes
// IMPORTANT: Must be called while holding write lock!
func (t *Table) resetIndexesUnsafe() {
	t.byUID = make(map[string]int)
	t.byPK = make(map[string]int)
	t.indexes = make(map[string]*search.HashIndex, len(t.schema.Indexes))
	for _, def := range t.schema.Indexes {
		t.indexes[def.Name] = search.NewHashIndex(def)
	}
}

// view exposes the table to the search layer; the caller holds the read lock
type view struct {
	t *Table
}

func (v view) Schema() *schema.TableSchema { return v.t.schema }
func (v view) RowAt(pos int) data.Row      { return v.t.rows[pos] }
func (v view) Len() int                    { return len(v.t.rows) }

func (v view) Index(name string) (*search.HashIndex, bool) {
	idx, ok := v.t.indexes[name]
	return idx, ok
}
