package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/leengari/schemadb/internal/catalog"
	"github.com/leengari/schemadb/internal/domain/data"
	"github.com/leengari/schemadb/internal/domain/errors"
	"github.com/leengari/schemadb/internal/domain/schema"
	"github.com/leengari/schemadb/internal/domain/transaction"
	"github.com/leengari/schemadb/internal/query/search"
	"golang.org/x/sync/errgroup"
)

// Store persists schemas and rows across restarts
type Store interface {
	RowStore
	PutSchema(ctx context.Context, database string, ts *schema.TableSchema) error
	Schemas(ctx context.Context) (map[string][]*schema.TableSchema, error)
}

// Engine is the main entry point for the database system
type Engine struct {
	mu      sync.RWMutex
	catalog *catalog.Registry
	store   Store
	tables  map[string]*Table // shardKey(db, table) → shard
	logger  *slog.Logger

	obsMu     sync.RWMutex
	observers []Observer // Observers for lifecycle events
}

// New creates a new Engine instance.
// A nil catalog starts empty; a nil store keeps everything in memory.
func New(cat *catalog.Registry, store Store, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cat == nil {
		cat = catalog.NewRegistry(logger)
	}
	return &Engine{
		catalog:   cat,
		store:     store,
		tables:    make(map[string]*Table),
		logger:    logger,
		observers: make([]Observer, 0),
	}
}

func shardKey(database, table string) string {
	return database + "\x00" + table
}

// Catalog returns the schema registry the engine serves
func (e *Engine) Catalog() *catalog.Registry {
	return e.catalog
}

// Open brings the engine in line with the catalog and the store:
// schemas persisted in the store but unknown to the catalog are registered,
// every catalog table gets a shard, and rows are reloaded concurrently.
func (e *Engine) Open(ctx context.Context) error {
	tx := transaction.NewTransaction()
	defer tx.Close()

	e.notify(Event{Type: EventOpenStart, TxID: tx.ID})

	if e.store != nil {
		persisted, err := e.store.Schemas(ctx)
		if err != nil {
			return fmt.Errorf("read persisted schemas: %w", err)
		}
		for dbName, tables := range persisted {
			if err := e.catalog.AddDatabase(dbName); err != nil {
				return err
			}
			for _, ts := range tables {
				if _, err := e.catalog.Table(dbName, ts.Name); err == nil {
					continue // the catalog's definition wins
				}
				ts.Init()
				if err := ts.Validate(); err != nil {
					return fmt.Errorf("persisted schema %s.%s: %w", dbName, ts.Name, err)
				}
				if err := e.catalog.RegisterTables(dbName, ts); err != nil {
					return err
				}
			}
		}
	}

	e.mu.Lock()
	var shards []*Table
	for _, dbName := range e.catalog.Databases() {
		tables, err := e.catalog.Tables(dbName)
		if err != nil {
			e.mu.Unlock()
			return err
		}
		for _, ts := range tables {
			if e.store != nil {
				if err := e.store.PutSchema(ctx, dbName, ts); err != nil {
					e.mu.Unlock()
					return fmt.Errorf("persist schema %s.%s: %w", dbName, ts.Name, err)
				}
			}
			t, ok := e.tables[shardKey(dbName, ts.Name)]
			if !ok {
				t = NewTable(dbName, ts, e.store)
				e.tables[shardKey(dbName, ts.Name)] = t
			} else if err := t.Reschema(ts, e.logger); err != nil {
				e.mu.Unlock()
				return err
			}
			shards = append(shards, t)
		}
	}
	e.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range shards {
		g.Go(func() error {
			return t.Load(gctx, e.logger)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	e.notify(Event{Type: EventOpenEnd, TxID: tx.ID, Data: len(shards)})
	return nil
}

// CreateDatabase registers an empty database
func (e *Engine) CreateDatabase(name string) error {
	return e.catalog.AddDatabase(name)
}

// RegisterTable prepares and validates ts, then makes it available under
// database. Registering a name that already exists replaces its schema and
// reindexes the existing rows; on failure the previous schema stays in place.
func (e *Engine) RegisterTable(ctx context.Context, database string, ts *schema.TableSchema) error {
	tx := transaction.NewTransaction()
	defer tx.Close()

	prepared := ts.Clone().Init()
	if err := prepared.Validate(); err != nil {
		return err
	}
	if err := e.catalog.AddDatabase(database); err != nil {
		return err
	}

	e.mu.Lock()
	t, exists := e.tables[shardKey(database, prepared.Name)]
	if exists {
		if err := t.Reschema(prepared, e.logger); err != nil {
			e.mu.Unlock()
			return fmt.Errorf("reschema %s.%s: %w", database, prepared.Name, err)
		}
	} else {
		t = NewTable(database, prepared, e.store)
		if err := t.Load(ctx, e.logger); err != nil {
			e.mu.Unlock()
			return err
		}
		e.tables[shardKey(database, prepared.Name)] = t
	}
	e.mu.Unlock()

	if err := e.catalog.RegisterTables(database, prepared); err != nil {
		return err
	}
	if e.store != nil {
		if err := e.store.PutSchema(ctx, database, prepared); err != nil {
			return fmt.Errorf("persist schema %s.%s: %w", database, prepared.Name, err)
		}
	}

	tx.Record(transaction.Change{
		Type:     transaction.ChangeTypeRegisterTable,
		Database: database,
		Table:    prepared.Name,
	})
	e.notify(Event{
		Type:     EventTableRegister,
		TxID:     tx.ID,
		Database: database,
		Table:    prepared.Name,
		Data: map[string]any{
			"columns":  len(prepared.Columns),
			"indexes":  len(prepared.Indexes),
			"replaced": exists,
			"changes":  tx.Changes,
		},
	})
	return nil
}

// Table returns the shard serving database.table
func (e *Engine) Table(database, table string) (*Table, error) {
	e.mu.RLock()
	t, ok := e.tables[shardKey(database, table)]
	e.mu.RUnlock()
	if ok {
		return t, nil
	}
	if !e.catalog.HasDatabase(database) {
		return nil, &errors.DatabaseNotFoundError{Name: database}
	}
	return nil, &errors.TableNotFoundError{Database: database, Table: table}
}

// Tables returns the names of the tables served under database, sorted
func (e *Engine) Tables(database string) ([]string, error) {
	if !e.catalog.HasDatabase(database) {
		return nil, &errors.DatabaseNotFoundError{Name: database}
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	var names []string
	for _, t := range e.tables {
		if t.Database == database {
			names = append(names, t.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Insert validates row against database.table and stores it, returning its _uid
func (e *Engine) Insert(ctx context.Context, database, table string, row data.Row) (string, error) {
	t, err := e.Table(database, table)
	if err != nil {
		return "", err
	}

	tx := transaction.NewTransaction()
	defer tx.Close()

	e.notify(Event{Type: EventInsertStart, TxID: tx.ID, Database: database, Table: table})
	uid, err := t.Insert(ctx, row)
	if err != nil {
		e.notify(Event{Type: EventInsertEnd, TxID: tx.ID, Database: database, Table: table, Data: err.Error()})
		return "", err
	}

	tx.Record(transaction.Change{
		Type:     transaction.ChangeTypeInsert,
		Database: database,
		Table:    table,
		RowID:    uid,
		Data:     row.Data,
	})
	e.notify(Event{Type: EventInsertEnd, TxID: tx.ID, Database: database, Table: table, Data: tx.Changes})
	return uid, nil
}

// Get returns the row of database.table with the given _uid
func (e *Engine) Get(database, table, uid string) (data.Row, error) {
	t, err := e.Table(database, table)
	if err != nil {
		return data.Row{}, err
	}
	return t.Get(uid)
}

// Search evaluates q against database.table
func (e *Engine) Search(database, table string, q search.Query) ([]data.Row, error) {
	t, err := e.Table(database, table)
	if err != nil {
		return nil, err
	}

	tx := transaction.NewTransaction()
	defer tx.Close()

	e.notify(Event{Type: EventSearchStart, TxID: tx.ID, Database: database, Table: table, Data: q.String()})
	rows, err := t.Search(q)
	if err != nil {
		e.notify(Event{Type: EventSearchEnd, TxID: tx.ID, Database: database, Table: table, Data: err.Error()})
		return nil, err
	}
	e.notify(Event{Type: EventSearchEnd, TxID: tx.ID, Database: database, Table: table, Data: len(rows)})
	return rows, nil
}

// AddObserver registers an observer to receive lifecycle events
func (e *Engine) AddObserver(observer Observer) {
	e.obsMu.Lock()
	defer e.obsMu.Unlock()
	e.observers = append(e.observers, observer)
}

// RemoveObserver unregisters an observer
func (e *Engine) RemoveObserver(observer Observer) {
	e.obsMu.Lock()
	defer e.obsMu.Unlock()
	for i, o := range e.observers {
		if o == observer {
			e.observers = append(e.observers[:i], e.observers[i+1:]...)
			return
		}
	}
}

// notify sends an event to all registered observers
func (e *Engine) notify(event Event) {
	event.Timestamp = time.Now()

	e.obsMu.RLock()
	defer e.obsMu.RUnlock()
	for _, observer := range e.observers {
		observer.OnEvent(event)
	}
}
