// Package badgerstore persists table schemas and rows in BadgerDB.
//
// Key layout, components separated by 0x00:
//
//	schema <db> <table>        -> JSON encoded schema.TableSchema
//	row    <db> <table> <uid>  -> JSON encoded row
package badgerstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/leengari/schemadb/internal/domain/data"
	"github.com/leengari/schemadb/internal/domain/schema"
)

const keySeparator byte = 0x00

const (
	schemaPrefix = "schema"
	rowPrefix    = "row"
)

// Store is a row and schema store backed by BadgerDB
type Store struct {
	db *badger.DB
}

// Options configures the BadgerDB store
type Options struct {
	// Path to the database directory. If empty, uses in-memory mode.
	Path string
	// InMemory forces in-memory mode even if Path is set.
	InMemory bool
	// Logger receives badger's internal logs. If nil, badger logging is disabled.
	Logger *slog.Logger
}

// Open opens (or creates) a store
func Open(opts Options) (*Store, error) {
	badgerOpts := badger.DefaultOptions(opts.Path)

	if opts.Path == "" || opts.InMemory {
		badgerOpts = badgerOpts.WithInMemory(true).WithDir("").WithValueDir("")
	}

	if opts.Logger != nil {
		badgerOpts = badgerOpts.WithLogger(&slogAdapter{logger: opts.Logger})
	} else {
		badgerOpts = badgerOpts.WithLogger(nil)
	}

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the BadgerDB database
func (s *Store) Close() error {
	return s.db.Close()
}

func encodeKey(parts ...string) []byte {
	var buf bytes.Buffer
	for i, p := range parts {
		if i > 0 {
			buf.WriteByte(keySeparator)
		}
		buf.WriteString(p)
	}
	return buf.Bytes()
}

func prefixKey(parts ...string) []byte {
	return append(encodeKey(parts...), keySeparator)
}

// PutSchema stores the schema of a table, replacing any previous version
func (s *Store) PutSchema(ctx context.Context, database string, ts *schema.TableSchema) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	val, err := json.Marshal(ts)
	if err != nil {
		return fmt.Errorf("marshal schema %s.%s: %w", database, ts.Name, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(encodeKey(schemaPrefix, database, ts.Name), val)
	})
}

// Schemas returns every stored schema grouped by database name
func (s *Store) Schemas(ctx context.Context) (map[string][]*schema.TableSchema, error) {
	out := make(map[string][]*schema.TableSchema)
	prefix := prefixKey(schemaPrefix)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			key := it.Item().KeyCopy(nil)
			parts := bytes.Split(key[len(prefix):], []byte{keySeparator})
			if len(parts) != 2 {
				return fmt.Errorf("malformed schema key %q", key)
			}

			var ts schema.TableSchema
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &ts)
			}); err != nil {
				return fmt.Errorf("decode schema %q: %w", key, err)
			}
			database := string(parts[0])
			out[database] = append(out[database], &ts)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PutRow stores a row under its _uid
func (s *Store) PutRow(ctx context.Context, database, table string, row data.Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	uid := row.UID()
	if uid == "" {
		return fmt.Errorf("row for %s.%s has no %s", database, table, schema.UIDColumn)
	}
	val, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("marshal row %s: %w", uid, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(encodeKey(rowPrefix, database, table, uid), val)
	})
}

// ScanRows calls fn for every row of a table in key order.
// Iteration stops at the first error returned by fn.
func (s *Store) ScanRows(ctx context.Context, database, table string, fn func(data.Row) error) error {
	prefix := prefixKey(rowPrefix, database, table)

	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var row data.Row
			if err := it.Item().Value(func(val []byte) error {
				var decErr error
				row, decErr = data.FromJSON(val)
				return decErr
			}); err != nil {
				return fmt.Errorf("decode row %q: %w", it.Item().Key(), err)
			}
			if err := fn(row); err != nil {
				return err
			}
		}
		return nil
	})
}
