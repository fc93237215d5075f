package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leengari/schemadb/internal/domain/data"
	"github.com/leengari/schemadb/internal/domain/errors"
	"github.com/leengari/schemadb/internal/domain/schema"
)

// Load replaces the table's rows with those persisted in the store and
// rebuilds every index. Rows are re-validated against the current schema.
func (t *Table) Load(ctx context.Context, logger *slog.Logger) error {
	if t.store == nil {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}

	t.Lock()
	defer t.Unlock()

	var rows []data.Row
	err := t.store.ScanRows(ctx, t.Database, t.schema.Name, func(row data.Row) error {
		if err := ValidateRow(t.schema, row); err != nil {
			return fmt.Errorf("row %s: %w", row.UID(), err)
		}
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return fmt.Errorf("load rows for %s.%s: %w", t.Database, t.schema.Name, err)
	}

	previous := t.rows
	t.rows = rows
	if err := t.rebuildIndexesUnsafe(logger); err != nil {
		t.rows = previous
		_ = t.rebuildIndexesUnsafe(logger)
		return fmt.Errorf("load rows for %s.%s: %w", t.Database, t.schema.Name, err)
	}

	logger.Info("table loaded",
		slog.String("database", t.Database),
		slog.String("table", t.schema.Name),
		slog.Int("rows", len(rows)),
	)
	return nil
}

// Reschema swaps in a new schema, re-validates every existing row against it
// and rebuilds every index. Rows keep the values validation normalizes or
// fills from defaults. On any failure the previous schema and rows stay.
func (t *Table) Reschema(ts *schema.TableSchema, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	t.Lock()
	defer t.Unlock()

	next := ts.Clone().Init()
	rows := make([]data.Row, len(t.rows))
	for i, row := range t.rows {
		candidate := row.Copy()
		if err := ValidateRow(next, candidate); err != nil {
			return fmt.Errorf("row %s: %w", row.UID(), err)
		}
		rows[i] = candidate
	}

	previousSchema, previousRows := t.schema, t.rows
	t.schema, t.rows = next, rows
	if err := t.rebuildIndexesUnsafe(logger); err != nil {
		t.schema, t.rows = previousSchema, previousRows
		_ = t.rebuildIndexesUnsafe(logger)
		return err
	}
	return nil
}

// rebuildIndexesUnsafe rebuilds the row lookups and all hash indexes over t.rows
// Returns error on duplicate identity or primary key, leaving the table empty of lookups
// IMPORTANT: Must be called while holding write lock!
func (t *Table) rebuildIndexesUnsafe(logger *slog.Logger) error {
	t.resetIndexesUnsafe()

	for rowPos, row := range t.rows {
		uid := row.UID()
		if _, dup := t.byUID[uid]; dup || uid == "" {
			return errors.NewPrimaryKeyViolation(t.schema.Name, schema.UIDColumn, uid)
		}
		pk, ok := t.primaryKeyUnsafe(row)
		if !ok {
			return errors.NewNotNullViolation(t.schema.Name, t.schema.PrimaryKey)
		}
		if _, dup := t.byPK[pk]; dup {
			return errors.NewPrimaryKeyViolation(t.schema.Name, t.schema.PrimaryKey, row.Data[t.schema.PrimaryKey])
		}

		t.byUID[uid] = rowPos
		t.byPK[pk] = rowPos
		for _, idx := range t.indexes {
			idx.Add(row, rowPos)
		}
	}

	for name, idx := range t.indexes {
		logger.Debug("index built",
			slog.String("table", t.schema.Name),
			slog.String("index", name),
			slog.Int("unique_values", idx.Len()),
		)
	}
	return nil
}
