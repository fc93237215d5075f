package engine

import (
	"context"
	"fmt"

	"github.com/leengari/schemadb/internal/domain/data"
	"github.com/leengari/schemadb/internal/domain/errors"
	"github.com/leengari/schemadb/internal/domain/schema"
	"github.com/leengari/schemadb/internal/query/search"
)

// Insert validates row and appends it to the table, returning its _uid.
// A _uid is generated when the row does not carry one. The row is persisted
// before it becomes visible, so a store failure leaves the table untouched.
func (t *Table) Insert(ctx context.Context, mutRow data.Row) (string, error) {
	row := mutRow.Copy() // prevent mutation of caller's data

	t.Lock()
	defer t.Unlock()

	// 1. Assign the implicit row identifier FIRST (before validation)
	uid := row.UID()
	if _, exists := row.Data[schema.UIDColumn]; !exists {
		uid = data.NewUID()
		row.Data[schema.UIDColumn] = uid
	} else if uid == "" {
		return "", errors.NewTypeMismatch(t.schema.Name, schema.UIDColumn, row.Data[schema.UIDColumn], "uuid string")
	}

	// 2. Validate the row (types, NOT NULL, defaults)
	if err := ValidateRow(t.schema, row); err != nil {
		return "", err
	}

	// 3. Check identity and primary key constraints
	if _, dup := t.byUID[uid]; dup {
		return "", errors.NewPrimaryKeyViolation(t.schema.Name, schema.UIDColumn, uid)
	}
	pk, ok := t.primaryKeyUnsafe(row)
	if !ok {
		return "", &errors.ConstraintError{
			Table:      t.schema.Name,
			Column:     t.schema.PrimaryKey,
			Constraint: "primary_key",
			Reason:     "primary key value required",
		}
	}
	if _, dup := t.byPK[pk]; dup {
		return "", errors.NewPrimaryKeyViolation(t.schema.Name, t.schema.PrimaryKey, row.Data[t.schema.PrimaryKey])
	}

	// 4. Persist
	if t.store != nil {
		if err := t.store.PutRow(ctx, t.Database, t.schema.Name, row); err != nil {
			return "", fmt.Errorf("persist row in %s.%s: %w", t.Database, t.schema.Name, err)
		}
	}

	// 5. Everything passed → safe to append and index
	t.appendUnsafe(row, pk)

	return uid, nil
}

// appendUnsafe adds row at the next position and updates every index
// IMPORTANT: Must be called while holding write lock!
func (t *Table) appendUnsafe(row data.Row, pk string) {
	pos := len(t.rows)
	t.rows = append(t.rows, row)
	t.byUID[row.UID()] = pos
	t.byPK[pk] = pos
	for _, idx := range t.indexes {
		idx.Add(row, pos)
	}
}

// primaryKeyUnsafe renders the row's primary key value for uniqueness checks
func (t *Table) primaryKeyUnsafe(row data.Row) (string, bool) {
	val, exists := row.Data[t.schema.PrimaryKey]
	if !exists || val == nil {
		return "", false
	}
	return search.FormatValue(val), true
}
