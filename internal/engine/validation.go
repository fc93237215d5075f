package engine

import (
	"fmt"

	"github.com/leengari/schemadb/internal/domain/data"
	"github.com/leengari/schemadb/internal/domain/errors"
	"github.com/leengari/schemadb/internal/domain/schema"
	"github.com/leengari/schemadb/internal/validation"
)

// ValidateRow checks row against ts, in place:
// - rejects columns the schema does not define (the implicit _uid is always allowed)
// - fills missing values from column defaults
// - enforces required columns (NOT NULL)
// - validates and normalizes types (JSON numbers become int64 for integer columns)
func ValidateRow(ts *schema.TableSchema, row data.Row) error {
	for name := range row.Data {
		if name == schema.UIDColumn {
			continue
		}
		if !ts.HasColumn(name) {
			return &errors.ColumnNotFoundError{TableName: ts.Name, ColumnName: name}
		}
	}

	for _, name := range ts.ColumnNames() {
		col := ts.Columns[name]
		val, exists := row.Data[name]

		if !exists && col.Default != nil {
			val, exists = col.Default, true
			row.Data[name] = val
		}

		if !exists || val == nil {
			if col.Required {
				return errors.NewNotNullViolation(ts.Name, name)
			}
			continue // nullable
		}

		normalized, err := checkType(ts.Name, col, val)
		if err != nil {
			return err
		}
		row.Data[name] = normalized
	}
	return nil
}

func checkType(table string, col schema.Column, val any) (any, error) {
	switch col.Type {
	case "":
		return val, nil

	case schema.DataTypeString:
		if _, ok := val.(string); !ok {
			return nil, errors.NewTypeMismatch(table, col.Name, val, "string")
		}

	case schema.DataTypeBoolean:
		if _, ok := val.(bool); !ok {
			return nil, errors.NewTypeMismatch(table, col.Name, val, "boolean")
		}

	case schema.DataTypeInteger:
		n, ok := normalizeToInt64(val)
		if !ok {
			return nil, errors.NewTypeMismatch(table, col.Name, val, "integer")
		}
		return n, nil

	case schema.DataTypeFloat:
		switch v := val.(type) {
		case float64:
			return v, nil
		case float32:
			return float64(v), nil
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		}
		return nil, errors.NewTypeMismatch(table, col.Name, val, "float")

	case schema.DataTypeUUID:
		str, ok := val.(string)
		if !ok {
			return nil, errors.NewTypeMismatch(table, col.Name, val, "uuid string")
		}
		if err := validation.ValidateUUID(str); err != nil {
			return nil, errors.NewTypeMismatch(table, col.Name, val, "uuid string")
		}

	case schema.DataTypeEmail:
		str, ok := val.(string)
		if !ok {
			return nil, errors.NewTypeMismatch(table, col.Name, val, "string")
		}
		if err := validation.ValidateEmail(str); err != nil {
			return nil, &errors.ConstraintError{
				Table:      table,
				Column:     col.Name,
				Value:      val,
				Constraint: "invalid_email",
				Reason:     err.Error(),
			}
		}

	case schema.DataTypeDate:
		str, ok := val.(string)
		if !ok {
			return nil, errors.NewTypeMismatch(table, col.Name, val, "date string")
		}
		if err := validation.ValidateDate(str); err != nil {
			return nil, errors.NewTypeMismatch(table, col.Name, val, "date string")
		}

	default:
		return nil, fmt.Errorf("unknown column type %q", col.Type)
	}
	return val, nil
}

// normalizeToInt64 converts various numeric types to int64
// Returns the int64 value and true if successful, 0 and false otherwise
func normalizeToInt64(val any) (int64, bool) {
	switch v := val.(type) {
	case float64:
		if v == float64(int64(v)) {
			return int64(v), true
		}
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	}
	return 0, false
}
