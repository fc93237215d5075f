package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrRowNotFound is returned when a lookup by row identifier finds nothing
var ErrRowNotFound = stderrors.New("row not found")

// Represents a violation of a table constraint
// (required column, type mismatch, duplicate primary key)
type ConstraintError struct {
	Table      string // table name
	Column     string // column name (empty if table-level constraint)
	Value      any    // offending value (may be nil)
	Constraint string // "not_null", "type_mismatch", "primary_key", "unique"
	Reason     string // human-readable explanation (optional)
}

func (e *ConstraintError) Error() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("constraint violation in %s.%s", e.Table, e.Column))

	if e.Constraint != "" {
		parts = append(parts, fmt.Sprintf("(%s)", e.Constraint))
	}

	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}

	if e.Reason != "" {
		parts = append(parts, e.Reason)
	}

	return strings.Join(parts, " - ")
}

func NewNotNullViolation(table, column string) *ConstraintError {
	return &ConstraintError{
		Table:      table,
		Column:     column,
		Constraint: "not_null",
		Reason:     "missing required value",
	}
}

func NewTypeMismatch(table, column string, value any, expectedType string) *ConstraintError {
	return &ConstraintError{
		Table:      table,
		Column:     column,
		Value:      value,
		Constraint: "type_mismatch",
		Reason:     fmt.Sprintf("expected %s, got %T", expectedType, value),
	}
}

func NewPrimaryKeyViolation(table, column string, value any) *ConstraintError {
	return &ConstraintError{
		Table:      table,
		Column:     column,
		Value:      value,
		Constraint: "primary_key",
		Reason:     "duplicate primary key",
	}
}

// IsConstraint reports whether err is a ConstraintError of the given kind
func IsConstraint(err error, constraint string) bool {
	var ce *ConstraintError
	if !stderrors.As(err, &ce) {
		return false
	}
	return ce.Constraint == constraint
}

// DatabaseNotFoundError is returned when a database is not registered
type DatabaseNotFoundError struct {
	Name string
}

func (e *DatabaseNotFoundError) Error() string {
	return fmt.Sprintf("database %q not found", e.Name)
}

// TableNotFoundError is returned when a table is not registered in a database
type TableNotFoundError struct {
	Database string
	Table    string
}

func (e *TableNotFoundError) Error() string {
	return fmt.Sprintf("table %q not found in database %q", e.Table, e.Database)
}

// ColumnNotFoundError is returned when a row or query names an unknown column
type ColumnNotFoundError struct {
	TableName  string
	ColumnName string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column %q not found in table %q", e.ColumnName, e.TableName)
}

// SchemaIssue is a single integrity problem found in a table schema
type SchemaIssue struct {
	Field  string
	Reason string
}

// SchemaError collects the integrity problems found while validating a schema
type SchemaError struct {
	Table  string
	Issues []SchemaIssue
}

func (e *SchemaError) Error() string {
	msgs := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		msgs[i] = fmt.Sprintf("%s: %s", issue.Field, issue.Reason)
	}
	return fmt.Sprintf("invalid schema for table %q: %s", e.Table, strings.Join(msgs, "; "))
}
