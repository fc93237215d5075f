package data

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/leengari/schemadb/internal/domain/schema"
)

// Row represents a single table row
// Key = column name, Value = cell value
type Row struct {
	Data map[string]any
}

// NewRow creates a new Row with the given data
func NewRow(data map[string]any) Row {
	if data == nil {
		data = make(map[string]any)
	}
	return Row{Data: data}
}

// NewUID generates a fresh implicit row identifier
func NewUID() string {
	return uuid.NewString()
}

// Copy creates a shallow copy of the row so callers' maps are never mutated
func (r Row) Copy() Row {
	copy := make(map[string]any, len(r.Data))
	for k, v := range r.Data {
		copy[k] = v
	}
	return Row{Data: copy}
}

// UID returns the row's implicit identifier, or "" when unset
func (r Row) UID() string {
	uid, _ := r.Data[schema.UIDColumn].(string)
	return uid
}

// Get returns the value stored under column
func (r Row) Get(column string) (any, bool) {
	v, ok := r.Data[column]
	return v, ok
}

// UnmarshalJSON implements json.Unmarshaler interface
// This allows Row to be unmarshaled from JSON as a map
func (r *Row) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	r.Data = m
	return nil
}

// MarshalJSON implements json.Marshaler interface
// This allows Row to be marshaled to JSON as a map
func (r Row) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Data)
}

// FromJSON creates a Row from raw JSON bytes
func FromJSON(data []byte) (Row, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return Row{}, err
	}
	return NewRow(m), nil
}
