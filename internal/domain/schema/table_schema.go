package schema

import (
	"sort"

	"github.com/leengari/schemadb/internal/domain/errors"
)

// UIDColumn is the implicit row identifier every table carries,
// even when it is not registered in Columns
const UIDColumn = "_uid"

// TableSchema describes a table's structure: name, columns, indexes and primary key.
// It is not safe for concurrent mutation; the owning catalog serializes access.
type TableSchema struct {
	Name       string            `json:"name" yaml:"name"`
	Columns    map[string]Column `json:"columns" yaml:"columns"`
	Indexes    []Index           `json:"indexes" yaml:"indexes"`
	PrimaryKey string            `json:"primary_key" yaml:"primaryKey"`
}

// New creates an empty schema whose primary key is the implicit _uid
func New(name string) *TableSchema {
	return &TableSchema{
		Name:       name,
		Columns:    make(map[string]Column),
		Indexes:    []Index{},
		PrimaryKey: UIDColumn,
	}
}

// AddColumn registers column under its own name and returns the receiver.
// A column already registered under that name is replaced: last write wins.
func (s *TableSchema) AddColumn(column Column) *TableSchema {
	if s.Columns == nil {
		s.Columns = make(map[string]Column)
	}
	s.Columns[column.Name] = column
	return s
}

// AddIndex appends an index descriptor and returns the receiver
func (s *TableSchema) AddIndex(index Index) *TableSchema {
	s.Indexes = append(s.Indexes, index)
	return s
}

// GetColumn looks up a column by name
func (s *TableSchema) GetColumn(name string) (Column, bool) {
	col, ok := s.Columns[name]
	return col, ok
}

// HasColumn reports whether a column is registered under name
func (s *TableSchema) HasColumn(name string) bool {
	_, ok := s.Columns[name]
	return ok
}

// ColumnNames returns the registered column names in sorted order
func (s *TableSchema) ColumnNames() []string {
	names := make([]string, 0, len(s.Columns))
	for name := range s.Columns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetIndex looks up an index descriptor by name
func (s *TableSchema) GetIndex(name string) (Index, bool) {
	for _, idx := range s.Indexes {
		if idx.Name == name {
			return idx, true
		}
	}
	return Index{}, false
}

// Init prepares a freshly loaded schema for use.
// When the primary key is the implicit _uid and no such column exists,
// a required uuid column is registered for it. The primary key column is flagged.
func (s *TableSchema) Init() *TableSchema {
	if s.PrimaryKey == "" {
		s.PrimaryKey = UIDColumn
	}
	if s.PrimaryKey == UIDColumn && !s.HasColumn(UIDColumn) {
		s.AddColumn(NewColumn(UIDColumn, DataTypeUUID).WithRequired(true))
	}
	if col, ok := s.Columns[s.PrimaryKey]; ok && !col.PrimaryKey {
		col.PrimaryKey = true
		s.Columns[s.PrimaryKey] = col
	}
	if s.Indexes == nil {
		s.Indexes = []Index{}
	}
	return s
}

// Clone returns a deep copy that shares no maps or slices with s
func (s *TableSchema) Clone() *TableSchema {
	out := &TableSchema{
		Name:       s.Name,
		Columns:    make(map[string]Column, len(s.Columns)),
		Indexes:    make([]Index, len(s.Indexes)),
		PrimaryKey: s.PrimaryKey,
	}
	for name, col := range s.Columns {
		out.Columns[name] = col
	}
	for i, idx := range s.Indexes {
		out.Indexes[i] = idx.clone()
	}
	return out
}

// Validate checks referential integrity of the schema.
// It is never called implicitly; callers opt in before admitting a table.
// Returns a *errors.SchemaError listing every problem found.
func (s *TableSchema) Validate() error {
	var issues []errors.SchemaIssue
	add := func(field, reason string) {
		issues = append(issues, errors.SchemaIssue{Field: field, Reason: reason})
	}

	if s.Name == "" {
		add("name", "table name is empty")
	}

	for _, key := range s.ColumnNames() {
		col := s.Columns[key]
		switch {
		case col.Name == "":
			add("columns."+key, "column name is empty")
		case col.Name != key:
			add("columns."+key, "column registered under "+key+" is named "+col.Name)
		}
		if col.Type != "" && !col.Type.Valid() {
			add("columns."+key, "unknown data type "+string(col.Type))
		}
	}

	if s.PrimaryKey == "" {
		add("primary_key", "primary key is empty")
	} else if s.PrimaryKey != UIDColumn && !s.HasColumn(s.PrimaryKey) {
		add("primary_key", "primary key references unknown column "+s.PrimaryKey)
	}

	seen := make(map[string]struct{}, len(s.Indexes))
	for _, idx := range s.Indexes {
		field := "indexes." + idx.Name
		if idx.Name == "" {
			add("indexes", "index name is empty")
		} else if _, dup := seen[idx.Name]; dup {
			add(field, "duplicate index name")
		}
		seen[idx.Name] = struct{}{}

		if len(idx.Members) == 0 {
			add(field, "index has no members")
		}
		for _, m := range idx.Members {
			if m != UIDColumn && !s.HasColumn(m) {
				add(field, "index member references unknown column "+m)
			}
		}
		if idx.Type != "" && idx.Type != IndexTypeHash {
			add(field, "unsupported index type "+string(idx.Type))
		}
	}

	if len(issues) > 0 {
		return &errors.SchemaError{Table: s.Name, Issues: issues}
	}
	return nil
}
