package metadata

import (
	"github.com/leengari/schemadb/internal/domain/schema"
)

// DatabaseMeta is the on-disk description of a database directory
type DatabaseMeta struct {
	Name    string   `json:"name" yaml:"name"`
	Version int      `json:"version" yaml:"version"`
	Tables  []string `json:"tables,omitempty" yaml:"tables,omitempty"`
}

// TableFile is the on-disk description of a table.
// Columns are a list here so files keep the author's ordering.
type TableFile struct {
	Name       string       `json:"name" yaml:"name"`
	PrimaryKey string       `json:"primary_key,omitempty" yaml:"primaryKey,omitempty"`
	Columns    []ColumnMeta `json:"columns" yaml:"columns"`
	Indexes    []IndexMeta  `json:"indexes,omitempty" yaml:"indexes,omitempty"`
}

type ColumnMeta struct {
	Name       string `json:"name" yaml:"name"`
	Type       string `json:"type" yaml:"type"`
	Default    any    `json:"default,omitempty" yaml:"default,omitempty"`
	Required   bool   `json:"required,omitempty" yaml:"required,omitempty"`
	Comment    string `json:"comment,omitempty" yaml:"comment,omitempty"`
	PrimaryKey bool   `json:"primary_key,omitempty" yaml:"primaryKey,omitempty"`
}

type IndexMeta struct {
	Name    string   `json:"name" yaml:"name"`
	Members []string `json:"members" yaml:"members"`
	Type    string   `json:"type,omitempty" yaml:"type,omitempty"`
}

// ToSchema builds the in-memory descriptor.
// Columns are registered in file order, so a repeated name keeps its last definition.
// A column flagged primary_key becomes the primary key unless the file names one.
func (f TableFile) ToSchema() *schema.TableSchema {
	ts := schema.New(f.Name)

	for _, c := range f.Columns {
		ts.AddColumn(schema.Column{
			Name:       c.Name,
			Type:       schema.DataType(c.Type),
			Default:    c.Default,
			Required:   c.Required,
			Comment:    c.Comment,
			PrimaryKey: c.PrimaryKey,
		})
		if c.PrimaryKey && f.PrimaryKey == "" {
			ts.PrimaryKey = c.Name
		}
	}

	if f.PrimaryKey != "" {
		ts.PrimaryKey = f.PrimaryKey
	}

	for _, idx := range f.Indexes {
		typ := schema.IndexType(idx.Type)
		if typ == "" {
			typ = schema.IndexTypeHash
		}
		members := make([]string, len(idx.Members))
		copy(members, idx.Members)
		ts.AddIndex(schema.Index{Name: idx.Name, Members: members, Type: typ})
	}

	return ts
}

// FromSchema converts a descriptor to its file form, columns sorted by name
func FromSchema(ts *schema.TableSchema) TableFile {
	f := TableFile{
		Name:       ts.Name,
		PrimaryKey: ts.PrimaryKey,
		Columns:    make([]ColumnMeta, 0, len(ts.Columns)),
		Indexes:    make([]IndexMeta, 0, len(ts.Indexes)),
	}

	for _, name := range ts.ColumnNames() {
		c := ts.Columns[name]
		f.Columns = append(f.Columns, ColumnMeta{
			Name:       c.Name,
			Type:       string(c.Type),
			Default:    c.Default,
			Required:   c.Required,
			Comment:    c.Comment,
			PrimaryKey: c.PrimaryKey,
		})
	}

	for _, idx := range ts.Indexes {
		f.Indexes = append(f.Indexes, IndexMeta{
			Name:    idx.Name,
			Members: append([]string(nil), idx.Members...),
			Type:    string(idx.Type),
		})
	}

	return f
}
