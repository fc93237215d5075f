package schema

// DataType is the value type a column accepts
type DataType string

const (
	DataTypeString  DataType = "string"
	DataTypeBoolean DataType = "boolean"
	DataTypeInteger DataType = "integer"
	DataTypeFloat   DataType = "float"
	DataTypeUUID    DataType = "uuid"
	DataTypeEmail   DataType = "email"
	DataTypeDate    DataType = "date"
)

// Valid reports whether t is one of the known data types
func (t DataType) Valid() bool {
	switch t {
	case DataTypeString, DataTypeBoolean, DataTypeInteger, DataTypeFloat,
		DataTypeUUID, DataTypeEmail, DataTypeDate:
		return true
	}
	return false
}

// Column is a named field definition within a table
type Column struct {
	Name       string   `json:"name" yaml:"name"`
	Type       DataType `json:"type" yaml:"type"`
	Default    any      `json:"default,omitempty" yaml:"default,omitempty"`
	Required   bool     `json:"required,omitempty" yaml:"required,omitempty"`
	Comment    string   `json:"comment,omitempty" yaml:"comment,omitempty"`
	PrimaryKey bool     `json:"primary_key,omitempty" yaml:"primaryKey,omitempty"`
}

// NewColumn creates an optional column with no default
func NewColumn(name string, dataType DataType) Column {
	return Column{Name: name, Type: dataType}
}

// WithRequired returns a copy of the column with the NOT NULL flag set
func (c Column) WithRequired(required bool) Column {
	c.Required = required
	return c
}

// WithDefault returns a copy of the column that fills missing values with v
func (c Column) WithDefault(v any) Column {
	c.Default = v
	return c
}

// WithComment returns a copy of the column carrying a free-form description
func (c Column) WithComment(comment string) Column {
	c.Comment = comment
	return c
}
