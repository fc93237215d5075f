package schema

import (
	stderrors "errors"
	"testing"

	"github.com/leengari/schemadb/internal/domain/errors"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func TestNewTableSchema(t *testing.T) {
	s := New("users")

	assert.Equal(t, s.Name, "users")
	assert.Equal(t, len(s.Columns), 0)
	assert.Equal(t, len(s.Indexes), 0)
	assert.Equal(t, s.PrimaryKey, UIDColumn)
	assert.Equal(t, s.PrimaryKey, "_uid")
}

func TestAddColumnRegistersByName(t *testing.T) {
	s := New("users")
	s.AddColumn(Column{Name: "id"})

	assert.DeepEqual(t, s.Columns, map[string]Column{"id": {Name: "id"}})
}

func TestAddColumnChains(t *testing.T) {
	s := New("users")
	s.AddColumn(Column{Name: "id"}).AddColumn(Column{Name: "email"})

	assert.Equal(t, len(s.Columns), 2)
	assert.Assert(t, s.HasColumn("id"))
	assert.Assert(t, s.HasColumn("email"))
	assert.DeepEqual(t, s.ColumnNames(), []string{"email", "id"})
}

func TestAddColumnLastWriteWins(t *testing.T) {
	s := New("users")
	s.AddColumn(NewColumn("id", DataTypeInteger))
	s.AddColumn(NewColumn("id", DataTypeString))

	col, ok := s.GetColumn("id")
	assert.Assert(t, ok)
	assert.Equal(t, col.Type, DataTypeString)
	assert.Equal(t, len(s.Columns), 1)
}

func TestAddColumnLastWriteWinsRepeated(t *testing.T) {
	s := New("users")
	types := []DataType{DataTypeInteger, DataTypeBoolean, DataTypeFloat, DataTypeEmail}
	for _, typ := range types {
		s.AddColumn(NewColumn("k", typ))
		s.AddColumn(NewColumn("other", DataTypeString))
	}

	col, _ := s.GetColumn("k")
	assert.Equal(t, col.Type, DataTypeEmail)
	assert.Equal(t, len(s.Columns), 2)
}

func TestAddColumnReturnsSameSchema(t *testing.T) {
	s := New("users")
	col := NewColumn("id", DataTypeString)

	assert.Assert(t, s.AddColumn(col) == s)
	assert.Assert(t, s.AddColumn(col).AddColumn(col) == s)
}

func TestAddColumnTouchesNothingElse(t *testing.T) {
	s := New("users")
	s.AddIndex(NewHashIndex("by_id", "id"))
	s.PrimaryKey = "id"

	s.AddColumn(NewColumn("id", DataTypeString))

	assert.Equal(t, s.Name, "users")
	assert.Equal(t, s.PrimaryKey, "id")
	assert.Equal(t, len(s.Indexes), 1)
}

func TestAddColumnOnZeroValue(t *testing.T) {
	var s TableSchema
	s.AddColumn(NewColumn("id", DataTypeString))

	assert.Assert(t, s.HasColumn("id"))
}

func TestAddIndexKeepsOrder(t *testing.T) {
	s := New("users").
		AddIndex(NewHashIndex("a", "x")).
		AddIndex(NewHashIndex("b", "y", "z"))

	assert.Equal(t, len(s.Indexes), 2)
	assert.Equal(t, s.Indexes[0].Name, "a")
	assert.Equal(t, s.Indexes[1].Name, "b")

	idx, ok := s.GetIndex("b")
	assert.Assert(t, ok)
	assert.DeepEqual(t, idx.Members, []string{"y", "z"})

	_, ok = s.GetIndex("missing")
	assert.Assert(t, !ok)
}

func TestInitRegistersImplicitUID(t *testing.T) {
	s := New("users").AddColumn(NewColumn("email", DataTypeEmail)).Init()

	col, ok := s.GetColumn(UIDColumn)
	assert.Assert(t, ok)
	assert.Equal(t, col.Type, DataTypeUUID)
	assert.Assert(t, col.Required)
	assert.Assert(t, col.PrimaryKey)
}

func TestInitKeepsExplicitPrimaryKey(t *testing.T) {
	s := New("users").AddColumn(NewColumn("id", DataTypeInteger))
	s.PrimaryKey = "id"
	s.Init()

	assert.Assert(t, !s.HasColumn(UIDColumn))
	col, _ := s.GetColumn("id")
	assert.Assert(t, col.PrimaryKey)
}

func TestInitDefaultsEmptyPrimaryKey(t *testing.T) {
	s := &TableSchema{Name: "users"}
	s.Init()

	assert.Equal(t, s.PrimaryKey, UIDColumn)
	assert.Assert(t, s.HasColumn(UIDColumn))
	assert.Assert(t, s.Indexes != nil)
}

func TestCloneIsIndependent(t *testing.T) {
	s := New("users").
		AddColumn(NewColumn("id", DataTypeString)).
		AddIndex(NewHashIndex("by_id", "id"))

	c := s.Clone()
	c.AddColumn(NewColumn("extra", DataTypeString))
	c.Indexes[0].Members[0] = "changed"
	c.AddIndex(NewHashIndex("other", "id"))

	assert.Assert(t, !s.HasColumn("extra"))
	assert.Equal(t, s.Indexes[0].Members[0], "id")
	assert.Equal(t, len(s.Indexes), 1)
	assert.Equal(t, c.Name, s.Name)
	assert.Equal(t, c.PrimaryKey, s.PrimaryKey)
}

func TestValidateAcceptsWellFormedSchema(t *testing.T) {
	s := New("users").
		AddColumn(NewColumn("id", DataTypeString)).
		AddColumn(NewColumn("email", DataTypeEmail)).
		AddIndex(NewHashIndex("by_email", "email")).
		AddIndex(NewHashIndex("by_uid", UIDColumn))

	assert.NilError(t, s.Validate())

	s.PrimaryKey = "id"
	assert.NilError(t, s.Validate())
}

func TestValidateReportsIssues(t *testing.T) {
	tests := []struct {
		name   string
		build  func() *TableSchema
		field  string
		reason string
	}{
		{
			name:   "empty table name",
			build:  func() *TableSchema { return New("") },
			field:  "name",
			reason: "table name is empty",
		},
		{
			name: "unknown primary key",
			build: func() *TableSchema {
				s := New("users")
				s.PrimaryKey = "id"
				return s
			},
			field:  "primary_key",
			reason: "unknown column id",
		},
		{
			name: "column keyed under another name",
			build: func() *TableSchema {
				s := New("users")
				s.Columns["id"] = Column{Name: "ident"}
				return s
			},
			field:  "columns.id",
			reason: "named ident",
		},
		{
			name: "empty column name",
			build: func() *TableSchema {
				return New("users").AddColumn(Column{})
			},
			field:  "columns.",
			reason: "column name is empty",
		},
		{
			name: "index without members",
			build: func() *TableSchema {
				return New("users").AddIndex(Index{Name: "empty"})
			},
			field:  "indexes.empty",
			reason: "no members",
		},
		{
			name: "index on unknown column",
			build: func() *TableSchema {
				return New("users").AddIndex(NewHashIndex("by_email", "email"))
			},
			field:  "indexes.by_email",
			reason: "unknown column email",
		},
		{
			name: "duplicate index name",
			build: func() *TableSchema {
				return New("users").
					AddIndex(NewHashIndex("dup", UIDColumn)).
					AddIndex(NewHashIndex("dup", UIDColumn))
			},
			field:  "indexes.dup",
			reason: "duplicate index name",
		},
		{
			name: "unknown data type",
			build: func() *TableSchema {
				return New("users").AddColumn(NewColumn("id", DataType("blob")))
			},
			field:  "columns.id",
			reason: "unknown data type blob",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build().Validate()
			assert.Assert(t, err != nil)

			var schemaErr *errors.SchemaError
			assert.Assert(t, stderrors.As(err, &schemaErr))

			found := false
			for _, issue := range schemaErr.Issues {
				if issue.Field == tt.field {
					assert.Assert(t, is.Contains(issue.Reason, tt.reason))
					found = true
				}
			}
			assert.Assert(t, found, "no issue for field %s in %v", tt.field, schemaErr.Issues)
		})
	}
}

func TestAddColumnNeverValidates(t *testing.T) {
	s := New("users")
	s.PrimaryKey = "missing"

	// registration succeeds even though the schema is not valid
	s.AddColumn(NewColumn("id", DataTypeString))
	assert.Assert(t, s.HasColumn("id"))
	assert.ErrorContains(t, s.Validate(), "unknown column missing")
}

func TestIndexCovers(t *testing.T) {
	idx := NewHashIndex("age_country", "age", "country")

	assert.Assert(t, idx.Covers([]string{"age"}))
	assert.Assert(t, idx.Covers([]string{"country", "age"}))
	assert.Assert(t, !idx.Covers([]string{"age", "name"}))
	assert.Assert(t, !idx.Covers(nil))
}
