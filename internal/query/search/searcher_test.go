package search

import (
	stderrors "errors"
	"testing"

	"github.com/leengari/schemadb/internal/domain/data"
	"github.com/leengari/schemadb/internal/domain/errors"
	"github.com/leengari/schemadb/internal/domain/schema"
	"gotest.tools/v3/assert"
)

// memSource is an in-memory Source that records index lookups
type memSource struct {
	schema  *schema.TableSchema
	rows    []data.Row
	indexes map[string]*HashIndex
	lookups []string
}

func newMemSource(ts *schema.TableSchema, rows ...map[string]any) *memSource {
	src := &memSource{schema: ts, indexes: make(map[string]*HashIndex)}
	for _, def := range ts.Indexes {
		src.indexes[def.Name] = NewHashIndex(def)
	}
	for i, r := range rows {
		row := data.NewRow(r)
		src.rows = append(src.rows, row)
		for _, idx := range src.indexes {
			idx.Add(row, i)
		}
	}
	return src
}

func (m *memSource) Schema() *schema.TableSchema { return m.schema }
func (m *memSource) RowAt(pos int) data.Row      { return m.rows[pos] }
func (m *memSource) Len() int                    { return len(m.rows) }

func (m *memSource) Index(name string) (*HashIndex, bool) {
	idx, ok := m.indexes[name]
	if ok {
		m.lookups = append(m.lookups, name)
	}
	return idx, ok
}

func usersSource() *memSource {
	ts := schema.New("users").
		AddColumn(schema.NewColumn("user_id", schema.DataTypeString)).
		AddColumn(schema.NewColumn("user_email", schema.DataTypeString)).
		AddColumn(schema.NewColumn("user_country", schema.DataTypeString)).
		AddColumn(schema.NewColumn("user_age", schema.DataTypeString)).
		AddColumn(schema.NewColumn("user_name", schema.DataTypeString)).
		AddIndex(schema.NewHashIndex("user_id_indx", "user_id")).
		AddIndex(schema.NewHashIndex("user_email_indx", "user_email")).
		AddIndex(schema.NewHashIndex("user_country_indx", "user_country")).
		AddIndex(schema.NewHashIndex("user_name_indx", "user_name")).
		AddIndex(schema.NewHashIndex("age_country_indx", "user_age", "user_country"))

	return newMemSource(ts,
		map[string]any{"user_id": "1", "user_email": "email@outlook.com", "user_country": "US", "user_age": "20", "user_name": "andreespirela"},
		map[string]any{"user_id": "2", "user_email": "email2@outlook.com", "user_country": "US", "user_age": "21", "user_name": "Veronica"},
		map[string]any{"user_id": "3", "user_email": "email3@outlook.com", "user_country": "US", "user_age": "21", "user_name": "superman"},
		map[string]any{"user_id": "4", "user_email": "email3@outlook.com", "user_country": "US", "user_age": "19", "user_name": "Luis"},
		map[string]any{"user_id": "5", "user_email": "email10@outlook.com", "user_country": "US", "user_age": "22", "user_name": "Flash"},
		map[string]any{"user_id": "6", "user_email": "email10@outlook.com", "user_country": "AR", "user_age": "22", "user_name": "Door"},
	)
}

func names(rows []data.Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i], _ = r.Data["user_name"].(string)
	}
	return out
}

func TestSearchOrOfCompositeAndSingle(t *testing.T) {
	src := usersSource()
	q := Or{
		And{Eq("user_age", "22"), Eq("user_country", "AR")},
		Eq("user_name", "Luis"),
	}

	rows, err := Search(src, q)
	assert.NilError(t, err)
	assert.DeepEqual(t, names(rows), []string{"Luis", "Door"})
	assert.DeepEqual(t, src.lookups, []string{"age_country_indx", "user_name_indx"})
}

func TestSearchSingleIndexReturnsAllMatches(t *testing.T) {
	src := usersSource()

	rows, err := Search(src, Eq("user_email", "email3@outlook.com"))
	assert.NilError(t, err)
	assert.DeepEqual(t, names(rows), []string{"superman", "Luis"})
}

func TestSearchAndWithoutCoveringIndexIntersects(t *testing.T) {
	src := usersSource()
	q := And{Eq("user_country", "US"), Eq("user_email", "email10@outlook.com")}

	rows, err := Search(src, q)
	assert.NilError(t, err)
	assert.DeepEqual(t, names(rows), []string{"Flash"})
}

func TestSearchFallsBackToScan(t *testing.T) {
	src := usersSource()

	rows, err := Search(src, Eq("user_age", "21"))
	assert.NilError(t, err)
	assert.DeepEqual(t, names(rows), []string{"Veronica", "superman"})
	assert.Equal(t, len(src.lookups), 0)
}

func TestSearchDuplicateKeyInConjunction(t *testing.T) {
	src := usersSource()
	q := And{Eq("user_name", "Luis"), Eq("user_name", "Door")}

	rows, err := Search(src, q)
	assert.NilError(t, err)
	assert.Equal(t, len(rows), 0)
}

func TestSearchUnsupportedOperatorMatchesNothing(t *testing.T) {
	src := usersSource()

	rows, err := Search(src, Condition{Key: "user_age", Op: ">", Value: "1"})
	assert.NilError(t, err)
	assert.Equal(t, len(rows), 0)
}

func TestSearchUnknownColumn(t *testing.T) {
	src := usersSource()

	_, err := Search(src, Or{Eq("user_name", "Luis"), Eq("nickname", "x")})
	var notFound *errors.ColumnNotFoundError
	assert.Assert(t, stderrors.As(err, &notFound))
	assert.Equal(t, notFound.ColumnName, "nickname")
}

func TestSearchEmptyAndMatchesNothing(t *testing.T) {
	src := usersSource()

	rows, err := Search(src, And{})
	assert.NilError(t, err)
	assert.Equal(t, len(rows), 0)
}

func TestHashIndexNormalizesNumbers(t *testing.T) {
	idx := NewHashIndex(schema.NewHashIndex("by_age", "age"))
	idx.Add(data.NewRow(map[string]any{"age": float64(30)}), 0)
	idx.Add(data.NewRow(map[string]any{"name": "no age"}), 1)

	key, ok := idx.Key(map[string]any{"age": int64(30)})
	assert.Assert(t, ok)
	assert.DeepEqual(t, idx.Lookup(key), []int{0})
	assert.Equal(t, idx.Len(), 1)

	_, ok = idx.Key(map[string]any{})
	assert.Assert(t, !ok)
}

func TestParseEqualities(t *testing.T) {
	q, err := ParseEqualities([]string{"a=1"})
	assert.NilError(t, err)
	assert.Equal(t, q.String(), "a = 1")

	q, err = ParseEqualities([]string{"a=1", "b=x=y"})
	assert.NilError(t, err)
	assert.Equal(t, q.String(), "(a = 1 AND b = x=y)")

	_, err = ParseEqualities([]string{"novalue"})
	assert.ErrorContains(t, err, "expected key=value")

	_, err = ParseEqualities(nil)
	assert.ErrorContains(t, err, "at least one")
}
