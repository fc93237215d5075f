package engine

import (
	"github.com/leengari/schemadb/internal/domain/data"
	"github.com/leengari/schemadb/internal/domain/errors"
	"github.com/leengari/schemadb/internal/query/search"
)

// Scan returns a copy of every row in insertion order
func (t *Table) Scan() []data.Row {
	t.RLock()
	defer t.RUnlock()

	rows := make([]data.Row, len(t.rows))
	for i, r := range t.rows {
		rows[i] = r.Copy()
	}
	return rows
}

// Get returns the row with the given _uid
func (t *Table) Get(uid string) (data.Row, error) {
	t.RLock()
	defer t.RUnlock()

	pos, ok := t.byUID[uid]
	if !ok {
		return data.Row{}, errors.ErrRowNotFound
	}
	return t.rows[pos].Copy(), nil
}

// Search evaluates q against the table, using its hash indexes where possible
func (t *Table) Search(q search.Query) ([]data.Row, error) {
	t.RLock()
	defer t.RUnlock()

	rows, err := search.Search(view{t: t}, q)
	if err != nil {
		return nil, err
	}
	for i, r := range rows {
		rows[i] = r.Copy()
	}
	return rows, nil
}
