package search

import (
	"log/slog"
	"sort"

	"github.com/leengari/schemadb/internal/domain/data"
	"github.com/leengari/schemadb/internal/domain/errors"
	"github.com/leengari/schemadb/internal/domain/schema"
)

// Source is a read view over one table.
// Callers hold whatever lock protects the table for the duration of a search.
type Source interface {
	Schema() *schema.TableSchema
	Index(name string) (*HashIndex, bool)
	RowAt(pos int) data.Row
	Len() int
}

// Search returns the rows matching q, in row position order.
//
// A pure conjunction whose condition keys are exactly the members of one
// index resolves through that index. Otherwise the tree is evaluated
// recursively: And intersects, Or unions, and each condition uses a
// single-member index when one exists and scans the table when not.
func Search(src Source, q Query) ([]data.Row, error) {
	ts := src.Schema()
	for _, key := range keys(q) {
		if key != schema.UIDColumn && !ts.HasColumn(key) {
			return nil, &errors.ColumnNotFoundError{TableName: ts.Name, ColumnName: key}
		}
	}

	positions := execute(src, q)

	out := make([]int, 0, len(positions))
	for pos := range positions {
		out = append(out, pos)
	}
	sort.Ints(out)

	rows := make([]data.Row, len(out))
	for i, pos := range out {
		rows[i] = src.RowAt(pos)
	}

	slog.Debug("search executed",
		slog.String("table", ts.Name),
		slog.String("query", q.String()),
		slog.Int("matches", len(rows)),
	)
	return rows, nil
}

type positionSet map[int]struct{}

func setOf(positions []int) positionSet {
	s := make(positionSet, len(positions))
	for _, p := range positions {
		s[p] = struct{}{}
	}
	return s
}

func intersect(a, b positionSet) positionSet {
	if len(b) < len(a) {
		a, b = b, a
	}
	out := make(positionSet, len(a))
	for p := range a {
		if _, ok := b[p]; ok {
			out[p] = struct{}{}
		}
	}
	return out
}

func union(a, b positionSet) positionSet {
	out := make(positionSet, len(a)+len(b))
	for p := range a {
		out[p] = struct{}{}
	}
	for p := range b {
		out[p] = struct{}{}
	}
	return out
}

func execute(src Source, q Query) positionSet {
	if idx, key, ok := indexForQuery(src, q); ok {
		return setOf(idx.Lookup(key))
	}

	switch v := q.(type) {
	case Condition:
		return evaluateCondition(src, v)
	case And:
		var result positionSet
		for i, child := range v {
			res := execute(src, child)
			if i == 0 {
				result = res
			} else {
				result = intersect(result, res)
			}
			if len(result) == 0 {
				break
			}
		}
		if result == nil {
			return positionSet{}
		}
		return result
	case Or:
		result := positionSet{}
		for _, child := range v {
			result = union(result, execute(src, child))
		}
		return result
	}
	return positionSet{}
}

// indexForQuery finds an index whose members are exactly the condition keys of a
// pure equality conjunction, and the composite key to look it up with
func indexForQuery(src Source, q Query) (*HashIndex, string, bool) {
	conds, ok := conditions(q)
	if !ok || len(conds) == 0 {
		return nil, "", false
	}

	values := make(map[string]any, len(conds))
	condKeys := make([]string, 0, len(conds))
	for _, c := range conds {
		if c.Op != OpEqual {
			return nil, "", false
		}
		if _, dup := values[c.Key]; dup {
			// two constraints on one column cannot be expressed as one key
			return nil, "", false
		}
		values[c.Key] = c.Value
		condKeys = append(condKeys, c.Key)
	}

	for _, def := range src.Schema().Indexes {
		if len(def.Members) != len(condKeys) || !def.Covers(condKeys) {
			continue
		}
		idx, ok := src.Index(def.Name)
		if !ok {
			continue
		}
		if key, ok := idx.Key(values); ok {
			return idx, key, true
		}
	}
	return nil, "", false
}

func evaluateCondition(src Source, c Condition) positionSet {
	if c.Op != OpEqual {
		return positionSet{}
	}

	want := FormatValue(c.Value)
	out := positionSet{}
	for pos := 0; pos < src.Len(); pos++ {
		v, ok := src.RowAt(pos).Data[c.Key]
		if ok && FormatValue(v) == want {
			out[pos] = struct{}{}
		}
	}
	return out
}
