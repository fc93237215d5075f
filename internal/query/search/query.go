package search

import (
	"fmt"
	"strings"
)

// OpEqual is the only comparison operator the search layer evaluates.
// Conditions with any other operator match no rows.
const OpEqual = "="

// Query is a boolean filter tree over row values
type Query interface {
	fmt.Stringer
	isQuery()
}

// Condition compares a single column with a value
type Condition struct {
	Key   string
	Op    string
	Value any
}

// And matches rows that satisfy every child query
type And []Query

// Or matches rows that satisfy at least one child query
type Or []Query

func (Condition) isQuery() {}
func (And) isQuery()       {}
func (Or) isQuery()        {}

// Eq builds an equality condition
func Eq(key string, value any) Condition {
	return Condition{Key: key, Op: OpEqual, Value: value}
}

func (c Condition) String() string {
	return fmt.Sprintf("%s %s %v", c.Key, c.Op, c.Value)
}

func (a And) String() string { return join("AND", a) }

func (o Or) String() string { return join("OR", o) }

func join(op string, qs []Query) string {
	parts := make([]string, len(qs))
	for i, q := range qs {
		parts[i] = q.String()
	}
	return "(" + strings.Join(parts, " "+op+" ") + ")"
}

// ParseEqualities turns key=value arguments into a conjunction of equality conditions
func ParseEqualities(args []string) (Query, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("at least one key=value condition is required")
	}
	conds := make(And, 0, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid condition %q, expected key=value", arg)
		}
		conds = append(conds, Eq(key, value))
	}
	if len(conds) == 1 {
		return conds[0], nil
	}
	return conds, nil
}

// conditions flattens a pure conjunction into its conditions.
// Returns false when the tree contains an Or.
func conditions(q Query) ([]Condition, bool) {
	switch v := q.(type) {
	case Condition:
		return []Condition{v}, true
	case And:
		var out []Condition
		for _, child := range v {
			conds, ok := conditions(child)
			if !ok {
				return nil, false
			}
			out = append(out, conds...)
		}
		return out, true
	default:
		return nil, false
	}
}

// keys returns every column name a query references
func keys(q Query) []string {
	switch v := q.(type) {
	case Condition:
		return []string{v.Key}
	case And:
		var out []string
		for _, child := range v {
			out = append(out, keys(child)...)
		}
		return out
	case Or:
		var out []string
		for _, child := range v {
			out = append(out, keys(child)...)
		}
		return out
	}
	return nil
}
