package search

import (
	"fmt"
	"strings"

	"github.com/leengari/schemadb/internal/domain/data"
	"github.com/leengari/schemadb/internal/domain/schema"
)

const keyPartSeparator = "\x1f"

// HashIndex maps composite member values to row positions
type HashIndex struct {
	Def     schema.Index
	entries map[string][]int
}

// NewHashIndex creates an empty index for def
func NewHashIndex(def schema.Index) *HashIndex {
	return &HashIndex{
		Def:     def,
		entries: make(map[string][]int),
	}
}

// FormatValue renders a cell value the way index keys and scans compare it.
// Whole floats print as integers so JSON-decoded numbers match their int form.
func FormatValue(v any) string {
	switch n := v.(type) {
	case float64:
		if n == float64(int64(n)) {
			return fmt.Sprintf("%d", int64(n))
		}
	case float32:
		if n == float32(int64(n)) {
			return fmt.Sprintf("%d", int64(n))
		}
	}
	return fmt.Sprintf("%v", v)
}

// Key builds the composite key for a set of member values, in member order.
// Returns false if any member is missing from values.
func (h *HashIndex) Key(values map[string]any) (string, bool) {
	parts := make([]string, len(h.Def.Members))
	for i, m := range h.Def.Members {
		v, ok := values[m]
		if !ok {
			return "", false
		}
		parts[i] = m + "=" + FormatValue(v)
	}
	return strings.Join(parts, keyPartSeparator), true
}

// Add indexes row at position pos. Rows missing a member are not indexed.
func (h *HashIndex) Add(row data.Row, pos int) {
	key, ok := h.Key(row.Data)
	if !ok {
		return
	}
	h.entries[key] = append(h.entries[key], pos)
}

// Lookup returns the positions stored under key
func (h *HashIndex) Lookup(key string) []int {
	return h.entries[key]
}

// Len returns the number of distinct keys
func (h *HashIndex) Len() int {
	return len(h.entries)
}
