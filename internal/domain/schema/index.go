package schema

// IndexType selects the structure backing an index
type IndexType string

const (
	IndexTypeHash IndexType = "hash"
)

// Index describes an index over one or more columns.
// Members are ordered: composite keys are built in member order.
type Index struct {
	Name    string    `json:"name" yaml:"name"`
	Members []string  `json:"members" yaml:"members"`
	Type    IndexType `json:"type,omitempty" yaml:"type,omitempty"`
}

// NewHashIndex creates a hash index over the given columns
func NewHashIndex(name string, members ...string) Index {
	return Index{Name: name, Members: members, Type: IndexTypeHash}
}

// Covers reports whether every column in keys is a member of the index
func (i Index) Covers(keys []string) bool {
	if len(keys) == 0 {
		return false
	}
	members := make(map[string]struct{}, len(i.Members))
	for _, m := range i.Members {
		members[m] = struct{}{}
	}
	for _, k := range keys {
		if _, ok := members[k]; !ok {
			return false
		}
	}
	return true
}

func (i Index) clone() Index {
	members := make([]string, len(i.Members))
	copy(members, i.Members)
	i.Members = members
	return i
}
