package party

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

type IDSlice []ID

// NewIDSlice returns a sorted copy of ids.
func NewIDSlice(ids []ID) IDSlice {
	s := make(IDSlice, len(ids))
	copy(s, ids)
	s.Sort()
	return s
}

// Range returns the IDs 1..n.
func Range(n int) IDSlice {
	s := make(IDSlice, n)
	for i := range s {
		s[i] = ID(i + 1)
	}
	return s
}

func (ids IDSlice) Len() int           { return len(ids) }
func (ids IDSlice) Less(i, j int) bool { return ids[i] < ids[j] }
func (ids IDSlice) Swap(i, j int)      { ids[i], ids[j] = ids[j], ids[i] }

// Sort is a convenience method: x.Sort() calls Sort(x).
func (ids IDSlice) Sort() { sort.Sort(ids) }

// Valid returns an error if ids is unsorted, contains duplicates or contains 0.
func (ids IDSlice) Valid() error {
	for i, id := range ids {
		if id == 0 {
			return errors.New("party: ID 0 is reserved")
		}
		if i > 0 && ids[i-1] >= id {
			return fmt.Errorf("party: IDs not sorted or duplicated at %d", id)
		}
	}
	return nil
}

// Contains returns true if ids contains id.
// Assumes that ids is sorted.
func (ids IDSlice) Contains(id ID) bool {
	_, ok := ids.Search(id)
	return ok
}

// Search returns the index of x and whether it was found.
func (ids IDSlice) Search(x ID) (int, bool) {
	index := sort.Search(len(ids), func(i int) bool { return ids[i] >= x })
	if index < len(ids) && ids[index] == x {
		return index, true
	}
	return 0, false
}

// Copy returns a sorted copy.
func (ids IDSlice) Copy() IDSlice {
	return NewIDSlice(ids)
}

// Remove returns a copy of ids without id.
func (ids IDSlice) Remove(id ID) IDSlice {
	out := make(IDSlice, 0, len(ids))
	for _, other := range ids {
		if other != id {
			out = append(out, other)
		}
	}
	return out
}

func (ids IDSlice) String() string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ",")
}
