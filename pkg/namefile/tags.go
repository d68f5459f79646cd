package namefile

import (
	"encoding/json"
	"slices"

	"github.com/samber/lo"
)

// TagSet is an immutable set of tags. The zero value is an empty set.
type TagSet struct {
	items map[string]struct{}
}

// NewTagSet returns a set holding tags. Duplicates collapse.
func NewTagSet(tags ...string) TagSet {
	if len(tags) == 0 {
		return TagSet{}
	}
	return TagSet{items: lo.Associate(tags, func(t string) (string, struct{}) {
		return t, struct{}{}
	})}
}

// Len returns the number of tags.
func (s TagSet) Len() int {
	return len(s.items)
}

// Has reports whether tag is a member of the set.
func (s TagSet) Has(tag string) bool {
	_, ok := s.items[tag]
	return ok
}

// Sorted returns the tags in lexicographic order. This is the order Encode
// writes them in.
func (s TagSet) Sorted() []string {
	out := lo.Keys(s.items)
	slices.Sort(out)
	return out
}

// Union returns a new set holding the tags of both sets.
func (s TagSet) Union(other TagSet) TagSet {
	return NewTagSet(append(s.Sorted(), other.Sorted()...)...)
}

// Equal reports whether both sets hold the same tags.
func (s TagSet) Equal(other TagSet) bool {
	if s.Len() != other.Len() {
		return false
	}
	for t := range s.items {
		if !other.Has(t) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the set as a sorted array.
func (s TagSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes an array of tags.
func (s *TagSet) UnmarshalJSON(data []byte) error {
	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		return err
	}
	*s = NewTagSet(tags...)
	return nil
}
