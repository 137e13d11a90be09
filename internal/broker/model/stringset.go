package model

import (
	"encoding/json"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// StringSet is an unordered set of strings. The zero value is an empty set that may be read but not written;
// use NewStringSet to obtain a writable set.
type StringSet map[string]struct{}

// TagSet is a set of tags. Tags are opaque, case-sensitive tokens compared by exact string equality.
type TagSet = StringSet

func NewStringSet(values ...string) StringSet {
	s := make(StringSet, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

// NewTagSet is NewStringSet, for readability at call sites dealing with tags.
func NewTagSet(tags ...string) TagSet {
	return NewStringSet(tags...)
}

func (s StringSet) Add(values ...string) {
	for _, v := range values {
		s[v] = struct{}{}
	}
}

func (s StringSet) Remove(values ...string) {
	for _, v := range values {
		delete(s, v)
	}
}

func (s StringSet) Contains(value string) bool {
	_, ok := s[value]
	return ok
}

// ContainsAll returns true if s is a superset of other. Every set contains the empty set.
func (s StringSet) ContainsAll(other StringSet) bool {
	if len(other) > len(s) {
		return false
	}
	for v := range other {
		if _, ok := s[v]; !ok {
			return false
		}
	}
	return true
}

// Union returns a new set holding the members of s and other.
func (s StringSet) Union(other StringSet) StringSet {
	result := make(StringSet, len(s)+len(other))
	result.Add(maps.Keys(s)...)
	result.Add(maps.Keys(other)...)
	return result
}

func (s StringSet) Equal(other StringSet) bool {
	return len(s) == len(other) && s.ContainsAll(other)
}

func (s StringSet) Len() int {
	return len(s)
}

func (s StringSet) IsEmpty() bool {
	return len(s) == 0
}

// Clone returns a writable copy; cloning a nil set yields an empty, non-nil set.
func (s StringSet) Clone() StringSet {
	result := make(StringSet, len(s))
	for v := range s {
		result[v] = struct{}{}
	}
	return result
}

// Slice returns the members in sorted order.
func (s StringSet) Slice() []string {
	result := maps.Keys(s)
	slices.Sort(result)
	return result
}

func (s StringSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Slice())
}

func (s *StringSet) UnmarshalJSON(data []byte) error {
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*s = NewStringSet(values...)
	return nil
}

// CloneTagSets deep copies an ordered list of tag sets.
func CloneTagSets(sets []TagSet) []TagSet {
	if sets == nil {
		return nil
	}
	result := make([]TagSet, len(sets))
	for i, s := range sets {
		result[i] = s.Clone()
	}
	return result
}
