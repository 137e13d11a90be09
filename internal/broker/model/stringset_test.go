package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringSet_ContainsAll(t *testing.T) {
	tests := map[string]struct {
		set      TagSet
		other    TagSet
		expected bool
	}{
		"superset":          {NewTagSet("a", "b", "c"), NewTagSet("a", "c"), true},
		"equal":             {NewTagSet("a", "b"), NewTagSet("b", "a"), true},
		"empty other":       {NewTagSet("a"), NewTagSet(), true},
		"nil both":          {nil, nil, true},
		"missing member":    {NewTagSet("a", "b"), NewTagSet("a", "z"), false},
		"larger other":      {NewTagSet("a"), NewTagSet("a", "b"), false},
		"case sensitive":    {NewTagSet("Pig"), NewTagSet("pig"), false},
		"no prefix matches": {NewTagSet("pig"), NewTagSet("pi"), false},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.set.ContainsAll(tc.other))
		})
	}
}

func TestStringSet_Operations(t *testing.T) {
	s := NewStringSet("b", "a")
	s.Add("c", "a")
	assert.Equal(t, []string{"a", "b", "c"}, s.Slice())

	s.Remove("b", "missing")
	assert.Equal(t, []string{"a", "c"}, s.Slice())
	assert.True(t, s.Contains("a"))
	assert.False(t, s.Contains("b"))

	union := s.Union(NewStringSet("d"))
	assert.Equal(t, []string{"a", "c", "d"}, union.Slice())
	assert.Equal(t, 2, s.Len(), "union must not modify the receiver")

	assert.True(t, s.Equal(NewStringSet("c", "a")))
	assert.False(t, s.Equal(union))
}

func TestStringSet_CloneIsIndependent(t *testing.T) {
	var empty StringSet
	c := empty.Clone()
	require.NotNil(t, c)
	c.Add("x")
	assert.True(t, empty.IsEmpty())

	s := NewStringSet("a")
	c = s.Clone()
	c.Add("b")
	assert.Equal(t, 1, s.Len())
}

func TestStringSet_Json(t *testing.T) {
	b, err := json.Marshal(NewStringSet("z", "a", "m"))
	require.NoError(t, err)
	assert.JSONEq(t, `["a","m","z"]`, string(b))

	var nilSet StringSet
	b, err = json.Marshal(nilSet)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(b))

	var decoded StringSet
	require.NoError(t, json.Unmarshal([]byte(`["x","y","x"]`), &decoded))
	assert.Equal(t, NewStringSet("x", "y"), decoded)
}

func TestCloneTagSets(t *testing.T) {
	assert.Nil(t, CloneTagSets(nil))

	original := []TagSet{NewTagSet("a"), NewTagSet("b", "c")}
	clone := CloneTagSets(original)
	assert.Equal(t, original, clone)
	clone[0].Add("z")
	assert.False(t, original[0].Contains("z"))
}
