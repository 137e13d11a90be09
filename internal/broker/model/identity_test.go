package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/G-Research/genie/internal/common/genieerrors"
)

func TestApplyIdentityTags(t *testing.T) {
	cluster := testCluster("c1")
	tags, err := ApplyIdentityTags(cluster, NewTagSet("sched:adhoc", "type:yarn"))
	require.NoError(t, err)

	expected := NewTagSet("sched:adhoc", "type:yarn", "genie.id:c1", "genie.name:h2prod-c1")
	assert.Equal(t, expected, tags)
	assert.Equal(t, expected, cluster.Tags())

	// The returned set is a copy.
	tags.Add("extra")
	assert.False(t, cluster.Tags().Contains("extra"))
}

func TestApplyIdentityTags_RejectsReservedTags(t *testing.T) {
	tests := map[string]TagSet{
		"id tag":         NewTagSet("genie.id:other"),
		"name tag":       NewTagSet("ok", "genie.name:other"),
		"other reserved": NewTagSet("genie.anything"),
	}
	for name, userTags := range tests {
		t.Run(name, func(t *testing.T) {
			cmd := testCommand("cmd1")
			_, err := ApplyIdentityTags(cmd, userTags)
			assert.True(t, genieerrors.IsInvalidArgument(err))
			assert.True(t, cmd.Tags().IsEmpty(), "tags must be untouched on failure")
		})
	}
}

func TestApplyIdentityTags_RequiresIdAndName(t *testing.T) {
	noId := testApplication("")
	_, err := ApplyIdentityTags(noId, NewTagSet("a"))
	assert.True(t, genieerrors.IsInvalidArgument(err))

	noName := testApplication("app1")
	noName.Name = " "
	_, err = ApplyIdentityTags(noName, NewTagSet("a"))
	assert.True(t, genieerrors.IsInvalidArgument(err))
}

func TestReapplyIdentityTags(t *testing.T) {
	cmd := testCommand("cmd1")
	first, err := ApplyIdentityTags(cmd, NewTagSet("type:pig"))
	require.NoError(t, err)

	second, err := ReapplyIdentityTags(cmd)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	cmd.Name = "renamed"
	renamed, err := ReapplyIdentityTags(cmd)
	require.NoError(t, err)
	assert.Equal(t, NewTagSet("type:pig", "genie.id:cmd1", "genie.name:renamed"), renamed)
}

func TestUserTags(t *testing.T) {
	tags := NewTagSet("a", "genie.id:x", "genie.name:y", "b")
	assert.Equal(t, NewTagSet("a", "b"), UserTags(tags))
	assert.Equal(t, 4, tags.Len())
	assert.True(t, UserTags(nil).IsEmpty())
}

func TestValidateUserTags_ReportsEveryReservedTag(t *testing.T) {
	err := ValidateUserTags(NewTagSet("genie.a", "ok", "genie.b"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "genie.a")
	assert.Contains(t, err.Error(), "genie.b")
	assert.NoError(t, ValidateUserTags(NewTagSet("ok")))
}

func TestWithoutIdentityTags(t *testing.T) {
	tags := NewTagSet("pig", "genie.id:c1", "genie.name:old", "genie.name:other", "genie.id:c2")
	assert.Equal(t,
		NewTagSet("pig", "genie.name:other", "genie.id:c2"),
		WithoutIdentityTags(tags, "c1", "old", "new"))
	assert.Len(t, tags, 5, "input is not modified")
}
