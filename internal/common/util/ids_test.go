package util

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewULID_Ordered(t *testing.T) {
	previous := NewULID()
	for i := 0; i < 100; i++ {
		next := NewULID()
		assert.Equal(t, strings.ToLower(next), next)
		assert.Len(t, next, 26)
		assert.Less(t, previous, next)
		previous = next
	}
}

func TestNewUUID(t *testing.T) {
	id := NewUUID()
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.NotEqual(t, id, NewUUID())
}
