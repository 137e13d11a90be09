package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/G-Research/genie/internal/broker/model"
	"github.com/G-Research/genie/internal/broker/repository"
	"github.com/G-Research/genie/internal/broker/repository/repositorytest"
)

func newMemDbStore(t *testing.T) repository.Store {
	store, err := repository.NewMemDbStore()
	require.NoError(t, err)
	return store
}

func TestMemDbStore(t *testing.T) {
	repositorytest.RunStoreTests(t, newMemDbStore)
}

func TestMemDbStore_ViewIsReadOnly(t *testing.T) {
	store := newMemDbStore(t)
	err := store.View(context.Background(), func(txn repository.Txn) error {
		return txn.SaveCluster(repositorytest.Cluster("c1", model.ClusterStatusUp))
	})
	assert.Error(t, err)
}

func TestMemDbStore_CancelledContext(t *testing.T) {
	store := newMemDbStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := store.Update(ctx, func(txn repository.Txn) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestFilter_Matches(t *testing.T) {
	tags := model.NewTagSet("a", "b")
	assert.True(t, repository.Filter{}.Matches("n", "UP", tags))
	assert.True(t, repository.Filter{Name: "n", Statuses: []string{"UP"}, Tags: model.NewTagSet("a")}.Matches("n", "UP", tags))
	assert.False(t, repository.Filter{Name: "m"}.Matches("n", "UP", tags))
	assert.False(t, repository.Filter{Statuses: []string{"TERMINATED"}}.Matches("n", "UP", tags))
	assert.False(t, repository.Filter{Tags: model.NewTagSet("c")}.Matches("n", "UP", tags))
}
