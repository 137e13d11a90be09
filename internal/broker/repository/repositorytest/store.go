// Package repositorytest holds behaviour every repository.Store implementation must share.
package repositorytest

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/G-Research/genie/internal/broker/model"
	"github.com/G-Research/genie/internal/broker/repository"
	"github.com/G-Research/genie/internal/common/genieerrors"
)

// RunStoreTests runs the shared store tests. newStore must return an empty store.
func RunStoreTests(t *testing.T, newStore func(t *testing.T) repository.Store) {
	tests := map[string]func(t *testing.T, store repository.Store){
		"save and get":                   testSaveAndGet,
		"insert with taken id":           testInsertTakenId,
		"stale update":                   testStaleUpdate,
		"missing resources":              testMissing,
		"delete":                         testDelete,
		"failed update is rolled back":   testRollback,
		"returned entities are copies":   testCopies,
		"list filters":                   testListFilters,
		"find clusters":                  testFindClusters,
		"find commands in cluster order": testFindCommands,
		"job round trip":                 testJobRoundTrip,
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			test(t, newStore(t))
		})
	}
}

func Cluster(id string, status model.ClusterStatus, tags ...string) *model.Cluster {
	c := &model.Cluster{
		Resource:    model.Resource{Id: id, Name: "name-" + id, User: "genie", Version: "1.0"},
		Status:      status,
		ClusterType: "yarn",
	}
	mustApplyTags(c, tags)
	return c
}

func Command(id string, status model.CommandStatus, tags ...string) *model.Command {
	c := &model.Command{
		Resource:   model.Resource{Id: id, Name: "name-" + id, User: "genie", Version: "1.0"},
		Status:     status,
		Executable: "/bin/" + id,
	}
	mustApplyTags(c, tags)
	return c
}

func Application(id string, tags ...string) *model.Application {
	a := &model.Application{
		Resource: model.Resource{Id: id, Name: "name-" + id, User: "genie", Version: "1.0"},
		Status:   model.ApplicationStatusActive,
	}
	mustApplyTags(a, tags)
	return a
}

func mustApplyTags(e model.Entity, tags []string) {
	if _, err := model.ApplyIdentityTags(e, model.NewTagSet(tags...)); err != nil {
		panic(err)
	}
}

func update(t *testing.T, store repository.Store, fn func(txn repository.Txn) error) {
	t.Helper()
	require.NoError(t, store.Update(context.Background(), fn))
}

func view(t *testing.T, store repository.Store, fn func(txn repository.Txn) error) {
	t.Helper()
	require.NoError(t, store.View(context.Background(), fn))
}

func testSaveAndGet(t *testing.T, store repository.Store) {
	cluster := Cluster("c1", model.ClusterStatusUp, "sched:adhoc")
	cluster.SetConfigs(model.NewStringSet("s3://config/yarn-site.xml"))
	update(t, store, func(txn repository.Txn) error {
		return txn.SaveCluster(cluster)
	})
	assert.Equal(t, int64(1), cluster.EntityVersion)

	view(t, store, func(txn repository.Txn) error {
		stored, err := txn.GetCluster("c1")
		require.NoError(t, err)
		assert.Equal(t, cluster.Name, stored.Name)
		assert.Equal(t, cluster.Tags(), stored.Tags())
		assert.Equal(t, cluster.Configs(), stored.Configs())
		assert.Equal(t, int64(1), stored.EntityVersion)

		exists, err := txn.Exists(model.KindCluster, "c1")
		require.NoError(t, err)
		assert.True(t, exists)
		exists, err = txn.Exists(model.KindCommand, "c1")
		require.NoError(t, err)
		assert.False(t, exists)
		return nil
	})

	update(t, store, func(txn repository.Txn) error {
		stored, err := txn.GetCluster("c1")
		require.NoError(t, err)
		stored.Status = model.ClusterStatusOutOfService
		require.NoError(t, txn.SaveCluster(stored))
		assert.Equal(t, int64(2), stored.EntityVersion)
		return nil
	})
}

func testInsertTakenId(t *testing.T, store repository.Store) {
	update(t, store, func(txn repository.Txn) error {
		return txn.SaveCommand(Command("cmd1", model.CommandStatusActive))
	})
	err := store.Update(context.Background(), func(txn repository.Txn) error {
		return txn.SaveCommand(Command("cmd1", model.CommandStatusActive))
	})
	assert.Equal(t, genieerrors.KindAlreadyExists, genieerrors.KindFromError(err))
}

func testStaleUpdate(t *testing.T, store repository.Store) {
	update(t, store, func(txn repository.Txn) error {
		return txn.SaveApplication(Application("app1"))
	})
	var first, second *model.Application
	view(t, store, func(txn repository.Txn) (err error) {
		first, err = txn.GetApplication("app1")
		require.NoError(t, err)
		second, err = txn.GetApplication("app1")
		return err
	})
	update(t, store, func(txn repository.Txn) error {
		return txn.SaveApplication(first)
	})
	err := store.Update(context.Background(), func(txn repository.Txn) error {
		return txn.SaveApplication(second)
	})
	assert.Equal(t, genieerrors.KindConflict, genieerrors.KindFromError(err))
}

func testMissing(t *testing.T, store repository.Store) {
	view(t, store, func(txn repository.Txn) error {
		_, err := txn.GetApplication("missing")
		assert.True(t, genieerrors.IsNotFound(err))
		_, err = txn.GetCommand("missing")
		assert.True(t, genieerrors.IsNotFound(err))
		_, err = txn.GetCluster("missing")
		assert.True(t, genieerrors.IsNotFound(err))
		_, err = txn.GetJob("missing")
		assert.True(t, genieerrors.IsNotFound(err))
		_, err = txn.FindCommands("missing")
		assert.True(t, genieerrors.IsNotFound(err))
		return nil
	})
	err := store.Update(context.Background(), func(txn repository.Txn) error {
		return txn.Delete(model.KindCluster, "missing")
	})
	assert.True(t, genieerrors.IsNotFound(err))
}

func testDelete(t *testing.T, store repository.Store) {
	update(t, store, func(txn repository.Txn) error {
		return txn.SaveCluster(Cluster("c1", model.ClusterStatusUp))
	})
	update(t, store, func(txn repository.Txn) error {
		return txn.Delete(model.KindCluster, "c1")
	})
	view(t, store, func(txn repository.Txn) error {
		exists, err := txn.Exists(model.KindCluster, "c1")
		require.NoError(t, err)
		assert.False(t, exists)
		return nil
	})
}

func testRollback(t *testing.T, store repository.Store) {
	failure := errors.New("failure")
	err := store.Update(context.Background(), func(txn repository.Txn) error {
		require.NoError(t, txn.SaveCluster(Cluster("c1", model.ClusterStatusUp)))
		require.NoError(t, txn.SaveCommand(Command("cmd1", model.CommandStatusActive)))
		return failure
	})
	assert.ErrorIs(t, err, failure)
	view(t, store, func(txn repository.Txn) error {
		clusters, err := txn.ListClusters(repository.Filter{})
		require.NoError(t, err)
		assert.Empty(t, clusters)
		commands, err := txn.ListCommands(repository.Filter{})
		require.NoError(t, err)
		assert.Empty(t, commands)
		return nil
	})
}

func testCopies(t *testing.T, store repository.Store) {
	cluster := Cluster("c1", model.ClusterStatusUp, "a")
	update(t, store, func(txn repository.Txn) error {
		return txn.SaveCluster(cluster)
	})
	cluster.Status = model.ClusterStatusTerminated
	cluster.AddConfigs("changed after save")

	view(t, store, func(txn repository.Txn) error {
		stored, err := txn.GetCluster("c1")
		require.NoError(t, err)
		assert.Equal(t, model.ClusterStatusUp, stored.Status)
		assert.True(t, stored.Configs().IsEmpty())

		stored.Status = model.ClusterStatusTerminated
		again, err := txn.GetCluster("c1")
		require.NoError(t, err)
		assert.Equal(t, model.ClusterStatusUp, again.Status)
		return nil
	})
}

func testListFilters(t *testing.T, store repository.Store) {
	update(t, store, func(txn repository.Txn) error {
		for _, c := range []*model.Command{
			Command("cmd3", model.CommandStatusActive, "type:pig", "ver:0.14"),
			Command("cmd1", model.CommandStatusActive, "type:pig", "ver:0.13"),
			Command("cmd2", model.CommandStatusDeprecated, "type:hive"),
		} {
			if err := txn.SaveCommand(c); err != nil {
				return err
			}
		}
		return nil
	})
	tests := map[string]struct {
		filter   repository.Filter
		expected []string
	}{
		"everything":       {repository.Filter{}, []string{"cmd1", "cmd2", "cmd3"}},
		"by name":          {repository.Filter{Name: "name-cmd2"}, []string{"cmd2"}},
		"by status":        {repository.Filter{Statuses: []string{"ACTIVE"}}, []string{"cmd1", "cmd3"}},
		"by two statuses":  {repository.Filter{Statuses: []string{"ACTIVE", "DEPRECATED"}}, []string{"cmd1", "cmd2", "cmd3"}},
		"by tag":           {repository.Filter{Tags: model.NewTagSet("type:pig")}, []string{"cmd1", "cmd3"}},
		"by tags":          {repository.Filter{Tags: model.NewTagSet("type:pig", "ver:0.14")}, []string{"cmd3"}},
		"by identity tag":  {repository.Filter{Tags: model.NewTagSet(model.IdTag("cmd2"))}, []string{"cmd2"}},
		"no match":         {repository.Filter{Tags: model.NewTagSet("type:spark")}, []string{}},
		"tag and status":   {repository.Filter{Tags: model.NewTagSet("type:hive"), Statuses: []string{"ACTIVE"}}, []string{}},
		"unknown status":   {repository.Filter{Statuses: []string{"BOGUS"}}, []string{}},
		"name and tag":     {repository.Filter{Name: "name-cmd1", Tags: model.NewTagSet("type:pig")}, []string{"cmd1"}},
		"tag prefix only":  {repository.Filter{Tags: model.NewTagSet("type:pi")}, []string{}},
		"case is relevant": {repository.Filter{Tags: model.NewTagSet("TYPE:PIG")}, []string{}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			view(t, store, func(txn repository.Txn) error {
				commands, err := txn.ListCommands(tc.filter)
				require.NoError(t, err)
				ids := make([]string, len(commands))
				for i, c := range commands {
					ids[i] = c.Id
				}
				assert.Equal(t, tc.expected, ids)
				return nil
			})
		})
	}
}

func testFindClusters(t *testing.T, store repository.Store) {
	update(t, store, func(txn repository.Txn) error {
		for _, c := range []*model.Cluster{
			Cluster("c2", model.ClusterStatusUp, "pig", "sched:adhoc"),
			Cluster("c1", model.ClusterStatusUp, "pig"),
			Cluster("c3", model.ClusterStatusOutOfService, "pig"),
		} {
			if err := txn.SaveCluster(c); err != nil {
				return err
			}
		}
		return nil
	})
	view(t, store, func(txn repository.Txn) error {
		clusters, err := txn.FindClusters(model.ClusterStatusUp, model.NewTagSet("pig"))
		require.NoError(t, err)
		require.Len(t, clusters, 2)
		assert.Equal(t, "c1", clusters[0].Id)
		assert.Equal(t, "c2", clusters[1].Id)

		clusters, err = txn.FindClusters(model.ClusterStatusUp, model.NewTagSet(model.IdTag("c2")))
		require.NoError(t, err)
		require.Len(t, clusters, 1)
		assert.Equal(t, "c2", clusters[0].Id)

		clusters, err = txn.FindClusters(model.ClusterStatusUp, model.NewTagSet(model.IdTag("c3")))
		require.NoError(t, err)
		assert.Empty(t, clusters)
		return nil
	})
}

func testFindCommands(t *testing.T, store repository.Store) {
	cluster := Cluster("c1", model.ClusterStatusUp)
	cmdA := Command("a", model.CommandStatusActive)
	cmdB := Command("b", model.CommandStatusInactive)
	cmdC := Command("c", model.CommandStatusActive)
	model.AttachCommand(cluster, cmdC)
	model.AttachCommand(cluster, cmdB)
	model.AttachCommand(cluster, cmdA)
	update(t, store, func(txn repository.Txn) error {
		for _, c := range []*model.Command{cmdA, cmdB, cmdC} {
			if err := txn.SaveCommand(c); err != nil {
				return err
			}
		}
		return txn.SaveCluster(cluster)
	})
	view(t, store, func(txn repository.Txn) error {
		commands, err := txn.FindCommands("c1")
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "b", "a"}, ids(commands))

		commands, err = txn.FindCommands("c1", model.CommandStatusActive)
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "a"}, ids(commands))

		stored, err := txn.GetCommand("b")
		require.NoError(t, err)
		assert.Equal(t, []string{"c1"}, stored.ClusterIds())
		return nil
	})
}

func testJobRoundTrip(t *testing.T, store repository.Store) {
	job := &model.Job{
		Resource:              model.Resource{Id: "j1", Name: "job", User: "genie", Version: model.DefaultJobVersion},
		CommandArgs:           "-f query.q",
		Status:                model.JobStatusInit,
		StatusMsg:             "Submitted",
		ClusterCriteria:       []model.TagSet{model.NewTagSet("sched:adhoc", "type:yarn"), model.NewTagSet("sched:sla")},
		CommandCriteria:       model.NewTagSet("type:hive"),
		ChosenClusterCriteria: model.NewTagSet("sched:sla"),
		ExecutionClusterId:    "c1",
		CommandId:             "cmd1",
	}
	mustApplyTags(job, nil)
	update(t, store, func(txn repository.Txn) error {
		return txn.SaveJob(job)
	})
	view(t, store, func(txn repository.Txn) error {
		stored, err := txn.GetJob("j1")
		require.NoError(t, err)
		assert.Equal(t, job.ClusterCriteria, stored.ClusterCriteria)
		assert.Equal(t, job.CommandCriteria, stored.CommandCriteria)
		assert.Equal(t, job.ChosenClusterCriteria, stored.ChosenClusterCriteria)
		assert.Equal(t, job.Status, stored.Status)
		assert.Equal(t, job.StatusMsg, stored.StatusMsg)
		assert.Equal(t, job.ExecutionClusterId, stored.ExecutionClusterId)
		assert.Equal(t, job.Tags(), stored.Tags())
		return nil
	})
}

func ids[T model.Entity](entities []T) []string {
	result := make([]string, len(entities))
	for i, e := range entities {
		result[i] = e.GetResource().Id
	}
	return result
}
