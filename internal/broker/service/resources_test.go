package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/G-Research/genie/internal/broker/configuration"
	"github.com/G-Research/genie/internal/broker/model"
	"github.com/G-Research/genie/internal/broker/repository"
	"github.com/G-Research/genie/internal/common/brokercontext"
	"github.com/G-Research/genie/internal/common/genieerrors"
)

func TestCreateApplication(t *testing.T) {
	s := newTestService(t, configuration.JobsConfig{})
	ctx := brokercontext.Background()

	app, err := s.CreateApplication(ctx, application("hadoop", "type:yarn"))
	require.NoError(t, err)

	assert.NotEmpty(t, app.Id)
	assert.Equal(t, int64(1), app.EntityVersion)
	assert.Equal(t, testTime, app.Created)
	assert.Equal(t, testTime, app.Updated)
	assert.Equal(t, []string{"genie.id:" + app.Id, "genie.name:hadoop", "type:yarn"}, app.Tags().Slice())

	stored, err := s.GetApplication(ctx, app.Id)
	require.NoError(t, err)
	assert.Equal(t, app.Tags(), stored.Tags())
}

func TestCreate_KeepsSuppliedIdAndEarlierCreated(t *testing.T) {
	s := newTestService(t, configuration.JobsConfig{})
	earlier := testTime.Add(-time.Hour)
	c := withId(cluster("c", model.ClusterStatusUp), "cluster1")
	c.Created = earlier

	created, err := s.CreateCluster(brokercontext.Background(), c, nil)
	require.NoError(t, err)
	assert.Equal(t, "cluster1", created.Id)
	assert.Equal(t, earlier, created.Created)
	assert.Equal(t, testTime, created.Updated)
}

func TestCreate_Failures(t *testing.T) {
	tests := map[string]struct {
		create func(s *testService) error
		kind   genieerrors.Kind
	}{
		"reserved tag": {
			create: func(s *testService) error {
				_, err := s.CreateApplication(brokercontext.Background(), application("a", "genie.id:other"))
				return err
			},
			kind: genieerrors.KindInvalidArgument,
		},
		"blank name": {
			create: func(s *testService) error {
				_, err := s.CreateCommand(brokercontext.Background(), command(" ", model.CommandStatusActive), "")
				return err
			},
			kind: genieerrors.KindInvalidArgument,
		},
		"invalid status": {
			create: func(s *testService) error {
				_, err := s.CreateCluster(brokercontext.Background(), cluster("c", "BROKEN"), nil)
				return err
			},
			kind: genieerrors.KindInvalidArgument,
		},
		"taken id": {
			create: func(s *testService) error {
				if _, err := s.CreateApplication(brokercontext.Background(), withId(application("a"), "app1")); err != nil {
					return err
				}
				_, err := s.CreateApplication(brokercontext.Background(), withId(application("b"), "app1"))
				return err
			},
			kind: genieerrors.KindAlreadyExists,
		},
		"unknown application": {
			create: func(s *testService) error {
				_, err := s.CreateCommand(brokercontext.Background(), withId(command("cmd", model.CommandStatusActive), "cmd1"), "missing")
				return err
			},
			kind: genieerrors.KindNotFound,
		},
		"unknown command": {
			create: func(s *testService) error {
				_, err := s.CreateCluster(brokercontext.Background(), withId(cluster("c", model.ClusterStatusUp), "c1"), []string{"missing"})
				return err
			},
			kind: genieerrors.KindNotFound,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			s := newTestService(t, configuration.JobsConfig{})
			assert.Equal(t, tc.kind, genieerrors.KindFromError(tc.create(s)))
		})
	}
}

func TestCreate_FailedLinkStoresNothing(t *testing.T) {
	s := newTestService(t, configuration.JobsConfig{})
	ctx := brokercontext.Background()
	_, err := s.CreateCommand(ctx, withId(command("cmd", model.CommandStatusActive), "cmd1"), "missing")
	require.Error(t, err)

	_, err = s.GetCommand(ctx, "cmd1")
	assert.True(t, genieerrors.IsNotFound(err))
}

func TestCreateWithLinks(t *testing.T) {
	s := newTestService(t, configuration.JobsConfig{})
	ctx := brokercontext.Background()
	_, err := s.CreateApplication(ctx, withId(application("hadoop"), "app1"))
	require.NoError(t, err)
	_, err = s.CreateCommand(ctx, withId(command("pig", model.CommandStatusActive), "cmd1"), "app1")
	require.NoError(t, err)
	cmd2, err := s.CreateCommand(ctx, withId(command("hive", model.CommandStatusActive), "cmd2"), "")
	require.NoError(t, err)
	assert.Equal(t, "", cmd2.ApplicationId())

	c, err := s.CreateCluster(ctx, withId(cluster("c", model.ClusterStatusUp), "c1"), []string{"cmd2", "cmd1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"cmd2", "cmd1"}, c.CommandIds())

	cmd1, err := s.GetCommand(ctx, "cmd1")
	require.NoError(t, err)
	assert.Equal(t, "app1", cmd1.ApplicationId())
	assert.Equal(t, []string{"c1"}, cmd1.ClusterIds())

	app, err := s.GetApplication(ctx, "app1")
	require.NoError(t, err)
	assert.Equal(t, []string{"cmd1"}, app.CommandIds())
}

func TestUpdate(t *testing.T) {
	s := newTestService(t, configuration.JobsConfig{})
	ctx := brokercontext.Background()
	_, err := s.CreateCommand(ctx, withId(command("pig", model.CommandStatusActive), "cmd1"), "")
	require.NoError(t, err)
	_, err = s.CreateCluster(ctx, withId(cluster("old", model.ClusterStatusUp, "a"), "c1"), []string{"cmd1"})
	require.NoError(t, err)

	s.clock.Step(time.Minute)
	updated, err := s.UpdateCluster(ctx, "c1", cluster("new", model.ClusterStatusOutOfService, "b"))
	require.NoError(t, err)

	assert.Equal(t, "c1", updated.Id)
	assert.Equal(t, model.ClusterStatusOutOfService, updated.Status)
	assert.Equal(t, []string{"b", "genie.id:c1", "genie.name:new"}, updated.Tags().Slice())
	assert.Equal(t, []string{"cmd1"}, updated.CommandIds(), "links survive an update")
	assert.Equal(t, testTime, updated.Created)
	assert.Equal(t, testTime.Add(time.Minute), updated.Updated)

	stored, err := s.GetCluster(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, updated.EntityVersion, stored.EntityVersion)

	clusters, err := s.ListClusters(ctx, repository.Filter{Tags: model.NewTagSet("genie.name:old")})
	require.NoError(t, err)
	assert.Empty(t, clusters, "the old name tag is gone")
}

func TestUpdate_AfterGet(t *testing.T) {
	s := newTestService(t, configuration.JobsConfig{})
	ctx := brokercontext.Background()
	_, err := s.CreateCluster(ctx, withId(cluster("k", model.ClusterStatusUp, "pig"), "c1"), nil)
	require.NoError(t, err)

	stored, err := s.GetCluster(ctx, "c1")
	require.NoError(t, err)
	require.True(t, stored.Tags().Contains("genie.id:c1"))
	stored.Status = model.ClusterStatusOutOfService
	updated, err := s.UpdateCluster(ctx, "c1", stored)
	require.NoError(t, err)
	assert.Equal(t, model.ClusterStatusOutOfService, updated.Status)
	assert.Equal(t, []string{"genie.id:c1", "genie.name:k", "pig"}, updated.Tags().Slice())

	renamed, err := s.GetCluster(ctx, "c1")
	require.NoError(t, err)
	renamed.Name = "k2"
	updated, err = s.UpdateCluster(ctx, "c1", renamed)
	require.NoError(t, err)
	assert.Equal(t, []string{"genie.id:c1", "genie.name:k2", "pig"}, updated.Tags().Slice())
}

func TestUpdate_Failures(t *testing.T) {
	tests := map[string]struct {
		id     string
		update *model.Application
		kind   genieerrors.Kind
	}{
		"id mismatch":  {"app1", withId(application("a"), "app2"), genieerrors.KindConstraint},
		"missing":      {"missing", application("a"), genieerrors.KindNotFound},
		"blank user":   {"app1", &model.Application{Resource: model.Resource{Name: "a", Version: "1"}, Status: model.ApplicationStatusActive}, genieerrors.KindInvalidArgument},
		"reserved tag": {"app1", application("a", "genie.owner:x"), genieerrors.KindInvalidArgument},
		"other id tag": {"app1", application("a", "genie.id:app2"), genieerrors.KindInvalidArgument},
		"other name":   {"app1", application("a", "genie.name:b"), genieerrors.KindInvalidArgument},
		"stale version": {
			"app1",
			func() *model.Application {
				a := application("a")
				a.EntityVersion = 7
				return a
			}(),
			genieerrors.KindConflict,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			s := newTestService(t, configuration.JobsConfig{})
			ctx := brokercontext.Background()
			_, err := s.CreateApplication(ctx, withId(application("a"), "app1"))
			require.NoError(t, err)

			_, err = s.UpdateApplication(ctx, tc.id, tc.update)
			assert.Equal(t, tc.kind, genieerrors.KindFromError(err))

			stored, err := s.GetApplication(ctx, "app1")
			require.NoError(t, err)
			assert.Equal(t, int64(1), stored.EntityVersion)
		})
	}
}

func TestDelete(t *testing.T) {
	s := newTestService(t, configuration.JobsConfig{})
	ctx := brokercontext.Background()
	_, err := s.CreateApplication(ctx, withId(application("hadoop"), "app1"))
	require.NoError(t, err)
	_, err = s.CreateCommand(ctx, withId(command("pig", model.CommandStatusActive), "cmd1"), "app1")
	require.NoError(t, err)
	_, err = s.CreateCommand(ctx, withId(command("hive", model.CommandStatusActive), "cmd2"), "")
	require.NoError(t, err)
	_, err = s.CreateCluster(ctx, withId(cluster("c", model.ClusterStatusUp), "c1"), []string{"cmd1", "cmd2"})
	require.NoError(t, err)

	err = s.DeleteApplication(ctx, "app1")
	assert.Equal(t, genieerrors.KindPrecondition, genieerrors.KindFromError(err))
	app, err := s.GetApplication(ctx, "app1")
	require.NoError(t, err)
	assert.Equal(t, []string{"cmd1"}, app.CommandIds())

	require.NoError(t, s.DeleteCommand(ctx, "cmd1"))
	_, err = s.GetCommand(ctx, "cmd1")
	assert.True(t, genieerrors.IsNotFound(err))
	app, err = s.GetApplication(ctx, "app1")
	require.NoError(t, err)
	assert.Empty(t, app.CommandIds())
	c, err := s.GetCluster(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"cmd2"}, c.CommandIds())

	require.NoError(t, s.DeleteApplication(ctx, "app1"))
	require.NoError(t, s.DeleteCluster(ctx, "c1"))
	cmd2, err := s.GetCommand(ctx, "cmd2")
	require.NoError(t, err)
	assert.Empty(t, cmd2.ClusterIds())

	assert.True(t, genieerrors.IsNotFound(s.DeleteCluster(ctx, "c1")))
}

func TestDeleteAll(t *testing.T) {
	s := newTestService(t, configuration.JobsConfig{})
	ctx := brokercontext.Background()
	_, err := s.CreateApplication(ctx, withId(application("a"), "app1"))
	require.NoError(t, err)
	_, err = s.CreateApplication(ctx, withId(application("b"), "app2"))
	require.NoError(t, err)
	_, err = s.CreateCommand(ctx, withId(command("pig", model.CommandStatusActive), "cmd1"), "app2")
	require.NoError(t, err)
	_, err = s.CreateCluster(ctx, withId(cluster("c", model.ClusterStatusUp), "c1"), []string{"cmd1"})
	require.NoError(t, err)

	err = s.DeleteAllApplications(ctx)
	assert.Equal(t, genieerrors.KindPrecondition, genieerrors.KindFromError(err))
	apps, err := s.ListApplications(ctx, repository.Filter{})
	require.NoError(t, err)
	assert.Len(t, apps, 2, "nothing is deleted when one application is still in use")

	require.NoError(t, s.DeleteAllCommands(ctx))
	require.NoError(t, s.DeleteAllApplications(ctx))
	c, err := s.GetCluster(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, c.CommandIds())
	require.NoError(t, s.DeleteAllClusters(ctx))

	apps, err = s.ListApplications(ctx, repository.Filter{})
	require.NoError(t, err)
	assert.Empty(t, apps)
	commands, err := s.ListCommands(ctx, repository.Filter{})
	require.NoError(t, err)
	assert.Empty(t, commands)
	clusters, err := s.ListClusters(ctx, repository.Filter{})
	require.NoError(t, err)
	assert.Empty(t, clusters)
}
