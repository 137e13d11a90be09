package service

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	clocktesting "k8s.io/utils/clock/testing"

	"github.com/G-Research/genie/internal/broker/configuration"
	"github.com/G-Research/genie/internal/broker/metrics"
	"github.com/G-Research/genie/internal/broker/model"
	"github.com/G-Research/genie/internal/broker/repository"
)

var testTime = time.Date(2022, 12, 1, 10, 0, 0, 0, time.UTC)

type testService struct {
	*Service
	clock    *clocktesting.FakeClock
	registry *prometheus.Registry
}

func newTestService(t *testing.T, jobs configuration.JobsConfig) *testService {
	store, err := repository.NewMemDbStore()
	require.NoError(t, err)
	clock := clocktesting.NewFakeClock(testTime)
	m := metrics.New("genie")
	registry := prometheus.NewRegistry()
	require.NoError(t, registry.Register(m))
	return &testService{
		Service:  New(store, jobs, clock, m),
		clock:    clock,
		registry: registry,
	}
}

func application(name string, tags ...string) *model.Application {
	a := &model.Application{
		Resource: model.Resource{Name: name, User: "genie", Version: "1.0"},
		Status:   model.ApplicationStatusActive,
	}
	a.SetTags(model.NewTagSet(tags...))
	return a
}

func command(name string, status model.CommandStatus, tags ...string) *model.Command {
	c := &model.Command{
		Resource:   model.Resource{Name: name, User: "genie", Version: "1.0"},
		Status:     status,
		Executable: "/bin/" + name,
	}
	c.SetTags(model.NewTagSet(tags...))
	return c
}

func cluster(name string, status model.ClusterStatus, tags ...string) *model.Cluster {
	c := &model.Cluster{
		Resource:    model.Resource{Name: name, User: "genie", Version: "1.0"},
		Status:      status,
		ClusterType: "yarn",
	}
	c.SetTags(model.NewTagSet(tags...))
	return c
}

func withId[T model.Entity](e T, id string) T {
	e.GetResource().Id = id
	return e
}

func commandIds(commands []*model.Command) []string {
	ids := make([]string, len(commands))
	for i, cmd := range commands {
		ids[i] = cmd.Id
	}
	return ids
}

func clusterIds(clusters []*model.Cluster) []string {
	ids := make([]string, len(clusters))
	for i, c := range clusters {
		ids[i] = c.Id
	}
	return ids
}
