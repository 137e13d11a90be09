package geniectl

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/G-Research/genie/internal/broker/configuration"
	"github.com/G-Research/genie/internal/broker/model"
	"github.com/G-Research/genie/internal/broker/service"
	"github.com/G-Research/genie/internal/common/brokercontext"
)

// Fixture is a set of resources to load into a broker, read from a YAML or JSON file.
// Tags and criteria may be written either as lists or in their flat string form ("a,b" and "a,b|c").
type Fixture struct {
	Applications []ApplicationSpec
	Commands     []CommandSpec
	Clusters     []ClusterSpec
	Jobs         []JobSpec
}

type ResourceSpec struct {
	Id           string
	Name         string
	User         string
	Version      string
	Description  string
	SetupFile    string
	Tags         model.TagSet
	Configs      []string
	Dependencies []string
}

type ApplicationSpec struct {
	ResourceSpec `mapstructure:",squash"`
	Status       model.ApplicationStatus
}

type CommandSpec struct {
	ResourceSpec  `mapstructure:",squash"`
	Status        model.CommandStatus
	Executable    string
	JobType       string
	ApplicationId string
}

type ClusterSpec struct {
	ResourceSpec `mapstructure:",squash"`
	Status       model.ClusterStatus
	ClusterType  string
	// Registered in this order.
	CommandIds []string
}

type JobSpec struct {
	ResourceSpec    `mapstructure:",squash"`
	CommandArgs     string
	ClusterCriteria []model.TagSet
	CommandCriteria model.TagSet
}

// LoadFixture reads a fixture file. The format is taken from the file extension.
func LoadFixture(path string) (*Fixture, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.WithMessagef(err, "failed to read fixture %s", path)
	}
	fixture := &Fixture{}
	if err := v.Unmarshal(fixture, configuration.CustomHooks...); err != nil {
		return nil, errors.WithMessagef(err, "failed to unmarshal fixture %s", path)
	}
	return fixture, nil
}

// Load creates every resource of the fixture through svc: applications first, then commands and their
// applications, then clusters with their commands, then jobs. It stops at the first failure.
func (f *Fixture) Load(ctx *brokercontext.Context, svc *service.Service) error {
	for i, spec := range f.Applications {
		app := &model.Application{Resource: spec.resource(), Status: spec.Status}
		if _, err := svc.CreateApplication(ctx, app); err != nil {
			return errors.WithMessagef(err, "applications[%d]", i)
		}
	}
	for i, spec := range f.Commands {
		cmd := &model.Command{
			Resource:   spec.resource(),
			Status:     spec.Status,
			Executable: spec.Executable,
			JobType:    spec.JobType,
		}
		if _, err := svc.CreateCommand(ctx, cmd, spec.ApplicationId); err != nil {
			return errors.WithMessagef(err, "commands[%d]", i)
		}
	}
	for i, spec := range f.Clusters {
		cluster := &model.Cluster{Resource: spec.resource(), Status: spec.Status, ClusterType: spec.ClusterType}
		if _, err := svc.CreateCluster(ctx, cluster, spec.CommandIds); err != nil {
			return errors.WithMessagef(err, "clusters[%d]", i)
		}
	}
	for i, spec := range f.Jobs {
		job := &model.Job{
			Resource:        spec.resource(),
			CommandArgs:     spec.CommandArgs,
			ClusterCriteria: spec.ClusterCriteria,
			CommandCriteria: spec.CommandCriteria,
		}
		if _, err := svc.SubmitJob(ctx, job); err != nil {
			return errors.WithMessagef(err, "jobs[%d]", i)
		}
	}
	log.Debugf(
		"loaded %d applications, %d commands, %d clusters and %d jobs",
		len(f.Applications), len(f.Commands), len(f.Clusters), len(f.Jobs),
	)
	return nil
}

func (s ResourceSpec) resource() model.Resource {
	r := model.Resource{
		Id:          s.Id,
		Name:        s.Name,
		User:        s.User,
		Version:     s.Version,
		Description: s.Description,
		SetupFile:   s.SetupFile,
	}
	r.SetTags(s.Tags)
	r.SetConfigs(model.NewStringSet(s.Configs...))
	r.SetDependencies(model.NewStringSet(s.Dependencies...))
	return r
}
