package service

import (
	"fmt"
	"strings"

	"github.com/G-Research/genie/internal/broker/model"
	"github.com/G-Research/genie/internal/broker/relationship"
	"github.com/G-Research/genie/internal/broker/repository"
	"github.com/G-Research/genie/internal/common/brokercontext"
	"github.com/G-Research/genie/internal/common/genieerrors"
	"github.com/G-Research/genie/internal/common/util"
)

// resource is implemented by *model.Application, *model.Command and *model.Cluster.
type resource interface {
	model.Entity
	Validate() error
}

// CreateApplication stores a new application. An id is generated if none is given.
func (s *Service) CreateApplication(ctx *brokercontext.Context, app *model.Application) (*model.Application, error) {
	return create(s, ctx, app, nil)
}

// CreateCommand stores a new command, depending on applicationId unless it is empty.
func (s *Service) CreateCommand(ctx *brokercontext.Context, cmd *model.Command, applicationId string) (*model.Command, error) {
	var link func(m *relationship.Manager) error
	if applicationId != "" {
		link = func(m *relationship.Manager) error {
			_, err := m.SetApplicationForCommand(cmd.Id, applicationId)
			return err
		}
	}
	return create(s, ctx, cmd, link)
}

// CreateCluster stores a new cluster with commandIds registered on it, in order.
func (s *Service) CreateCluster(ctx *brokercontext.Context, cluster *model.Cluster, commandIds []string) (*model.Cluster, error) {
	var link func(m *relationship.Manager) error
	if len(commandIds) > 0 {
		link = func(m *relationship.Manager) error {
			_, err := m.SetCommandsForCluster(cluster.Id, commandIds)
			return err
		}
	}
	return create(s, ctx, cluster, link)
}

func (s *Service) GetApplication(ctx *brokercontext.Context, id string) (*model.Application, error) {
	return get[*model.Application](s, ctx, model.KindApplication, id)
}

func (s *Service) GetCommand(ctx *brokercontext.Context, id string) (*model.Command, error) {
	return get[*model.Command](s, ctx, model.KindCommand, id)
}

func (s *Service) GetCluster(ctx *brokercontext.Context, id string) (*model.Cluster, error) {
	return get[*model.Cluster](s, ctx, model.KindCluster, id)
}

func (s *Service) ListApplications(ctx *brokercontext.Context, filter repository.Filter) (result []*model.Application, err error) {
	err = s.view(ctx, "list_applications", func(ctx *brokercontext.Context, txn repository.Txn) error {
		result, err = txn.ListApplications(filter)
		return err
	})
	return result, err
}

func (s *Service) ListCommands(ctx *brokercontext.Context, filter repository.Filter) (result []*model.Command, err error) {
	err = s.view(ctx, "list_commands", func(ctx *brokercontext.Context, txn repository.Txn) error {
		result, err = txn.ListCommands(filter)
		return err
	})
	return result, err
}

func (s *Service) ListClusters(ctx *brokercontext.Context, filter repository.Filter) (result []*model.Cluster, err error) {
	err = s.view(ctx, "list_clusters", func(ctx *brokercontext.Context, txn repository.Txn) error {
		result, err = txn.ListClusters(filter)
		return err
	})
	return result, err
}

// UpdateApplication replaces the stored application with app. Links to commands are kept.
func (s *Service) UpdateApplication(ctx *brokercontext.Context, id string, app *model.Application) (*model.Application, error) {
	return replace(s, ctx, id, app)
}

// UpdateCommand replaces the stored command with cmd. Links to its application and clusters are kept.
func (s *Service) UpdateCommand(ctx *brokercontext.Context, id string, cmd *model.Command) (*model.Command, error) {
	return replace(s, ctx, id, cmd)
}

// UpdateCluster replaces the stored cluster with cluster. Its commands are kept.
func (s *Service) UpdateCluster(ctx *brokercontext.Context, id string, cluster *model.Cluster) (*model.Cluster, error) {
	return replace(s, ctx, id, cluster)
}

// DeleteApplication fails with *genieerrors.ErrPrecondition while commands depend on the application.
func (s *Service) DeleteApplication(ctx *brokercontext.Context, id string) error {
	return s.remove(ctx, model.KindApplication, []string{id})
}

// DeleteCommand detaches the command from its application and clusters and deletes it.
func (s *Service) DeleteCommand(ctx *brokercontext.Context, id string) error {
	return s.remove(ctx, model.KindCommand, []string{id})
}

// DeleteCluster detaches the cluster from its commands and deletes it.
func (s *Service) DeleteCluster(ctx *brokercontext.Context, id string) error {
	return s.remove(ctx, model.KindCluster, []string{id})
}

// DeleteAllApplications deletes every application, or none if any of them still has commands.
func (s *Service) DeleteAllApplications(ctx *brokercontext.Context) error {
	return s.remove(ctx, model.KindApplication, nil)
}

func (s *Service) DeleteAllCommands(ctx *brokercontext.Context) error {
	return s.remove(ctx, model.KindCommand, nil)
}

func (s *Service) DeleteAllClusters(ctx *brokercontext.Context) error {
	return s.remove(ctx, model.KindCluster, nil)
}

func create[T resource](s *Service, ctx *brokercontext.Context, e T, link func(m *relationship.Manager) error) (T, error) {
	var result T
	err := s.update(ctx, "create_"+string(e.Kind()), func(ctx *brokercontext.Context, txn repository.Txn) error {
		r := e.GetResource()
		if strings.TrimSpace(r.Id) == "" {
			r.Id = util.NewUUID()
		}
		if err := e.Validate(); err != nil {
			return err
		}
		if _, err := model.ApplyIdentityTags(e, r.Tags()); err != nil {
			return err
		}
		model.ClearLinks(e)
		now := s.clock.Now()
		r.SetCreated(now)
		r.Touch(now)
		r.EntityVersion = 0
		if err := saveEntity(txn, e); err != nil {
			return err
		}
		if link != nil {
			if err := link(relationship.NewManager(txn, s.clock)); err != nil {
				return err
			}
		}
		stored, err := getEntity(txn, e.Kind(), r.Id)
		if err != nil {
			return err
		}
		result = stored.(T)
		ctx.Log.Infof("created %s %s", e.Kind(), r.Id)
		return nil
	})
	return result, err
}

func get[T resource](s *Service, ctx *brokercontext.Context, kind model.Kind, id string) (T, error) {
	var result T
	err := s.view(ctx, "get_"+string(kind), func(ctx *brokercontext.Context, txn repository.Txn) error {
		e, err := getEntity(txn, kind, id)
		if err != nil {
			return err
		}
		result = e.(T)
		return nil
	})
	return result, err
}

// replace stores e in place of the resource with the given id. The stored version is used for the conflict check
// unless e carries one. The created time can only move backwards.
func replace[T resource](s *Service, ctx *brokercontext.Context, id string, e T) (T, error) {
	var result T
	err := s.update(ctx, "update_"+string(e.Kind()), func(ctx *brokercontext.Context, txn repository.Txn) error {
		r := e.GetResource()
		if r.Id == "" {
			r.Id = id
		}
		if r.Id != id {
			return &genieerrors.ErrConstraint{
				Type:    string(e.Kind()),
				Value:   id,
				Message: fmt.Sprintf("id %q in the request body does not match", r.Id),
			}
		}
		if err := e.Validate(); err != nil {
			return err
		}
		stored, err := getEntity(txn, e.Kind(), id)
		if err != nil {
			return err
		}
		// A resource read back from the store carries its own identity tags.
		userTags := model.WithoutIdentityTags(r.Tags(), id, stored.GetResource().Name, r.Name)
		if _, err := model.ApplyIdentityTags(e, userTags); err != nil {
			return err
		}
		model.CopyLinks(e, stored)
		r.SetCreated(stored.GetResource().Created)
		if r.EntityVersion == 0 {
			r.EntityVersion = stored.GetResource().EntityVersion
		}
		r.Touch(s.clock.Now())
		if err := saveEntity(txn, e); err != nil {
			return err
		}
		result = e
		ctx.Log.Infof("updated %s %s", e.Kind(), id)
		return nil
	})
	return result, err
}

// remove deletes the resources with the given ids, or every resource of the kind if ids is nil,
// after removing their links.
func (s *Service) remove(ctx *brokercontext.Context, kind model.Kind, ids []string) error {
	operation := "delete_" + string(kind)
	if ids == nil {
		operation = "delete_all_" + string(kind)
	}
	return s.update(ctx, operation, func(ctx *brokercontext.Context, txn repository.Txn) error {
		if ids == nil {
			all, err := listIds(txn, kind)
			if err != nil {
				return err
			}
			ids = all
		}
		m := relationship.NewManager(txn, s.clock)
		for _, id := range ids {
			var err error
			switch kind {
			case model.KindApplication:
				err = m.CheckApplicationDeletable(id)
			case model.KindCommand:
				err = m.DetachCommand(id)
			case model.KindCluster:
				err = m.DetachCluster(id)
			}
			if err != nil {
				return err
			}
			if err := txn.Delete(kind, id); err != nil {
				return err
			}
		}
		ctx.Log.Infof("deleted %d %s resources", len(ids), kind)
		return nil
	})
}

func listIds(txn repository.Txn, kind model.Kind) ([]string, error) {
	var entities []model.Entity
	switch kind {
	case model.KindApplication:
		apps, err := txn.ListApplications(repository.Filter{})
		if err != nil {
			return nil, err
		}
		for _, app := range apps {
			entities = append(entities, app)
		}
	case model.KindCommand:
		commands, err := txn.ListCommands(repository.Filter{})
		if err != nil {
			return nil, err
		}
		for _, cmd := range commands {
			entities = append(entities, cmd)
		}
	case model.KindCluster:
		clusters, err := txn.ListClusters(repository.Filter{})
		if err != nil {
			return nil, err
		}
		for _, cluster := range clusters {
			entities = append(entities, cluster)
		}
	}
	ids := make([]string, len(entities))
	for i, e := range entities {
		ids[i] = e.GetResource().Id
	}
	return ids, nil
}

func getEntity(txn repository.Txn, kind model.Kind, id string) (resource, error) {
	switch kind {
	case model.KindApplication:
		app, err := txn.GetApplication(id)
		if err != nil {
			return nil, err
		}
		return app, nil
	case model.KindCommand:
		cmd, err := txn.GetCommand(id)
		if err != nil {
			return nil, err
		}
		return cmd, nil
	case model.KindCluster:
		cluster, err := txn.GetCluster(id)
		if err != nil {
			return nil, err
		}
		return cluster, nil
	}
	return nil, unsupportedKind(kind)
}

func saveEntity(txn repository.Txn, e resource) error {
	switch v := e.(type) {
	case *model.Application:
		return txn.SaveApplication(v)
	case *model.Command:
		return txn.SaveCommand(v)
	case *model.Cluster:
		return txn.SaveCluster(v)
	}
	return unsupportedKind(e.Kind())
}

func unsupportedKind(kind model.Kind) error {
	return &genieerrors.ErrInvalidArgument{
		Name:    "kind",
		Value:   string(kind),
		Message: "expected one of application, command or cluster",
	}
}
