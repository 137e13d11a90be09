package relationship

import (
	"strings"

	"k8s.io/utils/clock"

	"github.com/G-Research/genie/internal/broker/model"
	"github.com/G-Research/genie/internal/broker/repository"
	"github.com/G-Research/genie/internal/common/genieerrors"
)

// session caches the resources loaded by one operation so that a resource reached twice,
// e.g. a command that is both in a cluster's current and new list, is changed and saved once.
type session struct {
	txn   repository.Txn
	clock clock.PassiveClock

	applicationCache map[string]*model.Application
	commandCache     map[string]*model.Command
	clusterCache     map[string]*model.Cluster

	// Changed resources in the order they were first changed, keyed by kind and id in dirty.
	order []model.Entity
	dirty map[string]bool
}

func (s *session) application(id string) (*model.Application, error) {
	if err := checkId(model.KindApplication, id); err != nil {
		return nil, err
	}
	if app, ok := s.applicationCache[id]; ok {
		return app, nil
	}
	app, err := s.txn.GetApplication(id)
	if err != nil {
		return nil, err
	}
	s.applicationCache[id] = app
	return app, nil
}

func (s *session) command(id string) (*model.Command, error) {
	if err := checkId(model.KindCommand, id); err != nil {
		return nil, err
	}
	if cmd, ok := s.commandCache[id]; ok {
		return cmd, nil
	}
	cmd, err := s.txn.GetCommand(id)
	if err != nil {
		return nil, err
	}
	s.commandCache[id] = cmd
	return cmd, nil
}

func (s *session) cluster(id string) (*model.Cluster, error) {
	if err := checkId(model.KindCluster, id); err != nil {
		return nil, err
	}
	if cluster, ok := s.clusterCache[id]; ok {
		return cluster, nil
	}
	cluster, err := s.txn.GetCluster(id)
	if err != nil {
		return nil, err
	}
	s.clusterCache[id] = cluster
	return cluster, nil
}

func (s *session) commands(ids []string) ([]*model.Command, error) {
	result := make([]*model.Command, len(ids))
	for i, id := range ids {
		cmd, err := s.command(id)
		if err != nil {
			return nil, err
		}
		result[i] = cmd
	}
	return result, nil
}

func (s *session) clusters(ids []string) ([]*model.Cluster, error) {
	result := make([]*model.Cluster, len(ids))
	for i, id := range ids {
		cluster, err := s.cluster(id)
		if err != nil {
			return nil, err
		}
		result[i] = cluster
	}
	return result, nil
}

// changed marks resources to be saved by flush. Nil pointers are ignored.
func (s *session) changed(entities ...model.Entity) {
	for _, e := range entities {
		if isNil(e) {
			continue
		}
		key := string(e.Kind()) + "/" + e.GetResource().Id
		if !s.dirty[key] {
			s.dirty[key] = true
			s.order = append(s.order, e)
		}
	}
}

func (s *session) flush() error {
	now := s.clock.Now()
	for _, e := range s.order {
		e.GetResource().Touch(now)
		var err error
		switch v := e.(type) {
		case *model.Application:
			err = s.txn.SaveApplication(v)
		case *model.Command:
			err = s.txn.SaveCommand(v)
		case *model.Cluster:
			err = s.txn.SaveCluster(v)
		}
		if err != nil {
			return err
		}
	}
	s.order = nil
	s.dirty = make(map[string]bool)
	return nil
}

func isNil(e model.Entity) bool {
	switch v := e.(type) {
	case nil:
		return true
	case *model.Application:
		return v == nil
	case *model.Command:
		return v == nil
	case *model.Cluster:
		return v == nil
	}
	return false
}

func checkId(kind model.Kind, id string) error {
	if strings.TrimSpace(id) == "" {
		return &genieerrors.ErrInvalidArgument{
			Name:    string(kind) + "Id",
			Value:   id,
			Message: "an id is required",
		}
	}
	return nil
}
