package service

import (
	"golang.org/x/exp/slices"

	"github.com/G-Research/genie/internal/broker/metrics"
	"github.com/G-Research/genie/internal/broker/model"
	"github.com/G-Research/genie/internal/broker/relationship"
	"github.com/G-Research/genie/internal/broker/repository"
	"github.com/G-Research/genie/internal/common/brokercontext"
	"github.com/G-Research/genie/internal/common/genieerrors"
)

// SetApplicationForCommand makes the command depend on the application and returns the application.
func (s *Service) SetApplicationForCommand(ctx *brokercontext.Context, commandId string, applicationId string) (*model.Application, error) {
	if applicationId == "" {
		return nil, &genieerrors.ErrInvalidArgument{Name: "applicationId", Value: "", Message: "an id is required"}
	}
	var result *model.Application
	err := s.relate(ctx, metrics.OperationSetApplication, func(m *relationship.Manager, txn repository.Txn) error {
		if _, err := m.SetApplicationForCommand(commandId, applicationId); err != nil {
			return err
		}
		app, err := txn.GetApplication(applicationId)
		result = app
		return err
	})
	return result, err
}

// GetApplicationForCommand fails with *genieerrors.ErrNotFound if the command has no application.
func (s *Service) GetApplicationForCommand(ctx *brokercontext.Context, commandId string) (*model.Application, error) {
	var result *model.Application
	err := s.view(ctx, "get_application_for_command", func(ctx *brokercontext.Context, txn repository.Txn) error {
		cmd, err := txn.GetCommand(commandId)
		if err != nil {
			return err
		}
		if cmd.ApplicationId() == "" {
			return &genieerrors.ErrNotFound{
				Type:    string(model.KindApplication),
				Value:   "",
				Message: "command " + commandId + " has no application",
			}
		}
		result, err = txn.GetApplication(cmd.ApplicationId())
		return err
	})
	return result, err
}

func (s *Service) RemoveApplicationForCommand(ctx *brokercontext.Context, commandId string) error {
	return s.relate(ctx, metrics.OperationSetApplication, func(m *relationship.Manager, _ repository.Txn) error {
		_, err := m.SetApplicationForCommand(commandId, "")
		return err
	})
}

// GetCommandsForApplication returns the commands depending on the application, sorted by id, keeping only those
// in one of statuses if any are given.
func (s *Service) GetCommandsForApplication(ctx *brokercontext.Context, applicationId string, statuses ...model.CommandStatus) ([]*model.Command, error) {
	var result []*model.Command
	err := s.view(ctx, "get_commands_for_application", func(ctx *brokercontext.Context, txn repository.Txn) error {
		app, err := txn.GetApplication(applicationId)
		if err != nil {
			return err
		}
		for _, id := range app.CommandIds() {
			cmd, err := txn.GetCommand(id)
			if err != nil {
				return err
			}
			if len(statuses) == 0 || slices.Contains(statuses, cmd.Status) {
				result = append(result, cmd)
			}
		}
		return nil
	})
	return result, err
}

// AddCommandsForCluster appends commands to the cluster and returns all of its commands in order.
func (s *Service) AddCommandsForCluster(ctx *brokercontext.Context, clusterId string, commandIds []string) ([]*model.Command, error) {
	return s.relateCommands(ctx, metrics.OperationAddCommands, clusterId, func(m *relationship.Manager) error {
		_, err := m.AddCommandsToCluster(clusterId, commandIds)
		return err
	})
}

// SetCommandsForCluster replaces the commands of the cluster and returns them in order.
func (s *Service) SetCommandsForCluster(ctx *brokercontext.Context, clusterId string, commandIds []string) ([]*model.Command, error) {
	return s.relateCommands(ctx, metrics.OperationSetCommands, clusterId, func(m *relationship.Manager) error {
		_, err := m.SetCommandsForCluster(clusterId, commandIds)
		return err
	})
}

// RemoveCommandForCluster removes one command from the cluster and returns the remaining ones in order.
func (s *Service) RemoveCommandForCluster(ctx *brokercontext.Context, clusterId string, commandId string) ([]*model.Command, error) {
	return s.relateCommands(ctx, metrics.OperationRemoveCommand, clusterId, func(m *relationship.Manager) error {
		_, err := m.RemoveCommandFromCluster(clusterId, commandId)
		return err
	})
}

func (s *Service) RemoveAllCommandsForCluster(ctx *brokercontext.Context, clusterId string) error {
	_, err := s.relateCommands(ctx, metrics.OperationRemoveAllCommands, clusterId, func(m *relationship.Manager) error {
		_, err := m.RemoveAllCommandsFromCluster(clusterId)
		return err
	})
	return err
}

// GetCommandsForCluster returns the commands of the cluster in order, keeping only those in one of statuses if
// any are given.
func (s *Service) GetCommandsForCluster(ctx *brokercontext.Context, clusterId string, statuses ...model.CommandStatus) ([]*model.Command, error) {
	var result []*model.Command
	err := s.view(ctx, "get_commands_for_cluster", func(ctx *brokercontext.Context, txn repository.Txn) (err error) {
		result, err = txn.FindCommands(clusterId, statuses...)
		return err
	})
	return result, err
}

// GetClustersForCommand returns the clusters the command is registered with, sorted by id, keeping only those
// in one of statuses if any are given.
func (s *Service) GetClustersForCommand(ctx *brokercontext.Context, commandId string, statuses ...model.ClusterStatus) ([]*model.Cluster, error) {
	var result []*model.Cluster
	err := s.view(ctx, "get_clusters_for_command", func(ctx *brokercontext.Context, txn repository.Txn) error {
		cmd, err := txn.GetCommand(commandId)
		if err != nil {
			return err
		}
		for _, id := range cmd.ClusterIds() {
			cluster, err := txn.GetCluster(id)
			if err != nil {
				return err
			}
			if len(statuses) == 0 || slices.Contains(statuses, cluster.Status) {
				result = append(result, cluster)
			}
		}
		return nil
	})
	return result, err
}

// relate runs a relationship change and counts it once committed.
func (s *Service) relate(ctx *brokercontext.Context, operation string, fn func(m *relationship.Manager, txn repository.Txn) error) error {
	err := s.update(ctx, operation, func(ctx *brokercontext.Context, txn repository.Txn) error {
		return fn(relationship.NewManager(txn, s.clock), txn)
	})
	if err == nil {
		s.metrics.ReportRelationshipChange(operation)
	}
	return err
}

func (s *Service) relateCommands(ctx *brokercontext.Context, operation string, clusterId string, fn func(m *relationship.Manager) error) ([]*model.Command, error) {
	var result []*model.Command
	err := s.relate(ctx, operation, func(m *relationship.Manager, txn repository.Txn) error {
		if err := fn(m); err != nil {
			return err
		}
		commands, err := txn.FindCommands(clusterId)
		result = commands
		return err
	})
	return result, err
}
