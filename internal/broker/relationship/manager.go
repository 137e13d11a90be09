// Package relationship maintains the links between applications, commands and clusters by id.
//
// Every operation loads and checks all the resources it needs before changing any of them, then saves each changed
// resource through the transaction it was given. If anything fails the caller's transaction must be discarded,
// which a repository.Store does automatically when the function passed to Update returns the error.
package relationship

import (
	"fmt"
	"strings"

	"k8s.io/utils/clock"

	"github.com/G-Research/genie/internal/broker/model"
	"github.com/G-Research/genie/internal/broker/repository"
	"github.com/G-Research/genie/internal/common/genieerrors"
)

type Manager struct {
	txn   repository.Txn
	clock clock.PassiveClock
}

// NewManager returns a Manager working within txn, which must be a read-write transaction.
func NewManager(txn repository.Txn, clock clock.PassiveClock) *Manager {
	return &Manager{txn: txn, clock: clock}
}

// SetApplicationForCommand makes the command depend on the application, or on none if applicationId is empty,
// and returns the id of the application the command now depends on.
func (m *Manager) SetApplicationForCommand(commandId string, applicationId string) (string, error) {
	s := m.session()
	cmd, err := s.command(commandId)
	if err != nil {
		return "", err
	}
	if cmd.ApplicationId() == applicationId {
		return applicationId, nil
	}
	var prev, next *model.Application
	if cmd.ApplicationId() != "" {
		if prev, err = s.application(cmd.ApplicationId()); err != nil {
			return "", err
		}
	}
	if applicationId != "" {
		if next, err = s.application(applicationId); err != nil {
			return "", err
		}
	}
	if err := model.SetCommandApplication(cmd, prev, next); err != nil {
		return "", err
	}
	s.changed(cmd, prev, next)
	return cmd.ApplicationId(), s.flush()
}

// AddCommandsToCluster appends the commands to the cluster's list, skipping those already on it,
// and returns the cluster's command ids in order.
func (m *Manager) AddCommandsToCluster(clusterId string, commandIds []string) ([]string, error) {
	if len(commandIds) == 0 {
		return nil, &genieerrors.ErrInvalidArgument{
			Name:    "commandIds",
			Value:   commandIds,
			Message: "at least one command id is required",
		}
	}
	s := m.session()
	cluster, err := s.cluster(clusterId)
	if err != nil {
		return nil, err
	}
	commands, err := s.commands(commandIds)
	if err != nil {
		return nil, err
	}
	for _, cmd := range commands {
		if model.AttachCommand(cluster, cmd) {
			s.changed(cluster, cmd)
		}
	}
	return cluster.CommandIds(), s.flush()
}

// SetCommandsForCluster replaces the cluster's commands with commandIds, in order, and returns the resulting ids.
// A repeated id keeps its first position. An empty list removes every command.
func (m *Manager) SetCommandsForCluster(clusterId string, commandIds []string) ([]string, error) {
	s := m.session()
	cluster, err := s.cluster(clusterId)
	if err != nil {
		return nil, err
	}
	current, err := s.commands(cluster.CommandIds())
	if err != nil {
		return nil, err
	}
	next, err := s.commands(commandIds)
	if err != nil {
		return nil, err
	}
	if err := model.ReplaceCommands(cluster, current, next); err != nil {
		return nil, err
	}
	s.changed(cluster)
	for _, cmd := range current {
		s.changed(cmd)
	}
	for _, cmd := range next {
		s.changed(cmd)
	}
	return cluster.CommandIds(), s.flush()
}

// RemoveCommandFromCluster removes a single command from the cluster and returns the remaining ids.
// Removing a command that is not on the cluster is not an error.
func (m *Manager) RemoveCommandFromCluster(clusterId string, commandId string) ([]string, error) {
	s := m.session()
	cluster, err := s.cluster(clusterId)
	if err != nil {
		return nil, err
	}
	cmd, err := s.command(commandId)
	if err != nil {
		return nil, err
	}
	if model.DetachCommand(cluster, cmd) {
		s.changed(cluster, cmd)
	}
	return cluster.CommandIds(), s.flush()
}

func (m *Manager) RemoveAllCommandsFromCluster(clusterId string) ([]string, error) {
	return m.SetCommandsForCluster(clusterId, nil)
}

// DetachCommand removes every link to the command, from its application and from each cluster that lists it.
// It must be called before the command is deleted.
func (m *Manager) DetachCommand(commandId string) error {
	s := m.session()
	cmd, err := s.command(commandId)
	if err != nil {
		return err
	}
	var app *model.Application
	if cmd.ApplicationId() != "" {
		if app, err = s.application(cmd.ApplicationId()); err != nil {
			return err
		}
	}
	clusters, err := s.clusters(cmd.ClusterIds())
	if err != nil {
		return err
	}

	if err := model.SetCommandApplication(cmd, app, nil); err != nil {
		return err
	}
	s.changed(cmd, app)
	for _, cluster := range clusters {
		model.DetachCommand(cluster, cmd)
		s.changed(cluster)
	}
	return s.flush()
}

// DetachCluster removes the cluster from every command it lists. It must be called before the cluster is deleted.
func (m *Manager) DetachCluster(clusterId string) error {
	_, err := m.RemoveAllCommandsFromCluster(clusterId)
	return err
}

// CheckApplicationDeletable fails with *genieerrors.ErrPrecondition while any command depends on the application.
func (m *Manager) CheckApplicationDeletable(applicationId string) error {
	app, err := m.session().application(applicationId)
	if err != nil {
		return err
	}
	if app.HasCommands() {
		return &genieerrors.ErrPrecondition{
			Type:    string(model.KindApplication),
			Value:   applicationId,
			Message: fmt.Sprintf("commands %s depend on the application", strings.Join(app.CommandIds(), ", ")),
		}
	}
	return nil
}

func (m *Manager) session() *session {
	return &session{
		txn:              m.txn,
		clock:            m.clock,
		applicationCache: make(map[string]*model.Application),
		commandCache:     make(map[string]*model.Command),
		clusterCache:     make(map[string]*model.Cluster),
		dirty:            make(map[string]bool),
	}
}
