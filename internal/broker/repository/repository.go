// Package repository defines the storage interface consumed by the broker and an in-memory implementation of it.
package repository

import (
	"context"

	"golang.org/x/exp/slices"

	"github.com/G-Research/genie/internal/broker/model"
)

// Store runs functions inside transactions.
// Everything done through the Txn passed to fn is committed together if fn returns nil, and discarded otherwise.
type Store interface {
	// View runs fn in a read-only transaction.
	View(ctx context.Context, fn func(Txn) error) error
	// Update runs fn in a read-write transaction.
	Update(ctx context.Context, fn func(Txn) error) error
}

// Txn gives access to stored resources within a single transaction.
// Entities returned are copies owned by the caller; changes are only stored by saving them.
type Txn interface {
	// Get* fail with *genieerrors.ErrNotFound if no resource has the id.
	GetApplication(id string) (*model.Application, error)
	GetCommand(id string) (*model.Command, error)
	GetCluster(id string) (*model.Cluster, error)
	GetJob(id string) (*model.Job, error)
	Exists(kind model.Kind, id string) (bool, error)

	// Save* insert the entity if its EntityVersion is zero and update it otherwise.
	// An insert fails with *genieerrors.ErrAlreadyExists if the id is taken. An update fails with
	// *genieerrors.ErrConflict unless the stored version equals EntityVersion. On success EntityVersion is
	// incremented in place.
	SaveApplication(application *model.Application) error
	SaveCommand(command *model.Command) error
	SaveCluster(cluster *model.Cluster) error
	SaveJob(job *model.Job) error
	// Delete fails with *genieerrors.ErrNotFound if no resource has the id.
	// It does not touch links held by other resources.
	Delete(kind model.Kind, id string) error

	// List* return matching resources sorted by id.
	ListApplications(filter Filter) ([]*model.Application, error)
	ListCommands(filter Filter) ([]*model.Command, error)
	ListClusters(filter Filter) ([]*model.Cluster, error)

	// FindClusters returns the clusters with the given status whose tags contain every tag in tags, sorted by id.
	FindClusters(status model.ClusterStatus, tags model.TagSet) ([]*model.Cluster, error)
	// FindCommands returns the commands of a cluster in the cluster's order, keeping only those in one of statuses.
	// All commands are returned if no statuses are given.
	FindCommands(clusterId string, statuses ...model.CommandStatus) ([]*model.Command, error)
}

// Filter restricts a listing. Zero-valued fields match everything.
type Filter struct {
	Name     string
	Statuses []string
	// Resources must carry every one of these tags.
	Tags model.TagSet
}

func (f Filter) Matches(name string, status string, tags model.TagSet) bool {
	if f.Name != "" && f.Name != name {
		return false
	}
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, status) {
		return false
	}
	return tags.ContainsAll(f.Tags)
}

// CommandStatusStrings converts statuses for use in a Filter.
func CommandStatusStrings(statuses []model.CommandStatus) []string {
	result := make([]string, len(statuses))
	for i, s := range statuses {
		result[i] = string(s)
	}
	return result
}
