// Package resolver picks the clusters, and the command on each, that can run a job.
package resolver

import (
	"golang.org/x/exp/slices"

	"github.com/G-Research/genie/internal/broker/model"
	"github.com/G-Research/genie/internal/common/brokercontext"
)

// Finder is the read-only query surface the resolver needs. repository.Txn implements it.
type Finder interface {
	FindClusters(status model.ClusterStatus, tags model.TagSet) ([]*model.Cluster, error)
	FindCommands(clusterId string, statuses ...model.CommandStatus) ([]*model.Command, error)
}

type Outcome string

const (
	// At least one cluster has an eligible command.
	OutcomeMatched Outcome = "matched"
	// No criteria set matched any UP cluster.
	OutcomeNoClusterMatch Outcome = "no_cluster_match"
	// A criteria set matched clusters but none of them has an eligible command.
	OutcomeNoCommandMatch Outcome = "no_command_match"
)

// Result is the outcome of a resolution. A miss is a Result with no clusters, not an error.
type Result struct {
	// Sorted by id.
	Clusters []*model.Cluster
	// The criteria set that produced Clusters; nil on a miss.
	ChosenCriteria model.TagSet
	// Zero-based position of ChosenCriteria in the cluster criteria; -1 on a miss.
	ChosenIndex int
	// For each cluster id in Clusters, the first eligible command in the cluster's command order.
	Candidates map[string]*model.Command
	Outcome    Outcome
}

// Matched reports whether any cluster was found.
func (r *Result) Matched() bool {
	return len(r.Clusters) > 0
}

// Candidate returns the command chosen for the cluster, or nil if the cluster is not part of the result.
func (r *Result) Candidate(clusterId string) *model.Command {
	return r.Candidates[clusterId]
}

type Resolver struct {
	finder Finder
}

func New(finder Finder) *Resolver {
	return &Resolver{finder: finder}
}

// Resolve evaluates clusterCriteria in order. The first set matched by UP clusters decides the result: those
// of its clusters that have an ACTIVE command carrying every tag in commandCriteria are returned, and if there
// are none the resolution ends in a miss without trying later sets.
func (r *Resolver) Resolve(ctx *brokercontext.Context, clusterCriteria []model.TagSet, commandCriteria model.TagSet) (*Result, error) {
	if err := model.ValidateClusterCriteria(clusterCriteria); err != nil {
		return nil, err
	}
	if err := model.ValidateCommandCriteria(commandCriteria); err != nil {
		return nil, err
	}

	for i, criteria := range clusterCriteria {
		clusters, err := r.finder.FindClusters(model.ClusterStatusUp, criteria)
		if err != nil {
			return nil, err
		}
		if len(clusters) == 0 {
			ctx.Log.Debugf("no cluster matches criteria %d %v", i, criteria.Slice())
			continue
		}

		result := &Result{ChosenIndex: -1, Candidates: make(map[string]*model.Command)}
		for _, cluster := range clusters {
			cmd, err := r.eligibleCommand(cluster.Id, commandCriteria)
			if err != nil {
				return nil, err
			}
			if cmd != nil {
				result.Clusters = append(result.Clusters, cluster)
				result.Candidates[cluster.Id] = cmd
			}
		}
		if !result.Matched() {
			ctx.Log.Debugf("criteria %d %v matched %d clusters without an eligible command", i, criteria.Slice(), len(clusters))
			result.Outcome = OutcomeNoCommandMatch
			return result, nil
		}
		slices.SortFunc(result.Clusters, func(a, b *model.Cluster) bool {
			return a.Id < b.Id
		})
		result.ChosenCriteria = criteria.Clone()
		result.ChosenIndex = i
		result.Outcome = OutcomeMatched
		return result, nil
	}
	return &Result{ChosenIndex: -1, Candidates: map[string]*model.Command{}, Outcome: OutcomeNoClusterMatch}, nil
}

func (r *Resolver) eligibleCommand(clusterId string, commandCriteria model.TagSet) (*model.Command, error) {
	commands, err := r.finder.FindCommands(clusterId, model.CommandStatusActive)
	if err != nil {
		return nil, err
	}
	for _, cmd := range commands {
		if cmd.Tags().ContainsAll(commandCriteria) {
			return cmd, nil
		}
	}
	return nil, nil
}

// Request is what a caller asks to resolve.
type Request struct {
	ClusterCriteria []model.TagSet
	CommandCriteria model.TagSet
}

