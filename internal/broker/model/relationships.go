package model

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/G-Research/genie/internal/common/genieerrors"
)

// The functions in this file are the only way to change the links between applications, commands and clusters.
// Each updates both sides of a link in one call, so that after it returns:
//   - a command is in cluster.CommandIds() if and only if the cluster is in command.ClusterIds()
//   - a command's ApplicationId() is a if and only if the command is in a.CommandIds()
// Callers must save every entity passed in within the same transaction.

// SetCommandApplication makes cmd depend on next, or on nothing if next is nil.
// prev must be the application cmd currently depends on (nil if it has none); it loses cmd from its reverse set.
func SetCommandApplication(cmd *Command, prev, next *Application) error {
	if prev == nil && cmd.applicationId != "" {
		return &genieerrors.ErrConstraint{
			Type:    string(KindCommand),
			Value:   cmd.Id,
			Message: fmt.Sprintf("current application %s was not supplied", cmd.applicationId),
		}
	}
	if prev != nil && prev.Id != cmd.applicationId {
		return &genieerrors.ErrConstraint{
			Type:    string(KindCommand),
			Value:   cmd.Id,
			Message: fmt.Sprintf("command depends on application %q, not %q", cmd.applicationId, prev.Id),
		}
	}
	if prev != nil {
		prev.commandIds.Remove(cmd.Id)
	}
	if next == nil {
		cmd.applicationId = ""
		return nil
	}
	cmd.applicationId = next.Id
	next.commandIds = withMember(next.commandIds, cmd.Id)
	return nil
}

// AttachCommand appends cmd to the cluster's command order and records the cluster on cmd.
// A command that is already attached keeps its position. Returns true if the cluster's list changed.
func AttachCommand(cluster *Cluster, cmd *Command) bool {
	cmd.clusterIds = withMember(cmd.clusterIds, cluster.Id)
	if slices.Contains(cluster.commandIds, cmd.Id) {
		return false
	}
	cluster.commandIds = append(slices.Clone(cluster.commandIds), cmd.Id)
	return true
}

// DetachCommand removes the link between cluster and cmd on both sides. Returns true if the cluster's list changed.
func DetachCommand(cluster *Cluster, cmd *Command) bool {
	cmd.clusterIds.Remove(cluster.Id)
	i := slices.Index(cluster.commandIds, cmd.Id)
	if i < 0 {
		return false
	}
	cluster.commandIds = slices.Delete(slices.Clone(cluster.commandIds), i, i+1)
	return true
}

// ReplaceCommands detaches the cluster from every command in current and then attaches each command of next,
// in order. current must hold every command the cluster lists. Duplicates in next keep their first position.
// The check runs before anything is changed.
func ReplaceCommands(cluster *Cluster, current, next []*Command) error {
	supplied := make(StringSet, len(current))
	for _, cmd := range current {
		supplied.Add(cmd.Id)
	}
	for _, id := range cluster.commandIds {
		if !supplied.Contains(id) {
			return &genieerrors.ErrConstraint{
				Type:    string(KindCluster),
				Value:   cluster.Id,
				Message: fmt.Sprintf("current command %s was not supplied", id),
			}
		}
	}
	for _, cmd := range current {
		DetachCommand(cluster, cmd)
	}
	cluster.commandIds = nil
	for _, cmd := range next {
		AttachCommand(cluster, cmd)
	}
	return nil
}

func withMember(s StringSet, value string) StringSet {
	if s == nil {
		s = NewStringSet()
	}
	s.Add(value)
	return s
}

// CopyLinks replaces the links held by dst with copies of those held by src, which must be of the same kind.
// It is used when an update replaces a stored entity, since links are never changed by an update.
func CopyLinks(dst, src Entity) {
	switch d := dst.(type) {
	case *Application:
		d.commandIds = src.(*Application).commandIds.Clone()
	case *Command:
		s := src.(*Command)
		d.applicationId = s.applicationId
		d.clusterIds = s.clusterIds.Clone()
	case *Cluster:
		d.commandIds = slices.Clone(src.(*Cluster).commandIds)
	}
}

// ClearLinks drops every link held by e. Links supplied with a new entity are ignored, they are only made
// through the functions above.
func ClearLinks(e Entity) {
	switch v := e.(type) {
	case *Application:
		v.commandIds = nil
	case *Command:
		v.applicationId = ""
		v.clusterIds = nil
	case *Cluster:
		v.commandIds = nil
	}
}
