package model

import (
	"encoding/json"

	"golang.org/x/exp/slices"
)

// Cluster is a compute cluster jobs can be routed to. Commands are kept in the order they were registered;
// that order decides which command runs a job when several commands on the cluster qualify.
type Cluster struct {
	Resource
	Status      ClusterStatus `json:"status"`
	ClusterType string        `json:"clusterType" validate:"notblank"`

	commandIds []string
}

func (c *Cluster) Kind() Kind {
	return KindCluster
}

// CommandIds returns the ids of the commands registered with the cluster, in order.
func (c *Cluster) CommandIds() []string {
	return slices.Clone(c.commandIds)
}

func (c *Cluster) HasCommand(commandId string) bool {
	return slices.Contains(c.commandIds, commandId)
}

func (c *Cluster) Validate() error {
	var statusErr error
	if !c.Status.IsValid() {
		statusErr = invalidStatus(KindCluster, string(c.Status))
	}
	return validateEntity(c, statusErr)
}

func (c *Cluster) Clone() *Cluster {
	if c == nil {
		return nil
	}
	return &Cluster{
		Resource:    c.Resource.clone(),
		Status:      c.Status,
		ClusterType: c.ClusterType,
		commandIds:  slices.Clone(c.commandIds),
	}
}

type clusterJSON struct {
	resourceJSON
	Status      ClusterStatus `json:"status"`
	ClusterType string        `json:"clusterType"`
	CommandIds  []string      `json:"commandIds"`
}

func (c Cluster) MarshalJSON() ([]byte, error) {
	commandIds := c.commandIds
	if commandIds == nil {
		commandIds = []string{}
	}
	return json.Marshal(clusterJSON{
		resourceJSON: c.Resource.toJSON(),
		Status:       c.Status,
		ClusterType:  c.ClusterType,
		CommandIds:   commandIds,
	})
}

func (c *Cluster) UnmarshalJSON(data []byte) error {
	var j clusterJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	*c = Cluster{
		Resource:    j.resourceJSON.toResource(),
		Status:      j.Status,
		ClusterType: j.ClusterType,
		commandIds:  j.CommandIds,
	}
	return nil
}
