package model

import (
	"encoding/json"
)

// Command is an executable that can run on the clusters it is registered with, e.g. "pig" or "spark-submit".
type Command struct {
	Resource
	Status     CommandStatus `json:"status"`
	Executable string        `json:"executable" validate:"notblank"`
	JobType    string        `json:"jobType,omitempty"`

	// Id of the application the command depends on; empty when it has none.
	applicationId string
	// Ids of the clusters that list this command.
	clusterIds StringSet
}

func (c *Command) Kind() Kind {
	return KindCommand
}

// ApplicationId returns the id of the application this command depends on, or "" if it has none.
func (c *Command) ApplicationId() string {
	return c.applicationId
}

// ClusterIds returns the sorted ids of the clusters this command is registered with.
func (c *Command) ClusterIds() []string {
	return c.clusterIds.Slice()
}

func (c *Command) Validate() error {
	var statusErr error
	if !c.Status.IsValid() {
		statusErr = invalidStatus(KindCommand, string(c.Status))
	}
	return validateEntity(c, statusErr)
}

func (c *Command) Clone() *Command {
	if c == nil {
		return nil
	}
	return &Command{
		Resource:      c.Resource.clone(),
		Status:        c.Status,
		Executable:    c.Executable,
		JobType:       c.JobType,
		applicationId: c.applicationId,
		clusterIds:    c.clusterIds.Clone(),
	}
}

type commandJSON struct {
	resourceJSON
	Status        CommandStatus `json:"status"`
	Executable    string        `json:"executable"`
	JobType       string        `json:"jobType,omitempty"`
	ApplicationId string        `json:"applicationId,omitempty"`
	ClusterIds    StringSet     `json:"clusterIds"`
}

func (c Command) MarshalJSON() ([]byte, error) {
	return json.Marshal(commandJSON{
		resourceJSON:  c.Resource.toJSON(),
		Status:        c.Status,
		Executable:    c.Executable,
		JobType:       c.JobType,
		ApplicationId: c.applicationId,
		ClusterIds:    c.clusterIds,
	})
}

func (c *Command) UnmarshalJSON(data []byte) error {
	var j commandJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	*c = Command{
		Resource:      j.resourceJSON.toResource(),
		Status:        j.Status,
		Executable:    j.Executable,
		JobType:       j.JobType,
		applicationId: j.ApplicationId,
		clusterIds:    j.ClusterIds.Clone(),
	}
	return nil
}
