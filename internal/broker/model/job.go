package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/G-Research/genie/internal/common/genieerrors"
)

// DefaultJobVersion is used when a job is submitted without a version.
const DefaultJobVersion = "NA"

// Job is a request to run a command on a cluster, together with its execution state.
type Job struct {
	Resource
	CommandArgs string    `json:"commandArgs" validate:"notblank"`
	Status      JobStatus `json:"status"`
	StatusMsg   string    `json:"statusMsg,omitempty"`
	// Started and Finished are zero until the job reaches the corresponding state.
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`

	// Ordered cluster criteria; evaluated first match wins.
	ClusterCriteria []TagSet `json:"clusterCriteria"`
	CommandCriteria TagSet   `json:"commandCriteria"`
	// The criteria set that produced a match, recorded for debugging. Empty until the job is resolved.
	ChosenClusterCriteria TagSet `json:"chosenClusterCriteria,omitempty"`

	ExecutionClusterId   string `json:"executionClusterId,omitempty"`
	ExecutionClusterName string `json:"executionClusterName,omitempty"`
	CommandId            string `json:"commandId,omitempty"`
	CommandName          string `json:"commandName,omitempty"`
}

func (j *Job) Kind() Kind {
	return KindJob
}

// Validate checks the job's fields. A job without a status is valid: the state machine assigns INIT on submission.
func (j *Job) Validate() error {
	var errs []error
	if j.Status != "" && !j.Status.IsValid() {
		errs = append(errs, invalidStatus(KindJob, string(j.Status)))
	}
	errs = append(errs, ValidateClusterCriteria(j.ClusterCriteria), ValidateCommandCriteria(j.CommandCriteria))
	return validateEntity(j, errs...)
}

func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	c := *j
	c.Resource = j.Resource.clone()
	c.ClusterCriteria = CloneTagSets(j.ClusterCriteria)
	c.CommandCriteria = j.CommandCriteria.Clone()
	if j.ChosenClusterCriteria != nil {
		c.ChosenClusterCriteria = j.ChosenClusterCriteria.Clone()
	}
	return &c
}

type jobJSON struct {
	resourceJSON
	CommandArgs           string    `json:"commandArgs"`
	Status                JobStatus `json:"status"`
	StatusMsg             string    `json:"statusMsg,omitempty"`
	Started               time.Time `json:"started"`
	Finished              time.Time `json:"finished"`
	ClusterCriteria       []TagSet  `json:"clusterCriteria"`
	CommandCriteria       TagSet    `json:"commandCriteria"`
	ChosenClusterCriteria TagSet    `json:"chosenClusterCriteria,omitempty"`
	ExecutionClusterId    string    `json:"executionClusterId,omitempty"`
	ExecutionClusterName  string    `json:"executionClusterName,omitempty"`
	CommandId             string    `json:"commandId,omitempty"`
	CommandName           string    `json:"commandName,omitempty"`
}

func (j Job) MarshalJSON() ([]byte, error) {
	return json.Marshal(jobJSON{
		resourceJSON:          j.Resource.toJSON(),
		CommandArgs:           j.CommandArgs,
		Status:                j.Status,
		StatusMsg:             j.StatusMsg,
		Started:               j.Started,
		Finished:              j.Finished,
		ClusterCriteria:       j.ClusterCriteria,
		CommandCriteria:       j.CommandCriteria,
		ChosenClusterCriteria: j.ChosenClusterCriteria,
		ExecutionClusterId:    j.ExecutionClusterId,
		ExecutionClusterName:  j.ExecutionClusterName,
		CommandId:             j.CommandId,
		CommandName:           j.CommandName,
	})
}

func (j *Job) UnmarshalJSON(data []byte) error {
	var v jobJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*j = Job{
		Resource:              v.resourceJSON.toResource(),
		CommandArgs:           v.CommandArgs,
		Status:                v.Status,
		StatusMsg:             v.StatusMsg,
		Started:               v.Started,
		Finished:              v.Finished,
		ClusterCriteria:       v.ClusterCriteria,
		CommandCriteria:       v.CommandCriteria,
		ChosenClusterCriteria: v.ChosenClusterCriteria,
		ExecutionClusterId:    v.ExecutionClusterId,
		ExecutionClusterName:  v.ExecutionClusterName,
		CommandId:             v.CommandId,
		CommandName:           v.CommandName,
	}
	return nil
}

// ValidateClusterCriteria requires a non-empty ordered list of non-empty tag sets.
func ValidateClusterCriteria(criteria []TagSet) error {
	if len(criteria) == 0 {
		return &genieerrors.ErrInvalidArgument{
			Name:    "clusterCriteria",
			Value:   "",
			Message: "at least one cluster criteria set is required",
		}
	}
	for i, set := range criteria {
		if set.IsEmpty() {
			return &genieerrors.ErrInvalidArgument{
				Name:    "clusterCriteria",
				Value:   fmt.Sprintf("[%d]", i),
				Message: "cluster criteria sets must contain at least one tag",
			}
		}
	}
	return nil
}

// ValidateCommandCriteria requires at least one command tag.
func ValidateCommandCriteria(criteria TagSet) error {
	if criteria.IsEmpty() {
		return &genieerrors.ErrInvalidArgument{
			Name:    "commandCriteria",
			Value:   "",
			Message: "at least one command criteria tag is required",
		}
	}
	return nil
}
