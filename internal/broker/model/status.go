package model

import (
	"strings"

	"golang.org/x/exp/slices"

	"github.com/G-Research/genie/internal/common/genieerrors"
)

type ApplicationStatus string

const (
	ApplicationStatusActive     ApplicationStatus = "ACTIVE"
	ApplicationStatusDeprecated ApplicationStatus = "DEPRECATED"
	ApplicationStatusInactive   ApplicationStatus = "INACTIVE"
)

var applicationStatuses = []ApplicationStatus{
	ApplicationStatusActive, ApplicationStatusDeprecated, ApplicationStatusInactive,
}

func ParseApplicationStatus(value string) (ApplicationStatus, error) {
	return parseStatus("application status", value, applicationStatuses)
}

func (s ApplicationStatus) IsValid() bool {
	return isKnownStatus(s, applicationStatuses)
}

type CommandStatus string

const (
	CommandStatusActive     CommandStatus = "ACTIVE"
	CommandStatusDeprecated CommandStatus = "DEPRECATED"
	CommandStatusInactive   CommandStatus = "INACTIVE"
)

var commandStatuses = []CommandStatus{
	CommandStatusActive, CommandStatusDeprecated, CommandStatusInactive,
}

func ParseCommandStatus(value string) (CommandStatus, error) {
	return parseStatus("command status", value, commandStatuses)
}

func (s CommandStatus) IsValid() bool {
	return isKnownStatus(s, commandStatuses)
}

type ClusterStatus string

const (
	ClusterStatusUp           ClusterStatus = "UP"
	ClusterStatusOutOfService ClusterStatus = "OUT_OF_SERVICE"
	ClusterStatusTerminated   ClusterStatus = "TERMINATED"
)

var clusterStatuses = []ClusterStatus{
	ClusterStatusUp, ClusterStatusOutOfService, ClusterStatusTerminated,
}

func ParseClusterStatus(value string) (ClusterStatus, error) {
	return parseStatus("cluster status", value, clusterStatuses)
}

func (s ClusterStatus) IsValid() bool {
	return isKnownStatus(s, clusterStatuses)
}

type JobStatus string

const (
	JobStatusInit      JobStatus = "INIT"
	JobStatusRunning   JobStatus = "RUNNING"
	JobStatusSucceeded JobStatus = "SUCCEEDED"
	JobStatusKilled    JobStatus = "KILLED"
	JobStatusFailed    JobStatus = "FAILED"
)

var jobStatuses = []JobStatus{
	JobStatusInit, JobStatusRunning, JobStatusSucceeded, JobStatusKilled, JobStatusFailed,
}

func ParseJobStatus(value string) (JobStatus, error) {
	return parseStatus("job status", value, jobStatuses)
}

func (s JobStatus) IsValid() bool {
	return isKnownStatus(s, jobStatuses)
}

// IsTerminal returns true for the states a job never leaves.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusSucceeded || s == JobStatusKilled || s == JobStatusFailed
}

// parseStatus matches value case-insensitively against the known statuses of one resource kind.
func parseStatus[T ~string](field string, value string, known []T) (T, error) {
	for _, s := range known {
		if strings.EqualFold(string(s), strings.TrimSpace(value)) {
			return s, nil
		}
	}
	var zero T
	return zero, &genieerrors.ErrInvalidArgument{
		Name:    field,
		Value:   value,
		Message: "unknown status",
	}
}

func isKnownStatus[T ~string](s T, known []T) bool {
	return slices.Contains(known, s)
}
