// Package jobstate applies status changes to jobs and records the lifecycle timestamps that go with them.
package jobstate

import (
	"fmt"

	"k8s.io/utils/clock"

	"github.com/G-Research/genie/internal/broker/model"
	"github.com/G-Research/genie/internal/common/genieerrors"
)

// transitions lists, for each status, the statuses a job may move to in strict mode.
// The empty status stands for a job that has never been assigned one.
var transitions = map[model.JobStatus][]model.JobStatus{
	"":                     {model.JobStatusInit},
	model.JobStatusInit:    {model.JobStatusRunning, model.JobStatusKilled, model.JobStatusFailed},
	model.JobStatusRunning: {model.JobStatusSucceeded, model.JobStatusKilled, model.JobStatusFailed},
}

type Machine struct {
	clock clock.PassiveClock
	// When false, any status may follow any other, as older clients expect.
	strict bool
}

func NewMachine(clock clock.PassiveClock, strict bool) *Machine {
	return &Machine{clock: clock, strict: strict}
}

func (m *Machine) Strict() bool {
	return m.strict
}

// CanTransition reports whether a job in status from may be moved to status to.
func (m *Machine) CanTransition(from, to model.JobStatus) bool {
	if !to.IsValid() {
		return false
	}
	if !m.strict {
		return true
	}
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// SetStatus moves job to status and stores msg as its status message.
// Moving to INIT stamps Started; moving to a terminal status stamps Finished.
// The job is left unchanged if the transition is not allowed.
func (m *Machine) SetStatus(job *model.Job, status model.JobStatus, msg string) error {
	if !status.IsValid() {
		return &genieerrors.ErrInvalidArgument{
			Name:    "status",
			Value:   string(status),
			Message: "not a valid job status",
		}
	}
	if !m.CanTransition(job.Status, status) {
		return &genieerrors.ErrConstraint{
			Type:    string(model.KindJob),
			Value:   job.Id,
			Message: fmt.Sprintf("job status may not change from %q to %q", job.Status, status),
		}
	}

	now := m.clock.Now()
	job.Status = status
	job.StatusMsg = msg
	switch {
	case status == model.JobStatusInit:
		job.Started = now
	case status.IsTerminal():
		job.Finished = now
	}
	return nil
}
