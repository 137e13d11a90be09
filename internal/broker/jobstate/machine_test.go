package jobstate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clocktesting "k8s.io/utils/clock/testing"

	"github.com/G-Research/genie/internal/broker/model"
	"github.com/G-Research/genie/internal/common/genieerrors"
)

var baseTime = time.Date(2022, 11, 3, 9, 0, 0, 0, time.UTC)

func TestSetStatus_Lifecycle(t *testing.T) {
	clock := clocktesting.NewFakeClock(baseTime)
	m := NewMachine(clock, true)
	job := &model.Job{Resource: model.Resource{Id: "j1"}}

	require.NoError(t, m.SetStatus(job, model.JobStatusInit, "Submitted"))
	assert.Equal(t, model.JobStatusInit, job.Status)
	assert.Equal(t, "Submitted", job.StatusMsg)
	assert.Equal(t, baseTime, job.Started)
	assert.True(t, job.Finished.IsZero())

	clock.Step(time.Minute)
	require.NoError(t, m.SetStatus(job, model.JobStatusRunning, "Running"))
	assert.Equal(t, baseTime, job.Started, "running leaves started alone")
	assert.True(t, job.Finished.IsZero())

	clock.Step(time.Minute)
	require.NoError(t, m.SetStatus(job, model.JobStatusSucceeded, "Done"))
	assert.Equal(t, "Done", job.StatusMsg)
	assert.Equal(t, baseTime.Add(2*time.Minute), job.Finished)
}

func TestCanTransition_Strict(t *testing.T) {
	m := NewMachine(clocktesting.NewFakeClock(baseTime), true)
	tests := map[string]struct {
		from     model.JobStatus
		to       model.JobStatus
		expected bool
	}{
		"fresh to init":         {"", model.JobStatusInit, true},
		"fresh to running":      {"", model.JobStatusRunning, false},
		"init to init":          {model.JobStatusInit, model.JobStatusInit, false},
		"init to running":       {model.JobStatusInit, model.JobStatusRunning, true},
		"init to killed":        {model.JobStatusInit, model.JobStatusKilled, true},
		"init to failed":        {model.JobStatusInit, model.JobStatusFailed, true},
		"init to succeeded":     {model.JobStatusInit, model.JobStatusSucceeded, false},
		"running to succeeded":  {model.JobStatusRunning, model.JobStatusSucceeded, true},
		"running to killed":     {model.JobStatusRunning, model.JobStatusKilled, true},
		"running to failed":     {model.JobStatusRunning, model.JobStatusFailed, true},
		"running to init":       {model.JobStatusRunning, model.JobStatusInit, false},
		"succeeded to running":  {model.JobStatusSucceeded, model.JobStatusRunning, false},
		"failed to succeeded":   {model.JobStatusFailed, model.JobStatusSucceeded, false},
		"killed to killed":      {model.JobStatusKilled, model.JobStatusKilled, false},
		"unknown target status": {model.JobStatusInit, "PAUSED", false},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, m.CanTransition(tc.from, tc.to))
		})
	}
}

func TestSetStatus_RejectedTransitionLeavesJobUnchanged(t *testing.T) {
	clock := clocktesting.NewFakeClock(baseTime)
	m := NewMachine(clock, true)
	job := &model.Job{Resource: model.Resource{Id: "j1"}}
	require.NoError(t, m.SetStatus(job, model.JobStatusInit, "Submitted"))
	require.NoError(t, m.SetStatus(job, model.JobStatusKilled, "Killed by user"))
	before := *job

	clock.Step(time.Hour)
	err := m.SetStatus(job, model.JobStatusRunning, "again")
	assert.Equal(t, genieerrors.KindConstraint, genieerrors.KindFromError(err))
	assert.Equal(t, before, *job)
}

func TestSetStatus_InvalidStatus(t *testing.T) {
	m := NewMachine(clocktesting.NewFakeClock(baseTime), false)
	err := m.SetStatus(&model.Job{}, "PAUSED", "")
	assert.True(t, genieerrors.IsInvalidArgument(err))
}

func TestSetStatus_Permissive(t *testing.T) {
	clock := clocktesting.NewFakeClock(baseTime)
	m := NewMachine(clock, false)
	assert.False(t, m.Strict())
	job := &model.Job{Resource: model.Resource{Id: "j1"}}

	require.NoError(t, m.SetStatus(job, model.JobStatusFailed, "failed"))
	assert.Equal(t, baseTime, job.Finished)

	clock.Step(time.Minute)
	require.NoError(t, m.SetStatus(job, model.JobStatusInit, "restarted"))
	assert.Equal(t, baseTime.Add(time.Minute), job.Started)
	assert.Equal(t, baseTime, job.Finished, "init does not clear finished")

	require.NoError(t, m.SetStatus(job, model.JobStatusInit, "restarted twice"))
	assert.Equal(t, "restarted twice", job.StatusMsg)
}
