package model

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/G-Research/genie/internal/common/genieerrors"
)

func TestParseClusterStatus(t *testing.T) {
	tests := map[string]struct {
		input    string
		expected ClusterStatus
		isValid  bool
	}{
		"upper":          {"UP", ClusterStatusUp, true},
		"lower":          {"out_of_service", ClusterStatusOutOfService, true},
		"padded":         {" terminated ", ClusterStatusTerminated, true},
		"unknown":        {"DOWN", "", false},
		"empty":          {"", "", false},
		"command status": {"ACTIVE", "", false},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			status, err := ParseClusterStatus(tc.input)
			if tc.isValid {
				assert.NoError(t, err)
				assert.Equal(t, tc.expected, status)
			} else {
				assert.True(t, genieerrors.IsInvalidArgument(err))
			}
		})
	}
}

func TestParseOtherStatuses(t *testing.T) {
	app, err := ParseApplicationStatus("deprecated")
	assert.NoError(t, err)
	assert.Equal(t, ApplicationStatusDeprecated, app)

	cmd, err := ParseCommandStatus("Inactive")
	assert.NoError(t, err)
	assert.Equal(t, CommandStatusInactive, cmd)

	job, err := ParseJobStatus("killed")
	assert.NoError(t, err)
	assert.Equal(t, JobStatusKilled, job)

	_, err = ParseJobStatus("UP")
	assert.True(t, genieerrors.IsInvalidArgument(err))
	_, err = ParseCommandStatus("UP")
	assert.True(t, genieerrors.IsInvalidArgument(err))
}

func TestJobStatus_IsTerminal(t *testing.T) {
	for status, terminal := range map[JobStatus]bool{
		JobStatusInit:      false,
		JobStatusRunning:   false,
		JobStatusSucceeded: true,
		JobStatusKilled:    true,
		JobStatusFailed:    true,
	} {
		assert.Equal(t, terminal, status.IsTerminal(), string(status))
	}
}
