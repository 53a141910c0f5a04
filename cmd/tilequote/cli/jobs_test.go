package cli

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilequote/tilequote/jobs"
)

func TestBuildTask(t *testing.T) {
	task, err := buildTask(jobs.TaskDashboardWarmup, "")
	require.NoError(t, err)
	assert.Equal(t, jobs.TaskDashboardWarmup, task.Type())

	id := uuid.New()
	task, err = buildTask(jobs.TaskQuoteRender, id.String())
	require.NoError(t, err)
	var payload jobs.QuoteRenderPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, id, payload.QuoteID)

	_, err = buildTask(jobs.TaskQuoteRender, "not-a-uuid")
	assert.Error(t, err)
	_, err = buildTask("inventory:reval", "")
	assert.Error(t, err)
}
