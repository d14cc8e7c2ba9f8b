package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"crmhub/models"
)

func TestApplyStatusTransitionSetsCompletedAt(t *testing.T) {
	now := ts("2026-04-01T10:00:00Z")
	task := &models.Task{Status: models.TaskInProgress}

	applyStatusTransition(task, models.TaskCompleted, now)

	assert.Equal(t, models.TaskCompleted, task.Status)
	if assert.NotNil(t, task.CompletedAt) {
		assert.Equal(t, now, *task.CompletedAt)
	}
}

func TestApplyStatusTransitionKeepsOriginalCompletionTime(t *testing.T) {
	first := ts("2026-04-01T10:00:00Z")
	task := &models.Task{Status: models.TaskCompleted, CompletedAt: &first}

	// A repeated completed -> completed update must not move the stamp
	applyStatusTransition(task, models.TaskCompleted, ts("2026-04-02T10:00:00Z"))

	if assert.NotNil(t, task.CompletedAt) {
		assert.Equal(t, first, *task.CompletedAt)
	}
}

func TestApplyStatusTransitionClearsCompletedAt(t *testing.T) {
	done := ts("2026-04-01T10:00:00Z")
	task := &models.Task{Status: models.TaskCompleted, CompletedAt: &done}

	applyStatusTransition(task, models.TaskInProgress, ts("2026-04-02T10:00:00Z"))

	assert.Equal(t, models.TaskInProgress, task.Status)
	assert.Nil(t, task.CompletedAt)
}
