package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeProgress(t *testing.T) {
	assert.Equal(t, 0, ComputeProgress(nil))
	assert.Equal(t, 0, ComputeProgress([]Task{}))

	tasks := []Task{
		{Status: TaskCompleted},
		{Status: TaskPending},
		{Status: TaskInProgress},
	}
	// 1 of 3 rounds to 33
	assert.Equal(t, 33, ComputeProgress(tasks))

	tasks = append(tasks, Task{Status: TaskCompleted})
	assert.Equal(t, 50, ComputeProgress(tasks))

	all := []Task{{Status: TaskCompleted}, {Status: TaskCompleted}}
	assert.Equal(t, 100, ComputeProgress(all))
}

func TestComputeProgressRoundsHalfUp(t *testing.T) {
	tasks := []Task{
		{Status: TaskCompleted},
		{Status: TaskPending},
		{Status: TaskPending},
		{Status: TaskPending},
		{Status: TaskPending},
		{Status: TaskPending},
	}
	// 1 of 6 is 16.67, rounds to 17
	assert.Equal(t, 17, ComputeProgress(tasks))
}
