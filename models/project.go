// models/project.go
package models

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project statuses
const (
	ProjectActive    = "active"
	ProjectOnHold    = "on-hold"
	ProjectCompleted = "completed"
	ProjectCancelled = "cancelled"
)

// Priorities shared by projects and tasks
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

type TeamMember struct {
	User primitive.ObjectID `bson:"user" json:"user"`
	Role string             `bson:"role,omitempty" json:"role,omitempty"`
}

type Project struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	User        primitive.ObjectID  `bson:"user" json:"user"`
	Client      *primitive.ObjectID `bson:"client,omitempty" json:"client,omitempty"`
	Name        string              `bson:"name" json:"name"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	Status      string              `bson:"status" json:"status"`
	Priority    string              `bson:"priority" json:"priority"`
	StartDate   *time.Time          `bson:"startDate,omitempty" json:"startDate,omitempty"`
	EndDate     *time.Time          `bson:"endDate,omitempty" json:"endDate,omitempty"`
	Budget      float64             `bson:"budget,omitempty" json:"budget,omitempty"`
	Progress    int                 `bson:"progress" json:"progress"`
	TeamMembers []TeamMember        `bson:"teamMembers,omitempty" json:"teamMembers,omitempty"`

	// Tasks is an API-level view. Tasks live in their own collection with a
	// project back-reference; they are never embedded in the stored project.
	Tasks     []Task    `bson:"-" json:"tasks,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ComputeProgress returns the rounded percentage of a project's tasks that
// are completed. Projects without tasks report zero progress.
func ComputeProgress(tasks []Task) int {
	if len(tasks) == 0 {
		return 0
	}
	completed := 0
	for _, t := range tasks {
		if t.Status == TaskCompleted {
			completed++
		}
	}
	return int(math.Round(100 * float64(completed) / float64(len(tasks))))
}
