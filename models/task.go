// models/task.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Task statuses
const (
	TaskPending    = "pending"
	TaskInProgress = "in-progress"
	TaskCompleted  = "completed"
	TaskBlocked    = "blocked"
)

type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Author    primitive.ObjectID `bson:"author" json:"author"`
	Text      string             `bson:"text" json:"text"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type TimeEntry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Hours     float64            `bson:"hours" json:"hours"`
	Note      string             `bson:"note,omitempty" json:"note,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type Task struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	User           primitive.ObjectID   `bson:"user" json:"user"`
	Project        *primitive.ObjectID  `bson:"project,omitempty" json:"project,omitempty"`
	Assignee       *primitive.ObjectID  `bson:"assignee,omitempty" json:"assignee,omitempty"`
	Title          string               `bson:"title" json:"title"`
	Description    string               `bson:"description,omitempty" json:"description,omitempty"`
	Status         string               `bson:"status" json:"status"`
	Priority       string               `bson:"priority" json:"priority"`
	Labels         []string             `bson:"labels,omitempty" json:"labels,omitempty"`
	Tags           []string             `bson:"tags,omitempty" json:"tags,omitempty"`
	DueDate        *time.Time           `bson:"dueDate,omitempty" json:"dueDate,omitempty"`
	EstimatedHours float64              `bson:"estimatedHours,omitempty" json:"estimatedHours,omitempty"`
	ActualHours    float64              `bson:"actualHours,omitempty" json:"actualHours,omitempty"`
	TotalTimeSpent float64              `bson:"totalTimeSpent" json:"totalTimeSpent"`
	Comments       []Comment            `bson:"comments,omitempty" json:"comments,omitempty"`
	TimeEntries    []TimeEntry          `bson:"timeEntries,omitempty" json:"timeEntries,omitempty"`
	Dependencies   []primitive.ObjectID `bson:"dependencies,omitempty" json:"dependencies,omitempty"`
	CompletedAt    *time.Time           `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CreatedAt      time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time            `bson:"updatedAt" json:"updatedAt"`
}
