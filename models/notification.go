// models/notification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Notification struct {
	ID        primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	User      primitive.ObjectID     `bson:"user" json:"user"`
	Type      string                 `bson:"type" json:"type"`
	Title     string                 `bson:"title" json:"title"`
	Message   string                 `bson:"message" json:"message"`
	Priority  string                 `bson:"priority,omitempty" json:"priority,omitempty"`
	Read      bool                   `bson:"read" json:"read"`
	ReadAt    *time.Time             `bson:"readAt,omitempty" json:"readAt,omitempty"`
	Data      map[string]interface{} `bson:"data,omitempty" json:"data,omitempty"`
	ActionURL string                 `bson:"actionUrl,omitempty" json:"actionUrl,omitempty"`
	ExpiresAt *time.Time             `bson:"expiresAt,omitempty" json:"expiresAt,omitempty"`
	CreatedAt time.Time              `bson:"createdAt" json:"createdAt"`
}
