// models/attendance.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Attendance holds one record per user per calendar day. Date is the local
// day formatted as 2006-01-02 and pairs with User in a unique index.
type Attendance struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User            primitive.ObjectID `bson:"user" json:"user"`
	Date            string             `bson:"date" json:"date"`
	CheckIn         *time.Time         `bson:"checkIn,omitempty" json:"checkIn,omitempty"`
	CheckOut        *time.Time         `bson:"checkOut,omitempty" json:"checkOut,omitempty"`
	DurationMinutes int                `bson:"durationMinutes" json:"durationMinutes"`
	Note            string             `bson:"note,omitempty" json:"note,omitempty"`
	Location        string             `bson:"location,omitempty" json:"location,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
