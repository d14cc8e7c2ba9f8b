// models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Valid roles, lowest to highest
const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleAdmin    = "admin"
)

type User struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name         string               `bson:"name" json:"name"`
	Email        string               `bson:"email" json:"email"`
	PasswordHash string               `bson:"passwordHash" json:"-"`
	Role         string               `bson:"role" json:"role"`
	Position     string               `bson:"position,omitempty" json:"position,omitempty"`
	Phone        string               `bson:"phone,omitempty" json:"phone,omitempty"`
	Manager      *primitive.ObjectID  `bson:"manager,omitempty" json:"manager,omitempty"`
	Team         []primitive.ObjectID `bson:"team,omitempty" json:"team,omitempty"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt" json:"updatedAt"`
}
