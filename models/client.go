// models/client.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Address struct {
	Street  string `bson:"street,omitempty" json:"street,omitempty"`
	City    string `bson:"city,omitempty" json:"city,omitempty"`
	State   string `bson:"state,omitempty" json:"state,omitempty"`
	Zip     string `bson:"zip,omitempty" json:"zip,omitempty"`
	Country string `bson:"country,omitempty" json:"country,omitempty"`
}

type ContactPerson struct {
	Name     string `bson:"name,omitempty" json:"name,omitempty"`
	Email    string `bson:"email,omitempty" json:"email,omitempty"`
	Phone    string `bson:"phone,omitempty" json:"phone,omitempty"`
	Position string `bson:"position,omitempty" json:"position,omitempty"`
}

// Client statuses
const (
	ClientActive   = "active"
	ClientInactive = "inactive"
	ClientProspect = "prospect"
)

type Client struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User          primitive.ObjectID `bson:"user" json:"user"`
	Name          string             `bson:"name" json:"name"`
	Email         string             `bson:"email" json:"email"`
	Company       string             `bson:"company" json:"company"`
	Phone         string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Website       string             `bson:"website,omitempty" json:"website,omitempty"`
	Status        string             `bson:"status" json:"status"`
	Address       *Address           `bson:"address,omitempty" json:"address,omitempty"`
	ContactPerson *ContactPerson     `bson:"contactPerson,omitempty" json:"contactPerson,omitempty"`
	Services      []string           `bson:"services,omitempty" json:"services,omitempty"`
	Notes         string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
