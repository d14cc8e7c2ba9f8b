// handlers/collections.go
package handlers

import (
	"go.mongodb.org/mongo-driver/mongo"

	"crmhub/database"
)

var (
	userCollection         *mongo.Collection
	clientCollection       *mongo.Collection
	projectCollection      *mongo.Collection
	taskCollection         *mongo.Collection
	attendanceCollection   *mongo.Collection
	otpCollection          *mongo.Collection
	notificationCollection *mongo.Collection
)

func InitCollections() {
	userCollection = database.Collection("users")
	clientCollection = database.Collection("clients")
	projectCollection = database.Collection("projects")
	taskCollection = database.Collection("tasks")
	attendanceCollection = database.Collection("attendance")
	otpCollection = database.Collection("otps")
	notificationCollection = database.Collection("notifications")
}
