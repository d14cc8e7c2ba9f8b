// handlers/notification_handler.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"crmhub/logger"
	"crmhub/mailer"
	"crmhub/models"
	"crmhub/policy"
	"crmhub/utils"
	"crmhub/websocket"
)

// ListNotifications returns the caller's inbox, newest first, with the
// unread count.
func ListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := actingUser(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	filter := policy.ScopeFilter(policy.ResourceNotifications, role, userID)
	query := r.URL.Query()

	if unread := query.Get("unread"); unread == "true" {
		filter["read"] = false
	}
	if nType := query.Get("type"); nType != "" && nType != "all" {
		filter["type"] = nType
	}

	limit, skip := parsePagination(r)

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(skip))

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := notificationCollection.Find(ctx, filter, opts)
	if err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to fetch notifications", err)
		return
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to decode notifications", err)
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}

	total, _ := notificationCollection.CountDocuments(ctx, filter)
	unreadCount, _ := notificationCollection.CountDocuments(ctx, bson.M{"user": userID, "read": false})

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"items":       notifications,
		"total":       total,
		"unreadCount": unreadCount,
		"limit":       limit,
		"skip":        skip,
	})
}

type CreateNotificationRequest struct {
	UserIDs   []string               `json:"userIds" validate:"required,min=1"`
	Type      string                 `json:"type" validate:"required"`
	Title     string                 `json:"title" validate:"required,max=200"`
	Message   string                 `json:"message" validate:"required"`
	Priority  string                 `json:"priority" validate:"omitempty,oneof=low medium high"`
	Data      map[string]interface{} `json:"data"`
	ActionURL string                 `json:"actionUrl"`
	ExpiresAt *time.Time             `json:"expiresAt"`
}

// CreateNotifications fans one message out to many recipients, pushing to
// any open sockets. Route floor: manager.
func CreateNotifications(w http.ResponseWriter, r *http.Request) {
	var req CreateNotificationRequest
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(req.UserIDs))
	created := make([]models.Notification, 0, len(req.UserIDs))

	for _, idHex := range req.UserIDs {
		recipientID, err := primitive.ObjectIDFromHex(idHex)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID: "+idHex)
			return
		}
		n := models.Notification{
			ID:        primitive.NewObjectID(),
			User:      recipientID,
			Type:      req.Type,
			Title:     req.Title,
			Message:   req.Message,
			Priority:  req.Priority,
			Read:      false,
			Data:      req.Data,
			ActionURL: req.ActionURL,
			ExpiresAt: req.ExpiresAt,
			CreatedAt: now,
		}
		docs = append(docs, n)
		created = append(created, n)
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if _, err := notificationCollection.InsertMany(ctx, docs); err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to create notifications", err)
		return
	}

	for _, n := range created {
		websocket.SendNotificationCreated(n.User.Hex(), n)
	}

	// High-priority messages also go out by email, best effort
	if req.Priority == "high" && mailer.Enabled() {
		go emailHighPriority(created, req.Title, req.Message)
	}

	logger.WithField("count", len(created)).Info("notifications created")
	utils.RespondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Notifications created successfully",
		"count":   len(created),
	})
}

// emailHighPriority resolves recipient addresses and mails them a copy of
// the notification. Runs off the request path; failures are only logged.
func emailHighPriority(notifications []models.Notification, title, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, n := range notifications {
		var recipient models.User
		if err := userCollection.FindOne(ctx, bson.M{"_id": n.User}).Decode(&recipient); err != nil {
			continue
		}
		if err := mailer.SendNotification(recipient.Email, title, message); err != nil {
			logger.WithField("email", recipient.Email).Warnf("Notification mail delivery failed: %v", err)
		}
	}
}

// MarkNotificationRead flips one of the caller's notifications to read.
func MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := actingUser(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	notificationID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid notification ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	now := time.Now().UTC()
	result, err := notificationCollection.UpdateOne(ctx,
		bson.M{"_id": notificationID, "user": userID},
		bson.M{"$set": bson.M{"read": true, "readAt": now}},
	)
	if err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to update notification", err)
		return
	}
	if result.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Notification not found")
		return
	}

	websocket.SendNotificationRead(userID.Hex(), notificationID.Hex())

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Notification marked as read",
	})
}

// MarkAllNotificationsRead clears the caller's entire unread backlog.
func MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := actingUser(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	now := time.Now().UTC()
	result, err := notificationCollection.UpdateMany(ctx,
		bson.M{"user": userID, "read": false},
		bson.M{"$set": bson.M{"read": true, "readAt": now}},
	)
	if err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to update notifications", err)
		return
	}

	websocket.SendNotificationsReadAll(userID.Hex())

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "All notifications marked as read",
		"updated": result.ModifiedCount,
	})
}

// DeleteNotification removes one of the caller's own notifications.
func DeleteNotification(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := actingUser(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	notificationID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid notification ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{"_id": notificationID}
	if role != models.RoleAdmin {
		// Non-admins can only delete from their own inbox
		filter["user"] = userID
	}

	result, err := notificationCollection.DeleteOne(ctx, filter)
	if err != nil {
		utils.RespondWithErrorDetail(w, http.StatusInternalServerError, "Failed to delete notification", err)
		return
	}
	if result.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Notification not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Notification deleted successfully",
	})
}
