package websocket

import (
	"encoding/json"
	"time"

	"crmhub/logger"
)

// NotificationEvent represents a real-time inbox update
type NotificationEvent struct {
	Type           string      `json:"type"` // NOTIFICATION_CREATED, NOTIFICATION_READ, NOTIFICATIONS_READ_ALL
	NotificationID string      `json:"notificationId,omitempty"`
	Data           interface{} `json:"data,omitempty"`
	Timestamp      time.Time   `json:"timestamp"`
}

// BroadcastToUser sends an event to every open socket of one recipient.
func BroadcastToUser(userID string, event NotificationEvent) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	if clients, ok := hub.clients[userID]; ok {
		data, err := json.Marshal(event)
		if err != nil {
			logger.Get().Warnf("Failed to marshal notification event: %v", err)
			return
		}

		for client := range clients {
			select {
			case client.send <- data:
			default:
				close(client.send)
				delete(clients, client)
			}
		}
	}
}

// SendNotificationCreated pushes a freshly created notification.
func SendNotificationCreated(userID string, notification interface{}) {
	BroadcastToUser(userID, NotificationEvent{
		Type:      "NOTIFICATION_CREATED",
		Data:      notification,
		Timestamp: time.Now(),
	})
}

// SendNotificationRead pushes a read-state change so other open tabs update.
func SendNotificationRead(userID string, notificationID string) {
	BroadcastToUser(userID, NotificationEvent{
		Type:           "NOTIFICATION_READ",
		NotificationID: notificationID,
		Timestamp:      time.Now(),
	})
}

// SendNotificationsReadAll pushes a bulk read-state change.
func SendNotificationsReadAll(userID string) {
	BroadcastToUser(userID, NotificationEvent{
		Type:      "NOTIFICATIONS_READ_ALL",
		Timestamp: time.Now(),
	})
}
