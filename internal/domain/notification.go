package domain

import "time"

// NotificationType tags where a notification is meant to surface.
type NotificationType string

const (
	NotificationTypeEmail NotificationType = "email"
	NotificationTypeLog   NotificationType = "log"
)

// Notification is a record of intent; nothing is actually delivered.
type Notification struct {
	ID        string
	Type      NotificationType
	Message   string
	CreatedAt time.Time
	TicketID  *string
}
