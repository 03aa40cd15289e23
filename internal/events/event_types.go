package events

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated        EventType = "ticket_created"
	EventTicketMessageAdded   EventType = "ticket_message_added"
	EventTicketNoteAdded      EventType = "ticket_note_added"
	EventTicketAssigned       EventType = "ticket_assigned"
	EventTicketStatusChanged  EventType = "ticket_status_changed"
	EventNotificationRecorded EventType = "notification_recorded"
	EventArticleUpserted      EventType = "article_upserted"
	EventArticleDeleted       EventType = "article_deleted"
)

// Event represents a domain event emitted by a store commit.
type Event struct {
	ID        string        `json:"id"`
	Type      EventType     `json:"type"`
	TicketID  string        `json:"ticket_id,omitempty"`
	Actor     domain.UserID `json:"actor,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Payload   interface{}   `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Subject     string                `json:"subject"`
	Category    string                `json:"category"`
	Priority    domain.TicketPriority `json:"priority"`
	RequesterID domain.UserID         `json:"requester_id"`
}

// TicketMessageAddedPayload payload.
type TicketMessageAddedPayload struct {
	MessageID   string      `json:"message_id"`
	AuthorRole  domain.Role `json:"author_role"`
	BodyPreview string      `json:"body_preview"`
}

// TicketNoteAddedPayload payload.
type TicketNoteAddedPayload struct {
	NoteID string `json:"note_id"`
}

// TicketAssignedPayload payload. Status and Note mirror the history entry
// the assignment appended.
type TicketAssignedPayload struct {
	AssigneeID         *domain.UserID      `json:"assignee_id,omitempty"`
	PreviousAssigneeID *domain.UserID      `json:"previous_assignee_id,omitempty"`
	Status             domain.TicketStatus `json:"status"`
	Note               string              `json:"note"`
}

// TicketStatusChangedPayload payload. OldStatus equals NewStatus for
// priority-only updates.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus   `json:"old_status"`
	NewStatus domain.TicketStatus   `json:"new_status"`
	Priority  domain.TicketPriority `json:"priority"`
	AutoClose bool                  `json:"auto_close,omitempty"`
	Note      string                `json:"note,omitempty"`
}

// NotificationRecordedPayload carries the recorded log entry.
type NotificationRecordedPayload struct {
	Notification domain.Notification `json:"notification"`
}

// ArticleUpsertedPayload payload.
type ArticleUpsertedPayload struct {
	ArticleID string               `json:"article_id"`
	Created   bool                 `json:"created"`
	Status    domain.ArticleStatus `json:"status"`
}

// ArticleDeletedPayload payload.
type ArticleDeletedPayload struct {
	ArticleID string `json:"article_id"`
}
