package domain

import "time"

// TicketMessageType differentiates thread entries. Only public replies are
// stored as messages; staff notes live in InternalNote.
type TicketMessageType string

const (
	MessageTypePublic TicketMessageType = "public"
)

// TicketMessage captures a public reply in a ticket thread.
type TicketMessage struct {
	ID         string
	AuthorID   UserID
	AuthorRole Role
	Type       TicketMessageType
	Body       string
	CreatedAt  time.Time
}

// InternalNote is a staff-only remark. Visibility is enforced on read.
type InternalNote struct {
	ID         string
	AuthorID   UserID
	AuthorRole Role
	Body       string
	CreatedAt  time.Time
}
