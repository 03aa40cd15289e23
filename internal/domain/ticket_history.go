package domain

import "time"

// StatusEvent is an immutable audit trail entry. Assignment changes reuse
// the current status and describe the change in Note.
type StatusEvent struct {
	Status    TicketStatus
	ChangedBy UserID
	ChangedAt time.Time
	Note      string
}
