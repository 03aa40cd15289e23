package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "Open"
	TicketStatusInProgress TicketStatus = "In Progress"
	TicketStatusPending    TicketStatus = "Pending"
	TicketStatusResolved   TicketStatus = "Resolved"
	TicketStatusClosed     TicketStatus = "Closed"
	TicketStatusCanceled   TicketStatus = "Canceled"
)

// TicketStatuses lists every recognized status in display order.
var TicketStatuses = []TicketStatus{
	TicketStatusOpen,
	TicketStatusInProgress,
	TicketStatusPending,
	TicketStatusResolved,
	TicketStatusClosed,
	TicketStatusCanceled,
}

// IsValid reports whether s is one of the six recognized statuses.
func (s TicketStatus) IsValid() bool {
	for _, candidate := range TicketStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsWaiting reports whether the ticket still needs IT attention.
func (s TicketStatus) IsWaiting() bool {
	return s == TicketStatusOpen || s == TicketStatusInProgress || s == TicketStatusPending
}

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "Low"
	TicketPriorityNormal   TicketPriority = "Normal"
	TicketPriorityHigh     TicketPriority = "High"
	TicketPriorityCritical TicketPriority = "Critical"
)

// TicketPriorities lists every recognized priority from lowest to highest.
var TicketPriorities = []TicketPriority{
	TicketPriorityLow,
	TicketPriorityNormal,
	TicketPriorityHigh,
	TicketPriorityCritical,
}

// IsValid reports whether p is a recognized priority.
func (p TicketPriority) IsValid() bool {
	for _, candidate := range TicketPriorities {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsUrgent reports whether p is High or Critical.
func (p TicketPriority) IsUrgent() bool {
	return p == TicketPriorityHigh || p == TicketPriorityCritical
}

// Attachment is file metadata supplied when the ticket is filed.
type Attachment struct {
	Name string
	Size int64
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID            string
	Subject       string
	Description   string
	Category      string
	Priority      TicketPriority
	Status        TicketStatus
	RequesterID   UserID
	AssigneeID    *UserID
	CreatedAt     time.Time
	UpdatedAt     time.Time
	CloseDueAt    *time.Time
	Attachments   []Attachment
	Messages      []TicketMessage
	InternalNotes []InternalNote
	StatusHistory []StatusEvent
}

// LastStatusEvent returns the newest audit entry, if any.
func (t *Ticket) LastStatusEvent() (StatusEvent, bool) {
	if len(t.StatusHistory) == 0 {
		return StatusEvent{}, false
	}
	return t.StatusHistory[len(t.StatusHistory)-1], true
}

// Clone returns a deep copy so snapshots never share mutable slices.
func (t *Ticket) Clone() *Ticket {
	if t == nil {
		return nil
	}
	cp := *t
	if t.AssigneeID != nil {
		assignee := *t.AssigneeID
		cp.AssigneeID = &assignee
	}
	if t.CloseDueAt != nil {
		due := *t.CloseDueAt
		cp.CloseDueAt = &due
	}
	cp.Attachments = append([]Attachment(nil), t.Attachments...)
	cp.Messages = append([]TicketMessage(nil), t.Messages...)
	cp.InternalNotes = append([]InternalNote(nil), t.InternalNotes...)
	cp.StatusHistory = append([]StatusEvent(nil), t.StatusHistory...)
	return &cp
}
