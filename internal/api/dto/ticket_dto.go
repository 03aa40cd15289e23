package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Subject     string              `json:"subject"`
	Description string              `json:"description"`
	Category    string              `json:"category"`
	Priority    string              `json:"priority"`
	Attachments []AttachmentRequest `json:"attachments"`
}

// AttachmentRequest describes attachment metadata. File contents are not
// uploaded.
type AttachmentRequest struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// CreateMessageRequest is used for replies and internal notes.
type CreateMessageRequest struct {
	Body string `json:"body"`
}

// AssignTicketRequest payload. A null or empty assignee clears it.
type AssignTicketRequest struct {
	AssigneeID *string `json:"assignee_id"`
}

// ChangeStatusRequest payload. Status may be omitted for a priority update.
type ChangeStatusRequest struct {
	Status    string  `json:"status"`
	Priority  *string `json:"priority"`
	AutoClose bool    `json:"auto_close"`
	Note      string  `json:"note"`
}

// TicketSummary response.
type TicketSummary struct {
	ID            string                `json:"id"`
	Subject       string                `json:"subject"`
	Category      string                `json:"category"`
	Status        domain.TicketStatus   `json:"status"`
	Priority      domain.TicketPriority `json:"priority"`
	RequesterID   domain.UserID         `json:"requester_id"`
	RequesterName string                `json:"requester_name"`
	AssigneeID    *domain.UserID        `json:"assignee_id"`
	AssigneeName  string                `json:"assignee_name,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
	CloseDueAt    *time.Time            `json:"close_due_at"`
}

// TicketDetailResponse provides full ticket info. InternalNotes is only
// populated for staff.
type TicketDetailResponse struct {
	TicketSummary
	Description   string                  `json:"description"`
	Attachments   []AttachmentResponse    `json:"attachments"`
	Messages      []TicketMessageResponse `json:"messages"`
	InternalNotes []TicketMessageResponse `json:"internal_notes,omitempty"`
	StatusHistory []StatusEventResponse   `json:"status_history"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// TicketMessageResponse represents a reply or note.
type TicketMessageResponse struct {
	ID         string        `json:"id"`
	AuthorID   domain.UserID `json:"author_id"`
	AuthorName string        `json:"author_name"`
	AuthorRole domain.Role   `json:"author_role"`
	Body       string        `json:"body"`
	CreatedAt  time.Time     `json:"created_at"`
}

// StatusEventResponse is one audit entry.
type StatusEventResponse struct {
	Status    domain.TicketStatus `json:"status"`
	ChangedBy domain.UserID       `json:"changed_by"`
	ChangedAt time.Time           `json:"changed_at"`
	Note      string              `json:"note,omitempty"`
}

// TransitionsResponse lists where a ticket may go next.
type TransitionsResponse struct {
	Current domain.TicketStatus   `json:"current"`
	Next    []domain.TicketStatus `json:"next"`
}

// DashboardResponse is the staff queue overview.
type DashboardResponse struct {
	Total           int             `json:"total"`
	Waiting         int             `json:"waiting"`
	HighPriority    int             `json:"high_priority"`
	UpdatedThisWeek int             `json:"updated_this_week"`
	TopUrgent       []TicketSummary `json:"top_urgent"`
}

// RecordNotificationRequest payload.
type RecordNotificationRequest struct {
	Message  string  `json:"message"`
	TicketID *string `json:"ticket_id"`
}

// NotificationResponse is one log entry.
type NotificationResponse struct {
	ID        string                  `json:"id"`
	Type      domain.NotificationType `json:"type"`
	Message   string                  `json:"message"`
	TicketID  *string                 `json:"ticket_id"`
	CreatedAt time.Time               `json:"created_at"`
}

// MetricsResponse is the reporting aggregate.
type MetricsResponse struct {
	AdoptionRate           float64                 `json:"adoption_rate"`
	AverageResolutionHours float64                 `json:"average_resolution_hours"`
	CSATScore              float64                 `json:"csat_score"`
	TicketVolume           []MonthlyVolumeResponse `json:"ticket_volume"`
	PopularCategories      []CategoryCountResponse `json:"popular_categories"`
}

type MonthlyVolumeResponse struct {
	Month    string `json:"month"`
	Total    int    `json:"total"`
	Resolved int    `json:"resolved"`
}

type CategoryCountResponse struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// NewNotificationResponse maps a log entry.
func NewNotificationResponse(n domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Message:   n.Message,
		TicketID:  n.TicketID,
		CreatedAt: n.CreatedAt,
	}
}

// NewMetricsResponse maps the reporting aggregate.
func NewMetricsResponse(m *domain.Metrics) MetricsResponse {
	resp := MetricsResponse{
		AdoptionRate:           m.AdoptionRate,
		AverageResolutionHours: m.AverageResolutionHours,
		CSATScore:              m.CSATScore,
		TicketVolume:           make([]MonthlyVolumeResponse, 0, len(m.TicketVolume)),
		PopularCategories:      make([]CategoryCountResponse, 0, len(m.PopularCategories)),
	}
	for _, v := range m.TicketVolume {
		resp.TicketVolume = append(resp.TicketVolume, MonthlyVolumeResponse{Month: v.Month, Total: v.Total, Resolved: v.Resolved})
	}
	for _, c := range m.PopularCategories {
		resp.PopularCategories = append(resp.PopularCategories, CategoryCountResponse{Category: c.Category, Count: c.Count})
	}
	return resp
}
