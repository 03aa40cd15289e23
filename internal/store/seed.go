package store

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

const day = 24 * time.Hour

// Seed returns the demo state the service boots with. Timestamps are relative
// to now so the data always looks recent.
func Seed(now time.Time) State {
	ago := func(d time.Duration) time.Time { return now.Add(-d) }
	ptr := func(t time.Time) *time.Time { return &t }
	win := domain.UserID("u-002")

	return State{
		Tickets: []*domain.Ticket{
			{
				ID:          "IT-2025-0001",
				Subject:     "Computer will not power on",
				Description: "This morning the power light came on for a moment and went off again. I need it for a presentation this afternoon.",
				Category:    "Hardware",
				Priority:    domain.TicketPriorityHigh,
				Status:      domain.TicketStatusInProgress,
				RequesterID: "u-001",
				AssigneeID:  &win,
				CreatedAt:   ago(2 * day),
				UpdatedAt:   ago(day),
				CloseDueAt:  ptr(now.Add(day)),
				Attachments: []domain.Attachment{},
				Messages: []domain.TicketMessage{
					{
						ID:         "msg-001",
						AuthorID:   "u-001",
						AuthorRole: domain.RoleUser,
						Type:       domain.MessageTypePublic,
						Body:       "Please take a look urgently, I need it for today's presentation.",
						CreatedAt:  ago(2 * day),
					},
					{
						ID:         "msg-002",
						AuthorID:   "u-002",
						AuthorRole: domain.RoleAdmin,
						Type:       domain.MessageTypePublic,
						Body:       "First check done, looks like the PSU. I will swap it around noon.",
						CreatedAt:  ago(day),
					},
				},
				InternalNotes: []domain.InternalNote{
					{
						ID:         "note-001",
						AuthorID:   "u-002",
						AuthorRole: domain.RoleAdmin,
						Body:       "450W PSU ready. Test before handing back.",
						CreatedAt:  ago(day),
					},
				},
				StatusHistory: []domain.StatusEvent{
					{Status: domain.TicketStatusOpen, ChangedBy: "u-002", ChangedAt: ago(2 * day)},
					{Status: domain.TicketStatusInProgress, ChangedBy: "u-002", ChangedAt: ago(day)},
				},
			},
			{
				ID:          "IT-2025-0002",
				Subject:     "Access to the accounting system",
				Description: "I just moved to the marketing team and need the accounting system to read campaign ROI reports.",
				Category:    "Access",
				Priority:    domain.TicketPriorityNormal,
				Status:      domain.TicketStatusResolved,
				RequesterID: "u-001",
				AssigneeID:  &win,
				CreatedAt:   ago(7 * day),
				UpdatedAt:   ago(2 * day),
				CloseDueAt:  ptr(now.Add(day)),
				Attachments: []domain.Attachment{},
				Messages: []domain.TicketMessage{
					{
						ID:         "msg-003",
						AuthorID:   "u-001",
						AuthorRole: domain.RoleUser,
						Type:       domain.MessageTypePublic,
						Body:       "I need this for next week's report, thank you.",
						CreatedAt:  ago(7 * day),
					},
					{
						ID:         "msg-004",
						AuthorID:   "u-002",
						AuthorRole: domain.RoleAdmin,
						Type:       domain.MessageTypePublic,
						Body:       "Access granted, please try logging in again.",
						CreatedAt:  ago(2 * day),
					},
				},
				InternalNotes: []domain.InternalNote{},
				StatusHistory: []domain.StatusEvent{
					{Status: domain.TicketStatusOpen, ChangedBy: "u-002", ChangedAt: ago(7 * day)},
					{Status: domain.TicketStatusInProgress, ChangedBy: "u-002", ChangedAt: ago(6 * day)},
					{Status: domain.TicketStatusResolved, ChangedBy: "u-002", ChangedAt: ago(2 * day)},
				},
			},
		},
		KnowledgeBase: []*domain.Article{
			{
				ID:           "kb-001",
				Title:        "Fixing Wi-Fi connection problems",
				Category:     "Network",
				Content:      "1. Check that Wi-Fi is switched on.\n2. Restart the router.\n3. If it still fails, contact **IT Support**.",
				Keywords:     []string{"wifi", "internet", "network"},
				HelpfulCount: 42,
				CreatedAt:    ago(45 * day),
				UpdatedAt:    ago(12 * day),
				Status:       domain.ArticleStatusPublished,
				AuthorID:     "u-002",
			},
			{
				ID:           "kb-002",
				Title:        "Installing Microsoft Office",
				Category:     "Software",
				Content:      "Download from the Microsoft 365 portal, choose *Install Office* and follow the on-screen steps.",
				Keywords:     []string{"office", "word", "excel"},
				HelpfulCount: 28,
				CreatedAt:    ago(60 * day),
				UpdatedAt:    ago(5 * day),
				Status:       domain.ArticleStatusPublished,
				AuthorID:     "u-002",
			},
		},
		Notifications: []domain.Notification{},
		Metrics: domain.Metrics{
			AdoptionRate:           0.92,
			AverageResolutionHours: 14,
			CSATScore:              4.6,
			TicketVolume: []domain.MonthlyVolume{
				{Month: "Jan", Total: 28, Resolved: 26},
				{Month: "Feb", Total: 36, Resolved: 33},
				{Month: "Mar", Total: 39, Resolved: 35},
			},
			PopularCategories: []domain.CategoryCount{
				{Category: "Hardware", Count: 18},
				{Category: "Software", Count: 22},
				{Category: "Access", Count: 14},
			},
		},
	}
}
