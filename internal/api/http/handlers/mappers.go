package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// NameResolver turns user ids into display names.
type NameResolver interface {
	DisplayName(id domain.UserID) string
}

func currentUser(c *fiber.Ctx) (*domain.User, error) {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return user, nil
}

// optionalUser returns nil for anonymous callers.
func optionalUser(c *fiber.Ctx) *domain.User {
	user, _ := auth.UserFromContext(c)
	return user
}

func ticketSummary(names NameResolver, t *domain.Ticket) dto.TicketSummary {
	summary := dto.TicketSummary{
		ID:            t.ID,
		Subject:       t.Subject,
		Category:      t.Category,
		Status:        t.Status,
		Priority:      t.Priority,
		RequesterID:   t.RequesterID,
		RequesterName: names.DisplayName(t.RequesterID),
		AssigneeID:    t.AssigneeID,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
		CloseDueAt:    t.CloseDueAt,
	}
	if t.AssigneeID != nil {
		summary.AssigneeName = names.DisplayName(*t.AssigneeID)
	}
	return summary
}

func ticketSummaries(names NameResolver, tickets []*domain.Ticket) []dto.TicketSummary {
	items := make([]dto.TicketSummary, 0, len(tickets))
	for _, t := range tickets {
		items = append(items, ticketSummary(names, t))
	}
	return items
}

func ticketDetail(names NameResolver, t *domain.Ticket) dto.TicketDetailResponse {
	detail := dto.TicketDetailResponse{
		TicketSummary: ticketSummary(names, t),
		Description:   t.Description,
		Attachments:   make([]dto.AttachmentResponse, 0, len(t.Attachments)),
		Messages:      make([]dto.TicketMessageResponse, 0, len(t.Messages)),
		StatusHistory: make([]dto.StatusEventResponse, 0, len(t.StatusHistory)),
	}
	for _, a := range t.Attachments {
		detail.Attachments = append(detail.Attachments, dto.AttachmentResponse{Name: a.Name, Size: a.Size})
	}
	for _, m := range t.Messages {
		detail.Messages = append(detail.Messages, messageResponse(names, m))
	}
	for _, n := range t.InternalNotes {
		detail.InternalNotes = append(detail.InternalNotes, noteResponse(names, n))
	}
	for _, e := range t.StatusHistory {
		detail.StatusHistory = append(detail.StatusHistory, statusEventResponse(e))
	}
	return detail
}

func statusEventResponse(e domain.StatusEvent) dto.StatusEventResponse {
	return dto.StatusEventResponse{
		Status:    e.Status,
		ChangedBy: e.ChangedBy,
		ChangedAt: e.ChangedAt,
		Note:      e.Note,
	}
}

func messageResponse(names NameResolver, m domain.TicketMessage) dto.TicketMessageResponse {
	return dto.TicketMessageResponse{
		ID:         m.ID,
		AuthorID:   m.AuthorID,
		AuthorName: names.DisplayName(m.AuthorID),
		AuthorRole: m.AuthorRole,
		Body:       m.Body,
		CreatedAt:  m.CreatedAt,
	}
}

func noteResponse(names NameResolver, n domain.InternalNote) dto.TicketMessageResponse {
	return dto.TicketMessageResponse{
		ID:         n.ID,
		AuthorID:   n.AuthorID,
		AuthorName: names.DisplayName(n.AuthorID),
		AuthorRole: n.AuthorRole,
		Body:       n.Body,
		CreatedAt:  n.CreatedAt,
	}
}

// parseStatus keeps unknown values as-is so the workflow policy decides
// what to do with them.
func parseStatus(raw string) domain.TicketStatus {
	if status, err := domain.ParseTicketStatus(raw); err == nil {
		return status
	}
	return domain.TicketStatus(raw)
}

func parsePriority(raw string) domain.TicketPriority {
	for _, p := range domain.TicketPriorities {
		if strings.EqualFold(string(p), strings.TrimSpace(raw)) {
			return p
		}
	}
	return domain.TicketPriority(raw)
}

func parseArticleStatus(raw string) domain.ArticleStatus {
	for _, s := range []domain.ArticleStatus{domain.ArticleStatusDraft, domain.ArticleStatusPublished} {
		if strings.EqualFold(string(s), strings.TrimSpace(raw)) {
			return s
		}
	}
	return domain.ArticleStatus(strings.TrimSpace(raw))
}
