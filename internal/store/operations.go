package store

import (
	"context"
	"strings"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// FileTicketInput carries the fields of a new ticket. Priority defaults to
// Normal when empty.
type FileTicketInput struct {
	Subject     string
	Description string
	Category    string
	Priority    domain.TicketPriority
	Attachments []domain.Attachment
	RequesterID domain.UserID
}

type PostMessageInput struct {
	TicketID   string
	AuthorID   domain.UserID
	AuthorRole domain.Role
	Body       string
}

type PostNoteInput struct {
	TicketID string
	AuthorID domain.UserID
	Body     string
}

// ChangeStatusInput requests a workflow move. Priority, when set, overrides
// the ticket priority in the same commit.
type ChangeStatusInput struct {
	TicketID  string
	Status    domain.TicketStatus
	ChangedBy domain.UserID
	Priority  *domain.TicketPriority
	AutoClose bool
	Note      string
}

// UpsertArticleInput creates an article when ID is empty or unknown and
// replaces it otherwise.
type UpsertArticleInput struct {
	ID       string
	Title    string
	Content  string
	Category string
	Keywords []string
	AuthorID domain.UserID
	Status   domain.ArticleStatus
}

// FileTicket opens a new ticket in the Open state.
func (s *Store) FileTicket(ctx context.Context, in FileTicketInput) (*domain.Ticket, error) {
	missing := in.missingFields()
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("required fields are missing", map[string]any{"fields": missing})
	}
	priority := in.Priority
	if priority == "" {
		priority = domain.TicketPriorityNormal
	}
	if !priority.IsValid() {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": string(priority)})
	}

	var ticket *domain.Ticket
	_, err := s.commit(ctx, func(now time.Time) Action {
		due := now.Add(s.closeDue)
		ticket = &domain.Ticket{
			ID:          s.ids.TicketID(),
			Subject:     in.Subject,
			Description: in.Description,
			Category:    in.Category,
			Priority:    priority,
			Status:      domain.TicketStatusOpen,
			RequesterID: in.RequesterID,
			CreatedAt:   now,
			UpdatedAt:   now,
			CloseDueAt:  &due,
			Attachments: append([]domain.Attachment{}, in.Attachments...),
			StatusHistory: []domain.StatusEvent{{
				Status:    domain.TicketStatusOpen,
				ChangedBy: in.RequesterID,
				ChangedAt: now,
			}},
		}
		return CreateTicket{Ticket: ticket}
	})
	if err != nil {
		return nil, err
	}
	return ticket.Clone(), nil
}

// PostMessage appends a public reply to a ticket.
func (s *Store) PostMessage(ctx context.Context, in PostMessageInput) (*domain.TicketMessage, error) {
	if strings.TrimSpace(in.Body) == "" {
		return nil, apperrors.NewValidationError("message body is required", nil)
	}
	if !in.AuthorRole.IsValid() {
		return nil, apperrors.NewValidationError("invalid author role", map[string]any{"role": string(in.AuthorRole)})
	}

	var msg domain.TicketMessage
	_, err := s.commit(ctx, func(now time.Time) Action {
		msg = domain.TicketMessage{
			ID:         s.ids.MessageID(),
			AuthorID:   in.AuthorID,
			AuthorRole: in.AuthorRole,
			Type:       domain.MessageTypePublic,
			Body:       in.Body,
			CreatedAt:  now,
		}
		return AddMessage{TicketID: in.TicketID, Message: msg}
	})
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// PostInternalNote appends a staff-only note. Notes never notify.
func (s *Store) PostInternalNote(ctx context.Context, in PostNoteInput) (*domain.InternalNote, error) {
	if strings.TrimSpace(in.Body) == "" {
		return nil, apperrors.NewValidationError("note body is required", nil)
	}

	var note domain.InternalNote
	_, err := s.commit(ctx, func(now time.Time) Action {
		note = domain.InternalNote{
			ID:         s.ids.NoteID(),
			AuthorID:   in.AuthorID,
			AuthorRole: domain.RoleAdmin,
			Body:       in.Body,
			CreatedAt:  now,
		}
		return AddInternalNote{TicketID: in.TicketID, Note: note}
	})
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// AssignTicket sets the assignee, or clears it when assignee is nil or empty.
func (s *Store) AssignTicket(ctx context.Context, ticketID string, assignee *domain.UserID, changedBy domain.UserID) (*domain.Ticket, error) {
	if assignee != nil && strings.TrimSpace(assignee.String()) == "" {
		assignee = nil
	}
	next, err := s.commit(ctx, func(time.Time) Action {
		return AssignTicket{TicketID: ticketID, AssigneeID: assignee, ChangedBy: changedBy}
	})
	if err != nil {
		return nil, err
	}
	return ticketFrom(next, ticketID)
}

// ChangeStatus moves a ticket through the workflow. Under the permissive
// policy an unknown status leaves the ticket untouched and returns it as is.
func (s *Store) ChangeStatus(ctx context.Context, in ChangeStatusInput) (*domain.Ticket, error) {
	next, err := s.commit(ctx, func(time.Time) Action {
		return ChangeStatus{
			TicketID:  in.TicketID,
			Status:    in.Status,
			ChangedBy: in.ChangedBy,
			Priority:  in.Priority,
			AutoClose: in.AutoClose,
			Note:      in.Note,
		}
	})
	if err != nil {
		return nil, err
	}
	return ticketFrom(next, in.TicketID)
}

// UpsertArticle creates or replaces a knowledge base article.
func (s *Store) UpsertArticle(ctx context.Context, in UpsertArticleInput) (*domain.Article, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperrors.NewValidationError("title is required", map[string]any{"fields": []string{"title"}})
	}
	if in.Status != "" && !in.Status.IsValid() {
		return nil, apperrors.NewValidationError("invalid article status", map[string]any{"status": string(in.Status)})
	}

	id := strings.TrimSpace(in.ID)
	next, err := s.commit(ctx, func(time.Time) Action {
		if id == "" {
			id = s.ids.ArticleID()
		}
		return UpsertArticle{Article: &domain.Article{
			ID:       id,
			Title:    in.Title,
			Content:  in.Content,
			Category: in.Category,
			Keywords: normalizeKeywords(in.Keywords),
			Status:   in.Status,
			AuthorID: in.AuthorID,
		}}
	})
	if err != nil {
		return nil, err
	}
	idx := articleIndex(next.KnowledgeBase, id)
	return next.KnowledgeBase[idx].Clone(), nil
}

// DeleteArticle removes an article. Deleting an unknown id is not an error.
func (s *Store) DeleteArticle(ctx context.Context, id string) error {
	_, err := s.commit(ctx, func(time.Time) Action {
		return DeleteArticle{ID: id}
	})
	return err
}

// RecordNotification appends an administrative log entry.
func (s *Store) RecordNotification(ctx context.Context, message string, ticketID *string) (*domain.Notification, error) {
	if ticketID != nil && strings.TrimSpace(*ticketID) == "" {
		ticketID = nil
	}
	next, err := s.commit(ctx, func(time.Time) Action {
		return RecordNotification{Message: message, TicketID: ticketID}
	})
	if err != nil {
		return nil, err
	}
	n := next.Notifications[0]
	if n.TicketID != nil {
		id := *n.TicketID
		n.TicketID = &id
	}
	return &n, nil
}

// MarkArticleHelpful records one helpful vote.
func (s *Store) MarkArticleHelpful(ctx context.Context, id string) (*domain.Article, error) {
	next, err := s.commit(ctx, func(time.Time) Action {
		return MarkArticleHelpful{ID: id}
	})
	if err != nil {
		return nil, err
	}
	idx := articleIndex(next.KnowledgeBase, id)
	return next.KnowledgeBase[idx].Clone(), nil
}

func ticketFrom(st *State, id string) (*domain.Ticket, error) {
	idx := ticketIndex(st.Tickets, id)
	if idx < 0 {
		return nil, ticketNotFound(id)
	}
	return st.Tickets[idx].Clone(), nil
}

func (in FileTicketInput) missingFields() []string {
	var missing []string
	check := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	check("subject", in.Subject)
	check("description", in.Description)
	check("category", in.Category)
	check("requester_id", in.RequesterID.String())
	return missing
}

// normalizeKeywords trims, lowercases and de-duplicates while keeping order.
func normalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	seen := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}
