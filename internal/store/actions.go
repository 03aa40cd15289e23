package store

import "github.com/spec-kit/helpdesk-service/internal/domain"

// Action is one of the closed set of mutations the reducer understands.
type Action interface {
	actionName() string
}

// CreateTicket inserts a fully built ticket.
type CreateTicket struct {
	Ticket *domain.Ticket
}

// AddMessage appends a public reply.
type AddMessage struct {
	TicketID string
	Message  domain.TicketMessage
}

// AddInternalNote appends a staff-only note.
type AddInternalNote struct {
	TicketID string
	Note     domain.InternalNote
}

// AssignTicket sets or clears the assignee. A nil AssigneeID unassigns.
type AssignTicket struct {
	TicketID   string
	AssigneeID *domain.UserID
	ChangedBy  domain.UserID
}

// ChangeStatus moves a ticket through the workflow. Status is kept as the raw
// requested value so the reducer can apply the workflow policy to it.
type ChangeStatus struct {
	TicketID  string
	Status    domain.TicketStatus
	ChangedBy domain.UserID
	Priority  *domain.TicketPriority
	AutoClose bool
	Note      string
}

// UpsertArticle creates or replaces an article keyed by its id.
type UpsertArticle struct {
	Article *domain.Article
}

// DeleteArticle removes an article if present.
type DeleteArticle struct {
	ID string
}

// RecordNotification appends a log-type entry directly.
type RecordNotification struct {
	Message  string
	TicketID *string
}

// MarkArticleHelpful bumps the helpful counter of an article.
type MarkArticleHelpful struct {
	ID string
}

func (CreateTicket) actionName() string       { return "CREATE_TICKET" }
func (AddMessage) actionName() string         { return "ADD_MESSAGE" }
func (AddInternalNote) actionName() string    { return "ADD_INTERNAL_NOTE" }
func (AssignTicket) actionName() string       { return "ASSIGN_TICKET" }
func (ChangeStatus) actionName() string       { return "CHANGE_STATUS" }
func (UpsertArticle) actionName() string      { return "UPSERT_KB" }
func (DeleteArticle) actionName() string      { return "DELETE_KB" }
func (RecordNotification) actionName() string { return "RECORD_NOTIFICATION" }
func (MarkArticleHelpful) actionName() string { return "MARK_KB_HELPFUL" }
