package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/identity"
	"github.com/spec-kit/helpdesk-service/internal/store"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const (
	// FilterAll disables a ticket list filter.
	FilterAll = "all"
	// FilterUnassigned matches tickets with no assignee.
	FilterUnassigned = "unassigned"

	topUrgentLimit = 5
)

// TicketService coordinates ticket workflows for an authenticated caller.
type TicketService struct {
	store *store.Store
	users *identity.Directory
	clock func() time.Time
}

// NewTicketService constructs the service.
func NewTicketService(st *store.Store, users *identity.Directory, clock func() time.Time) *TicketService {
	if clock == nil {
		clock = time.Now
	}
	return &TicketService{store: st, users: users, clock: clock}
}

// TicketFilter narrows ticket listings. Empty fields and "all" match
// everything.
type TicketFilter struct {
	Status   string
	Priority string
	Assignee string
	Search   string
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Subject     string
	Description string
	Category    string
	Priority    domain.TicketPriority
	Attachments []domain.Attachment
}

// StatusChangeInput requests a status move. An empty Status keeps the
// current one, which turns the call into a priority update. AutoClose marks a
// move made on the requester's behalf and always records an e-mail entry.
type StatusChangeInput struct {
	Status    domain.TicketStatus
	Priority  *domain.TicketPriority
	AutoClose bool
	Note      string
}

// DashboardStats is the staff overview of the ticket queue.
type DashboardStats struct {
	Total           int
	Waiting         int
	HighPriority    int
	UpdatedThisWeek int
	TopUrgent       []*domain.Ticket
}

// ListTickets returns the tickets visible to actor, newest activity first.
func (s *TicketService) ListTickets(actor *domain.User, filter TicketFilter) ([]*domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	snapshot := s.store.Snapshot()
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	out := make([]*domain.Ticket, 0, len(snapshot.Tickets))
	for _, t := range snapshot.Tickets {
		if !actor.IsStaff() && t.RequesterID != actor.ID {
			continue
		}
		if !matchesFilter(filter.Status, string(t.Status)) || !matchesFilter(filter.Priority, string(t.Priority)) {
			continue
		}
		if !matchesAssignee(filter.Assignee, t.AssigneeID) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Subject), search) &&
			!strings.Contains(strings.ToLower(t.ID), search) {
			continue
		}
		out = append(out, visibleTicket(actor, t))
	}
	sortByUpdatedDesc(out)
	return out, nil
}

// GetTicket fetches one ticket. End users only see their own tickets and
// never see internal notes.
func (s *TicketService) GetTicket(actor *domain.User, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.accessibleTicket(actor, ticketID)
	if err != nil {
		return nil, err
	}
	return visibleTicket(actor, ticket), nil
}

// FileTicket opens a ticket on behalf of actor.
func (s *TicketService) FileTicket(ctx context.Context, actor *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	ticket, err := s.store.FileTicket(ctx, store.FileTicketInput{
		Subject:     strings.TrimSpace(input.Subject),
		Description: strings.TrimSpace(input.Description),
		Category:    strings.TrimSpace(input.Category),
		Priority:    input.Priority,
		Attachments: input.Attachments,
		RequesterID: actor.ID,
	})
	if err != nil {
		return nil, err
	}
	return visibleTicket(actor, ticket), nil
}

// Reply posts a public message authored with the actor's role.
func (s *TicketService) Reply(ctx context.Context, actor *domain.User, ticketID, body string) (*domain.TicketMessage, error) {
	if _, err := s.accessibleTicket(actor, ticketID); err != nil {
		return nil, err
	}
	return s.store.PostMessage(ctx, store.PostMessageInput{
		TicketID:   ticketID,
		AuthorID:   actor.ID,
		AuthorRole: actor.Role,
		Body:       strings.TrimSpace(body),
	})
}

// AddNote posts a staff-only note.
func (s *TicketService) AddNote(ctx context.Context, actor *domain.User, ticketID, body string) (*domain.InternalNote, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	return s.store.PostInternalNote(ctx, store.PostNoteInput{
		TicketID: ticketID,
		AuthorID: actor.ID,
		Body:     strings.TrimSpace(body),
	})
}

// Assign sets or clears the assignee. Only staff members can be assigned.
func (s *TicketService) Assign(ctx context.Context, actor *domain.User, ticketID string, assignee *domain.UserID) (*domain.Ticket, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if assignee != nil && *assignee != "" && !s.users.IsStaff(*assignee) {
		return nil, apperrors.NewValidationError("assignee must be a staff member", map[string]any{"assignee_id": assignee.String()})
	}
	return s.store.AssignTicket(ctx, ticketID, assignee, actor.ID)
}

// ChangeStatus moves the ticket through the workflow. End users may only
// close a resolved ticket or reopen it.
func (s *TicketService) ChangeStatus(ctx context.Context, actor *domain.User, ticketID string, input StatusChangeInput) (*domain.Ticket, error) {
	ticket, err := s.accessibleTicket(actor, ticketID)
	if err != nil {
		return nil, err
	}
	target := input.Status
	if target == "" {
		target = ticket.Status
	}
	if !actor.IsStaff() {
		if input.AutoClose {
			return nil, apperrors.NewForbidden("only staff may auto-close tickets")
		}
		if err := requesterMayMove(ticket, target, input.Priority); err != nil {
			return nil, err
		}
	}
	updated, err := s.store.ChangeStatus(ctx, store.ChangeStatusInput{
		TicketID:  ticketID,
		Status:    target,
		ChangedBy: actor.ID,
		Priority:  input.Priority,
		AutoClose: input.AutoClose,
		Note:      strings.TrimSpace(input.Note),
	})
	if err != nil {
		return nil, err
	}
	return visibleTicket(actor, updated), nil
}

// CloseAsRequester closes a resolved ticket.
func (s *TicketService) CloseAsRequester(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, error) {
	return s.ChangeStatus(ctx, actor, ticketID, StatusChangeInput{Status: domain.TicketStatusClosed})
}

// Reopen puts a resolved or closed ticket back in progress.
func (s *TicketService) Reopen(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, error) {
	return s.ChangeStatus(ctx, actor, ticketID, StatusChangeInput{Status: domain.TicketStatusInProgress})
}

// Transitions lists the statuses the ticket may move to next.
func (s *TicketService) Transitions(actor *domain.User, ticketID string) ([]domain.TicketStatus, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	ticket, ok := s.store.Ticket(ticketID)
	if !ok {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"id": ticketID})
	}
	return domain.NextStatuses(ticket.Status), nil
}

// Dashboard summarizes the queue. The week starts on Sunday at midnight.
func (s *TicketService) Dashboard(actor *domain.User) (*DashboardStats, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	tickets := s.store.Snapshot().Tickets
	weekStart := startOfWeek(s.clock())

	stats := &DashboardStats{Total: len(tickets)}
	waiting := make([]*domain.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if t.UpdatedAt.After(weekStart) {
			stats.UpdatedThisWeek++
		}
		if !t.Status.IsWaiting() {
			continue
		}
		waiting = append(waiting, t)
		if t.Priority.IsUrgent() {
			stats.HighPriority++
		}
	}
	stats.Waiting = len(waiting)
	sortByUpdatedDesc(waiting)
	if len(waiting) > topUrgentLimit {
		waiting = waiting[:topUrgentLimit]
	}
	stats.TopUrgent = waiting
	return stats, nil
}

// Notifications returns the log, newest first.
func (s *TicketService) Notifications(actor *domain.User) ([]domain.Notification, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	return s.store.Snapshot().Notifications, nil
}

// RecordNotification appends an administrative log entry.
func (s *TicketService) RecordNotification(ctx context.Context, actor *domain.User, message string, ticketID *string) (*domain.Notification, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(message) == "" {
		return nil, apperrors.NewValidationError("message is required", nil)
	}
	return s.store.RecordNotification(ctx, strings.TrimSpace(message), ticketID)
}

// Metrics returns the reporting aggregate.
func (s *TicketService) Metrics(actor *domain.User) (*domain.Metrics, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	m := s.store.Snapshot().Metrics
	return &m, nil
}

func (s *TicketService) accessibleTicket(actor *domain.User, ticketID string) (*domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	ticket, ok := s.store.Ticket(ticketID)
	if !ok {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"id": ticketID})
	}
	if !actor.IsStaff() && ticket.RequesterID != actor.ID {
		return nil, apperrors.NewForbidden("access denied")
	}
	return ticket, nil
}

func requesterMayMove(ticket *domain.Ticket, target domain.TicketStatus, priority *domain.TicketPriority) error {
	if priority != nil {
		return apperrors.NewForbidden("only staff can change priority")
	}
	switch target {
	case domain.TicketStatusClosed:
		if ticket.Status != domain.TicketStatusResolved {
			return apperrors.NewIllegalTransition(string(ticket.Status), string(target), requesterTargets(ticket.Status))
		}
		return nil
	case domain.TicketStatusInProgress:
		return nil
	default:
		return apperrors.NewForbidden("requesters may only close or reopen tickets")
	}
}

func requesterTargets(current domain.TicketStatus) []string {
	allowed := []string{string(domain.TicketStatusInProgress)}
	if current == domain.TicketStatusResolved {
		allowed = append(allowed, string(domain.TicketStatusClosed))
	}
	return allowed
}

func requireStaff(actor *domain.User) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if !actor.IsStaff() {
		return apperrors.NewForbidden("staff role required")
	}
	return nil
}

func visibleTicket(actor *domain.User, t *domain.Ticket) *domain.Ticket {
	cp := t.Clone()
	if !actor.IsStaff() {
		cp.InternalNotes = nil
	}
	return cp
}

func matchesFilter(filter, value string) bool {
	filter = strings.TrimSpace(filter)
	return filter == "" || strings.EqualFold(filter, FilterAll) || strings.EqualFold(filter, value)
}

func matchesAssignee(filter string, assignee *domain.UserID) bool {
	filter = strings.TrimSpace(filter)
	switch {
	case filter == "" || strings.EqualFold(filter, FilterAll):
		return true
	case strings.EqualFold(filter, FilterUnassigned):
		return assignee == nil
	default:
		return assignee != nil && assignee.String() == filter
	}
}

func sortByUpdatedDesc(tickets []*domain.Ticket) {
	sort.SliceStable(tickets, func(i, j int) bool {
		return tickets[i].UpdatedAt.After(tickets[j].UpdatedAt)
	})
}

func startOfWeek(now time.Time) time.Time {
	y, m, d := now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return midnight.AddDate(0, 0, -int(now.Weekday()))
}
