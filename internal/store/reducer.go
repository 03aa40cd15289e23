package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const bodyPreviewLen = 80

// reduceEnv is everything a reduction may consult besides the state itself.
type reduceEnv struct {
	now       time.Time
	ids       *IDAllocator
	policy    domain.WorkflowPolicy
	closeDue  time.Duration
	retention int
}

// reduce folds one action into st. It never mutates st: touched collections
// are copied and the result is a new snapshot. On error st is returned as-is.
// Returning st itself with a nil error means the action was a no-op.
func reduce(st *State, action Action, env reduceEnv) (*State, []events.Event, error) {
	switch a := action.(type) {
	case CreateTicket:
		return reduceCreateTicket(st, a, env)
	case AddMessage:
		return reduceAddMessage(st, a, env)
	case AddInternalNote:
		return reduceAddInternalNote(st, a, env)
	case AssignTicket:
		return reduceAssignTicket(st, a, env)
	case ChangeStatus:
		return reduceChangeStatus(st, a, env)
	case UpsertArticle:
		return reduceUpsertArticle(st, a, env)
	case DeleteArticle:
		return reduceDeleteArticle(st, a, env)
	case RecordNotification:
		return reduceRecordNotification(st, a, env)
	case MarkArticleHelpful:
		return reduceMarkArticleHelpful(st, a)
	default:
		return st, nil, fmt.Errorf("unsupported action %T", action)
	}
}

func reduceCreateTicket(st *State, a CreateTicket, env reduceEnv) (*State, []events.Event, error) {
	t := a.Ticket
	if t == nil || t.ID == "" {
		return st, nil, apperrors.NewValidationError("ticket is required", nil)
	}
	if ticketIndex(st.Tickets, t.ID) >= 0 {
		return st, nil, apperrors.NewConflict("ticket already exists", map[string]any{"ticket_id": t.ID})
	}
	last, ok := t.LastStatusEvent()
	if !ok || last.Status != t.Status {
		return st, nil, apperrors.NewValidationError("ticket history must end with its current status", nil)
	}

	next := *st
	next.Tickets = make([]*domain.Ticket, 0, len(st.Tickets)+1)
	next.Tickets = append(next.Tickets, t.Clone())
	next.Tickets = append(next.Tickets, st.Tickets...)

	evts := []events.Event{
		newEvent(events.EventTicketCreated, t.ID, t.RequesterID, env.now, events.TicketCreatedPayload{
			Subject:     t.Subject,
			Category:    t.Category,
			Priority:    t.Priority,
			RequesterID: t.RequesterID,
		}),
		env.record(&next, domain.NotificationTypeEmail, &t.ID, t.RequesterID,
			fmt.Sprintf("New ticket %s e-mailed to %s and the IT team", t.ID, t.RequesterID)),
	}
	return &next, evts, nil
}

func reduceAddMessage(st *State, a AddMessage, env reduceEnv) (*State, []events.Event, error) {
	idx := ticketIndex(st.Tickets, a.TicketID)
	if idx < 0 {
		return st, nil, ticketNotFound(a.TicketID)
	}
	t := st.Tickets[idx].Clone()
	t.Messages = append(t.Messages, a.Message)
	t.UpdatedAt = env.now

	next := *st
	next.Tickets = replaceTicket(st.Tickets, idx, t)
	evts := []events.Event{
		newEvent(events.EventTicketMessageAdded, t.ID, a.Message.AuthorID, env.now, events.TicketMessageAddedPayload{
			MessageID:   a.Message.ID,
			AuthorRole:  a.Message.AuthorRole,
			BodyPreview: preview(a.Message.Body),
		}),
		env.record(&next, domain.NotificationTypeEmail, &t.ID, a.Message.AuthorID,
			fmt.Sprintf("Reply notification e-mailed for ticket %s", t.ID)),
	}
	return &next, evts, nil
}

func reduceAddInternalNote(st *State, a AddInternalNote, env reduceEnv) (*State, []events.Event, error) {
	idx := ticketIndex(st.Tickets, a.TicketID)
	if idx < 0 {
		return st, nil, ticketNotFound(a.TicketID)
	}
	t := st.Tickets[idx].Clone()
	t.InternalNotes = append(t.InternalNotes, a.Note)
	t.UpdatedAt = env.now

	next := *st
	next.Tickets = replaceTicket(st.Tickets, idx, t)
	evts := []events.Event{
		newEvent(events.EventTicketNoteAdded, t.ID, a.Note.AuthorID, env.now, events.TicketNoteAddedPayload{NoteID: a.Note.ID}),
	}
	return &next, evts, nil
}

func reduceAssignTicket(st *State, a AssignTicket, env reduceEnv) (*State, []events.Event, error) {
	idx := ticketIndex(st.Tickets, a.TicketID)
	if idx < 0 {
		return st, nil, ticketNotFound(a.TicketID)
	}
	t := st.Tickets[idx].Clone()
	previous := t.AssigneeID

	note, target := "Unassign", "unassigned"
	t.AssigneeID = nil
	if a.AssigneeID != nil {
		assignee := *a.AssigneeID
		t.AssigneeID = &assignee
		note, target = "Assign to "+assignee.String(), assignee.String()
	}
	t.StatusHistory = append(t.StatusHistory, domain.StatusEvent{
		Status:    t.Status,
		ChangedBy: a.ChangedBy,
		ChangedAt: env.now,
		Note:      note,
	})
	t.UpdatedAt = env.now

	next := *st
	next.Tickets = replaceTicket(st.Tickets, idx, t)
	evts := []events.Event{
		newEvent(events.EventTicketAssigned, t.ID, a.ChangedBy, env.now, events.TicketAssignedPayload{
			AssigneeID:         t.AssigneeID,
			PreviousAssigneeID: previous,
			Status:             t.Status,
			Note:               note,
		}),
		env.record(&next, domain.NotificationTypeEmail, &t.ID, a.ChangedBy,
			fmt.Sprintf("Assignment of ticket %s to %s e-mailed", t.ID, target)),
	}
	return &next, evts, nil
}

func reduceChangeStatus(st *State, a ChangeStatus, env reduceEnv) (*State, []events.Event, error) {
	idx := ticketIndex(st.Tickets, a.TicketID)
	if idx < 0 {
		return st, nil, ticketNotFound(a.TicketID)
	}
	current := st.Tickets[idx]

	if !a.Status.IsValid() {
		if env.policy == domain.WorkflowPermissive {
			return st, nil, nil
		}
		return st, nil, apperrors.NewIllegalStatus(string(a.Status))
	}
	if env.policy != domain.WorkflowPermissive && !transitionAllowed(current.Status, a.Status) {
		allowed := make([]string, 0, 3)
		for _, s := range domain.NextStatuses(current.Status) {
			allowed = append(allowed, string(s))
		}
		return st, nil, apperrors.NewIllegalTransition(string(current.Status), string(a.Status), allowed)
	}
	if a.Priority != nil && !a.Priority.IsValid() {
		return st, nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": string(*a.Priority)})
	}

	t := current.Clone()
	old := t.Status
	t.Status = a.Status
	if a.Priority != nil {
		t.Priority = *a.Priority
	}
	t.StatusHistory = append(t.StatusHistory, domain.StatusEvent{
		Status:    a.Status,
		ChangedBy: a.ChangedBy,
		ChangedAt: env.now,
		Note:      a.Note,
	})
	if a.Status == domain.TicketStatusResolved {
		due := env.now.Add(env.closeDue)
		t.CloseDueAt = &due
	}
	t.UpdatedAt = env.now

	next := *st
	next.Tickets = replaceTicket(st.Tickets, idx, t)
	evts := []events.Event{
		newEvent(events.EventTicketStatusChanged, t.ID, a.ChangedBy, env.now, events.TicketStatusChangedPayload{
			OldStatus: old,
			NewStatus: t.Status,
			Priority:  t.Priority,
			AutoClose: a.AutoClose,
			Note:      a.Note,
		}),
	}
	if a.Status == domain.TicketStatusResolved || a.Status == domain.TicketStatusClosed || a.AutoClose {
		evts = append(evts, env.record(&next, domain.NotificationTypeEmail, &t.ID, a.ChangedBy,
			fmt.Sprintf("Ticket %s status changed to %s", t.ID, t.Status)))
	}
	return &next, evts, nil
}

// transitionAllowed applies the strict workflow table. Staying put is allowed
// so priority can change on its own, except on the terminal Canceled state.
func transitionAllowed(from, to domain.TicketStatus) bool {
	if from == to {
		return from != domain.TicketStatusCanceled
	}
	return domain.CanTransition(from, to)
}

func reduceUpsertArticle(st *State, a UpsertArticle, env reduceEnv) (*State, []events.Event, error) {
	if a.Article == nil || a.Article.ID == "" {
		return st, nil, apperrors.NewValidationError("article id is required", nil)
	}
	article := a.Article.Clone()
	if article.Keywords == nil {
		article.Keywords = []string{}
	}
	if article.Status == "" {
		article.Status = domain.ArticleStatusDraft
	}
	article.UpdatedAt = env.now

	next := *st
	idx := articleIndex(st.KnowledgeBase, article.ID)
	created := idx < 0
	if created {
		article.CreatedAt = env.now
		article.HelpfulCount = 0
		next.KnowledgeBase = make([]*domain.Article, 0, len(st.KnowledgeBase)+1)
		next.KnowledgeBase = append(next.KnowledgeBase, article)
		next.KnowledgeBase = append(next.KnowledgeBase, st.KnowledgeBase...)
	} else {
		existing := st.KnowledgeBase[idx]
		article.CreatedAt = existing.CreatedAt
		article.HelpfulCount = existing.HelpfulCount
		next.KnowledgeBase = append([]*domain.Article(nil), st.KnowledgeBase...)
		next.KnowledgeBase[idx] = article
	}

	evts := []events.Event{
		newEvent(events.EventArticleUpserted, "", article.AuthorID, env.now, events.ArticleUpsertedPayload{
			ArticleID: article.ID,
			Created:   created,
			Status:    article.Status,
		}),
	}
	return &next, evts, nil
}

func reduceDeleteArticle(st *State, a DeleteArticle, env reduceEnv) (*State, []events.Event, error) {
	idx := articleIndex(st.KnowledgeBase, a.ID)
	if idx < 0 {
		return st, nil, nil
	}
	next := *st
	next.KnowledgeBase = make([]*domain.Article, 0, len(st.KnowledgeBase)-1)
	next.KnowledgeBase = append(next.KnowledgeBase, st.KnowledgeBase[:idx]...)
	next.KnowledgeBase = append(next.KnowledgeBase, st.KnowledgeBase[idx+1:]...)
	evts := []events.Event{
		newEvent(events.EventArticleDeleted, "", "", env.now, events.ArticleDeletedPayload{ArticleID: a.ID}),
	}
	return &next, evts, nil
}

func reduceRecordNotification(st *State, a RecordNotification, env reduceEnv) (*State, []events.Event, error) {
	if strings.TrimSpace(a.Message) == "" {
		return st, nil, apperrors.NewValidationError("message is required", nil)
	}
	next := *st
	evt := env.record(&next, domain.NotificationTypeLog, a.TicketID, "", a.Message)
	return &next, []events.Event{evt}, nil
}

func reduceMarkArticleHelpful(st *State, a MarkArticleHelpful) (*State, []events.Event, error) {
	idx := articleIndex(st.KnowledgeBase, a.ID)
	if idx < 0 {
		return st, nil, apperrors.NewNotFound("article", map[string]any{"article_id": a.ID})
	}
	article := st.KnowledgeBase[idx].Clone()
	article.HelpfulCount++

	next := *st
	next.KnowledgeBase = append([]*domain.Article(nil), st.KnowledgeBase...)
	next.KnowledgeBase[idx] = article
	return &next, nil, nil
}

// record prepends a notification to next and trims the log to the
// retention cap. It returns the matching event.
func (env reduceEnv) record(next *State, typ domain.NotificationType, ticketID *string, actor domain.UserID, message string) events.Event {
	n := domain.Notification{
		ID:        env.ids.NotificationID(),
		Type:      typ,
		Message:   message,
		CreatedAt: env.now,
	}
	if ticketID != nil {
		id := *ticketID
		n.TicketID = &id
	}

	notifications := make([]domain.Notification, 0, len(next.Notifications)+1)
	notifications = append(notifications, n)
	notifications = append(notifications, next.Notifications...)
	if env.retention > 0 && len(notifications) > env.retention {
		notifications = notifications[:env.retention]
	}
	next.Notifications = notifications

	evt := newEvent(events.EventNotificationRecorded, "", actor, env.now, events.NotificationRecordedPayload{Notification: n})
	if n.TicketID != nil {
		evt.TicketID = *n.TicketID
	}
	return evt
}

func newEvent(typ events.EventType, ticketID string, actor domain.UserID, at time.Time, payload interface{}) events.Event {
	return events.Event{
		Type:      typ,
		TicketID:  ticketID,
		Actor:     actor,
		Timestamp: at,
		Payload:   payload,
	}
}

func ticketIndex(tickets []*domain.Ticket, id string) int {
	for i, t := range tickets {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func articleIndex(articles []*domain.Article, id string) int {
	for i, a := range articles {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func replaceTicket(tickets []*domain.Ticket, idx int, t *domain.Ticket) []*domain.Ticket {
	out := append([]*domain.Ticket(nil), tickets...)
	out[idx] = t
	return out
}

func ticketNotFound(id string) error {
	return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
}

func preview(body string) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= bodyPreviewLen {
		return body
	}
	return string(runes[:bodyPreviewLen]) + "..."
}
