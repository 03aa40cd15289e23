package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

func testEnv(policy domain.WorkflowPolicy) reduceEnv {
	return reduceEnv{
		now:      baseTime.Add(time.Hour),
		ids:      NewIDAllocator(SeedCounter),
		policy:   policy,
		closeDue: DefaultCloseDue,
	}
}

func TestReduce_DoesNotMutatePreviousState(t *testing.T) {
	seed := Seed(baseTime)
	pristine := seed.Clone()
	assignee := domain.UserID("u-003")

	actions := []Action{
		AddMessage{TicketID: "IT-2025-0001", Message: domain.TicketMessage{ID: "msg-x", Body: "hi"}},
		AddInternalNote{TicketID: "IT-2025-0001", Note: domain.InternalNote{ID: "note-x", Body: "n"}},
		AssignTicket{TicketID: "IT-2025-0001", AssigneeID: &assignee, ChangedBy: "u-003"},
		ChangeStatus{TicketID: "IT-2025-0001", Status: domain.TicketStatusResolved, ChangedBy: "u-002"},
		UpsertArticle{Article: &domain.Article{ID: "kb-001", Title: "t"}},
		DeleteArticle{ID: "kb-002"},
		RecordNotification{Message: "audit"},
		MarkArticleHelpful{ID: "kb-001"},
	}

	for _, action := range actions {
		t.Run(action.actionName(), func(t *testing.T) {
			next, _, err := reduce(&seed, action, testEnv(domain.WorkflowStrict))
			require.NoError(t, err)
			assert.NotSame(t, &seed, next)
			assert.Equal(t, pristine, seed.Clone())
		})
	}
}

func TestReduce_FailureReturnsPriorState(t *testing.T) {
	seed := Seed(baseTime)

	next, evts, err := reduce(&seed, AddMessage{TicketID: "missing"}, testEnv(domain.WorkflowStrict))
	require.Error(t, err)
	assert.Same(t, &seed, next)
	assert.Empty(t, evts)
}

func TestReduce_CreateTicketRejectsInconsistentHistory(t *testing.T) {
	seed := Seed(baseTime)
	ticket := &domain.Ticket{ID: "IT-2025-5000", Status: domain.TicketStatusOpen}

	_, _, err := reduce(&seed, CreateTicket{Ticket: ticket}, testEnv(domain.WorkflowStrict))
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	dup := &domain.Ticket{
		ID:            "IT-2025-0001",
		Status:        domain.TicketStatusOpen,
		StatusHistory: []domain.StatusEvent{{Status: domain.TicketStatusOpen}},
	}
	_, _, err = reduce(&seed, CreateTicket{Ticket: dup}, testEnv(domain.WorkflowStrict))
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
}

func TestReduce_ChangeStatusEvents(t *testing.T) {
	seed := Seed(baseTime)

	_, evts, err := reduce(&seed, ChangeStatus{
		TicketID:  "IT-2025-0001",
		Status:    domain.TicketStatusPending,
		ChangedBy: "u-002",
	}, testEnv(domain.WorkflowStrict))
	require.NoError(t, err)
	require.Len(t, evts, 1)
	assert.Equal(t, events.EventTicketStatusChanged, evts[0].Type)
	assert.Equal(t, events.TicketStatusChangedPayload{
		OldStatus: domain.TicketStatusInProgress,
		NewStatus: domain.TicketStatusPending,
		Priority:  domain.TicketPriorityHigh,
	}, evts[0].Payload)
}

func TestTransitionAllowed(t *testing.T) {
	tests := []struct {
		from, to domain.TicketStatus
		want     bool
	}{
		{domain.TicketStatusOpen, domain.TicketStatusInProgress, true},
		{domain.TicketStatusOpen, domain.TicketStatusResolved, false},
		{domain.TicketStatusInProgress, domain.TicketStatusInProgress, true},
		{domain.TicketStatusResolved, domain.TicketStatusClosed, true},
		{domain.TicketStatusClosed, domain.TicketStatusInProgress, true},
		{domain.TicketStatusClosed, domain.TicketStatusOpen, false},
		{domain.TicketStatusCanceled, domain.TicketStatusCanceled, false},
		{domain.TicketStatusCanceled, domain.TicketStatusOpen, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, transitionAllowed(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}
