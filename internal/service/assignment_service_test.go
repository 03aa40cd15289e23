package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

func TestAssignmentService_SelfAssign(t *testing.T) {
	f := newFixture(t)
	svc := NewAssignmentService(f.store, f.users)

	ticket, err := svc.SelfAssignTicket(context.Background(), f.yai, "IT-2025-0001")
	require.NoError(t, err)
	require.NotNil(t, ticket.AssigneeID)
	assert.Equal(t, domain.UserID("u-003"), *ticket.AssigneeID)

	last, _ := ticket.LastStatusEvent()
	assert.Equal(t, "Assign to u-003", last.Note)

	_, err = svc.SelfAssignTicket(context.Background(), f.may, "IT-2025-0001")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
}

func TestAssignmentService_AutoAssignPicksLeastLoaded(t *testing.T) {
	f := newFixture(t)
	svc := NewAssignmentService(f.store, f.users)
	ctx := context.Background()

	filed, err := f.tickets.FileTicket(ctx, f.may, TicketCreateInput{
		Subject: "Keyboard missing keys", Description: "F and J", Category: "Hardware",
	})
	require.NoError(t, err)

	// u-002 already holds the waiting seed ticket, so u-003 is chosen.
	ticket, err := svc.AutoAssignTicket(ctx, f.win, filed.ID)
	require.NoError(t, err)
	require.NotNil(t, ticket.AssigneeID)
	assert.Equal(t, domain.UserID("u-003"), *ticket.AssigneeID)

	_, err = svc.AutoAssignTicket(ctx, f.win, "IT-2025-9999")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestLeastLoaded(t *testing.T) {
	a, b := domain.UserID("a"), domain.UserID("b")
	staff := []domain.User{{ID: a}, {ID: b}}
	tickets := []*domain.Ticket{
		{ID: "1", AssigneeID: &a, Status: domain.TicketStatusOpen},
		{ID: "2", AssigneeID: &b, Status: domain.TicketStatusClosed},
		{ID: "3", AssigneeID: &a, Status: domain.TicketStatusPending},
	}

	assert.Equal(t, []domain.User{{ID: b}}, leastLoaded(staff, tickets, ""))
	assert.Len(t, leastLoaded(staff, tickets[:1], "1"), 2, "the ticket being assigned does not count")
	assert.Empty(t, leastLoaded(nil, tickets, ""))
}
