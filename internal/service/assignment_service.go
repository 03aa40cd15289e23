package service

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/store"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// StaffDirectory lists the users tickets can be assigned to.
type StaffDirectory interface {
	Staff() []domain.User
}

// AssignmentService picks assignees for tickets.
type AssignmentService struct {
	store *store.Store
	staff StaffDirectory
}

// NewAssignmentService creates the service.
func NewAssignmentService(st *store.Store, staff StaffDirectory) *AssignmentService {
	return &AssignmentService{store: st, staff: staff}
}

// SelfAssignTicket allows a staff member to assign ticket to themselves.
func (s *AssignmentService) SelfAssignTicket(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	id := actor.ID
	return s.store.AssignTicket(ctx, ticketID, &id, actor.ID)
}

// AutoAssignTicket assigns the staff member with the fewest waiting tickets.
// Ties are spread by hashing the ticket id.
func (s *AssignmentService) AutoAssignTicket(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if _, ok := s.store.Ticket(ticketID); !ok {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"id": ticketID})
	}
	candidates := leastLoaded(s.staff.Staff(), s.store.Snapshot().Tickets, ticketID)
	if len(candidates) == 0 {
		return nil, apperrors.NewConflict("no eligible staff", nil)
	}
	assignee := candidates[selectIndex(ticketID, len(candidates))].ID
	return s.store.AssignTicket(ctx, ticketID, &assignee, actor.ID)
}

// leastLoaded returns the staff members holding the fewest waiting tickets,
// not counting the ticket being assigned.
func leastLoaded(staff []domain.User, tickets []*domain.Ticket, skipID string) []domain.User {
	load := make(map[domain.UserID]int, len(staff))
	for _, t := range tickets {
		if t.ID == skipID || t.AssigneeID == nil || !t.Status.IsWaiting() {
			continue
		}
		load[*t.AssigneeID]++
	}

	var best []domain.User
	min := -1
	for _, u := range staff {
		n := load[u.ID]
		switch {
		case min < 0 || n < min:
			min = n
			best = []domain.User{u}
		case n == min:
			best = append(best, u)
		}
	}
	return best
}

func selectIndex(key string, length int) int {
	if length == 0 {
		return 0
	}
	sum := 0
	for _, ch := range key {
		sum += int(ch)
	}
	return sum % length
}
