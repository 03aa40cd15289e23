package service

import (
	"context"
	"fmt"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/store"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const defaultArchiveLimit = 50

// ArchiveService reads the Postgres audit copy of the notification log and
// the status history. It outlives the in-memory store across restarts.
type ArchiveService struct {
	notifications repository.NotificationRepository
	history       repository.TicketHistoryRepository
	store         *store.Store
}

// NewArchiveService creates the service. Nil repositories mean the archive
// is disabled and every read reports UNAVAILABLE.
func NewArchiveService(notifications repository.NotificationRepository, history repository.TicketHistoryRepository, st *store.Store) *ArchiveService {
	return &ArchiveService{notifications: notifications, history: history, store: st}
}

// Enabled reports whether an archive backend is configured.
func (s *ArchiveService) Enabled() bool {
	return s != nil && s.notifications != nil && s.history != nil
}

// RecentNotifications returns up to limit archived entries, newest first.
func (s *ArchiveService) RecentNotifications(ctx context.Context, actor *domain.User, limit int) ([]domain.Notification, error) {
	if err := s.ready(actor); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultArchiveLimit
	}
	items, err := s.notifications.ListRecent(ctx, limit)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("list archived notifications: %w", err))
	}
	return items, nil
}

// TicketHistory returns the archived status events of a ticket, oldest
// first. Tickets from earlier runs are found even when the store no longer
// holds them.
func (s *ArchiveService) TicketHistory(ctx context.Context, actor *domain.User, ticketID string) ([]domain.StatusEvent, error) {
	if err := s.ready(actor); err != nil {
		return nil, err
	}
	items, err := s.history.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("list archived history for %s: %w", ticketID, err))
	}
	if len(items) == 0 {
		if _, ok := s.store.Ticket(ticketID); !ok {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": ticketID})
		}
	}
	return items, nil
}

func (s *ArchiveService) ready(actor *domain.User) error {
	if err := requireStaff(actor); err != nil {
		return err
	}
	if !s.Enabled() {
		return apperrors.NewUnavailable("audit archive is disabled")
	}
	return nil
}
