package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

type stubNotificationRepo struct {
	items     []domain.Notification
	gotLimit  int
	listError error
}

func (r *stubNotificationRepo) Insert(context.Context, domain.Notification) error { return nil }

func (r *stubNotificationRepo) ListRecent(_ context.Context, limit int) ([]domain.Notification, error) {
	r.gotLimit = limit
	return r.items, r.listError
}

type stubHistoryRepo struct {
	byTicket map[string][]domain.StatusEvent
}

func (r *stubHistoryRepo) Append(context.Context, repository.StatusEventRecord) error { return nil }

func (r *stubHistoryRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.StatusEvent, error) {
	return r.byTicket[ticketID], nil
}

func TestArchiveService_Disabled(t *testing.T) {
	f := newFixture(t)
	svc := NewArchiveService(nil, nil, f.store)
	ctx := context.Background()

	assert.False(t, svc.Enabled())
	_, err := svc.RecentNotifications(ctx, f.win, 10)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnavailable))
	_, err = svc.TicketHistory(ctx, f.win, "IT-2025-0001")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnavailable))
}

func TestArchiveService_RecentNotifications(t *testing.T) {
	f := newFixture(t)
	notifications := &stubNotificationRepo{items: []domain.Notification{{ID: "nt-7"}}}
	svc := NewArchiveService(notifications, &stubHistoryRepo{}, f.store)
	ctx := context.Background()

	_, err := svc.RecentNotifications(ctx, f.may, 10)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	items, err := svc.RecentNotifications(ctx, f.win, 0)
	require.NoError(t, err)
	assert.Equal(t, []domain.Notification{{ID: "nt-7"}}, items)
	assert.Equal(t, defaultArchiveLimit, notifications.gotLimit)

	notifications.listError = errors.New("connection refused")
	_, err = svc.RecentNotifications(ctx, f.win, 5)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInternal))
}

func TestArchiveService_TicketHistory(t *testing.T) {
	f := newFixture(t)
	history := &stubHistoryRepo{byTicket: map[string][]domain.StatusEvent{
		"IT-2025-0500": {{Status: domain.TicketStatusOpen, ChangedBy: "u-001"}},
	}}
	svc := NewArchiveService(&stubNotificationRepo{}, history, f.store)
	ctx := context.Background()

	archived, err := svc.TicketHistory(ctx, f.yai, "IT-2025-0500")
	require.NoError(t, err)
	assert.Len(t, archived, 1)

	empty, err := svc.TicketHistory(ctx, f.yai, "IT-2025-0001")
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = svc.TicketHistory(ctx, f.yai, "IT-2025-9999")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}
