package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/store"
)

type captureQueue struct {
	mu     sync.Mutex
	events []events.Event
}

func (q *captureQueue) Enqueue(evt events.Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = append(q.events, evt)
	return true
}

func (q *captureQueue) types() []events.EventType {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]events.EventType, 0, len(q.events))
	for _, evt := range q.events {
		out = append(out, evt.Type)
	}
	return out
}

func TestNotificationService_ForwardsArchivableEvents(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	queue := &captureQueue{}
	NewNotificationService(dispatcher, queue, zap.NewNop(), config.NotificationConfig{EmailFrom: "helpdesk@example.com"}).RegisterHandlers()

	f := newFixture(t, store.WithDispatcher(dispatcher))
	ctx := context.Background()

	_, err := f.tickets.AddNote(ctx, f.win, "IT-2025-0001", "swap PSU")
	require.NoError(t, err)
	_, err = f.tickets.ChangeStatus(ctx, f.win, "IT-2025-0001", StatusChangeInput{Status: "Resolved"})
	require.NoError(t, err)

	assert.Equal(t, []events.EventType{
		events.EventTicketStatusChanged,
		events.EventNotificationRecorded,
	}, queue.types())
}

func TestNotificationService_NilQueue(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	NewNotificationService(dispatcher, nil, zap.NewNop(), config.NotificationConfig{}).RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{Type: events.EventTicketAssigned})
	assert.NoError(t, err)
}

func TestNotificationService_ForwardsTicketCreation(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	queue := &captureQueue{}
	NewNotificationService(dispatcher, queue, zap.NewNop(), config.NotificationConfig{}).RegisterHandlers()

	f := newFixture(t, store.WithDispatcher(dispatcher))
	_, err := f.tickets.FileTicket(context.Background(), f.may, TicketCreateInput{
		Subject: "Cannot print", Description: "Queue stuck", Category: "Hardware",
	})
	require.NoError(t, err)

	assert.Equal(t, []events.EventType{
		events.EventTicketCreated,
		events.EventNotificationRecorded,
	}, queue.types())
}
