package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/internal/store"
)

type recordingSink struct {
	mu     sync.Mutex
	name   string
	events []events.Event
	err    error
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Handle(_ context.Context, evt events.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, evt)
	return s.err
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func TestNotificationWorker_DeliversToEverySink(t *testing.T) {
	failing := &recordingSink{name: "failing", err: errors.New("down")}
	ok := &recordingSink{name: "ok"}
	w := NewNotificationWorker(zap.NewNop(), 8, failing, ok)
	w.Start(context.Background())

	for i := 0; i < 3; i++ {
		require.True(t, w.Enqueue(events.Event{ID: "evt", Type: events.EventNotificationRecorded}))
	}
	w.Stop()

	assert.Equal(t, 3, failing.count(), "a failing sink does not stop delivery")
	assert.Equal(t, 3, ok.count())
	assert.False(t, w.Enqueue(events.Event{}), "stopped worker rejects events")
}

func TestNotificationWorker_DropsWhenFull(t *testing.T) {
	w := NewNotificationWorker(zap.NewNop(), 1)

	assert.True(t, w.Enqueue(events.Event{ID: "1"}))
	assert.False(t, w.Enqueue(events.Event{ID: "2"}))
	w.Stop()
}

func TestNotificationWorker_StopsOnContextCancel(t *testing.T) {
	w := NewNotificationWorker(zap.NewNop(), 4)
	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after context cancel")
	}
}

type fakePublisher struct {
	channel string
	value   any
}

func (p *fakePublisher) PublishJSON(_ context.Context, channel string, v any) error {
	p.channel, p.value = channel, v
	return nil
}

func TestRedisSink_PublishesNotificationsOnly(t *testing.T) {
	pub := &fakePublisher{}
	sink := NewRedisSink(pub, "helpdesk.notifications")

	require.NoError(t, sink.Handle(context.Background(), events.Event{Type: events.EventTicketCreated}))
	assert.Nil(t, pub.value)

	evt := events.Event{ID: "e1", Type: events.EventNotificationRecorded}
	require.NoError(t, sink.Handle(context.Background(), evt))
	assert.Equal(t, "helpdesk.notifications", pub.channel)
	assert.Equal(t, evt, pub.value)
}

type fakeNotificationRepo struct{ inserted []domain.Notification }

func (r *fakeNotificationRepo) Insert(_ context.Context, n domain.Notification) error {
	r.inserted = append(r.inserted, n)
	return nil
}

func (r *fakeNotificationRepo) ListRecent(context.Context, int) ([]domain.Notification, error) {
	return r.inserted, nil
}

type fakeHistoryRepo struct{ records []repository.StatusEventRecord }

func (r *fakeHistoryRepo) Append(_ context.Context, rec repository.StatusEventRecord) error {
	r.records = append(r.records, rec)
	return nil
}

func (r *fakeHistoryRepo) ListByTicket(context.Context, string) ([]domain.StatusEvent, error) {
	return nil, nil
}

func TestArchiveSink_RoutesByPayload(t *testing.T) {
	notifications := &fakeNotificationRepo{}
	history := &fakeHistoryRepo{}
	sink := NewArchiveSink(notifications, history)
	ctx := context.Background()
	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	require.NoError(t, sink.Handle(ctx, events.Event{
		Type:    events.EventNotificationRecorded,
		Payload: events.NotificationRecordedPayload{Notification: domain.Notification{ID: "nt-1"}},
	}))
	require.NoError(t, sink.Handle(ctx, events.Event{
		ID: "e2", Type: events.EventTicketStatusChanged, TicketID: "IT-2025-0001", Actor: "u-002", Timestamp: at,
		Payload: events.TicketStatusChangedPayload{OldStatus: domain.TicketStatusOpen, NewStatus: domain.TicketStatusPending, Note: "waiting on vendor"},
	}))
	require.NoError(t, sink.Handle(ctx, events.Event{
		ID: "e3", Type: events.EventTicketAssigned, TicketID: "IT-2025-0001", Actor: "u-003", Timestamp: at,
		Payload: events.TicketAssignedPayload{Status: domain.TicketStatusPending, Note: "Assign to u-002"},
	}))
	require.NoError(t, sink.Handle(ctx, events.Event{Type: events.EventTicketNoteAdded, Payload: events.TicketNoteAddedPayload{}}))

	require.Len(t, notifications.inserted, 1)
	assert.Equal(t, "nt-1", notifications.inserted[0].ID)
	require.Len(t, history.records, 2)
	assert.Equal(t, repository.StatusEventRecord{
		EventID:  "e2",
		TicketID: "IT-2025-0001",
		Event:    domain.StatusEvent{Status: domain.TicketStatusPending, ChangedBy: "u-002", ChangedAt: at, Note: "waiting on vendor"},
	}, history.records[0])
	assert.Equal(t, "Assign to u-002", history.records[1].Event.Note)
}

func TestArchiveSink_ArchivesCreation(t *testing.T) {
	sink := NewArchiveSink(&fakeNotificationRepo{}, &fakeHistoryRepo{})
	history := sink.history.(*fakeHistoryRepo)
	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	require.NoError(t, sink.Handle(context.Background(), events.Event{
		ID: "e1", Type: events.EventTicketCreated, TicketID: "IT-2025-1001", Actor: "u-001", Timestamp: at,
		Payload: events.TicketCreatedPayload{Subject: "Printer jam", RequesterID: "u-001"},
	}))

	require.Len(t, history.records, 1)
	assert.Equal(t, repository.StatusEventRecord{
		EventID:  "e1",
		TicketID: "IT-2025-1001",
		Event:    domain.StatusEvent{Status: domain.TicketStatusOpen, ChangedBy: "u-001", ChangedAt: at},
	}, history.records[0])
}

func TestArchive_MirrorsInMemoryHistory(t *testing.T) {
	now := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)
	history := &fakeHistoryRepo{}
	w := NewNotificationWorker(zap.NewNop(), 16, NewArchiveSink(&fakeNotificationRepo{}, history))
	w.Start(context.Background())

	dispatcher := events.NewInMemoryDispatcher()
	service.NewNotificationService(dispatcher, w, zap.NewNop(), config.NotificationConfig{}).RegisterHandlers()
	st := store.New(store.Seed(now), store.WithClock(func() time.Time { return now }), store.WithDispatcher(dispatcher))
	ctx := context.Background()

	ticket, err := st.FileTicket(ctx, store.FileTicketInput{
		Subject: "Monitor flickers", Description: "Second screen", Category: "Hardware", RequesterID: "u-001",
	})
	require.NoError(t, err)
	ticket, err = st.ChangeStatus(ctx, store.ChangeStatusInput{
		TicketID: ticket.ID, Status: domain.TicketStatusInProgress, ChangedBy: "u-002",
	})
	require.NoError(t, err)
	w.Stop()

	var archived []domain.StatusEvent
	for _, rec := range history.records {
		if rec.TicketID == ticket.ID {
			archived = append(archived, rec.Event)
		}
	}
	assert.Equal(t, ticket.StatusHistory, archived)
}
