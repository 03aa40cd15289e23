package worker

import (
	"context"
	"fmt"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// Publisher is satisfied by *persistence.Redis.
type Publisher interface {
	PublishJSON(ctx context.Context, channel string, v any) error
}

// RedisSink publishes recorded notifications on a pub/sub channel.
type RedisSink struct {
	publisher Publisher
	channel   string
}

func NewRedisSink(publisher Publisher, channel string) *RedisSink {
	return &RedisSink{publisher: publisher, channel: channel}
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) Handle(ctx context.Context, evt events.Event) error {
	if evt.Type != events.EventNotificationRecorded {
		return nil
	}
	return s.publisher.PublishJSON(ctx, s.channel, evt)
}

// ArchiveSink copies the notification log and status history to Postgres.
type ArchiveSink struct {
	notifications repository.NotificationRepository
	history       repository.TicketHistoryRepository
}

func NewArchiveSink(notifications repository.NotificationRepository, history repository.TicketHistoryRepository) *ArchiveSink {
	return &ArchiveSink{notifications: notifications, history: history}
}

func (s *ArchiveSink) Name() string { return "postgres-archive" }

func (s *ArchiveSink) Handle(ctx context.Context, evt events.Event) error {
	switch payload := evt.Payload.(type) {
	case events.NotificationRecordedPayload:
		return s.notifications.Insert(ctx, payload.Notification)
	case events.TicketCreatedPayload:
		// Every ticket is filed as Open.
		return s.appendHistory(ctx, evt, domain.StatusEvent{
			Status:    domain.TicketStatusOpen,
			ChangedBy: payload.RequesterID,
			ChangedAt: evt.Timestamp,
		})
	case events.TicketStatusChangedPayload:
		return s.appendHistory(ctx, evt, changeEvent(evt, payload.NewStatus, payload.Note))
	case events.TicketAssignedPayload:
		return s.appendHistory(ctx, evt, changeEvent(evt, payload.Status, payload.Note))
	default:
		return nil
	}
}

func changeEvent(evt events.Event, status domain.TicketStatus, note string) domain.StatusEvent {
	return domain.StatusEvent{
		Status:    status,
		ChangedBy: evt.Actor,
		ChangedAt: evt.Timestamp,
		Note:      note,
	}
}

func (s *ArchiveSink) appendHistory(ctx context.Context, evt events.Event, entry domain.StatusEvent) error {
	err := s.history.Append(ctx, repository.StatusEventRecord{
		EventID:  evt.ID,
		TicketID: evt.TicketID,
		Event:    entry,
	})
	if err != nil {
		return fmt.Errorf("archive status event for %s: %w", evt.TicketID, err)
	}
	return nil
}
