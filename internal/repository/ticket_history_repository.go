package repository

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// StatusEventRecord is one archived workflow entry.
type StatusEventRecord struct {
	EventID  string
	TicketID string
	Event    domain.StatusEvent
}

// TicketHistoryRepository archives status events outside the volatile store.
type TicketHistoryRepository interface {
	Append(ctx context.Context, record StatusEventRecord) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.StatusEvent, error)
}

type ticketHistoryRepository struct {
	db DBTX
}

// NewTicketHistoryRepository builds repository.
func NewTicketHistoryRepository(db DBTX) TicketHistoryRepository {
	return &ticketHistoryRepository{db: db}
}

func (r *ticketHistoryRepository) Append(ctx context.Context, record StatusEventRecord) error {
	const query = `
        INSERT INTO ticket_status_events (event_id, ticket_id, status, changed_by, changed_at, note)
        VALUES ($1,$2,$3,$4,$5,$6)
        ON CONFLICT (event_id) DO NOTHING`
	_, err := r.db.Exec(ctx, query,
		record.EventID,
		record.TicketID,
		string(record.Event.Status),
		record.Event.ChangedBy.String(),
		record.Event.ChangedAt,
		record.Event.Note,
	)
	return err
}

func (r *ticketHistoryRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.StatusEvent, error) {
	const query = `
        SELECT status, changed_by, changed_at, note
        FROM ticket_status_events WHERE ticket_id=$1 ORDER BY changed_at ASC, id ASC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StatusEvent
	for rows.Next() {
		var (
			evt       domain.StatusEvent
			status    string
			changedBy string
		)
		if err := rows.Scan(&status, &changedBy, &evt.ChangedAt, &evt.Note); err != nil {
			return nil, err
		}
		evt.Status = domain.TicketStatus(status)
		evt.ChangedBy = domain.UserID(changedBy)
		result = append(result, evt)
	}
	return result, rows.Err()
}
