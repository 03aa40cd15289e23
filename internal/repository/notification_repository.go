package repository

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// NotificationRepository archives the notification log.
type NotificationRepository interface {
	Insert(ctx context.Context, n domain.Notification) error
	ListRecent(ctx context.Context, limit int) ([]domain.Notification, error)
}

type notificationRepository struct {
	db DBTX
}

// NewNotificationRepository builds repository.
func NewNotificationRepository(db DBTX) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Insert(ctx context.Context, n domain.Notification) error {
	const query = `
        INSERT INTO notification_log (id, type, message, ticket_id, created_at)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (id) DO NOTHING`
	_, err := r.db.Exec(ctx, query, n.ID, string(n.Type), n.Message, n.TicketID, n.CreatedAt)
	return err
}

func (r *notificationRepository) ListRecent(ctx context.Context, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
        SELECT id, type, message, ticket_id, created_at
        FROM notification_log ORDER BY created_at DESC LIMIT $1`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Notification
	for rows.Next() {
		var (
			n   domain.Notification
			typ string
		)
		if err := rows.Scan(&n.ID, &typ, &n.Message, &n.TicketID, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.Type = domain.NotificationType(typ)
		result = append(result, n)
	}
	return result, rows.Err()
}
