package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/internal/models"
)

// NotificationRepository persists the durable inbox.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository constructs the repository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts an unread notification and returns its id.
func (r *NotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	if notification.Status == "" {
		notification.Status = models.NotificationStatusUnread
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO notifications (admin_id, request_id, message, status, created_at)
	VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query,
		notification.AdminID, notification.RequestID, notification.Message,
		notification.Status, notification.CreatedAt,
	).Scan(&notification.ID); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// MarkRead flips one notification to read. Calling it twice is safe;
// the second call affects no rows and reports no error.
func (r *NotificationRepository) MarkRead(ctx context.Context, id int64) error {
	const query = `UPDATE notifications SET status = $1, read_at = $2 WHERE id = $3 AND status = $4`
	if _, err := r.db.ExecContext(ctx, query,
		models.NotificationStatusRead, time.Now().UTC(), id, models.NotificationStatusUnread,
	); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}

// MarkAllRead flips every unread notification of the recipient and
// returns how many rows changed.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, adminID int64) (int64, error) {
	const query = `UPDATE notifications SET status = $1, read_at = $2 WHERE admin_id = $3 AND status = $4`
	result, err := r.db.ExecContext(ctx, query,
		models.NotificationStatusRead, time.Now().UTC(), adminID, models.NotificationStatusUnread)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check marked rows: %w", err)
	}
	return rows, nil
}

// List returns a recipient's notifications, newest first, optionally
// narrowed to one read state.
func (r *NotificationRepository) List(ctx context.Context, adminID int64, status models.NotificationStatus) ([]models.Notification, error) {
	builder := strings.Builder{}
	builder.WriteString(`SELECT id, admin_id, request_id, message, status, created_at, read_at
	FROM notifications WHERE admin_id = $1`)
	args := []interface{}{adminID}
	if status != "" {
		args = append(args, status)
		builder.WriteString(fmt.Sprintf(" AND status = $%d", len(args)))
	}
	builder.WriteString(" ORDER BY created_at DESC")

	var notifications []models.Notification
	if err := r.db.SelectContext(ctx, &notifications, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}
