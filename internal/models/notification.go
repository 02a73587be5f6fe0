package models

import "time"

// NotificationStatus marks a notification as read or unread.
type NotificationStatus string

const (
	NotificationStatusUnread NotificationStatus = "unread"
	NotificationStatusRead   NotificationStatus = "read"
)

// Valid reports whether the status is one of the known values.
func (s NotificationStatus) Valid() bool {
	return s == NotificationStatusUnread || s == NotificationStatusRead
}

// Notification is one durable inbox entry, usually referencing the
// request it was produced for. Read state is only ever flipped by the
// recipient's acknowledgement.
type Notification struct {
	ID        int64              `db:"id" json:"id"`
	AdminID   int64              `db:"admin_id" json:"admin_id"`
	RequestID *int64             `db:"request_id" json:"request_id,omitempty"`
	Message   string             `db:"message" json:"message"`
	Status    NotificationStatus `db:"status" json:"status"`
	CreatedAt time.Time          `db:"created_at" json:"created_at"`
	ReadAt    *time.Time         `db:"read_at" json:"read_at,omitempty"`
}
