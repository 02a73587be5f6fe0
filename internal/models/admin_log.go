package models

import "time"

// AdminAction constants represent state-changing admin actions.
const (
	AdminActionRequestApproved    = "request_approved"
	AdminActionRequestRejected    = "request_rejected"
	AdminActionScheduleChange     = "schedule_change"
	AdminActionScheduleImport     = "schedule_import"
	AdminActionMaterializeFailed  = "materialize_failed"
	AdminActionSpecialDayChange   = "special_day_change"
)

// AdminLog is one append-only audit trail record. Rows are never
// updated or deleted.
type AdminLog struct {
	ID          int64     `db:"id" json:"id"`
	AdminID     int64     `db:"admin_id" json:"admin_id"`
	ActionType  string    `db:"action_type" json:"action_type"`
	Description string    `db:"description" json:"description"`
	OldValue    *string   `db:"old_value" json:"old_value,omitempty"`
	NewValue    *string   `db:"new_value" json:"new_value,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
