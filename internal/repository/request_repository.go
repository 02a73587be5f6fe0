package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/internal/models"
)

const requestColumns = `id, teacher_id, schedule_id, request_type, status, reason,
	original_date, original_time_start, original_time_end, original_room,
	preferred_date_1, preferred_time_1_start, preferred_time_1_end, preferred_room_1,
	preferred_date_2, preferred_time_2_start, preferred_time_2_end, preferred_room_2,
	preferred_date_3, preferred_time_3_start, preferred_time_3_end, preferred_room_3,
	approved_date, approved_time_start, approved_time_end, approved_room,
	admin_comment, created_at, updated_at`

// RequestRepository persists change requests together with their
// submission notifications and resolution audit entries, keeping each
// lifecycle transition a single atomic unit.
type RequestRepository struct {
	db *sqlx.DB
}

// NewRequestRepository constructs the repository.
func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// Create inserts a pending request and its admin notifications in one
// transaction. The generated id is written back into request, and into
// every notification's request reference.
func (r *RequestRepository) Create(ctx context.Context, request *models.Request, notifications []models.Notification) error {
	now := time.Now().UTC()
	if request.Status == "" {
		request.Status = models.RequestStatusPending
	}
	request.CreatedAt = now
	request.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create request: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const insertRequest = `INSERT INTO requests
	(teacher_id, schedule_id, request_type, status, reason,
	 original_date, original_time_start, original_time_end, original_room,
	 preferred_date_1, preferred_time_1_start, preferred_time_1_end, preferred_room_1,
	 preferred_date_2, preferred_time_2_start, preferred_time_2_end, preferred_room_2,
	 preferred_date_3, preferred_time_3_start, preferred_time_3_end, preferred_room_3,
	 created_at, updated_at)
	VALUES (:teacher_id, :schedule_id, :request_type, :status, :reason,
	 :original_date, :original_time_start, :original_time_end, :original_room,
	 :preferred_date_1, :preferred_time_1_start, :preferred_time_1_end, :preferred_room_1,
	 :preferred_date_2, :preferred_time_2_start, :preferred_time_2_end, :preferred_room_2,
	 :preferred_date_3, :preferred_time_3_start, :preferred_time_3_end, :preferred_room_3,
	 :created_at, :updated_at)
	RETURNING id`
	stmt, err := tx.PrepareNamedContext(ctx, insertRequest)
	if err != nil {
		return fmt.Errorf("prepare create request: %w", err)
	}
	defer stmt.Close()
	if err := stmt.GetContext(ctx, &request.ID, request); err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	const insertNotification = `INSERT INTO notifications (admin_id, request_id, message, status, created_at)
	VALUES ($1, $2, $3, $4, $5)`
	for i := range notifications {
		n := &notifications[i]
		n.RequestID = &request.ID
		if n.Status == "" {
			n.Status = models.NotificationStatusUnread
		}
		n.CreatedAt = now
		if _, err := tx.ExecContext(ctx, insertNotification, n.AdminID, n.RequestID, n.Message, n.Status, n.CreatedAt); err != nil {
			return fmt.Errorf("create submission notification: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create request: %w", err)
	}
	return nil
}

// GetByID fetches a request by identifier.
func (r *RequestRepository) GetByID(ctx context.Context, id int64) (*models.Request, error) {
	query := fmt.Sprintf("SELECT %s FROM requests WHERE id = $1", requestColumns)
	var request models.Request
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		return nil, err
	}
	return &request, nil
}

// ListByTeacher returns a teacher's requests, newest first.
func (r *RequestRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]models.Request, error) {
	query := fmt.Sprintf("SELECT %s FROM requests WHERE teacher_id = $1 ORDER BY created_at DESC", requestColumns)
	var requests []models.Request
	if err := r.db.SelectContext(ctx, &requests, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher requests: %w", err)
	}
	return requests, nil
}

// ListPending returns pending requests in FIFO review order, oldest
// first, so the longest-waiting request surfaces on top.
func (r *RequestRepository) ListPending(ctx context.Context) ([]models.Request, error) {
	query := fmt.Sprintf("SELECT %s FROM requests WHERE status = $1 ORDER BY created_at ASC", requestColumns)
	var requests []models.Request
	if err := r.db.SelectContext(ctx, &requests, query, models.RequestStatusPending); err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	return requests, nil
}

// List returns requests matching the filter, newest first.
func (r *RequestRepository) List(ctx context.Context, filter models.RequestFilter) ([]models.Request, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0, 4)
	builder.WriteString(fmt.Sprintf("SELECT %s FROM requests", requestColumns))

	conditions := make([]string, 0, 3)
	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		conditions = append(conditions, fmt.Sprintf("request_type = $%d", len(args)))
	}
	if filter.TeacherID != 0 {
		args = append(args, filter.TeacherID)
		conditions = append(conditions, fmt.Sprintf("teacher_id = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY created_at DESC")

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	var requests []models.Request
	if err := r.db.SelectContext(ctx, &requests, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return requests, nil
}

// ResolveRequestParams groups mutable columns for the terminal
// transition plus the audit entry recorded with it. The approved_*
// fields are individually optional: a room change is approved with a
// room alone, a cancellation with nothing at all.
type ResolveRequestParams struct {
	ID                int64
	Status            models.RequestStatus
	ApprovedDate      *time.Time
	ApprovedTimeStart *string
	ApprovedTimeEnd   *string
	ApprovedRoom      *string
	AdminComment      *string
	UpdatedAt         time.Time
	Log               models.AdminLog
}

// Resolve flips a pending request into a terminal state and appends the
// audit entry in the same transaction. The UPDATE is guarded by
// status = 'pending' so two concurrent resolutions cannot both win;
// the loser observes sql.ErrNoRows.
func (r *RequestRepository) Resolve(ctx context.Context, params ResolveRequestParams) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin resolve request: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	setParts := []string{"status = $1", "updated_at = $2"}
	args := []interface{}{params.Status, params.UpdatedAt}
	if params.AdminComment != nil {
		args = append(args, params.AdminComment)
		setParts = append(setParts, fmt.Sprintf("admin_comment = $%d", len(args)))
	}
	if params.ApprovedDate != nil {
		args = append(args, params.ApprovedDate)
		setParts = append(setParts, fmt.Sprintf("approved_date = $%d", len(args)))
	}
	if params.ApprovedTimeStart != nil {
		args = append(args, params.ApprovedTimeStart)
		setParts = append(setParts, fmt.Sprintf("approved_time_start = $%d", len(args)))
	}
	if params.ApprovedTimeEnd != nil {
		args = append(args, params.ApprovedTimeEnd)
		setParts = append(setParts, fmt.Sprintf("approved_time_end = $%d", len(args)))
	}
	if params.ApprovedRoom != nil {
		args = append(args, params.ApprovedRoom)
		setParts = append(setParts, fmt.Sprintf("approved_room = $%d", len(args)))
	}
	args = append(args, params.ID)
	query := fmt.Sprintf("UPDATE requests SET %s WHERE id = $%d AND status = '%s'",
		strings.Join(setParts, ", "), len(args), models.RequestStatusPending)

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("resolve request: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check resolve rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	const insertLog = `INSERT INTO admin_logs (admin_id, action_type, description, old_value, new_value, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)`
	log := params.Log
	if log.CreatedAt.IsZero() {
		log.CreatedAt = params.UpdatedAt
	}
	if _, err := tx.ExecContext(ctx, insertLog, log.AdminID, log.ActionType, log.Description, log.OldValue, log.NewValue, log.CreatedAt); err != nil {
		return fmt.Errorf("append resolution log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit resolve request: %w", err)
	}
	return nil
}
