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

const scheduleColumns = `id, specialty, semester, day_of_week, date, time_start, time_end,
	subject, teacher_id, teacher_name, room, group_name, is_special, is_holiday, created_at, updated_at`

// ScheduleRepository provides persistence for class occurrences and
// special calendar days.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository constructs the repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// GetByID returns one occurrence.
func (r *ScheduleRepository) GetByID(ctx context.Context, id int64) (*models.Schedule, error) {
	query := fmt.Sprintf("SELECT %s FROM schedules WHERE id = $1", scheduleColumns)
	var schedule models.Schedule
	if err := r.db.GetContext(ctx, &schedule, query, id); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// List returns occurrences matching the filter ordered for display.
func (r *ScheduleRepository) List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0, 6)
	builder.WriteString(fmt.Sprintf("SELECT %s FROM schedules", scheduleColumns))

	conditions := make([]string, 0, 5)
	if filter.Specialty != "" {
		args = append(args, filter.Specialty)
		conditions = append(conditions, fmt.Sprintf("specialty = $%d", len(args)))
	}
	if filter.GroupName != "" {
		args = append(args, filter.GroupName)
		conditions = append(conditions, fmt.Sprintf("group_name = $%d", len(args)))
	}
	if filter.DayOfWeek != "" {
		args = append(args, filter.DayOfWeek)
		conditions = append(conditions, fmt.Sprintf("day_of_week = $%d", len(args)))
	}
	if filter.Date != nil {
		args = append(args, *filter.Date)
		conditions = append(conditions, fmt.Sprintf("date = $%d", len(args)))
	}
	if filter.TeacherID != 0 {
		args = append(args, filter.TeacherID)
		conditions = append(conditions, fmt.Sprintf("teacher_id = $%d", len(args)))
	}
	if filter.Semester != "" {
		args = append(args, filter.Semester)
		conditions = append(conditions, fmt.Sprintf("semester = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY specialty, day_of_week, time_start")
	if filter.PageSize > 0 {
		args = append(args, filter.PageSize)
		builder.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
		if filter.Page > 1 {
			args = append(args, (filter.Page-1)*filter.PageSize)
			builder.WriteString(fmt.Sprintf(" OFFSET $%d", len(args)))
		}
	}

	var schedules []models.Schedule
	if err := r.db.SelectContext(ctx, &schedules, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	return schedules, nil
}

// Search performs a case-insensitive subject/teacher lookup.
func (r *ScheduleRepository) Search(ctx context.Context, query, specialty string) ([]models.Schedule, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf(`SELECT %s FROM schedules
	WHERE (LOWER(subject) LIKE $1 OR LOWER(teacher_name) LIKE $1)`, scheduleColumns))
	args := []interface{}{pattern}
	if specialty != "" {
		args = append(args, specialty)
		builder.WriteString(fmt.Sprintf(" AND specialty = $%d", len(args)))
	}
	builder.WriteString(" ORDER BY specialty, day_of_week, time_start")

	var schedules []models.Schedule
	if err := r.db.SelectContext(ctx, &schedules, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("search schedules: %w", err)
	}
	return schedules, nil
}

// Create inserts a new occurrence.
func (r *ScheduleRepository) Create(ctx context.Context, schedule *models.Schedule) error {
	now := time.Now().UTC()
	schedule.CreatedAt = now
	schedule.UpdatedAt = now
	const query = `INSERT INTO schedules
	(specialty, semester, day_of_week, date, time_start, time_end, subject,
	 teacher_id, teacher_name, room, group_name, is_special, is_holiday, created_at, updated_at)
	VALUES (:specialty, :semester, :day_of_week, :date, :time_start, :time_end, :subject,
	 :teacher_id, :teacher_name, :room, :group_name, :is_special, :is_holiday, :created_at, :updated_at)
	RETURNING id`
	stmt, err := r.db.PrepareNamedContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare create schedule: %w", err)
	}
	defer stmt.Close()
	if err := stmt.GetContext(ctx, &schedule.ID, schedule); err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}
	return nil
}

// Update overwrites the mutable columns of an occurrence.
func (r *ScheduleRepository) Update(ctx context.Context, schedule *models.Schedule) error {
	schedule.UpdatedAt = time.Now().UTC()
	const query = `UPDATE schedules SET specialty = :specialty, semester = :semester,
	day_of_week = :day_of_week, date = :date, time_start = :time_start, time_end = :time_end,
	subject = :subject, teacher_id = :teacher_id, teacher_name = :teacher_name, room = :room,
	group_name = :group_name, is_special = :is_special, is_holiday = :is_holiday, updated_at = :updated_at
	WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, schedule)
	if err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check schedule update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateRoom changes only the room of an occurrence.
func (r *ScheduleRepository) UpdateRoom(ctx context.Context, id int64, room string) error {
	const query = `UPDATE schedules SET room = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, room, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update schedule room: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check room update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// MarkHoliday soft-cancels an occurrence by flagging it as a holiday.
func (r *ScheduleRepository) MarkHoliday(ctx context.Context, id int64) error {
	const query = `UPDATE schedules SET is_holiday = TRUE, updated_at = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("mark schedule holiday: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check holiday update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an occurrence.
func (r *ScheduleRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM schedules WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	return nil
}

// BulkImport inserts many occurrences in one transaction; either every
// row lands or none do.
func (r *ScheduleRepository) BulkImport(ctx context.Context, schedules []models.Schedule) (int, error) {
	if len(schedules) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin bulk import: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	const query = `INSERT INTO schedules
	(specialty, semester, day_of_week, date, time_start, time_end, subject,
	 teacher_id, teacher_name, room, group_name, is_special, is_holiday, created_at, updated_at)
	VALUES (:specialty, :semester, :day_of_week, :date, :time_start, :time_end, :subject,
	 :teacher_id, :teacher_name, :room, :group_name, :is_special, :is_holiday, :created_at, :updated_at)`
	for i := range schedules {
		schedules[i].CreatedAt = now
		schedules[i].UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, query, schedules[i]); err != nil {
			return 0, fmt.Errorf("import schedule row %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit bulk import: %w", err)
	}
	return len(schedules), nil
}

// AddSpecialDay upserts a holiday or short-day marker for a date.
func (r *ScheduleRepository) AddSpecialDay(ctx context.Context, day *models.SpecialDay) error {
	if day.CreatedAt.IsZero() {
		day.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO special_days (date, is_holiday, is_short_day, description, created_by, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (date) DO UPDATE SET is_holiday = EXCLUDED.is_holiday,
	is_short_day = EXCLUDED.is_short_day, description = EXCLUDED.description
	RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query,
		day.Date, day.IsHoliday, day.IsShortDay, day.Description, day.CreatedBy, day.CreatedAt,
	).Scan(&day.ID); err != nil {
		return fmt.Errorf("add special day: %w", err)
	}
	return nil
}

// ListSpecialDays returns markers inside the inclusive date range.
func (r *ScheduleRepository) ListSpecialDays(ctx context.Context, from, to time.Time) ([]models.SpecialDay, error) {
	const query = `SELECT id, date, is_holiday, is_short_day, description, created_by, created_at
	FROM special_days WHERE date >= $1 AND date <= $2 ORDER BY date`
	var days []models.SpecialDay
	if err := r.db.SelectContext(ctx, &days, query, from, to); err != nil {
		return nil, fmt.Errorf("list special days: %w", err)
	}
	return days, nil
}
