package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/internal/models"
)

func scheduleRows(ids ...int64) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "specialty", "semester", "day_of_week", "date", "time_start", "time_end",
		"subject", "teacher_id", "teacher_name", "room", "group_name",
		"is_special", "is_holiday", "created_at", "updated_at",
	})
	for _, id := range ids {
		rows.AddRow(id, "ИСиП", nil, "Понедельник", nil, "09:00", "10:30",
			"Математика", nil, "Иванов И.И.", "201", "ИСиП-21",
			false, false, time.Now(), time.Now())
	}
	return rows
}

func TestScheduleRepositoryListAppliesFiltersAndPagination(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewScheduleRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM schedules WHERE specialty = \$1 AND day_of_week = \$2 ORDER BY specialty, day_of_week, time_start LIMIT \$3 OFFSET \$4`).
		WithArgs("ИСиП", "Понедельник", 20, 40).
		WillReturnRows(scheduleRows(5, 6))

	filter := models.ScheduleFilter{
		Specialty: "ИСиП",
		DayOfWeek: "Понедельник",
		Page:      3,
		PageSize:  20,
	}
	schedules, err := repo.List(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, schedules, 2)
	require.Equal(t, int64(5), schedules[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryListWithoutPageSizeSkipsLimit(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewScheduleRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM schedules ORDER BY specialty, day_of_week, time_start$`).
		WillReturnRows(scheduleRows(1))

	schedules, err := repo.List(context.Background(), models.ScheduleFilter{})
	require.NoError(t, err)
	require.Len(t, schedules, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryUpdateMissingRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewScheduleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE schedules SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Schedule{
		ID:        999,
		Specialty: "ИСиП",
		DayOfWeek: "Вторник",
		TimeStart: "10:40",
		Subject:   "Физика",
	})
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryMarkHoliday(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewScheduleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE schedules SET is_holiday = TRUE")).
		WithArgs(sqlmock.AnyArg(), int64(12)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkHoliday(context.Background(), 12))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryUpdateRoomMissingRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewScheduleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE schedules SET room = $1")).
		WithArgs("305", sqlmock.AnyArg(), int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.ErrorIs(t, repo.UpdateRoom(context.Background(), 42, "305"), sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryBulkImportRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewScheduleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schedules")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schedules")).
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	rows := []models.Schedule{
		{Specialty: "ИСиП", DayOfWeek: "Понедельник", TimeStart: "09:00", Subject: "Математика"},
		{Specialty: "ИСиП", DayOfWeek: "Понедельник", TimeStart: "10:40", Subject: "Физика"},
	}
	count, err := repo.BulkImport(context.Background(), rows)
	require.Error(t, err)
	require.Zero(t, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryBulkImportCommitsAllRows(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewScheduleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schedules")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schedules")).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	rows := []models.Schedule{
		{Specialty: "ИСиП", DayOfWeek: "Среда", TimeStart: "09:00", Subject: "История"},
		{Specialty: "ИСиП", DayOfWeek: "Среда", TimeStart: "10:40", Subject: "Право"},
	}
	count, err := repo.BulkImport(context.Background(), rows)
	require.NoError(t, err)
	require.Equal(t, 2, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryAddSpecialDayReturnsID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewScheduleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO special_days")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))

	day := &models.SpecialDay{
		Date:      time.Date(2026, time.March, 8, 0, 0, 0, 0, time.UTC),
		IsHoliday: true,
	}
	require.NoError(t, repo.AddSpecialDay(context.Background(), day))
	require.Equal(t, int64(3), day.ID)
	require.False(t, day.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}
