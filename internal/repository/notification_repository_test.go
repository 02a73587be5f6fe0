package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/internal/models"
)

func TestNotificationRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewNotificationRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO notifications")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))

	notification := &models.Notification{AdminID: 1, Message: "hello"}
	require.NoError(t, repo.Create(context.Background(), notification))
	require.Equal(t, int64(3), notification.ID)
	require.Equal(t, models.NotificationStatusUnread, notification.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryMarkReadIsIdempotent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewNotificationRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE notifications SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.MarkRead(context.Background(), 3))

	// second call flips nothing and still succeeds
	mock.ExpectExec(regexp.QuoteMeta("UPDATE notifications SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, repo.MarkRead(context.Background(), 3))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryMarkAllRead(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewNotificationRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE notifications SET")).
		WillReturnResult(sqlmock.NewResult(0, 4))

	marked, err := repo.MarkAllRead(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, int64(4), marked)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryListByStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewNotificationRepository(db)
	rows := sqlmock.NewRows([]string{"id", "admin_id", "request_id", "message", "status", "created_at", "read_at"}).
		AddRow(int64(2), int64(1), nil, "newest", "unread", time.Now(), nil).
		AddRow(int64(1), int64(1), nil, "older", "unread", time.Now().Add(-time.Hour), nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM notifications WHERE admin_id = $1")).
		WithArgs(int64(1), models.NotificationStatusUnread).
		WillReturnRows(rows)

	list, err := repo.List(context.Background(), 1, models.NotificationStatusUnread)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "newest", list[0].Message)
	require.NoError(t, mock.ExpectationsWereMet())
}
