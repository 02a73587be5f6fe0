package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/internal/models"
	appErrors "github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/pkg/errors"
)

type stubNotificationStore struct {
	created    []models.Notification
	createErr  error
	read       []int64
	markedAll  []int64
	listStatus models.NotificationStatus
}

func (s *stubNotificationStore) Create(_ context.Context, notification *models.Notification) error {
	if s.createErr != nil {
		return s.createErr
	}
	notification.ID = int64(len(s.created) + 1)
	s.created = append(s.created, *notification)
	return nil
}

func (s *stubNotificationStore) MarkRead(_ context.Context, id int64) error {
	s.read = append(s.read, id)
	return nil
}

func (s *stubNotificationStore) MarkAllRead(_ context.Context, adminID int64) (int64, error) {
	s.markedAll = append(s.markedAll, adminID)
	return 3, nil
}

func (s *stubNotificationStore) List(_ context.Context, _ int64, status models.NotificationStatus) ([]models.Notification, error) {
	s.listStatus = status
	return nil, nil
}

func TestNotificationServiceListRejectsUnknownStatus(t *testing.T) {
	store := &stubNotificationStore{}
	svc := NewNotificationService(store, zap.NewNop())

	_, err := svc.List(context.Background(), 1, "archived")
	requireAppError(t, err, appErrors.ErrValidation)

	_, err = svc.List(context.Background(), 1, "")
	require.NoError(t, err)

	_, err = svc.List(context.Background(), 1, models.NotificationStatusUnread)
	require.NoError(t, err)
	require.Equal(t, models.NotificationStatusUnread, store.listStatus)
}

func TestNotificationServiceMarkAllReadReturnsCount(t *testing.T) {
	store := &stubNotificationStore{}
	svc := NewNotificationService(store, zap.NewNop())

	n, err := svc.MarkAllRead(context.Background(), 9)
	require.NoError(t, err)
	require.Equal(t, int64(3), n)
	require.Equal(t, []int64{9}, store.markedAll)
}

func TestNotificationServiceNotifyRequiresMessage(t *testing.T) {
	store := &stubNotificationStore{}
	svc := NewNotificationService(store, zap.NewNop())

	err := svc.Notify(context.Background(), 1, nil, "")
	requireAppError(t, err, appErrors.ErrValidation)
	require.Empty(t, store.created)

	requestID := int64(5)
	require.NoError(t, svc.Notify(context.Background(), 1, &requestID, "расписание обновлено"))
	require.Len(t, store.created, 1)
	require.Equal(t, models.NotificationStatusUnread, store.created[0].Status)
	require.NotNil(t, store.created[0].RequestID)
}
