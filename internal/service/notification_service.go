package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/internal/models"
	appErrors "github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/pkg/errors"
)

type notificationStore interface {
	Create(ctx context.Context, notification *models.Notification) error
	MarkRead(ctx context.Context, id int64) error
	MarkAllRead(ctx context.Context, adminID int64) (int64, error)
	List(ctx context.Context, adminID int64, status models.NotificationStatus) ([]models.Notification, error)
}

// NotificationService exposes the in-app notification feed.
type NotificationService struct {
	repo   notificationStore
	logger *zap.Logger
}

// NewNotificationService creates a NotificationService.
func NewNotificationService(repo notificationStore, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{repo: repo, logger: logger}
}

// List returns notifications addressed to the given user, newest
// first. An empty status returns everything.
func (s *NotificationService) List(ctx context.Context, userID int64, status models.NotificationStatus) ([]models.Notification, error) {
	if status != "" && !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown notification status")
	}
	return s.repo.List(ctx, userID, status)
}

// MarkRead marks a single notification as read. Marking an already
// read notification is a no-op.
func (s *NotificationService) MarkRead(ctx context.Context, id int64) error {
	return s.repo.MarkRead(ctx, id)
}

// MarkAllRead marks every unread notification for the user as read and
// returns how many were affected.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

// Notify records an out-of-band notification, for example from the
// bot or an import job.
func (s *NotificationService) Notify(ctx context.Context, userID int64, requestID *int64, message string) error {
	if message == "" {
		return appErrors.Clone(appErrors.ErrValidation, "message must not be empty")
	}
	notification := &models.Notification{
		AdminID:   userID,
		RequestID: requestID,
		Message:   message,
		Status:    models.NotificationStatusUnread,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		s.logger.Warn("failed to create notification", zap.Int64("user_id", userID), zap.Error(err))
		return err
	}
	return nil
}
