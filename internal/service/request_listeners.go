package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/internal/models"
)

type notificationWriter interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// ResolutionNotifier writes the teacher-facing inbox entry once a
// request reaches a terminal state. The original workflow only ever
// notified admins on submission; this closes the loop.
type ResolutionNotifier struct {
	notifications notificationWriter
	logger        *zap.Logger
}

// NewResolutionNotifier constructs the listener.
func NewResolutionNotifier(notifications notificationWriter, logger *zap.Logger) *ResolutionNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResolutionNotifier{notifications: notifications, logger: logger}
}

// OnSubmitted is a no-op: the submission notification is written
// atomically with the request itself.
func (n *ResolutionNotifier) OnSubmitted(ctx context.Context, request *models.Request) {}

// OnResolved records the outcome in the teacher's inbox. Failures are
// logged, never surfaced: the terminal transition already committed.
func (n *ResolutionNotifier) OnResolved(ctx context.Context, request *models.Request, adminID int64) {
	message := fmt.Sprintf("Your %s request #%d was %s", request.Type, request.ID, request.Status)
	if request.AdminComment != nil && *request.AdminComment != "" {
		message += ": " + *request.AdminComment
	}
	notification := &models.Notification{
		AdminID:   request.TeacherID,
		RequestID: &request.ID,
		Message:   message,
	}
	if err := n.notifications.Create(ctx, notification); err != nil {
		n.logger.Warn("failed to write resolution notification",
			zap.Int64("request_id", request.ID), zap.Error(err))
	}
}
