package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/internal/models"
	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/pkg/jobs"
)

// ChatSender delivers a message to a user's chat. The Telegram bot
// provides the production implementation.
type ChatSender interface {
	SendMessage(ctx context.Context, userID int64, text string) error
}

type chatMessage struct {
	UserID int64
	Text   string
}

// NotificationDispatcher fans request lifecycle events out to the chat
// front end through a background queue, so a slow or unavailable chat
// API never stalls the HTTP path. In-app notifications are written
// separately; this listener only covers push delivery.
type NotificationDispatcher struct {
	queue  *jobs.Queue
	admins userDirectory
	logger *zap.Logger
}

// NewNotificationDispatcher wires a dispatcher backed by an in-memory
// queue. Call Start before use and Stop on shutdown.
func NewNotificationDispatcher(sender ChatSender, admins userDirectory, workers, retries int, logger *zap.Logger) *NotificationDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &NotificationDispatcher{
		admins: admins,
		logger: logger,
	}
	d.queue = jobs.NewQueue("chat-notify", func(ctx context.Context, job jobs.Job) error {
		msg, ok := job.Payload.(chatMessage)
		if !ok {
			return fmt.Errorf("unexpected payload type %T", job.Payload)
		}
		return sender.SendMessage(ctx, msg.UserID, msg.Text)
	}, jobs.QueueConfig{
		Workers:    workers,
		MaxRetries: retries,
		Logger:     logger,
	})
	return d
}

// Start launches the delivery workers.
func (d *NotificationDispatcher) Start(ctx context.Context) {
	d.queue.Start(ctx)
}

// Stop drains the queue and stops the workers.
func (d *NotificationDispatcher) Stop() {
	d.queue.Stop()
}

// OnSubmitted pushes a chat message to every active admin.
func (d *NotificationDispatcher) OnSubmitted(ctx context.Context, request *models.Request) {
	admins, err := d.admins.ListAdmins(ctx)
	if err != nil {
		d.logger.Warn("failed to list admins for chat delivery", zap.Error(err))
		return
	}
	text := fmt.Sprintf("New %s request #%d: %s", request.Type, request.ID, request.Reason)
	for _, admin := range admins {
		d.enqueue(admin.ID, text)
	}
}

// OnResolved pushes the decision back to the requesting teacher.
func (d *NotificationDispatcher) OnResolved(ctx context.Context, request *models.Request, adminID int64) {
	text := fmt.Sprintf("Your %s request #%d was %s", request.Type, request.ID, request.Status)
	if request.AdminComment != nil && *request.AdminComment != "" {
		text += ": " + *request.AdminComment
	}
	d.enqueue(request.TeacherID, text)
}

func (d *NotificationDispatcher) enqueue(userID int64, text string) {
	err := d.queue.Enqueue(jobs.Job{
		ID:       uuid.NewString(),
		Type:     "chat_message",
		Payload:  chatMessage{UserID: userID, Text: text},
		Enqueued: time.Now(),
	})
	if err != nil {
		d.logger.Warn("failed to enqueue chat message",
			zap.Int64("user_id", userID), zap.Error(err))
	}
}
