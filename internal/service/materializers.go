package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/internal/models"
	appErrors "github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/pkg/errors"
)

// Materializer applies an approved request's effect back onto the
// schedule store.
type Materializer interface {
	Apply(ctx context.Context, request *models.Request) error
}

// MaterializerFunc allows using plain functions.
type MaterializerFunc func(ctx context.Context, request *models.Request) error

// Apply implements Materializer.
func (f MaterializerFunc) Apply(ctx context.Context, request *models.Request) error {
	return f(ctx, request)
}

type materializerScheduleStore interface {
	GetByID(ctx context.Context, id int64) (*models.Schedule, error)
	Create(ctx context.Context, schedule *models.Schedule) error
	MarkHoliday(ctx context.Context, id int64) error
	UpdateRoom(ctx context.Context, id int64, room string) error
}

type auditAppender interface {
	Append(ctx context.Context, log *models.AdminLog) error
}

type cacheInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

// ScheduleMaterializer translates approved requests into occurrence
// changes: cancel soft-removes, reschedule clones the occurrence at
// the approved slot and soft-removes the original, change_room edits
// the room in place. It runs as a post-approval hook; a failure never
// rolls back the terminal state, it lands in the audit trail for
// manual follow-up instead.
type ScheduleMaterializer struct {
	schedules materializerScheduleStore
	audit     auditAppender
	cache     cacheInvalidator
	logger    *zap.Logger
	appliers  map[models.RequestType]Materializer
}

// NewScheduleMaterializer constructs the listener with the default
// applier per request kind. cache may be nil when caching is disabled.
func NewScheduleMaterializer(schedules materializerScheduleStore, audit auditAppender, cache cacheInvalidator, logger *zap.Logger) *ScheduleMaterializer {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &ScheduleMaterializer{
		schedules: schedules,
		audit:     audit,
		cache:     cache,
		logger:    logger,
	}
	m.appliers = map[models.RequestType]Materializer{
		models.RequestTypeCancel:     MaterializerFunc(m.applyCancel),
		models.RequestTypeReschedule: MaterializerFunc(m.applyReschedule),
		models.RequestTypeChangeRoom: MaterializerFunc(m.applyChangeRoom),
	}
	return m
}

// OnSubmitted is a no-op; nothing materializes before approval.
func (m *ScheduleMaterializer) OnSubmitted(ctx context.Context, request *models.Request) {}

// OnResolved applies approved requests to the schedule store.
func (m *ScheduleMaterializer) OnResolved(ctx context.Context, request *models.Request, adminID int64) {
	if request.Status != models.RequestStatusApproved {
		return
	}
	applier, ok := m.appliers[request.Type]
	if !ok {
		m.logger.Warn("no materializer for request type", zap.String("type", string(request.Type)))
		return
	}
	if err := applier.Apply(ctx, request); err != nil {
		m.logger.Warn("failed to materialize approved request",
			zap.Int64("request_id", request.ID), zap.Error(err))
		description := fmt.Sprintf("request #%d materialization failed: %v", request.ID, err)
		if auditErr := m.audit.Append(ctx, &models.AdminLog{
			AdminID:     adminID,
			ActionType:  models.AdminActionMaterializeFailed,
			Description: description,
		}); auditErr != nil {
			m.logger.Error("failed to record materialization failure", zap.Error(auditErr))
		}
		return
	}
	if m.cache != nil {
		if err := m.cache.DeleteByPattern(ctx, scheduleCachePrefix+"*"); err != nil {
			m.logger.Warn("schedule cache invalidation failed", zap.Error(err))
		}
	}
}

func (m *ScheduleMaterializer) applyCancel(ctx context.Context, request *models.Request) error {
	if request.ScheduleID == nil {
		return appErrors.Clone(appErrors.ErrNotFound, "request references no occurrence")
	}
	return m.schedules.MarkHoliday(ctx, *request.ScheduleID)
}

func (m *ScheduleMaterializer) applyReschedule(ctx context.Context, request *models.Request) error {
	if request.ScheduleID == nil {
		return appErrors.Clone(appErrors.ErrNotFound, "request references no occurrence")
	}
	slot := request.ApprovedSlot()
	if slot == nil {
		return appErrors.Clone(appErrors.ErrValidation, "approved reschedule carries no slot")
	}
	original, err := m.schedules.GetByID(ctx, *request.ScheduleID)
	if err != nil {
		return fmt.Errorf("load original occurrence: %w", err)
	}

	moved := *original
	moved.ID = 0
	date := slot.Date
	moved.Date = &date
	moved.DayOfWeek = models.WeekdayName(slot.Date.Weekday())
	moved.TimeStart = slot.TimeStart
	if slot.TimeEnd != "" {
		end := slot.TimeEnd
		moved.TimeEnd = &end
	}
	if slot.Room != nil {
		moved.Room = slot.Room
	}
	moved.IsSpecial = true
	moved.IsHoliday = false
	if err := m.schedules.Create(ctx, &moved); err != nil {
		return fmt.Errorf("create moved occurrence: %w", err)
	}
	return m.schedules.MarkHoliday(ctx, *request.ScheduleID)
}

func (m *ScheduleMaterializer) applyChangeRoom(ctx context.Context, request *models.Request) error {
	if request.ScheduleID == nil {
		return appErrors.Clone(appErrors.ErrNotFound, "request references no occurrence")
	}
	if request.ApprovedRoom == nil || *request.ApprovedRoom == "" {
		return appErrors.Clone(appErrors.ErrValidation, "approved room change carries no room")
	}
	return m.schedules.UpdateRoom(ctx, *request.ScheduleID, *request.ApprovedRoom)
}
