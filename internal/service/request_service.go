package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/internal/dto"
	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/internal/models"
	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/internal/repository"
	appErrors "github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/pkg/errors"
)

const dateLayout = "2006-01-02"

type requestStore interface {
	Create(ctx context.Context, request *models.Request, notifications []models.Notification) error
	GetByID(ctx context.Context, id int64) (*models.Request, error)
	ListByTeacher(ctx context.Context, teacherID int64) ([]models.Request, error)
	ListPending(ctx context.Context) ([]models.Request, error)
	List(ctx context.Context, filter models.RequestFilter) ([]models.Request, error)
	Resolve(ctx context.Context, params repository.ResolveRequestParams) error
}

type userDirectory interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	ListAdmins(ctx context.Context) ([]models.User, error)
}

type occurrenceReader interface {
	GetByID(ctx context.Context, id int64) (*models.Schedule, error)
}

// RequestListener observes lifecycle transitions after they commit.
// Implementations must tolerate being called concurrently for
// independent requests; failures are the listener's own concern.
type RequestListener interface {
	OnSubmitted(ctx context.Context, request *models.Request)
	OnResolved(ctx context.Context, request *models.Request, adminID int64)
}

// RequestService owns the request lifecycle: the pending →
// approved|rejected state machine, its validation rules and the
// notification/audit side effects of every transition.
type RequestService struct {
	repo      requestStore
	users     userDirectory
	schedules occurrenceReader
	validator *validator.Validate
	logger    *zap.Logger
	listeners []RequestListener
}

// NewRequestService constructs the service.
func NewRequestService(repo requestStore, users userDirectory, schedules occurrenceReader, validate *validator.Validate, logger *zap.Logger) *RequestService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestService{
		repo:      repo,
		users:     users,
		schedules: schedules,
		validator: validate,
		logger:    logger,
	}
}

// AddListener registers a post-transition hook. Not safe to call after
// the service started serving traffic.
func (s *RequestService) AddListener(l RequestListener) {
	if l != nil {
		s.listeners = append(s.listeners, l)
	}
}

// Submit validates and stores a new change request, snapshotting the
// referenced occurrence and fanning a notification out to every admin
// inside the same transaction.
func (s *RequestService) Submit(ctx context.Context, req dto.CreateRequestRequest, teacherID int64) (*models.Request, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request payload")
	}
	if !req.Type.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "request_type must be cancel, reschedule or change_room")
	}
	if strings.TrimSpace(req.Reason) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "reason is required")
	}
	slots, err := parsePreferredSlots(req)
	if err != nil {
		return nil, err
	}

	teacher, err := s.users.GetByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown teacher")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve teacher")
	}
	if !teacher.Role.CanSubmitRequests() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only teachers can submit change requests")
	}

	request := &models.Request{
		TeacherID:  teacherID,
		ScheduleID: req.ScheduleID,
		Type:       req.Type,
		Status:     models.RequestStatusPending,
		Reason:     strings.TrimSpace(req.Reason),
	}
	request.SetPreferredSlots(slots)

	// A request stays creatable against stale data: a missing
	// occurrence leaves the snapshot empty instead of failing.
	if req.ScheduleID != nil {
		occurrence, err := s.schedules.GetByID(ctx, *req.ScheduleID)
		switch {
		case err == nil:
			request.OriginalDate = occurrence.Date
			start := occurrence.TimeStart
			request.OriginalTimeStart = &start
			request.OriginalTimeEnd = occurrence.TimeEnd
			request.OriginalRoom = occurrence.Room
		case errors.Is(err, sql.ErrNoRows):
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to snapshot occurrence")
		}
	}

	admins, err := s.users.ListAdmins(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve admins")
	}
	if len(admins) == 0 {
		s.logger.Warn("no active admins to notify about request", zap.Int64("teacher_id", request.TeacherID))
	}
	message := fmt.Sprintf("New %s request from %s: %s", request.Type, teacherLabel(teacher), request.Reason)
	notifications := make([]models.Notification, 0, len(admins))
	for _, admin := range admins {
		notifications = append(notifications, models.Notification{AdminID: admin.ID, Message: message})
	}

	if err := s.repo.Create(ctx, request, notifications); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create request")
	}

	for _, l := range s.listeners {
		l.OnSubmitted(ctx, request)
	}
	return request, nil
}

// Approve moves a pending request to its approved terminal state,
// recording the chosen slot and one audit entry atomically. The chosen
// slot may be any of the preferred slots or an admin override.
func (s *RequestService) Approve(ctx context.Context, id int64, req dto.ApproveRequestRequest, adminID int64) (*models.Request, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid approval payload")
	}
	request, err := s.loadPending(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.Type == models.RequestTypeReschedule && (req.Date == "" || req.TimeStart == "") {
		return nil, appErrors.Clone(appErrors.ErrValidation, "approving a reschedule requires a date and start time")
	}
	if request.Type == models.RequestTypeChangeRoom && req.Room == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "approving a room change requires a room")
	}

	now := time.Now().UTC()
	params := repository.ResolveRequestParams{
		ID:           id,
		Status:       models.RequestStatusApproved,
		AdminComment: optionalString(req.Comment),
		UpdatedAt:    now,
	}
	if req.Date != "" {
		date, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
		}
		params.ApprovedDate = &date
	}
	params.ApprovedTimeStart = optionalString(req.TimeStart)
	params.ApprovedTimeEnd = optionalString(req.TimeEnd)
	params.ApprovedRoom = optionalString(req.Room)

	oldValue := string(models.RequestStatusPending)
	newValue := approvedValue(params)
	params.Log = models.AdminLog{
		AdminID:     adminID,
		ActionType:  models.AdminActionRequestApproved,
		Description: fmt.Sprintf("request #%d (%s) approved", id, request.Type),
		OldValue:    &oldValue,
		NewValue:    &newValue,
	}

	if err := s.repo.Resolve(ctx, params); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrInvalidState
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve request")
	}

	request.Status = models.RequestStatusApproved
	request.ApprovedDate = params.ApprovedDate
	request.ApprovedTimeStart = params.ApprovedTimeStart
	request.ApprovedTimeEnd = params.ApprovedTimeEnd
	request.ApprovedRoom = params.ApprovedRoom
	request.AdminComment = params.AdminComment
	request.UpdatedAt = now

	for _, l := range s.listeners {
		l.OnResolved(ctx, request, adminID)
	}
	return request, nil
}

// Reject moves a pending request to its rejected terminal state. An
// empty comment is tolerated but discouraged.
func (s *RequestService) Reject(ctx context.Context, id int64, req dto.RejectRequestRequest, adminID int64) (*models.Request, error) {
	request, err := s.loadPending(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	oldValue := string(models.RequestStatusPending)
	newValue := string(models.RequestStatusRejected)
	params := repository.ResolveRequestParams{
		ID:           id,
		Status:       models.RequestStatusRejected,
		AdminComment: optionalString(req.Comment),
		UpdatedAt:    now,
		Log: models.AdminLog{
			AdminID:     adminID,
			ActionType:  models.AdminActionRequestRejected,
			Description: fmt.Sprintf("request #%d (%s) rejected", id, request.Type),
			OldValue:    &oldValue,
			NewValue:    &newValue,
		},
	}

	if err := s.repo.Resolve(ctx, params); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrInvalidState
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject request")
	}

	request.Status = models.RequestStatusRejected
	request.AdminComment = params.AdminComment
	request.UpdatedAt = now

	for _, l := range s.listeners {
		l.OnResolved(ctx, request, adminID)
	}
	return request, nil
}

// Get returns one request, limiting teachers to their own.
func (s *RequestService) Get(ctx context.Context, id int64, actor *models.JWTClaims) (*models.Request, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	request, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}
	if actor.Role == models.RoleTeacher && request.TeacherID != actor.UserID {
		return nil, appErrors.ErrForbidden
	}
	return request, nil
}

// ListForTeacher returns a teacher's own requests, newest first.
func (s *RequestService) ListForTeacher(ctx context.Context, teacherID int64) ([]models.Request, error) {
	requests, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requests")
	}
	return requests, nil
}

// ListPending returns the review backlog, longest-waiting first.
func (s *RequestService) ListPending(ctx context.Context) ([]models.Request, error) {
	requests, err := s.repo.ListPending(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending requests")
	}
	return requests, nil
}

// List returns requests matching the query respecting the actor role:
// teachers only ever see their own submissions.
func (s *RequestService) List(ctx context.Context, query dto.RequestQuery, actor *models.JWTClaims) ([]models.Request, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	filter := models.RequestFilter{
		Status: query.Status,
		Type:   query.Type,
		Limit:  query.Limit,
		Offset: query.Offset,
	}
	switch actor.Role {
	case models.RoleAdmin:
		filter.TeacherID = query.TeacherID
	case models.RoleTeacher:
		filter.TeacherID = actor.UserID
	default:
		return nil, appErrors.ErrForbidden
	}
	requests, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requests")
	}
	return requests, nil
}

func (s *RequestService) loadPending(ctx context.Context, id int64) (*models.Request, error) {
	request, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}
	if request.Status != models.RequestStatusPending {
		return nil, appErrors.ErrInvalidState
	}
	return request, nil
}

// parsePreferredSlots enforces the slot rules: 1-3 complete slots for
// reschedule, none otherwise.
func parsePreferredSlots(req dto.CreateRequestRequest) ([]models.Slot, error) {
	if req.Type != models.RequestTypeReschedule {
		if len(req.PreferredSlots) > 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "preferred slots are only allowed for reschedule requests")
		}
		return nil, nil
	}
	if len(req.PreferredSlots) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "a reschedule request needs at least one preferred slot")
	}
	if len(req.PreferredSlots) > 3 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at most three preferred slots are allowed")
	}
	slots := make([]models.Slot, 0, len(req.PreferredSlots))
	for i, raw := range req.PreferredSlots {
		date, err := time.Parse(dateLayout, raw.Date)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("preferred slot %d: date must be YYYY-MM-DD", i+1))
		}
		if raw.TimeStart == "" || raw.TimeEnd == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("preferred slot %d is incomplete", i+1))
		}
		slots = append(slots, models.Slot{
			Date:      date,
			TimeStart: raw.TimeStart,
			TimeEnd:   raw.TimeEnd,
			Room:      optionalString(raw.Room),
		})
	}
	return slots, nil
}

func approvedValue(params repository.ResolveRequestParams) string {
	parts := []string{string(models.RequestStatusApproved)}
	if params.ApprovedDate != nil {
		parts = append(parts, params.ApprovedDate.Format(dateLayout))
	}
	if params.ApprovedTimeStart != nil {
		span := *params.ApprovedTimeStart
		if params.ApprovedTimeEnd != nil {
			span += "-" + *params.ApprovedTimeEnd
		}
		parts = append(parts, span)
	}
	if params.ApprovedRoom != nil {
		parts = append(parts, "room "+*params.ApprovedRoom)
	}
	return strings.Join(parts, " ")
}

func teacherLabel(teacher *models.User) string {
	if name := teacher.DisplayName(); name != "" {
		return name
	}
	return fmt.Sprintf("teacher %d", teacher.ID)
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
