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
	appErrors "github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/pkg/errors"
	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/pkg/export"
)

const scheduleCachePrefix = "schedule:"

type scheduleStore interface {
	GetByID(ctx context.Context, id int64) (*models.Schedule, error)
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, error)
	Search(ctx context.Context, query, specialty string) ([]models.Schedule, error)
	Create(ctx context.Context, schedule *models.Schedule) error
	Update(ctx context.Context, schedule *models.Schedule) error
	Delete(ctx context.Context, id int64) error
	BulkImport(ctx context.Context, schedules []models.Schedule) (int, error)
	AddSpecialDay(ctx context.Context, day *models.SpecialDay) error
	ListSpecialDays(ctx context.Context, from, to time.Time) ([]models.SpecialDay, error)
}

type specialtyStore interface {
	Upsert(ctx context.Context, specialty *models.Specialty) error
	List(ctx context.Context) ([]models.Specialty, error)
}

type scheduleCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// ScheduleService manages the timetable: reads served through a Redis
// cache, admin edits written through the store with an audit entry and
// a cache flush.
type ScheduleService struct {
	repo        scheduleStore
	specialties specialtyStore
	cache       scheduleCache
	audit       auditAppender
	validate    *validator.Validate
	cacheTTL    time.Duration
	logger      *zap.Logger
}

// NewScheduleService creates a ScheduleService. cache may be nil when
// caching is disabled.
func NewScheduleService(repo scheduleStore, specialties specialtyStore, cache scheduleCache, audit auditAppender, validate *validator.Validate, cacheTTL time.Duration, logger *zap.Logger) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	return &ScheduleService{
		repo:        repo,
		specialties: specialties,
		cache:       cache,
		audit:       audit,
		validate:    validate,
		cacheTTL:    cacheTTL,
		logger:      logger,
	}
}

// Get returns one occurrence by id.
func (s *ScheduleService) Get(ctx context.Context, id int64) (*models.Schedule, error) {
	schedule, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "occurrence not found")
	}
	return schedule, err
}

// List returns occurrences matching the filter. Results are cached
// per filter combination.
func (s *ScheduleService) List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, error) {
	key := s.listCacheKey(filter)
	if s.cache != nil {
		var cached []models.Schedule
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("schedule cache read failed", zap.Error(err))
		}
	}

	schedules, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, schedules, s.cacheTTL); err != nil {
			s.logger.Warn("schedule cache write failed", zap.Error(err))
		}
	}
	return schedules, nil
}

// Search finds occurrences by subject or teacher name substring.
func (s *ScheduleService) Search(ctx context.Context, query, specialty string) ([]models.Schedule, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "search query must not be empty")
	}
	return s.repo.Search(ctx, query, specialty)
}

// Specialties lists the known study programs.
func (s *ScheduleService) Specialties(ctx context.Context) ([]models.Specialty, error) {
	return s.specialties.List(ctx)
}

// Create adds one occurrence manually and records the edit.
func (s *ScheduleService) Create(ctx context.Context, adminID int64, req *dto.CreateScheduleRequest) (*models.Schedule, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	schedule := &models.Schedule{
		Specialty:   req.Specialty,
		Semester:    optionalString(req.Semester),
		DayOfWeek:   req.DayOfWeek,
		TimeStart:   req.TimeStart,
		TimeEnd:     optionalString(req.TimeEnd),
		Subject:     req.Subject,
		TeacherID:   req.TeacherID,
		TeacherName: optionalString(req.TeacherName),
		Room:        optionalString(req.Room),
		GroupName:   optionalString(req.GroupName),
		IsSpecial:   req.IsSpecial,
	}
	if req.Date != "" {
		date, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date")
		}
		schedule.Date = &date
	}
	if err := s.repo.Create(ctx, schedule); err != nil {
		return nil, err
	}
	s.recordAndInvalidate(ctx, adminID, models.AdminActionScheduleChange,
		fmt.Sprintf("created occurrence #%d (%s %s %s)", schedule.ID, schedule.Specialty, schedule.DayOfWeek, schedule.TimeStart),
		nil, describeOccurrence(schedule))
	return schedule, nil
}

// Update applies partial edits to an occurrence and records old and
// new values in the audit trail.
func (s *ScheduleService) Update(ctx context.Context, adminID, id int64, req *dto.UpdateScheduleRequest) (*models.Schedule, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	schedule, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	oldValue := describeOccurrence(schedule)

	if req.Specialty != nil {
		schedule.Specialty = *req.Specialty
	}
	if req.Semester != nil {
		schedule.Semester = req.Semester
	}
	if req.DayOfWeek != nil {
		schedule.DayOfWeek = *req.DayOfWeek
	}
	if req.Date != nil {
		if *req.Date == "" {
			schedule.Date = nil
		} else {
			date, err := time.Parse(dateLayout, *req.Date)
			if err != nil {
				return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date")
			}
			schedule.Date = &date
		}
	}
	if req.TimeStart != nil {
		schedule.TimeStart = *req.TimeStart
	}
	if req.TimeEnd != nil {
		schedule.TimeEnd = req.TimeEnd
	}
	if req.Subject != nil {
		schedule.Subject = *req.Subject
	}
	if req.TeacherID != nil {
		schedule.TeacherID = req.TeacherID
	}
	if req.TeacherName != nil {
		schedule.TeacherName = req.TeacherName
	}
	if req.Room != nil {
		schedule.Room = req.Room
	}
	if req.GroupName != nil {
		schedule.GroupName = req.GroupName
	}
	if req.IsSpecial != nil {
		schedule.IsSpecial = *req.IsSpecial
	}
	if req.IsHoliday != nil {
		schedule.IsHoliday = *req.IsHoliday
	}

	if err := s.repo.Update(ctx, schedule); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "occurrence not found")
		}
		return nil, err
	}
	s.recordAndInvalidate(ctx, adminID, models.AdminActionScheduleChange,
		fmt.Sprintf("updated occurrence #%d", id), &oldValue, describeOccurrence(schedule))
	return schedule, nil
}

// Delete removes an occurrence.
func (s *ScheduleService) Delete(ctx context.Context, adminID, id int64) error {
	schedule, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	oldValue := describeOccurrence(schedule)
	s.recordAndInvalidate(ctx, adminID, models.AdminActionScheduleChange,
		fmt.Sprintf("deleted occurrence #%d", id), &oldValue, "")
	return nil
}

// Import bulk-loads pre-parsed timetable rows, upserting the specialty
// they belong to, and returns how many rows were inserted.
func (s *ScheduleService) Import(ctx context.Context, adminID int64, req *dto.ImportScheduleRequest) (int, error) {
	if err := s.validate.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid import payload")
	}

	seen := map[string]struct{}{}
	schedules := make([]models.Schedule, 0, len(req.Rows))
	for _, row := range req.Rows {
		if _, ok := seen[row.Specialty]; !ok {
			seen[row.Specialty] = struct{}{}
			if err := s.specialties.Upsert(ctx, &models.Specialty{Name: row.Specialty}); err != nil {
				return 0, fmt.Errorf("upsert specialty %q: %w", row.Specialty, err)
			}
		}
		schedules = append(schedules, models.Schedule{
			Specialty:   row.Specialty,
			Semester:    optionalString(row.Semester),
			DayOfWeek:   row.DayOfWeek,
			TimeStart:   row.TimeStart,
			TimeEnd:     optionalString(row.TimeEnd),
			Subject:     row.Subject,
			TeacherName: optionalString(row.TeacherName),
			Room:        optionalString(row.Room),
			GroupName:   optionalString(row.GroupName),
		})
	}

	inserted, err := s.repo.BulkImport(ctx, schedules)
	if err != nil {
		return 0, err
	}
	s.recordAndInvalidate(ctx, adminID, models.AdminActionScheduleImport,
		fmt.Sprintf("imported %d occurrences", inserted), nil, "")
	return inserted, nil
}

// AddSpecialDay marks a date as a holiday or short day.
func (s *ScheduleService) AddSpecialDay(ctx context.Context, adminID int64, day *models.SpecialDay) error {
	if day.Date.IsZero() {
		return appErrors.Clone(appErrors.ErrValidation, "date is required")
	}
	day.CreatedBy = &adminID
	if err := s.repo.AddSpecialDay(ctx, day); err != nil {
		return err
	}
	s.recordAndInvalidate(ctx, adminID, models.AdminActionSpecialDayChange,
		fmt.Sprintf("marked %s (holiday=%t short=%t)", day.Date.Format(dateLayout), day.IsHoliday, day.IsShortDay),
		nil, "")
	return nil
}

// SpecialDays lists special days in a date range.
func (s *ScheduleService) SpecialDays(ctx context.Context, from, to time.Time) ([]models.SpecialDay, error) {
	if to.Before(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "range end precedes start")
	}
	return s.repo.ListSpecialDays(ctx, from, to)
}

// ExportDataset flattens a filtered timetable into a tabular dataset
// for the CSV and PDF exporters.
func (s *ScheduleService) ExportDataset(ctx context.Context, filter models.ScheduleFilter) (*export.Dataset, error) {
	schedules, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	title := "Timetable"
	if filter.Specialty != "" {
		title = "Timetable: " + filter.Specialty
	}
	dataset := &export.Dataset{
		Title:   title,
		Headers: []string{"Day", "Date", "Time", "Subject", "Teacher", "Room", "Group"},
	}
	for _, item := range schedules {
		date := ""
		if item.Date != nil {
			date = item.Date.Format(dateLayout)
		}
		timeRange := item.TimeStart
		if item.TimeEnd != nil {
			timeRange += "-" + *item.TimeEnd
		}
		dataset.Rows = append(dataset.Rows, []string{
			item.DayOfWeek,
			date,
			timeRange,
			item.Subject,
			stringOrDash(item.TeacherName),
			stringOrDash(item.Room),
			stringOrDash(item.GroupName),
		})
	}
	return dataset, nil
}

func (s *ScheduleService) recordAndInvalidate(ctx context.Context, adminID int64, action, description string, oldValue *string, newValue string) {
	entry := &models.AdminLog{
		AdminID:     adminID,
		ActionType:  action,
		Description: description,
		OldValue:    oldValue,
		NewValue:    optionalString(newValue),
	}
	if err := s.audit.Append(ctx, entry); err != nil {
		s.logger.Warn("failed to record schedule audit entry", zap.Error(err))
	}
	if s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, scheduleCachePrefix+"*"); err != nil {
			s.logger.Warn("schedule cache invalidation failed", zap.Error(err))
		}
	}
}

func (s *ScheduleService) listCacheKey(filter models.ScheduleFilter) string {
	date := ""
	if filter.Date != nil {
		date = filter.Date.Format(dateLayout)
	}
	return fmt.Sprintf("%slist:%s:%s:%s:%s:%s:%d:%d:%d",
		scheduleCachePrefix, filter.Specialty, filter.GroupName, filter.DayOfWeek,
		date, filter.Semester, filter.TeacherID, filter.Page, filter.PageSize)
}

func describeOccurrence(schedule *models.Schedule) string {
	parts := []string{schedule.Specialty, schedule.DayOfWeek, schedule.TimeStart, schedule.Subject}
	if schedule.Room != nil {
		parts = append(parts, "room "+*schedule.Room)
	}
	if schedule.IsHoliday {
		parts = append(parts, "holiday")
	}
	return strings.Join(parts, " ")
}
