package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/internal/dto"
	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/internal/models"
	appErrors "github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/pkg/errors"
)

type fakeTimetableStore struct {
	stubScheduleStore
	listCalls   int
	listResult  []models.Schedule
	updated     *models.Schedule
	deleted     []int64
	imported    []models.Schedule
	specialDays []models.SpecialDay
}

func (s *fakeTimetableStore) List(_ context.Context, _ models.ScheduleFilter) ([]models.Schedule, error) {
	s.listCalls++
	return s.listResult, nil
}

func (s *fakeTimetableStore) Search(_ context.Context, _, _ string) ([]models.Schedule, error) {
	return s.listResult, nil
}

func (s *fakeTimetableStore) Update(_ context.Context, schedule *models.Schedule) error {
	s.updated = schedule
	return nil
}

func (s *fakeTimetableStore) Delete(_ context.Context, id int64) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *fakeTimetableStore) BulkImport(_ context.Context, schedules []models.Schedule) (int, error) {
	s.imported = schedules
	return len(schedules), nil
}

func (s *fakeTimetableStore) AddSpecialDay(_ context.Context, day *models.SpecialDay) error {
	day.ID = int64(len(s.specialDays) + 1)
	s.specialDays = append(s.specialDays, *day)
	return nil
}

func (s *fakeTimetableStore) ListSpecialDays(_ context.Context, _, _ time.Time) ([]models.SpecialDay, error) {
	return s.specialDays, nil
}

type fakeSpecialtyStore struct {
	upserts []string
	list    []models.Specialty
}

func (s *fakeSpecialtyStore) Upsert(_ context.Context, specialty *models.Specialty) error {
	s.upserts = append(s.upserts, specialty.Name)
	return nil
}

func (s *fakeSpecialtyStore) List(_ context.Context) ([]models.Specialty, error) {
	return s.list, nil
}

// fakeCache mimics the Redis repository contract with a plain map.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	flushes int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}}
}

func (c *fakeCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = raw
	return nil
}

func (c *fakeCache) DeleteByPattern(_ context.Context, _ string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string][]byte{}
	c.flushes++
	return nil
}

func newScheduleFixture() (*ScheduleService, *fakeTimetableStore, *fakeSpecialtyStore, *fakeCache, *stubAuditAppender) {
	store := &fakeTimetableStore{stubScheduleStore: *newStubScheduleStore()}
	specialties := &fakeSpecialtyStore{}
	cache := newFakeCache()
	audit := &stubAuditAppender{}
	svc := NewScheduleService(store, specialties, cache, audit, validator.New(), time.Minute, zap.NewNop())
	return svc, store, specialties, cache, audit
}

func TestScheduleServiceListCachesPerFilter(t *testing.T) {
	svc, store, _, _, _ := newScheduleFixture()
	store.listResult = []models.Schedule{{ID: 1, Subject: "Математика"}}

	filter := models.ScheduleFilter{Specialty: "ИСиП"}
	first, err := svc.List(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.Equal(t, 1, store.listCalls)

	second, err := svc.List(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, second, 1)
	require.Equal(t, 1, store.listCalls)

	// A different filter is a different cache entry.
	_, err = svc.List(context.Background(), models.ScheduleFilter{Specialty: "Экономика"})
	require.NoError(t, err)
	require.Equal(t, 2, store.listCalls)
}

func TestScheduleServiceCreateAuditsAndFlushesCache(t *testing.T) {
	svc, store, _, cache, audit := newScheduleFixture()

	_, err := svc.List(context.Background(), models.ScheduleFilter{})
	require.NoError(t, err)

	schedule, err := svc.Create(context.Background(), 1, &dto.CreateScheduleRequest{
		Specialty: "ИСиП",
		DayOfWeek: "Понедельник",
		TimeStart: "09:00",
		Subject:   "Математика",
		Room:      "201",
	})
	require.NoError(t, err)
	require.NotZero(t, schedule.ID)
	require.NotNil(t, schedule.Room)

	require.Len(t, audit.logs, 1)
	require.Equal(t, models.AdminActionScheduleChange, audit.logs[0].ActionType)
	require.Equal(t, 1, cache.flushes)

	// The flushed cache forces the next list back to the store.
	_, err = svc.List(context.Background(), models.ScheduleFilter{})
	require.NoError(t, err)
	require.Equal(t, 2, store.listCalls)
}

func TestScheduleServiceUpdateMergesPartialFields(t *testing.T) {
	svc, store, _, _, audit := newScheduleFixture()
	room := "201"
	store.byID[5] = &models.Schedule{
		ID:        5,
		Specialty: "ИСиП",
		DayOfWeek: "Понедельник",
		TimeStart: "09:00",
		Subject:   "Математика",
		Room:      &room,
	}

	newRoom := "305"
	updated, err := svc.Update(context.Background(), 1, 5, &dto.UpdateScheduleRequest{Room: &newRoom})
	require.NoError(t, err)
	require.Equal(t, "Математика", updated.Subject)
	require.Equal(t, "305", *updated.Room)
	require.NotNil(t, store.updated)

	require.Len(t, audit.logs, 1)
	require.NotNil(t, audit.logs[0].OldValue)
	require.Contains(t, *audit.logs[0].OldValue, "room 201")
}

func TestScheduleServiceSearchRejectsEmptyQuery(t *testing.T) {
	svc, _, _, _, _ := newScheduleFixture()

	_, err := svc.Search(context.Background(), "   ", "")
	requireAppError(t, err, appErrors.ErrValidation)
}

func TestScheduleServiceSpecialDaysRejectsInvertedRange(t *testing.T) {
	svc, _, _, _, _ := newScheduleFixture()

	from := time.Date(2026, time.September, 10, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, -1)
	_, err := svc.SpecialDays(context.Background(), from, to)
	requireAppError(t, err, appErrors.ErrValidation)
}

func TestScheduleServiceImportUpsertsEachSpecialtyOnce(t *testing.T) {
	svc, store, specialties, _, audit := newScheduleFixture()

	count, err := svc.Import(context.Background(), 1, &dto.ImportScheduleRequest{
		Rows: []dto.ImportScheduleRow{
			{Specialty: "ИСиП", DayOfWeek: "Понедельник", TimeStart: "09:00", Subject: "Математика"},
			{Specialty: "ИСиП", DayOfWeek: "Понедельник", TimeStart: "10:40", Subject: "Физика"},
			{Specialty: "Экономика", DayOfWeek: "Вторник", TimeStart: "09:00", Subject: "Статистика"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 3, count)
	require.Equal(t, []string{"ИСиП", "Экономика"}, specialties.upserts)
	require.Len(t, store.imported, 3)

	require.Len(t, audit.logs, 1)
	require.Equal(t, models.AdminActionScheduleImport, audit.logs[0].ActionType)
}

func TestScheduleServiceAddSpecialDayStampsCreator(t *testing.T) {
	svc, store, _, _, audit := newScheduleFixture()

	day := &models.SpecialDay{
		Date:      time.Date(2026, time.March, 8, 0, 0, 0, 0, time.UTC),
		IsHoliday: true,
	}
	require.NoError(t, svc.AddSpecialDay(context.Background(), 7, day))
	require.NotNil(t, day.CreatedBy)
	require.Equal(t, int64(7), *day.CreatedBy)
	require.Len(t, store.specialDays, 1)
	require.Len(t, audit.logs, 1)
	require.Equal(t, models.AdminActionSpecialDayChange, audit.logs[0].ActionType)
}

func TestScheduleServiceExportDatasetShape(t *testing.T) {
	svc, store, _, _, _ := newScheduleFixture()
	end := "10:30"
	teacher := "Иванов И.И."
	store.listResult = []models.Schedule{{
		ID:          1,
		Specialty:   "ИСиП",
		DayOfWeek:   "Понедельник",
		TimeStart:   "09:00",
		TimeEnd:     &end,
		Subject:     "Математика",
		TeacherName: &teacher,
	}}

	dataset, err := svc.ExportDataset(context.Background(), models.ScheduleFilter{Specialty: "ИСиП"})
	require.NoError(t, err)
	require.Equal(t, "Timetable: ИСиП", dataset.Title)
	require.Len(t, dataset.Headers, 7)
	require.Len(t, dataset.Rows, 1)
	require.Equal(t, "09:00-10:30", dataset.Rows[0][2])
	require.Equal(t, "Иванов И.И.", dataset.Rows[0][4])
	require.Equal(t, "-", dataset.Rows[0][5])
}
