package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/internal/models"
)

type stubScheduleStore struct {
	byID        map[int64]*models.Schedule
	created     []models.Schedule
	createErr   error
	holidays    []int64
	holidayErr  error
	roomUpdates map[int64]string
}

func newStubScheduleStore() *stubScheduleStore {
	return &stubScheduleStore{
		byID:        map[int64]*models.Schedule{},
		roomUpdates: map[int64]string{},
	}
}

func (s *stubScheduleStore) GetByID(_ context.Context, id int64) (*models.Schedule, error) {
	schedule, ok := s.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *schedule
	return &copied, nil
}

func (s *stubScheduleStore) Create(_ context.Context, schedule *models.Schedule) error {
	if s.createErr != nil {
		return s.createErr
	}
	schedule.ID = int64(len(s.created) + 1000)
	s.created = append(s.created, *schedule)
	return nil
}

func (s *stubScheduleStore) MarkHoliday(_ context.Context, id int64) error {
	if s.holidayErr != nil {
		return s.holidayErr
	}
	s.holidays = append(s.holidays, id)
	return nil
}

func (s *stubScheduleStore) UpdateRoom(_ context.Context, id int64, room string) error {
	s.roomUpdates[id] = room
	return nil
}

type stubAuditAppender struct {
	logs []models.AdminLog
	err  error
}

func (s *stubAuditAppender) Append(_ context.Context, log *models.AdminLog) error {
	if s.err != nil {
		return s.err
	}
	s.logs = append(s.logs, *log)
	return nil
}

func int64Ptr(v int64) *int64 { return &v }

func approvedRequest(kind models.RequestType) *models.Request {
	return &models.Request{
		ID:         5,
		TeacherID:  100,
		ScheduleID: int64Ptr(55),
		Type:       kind,
		Status:     models.RequestStatusApproved,
	}
}

func TestScheduleMaterializerCancelMarksHoliday(t *testing.T) {
	store := newStubScheduleStore()
	audit := &stubAuditAppender{}
	m := NewScheduleMaterializer(store, audit, nil, zap.NewNop())

	m.OnResolved(context.Background(), approvedRequest(models.RequestTypeCancel), 1)

	require.Equal(t, []int64{55}, store.holidays)
	require.Empty(t, audit.logs)
}

func TestScheduleMaterializerIgnoresRejected(t *testing.T) {
	store := newStubScheduleStore()
	m := NewScheduleMaterializer(store, &stubAuditAppender{}, nil, zap.NewNop())

	request := approvedRequest(models.RequestTypeCancel)
	request.Status = models.RequestStatusRejected
	m.OnResolved(context.Background(), request, 1)

	require.Empty(t, store.holidays)
}

func TestScheduleMaterializerRescheduleClonesOccurrence(t *testing.T) {
	store := newStubScheduleStore()
	room := "201"
	end := "10:30"
	store.byID[55] = &models.Schedule{
		ID:        55,
		Specialty: "ИСиП",
		DayOfWeek: "Понедельник",
		TimeStart: "09:00",
		TimeEnd:   &end,
		Room:      &room,
		Subject:   "Математика",
	}
	m := NewScheduleMaterializer(store, &stubAuditAppender{}, nil, zap.NewNop())

	request := approvedRequest(models.RequestTypeReschedule)
	date := time.Date(2026, time.September, 2, 0, 0, 0, 0, time.UTC) // a Wednesday
	start := "10:40"
	newEnd := "12:10"
	newRoom := "305"
	request.ApprovedDate = &date
	request.ApprovedTimeStart = &start
	request.ApprovedTimeEnd = &newEnd
	request.ApprovedRoom = &newRoom

	m.OnResolved(context.Background(), request, 1)

	require.Len(t, store.created, 1)
	moved := store.created[0]
	require.Equal(t, "Математика", moved.Subject)
	require.Equal(t, "Среда", moved.DayOfWeek)
	require.NotNil(t, moved.Date)
	require.Equal(t, date, *moved.Date)
	require.Equal(t, "10:40", moved.TimeStart)
	require.NotNil(t, moved.Room)
	require.Equal(t, "305", *moved.Room)
	require.True(t, moved.IsSpecial)
	require.False(t, moved.IsHoliday)

	require.Equal(t, []int64{55}, store.holidays)
}

func TestScheduleMaterializerChangeRoomUpdatesInPlace(t *testing.T) {
	store := newStubScheduleStore()
	m := NewScheduleMaterializer(store, &stubAuditAppender{}, nil, zap.NewNop())

	request := approvedRequest(models.RequestTypeChangeRoom)
	room := "112"
	request.ApprovedRoom = &room

	m.OnResolved(context.Background(), request, 1)

	require.Equal(t, "112", store.roomUpdates[55])
}

func TestScheduleMaterializerFailureLandsInAuditTrail(t *testing.T) {
	store := newStubScheduleStore()
	store.holidayErr = sql.ErrConnDone
	audit := &stubAuditAppender{}
	m := NewScheduleMaterializer(store, audit, nil, zap.NewNop())

	m.OnResolved(context.Background(), approvedRequest(models.RequestTypeCancel), 3)

	require.Len(t, audit.logs, 1)
	require.Equal(t, models.AdminActionMaterializeFailed, audit.logs[0].ActionType)
	require.Equal(t, int64(3), audit.logs[0].AdminID)
	require.Contains(t, audit.logs[0].Description, "request #5")
}

func TestScheduleMaterializerRescheduleWithoutSlotFails(t *testing.T) {
	store := newStubScheduleStore()
	audit := &stubAuditAppender{}
	m := NewScheduleMaterializer(store, audit, nil, zap.NewNop())

	m.OnResolved(context.Background(), approvedRequest(models.RequestTypeReschedule), 1)

	require.Empty(t, store.created)
	require.Len(t, audit.logs, 1)
}

func TestScheduleMaterializerFlushesScheduleCache(t *testing.T) {
	svc, store, _, cache, _ := newScheduleFixture()
	store.listResult = []models.Schedule{{ID: 55, Subject: "Математика"}}

	filter := models.ScheduleFilter{Specialty: "ИСиП"}
	_, err := svc.List(context.Background(), filter)
	require.NoError(t, err)
	require.Equal(t, 1, store.listCalls)

	m := NewScheduleMaterializer(store, &stubAuditAppender{}, cache, zap.NewNop())
	m.OnResolved(context.Background(), approvedRequest(models.RequestTypeCancel), 1)

	require.Equal(t, []int64{55}, store.holidays)
	require.Equal(t, 1, cache.flushes)

	// The next list goes back to the store instead of the stale entry.
	_, err = svc.List(context.Background(), filter)
	require.NoError(t, err)
	require.Equal(t, 2, store.listCalls)
}

func TestScheduleMaterializerKeepsCacheOnFailure(t *testing.T) {
	store := newStubScheduleStore()
	store.holidayErr = sql.ErrConnDone
	cache := newFakeCache()
	m := NewScheduleMaterializer(store, &stubAuditAppender{}, cache, zap.NewNop())

	m.OnResolved(context.Background(), approvedRequest(models.RequestTypeCancel), 1)

	require.Zero(t, cache.flushes)
}
