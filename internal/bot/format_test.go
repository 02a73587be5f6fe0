package bot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/internal/models"
)

func TestFormatSchedulesGroupsByDay(t *testing.T) {
	end := "10:30"
	room := "201"
	teacher := "Иванов И.И."
	schedules := []models.Schedule{
		{DayOfWeek: "Понедельник", TimeStart: "09:00", TimeEnd: &end, Subject: "Математика", Room: &room, TeacherName: &teacher},
		{DayOfWeek: "Понедельник", TimeStart: "10:40", Subject: "Физика"},
		{DayOfWeek: "Вторник", TimeStart: "09:00", Subject: "История"},
	}

	text := formatSchedules(schedules, "Расписание ИСиП")
	require.Contains(t, text, "Расписание ИСиП")
	require.Contains(t, text, "📅 Понедельник")
	require.Contains(t, text, "📅 Вторник")
	require.Contains(t, text, "09:00-10:30 - Математика (201)")
	require.Contains(t, text, "👤 Иванов И.И.")
	// Each day header appears once even with several classes.
	require.Equal(t, 1, strings.Count(text, "📅 Понедельник"))
}

func TestFormatSchedulesSkipsHolidays(t *testing.T) {
	schedules := []models.Schedule{
		{DayOfWeek: "Понедельник", TimeStart: "09:00", Subject: "Математика", IsHoliday: true},
	}

	text := formatSchedules(schedules, "Расписание")
	require.NotContains(t, text, "Математика")
}

func TestFormatSchedulesEmpty(t *testing.T) {
	text := formatSchedules(nil, "Расписание")
	require.Contains(t, text, "не найдено")
}

func TestFormatRequestsShowsStatusAndComment(t *testing.T) {
	comment := "аудитория занята"
	requests := []models.Request{
		{ID: 5, Type: models.RequestTypeChangeRoom, Status: models.RequestStatusRejected, Reason: "ремонт", AdminComment: &comment},
		{ID: 6, Type: models.RequestTypeCancel, Status: models.RequestStatusPending, Reason: "болезнь"},
	}

	text := formatRequests(requests)
	require.Contains(t, text, "#5 смена аудитории — ❌ отклонена")
	require.Contains(t, text, "💬 аудитория занята")
	require.Contains(t, text, "#6 отмена занятия — ⏳ на рассмотрении")
}
