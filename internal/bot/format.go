package bot

import (
	"fmt"
	"strings"

	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/internal/models"
)

func formatSchedules(schedules []models.Schedule, title string) string {
	if len(schedules) == 0 {
		return fmt.Sprintf("❌ %s не найдено", title)
	}

	b := strings.Builder{}
	b.WriteString(fmt.Sprintf("📋 %s\n", title))

	currentDay := ""
	for _, s := range schedules {
		if s.IsHoliday {
			continue
		}
		if s.DayOfWeek != currentDay {
			currentDay = s.DayOfWeek
			b.WriteString(fmt.Sprintf("\n📅 %s\n", currentDay))
		}
		b.WriteString(fmt.Sprintf("🕐 %s - %s", timeRange(&s), s.Subject))
		if s.Room != nil {
			b.WriteString(fmt.Sprintf(" (%s)", *s.Room))
		}
		b.WriteString("\n")
		if s.TeacherName != nil {
			b.WriteString(fmt.Sprintf("   👤 %s\n", *s.TeacherName))
		}
		if s.GroupName != nil {
			b.WriteString(fmt.Sprintf("   👥 %s\n", *s.GroupName))
		}
	}
	return b.String()
}

func formatSpecialties(specialties []models.Specialty) string {
	if len(specialties) == 0 {
		return "❌ Специальности не найдены"
	}
	b := strings.Builder{}
	b.WriteString("📚 Доступные специальности:\n\n")
	for _, spec := range specialties {
		b.WriteString(fmt.Sprintf("• %s\n", spec.Name))
	}
	return b.String()
}

func formatRequests(requests []models.Request) string {
	if len(requests) == 0 {
		return "📭 Заявок нет"
	}
	b := strings.Builder{}
	b.WriteString("📨 Заявки на изменение расписания:\n\n")
	for _, r := range requests {
		b.WriteString(fmt.Sprintf("#%d %s — %s\n", r.ID, requestTypeLabel(r.Type), requestStatusLabel(r.Status)))
		b.WriteString(fmt.Sprintf("   📝 %s\n", r.Reason))
		if r.AdminComment != nil && *r.AdminComment != "" {
			b.WriteString(fmt.Sprintf("   💬 %s\n", *r.AdminComment))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func requestTypeLabel(t models.RequestType) string {
	switch t {
	case models.RequestTypeCancel:
		return "отмена занятия"
	case models.RequestTypeReschedule:
		return "перенос занятия"
	case models.RequestTypeChangeRoom:
		return "смена аудитории"
	default:
		return string(t)
	}
}

func requestStatusLabel(s models.RequestStatus) string {
	switch s {
	case models.RequestStatusPending:
		return "⏳ на рассмотрении"
	case models.RequestStatusApproved:
		return "✅ одобрена"
	case models.RequestStatusRejected:
		return "❌ отклонена"
	default:
		return string(s)
	}
}

func timeRange(s *models.Schedule) string {
	if s.TimeEnd != nil {
		return s.TimeStart + "-" + *s.TimeEnd
	}
	return s.TimeStart
}
