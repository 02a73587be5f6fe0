package models

import "time"

// Schedule represents one concrete class occurrence: a subject taught
// to a specialty/group at a day and time, optionally pinned to a date.
type Schedule struct {
	ID          int64      `db:"id" json:"id"`
	Specialty   string     `db:"specialty" json:"specialty"`
	Semester    *string    `db:"semester" json:"semester,omitempty"`
	DayOfWeek   string     `db:"day_of_week" json:"day_of_week"`
	Date        *time.Time `db:"date" json:"date,omitempty"`
	TimeStart   string     `db:"time_start" json:"time_start"`
	TimeEnd     *string    `db:"time_end" json:"time_end,omitempty"`
	Subject     string     `db:"subject" json:"subject"`
	TeacherID   *int64     `db:"teacher_id" json:"teacher_id,omitempty"`
	TeacherName *string    `db:"teacher_name" json:"teacher_name,omitempty"`
	Room        *string    `db:"room" json:"room,omitempty"`
	GroupName   *string    `db:"group_name" json:"group_name,omitempty"`
	IsSpecial   bool       `db:"is_special" json:"is_special"`
	IsHoliday   bool       `db:"is_holiday" json:"is_holiday"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// WeekdayName maps a weekday to the Russian label the timetable and
// import files use for day_of_week.
func WeekdayName(d time.Weekday) string {
	switch d {
	case time.Monday:
		return "Понедельник"
	case time.Tuesday:
		return "Вторник"
	case time.Wednesday:
		return "Среда"
	case time.Thursday:
		return "Четверг"
	case time.Friday:
		return "Пятница"
	case time.Saturday:
		return "Суббота"
	default:
		return "Воскресенье"
	}
}

// ScheduleFilter describes query params for listing occurrences.
type ScheduleFilter struct {
	Specialty string
	GroupName string
	DayOfWeek string
	Date      *time.Time
	TeacherID int64
	Semester  string
	Page      int
	PageSize  int
}

// Specialty is a study program students pick their timetable by.
type Specialty struct {
	ID   int64   `db:"id" json:"id"`
	Name string  `db:"name" json:"name"`
	Code *string `db:"code" json:"code,omitempty"`
}

// SpecialDay marks a calendar date as a holiday or a short day.
type SpecialDay struct {
	ID          int64     `db:"id" json:"id"`
	Date        time.Time `db:"date" json:"date"`
	IsHoliday   bool      `db:"is_holiday" json:"is_holiday"`
	IsShortDay  bool      `db:"is_short_day" json:"is_short_day"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedBy   *int64    `db:"created_by" json:"created_by,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
