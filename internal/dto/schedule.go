package dto

// CreateScheduleRequest is the manual-entry payload for one occurrence.
type CreateScheduleRequest struct {
	Specialty   string `json:"specialty" validate:"required"`
	Semester    string `json:"semester,omitempty"`
	DayOfWeek   string `json:"day_of_week" validate:"required"`
	Date        string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	TimeStart   string `json:"time_start" validate:"required,datetime=15:04"`
	TimeEnd     string `json:"time_end,omitempty" validate:"omitempty,datetime=15:04"`
	Subject     string `json:"subject" validate:"required"`
	TeacherID   *int64 `json:"teacher_id,omitempty"`
	TeacherName string `json:"teacher_name,omitempty"`
	Room        string `json:"room,omitempty"`
	GroupName   string `json:"group_name,omitempty"`
	IsSpecial   bool   `json:"is_special,omitempty"`
}

// UpdateScheduleRequest carries partial edits of an occurrence.
type UpdateScheduleRequest struct {
	Specialty   *string `json:"specialty,omitempty"`
	Semester    *string `json:"semester,omitempty"`
	DayOfWeek   *string `json:"day_of_week,omitempty"`
	Date        *string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	TimeStart   *string `json:"time_start,omitempty" validate:"omitempty,datetime=15:04"`
	TimeEnd     *string `json:"time_end,omitempty" validate:"omitempty,datetime=15:04"`
	Subject     *string `json:"subject,omitempty"`
	TeacherID   *int64  `json:"teacher_id,omitempty"`
	TeacherName *string `json:"teacher_name,omitempty"`
	Room        *string `json:"room,omitempty"`
	GroupName   *string `json:"group_name,omitempty"`
	IsSpecial   *bool   `json:"is_special,omitempty"`
	IsHoliday   *bool   `json:"is_holiday,omitempty"`
}

// ImportScheduleRow is one pre-parsed spreadsheet row. Column sniffing
// happens client-side; the API only ingests normalized rows.
type ImportScheduleRow struct {
	Specialty   string `json:"specialty" validate:"required"`
	Semester    string `json:"semester,omitempty"`
	DayOfWeek   string `json:"day_of_week" validate:"required"`
	TimeStart   string `json:"time_start" validate:"required"`
	TimeEnd     string `json:"time_end,omitempty"`
	Subject     string `json:"subject" validate:"required"`
	TeacherName string `json:"teacher_name,omitempty"`
	Room        string `json:"room,omitempty"`
	GroupName   string `json:"group_name,omitempty"`
}

// ImportScheduleRequest bulk-imports occurrences for one specialty.
type ImportScheduleRequest struct {
	Rows []ImportScheduleRow `json:"rows" validate:"required,min=1,dive"`
}
