package dto

import (
	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/internal/models"
)

// PreferredSlot is one alternative placement offered by the teacher.
// A slot is all-or-nothing: date and both times have to be present.
type PreferredSlot struct {
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	TimeStart string `json:"time_start" validate:"required,datetime=15:04"`
	TimeEnd   string `json:"time_end" validate:"required,datetime=15:04"`
	Room      string `json:"room,omitempty"`
}

// CreateRequestRequest is the submission payload for a change request.
type CreateRequestRequest struct {
	ScheduleID     *int64             `json:"schedule_id,omitempty"`
	Type           models.RequestType `json:"request_type" validate:"required"`
	Reason         string             `json:"reason" validate:"required"`
	PreferredSlots []PreferredSlot    `json:"preferred_slots,omitempty" validate:"max=3,dive"`
}

// ApproveRequestRequest carries the admin-chosen final placement.
// For cancel requests every field may be empty.
type ApproveRequestRequest struct {
	Date      string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	TimeStart string `json:"time_start,omitempty" validate:"omitempty,datetime=15:04"`
	TimeEnd   string `json:"time_end,omitempty" validate:"omitempty,datetime=15:04"`
	Room      string `json:"room,omitempty"`
	Comment   string `json:"comment,omitempty"`
}

// RejectRequestRequest carries the rejection comment.
type RejectRequestRequest struct {
	Comment string `json:"comment,omitempty"`
}

// RequestQuery filters request listings.
type RequestQuery struct {
	Status    []models.RequestStatus
	Type      models.RequestType
	TeacherID int64
	Limit     int
	Offset    int
}
