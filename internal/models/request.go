package models

import "time"

// RequestType enumerates supported schedule-change proposals.
type RequestType string

const (
	RequestTypeCancel     RequestType = "cancel"
	RequestTypeReschedule RequestType = "reschedule"
	RequestTypeChangeRoom RequestType = "change_room"
)

// Valid reports whether the type is one of the supported kinds.
func (t RequestType) Valid() bool {
	switch t {
	case RequestTypeCancel, RequestTypeReschedule, RequestTypeChangeRoom:
		return true
	}
	return false
}

// RequestStatus captures the lifecycle states of a request.
// pending is the only non-terminal state.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

// Slot is one (date, time range, room) tuple proposed as an
// alternative or chosen as the final placement.
type Slot struct {
	Date      time.Time `json:"date"`
	TimeStart string    `json:"time_start"`
	TimeEnd   string    `json:"time_end"`
	Room      *string   `json:"room,omitempty"`
}

// Request is a teacher-initiated change proposal against one schedule
// occurrence. The original_* columns snapshot the occurrence at
// submission time so later edits cannot corrupt a pending request's
// context. Up to three preferred slots are stored flat, matching the
// requests relation.
type Request struct {
	ID         int64         `db:"id" json:"id"`
	TeacherID  int64         `db:"teacher_id" json:"teacher_id"`
	ScheduleID *int64        `db:"schedule_id" json:"schedule_id,omitempty"`
	Type       RequestType   `db:"request_type" json:"request_type"`
	Status     RequestStatus `db:"status" json:"status"`
	Reason     string        `db:"reason" json:"reason"`

	OriginalDate      *time.Time `db:"original_date" json:"original_date,omitempty"`
	OriginalTimeStart *string    `db:"original_time_start" json:"original_time_start,omitempty"`
	OriginalTimeEnd   *string    `db:"original_time_end" json:"original_time_end,omitempty"`
	OriginalRoom      *string    `db:"original_room" json:"original_room,omitempty"`

	PreferredDate1      *time.Time `db:"preferred_date_1" json:"preferred_date_1,omitempty"`
	PreferredTimeStart1 *string    `db:"preferred_time_1_start" json:"preferred_time_1_start,omitempty"`
	PreferredTimeEnd1   *string    `db:"preferred_time_1_end" json:"preferred_time_1_end,omitempty"`
	PreferredRoom1      *string    `db:"preferred_room_1" json:"preferred_room_1,omitempty"`
	PreferredDate2      *time.Time `db:"preferred_date_2" json:"preferred_date_2,omitempty"`
	PreferredTimeStart2 *string    `db:"preferred_time_2_start" json:"preferred_time_2_start,omitempty"`
	PreferredTimeEnd2   *string    `db:"preferred_time_2_end" json:"preferred_time_2_end,omitempty"`
	PreferredRoom2      *string    `db:"preferred_room_2" json:"preferred_room_2,omitempty"`
	PreferredDate3      *time.Time `db:"preferred_date_3" json:"preferred_date_3,omitempty"`
	PreferredTimeStart3 *string    `db:"preferred_time_3_start" json:"preferred_time_3_start,omitempty"`
	PreferredTimeEnd3   *string    `db:"preferred_time_3_end" json:"preferred_time_3_end,omitempty"`
	PreferredRoom3      *string    `db:"preferred_room_3" json:"preferred_room_3,omitempty"`

	ApprovedDate      *time.Time `db:"approved_date" json:"approved_date,omitempty"`
	ApprovedTimeStart *string    `db:"approved_time_start" json:"approved_time_start,omitempty"`
	ApprovedTimeEnd   *string    `db:"approved_time_end" json:"approved_time_end,omitempty"`
	ApprovedRoom      *string    `db:"approved_room" json:"approved_room,omitempty"`

	AdminComment *string   `db:"admin_comment" json:"admin_comment,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// PreferredSlots returns the populated preferred slots in order.
func (r *Request) PreferredSlots() []Slot {
	triples := []struct {
		date       *time.Time
		start, end *string
		room       *string
	}{
		{r.PreferredDate1, r.PreferredTimeStart1, r.PreferredTimeEnd1, r.PreferredRoom1},
		{r.PreferredDate2, r.PreferredTimeStart2, r.PreferredTimeEnd2, r.PreferredRoom2},
		{r.PreferredDate3, r.PreferredTimeStart3, r.PreferredTimeEnd3, r.PreferredRoom3},
	}
	slots := make([]Slot, 0, 3)
	for _, t := range triples {
		if t.date == nil || t.start == nil || t.end == nil {
			continue
		}
		slots = append(slots, Slot{Date: *t.date, TimeStart: *t.start, TimeEnd: *t.end, Room: t.room})
	}
	return slots
}

// SetPreferredSlots writes up to three slots into the flat columns.
func (r *Request) SetPreferredSlots(slots []Slot) {
	targets := []struct {
		date       **time.Time
		start, end **string
		room       **string
	}{
		{&r.PreferredDate1, &r.PreferredTimeStart1, &r.PreferredTimeEnd1, &r.PreferredRoom1},
		{&r.PreferredDate2, &r.PreferredTimeStart2, &r.PreferredTimeEnd2, &r.PreferredRoom2},
		{&r.PreferredDate3, &r.PreferredTimeStart3, &r.PreferredTimeEnd3, &r.PreferredRoom3},
	}
	for i, t := range targets {
		if i >= len(slots) {
			*t.date, *t.start, *t.end, *t.room = nil, nil, nil, nil
			continue
		}
		s := slots[i]
		date := s.Date
		start := s.TimeStart
		end := s.TimeEnd
		*t.date = &date
		*t.start = &start
		*t.end = &end
		*t.room = s.Room
	}
}

// ApprovedSlot returns the admin-chosen placement, if any.
func (r *Request) ApprovedSlot() *Slot {
	if r.ApprovedDate == nil || r.ApprovedTimeStart == nil {
		return nil
	}
	slot := Slot{Date: *r.ApprovedDate, TimeStart: *r.ApprovedTimeStart, Room: r.ApprovedRoom}
	if r.ApprovedTimeEnd != nil {
		slot.TimeEnd = *r.ApprovedTimeEnd
	}
	return &slot
}

// RequestFilter constrains listing queries.
type RequestFilter struct {
	TeacherID int64
	Status    []RequestStatus
	Type      RequestType
	Limit     int
	Offset    int
}
