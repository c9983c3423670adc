package models

import "time"

// AttendanceStatus represents the status of a logged session.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusOnDuty  AttendanceStatus = "od"
	AttendanceStatusLeave   AttendanceStatus = "leave"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusOnDuty, AttendanceStatusLeave:
		return true
	default:
		return false
	}
}

// Attended reports whether the status counts towards attendance.
func (s AttendanceStatus) Attended() bool {
	return s == AttendanceStatusPresent || s == AttendanceStatusOnDuty
}

// AttendanceLog is an explicit override for one (date, period, subject) session.
// Sessions without a log count as present.
type AttendanceLog struct {
	ID        string           `db:"id" json:"id" yaml:"-"`
	UserID    string           `db:"user_id" json:"-" yaml:"-"`
	Date      time.Time        `db:"date" json:"date" yaml:"date"`
	Period    int              `db:"period" json:"period" yaml:"period"`
	SubjectID SubjectID        `db:"subject_id" json:"subject_id" yaml:"subject"`
	Status    AttendanceStatus `db:"status" json:"status" yaml:"status"`
	Note      *string          `db:"note" json:"note,omitempty" yaml:"note,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"created_at" yaml:"-"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at" yaml:"-"`
}

// AttendanceLogFilter scopes listing queries.
type AttendanceLogFilter struct {
	UserID    string
	DateFrom  *time.Time
	DateTo    *time.Time
	SubjectID SubjectID
}
