package models

import "time"

// SlotKind controls how many consecutive periods a placement occupies.
type SlotKind string

const (
	SlotKindTheory SlotKind = "theory"
	SlotKindLab    SlotKind = "lab"
	SlotKindVAC    SlotKind = "vac"
)

// Span returns the number of consecutive periods for the kind.
func (k SlotKind) Span() int {
	switch k {
	case SlotKindLab:
		return 3
	case SlotKindVAC:
		return 2
	default:
		return 1
	}
}

// Fixed daily grid.
const (
	FirstPeriod = 1
	LastPeriod  = 7
)

// TimetableSlot is one weekly-recurring period.
type TimetableSlot struct {
	ID            string    `db:"id" json:"id" yaml:"-"`
	UserID        string    `db:"user_id" json:"-" yaml:"-"`
	DayOfWeek     string    `db:"day_of_week" json:"day_of_week" yaml:"day"`
	Period        int       `db:"period" json:"period" yaml:"period"`
	SubjectID     SubjectID `db:"subject_id" json:"subject_id" yaml:"subject"`
	StartTime     string    `db:"start_time" json:"start_time" yaml:"start_time,omitempty"`
	EndTime       string    `db:"end_time" json:"end_time" yaml:"end_time,omitempty"`
	DurationHours *float64  `db:"duration_hours" json:"duration_hours,omitempty" yaml:"duration_hours,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at" yaml:"-"`
}

// Hours returns the slot duration, defaulting to one hour.
func (s TimetableSlot) Hours() float64 {
	if s.DurationHours == nil || *s.DurationHours <= 0 {
		return 1.0
	}
	return *s.DurationHours
}

// PeriodTime is a row of the fixed daily time grid.
type PeriodTime struct {
	Period int
	Start  string
	End    string
}

// PeriodGrid maps period numbers to wall-clock times.
var PeriodGrid = []PeriodTime{
	{Period: 1, Start: "08:00", End: "08:50"},
	{Period: 2, Start: "08:50", End: "09:40"},
	{Period: 3, Start: "09:50", End: "10:40"},
	{Period: 4, Start: "10:40", End: "11:30"},
	{Period: 5, Start: "12:30", End: "13:20"},
	{Period: 6, Start: "13:20", End: "14:10"},
	{Period: 7, Start: "14:20", End: "15:10"},
}

// SlotConflict describes an existing slot that blocks a placement.
type SlotConflict struct {
	SlotID    string    `json:"slot_id"`
	DayOfWeek string    `json:"day_of_week"`
	Period    int       `json:"period"`
	SubjectID SubjectID `json:"subject_id"`
}

// SlotConflictError is returned when a placement overlaps existing slots.
type SlotConflictError struct {
	Message   string         `json:"message"`
	Conflicts []SlotConflict `json:"conflicts"`
}

// Error implements the error interface for conflict errors.
func (e *SlotConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
