package models

import "time"

// SemesterConfig holds the semester boundaries and exam windows.
// Callers are expected to keep StartDate <= LastInstructionDate <= EndDate.
type SemesterConfig struct {
	UserID              string       `db:"user_id" json:"-" yaml:"-"`
	StartDate           time.Time    `db:"start_date" json:"start_date" yaml:"start_date"`
	EndDate             time.Time    `db:"end_date" json:"end_date" yaml:"end_date"`
	LastInstructionDate time.Time    `db:"last_instruction_date" json:"last_instruction_date" yaml:"last_instruction_date"`
	ExamPeriods         []ExamPeriod `db:"-" json:"exam_periods" yaml:"exam_periods"`
	UpdatedAt           time.Time    `db:"updated_at" json:"updated_at" yaml:"-"`
}

// Snapshot is the consistent set of inputs handed to one calculation.
type Snapshot struct {
	Subjects   []Subject       `json:"subjects" yaml:"subjects"`
	Timetable  []TimetableSlot `json:"timetable" yaml:"timetable"`
	Attendance []AttendanceLog `json:"attendance" yaml:"attendance"`
	Holidays   []Holiday       `json:"holidays" yaml:"holidays"`
	Semester   SemesterConfig  `json:"semester" yaml:"semester"`
}
