package models

import "time"

// Holiday is a calendar date without instruction.
type Holiday struct {
	ID          string    `db:"id" json:"id" yaml:"-"`
	UserID      string    `db:"user_id" json:"-" yaml:"-"`
	Date        time.Time `db:"date" json:"date" yaml:"date"`
	Description string    `db:"description" json:"description" yaml:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at" yaml:"-"`
}

// ExamPeriod is a named blackout window excluded from session counting.
type ExamPeriod struct {
	ID        string    `db:"id" json:"id" yaml:"-"`
	UserID    string    `db:"user_id" json:"-" yaml:"-"`
	Name      string    `db:"name" json:"name" yaml:"name"`
	StartDate time.Time `db:"start_date" json:"start_date" yaml:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date" yaml:"end_date"`
}

// Contains reports whether day falls inside the window, both ends inclusive.
func (p ExamPeriod) Contains(day time.Time) bool {
	return !day.Before(p.StartDate) && !day.After(p.EndDate)
}
