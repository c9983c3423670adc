package attendance

import (
	"time"

	"github.com/noah-isme/attendance-api/internal/models"
)

// ExclusionReason explains why a date carries no sessions.
type ExclusionReason string

const (
	ExclusionNone    ExclusionReason = ""
	ExclusionSunday  ExclusionReason = "sunday"
	ExclusionHoliday ExclusionReason = "holiday"
	ExclusionExam    ExclusionReason = "exam"
)

// Calendar resolves instructional days from holidays and exam windows.
type Calendar struct {
	holidays map[string]string
	exams    []models.ExamPeriod
}

// NewCalendar indexes holidays by date and normalises exam windows.
func NewCalendar(holidays []models.Holiday, exams []models.ExamPeriod) *Calendar {
	c := &Calendar{
		holidays: make(map[string]string, len(holidays)),
		exams:    make([]models.ExamPeriod, 0, len(exams)),
	}
	for _, h := range holidays {
		c.holidays[FormatDate(Day(h.Date))] = h.Description
	}
	for _, p := range exams {
		p.StartDate = Day(p.StartDate)
		p.EndDate = Day(p.EndDate)
		c.exams = append(c.exams, p)
	}
	return c
}

// Exclusion returns the reason date is excluded, or ExclusionNone.
// Sundays win over holidays, holidays over exam windows.
func (c *Calendar) Exclusion(date time.Time) ExclusionReason {
	day := Day(date)
	if day.Weekday() == time.Sunday {
		return ExclusionSunday
	}
	if c == nil {
		return ExclusionNone
	}
	if _, ok := c.holidays[FormatDate(day)]; ok {
		return ExclusionHoliday
	}
	for _, p := range c.exams {
		if p.Contains(day) {
			return ExclusionExam
		}
	}
	return ExclusionNone
}

// IsInstructionalDay reports whether sessions run on date.
func (c *Calendar) IsInstructionalDay(date time.Time) bool {
	return c.Exclusion(date) == ExclusionNone
}

// IsInstructionalDay is the one-shot form of Calendar.IsInstructionalDay.
func IsInstructionalDay(date time.Time, holidays []models.Holiday, exams []models.ExamPeriod) bool {
	return NewCalendar(holidays, exams).IsInstructionalDay(date)
}
