package attendance

import (
	"fmt"
	"sort"
	"time"

	"github.com/noah-isme/attendance-api/internal/models"
)

// Session is one concrete occurrence of a timetable slot.
type Session struct {
	Date          time.Time        `json:"date"`
	Period        int              `json:"period"`
	SubjectID     models.SubjectID `json:"subject_id"`
	DurationHours float64          `json:"duration_hours"`
}

// Key returns the ledger key of the session.
func (s Session) Key() LogKey {
	return KeyOf(s.Date, s.Period, s.SubjectID)
}

// TimetableConflict records a slot dropped because another slot already
// occupies the same day and period.
type TimetableConflict struct {
	Weekday time.Weekday     `json:"weekday"`
	Period  int              `json:"period"`
	Kept    models.SubjectID `json:"kept"`
	Dropped models.SubjectID `json:"dropped"`
}

func (c TimetableConflict) String() string {
	return fmt.Sprintf("%s period %d: %q kept, %q dropped", c.Weekday, c.Period, c.Kept, c.Dropped)
}

// Timetable is the weekly pattern indexed by weekday, one slot per period.
type Timetable struct {
	byDay     map[time.Weekday][]models.TimetableSlot
	subjects  []models.SubjectID
	conflicts []TimetableConflict
}

// NewTimetable indexes slots. Duplicate day+period slots keep the first one in
// (day, period, input order) and are reported by Conflicts.
func NewTimetable(slots []models.TimetableSlot) (*Timetable, error) {
	type entry struct {
		slot models.TimetableSlot
		day  time.Weekday
	}
	entries := make([]entry, 0, len(slots))
	for i, slot := range slots {
		wd, err := ParseWeekday(slot.DayOfWeek)
		if err != nil {
			return nil, &FieldError{Field: fmt.Sprintf("timetable[%d].day_of_week", i), Value: slot.DayOfWeek, Err: err}
		}
		entries = append(entries, entry{slot: slot, day: wd})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].day != entries[j].day {
			return entries[i].day < entries[j].day
		}
		return entries[i].slot.Period < entries[j].slot.Period
	})

	t := &Timetable{byDay: make(map[time.Weekday][]models.TimetableSlot)}
	seen := make(map[models.SubjectID]struct{})
	for _, e := range entries {
		daySlots := t.byDay[e.day]
		if n := len(daySlots); n > 0 && daySlots[n-1].Period == e.slot.Period {
			t.conflicts = append(t.conflicts, TimetableConflict{
				Weekday: e.day,
				Period:  e.slot.Period,
				Kept:    daySlots[n-1].SubjectID,
				Dropped: e.slot.SubjectID,
			})
			continue
		}
		t.byDay[e.day] = append(daySlots, e.slot)
		if _, ok := seen[e.slot.SubjectID]; !ok {
			seen[e.slot.SubjectID] = struct{}{}
			t.subjects = append(t.subjects, e.slot.SubjectID)
		}
	}
	return t, nil
}

// SlotsOn returns the slots scheduled on wd in period order.
func (t *Timetable) SlotsOn(wd time.Weekday) []models.TimetableSlot {
	if t == nil {
		return nil
	}
	return t.byDay[wd]
}

// Slot returns the slot at wd and period.
func (t *Timetable) Slot(wd time.Weekday, period int) (models.TimetableSlot, bool) {
	for _, slot := range t.SlotsOn(wd) {
		if slot.Period == period {
			return slot, true
		}
	}
	return models.TimetableSlot{}, false
}

// Subjects returns the distinct subject ids referenced by the timetable.
func (t *Timetable) Subjects() []models.SubjectID {
	if t == nil {
		return nil
	}
	return t.subjects
}

// Conflicts returns the slots dropped while indexing.
func (t *Timetable) Conflicts() []TimetableConflict {
	if t == nil {
		return nil
	}
	return t.conflicts
}

// EnumerateSessions lists the sessions in [start, end] on days accepted by
// include, ordered by date then period. An empty subject means every subject.
// Attendance logs are never consulted here.
func EnumerateSessions(tt *Timetable, start, end time.Time, include func(time.Time) bool, subject models.SubjectID) []Session {
	from, to := Day(start), Day(end)
	if from.After(to) || tt == nil {
		return nil
	}
	var sessions []Session
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		if include != nil && !include(day) {
			continue
		}
		for _, slot := range tt.SlotsOn(day.Weekday()) {
			if subject != "" && slot.SubjectID != subject {
				continue
			}
			sessions = append(sessions, Session{
				Date:          day,
				Period:        slot.Period,
				SubjectID:     slot.SubjectID,
				DurationHours: slot.Hours(),
			})
		}
	}
	return sessions
}
