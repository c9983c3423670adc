package attendance

import (
	"fmt"
	"time"

	"github.com/noah-isme/attendance-api/internal/models"
)

// Tally counts resolved sessions by status.
type Tally struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
	OnDuty  int `json:"od"`
}

// Add records one session with the given status.
func (t *Tally) Add(status models.AttendanceStatus) {
	switch status {
	case models.AttendanceStatusLeave:
		t.Absent++
	case models.AttendanceStatusOnDuty:
		t.OnDuty++
	default:
		t.Present++
	}
}

// Merge adds other into t.
func (t *Tally) Merge(other Tally) {
	t.Present += other.Present
	t.Absent += other.Absent
	t.OnDuty += other.OnDuty
}

// Total returns the number of sessions held.
func (t Tally) Total() int { return t.Present + t.Absent + t.OnDuty }

// Attended returns present plus on-duty sessions.
func (t Tally) Attended() int { return t.Present + t.OnDuty }

// SubjectStats is the per-subject rollup.
type SubjectStats struct {
	SubjectID      models.SubjectID       `json:"subject_id"`
	Name           string                 `json:"name"`
	Credits        float64                `json:"credits"`
	ZeroCreditType *models.ZeroCreditType `json:"zero_credit_type,omitempty"`
	Informational  bool                   `json:"informational"`
	Tally
	Total       int        `json:"total"`
	Attended    int        `json:"attended"`
	Percentage  int        `json:"percentage"`
	Status      RiskStatus `json:"status"`
	HasSessions bool       `json:"has_sessions"`
}

// OverallStats aggregates every non-informational subject.
type OverallStats struct {
	Tally
	Total       int        `json:"total"`
	Attended    int        `json:"attended"`
	Percentage  int        `json:"percentage"`
	Status      RiskStatus `json:"status"`
	HasSessions bool       `json:"has_sessions"`
	OnDutyHours ODUsage    `json:"od_hours"`
}

// Report is the result of one stats calculation.
type Report struct {
	AsOf        time.Time      `json:"as_of"`
	From        time.Time      `json:"from"`
	Through     time.Time      `json:"through"`
	Overall     OverallStats   `json:"overall"`
	Subjects    []SubjectStats `json:"subjects"`
	IgnoredLogs int            `json:"ignored_logs"`
	Warnings    []string       `json:"warnings,omitempty"`
}

// Subject returns the stats row for id.
func (r *Report) Subject(id models.SubjectID) (SubjectStats, bool) {
	if r == nil {
		return SubjectStats{}, false
	}
	for _, s := range r.Subjects {
		if s.SubjectID == id {
			return s, true
		}
	}
	return SubjectStats{}, false
}

// Engine evaluates one immutable snapshot.
type Engine struct {
	semester  models.SemesterConfig
	subjects  []models.Subject
	index     map[models.SubjectID]int
	timetable *Timetable
	calendar  *Calendar
	ledger    *Ledger
	warnings  []string
}

// New validates and indexes a snapshot.
func New(snapshot models.Snapshot) (*Engine, error) {
	tt, err := NewTimetable(snapshot.Timetable)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		semester:  snapshot.Semester,
		index:     make(map[models.SubjectID]int, len(snapshot.Subjects)),
		timetable: tt,
		calendar:  NewCalendar(snapshot.Holidays, snapshot.Semester.ExamPeriods),
		ledger:    NewLedger(snapshot.Attendance),
	}
	for _, subject := range snapshot.Subjects {
		key := subject.Key()
		if key == "" {
			return nil, missing("subject.name")
		}
		if _, dup := e.index[key]; dup {
			e.warnings = append(e.warnings, fmt.Sprintf("duplicate subject %q ignored", key))
			continue
		}
		e.index[key] = len(e.subjects)
		e.subjects = append(e.subjects, subject)
	}
	for _, c := range tt.Conflicts() {
		e.warnings = append(e.warnings, "timetable overlap: "+c.String())
	}
	for _, id := range tt.Subjects() {
		if _, ok := e.index[id]; !ok {
			e.warnings = append(e.warnings, fmt.Sprintf("timetable references unknown subject %q", id))
		}
	}
	return e, nil
}

// Timetable exposes the indexed weekly pattern.
func (e *Engine) Timetable() *Timetable { return e.timetable }

// Calendar exposes the exclusion resolver.
func (e *Engine) Calendar() *Calendar { return e.calendar }

// Subjects returns the snapshot subjects in input order without duplicates.
func (e *Engine) Subjects() []models.Subject { return e.subjects }

// HasSubject reports whether id belongs to the snapshot.
func (e *Engine) HasSubject(id models.SubjectID) bool {
	_, ok := e.index[id]
	return ok
}

func (e *Engine) semesterStart() (time.Time, error) {
	if e.semester.StartDate.IsZero() {
		return time.Time{}, missing("start_date")
	}
	return Day(e.semester.StartDate), nil
}

// horizon is the last day counted for stats as of asOf.
func (e *Engine) horizon(asOf time.Time) time.Time {
	end := Day(asOf)
	if !e.semester.EndDate.IsZero() && end.After(Day(e.semester.EndDate)) {
		end = Day(e.semester.EndDate)
	}
	return end
}

// Stats computes per-subject and overall attendance from the semester start
// through asOf, capped at the semester end date.
func (e *Engine) Stats(asOf time.Time) (*Report, error) {
	return e.statsWith(e.ledger, asOf)
}

// ODHours reports on-duty usage over the whole semester. Only logs that
// match an instructional session count, as in Stats.
func (e *Engine) ODHours() (ODUsage, error) {
	through := e.semester.EndDate
	if through.IsZero() {
		if logs := e.ledger.Logs(); len(logs) > 0 {
			through = logs[len(logs)-1].Date
		}
	}
	report, err := e.statsWith(e.ledger, through)
	if err != nil {
		return ODUsage{}, err
	}
	return report.Overall.OnDutyHours, nil
}

func (e *Engine) statsWith(ledger *Ledger, asOf time.Time) (*Report, error) {
	start, err := e.semesterStart()
	if err != nil {
		return nil, err
	}
	end := e.horizon(asOf)

	tallies := make([]Tally, len(e.subjects))
	held := make([]bool, len(e.subjects))
	matched := make(map[LogKey]struct{})
	var onDuty []models.AttendanceLog
	unknownStatus := 0
	for _, s := range EnumerateSessions(e.timetable, start, end, e.calendar.IsInstructionalDay, "") {
		i, ok := e.index[s.SubjectID]
		if !ok {
			continue
		}
		if log, logged := ledger.Lookup(s); logged {
			switch {
			case !log.Status.Valid():
				unknownStatus++
			case log.Status == models.AttendanceStatusOnDuty:
				onDuty = append(onDuty, log)
				matched[s.Key()] = struct{}{}
			default:
				matched[s.Key()] = struct{}{}
			}
		}
		tallies[i].Add(ledger.Resolve(s))
		held[i] = true
	}

	ignored := 0
	from, through := FormatDate(start), FormatDate(end)
	ledger.each(func(k LogKey, _ models.AttendanceLog) {
		if k.Date < from || k.Date > through {
			return
		}
		if _, ok := matched[k]; !ok {
			ignored++
		}
	})

	report := &Report{
		AsOf:        Day(asOf),
		From:        start,
		Through:     end,
		Subjects:    make([]SubjectStats, 0, len(e.subjects)),
		IgnoredLogs: ignored,
		Warnings:    append([]string(nil), e.warnings...),
	}
	if unknownStatus > 0 {
		report.Warnings = append(report.Warnings, fmt.Sprintf("%d logs with an unknown status ignored", unknownStatus))
	}
	var overall Tally
	for i, subject := range e.subjects {
		t := tallies[i]
		pct := Percentage(t.Attended(), t.Total())
		report.Subjects = append(report.Subjects, SubjectStats{
			SubjectID:      subject.Key(),
			Name:           subject.Name,
			Credits:        subject.Credits,
			ZeroCreditType: subject.ZeroCreditType,
			Informational:  subject.Informational(),
			Tally:          t,
			Total:          t.Total(),
			Attended:       t.Attended(),
			Percentage:     pct,
			Status:         SubjectThresholds.Classify(pct),
			HasSessions:    held[i],
		})
		if !subject.Informational() {
			overall.Merge(t)
		}
	}
	pct := Percentage(overall.Attended(), overall.Total())
	report.Overall = OverallStats{
		Tally:       overall,
		Total:       overall.Total(),
		Attended:    overall.Attended(),
		Percentage:  pct,
		Status:      OverallThresholds.Classify(pct),
		HasSessions: overall.Total() > 0,
		OnDutyHours: ODHours(onDuty, e.timetable),
	}
	return report, nil
}

// SessionStatus is an enumerated session with its resolved status.
type SessionStatus struct {
	Session
	Status models.AttendanceStatus `json:"status"`
	Logged bool                    `json:"logged"`
	Note   *string                 `json:"note,omitempty"`
}

// Sessions lists the sessions in [start, end] with their effective status.
// An empty subject lists every subject.
func (e *Engine) Sessions(start, end time.Time, subject models.SubjectID) ([]SessionStatus, error) {
	if subject != "" && !e.HasSubject(subject) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSubject, subject)
	}
	sessions := EnumerateSessions(e.timetable, start, end, e.calendar.IsInstructionalDay, subject)
	out := make([]SessionStatus, 0, len(sessions))
	for _, s := range sessions {
		row := SessionStatus{Session: s, Status: e.ledger.Resolve(s)}
		if log, ok := e.ledger.Lookup(s); ok {
			row.Logged = true
			row.Note = log.Note
		}
		out = append(out, row)
	}
	return out, nil
}
