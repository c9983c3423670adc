package attendance

import (
	"sort"
	"time"

	"github.com/noah-isme/attendance-api/internal/models"
)

// LogKey identifies an attendance log: one per date, period and subject.
type LogKey struct {
	Date      string
	Period    int
	SubjectID models.SubjectID
}

// KeyOf builds the key for a session occurrence.
func KeyOf(date time.Time, period int, subject models.SubjectID) LogKey {
	return LogKey{Date: FormatDate(Day(date)), Period: period, SubjectID: subject}
}

// Ledger indexes explicit attendance logs.
type Ledger struct {
	entries map[LogKey]models.AttendanceLog
}

// NewLedger indexes logs by key. Later duplicates replace earlier ones.
func NewLedger(logs []models.AttendanceLog) *Ledger {
	l := &Ledger{entries: make(map[LogKey]models.AttendanceLog, len(logs))}
	for _, log := range logs {
		l.entries[KeyOf(log.Date, log.Period, log.SubjectID)] = log
	}
	return l
}

// Lookup returns the explicit log recorded for s, if any.
func (l *Ledger) Lookup(s Session) (models.AttendanceLog, bool) {
	if l == nil {
		return models.AttendanceLog{}, false
	}
	log, ok := l.entries[s.Key()]
	return log, ok
}

// Resolve returns the effective status of s. Unlogged sessions, and logs with
// an unrecognised status, count as present. Stats reports the latter as
// ignored logs.
func (l *Ledger) Resolve(s Session) models.AttendanceStatus {
	log, ok := l.Lookup(s)
	if !ok || !log.Status.Valid() {
		return models.AttendanceStatusPresent
	}
	return log.Status
}

// ResolveStatus is the free-function form of Ledger.Resolve.
func ResolveStatus(s Session, l *Ledger) models.AttendanceStatus {
	return l.Resolve(s)
}

// With returns a new ledger holding l's entries plus extra. Extra entries
// never replace an existing key.
func (l *Ledger) With(extra []models.AttendanceLog) *Ledger {
	out := &Ledger{entries: make(map[LogKey]models.AttendanceLog, l.Len()+len(extra))}
	if l != nil {
		for k, v := range l.entries {
			out.entries[k] = v
		}
	}
	for _, log := range extra {
		key := KeyOf(log.Date, log.Period, log.SubjectID)
		if _, exists := out.entries[key]; exists {
			continue
		}
		out.entries[key] = log
	}
	return out
}

// Len returns the number of distinct logged sessions.
func (l *Ledger) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}

// Logs returns the indexed logs ordered by date, period and subject.
func (l *Ledger) Logs() []models.AttendanceLog {
	out := make([]models.AttendanceLog, 0, l.Len())
	l.each(func(_ LogKey, log models.AttendanceLog) {
		out = append(out, log)
	})
	sort.Slice(out, func(i, j int) bool {
		a, b := KeyOf(out[i].Date, out[i].Period, out[i].SubjectID), KeyOf(out[j].Date, out[j].Period, out[j].SubjectID)
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.Period != b.Period {
			return a.Period < b.Period
		}
		return a.SubjectID < b.SubjectID
	})
	return out
}

func (l *Ledger) each(fn func(LogKey, models.AttendanceLog)) {
	if l == nil {
		return
	}
	for k, v := range l.entries {
		fn(k, v)
	}
}
