package attendance

import (
	"fmt"
	"time"

	"github.com/noah-isme/attendance-api/internal/models"
)

// SafeMargin is the forward projection for one subject up to the last
// instruction date.
type SafeMargin struct {
	SubjectID      models.SubjectID `json:"subject_id"`
	Held           int              `json:"held"`
	Attended       int              `json:"attended"`
	FutureSessions int              `json:"future_sessions"`
	ProjectedTotal int              `json:"projected_total"`
	MinRequired    int              `json:"min_required"`
	MustAttend     int              `json:"must_attend"`
	CanSkip        int              `json:"can_skip"`
	// Critical is set when attending every remaining session still falls short.
	Critical bool `json:"critical"`
}

// ProjectMargin computes the margin from sessions held, sessions attended and
// sessions still to come.
func ProjectMargin(held, attended, future int) SafeMargin {
	projected := held + future
	minRequired := (MinimumPercent*projected + 99) / 100
	mustAttend := max(0, minRequired-attended)
	return SafeMargin{
		Held:           held,
		Attended:       attended,
		FutureSessions: future,
		ProjectedTotal: projected,
		MinRequired:    minRequired,
		MustAttend:     mustAttend,
		CanSkip:        max(0, future-mustAttend),
		Critical:       mustAttend > future,
	}
}

// SafeMargin projects one subject as of asOf.
func (e *Engine) SafeMargin(subject models.SubjectID, asOf time.Time) (*SafeMargin, error) {
	if !e.HasSubject(subject) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSubject, subject)
	}
	margins, err := e.margins(asOf, subject)
	if err != nil {
		return nil, err
	}
	return &margins[0], nil
}

// SafeMargins projects every subject as of asOf, in subject order.
func (e *Engine) SafeMargins(asOf time.Time) ([]SafeMargin, error) {
	return e.margins(asOf, "")
}

func (e *Engine) margins(asOf time.Time, only models.SubjectID) ([]SafeMargin, error) {
	report, err := e.Stats(asOf)
	if err != nil {
		return nil, err
	}
	if e.semester.LastInstructionDate.IsZero() {
		return nil, missing("last_instruction_date")
	}
	start := Day(asOf).AddDate(0, 0, 1)
	if report.From.After(start) {
		start = report.From
	}
	future := make(map[models.SubjectID]int)
	for _, s := range EnumerateSessions(e.timetable, start, e.semester.LastInstructionDate, e.calendar.IsInstructionalDay, only) {
		future[s.SubjectID]++
	}

	var out []SafeMargin
	for _, stats := range report.Subjects {
		if only != "" && stats.SubjectID != only {
			continue
		}
		m := ProjectMargin(stats.Total, stats.Attended, future[stats.SubjectID])
		m.SubjectID = stats.SubjectID
		out = append(out, m)
	}
	return out, nil
}
