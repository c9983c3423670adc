package attendance

import (
	"fmt"
	"time"

	"github.com/noah-isme/attendance-api/internal/models"
)

// LeaveRequest describes a hypothetical absence. An empty SubjectIDs selects
// every subject.
type LeaveRequest struct {
	Start      time.Time          `json:"start"`
	End        time.Time          `json:"end"`
	SubjectIDs []models.SubjectID `json:"subject_ids,omitempty"`
}

// Delta compares a percentage before and after the simulated leave.
type Delta struct {
	Before       int        `json:"before"`
	After        int        `json:"after"`
	Change       int        `json:"change"`
	BeforeStatus RiskStatus `json:"before_status"`
	AfterStatus  RiskStatus `json:"after_status"`
}

func newDelta(before, after int, beforeStatus, afterStatus RiskStatus) Delta {
	return Delta{
		Before:       before,
		After:        after,
		Change:       after - before,
		BeforeStatus: beforeStatus,
		AfterStatus:  afterStatus,
	}
}

// MarginDelta compares the safe margin before and after the leave, treating
// pending leave as already taken.
type MarginDelta struct {
	Before        SafeMargin `json:"before"`
	After         SafeMargin `json:"after"`
	CanSkipChange int        `json:"can_skip_change"`
}

// SubjectDelta is the per-subject effect of a simulation.
type SubjectDelta struct {
	SubjectID models.SubjectID `json:"subject_id"`
	Delta
	NewAbsences int `json:"new_absences"`
	// Margin is nil when the semester has no last instruction date.
	Margin *MarginDelta `json:"margin,omitempty"`
}

// Simulation holds both reports and the synthetic entries behind them.
type Simulation struct {
	Request   LeaveRequest   `json:"request"`
	AsOf      time.Time      `json:"as_of"`
	Baseline  *Report        `json:"baseline"`
	Simulated *Report        `json:"simulated"`
	Overall   Delta          `json:"overall"`
	Subjects  []SubjectDelta `json:"subjects"`
	// SyntheticSessions lists every unlogged session marked as leave.
	SyntheticSessions []Session `json:"synthetic_sessions"`
	// PendingSessions counts synthetic sessions dated after AsOf. They only
	// move the percentage once they have occurred.
	PendingSessions int `json:"pending_sessions"`
}

// SimulateLeave marks every unlogged session of the selected subjects inside
// the request range as leave and recomputes stats as of asOf. The snapshot is
// never modified.
func (e *Engine) SimulateLeave(req LeaveRequest, asOf time.Time) (*Simulation, error) {
	selected := make(map[models.SubjectID]struct{}, len(req.SubjectIDs))
	for _, id := range req.SubjectIDs {
		if !e.HasSubject(id) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSubject, id)
		}
		selected[id] = struct{}{}
	}

	baseline, err := e.Stats(asOf)
	if err != nil {
		return nil, err
	}

	start, end := Day(req.Start), Day(req.End)
	if start.Before(baseline.From) {
		start = baseline.From
	}
	if !e.semester.EndDate.IsZero() && end.After(Day(e.semester.EndDate)) {
		end = Day(e.semester.EndDate)
	}

	var (
		synthetic []models.AttendanceLog
		sessions  []Session
		pending   int
		perSubj   = make(map[models.SubjectID]int)
		ahead     = make(map[models.SubjectID]int)
		cutoff    = Day(asOf)
		lastDay   = Day(e.semester.LastInstructionDate)
	)
	for _, s := range EnumerateSessions(e.timetable, start, end, e.calendar.IsInstructionalDay, "") {
		if !e.HasSubject(s.SubjectID) {
			continue
		}
		if len(selected) > 0 {
			if _, ok := selected[s.SubjectID]; !ok {
				continue
			}
		}
		if _, logged := e.ledger.Lookup(s); logged {
			continue
		}
		synthetic = append(synthetic, models.AttendanceLog{
			Date:      s.Date,
			Period:    s.Period,
			SubjectID: s.SubjectID,
			Status:    models.AttendanceStatusLeave,
		})
		sessions = append(sessions, s)
		if s.Date.After(cutoff) {
			pending++
			if !s.Date.After(lastDay) {
				ahead[s.SubjectID]++
			}
		} else {
			perSubj[s.SubjectID]++
		}
	}

	simulated, err := e.statsWith(e.ledger.With(synthetic), asOf)
	if err != nil {
		return nil, err
	}

	sim := &Simulation{
		Request:           req,
		AsOf:              cutoff,
		Baseline:          baseline,
		Simulated:         simulated,
		Overall:           newDelta(baseline.Overall.Percentage, simulated.Overall.Percentage, baseline.Overall.Status, simulated.Overall.Status),
		SyntheticSessions: sessions,
		PendingSessions:   pending,
	}
	margins := make(map[models.SubjectID]SafeMargin)
	if !e.semester.LastInstructionDate.IsZero() {
		list, err := e.margins(asOf, "")
		if err != nil {
			return nil, err
		}
		for _, m := range list {
			margins[m.SubjectID] = m
		}
	}

	for i, before := range baseline.Subjects {
		if len(selected) > 0 {
			if _, ok := selected[before.SubjectID]; !ok {
				continue
			}
		}
		after := simulated.Subjects[i]
		row := SubjectDelta{
			SubjectID:   before.SubjectID,
			Delta:       newDelta(before.Percentage, after.Percentage, before.Status, after.Status),
			NewAbsences: perSubj[before.SubjectID],
		}
		if m, ok := margins[before.SubjectID]; ok {
			taken := ahead[before.SubjectID]
			projected := ProjectMargin(after.Total+taken, after.Attended, m.FutureSessions-taken)
			projected.SubjectID = before.SubjectID
			row.Margin = &MarginDelta{Before: m, After: projected, CanSkipChange: projected.CanSkip - m.CanSkip}
		}
		sim.Subjects = append(sim.Subjects, row)
	}
	return sim, nil
}
