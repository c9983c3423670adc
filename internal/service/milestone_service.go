package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/attendance-api/internal/attendance"
	"github.com/noah-isme/attendance-api/internal/models"
	"github.com/noah-isme/attendance-api/pkg/logger"
)

// MilestoneKind names a positive change between two consecutive reports.
type MilestoneKind string

const (
	MilestoneSubjectSafe       MilestoneKind = "subject_safe"
	MilestoneOverallSafe       MilestoneKind = "overall_safe"
	MilestonePerfectAttendance MilestoneKind = "perfect_attendance"
)

const milestoneStateTTL = 180 * 24 * time.Hour

// Milestone is reported alongside stats when a threshold is crossed.
type Milestone struct {
	Kind      MilestoneKind    `json:"kind"`
	SubjectID models.SubjectID `json:"subject_id,omitempty"`
	Message   string           `json:"message"`
}

// milestoneState is the part of a report needed for the next comparison.
type milestoneState struct {
	Overall  attendance.RiskStatus                      `json:"overall"`
	Perfect  bool                                       `json:"perfect"`
	Subjects map[models.SubjectID]attendance.RiskStatus `json:"subjects"`
}

func stateOf(report *attendance.Report) milestoneState {
	state := milestoneState{
		Overall:  report.Overall.Status,
		Perfect:  report.Overall.HasSessions && report.Overall.Attended == report.Overall.Total,
		Subjects: make(map[models.SubjectID]attendance.RiskStatus, len(report.Subjects)),
	}
	for _, s := range report.Subjects {
		if s.HasSessions {
			state.Subjects[s.SubjectID] = s.Status
		}
	}
	return state
}

// DetectMilestones compares a stored state with a fresh report. With no
// previous state there is nothing to celebrate.
func DetectMilestones(prev *milestoneState, report *attendance.Report) []Milestone {
	if prev == nil || report == nil {
		return nil
	}
	next := stateOf(report)
	var out []Milestone
	for _, s := range report.Subjects {
		before, seen := prev.Subjects[s.SubjectID]
		if !seen || before == attendance.StatusSafe {
			continue
		}
		if next.Subjects[s.SubjectID] == attendance.StatusSafe {
			out = append(out, Milestone{
				Kind:      MilestoneSubjectSafe,
				SubjectID: s.SubjectID,
				Message:   fmt.Sprintf("%s is back in the safe zone at %d%%", s.Name, s.Percentage),
			})
		}
	}
	if prev.Overall != attendance.StatusSafe && next.Overall == attendance.StatusSafe && report.Overall.HasSessions {
		out = append(out, Milestone{
			Kind:    MilestoneOverallSafe,
			Message: fmt.Sprintf("overall attendance reached %d%%", report.Overall.Percentage),
		})
	}
	if !prev.Perfect && next.Perfect {
		out = append(out, Milestone{Kind: MilestonePerfectAttendance, Message: "no sessions missed so far"})
	}
	return out
}

// MilestoneObserver remembers the last report per user and reports crossings.
type MilestoneObserver struct {
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
}

// NewMilestoneObserver constructs the observer.
func NewMilestoneObserver(cache *CacheService, metrics *MetricsService, logger *zap.Logger) *MilestoneObserver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MilestoneObserver{cache: cache, metrics: metrics, logger: logger}
}

func milestoneKey(userID string) string {
	return "milestones:" + userID
}

// Observe compares report with the user's previous one and stores it for next time.
func (o *MilestoneObserver) Observe(ctx context.Context, userID string, report *attendance.Report) []Milestone {
	if o == nil || report == nil {
		return nil
	}
	var prev *milestoneState
	var stored milestoneState
	if hit, err := o.cache.Get(ctx, milestoneKey(userID), &stored); err == nil && hit {
		prev = &stored
	}
	milestones := DetectMilestones(prev, report)
	for _, m := range milestones {
		o.metrics.RecordMilestone(m.Kind)
		logger.FromContext(ctx, o.logger).Info("attendance milestone", zap.String("user_id", userID), zap.String("kind", string(m.Kind)), zap.String("subject_id", string(m.SubjectID)))
	}
	_ = o.cache.Set(ctx, milestoneKey(userID), stateOf(report), milestoneStateTTL)
	return milestones
}
