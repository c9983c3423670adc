package service

import (
	"fmt"
	"strconv"

	"github.com/noah-isme/attendance-api/internal/attendance"
	"github.com/noah-isme/attendance-api/internal/models"
	"github.com/noah-isme/attendance-api/pkg/export"
)

var attendanceReportHeaders = []string{"Subject", "Name", "Credits", "Held", "Attended", "Absent", "OD", "Percentage", "Status", "Must Attend", "Can Skip"}

// BuildAttendanceDataset flattens a stats report and its margins into a table.
// Margins may be nil when the semester has no last instruction date.
func BuildAttendanceDataset(report *attendance.Report, margins []attendance.SafeMargin) export.Dataset {
	byID := make(map[models.SubjectID]attendance.SafeMargin, len(margins))
	for _, m := range margins {
		byID[m.SubjectID] = m
	}

	data := export.Dataset{
		Title:   "Attendance report",
		Headers: attendanceReportHeaders,
		Summary: []string{
			fmt.Sprintf("Period: %s to %s (as of %s)", attendance.FormatDate(report.From), attendance.FormatDate(report.Through), attendance.FormatDate(report.AsOf)),
			fmt.Sprintf("Overall: %d%% (%s), %d of %d sessions attended", report.Overall.Percentage, report.Overall.Status, report.Overall.Attended, report.Overall.Total),
			fmt.Sprintf("On-duty hours: %s used of %s", report.Overall.OnDutyHours.Used.StringFixed(1), report.Overall.OnDutyHours.Cap.StringFixed(0)),
		},
	}
	for _, w := range report.Warnings {
		data.Summary = append(data.Summary, "Warning: "+w)
	}

	for _, s := range report.Subjects {
		name := s.Name
		if s.Informational {
			name += " (not counted)"
		}
		row := map[string]string{
			"Subject":     string(s.SubjectID),
			"Name":        name,
			"Credits":     strconv.FormatFloat(s.Credits, 'f', -1, 64),
			"Held":        strconv.Itoa(s.Total),
			"Attended":    strconv.Itoa(s.Attended),
			"Absent":      strconv.Itoa(s.Absent),
			"OD":          strconv.Itoa(s.OnDuty),
			"Percentage":  strconv.Itoa(s.Percentage) + "%",
			"Status":      string(s.Status),
			"Must Attend": "-",
			"Can Skip":    "-",
		}
		if m, ok := byID[s.SubjectID]; ok {
			row["Must Attend"] = strconv.Itoa(m.MustAttend)
			row["Can Skip"] = strconv.Itoa(m.CanSkip)
		}
		data.Rows = append(data.Rows, row)
	}
	return data
}
