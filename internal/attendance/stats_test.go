package attendance

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/attendance-api/internal/models"
)

func TestEngineStatsFromFixture(t *testing.T) {
	engine := loadEngine(t, "semester.yaml")

	report, err := engine.Stats(date(t, "2024-01-13"))
	require.NoError(t, err)
	require.Len(t, report.Subjects, 3)

	maths := report.Subjects[0]
	assert.Equal(t, models.SubjectID("MA101"), maths.SubjectID)
	assert.Equal(t, Tally{Present: 2, Absent: 1}, maths.Tally)
	assert.Equal(t, 3, maths.Total)
	assert.Equal(t, 67, maths.Percentage)
	assert.Equal(t, StatusDanger, maths.Status)

	physics := report.Subjects[1]
	assert.Equal(t, Tally{Present: 1, OnDuty: 1}, physics.Tally)
	assert.Equal(t, 100, physics.Percentage)
	assert.Equal(t, StatusSafe, physics.Status)

	library, ok := report.Subject("Library")
	require.True(t, ok)
	assert.True(t, library.Informational)
	assert.Equal(t, 2, library.Total)

	// library is kept out of the headline number
	assert.Equal(t, 5, report.Overall.Total)
	assert.Equal(t, 4, report.Overall.Attended)
	assert.Equal(t, 80, report.Overall.Percentage)
	assert.Equal(t, StatusWarning, report.Overall.Status)
	assert.Equal(t, "3", report.Overall.OnDutyHours.Used.String())

	// the tuesday log matches no timetable slot
	assert.Equal(t, 1, report.IgnoredLogs)
}

func TestEngineStatsPercentageBoundary(t *testing.T) {
	engine, err := New(models.Snapshot{
		Subjects:   []models.Subject{subject("CS201", "Data Structures")},
		Timetable:  []models.TimetableSlot{slot("Monday", 1, "CS201")},
		Attendance: []models.AttendanceLog{logEntry(t, "2024-01-15", 1, "CS201", models.AttendanceStatusLeave)},
		Semester:   models.SemesterConfig{StartDate: date(t, "2024-01-01")},
	})
	require.NoError(t, err)

	report, err := engine.Stats(date(t, "2024-01-22"))
	require.NoError(t, err)
	stats := report.Subjects[0]
	assert.Equal(t, Tally{Present: 3, Absent: 1}, stats.Tally)
	assert.Equal(t, 75, stats.Percentage)
	assert.Equal(t, StatusWarning, stats.Status)
}

func TestEngineStatsFullAttendance(t *testing.T) {
	var slots []models.TimetableSlot
	for _, day := range []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"} {
		slots = append(slots, slot(day, 1, "CS202"))
	}
	engine, err := New(models.Snapshot{
		Subjects:   []models.Subject{subject("CS202", "Operating Systems")},
		Timetable:  slots,
		Attendance: []models.AttendanceLog{logEntry(t, "2024-01-03", 1, "CS202", models.AttendanceStatusPresent)},
		Semester:   models.SemesterConfig{StartDate: date(t, "2024-01-01")},
	})
	require.NoError(t, err)

	report, err := engine.Stats(date(t, "2024-01-26"))
	require.NoError(t, err)
	stats := report.Subjects[0]
	assert.Equal(t, 20, stats.Total)
	assert.Equal(t, 100, stats.Percentage)
	assert.Equal(t, StatusSafe, stats.Status)
	assert.Equal(t, StatusSafe, report.Overall.Status)
}

func TestEngineStatsEmptySubject(t *testing.T) {
	engine, err := New(models.Snapshot{
		Subjects:  []models.Subject{subject("CS202", "Operating Systems"), subject("HS101", "Ethics")},
		Timetable: []models.TimetableSlot{slot("Monday", 1, "CS202")},
		Semester:  models.SemesterConfig{StartDate: date(t, "2024-01-01")},
	})
	require.NoError(t, err)

	report, err := engine.Stats(date(t, "2024-01-31"))
	require.NoError(t, err)
	ethics, ok := report.Subject("HS101")
	require.True(t, ok)
	assert.Equal(t, 0, ethics.Total)
	assert.Equal(t, 0, ethics.Percentage)
	assert.Equal(t, StatusDanger, ethics.Status)
	assert.False(t, ethics.HasSessions)

	operating, _ := report.Subject("CS202")
	assert.True(t, operating.HasSessions)
}

func TestEngineStatsMissingStartDate(t *testing.T) {
	engine, err := New(models.Snapshot{
		Subjects:  []models.Subject{subject("CS202", "Operating Systems")},
		Timetable: []models.TimetableSlot{slot("Monday", 1, "CS202")},
	})
	require.NoError(t, err)

	_, err = engine.Stats(date(t, "2024-01-31"))
	var fieldErr *FieldError
	require.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, "start_date", fieldErr.Field)
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestEngineStatsCapsAtSemesterEnd(t *testing.T) {
	engine := loadEngine(t, "semester.yaml")

	atEnd, err := engine.Stats(date(t, "2024-03-31"))
	require.NoError(t, err)
	later, err := engine.Stats(date(t, "2024-06-30"))
	require.NoError(t, err)

	assert.Equal(t, atEnd.Subjects, later.Subjects)
	assert.Equal(t, "2024-03-31", FormatDate(later.Through))
	maths, _ := later.Subject("MA101")
	assert.Equal(t, 23, maths.Total)
}

func TestEngineStatsReportsTimetableConflicts(t *testing.T) {
	engine, err := New(models.Snapshot{
		Subjects:  []models.Subject{subject("A1", "Alpha"), subject("B1", "Beta")},
		Timetable: []models.TimetableSlot{slot("Monday", 1, "A1"), slot("Monday", 1, "B1")},
		Semester:  models.SemesterConfig{StartDate: date(t, "2024-01-01")},
	})
	require.NoError(t, err)

	report, err := engine.Stats(date(t, "2024-01-08"))
	require.NoError(t, err)
	alpha, _ := report.Subject("A1")
	beta, _ := report.Subject("B1")
	assert.Equal(t, 2, alpha.Total)
	assert.Equal(t, 0, beta.Total)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "timetable overlap")
}

func TestEngineSubjectIdentityFallsBackToName(t *testing.T) {
	engine, err := New(models.Snapshot{
		Subjects:  []models.Subject{subject("", "Seminar Hour")},
		Timetable: []models.TimetableSlot{slot("Friday", 7, "Seminar Hour")},
		Semester:  models.SemesterConfig{StartDate: date(t, "2024-01-01")},
	})
	require.NoError(t, err)

	report, err := engine.Stats(date(t, "2024-01-12"))
	require.NoError(t, err)
	stats, ok := report.Subject("Seminar Hour")
	require.True(t, ok)
	assert.Equal(t, 2, stats.Total)
}

func TestEngineSessionsResolvesStatus(t *testing.T) {
	engine := loadEngine(t, "semester.yaml")

	rows, err := engine.Sessions(date(t, "2024-01-01"), date(t, "2024-01-08"), "")
	require.NoError(t, err)
	require.Len(t, rows, 5)

	var odRow, leaveRow SessionStatus
	for _, row := range rows {
		switch row.Status {
		case models.AttendanceStatusOnDuty:
			odRow = row
		case models.AttendanceStatusLeave:
			leaveRow = row
		}
	}
	assert.True(t, odRow.Logged)
	require.NotNil(t, odRow.Note)
	assert.Equal(t, "robotics symposium", *odRow.Note)
	assert.Equal(t, "2024-01-08", FormatDate(leaveRow.Date))

	_, err = engine.Sessions(date(t, "2024-01-01"), date(t, "2024-01-08"), "XX999")
	assert.ErrorIs(t, err, ErrUnknownSubject)
}

func TestThresholdsClassify(t *testing.T) {
	assert.Equal(t, StatusSafe, SubjectThresholds.Classify(77))
	assert.Equal(t, StatusWarning, SubjectThresholds.Classify(76))
	assert.Equal(t, StatusWarning, SubjectThresholds.Classify(75))
	assert.Equal(t, StatusDanger, SubjectThresholds.Classify(74))
	assert.Equal(t, StatusSafe, OverallThresholds.Classify(82))
	assert.Equal(t, StatusWarning, OverallThresholds.Classify(80))
	assert.Equal(t, StatusDanger, OverallThresholds.Classify(79))
}

func TestPercentageRoundsHalfUp(t *testing.T) {
	assert.Equal(t, 0, Percentage(0, 0))
	assert.Equal(t, 67, Percentage(2, 3))
	assert.Equal(t, 33, Percentage(1, 3))
	assert.Equal(t, 88, Percentage(7, 8))
	assert.Equal(t, 50, Percentage(1, 2))
	assert.Equal(t, 100, Percentage(9, 9))
}

func TestEngineStatsReportsUnknownStatusLogs(t *testing.T) {
	engine, err := New(models.Snapshot{
		Subjects:  []models.Subject{subject("MA101", "Mathematics")},
		Timetable: []models.TimetableSlot{slot("Monday", 1, "MA101")},
		Attendance: []models.AttendanceLog{
			logEntry(t, "2024-01-08", 1, "MA101", "absent"),
			logEntry(t, "2024-01-15", 1, "MA101", models.AttendanceStatusLeave),
		},
		Semester: models.SemesterConfig{StartDate: date(t, "2024-01-01"), EndDate: date(t, "2024-03-31")},
	})
	require.NoError(t, err)

	report, err := engine.Stats(date(t, "2024-01-22"))
	require.NoError(t, err)
	ma, _ := report.Subject("MA101")
	assert.Equal(t, 3, ma.Present)
	assert.Equal(t, 1, ma.Absent)
	assert.Equal(t, 1, report.IgnoredLogs)
	assert.Contains(t, report.Warnings, "1 logs with an unknown status ignored")

	again, err := engine.Stats(date(t, "2024-01-22"))
	require.NoError(t, err)
	assert.Len(t, again.Warnings, 1)
}
