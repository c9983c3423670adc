package attendance

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/attendance-api/internal/models"
)

func loadSnapshot(t *testing.T, name string) models.Snapshot {
	t.Helper()
	raw, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	var snapshot models.Snapshot
	require.NoError(t, yaml.Unmarshal(raw, &snapshot))
	return snapshot
}

func loadEngine(t *testing.T, name string) *Engine {
	t.Helper()
	engine, err := New(loadSnapshot(t, name))
	require.NoError(t, err)
	return engine
}

func date(t *testing.T, raw string) time.Time {
	t.Helper()
	d, err := ParseDate("date", raw)
	require.NoError(t, err)
	return d
}

func subject(code, name string) models.Subject {
	s := models.Subject{Name: name, Credits: 3}
	if code != "" {
		s.Code = &code
	}
	return s
}

func slot(day string, period int, id models.SubjectID) models.TimetableSlot {
	return models.TimetableSlot{DayOfWeek: day, Period: period, SubjectID: id}
}

func logEntry(t *testing.T, raw string, period int, id models.SubjectID, status models.AttendanceStatus) models.AttendanceLog {
	return models.AttendanceLog{Date: date(t, raw), Period: period, SubjectID: id, Status: status}
}
